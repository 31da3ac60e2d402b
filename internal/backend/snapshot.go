package backend

import "path"

// DocumentSnapshot is the state of one document at a point in time.
type DocumentSnapshot struct {
	path   string
	data   map[string]interface{}
	exists bool
}

// ID returns the last path segment.
func (s DocumentSnapshot) ID() string {
	return path.Base(s.path)
}

// Path returns the full document path.
func (s DocumentSnapshot) Path() string {
	return s.path
}

// Exists reports whether the document was present.
func (s DocumentSnapshot) Exists() bool {
	return s.exists
}

// Data returns a copy of the document body, or nil when it does not exist.
func (s DocumentSnapshot) Data() map[string]interface{} {
	return copyDocument(s.data)
}

// SnapshotFunc receives change notifications for one document path.
type SnapshotFunc func(DocumentSnapshot)
