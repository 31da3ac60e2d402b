package backend

import (
	"context"
	"path"
	"sort"
	"strings"

	"hans/pkg/logging"
)

// CollectionRef is a handle to the documents directly below a path.
type CollectionRef struct {
	backend *Backend
	path    string
}

// Path returns the collection path.
func (c CollectionRef) Path() string {
	return c.path
}

// Doc returns a handle for the child document id.
func (c CollectionRef) Doc(id string) DocumentRef {
	return c.backend.Doc(path.Join(c.path, id))
}

// Add stores data under a generated id and returns the new document handle.
func (c CollectionRef) Add(ctx context.Context, data map[string]interface{}) (DocumentRef, error) {
	if err := validatePath(c.path); err != nil {
		return DocumentRef{}, &OperationError{Op: "add", Path: c.path, Err: err}
	}
	if err := c.backend.simulate(ctx, "add", c.path); err != nil {
		return DocumentRef{}, err
	}

	ref := c.Doc(c.backend.newID())
	c.backend.mu.Lock()
	c.backend.writeLocked(ref.path, copyDocument(data))
	c.backend.mu.Unlock()

	logging.Debug("Backend", "add %s", ref.path)
	return ref, nil
}

// Get returns snapshots of the direct children of the collection, sorted by
// path.
func (c CollectionRef) Get(ctx context.Context) ([]DocumentSnapshot, error) {
	if err := validatePath(c.path); err != nil {
		return nil, &OperationError{Op: "list", Path: c.path, Err: err}
	}
	if err := c.backend.simulate(ctx, "list", c.path); err != nil {
		return nil, err
	}

	prefix := c.path + "/"
	c.backend.mu.RLock()
	var snaps []DocumentSnapshot
	for p, doc := range c.backend.docs {
		rest, ok := strings.CutPrefix(p, prefix)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		snaps = append(snaps, DocumentSnapshot{path: p, data: doc, exists: true})
	}
	c.backend.mu.RUnlock()

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].path < snaps[j].path })
	return snaps, nil
}

// DocumentRef is a handle to a single document path.
type DocumentRef struct {
	backend *Backend
	path    string
}

// ID returns the last path segment.
func (d DocumentRef) ID() string {
	return path.Base(d.path)
}

// Path returns the document path.
func (d DocumentRef) Path() string {
	return d.path
}

// Set replaces the document body.
func (d DocumentRef) Set(ctx context.Context, data map[string]interface{}) error {
	if err := d.check(ctx, "set"); err != nil {
		return err
	}
	d.backend.mu.Lock()
	d.backend.writeLocked(d.path, copyDocument(data))
	d.backend.mu.Unlock()

	logging.Debug("Backend", "set %s", d.path)
	return nil
}

// Update merges the top-level fields of partial into an existing document.
// It fails with ErrNotFound if the document does not exist.
func (d DocumentRef) Update(ctx context.Context, partial map[string]interface{}) error {
	if err := d.check(ctx, "update"); err != nil {
		return err
	}

	d.backend.mu.Lock()
	defer d.backend.mu.Unlock()
	current, ok := d.backend.docs[d.path]
	if !ok {
		return &OperationError{Op: "update", Path: d.path, Err: ErrNotFound}
	}
	merged := copyDocument(current)
	for k, v := range partial {
		merged[k] = copyValue(v)
	}
	d.backend.writeLocked(d.path, merged)

	logging.Debug("Backend", "update %s (%d fields)", d.path, len(partial))
	return nil
}

// Delete removes the document. Deleting a missing document succeeds.
func (d DocumentRef) Delete(ctx context.Context) error {
	if err := d.check(ctx, "delete"); err != nil {
		return err
	}
	d.backend.mu.Lock()
	if _, ok := d.backend.docs[d.path]; ok {
		d.backend.deleteLocked(d.path)
	}
	d.backend.mu.Unlock()

	logging.Debug("Backend", "delete %s", d.path)
	return nil
}

// Get reads the document. A missing document yields a snapshot whose Exists
// is false and no error.
func (d DocumentRef) Get(ctx context.Context) (DocumentSnapshot, error) {
	if err := d.check(ctx, "get"); err != nil {
		return DocumentSnapshot{}, err
	}
	d.backend.mu.RLock()
	doc, ok := d.backend.docs[d.path]
	d.backend.mu.RUnlock()

	return DocumentSnapshot{path: d.path, data: doc, exists: ok}, nil
}

// OnSnapshot registers fn for changes to this document.
func (d DocumentRef) OnSnapshot(fn SnapshotFunc) (unsubscribe func()) {
	return d.backend.OnSnapshot(d.path, fn)
}

func (d DocumentRef) check(ctx context.Context, op string) error {
	if err := validatePath(d.path); err != nil {
		return &OperationError{Op: op, Path: d.path, Err: err}
	}
	return d.backend.simulate(ctx, op, d.path)
}
