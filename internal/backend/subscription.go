package backend

import (
	"strings"
	"sync"
)

type subscription struct {
	id   uint64
	path string
	fn   SnapshotFunc

	mu     sync.Mutex
	queue  []DocumentSnapshot
	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

func (s *subscription) push(snap DocumentSnapshot) {
	s.mu.Lock()
	s.queue = append(s.queue, snap)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *subscription) stop() {
	s.once.Do(func() { close(s.done) })
}

// run delivers queued snapshots in order until the subscription stops.
func (s *subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.signal:
		}

		for {
			s.mu.Lock()
			if len(s.queue) == 0 {
				s.mu.Unlock()
				break
			}
			snap := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()

			select {
			case <-s.done:
				return
			default:
			}
			s.fn(snap)
		}
	}
}

// OnSnapshot registers fn for changes to the document at path. If the
// document exists its current value is delivered first, asynchronously. The
// returned function unsubscribes and may be called any number of times.
func (b *Backend) OnSnapshot(p string, fn SnapshotFunc) (unsubscribe func()) {
	p = strings.Trim(p, "/")

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return func() {}
	}
	b.nextSubID++
	s := &subscription{
		id:     b.nextSubID,
		path:   p,
		fn:     fn,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	b.subs[p] = append(b.subs[p], s)
	if doc, ok := b.docs[p]; ok {
		s.push(DocumentSnapshot{path: p, data: doc, exists: true})
	}
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		s.run()
	}()

	return func() {
		b.removeSubscription(s)
		s.stop()
	}
}

// ListenerCount returns the number of active subscriptions on path.
func (b *Backend) ListenerCount(p string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[strings.Trim(p, "/")])
}

func (b *Backend) removeSubscription(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[s.path]
	for i, other := range list {
		if other.id == s.id {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(b.subs, s.path)
	} else {
		b.subs[s.path] = list
	}
}
