package backend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hans/internal/sim"
	"hans/pkg/logging"
)

// Option configures a Backend.
type Option func(*Backend)

// WithClock sets the clock used for simulated latency.
func WithClock(c sim.Clock) Option {
	return func(b *Backend) { b.clock = c }
}

// WithRand sets the random source used for failure injection.
func WithRand(r sim.Rand) Option {
	return func(b *Backend) { b.rnd = r }
}

// WithIDGenerator replaces the uuid generator used by CollectionRef.Add.
func WithIDGenerator(fn func() string) Option {
	return func(b *Backend) { b.newID = fn }
}

// Backend is an in-memory document store with simulated network behaviour.
// It is safe for concurrent use.
type Backend struct {
	clock sim.Clock
	rnd   sim.Rand
	newID func() string

	mu        sync.RWMutex
	docs      map[string]map[string]interface{}
	condition NetworkCondition
	offline   bool
	subs      map[string][]*subscription
	nextSubID uint64
	closed    bool

	wg sync.WaitGroup
}

// New creates an empty Backend on the default network condition.
func New(opts ...Option) *Backend {
	b := &Backend{
		clock:     sim.RealClock{},
		rnd:       sim.NewRand(uint64(uuid.New().ID())),
		newID:     func() string { return uuid.NewString() },
		docs:      make(map[string]map[string]interface{}),
		condition: DefaultNetwork,
		subs:      make(map[string][]*subscription),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Collection returns a handle for the collection at path.
func (b *Backend) Collection(path string) CollectionRef {
	return CollectionRef{backend: b, path: strings.Trim(path, "/")}
}

// Doc returns a handle for the document at path.
func (b *Backend) Doc(path string) DocumentRef {
	return DocumentRef{backend: b, path: strings.Trim(path, "/")}
}

// NetworkCondition returns the condition applied to operations.
func (b *Backend) NetworkCondition() NetworkCondition {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.condition
}

// IsOffline reports whether offline mode is active.
func (b *Backend) IsOffline() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.offline
}

// SimulateOffline makes every following operation fail with ErrOffline.
func (b *Backend) SimulateOffline() {
	b.mu.Lock()
	b.offline = true
	b.mu.Unlock()
	logging.Debug("Backend", "Network offline")
}

// SimulateOnline leaves offline mode. The network condition is unchanged.
func (b *Backend) SimulateOnline() {
	b.mu.Lock()
	b.offline = false
	b.mu.Unlock()
	logging.Debug("Backend", "Network online")
}

// SimulateSlowNetwork switches to SlowNetwork.
func (b *Backend) SimulateSlowNetwork() {
	b.setCondition(SlowNetwork)
}

// SimulateFastNetwork switches to FastNetwork.
func (b *Backend) SimulateFastNetwork() {
	b.setCondition(FastNetwork)
}

// SimulateUnstableNetwork switches to UnstableNetwork.
func (b *Backend) SimulateUnstableNetwork() {
	b.setCondition(UnstableNetwork)
}

// SetCustomNetworkCondition installs cond after validating it.
func (b *Backend) SetCustomNetworkCondition(cond NetworkCondition) error {
	if err := cond.Validate(); err != nil {
		return err
	}
	if cond.Name == "" {
		cond.Name = "custom"
	}
	b.setCondition(cond)
	return nil
}

func (b *Backend) setCondition(cond NetworkCondition) {
	b.mu.Lock()
	b.condition = cond
	b.mu.Unlock()
	logging.Debug("Backend", "Network condition set to %s (latency=%s error=%.2f timeout=%.2f)",
		cond.Name, cond.Latency, cond.ErrorRate, cond.TimeoutRate)
}

// simulate applies the current network condition to one operation.
func (b *Backend) simulate(ctx context.Context, op, p string) error {
	b.mu.RLock()
	offline := b.offline
	cond := b.condition
	b.mu.RUnlock()

	if offline {
		return &OperationError{Op: op, Path: p, Err: ErrOffline}
	}
	if err := b.clock.Sleep(ctx, cond.Latency); err != nil {
		return &OperationError{Op: op, Path: p, Err: err}
	}
	if sim.Chance(b.rnd, cond.ErrorRate) {
		return &OperationError{Op: op, Path: p, Err: ErrNetwork}
	}
	if sim.Chance(b.rnd, cond.TimeoutRate) {
		return &OperationError{Op: op, Path: p, Err: ErrTimeout}
	}
	return nil
}

// TriggerRealtimeUpdate writes data to path without network simulation and
// notifies listeners, as if another client had made the change.
func (b *Backend) TriggerRealtimeUpdate(p string, data map[string]interface{}) error {
	p = strings.Trim(p, "/")
	if err := validatePath(p); err != nil {
		return &OperationError{Op: "trigger", Path: p, Err: err}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writeLocked(p, copyDocument(data))
	return nil
}

// SimulateConflict writes a and then b to the same path, 50ms apart, leaving
// b as the stored value.
func (b *Backend) SimulateConflict(ctx context.Context, p string, a, bData map[string]interface{}) error {
	if err := b.clock.Sleep(ctx, conflictStagger); err != nil {
		return err
	}
	if err := b.TriggerRealtimeUpdate(p, a); err != nil {
		return err
	}
	if err := b.clock.Sleep(ctx, conflictStagger); err != nil {
		return err
	}
	return b.TriggerRealtimeUpdate(p, bData)
}

const conflictStagger = 50 * time.Millisecond

// Seed writes fixture documents without network simulation.
func (b *Backend) Seed(docs map[string]map[string]interface{}) error {
	paths := make([]string, 0, len(docs))
	for p := range docs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range paths {
		clean := strings.Trim(p, "/")
		if err := validatePath(clean); err != nil {
			return &OperationError{Op: "seed", Path: p, Err: err}
		}
		b.writeLocked(clean, copyDocument(docs[p]))
	}
	logging.Debug("Backend", "Seeded %d documents", len(paths))
	return nil
}

// Len returns the number of stored documents.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.docs)
}

// Paths returns every stored document path in sorted order.
func (b *Backend) Paths() []string {
	b.mu.RLock()
	paths := make([]string, 0, len(b.docs))
	for p := range b.docs {
		paths = append(paths, p)
	}
	b.mu.RUnlock()
	sort.Strings(paths)
	return paths
}

// Reset removes all documents and listeners and restores the default,
// online network condition.
func (b *Backend) Reset() {
	b.mu.Lock()
	b.docs = make(map[string]map[string]interface{})
	b.condition = DefaultNetwork
	b.offline = false
	subs := b.subs
	b.subs = make(map[string][]*subscription)
	b.mu.Unlock()

	for _, list := range subs {
		for _, s := range list {
			s.stop()
		}
	}
	logging.Debug("Backend", "Reset")
}

// Close resets the backend and waits for delivery goroutines to exit.
// Later subscriptions are ignored. Close must not be called from a
// SnapshotFunc.
func (b *Backend) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.Reset()
	b.wg.Wait()
}

// writeLocked stores doc at p and queues notifications. doc must not be
// referenced by the caller afterwards. b.mu must be held.
func (b *Backend) writeLocked(p string, doc map[string]interface{}) {
	b.docs[p] = doc
	b.notifyLocked(DocumentSnapshot{path: p, data: doc, exists: true})
}

// deleteLocked removes p and queues notifications. b.mu must be held.
func (b *Backend) deleteLocked(p string) {
	delete(b.docs, p)
	b.notifyLocked(DocumentSnapshot{path: p})
}

func (b *Backend) notifyLocked(snap DocumentSnapshot) {
	for _, s := range b.subs[snap.path] {
		s.push(snap)
	}
}

func validatePath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	for _, seg := range strings.Split(p, "/") {
		if strings.TrimSpace(seg) == "" {
			return fmt.Errorf("%w: empty segment in %q", ErrInvalidPath, p)
		}
	}
	return nil
}
