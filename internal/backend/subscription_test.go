package backend

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	snaps []DocumentSnapshot
	ch    chan struct{}
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan struct{}, 128)}
}

func (r *recorder) fn(s DocumentSnapshot) {
	r.mu.Lock()
	r.snaps = append(r.snaps, s)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *recorder) waitFor(t *testing.T, n int) []DocumentSnapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		r.mu.Lock()
		got := len(r.snaps)
		r.mu.Unlock()
		if got >= n {
			break
		}
		select {
		case <-r.ch:
		case <-deadline:
			t.Fatalf("timed out waiting for %d notifications, got %d", n, got)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DocumentSnapshot(nil), r.snaps...)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func TestOnSnapshotReplaysCurrentValue(t *testing.T) {
	b, _ := newTestBackend(t)
	require.NoError(t, b.Doc("docs/readme").Set(context.Background(), map[string]interface{}{"v": 1}))

	rec := newRecorder()
	unsubscribe := b.OnSnapshot("docs/readme", rec.fn)
	defer unsubscribe()

	snaps := rec.waitFor(t, 1)
	assert.True(t, snaps[0].Exists())
	assert.Equal(t, 1, snaps[0].Data()["v"])
}

func TestOnSnapshotNoReplayForMissingDocument(t *testing.T) {
	b, _ := newTestBackend(t)

	rec := newRecorder()
	unsubscribe := b.OnSnapshot("docs/none", rec.fn)
	defer unsubscribe()

	require.NoError(t, b.Doc("docs/none").Set(context.Background(), map[string]interface{}{"v": "first"}))
	snaps := rec.waitFor(t, 1)
	assert.Equal(t, "first", snaps[0].Data()["v"])
}

func TestDeliveryOrderPerPath(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()
	doc := b.Doc("counters/c1")

	rec := newRecorder()
	unsubscribe := doc.OnSnapshot(rec.fn)
	defer unsubscribe()

	const writes = 50
	for i := 0; i < writes; i++ {
		require.NoError(t, doc.Set(ctx, map[string]interface{}{"n": i}))
	}
	require.NoError(t, doc.Delete(ctx))

	snaps := rec.waitFor(t, writes+1)
	for i := 0; i < writes; i++ {
		assert.Equal(t, i, snaps[i].Data()["n"])
	}
	assert.False(t, snaps[writes].Exists())
}

func TestListenersOnlyReceiveTheirPath(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	a := newRecorder()
	other := newRecorder()
	defer b.OnSnapshot("p/a", a.fn)()
	defer b.OnSnapshot("p/b", other.fn)()

	require.NoError(t, b.Doc("p/a").Set(ctx, map[string]interface{}{"x": 1}))
	require.NoError(t, b.Doc("p/a/child").Set(ctx, map[string]interface{}{"x": 2}))
	a.waitFor(t, 1)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, a.count())
	assert.Equal(t, 0, other.count())
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	rec := newRecorder()
	keep := newRecorder()
	unsubscribe := b.OnSnapshot("x/y", rec.fn)
	defer b.OnSnapshot("x/y", keep.fn)()
	assert.Equal(t, 2, b.ListenerCount("x/y"))

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 1, b.ListenerCount("x/y"))

	require.NoError(t, b.Doc("x/y").Set(ctx, map[string]interface{}{"v": 1}))
	keep.waitFor(t, 1)
	assert.Equal(t, 0, rec.count())
}

func TestTriggerRealtimeUpdate(t *testing.T) {
	b, clock := newTestBackend(t)
	b.SimulateOffline()

	rec := newRecorder()
	defer b.OnSnapshot("rooms/r1", rec.fn)()

	require.NoError(t, b.TriggerRealtimeUpdate("rooms/r1", map[string]interface{}{"topic": "release"}))
	snaps := rec.waitFor(t, 1)
	assert.Equal(t, "release", snaps[0].Data()["topic"])
	assert.Zero(t, clock.Slept())

	assert.ErrorIs(t, b.TriggerRealtimeUpdate("", nil), ErrInvalidPath)
}

func TestSimulateConflictLastWriteWins(t *testing.T) {
	b, clock := newTestBackend(t)
	ctx := context.Background()

	rec := newRecorder()
	defer b.OnSnapshot("docs/shared", rec.fn)()

	start := clock.Now()
	err := b.SimulateConflict(ctx, "docs/shared",
		map[string]interface{}{"editor": "alice"},
		map[string]interface{}{"editor": "bob"})
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, clock.Now().Sub(start))

	snaps := rec.waitFor(t, 2)
	assert.Equal(t, "alice", snaps[0].Data()["editor"])
	assert.Equal(t, "bob", snaps[1].Data()["editor"])

	final, err := b.Doc("docs/shared").Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", final.Data()["editor"])
}

func TestCloseStopsDelivery(t *testing.T) {
	b := New()
	rec := newRecorder()
	unsubscribe := b.OnSnapshot("a/b", rec.fn)

	b.Close()
	unsubscribe()

	late := b.OnSnapshot("a/b", rec.fn)
	late()
	assert.Equal(t, 0, b.ListenerCount("a/b"))
}

func TestConcurrentWriters(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_, err := b.Collection("writes").Add(ctx, map[string]interface{}{"w": w, "i": i})
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	snaps, err := b.Collection("writes").Get(ctx)
	require.NoError(t, err)
	assert.Len(t, snaps, 200)
}
