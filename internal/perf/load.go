package perf

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"hans/internal/sim"
	"hans/pkg/logging"
)

const (
	sessionFailureRate   = 0.05
	memoryPressurePerUse = 0.002
)

// SimulateHighLoad starts users concurrent sessions and waits for all of them.
// A session is a tap followed by a Dashboard render and fails with a fixed 5%
// probability independent of the others. Throughput is successful sessions
// per elapsed second.
func (p *Probe) SimulateHighLoad(ctx context.Context, users int) (LoadResult, error) {
	if users < 0 {
		return LoadResult{}, fmt.Errorf("user count must not be negative, got %d", users)
	}
	result := LoadResult{
		Users:          users,
		MemoryPressure: math.Min(1, float64(users)*memoryPressurePerUse),
	}
	if users == 0 {
		return result, nil
	}

	var (
		mu        sync.Mutex
		responses stats.Float64Data
		failures  int
	)

	start := p.clock.Now()
	g, gctx := errgroup.WithContext(ctx)
	if p.loadConcurrency > 0 {
		g.SetLimit(p.loadConcurrency)
	}
	for i := 0; i < users; i++ {
		g.Go(func() error {
			elapsed, err := p.session(gctx)
			if err != nil {
				return err
			}
			failed := sim.Chance(p.rnd, sessionFailureRate)

			mu.Lock()
			defer mu.Unlock()
			if failed {
				failures++
				return nil
			}
			responses = append(responses, float64(elapsed))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return LoadResult{}, fmt.Errorf("high load simulation: %w", err)
	}
	elapsed := sim.Since(p.clock, start)

	if mean, err := stats.Mean(responses); err == nil {
		result.AverageResponseTime = time.Duration(mean)
	}
	result.ErrorRate = float64(failures) / float64(users)
	if elapsed > 0 {
		result.Throughput = float64(len(responses)) / elapsed.Seconds()
	}

	logging.Debug("Perf", "High load with %d users: avg=%s errors=%.2f throughput=%.1f/s",
		users, result.AverageResponseTime, result.ErrorRate, result.Throughput)
	return result, nil
}

func (p *Probe) session(ctx context.Context) (time.Duration, error) {
	tap, err := p.MeasureInteractionTime(ctx, "tap")
	if err != nil {
		return 0, err
	}
	render, err := p.MeasureRenderTime(ctx, "Dashboard")
	if err != nil {
		return 0, err
	}
	return tap + render, nil
}
