package perf

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"hans/internal/sim"
	"hans/pkg/logging"
)

var renderCosts = map[string]time.Duration{
	"HomeScreen":  45 * time.Millisecond,
	"Dashboard":   120 * time.Millisecond,
	"ProjectList": 80 * time.Millisecond,
	"IssueDetail": 60 * time.Millisecond,
	"Form":        35 * time.Millisecond,
	"Modal":       25 * time.Millisecond,
}

var interactionCosts = map[string]time.Duration{
	"tap":      16 * time.Millisecond,
	"scroll":   32 * time.Millisecond,
	"swipe":    24 * time.Millisecond,
	"type":     12 * time.Millisecond,
	"navigate": 150 * time.Millisecond,
}

const (
	defaultRenderCost      = 50 * time.Millisecond
	defaultInteractionCost = 50 * time.Millisecond
	startupBase            = 800 * time.Millisecond
	startupSpread          = 400 * time.Millisecond
	costJitter             = 0.1
)

// RenderCost returns the simulated render cost of a component before jitter.
func RenderCost(component string) time.Duration {
	if d, ok := renderCosts[component]; ok {
		return d
	}
	return defaultRenderCost
}

// InteractionCost returns the simulated cost of an interaction kind before
// jitter.
func InteractionCost(kind string) time.Duration {
	if d, ok := interactionCosts[strings.ToLower(kind)]; ok {
		return d
	}
	return defaultInteractionCost
}

// Option configures a Probe.
type Option func(*Probe)

// WithClock sets the clock that simulated costs are paid on.
func WithClock(c sim.Clock) Option {
	return func(p *Probe) { p.clock = c }
}

// WithRand sets the random source for jitter and sampled metrics.
func WithRand(r sim.Rand) Option {
	return func(p *Probe) { p.rnd = r }
}

// WithLoadConcurrency bounds the number of concurrent sessions in
// SimulateHighLoad. Zero or less means unbounded.
func WithLoadConcurrency(n int) Option {
	return func(p *Probe) { p.loadConcurrency = n }
}

// Probe produces simulated performance metrics and keeps baselines per test
// name. It is safe for concurrent use.
type Probe struct {
	clock           sim.Clock
	rnd             sim.Rand
	loadConcurrency int

	mu        sync.RWMutex
	baselines map[string]Baseline
}

// NewProbe creates a Probe with no baselines.
func NewProbe(opts ...Option) *Probe {
	p := &Probe{
		clock:           sim.RealClock{},
		rnd:             sim.NewRand(uint64(time.Now().UnixNano())),
		loadConcurrency: 64,
		baselines:       make(map[string]Baseline),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Probe) timed(ctx context.Context, cost time.Duration) (time.Duration, error) {
	start := p.clock.Now()
	if err := p.clock.Sleep(ctx, cost); err != nil {
		return 0, err
	}
	return sim.Since(p.clock, start), nil
}

// MeasureStartupTime simulates an application cold start.
func (p *Probe) MeasureStartupTime(ctx context.Context) (time.Duration, error) {
	cost := startupBase + time.Duration(p.rnd.Float64()*float64(startupSpread))
	return p.timed(ctx, cost)
}

// MeasureRenderTime simulates rendering the named component.
func (p *Probe) MeasureRenderTime(ctx context.Context, component string) (time.Duration, error) {
	return p.timed(ctx, sim.Jitter(p.rnd, RenderCost(component), costJitter))
}

// MeasureInteractionTime simulates one user interaction of the given kind.
func (p *Probe) MeasureInteractionTime(ctx context.Context, kind string) (time.Duration, error) {
	return p.timed(ctx, sim.Jitter(p.rnd, InteractionCost(kind), costJitter))
}

// MeasureMemoryUsage samples a memory profile. Peak lies in [120,180) MB,
// initial in [80,120) MB and leaks are flagged 10% of the time.
func (p *Probe) MeasureMemoryUsage() MemoryUsage {
	initial := sim.Between(p.rnd, 80, 120)
	peak := sim.Between(p.rnd, 120, 180)
	return MemoryUsage{
		Initial: initial,
		Peak:    peak,
		Average: sim.Between(p.rnd, initial, peak),
		Leaks:   sim.Chance(p.rnd, 0.1),
	}
}

// MeasureBatteryUsage samples an energy profile with a drain of 2 to 10 %/h.
func (p *Probe) MeasureBatteryUsage() BatteryUsage {
	return BatteryUsage{
		DrainRate:       sim.Between(p.rnd, 2, 10),
		CPUUsage:        sim.Between(p.rnd, 10, 40),
		BackgroundUsage: sim.Between(p.rnd, 0, 5),
	}
}

// MeasureNetworkUsage samples a traffic profile.
func (p *Probe) MeasureNetworkUsage() NetworkUsage {
	return NetworkUsage{
		Requests:            10 + p.rnd.IntN(41),
		BytesTransferred:    int64(50_000 + p.rnd.IntN(450_001)),
		AverageResponseTime: time.Duration(sim.Between(p.rnd, 100, 500) * float64(time.Millisecond)),
		FailedRequests:      p.rnd.IntN(3),
	}
}

// CollectMetrics runs every measurer once. The render measurement uses
// component and the interaction measurement is a tap.
func (p *Probe) CollectMetrics(ctx context.Context, component string) (Metrics, error) {
	startup, err := p.MeasureStartupTime(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("measuring startup: %w", err)
	}
	render, err := p.MeasureRenderTime(ctx, component)
	if err != nil {
		return Metrics{}, fmt.Errorf("measuring render of %s: %w", component, err)
	}
	interaction, err := p.MeasureInteractionTime(ctx, "tap")
	if err != nil {
		return Metrics{}, fmt.Errorf("measuring interaction: %w", err)
	}

	return Metrics{
		StartupTime:     startup,
		RenderTime:      render,
		InteractionTime: interaction,
		Memory:          p.MeasureMemoryUsage(),
		Battery:         p.MeasureBatteryUsage(),
		Network:         p.MeasureNetworkUsage(),
		Timestamp:       p.clock.Now(),
	}, nil
}

// RunComprehensiveTest measures everything for name, compares the result
// with the stored baseline for name if there is one, and checks alert
// thresholds.
func (p *Probe) RunComprehensiveTest(ctx context.Context, name string) (Report, error) {
	metrics, err := p.CollectMetrics(ctx, name)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		TestName:  name,
		Timestamp: metrics.Timestamp,
		Metrics:   metrics,
		Alerts:    CheckPerformanceThresholds(metrics),
	}
	if baseline, ok := p.GetBaseline(name); ok {
		cmp := CompareWithBaseline(metrics, baseline)
		report.Baseline = &baseline
		report.Comparison = &cmp
	}
	report.Summary = summarize(report)

	logging.Debug("Perf", "%s: %s", name, report.Summary)
	return report, nil
}

func summarize(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "startup %dms, render %dms, peak memory %.1fMB, battery %.1f%%/h",
		r.Metrics.StartupTime.Milliseconds(), r.Metrics.RenderTime.Milliseconds(),
		r.Metrics.Memory.Peak, r.Metrics.Battery.DrainRate)
	if r.Metrics.Memory.Leaks {
		b.WriteString(", memory leak suspected")
	}
	if r.Comparison == nil {
		b.WriteString("; no baseline")
	} else {
		fmt.Fprintf(&b, "; %d regression(s), %d improvement(s)",
			len(r.Comparison.Regressions), len(r.Comparison.Improvements))
	}
	fmt.Fprintf(&b, "; %d alert(s)", len(r.Alerts))
	return b.String()
}

// SetBaseline stores the baseline for name derived from m.
func (p *Probe) SetBaseline(name string, m Metrics) {
	p.mu.Lock()
	p.baselines[name] = BaselineFromMetrics(m)
	p.mu.Unlock()
	logging.Debug("Perf", "Baseline recorded for %s", name)
}

// GetBaseline returns the stored baseline for name.
func (p *Probe) GetBaseline(name string) (Baseline, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	b, ok := p.baselines[name]
	return b, ok
}

// Reset removes all baselines.
func (p *Probe) Reset() {
	p.mu.Lock()
	p.baselines = make(map[string]Baseline)
	p.mu.Unlock()
}
