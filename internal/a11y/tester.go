package a11y

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"hans/internal/sim"
	"hans/pkg/logging"
)

// HistorySize is the number of reports kept per component.
const HistorySize = 5

// auditCost is the simulated time spent on one audit.
const auditCost = 20 * time.Millisecond

// Option configures a Tester.
type Option func(*Tester)

// WithClock sets the clock used for audit timing and timestamps.
func WithClock(c sim.Clock) Option {
	return func(t *Tester) { t.clock = c }
}

// WithRand sets the random source for violation injection.
func WithRand(r sim.Rand) Option {
	return func(t *Tester) { t.rnd = r }
}

// Tester runs audits and keeps a bounded history per component. It is safe
// for concurrent use.
type Tester struct {
	clock sim.Clock
	rnd   sim.Rand

	mu      sync.RWMutex
	history map[string][]Report
}

// NewTester creates a Tester with empty history.
func NewTester(opts ...Option) *Tester {
	t := &Tester{
		clock:   sim.RealClock{},
		rnd:     sim.NewRand(uint64(time.Now().UnixNano())),
		history: make(map[string][]Report),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ValidateKeyboardNavigation runs the keyboard checks for component.
func (t *Tester) ValidateKeyboardNavigation(component string) CheckResult {
	return keyboardChecks(t.rnd, component)
}

// ValidateScreenReaderSupport runs the screen reader checks for component.
func (t *Tester) ValidateScreenReaderSupport(component string) CheckResult {
	return screenReaderChecks(t.rnd, component)
}

// RunAccessibilityAudit runs every check against component, scores the
// result and records it in the history.
func (t *Tester) RunAccessibilityAudit(ctx context.Context, component string) (Report, error) {
	if err := t.clock.Sleep(ctx, auditCost); err != nil {
		return Report{}, err
	}

	var all CheckResult
	all.merge(contrastChecks())
	all.merge(touchTargetChecks(component))
	all.merge(t.ValidateKeyboardNavigation(component))
	all.merge(t.ValidateScreenReaderSupport(component))

	report := Report{
		TestName:     component,
		Timestamp:    t.clock.Now(),
		Violations:   nonNil(all.Violations),
		Warnings:     nonNil(all.Warnings),
		PassedChecks: nonNil(all.Passed),
	}
	total := len(report.Violations) + len(report.Warnings) + len(report.PassedChecks)
	if total > 0 {
		report.OverallScore = float64(len(report.PassedChecks)) / float64(total) * 100
	}
	report.WCAGLevel = conformance(report)
	report.Summary = fmt.Sprintf("%s scored %.1f (%s): %d violation(s), %d warning(s), %d passed",
		component, report.OverallScore, report.WCAGLevel,
		len(report.Violations), len(report.Warnings), len(report.PassedChecks))

	t.record(report)
	logging.Debug("A11y", "%s", report.Summary)
	return report, nil
}

// conformance maps a report to a WCAG level. Any critical violation is
// non-compliant; otherwise AA needs a score of 90 and A a score of 75.
func conformance(r Report) string {
	for _, v := range r.Violations {
		if v.Impact == ImpactCritical {
			return LevelNonCompliant
		}
	}
	switch {
	case r.OverallScore >= 90:
		return LevelAA
	case r.OverallScore >= 75:
		return LevelA
	default:
		return LevelNonCompliant
	}
}

// RunComprehensiveAccessibilityTest audits every component concurrently.
// Reports keep the order of components.
func (t *Tester) RunComprehensiveAccessibilityTest(ctx context.Context, components []string) (ComprehensiveReport, error) {
	reports := make([]Report, len(components))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range components {
		g.Go(func() error {
			r, err := t.RunAccessibilityAudit(gctx, name)
			if err != nil {
				return fmt.Errorf("auditing %s: %w", name, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ComprehensiveReport{}, err
	}

	out := ComprehensiveReport{Reports: reports}
	for _, r := range reports {
		out.AverageScore += r.OverallScore
		out.TotalViolations += len(r.Violations)
		out.TotalWarnings += len(r.Warnings)
	}
	if len(reports) > 0 {
		out.AverageScore /= float64(len(reports))
	}
	return out, nil
}

func (t *Tester) record(r Report) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := append(t.history[r.TestName], r)
	if len(h) > HistorySize {
		h = append([]Report(nil), h[len(h)-HistorySize:]...)
	}
	t.history[r.TestName] = h
}

// GetTestHistory returns up to HistorySize reports for component, oldest
// first.
func (t *Tester) GetTestHistory(component string) []Report {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Report(nil), t.history[component]...)
}

// Reset clears all history.
func (t *Tester) Reset() {
	t.mu.Lock()
	t.history = make(map[string][]Report)
	t.mu.Unlock()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
