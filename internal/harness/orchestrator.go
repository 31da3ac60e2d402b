package harness

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"hans/internal/a11y"
	"hans/internal/backend"
	"hans/internal/fixtures"
	"hans/internal/perf"
	"hans/internal/sim"
	"hans/pkg/logging"
)

var (
	// ErrAlreadyRunning is returned when a run starts while another is in
	// progress on the same orchestrator.
	ErrAlreadyRunning = errors.New("a test suite is already running")
	// ErrPipelinePanic wraps a panic recovered from a category pipeline.
	ErrPipelinePanic = errors.New("pipeline panicked")
)

// DocumentStore is the backend surface used by integration tests.
type DocumentStore interface {
	Collection(path string) backend.CollectionRef
	Doc(path string) backend.DocumentRef
	OnSnapshot(path string, fn backend.SnapshotFunc) (unsubscribe func())
	Seed(docs map[string]map[string]interface{}) error
	TriggerRealtimeUpdate(path string, data map[string]interface{}) error
}

// PerformanceRunner measures metrics and keeps baselines.
type PerformanceRunner interface {
	RunComprehensiveTest(ctx context.Context, name string) (perf.Report, error)
	SetBaseline(name string, m perf.Metrics)
}

// AccessibilityRunner audits components.
type AccessibilityRunner interface {
	RunComprehensiveAccessibilityTest(ctx context.Context, components []string) (a11y.ComprehensiveReport, error)
}

// ScenarioSource builds fixture scenarios.
type ScenarioSource interface {
	Scenario(name string) (fixtures.Scenario, error)
}

// Dependencies are the collaborators an Orchestrator drives.
type Dependencies struct {
	Store         DocumentStore
	Performance   PerformanceRunner
	Accessibility AccessibilityRunner
	Scenarios     ScenarioSource
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock sets the clock used for simulated work and timestamps.
func WithClock(c sim.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithRand makes every category pipeline draw from r.
func WithRand(r sim.Rand) Option {
	return func(o *Orchestrator) {
		for _, c := range categoryOrder {
			o.rands[c] = r
		}
	}
}

// WithSeed gives each category pipeline its own generator derived from seed
// so concurrent pipelines do not interleave draws.
func WithSeed(seed uint64) Option {
	return func(o *Orchestrator) {
		for i, c := range categoryOrder {
			o.rands[c] = sim.NewRand(seed + uint64(i))
		}
	}
}

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(o *Orchestrator) { o.reporter = r }
}

// WithLogger sets the progress logger.
func WithLogger(l TestLogger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithRunID overrides the run ID generator.
func WithRunID(fn func() string) Option {
	return func(o *Orchestrator) { o.newRunID = fn }
}

// WithSyncWait bounds how long realtime integration flows wait for a
// listener notification.
func WithSyncWait(d time.Duration) Option {
	return func(o *Orchestrator) { o.syncWait = d }
}

// Orchestrator runs a SuiteConfig in three phases and aggregates the
// results into a SuiteResult.
type Orchestrator struct {
	deps     Dependencies
	clock    sim.Clock
	rands    map[Category]sim.Rand
	reporter Reporter
	logger   TestLogger
	newRunID func() string
	syncWait time.Duration

	mu        sync.Mutex
	running   bool
	state     State
	startTime time.Time
	results   []TestResult
}

// NewOrchestrator creates an orchestrator over deps.
func NewOrchestrator(deps Dependencies, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		deps:     deps,
		clock:    sim.RealClock{},
		rands:    make(map[Category]sim.Rand, len(categoryOrder)),
		reporter: NewQuietReporter(nil),
		logger:   NewSilentLogger(false, false),
		newRunID: uuid.NewString,
		syncWait: DefaultSyncWait,
		state:    StateIdle,
	}
	WithSeed(uint64(time.Now().UnixNano()))(o)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current pipeline state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Results returns a copy of the results recorded so far.
func (o *Orchestrator) Results() []TestResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]TestResult, len(o.results))
	copy(out, o.results)
	return out
}

// Reset clears recorded results and returns to the idle state.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = nil
	o.startTime = time.Time{}
	if !o.running {
		o.state = StateIdle
	}
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	logging.Debug("Harness", "state %s", s)
	if s != StateIdle {
		o.reporter.ReportPhase(s)
	}
}

func (o *Orchestrator) record(results []TestResult) {
	o.mu.Lock()
	o.results = append(o.results, results...)
	o.mu.Unlock()
}

// ExecuteTestSuite runs config and returns its final report. An invalid
// config is returned as an error. A harness fault during the run is not:
// the report then has State StateError and HarnessError set.
func (o *Orchestrator) ExecuteTestSuite(ctx context.Context, config SuiteConfig) (*SuiteResult, error) {
	if err := ValidateSuiteConfig(config); err != nil {
		return nil, err
	}

	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	o.running = true
	o.results = nil
	o.startTime = o.clock.Now()
	start := o.startTime
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	runID := o.newRunID()
	o.logger.Debug("🧪 Starting run %s with %d descriptors\n", runID, config.TotalDescriptors())
	o.reporter.ReportStart(config)

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	final, err := o.runPhases(ctx, config)

	var result SuiteResult
	if err != nil {
		o.logger.Error("💥 Run %s aborted: %v\n", runID, err)
		result = errorReport(runID, start, o.clock.Now(), err)
	} else {
		result = buildReport(runID, final, start, o.clock.Now(), o.Results())
	}
	o.setState(result.State)
	o.reporter.ReportSuiteResult(result)
	return &result, nil
}

// runPhases drives the state machine and returns the terminal state.
func (o *Orchestrator) runPhases(ctx context.Context, config SuiteConfig) (state State, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("orchestration panicked: %v", r)
		}
	}()

	o.setState(StateUnit)
	unit := o.runSequential(ctx, o.unitDescriptors(config.UnitTests))
	o.record(unit)
	if config.FailFast && anyFailed(unit) {
		o.logger.Info("⏹️  Fail fast: stopping after unit phase\n")
		return StateFailedFast, nil
	}

	o.setState(StateParallel)
	parallel, err := o.runParallel(ctx, [][]descriptor{
		o.integrationDescriptors(config.IntegrationTests),
		o.performanceDescriptors(config.PerformanceTests),
		o.accessibilityDescriptors(config.AccessibilityTests),
		o.securityDescriptors(config.SecurityTests),
	})
	if err != nil {
		return StateError, err
	}
	o.record(parallel)
	if config.FailFast && anyFailed(parallel) {
		o.logger.Info("⏹️  Fail fast: stopping after parallel phase\n")
		return StateFailedFast, nil
	}

	o.setState(StateE2E)
	o.record(o.runSequential(ctx, o.e2eDescriptors(config.E2ETests)))
	return StateCompleted, nil
}

// runParallel runs each pipeline in its own goroutine and concatenates the
// results in pipeline order. A panic in any pipeline fails the whole phase.
func (o *Orchestrator) runParallel(ctx context.Context, pipelines [][]descriptor) ([]TestResult, error) {
	lists := make([][]TestResult, len(pipelines))

	g, gctx := errgroup.WithContext(ctx)
	for i, ds := range pipelines {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: %v", ErrPipelinePanic, r)
				}
			}()
			lists[i] = o.runSequential(gctx, ds)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []TestResult
	for _, l := range lists {
		out = append(out, l...)
	}
	return out, nil
}

// descriptor is one runnable test.
type descriptor struct {
	name     string
	category Category
	timeout  time.Duration
	run      func(ctx context.Context) (Details, error)
}

// runSequential runs ds in order. Descriptors reached after ctx is done are
// skipped without running.
func (o *Orchestrator) runSequential(ctx context.Context, ds []descriptor) []TestResult {
	results := make([]TestResult, 0, len(ds))
	for _, d := range ds {
		var r TestResult
		if err := ctx.Err(); err != nil {
			r = TestResult{
				TestName: d.name,
				Category: d.category,
				Status:   StatusSkipped,
				Error:    fmt.Sprintf("not started: %v", err),
			}
		} else {
			r = o.runOne(ctx, d)
		}
		o.reporter.ReportTestResult(r)
		results = append(results, r)
	}
	return results
}

// runOne runs d under its own deadline and classifies the outcome.
func (o *Orchestrator) runOne(ctx context.Context, d descriptor) TestResult {
	o.logger.Debug("🔄 Running %s test: %s\n", d.category, d.name)

	dctx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := o.clock.Now()
	details, err := d.run(dctx)
	result := TestResult{
		TestName: d.name,
		Category: d.category,
		Status:   StatusPassed,
		Duration: sim.Since(o.clock, start),
		Details:  details,
	}

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		result.Status = StatusSkipped
		result.Error = fmt.Sprintf("cancelled: %v", err)
	case errors.Is(err, context.DeadlineExceeded):
		result.Status = StatusTimeout
		result.Error = fmt.Sprintf("timed out: %v", err)
	default:
		result.Status = StatusFailed
		result.Error = err.Error()
	}

	if result.Status != StatusPassed {
		o.logger.Debug("❌ %s test %s %s: %s\n", d.category, d.name, result.Status, result.Error)
	}
	return result
}

// anyFailed reports whether results contain a failure. Timeouts count.
func anyFailed(results []TestResult) bool {
	for _, r := range results {
		if r.Status == StatusFailed || r.Status == StatusTimeout {
			return true
		}
	}
	return false
}
