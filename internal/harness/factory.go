package harness

import (
	"io"
	"os"
	"time"

	"hans/internal/a11y"
	"hans/internal/backend"
	"hans/internal/fixtures"
	"hans/internal/perf"
	"hans/internal/sim"
)

// FrameworkOptions configures NewFramework.
type FrameworkOptions struct {
	Mode    ExecutionMode
	Verbose bool
	Debug   bool
	// Output selects the CLI reporter: text, json or quiet. Empty is text.
	Output string
	// ReportPath is a directory the CLI reporter saves JSON reports to.
	ReportPath string
	// Seed makes runs reproducible. Zero seeds from the current time.
	Seed uint64
	// Clock defaults to the wall clock.
	Clock sim.Clock
	// Stdout and Stderr default to the process streams in CLI mode.
	Stdout io.Writer
	Stderr io.Writer
}

// Framework holds all components needed for a run
type Framework struct {
	Orchestrator  *Orchestrator
	Backend       *backend.Backend
	Performance   *perf.Probe
	Accessibility *a11y.Tester
	Fixtures      *fixtures.Factory
	Reporter      Reporter
	Logger        TestLogger
	Loader        *ConfigLoader
}

// NewFramework creates a fully wired framework for a CLI run.
func NewFramework(verbose, debug bool) *Framework {
	return NewFrameworkWithOptions(FrameworkOptions{Mode: ExecutionModeCLI, Verbose: verbose, Debug: debug})
}

// NewFrameworkWithOptions creates a fully configured framework
//
// Execution Modes:
//   - ExecutionModeCLI: reports to stdout according to Output
//   - ExecutionModeMCPServer: uses structured reporting that captures data
//     without stdio output to avoid contaminating the MCP protocol stream.
//     Results can be retrieved programmatically.
func NewFrameworkWithOptions(opts FrameworkOptions) *Framework {
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	clock := opts.Clock
	if clock == nil {
		clock = sim.RealClock{}
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	var logger TestLogger
	var reporter Reporter
	switch opts.Mode {
	case ExecutionModeMCPServer:
		logger = NewSilentLogger(opts.Verbose, opts.Debug)
		reporter = NewStructuredReporter()
	default:
		logger = NewWriterLogger(stdout, stderr, opts.Verbose, opts.Debug)
		switch opts.Output {
		case "json":
			reporter = NewJSONReporter(stdout)
		case "quiet":
			reporter = NewQuietReporter(stdout)
		default:
			reporter = NewConsoleReporter(stdout, opts.Verbose, opts.Debug, opts.ReportPath)
		}
	}

	// Collaborators draw from separate generators so phase 2 pipelines do
	// not contend for one stream.
	store := backend.New(backend.WithClock(clock), backend.WithRand(sim.NewRand(seed^0x5eed0001)))
	probe := perf.NewProbe(perf.WithClock(clock), perf.WithRand(sim.NewRand(seed^0x5eed0002)))
	tester := a11y.NewTester(a11y.WithClock(clock), a11y.WithRand(sim.NewRand(seed^0x5eed0003)))
	factory := fixtures.NewFactory(fixtures.WithClock(clock), fixtures.WithRand(sim.NewRand(seed^0x5eed0004)))

	orch := NewOrchestrator(
		Dependencies{
			Store:         store,
			Performance:   probe,
			Accessibility: tester,
			Scenarios:     factory,
		},
		WithClock(clock),
		WithSeed(seed),
		WithReporter(reporter),
		WithLogger(logger),
	)

	return &Framework{
		Orchestrator:  orch,
		Backend:       store,
		Performance:   probe,
		Accessibility: tester,
		Fixtures:      factory,
		Reporter:      reporter,
		Logger:        logger,
		Loader:        NewConfigLoader(logger),
	}
}

// Reset clears state held by every component.
func (f *Framework) Reset() {
	f.Orchestrator.Reset()
	f.Backend.Reset()
	f.Performance.Reset()
	f.Accessibility.Reset()
	f.Fixtures.Reset()
}

// Close releases backend listeners.
func (f *Framework) Close() {
	f.Backend.Close()
}

// StructuredReporter returns the framework's reporter when it captures
// results, as it does in MCP server mode.
func (f *Framework) StructuredReporter() (StructuredReporter, bool) {
	r, ok := f.Reporter.(StructuredReporter)
	return r, ok
}
