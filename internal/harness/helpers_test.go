package harness

import (
	"testing"
	"time"

	"hans/internal/a11y"
	"hans/internal/backend"
	"hans/internal/fixtures"
	"hans/internal/perf"
	"hans/internal/sim"
)

var testStart = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type testRig struct {
	orch     *Orchestrator
	store    *backend.Backend
	probe    *perf.Probe
	tester   *a11y.Tester
	factory  *fixtures.Factory
	reporter StructuredReporter
	clock    sim.Clock
}

// newTestRig wires an orchestrator to real collaborators on a mock clock.
// Every pipeline draws from r.
func newTestRig(t *testing.T, r sim.Rand, opts ...Option) *testRig {
	t.Helper()
	return newTestRigWithClock(t, sim.NewMockClock(testStart), r, opts...)
}

func newTestRigWithClock(t *testing.T, clock sim.Clock, r sim.Rand, opts ...Option) *testRig {
	t.Helper()
	rig := &testRig{
		store:    backend.New(backend.WithClock(clock), backend.WithRand(sim.NewSequenceRand(0.99))),
		probe:    perf.NewProbe(perf.WithClock(clock), perf.WithRand(sim.NewSequenceRand(0.5))),
		tester:   a11y.NewTester(a11y.WithClock(clock), a11y.WithRand(sim.NewSequenceRand(0.99))),
		factory:  fixtures.NewFactory(fixtures.WithClock(clock), fixtures.WithRand(sim.NewSequenceRand(0.5))),
		reporter: NewStructuredReporter(),
		clock:    clock,
	}
	t.Cleanup(rig.store.Close)

	all := append([]Option{
		WithClock(clock),
		WithRand(r),
		WithReporter(rig.reporter),
		WithRunID(func() string { return "run-test" }),
	}, opts...)
	rig.orch = NewOrchestrator(Dependencies{
		Store:         rig.store,
		Performance:   rig.probe,
		Accessibility: rig.tester,
		Scenarios:     rig.factory,
	}, all...)
	return rig
}

func statuses(results []TestResult) []Status {
	out := make([]Status, len(results))
	for i, r := range results {
		out[i] = r.Status
	}
	return out
}

func names(results []TestResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.TestName
	}
	return out
}
