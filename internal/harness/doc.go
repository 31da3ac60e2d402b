// Package harness runs test suites against the simulated app stack.
//
// A SuiteConfig lists descriptors in six categories. The Orchestrator runs
// them in three phases:
//
//	                ┌─────────────────┐
//	                │   SuiteConfig   │ (preset, YAML file or code)
//	                └────────┬────────┘
//	                         │
//	                ┌────────▼────────┐
//	                │ Phase 1: unit   │ sequential
//	                └────────┬────────┘
//	                         │
//	   ┌────────────┬────────┴───────┬───────────────┐
//	   │            │                │               │
//	┌──▼────────┐ ┌─▼──────────┐ ┌───▼──────────┐ ┌──▼───────┐
//	│integration│ │performance │ │accessibility │ │ security │  phase 2
//	└──┬────────┘ └─┬──────────┘ └───┬──────────┘ └──┬───────┘
//	   └────────────┴────────┬───────┴───────────────┘
//	                         │
//	                ┌────────▼────────┐
//	                │ Phase 3: e2e    │ sequential
//	                └────────┬────────┘
//	                         │
//	                ┌────────▼────────┐
//	                │   SuiteResult   │
//	                └─────────────────┘
//
// Each descriptor produces exactly one TestResult. Failures are recorded and
// the run continues unless FailFast is set, in which case the run stops after
// the first phase containing a failed or timed out result. A descriptor that
// exceeds its own Timeout is recorded as timed out; descriptors not started
// before the suite Timeout are recorded as skipped.
//
// A fault in the harness itself, such as a panic in a phase 2 pipeline,
// ends the run with an error report instead of a partial one.
//
// # Execution modes
//
// NewFrameworkWithOptions wires the orchestrator to a backend.Backend, a
// perf.Probe, an a11y.Tester and a fixtures.Factory. In ExecutionModeCLI
// progress goes to the console; in ExecutionModeMCPServer a structured
// reporter captures results so nothing is written to stdio.
package harness
