// Package perf simulates application performance measurements and classifies
// them against stored baselines and fixed alert thresholds.
//
// Measured costs are table lookups with jitter, paid as sleeps on the
// injected clock so that the elapsed time seen by callers matches the
// simulated cost. The regression and alert thresholds in this package are
// fixed policy; callers and reports depend on their exact values.
package perf
