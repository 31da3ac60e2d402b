package harness

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"hans/internal/fixtures"
	"hans/internal/sim"
)

// Simulated costs and failure rates.
const (
	unitJitter          = 0.2
	unitFailureRate     = 0.05
	unitCoverageLow     = 85.0
	unitCoverageHigh    = 95.0
	e2eStepCost         = 100 * time.Millisecond
	e2eStepFailureRate  = 0.02
	authFailureRate     = 0.02
	navigationStepCost  = 100 * time.Millisecond
	featureRenderCost   = 150 * time.Millisecond

	// DefaultSyncWait bounds the wait for a realtime notification.
	DefaultSyncWait = time.Second
)

var unitCosts = map[UnitType]time.Duration{
	UnitComponent: 40 * time.Millisecond,
	UnitHook:      25 * time.Millisecond,
	UnitUtility:   10 * time.Millisecond,
	UnitService:   60 * time.Millisecond,
}

var securityCosts = map[SecurityCheck]time.Duration{
	SecurityAuthentication: 200 * time.Millisecond,
	SecurityAuthorization:  150 * time.Millisecond,
	SecurityDataProtection: 300 * time.Millisecond,
	SecurityFileUpload:     250 * time.Millisecond,
}

var securityChecks = map[SecurityCheck][]string{
	SecurityAuthentication: {"password policy", "session expiry", "token refresh", "logout invalidation"},
	SecurityAuthorization:  {"role enforcement", "group membership", "document ownership"},
	SecurityDataProtection: {"encryption at rest", "transport security", "PII redaction", "secure storage"},
	SecurityFileUpload:     {"file type allowlist", "size limit", "content scanning"},
}

var navigationScreens = []string{"Home", "Group", "Detail"}

func (o *Orchestrator) rand(c Category) sim.Rand {
	return o.rands[c]
}

func (o *Orchestrator) unitDescriptors(cfgs []UnitTestConfig) []descriptor {
	ds := make([]descriptor, len(cfgs))
	for i, cfg := range cfgs {
		ds[i] = descriptor{
			name:     cfg.Name,
			category: CategoryUnit,
			timeout:  cfg.Timeout,
			run:      func(ctx context.Context) (Details, error) { return o.runUnit(ctx, cfg) },
		}
	}
	return ds
}

func (o *Orchestrator) runUnit(ctx context.Context, cfg UnitTestConfig) (Details, error) {
	r := o.rand(CategoryUnit)
	cost, ok := unitCosts[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("%w: unit type must be one of component, hook, utility, service; got %q", ErrInvalidDescriptor, cfg.Type)
	}
	if cfg.Component == "" {
		return nil, fmt.Errorf("%w: unit component is required", ErrInvalidDescriptor)
	}
	if err := o.clock.Sleep(ctx, sim.Jitter(r, cost, unitJitter)); err != nil {
		return nil, err
	}

	details := &UnitDetails{
		Component:  cfg.Component,
		Type:       cfg.Type,
		Coverage:   sim.Between(r, unitCoverageLow, unitCoverageHigh),
		Assertions: 3 + r.IntN(8),
	}
	if sim.Chance(r, unitFailureRate) {
		return details, fmt.Errorf("assertion failed in %s", cfg.Component)
	}
	return details, nil
}

func (o *Orchestrator) integrationDescriptors(cfgs []IntegrationTestConfig) []descriptor {
	ds := make([]descriptor, len(cfgs))
	for i, cfg := range cfgs {
		ds[i] = descriptor{
			name:     cfg.Name,
			category: CategoryIntegration,
			timeout:  cfg.Timeout,
			run:      func(ctx context.Context) (Details, error) { return o.runIntegration(ctx, cfg) },
		}
	}
	return ds
}

func (o *Orchestrator) performanceDescriptors(cfgs []PerformanceTestConfig) []descriptor {
	ds := make([]descriptor, len(cfgs))
	for i, cfg := range cfgs {
		ds[i] = descriptor{
			name:     cfg.Name,
			category: CategoryPerformance,
			timeout:  cfg.Timeout,
			run:      func(ctx context.Context) (Details, error) { return o.runPerformance(ctx, cfg) },
		}
	}
	return ds
}

// runPerformance measures metrics and checks them against the descriptor's
// thresholds. A flagged baseline is stored whether or not thresholds hold.
func (o *Orchestrator) runPerformance(ctx context.Context, cfg PerformanceTestConfig) (Details, error) {
	for key, v := range cfg.Thresholds {
		if key != ThresholdStartupTime && key != ThresholdAverageMemory {
			o.logger.Debug("⚠️  Ignoring unknown threshold %q in %s\n", key, cfg.Name)
			continue
		}
		if v <= 0 {
			return nil, fmt.Errorf("%w: threshold %s must be positive, got %g", ErrInvalidDescriptor, key, v)
		}
	}

	report, err := o.deps.Performance.RunComprehensiveTest(ctx, cfg.Name)
	if err != nil {
		return nil, err
	}
	details := &PerformanceDetails{Report: report}

	if limit, ok := cfg.Thresholds[ThresholdStartupTime]; ok {
		if ms := millis(report.Metrics.StartupTime); ms > limit {
			details.ThresholdFailures = append(details.ThresholdFailures,
				fmt.Sprintf("%s %.0fms exceeds %.0fms", ThresholdStartupTime, ms, limit))
		}
	}
	if limit, ok := cfg.Thresholds[ThresholdAverageMemory]; ok {
		if avg := report.Metrics.Memory.Average; avg > limit {
			details.ThresholdFailures = append(details.ThresholdFailures,
				fmt.Sprintf("%s %.1fMB exceeds %.1fMB", ThresholdAverageMemory, avg, limit))
		}
	}

	if cfg.Baseline {
		o.deps.Performance.SetBaseline(cfg.Name, report.Metrics)
		details.BaselineRecorded = true
	}

	if len(details.ThresholdFailures) > 0 {
		return details, fmt.Errorf("performance thresholds exceeded: %v", details.ThresholdFailures)
	}
	return details, nil
}

func (o *Orchestrator) accessibilityDescriptors(cfgs []AccessibilityTestConfig) []descriptor {
	ds := make([]descriptor, len(cfgs))
	for i, cfg := range cfgs {
		ds[i] = descriptor{
			name:     cfg.Name,
			category: CategoryAccessibility,
			timeout:  cfg.Timeout,
			run:      func(ctx context.Context) (Details, error) { return o.runAccessibility(ctx, cfg) },
		}
	}
	return ds
}

func (o *Orchestrator) runAccessibility(ctx context.Context, cfg AccessibilityTestConfig) (Details, error) {
	if len(cfg.Components) == 0 {
		return nil, fmt.Errorf("%w: accessibility test must list at least one component", ErrInvalidDescriptor)
	}
	report, err := o.deps.Accessibility.RunComprehensiveAccessibilityTest(ctx, cfg.Components)
	if err != nil {
		return nil, err
	}
	details := &AccessibilityDetails{Report: report, PassScore: AccessibilityPassScore}
	if report.AverageScore < AccessibilityPassScore {
		return details, fmt.Errorf("accessibility score %.1f is below %.0f", report.AverageScore, AccessibilityPassScore)
	}
	return details, nil
}

func (o *Orchestrator) securityDescriptors(cfgs []SecurityTestConfig) []descriptor {
	ds := make([]descriptor, len(cfgs))
	for i, cfg := range cfgs {
		ds[i] = descriptor{
			name:     cfg.Name,
			category: CategorySecurity,
			timeout:  cfg.Timeout,
			run:      func(ctx context.Context) (Details, error) { return o.runSecurity(ctx, cfg) },
		}
	}
	return ds
}

// runSecurity simulates a security check. Only authentication checks can
// uncover a vulnerability.
func (o *Orchestrator) runSecurity(ctx context.Context, cfg SecurityTestConfig) (Details, error) {
	cost, ok := securityCosts[cfg.Category]
	if !ok {
		return nil, fmt.Errorf("%w: security category must be one of authentication, authorization, data_protection, file_upload; got %q",
			ErrInvalidDescriptor, cfg.Category)
	}
	if err := o.clock.Sleep(ctx, cost); err != nil {
		return nil, err
	}

	details := &SecurityDetails{
		Check:           cfg.Category,
		ChecksRun:       append([]string{}, securityChecks[cfg.Category]...),
		Vulnerabilities: []string{},
	}
	if cfg.Category == SecurityAuthentication && sim.Chance(o.rand(CategorySecurity), authFailureRate) {
		details.Vulnerabilities = append(details.Vulnerabilities, "session token survives logout")
		return details, errors.New("authentication vulnerability: session token survives logout")
	}
	return details, nil
}

func (o *Orchestrator) e2eDescriptors(cfgs []E2ETestConfig) []descriptor {
	ds := make([]descriptor, len(cfgs))
	for i, cfg := range cfgs {
		ds[i] = descriptor{
			name:     cfg.Name,
			category: CategoryE2E,
			timeout:  cfg.Timeout,
			run:      func(ctx context.Context) (Details, error) { return o.runE2E(ctx, cfg) },
		}
	}
	return ds
}

// runE2E walks the flow's steps; each step may fail independently.
func (o *Orchestrator) runE2E(ctx context.Context, cfg E2ETestConfig) (Details, error) {
	if cfg.Flow == "" {
		return nil, fmt.Errorf("%w: e2e flow is required", ErrInvalidDescriptor)
	}
	r := o.rand(CategoryE2E)
	details := &E2EDetails{Flow: cfg.Flow, Platform: cfg.Platform, StepsTotal: len(cfg.Steps)}
	for i, step := range cfg.Steps {
		if err := o.clock.Sleep(ctx, e2eStepCost); err != nil {
			details.FailedStep = step
			return details, err
		}
		if sim.Chance(r, e2eStepFailureRate) {
			details.FailedStep = step
			return details, fmt.Errorf("step %d (%s) failed", i+1, step)
		}
		details.StepsCompleted++
	}
	return details, nil
}

// scenario builds the named fixture scenario, falling back to
// concurrent_editing for unknown names.
func (o *Orchestrator) scenario(name string) (fixtures.Scenario, error) {
	if name == "" || !fixtures.HasScenario(name) {
		if name != "" {
			o.logger.Debug("⚠️  Unknown scenario %q, using %s\n", name, fixtures.ScenarioConcurrentEditing)
		}
		name = fixtures.ScenarioConcurrentEditing
	}
	return o.deps.Scenarios.Scenario(name)
}

// millis renders d as fractional milliseconds.
func millis(d time.Duration) float64 {
	return math.Round(float64(d)/float64(time.Millisecond)*10) / 10
}
