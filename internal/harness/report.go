package harness

import (
	"fmt"
	"strings"
	"time"

	"hans/internal/a11y"
	"hans/internal/perf"
)

const (
	// CoverageThreshold is the minimum percentage for every coverage figure.
	CoverageThreshold = 80.0
	// AccessibilityPassScore is the minimum average audit score.
	AccessibilityPassScore = 80.0
	// SuccessRateFloor triggers a recommendation when undershot.
	SuccessRateFloor = 80.0
)

// categoryOrder is the order categories appear in aggregated views.
var categoryOrder = []Category{
	CategoryUnit,
	CategoryIntegration,
	CategoryPerformance,
	CategoryAccessibility,
	CategorySecurity,
	CategoryE2E,
}

// CategoryStats counts the results of one category.
type CategoryStats struct {
	Category Category      `json:"category"`
	Total    int           `json:"total"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	TimedOut int           `json:"timedOut"`
	Duration time.Duration `json:"duration"`
}

// CategoryBreakdown groups results by category. Categories without results
// are omitted.
func CategoryBreakdown(results []TestResult) []CategoryStats {
	byCategory := make(map[Category]*CategoryStats)
	for _, r := range results {
		s, ok := byCategory[r.Category]
		if !ok {
			s = &CategoryStats{Category: r.Category}
			byCategory[r.Category] = s
		}
		s.Total++
		s.Duration += r.Duration
		switch r.Status {
		case StatusPassed:
			s.Passed++
		case StatusSkipped:
			s.Skipped++
		case StatusTimeout:
			s.Failed++
			s.TimedOut++
		default:
			s.Failed++
		}
	}

	out := make([]CategoryStats, 0, len(byCategory))
	for _, c := range categoryOrder {
		if s, ok := byCategory[c]; ok {
			out = append(out, *s)
		}
	}
	return out
}

// NewSummary counts results. Timed out results are failures.
func NewSummary(results []TestResult, duration time.Duration) Summary {
	s := Summary{TotalTests: len(results), Duration: duration}
	for _, r := range results {
		switch r.Status {
		case StatusPassed:
			s.Passed++
		case StatusSkipped:
			s.Skipped++
		case StatusTimeout:
			s.Failed++
			s.TimedOut++
		default:
			s.Failed++
		}
	}
	if s.TotalTests > 0 {
		s.SuccessRate = float64(s.Passed) / float64(s.TotalTests) * 100
	}
	return s
}

// coverageFrom averages the coverage reported by unit tests. Branch,
// function and line figures trail statements by fixed offsets.
func coverageFrom(results []TestResult) CoverageReport {
	report := CoverageReport{Threshold: CoverageThreshold}
	var sum float64
	n := 0
	for _, r := range results {
		if d, ok := r.Details.(*UnitDetails); ok {
			sum += d.Coverage
			n++
		}
	}
	if n == 0 {
		return report
	}
	report.Statements = sum / float64(n)
	report.Branches = report.Statements - 5
	report.Functions = report.Statements - 3
	report.Lines = report.Statements - 2
	report.Passed = report.Statements >= CoverageThreshold &&
		report.Branches >= CoverageThreshold &&
		report.Functions >= CoverageThreshold &&
		report.Lines >= CoverageThreshold
	return report
}

func performanceFrom(results []TestResult) PerformanceSummary {
	out := PerformanceSummary{
		Regressions: []perf.Regression{},
		Alerts:      []perf.Alert{},
	}
	var samples []perf.Metrics
	for _, r := range results {
		if r.Category != CategoryPerformance {
			continue
		}
		out.Tests++
		if r.Status == StatusPassed {
			out.Passed++
		}
		d, ok := r.Details.(*PerformanceDetails)
		if !ok {
			continue
		}
		samples = append(samples, d.Report.Metrics)
		if d.Report.Comparison != nil {
			out.Regressions = append(out.Regressions, d.Report.Comparison.Regressions...)
		}
		out.Alerts = append(out.Alerts, d.Report.Alerts...)
	}
	out.Metrics = perf.Summarize(samples)
	return out
}

func accessibilityFrom(results []TestResult) AccessibilitySummary {
	out := AccessibilitySummary{Compliant: true, Components: []ComponentScore{}}
	var scoreSum float64
	audits := 0
	for _, r := range results {
		if r.Category != CategoryAccessibility {
			continue
		}
		out.Tests++
		if r.Status == StatusPassed {
			out.Passed++
		} else {
			out.Compliant = false
		}
		d, ok := r.Details.(*AccessibilityDetails)
		if !ok {
			continue
		}
		out.TotalViolations += d.Report.TotalViolations
		out.TotalWarnings += d.Report.TotalWarnings
		for _, rep := range d.Report.Reports {
			scoreSum += rep.OverallScore
			audits++
			out.Components = append(out.Components, componentScore(rep))
		}
	}
	if audits > 0 {
		out.AverageScore = scoreSum / float64(audits)
	}
	return out
}

func componentScore(r a11y.Report) ComponentScore {
	return ComponentScore{
		Component:  r.TestName,
		Score:      r.OverallScore,
		Level:      r.WCAGLevel,
		Violations: len(r.Violations),
	}
}

func securityFrom(results []TestResult) SecuritySummary {
	out := SecuritySummary{Vulnerabilities: []string{}, CriticalIssues: []string{}}
	for _, r := range results {
		if r.Category != CategorySecurity {
			continue
		}
		out.Tests++
		if r.Status == StatusPassed {
			out.Passed++
		} else if r.Status != StatusSkipped {
			out.CriticalIssues = append(out.CriticalIssues, fmt.Sprintf("%s: %s", r.TestName, r.Error))
		}
		if d, ok := r.Details.(*SecurityDetails); ok {
			out.Vulnerabilities = append(out.Vulnerabilities, d.Vulnerabilities...)
		}
	}
	return out
}

// recommendations derives advice from an aggregated report.
func recommendations(r *SuiteResult) []string {
	var recs []string
	if r.Summary.TotalTests > 0 && r.Summary.SuccessRate < SuccessRateFloor {
		recs = append(recs, fmt.Sprintf("Success rate is %.1f%%; fix failing tests before releasing", r.Summary.SuccessRate))
	}
	if r.Summary.TimedOut > 0 {
		recs = append(recs, fmt.Sprintf("%d test(s) timed out; investigate slow paths or raise their timeouts", r.Summary.TimedOut))
	}
	if r.Summary.Skipped > 0 {
		recs = append(recs, fmt.Sprintf("%d test(s) were skipped; rerun with a longer suite timeout", r.Summary.Skipped))
	}
	if r.Coverage.Statements > 0 && !r.Coverage.Passed {
		recs = append(recs, fmt.Sprintf("Raise code coverage to at least %.0f%% for statements, branches, functions and lines", CoverageThreshold))
	}
	if n := len(r.Performance.Regressions); n > 0 {
		metrics := make([]string, 0, n)
		for _, reg := range r.Performance.Regressions {
			metrics = append(metrics, fmt.Sprintf("%s (+%.1f%%, %s)", reg.Metric, reg.PercentChange, reg.Severity))
		}
		recs = append(recs, fmt.Sprintf("Address %d performance regression(s): %s", n, strings.Join(metrics, ", ")))
	}
	if n := len(r.Performance.Alerts); n > 0 {
		recs = append(recs, fmt.Sprintf("Resolve %d performance threshold alert(s)", n))
	}
	if !r.Accessibility.Compliant {
		recs = append(recs, fmt.Sprintf("Fix accessibility violations; average score %.1f is below the %.0f needed to pass",
			r.Accessibility.AverageScore, AccessibilityPassScore))
	}
	if n := len(r.Security.Vulnerabilities); n > 0 {
		recs = append(recs, fmt.Sprintf("Remediate %d security vulnerability(ies) before release", n))
	}
	if len(recs) == 0 {
		recs = append(recs, "All checks passed; no action required")
	}
	return recs
}

// buildReport aggregates results into a final report.
func buildReport(runID string, state State, start, end time.Time, results []TestResult) SuiteResult {
	detailed := make([]TestResult, len(results))
	copy(detailed, results)

	r := SuiteResult{
		RunID:           runID,
		State:           state,
		StartTime:       start,
		EndTime:         end,
		Summary:         NewSummary(detailed, end.Sub(start)),
		Coverage:        coverageFrom(detailed),
		Performance:     performanceFrom(detailed),
		Accessibility:   accessibilityFrom(detailed),
		Security:        securityFrom(detailed),
		DetailedResults: detailed,
	}
	r.Recommendations = recommendations(&r)
	return r
}

// errorReport is the report of a run aborted by a harness fault. It carries
// no results so its summary is all zeros.
func errorReport(runID string, start, end time.Time, cause error) SuiteResult {
	r := buildReport(runID, StateError, start, end, nil)
	r.HarnessError = cause.Error()
	r.Recommendations = []string{"The harness failed before completing; see harnessError for the cause"}
	return r
}
