package harness

import (
	"encoding/json"
	"sync"
)

// structuredReporter implements StructuredReporter for MCP server mode.
// It captures all reporting data without writing to stdio.
type structuredReporter struct {
	mu             sync.RWMutex
	config         SuiteConfig
	state          State
	currentResults []TestResult
	suiteResult    *SuiteResult
}

// NewStructuredReporter creates a reporter that captures structured data without stdio output
func NewStructuredReporter() StructuredReporter {
	return &structuredReporter{
		state:          StateIdle,
		currentResults: make([]TestResult, 0),
	}
}

// ReportStart is called when test execution begins
func (r *structuredReporter) ReportStart(config SuiteConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.config = config
	r.currentResults = make([]TestResult, 0, config.TotalDescriptors())
}

// ReportPhase records the current phase
func (r *structuredReporter) ReportPhase(state State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = state
}

// ReportTestResult is called when a descriptor completes
func (r *structuredReporter) ReportTestResult(result TestResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentResults = append(r.currentResults, result)
}

// ReportSuiteResult is called when all tests complete
func (r *structuredReporter) ReportSuiteResult(result SuiteResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = result.State
	r.suiteResult = &result
}

// LastSuiteResult returns the most recent final report
func (r *structuredReporter) LastSuiteResult() *SuiteResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.suiteResult == nil {
		return nil
	}

	// Return a copy to avoid race conditions
	result := *r.suiteResult
	result.DetailedResults = make([]TestResult, len(r.suiteResult.DetailedResults))
	copy(result.DetailedResults, r.suiteResult.DetailedResults)
	result.Recommendations = append([]string(nil), r.suiteResult.Recommendations...)
	return &result
}

// CurrentResults returns results reported so far in the current run
func (r *structuredReporter) CurrentResults() []TestResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TestResult, len(r.currentResults))
	copy(out, r.currentResults)
	return out
}

// CurrentState returns the last phase reported
func (r *structuredReporter) CurrentState() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// ResultsAsJSON returns the last final report as JSON
func (r *structuredReporter) ResultsAsJSON() (string, error) {
	result := r.LastSuiteResult()
	if result == nil {
		return `{"status": "no_results", "message": "No test results available"}`, nil
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}
