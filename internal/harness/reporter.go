package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	hstrings "hans/pkg/strings"
)

// consoleReporter prints progress and a summary table for CLI mode
type consoleReporter struct {
	mu         sync.Mutex
	out        io.Writer
	verbose    bool
	debug      bool
	reportPath string
}

// NewConsoleReporter creates a reporter writing human readable progress to
// out. reportPath, when set, is a directory the final JSON report is saved to.
func NewConsoleReporter(out io.Writer, verbose, debug bool, reportPath string) Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &consoleReporter{
		out:        out,
		verbose:    verbose,
		debug:      debug,
		reportPath: reportPath,
	}
}

func (r *consoleReporter) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format, args...)
}

// ReportStart is called when test execution begins
func (r *consoleReporter) ReportStart(config SuiteConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.printf("🧪 Starting hans test suite (%d tests)\n", config.TotalDescriptors())
	if r.verbose {
		r.printf("\n⚙️  Configuration:\n")
		r.printf("   • Unit tests: %d\n", len(config.UnitTests))
		r.printf("   • Integration tests: %d\n", len(config.IntegrationTests))
		r.printf("   • Performance tests: %d\n", len(config.PerformanceTests))
		r.printf("   • Accessibility tests: %d\n", len(config.AccessibilityTests))
		r.printf("   • Security tests: %d\n", len(config.SecurityTests))
		r.printf("   • End-to-end tests: %d\n", len(config.E2ETests))
		r.printf("   • Fail fast: %t\n", config.FailFast)
		r.printf("   • Parallel: %t\n", config.Parallel)
		if config.Timeout > 0 {
			r.printf("   • Timeout: %v\n", config.Timeout)
		}
		if r.reportPath != "" {
			r.printf("   • Report path: %s\n", r.reportPath)
		}
		r.printf("\n")
	}
}

// ReportPhase announces the phases of the pipeline
func (r *consoleReporter) ReportPhase(state State) {
	title := phaseTitle(state)
	if title == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.printf("\n▶️  %s\n", title)
}

func phaseTitle(state State) string {
	switch state {
	case StateUnit:
		return "Phase 1: unit tests"
	case StateParallel:
		return "Phase 2: integration, performance, accessibility and security"
	case StateE2E:
		return "Phase 3: end-to-end flows"
	default:
		return ""
	}
}

// ReportTestResult is called when a descriptor completes
func (r *consoleReporter) ReportTestResult(result TestResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.printf("   %s [%s] %s (%s)\n", statusSymbol(result.Status), result.Category, result.TestName, formatDuration(result.Duration))
	if result.Error != "" && (result.Status != StatusSkipped || r.verbose) {
		msg := result.Error
		if !r.verbose {
			msg = hstrings.OneLine(msg, hstrings.MaxMessageLen)
		}
		r.printf("      ⚠️  %s\n", msg)
	}
	if r.debug && result.Details != nil {
		if b, err := json.Marshal(result.Details); err == nil {
			r.printf("      🔍 %s\n", b)
		}
	}
}

// ReportSuiteResult is called when all tests complete
func (r *consoleReporter) ReportSuiteResult(result SuiteResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.printf("\n🏁 Test Suite Complete (%s)\n", result.State)
	r.printf("⏱️  Duration: %s\n", formatDuration(result.Summary.Duration))
	if result.HarnessError != "" {
		r.printf("💥 Harness error: %s\n", result.HarnessError)
	}
	r.printf("📊 Results:\n")
	writeCategoryTable(r.out, result.DetailedResults)
	r.printf("   📏 Success Rate: %.1f%%\n", result.Summary.SuccessRate)

	if len(result.Recommendations) > 0 {
		r.printf("\n💡 Recommendations:\n")
		for _, rec := range result.Recommendations {
			r.printf("   • %s\n", rec)
		}
	}

	if result.Succeeded() {
		r.printf("\n🎉 All tests passed!\n")
	} else {
		r.printf("\n💔 Some tests did not pass\n")
	}

	if r.reportPath != "" {
		path, err := saveDetailedReport(r.reportPath, result)
		if err != nil {
			r.printf("⚠️  Failed to save detailed report: %v\n", err)
		} else {
			r.printf("📄 Detailed report saved to: %s\n", path)
		}
	}
}

// saveDetailedReport writes result as JSON into dir and returns the file path
func saveDetailedReport(dir string, result SuiteResult) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	filename := fmt.Sprintf("hans-report-%s.json", result.StartTime.Format("20060102-150405"))
	fullPath := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return fullPath, nil
}

// statusSymbol returns an appropriate symbol for the test status
func statusSymbol(s Status) string {
	switch s {
	case StatusPassed:
		return "✅"
	case StatusFailed:
		return "❌"
	case StatusSkipped:
		return "⏭️"
	case StatusTimeout:
		return "⏰"
	default:
		return "❓"
	}
}

// quietReporter only prints failures and a one-line summary
type quietReporter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewQuietReporter creates a reporter with minimal output. A nil writer
// discards everything.
func NewQuietReporter(out io.Writer) Reporter {
	if out == nil {
		out = io.Discard
	}
	return &quietReporter{out: out}
}

func (r *quietReporter) ReportStart(config SuiteConfig) {}

func (r *quietReporter) ReportPhase(state State) {}

func (r *quietReporter) ReportTestResult(result TestResult) {
	if result.Status != StatusFailed && result.Status != StatusTimeout {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s %s: %s\n", statusSymbol(result.Status), result.TestName, result.Error)
}

func (r *quietReporter) ReportSuiteResult(result SuiteResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := result.Summary
	switch {
	case result.State == StateError:
		fmt.Fprintf(r.out, "💥 harness error: %s\n", result.HarnessError)
	case result.Succeeded():
		fmt.Fprintf(r.out, "✅ All %d tests passed (%s)\n", s.TotalTests, formatDuration(s.Duration))
	default:
		fmt.Fprintf(r.out, "❌ %d/%d tests failed, %d skipped (%s)\n", s.Failed, s.TotalTests, s.Skipped, formatDuration(s.Duration))
	}
}

// jsonReporter collects results and prints one JSON document at the end
type jsonReporter struct {
	mu      sync.Mutex
	out     io.Writer
	config  SuiteConfig
	results []TestResult
}

// NewJSONReporter creates a reporter that outputs JSON for CI/CD integration
func NewJSONReporter(out io.Writer) Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &jsonReporter{out: out}
}

func (r *jsonReporter) ReportStart(config SuiteConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config = config
	r.results = make([]TestResult, 0)
}

func (r *jsonReporter) ReportPhase(state State) {}

func (r *jsonReporter) ReportTestResult(result TestResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *jsonReporter) ReportSuiteResult(result SuiteResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	output := map[string]interface{}{
		"configuration": r.config,
		"results":       r.results,
		"summary":       result,
	}
	jsonBytes, _ := json.MarshalIndent(output, "", "  ")
	fmt.Fprintln(r.out, string(jsonBytes))
}

// formatDuration rounds d to milliseconds for display
func formatDuration(d time.Duration) string {
	if d >= time.Millisecond {
		return d.Round(time.Millisecond).String()
	}
	return d.String()
}
