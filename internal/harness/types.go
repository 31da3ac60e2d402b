package harness

import (
	"time"

	"hans/internal/a11y"
	"hans/internal/perf"
)

// Category identifies the kind of a test descriptor.
type Category string

const (
	CategoryUnit          Category = "unit"
	CategoryIntegration   Category = "integration"
	CategoryPerformance   Category = "performance"
	CategoryAccessibility Category = "accessibility"
	CategorySecurity      Category = "security"
	CategoryE2E           Category = "e2e"
)

// Status is the outcome of one descriptor.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusTimeout Status = "timeout"
)

// State is the position of the orchestrator in its phase pipeline.
type State string

const (
	StateIdle       State = "idle"
	StateUnit       State = "unit"
	StateParallel   State = "parallel"
	StateE2E        State = "e2e"
	StateCompleted  State = "completed"
	StateFailedFast State = "failed_fast"
	StateError      State = "error"
)

// ExecutionMode selects logger and reporter implementations.
type ExecutionMode string

const (
	// ExecutionModeCLI writes progress to the console
	ExecutionModeCLI ExecutionMode = "cli"
	// ExecutionModeMCPServer captures results without writing to stdio
	ExecutionModeMCPServer ExecutionMode = "mcp-server"
)

// UnitType is the kind of code a unit test exercises.
type UnitType string

const (
	UnitComponent UnitType = "component"
	UnitHook      UnitType = "hook"
	UnitUtility   UnitType = "utility"
	UnitService   UnitType = "service"
)

// IntegrationFlow selects the scripted integration sub-flow.
type IntegrationFlow string

const (
	FlowFeatureIntegration IntegrationFlow = "feature_integration"
	FlowDataFlow           IntegrationFlow = "data_flow"
	FlowRealtimeSync       IntegrationFlow = "realtime_sync"
	FlowNavigation         IntegrationFlow = "navigation_flow"
)

// SecurityCheck selects the simulated security check.
type SecurityCheck string

const (
	SecurityAuthentication SecurityCheck = "authentication"
	SecurityAuthorization  SecurityCheck = "authorization"
	SecurityDataProtection SecurityCheck = "data_protection"
	SecurityFileUpload     SecurityCheck = "file_upload"
)

// Threshold keys honoured by performance descriptors.
const (
	ThresholdStartupTime   = "startupTime"
	ThresholdAverageMemory = "memoryUsage.averageMemory"
)

// UnitTestConfig describes one unit test.
type UnitTestConfig struct {
	Name      string        `yaml:"name" json:"name"`
	Component string        `yaml:"component" json:"component"`
	Type      UnitType      `yaml:"type" json:"type"`
	Timeout   time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// IntegrationTestConfig describes one integration test. Scenario names a
// fixture scenario; unknown or empty names fall back to concurrent_editing.
type IntegrationTestConfig struct {
	Name     string          `yaml:"name" json:"name"`
	Category IntegrationFlow `yaml:"category" json:"category"`
	Scenario string          `yaml:"scenario,omitempty" json:"scenario,omitempty"`
	Timeout  time.Duration   `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// E2ETestConfig describes one end-to-end user flow.
type E2ETestConfig struct {
	Name     string        `yaml:"name" json:"name"`
	Flow     string        `yaml:"flow" json:"flow"`
	Platform string        `yaml:"platform,omitempty" json:"platform,omitempty"`
	Steps    []string      `yaml:"steps" json:"steps"`
	Timeout  time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// PerformanceTestConfig describes one performance test. Thresholds are
// upper bounds: startupTime in milliseconds and memoryUsage.averageMemory in
// megabytes.
type PerformanceTestConfig struct {
	Name       string             `yaml:"name" json:"name"`
	Type       string             `yaml:"type,omitempty" json:"type,omitempty"`
	Thresholds map[string]float64 `yaml:"thresholds,omitempty" json:"thresholds,omitempty"`
	Baseline   bool               `yaml:"baseline,omitempty" json:"baseline,omitempty"`
	Timeout    time.Duration      `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// AccessibilityTestConfig describes one accessibility audit over several
// components.
type AccessibilityTestConfig struct {
	Name       string        `yaml:"name" json:"name"`
	Components []string      `yaml:"components" json:"components"`
	WCAGLevel  string        `yaml:"wcagLevel,omitempty" json:"wcagLevel,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// SecurityTestConfig describes one security check.
type SecurityTestConfig struct {
	Name     string        `yaml:"name" json:"name"`
	Category SecurityCheck `yaml:"category" json:"category"`
	Timeout  time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// SuiteConfig is the input of one run.
type SuiteConfig struct {
	UnitTests          []UnitTestConfig          `yaml:"unitTests,omitempty" json:"unitTests,omitempty"`
	IntegrationTests   []IntegrationTestConfig   `yaml:"integrationTests,omitempty" json:"integrationTests,omitempty"`
	E2ETests           []E2ETestConfig           `yaml:"e2eTests,omitempty" json:"e2eTests,omitempty"`
	PerformanceTests   []PerformanceTestConfig   `yaml:"performanceTests,omitempty" json:"performanceTests,omitempty"`
	AccessibilityTests []AccessibilityTestConfig `yaml:"accessibilityTests,omitempty" json:"accessibilityTests,omitempty"`
	SecurityTests      []SecurityTestConfig      `yaml:"securityTests,omitempty" json:"securityTests,omitempty"`

	// FailFast stops after the first phase that produced a failed or timed
	// out result.
	FailFast bool `yaml:"failFast,omitempty" json:"failFast"`
	// Parallel is advisory. Phase 2 always runs its four categories
	// concurrently.
	Parallel bool `yaml:"parallel,omitempty" json:"parallel"`
	// Timeout bounds the whole run. Zero means no deadline.
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// TotalDescriptors counts descriptors across all categories.
func (c SuiteConfig) TotalDescriptors() int {
	return len(c.UnitTests) + len(c.IntegrationTests) + len(c.E2ETests) +
		len(c.PerformanceTests) + len(c.AccessibilityTests) + len(c.SecurityTests)
}

// Details is the category-specific payload of a TestResult.
type Details interface {
	Kind() Category
}

// UnitDetails is the payload of a unit test result.
type UnitDetails struct {
	Component  string   `json:"component"`
	Type       UnitType `json:"type"`
	Assertions int      `json:"assertions"`
	Coverage   float64  `json:"coverage"`
}

func (*UnitDetails) Kind() Category { return CategoryUnit }

// IntegrationDetails is the payload of an integration test result.
type IntegrationDetails struct {
	Flow            IntegrationFlow `json:"flow"`
	Scenario        string          `json:"scenario"`
	DocumentsSeeded int             `json:"documentsSeeded"`
	Operations      int             `json:"operations"`
	Notifications   int             `json:"notifications,omitempty"`
	DeniedSkipped   int             `json:"deniedSkipped,omitempty"`
	Screens         []string        `json:"screens,omitempty"`
}

func (*IntegrationDetails) Kind() Category { return CategoryIntegration }

// PerformanceDetails is the payload of a performance test result.
type PerformanceDetails struct {
	Report            perf.Report `json:"report"`
	ThresholdFailures []string    `json:"thresholdFailures,omitempty"`
	BaselineRecorded  bool        `json:"baselineRecorded"`
}

func (*PerformanceDetails) Kind() Category { return CategoryPerformance }

// AccessibilityDetails is the payload of an accessibility test result.
type AccessibilityDetails struct {
	Report    a11y.ComprehensiveReport `json:"report"`
	PassScore float64                  `json:"passScore"`
}

func (*AccessibilityDetails) Kind() Category { return CategoryAccessibility }

// SecurityDetails is the payload of a security test result.
type SecurityDetails struct {
	Check           SecurityCheck `json:"check"`
	ChecksRun       []string      `json:"checksRun"`
	Vulnerabilities []string      `json:"vulnerabilities"`
}

func (*SecurityDetails) Kind() Category { return CategorySecurity }

// E2EDetails is the payload of an end-to-end test result.
type E2EDetails struct {
	Flow           string `json:"flow"`
	Platform       string `json:"platform,omitempty"`
	StepsTotal     int    `json:"stepsTotal"`
	StepsCompleted int    `json:"stepsCompleted"`
	FailedStep     string `json:"failedStep,omitempty"`
}

func (*E2EDetails) Kind() Category { return CategoryE2E }

// TestResult is the outcome of one descriptor. It is never modified after
// being recorded.
type TestResult struct {
	TestName string        `json:"testName"`
	Category Category      `json:"category"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
	Details  Details       `json:"details,omitempty"`
}

// Summary counts results. Failed includes timed out results, so Passed +
// Failed + Skipped equals TotalTests.
type Summary struct {
	TotalTests  int           `json:"totalTests"`
	Passed      int           `json:"passed"`
	Failed      int           `json:"failed"`
	Skipped     int           `json:"skipped"`
	TimedOut    int           `json:"timedOut"`
	SuccessRate float64       `json:"successRate"`
	Duration    time.Duration `json:"duration"`
}

// CoverageReport is the code coverage estimate derived from unit tests.
type CoverageReport struct {
	Statements float64 `json:"statements"`
	Branches   float64 `json:"branches"`
	Functions  float64 `json:"functions"`
	Lines      float64 `json:"lines"`
	Threshold  float64 `json:"threshold"`
	Passed     bool    `json:"passed"`
}

// PerformanceSummary aggregates performance results.
type PerformanceSummary struct {
	Tests       int               `json:"tests"`
	Passed      int               `json:"passed"`
	Metrics     perf.Aggregate    `json:"metrics"`
	Regressions []perf.Regression `json:"regressions"`
	Alerts      []perf.Alert      `json:"alerts"`
}

// ComponentScore is the latest audit score of one component.
type ComponentScore struct {
	Component  string  `json:"component"`
	Score      float64 `json:"score"`
	Level      string  `json:"wcagLevel"`
	Violations int     `json:"violations"`
}

// AccessibilitySummary aggregates accessibility results.
type AccessibilitySummary struct {
	Tests           int              `json:"tests"`
	Passed          int              `json:"passed"`
	AverageScore    float64          `json:"averageScore"`
	TotalViolations int              `json:"totalViolations"`
	TotalWarnings   int              `json:"totalWarnings"`
	Compliant       bool             `json:"compliant"`
	Components      []ComponentScore `json:"components"`
}

// SecuritySummary aggregates security results.
type SecuritySummary struct {
	Tests           int      `json:"tests"`
	Passed          int      `json:"passed"`
	Vulnerabilities []string `json:"vulnerabilities"`
	CriticalIssues  []string `json:"criticalIssues"`
}

// SuiteResult is the final report of a run.
type SuiteResult struct {
	RunID           string               `json:"runId"`
	State           State                `json:"state"`
	StartTime       time.Time            `json:"startTime"`
	EndTime         time.Time            `json:"endTime"`
	Summary         Summary              `json:"summary"`
	Coverage        CoverageReport       `json:"coverage"`
	Performance     PerformanceSummary   `json:"performance"`
	Accessibility   AccessibilitySummary `json:"accessibility"`
	Security        SecuritySummary      `json:"security"`
	Recommendations []string             `json:"recommendations"`
	DetailedResults []TestResult         `json:"detailedResults"`
	// HarnessError is set when the run aborted because of a harness fault.
	HarnessError string `json:"harnessError,omitempty"`
}

// Succeeded reports whether the run completed with no failed, skipped or
// timed out results.
func (r *SuiteResult) Succeeded() bool {
	return r.State == StateCompleted && r.Summary.Failed == 0 && r.Summary.Skipped == 0
}

// TestLogger provides leveled progress logging for a run
type TestLogger interface {
	// Debug logs debug-level messages (only shown when debug=true)
	Debug(format string, args ...interface{})
	// Info logs info-level messages (shown when verbose=true or debug=true)
	Info(format string, args ...interface{})
	// Error logs error-level messages (always shown)
	Error(format string, args ...interface{})
	// IsDebugEnabled returns whether debug logging is enabled
	IsDebugEnabled() bool
	// IsVerboseEnabled returns whether verbose logging is enabled
	IsVerboseEnabled() bool
}

// Reporter receives progress events of a run. Implementations must be safe
// for concurrent use because phase 2 reports from several goroutines.
type Reporter interface {
	// ReportStart is called when a run begins
	ReportStart(config SuiteConfig)
	// ReportPhase is called when the orchestrator enters a phase
	ReportPhase(state State)
	// ReportTestResult is called when a descriptor completes
	ReportTestResult(result TestResult)
	// ReportSuiteResult is called with the final report
	ReportSuiteResult(result SuiteResult)
}

// StructuredReporter extends Reporter with programmatic access to results.
type StructuredReporter interface {
	Reporter
	// LastSuiteResult returns the most recent final report, or nil
	LastSuiteResult() *SuiteResult
	// CurrentResults returns results reported so far in the current run
	CurrentResults() []TestResult
	// CurrentState returns the last phase or terminal state reported
	CurrentState() State
	// ResultsAsJSON returns the last final report as JSON
	ResultsAsJSON() (string, error)
}
