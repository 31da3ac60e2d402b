package a11y

import "time"

// Impact ranks a violation.
type Impact string

const (
	ImpactCritical Impact = "critical"
	ImpactSerious  Impact = "serious"
	ImpactModerate Impact = "moderate"
	ImpactMinor    Impact = "minor"
)

// Conformance levels reported by an audit.
const (
	LevelAA           = "AA"
	LevelA            = "A"
	LevelNonCompliant = "Non-compliant"
)

// Violation is a failed check.
type Violation struct {
	Rule        string `json:"rule"`
	Criterion   string `json:"wcagCriterion"`
	Impact      Impact `json:"impact"`
	Element     string `json:"element,omitempty"`
	Description string `json:"description"`
}

// Warning is a check that needs manual review.
type Warning struct {
	Rule        string `json:"rule"`
	Criterion   string `json:"wcagCriterion"`
	Element     string `json:"element,omitempty"`
	Description string `json:"description"`
}

// PassedCheck is a successful check.
type PassedCheck struct {
	Rule        string `json:"rule"`
	Criterion   string `json:"wcagCriterion"`
	Description string `json:"description"`
}

// CheckResult groups the outcomes of one check family.
type CheckResult struct {
	Violations []Violation   `json:"violations"`
	Warnings   []Warning     `json:"warnings"`
	Passed     []PassedCheck `json:"passed"`
}

func (c *CheckResult) merge(other CheckResult) {
	c.Violations = append(c.Violations, other.Violations...)
	c.Warnings = append(c.Warnings, other.Warnings...)
	c.Passed = append(c.Passed, other.Passed...)
}

// Report is the result of one audit.
type Report struct {
	TestName     string        `json:"testName"`
	Timestamp    time.Time     `json:"timestamp"`
	OverallScore float64       `json:"overallScore"`
	Violations   []Violation   `json:"violations"`
	Warnings     []Warning     `json:"warnings"`
	PassedChecks []PassedCheck `json:"passedChecks"`
	WCAGLevel    string        `json:"wcagLevel"`
	Summary      string        `json:"summary"`
}

// ComprehensiveReport aggregates audits of several components.
type ComprehensiveReport struct {
	Reports         []Report `json:"reports"`
	AverageScore    float64  `json:"averageScore"`
	TotalViolations int      `json:"totalViolations"`
	TotalWarnings   int      `json:"totalWarnings"`
}
