package a11y

import (
	"fmt"
	"strings"

	"hans/internal/sim"
)

// MinTouchTarget is the minimum width and height of a touch target in
// points.
const MinTouchTarget = 44.0

// TouchTarget is one interactive element of a component.
type TouchTarget struct {
	Element string  `json:"element"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

func (t TouchTarget) compliant() bool {
	return t.Width >= MinTouchTarget && t.Height >= MinTouchTarget
}

// TouchTargetReport lists undersized elements.
type TouchTargetReport struct {
	Elements       []TouchTarget `json:"elements"`
	Violations     []TouchTarget `json:"violations"`
	ComplianceRate float64       `json:"complianceRate"`
}

var commonTargets = []TouchTarget{
	{Element: "primary-action", Width: 48, Height: 48},
	{Element: "icon-button", Width: 44, Height: 44},
	{Element: "list-item", Width: 320, Height: 56},
}

// TouchTargets returns the simulated interactive elements of a component.
func TouchTargets(component string) []TouchTarget {
	targets := append([]TouchTarget(nil), commonTargets...)
	if strings.Contains(component, "Form") {
		targets = append(targets,
			TouchTarget{Element: "submit-button", Width: 120, Height: 48},
			TouchTarget{Element: "cancel-button", Width: 88, Height: 36},
		)
	}
	if strings.Contains(component, "Modal") {
		targets = append(targets, TouchTarget{Element: "close-button", Width: 32, Height: 32})
	}
	return targets
}

// ValidateTouchTargets checks every element of component against
// MinTouchTarget. ComplianceRate is a percentage.
func ValidateTouchTargets(component string) TouchTargetReport {
	elements := TouchTargets(component)
	report := TouchTargetReport{Elements: elements, Violations: []TouchTarget{}}
	for _, el := range elements {
		if !el.compliant() {
			report.Violations = append(report.Violations, el)
		}
	}
	report.ComplianceRate = float64(len(elements)-len(report.Violations)) / float64(len(elements)) * 100
	return report
}

func touchTargetChecks(component string) CheckResult {
	var res CheckResult
	for _, el := range TouchTargets(component) {
		if el.compliant() {
			res.Passed = append(res.Passed, PassedCheck{
				Rule: "touch-target-size", Criterion: "2.5.5",
				Description: fmt.Sprintf("%s meets the %.0fx%.0f minimum", el.Element, MinTouchTarget, MinTouchTarget),
			})
			continue
		}
		res.Violations = append(res.Violations, Violation{
			Rule: "touch-target-size", Criterion: "2.5.5", Impact: ImpactModerate, Element: el.Element,
			Description: fmt.Sprintf("%s is %.0fx%.0f, below the %.0fx%.0f minimum",
				el.Element, el.Width, el.Height, MinTouchTarget, MinTouchTarget),
		})
	}
	return res
}

func contrastChecks() CheckResult {
	var res CheckResult
	report := ValidateColorContrast()
	for _, p := range report.PassedCombinations {
		res.Passed = append(res.Passed, PassedCheck{
			Rule: "color-contrast", Criterion: "1.4.3",
			Description: fmt.Sprintf("%s has contrast %.2f:1", p.Name, p.Ratio),
		})
	}
	for _, v := range report.Violations {
		res.Violations = append(res.Violations, Violation{
			Rule: "color-contrast", Criterion: "1.4.3", Impact: ImpactSerious, Element: v.Name,
			Description: fmt.Sprintf("%s on %s has contrast %.2f:1, below %.1f:1",
				v.Text, v.Background, v.Ratio, MinContrastRatio),
		})
	}
	return res
}

// Injection probabilities.
const (
	focusVisibleWarningRate = 0.10
	focusTrapViolationRate  = 0.20
	tabOrderViolationRate   = 0.15
	formLabelViolationRate  = 0.15
	dialogRoleViolationRate = 0.20
	altTextViolationRate    = 0.10
	landmarkWarningRate     = 0.05
)

// keyboardChecks runs four keyboard checks. Draws are consumed only by checks
// that apply to the component, in this order: focus visibility, focus trap
// (Modal), tab order (Form).
func keyboardChecks(r sim.Rand, component string) CheckResult {
	res := CheckResult{}
	res.Passed = append(res.Passed, PassedCheck{
		Rule: "keyboard-access", Criterion: "2.1.1", Description: "All controls reachable with Tab",
	})

	if sim.Chance(r, focusVisibleWarningRate) {
		res.Warnings = append(res.Warnings, Warning{
			Rule: "focus-visible", Criterion: "2.4.7", Element: component,
			Description: "Focus indicator may be hard to see",
		})
	} else {
		res.Passed = append(res.Passed, PassedCheck{
			Rule: "focus-visible", Criterion: "2.4.7", Description: "Focus indicator visible",
		})
	}

	if strings.Contains(component, "Modal") && sim.Chance(r, focusTrapViolationRate) {
		res.Violations = append(res.Violations, Violation{
			Rule: "focus-trap", Criterion: "2.1.2", Impact: ImpactCritical, Element: component,
			Description: "Keyboard focus cannot leave the dialog",
		})
	} else {
		res.Passed = append(res.Passed, PassedCheck{
			Rule: "focus-trap", Criterion: "2.1.2", Description: "No keyboard trap",
		})
	}

	if strings.Contains(component, "Form") && sim.Chance(r, tabOrderViolationRate) {
		res.Violations = append(res.Violations, Violation{
			Rule: "tab-order", Criterion: "2.4.3", Impact: ImpactModerate, Element: component,
			Description: "Tab order does not follow the visual order of fields",
		})
	} else {
		res.Passed = append(res.Passed, PassedCheck{
			Rule: "tab-order", Criterion: "2.4.3", Description: "Logical tab order",
		})
	}
	return res
}

// screenReaderChecks runs four screen reader checks. Draws are consumed in
// this order: form labels (Form), dialog role (Modal), image alt text,
// landmarks.
func screenReaderChecks(r sim.Rand, component string) CheckResult {
	res := CheckResult{}

	if strings.Contains(component, "Form") && sim.Chance(r, formLabelViolationRate) {
		res.Violations = append(res.Violations, Violation{
			Rule: "form-labels", Criterion: "1.3.1", Impact: ImpactSerious, Element: component,
			Description: "Input fields without accessible labels",
		})
	} else {
		res.Passed = append(res.Passed, PassedCheck{
			Rule: "form-labels", Criterion: "1.3.1", Description: "Inputs are labelled",
		})
	}

	if strings.Contains(component, "Modal") && sim.Chance(r, dialogRoleViolationRate) {
		res.Violations = append(res.Violations, Violation{
			Rule: "dialog-role", Criterion: "4.1.2", Impact: ImpactSerious, Element: component,
			Description: "Dialog container missing role and accessible name",
		})
	} else {
		res.Passed = append(res.Passed, PassedCheck{
			Rule: "dialog-role", Criterion: "4.1.2", Description: "Roles and names exposed",
		})
	}

	if sim.Chance(r, altTextViolationRate) {
		res.Violations = append(res.Violations, Violation{
			Rule: "image-alt", Criterion: "1.1.1", Impact: ImpactSerious, Element: component,
			Description: "Image without alternative text",
		})
	} else {
		res.Passed = append(res.Passed, PassedCheck{
			Rule: "image-alt", Criterion: "1.1.1", Description: "Images have alternative text",
		})
	}

	if sim.Chance(r, landmarkWarningRate) {
		res.Warnings = append(res.Warnings, Warning{
			Rule: "landmarks", Criterion: "1.3.1", Element: component,
			Description: "Content outside landmark regions",
		})
	} else {
		res.Passed = append(res.Passed, PassedCheck{
			Rule: "landmarks", Criterion: "1.3.1", Description: "Content inside landmarks",
		})
	}
	return res
}
