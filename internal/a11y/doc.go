// Package a11y simulates a static accessibility audit of a named UI
// component.
//
// An audit runs four checks. Colour contrast is computed exactly with the
// WCAG 2 relative luminance formula over a fixed palette. Touch targets are
// measured against a 44x44 minimum. Keyboard navigation and screen reader
// support inject violations with fixed probabilities keyed on the component
// name ("Modal", "Form"). The result is scored as passed checks over all
// checks and the latest five reports per component are kept.
package a11y
