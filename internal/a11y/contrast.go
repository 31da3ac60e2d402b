package a11y

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MinContrastRatio is the WCAG AA minimum for normal text.
const MinContrastRatio = 4.5

// ColorPair is a text colour shown on a background colour.
type ColorPair struct {
	Name       string `json:"name"`
	Text       string `json:"text"`
	Background string `json:"background"`
}

// ContrastResult is a ColorPair with its computed ratio.
type ContrastResult struct {
	ColorPair
	Ratio  float64 `json:"ratio"`
	Passes bool    `json:"passes"`
}

// ContrastReport splits the palette into passing and failing pairs.
type ContrastReport struct {
	Violations         []ContrastResult `json:"violations"`
	PassedCombinations []ContrastResult `json:"passedCombinations"`
}

// Palette is the fixed set of colour combinations the contrast check
// evaluates.
var Palette = []ColorPair{
	{Name: "body-text", Text: "#111827", Background: "#FFFFFF"},
	{Name: "secondary-text", Text: "#4B5563", Background: "#FFFFFF"},
	{Name: "primary-button", Text: "#FFFFFF", Background: "#3B82F6"},
	{Name: "link", Text: "#1D4ED8", Background: "#FFFFFF"},
	{Name: "error-text", Text: "#B91C1C", Background: "#FFFFFF"},
	{Name: "dark-surface", Text: "#F9FAFB", Background: "#1F2937"},
	{Name: "placeholder", Text: "#9CA3AF", Background: "#FFFFFF"},
	{Name: "heading", Text: "#000000", Background: "#FFFFFF"},
}

// parseHex parses #RGB or #RRGGBB into components in [0,1].
func parseHex(s string) ([3]float64, error) {
	var out [3]float64
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return out, fmt.Errorf("invalid colour %q", s)
	}
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return out, fmt.Errorf("invalid colour %q: %w", s, err)
		}
		out[i] = float64(v) / 255
	}
	return out, nil
}

func linearize(c float64) float64 {
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// RelativeLuminance returns the WCAG relative luminance of a hex colour.
// It follows the WCAG 2.x definition, which linearizes each sRGB channel
// before weighting, rather than weighting the normalized channels directly.
// The two disagree on mid greys: #4B5563 on white is about 7.5:1 here and fails
// 4.5:1 under direct weighting.
func RelativeLuminance(color string) (float64, error) {
	rgb, err := parseHex(color)
	if err != nil {
		return 0, err
	}
	return 0.2126*linearize(rgb[0]) + 0.7152*linearize(rgb[1]) + 0.0722*linearize(rgb[2]), nil
}

// ContrastRatio returns (L_lighter+0.05)/(L_darker+0.05) for two hex
// colours. The order of the arguments does not matter.
func ContrastRatio(a, b string) (float64, error) {
	la, err := RelativeLuminance(a)
	if err != nil {
		return 0, err
	}
	lb, err := RelativeLuminance(b)
	if err != nil {
		return 0, err
	}
	hi, lo := math.Max(la, lb), math.Min(la, lb)
	return (hi + 0.05) / (lo + 0.05), nil
}

// EvaluateContrast classifies pairs against MinContrastRatio.
func EvaluateContrast(pairs []ColorPair) (ContrastReport, error) {
	report := ContrastReport{
		Violations:         []ContrastResult{},
		PassedCombinations: []ContrastResult{},
	}
	for _, p := range pairs {
		ratio, err := ContrastRatio(p.Text, p.Background)
		if err != nil {
			return ContrastReport{}, fmt.Errorf("pair %s: %w", p.Name, err)
		}
		res := ContrastResult{ColorPair: p, Ratio: ratio, Passes: ratio >= MinContrastRatio}
		if res.Passes {
			report.PassedCombinations = append(report.PassedCombinations, res)
		} else {
			report.Violations = append(report.Violations, res)
		}
	}
	return report, nil
}

// ValidateColorContrast evaluates the fixed Palette. The result is the same
// on every call.
func ValidateColorContrast() ContrastReport {
	report, err := EvaluateContrast(Palette)
	if err != nil {
		panic(err)
	}
	return report
}
