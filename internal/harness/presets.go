package harness

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"hans/internal/fixtures"
)

// Preset names.
const (
	PresetQuick         = "quick"
	PresetComprehensive = "comprehensive"
	PresetAccessibility = "accessibility"
)

// ErrUnknownPreset is returned by Preset for names without a definition.
var ErrUnknownPreset = errors.New("unknown preset")

var presets = map[string]func() SuiteConfig{
	PresetQuick:         QuickConfig,
	PresetComprehensive: ComprehensiveConfig,
	PresetAccessibility: AccessibilityConfig,
}

var presetDescriptions = map[string]string{
	PresetQuick:         "5 unit and 3 integration tests, fail fast",
	PresetComprehensive: "every category including performance baselines and end-to-end flows",
	PresetAccessibility: "WCAG audits of the main screens plus their unit tests",
}

// PresetNames lists the built-in presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// PresetDescription returns a one-line description of a preset.
func PresetDescription(name string) string {
	return presetDescriptions[name]
}

// Preset returns a fresh copy of the named preset.
func Preset(name string) (SuiteConfig, error) {
	build, ok := presets[name]
	if !ok {
		return SuiteConfig{}, fmt.Errorf("%w %q (available: %v)", ErrUnknownPreset, name, PresetNames())
	}
	return build(), nil
}

// QuickConfig is a fast smoke suite.
func QuickConfig() SuiteConfig {
	return SuiteConfig{
		UnitTests: []UnitTestConfig{
			{Name: "Button renders", Component: "Button", Type: UnitComponent},
			{Name: "Form validates input", Component: "Form", Type: UnitComponent},
			{Name: "useAuth hook", Component: "useAuth", Type: UnitHook},
			{Name: "date formatting", Component: "formatDate", Type: UnitUtility},
			{Name: "sync service", Component: "SyncService", Type: UnitService},
		},
		IntegrationTests: []IntegrationTestConfig{
			{Name: "task editing", Category: FlowDataFlow, Scenario: fixtures.ScenarioConcurrentEditing},
			{Name: "mood log sync", Category: FlowRealtimeSync, Scenario: fixtures.ScenarioRealtimeSync},
			{Name: "group navigation", Category: FlowNavigation},
		},
		FailFast: true,
		Parallel: true,
		Timeout:  2 * time.Minute,
	}
}

// ComprehensiveConfig exercises every category.
func ComprehensiveConfig() SuiteConfig {
	c := QuickConfig()
	c.FailFast = false
	c.Timeout = 10 * time.Minute
	c.UnitTests = append(c.UnitTests,
		UnitTestConfig{Name: "Modal traps focus", Component: "Modal", Type: UnitComponent},
		UnitTestConfig{Name: "useGroups hook", Component: "useGroups", Type: UnitHook},
		UnitTestConfig{Name: "notification service", Component: "NotificationService", Type: UnitService},
	)
	c.IntegrationTests = append(c.IntegrationTests,
		IntegrationTestConfig{Name: "event permissions", Category: FlowDataFlow, Scenario: fixtures.ScenarioPermissionTesting},
		IntegrationTestConfig{Name: "create task", Category: FlowFeatureIntegration},
	)
	c.PerformanceTests = []PerformanceTestConfig{
		{
			Name: "app startup",
			Type: "startup",
			Thresholds: map[string]float64{
				ThresholdStartupTime:   1500,
				ThresholdAverageMemory: 160,
			},
			Baseline: true,
		},
		{
			Name:       "dashboard render",
			Type:       "render",
			Thresholds: map[string]float64{ThresholdAverageMemory: 170},
		},
	}
	c.AccessibilityTests = []AccessibilityTestConfig{
		{Name: "core screens", Components: []string{"HomeScreen", "Dashboard", "Form"}, WCAGLevel: "AA"},
		{Name: "dialogs", Components: []string{"Modal"}, WCAGLevel: "AA"},
	}
	c.SecurityTests = []SecurityTestConfig{
		{Name: "login hardening", Category: SecurityAuthentication},
		{Name: "role checks", Category: SecurityAuthorization},
		{Name: "data at rest", Category: SecurityDataProtection},
		{Name: "attachment upload", Category: SecurityFileUpload},
	}
	c.E2ETests = []E2ETestConfig{
		{
			Name:     "onboarding",
			Flow:     "onboarding",
			Platform: "ios",
			Steps:    []string{"open app", "sign up", "create group", "invite member"},
		},
		{
			Name:     "daily check-in",
			Flow:     "mood_logging",
			Platform: "android",
			Steps:    []string{"open app", "log mood", "view history"},
		},
	}
	return c
}

// AccessibilityConfig audits the main screens.
func AccessibilityConfig() SuiteConfig {
	return SuiteConfig{
		UnitTests: []UnitTestConfig{
			{Name: "Button label", Component: "Button", Type: UnitComponent},
			{Name: "Modal focus", Component: "Modal", Type: UnitComponent},
		},
		AccessibilityTests: []AccessibilityTestConfig{
			{Name: "home", Components: []string{"HomeScreen"}, WCAGLevel: "AA"},
			{Name: "forms", Components: []string{"Form"}, WCAGLevel: "AA"},
			{Name: "dialogs", Components: []string{"Modal"}, WCAGLevel: "AA"},
			{Name: "dashboard", Components: []string{"Dashboard", "ProjectList"}, WCAGLevel: "AA"},
		},
		Timeout: 5 * time.Minute,
	}
}
