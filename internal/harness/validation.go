package harness

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// ErrInvalidConfig marks configuration that cannot be run.
var ErrInvalidConfig = errors.New("invalid suite configuration")

// ErrInvalidDescriptor marks a descriptor that cannot run. Only that
// descriptor fails; its siblings still run.
var ErrInvalidDescriptor = errors.New("invalid test descriptor")

// ValidationError describes one problem with a descriptor
type ValidationError struct {
	Category Category `json:"category"`
	Index    int      `json:"index"`
	Name     string   `json:"name,omitempty"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
}

func (e *ValidationError) Error() string {
	label := fmt.Sprintf("%s[%d]", e.Category, e.Index)
	if e.Name != "" {
		label = fmt.Sprintf("%s %q", label, e.Name)
	}
	return fmt.Sprintf("%s: %s %s", label, e.Field, e.Message)
}

// ValidateSuiteConfig checks the structure of a suite and returns all
// problems at once: a negative timeout and a missing or duplicated name.
// Problems confined to one descriptor, such as an unknown type, fail that
// descriptor when it runs. The returned error wraps ErrInvalidConfig.
func ValidateSuiteConfig(c SuiteConfig) error {
	var result *multierror.Error
	add := func(cat Category, i int, name, field, msg string) {
		result = multierror.Append(result, &ValidationError{Category: cat, Index: i, Name: name, Field: field, Message: msg})
	}

	if c.Timeout < 0 {
		result = multierror.Append(result, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}

	names := map[Category]map[string]bool{}
	check := func(cat Category, i int, name string, timeout time.Duration) {
		if timeout < 0 {
			add(cat, i, name, "timeout", "must not be negative")
		}
		if strings.TrimSpace(name) == "" {
			add(cat, i, name, "name", "is required")
			return
		}
		if names[cat] == nil {
			names[cat] = map[string]bool{}
		}
		if names[cat][name] {
			add(cat, i, name, "name", "is duplicated")
		}
		names[cat][name] = true
	}

	for i, t := range c.UnitTests {
		check(CategoryUnit, i, t.Name, t.Timeout)
	}
	for i, t := range c.IntegrationTests {
		check(CategoryIntegration, i, t.Name, t.Timeout)
	}
	for i, t := range c.PerformanceTests {
		check(CategoryPerformance, i, t.Name, t.Timeout)
	}
	for i, t := range c.AccessibilityTests {
		check(CategoryAccessibility, i, t.Name, t.Timeout)
	}
	for i, t := range c.SecurityTests {
		check(CategorySecurity, i, t.Name, t.Timeout)
	}
	for i, t := range c.E2ETests {
		check(CategoryE2E, i, t.Name, t.Timeout)
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
