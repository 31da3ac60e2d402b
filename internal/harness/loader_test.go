package harness

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSuite = `
failFast: true
timeout: 90s
unitTests:
  - name: Button renders
    component: Button
    type: component
    timeout: 500ms
integrationTests:
  - name: edit task
    category: data_flow
    scenario: concurrent_editing
performanceTests:
  - name: startup
    thresholds:
      startupTime: 1500
      memoryUsage.averageMemory: 160
    baseline: true
accessibilityTests:
  - name: forms
    components: [Form, Modal]
    wcagLevel: AA
securityTests:
  - name: login
    category: authentication
e2eTests:
  - name: onboarding
    flow: onboarding
    platform: ios
    steps: [open app, sign up]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseSuiteConfig(t *testing.T) {
	cfg, err := ParseSuiteConfig([]byte(sampleSuite))
	require.NoError(t, err)

	assert.True(t, cfg.FailFast)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	require.Len(t, cfg.UnitTests, 1)
	assert.Equal(t, UnitTestConfig{Name: "Button renders", Component: "Button", Type: UnitComponent, Timeout: 500 * time.Millisecond}, cfg.UnitTests[0])
	assert.Equal(t, FlowDataFlow, cfg.IntegrationTests[0].Category)
	assert.Equal(t, 160.0, cfg.PerformanceTests[0].Thresholds[ThresholdAverageMemory])
	assert.True(t, cfg.PerformanceTests[0].Baseline)
	assert.Equal(t, []string{"Form", "Modal"}, cfg.AccessibilityTests[0].Components)
	assert.Equal(t, SecurityAuthentication, cfg.SecurityTests[0].Category)
	assert.Equal(t, []string{"open app", "sign up"}, cfg.E2ETests[0].Steps)
	assert.NoError(t, ValidateSuiteConfig(cfg))
}

func TestParseSuiteConfig_UnknownField(t *testing.T) {
	_, err := ParseSuiteConfig([]byte("unitTest: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unitTest")
}

func TestParseSuiteConfig_Empty(t *testing.T) {
	cfg, err := ParseSuiteConfig(nil)
	require.NoError(t, err)
	assert.Zero(t, cfg.TotalDescriptors())
}

func TestParseSuiteConfig_Preset(t *testing.T) {
	cfg, err := ParseSuiteConfig([]byte(`
preset: quick
securityTests:
  - name: extra
    category: file_upload
`))
	require.NoError(t, err)

	quick := QuickConfig()
	assert.Len(t, cfg.UnitTests, len(quick.UnitTests))
	assert.Len(t, cfg.SecurityTests, 1)
	assert.True(t, cfg.FailFast)
	assert.Equal(t, quick.Timeout, cfg.Timeout)

	_, err = ParseSuiteConfig([]byte("preset: nightly\n"))
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestParseSuiteConfig_PresetFlagsOverridden(t *testing.T) {
	cfg, err := ParseSuiteConfig([]byte(`
preset: quick
failFast: false
parallel: false
timeout: 30s
`))
	require.NoError(t, err)
	assert.False(t, cfg.FailFast)
	assert.False(t, cfg.Parallel)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, QuickConfig().TotalDescriptors(), cfg.TotalDescriptors())

	cfg, err = ParseSuiteConfig([]byte("preset: quick\n"))
	require.NoError(t, err)
	assert.True(t, cfg.FailFast, "unset flags keep the preset's value")
	assert.True(t, cfg.Parallel)
}

func TestConfigLoader_LoadFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "suite.yaml", sampleSuite)

	cfg, err := NewConfigLoader(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.TotalDescriptors())
}

func TestConfigLoader_LoadDirectoryMerges(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "unitTests:\n  - {name: one, component: A, type: hook}\n")
	writeFile(t, dir, "b.yml", "timeout: 1m\nunitTests:\n  - {name: two, component: B, type: utility}\n")
	writeFile(t, dir, "notes.txt", "ignored")

	cfg, err := NewConfigLoader(nil).Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, []string{cfg.UnitTests[0].Name, cfg.UnitTests[1].Name})
	assert.Equal(t, time.Minute, cfg.Timeout)
}

func TestConfigLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	loader := NewConfigLoader(nil)

	t.Run("missing path", func(t *testing.T) {
		_, err := loader.Load(filepath.Join(dir, "absent.yaml"))
		var cerr *ConfigError
		require.True(t, errors.As(err, &cerr))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := loader.Load(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no YAML files found")
	})

	t.Run("invalid descriptor", func(t *testing.T) {
		path := writeFile(t, dir, "bad.yaml", "unitTests:\n  - {name: x, component: A, type: hook}\n  - {name: x, component: B, type: hook}\n")
		_, err := loader.Load(path)
		var cerr *ConfigError
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, path, cerr.Path)
		assert.True(t, errors.Is(err, ErrInvalidConfig))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, dir, "broken.yaml", "unitTests: [\n")
		_, err := loader.Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse YAML")
	})
}
