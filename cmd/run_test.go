package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSuite(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func executeRun(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRunCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRun_EmptySuitePasses(t *testing.T) {
	path := writeSuite(t, "timeout: 1m\n")

	stdout, _, err := executeRun(t, "--config", path, "--seed", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "🧪 Starting hans test suite (0 tests)")
	assert.Contains(t, stdout, "🎉 All tests passed!")
}

func TestRun_TimedOutTestFails(t *testing.T) {
	path := writeSuite(t, `unitTests:
  - name: slow service
    component: SyncService
    type: service
    timeout: 1ms
`)

	stdout, _, err := executeRun(t, "--config", path, "--seed", "1")
	require.ErrorIs(t, err, errSuiteFailed)
	assert.Equal(t, ExitCodeError, getExitCode(err))
	assert.Contains(t, stdout, "slow service")
	assert.Contains(t, stdout, "💔 Some tests did not pass")
}

func TestRun_InvalidConfig(t *testing.T) {
	path := writeSuite(t, `unitTests:
  - name: Button renders
    component: Button
    type: component
  - name: Button renders
    component: Form
    type: component
`)

	_, _, err := executeRun(t, "--config", path)
	require.Error(t, err)
	assert.Equal(t, ExitCodeInvalidConfig, getExitCode(err))
}

func TestRun_BadDescriptorFailsOnlyItself(t *testing.T) {
	path := writeSuite(t, `unitTests:
  - name: no component
    type: component
  - name: date formatting
    component: formatDate
    type: utility
`)

	stdout, _, err := executeRun(t, "--config", path, "--seed", "1")
	require.ErrorIs(t, err, errSuiteFailed)
	assert.Equal(t, ExitCodeError, getExitCode(err))
	assert.Contains(t, stdout, "component is required")
	assert.Contains(t, stdout, "date formatting")
}

func TestRun_MarkdownOutput(t *testing.T) {
	path := writeSuite(t, "timeout: 1m\n")

	stdout, _, err := executeRun(t, "--config", path, "--output", "markdown", "--seed", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# Test suite report")
	assert.NotContains(t, stdout, "🧪 Starting", "progress must not mix with the rendered report")
}

func TestRun_JSONOutput(t *testing.T) {
	path := writeSuite(t, "timeout: 1m\n")

	stdout, _, err := executeRun(t, "--config", path, "--output", "json", "--seed", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"configuration"`)
	assert.Contains(t, stdout, `"summary"`)
}

func TestRun_FlagValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown output", []string{"--output", "xml"}, "unsupported output format"},
		{"watch without config", []string{"--watch"}, "--watch requires --config"},
		{"negative timeout", []string{"--timeout", "-1s"}, "must not be negative"},
		{"unknown preset", []string{"--preset", "nightly"}, "unknown preset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeRun(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRelevantChange(t *testing.T) {
	dir := t.TempDir()
	suite := filepath.Join(dir, "suite.yaml")

	tests := []struct {
		name  string
		event fsnotify.Event
		only  string
		want  bool
	}{
		{"yaml write in dir", fsnotify.Event{Name: suite, Op: fsnotify.Write}, "", true},
		{"yml create in dir", fsnotify.Event{Name: filepath.Join(dir, "b.yml"), Op: fsnotify.Create}, "", true},
		{"non yaml file", fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write}, "", false},
		{"chmod only", fsnotify.Event{Name: suite, Op: fsnotify.Chmod}, "", false},
		{"watched file", fsnotify.Event{Name: suite, Op: fsnotify.Write}, suite, true},
		{"sibling of watched file", fsnotify.Event{Name: filepath.Join(dir, "other.yaml"), Op: fsnotify.Write}, suite, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevantChange(tt.event, tt.only))
		})
	}
}

func TestWatchTree(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "mobile", "ios")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	suitePath := filepath.Join(root, "mobile", "suite.yaml")
	require.NoError(t, os.WriteFile(suitePath, []byte("timeout: 1m\n"), 0o644))

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, watchTree(watcher, root))
	assert.ElementsMatch(t, []string{root, filepath.Join(root, "mobile"), nested}, watcher.WatchList())
}

func TestRunCmd_FailFastUsage(t *testing.T) {
	usage := newRunCmd().Flags().Lookup("fail-fast").Usage
	assert.Contains(t, usage, "unit or parallel phase")
	assert.Contains(t, usage, "times out")
}

func TestPresetHelp(t *testing.T) {
	help := presetHelp()
	for _, name := range []string{"quick", "comprehensive", "accessibility"} {
		assert.Contains(t, help, name)
	}
}
