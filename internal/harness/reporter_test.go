package harness

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	dir := filepath.Join(t.TempDir(), "reports")
	r := NewConsoleReporter(&buf, true, false, dir)

	r.ReportStart(QuickConfig())
	r.ReportPhase(StateUnit)
	r.ReportTestResult(TestResult{TestName: "Button renders", Category: CategoryUnit, Status: StatusPassed, Duration: 41 * time.Millisecond})
	r.ReportTestResult(TestResult{TestName: "sync service", Category: CategoryUnit, Status: StatusFailed, Error: "assertion failed in SyncService"})
	r.ReportPhase(StateCompleted)
	r.ReportSuiteResult(*sampleResult())

	out := buf.String()
	assert.Contains(t, out, "🧪 Starting hans test suite (8 tests)")
	assert.Contains(t, out, "• Fail fast: true")
	assert.Contains(t, out, "▶️  Phase 1: unit tests")
	assert.Contains(t, out, "✅ [unit] Button renders (41ms)")
	assert.Contains(t, out, "❌ [unit] sync service")
	assert.Contains(t, out, "⚠️  assertion failed in SyncService")
	assert.Contains(t, out, "🏁 Test Suite Complete (completed)")
	assert.Contains(t, out, "💔 Some tests did not pass")
	assert.Contains(t, out, "📄 Detailed report saved to:")

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "hans-report-20240301-090000.json", files[0].Name())
}

func TestQuietReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewQuietReporter(&buf)

	r.ReportStart(QuickConfig())
	r.ReportTestResult(TestResult{TestName: "ok", Status: StatusPassed})
	r.ReportTestResult(TestResult{TestName: "slow", Status: StatusTimeout, Error: "timed out"})
	r.ReportSuiteResult(*sampleResult())

	assert.Equal(t, "⏰ slow: timed out\n❌ 1/2 tests failed, 0 skipped (2s)\n", buf.String())
}

func TestJSONReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporter(&buf)

	r.ReportStart(SuiteConfig{FailFast: true})
	r.ReportTestResult(TestResult{TestName: "one", Category: CategoryUnit, Status: StatusPassed})
	r.ReportSuiteResult(*sampleResult())

	// Details is an interface, so only the first level is decoded here.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	var cfg SuiteConfig
	require.NoError(t, json.Unmarshal(raw["configuration"], &cfg))
	assert.True(t, cfg.FailFast)
	assert.Contains(t, string(raw["results"]), `"testName": "one"`)
	assert.Contains(t, string(raw["summary"]), `"runId": "run-42"`)
}

func TestStructuredReporter(t *testing.T) {
	r := NewStructuredReporter()

	assert.Nil(t, r.LastSuiteResult())
	js, err := r.ResultsAsJSON()
	require.NoError(t, err)
	assert.Contains(t, js, "no_results")

	r.ReportStart(QuickConfig())
	r.ReportPhase(StateParallel)
	r.ReportTestResult(TestResult{TestName: "one", Status: StatusPassed})
	assert.Equal(t, StateParallel, r.CurrentState())
	assert.Len(t, r.CurrentResults(), 1)

	r.ReportSuiteResult(*sampleResult())
	last := r.LastSuiteResult()
	require.NotNil(t, last)
	assert.Equal(t, "run-42", last.RunID)
	assert.Equal(t, StateCompleted, r.CurrentState())

	// Callers get a copy.
	last.DetailedResults[0].TestName = "changed"
	assert.Equal(t, "Button renders", r.LastSuiteResult().DetailedResults[0].TestName)

	js, err = r.ResultsAsJSON()
	require.NoError(t, err)
	assert.Contains(t, js, `"runId": "run-42"`)
}

func TestConsoleReporter_FlattensLongErrors(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, false, false, "")

	long := "list groups/g1/tasks:\n" + strings.Repeat("backend offline ", 20)
	r.ReportTestResult(TestResult{TestName: "sync", Category: CategoryIntegration, Status: StatusFailed, Error: long})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[1], "..."))
	assert.Contains(t, lines[1], "list groups/g1/tasks: backend offline")
}
