package harness

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"
)

func sampleResult() *SuiteResult {
	results := []TestResult{
		{TestName: "Button renders", Category: CategoryUnit, Status: StatusPassed, Duration: 40 * time.Millisecond, Details: &UnitDetails{Coverage: 90}},
		{TestName: "login", Category: CategorySecurity, Status: StatusFailed, Error: "authentication vulnerability", Details: &SecurityDetails{Vulnerabilities: []string{"token"}}},
	}
	r := buildReport("run-42", StateCompleted, testStart, testStart.Add(2*time.Second), results)
	return &r
}

func TestParseOutputFormat(t *testing.T) {
	for in, want := range map[string]OutputFormat{
		"text": FormatText, "JSON": FormatJSON, " yaml ": FormatYAML, "markdown": FormatMarkdown, "md": FormatMarkdown,
	} {
		got, err := ParseOutputFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseOutputFormat("xml")
	assert.Error(t, err)
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleResult(), FormatJSON))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-42", decoded["runId"])
	assert.Equal(t, "completed", decoded["state"])
	assert.Len(t, decoded["detailedResults"], 2)
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleResult(), FormatYAML))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-42", decoded["runId"])
	summary := decoded["summary"].(map[string]interface{})
	assert.EqualValues(t, 2, summary["totalTests"])
}

func TestRender_Markdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleResult(), FormatMarkdown))
	out := buf.String()

	assert.Contains(t, out, "# Test suite report")
	assert.Contains(t, out, "- **Run:** run-42")
	assert.Contains(t, out, "- **Started:** 2024-03-01 09:00:00")
	assert.Contains(t, out, "- **Duration:** 2s")
	assert.Contains(t, out, "| Unit | 1 | 1 | 0 | 0 | 0 |")
	assert.Contains(t, out, "| Security | 1 | 0 | 1 | 0 | 0 |")
	assert.Contains(t, out, "## Coverage")
	assert.Contains(t, out, "- `login` (security, failed): authentication vulnerability")
	assert.Contains(t, out, "- Remediate 1 security vulnerability(ies) before release")
	assert.NotContains(t, out, "## Performance")
}

func TestRender_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleResult(), FormatText))
	out := buf.String()

	assert.Contains(t, out, "run-42")
	assert.Contains(t, out, "Quality gates")
	assert.Contains(t, out, "security")
	assert.Contains(t, out, "Vulnerabilities")
}

func TestRender_HarnessError(t *testing.T) {
	r := errorReport("run-err", testStart, testStart, assert.AnError)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, &r, FormatMarkdown))
	assert.Contains(t, buf.String(), "> **Harness error:** "+assert.AnError.Error())
}
