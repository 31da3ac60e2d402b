package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hans/internal/harness"
	"hans/internal/sim"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := New(Options{
		Seed:  42,
		Clock: sim.NewMockClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)),
	})
	t.Cleanup(s.Close)
	return s
}

// reportView decodes the parts of a SuiteResult the tests inspect.
type reportView struct {
	RunID   string          `json:"runId"`
	State   harness.State   `json:"state"`
	Summary harness.Summary `json:"summary"`
}

func callTool(t *testing.T, handler server.ToolHandlerFunc, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestStoreCRUDRoundTrip(t *testing.T) {
	s := newTestServer(t)

	res := callTool(t, s.handleSetDocument, map[string]any{
		"path": "groups/g1/tasks/t1",
		"data": map[string]any{"title": "Buy milk", "done": false},
	})
	require.False(t, res.IsError, resultText(t, res))

	res = callTool(t, s.handleUpdateDocument, map[string]any{
		"path": "groups/g1/tasks/t1",
		"data": map[string]any{"done": true},
	})
	require.False(t, res.IsError, resultText(t, res))

	res = callTool(t, s.handleGetDocument, map[string]any{"path": "groups/g1/tasks/t1"})
	require.False(t, res.IsError)
	var doc documentView
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &doc))
	assert.True(t, doc.Exists)
	assert.Equal(t, "t1", doc.ID)
	assert.Equal(t, "Buy milk", doc.Data["title"])
	assert.Equal(t, true, doc.Data["done"])

	res = callTool(t, s.handleAddDocument, map[string]any{
		"collection": "groups/g1/tasks",
		"data":       map[string]any{"title": "Walk dog"},
	})
	require.False(t, res.IsError)
	var added map[string]string
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &added))
	assert.NotEmpty(t, added["id"])

	res = callTool(t, s.handleListCollection, map[string]any{"collection": "groups/g1/tasks"})
	var listed []documentView
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &listed))
	assert.Len(t, listed, 2)

	res = callTool(t, s.handleDeleteDocument, map[string]any{"path": "groups/g1/tasks/t1"})
	require.False(t, res.IsError)

	res = callTool(t, s.handleGetDocument, map[string]any{"path": "groups/g1/tasks/t1"})
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &doc))
	assert.False(t, doc.Exists)
	assert.Nil(t, doc.Data)
}

func TestStoreToolErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name    string
		handler server.ToolHandlerFunc
		args    map[string]any
		want    string
	}{
		{"missing path", s.handleGetDocument, map[string]any{}, "path is required"},
		{"data not an object", s.handleSetDocument, map[string]any{"path": "a/b", "data": "x"}, "data must be an object"},
		{"update missing document", s.handleUpdateDocument, map[string]any{"path": "a/b", "data": map[string]any{"x": 1}}, "document not found"},
		{"invalid path", s.handleSetDocument, map[string]any{"path": "a//b", "data": map[string]any{}}, "invalid path"},
		{"missing collection", s.handleListCollection, map[string]any{}, "collection is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, tt.handler, tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.want)
		})
	}
}

func TestSetNetwork(t *testing.T) {
	s := newTestServer(t)

	res := callTool(t, s.handleSetNetwork, map[string]any{"preset": "slow"})
	require.False(t, res.IsError, resultText(t, res))
	assert.Equal(t, "slow", s.store().NetworkCondition().Name)

	res = callTool(t, s.handleSetNetwork, map[string]any{"preset": "offline"})
	require.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"offline": true`)

	res = callTool(t, s.handleGetDocument, map[string]any{"path": "a/b"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "backend offline")

	callTool(t, s.handleSetNetwork, map[string]any{"preset": "online"})
	res = callTool(t, s.handleSetNetwork, map[string]any{"latency": "250ms", "error_rate": 0.1})
	require.False(t, res.IsError, resultText(t, res))
	cond := s.store().NetworkCondition()
	assert.Equal(t, "custom", cond.Name)
	assert.Equal(t, 250*time.Millisecond, cond.Latency)
	assert.InDelta(t, 0.1, cond.ErrorRate, 1e-9)

	res = callTool(t, s.handleSetNetwork, map[string]any{"error_rate": 1.5})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "invalid network condition")

	res = callTool(t, s.handleSetNetwork, map[string]any{"preset": "dialup"})
	assert.True(t, res.IsError)
}

func TestReset(t *testing.T) {
	s := newTestServer(t)

	callTool(t, s.handleSetDocument, map[string]any{"path": "a/b", "data": map[string]any{"x": 1}})
	callTool(t, s.handleSetNetwork, map[string]any{"preset": "offline"})

	res := callTool(t, s.handleReset, nil)
	require.False(t, res.IsError)
	assert.Equal(t, 0, s.store().Len())
	assert.False(t, s.store().IsOffline())
}

func TestRunSuiteAndGetResults(t *testing.T) {
	s := newTestServer(t)

	res := callTool(t, s.handleGetResults, nil)
	assert.Contains(t, resultText(t, res), "no_results")

	res = callTool(t, s.handleRunSuite, map[string]any{"preset": "quick", "fail_fast": false})
	require.False(t, res.IsError, resultText(t, res))

	var result reportView
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &result))
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, harness.QuickConfig().TotalDescriptors(), result.Summary.TotalTests)

	res = callTool(t, s.handleGetResults, map[string]any{"format": "markdown"})
	require.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), result.RunID)

	res = callTool(t, s.handleGetResults, map[string]any{"format": "xml"})
	assert.True(t, res.IsError)
}

func TestRunSuite_FromConfigPath(t *testing.T) {
	s := newTestServer(t)

	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`unitTests:
  - name: Button renders
    component: Button
    type: component
timeout: 1m
`), 0o644))

	res := callTool(t, s.handleRunSuite, map[string]any{"config_path": path})
	require.False(t, res.IsError, resultText(t, res))

	var result reportView
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &result))
	assert.Equal(t, 1, result.Summary.TotalTests)
}

func TestRunSuite_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"unknown preset", map[string]any{"preset": "nightly"}, "unknown preset"},
		{"bad timeout", map[string]any{"timeout": "soon"}, "Invalid timeout"},
		{"negative seed", map[string]any{"seed": -1.0}, "seed must not be negative"},
		{"missing config", map[string]any{"config_path": filepath.Join(t.TempDir(), "nope.yaml")}, "nope.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, s.handleRunSuite, tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.want)
		})
	}
}

func TestRunSuite_SeedReplacesStore(t *testing.T) {
	s := newTestServer(t)
	callTool(t, s.handleSetDocument, map[string]any{"path": "a/b", "data": map[string]any{"x": 1}})
	before := s.store()

	res := callTool(t, s.handleRunSuite, map[string]any{"preset": "quick", "fail_fast": false, "seed": 7.0})
	require.False(t, res.IsError, resultText(t, res))

	assert.NotSame(t, before, s.store())
	snap, err := s.store().Doc("a/b").Get(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.Exists())
}

func TestRunSuite_SeedRefusedWhileRunning(t *testing.T) {
	s := newTestServer(t)
	callTool(t, s.handleSetDocument, map[string]any{"path": "a/b", "data": map[string]any{"x": 1}})
	before := s.current()

	// Hold the run lock as an in-flight hans_run_suite call does.
	s.runMu.Lock()
	res := callTool(t, s.handleRunSuite, map[string]any{"preset": "quick", "seed": 7.0})
	s.runMu.Unlock()

	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "already running")
	assert.Same(t, before, s.current())
	snap, err := s.store().Doc("a/b").Get(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Exists(), "the running framework's store must survive")

	res = callTool(t, s.handleRunSuite, map[string]any{"preset": "quick", "fail_fast": false, "seed": 7.0})
	require.False(t, res.IsError, resultText(t, res))
	assert.NotSame(t, before, s.current())
}

func TestListPresets(t *testing.T) {
	s := newTestServer(t)

	text := resultText(t, callTool(t, s.handleListPresets, nil))
	for _, name := range harness.PresetNames() {
		assert.Contains(t, text, "- "+name)
	}
	assert.Contains(t, text, "(8 tests)")
}
