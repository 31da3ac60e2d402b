package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"hans/internal/harness"

	"github.com/mark3labs/mcp-go/mcp"
)

const errAlreadyRunning = "A test suite is already running; retry once it completes"

// handleRunSuite handles the hans_run_suite MCP tool
func (s *Server) handleRunSuite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	if !s.runMu.TryLock() {
		return mcp.NewToolResultError(errAlreadyRunning), nil
	}
	defer s.runMu.Unlock()

	fw := s.current()
	if seed, ok := args["seed"].(float64); ok {
		if seed < 0 {
			return mcp.NewToolResultError("seed must not be negative"), nil
		}
		fw = s.reseed(uint64(seed))
	}

	config, err := s.suiteConfig(fw, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if failFast, ok := args["fail_fast"].(bool); ok {
		config.FailFast = failFast
	}
	if timeout, ok := args["timeout"].(string); ok && timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil || d <= 0 {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid timeout '%s', must be a positive duration such as 2m", timeout)), nil
		}
		config.Timeout = d
	}

	result, err := fw.Orchestrator.ExecuteTestSuite(ctx, config)
	if errors.Is(err, harness.ErrAlreadyRunning) {
		return mcp.NewToolResultError(errAlreadyRunning), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Test execution failed: %v", err)), nil
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format test results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// suiteConfig resolves the suite to run: an explicit config path, then a
// preset, then the server's default config path, then the quick preset.
func (s *Server) suiteConfig(fw *harness.Framework, args map[string]any) (harness.SuiteConfig, error) {
	configPath, _ := args["config_path"].(string)
	preset, _ := args["preset"].(string)

	switch {
	case configPath != "":
		return fw.Loader.Load(configPath)
	case preset != "":
		return harness.Preset(preset)
	case s.opts.ConfigPath != "":
		return fw.Loader.Load(s.opts.ConfigPath)
	default:
		return harness.QuickConfig(), nil
	}
}

// handleGetResults handles the hans_get_results MCP tool
func (s *Server) handleGetResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	reporter, ok := s.current().StructuredReporter()
	if !ok {
		return mcp.NewToolResultError("Results are not captured in this mode"), nil
	}

	format := harness.FormatJSON
	if name, ok := args["format"].(string); ok && name != "" {
		f, err := harness.ParseOutputFormat(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		format = f
	}

	result := reporter.LastSuiteResult()
	if result == nil {
		text, err := reporter.ResultsAsJSON()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to format test results: %v", err)), nil
		}
		return mcp.NewToolResultText(text), nil
	}

	var buf bytes.Buffer
	if err := harness.Render(&buf, result, format); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format test results: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// handleListPresets handles the hans_list_presets MCP tool
func (s *Server) handleListPresets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	b.WriteString("Available presets:\n")
	for _, name := range harness.PresetNames() {
		config, err := harness.Preset(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		fmt.Fprintf(&b, "- %s (%d tests): %s\n", name, config.TotalDescriptors(), harness.PresetDescription(name))
	}
	return mcp.NewToolResultText(b.String()), nil
}
