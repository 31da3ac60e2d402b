package mcpserver

import (
	"context"
	"sync"

	"hans/internal/harness"
	"hans/internal/sim"
	"hans/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Options configures a Server.
type Options struct {
	// ConfigPath is the default suite file or directory for hans_run_suite.
	ConfigPath string
	Debug      bool
	// Seed makes runs reproducible. Zero seeds from the current time.
	Seed uint64
	// Clock defaults to the wall clock.
	Clock sim.Clock
}

// Server exposes the test harness and its document store as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	opts      Options

	// runMu is held for the whole of a hans_run_suite call so a reseed
	// never replaces a framework that is still running.
	runMu sync.Mutex

	mu        sync.Mutex
	framework *harness.Framework
}

// New creates a Server with all tools registered.
func New(opts Options) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"hans",
			"1.0.0",
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithPromptCapabilities(false),
		),
		opts: opts,
	}
	s.framework = s.newFramework(opts.Seed)

	s.registerTools()
	return s
}

// Start serves MCP over stdio until the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	logging.Info("MCPServer", "Serving harness and store tools over stdio")
	return server.ServeStdio(s.mcpServer)
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Close releases the framework's backend.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.framework.Close()
}

func (s *Server) newFramework(seed uint64) *harness.Framework {
	return harness.NewFrameworkWithOptions(harness.FrameworkOptions{
		Mode:  harness.ExecutionModeMCPServer,
		Debug: s.opts.Debug,
		Seed:  seed,
		Clock: s.opts.Clock,
	})
}

// current returns the active framework.
func (s *Server) current() *harness.Framework {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.framework
}

// reseed replaces the framework with one seeded by seed. The document
// store is replaced with it. Callers hold runMu.
func (s *Server) reseed(seed uint64) *harness.Framework {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.framework.Close()
	s.framework = s.newFramework(seed)
	logging.Debug("MCPServer", "Framework reseeded with %d", seed)
	return s.framework
}

func (s *Server) registerTools() {
	runSuiteTool := mcp.NewTool("hans_run_suite",
		mcp.WithDescription("Run a test suite from a preset or a YAML suite file and return the report as JSON"),
		mcp.WithString("preset",
			mcp.Description("Built-in suite: quick, comprehensive or accessibility"),
		),
		mcp.WithString("config_path",
			mcp.Description("Path to a suite YAML file or a directory of them"),
		),
		mcp.WithBoolean("fail_fast",
			mcp.Description("Stop after the unit phase or the parallel phase when a test in it fails or times out"),
		),
		mcp.WithString("timeout",
			mcp.Description("Overall suite timeout, e.g. 2m"),
		),
		mcp.WithNumber("seed",
			mcp.Description("Seed for reproducible runs; replaces the document store"),
		),
	)
	s.mcpServer.AddTool(runSuiteTool, s.handleRunSuite)

	getResultsTool := mcp.NewTool("hans_get_results",
		mcp.WithDescription("Get the report of the most recent suite run"),
		mcp.WithString("format",
			mcp.Description("Output format: json (default), yaml, markdown or text"),
		),
	)
	s.mcpServer.AddTool(getResultsTool, s.handleGetResults)

	listPresetsTool := mcp.NewTool("hans_list_presets",
		mcp.WithDescription("List the built-in test suites"),
	)
	s.mcpServer.AddTool(listPresetsTool, s.handleListPresets)

	getDocTool := mcp.NewTool("store_get_document",
		mcp.WithDescription("Read one document from the mock store"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Document path, e.g. groups/g1/tasks/t1"),
		),
	)
	s.mcpServer.AddTool(getDocTool, s.handleGetDocument)

	setDocTool := mcp.NewTool("store_set_document",
		mcp.WithDescription("Create or replace a document"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Document path"),
		),
		mcp.WithObject("data",
			mcp.Required(),
			mcp.Description("Document fields"),
		),
	)
	s.mcpServer.AddTool(setDocTool, s.handleSetDocument)

	updateDocTool := mcp.NewTool("store_update_document",
		mcp.WithDescription("Merge fields into an existing document"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Document path"),
		),
		mcp.WithObject("data",
			mcp.Required(),
			mcp.Description("Fields to merge"),
		),
	)
	s.mcpServer.AddTool(updateDocTool, s.handleUpdateDocument)

	deleteDocTool := mcp.NewTool("store_delete_document",
		mcp.WithDescription("Delete a document"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Document path"),
		),
	)
	s.mcpServer.AddTool(deleteDocTool, s.handleDeleteDocument)

	addDocTool := mcp.NewTool("store_add_document",
		mcp.WithDescription("Add a document with a generated id to a collection"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Collection path, e.g. groups/g1/tasks"),
		),
		mcp.WithObject("data",
			mcp.Required(),
			mcp.Description("Document fields"),
		),
	)
	s.mcpServer.AddTool(addDocTool, s.handleAddDocument)

	listTool := mcp.NewTool("store_list_collection",
		mcp.WithDescription("List the documents directly below a collection"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Collection path"),
		),
	)
	s.mcpServer.AddTool(listTool, s.handleListCollection)

	networkTool := mcp.NewTool("store_set_network",
		mcp.WithDescription("Change the simulated network: a preset name, offline/online, or custom latency and failure rates"),
		mcp.WithString("preset",
			mcp.Description("default, fast, slow, unstable, offline or online"),
		),
		mcp.WithString("latency",
			mcp.Description("Custom latency, e.g. 250ms"),
		),
		mcp.WithNumber("error_rate",
			mcp.Description("Custom probability of a network error, 0 to 1"),
		),
		mcp.WithNumber("timeout_rate",
			mcp.Description("Custom probability of a request timeout, 0 to 1"),
		),
	)
	s.mcpServer.AddTool(networkTool, s.handleSetNetwork)

	resetTool := mcp.NewTool("store_reset",
		mcp.WithDescription("Remove every document and listener and restore the default network"),
	)
	s.mcpServer.AddTool(resetTool, s.handleReset)
}
