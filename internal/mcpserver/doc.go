// Package mcpserver exposes the test harness over the Model Context Protocol.
//
// The server is meant to be launched by an MCP client over stdio. It offers
// two groups of tools:
//
//   - hans_run_suite, hans_get_results and hans_list_presets run suites
//     and return their reports.
//   - store_* tools read and write the in-memory document store and change
//     its simulated network, so a client can prepare data or inspect what a
//     suite left behind.
//
// The harness runs in MCP server mode, which never writes to stdout.
package mcpserver
