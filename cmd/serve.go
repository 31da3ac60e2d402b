package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hans/internal/mcpserver"
	"hans/pkg/logging"

	"github.com/spf13/cobra"
)

type serveOptions struct {
	configPath string
	debug      bool
	seed       uint64
}

// newServeCmd creates the command that runs the MCP server over stdio.
func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the harness and mock store as MCP tools over stdio",
		Long: `Runs an MCP server using stdio transport. The server exposes suite
execution (hans_run_suite, hans_get_results, hans_list_presets) and direct
access to the mock document store (store_* tools).

Configure it in your AI assistant's MCP settings. Logs go to stderr so the
protocol stream on stdout stays clean.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Default suite file or directory for hans_run_suite")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging on stderr")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Seed for reproducible runs (default: time based)")
	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	level := logging.LevelWarn
	if opts.debug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, cmd.ErrOrStderr())

	server := mcpserver.New(mcpserver.Options{
		ConfigPath: opts.configPath,
		Debug:      opts.debug,
		Seed:       opts.seed,
	})
	defer server.Close()

	if err := serveUntilDone(ctx, server); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// serveUntilDone returns when the server stops or ctx is cancelled.
func serveUntilDone(ctx context.Context, server *mcpserver.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}
