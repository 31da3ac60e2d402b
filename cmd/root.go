package cmd

import (
	"errors"
	"os"

	"hans/internal/harness"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates every test passed.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error or a suite that did not pass.
	ExitCodeError = 1
	// ExitCodeInvalidConfig indicates the suite configuration was rejected
	// before any test ran.
	ExitCodeInvalidConfig = 2
)

// errSuiteFailed is returned by the run command when the suite did not pass.
var errSuiteFailed = errors.New("test suite did not pass")

// rootCmd represents the base command for the hans application.
var rootCmd = &cobra.Command{
	Use:   "hans",
	Short: "Run simulated test suites against a mock realtime backend",
	Long: `hans orchestrates unit, integration, performance, accessibility,
security and end-to-end test suites against an in-memory document store
that simulates realtime listeners and network conditions.

Suites come from built-in presets or YAML files. Results are summarized
with coverage, performance, accessibility and security views plus a list
of recommendations.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a code derived from the
// error, if any. It is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "hans version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	var cfgErr *harness.ConfigError
	if errors.Is(err, harness.ErrInvalidConfig) || errors.As(err, &cfgErr) {
		return ExitCodeInvalidConfig
	}
	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
