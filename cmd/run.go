package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"hans/internal/harness"
	"hans/pkg/logging"

	"github.com/briandowns/spinner"
	"github.com/fsnotify/fsnotify"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// watchDebounce collapses bursts of file events into one rerun.
const watchDebounce = 300 * time.Millisecond

type runOptions struct {
	preset     string
	configPath string
	failFast   bool
	timeout    time.Duration
	seed       uint64
	verbose    bool
	debug      bool
	output     string
	reportPath string
	watch      bool
}

// completePresetFlag provides shell completion for the preset flag
func completePresetFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return harness.PresetNames(), cobra.ShellCompDirectiveNoFileComp
}

// completeOutputFlag provides shell completion for the output flag
func completeOutputFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	formats := make([]string, 0, len(harness.OutputFormats))
	for _, f := range harness.OutputFormats {
		formats = append(formats, string(f))
	}
	return formats, cobra.ShellCompDirectiveNoFileComp
}

// newRunCmd creates the command that executes a test suite.
func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a test suite",
		Long: `Executes a test suite in three phases: unit tests, then integration,
performance, accessibility and security pipelines in parallel, then
end-to-end flows. With fail-fast, a failure or timeout in the unit phase
stops the run before the parallel phase, and one in the parallel phase
stops it before the end-to-end flows.

The suite comes from --config (a YAML file or a directory of them) or from
a built-in preset:
` + presetHelp() + `
Example usage:
  hans run                                 # Run the quick preset
  hans run --preset comprehensive          # Run every category
  hans run --config suite.yaml --verbose   # Run a suite file with details
  hans run --output markdown > report.md   # Write a Markdown report
  hans run --config suites/ --watch        # Rerun when suite files change

The command exits with code 1 when any test failed, timed out or was
skipped, and with code 2 when the suite configuration is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.preset, "preset", harness.PresetQuick, "Built-in suite to run when --config is not set")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a suite YAML file or a directory of them")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "Stop after the unit or parallel phase when a test in it fails or times out (overrides the suite)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Overall suite timeout (overrides the suite)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Seed for reproducible runs (default: time based)")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose test output")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVarP(&opts.output, "output", "o", string(harness.FormatText), "Output format: text, json, yaml or markdown")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "Directory to save a detailed JSON report to (text output)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Rerun the suite whenever a file under --config changes")

	_ = cmd.RegisterFlagCompletionFunc("preset", completePresetFlag)
	_ = cmd.RegisterFlagCompletionFunc("output", completeOutputFlag)

	cmd.MarkFlagsMutuallyExclusive("preset", "config")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if _, err := harness.ParseOutputFormat(opts.output); err != nil {
			return err
		}
		if opts.watch && opts.configPath == "" {
			return fmt.Errorf("--watch requires --config")
		}
		if opts.timeout < 0 {
			return fmt.Errorf("timeout must not be negative, got %s", opts.timeout)
		}
		return nil
	}
	return cmd
}

func presetHelp() string {
	var b strings.Builder
	for _, name := range harness.PresetNames() {
		fmt.Fprintf(&b, "  %-14s %s\n", name, harness.PresetDescription(name))
	}
	return b.String()
}

func runSuite(cmd *cobra.Command, opts *runOptions) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	level := logging.LevelWarn
	if opts.debug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, stderr)

	format, err := harness.ParseOutputFormat(opts.output)
	if err != nil {
		return err
	}

	fwOpts := harness.FrameworkOptions{
		Mode:       harness.ExecutionModeCLI,
		Verbose:    opts.verbose,
		Debug:      opts.debug,
		ReportPath: opts.reportPath,
		Seed:       opts.seed,
		Stdout:     stdout,
		Stderr:     stderr,
	}
	switch format {
	case harness.FormatText:
		fwOpts.Output = "text"
	case harness.FormatJSON:
		fwOpts.Output = "json"
	default:
		// The report is rendered once the run completes.
		fwOpts.Output = "quiet"
		fwOpts.Stdout = io.Discard
	}

	framework := harness.NewFrameworkWithOptions(fwOpts)
	defer framework.Close()

	run := func() error {
		return runOnce(ctx, cmd, opts, framework, format)
	}

	if !opts.watch {
		return run()
	}
	return watchAndRun(ctx, stderr, opts.configPath, func() {
		framework.Orchestrator.Reset()
		framework.Backend.Reset()
		if err := run(); err != nil && !errors.Is(err, errSuiteFailed) {
			fmt.Fprintf(stderr, "%s %v\n", text.FgRed.Sprint("❌"), err)
		}
	})
}

// runOnce loads the suite, executes it and renders the result.
func runOnce(ctx context.Context, cmd *cobra.Command, opts *runOptions, framework *harness.Framework, format harness.OutputFormat) error {
	config, err := loadSuite(framework, opts)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("fail-fast") {
		config.FailFast = opts.failFast
	}
	if cmd.Flags().Changed("timeout") {
		config.Timeout = opts.timeout
	}

	var s *spinner.Spinner
	if format != harness.FormatText {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
		s.Suffix = fmt.Sprintf(" Running %d tests...", config.TotalDescriptors())
		s.Start()
	}

	result, err := framework.Orchestrator.ExecuteTestSuite(ctx, config)

	if s != nil {
		s.Stop()
	}
	if err != nil {
		return fmt.Errorf("test execution failed: %w", err)
	}

	if format == harness.FormatYAML || format == harness.FormatMarkdown {
		if err := harness.Render(cmd.OutOrStdout(), result, format); err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
	}

	if !result.Succeeded() {
		return errSuiteFailed
	}
	return nil
}

func loadSuite(framework *harness.Framework, opts *runOptions) (harness.SuiteConfig, error) {
	if opts.configPath != "" {
		return framework.Loader.Load(opts.configPath)
	}
	return harness.Preset(opts.preset)
}

// watchAndRun calls run once, then again after every change to a YAML
// file under configPath, until ctx is done.
func watchAndRun(ctx context.Context, stderr io.Writer, configPath string, run func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	info, err := os.Stat(configPath)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", configPath, err)
	}
	only := ""
	if info.IsDir() {
		err = watchTree(watcher, configPath)
	} else {
		only = filepath.Clean(configPath)
		err = watcher.Add(filepath.Dir(configPath))
	}
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", configPath, err)
	}

	run()
	fmt.Fprintf(stderr, "👀 Watching %s for changes (Ctrl+C to stop)\n", configPath)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if only == "" && event.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := watchTree(watcher, event.Name); err != nil {
						logging.Error("Watch", err, "Failed to watch new directory %s", event.Name)
					}
					debounce = time.After(watchDebounce)
					continue
				}
			}
			if !relevantChange(event, only) {
				continue
			}
			logging.Debug("Watch", "Suite file changed: %s", event.Name)
			debounce = time.After(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Error("Watch", err, "fsnotify error")

		case <-debounce:
			debounce = nil
			fmt.Fprintf(stderr, "\n🔄 Change detected, rerunning suite\n")
			run()
		}
	}
}

// watchTree adds root and every directory below it to watcher, matching
// the directories the suite loader walks.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}

// relevantChange reports whether event should trigger a rerun. When only is
// set, events for other files are ignored.
func relevantChange(event fsnotify.Event, only string) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	if only != "" {
		return filepath.Clean(event.Name) == only
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	return ext == ".yaml" || ext == ".yml"
}
