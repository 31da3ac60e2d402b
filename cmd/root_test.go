package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"hans/internal/harness"
)

func TestSetVersion(t *testing.T) {
	original := rootCmd.Version
	defer func() { rootCmd.Version = original }()

	SetVersion("1.2.3-test")
	if GetVersion() != "1.2.3-test" {
		t.Errorf("Expected version to be 1.2.3-test, got %s", GetVersion())
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "hans" {
		t.Errorf("Expected Use to be 'hans', got %s", rootCmd.Use)
	}
	if rootCmd.Short == "" || rootCmd.Long == "" {
		t.Error("Expected Short and Long descriptions to be set")
	}
	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}
}

func TestSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		found[cmd.Name()] = true
	}

	for _, expected := range []string{"run", "serve", "version"} {
		if !found[expected] {
			t.Errorf("Expected subcommand %s to be registered", expected)
		}
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitCodeSuccess},
		{"suite failed", errSuiteFailed, ExitCodeError},
		{"wrapped invalid config", fmt.Errorf("test execution failed: %w", harness.ErrInvalidConfig), ExitCodeInvalidConfig},
		{"config file error", &harness.ConfigError{Path: "suite.yaml", Err: errors.New("bad yaml")}, ExitCodeInvalidConfig},
		{"other", errors.New("boom"), ExitCodeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getExitCode(tt.err); got != tt.want {
				t.Errorf("getExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestVersionTemplate(t *testing.T) {
	var buf bytes.Buffer
	versionCmd := newVersionCmd()
	versionCmd.SetOut(&buf)

	original := rootCmd.Version
	defer func() { rootCmd.Version = original }()
	rootCmd.Version = "1.0.0"

	versionCmd.Run(versionCmd, nil)
	if buf.String() != "hans version 1.0.0\n" {
		t.Errorf("Expected version output %q, got %q", "hans version 1.0.0\n", buf.String())
	}
}
