package harness

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigError reports a suite file that could not be read or parsed.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("suite config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// suiteFile is the on-disk form of a SuiteConfig. A preset, when named, is
// the base the file's descriptors are added to. Flags are pointers so an
// explicit false can override the preset.
type suiteFile struct {
	Preset string `yaml:"preset,omitempty"`

	UnitTests          []UnitTestConfig          `yaml:"unitTests,omitempty"`
	IntegrationTests   []IntegrationTestConfig   `yaml:"integrationTests,omitempty"`
	E2ETests           []E2ETestConfig           `yaml:"e2eTests,omitempty"`
	PerformanceTests   []PerformanceTestConfig   `yaml:"performanceTests,omitempty"`
	AccessibilityTests []AccessibilityTestConfig `yaml:"accessibilityTests,omitempty"`
	SecurityTests      []SecurityTestConfig      `yaml:"securityTests,omitempty"`

	FailFast *bool         `yaml:"failFast,omitempty"`
	Parallel *bool         `yaml:"parallel,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// applyTo adds the file's descriptors to base. Flags set in the file
// replace base's; a timeout set in the file replaces base's.
func (f suiteFile) applyTo(base SuiteConfig) SuiteConfig {
	out := MergeConfigs(base, SuiteConfig{
		UnitTests:          f.UnitTests,
		IntegrationTests:   f.IntegrationTests,
		E2ETests:           f.E2ETests,
		PerformanceTests:   f.PerformanceTests,
		AccessibilityTests: f.AccessibilityTests,
		SecurityTests:      f.SecurityTests,
	})
	if f.FailFast != nil {
		out.FailFast = *f.FailFast
	}
	if f.Parallel != nil {
		out.Parallel = *f.Parallel
	}
	if f.Timeout != 0 {
		out.Timeout = f.Timeout
	}
	return out
}

// ConfigLoader reads suite configurations from YAML files.
type ConfigLoader struct {
	logger TestLogger
}

// NewConfigLoader creates a loader that logs through logger.
func NewConfigLoader(logger TestLogger) *ConfigLoader {
	if logger == nil {
		logger = NewSilentLogger(false, false)
	}
	return &ConfigLoader{logger: logger}
}

// Load reads a suite file, or every YAML file below a directory merged in
// lexical order, and validates the result.
func (l *ConfigLoader) Load(configPath string) (SuiteConfig, error) {
	l.logger.Debug("📁 Loading suite config from: %s\n", configPath)

	info, err := os.Stat(configPath)
	if err != nil {
		return SuiteConfig{}, &ConfigError{Path: configPath, Err: err}
	}

	var cfg SuiteConfig
	if info.IsDir() {
		cfg, err = l.loadDirectory(configPath)
	} else {
		cfg, err = l.loadFile(configPath)
	}
	if err != nil {
		return SuiteConfig{}, err
	}

	if err := ValidateSuiteConfig(cfg); err != nil {
		return SuiteConfig{}, &ConfigError{Path: configPath, Err: err}
	}
	l.logger.Debug("📋 Loaded %d descriptors\n", cfg.TotalDescriptors())
	return cfg, nil
}

func (l *ConfigLoader) loadDirectory(dirPath string) (SuiteConfig, error) {
	var merged SuiteConfig
	found := 0

	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAMLFile(path) {
			return nil
		}
		l.logger.Debug("📄 Loading suite file: %s\n", path)

		cfg, err := l.loadFile(path)
		if err != nil {
			return err
		}
		merged = MergeConfigs(merged, cfg)
		found++
		return nil
	})
	if err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			return SuiteConfig{}, err
		}
		return SuiteConfig{}, &ConfigError{Path: dirPath, Err: err}
	}
	if found == 0 {
		return SuiteConfig{}, &ConfigError{Path: dirPath, Err: errors.New("no YAML files found")}
	}
	return merged, nil
}

func (l *ConfigLoader) loadFile(filePath string) (SuiteConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return SuiteConfig{}, &ConfigError{Path: filePath, Err: err}
	}
	cfg, err := ParseSuiteConfig(data)
	if err != nil {
		return SuiteConfig{}, &ConfigError{Path: filePath, Err: err}
	}
	return cfg, nil
}

// ParseSuiteConfig decodes YAML into a SuiteConfig. Unknown fields are
// rejected. The result is not validated.
func ParseSuiteConfig(data []byte) (SuiteConfig, error) {
	var file suiteFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return SuiteConfig{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	var base SuiteConfig
	if file.Preset != "" {
		p, err := Preset(file.Preset)
		if err != nil {
			return SuiteConfig{}, err
		}
		base = p
	}
	return file.applyTo(base), nil
}

// MergeConfigs appends extra's descriptors to base's. It combines the
// files of a suite directory, so flags are combined with OR and the longer
// timeout wins.
func MergeConfigs(base, extra SuiteConfig) SuiteConfig {
	out := SuiteConfig{
		UnitTests:          append(append([]UnitTestConfig{}, base.UnitTests...), extra.UnitTests...),
		IntegrationTests:   append(append([]IntegrationTestConfig{}, base.IntegrationTests...), extra.IntegrationTests...),
		E2ETests:           append(append([]E2ETestConfig{}, base.E2ETests...), extra.E2ETests...),
		PerformanceTests:   append(append([]PerformanceTestConfig{}, base.PerformanceTests...), extra.PerformanceTests...),
		AccessibilityTests: append(append([]AccessibilityTestConfig{}, base.AccessibilityTests...), extra.AccessibilityTests...),
		SecurityTests:      append(append([]SecurityTestConfig{}, base.SecurityTests...), extra.SecurityTests...),
		FailFast:           base.FailFast || extra.FailFast,
		Parallel:           base.Parallel || extra.Parallel,
		Timeout:            max(base.Timeout, extra.Timeout),
	}
	return out
}

// isYAMLFile checks if a file has a YAML extension
func isYAMLFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".yaml" || ext == ".yml"
}
