package harness

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// consoleLogger implements TestLogger for CLI mode. Errors always go to
// errOut; everything else goes to out when enabled.
type consoleLogger struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	verbose bool
	debug   bool
}

// NewStdoutLogger creates a logger that outputs to stdout/stderr
func NewStdoutLogger(verbose, debug bool) TestLogger {
	return NewWriterLogger(os.Stdout, os.Stderr, verbose, debug)
}

// NewWriterLogger creates a console logger writing to the given streams
func NewWriterLogger(out, errOut io.Writer, verbose, debug bool) TestLogger {
	return &consoleLogger{
		out:     out,
		errOut:  errOut,
		verbose: verbose,
		debug:   debug,
	}
}

func (l *consoleLogger) write(w io.Writer, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(w, format, args...)
}

func (l *consoleLogger) Debug(format string, args ...interface{}) {
	if l.debug {
		l.write(l.out, format, args...)
	}
}

func (l *consoleLogger) Info(format string, args ...interface{}) {
	if l.verbose || l.debug {
		l.write(l.out, format, args...)
	}
}

func (l *consoleLogger) Error(format string, args ...interface{}) {
	l.write(l.errOut, format, args...)
}

func (l *consoleLogger) IsDebugEnabled() bool {
	return l.debug
}

func (l *consoleLogger) IsVerboseEnabled() bool {
	return l.verbose
}

// silentLogger implements TestLogger for MCP server mode, suppressing all output
type silentLogger struct {
	verbose bool
	debug   bool
}

// NewSilentLogger creates a logger that suppresses all output (for MCP server mode)
func NewSilentLogger(verbose, debug bool) TestLogger {
	return &silentLogger{
		verbose: verbose,
		debug:   debug,
	}
}

func (l *silentLogger) Debug(format string, args ...interface{}) {
	// Silent - no output to avoid contaminating stdio
}

func (l *silentLogger) Info(format string, args ...interface{}) {}

func (l *silentLogger) Error(format string, args ...interface{}) {}

func (l *silentLogger) IsDebugEnabled() bool {
	return l.debug
}

func (l *silentLogger) IsVerboseEnabled() bool {
	return l.verbose
}
