// Package logging provides subsystem-tagged, leveled logging for hans.
//
// The package wraps Go's log/slog with a small set of printf-style helpers so
// that every component reports through one handler with one filter level.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Orchestrator", "Starting phase %s", phase)
//	logging.Debug("Backend", "set %s", path)
//	logging.Warn("Config", "Timeout not set, using %s", def)
//	logging.Error("Harness", err, "Suite aborted")
//
// Every entry carries a "subsystem" attribute and, for Error, an "error"
// attribute. Calls made before initialization are dropped.
//
// # Levels
//
// ParseLevel maps the strings accepted by the CLI ("debug", "info", "warn",
// "error") to a LogLevel.
package logging
