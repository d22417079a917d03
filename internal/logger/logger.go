// Package logger provides structured logging for the paperqa CLI.
// Warnings and errors are always written; debug and info messages are
// written only when verbose mode is enabled via the --verbose flag.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

var (
	mu         sync.RWMutex
	verbose    bool
	jsonOutput bool
	output     io.Writer = os.Stderr
	base                 = build()
)

// build creates the underlying logger from the current settings.
// Callers must hold mu.
func build() *charmlog.Logger {
	l := charmlog.NewWithOptions(output, charmlog.Options{
		ReportTimestamp: jsonOutput,
		TimeFormat:      "15:04:05",
		Level:           charmlog.WarnLevel,
	})
	if verbose {
		l.SetLevel(charmlog.DebugLevel)
	}
	if jsonOutput {
		l.SetFormatter(charmlog.JSONFormatter)
	}
	return l
}

func current() *charmlog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	base = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetJSON switches between text and JSON output.
func SetJSON(v bool) {
	mu.Lock()
	defer mu.Unlock()
	jsonOutput = v
	base = build()
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = build()
}

// With returns a logger that adds the key/value pairs to every message.
func With(keyvals ...any) *charmlog.Logger {
	return current().With(keyvals...)
}

// Debug logs a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	current().Debugf(format, args...)
}

// Info logs an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	current().Infof(format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	current().Warnf(format, args...)
}

// Error logs an error.
func Error(format string, args ...any) {
	current().Errorf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	if jsonOutput {
		base.Debug("section", "name", name)
		return
	}
	fmt.Fprintf(output, "\n=== %s ===\n", name)
}
