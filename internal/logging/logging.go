// Package logging provides the package-wide logger used across polint.
package logging

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *log.Logger {
	l := log.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	l.SetLevel(log.InfoLevel)
	return l
}

// Log returns the shared logger instance.
func Log() *log.Logger {
	return logger
}

// SetLevel sets the minimum level at which log entries are emitted.
func SetLevel(level log.Level) {
	logger.SetLevel(level)
}

// SetOutput redirects where log entries are written.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetVerbose raises the logger to debug level when verbose is true,
// otherwise restores the default info level.
func SetVerbose(verbose bool) {
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
}
