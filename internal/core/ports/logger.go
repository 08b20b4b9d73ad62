// Package ports defines the core interfaces for the application.
package ports

import "io"

// Logger defines the interface for logging.
//
//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string)

	// Info logs an informational message.
	Info(msg string)

	// Warn logs a warning message.
	Warn(msg string)

	// Error logs an error with its cause chain.
	Error(err error)

	// SetQuiet suppresses Debug, Info and Warn output when enabled.
	SetQuiet(quiet bool)

	// SetOutput updates the logger's output destination.
	SetOutput(w io.Writer)
}
