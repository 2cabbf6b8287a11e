package database

import (
	"context"
	"log/slog"
)

// ClassifiedError carries the descriptor for a failed persistence
// operation. Its Error string is the user-facing message; the raw driver
// error stays reachable through Unwrap for logging only.
type ClassifiedError struct {
	Descriptor ErrorDescriptor
	cause      error
}

func (e *ClassifiedError) Error() string { return e.Descriptor.Message }
func (e *ClassifiedError) Unwrap() error { return e.cause }

// ErrorReporter is the single point that classifies, logs, and re-raises
// persistence failures. Verbose logging is an explicit constructor flag,
// not an ambient environment check.
type ErrorReporter struct {
	logger  *slog.Logger
	verbose bool
}

func NewErrorReporter(logger *slog.Logger, verbose bool) *ErrorReporter {
	return &ErrorReporter{logger: logger, verbose: verbose}
}

// Wrap runs fn and converts any failure into a *ClassifiedError. Detail of
// the raw error is logged only when verbose logging is on, so internals
// never leak into production logs picked up by support tooling.
func (r *ErrorReporter) Wrap(ctx context.Context, operation string, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	desc := Classify(err)
	if r.logger != nil {
		if r.verbose {
			r.logger.ErrorContext(ctx, "database operation failed",
				"operation", operation,
				"code", desc.Code,
				"status", desc.StatusCode,
				"error", err.Error(),
			)
		} else {
			r.logger.ErrorContext(ctx, "database operation failed",
				"operation", operation,
				"code", desc.Code,
				"status", desc.StatusCode,
			)
		}
	}
	return &ClassifiedError{Descriptor: desc, cause: err}
}
