package history

import (
	"log/slog"
	"time"
)

// DefaultMaxDepth is the undo stack capacity used when none is configured.
const DefaultMaxDepth = 100

// Option configures an Engine during creation.
type Option func(*Engine)

// WithMaxDepth sets the maximum number of batches kept on the undo stack.
// Non-positive values are ignored.
func WithMaxDepth(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxDepth = max
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used to stamp batches.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}
