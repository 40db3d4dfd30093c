package engine

import (
	"io"
	"log/slog"
	"time"

	"github.com/spf13/afero"
)

// Option configures an Engine in New.
type Option func(*Engine)

// Clock is the source of time for os.time and os.clock.
type Clock interface {
	Now() time.Time
}

type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now() }

// WithFs sets the filesystem that dofile reads from.
func WithFs(fs afero.Fs) Option {
	return func(e *Engine) {
		e.fs = fs
	}
}

// WithStdin sets the reader dofile evaluates when called without a file name.
func WithStdin(stdin io.Reader) Option {
	return func(e *Engine) {
		e.stdin = stdin
	}
}

// WithStdout sets the writer print writes to.
func WithStdout(stdout io.Writer) Option {
	return func(e *Engine) {
		e.stdout = stdout
	}
}

// WithStderr sets the error output of the engine.
func WithStderr(stderr io.Writer) Option {
	return func(e *Engine) {
		e.stderr = stderr
	}
}

// WithClock replaces the system clock, mostly for tests.
func WithClock(clock Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithLogger sets the logger for debug output of the engine. By default,
// nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxCallDepth limits the depth of nested calls. Values <= 0 or above
// MaxCallDepthLimit select MaxCallDepthLimit.
func WithMaxCallDepth(depth int) Option {
	return func(e *Engine) {
		if depth <= 0 || depth > MaxCallDepthLimit {
			depth = MaxCallDepthLimit
		}
		e.maxCallDepth = depth
	}
}
