package lua

import (
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine"
)

type Option func(*State)

// Clock is the source of time for os.time and os.clock.
type Clock = engine.Clock

func WithStdin(stdin io.Reader) Option {
	return func(s *State) {
		s.opts = append(s.opts, engine.WithStdin(stdin))
	}
}

func WithStdout(stdout io.Writer) Option {
	return func(s *State) {
		s.opts = append(s.opts, engine.WithStdout(stdout))
	}
}

func WithStderr(stderr io.Writer) Option {
	return func(s *State) {
		s.opts = append(s.opts, engine.WithStderr(stderr))
	}
}

// WithFs sets the filesystem that DoFile and dofile read from. Defaults to
// the operating system's filesystem.
func WithFs(fs afero.Fs) Option {
	return func(s *State) {
		s.fs = fs
	}
}

// WithWorkingDirectory resolves all file names relative to dir.
func WithWorkingDirectory(dir string) Option {
	return func(s *State) {
		s.workingDirectory = dir
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *State) {
		s.opts = append(s.opts, engine.WithLogger(logger))
	}
}

func WithClock(clock Clock) Option {
	return func(s *State) {
		s.opts = append(s.opts, engine.WithClock(clock))
	}
}

// WithMaxCallDepth limits the depth of nested calls, 200 by default. Values
// <= 0 or above 10000 select the hard limit of 10000 calls.
func WithMaxCallDepth(depth int) Option {
	return func(s *State) {
		s.opts = append(s.opts, engine.WithMaxCallDepth(depth))
	}
}
