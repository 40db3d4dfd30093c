package config

import (
	"io"
	"log/slog"
	"strings"

	"github.com/BattlegroundsCoH/coh-battlegrounds-sub005/internal/engine"
)

// LevelTrace is more verbose than debug. The engine logs every evaluated
// statement at this level.
const LevelTrace = engine.LevelTrace

// ParseLevel parses "trace", "debug", "info", "warn" or "error", ignoring
// case. Unknown levels yield warn.
func ParseLevel(s string) slog.Level {
	if strings.EqualFold(s, "trace") {
		return LevelTrace
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn
	}
	return level
}

// Logger creates a logger writing to w in the configured format.
func (l Log) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(l.Level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if level, ok := a.Value.Any().(slog.Level); ok && level == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
