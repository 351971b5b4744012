package bot

import (
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
)

var levelColors = map[slog.Level]*color.Color{
	slog.LevelDebug: color.New(color.FgHiBlack),
	slog.LevelInfo:  color.New(color.FgHiCyan),
	slog.LevelWarn:  color.New(color.FgHiYellow),
	slog.LevelError: color.New(color.FgHiRed, color.Bold),
}

// ParseLogLevel converts a config string into a slog level. Unknown values map to info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger from the bot configuration.
// "json" (the default) writes one JSON object per line; "text" writes
// key=value lines with a colored level for local development.
func NewLogger(w io.Writer, cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLogLevel(cfg.LogLevel)}

	if strings.EqualFold(cfg.LogFormat, "text") {
		opts.ReplaceAttr = colorizeLevel
		return slog.New(slog.NewTextHandler(w, opts))
	}

	return slog.New(slog.NewJSONHandler(w, opts))
}

func colorizeLevel(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}

	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}

	c, ok := levelColors[level]
	if !ok {
		return a
	}

	return slog.String(slog.LevelKey, c.Sprint(level.String()))
}
