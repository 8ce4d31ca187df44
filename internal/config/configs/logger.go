package configs

import (
	"io"
	"log/slog"
	"strings"
)

// Logger configures the slog handler shared by the API and the worker.
type Logger struct {
	Level     string `env:"LEVEL" envDefault:"info"`
	Format    string `env:"FORMAT" envDefault:"text"`
	AddSource bool   `env:"ADD_SOURCE" envDefault:"false"`
}

// SlogLevel parses Level with slog's own syntax ("debug", "warn+2", ...).
// "warning" and "err" are accepted too; anything else is info.
func (c Logger) SlogLevel() slog.Level {
	text := strings.ToLower(strings.TrimSpace(c.Level))
	switch text {
	case "warning":
		text = "warn"
	case "err":
		text = "error"
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(text)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// NewLogger writes to w in the configured format, JSON or text, with the
// given attributes on every record.
func (c Logger) NewLogger(w io.Writer, attrs ...slog.Attr) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel(), AddSource: c.AddSource}
	var handler slog.Handler
	if strings.EqualFold(c.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler.WithAttrs(attrs))
}
