package configs

import (
	"log/slog"
	"strings"
)

// Logger configures the slog handler of the service.
type Logger struct {
	// Level is one of debug, info, warn or error.
	Level string `env:"LEVEL" envDefault:"info"`
	// Format is text or json. Anything else means text.
	Format    string `env:"FORMAT" envDefault:"text"`
	AddSource bool   `env:"ADD_SOURCE" envDefault:"false"`
}

// SlogLevel returns the configured level, slog.LevelInfo when unknown.
func (c Logger) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SlogFormat returns "json" or "text".
func (c Logger) SlogFormat() string {
	if strings.EqualFold(strings.TrimSpace(c.Format), "json") {
		return "json"
	}
	return "text"
}
