package slogx

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls how the process-wide logger is built.
type Config struct {
	Service string // logical service name, stamped on every record
	Version string // build version, stamped on every record
	Env     string // "dev" enables source locations
	Level   string // "debug", "info", "warn" or "error"; defaults to info
	Format  string // "text" for human-readable output, anything else is JSON
	Output  io.Writer
}

// New builds a slog.Logger from cfg, installs it as the slog default and
// returns it. Records carry the service identity so logs from different
// processes can be told apart once aggregated.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{
		AddSource: cfg.Env == "dev",
		Level:     parseLevel(cfg.Level),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler).With(
		"service", cfg.Service,
		"version", cfg.Version,
		"env", cfg.Env,
	)

	slog.SetDefault(logger)
	return logger
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
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
