// Package log owns the global structured logger.
//
// Logging is configured exactly once per process; later calls to
// Configure are no-ops. Components grab child loggers through
// WithComponent so every line carries its origin.
package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Config captures the options honoured by Configure.
type Config struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Output defaults to stderr so formatted files stay clean on stdout.
	Output io.Writer
	// Plain disables the console writer and emits raw JSON lines.
	Plain bool
}

var (
	once sync.Once
	base zerolog.Logger
)

// Configure initialises the global logger. The first call wins.
func Configure(cfg Config) {
	once.Do(func() {
		out := cfg.Output
		if out == nil {
			out = os.Stderr
		}

		level := parseLevel(cfg.Level)
		if env := os.Getenv("UFMT_LOG"); env != "" {
			level = parseLevel(env)
		}

		var w io.Writer = out
		if !cfg.Plain {
			w = zerolog.ConsoleWriter{Out: out, PartsExclude: []string{zerolog.TimestampFieldName}}
		}

		base = zerolog.New(w).Level(level)
	})
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Base returns the configured logger, configuring defaults on first use.
func Base() zerolog.Logger {
	Configure(Config{})
	return base
}

// WithComponent returns a child logger annotated with a component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}
