package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	Environment string
	Level       string
	Output      io.Writer
}

// New returns a console logger outside production and a JSON logger in
// production. An unparsable level falls back to debug outside production and
// info in production.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	production := opts.Environment == "production"

	var w io.Writer = out
	if !production {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || opts.Level == "" {
		level = zerolog.DebugLevel
		if production {
			level = zerolog.InfoLevel
		}
	}

	logger := zerolog.New(w).Level(level).With().
		Timestamp().
		Str("env", opts.Environment).
		Logger()
	if err != nil {
		logger.Warn().Str("level", opts.Level).Msg("could not parse logger level")
	}
	return logger
}
