package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "lightbnb"

// NewLogger returns the process logger.
// APP_ENV=dev (or development) uses a console writer at debug level with caller info;
// anything else writes JSON at info level.
func NewLogger(env string) zerolog.Logger {
	return newLogger(env, os.Stdout)
}

func newLogger(env string, out io.Writer) zerolog.Logger {
	if env == "dev" || env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Caller().Str("service", serviceName).Logger()
	}
	return zerolog.New(out).Level(zerolog.InfoLevel).
		With().Timestamp().Str("service", serviceName).Str("env", env).Logger()
}
