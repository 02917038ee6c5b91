package util

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogFromContext returns the request-scoped logger previously attached by the
// logging middleware. It falls back to the global logger when the context
// carries no logger (e.g. service code invoked outside a request).
func LogFromContext(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)

	if l.GetLevel() == zerolog.Disabled {
		return &log.Logger
	}

	return l
}

// LogLevelFromString parses a level name, defaulting to info on garbage so a
// misconfigured deployment still logs.
func LogLevelFromString(s string) zerolog.Level {
	l, err := zerolog.ParseLevel(s)
	if err != nil {
		log.Warn().Str("level", s).Msg("Unknown log level, defaulting to info")
		return zerolog.InfoLevel
	}

	return l
}
