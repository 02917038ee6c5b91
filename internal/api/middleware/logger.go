package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger attaches a request-scoped zerolog logger to the request context and
// emits one line per completed request.
func Logger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			l := log.With().
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Logger()

			c.SetRequest(req.WithContext(l.WithContext(req.Context())))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			var evt *zerolog.Event
			status := c.Response().Status
			switch {
			case status >= 500:
				evt = l.Error()
			case status >= 400:
				evt = l.Warn()
			default:
				evt = l.Info()
			}

			evt.
				Int("status", status).
				Dur("duration", time.Since(start)).
				Msg("Request handled")

			return nil
		}
	}
}

// RequestID re-exports echo's request id middleware so the router configures
// everything from one package.
func RequestID() echo.MiddlewareFunc {
	return middleware.RequestID()
}

// Recover re-exports echo's panic recovery middleware.
func Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}
