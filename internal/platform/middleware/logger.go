package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/radbridge/radbridge/internal/platform/auth"
)

// Logger emits one structured line per request. When the bearer token
// resolved to an identity, the caller's id and role are attached so study and
// report mutations can be traced back to the acting user.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}

			evt = evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Int64("bytes_out", c.Response().Size).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())

			if id, ok := auth.IdentityFromContext(req.Context()); ok {
				evt = evt.Str("user_id", id.UserID).Str("role", id.Role)
			}

			evt.Msg("request")
			return err
		}
	}
}
