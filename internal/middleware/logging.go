package middleware

import (
	"time"

	"github.com/batikin/tailor-backend/internal/reqctx"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RequestLogger writes one access log line per request and attaches a
// request-scoped logger to the request context for zerolog.Ctx. It expects
// echo's RequestID middleware to run first.
func RequestLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = req.Header.Get(echo.HeaderXRequestID)
			}
			path := c.Path()
			if path == "" {
				path = req.URL.Path
			}

			l := base.With().
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", path).
				Logger()
			c.SetRequest(req.WithContext(reqctx.WithRID(l.WithContext(req.Context()), rid)))

			if err := next(c); err != nil {
				c.Error(err)
			}

			res := c.Response()
			uid, _ := c.Get("uid").(string)
			ev := l.With().
				Str("user_id", uid).
				Str("remote_ip", c.RealIP()).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Int64("bytes_out", res.Size).
				Logger()
			switch {
			case res.Status >= 500:
				ev.Error().Msg("request")
			case res.Status >= 400:
				ev.Warn().Msg("request")
			default:
				ev.Info().Msg("request")
			}
			return nil
		}
	}
}
