package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestTimeout sets a context deadline on each incoming request and
// answers 504 when the handler does not finish in time. Repositories all
// take the request context, so the in-flight query is cancelled with it.
//
// Audio dictation uploads are excluded: a multipart body of up to 100 MB can
// legitimately outlive the deadline that fits every other route.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isUploadRequest(c.Request()) {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					if !c.Response().Committed {
						return c.JSON(http.StatusGatewayTimeout, map[string]string{
							"message": "request timed out",
						})
					}
					return nil
				}
				return ctx.Err()
			}
		}
	}
}

func isUploadRequest(req *http.Request) bool {
	return req.Method == http.MethodPost &&
		strings.HasSuffix(strings.TrimRight(req.URL.Path, "/"), "/audio-recordings")
}
