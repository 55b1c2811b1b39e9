package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// TimeoutConfig returns timeout middleware configuration
func TimeoutConfig(timeout time.Duration) echo.MiddlewareFunc {
	return middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: timeout,
	})
}

// SelectiveTimeoutConfig applies the default timeout to most endpoints and a
// longer one to model-backed endpoints, which routinely exceed typical HTTP
// deadlines.
func SelectiveTimeoutConfig(defaultTimeout, extendedTimeout time.Duration) echo.MiddlewareFunc {
	extendedPrefixes := []string{
		"/api/v1/cv/",
		"/api/v1/cover-letter/",
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		defaultMW := middleware.TimeoutWithConfig(middleware.TimeoutConfig{Timeout: defaultTimeout})(next)
		extendedMW := middleware.TimeoutWithConfig(middleware.TimeoutConfig{Timeout: extendedTimeout})(next)

		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, prefix := range extendedPrefixes {
				if strings.HasPrefix(path, prefix) {
					return extendedMW(c)
				}
			}
			return defaultMW(c)
		}
	}
}
