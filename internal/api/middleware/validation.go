package middleware

import (
	"net/http"
	"strings"
	"time"

	"cvforge/pkg/models"
	"cvforge/pkg/utils"

	"github.com/labstack/echo/v4"
)

const maxBodyBytes = 1024 * 1024 // request body cap

// RequestValidation assigns every request an ID, echoes it back in the
// X-Request-ID header, and rejects oversized or non-JSON POST bodies before
// they reach a handler.
func RequestValidation() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := utils.GenerateRequestID()
			c.Set("request_id", requestID)
			c.Response().Header().Set("X-Request-ID", requestID)

			if c.Request().Method == http.MethodPost {
				if c.Request().ContentLength > maxBodyBytes {
					return c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
						Error:     "request_too_large",
						Message:   "Request body too large",
						RequestID: requestID,
						Timestamp: time.Now(),
					})
				}

				contentType := c.Request().Header.Get(echo.HeaderContentType)
				if contentType != "" && !strings.HasPrefix(contentType, echo.MIMEApplicationJSON) {
					return c.JSON(http.StatusUnsupportedMediaType, models.ErrorResponse{
						Error:     "unsupported_media_type",
						Message:   "Content-Type must be application/json",
						RequestID: requestID,
						Timestamp: time.Now(),
					})
				}
			}

			return next(c)
		}
	}
}
