package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"cvforge/internal/llm"
	"cvforge/internal/llm/recovery"
	"cvforge/pkg/models"
	"cvforge/pkg/utils"
)

// writeError maps internal error types to a stable HTTP status and error code.
// Transient upstream failures are flagged retryable so clients can back off
// and resubmit.
func writeError(c echo.Context, requestID string, err error) error {
	status := http.StatusInternalServerError
	code := "internal_error"
	message := err.Error()
	retryable := false

	var (
		configErr    *llm.ConfigurationError
		authErr      *llm.AuthenticationError
		badReqErr    *llm.BadRequestError
		timeoutErr   *llm.TimeoutError
		rateErr      *llm.RateLimitError
		serverErr    *llm.ProviderServerError
		transportErr *llm.TransportError
		notFoundErr  *llm.EndpointNotFoundError
		malformedErr *llm.MalformedResponseError
		parseErr     *recovery.ParseError
		customErr    *utils.CustomError
	)

	switch {
	case errors.As(err, &configErr):
		code = "configuration_error"
	case errors.As(err, &authErr):
		status = http.StatusBadGateway
		code = "provider_authentication_failed"
	case errors.As(err, &badReqErr):
		status = http.StatusBadRequest
		code = "provider_rejected_request"
	case errors.As(err, &timeoutErr):
		status = http.StatusGatewayTimeout
		code = "provider_timeout"
		retryable = true
	case errors.As(err, &rateErr):
		status = http.StatusTooManyRequests
		code = "provider_rate_limited"
		retryable = true
		c.Response().Header().Set("Retry-After", formatRetryAfter(rateErr.RetryAfterSeconds))
	case errors.As(err, &serverErr):
		status = http.StatusBadGateway
		code = "provider_server_error"
		retryable = true
	case errors.As(err, &transportErr):
		status = http.StatusBadGateway
		code = "provider_unreachable"
		retryable = true
	case errors.As(err, &notFoundErr):
		status = http.StatusBadGateway
		code = "provider_endpoint_not_found"
	case errors.As(err, &malformedErr):
		status = http.StatusBadGateway
		code = "malformed_provider_response"
	case errors.As(err, &parseErr):
		status = http.StatusBadGateway
		code = "response_parse_failed"
	case errors.As(err, &customErr):
		status = customErr.Code
		code = customErr.Message
		message = customErr.Detail
	}

	return c.JSON(status, models.ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now(),
		Retryable: retryable,
	})
}

func formatRetryAfter(seconds int) string {
	if seconds <= 0 {
		seconds = 60
	}
	return strconv.Itoa(seconds)
}

func validationError(c echo.Context, requestID, message string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:     "validation_failed",
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}

func bindError(c echo.Context, requestID string, err error) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:     "invalid_request",
		Message:   "Invalid request body: " + err.Error(),
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}
