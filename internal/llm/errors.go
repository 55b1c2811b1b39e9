package llm

import (
	"errors"
	"fmt"
)

// ConfigurationError indicates the provider profile could not be resolved,
// usually because a credential or base URL is missing.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("provider configuration error: %s", e.Message)
}

// TransportError covers network-level failures and unclassified non-2xx
// responses from the provider.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("transport error: %s", e.Message)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError indicates the provider did not respond within the configured
// deadline.
type TimeoutError struct {
	Provider string
	Seconds  int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out after %ds", e.Provider, e.Seconds)
}

// AuthenticationError indicates the provider rejected the credential (401/403).
type AuthenticationError struct {
	Provider string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed for provider %s", e.Provider)
}

// RateLimitError indicates the provider throttled the request (429).
// RetryAfterSeconds comes from the Retry-After header when present.
type RateLimitError struct {
	Provider          string
	RetryAfterSeconds int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by %s, retry after %ds", e.Provider, e.RetryAfterSeconds)
}

// BadRequestError indicates the provider rejected the request payload (400).
// Detail carries the provider's error message when it could be extracted.
type BadRequestError struct {
	Provider string
	Detail   string
}

func (e *BadRequestError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("bad request to %s: %s", e.Provider, e.Detail)
	}
	return fmt.Sprintf("bad request to %s", e.Provider)
}

// EndpointNotFoundError indicates the chat completions path does not exist at
// the configured base URL (404), usually a wrong api_base.
type EndpointNotFoundError struct {
	Provider string
	URL      string
}

func (e *EndpointNotFoundError) Error() string {
	return fmt.Sprintf("endpoint not found for %s at %s", e.Provider, e.URL)
}

// ProviderServerError indicates a 5xx response from the provider.
type ProviderServerError struct {
	Provider   string
	StatusCode int
}

func (e *ProviderServerError) Error() string {
	return fmt.Sprintf("provider %s returned server error %d", e.Provider, e.StatusCode)
}

// MalformedResponseError indicates a 2xx response whose body did not contain
// a usable completion.
type MalformedResponseError struct {
	Provider string
	Detail   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %s", e.Provider, e.Detail)
}

// IsRecoverable reports whether an error class is worth retrying against a
// different provider. Configuration, authentication, and request-shape errors
// would fail identically elsewhere and are excluded.
func IsRecoverable(err error) bool {
	var (
		timeoutErr   *TimeoutError
		rateErr      *RateLimitError
		serverErr    *ProviderServerError
		transportErr *TransportError
	)
	switch {
	case errors.As(err, &timeoutErr),
		errors.As(err, &rateErr),
		errors.As(err, &serverErr),
		errors.As(err, &transportErr):
		return true
	}
	return false
}
