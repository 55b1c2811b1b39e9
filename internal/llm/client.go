package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"cvforge/internal/logging"
	"cvforge/internal/logging/types"
)

const defaultRetryAfterSeconds = 60

// ChatMessage is one turn of a chat completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest carries one completion call. Temperature and MaxTokens override
// the profile settings when non-nil; analysts set both per call.
type ChatRequest struct {
	System      string
	Messages    []ChatMessage
	Temperature *float64
	MaxTokens   *int
}

// ChatClient issues chat completions against a resolved provider profile.
type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
	Profile() *Profile
}

// HTTPClient talks to any OpenAI-compatible chat completions endpoint.
// Cerebras, OpenAI, DeepSeek, Ollama, and the HuggingFace router all expose
// this surface.
type HTTPClient struct {
	profile    *Profile
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     types.Logger
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// providerErrorBody covers the error envelope shapes providers return on 4xx.
type providerErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// NewHTTPClient builds a client for an OpenAI-compatible provider. Requests
// share one rate limiter so bursts stay within the configured per-minute
// budget.
func NewHTTPClient(profile *Profile, requestsPerMinute int) *HTTPClient {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &HTTPClient{
		profile: profile,
		httpClient: &http.Client{
			Timeout: time.Duration(profile.Timeout) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute),
		logger:  logging.GetGlobalLogger(),
	}
}

// Profile returns the resolved profile this client was built for.
func (c *HTTPClient) Profile() *Profile {
	return c.profile
}

// validateRequest rejects bad payloads before any bytes go out. Per-call
// overrides can carry values the profile clamps never saw, so the effective
// settings are checked here as well.
func validateRequest(profile *Profile, req ChatRequest) error {
	if len(req.Messages) == 0 {
		return &ConfigurationError{Message: "chat request has no messages"}
	}
	for _, msg := range req.Messages {
		if strings.TrimSpace(msg.Content) == "" {
			return &ConfigurationError{Message: "chat message content is empty"}
		}
	}

	temperature := profile.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	if temperature < 0 || temperature > 2 {
		return &ConfigurationError{Message: fmt.Sprintf("temperature %.2f outside [0, 2]", temperature)}
	}

	maxTokens := profile.MaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	if maxTokens < 1 || maxTokens > 8000 {
		return &ConfigurationError{Message: fmt.Sprintf("max_tokens %d outside [1, 8000]", maxTokens)}
	}

	if profile.Timeout < 1 || profile.Timeout > 300 {
		return &ConfigurationError{Message: fmt.Sprintf("timeout %ds outside [1, 300]", profile.Timeout)}
	}

	return nil
}

// Complete sends a chat completion request and returns the reply text
// verbatim. Failures map to the typed provider error classes.
func (c *HTTPClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if err := validateRequest(c.profile, req); err != nil {
		return "", err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &TransportError{Message: "rate limiter wait aborted", Err: err}
	}

	body := chatCompletionRequest{
		Model:       c.profile.Model,
		Messages:    req.Messages,
		Temperature: c.profile.Temperature,
		MaxTokens:   c.profile.MaxTokens,
	}
	if req.System != "" {
		body.Messages = append([]ChatMessage{{Role: "system", Content: req.System}}, body.Messages...)
	}
	if req.Temperature != nil {
		body.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		body.MaxTokens = *req.MaxTokens
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return "", &TransportError{Message: "failed to marshal request", Err: err}
	}

	endpoint := c.profile.APIBase + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", &TransportError{Message: "failed to create request", Err: err}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.profile.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", c.classifyNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", c.classifyStatusError(resp, endpoint)
	}

	var completion chatCompletionResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&completion); decodeErr != nil {
		return "", &MalformedResponseError{
			Provider: string(c.profile.Provider),
			Detail:   fmt.Sprintf("invalid JSON body: %v", decodeErr),
		}
	}

	if len(completion.Choices) == 0 {
		return "", &MalformedResponseError{
			Provider: string(c.profile.Provider),
			Detail:   "response contained no choices",
		}
	}

	content := completion.Choices[0].Message.Content
	if content == "" {
		return "", &MalformedResponseError{
			Provider: string(c.profile.Provider),
			Detail:   "response contained empty message content",
		}
	}

	c.logger.Debug("Chat completion succeeded", map[string]interface{}{
		"provider":     string(c.profile.Provider),
		"model":        c.profile.Model,
		"total_tokens": completion.Usage.TotalTokens,
		"duration":     time.Since(start).String(),
	})

	return content, nil
}

// classifyNetworkError maps request-level failures to typed errors. Deadline
// and url timeout errors become TimeoutError, everything else TransportError.
func (c *HTTPClient) classifyNetworkError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &TimeoutError{Provider: string(c.profile.Provider), Seconds: c.profile.Timeout}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Provider: string(c.profile.Provider), Seconds: c.profile.Timeout}
	}
	return &TransportError{Message: "request failed", Err: err}
}

// classifyStatusError maps non-2xx responses to the typed error taxonomy.
func (c *HTTPClient) classifyStatusError(resp *http.Response, endpoint string) error {
	provider := string(c.profile.Provider)
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthenticationError{Provider: provider}

	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := defaultRetryAfterSeconds
		if header := resp.Header.Get("Retry-After"); header != "" {
			if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
				retryAfter = secs
			}
		}
		return &RateLimitError{Provider: provider, RetryAfterSeconds: retryAfter}

	case resp.StatusCode == http.StatusBadRequest:
		return &BadRequestError{Provider: provider, Detail: extractErrorDetail(bodyBytes)}

	case resp.StatusCode == http.StatusNotFound:
		return &EndpointNotFoundError{Provider: provider, URL: endpoint}

	case resp.StatusCode >= 500:
		return &ProviderServerError{Provider: provider, StatusCode: resp.StatusCode}
	}

	return &TransportError{
		Message: fmt.Sprintf("provider %s returned status %d", provider, resp.StatusCode),
	}
}

// extractErrorDetail pulls a human-readable message out of a provider error
// body, trying the common envelope shapes before falling back to the raw body.
func extractErrorDetail(body []byte) string {
	var envelope providerErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error.Message != "" {
			return envelope.Error.Message
		}
		if envelope.Detail != "" {
			return envelope.Detail
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return string(body)
}
