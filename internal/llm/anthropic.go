package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"cvforge/internal/logging"
	"cvforge/internal/logging/types"
)

// AnthropicClient implements ChatClient against the Anthropic messages API,
// which does not speak the OpenAI chat completions surface.
type AnthropicClient struct {
	client  anthropic.Client
	profile *Profile
	logger  types.Logger
}

// NewAnthropicClient builds a client for the anthropic provider family.
func NewAnthropicClient(profile *Profile) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(profile.APIKey),
		option.WithRequestTimeout(time.Duration(profile.Timeout) * time.Second),
	}
	if profile.APIBase != "" && profile.APIBase != "https://api.anthropic.com" {
		opts = append(opts, option.WithBaseURL(profile.APIBase))
	}

	return &AnthropicClient{
		client:  anthropic.NewClient(opts...),
		profile: profile,
		logger:  logging.GetGlobalLogger(),
	}
}

// Profile returns the resolved profile this client was built for.
func (ac *AnthropicClient) Profile() *Profile {
	return ac.profile
}

// Complete sends a messages request and returns the concatenated text blocks.
func (ac *AnthropicClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if err := validateRequest(ac.profile, req); err != nil {
		return "", err
	}

	temperature := ac.profile.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := ac.profile.MaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(ac.profile.Model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	for _, msg := range req.Messages {
		role := anthropic.MessageParamRoleUser
		if msg.Role == "assistant" {
			role = anthropic.MessageParamRoleAssistant
		}
		params.Messages = append(params.Messages, anthropic.MessageParam{
			Role: role,
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: msg.Content},
			}},
		})
	}

	start := time.Now()
	response, err := ac.client.Messages.New(ctx, params)
	if err != nil {
		return "", ac.classifyError(err)
	}

	content := ""
	for _, block := range response.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	if content == "" {
		return "", &MalformedResponseError{
			Provider: string(ac.profile.Provider),
			Detail:   "response contained no text blocks",
		}
	}

	ac.logger.Debug("Anthropic completion succeeded", map[string]interface{}{
		"model":    ac.profile.Model,
		"duration": time.Since(start).String(),
	})

	return content, nil
}

// classifyError maps SDK errors to the typed provider error classes.
func (ac *AnthropicClient) classifyError(err error) error {
	provider := string(ac.profile.Provider)

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return &AuthenticationError{Provider: provider}
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return &RateLimitError{Provider: provider, RetryAfterSeconds: defaultRetryAfterSeconds}
		case apiErr.StatusCode == http.StatusBadRequest:
			return &BadRequestError{Provider: provider, Detail: apiErr.Error()}
		case apiErr.StatusCode == http.StatusNotFound:
			return &EndpointNotFoundError{Provider: provider, URL: ac.profile.APIBase}
		case apiErr.StatusCode >= 500:
			return &ProviderServerError{Provider: provider, StatusCode: apiErr.StatusCode}
		}
		return &TransportError{Message: "anthropic API error", Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Provider: provider, Seconds: ac.profile.Timeout}
	}

	return &TransportError{Message: "anthropic request failed", Err: err}
}
