package llm

import (
	"cvforge/internal/config"
	"cvforge/pkg/models"
)

// NewClient builds a chat client for a resolved profile. The anthropic family
// speaks its own messages API; everything else is OpenAI-compatible.
func NewClient(profile *Profile, requestsPerMinute int) ChatClient {
	if profile.Provider == ProviderAnthropic {
		return NewAnthropicClient(profile)
	}
	return NewHTTPClient(profile, requestsPerMinute)
}

// NewClientFromConfig resolves a profile from configuration plus optional
// request overrides and builds the matching client.
func NewClientFromConfig(cfg *config.Config, overrides *models.ProviderOverrides) (ChatClient, error) {
	profile, err := ResolveProfile(cfg, overrides)
	if err != nil {
		return nil, err
	}
	return NewClient(profile, cfg.LLM.RateLimit), nil
}

// NewLocalClient builds the client used for local fallback retries.
func NewLocalClient(cfg *config.Config) ChatClient {
	return NewHTTPClient(LocalProfile(cfg), cfg.LLM.RateLimit)
}
