package llm

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"cvforge/internal/config"
	"cvforge/pkg/models"
)

// Provider identifies a supported model provider family.
type Provider string

const (
	ProviderCerebras    Provider = "cerebras"
	ProviderOpenAI      Provider = "openai"
	ProviderOllama      Provider = "ollama"
	ProviderDeepSeek    Provider = "deepseek"
	ProviderAnthropic   Provider = "anthropic"
	ProviderHuggingFace Provider = "huggingface"
)

// SupportedProviders lists the provider families the resolver understands.
var SupportedProviders = []Provider{
	ProviderCerebras,
	ProviderOpenAI,
	ProviderOllama,
	ProviderDeepSeek,
	ProviderAnthropic,
	ProviderHuggingFace,
}

// Setting bounds applied during resolution.
const (
	minTemperature = 0.0
	maxTemperature = 2.0
	minMaxTokens   = 1
	maxMaxTokens   = 8000
	minTimeout     = 1
	maxTimeout     = 300
)

// Profile is a fully resolved provider configuration. Resolution is
// deterministic: the same environment and inputs always produce the same
// profile.
type Profile struct {
	Provider      Provider
	Model         string
	APIKey        string
	APIBase       string
	Temperature   float64
	MaxTokens     int
	Timeout       int // seconds
	RetryAttempts int
	IsLocal       bool
}

type familyDefaults struct {
	apiBase string
	model   string
	keyEnvs []string
}

var defaultsByProvider = map[Provider]familyDefaults{
	ProviderCerebras: {
		apiBase: "https://api.cerebras.ai/v1",
		model:   "gpt-oss-120b",
		keyEnvs: []string{"CEREBRAS_API_KEY", "CEREBRASAI_API_KEY"},
	},
	ProviderOpenAI: {
		apiBase: "https://api.openai.com/v1",
		model:   "gpt-4",
		keyEnvs: []string{"OPENAI_API_KEY"},
	},
	ProviderOllama: {
		apiBase: "http://localhost:11434/v1",
		model:   "llama3.2",
	},
	ProviderDeepSeek: {
		apiBase: "https://api.deepseek.com/v1",
		model:   "deepseek-chat",
		keyEnvs: []string{"DEEPSEEK_API_KEY"},
	},
	ProviderAnthropic: {
		apiBase: "https://api.anthropic.com",
		model:   "claude-3-5-sonnet-latest",
		keyEnvs: []string{"ANTHROPIC_API_KEY"},
	},
	ProviderHuggingFace: {
		apiBase: "https://router.huggingface.co/v1",
		model:   "meta-llama/Llama-3.1-8B-Instruct",
		keyEnvs: []string{"HF_API_KEY", "HUGGINGFACE_API_KEY"},
	},
}

// ParseProvider validates a provider name.
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range SupportedProviders {
		if p == known {
			return p, nil
		}
	}
	return "", &ConfigurationError{Message: fmt.Sprintf("unsupported provider %q", name)}
}

// ResolveProfile builds a provider profile from request overrides, the loaded
// configuration, and family-specific environment variables, in that
// precedence order. It never mutates the process environment.
func ResolveProfile(cfg *config.Config, overrides *models.ProviderOverrides) (*Profile, error) {
	name := ""
	if overrides != nil && overrides.Provider != "" {
		name = overrides.Provider
	} else if cfg.LLM.Provider != "" {
		name = cfg.LLM.Provider
	} else {
		name = string(ProviderCerebras)
	}

	provider, err := ParseProvider(name)
	if err != nil {
		return nil, err
	}

	defaults, ok := defaultsByProvider[provider]
	if !ok {
		return nil, &ConfigurationError{Message: fmt.Sprintf("no defaults registered for provider %q", provider)}
	}

	profile := &Profile{
		Provider:      provider,
		Temperature:   0.7,
		MaxTokens:     4000,
		Timeout:       120,
		RetryAttempts: cfg.LLM.RetryAttempts,
	}

	// Model: override > generic config > family default
	switch {
	case overrides != nil && overrides.Model != "":
		profile.Model = overrides.Model
	case cfg.LLM.Model != "":
		profile.Model = cfg.LLM.Model
	default:
		profile.Model = defaults.model
	}

	// API base: override > generic config > ollama host env > family default
	switch {
	case overrides != nil && overrides.APIBase != "":
		profile.APIBase = overrides.APIBase
	case cfg.LLM.APIBase != "":
		profile.APIBase = cfg.LLM.APIBase
	default:
		profile.APIBase = defaults.apiBase
		if provider == ProviderOllama {
			if base := firstEnv("OLLAMA_BASE_URL", "OLLAMA_HOST"); base != "" {
				profile.APIBase = normalizeOllamaBase(base)
			}
		}
	}
	profile.APIBase = strings.TrimRight(profile.APIBase, "/")

	// API key: override > generic config > family env
	switch {
	case overrides != nil && overrides.APIKey != "":
		profile.APIKey = overrides.APIKey
	case cfg.LLM.APIKey != "":
		profile.APIKey = cfg.LLM.APIKey
	default:
		profile.APIKey = firstEnv(defaults.keyEnvs...)
	}

	profile.IsLocal = isLocalEndpoint(profile.APIBase)

	// Local endpoints accept a dummy key; remote ones fail fast without one.
	if profile.APIKey == "" {
		if profile.IsLocal {
			profile.APIKey = "ollama"
		} else {
			return nil, &ConfigurationError{
				Message: fmt.Sprintf("no API key configured for provider %q", provider),
			}
		}
	}

	// Numeric settings: override > generic config > defaults, then clamp.
	if overrides != nil && overrides.Temperature != nil {
		profile.Temperature = *overrides.Temperature
	} else if cfg.LLM.Temperature >= 0 {
		profile.Temperature = cfg.LLM.Temperature
	}

	if overrides != nil && overrides.MaxTokens != nil {
		profile.MaxTokens = *overrides.MaxTokens
	} else if cfg.LLM.MaxTokens > 0 {
		profile.MaxTokens = cfg.LLM.MaxTokens
	}

	if overrides != nil && overrides.Timeout != nil {
		profile.Timeout = *overrides.Timeout
	} else if cfg.LLM.Timeout > 0 {
		profile.Timeout = cfg.LLM.Timeout
	}

	profile.clampSettings()

	return profile, nil
}

// LocalProfile resolves the local fallback profile used when a recoverable
// provider failure occurs and local fallback is enabled.
func LocalProfile(cfg *config.Config) *Profile {
	profile := &Profile{
		Provider:      ProviderOllama,
		Model:         cfg.LLM.LocalModel,
		APIKey:        "ollama",
		APIBase:       strings.TrimRight(cfg.LLM.LocalBaseURL, "/"),
		Temperature:   0.7,
		MaxTokens:     4000,
		Timeout:       120,
		RetryAttempts: cfg.LLM.RetryAttempts,
		IsLocal:       true,
	}
	profile.clampSettings()
	return profile
}

func (p *Profile) clampSettings() {
	if p.Temperature < minTemperature {
		p.Temperature = minTemperature
	}
	if p.Temperature > maxTemperature {
		p.Temperature = maxTemperature
	}
	if p.MaxTokens < minMaxTokens {
		p.MaxTokens = minMaxTokens
	}
	if p.MaxTokens > maxMaxTokens {
		p.MaxTokens = maxMaxTokens
	}
	if p.Timeout < minTimeout {
		p.Timeout = minTimeout
	}
	if p.Timeout > maxTimeout {
		p.Timeout = maxTimeout
	}
}

// isLocalEndpoint reports whether a base URL points at a machine-local
// inference server.
func isLocalEndpoint(apiBase string) bool {
	u, err := url.Parse(apiBase)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return true
	}
	return u.Port() == "11434"
}

// normalizeOllamaBase accepts host:port or full URLs from OLLAMA_HOST style
// variables and returns an OpenAI-compatible base URL.
func normalizeOllamaBase(base string) string {
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	base = strings.TrimRight(base, "/")
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	return base
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			return val
		}
	}
	return ""
}
