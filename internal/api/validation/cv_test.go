package validation_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"cvforge/internal/api/validation"
)

type toneDoc struct {
	Tone string `validate:"omitempty,letter_tone"`
}

type providerDoc struct {
	Provider string `validate:"omitempty,llm_provider"`
}

type themeDoc struct {
	Theme string `validate:"omitempty,theme"`
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	validation.RegisterCVValidators(v)
	return v
}

func TestLetterToneValidator(t *testing.T) {
	v := newValidator(t)

	require.NoError(t, v.Struct(&toneDoc{Tone: "professional"}))
	require.NoError(t, v.Struct(&toneDoc{Tone: "formal"}))
	require.NoError(t, v.Struct(&toneDoc{}))
	require.Error(t, v.Struct(&toneDoc{Tone: "sarcastic"}))
}

func TestProviderValidator(t *testing.T) {
	v := newValidator(t)

	for _, provider := range []string{"cerebras", "openai", "ollama", "deepseek", "anthropic", "huggingface"} {
		require.NoError(t, v.Struct(&providerDoc{Provider: provider}))
	}
	require.Error(t, v.Struct(&providerDoc{Provider: "skynet"}))
}

func TestThemeValidator(t *testing.T) {
	v := newValidator(t)

	require.NoError(t, v.Struct(&themeDoc{Theme: "DEFAULT_THEME"}))
	require.NoError(t, v.Struct(&themeDoc{Theme: "modern-2"}))
	require.Error(t, v.Struct(&themeDoc{Theme: "../etc/passwd"}))
	require.Error(t, v.Struct(&themeDoc{Theme: "x"}))
}
