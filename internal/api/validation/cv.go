package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// tones accepted for cover letter generation
var tones = map[string]bool{
	"professional":   true,
	"enthusiastic":   true,
	"conversational": true,
	"formal":         true,
}

// providers accepted in request overrides
var providers = map[string]bool{
	"cerebras":    true,
	"openai":      true,
	"ollama":      true,
	"deepseek":    true,
	"anthropic":   true,
	"huggingface": true,
}

// ValidateTone ensures the tone is one of the supported values
func ValidateTone(fl validator.FieldLevel) bool {
	return tones[fl.Field().String()]
}

// ValidateProvider ensures the provider name is a known family
func ValidateProvider(fl validator.FieldLevel) bool {
	return providers[fl.Field().String()]
}

// ThemePattern restricts themes to safe tokens (e.g., DEFAULT_THEME)
var ThemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{1,31}$`)

// ValidateTheme ensures theme name is a safe token
func ValidateTheme(fl validator.FieldLevel) bool {
	return ThemePattern.MatchString(fl.Field().String())
}

// RegisterCVValidators registers all custom validators
func RegisterCVValidators(v *validator.Validate) {
	v.RegisterValidation("letter_tone", ValidateTone)
	v.RegisterValidation("llm_provider", ValidateProvider)
	v.RegisterValidation("theme", ValidateTheme)
}
