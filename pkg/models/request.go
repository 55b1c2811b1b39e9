package models

// ProviderOverrides carries per-request provider settings. All fields are
// optional; numeric fields are pointers so zero values stay distinguishable
// from "not set".
type ProviderOverrides struct {
	Provider    string   `json:"provider,omitempty" validate:"omitempty,llm_provider"`
	Model       string   `json:"model,omitempty"`
	APIKey      string   `json:"api_key,omitempty"`
	APIBase     string   `json:"api_base,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Timeout     *int     `json:"timeout,omitempty"`
}

// AnalyzeRequest asks for a gap analysis of a CV against a job description.
type AnalyzeRequest struct {
	CVText         string             `json:"cv_text" validate:"required,min=50"`
	JobDescription string             `json:"job_description" validate:"required,min=20"`
	Options        *ProviderOverrides `json:"options,omitempty"`
}

// OptimizeRequest runs the full tailoring workflow. When GenerateCoverLetter
// is set the cover letter stage runs after optimization.
type OptimizeRequest struct {
	CVText              string             `json:"cv_text" validate:"required,min=50"`
	JobDescription      string             `json:"job_description" validate:"required,min=20"`
	GenerateCoverLetter bool               `json:"generate_cover_letter"`
	Tone                string             `json:"tone,omitempty" validate:"omitempty,letter_tone"`
	Options             *ProviderOverrides `json:"options,omitempty"`
}

// SectionOptimizeRequest rewrites a single resume section.
type SectionOptimizeRequest struct {
	Section        string             `json:"section" validate:"required,min=10"`
	SectionName    string             `json:"section_name" validate:"required"`
	JobDescription string             `json:"job_description" validate:"required,min=20"`
	Keywords       []string           `json:"keywords,omitempty"`
	Options        *ProviderOverrides `json:"options,omitempty"`
}

// CoverLetterRequest generates a standalone cover letter from raw CV and
// job description text.
type CoverLetterRequest struct {
	CVText         string             `json:"cv_text" validate:"required,min=50"`
	JobDescription string             `json:"job_description" validate:"required,min=20"`
	Tone           string             `json:"tone,omitempty" validate:"omitempty,letter_tone"`
	Options        *ProviderOverrides `json:"options,omitempty"`
}

// ExportRequest renders an optimized resume to PDF and uploads the artifact.
type ExportRequest struct {
	Resume map[string]any `json:"resume" validate:"required"`
	Theme  string         `json:"theme,omitempty" validate:"omitempty,theme"`
}
