package models

import "time"

// Envelope keys used when the comprehensive optimizer cannot recover a JSON
// document from the model reply. The envelope is embedded in the workflow
// result instead of failing the run.
const (
	EnvelopeErrorKey       = "error"
	EnvelopeRawResponseKey = "raw_response"
	EnvelopeParseError     = "JSON Parse Error"
)

// NewErrorEnvelope builds the error envelope embedded in place of an
// optimized resume when JSON recovery fails irrecoverably.
func NewErrorEnvelope(raw string) map[string]any {
	return map[string]any{
		EnvelopeErrorKey:       EnvelopeParseError,
		EnvelopeRawResponseKey: raw,
	}
}

// IsErrorEnvelope reports whether an optimized_cv mapping is an error envelope
// rather than a sanitized resume document.
func IsErrorEnvelope(data map[string]any) bool {
	_, ok := data[EnvelopeErrorKey]
	return ok
}

// WorkflowResult is the unified output of one optimization workflow run.
// OptimizedCV holds either a sanitized resume mapping or an error envelope;
// CoverLetter is nil when generation was not requested. The struct is
// assembled once and never mutated afterwards.
type WorkflowResult struct {
	Analysis       *AnalysisResult `json:"analysis"`
	OptimizedCV    map[string]any  `json:"optimized_cv"`
	CoverLetter    *CoverLetter    `json:"cover_letter"`
	ATSScore       int             `json:"ats_score"`
	MatchingSkills []string        `json:"matching_skills"`
	MissingSkills  []string        `json:"missing_skills"`
	Recommendation string          `json:"recommendation"`
	ProcessingTime time.Duration   `json:"processing_time"`
}
