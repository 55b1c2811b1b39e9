package models

import "time"

// ErrorResponse is the API error body returned by all handlers.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Retryable bool      `json:"retryable,omitempty"`
}

// AnalyzeResponse wraps a standalone analysis run.
type AnalyzeResponse struct {
	Success        bool            `json:"success"`
	Analysis       *AnalysisResult `json:"analysis"`
	ProcessingTime time.Duration   `json:"processing_time"`
	Timestamp      time.Time       `json:"timestamp"`
}

// OptimizeResponse wraps a synchronous workflow run.
type OptimizeResponse struct {
	Success   bool            `json:"success"`
	Result    *WorkflowResult `json:"result"`
	Timestamp time.Time       `json:"timestamp"`
}

// SectionOptimizeResponse wraps a single-section rewrite.
type SectionOptimizeResponse struct {
	Success        bool                 `json:"success"`
	Optimization   *SectionOptimization `json:"optimization"`
	ProcessingTime time.Duration        `json:"processing_time"`
	Timestamp      time.Time            `json:"timestamp"`
}

// CoverLetterResponse wraps standalone cover letter generation.
type CoverLetterResponse struct {
	Success        bool          `json:"success"`
	CoverLetter    *CoverLetter  `json:"cover_letter"`
	ProcessingTime time.Duration `json:"processing_time"`
	Timestamp      time.Time     `json:"timestamp"`
}

// ProviderInfo describes one resolved provider surface for the providers
// listing endpoint. Credentials are redacted.
type ProviderInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIBase  string `json:"api_base"`
	IsLocal  bool   `json:"is_local"`
	HasKey   bool   `json:"has_key"`
}

// ProvidersResponse lists the active provider plus the local fallback, when
// fallback is enabled.
type ProvidersResponse struct {
	Active   ProviderInfo  `json:"active"`
	Fallback *ProviderInfo `json:"fallback,omitempty"`
}

// HealthResponse is the liveness body.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ExportResponse returns the uploaded artifact location.
type ExportResponse struct {
	Success   bool      `json:"success"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
}
