// Package analyst holds the domain roles that drive model providers: the CV
// analyzer, the resume optimizer, and the cover letter generator. Each role
// owns its prompt, its sampling settings, and its recovery behavior.
package analyst

import (
	"context"
	"encoding/json"
	"time"

	"cvforge/internal/llm"
	"cvforge/internal/llm/recovery"
	"cvforge/internal/logging"
	"cvforge/internal/logging/types"
	"cvforge/internal/prompts"
	"cvforge/pkg/models"
)

// Analyzer sampling settings. Analysis wants moderate creativity so the
// assessment prose stays useful, with room for the full structured document.
var (
	analyzerTemperature = 0.5
	analyzerMaxTokens   = 2500
)

// analyzerSystemPrompt is fixed; the rendered template carries only the CV,
// the job description, and the output schema.
const analyzerSystemPrompt = "You are an expert ATS (Applicant Tracking System) analyst and career coach. " +
	"Respond with a single valid JSON object and no prose around it."

// Analyzer compares CVs against job descriptions.
type Analyzer struct {
	client llm.ChatClient
	store  *prompts.Store
	logger types.Logger
}

// NewAnalyzer creates an analyzer backed by the given chat client.
func NewAnalyzer(client llm.ChatClient, store *prompts.Store) *Analyzer {
	return &Analyzer{
		client: client,
		store:  store,
		logger: logging.GetGlobalLogger(),
	}
}

// Analyze produces a structured gap analysis. Transport failures return the
// typed provider error; unparseable replies degrade to a regex-scraped
// fallback result instead of failing.
func (a *Analyzer) Analyze(ctx context.Context, cvText, jobDescription string) (*models.AnalysisResult, error) {
	prompt, err := a.store.Render("cv_analyzer", map[string]string{
		"cv_text":         cvText,
		"job_description": jobDescription,
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	reply, err := a.client.Complete(ctx, llm.ChatRequest{
		System:      analyzerSystemPrompt,
		Messages:    []llm.ChatMessage{{Role: "user", Content: prompt}},
		Temperature: &analyzerTemperature,
		MaxTokens:   &analyzerMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	doc, err := recovery.ParseStructured(reply)
	if err != nil {
		a.logger.Warn("Analysis reply unparseable, using fallback extraction", map[string]interface{}{
			"provider": string(a.client.Profile().Provider),
			"duration": time.Since(start).String(),
		})
		return recovery.FallbackAnalysis(reply), nil
	}

	result, err := decodeAnalysis(doc)
	if err != nil {
		a.logger.Warn("Analysis document failed to decode, using fallback extraction", map[string]interface{}{
			"error": err.Error(),
		})
		return recovery.FallbackAnalysis(reply), nil
	}

	if len(result.Strengths) < 3 || len(result.Recommendations) < 3 {
		a.logger.Warn("Analysis returned fewer than 3 strengths or recommendations", map[string]interface{}{
			"strengths":       len(result.Strengths),
			"recommendations": len(result.Recommendations),
		})
	}

	a.logger.Debug("CV analysis completed", map[string]interface{}{
		"ats_score": result.ATSScore,
		"duration":  time.Since(start).String(),
	})

	return result, nil
}

// decodeAnalysis maps a recovered document into the analysis model, clamping
// the ATS score into range.
func decodeAnalysis(doc map[string]any) (*models.AnalysisResult, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	if result.ATSScore < 0 {
		result.ATSScore = 0
	}
	if result.ATSScore > 100 {
		result.ATSScore = 100
	}
	return &result, nil
}
