package analyst

import (
	"context"
	"strings"
	"time"

	"cvforge/internal/llm"
	"cvforge/internal/llm/recovery"
	"cvforge/internal/logging"
	"cvforge/internal/logging/types"
	"cvforge/internal/prompts"
	"cvforge/pkg/models"
)

// Cover letters want warmth, and they are short.
var (
	coverLetterTemperature = 0.7
	coverLetterMaxTokens   = 1500
)

const coverLetterSystemPrompt = "You are an expert cover letter writer. " +
	"Respond with a single valid JSON object and no prose around it."

// SupportedTones lists the accepted cover letter tones.
var SupportedTones = []string{"professional", "enthusiastic", "conversational", "formal"}

const defaultTone = "professional"

// CoverLetterGenerator writes cover letters from extracted candidate and job
// profiles.
type CoverLetterGenerator struct {
	client llm.ChatClient
	store  *prompts.Store
	logger types.Logger
}

// NewCoverLetterGenerator creates a generator backed by the given chat client.
func NewCoverLetterGenerator(client llm.ChatClient, store *prompts.Store) *CoverLetterGenerator {
	return &CoverLetterGenerator{
		client: client,
		store:  store,
		logger: logging.GetGlobalLogger(),
	}
}

// Generate writes a cover letter. A reply with no recoverable JSON returns
// the recovery ParseError; a parseable reply missing the letter text is
// backfilled with an empty letter and a warning rather than failed.
func (g *CoverLetterGenerator) Generate(ctx context.Context, candidate *models.CandidateProfile, job *models.JobProfile, tone string) (*models.CoverLetter, error) {
	if tone == "" {
		tone = defaultTone
	}

	prompt, err := g.store.Render("cover_letter", map[string]string{
		"candidate_name":         candidate.Name,
		"candidate_title":        candidate.CurrentTitle,
		"candidate_location":     candidate.Location,
		"candidate_years":        candidate.YearsExperience,
		"candidate_skills":       strings.Join(candidate.TopSkills, ", "),
		"candidate_achievements": strings.Join(candidate.Achievements, "; "),
		"company":                job.Company,
		"position":               job.Position,
		"job_location":           job.Location,
		"requirements":           strings.Join(job.Requirements, "; "),
		"tone":                   tone,
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	reply, err := g.client.Complete(ctx, llm.ChatRequest{
		System:      coverLetterSystemPrompt,
		Messages:    []llm.ChatMessage{{Role: "user", Content: prompt}},
		Temperature: &coverLetterTemperature,
		MaxTokens:   &coverLetterMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	doc, err := recovery.ParseStructuredAggressive(reply)
	if err != nil {
		return nil, err
	}

	letter := &models.CoverLetter{ToneMatched: true}

	if text, ok := doc["cover_letter"].(string); ok {
		letter.CoverLetter = text
	} else {
		g.logger.Warn("Cover letter reply missing letter text", map[string]interface{}{
			"provider": string(g.client.Profile().Provider),
		})
	}

	if matched, ok := doc["tone_matched"].(bool); ok {
		letter.ToneMatched = matched
	}

	// Word count is always recomputed from the text; model counts drift.
	letter.WordCount = len(strings.Fields(letter.CoverLetter))

	g.logger.Debug("Cover letter generated", map[string]interface{}{
		"word_count": letter.WordCount,
		"tone":       tone,
		"duration":   time.Since(start).String(),
	})

	return letter, nil
}
