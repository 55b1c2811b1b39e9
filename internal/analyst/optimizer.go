package analyst

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"cvforge/internal/llm"
	"cvforge/internal/llm/recovery"
	"cvforge/internal/logging"
	"cvforge/internal/logging/types"
	"cvforge/internal/prompts"
	"cvforge/pkg/models"
)

// Optimizer sampling settings. The comprehensive rewrite runs cold so the
// large JSON document stays well-formed; section rewrites tolerate more
// variation.
var (
	sectionTemperature       = 0.6
	sectionMaxTokens         = 2000
	comprehensiveTemperature = 0.2
	comprehensiveMaxTokens   = 4000
)

// optimizerSystemPrompt is fixed across the whole-CV, section, and summary
// rewrites; the rendered templates carry only the content and schema.
const optimizerSystemPrompt = "You are an expert resume writer. Stay strictly truthful to the candidate's " +
	"actual experience and respond with a single valid JSON object and no prose around it."

// Optimizer rewrites resumes and resume sections tailored to a job.
type Optimizer struct {
	client llm.ChatClient
	store  *prompts.Store
	logger types.Logger
}

// NewOptimizer creates an optimizer backed by the given chat client.
func NewOptimizer(client llm.ChatClient, store *prompts.Store) *Optimizer {
	return &Optimizer{
		client: client,
		store:  store,
		logger: logging.GetGlobalLogger(),
	}
}

// OptimizeComprehensive rewrites the whole CV in one shot and returns a
// sanitized resume document. When even aggressive recovery cannot produce a
// document, the raw reply comes back wrapped in an error envelope rather than
// an error: the caller decides whether a degraded document is acceptable.
func (o *Optimizer) OptimizeComprehensive(ctx context.Context, cvText, jobDescription string, keywords []string) (map[string]any, error) {
	prompt, err := o.store.Render("cv_optimizer", map[string]string{
		"cv_text":         cvText,
		"job_description": jobDescription,
		"keywords":        strings.Join(keywords, ", "),
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	reply, err := o.client.Complete(ctx, llm.ChatRequest{
		System:      optimizerSystemPrompt,
		Messages:    []llm.ChatMessage{{Role: "user", Content: prompt}},
		Temperature: &comprehensiveTemperature,
		MaxTokens:   &comprehensiveMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	doc, err := recovery.ParseStructuredAggressive(reply)
	if err != nil {
		o.logger.Warn("Comprehensive optimization reply unparseable, returning error envelope", map[string]interface{}{
			"provider": string(o.client.Profile().Provider),
			"duration": time.Since(start).String(),
		})
		return models.NewErrorEnvelope(reply), nil
	}

	sanitized := recovery.SanitizeResume(doc)

	o.logger.Debug("Comprehensive optimization completed", map[string]interface{}{
		"duration": time.Since(start).String(),
	})

	return sanitized, nil
}

// OptimizeSection rewrites a single resume section. Unparseable replies fall
// back to the original content so a bad model turn never destroys user data.
func (o *Optimizer) OptimizeSection(ctx context.Context, section, sectionName, jobDescription string, keywords []string) (*models.SectionOptimization, error) {
	prompt, err := o.store.Render("section_optimizer", map[string]string{
		"section":         section,
		"section_name":    sectionName,
		"job_description": jobDescription,
		"keywords":        strings.Join(keywords, ", "),
	})
	if err != nil {
		return nil, err
	}

	reply, err := o.client.Complete(ctx, llm.ChatRequest{
		System:      optimizerSystemPrompt,
		Messages:    []llm.ChatMessage{{Role: "user", Content: prompt}},
		Temperature: &sectionTemperature,
		MaxTokens:   &sectionMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	return o.decodeSection(reply, section)
}

// OptimizeProfessionalSummary writes a tailored professional summary from the
// full CV.
func (o *Optimizer) OptimizeProfessionalSummary(ctx context.Context, cvText, jobDescription string) (*models.SectionOptimization, error) {
	prompt, err := o.store.Render("professional_summary", map[string]string{
		"cv_text":         cvText,
		"job_description": jobDescription,
	})
	if err != nil {
		return nil, err
	}

	reply, err := o.client.Complete(ctx, llm.ChatRequest{
		System:      optimizerSystemPrompt,
		Messages:    []llm.ChatMessage{{Role: "user", Content: prompt}},
		Temperature: &sectionTemperature,
		MaxTokens:   &sectionMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	return o.decodeSection(reply, "")
}

func (o *Optimizer) decodeSection(reply, original string) (*models.SectionOptimization, error) {
	doc, err := recovery.ParseStructured(reply)
	if err != nil {
		o.logger.Warn("Section optimization reply unparseable, preserving original content", nil)
		return &models.SectionOptimization{
			OptimizedContent: original,
			ChangesMade:      []string{"Optimization failed, original content preserved"},
			KeywordsUsed:     []string{},
		}, nil
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var result models.SectionOptimization
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	if result.OptimizedContent == "" {
		result.OptimizedContent = original
	}
	return &result, nil
}
