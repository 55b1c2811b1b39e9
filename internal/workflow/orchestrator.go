// Package workflow chains the analyst roles into the tailoring pipeline:
// analyze, optimize, then optionally generate a cover letter.
package workflow

import (
	"context"
	"time"

	"cvforge/internal/analyst"
	"cvforge/internal/config"
	"cvforge/internal/llm"
	"cvforge/internal/llm/processors"
	"cvforge/internal/logging"
	"cvforge/internal/logging/types"
	"cvforge/internal/prompts"
	"cvforge/pkg/models"
)

const keywordTopN = 5

// Orchestrator runs the tailoring pipeline against a resolved provider.
type Orchestrator struct {
	cfg     *config.Config
	store   *prompts.Store
	cleaner *processors.HTMLCleaner
	logger  types.Logger
}

// NewOrchestrator creates the workflow orchestrator.
func NewOrchestrator(cfg *config.Config, store *prompts.Store) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		store:   store,
		cleaner: processors.NewHTMLCleaner(),
		logger:  logging.GetGlobalLogger(),
	}
}

// Analyze runs the standalone gap analysis operation.
func (o *Orchestrator) Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalysisResult, error) {
	client, err := llm.NewClientFromConfig(o.cfg, req.Options)
	if err != nil {
		return nil, err
	}

	jobDescription, err := o.cleaner.ExtractJobText(req.JobDescription)
	if err != nil {
		jobDescription = req.JobDescription
	}

	result, _, err := o.analyzeWithFallback(ctx, client, req.CVText, jobDescription)
	return result, err
}

// RunWorkflow runs the full pipeline: analysis, comprehensive optimization,
// and an optional cover letter. The analysis stage retries once on a local
// model when fallback is enabled and the primary failure is recoverable; the
// client that produced the analysis carries the remaining stages.
func (o *Orchestrator) RunWorkflow(ctx context.Context, req *models.OptimizeRequest) (*models.WorkflowResult, error) {
	start := time.Now()

	client, err := llm.NewClientFromConfig(o.cfg, req.Options)
	if err != nil {
		return nil, err
	}

	jobDescription, err := o.cleaner.ExtractJobText(req.JobDescription)
	if err != nil {
		jobDescription = req.JobDescription
	}

	analysis, client, err := o.analyzeWithFallback(ctx, client, req.CVText, jobDescription)
	if err != nil {
		return nil, err
	}

	keywords := keywordsFromAnalysis(analysis)

	optimizer := analyst.NewOptimizer(client, o.store)
	optimizedCV, err := optimizer.OptimizeComprehensive(ctx, req.CVText, jobDescription, keywords)
	if err != nil {
		return nil, err
	}

	result := &models.WorkflowResult{
		Analysis:       analysis,
		OptimizedCV:    optimizedCV,
		ATSScore:       analysis.ATSScore,
		MatchingSkills: analysis.MatchedSkillNames(),
		MissingSkills:  analysis.MissingSkillNames(),
		Recommendation: analysis.Summary,
	}

	if req.GenerateCoverLetter {
		generator := analyst.NewCoverLetterGenerator(client, o.store)
		candidate := analyst.ExtractCandidateProfile(req.CVText)
		job := analyst.ExtractJobProfile(jobDescription)

		letter, err := generator.Generate(ctx, candidate, job, req.Tone)
		if err != nil {
			// The letter is an optional stage; a failed letter degrades the
			// result instead of discarding the finished optimization.
			o.logger.Warn("Cover letter stage failed, continuing without letter", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			result.CoverLetter = letter
		}
	}

	result.ProcessingTime = time.Since(start)

	o.logger.Info("Workflow completed", map[string]interface{}{
		"ats_score":        result.ATSScore,
		"has_cover_letter": result.CoverLetter != nil,
		"degraded":         analysis.Degraded,
		"processing_time":  result.ProcessingTime.String(),
	})

	return result, nil
}

// GenerateCoverLetter runs the standalone cover letter operation.
func (o *Orchestrator) GenerateCoverLetter(ctx context.Context, req *models.CoverLetterRequest) (*models.CoverLetter, error) {
	client, err := llm.NewClientFromConfig(o.cfg, req.Options)
	if err != nil {
		return nil, err
	}

	jobDescription, err := o.cleaner.ExtractJobText(req.JobDescription)
	if err != nil {
		jobDescription = req.JobDescription
	}

	generator := analyst.NewCoverLetterGenerator(client, o.store)
	candidate := analyst.ExtractCandidateProfile(req.CVText)
	job := analyst.ExtractJobProfile(jobDescription)

	return generator.Generate(ctx, candidate, job, req.Tone)
}

// OptimizeSection runs the standalone section rewrite operation.
func (o *Orchestrator) OptimizeSection(ctx context.Context, req *models.SectionOptimizeRequest) (*models.SectionOptimization, error) {
	client, err := llm.NewClientFromConfig(o.cfg, req.Options)
	if err != nil {
		return nil, err
	}

	jobDescription, err := o.cleaner.ExtractJobText(req.JobDescription)
	if err != nil {
		jobDescription = req.JobDescription
	}

	optimizer := analyst.NewOptimizer(client, o.store)
	return optimizer.OptimizeSection(ctx, req.Section, req.SectionName, jobDescription, req.Keywords)
}

// analyzeWithFallback runs the analysis stage, retrying exactly once against
// the local model when the primary provider fails recoverably and local
// fallback is enabled. It returns the client that produced the result so
// later stages stay on the provider that is actually answering.
func (o *Orchestrator) analyzeWithFallback(ctx context.Context, client llm.ChatClient, cvText, jobDescription string) (*models.AnalysisResult, llm.ChatClient, error) {
	analyzer := analyst.NewAnalyzer(client, o.store)

	result, err := analyzer.Analyze(ctx, cvText, jobDescription)
	if err == nil {
		return result, client, nil
	}

	if !o.cfg.LLM.EnableLocalFallback || !llm.IsRecoverable(err) {
		return nil, client, err
	}

	o.logger.Warn("Primary provider failed, retrying analysis on local model", map[string]interface{}{
		"provider": string(client.Profile().Provider),
		"error":    err.Error(),
	})

	localClient := llm.NewLocalClient(o.cfg)
	localAnalyzer := analyst.NewAnalyzer(localClient, o.store)

	result, localErr := localAnalyzer.Analyze(ctx, cvText, jobDescription)
	if localErr != nil {
		// Report the primary failure; the local retry was best-effort.
		return nil, client, err
	}

	return result, localClient, nil
}

// keywordsFromAnalysis picks the optimization keywords: the strongest matches
// plus the most critical gaps.
func keywordsFromAnalysis(analysis *models.AnalysisResult) []string {
	var keywords []string
	seen := map[string]bool{}

	for i, match := range analysis.KeywordAnalysis.MatchedKeywords {
		if i >= keywordTopN {
			break
		}
		if !seen[match.Keyword] {
			seen[match.Keyword] = true
			keywords = append(keywords, match.Keyword)
		}
	}

	for i, missing := range analysis.KeywordAnalysis.MissingCritical {
		if i >= keywordTopN {
			break
		}
		if !seen[missing.Keyword] {
			seen[missing.Keyword] = true
			keywords = append(keywords, missing.Keyword)
		}
	}

	return keywords
}
