package workflow_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"cvforge/internal/config"
	"cvforge/internal/llm"
	"cvforge/internal/prompts"
	"cvforge/internal/workflow"
	"cvforge/pkg/models"
)

const testCV = `Jane Smith
Senior Backend Engineer
8 years of experience with Go and PostgreSQL.
- Led migration serving 2M users`

const testJD = `Position: Platform Engineer
Looking for Go and Kubernetes experience at Acme Corp.`

func workflowConfig(apiBase string) *config.Config {
	cfg := &config.Config{}
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.APIBase = apiBase
	cfg.LLM.Temperature = -1
	cfg.LLM.RetryAttempts = 2
	cfg.LLM.RateLimit = 600
	cfg.LLM.LocalBaseURL = "http://localhost:11434/v1"
	cfg.LLM.LocalModel = "llama3.2"
	return cfg
}

// completionServer replies with the queued bodies in call order.
func completionServer(t *testing.T, replies ...string) *httptest.Server {
	t.Helper()
	var calls int64
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&calls, 1) - 1
		if int(n) >= len(replies) {
			n = int64(len(replies) - 1)
		}
		content, _ := json.Marshal(replies[n])
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":` + string(content) + `}}]}`))
	}))
}

const analysisReply = `{
	"ats_score": 68,
	"summary": "Solid backend profile.",
	"keyword_analysis": {
		"matched_keywords": [{"keyword": "Go"}, {"keyword": "PostgreSQL"}],
		"missing_critical": [{"keyword": "Kubernetes"}]
	},
	"recommendations": ["Surface container experience"]
}`

const optimizeReply = `{
	"user_information": {
		"name": "Jane Smith",
		"main_job_title": "Senior Backend Engineer",
		"profile_description": "Backend engineer.",
		"email": "jane@example.com"
	}
}`

const coverLetterReply = `{"cover_letter": "Dear team, I would love to join.", "tone_matched": true}`

func TestOrchestrator_Analyze(t *testing.T) {
	server := completionServer(t, analysisReply)
	defer server.Close()

	orchestrator := workflow.NewOrchestrator(workflowConfig(server.URL), prompts.NewStore(""))

	result, err := orchestrator.Analyze(context.Background(), &models.AnalyzeRequest{
		CVText:         testCV,
		JobDescription: testJD,
	})

	require.NoError(t, err)
	require.Equal(t, 68, result.ATSScore)
	require.Equal(t, []string{"Go", "PostgreSQL"}, result.MatchedSkillNames())
}

func TestOrchestrator_RunWorkflow(t *testing.T) {
	server := completionServer(t, analysisReply, optimizeReply, coverLetterReply)
	defer server.Close()

	orchestrator := workflow.NewOrchestrator(workflowConfig(server.URL), prompts.NewStore(""))

	result, err := orchestrator.RunWorkflow(context.Background(), &models.OptimizeRequest{
		CVText:              testCV,
		JobDescription:      testJD,
		GenerateCoverLetter: true,
	})

	require.NoError(t, err)
	require.Equal(t, 68, result.ATSScore)
	require.Equal(t, []string{"Go", "PostgreSQL"}, result.MatchingSkills)
	require.Equal(t, []string{"Kubernetes"}, result.MissingSkills)
	require.Equal(t, "Solid backend profile.", result.Recommendation)
	require.False(t, models.IsErrorEnvelope(result.OptimizedCV))
	require.NotNil(t, result.CoverLetter)
	require.Equal(t, "Dear team, I would love to join.", result.CoverLetter.CoverLetter)
	require.Greater(t, result.ProcessingTime.Nanoseconds(), int64(0))
}

func TestOrchestrator_RunWorkflow_CoverLetterFailureDegrades(t *testing.T) {
	// Third call (the cover letter) yields no recoverable JSON
	server := completionServer(t, analysisReply, optimizeReply, "nothing structured here")
	defer server.Close()

	orchestrator := workflow.NewOrchestrator(workflowConfig(server.URL), prompts.NewStore(""))

	result, err := orchestrator.RunWorkflow(context.Background(), &models.OptimizeRequest{
		CVText:              testCV,
		JobDescription:      testJD,
		GenerateCoverLetter: true,
	})

	require.NoError(t, err)
	require.Nil(t, result.CoverLetter)
	require.Equal(t, 68, result.ATSScore)
}

func TestOrchestrator_RunWorkflow_LocalFallback(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer primary.Close()

	local := completionServer(t, analysisReply, optimizeReply)
	defer local.Close()

	cfg := workflowConfig(primary.URL)
	cfg.LLM.EnableLocalFallback = true
	cfg.LLM.LocalBaseURL = local.URL

	orchestrator := workflow.NewOrchestrator(cfg, prompts.NewStore(""))

	result, err := orchestrator.RunWorkflow(context.Background(), &models.OptimizeRequest{
		CVText:         testCV,
		JobDescription: testJD,
	})

	require.NoError(t, err)
	require.Equal(t, 68, result.ATSScore)
	require.False(t, models.IsErrorEnvelope(result.OptimizedCV))
}

func TestOrchestrator_RunWorkflow_NoFallbackWhenDisabled(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer primary.Close()

	orchestrator := workflow.NewOrchestrator(workflowConfig(primary.URL), prompts.NewStore(""))

	_, err := orchestrator.RunWorkflow(context.Background(), &models.OptimizeRequest{
		CVText:         testCV,
		JobDescription: testJD,
	})

	var serverErr *llm.ProviderServerError
	require.True(t, errors.As(err, &serverErr))
}

func TestOrchestrator_RunWorkflow_NonRecoverableSkipsFallback(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer primary.Close()

	cfg := workflowConfig(primary.URL)
	cfg.LLM.EnableLocalFallback = true
	// Local endpoint is never dialed for a non-recoverable failure
	cfg.LLM.LocalBaseURL = "http://localhost:1/v1"

	orchestrator := workflow.NewOrchestrator(cfg, prompts.NewStore(""))

	_, err := orchestrator.RunWorkflow(context.Background(), &models.OptimizeRequest{
		CVText:         testCV,
		JobDescription: testJD,
	})

	var authErr *llm.AuthenticationError
	require.True(t, errors.As(err, &authErr))
}

func TestOrchestrator_RunWorkflow_ConfigurationErrorFailsFast(t *testing.T) {
	cfg := workflowConfig("")
	cfg.LLM.Provider = "not-a-provider"

	orchestrator := workflow.NewOrchestrator(cfg, prompts.NewStore(""))

	_, err := orchestrator.RunWorkflow(context.Background(), &models.OptimizeRequest{
		CVText:         testCV,
		JobDescription: testJD,
	})

	var configErr *llm.ConfigurationError
	require.True(t, errors.As(err, &configErr))
}
