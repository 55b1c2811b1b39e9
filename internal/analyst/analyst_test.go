package analyst_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"cvforge/internal/analyst"
	"cvforge/internal/llm"
	"cvforge/internal/llm/recovery"
	"cvforge/internal/prompts"
	"cvforge/pkg/models"
)

// stubClient returns canned replies and records the requests it saw.
type stubClient struct {
	reply    string
	err      error
	requests []llm.ChatRequest
}

func (s *stubClient) Complete(_ context.Context, req llm.ChatRequest) (string, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubClient) Profile() *llm.Profile {
	return &llm.Profile{Provider: llm.ProviderOpenAI, Model: "gpt-4"}
}

func testStore() *prompts.Store {
	return prompts.NewStore("")
}

func TestAnalyzer_Analyze_CleanReply(t *testing.T) {
	client := &stubClient{reply: `{
		"ats_score": 72,
		"summary": "Good alignment with backend requirements.",
		"keyword_analysis": {
			"matched_keywords": [{"keyword": "Go", "jd_mentions": 3, "cv_mentions": 5}],
			"missing_critical": [{"keyword": "Kubernetes"}]
		},
		"recommendations": ["Add container orchestration experience"]
	}`}

	analyzer := analyst.NewAnalyzer(client, testStore())

	result, err := analyzer.Analyze(context.Background(), "a cv", "a job")

	require.NoError(t, err)
	require.False(t, result.Degraded)
	require.Equal(t, 72, result.ATSScore)
	require.Equal(t, []string{"Go"}, result.MatchedSkillNames())
	require.Equal(t, []string{"Kubernetes"}, result.MissingSkillNames())

	// Analysis uses its own sampling settings and the system/user split:
	// the fixed instruction travels as System, the interpolated CV and job
	// description as the single user message.
	require.Len(t, client.requests, 1)
	require.NotNil(t, client.requests[0].Temperature)
	require.Equal(t, 0.5, *client.requests[0].Temperature)
	require.Equal(t, 2500, *client.requests[0].MaxTokens)
	require.Contains(t, client.requests[0].System, "ATS")
	require.Len(t, client.requests[0].Messages, 1)
	require.Equal(t, "user", client.requests[0].Messages[0].Role)
	require.Contains(t, client.requests[0].Messages[0].Content, "a cv")
	require.Contains(t, client.requests[0].Messages[0].Content, "relevant_degrees")
	require.NotContains(t, client.requests[0].Messages[0].Content, "You are an expert")
}

func TestAnalyzer_Analyze_DecodesEducationRelevance(t *testing.T) {
	client := &stubClient{reply: `{
		"ats_score": 70,
		"summary": "ok",
		"education_relevance": {
			"relevant_degrees": ["BSc Computer Science"],
			"relevant_certifications": ["CKA"]
		}
	}`}

	analyzer := analyst.NewAnalyzer(client, testStore())

	result, err := analyzer.Analyze(context.Background(), "a cv", "a job")

	require.NoError(t, err)
	require.Equal(t, []string{"BSc Computer Science"}, result.EducationRelevance.RelevantDegrees)
	require.Equal(t, []string{"CKA"}, result.EducationRelevance.RelevantCertifications)
}

func TestAnalyzer_Analyze_SparseReplySucceeds(t *testing.T) {
	// Fewer than 3 strengths or recommendations is warned about, never fatal
	client := &stubClient{reply: `{"ats_score": 55, "summary": "thin", "strengths": ["Go"], "recommendations": []}`}

	analyzer := analyst.NewAnalyzer(client, testStore())

	result, err := analyzer.Analyze(context.Background(), "a cv", "a job")

	require.NoError(t, err)
	require.False(t, result.Degraded)
	require.Equal(t, 55, result.ATSScore)
	require.Equal(t, []string{"Go"}, result.Strengths)
}

func TestAnalyzer_Analyze_DegradesOnGarbage(t *testing.T) {
	client := &stubClient{reply: `The candidate looks fine. "ats_score": 64. Good luck!`}

	analyzer := analyst.NewAnalyzer(client, testStore())

	result, err := analyzer.Analyze(context.Background(), "a cv", "a job")

	require.NoError(t, err)
	require.True(t, result.Degraded)
	require.Equal(t, 64, result.ATSScore)
}

func TestAnalyzer_Analyze_ClampsScore(t *testing.T) {
	client := &stubClient{reply: `{"ats_score": 250, "summary": "over-eager model"}`}

	analyzer := analyst.NewAnalyzer(client, testStore())

	result, err := analyzer.Analyze(context.Background(), "a cv", "a job")

	require.NoError(t, err)
	require.Equal(t, 100, result.ATSScore)
}

func TestAnalyzer_Analyze_PropagatesProviderErrors(t *testing.T) {
	providerErr := &llm.RateLimitError{Provider: "openai", RetryAfterSeconds: 30}
	client := &stubClient{err: providerErr}

	analyzer := analyst.NewAnalyzer(client, testStore())

	_, err := analyzer.Analyze(context.Background(), "a cv", "a job")

	var rateErr *llm.RateLimitError
	require.True(t, errors.As(err, &rateErr))
}

func TestOptimizer_Comprehensive_SanitizesDocument(t *testing.T) {
	client := &stubClient{reply: `{
		"user_information": {
			"name": "Ada Lovelace",
			"experiences": [{"job_title": "Engineer", "four_tasks": []}]
		}
	}`}

	optimizer := analyst.NewOptimizer(client, testStore())

	doc, err := optimizer.OptimizeComprehensive(context.Background(), "a cv", "a job", []string{"Go"})

	require.NoError(t, err)
	require.False(t, models.IsErrorEnvelope(doc))

	info := doc["user_information"].(map[string]any)
	require.Equal(t, "Ada Lovelace", info["name"])
	require.Equal(t, "None Provided", info["main_job_title"])

	experiences := info["experiences"].([]any)
	exp := experiences[0].(map[string]any)
	require.Equal(t, []any{"Responsible for core duties."}, exp["four_tasks"])

	// The whole run stays cold, with the fixed instruction as System
	require.Equal(t, 0.2, *client.requests[0].Temperature)
	require.Equal(t, 4000, *client.requests[0].MaxTokens)
	require.Contains(t, client.requests[0].System, "resume writer")
	require.Len(t, client.requests[0].Messages, 1)
	require.Equal(t, "user", client.requests[0].Messages[0].Role)
}

func TestOptimizer_Comprehensive_EnvelopeOnUnparseable(t *testing.T) {
	client := &stubClient{reply: "I refuse to emit JSON today."}

	optimizer := analyst.NewOptimizer(client, testStore())

	doc, err := optimizer.OptimizeComprehensive(context.Background(), "a cv", "a job", nil)

	require.NoError(t, err)
	require.True(t, models.IsErrorEnvelope(doc))
	require.Equal(t, "I refuse to emit JSON today.", doc[models.EnvelopeRawResponseKey])
}

func TestOptimizer_Section_PreservesOriginalOnFailure(t *testing.T) {
	client := &stubClient{reply: "garbage without braces"}

	optimizer := analyst.NewOptimizer(client, testStore())

	original := "Led a team of five engineers."
	result, err := optimizer.OptimizeSection(context.Background(), original, "experience", "a job", nil)

	require.NoError(t, err)
	require.Equal(t, original, result.OptimizedContent)
	require.Equal(t, []string{"Optimization failed, original content preserved"}, result.ChangesMade)
}

func TestOptimizer_Section_BackfillsEmptyContent(t *testing.T) {
	client := &stubClient{reply: `{"optimized_content": "", "changes_made": ["trimmed filler"]}`}

	optimizer := analyst.NewOptimizer(client, testStore())

	original := "Maintained CI pipelines."
	result, err := optimizer.OptimizeSection(context.Background(), original, "experience", "a job", nil)

	require.NoError(t, err)
	require.Equal(t, original, result.OptimizedContent)
	require.Equal(t, []string{"trimmed filler"}, result.ChangesMade)
}

func TestCoverLetterGenerator_Generate(t *testing.T) {
	client := &stubClient{reply: `{
		"cover_letter": "Dear Hiring Manager, I am excited to apply.",
		"word_count": 9999,
		"tone_matched": true
	}`}

	generator := analyst.NewCoverLetterGenerator(client, testStore())

	letter, err := generator.Generate(context.Background(),
		&models.CandidateProfile{Name: "Ada", TopSkills: []string{"Go"}},
		&models.JobProfile{Company: "Acme", Position: "Engineer"},
		"")

	require.NoError(t, err)
	require.Equal(t, "Dear Hiring Manager, I am excited to apply.", letter.CoverLetter)
	require.True(t, letter.ToneMatched)

	// Model word counts drift; ours is computed from the actual text
	require.Equal(t, 8, letter.WordCount)

	require.Contains(t, client.requests[0].System, "cover letter writer")
	require.Len(t, client.requests[0].Messages, 1)
	require.Equal(t, "user", client.requests[0].Messages[0].Role)
}

func TestCoverLetterGenerator_MissingLetterText(t *testing.T) {
	client := &stubClient{reply: `{"tone_matched": false}`}

	generator := analyst.NewCoverLetterGenerator(client, testStore())

	letter, err := generator.Generate(context.Background(),
		&models.CandidateProfile{}, &models.JobProfile{}, "formal")

	require.NoError(t, err)
	require.Equal(t, "", letter.CoverLetter)
	require.Equal(t, 0, letter.WordCount)
	require.False(t, letter.ToneMatched)
}

func TestCoverLetterGenerator_ParseErrorSurfaces(t *testing.T) {
	client := &stubClient{reply: "no json at all"}

	generator := analyst.NewCoverLetterGenerator(client, testStore())

	_, err := generator.Generate(context.Background(),
		&models.CandidateProfile{}, &models.JobProfile{}, "")

	var parseErr *recovery.ParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestSupportedTones(t *testing.T) {
	require.Equal(t, []string{"professional", "enthusiastic", "conversational", "formal"}, analyst.SupportedTones)
}
