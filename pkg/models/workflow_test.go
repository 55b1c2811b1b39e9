package models_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cvforge/pkg/models"
)

func TestErrorEnvelope(t *testing.T) {
	envelope := models.NewErrorEnvelope("not json at all")

	require.True(t, models.IsErrorEnvelope(envelope))
	require.Equal(t, models.EnvelopeParseError, envelope[models.EnvelopeErrorKey])
	require.Equal(t, "not json at all", envelope[models.EnvelopeRawResponseKey])
}

func TestIsErrorEnvelope_RegularDocument(t *testing.T) {
	doc := map[string]any{"user_information": map[string]any{"name": "Jane"}}

	require.False(t, models.IsErrorEnvelope(doc))
}

func TestDecodeOptimizedResume(t *testing.T) {
	doc := map[string]any{
		"user_information": map[string]any{
			"name":           "Jane Smith",
			"main_job_title": "Engineer",
			"email":          "jane@example.com",
			"experiences": []any{
				map[string]any{
					"job_title":  "Engineer",
					"company":    "Acme",
					"four_tasks": []any{"Built things"},
				},
			},
			"skills": map[string]any{
				"hard_skills": []any{"Go"},
				"soft_skills": []any{},
			},
		},
	}

	resume, err := models.DecodeOptimizedResume(doc)

	require.NoError(t, err)
	require.Equal(t, "Jane Smith", resume.UserInformation.Name)
	require.Len(t, resume.UserInformation.Experiences, 1)
	require.Equal(t, []string{"Built things"}, resume.UserInformation.Experiences[0].FourTasks)
	require.Equal(t, []string{"Go"}, resume.UserInformation.Skills.HardSkills)
}

func TestAnalysisResult_SkillNames(t *testing.T) {
	analysis := &models.AnalysisResult{
		KeywordAnalysis: models.KeywordAnalysis{
			MatchedKeywords: []models.KeywordMatch{
				{Keyword: "Go"}, {Keyword: ""}, {Keyword: "Redis"},
			},
			MissingCritical: []models.MissingKeyword{
				{Keyword: "Kubernetes"},
			},
		},
	}

	require.Equal(t, []string{"Go", "Redis"}, analysis.MatchedSkillNames())
	require.Equal(t, []string{"Kubernetes"}, analysis.MissingSkillNames())
}
