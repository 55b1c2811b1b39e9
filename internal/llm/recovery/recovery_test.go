package recovery_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"cvforge/internal/llm/recovery"
)

func TestParseStructured_CleanJSON(t *testing.T) {
	doc, err := recovery.ParseStructured(`{"ats_score": 85, "summary": "Strong match"}`)

	require.NoError(t, err)
	require.Equal(t, float64(85), doc["ats_score"])
	require.Equal(t, "Strong match", doc["summary"])
}

func TestParseStructured_CodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "json fence",
			input: "Here is the analysis:\n```json\n{\"ats_score\": 70}\n```\nHope this helps!",
		},
		{
			name:  "bare fence",
			input: "```\n{\"ats_score\": 70}\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := recovery.ParseStructured(tt.input)

			require.NoError(t, err)
			require.Equal(t, float64(70), doc["ats_score"])
		})
	}
}

func TestParseStructured_ProseAroundBraces(t *testing.T) {
	input := `Sure! The result is {"summary": "good fit"} as requested.`

	doc, err := recovery.ParseStructured(input)

	require.NoError(t, err)
	require.Equal(t, "good fit", doc["summary"])
}

func TestParseStructured_TrailingComma(t *testing.T) {
	input := `{"skills": ["Go", "Python",], "ats_score": 60,}`

	doc, err := recovery.ParseStructured(input)

	require.NoError(t, err)
	require.Equal(t, float64(60), doc["ats_score"])
}

func TestParseStructured_SplitStrings(t *testing.T) {
	input := "{\"skills\": [\"Go\"\n\"Python\"]}"

	doc, err := recovery.ParseStructured(input)

	require.NoError(t, err)
	skills, ok := doc["skills"].([]any)
	require.True(t, ok)
	require.Len(t, skills, 2)
}

func TestParseStructured_NoJSON(t *testing.T) {
	raw := "I am sorry, I cannot produce that output."

	doc, err := recovery.ParseStructured(raw)

	require.Nil(t, doc)
	var parseErr *recovery.ParseError
	require.True(t, errors.As(err, &parseErr))
	require.Equal(t, raw, parseErr.Raw)
}

func TestParseStructuredAggressive_BareKeys(t *testing.T) {
	input := `{summary: "solid candidate", ats_score: 75}`

	doc, err := recovery.ParseStructuredAggressive(input)

	require.NoError(t, err)
	require.Equal(t, "solid candidate", doc["summary"])
}

func TestParseStructuredAggressive_StillFails(t *testing.T) {
	_, err := recovery.ParseStructuredAggressive("{{{{")

	var parseErr *recovery.ParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestFallbackAnalysis_ScrapesFragments(t *testing.T) {
	raw := `The "ats_score": 82 and "summary": "Great backend profile" stand out.
	{"keyword": "golang"} {"keyword": "kubernetes"}`

	result := recovery.FallbackAnalysis(raw)

	require.True(t, result.Degraded)
	require.Equal(t, 82, result.ATSScore)
	require.Equal(t, "Great backend profile", result.Summary)
	require.Len(t, result.KeywordAnalysis.MatchedKeywords, 2)
	require.Equal(t, "golang", result.KeywordAnalysis.MatchedKeywords[0].Keyword)
}

func TestFallbackAnalysis_NeverFails(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "prose only", input: "no structured data here at all"},
		{name: "binary garbage", input: "\x00\x01\x02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := recovery.FallbackAnalysis(tt.input)

			require.NotNil(t, result)
			require.True(t, result.Degraded)
			require.Equal(t, 50, result.ATSScore)
		})
	}
}

func TestFallbackAnalysis_ClampsScore(t *testing.T) {
	result := recovery.FallbackAnalysis(`"ats_score": 940`)

	require.Equal(t, 100, result.ATSScore)
}
