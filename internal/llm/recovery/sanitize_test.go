package recovery_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cvforge/internal/llm/recovery"
)

func TestCleanMarkdownArtifacts(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected any
	}{
		{
			name:     "markdown link",
			input:    "worked at [Acme](https://acme.example)",
			expected: "worked at Acme",
		},
		{
			name:     "bare brackets",
			input:    "[Senior] Engineer",
			expected: "Senior Engineer",
		},
		{
			name:     "non-string passthrough",
			input:    42,
			expected: 42,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, recovery.CleanMarkdownArtifacts(tt.input))
		})
	}
}

func TestCleanMarkdownArtifacts_Nested(t *testing.T) {
	input := map[string]any{
		"summary": "see [profile](https://example.com)",
		"items":   []any{"[a](x)", 7},
	}

	out, ok := recovery.CleanMarkdownArtifacts(input).(map[string]any)

	require.True(t, ok)
	require.Equal(t, "see profile", out["summary"])
	items := out["items"].([]any)
	require.Equal(t, "a", items[0])
	require.Equal(t, 7, items[1])
}

func TestSanitizeResume_EmptyInput(t *testing.T) {
	out := recovery.SanitizeResume(nil)

	info := out["user_information"].(map[string]any)
	require.Equal(t, "Candidate", info["name"])
	require.Equal(t, "Professional", info["main_job_title"])
	require.Equal(t, "Experienced professional.", info["profile_description"])
	require.Equal(t, "candidate@example.com", info["email"])
	require.Empty(t, out["projects"])
	require.Empty(t, out["certificate"])
	require.Empty(t, out["extra_curricular_activities"])
}

func TestSanitizeResume_MissingFields(t *testing.T) {
	out := recovery.SanitizeResume(map[string]any{
		"user_information": map[string]any{
			"name":  "Ada Lovelace",
			"email": "   ",
		},
	})

	info := out["user_information"].(map[string]any)
	require.Equal(t, "Ada Lovelace", info["name"])
	require.Equal(t, "none@example.com", info["email"])
	require.Equal(t, "None Provided", info["main_job_title"])
}

func TestSanitizeResume_Experiences(t *testing.T) {
	out := recovery.SanitizeResume(map[string]any{
		"user_information": map[string]any{
			"experiences": []any{
				map[string]any{
					"job_title":  "Engineer",
					"four_tasks": []any{},
				},
				"not a map",
			},
		},
	})

	info := out["user_information"].(map[string]any)
	experiences := info["experiences"].([]any)
	require.Len(t, experiences, 1)

	exp := experiences[0].(map[string]any)
	require.Equal(t, "Engineer", exp["job_title"])
	require.Equal(t, "Unknown", exp["company"])
	require.Equal(t, []any{"Responsible for core duties."}, exp["four_tasks"])
}

func TestSanitizeResume_StringifiesSkillEntries(t *testing.T) {
	out := recovery.SanitizeResume(map[string]any{
		"user_information": map[string]any{
			"skills": map[string]any{
				"hard_skills": []any{"Go", 3.0, nil},
			},
		},
	})

	info := out["user_information"].(map[string]any)
	skills := info["skills"].(map[string]any)
	require.Equal(t, []any{"Go", "3"}, skills["hard_skills"])
}

func TestSanitizeResume_Idempotent(t *testing.T) {
	input := map[string]any{
		"user_information": map[string]any{
			"name": "Grace Hopper",
			"experiences": []any{
				map[string]any{"job_title": "Rear Admiral"},
			},
		},
		"projects": []any{map[string]any{"name": "COBOL"}},
	}

	once := recovery.SanitizeResume(input)
	twice := recovery.SanitizeResume(once)

	require.Equal(t, once, twice)
}
