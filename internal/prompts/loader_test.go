package prompts_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cvforge/internal/prompts"
)

func TestStore_Load_Embedded(t *testing.T) {
	store := prompts.NewStore("")

	for _, name := range []string{
		"cv_analyzer", "cv_optimizer", "section_optimizer",
		"professional_summary", "cover_letter",
	} {
		t.Run(name, func(t *testing.T) {
			body, err := store.Load(name)

			require.NoError(t, err)
			require.NotEmpty(t, body)
		})
	}
}

func TestStore_Load_NotFound(t *testing.T) {
	store := prompts.NewStore("")

	_, err := store.Load("no_such_prompt")

	var notFound *prompts.ErrNotFound
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, "no_such_prompt", notFound.Name)
}

func TestStore_Load_DirOverride(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "cv_analyzer.md")
	require.NoError(t, os.WriteFile(override, []byte("custom {cv_text}"), 0644))

	store := prompts.NewStore(dir)

	body, err := store.Load("cv_analyzer")

	require.NoError(t, err)
	require.Equal(t, "custom {cv_text}", body)
}

func TestStore_Load_DirMissFallsBackToEmbedded(t *testing.T) {
	store := prompts.NewStore(t.TempDir())

	body, err := store.Load("cover_letter")

	require.NoError(t, err)
	require.NotEmpty(t, body)
}

func TestStore_Render(t *testing.T) {
	store := prompts.NewStore("")

	out, err := store.Render("cv_analyzer", map[string]string{
		"cv_text":         "MY CV BODY",
		"job_description": "MY JOB BODY",
	})

	require.NoError(t, err)
	require.Contains(t, out, "MY CV BODY")
	require.Contains(t, out, "MY JOB BODY")
	require.NotContains(t, out, "{cv_text}")
	require.NotContains(t, out, "{job_description}")
}
