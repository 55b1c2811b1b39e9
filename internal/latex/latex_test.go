package latex_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"cvforge/internal/latex"
	"cvforge/pkg/models"
)

func sampleResume() *models.OptimizedResume {
	return &models.OptimizedResume{
		UserInformation: models.UserInformation{
			Name:               "Jane & Smith",
			MainJobTitle:       "Engineer 100% Backend",
			Email:              "jane@example.com",
			ProfileDescription: "Builds systems for $_companies_.",
			Experiences: []models.Experience{
				{
					JobTitle:  "Senior Engineer",
					Company:   "Acme",
					StartDate: "2019",
					EndDate:   "",
					FourTasks: []string{"Shipped v2 #1 priority", "Cut costs by 40%"},
				},
			},
			Education: []models.Education{
				{Institution: "MIT", Degree: "BSc", StartDate: "2011", EndDate: "2015"},
			},
			Skills: models.Skills{
				HardSkills: []string{"Go", "go", "Postgres", ""},
				SoftSkills: []string{"Mentoring"},
			},
		},
	}
}

func TestEngine_Render_DefaultTheme(t *testing.T) {
	engine := latex.NewEngine()

	out, err := engine.Render(sampleResume(), "")

	require.NoError(t, err)
	require.Contains(t, out, `\documentclass`)
	require.Contains(t, out, `Jane \& Smith`)
	require.Contains(t, out, `Engineer 100\% Backend`)
	require.Contains(t, out, `\$\_companies\_.`)
	require.Contains(t, out, "2019 – Present")
	require.Contains(t, out, `Cut costs by 40\%`)
	require.Contains(t, out, "MIT")

	// Skills are deduplicated case-insensitively and empties dropped
	require.Contains(t, out, "Go, Postgres")
	require.NotContains(t, out, "Go, go")
}

func TestEngine_Render_ExplicitDefaultTheme(t *testing.T) {
	engine := latex.NewEngine()

	out, err := engine.Render(sampleResume(), latex.DefaultTheme)

	require.NoError(t, err)
	require.Contains(t, out, `\begin{document}`)
}

func TestEngine_Render_UnknownTheme(t *testing.T) {
	engine := latex.NewEngine()

	_, err := engine.Render(sampleResume(), "NEON_GRID")

	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown theme")
}

func TestCompile_EmptySource(t *testing.T) {
	_, err := latex.Compile("   ", latex.CompilerOptions{})

	require.Error(t, err)
}

func TestCompile_Remote(t *testing.T) {
	pdf := []byte("%PDF-1.5 fake body")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/compile", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write(pdf)
	}))
	defer server.Close()

	out, err := latex.Compile(`\documentclass{article}`, latex.CompilerOptions{RendererURL: server.URL})

	require.NoError(t, err)
	require.Equal(t, pdf, out)
}

func TestCompile_RemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "latex rejected", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := latex.Compile(`\documentclass{article}`, latex.CompilerOptions{RendererURL: server.URL})

	require.Error(t, err)
	require.Contains(t, err.Error(), "status=400")
}
