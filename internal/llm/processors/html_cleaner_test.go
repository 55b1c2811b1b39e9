package processors_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cvforge/internal/llm/processors"
)

func TestLooksLikeHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "plain text", input: "Looking for a Go engineer", want: false},
		{name: "markup", input: "<div class='job'>Go engineer</div>", want: true},
		{name: "comparison operator", input: "salary < 100k and growing", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, processors.LooksLikeHTML(tt.input))
		})
	}
}

func TestExtractJobText_PlainText(t *testing.T) {
	cleaner := processors.NewHTMLCleaner()

	out, err := cleaner.ExtractJobText("We   need a Go\t engineer.")

	require.NoError(t, err)
	require.Equal(t, "We need a Go engineer.", out)
}

func TestExtractJobText_StripsScriptsAndNav(t *testing.T) {
	cleaner := processors.NewHTMLCleaner()

	input := `<html><head><script>trackUser()</script></head><body>
		<nav>Home | Jobs | About</nav>
		<div class="job-description">We are hiring a senior Go engineer to build our payments platform in Berlin.</div>
	</body></html>`

	out, err := cleaner.ExtractJobText(input)

	require.NoError(t, err)
	require.Contains(t, out, "senior Go engineer")
	require.NotContains(t, out, "trackUser")
	require.NotContains(t, out, "Home | Jobs")
}

func TestExtractJobText_BodyFallback(t *testing.T) {
	cleaner := processors.NewHTMLCleaner()

	input := `<html><body><p>Short posting.</p></body></html>`

	out, err := cleaner.ExtractJobText(input)

	require.NoError(t, err)
	require.Contains(t, out, "Short posting.")
}

func TestEstimateTokens(t *testing.T) {
	cleaner := processors.NewHTMLCleaner()

	require.Equal(t, 0, cleaner.EstimateTokens(""))
	require.Equal(t, 5, cleaner.EstimateTokens("12345678901234567890"))
}
