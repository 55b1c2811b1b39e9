package latex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CompilerOptions configure where compilation happens.
type CompilerOptions struct {
	// RendererURL, when set, delegates compilation to a remote PDF renderer.
	RendererURL string
	// TempDir is the scratch directory for local pdflatex runs.
	TempDir string
}

// Compile takes LaTeX source and compiles it to PDF, remotely when a renderer
// is configured and with local pdflatex otherwise. Returns the produced PDF
// bytes or an error containing the LaTeX log on failure.
func Compile(latexSource string, opts CompilerOptions) ([]byte, error) {
	if strings.TrimSpace(latexSource) == "" {
		return nil, fmt.Errorf("empty LaTeX source")
	}

	if rendererURL := strings.TrimSpace(opts.RendererURL); rendererURL != "" {
		return compileRemote(latexSource, rendererURL)
	}

	tempDir := opts.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return compileLocal(latexSource, tempDir)
}

func compileRemote(latexSource, rendererURL string) ([]byte, error) {
	body, _ := json.Marshal(map[string]string{"latex": latexSource})
	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(rendererURL, "/")+"/compile", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("renderer request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("renderer error: status=%d body=%s", resp.StatusCode, string(b))
	}
	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read renderer response: %w", err)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("renderer returned empty pdf")
	}
	return pdf, nil
}

func compileLocal(latexSource, tempDir string) ([]byte, error) {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("create temp base dir: %w", err)
	}

	workDir, err := os.MkdirTemp(tempDir, "latex-build-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	texFile := filepath.Join(workDir, "document.tex")
	if err := os.WriteFile(texFile, []byte(latexSource), 0644); err != nil {
		return nil, fmt.Errorf("write tex file: %w", err)
	}

	// nonstopmode and halt-on-error keep behavior deterministic
	cmd := exec.Command("pdflatex", "-interaction=nonstopmode", "-halt-on-error", "-output-directory", workDir, texFile)
	cmd.Dir = workDir

	env := os.Environ()
	env = append(env, "TEXMFVAR="+filepath.Join(tempDir, "texmf-var"))
	cmd.Env = env

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		// Return combined output to help diagnose missing packages
		return nil, fmt.Errorf("pdflatex failed: %w; log:\n%s", err, out.String())
	}

	pdfPath := filepath.Join(workDir, "document.pdf")
	pdfBytes, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w; log:\n%s", err, out.String())
	}

	return pdfBytes, nil
}
