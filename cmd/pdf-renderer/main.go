// pdf-renderer is a small sidecar that compiles resume LaTeX into PDF.
// It is meant to run in its own container with a TeX Live install, so the
// main service never executes latex itself. The API is two routes: GET
// /health and POST /compile with {"latex": "..."} returning the PDF bytes.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const (
	maxRequestBytes = 1 << 20 // request body cap
	maxSourceBytes  = 500_000 // LaTeX source cap
	compileTimeout  = 30 * time.Second
)

type compileRequest struct {
	Latex string `json:"latex"`
}

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/compile", handleCompile)

	addr := ":8999"
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		addr = ":" + v
	}
	log.Printf("resume renderer listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleCompile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req compileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid json: %v", err), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Latex) == "" {
		http.Error(w, "latex is required", http.StatusBadRequest)
		return
	}
	if len(req.Latex) > maxSourceBytes {
		http.Error(w, "latex input too large", http.StatusRequestEntityTooLarge)
		return
	}
	if err := checkLatexSource(req.Latex); err != nil {
		http.Error(w, fmt.Sprintf("latex rejected: %v", err), http.StatusBadRequest)
		return
	}

	pdf, buildLog, err := compileResume(r.Context(), req.Latex)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errRendererInternal) {
			status = http.StatusInternalServerError
		}
		http.Error(w, fmt.Sprintf("%v\n%s", err, buildLog), status)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		log.Printf("write response: %v", err)
	}
}

var errRendererInternal = errors.New("renderer internal error")

// compileResume runs the LaTeX toolchain on the given source in a throwaway
// work directory and returns the PDF bytes plus the compiler log.
func compileResume(ctx context.Context, source string) ([]byte, string, error) {
	workDir, err := os.MkdirTemp("/tmp", "resume-build-*")
	if err != nil {
		return nil, "", fmt.Errorf("%w: create temp dir: %v", errRendererInternal, err)
	}
	defer os.RemoveAll(workDir)

	texFile := filepath.Join(workDir, "resume.tex")
	if err := os.WriteFile(texFile, []byte(source), 0600); err != nil {
		return nil, "", fmt.Errorf("%w: write tex file: %v", errRendererInternal, err)
	}

	ctx, cancel := context.WithTimeout(ctx, compileTimeout)
	defer cancel()

	cmd := latexCommand(ctx, workDir, texFile)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded && cmd.Process != nil {
			// Kill the whole process group, latexmk spawns children
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		return nil, out.String(), fmt.Errorf("latex compile failed: %v", err)
	}

	pdf, err := os.ReadFile(filepath.Join(workDir, "resume.pdf"))
	if err != nil {
		return nil, out.String(), fmt.Errorf("%w: read pdf: %v", errRendererInternal, err)
	}
	return pdf, out.String(), nil
}

// latexCommand builds the compile invocation with shell-escape disabled,
// resource limits applied, and a minimal environment.
func latexCommand(ctx context.Context, workDir, texFile string) *exec.Cmd {
	var args []string
	if _, err := exec.LookPath("latexmk"); err == nil {
		pdflatex := "pdflatex -interaction=nonstopmode -halt-on-error -no-shell-escape"
		args = []string{
			"latexmk",
			"-pdf",
			"-interaction=nonstopmode",
			"-halt-on-error",
			"-outdir=" + workDir,
			"-pdflatex=" + pdflatex,
			texFile,
		}
	} else {
		args = []string{
			"pdflatex",
			"-interaction=nonstopmode",
			"-halt-on-error",
			"-no-shell-escape",
			"-output-directory",
			workDir,
			texFile,
		}
	}

	// CPU seconds, address space, output size (512-byte blocks), fd count
	maxCPUSeconds := 20
	maxAddressSpaceKB := 512 * 1024
	maxFileBlocks := int64(200*1024*1024+511) / 512

	shCmd := fmt.Sprintf("ulimit -t %d; ulimit -v %d; ulimit -f %d; ulimit -n 32; exec %s",
		maxCPUSeconds, maxAddressSpaceKB, maxFileBlocks, shellJoin(args))

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", shCmd)
	cmd.Dir = workDir
	cmd.Env = compileEnv(workDir)

	sys := &syscall.SysProcAttr{Setpgid: true}
	if os.Geteuid() == 0 {
		if cred, err := nobodyCredential(); err == nil {
			sys.Credential = cred
		}
	}
	cmd.SysProcAttr = sys
	return cmd
}

func compileEnv(workDir string) []string {
	env := []string{
		"PATH=/usr/bin:/bin:/usr/local/bin",
		"HOME=" + workDir,
		"TEXMFVAR=" + filepath.Join(workDir, "texmf-var"),
		"NO_PROXY=*",
		"http_proxy=",
		"https_proxy=",
	}
	// Locale matters for font handling, keep it if set
	for _, key := range []string{"LANG", "LC_ALL", "LC_CTYPE"} {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}
	return env
}

func nobodyCredential() (*syscall.Credential, error) {
	u, err := user.Lookup("nobody")
	if err != nil {
		return nil, err
	}
	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return nil, err
	}
	gid, err := strconv.ParseUint(u.Gid, 10, 32)
	if err != nil {
		return nil, err
	}
	return &syscall.Credential{Uid: uint32(uid), Gid: uint32(gid)}, nil
}

var (
	forbiddenPrimitives = []*regexp.Regexp{
		regexp.MustCompile(`\\write18`),
		regexp.MustCompile(`\\openout`),
		regexp.MustCompile(`\\openin`),
		regexp.MustCompile(`\\read`),
		regexp.MustCompile(`\\immediate\s*\\write`),
	}
	forbiddenPackages = []string{"shellesc", "write18", "catchfile", "verbatiminput"}
	includeRegex      = regexp.MustCompile(`\\(input|include)\s*\{([^}]*)\}`)
)

// checkLatexSource rejects sources that reach for shell escape, file IO
// primitives, or includes outside the work directory.
func checkLatexSource(src string) error {
	if len(src) == 0 {
		return errors.New("empty input")
	}
	lower := strings.ToLower(src)

	for _, re := range forbiddenPrimitives {
		if re.MatchString(lower) {
			return fmt.Errorf("contains forbidden primitive: %s", re.String())
		}
	}
	for _, pkg := range forbiddenPackages {
		re := regexp.MustCompile(`\\usepackage\s*\{[^}]*` + regexp.QuoteMeta(pkg) + `[^}]*\}`)
		if re.MatchString(lower) {
			return fmt.Errorf("forbidden package: %s", pkg)
		}
	}

	includes := includeRegex.FindAllStringSubmatch(lower, -1)
	for _, m := range includes {
		arg := strings.TrimSpace(m[2])
		if strings.HasPrefix(arg, "/") || strings.Contains(arg, "://") || strings.Contains(arg, "..") {
			return fmt.Errorf("forbidden include path: %s", arg)
		}
	}
	if len(includes) > 32 {
		return fmt.Errorf("too many includes: %d", len(includes))
	}

	if runtime.GOOS == "windows" {
		return errors.New("unsupported platform")
	}
	return nil
}

// shellJoin quotes arguments for a POSIX shell.
func shellJoin(args []string) string {
	quoted := make([]string, 0, len(args))
	for _, a := range args {
		quoted = append(quoted, shellQuote(a))
	}
	return strings.Join(quoted, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
