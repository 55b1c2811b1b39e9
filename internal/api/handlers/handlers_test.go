package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"cvforge/internal/api/handlers"
	"cvforge/internal/background"
	"cvforge/internal/config"
	"cvforge/internal/workflow"
	"cvforge/pkg/models"
)

// stubTaskManager implements background.TaskManager for handler tests.
type stubTaskManager struct {
	healthy   bool
	submitted []string
	results   map[string]*background.TaskResult
}

func (s *stubTaskManager) Start(context.Context) error { return nil }
func (s *stubTaskManager) Stop(context.Context) error  { return nil }
func (s *stubTaskManager) IsHealthy() bool             { return s.healthy }

func (s *stubTaskManager) SubmitOptimizeTask(_ context.Context, processID string, _ models.OptimizeRequest, _ *workflow.Orchestrator) error {
	s.submitted = append(s.submitted, processID)
	return nil
}

func (s *stubTaskManager) GetTaskResult(_ context.Context, processID string) (*background.TaskResult, error) {
	if result, ok := s.results[processID]; ok {
		return result, nil
	}
	return nil, background.ErrTaskNotFound
}

func (s *stubTaskManager) GetTaskStatus(_ context.Context, processID string) (background.TaskStatus, error) {
	result, err := s.GetTaskResult(context.Background(), processID)
	if err != nil {
		return "", err
	}
	return result.Status, nil
}

func (s *stubTaskManager) ListTasks(context.Context) ([]*background.TaskResult, error) {
	return nil, nil
}

func doRequest(t *testing.T, handler echo.HandlerFunc, method, path, body string, pathParams map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for key, val := range pathParams {
		c.SetParamNames(key)
		c.SetParamValues(val)
	}
	require.NoError(t, handler(c))
	return rec
}

func TestHealthHandler(t *testing.T) {
	rec := doRequest(t, handlers.HealthHandler, http.MethodGet, "/health", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var body models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "healthy", body.Status)
	require.Equal(t, "ok", body.Checks["api"])
}

func TestLivenessHandler(t *testing.T) {
	rec := doRequest(t, handlers.LivenessHandler, http.MethodGet, "/health/live", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var body models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "alive", body.Status)
}

func TestReadinessHandler_DegradedWithoutTasks(t *testing.T) {
	handler := handlers.ReadinessHandler(&stubTaskManager{healthy: false}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/health/ready", "", nil)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "degraded", body.Status)
	require.Equal(t, "unavailable", body.Checks["tasks"])
}

func TestAnalyzeHandler_RejectsShortInput(t *testing.T) {
	cfg := &config.Config{}
	cfg.LLM.Temperature = -1
	handler := handlers.AnalyzeHandler(cfg, workflow.NewOrchestrator(cfg, nil))

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/cv/analyze",
		`{"cv_text": "too short", "job_description": "short"}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "validation_failed", body.Error)
	require.NotEmpty(t, body.RequestID)
}

func TestAnalyzeHandler_RejectsMalformedBody(t *testing.T) {
	cfg := &config.Config{}
	handler := handlers.AnalyzeHandler(cfg, workflow.NewOrchestrator(cfg, nil))

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/cv/analyze", `{not json`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "invalid_request", body.Error)
}

func TestOptimizeAsyncHandler_Accepts(t *testing.T) {
	cfg := &config.Config{}
	cfg.LLM.Temperature = -1
	manager := &stubTaskManager{healthy: true}
	handler := handlers.OptimizeAsyncHandler(cfg, workflow.NewOrchestrator(cfg, nil), manager)

	cvText := strings.Repeat("experienced Go engineer ", 5)
	jd := strings.Repeat("building backend systems ", 3)
	body := `{"cv_text": "` + cvText + `", "job_description": "` + jd + `"}`

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/cv/optimize/async", body, nil)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var response models.AsyncTaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Equal(t, models.StatusAccepted, response.Status)
	require.True(t, strings.HasPrefix(response.TaskID, "task_"))
	require.Equal(t, []string{response.TaskID}, manager.submitted)
}

func TestTaskStatusHandler_Found(t *testing.T) {
	completed := time.Now()
	manager := &stubTaskManager{
		healthy: true,
		results: map[string]*background.TaskResult{
			"task_1": {
				ProcessID:   "task_1",
				Status:      background.TaskStatusSuccess,
				Data:        &background.OptimizeTaskData{Result: &models.WorkflowResult{ATSScore: 77}},
				CreatedAt:   completed.Add(-time.Minute),
				CompletedAt: &completed,
			},
		},
	}
	handler := handlers.TaskStatusHandler(manager, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/tasks/task_1", "", map[string]string{"id": "task_1"})

	require.Equal(t, http.StatusOK, rec.Code)

	var body models.TaskStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "task_1", body.TaskID)
	require.Equal(t, models.StatusSuccess, body.Status)
	require.NotNil(t, body.Result)
	require.Equal(t, 77, body.Result.ATSScore)
}

func TestTaskStatusHandler_NotFound(t *testing.T) {
	handler := handlers.TaskStatusHandler(&stubTaskManager{healthy: true}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/tasks/nope", "", map[string]string{"id": "nope"})

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "task_not_found", body.Error)
}

func TestProvidersHandler(t *testing.T) {
	cfg := &config.Config{}
	cfg.LLM.Provider = "openai"
	cfg.LLM.APIKey = "sk-secret"
	cfg.LLM.Temperature = -1
	cfg.LLM.EnableLocalFallback = true
	cfg.LLM.LocalBaseURL = "http://localhost:11434/v1"
	cfg.LLM.LocalModel = "llama3.2"

	handler := handlers.ProvidersHandler(cfg)

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/providers", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	// Keys are never echoed back
	require.NotContains(t, rec.Body.String(), "sk-secret")

	var body models.ProvidersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "openai", body.Active.Provider)
	require.True(t, body.Active.HasKey)
	require.NotNil(t, body.Fallback)
	require.True(t, body.Fallback.IsLocal)
}
