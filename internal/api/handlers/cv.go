package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"cvforge/internal/api/validation"
	"cvforge/internal/background"
	"cvforge/internal/config"
	"cvforge/internal/logging"
	"cvforge/internal/workflow"
	"cvforge/pkg/models"
	"cvforge/pkg/utils"
)

var cvValidator = validator.New()

func init() {
	// Register shared CV validators
	validation.RegisterCVValidators(cvValidator)
}

// AnalyzeHandler handles POST /api/v1/cv/analyze for a standalone gap analysis
func AnalyzeHandler(cfg *config.Config, orchestrator *workflow.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()
		c.Set("request_id", requestID)

		logger.Info("Processing CV analysis request", map[string]interface{}{
			"request_id": requestID,
			"endpoint":   "/api/v1/cv/analyze",
			"method":     "POST",
		})

		var req models.AnalyzeRequest
		if err := c.Bind(&req); err != nil {
			logger.Error("Failed to parse request body", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return bindError(c, requestID, err)
		}

		if err := cvValidator.Struct(&req); err != nil {
			logger.Error("Request validation failed", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return validationError(c, requestID, "Request validation failed: "+err.Error())
		}

		started := time.Now()
		analysis, err := orchestrator.Analyze(c.Request().Context(), &req)
		if err != nil {
			logger.Error("CV analysis failed", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return writeError(c, requestID, err)
		}

		logger.Info("CV analysis completed", map[string]interface{}{
			"request_id": requestID,
			"ats_score":  analysis.ATSScore,
			"degraded":   analysis.Degraded,
			"duration":   utils.FormatDuration(time.Since(started)),
		})

		return c.JSON(http.StatusOK, models.AnalyzeResponse{
			Success:        true,
			Analysis:       analysis,
			ProcessingTime: time.Since(started),
			Timestamp:      time.Now(),
		})
	}
}

// OptimizeHandler handles POST /api/v1/cv/optimize, running the full tailoring
// workflow synchronously
func OptimizeHandler(cfg *config.Config, orchestrator *workflow.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()
		c.Set("request_id", requestID)

		logger.Info("Processing CV optimization request", map[string]interface{}{
			"request_id": requestID,
			"endpoint":   "/api/v1/cv/optimize",
			"method":     "POST",
		})

		var req models.OptimizeRequest
		if err := c.Bind(&req); err != nil {
			return bindError(c, requestID, err)
		}

		if err := cvValidator.Struct(&req); err != nil {
			return validationError(c, requestID, "Request validation failed: "+err.Error())
		}

		result, err := orchestrator.RunWorkflow(c.Request().Context(), &req)
		if err != nil {
			logger.Error("CV optimization failed", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return writeError(c, requestID, err)
		}

		logger.Info("CV optimization completed", map[string]interface{}{
			"request_id":       requestID,
			"ats_score":        result.ATSScore,
			"has_cover_letter": result.CoverLetter != nil,
			"duration":         utils.FormatDuration(result.ProcessingTime),
		})

		return c.JSON(http.StatusOK, models.OptimizeResponse{
			Success:   true,
			Result:    result,
			Timestamp: time.Now(),
		})
	}
}

// OptimizeAsyncHandler handles POST /api/v1/cv/optimize/async, queueing the
// workflow for background processing and returning a task ID immediately
func OptimizeAsyncHandler(cfg *config.Config, orchestrator *workflow.Orchestrator, taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()
		c.Set("request_id", requestID)

		logger.Info("Processing async CV optimization request", map[string]interface{}{
			"request_id": requestID,
			"endpoint":   "/api/v1/cv/optimize/async",
			"method":     "POST",
		})

		var req models.OptimizeRequest
		if err := c.Bind(&req); err != nil {
			return bindError(c, requestID, err)
		}

		if err := cvValidator.Struct(&req); err != nil {
			return validationError(c, requestID, "Request validation failed: "+err.Error())
		}

		taskID := utils.GenerateTaskID()

		logger.Info("Submitting optimization task for background processing", map[string]interface{}{
			"request_id": requestID,
			"task_id":    taskID,
		})

		if err := taskManager.SubmitOptimizeTask(c.Request().Context(), taskID, req, orchestrator); err != nil {
			logger.Error("Failed to submit background optimization task", map[string]interface{}{
				"request_id": requestID,
				"task_id":    taskID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error:     "task_submission_failed",
				Message:   "Failed to queue optimization task: " + err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
				Retryable: true,
			})
		}

		return c.JSON(http.StatusAccepted, models.AsyncTaskResponse{
			TaskID:    taskID,
			Status:    models.StatusAccepted,
			Message:   "Optimization accepted for background processing",
			Timestamp: time.Now(),
		})
	}
}

// SectionOptimizeHandler handles POST /api/v1/cv/optimize/section for a
// single-section rewrite
func SectionOptimizeHandler(cfg *config.Config, orchestrator *workflow.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()
		c.Set("request_id", requestID)

		logger.Info("Processing section optimization request", map[string]interface{}{
			"request_id": requestID,
			"endpoint":   "/api/v1/cv/optimize/section",
			"method":     "POST",
		})

		var req models.SectionOptimizeRequest
		if err := c.Bind(&req); err != nil {
			return bindError(c, requestID, err)
		}

		if err := cvValidator.Struct(&req); err != nil {
			return validationError(c, requestID, "Request validation failed: "+err.Error())
		}

		started := time.Now()
		optimization, err := orchestrator.OptimizeSection(c.Request().Context(), &req)
		if err != nil {
			logger.Error("Section optimization failed", map[string]interface{}{
				"request_id":   requestID,
				"section_name": req.SectionName,
				"error":        err.Error(),
			})
			return writeError(c, requestID, err)
		}

		return c.JSON(http.StatusOK, models.SectionOptimizeResponse{
			Success:        true,
			Optimization:   optimization,
			ProcessingTime: time.Since(started),
			Timestamp:      time.Now(),
		})
	}
}

// CoverLetterHandler handles POST /api/v1/cover-letter/generate
func CoverLetterHandler(cfg *config.Config, orchestrator *workflow.Orchestrator) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()
		c.Set("request_id", requestID)

		logger.Info("Processing cover letter request", map[string]interface{}{
			"request_id": requestID,
			"endpoint":   "/api/v1/cover-letter/generate",
			"method":     "POST",
		})

		var req models.CoverLetterRequest
		if err := c.Bind(&req); err != nil {
			return bindError(c, requestID, err)
		}

		if err := cvValidator.Struct(&req); err != nil {
			return validationError(c, requestID, "Request validation failed: "+err.Error())
		}

		started := time.Now()
		letter, err := orchestrator.GenerateCoverLetter(c.Request().Context(), &req)
		if err != nil {
			logger.Error("Cover letter generation failed", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return writeError(c, requestID, err)
		}

		logger.Info("Cover letter generated", map[string]interface{}{
			"request_id": requestID,
			"word_count": letter.WordCount,
			"duration":   utils.FormatDuration(time.Since(started)),
		})

		return c.JSON(http.StatusOK, models.CoverLetterResponse{
			Success:        true,
			CoverLetter:    letter,
			ProcessingTime: time.Since(started),
			Timestamp:      time.Now(),
		})
	}
}
