package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"cvforge/internal/background"
	"cvforge/internal/logging"
	"cvforge/pkg/models"
	"cvforge/pkg/utils"
)

// TaskStatusHandler handles GET /api/v1/tasks/:id. Results are served from
// the in-memory store first; completed tasks evicted by cleanup are then
// looked up in redis where results are persisted.
func TaskStatusHandler(taskManager background.TaskManager, redisClient *utils.RedisClient) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()
		c.Set("request_id", requestID)

		taskID := c.Param("id")
		if taskID == "" {
			return validationError(c, requestID, "Task ID is required")
		}

		logger.Debug("Task status requested", map[string]interface{}{
			"request_id": requestID,
			"task_id":    taskID,
		})

		result, err := taskManager.GetTaskResult(c.Request().Context(), taskID)
		if err == nil {
			return c.JSON(http.StatusOK, taskStatusResponse(result))
		}

		if !errors.Is(err, background.ErrTaskNotFound) {
			logger.Error("Failed to look up task", map[string]interface{}{
				"request_id": requestID,
				"task_id":    taskID,
				"error":      err.Error(),
			})
			return writeError(c, requestID, err)
		}

		// Fall back to persisted results for tasks already evicted from memory
		if redisClient != nil {
			workflowResult, redisErr := redisClient.GetWorkflowResult(c.Request().Context(), taskID)
			if redisErr == nil && workflowResult != nil {
				return c.JSON(http.StatusOK, models.TaskStatusResponse{
					TaskID:    taskID,
					Status:    models.StatusSuccess,
					Result:    workflowResult,
					CreatedAt: time.Now(),
				})
			}
		}

		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:     "task_not_found",
			Message:   "No task found with ID " + taskID,
			RequestID: requestID,
			Timestamp: time.Now(),
		})
	}
}

func taskStatusResponse(result *background.TaskResult) models.TaskStatusResponse {
	response := models.TaskStatusResponse{
		TaskID:      result.ProcessID,
		Status:      string(result.Status),
		Error:       result.Error,
		CreatedAt:   result.CreatedAt,
		CompletedAt: result.CompletedAt,
	}

	if data, ok := result.Data.(*background.OptimizeTaskData); ok && data != nil {
		response.Result = data.Result
	}

	return response
}
