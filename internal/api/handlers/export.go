package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"cvforge/internal/config"
	"cvforge/internal/exporter"
	"cvforge/internal/logging"
	"cvforge/pkg/models"
	"cvforge/pkg/utils"
)

// ExportHandler handles POST /api/v1/cv/export, rendering an optimized resume
// to PDF via LaTeX and uploading the artifact to object storage
func ExportHandler(cfg *config.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()
		c.Set("request_id", requestID)

		logger.Info("Processing CV export request", map[string]interface{}{
			"request_id": requestID,
			"endpoint":   "/api/v1/cv/export",
			"method":     "POST",
		})

		var req models.ExportRequest
		if err := c.Bind(&req); err != nil {
			return bindError(c, requestID, err)
		}

		if err := cvValidator.Struct(&req); err != nil {
			return validationError(c, requestID, "Request validation failed: "+err.Error())
		}

		resume, err := models.DecodeOptimizedResume(req.Resume)
		if err != nil {
			return validationError(c, requestID, "Invalid resume document: "+err.Error())
		}

		exportID := utils.GenerateExportID()

		url, err := exporter.ExportResume(c.Request().Context(), cfg, exportID, resume, req.Theme)
		if err != nil {
			code := "export_failed"
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, exporter.ErrRender):
				code = "render_failed"
				status = http.StatusUnprocessableEntity
			case errors.Is(err, exporter.ErrCompile):
				code = "compile_failed"
				status = http.StatusUnprocessableEntity
			case errors.Is(err, exporter.ErrStorageConfig):
				code = "storage_not_configured"
			case errors.Is(err, exporter.ErrUpload):
				code = "upload_failed"
				status = http.StatusBadGateway
			}

			logger.Error("CV export failed", map[string]interface{}{
				"request_id": requestID,
				"export_id":  exportID,
				"error":      err.Error(),
				"code":       code,
			})

			return c.JSON(status, models.ErrorResponse{
				Error:     code,
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		logger.Info("CV export completed", map[string]interface{}{
			"request_id": requestID,
			"export_id":  exportID,
			"url":        url,
		})

		return c.JSON(http.StatusOK, models.ExportResponse{
			Success:   true,
			URL:       url,
			Timestamp: time.Now(),
		})
	}
}
