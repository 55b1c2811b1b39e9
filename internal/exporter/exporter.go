package exporter

import (
	"context"
	"errors"
	"fmt"

	"cvforge/internal/config"
	"cvforge/internal/latex"
	"cvforge/internal/logging"
	"cvforge/pkg/models"
	"cvforge/pkg/utils"
)

// Sentinel errors to allow precise mapping in handlers
var (
	ErrRender        = errors.New("render_error")
	ErrCompile       = errors.New("compile_error")
	ErrStorageConfig = errors.New("storage_configuration")
	ErrUpload        = errors.New("upload_failed")
)

// ExportResume renders an optimized resume into LaTeX, compiles it to PDF,
// and uploads the artifact to Spaces. Returns the public URL of the uploaded
// file.
func ExportResume(_ context.Context, cfg *config.Config, exportID string, resume *models.OptimizedResume, theme string) (string, error) {
	logger := logging.GetGlobalLogger()

	engine := latex.NewEngine()
	latexStr, err := engine.Render(resume, theme)
	if err != nil {
		logger.Error("Failed to render LaTeX for export", map[string]interface{}{
			"export_id": exportID,
			"theme":     theme,
			"error":     err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}

	pdfBytes, err := latex.Compile(latexStr, latex.CompilerOptions{
		RendererURL: cfg.PDF.RendererURL,
		TempDir:     cfg.PDF.TempDir,
	})
	if err != nil {
		logger.Error("Failed to compile LaTeX for export", map[string]interface{}{
			"export_id": exportID,
			"error":     err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrCompile, err)
	}

	spaces, err := utils.NewSpacesClient(cfg)
	if err != nil {
		logger.Error("Storage not configured for export", map[string]interface{}{
			"export_id": exportID,
			"error":     err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrStorageConfig, err)
	}

	url, err := spaces.UploadResumeArtifact(exportID, pdfBytes)
	if err != nil {
		logger.Error("Failed to upload resume artifact", map[string]interface{}{
			"export_id": exportID,
			"error":     err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	return url, nil
}
