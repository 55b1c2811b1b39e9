package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"cvforge/internal/config"
	"cvforge/internal/llm"
	"cvforge/internal/logging"
	"cvforge/pkg/models"
	"cvforge/pkg/utils"
)

// ProvidersHandler handles GET /api/v1/providers, reporting the resolved
// active provider and the local fallback when enabled. API keys are never
// echoed back, only their presence.
func ProvidersHandler(cfg *config.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.GetGlobalLogger()
		c.Set("request_id", requestID)

		profile, err := llm.ResolveProfile(cfg, nil)
		if err != nil {
			logger.Error("Provider resolution failed", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return writeError(c, requestID, err)
		}

		response := models.ProvidersResponse{
			Active: providerInfo(profile),
		}

		if cfg.LLM.EnableLocalFallback {
			fallback := providerInfo(llm.LocalProfile(cfg))
			response.Fallback = &fallback
		}

		return c.JSON(http.StatusOK, response)
	}
}

func providerInfo(profile *llm.Profile) models.ProviderInfo {
	return models.ProviderInfo{
		Provider: string(profile.Provider),
		Model:    profile.Model,
		APIBase:  profile.APIBase,
		IsLocal:  profile.IsLocal,
		HasKey:   profile.APIKey != "",
	}
}
