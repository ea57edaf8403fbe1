package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/voxbridge/internal/service"
	"github.com/ekisa-team/voxbridge/internal/settings"
)

const settingsUpdatedMessage = "Settings updated and service restarted"

type (
	SettingsDTO struct {
		APIKey       string `json:"apiKey"       doc:"API key for the LLM endpoint, may be empty"`
		BaseURL      string `json:"baseUrl"      doc:"Base URL of the OpenAI-compatible endpoint"`
		Model        string `json:"model"        doc:"Chat model used for cleanup"`
		WhisperModel string `json:"whisperModel" doc:"Whisper model used for transcription"`
	}

	UpdateSettingsResponseDTO struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
)

type (
	GetSettingsOutput struct {
		Body SettingsDTO
	}

	UpdateSettingsInput struct {
		Body SettingsDTO
	}

	UpdateSettingsOutput struct {
		Body UpdateSettingsResponseDTO
	}
)

// SettingsHandler handles HTTP requests for runtime settings.
type SettingsHandler struct {
	registry *service.Registry
	source   *settings.Source
}

// NewSettingsHandler creates a new SettingsHandler instance.
func NewSettingsHandler(api huma.API, registry *service.Registry, source *settings.Source) *SettingsHandler {
	h := &SettingsHandler{registry: registry, source: source}

	huma.Register(api, huma.Operation{
		OperationID:   "get-settings",
		Method:        http.MethodGet,
		Path:          "/api/settings",
		Summary:       "Read the settings from the settings file or the environment",
		Tags:          []string{"settings"},
		DefaultStatus: http.StatusOK,
	}, h.handleGet)

	huma.Register(api, huma.Operation{
		OperationID:   "update-settings",
		Method:        http.MethodPost,
		Path:          "/api/settings",
		Summary:       "Rebuild the engine with new settings",
		Tags:          []string{"settings"},
		DefaultStatus: http.StatusOK,
	}, h.handleUpdate)

	return h
}

func (h *SettingsHandler) handleGet(_ context.Context, _ *struct{}) (*GetSettingsOutput, error) {
	s := h.source.Resolve()

	return &GetSettingsOutput{
		Body: SettingsDTO{
			APIKey:       s.APIKey,
			BaseURL:      s.BaseURL,
			Model:        s.Model,
			WhisperModel: s.WhisperModel,
		},
	}, nil
}

// handleUpdate builds an engine for the submitted settings and installs it.
// The settings file is owned by the desktop app and is not written here.
func (h *SettingsHandler) handleUpdate(ctx context.Context, input *UpdateSettingsInput) (*UpdateSettingsOutput, error) {
	s := settings.Settings{
		APIKey:       input.Body.APIKey,
		BaseURL:      input.Body.BaseURL,
		Model:        input.Body.Model,
		WhisperModel: input.Body.WhisperModel,
	}

	if err := h.registry.Replace(context.WithoutCancel(ctx), s); err != nil {
		return nil, serviceError("Failed to update settings", err)
	}

	return &UpdateSettingsOutput{
		Body: UpdateSettingsResponseDTO{
			Success: true,
			Message: settingsUpdatedMessage,
		},
	}, nil
}
