package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/voxbridge/internal/service"
	"github.com/ekisa-team/voxbridge/internal/settings"
)

const (
	StatusReady        = "ready"
	StatusInitializing = "initializing"
)

type (
	StatusResponseDTO struct {
		Status       string `json:"status" enum:"ready,initializing"`
		WhisperModel string `json:"whisper_model"`
		LLMModel     string `json:"llm_model"`
		LLMBaseURL   string `json:"llm_base_url"`
	}

	HealthResponseDTO struct {
		Status string `json:"status"`
	}
)

type (
	StatusOutput struct {
		Body StatusResponseDTO
	}

	HealthOutput struct {
		Body HealthResponseDTO
	}
)

// StatusHandler reports readiness and the active model identifiers.
type StatusHandler struct {
	registry *service.Registry
	source   *settings.Source
}

// NewStatusHandler creates a new StatusHandler instance.
func NewStatusHandler(api huma.API, registry *service.Registry, source *settings.Source) *StatusHandler {
	h := &StatusHandler{registry: registry, source: source}

	huma.Register(api, huma.Operation{
		OperationID:   "get-status",
		Method:        http.MethodGet,
		Path:          "/api/status",
		Summary:       "Report service readiness and active models",
		Tags:          []string{"status"},
		DefaultStatus: http.StatusOK,
	}, h.handleStatus)

	huma.Register(api, huma.Operation{
		OperationID:   "healthz",
		Method:        http.MethodGet,
		Path:          "/healthz",
		Summary:       "Liveness probe",
		Tags:          []string{"status"},
		DefaultStatus: http.StatusOK,
	}, h.handleHealth)

	return h
}

// handleStatus reports the models of the live engine when one is installed,
// and the currently resolvable settings otherwise.
func (h *StatusHandler) handleStatus(_ context.Context, _ *struct{}) (*StatusOutput, error) {
	status := StatusInitializing
	var s settings.Settings

	if current := h.registry.Current(); current != nil {
		status = StatusReady
		s = current.Settings()
	} else {
		s = h.source.Resolve()
	}

	return &StatusOutput{
		Body: StatusResponseDTO{
			Status:       status,
			WhisperModel: s.WhisperModel,
			LLMModel:     s.Model,
			LLMBaseURL:   s.BaseURL,
		},
	}, nil
}

func (h *StatusHandler) handleHealth(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	return &HealthOutput{Body: HealthResponseDTO{Status: "ok"}}, nil
}
