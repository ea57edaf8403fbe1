package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/voxbridge/internal/service"
)

type (
	CleanRequestDTO struct {
		Text         string  `json:"text" doc:"Raw transcript"`
		SystemPrompt *string `json:"system_prompt,omitempty" nullable:"true" doc:"Overrides the default cleanup prompt"`
	}

	CleanResponseDTO struct {
		Success bool   `json:"success"`
		Text    string `json:"text"`
	}

	SystemPromptResponseDTO struct {
		DefaultPrompt string `json:"default_prompt"`
	}
)

type (
	CleanInput struct {
		Body CleanRequestDTO
	}

	CleanOutput struct {
		Body CleanResponseDTO
	}

	SystemPromptOutput struct {
		Body SystemPromptResponseDTO
	}
)

// LLMHandler handles HTTP requests for LLM cleanup.
type LLMHandler struct {
	service *service.LLM
}

// NewLLMHandler creates a new LLMHandler instance.
func NewLLMHandler(api huma.API, service *service.LLM) *LLMHandler {
	h := &LLMHandler{service: service}

	huma.Register(api, huma.Operation{
		OperationID:   "clean",
		Method:        http.MethodPost,
		Path:          "/api/clean",
		Summary:       "Clean up a raw transcript",
		Tags:          []string{"llm"},
		DefaultStatus: http.StatusOK,
	}, h.handleClean)

	huma.Register(api, huma.Operation{
		OperationID:   "get-system-prompt",
		Method:        http.MethodGet,
		Path:          "/api/system-prompt",
		Summary:       "Return the default cleanup prompt",
		Tags:          []string{"llm"},
		DefaultStatus: http.StatusOK,
	}, h.handleSystemPrompt)

	return h
}

// handleClean handles the clean operation.
func (h *LLMHandler) handleClean(ctx context.Context, input *CleanInput) (*CleanOutput, error) {
	text, err := h.service.Clean(context.WithoutCancel(ctx), input.Body.Text, input.Body.SystemPrompt)
	if err != nil {
		return nil, serviceError("Cleaning failed", err)
	}

	return &CleanOutput{
		Body: CleanResponseDTO{
			Success: true,
			Text:    text,
		},
	}, nil
}

func (h *LLMHandler) handleSystemPrompt(_ context.Context, _ *struct{}) (*SystemPromptOutput, error) {
	prompt, err := h.service.DefaultPrompt()
	if err != nil {
		return nil, serviceError("Failed to read system prompt", err)
	}

	return &SystemPromptOutput{
		Body: SystemPromptResponseDTO{DefaultPrompt: prompt},
	}, nil
}
