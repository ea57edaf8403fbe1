package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/voxbridge/internal/service"
)

// DefaultMaxUploadBytes bounds audio uploads when no limit is configured.
const DefaultMaxUploadBytes int64 = 100 << 20

type (
	TranscribeForm struct {
		Audio huma.FormFile `form:"audio" required:"true" doc:"Recorded audio"`
	}

	TranscribeResponseDTO struct {
		Success bool   `json:"success"`
		Text    string `json:"text"`
	}
)

type (
	TranscribeInput struct {
		RawBody huma.MultipartFormFiles[TranscribeForm]
	}

	TranscribeOutput struct {
		Body TranscribeResponseDTO
	}
)

// STTHandler handles HTTP requests for STT.
type STTHandler struct {
	service *service.STT
}

// NewSTTHandler creates a new STTHandler instance. maxUploadBytes limits the
// request body; values <= 0 select DefaultMaxUploadBytes.
func NewSTTHandler(api huma.API, service *service.STT, maxUploadBytes int64) *STTHandler {
	h := &STTHandler{service: service}

	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}

	huma.Register(api, huma.Operation{
		OperationID:   "transcribe",
		Method:        http.MethodPost,
		Path:          "/api/transcribe",
		Summary:       "Transcribe uploaded audio",
		Tags:          []string{"stt"},
		DefaultStatus: http.StatusOK,
		MaxBodyBytes:  maxUploadBytes,
	}, h.handleTranscribe)

	return h
}

// handleTranscribe handles the transcribe operation. The engine call is
// detached from client cancellation so a disconnect cannot interrupt it.
func (h *STTHandler) handleTranscribe(ctx context.Context, input *TranscribeInput) (*TranscribeOutput, error) {
	form := input.RawBody.Data()
	if form.Audio.IsSet {
		defer form.Audio.Close()
	}

	text, err := h.service.Transcribe(context.WithoutCancel(ctx), form.Audio, form.Audio.Filename)
	if err != nil {
		return nil, serviceError("Transcription failed", err)
	}

	return &TranscribeOutput{
		Body: TranscribeResponseDTO{
			Success: true,
			Text:    text,
		},
	}, nil
}
