package openai

import (
	"context"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
)

// Name is the provider identifier of the remote transcriber.
const Name = "openai"

// localWhisperSizes are whisper.cpp/faster-whisper model sizes that hosted
// endpoints do not know; they map to the hosted whisper model.
var localWhisperSizes = map[string]struct{}{
	"tiny": {}, "tiny.en": {},
	"base": {}, "base.en": {},
	"small": {}, "small.en": {},
	"medium": {}, "medium.en": {},
	"large": {}, "large-v1": {}, "large-v2": {}, "large-v3": {}, "large-v3-turbo": {}, "turbo": {},
}

// RemoteWhisperModel maps a configured whisper model to the name sent to the
// transcription endpoint.
func RemoteWhisperModel(name string) string {
	name = strings.TrimSpace(name)
	if _, ok := localWhisperSizes[name]; ok || name == "" {
		return goopenai.Whisper1
	}
	return name
}

// Transcriber calls the /audio/transcriptions endpoint.
type Transcriber struct {
	client *goopenai.Client
	model  string
}

// NewTranscriber creates a Transcriber for whisperModel.
func NewTranscriber(client *goopenai.Client, whisperModel string) *Transcriber {
	return &Transcriber{client: client, model: RemoteWhisperModel(whisperModel)}
}

// Name implements backend.Transcriber.
func (t *Transcriber) Name() string {
	return Name
}

// Model returns the model name sent to the endpoint.
func (t *Transcriber) Model() string {
	return t.model
}

// Transcribe uploads the file at path and returns the transcript text.
func (t *Transcriber) Transcribe(ctx context.Context, path string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    t.model,
		FilePath: path,
		Format:   goopenai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.Text), nil
}

// Close implements backend.Transcriber. The HTTP client holds nothing to release.
func (t *Transcriber) Close() error {
	return nil
}
