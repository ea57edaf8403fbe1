package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ekisa-team/voxbridge/internal/backend"
	"github.com/ekisa-team/voxbridge/internal/mapsafe"
)

// BackendName is the provider identifier of the local whisper.cpp transcriber.
const BackendName = string(backend.ProviderWhisperCPP)

// Backend implements backend.Transcriber on top of a whisper.cpp server
// process owned by this instance.
type Backend struct {
	serverManager *backend.ServerManager
	client        *http.Client
	params        map[string]any
	modelPath     string
	port          int
}

// Options configures a Backend.
type Options struct {
	BinPath       string
	ModelPath     string
	ServerManager *backend.ServerManager
	Parameters    map[string]any
	ReadyTimeout  time.Duration
	// Port pins the server port; zero picks a free loopback port so an old and
	// a new backend can run side by side while settings are swapped.
	Port int
}

// TranscriptionResponse represents a response from the whisper-server API.
type TranscriptionResponse struct {
	Task     string              `json:"task,omitempty"`
	Language string              `json:"language,omitempty"`
	Duration float64             `json:"duration,omitempty"`
	Text     string              `json:"text,omitempty"`
	Segments []TranscriptSegment `json:"segments,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// TranscriptSegment represents a single segment in the transcription.
type TranscriptSegment struct {
	ID    int     `json:"id"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// New starts a whisper.cpp server for the model and waits until it is ready.
// Loading the model is the slow part of constructing an engine.
func New(ctx context.Context, opts Options) (*Backend, error) {
	if opts.ServerManager == nil {
		return nil, fmt.Errorf("whisper: server manager is required")
	}
	if _, err := os.Stat(opts.ModelPath); err != nil {
		return nil, fmt.Errorf("whisper: model file: %w", err)
	}

	port := opts.Port
	if port == 0 {
		p, err := backend.FreePort()
		if err != nil {
			return nil, err
		}
		port = p
	}

	b := &Backend{
		serverManager: opts.ServerManager,
		client: &http.Client{
			Timeout: 5 * time.Minute, // Transcription can take longer
		},
		params:    opts.Parameters,
		modelPath: opts.ModelPath,
		port:      port,
	}

	if err := opts.ServerManager.StartServer(ctx, backend.ServerConfig{
		Name:         BackendName,
		BinPath:      opts.BinPath,
		Args:         b.serverArgs(),
		Port:         port,
		HealthPath:   "/", // whisper-server has no dedicated health endpoint
		ReadyTimeout: opts.ReadyTimeout,
	}); err != nil {
		return nil, fmt.Errorf("whisper: %w", err)
	}

	return b, nil
}

// Name implements backend.Transcriber.
func (b *Backend) Name() string {
	return BackendName
}

// Port returns the port of the server process.
func (b *Backend) Port() int {
	return b.port
}

// Close implements backend.Transcriber.
func (b *Backend) Close() error {
	return b.serverManager.StopServer(BackendName, b.port)
}

// Transcribe implements backend.Transcriber.
func (b *Backend) Transcribe(ctx context.Context, path string) (string, error) {
	audio, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer audio.Close()

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("failed to write audio data: %w", err)
	}

	if err := b.writeParams(writer); err != nil {
		return "", fmt.Errorf("failed to add parameters: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx,
		http.MethodPost,
		fmt.Sprintf("http://127.0.0.1:%d/inference", b.port),
		&requestBody,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("failed to read response body: %w", err)
		}
		return "", fmt.Errorf("request failed with status code %d: %s", resp.StatusCode, body)
	}

	var transcription TranscriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&transcription); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if transcription.Error != "" {
		return "", fmt.Errorf("whisper-server: %s", transcription.Error)
	}

	return strings.TrimSpace(transcription.Text), nil
}

// serverArgs builds the whisper-server command line.
func (b *Backend) serverArgs() []string {
	args := []string{
		"--model", b.modelPath,
		"--port", fmt.Sprintf("%d", b.port),
		"--host", "127.0.0.1",
	}

	// ffmpeg conversion lets the server accept webm/mp3 uploads.
	if mapsafe.Get(b.params, "convert", true) {
		args = append(args, "--convert")
	}
	if threads := mapsafe.Get(b.params, "threads", 0); threads > 0 {
		args = append(args, "--threads", fmt.Sprintf("%d", threads))
	}

	return args
}

// writeParams adds the decoding parameters to the multipart form.
func (b *Backend) writeParams(w *multipart.Writer) error {
	params := map[string]string{
		"response_format": "json",
		"temperature":     fmt.Sprintf("%.2f", mapsafe.Get(b.params, "temperature", 0.0)),
		"translate":       fmt.Sprintf("%t", mapsafe.Get(b.params, "translate", false)),
		"no_timestamps":   "true",
	}

	if language := mapsafe.Get(b.params, "language", ""); language != "" {
		params["language"] = language
	}
	if beamSize := mapsafe.Get(b.params, "beam_size", -1); beamSize >= 0 {
		params["beam_size"] = fmt.Sprintf("%d", beamSize)
	}
	if bestOf := mapsafe.Get(b.params, "best_of", 2); bestOf > 0 {
		params["best_of"] = fmt.Sprintf("%d", bestOf)
	}
	if prompt := mapsafe.Get(b.params, "prompt", ""); prompt != "" {
		params["prompt"] = prompt
	}

	for key, value := range params {
		if err := w.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	return nil
}
