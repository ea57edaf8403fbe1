package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/voxbridge/internal/settings"
)

func newTestClient(t *testing.T, handler http.Handler, apiKey string) *Cleaner {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewCleaner(NewClient(settings.Settings{APIKey: apiKey, BaseURL: srv.URL + "/v1/"}, srv.Client()), "gpt-4o")
}

func TestValidateBaseURL(t *testing.T) {
	assert.NoError(t, ValidateBaseURL("https://api.openai.com/v1"))
	assert.NoError(t, ValidateBaseURL("http://localhost:11434/v1"))

	for _, raw := range []string{"", "localhost:11434", "ftp://example.com", "http://", "::not a url"} {
		assert.ErrorIs(t, ValidateBaseURL(raw), ErrInvalidBaseURL, raw)
	}
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		hasKey  bool
		wantErr error
	}{
		{"models listed", http.StatusOK, `{"object":"list","data":[]}`, true, nil},
		{"unauthorized without key", http.StatusUnauthorized, `{"error":{"message":"no key","type":"invalid_request_error"}}`, false, nil},
		{"unauthorized with key", http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`, true, ErrUnauthorized},
		{"forbidden with key", http.StatusForbidden, `forbidden`, true, ErrUnauthorized},
		{"not found is reachable", http.StatusNotFound, `<html>404</html>`, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/models", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			client := NewClient(settings.Settings{APIKey: "sk-test", BaseURL: srv.URL + "/v1"}, srv.Client())
			err := Probe(context.Background(), client, tt.hasKey)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestProbe_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(settings.Settings{BaseURL: url + "/v1"}, nil)
	err := Probe(context.Background(), client, false)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestCleaner_Cleanup(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Hello, world.  "},"finish_reason":"stop"}]}`)
	}), "sk-test")

	out, err := c.Cleanup(context.Background(), "um hello world", "be tidy")
	require.NoError(t, err)
	assert.Equal(t, "Hello, world.", out)

	assert.Equal(t, "gpt-4o", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "be tidy", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "um hello world", got.Messages[1].Content)
}

func TestCleaner_NoChoices(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","choices":[]}`)
	}), "")

	_, err := c.Cleanup(context.Background(), "", "prompt")
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestCleaner_APIError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"model overloaded","type":"server_error"}}`)
	}), "")

	_, err := c.Cleanup(context.Background(), "text", "prompt")
	assert.ErrorContains(t, err, "model overloaded")
}

func TestRemoteWhisperModel(t *testing.T) {
	assert.Equal(t, "whisper-1", RemoteWhisperModel("base"))
	assert.Equal(t, "whisper-1", RemoteWhisperModel("large-v3"))
	assert.Equal(t, "whisper-1", RemoteWhisperModel(""))
	assert.Equal(t, "Systran/faster-whisper-small", RemoteWhisperModel("Systran/faster-whisper-small"))
	assert.Equal(t, "gpt-4o-transcribe", RemoteWhisperModel("gpt-4o-transcribe"))
}

func TestTranscriber_Transcribe(t *testing.T) {
	audio := filepath.Join(t.TempDir(), "clip.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("ID3 fake mp3"), 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "whisper-1", r.FormValue("model"))

		f, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		assert.Equal(t, "clip.mp3", header.Filename)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "ID3 fake mp3", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":" hello there "}`)
	}))
	defer srv.Close()

	tr := NewTranscriber(NewClient(settings.Settings{BaseURL: srv.URL + "/v1"}, srv.Client()), "base")
	assert.Equal(t, "openai", tr.Name())
	assert.Equal(t, "whisper-1", tr.Model())

	text, err := tr.Transcribe(context.Background(), audio)
	require.NoError(t, err)
	assert.Equal(t, "hello there", text)
	assert.NoError(t, tr.Close())
}

func TestTranscriber_MissingFile(t *testing.T) {
	tr := NewTranscriber(NewClient(settings.Settings{BaseURL: "http://127.0.0.1:1/v1"}, nil), "whisper-1")

	_, err := tr.Transcribe(context.Background(), filepath.Join(t.TempDir(), "gone.webm"))
	assert.Error(t, err)
}
