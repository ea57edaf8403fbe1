// Package openai adapts OpenAI-compatible endpoints (OpenAI, Ollama, LM Studio,
// whisper servers speaking the same API) to the backend interfaces.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/ekisa-team/voxbridge/internal/settings"
)

// Error definitions for the openai package.
var (
	ErrInvalidBaseURL = errors.New("invalid base URL")
	ErrUnreachable    = errors.New("endpoint unreachable")
	ErrUnauthorized   = errors.New("endpoint rejected the API key")
	ErrNoChoices      = errors.New("completion returned no choices")
)

// NewClient creates a go-openai client for the settings' endpoint.
func NewClient(s settings.Settings, httpClient *http.Client) *goopenai.Client {
	cfg := goopenai.DefaultConfig(s.APIKey)
	cfg.BaseURL = strings.TrimRight(s.BaseURL, "/")
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return goopenai.NewClientWithConfig(cfg)
}

// ValidateBaseURL checks that raw is an absolute http(s) URL.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q must use http or https", ErrInvalidBaseURL, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %q has no host", ErrInvalidBaseURL, raw)
	}
	return nil
}

// Probe checks that the endpoint answers. Any HTTP response counts as
// reachable, except that 401/403 fail when an API key was supplied.
func Probe(ctx context.Context, client *goopenai.Client, hasKey bool) error {
	_, err := client.ListModels(ctx)
	if err == nil {
		return nil
	}

	status, responded := httpStatus(err)
	if !responded {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	if hasKey && (status == http.StatusUnauthorized || status == http.StatusForbidden) {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	return nil
}

// httpStatus extracts the status code when err came from an HTTP response.
func httpStatus(err error) (int, bool) {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode, true
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode, true
	}

	return 0, false
}
