package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultRetryDelay = 2 * time.Second
	defaultMaxRetries = 3
	defaultTimeout    = 10 * time.Minute
	markerPrefix      = ".voxbridge-downloaded-"
)

// Spec describes what to fetch from a Hugging Face repository.
type Spec struct {
	Repo     string
	Revision string
	Include  []string
	Token    string
}

// HuggingFaceDownloader downloads model files with the `hf` CLI.
type HuggingFaceDownloader struct {
	// Binary is the hf CLI executable, "hf" when empty.
	Binary string
	// RetryDelay is the pause between attempts, defaultRetryDelay when zero.
	RetryDelay time.Duration
}

// Download fetches the files matching spec into targetDir. It returns the
// directory holding the files and whether an earlier download was reused.
func (d *HuggingFaceDownloader) Download(ctx context.Context, spec Spec, targetDir string) (string, bool, error) {
	repo := strings.TrimSpace(spec.Repo)
	if repo == "" {
		return "", false, fmt.Errorf("invalid repo name: %q", spec.Repo)
	}

	markerPath := filepath.Join(targetDir, markerPrefix+markerName(spec))
	markerContent := d.markerContent(repo, spec.Revision, spec.Include)

	if _, err := os.Stat(markerPath); err == nil {
		if !d.shouldRedownload(markerPath, markerContent) {
			slog.Info("Model already downloaded and up-to-date (marker match), skipping", "repo", repo, "path", targetDir)
			return targetDir, true, nil
		}
	}

	if err := EnsureModelsDirectory(targetDir); err != nil {
		return "", false, err
	}

	args := []string{
		"download",
		repo,
		"--local-dir", targetDir,
	}
	if spec.Revision != "" {
		args = append(args, "--revision", spec.Revision)
	}
	for _, inc := range spec.Include {
		args = append(args, "--include", inc)
	}
	if spec.Token != "" {
		args = append(args, "--token", spec.Token)
	}

	binary := d.Binary
	if binary == "" {
		binary = "hf"
	}
	retryDelay := d.RetryDelay
	if retryDelay == 0 {
		retryDelay = defaultRetryDelay
	}

	var lastErr error
	for attempt := range defaultMaxRetries {
		if attempt > 0 {
			slog.Info("Retrying download", "repo", repo, "attempt", attempt+1, "last_error", lastErr)
			select {
			case <-ctx.Done():
				return "", false, fmt.Errorf("download canceled: %w", ctx.Err())
			case <-time.After(retryDelay):
			}
		} else {
			slog.Info("Downloading model", "repo", repo, "include", spec.Include, "path", targetDir)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
		output, err := exec.CommandContext(attemptCtx, binary, args...).CombinedOutput()
		cancel()

		if err == nil {
			if err := os.WriteFile(markerPath, []byte(markerContent), 0o644); err != nil {
				slog.Warn("Failed to write download marker", "path", markerPath, "error", err)
			}

			slog.Info("Model downloaded successfully", "repo", repo, "path", targetDir, "attempt", attempt+1)
			return targetDir, false, nil
		}

		lastErr = err
		slog.Error("Failed to download model", "repo", repo, "attempt", attempt+1, "error", err, "output", string(output))

		if errors.Is(err, exec.ErrNotFound) {
			return "", false, fmt.Errorf("hf CLI not available: %w", err)
		}
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			slog.Warn("Download timed out", "repo", repo, "attempt", attempt+1)
		}
		if ctx.Err() != nil {
			return "", false, fmt.Errorf("download canceled: %w", ctx.Err())
		}
	}

	return "", false, lastErr
}

// markerContent generates the expected content of the marker file.
// A mismatch means the requested revision or file set changed.
func (d *HuggingFaceDownloader) markerContent(repo, revision string, include []string) string {
	return fmt.Sprintf("repo: %s\nrevision: %s\ninclude: %s\n", repo, revision, strings.Join(include, ","))
}

// shouldRedownload compares the marker file against the expected content.
func (d *HuggingFaceDownloader) shouldRedownload(markerPath, expectedContent string) bool {
	content, err := os.ReadFile(markerPath)
	if err != nil {
		slog.Debug("Marker file missing or unreadable", "path", markerPath, "error", err)
		return true
	}

	if string(content) != expectedContent {
		slog.Info("Model spec changed (marker mismatch), will redownload",
			"marker_path", markerPath,
			"expected_snippet", expectedContent,
			"actual_snippet", string(content))
		return true
	}

	return false
}

func markerName(spec Spec) string {
	if len(spec.Include) == 0 {
		return strings.ReplaceAll(spec.Repo, "/", "_")
	}
	return strings.Join(spec.Include, "_")
}

// EnsureModelsDirectory creates the models directory if needed.
func EnsureModelsDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}
