package xfs

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultAudioSuffix is used when an upload carries no usable extension.
const DefaultAudioSuffix = ".webm"

const tempPattern = "voxbridge-*"

var audioSuffixes = map[string]struct{}{
	".3gp":  {},
	".aac":  {},
	".aiff": {},
	".flac": {},
	".m4a":  {},
	".mkv":  {},
	".mov":  {},
	".mp3":  {},
	".mp4":  {},
	".mpeg": {},
	".mpga": {},
	".oga":  {},
	".ogg":  {},
	".opus": {},
	".wav":  {},
	".webm": {},
	".wma":  {},
}

// SuffixFor returns the temp file suffix for an uploaded filename. Missing or
// unrecognized extensions yield DefaultAudioSuffix.
func SuffixFor(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if _, ok := audioSuffixes[ext]; ok {
		return ext
	}
	return DefaultAudioSuffix
}

// WithTempFile copies r into a new, uniquely named file ending in suffix and
// calls fn with its path. The file is closed before fn runs and removed once
// fn returns or panics. A failed removal is logged and does not replace fn's
// result.
func WithTempFile[T any](r io.Reader, suffix string, fn func(path string) (T, error)) (T, error) {
	var zero T

	f, err := os.CreateTemp("", tempPattern+suffix)
	if err != nil {
		return zero, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()

	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove temp file", "path", path, "error", err)
		}
	}()

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return zero, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return zero, fmt.Errorf("close temp file: %w", err)
	}

	return fn(path)
}
