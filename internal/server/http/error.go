package http

import (
	"errors"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ekisa-team/voxbridge/internal/service"
)

// serviceError translates a service error into a problem response whose
// detail starts with prefix.
func serviceError(prefix string, err error) error {
	switch {
	case errors.Is(err, service.ErrNotReady), errors.Is(err, service.ErrClosed):
		return huma.Error503ServiceUnavailable("Service not ready")
	case errors.Is(err, service.ErrSuperseded):
		slog.Warn(prefix, "error", err)
		return huma.Error409Conflict(prefix + ": " + err.Error())
	default:
		slog.Error(prefix, "error", err)
		return huma.Error500InternalServerError(prefix + ": " + err.Error())
	}
}
