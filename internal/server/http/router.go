// Package http exposes the voxbridge API over HTTP using huma.
package http

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/rs/cors"

	"github.com/ekisa-team/voxbridge/internal/config"
	"github.com/ekisa-team/voxbridge/internal/service"
	"github.com/ekisa-team/voxbridge/internal/settings"
)

// APIVersion is reported in the OpenAPI document.
const APIVersion = "1.0.0"

// Router wires the handlers onto a huma API.
type Router struct {
	api     huma.API
	handler http.Handler
}

// NewRouter registers every operation and wraps the mux with CORS and request
// logging.
func NewRouter(cfg config.ServerConfig, registry *service.Registry, source *settings.Source) *Router {
	mux := http.NewServeMux()
	api := humago.New(mux, huma.DefaultConfig("voxbridge", APIVersion))

	Register(api, cfg, registry, source)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodHead,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
	})

	return &Router{
		api:     api,
		handler: requestLogger(c.Handler(mux)),
	}
}

// Register adds all operations to api.
func Register(api huma.API, cfg config.ServerConfig, registry *service.Registry, source *settings.Source) {
	NewStatusHandler(api, registry, source)
	NewSettingsHandler(api, registry, source)
	NewSTTHandler(api, service.NewSTT(registry), cfg.MaxUploadBytes)
	NewLLMHandler(api, service.NewLLM(registry))
}

// API returns the underlying huma API.
func (r *Router) API() huma.API {
	return r.api
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}
