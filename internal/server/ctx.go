package server

import (
	"net/http"

	"github.com/woozymasta/dragmap/assets"
	"github.com/woozymasta/dragmap/internal/catalog"
	"github.com/woozymasta/dragmap/internal/config"
	"github.com/woozymasta/dragmap/internal/session"

	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config    *config.Config
	Catalog   *catalog.Catalog
	IndexHTML []byte
	Favicon   []byte
}

// NewServerContext initializes the context for a loaded catalog.
func NewServerContext(cfg *config.Config, cat *catalog.Catalog) *ServerContext {
	log.Info().
		Int("features", cat.Len()).
		Bool("scaling", cfg.Drag.Scaling).
		Float64("max_latitude", cfg.Drag.MaxLatitude).
		Msg("Server context initialized")

	return &ServerContext{
		Config:    cfg,
		Catalog:   cat,
		IndexHTML: assets.Index,
		Favicon:   assets.Favicon,
	}
}

// SessionOptions returns the drag options every new session starts with.
func (s *ServerContext) SessionOptions() session.Options {
	return session.Options{
		Scaler:         s.Config.Drag.Scaler(),
		Scaling:        s.Config.Drag.Scaling,
		SnapToLatitude: s.Config.Drag.SnapToLatitude,
	}
}

// Routes registers all handlers and wraps them with request logging.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/config", s.HandleConfig)
	mux.HandleFunc("/api/features", s.HandleFeatures)
	mux.HandleFunc("/api/features/", s.HandleFeature)
	mux.HandleFunc("/ws", s.HandleSession)
	mux.HandleFunc("/favicon.ico", s.HandleFavicon)
	mux.HandleFunc("/", s.HandleIndex)

	return RequestLogger(mux)
}
