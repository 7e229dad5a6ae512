// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/woozymasta/dragmap/internal/catalog"
	"github.com/woozymasta/dragmap/internal/geo"
	"github.com/woozymasta/dragmap/internal/preview"
	"github.com/woozymasta/dragmap/internal/processor"
	"github.com/woozymasta/dragmap/internal/session"

	"github.com/rs/zerolog/log"
)

const etagCap = 64

// HandleConfig serves the client-side settings.
func (s *ServerContext) HandleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(s.Config)
}

// HandleFeatures serves the whole catalog as a GeoJSON feature collection.
func (s *ServerContext) HandleFeatures(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_ = json.NewEncoder(w).Encode(s.Catalog.FeatureCollection())
}

// HandleFeature serves a single feature or its preview, optionally displaced.
//
//	/api/features/{id}
//	/api/features/{id}/preview.webp
//
// Both accept from=lat,lng&to=lat,lng[&snap=1] to apply a one-shot drag.
func (s *ServerContext) HandleFeature(w http.ResponseWriter, r *http.Request) {
	// Path: /api/features/{id}[/preview.webp]
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 3 || len(parts) > 4 {
		http.NotFound(w, r)
		return
	}

	f, err := s.Catalog.Get(parts[2])
	if errors.Is(err, catalog.ErrNotFound) {
		http.NotFound(w, r)
		return
	}

	g, displaced, err := s.displace(f.Geometry, r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(parts) == 3 {
		w.Header().Set("Content-Type", "application/geo+json")
		_ = json.NewEncoder(w).Encode(f.GeoJSONWith(g))
		return
	}

	if parts[3] != "preview.webp" {
		http.NotFound(w, r)
		return
	}

	if !displaced && s.serveFile(w, r, processor.PreviewPath(s.Config.PreviewDir, f.ID), "image/webp") {
		return
	}

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := preview.Encode(w, preview.Render(g, s.Config.PreviewSize)); err != nil {
		log.Error().Err(err).Str("feature", f.ID).Msg("Failed to encode preview")
	}
}

// HandleFavicon serves the site favicon.
func (s *ServerContext) HandleFavicon(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/favicon.ico" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/x-icon")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(s.Favicon)
}

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && strings.Contains(r.URL.Path, ".") {
		http.NotFound(w, r)
		return
	}

	etag := fmt.Sprintf(`"%x"`, len(s.IndexHTML))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// displace applies the drag described by the from/to query parameters.
func (s *ServerContext) displace(g geo.Geometry, q url.Values) (geo.Geometry, bool, error) {
	if q.Get("from") == "" && q.Get("to") == "" {
		return g, false, nil
	}

	from, err := geo.ParseLatLng(q.Get("from"))
	if err != nil {
		return g, false, fmt.Errorf("from: %w", err)
	}
	to, err := geo.ParseLatLng(q.Get("to"))
	if err != nil {
		return g, false, fmt.Errorf("to: %w", err)
	}

	opts := s.SessionOptions()
	if v := q.Get("snap"); v != "" {
		opts.SnapToLatitude, err = strconv.ParseBool(v)
		if err != nil {
			return g, false, fmt.Errorf("snap: %w", err)
		}
	}

	return session.Displace(g, from, to, opts), true, nil
}

// serveFile tries to serve a file from disk with ETag generation.
// It returns true if the file was found and served (or 304).
func (s *ServerContext) serveFile(w http.ResponseWriter, r *http.Request, path string, contentType string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, info.Size(), 16)
	buf = append(buf, '-')
	buf = strconv.AppendInt(buf, info.ModTime().UnixNano(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	// check If-None-Match (client sent ETag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	http.ServeFile(w, r, path)
	return true
}
