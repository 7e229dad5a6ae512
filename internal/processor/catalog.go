// Package processor handles the downloading and preprocessing of map data.
package processor

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/woozymasta/dragmap/internal/catalog"
	"github.com/woozymasta/dragmap/internal/config"

	"github.com/rs/zerolog/log"
)

// ProcessCatalog downloads the country feed and stores it normalised at cfg.Catalog.
// An existing file is kept unless force is set.
func ProcessCatalog(client *http.Client, cfg *config.Config, force bool) error {
	if _, err := os.Stat(cfg.Catalog); err == nil && !force {
		log.Debug().Str("path", cfg.Catalog).Msg("Catalog file exists, skipping")
		return nil
	}

	if cfg.CatalogURL == "" {
		return fmt.Errorf("no catalog_url configured for %s", cfg.Catalog)
	}

	log.Info().
		Str("source", cfg.CatalogURL).
		Msg("Downloading catalog")

	cat, err := fetchCatalog(client, cfg.CatalogURL)
	if err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}

	log.Info().
		Int("features", cat.Len()).
		Str("path", cfg.Catalog).
		Msg("Catalog downloaded")

	return saveGeoJSON(filepath.Dir(cfg.Catalog), cfg.Catalog, cat)
}

// fetchCatalog downloads and parses a GeoJSON feature collection.
func fetchCatalog(client *http.Client, url string) (*catalog.Catalog, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	// Explicitly ignore close error as it's a read-only operation
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return catalog.Parse(data)
}

// saveGeoJSON marshals the normalised catalog and writes it to disk.
func saveGeoJSON(dir, path string, cat *catalog.Catalog) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	return json.NewEncoder(f).Encode(cat.FeatureCollection())
}
