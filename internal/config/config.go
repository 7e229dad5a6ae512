// Package config handles configuration loading and shared data structures.
package config

import (
	"os"

	"github.com/woozymasta/dragmap/internal/geo"

	"gopkg.in/yaml.v3"
)

const (
	DefaultCatalog     = "maps/countries.geojson"
	DefaultPreviewDir  = "maps/previews"
	DefaultPreviewSize = 256
	DefaultTiles       = "https://{s}.basemaps.cartocdn.com/light_nolabels/{z}/{x}/{y}{r}.png"
	DefaultAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`
)

// Config represents the root configuration file structure.
type Config struct {
	Attribution string `yaml:"attribution,omitempty" json:"attribution,omitempty"`
	Tiles       string `yaml:"tiles,omitempty" json:"tiles"`

	// local GeoJSON feature collection served to clients
	Catalog string `yaml:"catalog,omitempty" json:"-"`
	// remote feed the loader downloads into Catalog
	CatalogURL string `yaml:"catalog_url,omitempty" json:"-"`

	PreviewDir  string `yaml:"preview_dir,omitempty" json:"-"`
	PreviewSize int    `yaml:"preview_size,omitempty" json:"-"`

	Drag Drag `yaml:"drag" json:"drag"`
}

// Drag holds the behaviour of dragged features.
type Drag struct {
	// latitude clamp used for the scale factor, degrees
	MaxLatitude float64 `yaml:"max_latitude,omitempty" json:"max_latitude"`

	// stretch longitudes with latitude (Mercator-like foreshortening)
	Scaling        bool `yaml:"scaling" json:"scaling"`
	SnapToLatitude bool `yaml:"snap_to_latitude,omitempty" json:"snap_to_latitude"`
}

// Scaler returns the scale calculator for the configured clamp.
func (d Drag) Scaler() geo.Scaler {
	return geo.Scaler{MaxLatitude: d.MaxLatitude}
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.Normalize()
	return &cfg, nil
}

// Normalize fills unset fields with defaults.
func (c *Config) Normalize() {
	if c.Attribution == "" {
		c.Attribution = DefaultAttribution
	}
	if c.Tiles == "" {
		c.Tiles = DefaultTiles
	}
	if c.Catalog == "" {
		c.Catalog = DefaultCatalog
	}
	if c.PreviewDir == "" {
		c.PreviewDir = DefaultPreviewDir
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = DefaultPreviewSize
	}
	if c.Drag.MaxLatitude <= 0 || c.Drag.MaxLatitude > 90 {
		c.Drag.MaxLatitude = geo.DefaultMaxLatitude
	}
}
