// Package catalog holds the read-only set of pickable features loaded at startup.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/woozymasta/dragmap/internal/geo"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// DefaultName labels features that carry neither a name nor an admin property.
const DefaultName = "Selected Country"

// ErrNotFound is returned when no feature has the requested id.
var ErrNotFound = errors.New("feature not found")

// Feature is a catalog entry.
type Feature struct {
	Properties geojson.Properties
	ID         string
	Name       string
	Geometry   geo.Geometry
}

// Catalog is an immutable, ordered collection of features indexed by id.
type Catalog struct {
	byID     map[string]int
	features []Feature
}

// Load reads and parses a GeoJSON FeatureCollection from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes a GeoJSON FeatureCollection. Features whose geometry is not a
// Polygon or MultiPolygon are skipped.
func Parse(data []byte) (*Catalog, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}

	c := &Catalog{
		byID:     make(map[string]int, len(fc.Features)),
		features: make([]Feature, 0, len(fc.Features)),
	}

	for i, f := range fc.Features {
		g, err := geo.FromOrb(f.Geometry)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Skipping feature")
			continue
		}

		id := c.uniqueID(featureID(f, i))
		c.byID[id] = len(c.features)
		c.features = append(c.features, Feature{
			Properties: f.Properties.Clone(),
			ID:         id,
			Name:       featureName(f.Properties),
			Geometry:   g,
		})
	}

	log.Debug().
		Int("features", len(c.features)).
		Int("skipped", len(fc.Features)-len(c.features)).
		Msg("Catalog parsed")

	return c, nil
}

// Get returns the feature with the given id.
func (c *Catalog) Get(id string) (Feature, error) {
	i, ok := c.byID[id]
	if !ok {
		return Feature{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return c.features[i], nil
}

// Features returns all features in source order. The slice must not be modified.
func (c *Catalog) Features() []Feature { return c.features }

// Len returns the number of features.
func (c *Catalog) Len() int { return len(c.features) }

// FeatureCollection renders the catalog back to GeoJSON with normalised ids and names.
func (c *Catalog) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range c.features {
		fc.Append(f.GeoJSON())
	}
	return fc
}

// GeoJSON returns the feature as a GeoJSON feature.
func (f Feature) GeoJSON() *geojson.Feature {
	return f.GeoJSONWith(f.Geometry)
}

// GeoJSONWith returns the feature with its geometry replaced by g.
func (f Feature) GeoJSONWith(g geo.Geometry) *geojson.Feature {
	out := geojson.NewFeature(g.Orb())
	out.ID = f.ID
	out.Properties = f.Properties.Clone()
	if out.Properties == nil {
		out.Properties = geojson.Properties{}
	}
	out.Properties["name"] = f.Name
	return out
}

func (c *Catalog) uniqueID(id string) string {
	if _, taken := c.byID[id]; !taken {
		return id
	}
	for n := 2; ; n++ {
		candidate := id + "-" + strconv.Itoa(n)
		if _, taken := c.byID[candidate]; !taken {
			return candidate
		}
	}
}

func featureID(f *geojson.Feature, index int) string {
	switch v := f.ID.(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	for _, key := range []string{"iso_a3", "id"} {
		if s := stringProperty(f.Properties, key); s != "" && s != "-99" {
			return s
		}
	}

	return "f" + strconv.Itoa(index)
}

func featureName(p geojson.Properties) string {
	for _, key := range []string{"name", "admin"} {
		if s := stringProperty(p, key); s != "" {
			return s
		}
	}
	return DefaultName
}

func stringProperty(p geojson.Properties, key string) string {
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
