package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/dragmap/internal/geo"
	"github.com/woozymasta/dragmap/internal/session"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "FRA", "properties": {"name": "France"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,40],[0,50],[8,50],[8,40],[0,40]]]}},
    {"type": "Feature", "properties": {"admin": "Japan", "iso_a3": "JPN"},
     "geometry": {"type": "MultiPolygon", "coordinates": [
       [[[130,30],[130,35],[135,35],[130,30]]],
       [[[140,38],[140,42],[145,42],[140,38]]]
     ]}},
    {"type": "Feature", "properties": {"name": "Nowhere"},
     "geometry": {"type": "Point", "coordinates": [1,2]}},
    {"type": "Feature", "id": 7, "properties": {},
     "geometry": {"type": "Polygon", "coordinates": [[[1,1],[1,2],[2,2],[1,1]]]}},
    {"type": "Feature", "properties": {"name": " Kosovo ", "iso_a3": "-99"},
     "geometry": {"type": "Polygon", "coordinates": [[[20,42],[20,43],[21,43],[20,42]]]}},
    {"type": "Feature", "id": "FRA", "properties": {"name": "France again"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,40],[0,41],[1,41],[0,40]]]}}
  ]
}`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	require.Equal(t, 5, c.Len())

	ids := make([]string, 0, c.Len())
	for _, f := range c.Features() {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"FRA", "JPN", "7", "f4", "FRA-2"}, ids)
}

func TestParseNames(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	tests := map[string]string{
		"FRA":   "France",
		"JPN":   "Japan",
		"7":     DefaultName,
		"f4":    "Kosovo",
		"FRA-2": "France again",
	}

	for id, want := range tests {
		f, err := c.Get(id)
		require.NoError(t, err, id)
		assert.Equal(t, want, f.Name, id)
	}
}

func TestGeometryKinds(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	fra, err := c.Get("FRA")
	require.NoError(t, err)
	assert.Equal(t, geo.KindPolygon, fra.Geometry.Kind)
	assert.True(t, fra.Geometry.Contains(geo.LatLng{Lat: 45, Lng: 4}))

	jpn, err := c.Get("JPN")
	require.NoError(t, err)
	assert.Equal(t, geo.KindMultiPolygon, jpn.Geometry.Kind)
	assert.Equal(t, 2, jpn.Geometry.Coords.Len())
}

type nopRenderer struct{}

func (nopRenderer) ShowFloating(session.Feature) {}
func (nopRenderer) UpdateFloating(geo.Geometry)  {}
func (nopRenderer) RemoveFloating()              {}
func (nopRenderer) RestoreOriginal(string)       {}
func (nopRenderer) Suspend()                     {}
func (nopRenderer) Resume()                      {}

func TestEmptyPolygonsArePickable(t *testing.T) {
	c, err := Parse([]byte(`{"type":"FeatureCollection","features":[
	 {"type":"Feature","id":"e","geometry":{"type":"Polygon","coordinates":[]}},
	 {"type":"Feature","id":"m","geometry":{"type":"MultiPolygon","coordinates":[
	   [[[0,0],[0,10],[10,10],[10,0],[0,0]]],
	   []
	 ]}}
	]}`))
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	tests := map[string]session.State{
		"e": session.Selected,
		"m": session.Dragging,
	}

	for id, want := range tests {
		f, err := c.Get(id)
		require.NoError(t, err, id)

		ctrl := session.New(nopRenderer{}, nopRenderer{}, session.Options{})
		ctrl.Pick(session.Feature{ID: f.ID, Name: f.Name, Geometry: f.Geometry})
		assert.NotPanics(t, func() { ctrl.PointerDown(geo.LatLng{Lat: 5, Lng: 5}) }, id)
		assert.Equal(t, want, ctrl.State(), id)
		ctrl.Reset()
	}
}

func TestGetNotFound(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	_, err = c.Get("XXX")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte(`{"type": "FeatureCollection", "features": [`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countries.geojson")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.geojson"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFeatureCollection(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	fc := c.FeatureCollection()
	require.Len(t, fc.Features, 5)

	data, err := json.Marshal(fc)
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	for i, f := range again.Features() {
		assert.Equal(t, c.Features()[i].ID, f.ID)
		assert.Equal(t, c.Features()[i].Name, f.Name)
	}
}

func TestGeoJSONWith(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	fra, err := c.Get("FRA")
	require.NoError(t, err)

	out := fra.GeoJSONWith(fra.Geometry.Shift(1, 1))
	assert.Equal(t, "FRA", out.ID)
	assert.Equal(t, "France", out.Properties["name"])

	poly := out.Geometry.(orb.Polygon)
	assert.Equal(t, orb.Point{1, 41}, poly[0][0])

	// source feature untouched
	assert.Equal(t, orb.Point{0, 40}, fra.Geometry.Orb().(orb.Polygon)[0][0])
}
