package geo

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ErrUnsupportedGeometry is returned for geometries other than Polygon and MultiPolygon.
var ErrUnsupportedGeometry = errors.New("unsupported geometry type")

// Kind is the GeoJSON type tag of a Geometry.
type Kind string

const (
	KindPolygon      Kind = "Polygon"
	KindMultiPolygon Kind = "MultiPolygon"
)

// Geometry is a tagged coordinate tree in longitude/latitude space.
// The transforms never look at Kind, only at the tree depth.
type Geometry struct {
	Kind   Kind
	Coords Coords
}

// Shift returns the geometry translated by the given deltas.
func (g Geometry) Shift(dLat, dLng float64) Geometry {
	return Geometry{Kind: g.Kind, Coords: Shift(g.Coords, dLat, dLng)}
}

// ShiftScaled returns the geometry translated and horizontally scaled around anchorLng.
func (g Geometry) ShiftScaled(dLat, dLng, anchorLng, scale float64) Geometry {
	return Geometry{Kind: g.Kind, Coords: ShiftScaled(g.Coords, dLat, dLng, anchorLng, scale)}
}

// Clone returns a deep copy of the geometry.
func (g Geometry) Clone() Geometry {
	return Geometry{Kind: g.Kind, Coords: Clone(g.Coords)}
}

// IsZero reports whether the geometry holds nothing.
func (g Geometry) IsZero() bool {
	return g.Kind == "" && g.Coords.Len() == 0 && !g.Coords.IsLeaf()
}

// FromOrb converts an orb Polygon or MultiPolygon into a Geometry.
func FromOrb(g orb.Geometry) (Geometry, error) {
	switch v := g.(type) {
	case orb.Polygon:
		return Geometry{Kind: KindPolygon, Coords: polygonCoords(v)}, nil
	case orb.MultiPolygon:
		polys := make([]Coords, len(v))
		for i, p := range v {
			polys[i] = polygonCoords(p)
		}
		return Geometry{Kind: KindMultiPolygon, Coords: List(polys...)}, nil
	case nil:
		return Geometry{}, fmt.Errorf("%w: <nil>", ErrUnsupportedGeometry)
	default:
		return Geometry{}, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.GeoJSONType())
	}
}

// Orb converts the geometry back into an orb Polygon or MultiPolygon.
func (g Geometry) Orb() orb.Geometry {
	if g.Kind == KindMultiPolygon {
		mp := make(orb.MultiPolygon, g.Coords.Len())
		for i, p := range g.Coords.Children() {
			mp[i] = orbPolygon(p)
		}
		return mp
	}

	return orbPolygon(g.Coords)
}

// Bound returns the bounding box of all positions.
func (g Geometry) Bound() orb.Bound {
	return g.Orb().Bound()
}

// Contains reports whether p falls inside the geometry, honouring holes.
// Polygons without rings contain nothing.
func (g Geometry) Contains(p LatLng) bool {
	pt := orb.Point{p.Lng, p.Lat}

	switch v := g.Orb().(type) {
	case orb.Polygon:
		return polygonContains(v, pt)
	case orb.MultiPolygon:
		for _, poly := range v {
			if polygonContains(poly, pt) {
				return true
			}
		}
	}

	return false
}

func polygonContains(p orb.Polygon, pt orb.Point) bool {
	if len(p) == 0 {
		return false
	}
	return planar.PolygonContains(p, pt)
}

func polygonCoords(p orb.Polygon) Coords {
	rings := make([]Coords, len(p))
	for i, r := range p {
		leaves := make([]Coords, len(r))
		for j, pt := range r {
			leaves[j] = Leaf(pt.Lon(), pt.Lat())
		}
		rings[i] = List(leaves...)
	}
	return List(rings...)
}

func orbPolygon(c Coords) orb.Polygon {
	poly := make(orb.Polygon, c.Len())
	for i, r := range c.Children() {
		ring := make(orb.Ring, 0, r.Len())
		r.Walk(func(p Position) {
			ring = append(ring, orb.Point{p.Lng, p.Lat})
		})
		poly[i] = ring
	}
	return poly
}
