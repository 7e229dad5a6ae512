// Package geo implements the coordinate trees and the drag transforms applied to them.
package geo

// Position is a single [lng, lat] pair in degrees.
type Position struct {
	Lng float64
	Lat float64
}

// LatLng is a pointer position as delivered by the map client.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Coords is a coordinate tree: either a leaf Position or a list of nested trees.
// A ring is a list of leaves, a polygon a list of rings and a multipolygon a
// list of polygons. The zero value is an empty list.
type Coords struct {
	children []Coords
	pos      Position
	leaf     bool
}

// Leaf returns a leaf node holding the given position.
func Leaf(lng, lat float64) Coords {
	return Coords{pos: Position{Lng: lng, Lat: lat}, leaf: true}
}

// List returns a list node with the given children.
func List(children ...Coords) Coords {
	return Coords{children: children}
}

// Ring builds a list of leaves from [lng, lat] pairs.
func Ring(points ...[2]float64) Coords {
	children := make([]Coords, len(points))
	for i, p := range points {
		children[i] = Leaf(p[0], p[1])
	}
	return Coords{children: children}
}

// IsLeaf reports whether c is a single position.
func (c Coords) IsLeaf() bool { return c.leaf }

// Position returns the position of a leaf node.
// Calling it on a list node is a caller bug and panics.
func (c Coords) Position() Position {
	if !c.leaf {
		panic("geo: Position called on a coordinate list")
	}
	return c.pos
}

// Children returns the child trees of a list node, nil for a leaf.
// The returned slice must not be modified.
func (c Coords) Children() []Coords { return c.children }

// Len returns the number of children, 0 for a leaf.
func (c Coords) Len() int { return len(c.children) }

// Depth returns the nesting depth: 0 for a leaf, 1 for a ring and so on.
// The depth of a list is taken from its first child.
func (c Coords) Depth() int {
	if c.leaf {
		return 0
	}
	if len(c.children) == 0 {
		return 1
	}
	return c.children[0].Depth() + 1
}

// Walk calls fn for every leaf in order.
func (c Coords) Walk(fn func(Position)) {
	if c.leaf {
		fn(c.pos)
		return
	}
	for _, child := range c.children {
		child.Walk(fn)
	}
}

// Clone returns a structural deep copy of c.
func Clone(c Coords) Coords {
	return mapLeaves(c, func(p Position) Position { return p })
}

// Shift translates every leaf by the given deltas.
// The result has exactly the shape of c and c is left untouched.
func Shift(c Coords, dLat, dLng float64) Coords {
	return mapLeaves(c, func(p Position) Position {
		return Position{Lng: p.Lng + dLng, Lat: p.Lat + dLat}
	})
}

// ShiftScaled translates every leaf and scales its longitude around anchorLng:
//
//	lng' = anchorLng + dLng + (lng - anchorLng) * scale
//	lat' = lat + dLat
func ShiftScaled(c Coords, dLat, dLng, anchorLng, scale float64) Coords {
	return mapLeaves(c, func(p Position) Position {
		return Position{
			Lng: anchorLng + dLng + (p.Lng-anchorLng)*scale,
			Lat: p.Lat + dLat,
		}
	})
}

func mapLeaves(c Coords, fn func(Position) Position) Coords {
	if c.leaf {
		return Coords{pos: fn(c.pos), leaf: true}
	}
	if c.children == nil {
		return Coords{}
	}

	children := make([]Coords, len(c.children))
	for i, child := range c.children {
		children[i] = mapLeaves(child, fn)
	}
	return Coords{children: children}
}
