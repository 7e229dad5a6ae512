// Package session drives the lifecycle of dragging a single feature across the map.
package session

import (
	"github.com/woozymasta/dragmap/internal/geo"

	"github.com/rs/zerolog/log"
)

// State is the drag lifecycle state.
type State int

const (
	Idle State = iota
	Selected
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selected:
		return "selected"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Feature is a pickable feature as handed to the controller and the renderer.
type Feature struct {
	ID       string
	Name     string
	Geometry geo.Geometry
}

// Renderer draws the floating copy of the selected feature.
// Each call is expected to complete its redraw before returning.
type Renderer interface {
	ShowFloating(f Feature)
	UpdateFloating(g geo.Geometry)
	RemoveFloating()
	RestoreOriginal(id string)
}

// Panner suspends and resumes map camera panning.
type Panner interface {
	Suspend()
	Resume()
}

// Options tune how pointer moves translate into geometry.
type Options struct {
	Scaler         geo.Scaler
	Scaling        bool
	SnapToLatitude bool
}

// Baseline is the immutable reference captured when a drag starts.
type Baseline struct {
	Geometry geo.Geometry
	Pointer  geo.LatLng
}

// Controller is the drag state machine for one map client.
// It is not safe for concurrent use; events must be delivered in order
// from a single goroutine.
type Controller struct {
	renderer Renderer
	panner   Panner
	opts     Options

	selected Feature
	floating geo.Geometry
	baseline Baseline
	state    State
}

// New creates an idle controller.
func New(renderer Renderer, panner Panner, opts Options) *Controller {
	return &Controller{
		renderer: renderer,
		panner:   panner,
		opts:     opts,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Selected returns the selected feature with its original geometry.
func (c *Controller) Selected() (Feature, bool) {
	return c.selected, c.state != Idle
}

// Floating returns the geometry currently displayed as the floating copy.
func (c *Controller) Floating() (geo.Geometry, bool) {
	return c.floating, c.state != Idle
}

// SnapToLatitude reports whether vertical movement is suppressed.
func (c *Controller) SnapToLatitude() bool { return c.opts.SnapToLatitude }

// SetSnapToLatitude toggles vertical snapping. It takes effect on the next move.
func (c *Controller) SetSnapToLatitude(v bool) {
	c.opts.SnapToLatitude = v
}

// Pick selects a feature, tearing down whatever was selected before.
func (c *Controller) Pick(f Feature) {
	if f.Geometry.IsZero() {
		log.Trace().Str("feature", f.ID).Msg("Pick ignored: empty geometry")
		return
	}

	c.teardown()

	c.selected = Feature{ID: f.ID, Name: f.Name, Geometry: f.Geometry.Clone()}
	c.floating = f.Geometry.Clone()
	c.state = Selected

	c.renderer.ShowFloating(Feature{ID: f.ID, Name: f.Name, Geometry: c.floating})

	log.Debug().Str("feature", f.ID).Str("name", f.Name).Msg("Feature selected")
}

// PointerDown starts a drag when p lies on the floating copy.
func (c *Controller) PointerDown(p geo.LatLng) {
	if c.state != Selected {
		log.Trace().Stringer("state", c.state).Msg("Pointer down ignored")
		return
	}
	if !c.floating.Contains(p) {
		log.Trace().Float64("lat", p.Lat).Float64("lng", p.Lng).Msg("Pointer down outside floating feature")
		return
	}

	c.baseline = Baseline{Geometry: c.floating.Clone(), Pointer: p}
	c.state = Dragging
	c.panner.Suspend()

	log.Debug().
		Str("feature", c.selected.ID).
		Float64("lat", p.Lat).
		Float64("lng", p.Lng).
		Msg("Drag started")
}

// PointerMove redraws the floating copy for the pointer at p.
func (c *Controller) PointerMove(p geo.LatLng) {
	if c.state != Dragging {
		return
	}

	c.floating = Displace(c.baseline.Geometry, c.baseline.Pointer, p, c.opts)
	c.renderer.UpdateFloating(c.floating)
}

// PointerUp ends the active drag. The next drag re-baselines from the current position.
func (c *Controller) PointerUp() {
	if c.state != Dragging {
		return
	}

	c.state = Selected
	c.baseline = Baseline{}
	c.panner.Resume()

	log.Debug().Str("feature", c.selected.ID).Msg("Drag finished")
}

// Reset discards the floating copy and returns to Idle.
func (c *Controller) Reset() {
	if c.state == Idle {
		return
	}

	id := c.selected.ID
	c.teardown()

	log.Debug().Str("feature", id).Msg("Selection reset")
}

func (c *Controller) teardown() {
	if c.state == Idle {
		return
	}

	if c.state == Dragging {
		c.panner.Resume()
	}

	c.renderer.RemoveFloating()
	c.renderer.RestoreOriginal(c.selected.ID)

	c.selected = Feature{}
	c.floating = geo.Geometry{}
	c.baseline = Baseline{}
	c.state = Idle
}
