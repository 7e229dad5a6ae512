package session

import "github.com/woozymasta/dragmap/internal/geo"

// Displace returns base as it appears after dragging the pointer from `from` to `to`.
// With SnapToLatitude the latitude delta is dropped and the scale stays neutral.
func Displace(base geo.Geometry, from, to geo.LatLng, opts Options) geo.Geometry {
	dLat := to.Lat - from.Lat
	dLng := to.Lng - from.Lng
	endLat := to.Lat

	if opts.SnapToLatitude {
		dLat = 0
		endLat = from.Lat
	}

	if !opts.Scaling {
		return base.Shift(dLat, dLng)
	}

	scale := opts.Scaler.Scale(from.Lat, endLat)
	return base.ShiftScaled(dLat, dLng, from.Lng, scale)
}
