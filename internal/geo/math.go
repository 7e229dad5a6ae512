package geo

import "math"

const (
	// DefaultMaxLatitude bounds the latitudes fed into the scale factor.
	DefaultMaxLatitude = 85.0

	// minCosine is the smallest end-latitude cosine that still yields a scale.
	minCosine = 0.001
)

// Scaler computes the horizontal stretch applied to a dragged polygon.
//
// It approximates the Mercator foreshortening a landmass shows when it is
// moved from startLat to endLat: cos(start) / cos(end), with both latitudes
// clamped to ±MaxLatitude. A zero MaxLatitude means DefaultMaxLatitude.
type Scaler struct {
	MaxLatitude float64
}

// Scale returns the longitude multiplier for a drag from startLat to endLat.
// It falls back to 1 when the clamped end latitude is too close to a pole.
func (s Scaler) Scale(startLat, endLat float64) float64 {
	limit := s.MaxLatitude
	if limit <= 0 {
		limit = DefaultMaxLatitude
	}

	start := math.Cos(clampLatitude(startLat, limit) * math.Pi / 180.0)
	end := math.Cos(clampLatitude(endLat, limit) * math.Pi / 180.0)

	if end <= minCosine {
		return 1
	}

	return start / end
}

// HorizontalScale is Scaler.Scale with the default latitude clamp.
func HorizontalScale(startLat, endLat float64) float64 {
	return Scaler{}.Scale(startLat, endLat)
}

func clampLatitude(lat, limit float64) float64 {
	if lat > limit {
		return limit
	} else if lat < -limit {
		return -limit
	}

	return lat
}
