package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLatLng parses a "lat,lng" pair.
func ParseLatLng(v string) (LatLng, error) {
	latStr, lngStr, ok := strings.Cut(v, ",")
	if !ok {
		return LatLng{}, fmt.Errorf("expected lat,lng, got %q", v)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return LatLng{}, fmt.Errorf("longitude: %w", err)
	}

	return LatLng{Lat: lat, Lng: lng}, nil
}

// UnmarshalFlag lets LatLng be used directly as a command line option.
func (p *LatLng) UnmarshalFlag(value string) error {
	v, err := ParseLatLng(value)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p LatLng) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}
