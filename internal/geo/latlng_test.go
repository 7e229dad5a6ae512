package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLatLng(t *testing.T) {
	tests := []struct {
		in      string
		want    LatLng
		wantErr bool
	}{
		{in: "1,2", want: LatLng{Lat: 1, Lng: 2}},
		{in: " -33.5 , 151.25 ", want: LatLng{Lat: -33.5, Lng: 151.25}},
		{in: "1", wantErr: true},
		{in: "a,2", wantErr: true},
		{in: "1,b", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLatLng(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLatLngFlag(t *testing.T) {
	var p LatLng
	require.NoError(t, p.UnmarshalFlag("45.5,-73.25"))
	assert.Equal(t, LatLng{Lat: 45.5, Lng: -73.25}, p)
	assert.Equal(t, "45.5,-73.25", p.String())

	assert.Error(t, p.UnmarshalFlag("north"))
	assert.Equal(t, LatLng{Lat: 45.5, Lng: -73.25}, p, "unchanged on error")
}
