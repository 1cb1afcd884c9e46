package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoint(t *testing.T) {
	lat, lon := 28.0345, -80.5887

	tests := []struct {
		name    string
		lat     *float64
		lon     *float64
		wantNil bool
	}{
		{name: "both present", lat: &lat, lon: &lon},
		{name: "missing latitude", lat: nil, lon: &lon, wantNil: true},
		{name: "missing longitude", lat: &lat, lon: nil, wantNil: true},
		{name: "neither", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPoint(tt.lat, tt.lon)
			if tt.wantNil {
				assert.Nil(t, p)
				return
			}
			require.NotNil(t, p)
			assert.Equal(t, lat, p.Lat())
			assert.Equal(t, lon, p.Lon())
		})
	}
}

func TestPointJSON(t *testing.T) {
	t.Run("marshals as GeoJSON with lon first", func(t *testing.T) {
		p := Point{Coordinates: [2]float64{-80.5, 28.1}}

		data, err := json.Marshal(p)
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"Point","coordinates":[-80.5,28.1]}`, string(data))
	})

	t.Run("round trips", func(t *testing.T) {
		var p Point
		err := json.Unmarshal([]byte(`{"type":"Point","coordinates":[-95.45,30.34]}`), &p)
		require.NoError(t, err)
		assert.Equal(t, 30.34, p.Lat())
		assert.Equal(t, -95.45, p.Lon())
	})

	t.Run("rejects other geometry types", func(t *testing.T) {
		var p Point
		err := json.Unmarshal([]byte(`{"type":"Polygon","coordinates":[0,0]}`), &p)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "expected Point type")
	})
}
