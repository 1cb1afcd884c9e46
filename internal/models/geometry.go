package models

import (
	"encoding/json"
	"fmt"
)

// Point represents a WGS84 location in GeoJSON form.
// Coordinates are stored in GeoJSON order: [lon, lat].
type Point struct {
	Coordinates [2]float64
}

// NewPoint builds a Point from a stored latitude/longitude pair.
// Returns nil unless both halves are present.
func NewPoint(lat, lon *float64) *Point {
	if lat == nil || lon == nil {
		return nil
	}
	return &Point{Coordinates: [2]float64{*lon, *lat}}
}

// Lat returns the latitude component.
func (p Point) Lat() float64 { return p.Coordinates[1] }

// Lon returns the longitude component.
func (p Point) Lon() float64 { return p.Coordinates[0] }

// MarshalJSON implements json.Marshaler for API responses.
func (p Point) MarshalJSON() ([]byte, error) {
	geom := struct {
		Type        string     `json:"type"`
		Coordinates [2]float64 `json:"coordinates"`
	}{
		Type:        "Point",
		Coordinates: p.Coordinates,
	}
	return json.Marshal(geom)
}

// UnmarshalJSON implements json.Unmarshaler for GeoJSON input.
func (p *Point) UnmarshalJSON(data []byte) error {
	var geom struct {
		Type        string     `json:"type"`
		Coordinates [2]float64 `json:"coordinates"`
	}

	if err := json.Unmarshal(data, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal point: %w", err)
	}

	if geom.Type != "" && geom.Type != "Point" {
		return fmt.Errorf("expected Point type, got %s", geom.Type)
	}

	p.Coordinates = geom.Coordinates
	return nil
}
