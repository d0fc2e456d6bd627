package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks the coordinate ranges.
func (p GeoPoint) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", p.Lon)
	}
	return nil
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// ParseBounds parses "minLon,minLat,maxLon,maxLat".
func ParseBounds(s string) (Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Bounds{}, fmt.Errorf("bbox must have 4 comma-separated numbers, got %d", len(parts))
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Bounds{}, fmt.Errorf("bbox value %q is not a number", p)
		}
		v[i] = f
	}
	return Bounds{MinLon: v[0], MinLat: v[1], MaxLon: v[2], MaxLat: v[3]}, nil
}

// Contains reports whether p lies inside b, edges included.
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lon >= b.MinLon && p.Lon <= b.MaxLon &&
		p.Lat >= b.MinLat && p.Lat <= b.MaxLat
}

// PointGeometry is a GeoJSON Point.
type PointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewPointGeometry builds a GeoJSON Point with [lon, lat] ordering.
func NewPointGeometry(p GeoPoint) PointGeometry {
	return PointGeometry{Type: "Point", Coordinates: [2]float64{p.Lon, p.Lat}}
}

// Feature is a GeoJSON Feature keyed by the map object uid.
type Feature struct {
	Geometry   PointGeometry  `json:"geometry"`
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
	Type       string         `json:"type"`
}

// FeatureCollection is a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Features []Feature `json:"features"`
	Type     string    `json:"type"`
}

// NewFeatureCollection shapes map objects as GeoJSON. Objects without
// properties get the placeholder {"id": "junk"}.
func NewFeatureCollection(objects []MapObject) FeatureCollection {
	features := make([]Feature, 0, len(objects))
	for _, o := range objects {
		props := o.Properties
		if props == nil {
			props = map[string]any{"id": "junk"}
		}
		features = append(features, Feature{
			Geometry:   NewPointGeometry(o.Location),
			ID:         o.UID,
			Properties: props,
			Type:       "Feature",
		})
	}
	return FeatureCollection{Features: features, Type: "FeatureCollection"}
}
