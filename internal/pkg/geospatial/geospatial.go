package geospatial

import (
	"math"

	"github.com/samirrijal/pokedex/internal/core/domain"
)

const earthRadiusMeters = 6371000.0

// metersPerDegree is the length of one degree of latitude.
const metersPerDegree = 111320.0

// Distance returns the great-circle distance in meters between a and b.
func Distance(a, b domain.GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Around returns the boxes enclosing a circle of radiusMeters centred on p.
// A circle crossing the antimeridian yields two boxes, one on each side.
// Near the poles the box spans all longitudes.
func Around(p domain.GeoPoint, radiusMeters float64) []domain.Bounds {
	latDelta := radiusMeters / metersPerDegree
	b := domain.Bounds{
		MinLat: math.Max(p.Lat-latDelta, -90),
		MaxLat: math.Min(p.Lat+latDelta, 90),
		MinLon: -180,
		MaxLon: 180,
	}

	cos := math.Cos(toRad(p.Lat))
	if cos < 1e-6 {
		return []domain.Bounds{b}
	}
	lonDelta := radiusMeters / (metersPerDegree * cos)
	if lonDelta >= 180 {
		return []domain.Bounds{b}
	}

	minLon, maxLon := p.Lon-lonDelta, p.Lon+lonDelta
	switch {
	case minLon < -180:
		west, east := b, b
		west.MinLon, west.MaxLon = -180, maxLon
		east.MinLon, east.MaxLon = minLon+360, 180
		return []domain.Bounds{west, east}
	case maxLon > 180:
		west, east := b, b
		west.MinLon, west.MaxLon = minLon, 180
		east.MinLon, east.MaxLon = -180, maxLon-360
		return []domain.Bounds{west, east}
	}
	b.MinLon, b.MaxLon = minLon, maxLon
	return []domain.Bounds{b}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
