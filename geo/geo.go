package geo

import "math"

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox is the axis-aligned envelope of a search area.
type BoundingBox struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

const (
	earthRadiusKm = 6371.0
	degToRad      = math.Pi / 180
)

// Distance returns the great-circle distance between two points in
// kilometers, by the haversine formula.
func Distance(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * degToRad
	dLon := (b.Lon - a.Lon) * degToRad

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(a.Lat*degToRad)*math.Cos(b.Lat*degToRad)*sinLon*sinLon

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// BoundsAround returns the bounding box of the circle with the given
// radius around center. The longitude span widens with latitude, so the
// box keeps the full radius on the ground everywhere in it.
func BoundsAround(center Point, radiusKm float64) BoundingBox {
	latDelta := radiusKm / earthRadiusKm / degToRad

	cosLat := math.Cos(center.Lat * degToRad)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lonDelta := latDelta / cosLat

	return BoundingBox{
		MinLat: center.Lat - latDelta,
		MinLon: center.Lon - lonDelta,
		MaxLat: center.Lat + latDelta,
		MaxLon: center.Lon + lonDelta,
	}
}

// Polygon returns the box corners as a closed ring, counterclockwise,
// the shape the listing source takes as a search area.
func (b BoundingBox) Polygon() []Point {
	return []Point{
		{Lat: b.MinLat, Lon: b.MinLon},
		{Lat: b.MinLat, Lon: b.MaxLon},
		{Lat: b.MaxLat, Lon: b.MaxLon},
		{Lat: b.MaxLat, Lon: b.MinLon},
		{Lat: b.MinLat, Lon: b.MinLon},
	}
}
