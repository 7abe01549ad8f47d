package geo

import "math"

const earthRadiusMeters = 6371000

// Point is a WGS84 coordinate in decimal degrees
type Point struct {
	Latitude  float64
	Longitude float64
}

// DistanceMeters returns the great-circle distance between a and b using the haversine formula
func DistanceMeters(a, b Point) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(toRadians(a.Latitude))*math.Cos(toRadians(b.Latitude))

	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Fence is a circular area around a point
type Fence struct {
	Center       Point
	RadiusMeters float64
}

// Contains reports whether p lies within the fence, boundary included
func (f Fence) Contains(p Point) bool {
	return DistanceMeters(f.Center, p) <= f.RadiusMeters
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
