package geo

import (
	"fmt"
	"math"
	"strings"
)

const earthRadiusKm = 6371.0

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// DistanceFunc compares two coordinates. Smaller is closer.
type DistanceFunc func(a, b Coordinate) float64

// Euclidean treats latitude and longitude as planar axes. It is only good for
// ranking nearby points, not for measuring them.
func Euclidean(a, b Coordinate) float64 {
	dLat := b.Lat - a.Lat
	dLon := b.Lon - a.Lon
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(a, b Coordinate) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c * 1000
}

// ParseMetric maps a configuration value to a DistanceFunc.
// "planar" (or empty) selects Euclidean, "haversine" selects Haversine.
func ParseMetric(name string) (DistanceFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "planar", "euclidean":
		return Euclidean, nil
	case "haversine":
		return Haversine, nil
	default:
		return nil, fmt.Errorf("unknown distance metric %q", name)
	}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
