// Package geo computes straight-line distances and travel-time estimates
// between two known coordinates.
package geo

import (
	"math"

	"github.com/golang/geo/s2"

	"github.com/novatrek/planner/backend/internal/domain"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle (haversine) distance between a and b.
func DistanceKm(a, b domain.Coordinates) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// TravelMinutes estimates the travel time between a and b at a constant speed,
// rounded up to the next whole minute. A non-positive speed yields 0.
func TravelMinutes(a, b domain.Coordinates, speedKmh float64) int {
	if speedKmh <= 0 {
		return 0
	}
	return int(math.Ceil(DistanceKm(a, b) / speedKmh * 60))
}

// Valid reports whether c is a usable latitude/longitude pair.
func Valid(c domain.Coordinates) bool {
	return s2.LatLngFromDegrees(c.Lat, c.Lng).IsValid()
}
