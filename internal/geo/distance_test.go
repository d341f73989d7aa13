package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/novatrek/planner/backend/internal/domain"
	"github.com/novatrek/planner/backend/internal/geo"
)

var (
	louvre    = domain.Coordinates{Lat: 48.8606, Lng: 2.3376}
	eiffel    = domain.Coordinates{Lat: 48.8584, Lng: 2.2945}
	colosseum  = domain.Coordinates{Lat: 41.8902, Lng: 12.4922}
)

func TestDistanceKm(t *testing.T) {
	assert.InDelta(t, 3.15, geo.DistanceKm(louvre, eiffel), 0.1)
	assert.InDelta(t, 1106, geo.DistanceKm(louvre, colosseum), 10)
	assert.Zero(t, geo.DistanceKm(louvre, louvre))
}

func TestTravelMinutes(t *testing.T) {
	// ~3.15 km at 30 km/h is a little over 6 minutes.
	assert.Equal(t, 7, geo.TravelMinutes(louvre, eiffel, 30))
	assert.Zero(t, geo.TravelMinutes(louvre, eiffel, 0))
}

func TestValid(t *testing.T) {
	assert.True(t, geo.Valid(louvre))
	assert.False(t, geo.Valid(domain.Coordinates{Lat: 95, Lng: 0}))
}
