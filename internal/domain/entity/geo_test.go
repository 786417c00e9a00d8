package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeoPoint_CoordinateOrder(t *testing.T) {
	p := NewGeoPoint(21.028, 105.834)
	assert.Equal(t, "Point", p.Type)
	assert.Equal(t, []float64{105.834, 21.028}, p.Coordinates)
	assert.Equal(t, LatLng{Lat: 21.028, Lng: 105.834}, p.LatLng())
	assert.True(t, p.Valid())
}

func TestDistanceKm(t *testing.T) {
	hanoi := NewGeoPoint(21.0285, 105.8542)
	hcm := NewGeoPoint(10.8231, 106.6297)

	assert.InDelta(t, 1137, DistanceKm(hanoi, hcm), 10)
	assert.Equal(t, 0.0, DistanceKm(hanoi, hanoi))
}

func TestValidLatLng(t *testing.T) {
	assert.True(t, ValidLatLng(-90, 180))
	assert.False(t, ValidLatLng(91, 0))
	assert.False(t, ValidLatLng(0, -181))
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 1.24, RoundTo(1.2366, 2))
	assert.Equal(t, 3.0, RoundTo(2.999, 2))
}
