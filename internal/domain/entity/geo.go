package entity

import "math"

const earthRadiusKm = 6371.0

// GeoPoint is stored GeoJSON style: Coordinates is [lng, lat].
type GeoPoint struct {
	Type        string    `json:"type" firestore:"type"`
	Coordinates []float64 `json:"coordinates" firestore:"coordinates"`
}

func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

func (p GeoPoint) Lat() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[1]
}

func (p GeoPoint) Lng() float64 {
	if len(p.Coordinates) < 1 {
		return 0
	}
	return p.Coordinates[0]
}

func (p GeoPoint) Valid() bool {
	return len(p.Coordinates) == 2 && ValidLatLng(p.Lat(), p.Lng())
}

// LatLng is the shape clients send and receive.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p GeoPoint) LatLng() LatLng {
	return LatLng{Lat: p.Lat(), Lng: p.Lng()}
}

func ValidLatLng(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// DistanceKm is the great-circle distance between two points.
func DistanceKm(a, b GeoPoint) float64 {
	lat1, lon1 := a.Lat(), a.Lng()
	lat2, lon2 := b.Lat(), b.Lng()

	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
