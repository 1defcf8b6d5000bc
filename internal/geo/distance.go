// Package geo provides great-circle distance and travel-time estimates between
// hospitals and suppliers.
package geo

import (
	"errors"
	"fmt"
	"math"
)

const (
	earthRadiusKm = 6371.0

	// AverageSpeedKmH is the assumed road speed used for travel estimates.
	AverageSpeedKmH = 50.0
)

var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Distance returns the haversine distance in kilometers between two points.
// Out-of-range input is not rejected here; use ValidateCoordinates at the boundary.
func Distance(latA, lngA, latB, lngB float64) float64 {
	if latA == latB && lngA == lngB {
		return 0
	}

	dLat := toRadians(latB - latA)
	dLng := toRadians(lngB - lngA)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(latA))*math.Cos(toRadians(latB))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// EstimatedMinutes converts a distance to minutes of travel at AverageSpeedKmH.
func EstimatedMinutes(distanceKm float64) float64 {
	return distanceKm / AverageSpeedKmH * 60
}

func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidCoordinates, lat)
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidCoordinates, lng)
	}
	return nil
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
