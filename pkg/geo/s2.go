package geo

import (
	"github.com/golang/geo/s2"
)

// GreatCircleDistance in meter between two coordinates, computed on the s2 sphere.
func GreatCircleDistance(a, b Coordinate) float64 {
	la := s2.LatLngFromDegrees(a.Lat, a.Lon)
	lb := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return la.Distance(lb).Radians() * earthRadiusKM * 1000
}
