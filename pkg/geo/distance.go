package geo

import (
	"math"

	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{Lat: lat, Lon: lon}
}

const earthRadiusKM = 6371.0

// CalculateHaversineDistance. great circle distance in km between two lat/lon points (degree).
func CalculateHaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := util.DegreeToRadians(lat1), util.DegreeToRadians(lat2)
	dPhi := phi2 - phi1
	dLambda := util.DegreeToRadians(lon2 - lon1)

	sinPhi, sinLambda := math.Sin(dPhi/2), math.Sin(dLambda/2)
	h := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	return 2 * earthRadiusKM * math.Asin(math.Min(1, math.Sqrt(h)))
}

// GetDestinationPoint returns the point dist km away from (lat1, lon1) in direction bearing (degree).
// https://www.movable-type.co.uk/scripts/latlong.html
func GetDestinationPoint(lat1, lon1 float64, bearing float64, dist float64) (float64, float64) {
	dr := dist / earthRadiusKM

	bearing = util.DegreeToRadians(bearing)
	lat1 = util.DegreeToRadians(lat1)
	lon1 = util.DegreeToRadians(lon1)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(dr) + math.Cos(lat1)*math.Sin(dr)*math.Cos(bearing))
	lon2 := lon1 + math.Atan2(math.Sin(bearing)*math.Sin(dr)*math.Cos(lat1), math.Cos(dr)-math.Sin(lat1)*math.Sin(lat2))

	return util.RadiansToDegree(lat2), normalizeLongitude(util.RadiansToDegree(lon2))
}

// BoundingBox. lower left dan upper right corner dari box yang memuat lingkaran radius km di sekitar (lat, lon).
func BoundingBox(lat, lon, radius float64) (Coordinate, Coordinate) {
	lowerLat, lowerLon := GetDestinationPoint(lat, lon, 225, radius*math.Sqrt2)
	upperLat, upperLon := GetDestinationPoint(lat, lon, 45, radius*math.Sqrt2)
	return NewCoordinate(lowerLat, lowerLon), NewCoordinate(upperLat, upperLon)
}

// normalizeLongitude. long in degree
func normalizeLongitude(long float64) float64 {
	return math.Mod((long+540), 360) - 180.0
}
