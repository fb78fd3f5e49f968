package geo

import (
	"github.com/twpayne/go-polyline"
)

// EncodePolyline. google encoded polyline (precision 5) of the coordinates, lat first.
func EncodePolyline(coords []Coordinate) string {
	pts := make([][]float64, len(coords))
	for i, c := range coords {
		pts[i] = []float64{c.Lat, c.Lon}
	}
	return string(polyline.EncodeCoords(pts))
}

func DecodePolyline(s string) ([]Coordinate, error) {
	pts, _, err := polyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, err
	}
	coords := make([]Coordinate, len(pts))
	for i, p := range pts {
		coords[i] = NewCoordinate(p[0], p[1])
	}
	return coords, nil
}
