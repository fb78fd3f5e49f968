package costfunction

import (
	"github.com/lintang-b-s/navigatorx-ch/pkg"
)

// TimeFunction. edge weight is travel time in minutes.
type TimeFunction struct {
}

func NewTimeCostFunction() *TimeFunction {
	return &TimeFunction{}
}

const (
	defaultSpeed = 20.0 // km/h
)

func (tf *TimeFunction) GetWeight(e EdgeAttributes) float64 {
	speed := e.GetEdgeSpeed()
	if speed <= 0 {
		speed = DefaultSpeed(e.GetHighwayType())
	}
	if speed <= 0 {
		speed = defaultSpeed
	}
	return e.GetLength() / (speed * 1000 / 60)
}

// DefaultSpeed. typical max speed (km/h) of a highway class, used when the way has no usable maxspeed tag.
func DefaultSpeed(hw pkg.OsmHighwayType) float64 {
	switch hw {
	case pkg.MOTORWAY:
		return 100
	case pkg.TRUNK:
		return 70
	case pkg.PRIMARY:
		return 65
	case pkg.SECONDARY:
		return 60
	case pkg.TERTIARY:
		return 50
	case pkg.UNCLASSIFIED:
		return 40
	case pkg.RESIDENTIAL:
		return 30
	case pkg.SERVICE:
		return 20
	case pkg.MOTORWAY_LINK:
		return 70
	case pkg.TRUNK_LINK:
		return 65
	case pkg.PRIMARY_LINK:
		return 60
	case pkg.SECONDARY_LINK:
		return 50
	case pkg.TERTIARY_LINK:
		return 40
	case pkg.LIVING_STREET:
		return 5
	case pkg.ROAD:
		return 20
	case pkg.TRACK:
		return 15
	case pkg.MOTORROAD:
		return 90
	default:
		return 30
	}
}
