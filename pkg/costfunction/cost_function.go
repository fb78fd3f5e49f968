package costfunction

import (
	"github.com/lintang-b-s/navigatorx-ch/pkg"
)

type EdgeAttributes interface {
	GetEdgeSpeed() float64 // km/h, 0 if unknown
	GetLength() float64    // meter
	GetHighwayType() pkg.OsmHighwayType
}

type CostFunction interface {
	GetWeight(e EdgeAttributes) float64
}
