package usecases

import (
	"context"

	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/engine/routing"
	"github.com/lintang-b-s/navigatorx-ch/pkg/spatialindex"
)

type RoutingEngine interface {
	GetGraph() *da.Graph
	ShortestPath(ctx context.Context, s, t da.Index, maxWeight float64) (*routing.Route, bool, error)
	ManyToMany(ctx context.Context, sources, targets []da.Index, maxWeight float64) ([][]float64, error)
}

type SpatialIndex interface {
	SearchWithinRadius(qLat, qLon, radius float64, limit int) []spatialindex.SnapCandidate
}
