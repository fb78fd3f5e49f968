package controllers

import (
	"context"

	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/http/usecases"
)

type RoutingService interface {
	ShortestPath(ctx context.Context, origLat, origLon, dstLat, dstLon float64) (usecases.RouteResult, bool, error)
	ShortestPathByVertex(ctx context.Context, s, t da.Index, maxWeight float64) (usecases.RouteResult, bool, error)
	DistanceMatrix(ctx context.Context, sources, targets []da.Index) ([][]float64, error)
}
