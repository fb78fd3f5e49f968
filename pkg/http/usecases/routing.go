package usecases

import (
	"context"
	"errors"

	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
	"go.uber.org/zap"
)

var (
	ErrNoNearbyVertex = errors.New("no road vertex near the given coordinate")
	ErrTooManyPoints  = errors.New("too many points in distance matrix request")
)

// RouteResult. eta in minutes, dist in meters, path is a google encoded polyline of the route vertices.
type RouteResult struct {
	Eta      float64
	Dist     float64
	Path     string
	Vertices []da.Index
}

type RoutingService struct {
	log          *zap.Logger
	engine       RoutingEngine
	spatialIndex SpatialIndex
	searchRadius float64
	maxPoints    int
}

// number of snap candidates tried per endpoint when looking for a connected pair
const snapCandidates = 5

func NewRoutingService(log *zap.Logger, engine RoutingEngine, spatialIndex SpatialIndex,
	searchRadius float64, maxMatrixPoints int) *RoutingService {
	return &RoutingService{
		log:          log,
		engine:       engine,
		spatialIndex: spatialIndex,
		searchRadius: searchRadius,
		maxPoints:    maxMatrixPoints,
	}
}

// ShortestPath snaps both coordinates to the nearest road vertex and routes between them.
func (rs *RoutingService) ShortestPath(ctx context.Context, origLat, origLon, dstLat, dstLon float64) (RouteResult, bool, error) {
	s, t, err := rs.snapOrigDest(origLat, origLon, dstLat, dstLon)
	if err != nil {
		return RouteResult{}, false, err
	}
	return rs.ShortestPathByVertex(ctx, s, t, 0)
}

func (rs *RoutingService) ShortestPathByVertex(ctx context.Context, s, t da.Index, maxWeight float64) (RouteResult, bool, error) {
	graph := rs.engine.GetGraph()
	route, found, err := rs.engine.ShortestPath(ctx, s, t, maxWeight)
	if err != nil {
		return RouteResult{}, false, err
	}
	if !found {
		return RouteResult{}, false, nil
	}

	vertices := route.GetVertices()
	coords := make([]geo.Coordinate, 0, len(vertices))
	for _, v := range vertices {
		lat, lon := graph.GetVertexCoordinate(v)
		coords = append(coords, geo.NewCoordinate(lat, lon))
	}

	return RouteResult{
		Eta:      util.RoundFloat(route.GetWeight(), 2),
		Dist:     util.RoundFloat(route.GetDistance(), 2),
		Path:     geo.EncodePolyline(coords),
		Vertices: vertices,
	}, true, nil
}

// DistanceMatrix returns travel times in minutes between every source and target. unreachable pairs are
// pkg.INF_WEIGHT.
func (rs *RoutingService) DistanceMatrix(ctx context.Context, sources, targets []da.Index) ([][]float64, error) {
	if rs.maxPoints > 0 && len(sources)*len(targets) > rs.maxPoints {
		return nil, util.WrapErrorf(ErrTooManyPoints, util.ErrBadParamInput, "matrix of %dx%d exceeds %d entries",
			len(sources), len(targets), rs.maxPoints)
	}
	matrix, err := rs.engine.ManyToMany(ctx, sources, targets, 0)
	if err != nil {
		return nil, err
	}
	rs.log.Debug("distance matrix computed", zap.Int("sources", len(sources)), zap.Int("targets", len(targets)))
	return matrix, nil
}
