package routing

import (
	"context"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/navigatorx-ch/pkg"
	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
	"go.uber.org/zap"
)

var (
	ErrInvalidVertex = errors.New("invalid vertex id")
)

// CHRoutingEngine. read only query side of a contraction hierarchy. safe for concurrent queries as long as the graph
// is not contracted at the same time.
type CHRoutingEngine struct {
	graph          *da.Graph
	logger         *zap.Logger
	puCache        *lru.Cache[PUCacheKey, []da.Index]
	maxUnpackDepth int
	numWorkers     int
}

func NewCHRoutingEngine(graph *da.Graph, logger *zap.Logger, puCache *lru.Cache[PUCacheKey, []da.Index],
	numWorkers int) *CHRoutingEngine {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &CHRoutingEngine{
		graph:          graph,
		logger:         logger,
		puCache:        puCache,
		maxUnpackDepth: pkg.DEFAULT_MAX_UNPACK_DEPTH,
		numWorkers:     numWorkers,
	}
}

func (ch *CHRoutingEngine) GetGraph() *da.Graph {
	return ch.graph
}

func (ch *CHRoutingEngine) checkVertex(v da.Index) error {
	if !ch.graph.IsValidVertex(v) {
		return util.WrapErrorf(ErrInvalidVertex, util.ErrBadParamInput, "vertex %d out of range [0, %d)",
			v, ch.graph.NumberOfVertices())
	}
	return nil
}

// ShortestPath runs a fresh bidirectional search. maxWeight <= 0 means unbounded. found is false if t is not
// reachable within maxWeight.
func (ch *CHRoutingEngine) ShortestPath(ctx context.Context, s, t da.Index, maxWeight float64) (*Route, bool, error) {
	return NewCHBidirectionalSearch(ch).ShortestPath(ctx, s, t, maxWeight)
}
