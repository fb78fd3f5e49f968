package engine

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/navigatorx-ch/pkg"
	"github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/engine/routing"
	"go.uber.org/zap"
)

type Engine struct {
	chRoutingEngine *routing.CHRoutingEngine
}

func (e *Engine) GetRoutingEngine() *routing.CHRoutingEngine {
	return e.chRoutingEngine
}

// NewEngine reads a contracted graph written by the preprocessor.
func NewEngine(graphFilePath string, unpackCacheSize, numWorkers int, logger *zap.Logger) (*Engine, error) {
	logger.Info("Starting query engine of Contraction Hierarchies...")

	logger.Info("Reading graph from ", zap.String("graphFilePath", graphFilePath))
	graph, err := datastructure.ReadGraph(graphFilePath)
	if err != nil {
		return nil, err
	}
	return NewEngineFromGraph(graph, unpackCacheSize, numWorkers, logger)
}

func NewEngineFromGraph(graph *datastructure.Graph, unpackCacheSize, numWorkers int, logger *zap.Logger) (*Engine, error) {
	if unpackCacheSize <= 0 {
		unpackCacheSize = pkg.DEFAULT_UNPACK_CACHE_SIZE
	}
	puCache, err := lru.New[routing.PUCacheKey, []datastructure.Index](unpackCacheSize)
	if err != nil {
		return nil, err
	}
	logger.Info("query engine ready", zap.Int("vertices", graph.NumberOfVertices()),
		zap.Int("edges", graph.NumberOfEdges()), zap.Int("shortcuts", graph.NumberOfShortcuts()))
	return &Engine{
		chRoutingEngine: routing.NewCHRoutingEngine(graph, logger, puCache, numWorkers),
	}, nil
}
