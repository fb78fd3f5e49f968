package preprocesser

import (
	"context"

	"github.com/lintang-b-s/navigatorx-ch/pkg/contractor"
	"github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
	"go.uber.org/zap"
)

type Preprocessor struct {
	graph  *datastructure.Graph
	cfg    util.ContractionConfig
	logger *zap.Logger
	order  []datastructure.Index
}

func NewPreprocessor(graph *datastructure.Graph, cfg util.ContractionConfig, logger *zap.Logger) *Preprocessor {
	return &Preprocessor{
		graph:  graph,
		cfg:    cfg,
		logger: logger,
	}
}

// SetContractionOrder makes PreProcessing contract exactly these vertices in this order instead of by priority.
func (p *Preprocessor) SetContractionOrder(order []datastructure.Index) {
	p.order = order
}

// PreProcessing. scc, contraction hierarchy, lalu tulis graph (dengan level + shortcut) ke outFile.
func (p *Preprocessor) PreProcessing(ctx context.Context, outFile string) (contractor.ContractionStats, error) {
	p.logger.Info("Starting preprocessing step of Contraction Hierarchies...")

	numSCCs := p.graph.RunKosaraju()
	p.logger.Info("strongly connected components computed", zap.Int("sccs", numSCCs))

	c, err := contractor.NewContractor(p.graph, p.cfg, p.logger)
	if err != nil {
		return contractor.ContractionStats{}, err
	}
	if len(p.order) > 0 {
		err = c.ContractInOrder(ctx, p.order)
	} else {
		err = c.Start(ctx)
	}
	if err != nil {
		return contractor.ContractionStats{}, err
	}

	if err := p.graph.Validate(); err != nil {
		return contractor.ContractionStats{}, err
	}

	p.logger.Info("Writing contracted graph", zap.String("file", outFile),
		zap.Int("vertices", p.graph.NumberOfVertices()), zap.Int("edges", p.graph.NumberOfEdges()),
		zap.Int("shortcuts", p.graph.NumberOfShortcuts()))
	if err := p.graph.WriteGraph(outFile); err != nil {
		return contractor.ContractionStats{}, err
	}
	return c.Stats(), nil
}
