package contractor

import (
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"

	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
)

// PriorityCalculator. lower priority is contracted sooner.
type PriorityCalculator interface {
	Calculate(level int, vertex da.Index) (float64, error)
}

// neighbourhood. cheapest uncontracted in and out neighbours of a vertex, self loops dropped.
type neighbourhood struct {
	in         []da.Index
	inWeights  []float64
	out        []da.Index
	outWeights []float64
	contracted int // distinct contracted neighbours
}

func collectNeighbourhood(g *da.Graph, v da.Index) neighbourhood {
	var nb neighbourhood
	inPos := make(map[da.Index]int, g.InDegree(v))
	outPos := make(map[da.Index]int, g.OutDegree(v))
	contracted := make(map[da.Index]struct{})

	g.ForInEdgesOf(v, func(e *da.Edge) bool {
		u := e.GetTail()
		if u == v {
			return true
		}
		if g.IsContracted(u) {
			contracted[u] = struct{}{}
			return true
		}
		if i, ok := inPos[u]; ok {
			nb.inWeights[i] = util.MinG(nb.inWeights[i], e.GetWeight())
			return true
		}
		inPos[u] = len(nb.in)
		nb.in = append(nb.in, u)
		nb.inWeights = append(nb.inWeights, e.GetWeight())
		return true
	})

	g.ForOutEdgesOf(v, func(e *da.Edge) bool {
		w := e.GetHead()
		if w == v {
			return true
		}
		if g.IsContracted(w) {
			contracted[w] = struct{}{}
			return true
		}
		if i, ok := outPos[w]; ok {
			nb.outWeights[i] = util.MinG(nb.outWeights[i], e.GetWeight())
			return true
		}
		outPos[w] = len(nb.out)
		nb.out = append(nb.out, w)
		nb.outWeights = append(nb.outWeights, e.GetWeight())
		return true
	})

	nb.contracted = len(contracted)
	return nb
}

func (nb neighbourhood) degree() int {
	return len(nb.in) + len(nb.out)
}

// touched. every distinct uncontracted neighbour.
func (nb neighbourhood) touched() []da.Index {
	seen := make(map[da.Index]struct{}, nb.degree())
	res := make([]da.Index, 0, nb.degree())
	for _, list := range [][]da.Index{nb.in, nb.out} {
		for _, u := range list {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			res = append(res, u)
		}
	}
	return res
}

// requiredShortcut. shortcut u -> w through the contracted vertex.
type requiredShortcut struct {
	from, to da.Index
	weight   float64
}

// findRequiredShortcuts runs one batched witness search per in-neighbour of v.
func findRequiredShortcuts(wc WitnessCalculator, v da.Index, nb neighbourhood, hopLimit int) ([]requiredShortcut, error) {
	shortcuts := make([]requiredShortcut, 0)
	targets := make([]da.Index, 0, len(nb.out))
	limits := make([]float64, 0, len(nb.out))

	for i, u := range nb.in {
		targets = targets[:0]
		limits = limits[:0]
		for j, w := range nb.out {
			if w == u {
				continue
			}
			targets = append(targets, w)
			limits = append(limits, nb.inWeights[i]+nb.outWeights[j])
		}
		if len(targets) == 0 {
			continue
		}

		found, err := wc.FindWitnesses(u, targets, limits, hopLimit, v)
		if err != nil {
			return nil, err
		}
		for k, ok := range found {
			if !ok {
				shortcuts = append(shortcuts, requiredShortcut{from: u, to: targets[k], weight: limits[k]})
			}
		}
	}
	return shortcuts, nil
}

// EdgeDifferencePriority. priority = shortcuts that contracting the vertex now would add - its current degree.
type EdgeDifferencePriority struct {
	graph    *da.Graph
	witness  WitnessCalculator
	hopLimit int
}

func NewEdgeDifferencePriority(graph *da.Graph, witness WitnessCalculator, hopLimit int) *EdgeDifferencePriority {
	return &EdgeDifferencePriority{graph: graph, witness: witness, hopLimit: hopLimit}
}

func (p *EdgeDifferencePriority) Calculate(level int, vertex da.Index) (float64, error) {
	if !p.graph.IsValidVertex(vertex) {
		return 0, util.WrapErrorf(da.ErrVertexNotFound, util.ErrBadParamInput, "priority of vertex %d", vertex)
	}
	nb := collectNeighbourhood(p.graph, vertex)
	shortcuts, err := findRequiredShortcuts(p.witness, vertex, nb, p.hopLimit)
	if err != nil {
		return 0, err
	}
	return float64(len(shortcuts) - nb.degree()), nil
}

// EdgeDifferenceSearchSpacePriority. edge difference where the witness search may also walk through contracted
// vertices (and their shortcuts), plus the number of already contracted neighbours so vertices next to
// contracted regions are pushed back.
type EdgeDifferenceSearchSpacePriority struct {
	graph    *da.Graph
	witness  WitnessCalculator
	hopLimit int
}

// NewEdgeDifferenceSearchSpacePriority. witness should be built with WithContractedVertices.
func NewEdgeDifferenceSearchSpacePriority(graph *da.Graph, witness WitnessCalculator, hopLimit int) *EdgeDifferenceSearchSpacePriority {
	return &EdgeDifferenceSearchSpacePriority{graph: graph, witness: witness, hopLimit: hopLimit}
}

func (p *EdgeDifferenceSearchSpacePriority) Calculate(level int, vertex da.Index) (float64, error) {
	if !p.graph.IsValidVertex(vertex) {
		return 0, util.WrapErrorf(da.ErrVertexNotFound, util.ErrBadParamInput, "priority of vertex %d", vertex)
	}
	nb := collectNeighbourhood(p.graph, vertex)
	shortcuts, err := findRequiredShortcuts(p.witness, vertex, nb, p.hopLimit)
	if err != nil {
		return 0, err
	}
	return float64(len(shortcuts)-nb.degree()) + float64(nb.contracted), nil
}

// NewPriorityCalculator builds the calculator for policy with its own witness calculator.
func NewPriorityCalculator(graph *da.Graph, policy util.PriorityPolicy, hopLimit, maxSettledNodes int) (PriorityCalculator, error) {
	switch policy {
	case util.EDGE_DIFFERENCE:
		wc := NewDijkstraWitnessCalculator(graph, WithMaxSettledNodes(maxSettledNodes))
		return NewEdgeDifferencePriority(graph, wc, hopLimit), nil
	case util.EDGE_DIFFERENCE_SEARCH_SPACE:
		wc := NewDijkstraWitnessCalculator(graph, WithMaxSettledNodes(maxSettledNodes), WithContractedVertices())
		return NewEdgeDifferenceSearchSpacePriority(graph, wc, hopLimit), nil
	default:
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "unknown priority policy %q", policy)
	}
}
