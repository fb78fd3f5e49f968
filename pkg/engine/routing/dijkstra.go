package routing

import (
	"context"

	"github.com/lintang-b-s/navigatorx-ch/pkg"
	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
)

// Dijkstra. plain single source dijkstra over original edges only, ignores levels and shortcuts.
// dipakai sebagai ground truth untuk CH query dan di eval.
type Dijkstra struct {
	graph *da.Graph

	dist    []float64
	parent  []da.Index // edge id of the last edge on the tree path, da.Index max if none
	pq      *da.MinHeap[da.Index]
	nodes   []*da.PriorityQueueNode[da.Index]
	settled []bool

	numSettledNodes int
}

const noParent = ^da.Index(0)

func NewDijkstra(graph *da.Graph) *Dijkstra {
	return &Dijkstra{
		graph: graph,
		pq:    da.NewFourAryHeap[da.Index](),
	}
}

func (us *Dijkstra) Preallocate() {
	n := us.graph.NumberOfVertices()
	us.dist = make([]float64, n)
	us.parent = make([]da.Index, n)
	us.nodes = make([]*da.PriorityQueueNode[da.Index], n)
	us.settled = make([]bool, n)
	for i := range us.dist {
		us.dist[i] = pkg.INF_WEIGHT
		us.parent[i] = noParent
	}
	us.pq.Clear()
	us.numSettledNodes = 0
}

// ShortestPaths. single-source shortest paths, from s to all other vertices. unreachable vertices get pkg.INF_WEIGHT.
func (us *Dijkstra) ShortestPaths(ctx context.Context, s da.Index) ([]float64, error) {
	if !us.graph.IsValidVertex(s) {
		return nil, util.WrapErrorf(ErrInvalidVertex, util.ErrBadParamInput, "vertex %d out of range", s)
	}
	us.Preallocate()

	us.dist[s] = 0
	us.nodes[s] = da.NewPriorityQueueNodeWithTieBreak(0, uint32(s), s)
	us.pq.Insert(us.nodes[s])

	for !us.pq.IsEmpty() {
		if util.StopConcurrentOperation(ctx) {
			return nil, ctx.Err()
		}
		node, _ := us.pq.ExtractMin()
		u := node.GetItem()
		us.settled[u] = true
		us.numSettledNodes++

		us.graph.ForOutEdgesOf(u, func(e *da.Edge) bool {
			if e.IsShortcut() {
				return true
			}
			x := e.GetHead()
			if us.settled[x] {
				return true
			}
			nd := us.dist[u] + e.GetWeight()
			if nd >= us.dist[x] {
				return true
			}
			us.dist[x] = nd
			us.parent[x] = e.GetEdgeId()
			if us.nodes[x] == nil {
				us.nodes[x] = da.NewPriorityQueueNodeWithTieBreak(nd, uint32(x), x)
				us.pq.Insert(us.nodes[x])
			} else {
				_ = us.pq.DecreaseKey(us.nodes[x], nd)
			}
			return true
		})
	}

	res := make([]float64, len(us.dist))
	copy(res, us.dist)
	return res, nil
}

// PathTo gives the original edge ids of the tree path s..t from the last ShortestPaths run.
func (us *Dijkstra) PathTo(t da.Index) ([]da.Index, bool) {
	if int(t) >= len(us.dist) || us.dist[t] >= pkg.INF_WEIGHT {
		return nil, false
	}
	edges := make([]da.Index, 0)
	for cur := t; us.parent[cur] != noParent; {
		e := us.graph.GetEdge(us.parent[cur])
		edges = append(edges, e.GetEdgeId())
		cur = e.GetTail()
	}
	return util.ReverseG(edges), true
}

func (us *Dijkstra) GetNumSettledVertices() int {
	return us.numSettledNodes
}
