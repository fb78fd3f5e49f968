package contractor

import (
	"github.com/lintang-b-s/navigatorx-ch/pkg"
	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
)

// WitnessCalculator answers whether a path source -> target that avoids one vertex and costs at most a limit
// exists within a hop budget.
type WitnessCalculator interface {
	HasWitness(source, target da.Index, weightLimit float64, hopLimit int, vertexToAvoid da.Index) (bool, error)
	FindWitnesses(source da.Index, targets []da.Index, weightLimits []float64, hopLimit int,
		vertexToAvoid da.Index) ([]bool, error)
}

type WitnessOption func(*DijkstraWitnessCalculator)

// WithContractedVertices lets the search relax into already contracted vertices.
func WithContractedVertices() WitnessOption {
	return func(w *DijkstraWitnessCalculator) {
		w.allowContracted = true
	}
}

func WithMaxSettledNodes(maxSettledNodes int) WitnessOption {
	return func(w *DijkstraWitnessCalculator) {
		w.maxSettledNodes = maxSettledNodes
	}
}

/*
DijkstraWitnessCalculator
misal kita kontraksi vertex v (vertexToAvoid). untuk setiap in-neighbour u dari v kita cari path dari u ke semua
out-neighbour w dari v yang tidak lewat v, dengan cost <= weight(u,v) + weight(v,w). kalau ketemu (witness), shortcut
(u,w) tidak perlu ditambahkan.

search dihentikan kalau:
  - semua target sudah punya path dengan cost <= limitnya
  - min rank di heap > limit terbesar dari target yang belum resolved
  - jumlah settled vertex sudah maxSettledNodes
  - semua path aktif sudah mencapai hopLimit

search yang kena budget dianggap "tidak ada witness", jadi shortcut tetap ditambahkan.

state search di-reuse antar pemanggilan, jadi satu calculator tidak boleh dipakai oleh dua goroutine bersamaan.
*/
type DijkstraWitnessCalculator struct {
	graph           *da.Graph
	maxSettledNodes int
	allowContracted bool

	dist      []float64
	hops      []int
	heapNodes []*da.PriorityQueueNode[da.Index]
	touched   []da.Index
	pq        *da.MinHeap[da.Index]

	targetIdx map[da.Index][]int
}

func NewDijkstraWitnessCalculator(graph *da.Graph, opts ...WitnessOption) *DijkstraWitnessCalculator {
	n := graph.NumberOfVertices()
	w := &DijkstraWitnessCalculator{
		graph:           graph,
		maxSettledNodes: pkg.DEFAULT_WITNESS_MAX_SETTLED,
		dist:            make([]float64, n),
		hops:            make([]int, n),
		heapNodes:       make([]*da.PriorityQueueNode[da.Index], n),
		touched:         make([]da.Index, 0, 64),
		pq:              da.NewFourAryHeap[da.Index](),
		targetIdx:       make(map[da.Index][]int),
	}
	for i := range w.dist {
		w.dist[i] = pkg.INF_WEIGHT
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *DijkstraWitnessCalculator) HasWitness(source, target da.Index, weightLimit float64, hopLimit int,
	vertexToAvoid da.Index) (bool, error) {
	found, err := w.FindWitnesses(source, []da.Index{target}, []float64{weightLimit}, hopLimit, vertexToAvoid)
	if err != nil {
		return false, err
	}
	return found[0], nil
}

// FindWitnesses runs one search from source for every target. found[i] is true if a witness to targets[i] with
// cost <= weightLimits[i] exists.
func (w *DijkstraWitnessCalculator) FindWitnesses(source da.Index, targets []da.Index, weightLimits []float64,
	hopLimit int, vertexToAvoid da.Index) ([]bool, error) {
	if len(targets) != len(weightLimits) {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "got %d targets but %d weight limits",
			len(targets), len(weightLimits))
	}
	if !w.graph.IsValidVertex(source) || !w.graph.IsValidVertex(vertexToAvoid) {
		return nil, util.WrapErrorf(da.ErrVertexNotFound, util.ErrBadParamInput,
			"witness search from %d avoiding %d: vertex out of range", source, vertexToAvoid)
	}

	found := make([]bool, len(targets))
	if len(targets) == 0 {
		return found, nil
	}

	for k := range w.targetIdx {
		delete(w.targetIdx, k)
	}
	open := 0
	for i, t := range targets {
		if !w.graph.IsValidVertex(t) {
			return nil, util.WrapErrorf(da.ErrVertexNotFound, util.ErrBadParamInput,
				"witness search target %d out of range", t)
		}
		if t == vertexToAvoid {
			continue
		}
		w.targetIdx[t] = append(w.targetIdx[t], i)
		open++
	}
	if open == 0 {
		return found, nil
	}
	maxLimit := w.maxOpenLimit(weightLimits, found)

	defer w.reset()

	w.label(source, 0, 0)
	if w.resolve(source, weightLimits, found, &open) {
		return found, nil
	}

	settled := 0
	for !w.pq.IsEmpty() {
		if w.pq.GetMinrank() > maxLimit {
			break
		}
		node, _ := w.pq.ExtractMin()
		u := node.GetItem()

		settled++
		if settled > w.maxSettledNodes {
			break
		}

		if w.hops[u] >= hopLimit {
			continue
		}

		du := w.dist[u]
		resolvedAll := false
		w.graph.ForOutEdgesOf(u, func(e *da.Edge) bool {
			x := e.GetHead()
			if x == vertexToAvoid || (!w.allowContracted && w.graph.IsContracted(x)) {
				return true
			}
			nd := du + e.GetWeight()
			if nd > maxLimit || nd >= w.dist[x] {
				return true
			}
			w.label(x, nd, w.hops[u]+1)

			if _, isTarget := w.targetIdx[x]; isTarget {
				before := open
				if w.resolve(x, weightLimits, found, &open) {
					resolvedAll = true
					return false
				}
				if open != before {
					maxLimit = w.maxOpenLimit(weightLimits, found)
				}
			}
			return true
		})
		if resolvedAll {
			break
		}
	}

	return found, nil
}

// label sets a tentative distance for x and inserts or decreases it in the heap.
func (w *DijkstraWitnessCalculator) label(x da.Index, d float64, hops int) {
	if w.dist[x] == pkg.INF_WEIGHT && w.heapNodes[x] == nil {
		w.touched = append(w.touched, x)
	}
	w.dist[x] = d
	w.hops[x] = hops

	node := w.heapNodes[x]
	if node != nil && node.InHeap() {
		_ = w.pq.DecreaseKey(node, d)
		return
	}
	node = da.NewPriorityQueueNodeWithTieBreak(d, uint32(x), x)
	w.heapNodes[x] = node
	w.pq.Insert(node)
}

// resolve marks every target equal to x whose limit is satisfied. returns true if no target is left open.
func (w *DijkstraWitnessCalculator) resolve(x da.Index, weightLimits []float64, found []bool, open *int) bool {
	for _, i := range w.targetIdx[x] {
		if !found[i] && w.dist[x] <= weightLimits[i] {
			found[i] = true
			*open--
		}
	}
	return *open == 0
}

func (w *DijkstraWitnessCalculator) maxOpenLimit(weightLimits []float64, found []bool) float64 {
	maxLimit := -1.0
	for _, idxs := range w.targetIdx {
		for _, i := range idxs {
			if !found[i] && weightLimits[i] > maxLimit {
				maxLimit = weightLimits[i]
			}
		}
	}
	return maxLimit
}

func (w *DijkstraWitnessCalculator) reset() {
	for _, v := range w.touched {
		w.dist[v] = pkg.INF_WEIGHT
		w.hops[v] = 0
		w.heapNodes[v] = nil
	}
	w.touched = w.touched[:0]
	w.pq.Clear()
}
