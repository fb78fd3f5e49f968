package routing

import (
	"context"

	"github.com/lintang-b-s/navigatorx-ch/pkg"
	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
)

type direction uint8

const (
	forwardDir direction = iota
	backwardDir
)

/*
CHBidirectionalSearch. bidirectional upward dijkstra over the contraction hierarchy.

forward search dari s hanya relax edge (u,x) dengan x uncontracted atau level(x) >= level(u), backward search dari t
sama tapi lewat in-edges. vertex uncontracted (core) ada di atas semua level, di dalam core search jadi dijkstra biasa.

mu = bobot meeting terbaik, di-update saat settle dan saat relax vertex yang sudah punya label di arah lain.
satu arah berhenti kalau min key di heap-nya >= mu (atau > maxWeight). ini tidak lebih awal dari aturan
minF + minB >= mu, dan untuk upward search aturan jumlah itu tidak cukup: shortest path bisa bertemu di vertex yang
key-nya masih besar di salah satu arah.

[1] Robert Geisberger, Peter Sanders, Dominik Schultes, and Daniel Delling. "Contraction Hierarchies: Faster and
Simpler Hierarchical Routing in Road Networks". WEA 2008.
[2] I. Pohl. Bi-directional Search. In Machine Intelligence, volume 6, pages 124–140. Edinburgh Univ. Press, 1971.

state per query, satu CHBidirectionalSearch tidak boleh dipakai oleh dua goroutine bersamaan.
*/
type CHBidirectionalSearch struct {
	engine *CHRoutingEngine

	info [2]map[da.Index]*VertexInfo
	pq   [2]*da.MinHeap[da.Index]

	mu          float64
	meeting     da.Index
	numSettled  int
	maxWeight   float64
	hasMeetings bool
}

func NewCHBidirectionalSearch(engine *CHRoutingEngine) *CHBidirectionalSearch {
	return &CHBidirectionalSearch{
		engine: engine,
		info:   [2]map[da.Index]*VertexInfo{make(map[da.Index]*VertexInfo), make(map[da.Index]*VertexInfo)},
		pq:     [2]*da.MinHeap[da.Index]{da.NewFourAryHeap[da.Index](), da.NewFourAryHeap[da.Index]()},
	}
}

func (bs *CHBidirectionalSearch) GetNumSettledVertices() int {
	return bs.numSettled
}

func (bs *CHBidirectionalSearch) reset(maxWeight float64) {
	for d := range bs.info {
		clear(bs.info[d])
		bs.pq[d].Clear()
	}
	bs.mu = pkg.INF_WEIGHT
	bs.meeting = 0
	bs.hasMeetings = false
	bs.numSettled = 0
	if maxWeight <= 0 {
		maxWeight = pkg.INF_WEIGHT
	}
	bs.maxWeight = maxWeight
}

// Calculate returns the packed s..t path. consecutive vertices of the path may be joined by shortcuts.
func (bs *CHBidirectionalSearch) Calculate(ctx context.Context, s, t da.Index, maxWeight float64) (*da.CHPathSegment, bool, error) {
	found, err := bs.search(ctx, s, t, maxWeight)
	if err != nil || !found {
		return nil, found, err
	}

	fSeg := bs.info[forwardDir][bs.meeting].GetSegment()
	bSeg := bs.info[backwardDir][bs.meeting].GetSegment()
	return bSeg.Reverse().ConcatenateAfter(fSeg), true, nil
}

// CalculateWeight like Calculate without building the path.
func (bs *CHBidirectionalSearch) CalculateWeight(ctx context.Context, s, t da.Index, maxWeight float64) (float64, bool, error) {
	found, err := bs.search(ctx, s, t, maxWeight)
	if err != nil || !found {
		return pkg.INF_WEIGHT, found, err
	}
	return bs.mu, true, nil
}

// ShortestPath returns the path on original edges.
func (bs *CHBidirectionalSearch) ShortestPath(ctx context.Context, s, t da.Index, maxWeight float64) (*Route, bool, error) {
	packed, found, err := bs.Calculate(ctx, s, t, maxWeight)
	if err != nil || !found {
		return nil, found, err
	}
	pu := NewPathUnpacker(bs.engine)
	route, err := pu.UnpackPath(packed)
	if err != nil {
		return nil, false, err
	}
	return route, true, nil
}

func (bs *CHBidirectionalSearch) search(ctx context.Context, s, t da.Index, maxWeight float64) (bool, error) {
	if err := bs.engine.checkVertex(s); err != nil {
		return false, err
	}
	if err := bs.engine.checkVertex(t); err != nil {
		return false, err
	}
	bs.reset(maxWeight)

	bs.label(forwardDir, s, da.NewCHPathSegment(s))
	bs.label(backwardDir, t, da.NewCHPathSegment(t))

	for {
		if util.StopConcurrentOperation(ctx) {
			return false, ctx.Err()
		}

		fMin, bMin := bs.pq[forwardDir].GetMinrank(), bs.pq[backwardDir].GetMinrank()
		fDone := bs.pq[forwardDir].IsEmpty() || fMin >= bs.mu || fMin > bs.maxWeight
		bDone := bs.pq[backwardDir].IsEmpty() || bMin >= bs.mu || bMin > bs.maxWeight
		if fDone && bDone {
			break
		}

		if !fDone && (bDone || fMin <= bMin) {
			bs.settle(forwardDir)
		} else {
			bs.settle(backwardDir)
		}
	}

	if !bs.hasMeetings || bs.mu > bs.maxWeight {
		return false, nil
	}
	return true, nil
}

// label gives x a (better) path in direction dir and checks the other direction for a meeting.
func (bs *CHBidirectionalSearch) label(dir direction, x da.Index, seg *da.CHPathSegment) {
	info, ok := bs.info[dir][x]
	if ok {
		info.segment = seg
		_ = bs.pq[dir].DecreaseKey(info.heapNode, seg.GetWeight())
	} else {
		node := da.NewPriorityQueueNodeWithTieBreak(seg.GetWeight(), uint32(x), x)
		bs.info[dir][x] = NewVertexInfo(seg, node)
		bs.pq[dir].Insert(node)
	}

	if other, ok := bs.info[1-dir][x]; ok {
		bs.updateMeeting(x, seg.GetWeight()+other.GetTravelTime())
	}
}

func (bs *CHBidirectionalSearch) updateMeeting(x da.Index, weight float64) {
	if weight < bs.mu || (weight == bs.mu && bs.hasMeetings && x < bs.meeting) {
		bs.mu = weight
		bs.meeting = x
		bs.hasMeetings = true
	}
}

func (bs *CHBidirectionalSearch) settle(dir direction) {
	node, err := bs.pq[dir].ExtractMin()
	if err != nil {
		return
	}
	u := node.GetItem()
	uInfo := bs.info[dir][u]
	uInfo.settled = true
	bs.numSettled++

	if other, ok := bs.info[1-dir][u]; ok {
		bs.updateMeeting(u, uInfo.GetTravelTime()+other.GetTravelTime())
	}

	g := bs.engine.graph
	relax := func(x da.Index, w float64) {
		if !g.IsUpward(u, x) {
			return
		}
		nd := uInfo.GetTravelTime() + w
		if nd > bs.maxWeight {
			return
		}
		if xInfo, ok := bs.info[dir][x]; ok && (xInfo.IsSettled() || nd >= xInfo.GetTravelTime()) {
			return
		}
		bs.label(dir, x, uInfo.GetSegment().Extend(x, w))
	}

	if dir == forwardDir {
		g.ForOutEdgesOf(u, func(e *da.Edge) bool {
			relax(e.GetHead(), e.GetWeight())
			return true
		})
	} else {
		g.ForInEdgesOf(u, func(e *da.Edge) bool {
			relax(e.GetTail(), e.GetWeight())
			return true
		})
	}
}
