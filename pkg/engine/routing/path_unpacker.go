package routing

import (
	"fmt"

	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
)

// PUCacheKey. shortcut tail and head, the cheapest edge between them is the one that is unpacked.
type PUCacheKey struct {
	from da.Index
	to   da.Index
}

func NewPUCacheKey(from, to da.Index) PUCacheKey {
	return PUCacheKey{from, to}
}

type PathUnpacker struct {
	engine *CHRoutingEngine
}

func NewPathUnpacker(engine *CHRoutingEngine) *PathUnpacker {
	return &PathUnpacker{engine: engine}
}

type unpackItem struct {
	edge  *da.Edge
	depth int
}

/*
UnpackPath. setiap pasangan vertex berurutan (a,b) di packed path diganti dengan edge termurah a->b. shortcut (a,b)
dengan contracted vertex v di-expand jadi edge termurah (a,v) dan (v,b), terus sampai semua edge adalah edge asli.
pakai stack (bukan rekursi) dan dibatasi maxUnpackDepth, kalau lebih berarti ada cycle di shortcut (graph rusak).

hasil unpack per shortcut disimpan di lru cache (key: tail, head), jadi query berikutnya yang lewat shortcut yang
sama tidak perlu expand lagi.
*/
func (pu *PathUnpacker) UnpackPath(packed *da.CHPathSegment) (*Route, error) {
	g := pu.engine.graph
	vertices := packed.Vertices()

	first := packed.First()
	path := da.NewCHPathSegment(first.GetVertex())
	edges := make([]da.Index, 0, len(vertices))
	dist := 0.0

	for i := 0; i+1 < len(vertices); i++ {
		a, b := vertices[i], vertices[i+1]
		e, ok := g.FindEdge(a, b)
		if !ok {
			return nil, fmt.Errorf("%w: packed path uses missing edge %d->%d", da.ErrGraphIntegrity, a, b)
		}
		unpacked, err := pu.unpackEdge(e)
		if err != nil {
			return nil, err
		}
		for _, eId := range unpacked {
			oe := g.GetEdge(eId)
			path = path.Extend(oe.GetHead(), oe.GetWeight())
			dist += oe.GetLength()
		}
		edges = append(edges, unpacked...)
	}

	return &Route{packed: packed, path: path, edges: edges, dist: dist}, nil
}

// unpackEdge returns the original edge ids that e stands for, in path order.
func (pu *PathUnpacker) unpackEdge(e *da.Edge) ([]da.Index, error) {
	if !e.IsShortcut() {
		return []da.Index{e.GetEdgeId()}, nil
	}

	key := NewPUCacheKey(e.GetTail(), e.GetHead())
	if pu.engine.puCache != nil {
		if cached, ok := pu.engine.puCache.Get(key); ok {
			return cached, nil
		}
	}

	g := pu.engine.graph
	res := make([]da.Index, 0, 8)
	stack := []unpackItem{{edge: e}}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !item.edge.IsShortcut() {
			res = append(res, item.edge.GetEdgeId())
			continue
		}
		if item.depth >= pu.engine.maxUnpackDepth {
			return nil, fmt.Errorf("%w: shortcut %d->%d nests deeper than %d", da.ErrGraphIntegrity,
				e.GetTail(), e.GetHead(), pu.engine.maxUnpackDepth)
		}

		via := da.Index(item.edge.GetContractedVertex())
		first, ok := g.FindEdge(item.edge.GetTail(), via)
		if !ok {
			return nil, fmt.Errorf("%w: shortcut %d->%d via %d has no first half", da.ErrGraphIntegrity,
				item.edge.GetTail(), item.edge.GetHead(), via)
		}
		second, ok := g.FindEdge(via, item.edge.GetHead())
		if !ok {
			return nil, fmt.Errorf("%w: shortcut %d->%d via %d has no second half", da.ErrGraphIntegrity,
				item.edge.GetTail(), item.edge.GetHead(), via)
		}
		// second half is popped after the first
		stack = append(stack, unpackItem{edge: second, depth: item.depth + 1}, unpackItem{edge: first, depth: item.depth + 1})
	}

	if pu.engine.puCache != nil {
		pu.engine.puCache.Add(key, res)
	}
	return res, nil
}
