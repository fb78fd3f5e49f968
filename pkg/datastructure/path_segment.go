package datastructure

// CHPathSegment. immutable reverse linked path: the segment ends at vertex, from points at the previous vertex
// of the path, nil at the first one. weight is the cumulative weight from the first vertex. relaxing an edge
// allocates one segment and shares the whole prefix.
type CHPathSegment struct {
	vertex Index
	weight float64
	from   *CHPathSegment
}

func NewCHPathSegment(vertex Index) *CHPathSegment {
	return &CHPathSegment{vertex: vertex}
}

// Extend returns a new segment ending at vertex, edgeWeight after the end of p.
func (p *CHPathSegment) Extend(vertex Index, edgeWeight float64) *CHPathSegment {
	return &CHPathSegment{vertex: vertex, weight: p.weight + edgeWeight, from: p}
}

func (p *CHPathSegment) GetVertex() Index {
	return p.vertex
}

func (p *CHPathSegment) GetWeight() float64 {
	return p.weight
}

func (p *CHPathSegment) GetFrom() *CHPathSegment {
	return p.from
}

// First. first segment of the chain.
func (p *CHPathSegment) First() *CHPathSegment {
	cur := p
	for cur.from != nil {
		cur = cur.from
	}
	return cur
}

// Length. number of vertices on the path, a single vertex path has length 1.
func (p *CHPathSegment) Length() int {
	n := 0
	for cur := p; cur != nil; cur = cur.from {
		n++
	}
	return n
}

func (p *CHPathSegment) chain() []*CHPathSegment {
	segs := make([]*CHPathSegment, 0, 16)
	for cur := p; cur != nil; cur = cur.from {
		segs = append(segs, cur)
	}
	// segs[0] is the end of the path
	return segs
}

// Reverse returns the same path traversed from its end to its start, the incremental weights of the edges are kept.
func (p *CHPathSegment) Reverse() *CHPathSegment {
	segs := p.chain()
	total := p.weight
	rev := NewCHPathSegment(segs[0].vertex)
	for i := 1; i < len(segs); i++ {
		// distance from the old end to segs[i]
		rev = &CHPathSegment{vertex: segs[i].vertex, weight: total - segs[i].weight, from: rev}
	}
	return rev
}

// ConcatenateAfter appends p after other. other must end at the vertex p starts with. the result starts where
// other starts and weighs p.weight + other.weight when p starts at weight 0.
func (p *CHPathSegment) ConcatenateAfter(other *CHPathSegment) *CHPathSegment {
	segs := p.chain()
	res := other
	base := other.weight - segs[len(segs)-1].weight
	for i := len(segs) - 2; i >= 0; i-- {
		res = &CHPathSegment{vertex: segs[i].vertex, weight: base + segs[i].weight, from: res}
	}
	return res
}

// Vertices. vertices from the first to the last.
func (p *CHPathSegment) Vertices() []Index {
	segs := p.chain()
	vs := make([]Index, len(segs))
	for i, s := range segs {
		vs[len(segs)-1-i] = s.vertex
	}
	return vs
}

// Weights. cumulative weights aligned with Vertices.
func (p *CHPathSegment) Weights() []float64 {
	segs := p.chain()
	ws := make([]float64, len(segs))
	for i, s := range segs {
		ws[len(segs)-1-i] = s.weight
	}
	return ws
}

// Equal. same vertex sequence and cumulative weights within eps.
func (p *CHPathSegment) Equal(other *CHPathSegment, eps float64) bool {
	a, b := p, other
	for a != nil && b != nil {
		if a.vertex != b.vertex {
			return false
		}
		d := a.weight - b.weight
		if d > eps || d < -eps {
			return false
		}
		a, b = a.from, b.from
	}
	return a == nil && b == nil
}
