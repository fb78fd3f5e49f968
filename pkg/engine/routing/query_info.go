package routing

import (
	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
)

// VertexInfo. label of a vertex in one search direction.
type VertexInfo struct {
	segment  *da.CHPathSegment // path from the search root to this vertex
	heapNode *da.PriorityQueueNode[da.Index]
	settled  bool
}

func NewVertexInfo(segment *da.CHPathSegment, heapNode *da.PriorityQueueNode[da.Index]) *VertexInfo {
	return &VertexInfo{segment: segment, heapNode: heapNode}
}

func (vi *VertexInfo) GetTravelTime() float64 {
	return vi.segment.GetWeight()
}

func (vi *VertexInfo) GetSegment() *da.CHPathSegment {
	return vi.segment
}

func (vi *VertexInfo) IsSettled() bool {
	return vi.settled
}

// Route. result of a point to point query.
type Route struct {
	packed *da.CHPathSegment // vertices of the hierarchy path, consecutive pairs may be shortcuts
	path   *da.CHPathSegment // unpacked path on original edges
	edges  []da.Index        // original edge ids along path
	dist   float64           // meter
}

func (r *Route) GetWeight() float64 {
	return r.path.GetWeight()
}

func (r *Route) GetPackedPath() *da.CHPathSegment {
	return r.packed
}

func (r *Route) GetPath() *da.CHPathSegment {
	return r.path
}

func (r *Route) GetVertices() []da.Index {
	return r.path.Vertices()
}

func (r *Route) GetEdges() []da.Index {
	return r.edges
}

func (r *Route) GetDistance() float64 {
	return r.dist
}
