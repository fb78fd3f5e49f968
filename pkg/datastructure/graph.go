package datastructure

import (
	"errors"
	"fmt"

	"github.com/lintang-b-s/navigatorx-ch/pkg"
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
)

type Index uint32

var (
	ErrVertexNotFound = errors.New("vertex not found")
	ErrEdgeNotFound   = errors.New("edge not found")
	ErrGraphIntegrity = errors.New("graph integrity violated")
)

type Vertex struct {
	lat   float64
	lon   float64
	id    Index
	level int // 0 = not contracted yet, otherwise 1-based contraction order
}

func NewVertex(lat, lon float64, id Index) *Vertex {
	return &Vertex{
		lat: lat,
		lon: lon,
		id:  id,
	}
}

func (v *Vertex) GetID() Index {
	return v.id
}

func (v *Vertex) GetLat() float64 {
	return v.lat
}

func (v *Vertex) GetLon() float64 {
	return v.lon
}

func (v *Vertex) GetLevel() int {
	return v.level
}

// Edge. directed edge tail -> head. shortcuts have contractedVertex >= 0.
type Edge struct {
	edgeId           Index
	tail, head       Index
	weight           float64
	dist             float64 // meter, 0 for shortcuts
	contractedVertex int32
}

func NewEdge(edgeId, tail, head Index, weight, dist float64, contractedVertex int32) *Edge {
	return &Edge{
		edgeId:           edgeId,
		tail:             tail,
		head:             head,
		weight:           weight,
		dist:             dist,
		contractedVertex: contractedVertex,
	}
}

func (e *Edge) GetEdgeId() Index {
	return e.edgeId
}

func (e *Edge) GetTail() Index {
	return e.tail
}

func (e *Edge) GetHead() Index {
	return e.head
}

func (e *Edge) GetWeight() float64 {
	return e.weight
}

func (e *Edge) GetLength() float64 {
	return e.dist
}

func (e *Edge) GetContractedVertex() int32 {
	return e.contractedVertex
}

func (e *Edge) IsShortcut() bool {
	return e.contractedVertex != pkg.NO_CONTRACTED_VERTEX
}

type EdgeDirection uint8

const (
	FORWARD  EdgeDirection = 1
	BACKWARD EdgeDirection = 2
	BOTH     EdgeDirection = FORWARD | BACKWARD
)

func (d EdgeDirection) IsForward() bool {
	return d&FORWARD != 0
}

func (d EdgeDirection) IsBackward() bool {
	return d&BACKWARD != 0
}

// Neighbour. adjacency entry as seen from one vertex.
type Neighbour struct {
	vertex           Index
	weight           float64
	direction        EdgeDirection
	contractedVertex int32
	edgeId           Index
}

func (n Neighbour) GetVertex() Index {
	return n.vertex
}

func (n Neighbour) GetWeight() float64 {
	return n.weight
}

func (n Neighbour) GetDirection() EdgeDirection {
	return n.direction
}

func (n Neighbour) GetContractedVertex() int32 {
	return n.contractedVertex
}

func (n Neighbour) GetEdgeId() Index {
	return n.edgeId
}

// Graph. mutable adjacency store. every directed edge lives once in the edge arena and is referenced from
// outEdges[tail] and inEdges[head].
type Graph struct {
	vertices     []*Vertex
	edges        []*Edge
	outEdges     [][]Index
	inEdges      [][]Index
	numShortcuts int
	sccs         []Index // strongly connected component id per vertex, filled by RunKosaraju
}

func NewGraph(vertices []*Vertex) *Graph {
	n := len(vertices)
	return &Graph{
		vertices: vertices,
		edges:    make([]*Edge, 0, 2*n),
		outEdges: make([][]Index, n),
		inEdges:  make([][]Index, n),
	}
}

func (g *Graph) NumberOfVertices() int {
	return len(g.vertices)
}

// NumberOfEdges. number of edges linked into the adjacency lists, shortcuts included.
func (g *Graph) NumberOfEdges() int {
	m := 0
	for _, out := range g.outEdges {
		m += len(out)
	}
	return m
}

func (g *Graph) NumberOfShortcuts() int {
	return g.numShortcuts
}

func (g *Graph) IsValidVertex(v Index) bool {
	return int(v) < len(g.vertices)
}

func (g *Graph) checkVertex(v Index) error {
	if !g.IsValidVertex(v) {
		return util.WrapErrorf(ErrVertexNotFound, util.ErrBadParamInput, "vertex %d out of range [0, %d)", v, len(g.vertices))
	}
	return nil
}

func (g *Graph) GetVertex(v Index) *Vertex {
	return g.vertices[v]
}

func (g *Graph) GetVertexCoordinate(v Index) (float64, float64) {
	return g.vertices[v].lat, g.vertices[v].lon
}

func (g *Graph) GetVertices() []*Vertex {
	return g.vertices
}

func (g *Graph) GetEdge(edgeId Index) *Edge {
	return g.edges[edgeId]
}

func (g *Graph) GetVertexLevel(v Index) int {
	return g.vertices[v].level
}

func (g *Graph) SetVertexLevel(v Index, level int) error {
	if err := g.checkVertex(v); err != nil {
		return err
	}
	g.vertices[v].level = level
	return nil
}

func (g *Graph) IsContracted(v Index) bool {
	return g.vertices[v].level != 0
}

// IsUpward. true if a query may relax from u to x: x is uncontracted (core) or both are contracted and x was contracted later.
func (g *Graph) IsUpward(u, x Index) bool {
	lx := g.vertices[x].level
	if lx == 0 {
		return true
	}
	lu := g.vertices[u].level
	return lu != 0 && lx >= lu
}

// AddEdge appends a directed edge from -> to. parallel edges are allowed.
func (g *Graph) AddEdge(from, to Index, weight float64, contractedVertex int32) (Index, error) {
	return g.addEdge(from, to, weight, 0, contractedVertex)
}

// AddEdgeWithLength like AddEdge but also stores the road segment length in meters.
func (g *Graph) AddEdgeWithLength(from, to Index, weight, dist float64) (Index, error) {
	return g.addEdge(from, to, weight, dist, pkg.NO_CONTRACTED_VERTEX)
}

func (g *Graph) addEdge(from, to Index, weight, dist float64, contractedVertex int32) (Index, error) {
	if err := g.checkVertex(from); err != nil {
		return 0, err
	}
	if err := g.checkVertex(to); err != nil {
		return 0, err
	}
	if weight < 0 {
		return 0, util.WrapErrorf(ErrGraphIntegrity, util.ErrBadParamInput, "negative weight %f on edge %d->%d", weight, from, to)
	}
	if contractedVertex != pkg.NO_CONTRACTED_VERTEX && (contractedVertex < 0 || int(contractedVertex) >= len(g.vertices)) {
		return 0, util.WrapErrorf(ErrVertexNotFound, util.ErrBadParamInput, "contracted vertex %d out of range", contractedVertex)
	}

	id := Index(len(g.edges))
	g.edges = append(g.edges, NewEdge(id, from, to, weight, dist, contractedVertex))
	g.outEdges[from] = append(g.outEdges[from], id)
	g.inEdges[to] = append(g.inEdges[to], id)
	if contractedVertex != pkg.NO_CONTRACTED_VERTEX {
		g.numShortcuts++
	}
	return id, nil
}

// RemoveEdge unlinks every from -> to edge from the adjacency lists. the records stay in the arena.
func (g *Graph) RemoveEdge(from, to Index) (int, error) {
	if err := g.checkVertex(from); err != nil {
		return 0, err
	}
	if err := g.checkVertex(to); err != nil {
		return 0, err
	}

	removed := 0
	out := g.outEdges[from][:0]
	for _, eId := range g.outEdges[from] {
		if g.edges[eId].head == to {
			removed++
			if g.edges[eId].IsShortcut() {
				g.numShortcuts--
			}
			continue
		}
		out = append(out, eId)
	}
	g.outEdges[from] = out

	in := g.inEdges[to][:0]
	for _, eId := range g.inEdges[to] {
		if g.edges[eId].tail == from {
			continue
		}
		in = append(in, eId)
	}
	g.inEdges[to] = in
	return removed, nil
}

// FindEdge returns the cheapest edge from -> to.
func (g *Graph) FindEdge(from, to Index) (*Edge, bool) {
	var best *Edge
	for _, eId := range g.outEdges[from] {
		e := g.edges[eId]
		if e.head != to {
			continue
		}
		if best == nil || e.weight < best.weight {
			best = e
		}
	}
	return best, best != nil
}

type ShortcutStatus uint8

const (
	SHORTCUT_UNCHANGED ShortcutStatus = iota
	SHORTCUT_ADDED
	SHORTCUT_UPDATED
)

// AddOrUpdateShortcut inserts the shortcut from -> to via `via` when it is strictly cheaper than every existing
// from -> to edge. an existing shortcut record is rewritten in place, original edges are never touched, the new
// shortcut is stored next to them.
func (g *Graph) AddOrUpdateShortcut(from, to Index, weight float64, via Index) (ShortcutStatus, error) {
	if err := g.checkVertex(via); err != nil {
		return SHORTCUT_UNCHANGED, err
	}
	if existing, ok := g.FindEdge(from, to); ok && weight >= existing.weight {
		return SHORTCUT_UNCHANGED, nil
	}

	if sc, ok := g.findShortcut(from, to); ok {
		sc.weight = weight
		sc.contractedVertex = int32(via)
		return SHORTCUT_UPDATED, nil
	}
	if _, err := g.AddEdge(from, to, weight, int32(via)); err != nil {
		return SHORTCUT_UNCHANGED, err
	}
	return SHORTCUT_ADDED, nil
}

// findShortcut. cheapest shortcut record from -> to, original edges skipped.
func (g *Graph) findShortcut(from, to Index) (*Edge, bool) {
	var best *Edge
	for _, eId := range g.outEdges[from] {
		e := g.edges[eId]
		if e.head != to || !e.IsShortcut() {
			continue
		}
		if best == nil || e.weight < best.weight {
			best = e
		}
	}
	return best, best != nil
}

// ForOutEdgesOf iterate over outgoing edges of v. return false from handle to stop.
func (g *Graph) ForOutEdgesOf(v Index, handle func(e *Edge) bool) {
	for _, eId := range g.outEdges[v] {
		if !handle(g.edges[eId]) {
			return
		}
	}
}

// ForInEdgesOf iterate over incoming edges of v. return false from handle to stop.
func (g *Graph) ForInEdgesOf(v Index, handle func(e *Edge) bool) {
	for _, eId := range g.inEdges[v] {
		if !handle(g.edges[eId]) {
			return
		}
	}
}

func (g *Graph) OutDegree(v Index) int {
	return len(g.outEdges[v])
}

func (g *Graph) InDegree(v Index) int {
	return len(g.inEdges[v])
}

// GetForwardNeighbours. edges leaving v.
func (g *Graph) GetForwardNeighbours(v Index) []Neighbour {
	res := make([]Neighbour, 0, len(g.outEdges[v]))
	for _, eId := range g.outEdges[v] {
		e := g.edges[eId]
		res = append(res, Neighbour{vertex: e.head, weight: e.weight, direction: FORWARD,
			contractedVertex: e.contractedVertex, edgeId: e.edgeId})
	}
	return res
}

// GetBackwardNeighbours. edges arriving at v, neighbour is the tail.
func (g *Graph) GetBackwardNeighbours(v Index) []Neighbour {
	res := make([]Neighbour, 0, len(g.inEdges[v]))
	for _, eId := range g.inEdges[v] {
		e := g.edges[eId]
		res = append(res, Neighbour{vertex: e.tail, weight: e.weight, direction: BACKWARD,
			contractedVertex: e.contractedVertex, edgeId: e.edgeId})
	}
	return res
}

// GetNeighbours merges forward and backward entries of the same neighbour into one BOTH entry when weight and
// contracted vertex agree.
func (g *Graph) GetNeighbours(v Index) []Neighbour {
	fw := g.GetForwardNeighbours(v)
	bw := g.GetBackwardNeighbours(v)
	res := make([]Neighbour, 0, len(fw)+len(bw))

	merged := make([]bool, len(bw))
	for _, f := range fw {
		for j, b := range bw {
			if merged[j] || b.vertex != f.vertex || b.weight != f.weight || b.contractedVertex != f.contractedVertex {
				continue
			}
			merged[j] = true
			f.direction = BOTH
			break
		}
		res = append(res, f)
	}
	for j, b := range bw {
		if !merged[j] {
			res = append(res, b)
		}
	}
	return res
}

// Validate checks that adjacency lists and the edge arena agree.
func (g *Graph) Validate() error {
	n := Index(len(g.vertices))
	linkedOut := make([]int, len(g.edges))
	linkedIn := make([]int, len(g.edges))
	for v := Index(0); v < n; v++ {
		if g.vertices[v].id != v {
			return fmt.Errorf("%w: vertex at position %d has id %d", ErrGraphIntegrity, v, g.vertices[v].id)
		}
		for _, eId := range g.outEdges[v] {
			if int(eId) >= len(g.edges) {
				return fmt.Errorf("%w: dangling out edge %d at vertex %d", ErrGraphIntegrity, eId, v)
			}
			e := g.edges[eId]
			if e.tail != v || e.head >= n {
				return fmt.Errorf("%w: out edge %d (%d->%d) listed at vertex %d", ErrGraphIntegrity, eId, e.tail, e.head, v)
			}
			if e.weight < 0 {
				return fmt.Errorf("%w: negative weight on edge %d", ErrGraphIntegrity, eId)
			}
			linkedOut[eId]++
		}
		for _, eId := range g.inEdges[v] {
			if int(eId) >= len(g.edges) {
				return fmt.Errorf("%w: dangling in edge %d at vertex %d", ErrGraphIntegrity, eId, v)
			}
			e := g.edges[eId]
			if e.head != v || e.tail >= n {
				return fmt.Errorf("%w: in edge %d (%d->%d) listed at vertex %d", ErrGraphIntegrity, eId, e.tail, e.head, v)
			}
			linkedIn[eId]++
		}
	}
	for eId := range g.edges {
		if linkedOut[eId] != linkedIn[eId] || linkedOut[eId] > 1 {
			return fmt.Errorf("%w: edge %d linked %d times forward and %d times backward", ErrGraphIntegrity,
				eId, linkedOut[eId], linkedIn[eId])
		}
		cv := g.edges[eId].contractedVertex
		if cv != pkg.NO_CONTRACTED_VERTEX && (cv < 0 || Index(cv) >= n) {
			return fmt.Errorf("%w: edge %d shortcuts unknown vertex %d", ErrGraphIntegrity, eId, cv)
		}
	}
	return nil
}

// MaxLevel. highest contraction level.
func (g *Graph) MaxLevel() int {
	maxLevel := 0
	for _, v := range g.vertices {
		maxLevel = util.MaxG(maxLevel, v.level)
	}
	return maxLevel
}

func (g *Graph) setSCCs(sccs []Index) {
	g.sccs = sccs
}

// VerticeUandVAreConnected. false only if RunKosaraju was called and u, v lie in different strongly connected components.
func (g *Graph) VerticeUandVAreConnected(u, v Index) bool {
	if len(g.sccs) != len(g.vertices) {
		return true
	}
	return g.sccs[u] == g.sccs[v]
}
