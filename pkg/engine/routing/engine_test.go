package routing

import (
	"context"
	"fmt"
	"sort"
	"testing"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/navigatorx-ch/pkg"
	"github.com/lintang-b-s/navigatorx-ch/pkg/contractor"
	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

type testEdge struct {
	from, to da.Index
	weight   float64
}

func buildGraph(t *testing.T, n int, edges []testEdge, bidirectional bool) *da.Graph {
	t.Helper()
	vs := make([]*da.Vertex, n)
	for i := 0; i < n; i++ {
		vs[i] = da.NewVertex(0, 0, da.Index(i))
	}
	g := da.NewGraph(vs)
	for _, e := range edges {
		_, err := g.AddEdge(e.from, e.to, e.weight, pkg.NO_CONTRACTED_VERTEX)
		require.NoError(t, err)
		if bidirectional {
			_, err = g.AddEdge(e.to, e.from, e.weight, pkg.NO_CONTRACTED_VERTEX)
			require.NoError(t, err)
		}
	}
	return g
}

func gridGraph(t *testing.T, rows, cols int) *da.Graph {
	edges := make([]testEdge, 0)
	id := func(r, c int) da.Index { return da.Index(r*cols + c) }
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			w := float64(1 + (r*5+c*3)%4)
			if c+1 < cols {
				edges = append(edges, testEdge{id(r, c), id(r, c+1), w})
			}
			if r+1 < rows {
				edges = append(edges, testEdge{id(r, c), id(r+1, c), w + 2})
			}
		}
	}
	return buildGraph(t, rows*cols, edges, true)
}

// randomGraph. directed graph with integer weights so path sums are exact.
func randomGraph(t *testing.T, seed uint64, n, m int) *da.Graph {
	r := rand.New(rand.NewSource(seed))
	edges := make([]testEdge, 0, m)
	for len(edges) < m {
		u, v := r.Intn(n), r.Intn(n)
		if u == v {
			continue
		}
		edges = append(edges, testEdge{da.Index(u), da.Index(v), float64(1 + r.Intn(20))})
	}
	return buildGraph(t, n, edges, false)
}

func contract(t *testing.T, g *da.Graph, vertices ...da.Index) {
	t.Helper()
	cfg := util.DefaultContractionConfig()
	cfg.NumWorkers = 2
	contractWith(t, g, cfg, vertices...)
}

func contractWith(t *testing.T, g *da.Graph, cfg util.ContractionConfig, vertices ...da.Index) {
	t.Helper()
	c, err := contractor.NewContractor(g, cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background(), vertices...))
}

func newTestEngine(t *testing.T, g *da.Graph) *CHRoutingEngine {
	t.Helper()
	cache, err := lru.New[PUCacheKey, []da.Index](1024)
	require.NoError(t, err)
	return NewCHRoutingEngine(g, zap.NewNop(), cache, 2)
}

// assertMatchesDijkstra compares CH query weights of all pairs with plain dijkstra on original edges.
func assertMatchesDijkstra(t *testing.T, g *da.Graph) {
	t.Helper()
	engine := newTestEngine(t, g)
	dijkstra := NewDijkstra(g)
	ctx := context.Background()
	n := g.NumberOfVertices()

	for s := 0; s < n; s++ {
		want, err := dijkstra.ShortestPaths(ctx, da.Index(s))
		require.NoError(t, err)
		for tt := 0; tt < n; tt++ {
			route, found, err := engine.ShortestPath(ctx, da.Index(s), da.Index(tt), 0)
			require.NoError(t, err)
			if want[tt] >= pkg.INF_WEIGHT {
				assert.False(t, found, "%d->%d should be unreachable", s, tt)
				continue
			}
			require.True(t, found, "%d->%d should be reachable", s, tt)
			assert.InDelta(t, want[tt], route.GetWeight(), 1e-9, "%d->%d", s, tt)
			assert.InDelta(t, want[tt], route.GetPackedPath().GetWeight(), 1e-9, "%d->%d packed", s, tt)
			assertOriginalPath(t, g, route, da.Index(s), da.Index(tt))
		}
	}
}

func assertOriginalPath(t *testing.T, g *da.Graph, route *Route, s, tt da.Index) {
	t.Helper()
	vertices := route.GetVertices()
	require.Len(t, vertices, len(route.GetEdges())+1)
	assert.Equal(t, s, vertices[0])
	assert.Equal(t, tt, vertices[len(vertices)-1])

	sum := 0.0
	for i, eId := range route.GetEdges() {
		e := g.GetEdge(eId)
		assert.False(t, e.IsShortcut())
		assert.Equal(t, vertices[i], e.GetTail())
		assert.Equal(t, vertices[i+1], e.GetHead())
		sum += e.GetWeight()
	}
	assert.InDelta(t, route.GetWeight(), sum, 1e-9)
}

func TestShortestPathChain(t *testing.T) {
	testCases := []struct {
		name     string
		contract bool
	}{
		{"uncontracted", false},
		{"contracted", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := buildGraph(t, 3, []testEdge{{0, 1, 1}, {1, 2, 2}}, true)
			if tc.contract {
				contract(t, g)
			}
			engine := newTestEngine(t, g)

			route, found, err := engine.ShortestPath(context.Background(), 0, 2, 0)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, 3.0, route.GetWeight())
			assert.Equal(t, []da.Index{0, 1, 2}, route.GetVertices())
			assert.Equal(t, []float64{0, 1, 3}, route.GetPath().Weights())

			route, found, err = engine.ShortestPath(context.Background(), 2, 0, 0)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, []da.Index{2, 1, 0}, route.GetVertices())
		})
	}
}

func TestShortestPathSameVertex(t *testing.T) {
	g := buildGraph(t, 3, []testEdge{{0, 1, 1}, {1, 2, 2}}, true)
	contract(t, g)
	engine := newTestEngine(t, g)

	route, found, err := engine.ShortestPath(context.Background(), 1, 1, 0)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 0.0, route.GetWeight())
	assert.Equal(t, []da.Index{1}, route.GetVertices())
	assert.Empty(t, route.GetEdges())
}

func TestShortestPathUnreachable(t *testing.T) {
	g := buildGraph(t, 4, []testEdge{{0, 1, 1}, {2, 3, 1}}, true)
	contract(t, g)
	engine := newTestEngine(t, g)

	route, found, err := engine.ShortestPath(context.Background(), 0, 3, 0)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, route)

	w, found, err := NewCHBidirectionalSearch(engine).CalculateWeight(context.Background(), 0, 3, 0)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, pkg.INF_WEIGHT, w)
}

func TestShortestPathOneWay(t *testing.T) {
	g := buildGraph(t, 3, []testEdge{{0, 1, 1}, {1, 2, 1}}, false)
	contract(t, g)
	engine := newTestEngine(t, g)

	_, found, err := engine.ShortestPath(context.Background(), 0, 2, 0)
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = engine.ShortestPath(context.Background(), 2, 0, 0)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestShortestPathInvalidVertex(t *testing.T) {
	g := buildGraph(t, 3, []testEdge{{0, 1, 1}}, true)
	engine := newTestEngine(t, g)

	testCases := []struct {
		name string
		s, t da.Index
	}{
		{"invalid source", 3, 0},
		{"invalid target", 0, 99},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, found, err := engine.ShortestPath(context.Background(), tc.s, tc.t, 0)
			assert.False(t, found)
			assert.ErrorIs(t, err, ErrInvalidVertex)
			assert.ErrorIs(t, err, util.ErrBadParamInput)
			assert.Equal(t, util.ErrBadParamInput, util.ErrorCode(err))
		})
	}
}

func TestShortestPathMaxWeight(t *testing.T) {
	g := buildGraph(t, 3, []testEdge{{0, 1, 1}, {1, 2, 2}}, true)
	contract(t, g)
	engine := newTestEngine(t, g)

	testCases := []struct {
		name      string
		maxWeight float64
		found     bool
	}{
		{"below", 2.5, false},
		{"exact", 3, true},
		{"above", 10, true},
		{"unbounded", 0, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, found, err := NewCHBidirectionalSearch(engine).CalculateWeight(context.Background(), 0, 2, tc.maxWeight)
			require.NoError(t, err)
			assert.Equal(t, tc.found, found)
			if found {
				assert.Equal(t, 3.0, w)
			}
		})
	}
}

func TestShortestPathCancelled(t *testing.T) {
	g := gridGraph(t, 3, 3)
	engine := newTestEngine(t, g)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, found, err := engine.ShortestPath(ctx, 0, 8, 0)
	assert.False(t, found)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCHMatchesDijkstra(t *testing.T) {
	testCases := []struct {
		name  string
		graph func(t *testing.T) *da.Graph
	}{
		{"grid 5x5", func(t *testing.T) *da.Graph { return gridGraph(t, 5, 5) }},
		{"grid 3x7", func(t *testing.T) *da.Graph { return gridGraph(t, 3, 7) }},
		{"random sparse", func(t *testing.T) *da.Graph { return randomGraph(t, 42, 30, 60) }},
		{"random dense", func(t *testing.T) *da.Graph { return randomGraph(t, 7, 25, 120) }},
	}
	for _, tc := range testCases {
		t.Run(tc.name+" uncontracted", func(t *testing.T) {
			assertMatchesDijkstra(t, tc.graph(t))
		})
		t.Run(tc.name+" contracted", func(t *testing.T) {
			g := tc.graph(t)
			contract(t, g)
			assertMatchesDijkstra(t, g)
		})
		t.Run(tc.name+" with core", func(t *testing.T) {
			g := tc.graph(t)
			half := make([]da.Index, 0)
			for v := 0; v < g.NumberOfVertices(); v += 2 {
				half = append(half, da.Index(v))
			}
			contract(t, g, half...)
			assertMatchesDijkstra(t, g)
		})
	}
}

// multiGraph. random directed graph that may contain self loops and parallel edges.
func multiGraph(t *testing.T, seed uint64, n, m int) *da.Graph {
	r := rand.New(rand.NewSource(seed))
	edges := make([]testEdge, 0, m)
	for i := 0; i < m; i++ {
		edges = append(edges, testEdge{da.Index(r.Intn(n)), da.Index(r.Intn(n)), float64(1 + r.Intn(9))})
	}
	return buildGraph(t, n, edges, false)
}

type baseline struct {
	dist [][]float64
	// paths[s][t] holds the vertex sequence only when s..t has exactly one shortest path
	paths [][][]da.Index
}

// takeBaseline runs plain dijkstra from every vertex on the uncontracted graph.
func takeBaseline(t *testing.T, g *da.Graph) baseline {
	t.Helper()
	ctx := context.Background()
	n := g.NumberOfVertices()
	b := baseline{dist: make([][]float64, n), paths: make([][][]da.Index, n)}
	dijkstra := NewDijkstra(g)
	for s := 0; s < n; s++ {
		dist, err := dijkstra.ShortestPaths(ctx, da.Index(s))
		require.NoError(t, err)
		b.dist[s] = dist
		b.paths[s] = make([][]da.Index, n)

		counts := countShortestPaths(g, da.Index(s), dist)
		for tt := 0; tt < n; tt++ {
			if counts[tt] != 1 {
				continue
			}
			edges, ok := dijkstra.PathTo(da.Index(tt))
			require.True(t, ok)
			vertices := []da.Index{da.Index(s)}
			for _, eId := range edges {
				vertices = append(vertices, g.GetEdge(eId).GetHead())
			}
			b.paths[s][tt] = vertices
		}
	}
	return b
}

// countShortestPaths counts original-edge shortest paths from s, capped at 2. weights are >= 1 so processing
// vertices by distance sees every predecessor first.
func countShortestPaths(g *da.Graph, s da.Index, dist []float64) []int {
	n := g.NumberOfVertices()
	order := make([]da.Index, 0, n)
	for v := 0; v < n; v++ {
		if dist[v] < pkg.INF_WEIGHT {
			order = append(order, da.Index(v))
		}
	}
	sort.Slice(order, func(i, j int) bool { return dist[order[i]] < dist[order[j]] })

	counts := make([]int, n)
	counts[s] = 1
	for _, u := range order {
		if counts[u] == 0 {
			continue
		}
		g.ForOutEdgesOf(u, func(e *da.Edge) bool {
			x := e.GetHead()
			if !e.IsShortcut() && x != u && dist[u]+e.GetWeight() == dist[x] {
				counts[x] = util.MinG(2, counts[x]+counts[u])
			}
			return true
		})
	}
	return counts
}

func TestCHMatchesPreContractionBaseline(t *testing.T) {
	policies := []util.PriorityPolicy{util.EDGE_DIFFERENCE, util.EDGE_DIFFERENCE_SEARCH_SPACE}
	hopLimits := []int{1, 2, 5}
	ctx := context.Background()

	for _, policy := range policies {
		for _, hopLimit := range hopLimits {
			for seed := uint64(1); seed <= 6; seed++ {
				t.Run(fmt.Sprintf("%s hop %d seed %d", policy, hopLimit, seed), func(t *testing.T) {
					g := multiGraph(t, seed, 30, 90)
					want := takeBaseline(t, g)

					cfg := util.DefaultContractionConfig()
					cfg.NumWorkers = 2
					cfg.PriorityPolicy = policy
					cfg.HopLimit = hopLimit
					cfg.MaxSettledNodes = 7
					contractWith(t, g, cfg)
					require.NoError(t, g.Validate())

					// original edges survive contraction untouched
					assert.Equal(t, want.dist, takeBaseline(t, g).dist)

					engine := newTestEngine(t, g)
					n := g.NumberOfVertices()
					for s := 0; s < n; s++ {
						for tt := 0; tt < n; tt++ {
							route, found, err := engine.ShortestPath(ctx, da.Index(s), da.Index(tt), 0)
							require.NoError(t, err)
							if want.dist[s][tt] >= pkg.INF_WEIGHT {
								assert.False(t, found, "%d->%d", s, tt)
								continue
							}
							require.True(t, found, "%d->%d", s, tt)
							assert.Equal(t, want.dist[s][tt], route.GetWeight(), "%d->%d", s, tt)
							if s != tt && want.paths[s][tt] != nil {
								assert.Equal(t, want.paths[s][tt], route.GetVertices(), "%d->%d", s, tt)
							}
						}
					}
				})
			}
		}
	}
}

func TestPathUnpackerUsesCache(t *testing.T) {
	g := buildGraph(t, 3, []testEdge{{0, 1, 1}, {1, 2, 2}}, true)
	cfg := util.DefaultContractionConfig()
	c, err := contractor.NewContractor(g, cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.ContractInOrder(context.Background(), []da.Index{1, 0, 2}))

	engine := newTestEngine(t, g)
	packed, found, err := NewCHBidirectionalSearch(engine).Calculate(context.Background(), 0, 2, 0)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []da.Index{0, 2}, packed.Vertices())

	route, err := NewPathUnpacker(engine).UnpackPath(packed)
	require.NoError(t, err)
	assert.Equal(t, []da.Index{0, 1, 2}, route.GetVertices())
	assert.Equal(t, 3.0, route.GetWeight())

	cached, ok := engine.puCache.Get(NewPUCacheKey(0, 2))
	require.True(t, ok)
	assert.Equal(t, route.GetEdges(), cached)

	again, err := NewPathUnpacker(engine).UnpackPath(packed)
	require.NoError(t, err)
	assert.Equal(t, route.GetEdges(), again.GetEdges())
}

func TestPathUnpackerDepthLimit(t *testing.T) {
	g := buildGraph(t, 3, []testEdge{{0, 1, 1}, {1, 2, 2}}, true)
	_, err := g.AddEdge(0, 2, 3, 1)
	require.NoError(t, err)

	engine := NewCHRoutingEngine(g, zap.NewNop(), nil, 1)
	engine.maxUnpackDepth = 0
	_, err = NewPathUnpacker(engine).UnpackPath(da.NewCHPathSegment(0).Extend(2, 3))
	assert.ErrorIs(t, err, da.ErrGraphIntegrity)
}

func TestManyToMany(t *testing.T) {
	testCases := []struct {
		name  string
		graph func(t *testing.T) *da.Graph
		core  bool
	}{
		{"grid", func(t *testing.T) *da.Graph { return gridGraph(t, 4, 5) }, false},
		{"random", func(t *testing.T) *da.Graph { return randomGraph(t, 3, 20, 50) }, false},
		{"random with core", func(t *testing.T) *da.Graph { return randomGraph(t, 11, 20, 50) }, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := tc.graph(t)
			if tc.core {
				contract(t, g, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9)
			} else {
				contract(t, g)
			}
			engine := newTestEngine(t, g)

			sources := []da.Index{0, 3, 7, 12}
			targets := []da.Index{1, 3, 9, 15, 19}
			matrix, err := engine.ManyToMany(context.Background(), sources, targets, 0)
			require.NoError(t, err)
			require.Len(t, matrix, len(sources))

			dijkstra := NewDijkstra(g)
			for i, s := range sources {
				want, err := dijkstra.ShortestPaths(context.Background(), s)
				require.NoError(t, err)
				require.Len(t, matrix[i], len(targets))
				for j, tt := range targets {
					assert.InDelta(t, want[tt], matrix[i][j], 1e-9, "%d->%d", s, tt)
				}
			}
		})
	}
}

func TestManyToManyInvalidAndCancelled(t *testing.T) {
	g := gridGraph(t, 3, 3)
	contract(t, g)
	engine := newTestEngine(t, g)

	_, err := engine.ManyToMany(context.Background(), []da.Index{0}, []da.Index{9}, 0)
	assert.ErrorIs(t, err, util.ErrBadParamInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.ManyToMany(ctx, []da.Index{0}, []da.Index{8}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDijkstraPathTo(t *testing.T) {
	g := buildGraph(t, 4, []testEdge{{0, 1, 1}, {1, 2, 1}, {0, 2, 5}}, false)
	d := NewDijkstra(g)
	dist, err := d.ShortestPaths(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, pkg.INF_WEIGHT}, dist)

	edges, ok := d.PathTo(2)
	require.True(t, ok)
	require.Len(t, edges, 2)
	assert.Equal(t, da.Index(1), g.GetEdge(edges[0]).GetHead())
	assert.Equal(t, da.Index(2), g.GetEdge(edges[1]).GetHead())

	_, ok = d.PathTo(3)
	assert.False(t, ok)
}
