package datastructure

import (
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
)

// RunKosaraju. runs kosaraju's algorithm to find strongly connected components (SCCs) of the road network.
// returns the number of components.
func (g *Graph) RunKosaraju() int {
	n := Index(g.NumberOfVertices())

	order := make([]Index, 0, n)
	visited := make([]bool, n)
	for v := Index(0); v < n; v++ {
		if !visited[v] {
			g.dfs(v, &order, visited, false)
		}
	}

	order = util.ReverseG[Index](order)

	// reset visited
	visited = make([]bool, n)
	sccs := make([]Index, n)
	numComponents := 0
	for _, v := range order {
		if visited[v] {
			continue
		}
		component := make([]Index, 0, 10)
		g.dfs(v, &component, visited, true)
		for _, u := range component {
			sccs[u] = Index(numComponents)
		}
		numComponents++
	}

	g.setSCCs(sccs)
	return numComponents
}

type dfsFrame struct {
	v   Index
	pos int
}

// dfs. iterative post-order dfs, road networks are too deep for recursion.
func (g *Graph) dfs(s Index, output *[]Index, visited []bool, reversed bool) {
	adj := g.outEdges
	if reversed {
		adj = g.inEdges
	}

	visited[s] = true
	stack := []dfsFrame{{v: s}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.pos < len(adj[top.v]) {
			e := g.edges[adj[top.v][top.pos]]
			top.pos++

			next := e.head
			if reversed {
				next = e.tail
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, dfsFrame{v: next})
			}
			continue
		}

		*output = append(*output, top.v)
		stack = stack[:len(stack)-1]
	}
}
