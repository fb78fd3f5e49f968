package routing

import (
	"context"

	"github.com/lintang-b-s/navigatorx-ch/pkg"
	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
	"golang.org/x/sync/errgroup"
)

type bucketEntry struct {
	target int
	weight float64
}

/*
ManyToMany. distance matrix pakai bucket.
untuk setiap target t: backward upward search penuh dari t, setiap vertex v yang di-settle dapat entry (t, d(v,t)) di
bucket[v]. untuk setiap source s: forward upward search penuh dari s, setiap settled vertex v men-scan bucket[v] dan
matrix[s][t] = min(d(s,v) + d(v,t)).

forward search per source jalan paralel (errgroup), setiap goroutine hanya menulis baris matrix miliknya.
vertex pair yang tidak terhubung (atau > maxWeight) bernilai pkg.INF_WEIGHT.

Knopp, S., Sanders, P., Schultes, D., Schulz, F., Wagner, D. "Computing Many-to-Many Shortest Paths Using Highway
Hierarchies". ALENEX 2007.
*/
func (ch *CHRoutingEngine) ManyToMany(ctx context.Context, sources, targets []da.Index, maxWeight float64) ([][]float64, error) {
	for _, v := range sources {
		if err := ch.checkVertex(v); err != nil {
			return nil, err
		}
	}
	for _, v := range targets {
		if err := ch.checkVertex(v); err != nil {
			return nil, err
		}
	}
	if maxWeight <= 0 {
		maxWeight = pkg.INF_WEIGHT
	}

	buckets := make(map[da.Index][]bucketEntry)
	for j, t := range targets {
		err := ch.upwardSearch(ctx, t, backwardDir, maxWeight, func(v da.Index, d float64) {
			buckets[v] = append(buckets[v], bucketEntry{target: j, weight: d})
		})
		if err != nil {
			return nil, err
		}
	}

	matrix := make([][]float64, len(sources))
	for i := range matrix {
		matrix[i] = make([]float64, len(targets))
		for j := range matrix[i] {
			matrix[i][j] = pkg.INF_WEIGHT
		}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(ch.numWorkers)
	for i, s := range sources {
		eg.Go(func() error {
			row := matrix[i]
			return ch.upwardSearch(egCtx, s, forwardDir, maxWeight, func(v da.Index, d float64) {
				for _, b := range buckets[v] {
					if w := d + b.weight; w < row[b.target] && w <= maxWeight {
						row[b.target] = w
					}
				}
			})
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return matrix, nil
}

// upwardSearch runs a full upward dijkstra from root and calls visit for every settled vertex.
func (ch *CHRoutingEngine) upwardSearch(ctx context.Context, root da.Index, dir direction, maxWeight float64,
	visit func(v da.Index, d float64)) error {
	g := ch.graph
	dist := map[da.Index]float64{root: 0}
	nodes := make(map[da.Index]*da.PriorityQueueNode[da.Index])
	settled := make(map[da.Index]struct{})

	pq := da.NewFourAryHeap[da.Index]()
	nodes[root] = da.NewPriorityQueueNodeWithTieBreak(0, uint32(root), root)
	pq.Insert(nodes[root])

	for !pq.IsEmpty() {
		if util.StopConcurrentOperation(ctx) {
			return ctx.Err()
		}
		node, _ := pq.ExtractMin()
		u := node.GetItem()
		du := node.GetRank()
		settled[u] = struct{}{}
		visit(u, du)

		relax := func(x da.Index, w float64) {
			if !g.IsUpward(u, x) {
				return
			}
			if _, ok := settled[x]; ok {
				return
			}
			nd := du + w
			if nd > maxWeight {
				return
			}
			if old, ok := dist[x]; ok && nd >= old {
				return
			}
			dist[x] = nd
			if n, ok := nodes[x]; ok {
				_ = pq.DecreaseKey(n, nd)
				return
			}
			nodes[x] = da.NewPriorityQueueNodeWithTieBreak(nd, uint32(x), x)
			pq.Insert(nodes[x])
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
	return nil
}
