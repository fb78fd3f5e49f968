package spatialindex

import (
	"sort"

	"github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

// Rtree. r-tree of graph vertices, used to snap query coordinates to the nearest vertex.
type Rtree struct {
	tr    *rtree.RTreeG[datastructure.Index]
	graph *datastructure.Graph
}

type SnapCandidate struct {
	vertex datastructure.Index
	dist   float64 // meter
}

func (sc SnapCandidate) GetVertex() datastructure.Index {
	return sc.vertex
}

func (sc SnapCandidate) GetDistance() float64 {
	return sc.dist
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[datastructure.Index]
	return &Rtree{
		tr: &tr,
	}
}

// Build. satu leaf per vertex (titik, bukan box).
func (rt *Rtree) Build(graph *datastructure.Graph, log *zap.Logger) {
	log.Info("Building R-tree spatial index...", zap.Int("vertices", graph.NumberOfVertices()))
	rt.graph = graph
	for _, v := range graph.GetVertices() {
		p := [2]float64{v.GetLon(), v.GetLat()}
		rt.tr.Insert(p, p, v.GetID())
	}
	log.Info("R-tree spatial index built.")
}

func (rt *Rtree) Len() int {
	return rt.tr.Len()
}

// SearchWithinRadius returns the vertices within radius (km) of (qLat, qLon), nearest first, at most limit.
func (rt *Rtree) SearchWithinRadius(qLat, qLon, radius float64, limit int) []SnapCandidate {
	lower, upper := geo.BoundingBox(qLat, qLon, radius)
	q := geo.NewCoordinate(qLat, qLon)

	results := make([]SnapCandidate, 0, 10)
	rt.tr.Search([2]float64{lower.Lon, lower.Lat}, [2]float64{upper.Lon, upper.Lat},
		func(min, max [2]float64, v datastructure.Index) bool {
			d := geo.GreatCircleDistance(q, geo.NewCoordinate(min[1], min[0]))
			if d <= radius*1000 {
				results = append(results, SnapCandidate{vertex: v, dist: d})
			}
			return true
		})

	sort.Slice(results, func(i, j int) bool {
		if results[i].dist != results[j].dist {
			return results[i].dist < results[j].dist
		}
		return results[i].vertex < results[j].vertex
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Snap. nearest vertex within radius (km), false if there is none.
func (rt *Rtree) Snap(qLat, qLon, radius float64) (SnapCandidate, bool) {
	res := rt.SearchWithinRadius(qLat, qLon, radius, 1)
	if len(res) == 0 {
		return SnapCandidate{}, false
	}
	return res[0], true
}
