package usecases

import (
	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
	"go.uber.org/zap"
)

// snapOrigDest. candidates come sorted by distance. the first (orig, dst) pair lying in the same strongly connected
// component wins, a pair in one scc always has a route. falls back to the two nearest vertices.
func (rs *RoutingService) snapOrigDest(origLat, origLon, dstLat, dstLon float64) (da.Index, da.Index, error) {
	origCandidates := rs.spatialIndex.SearchWithinRadius(origLat, origLon, rs.searchRadius, snapCandidates)
	if len(origCandidates) == 0 {
		return 0, 0, util.WrapErrorf(ErrNoNearbyVertex, util.ErrBadParamInput,
			"origin %f,%f is more than %.2f km from any road", origLat, origLon, rs.searchRadius)
	}

	dstCandidates := rs.spatialIndex.SearchWithinRadius(dstLat, dstLon, rs.searchRadius, snapCandidates)
	if len(dstCandidates) == 0 {
		return 0, 0, util.WrapErrorf(ErrNoNearbyVertex, util.ErrBadParamInput,
			"destination %f,%f is more than %.2f km from any road", dstLat, dstLon, rs.searchRadius)
	}

	graph := rs.engine.GetGraph()
	for _, o := range origCandidates {
		for _, d := range dstCandidates {
			if graph.VerticeUandVAreConnected(o.GetVertex(), d.GetVertex()) {
				return o.GetVertex(), d.GetVertex(), nil
			}
		}
	}

	rs.log.Debug("no snapped pair shares a component",
		zap.Uint32("orig", uint32(origCandidates[0].GetVertex())), zap.Uint32("dst", uint32(dstCandidates[0].GetVertex())))
	return origCandidates[0].GetVertex(), dstCandidates[0].GetVertex(), nil
}
