package osmparser

import (
	"github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
)

// BuildGraph. vertex id = urutan pertama kali node osm muncul di edge, weight dari cost function.
func (p *OsmParser) BuildGraph(scannedEdges []Edge) (*datastructure.Graph, error) {
	numV := len(p.nodeIDMap)
	vertices := make([]*datastructure.Vertex, numV)
	for v := 0; v < numV; v++ {
		coord := p.acceptedNodeMap[p.nodeToOsmId[datastructure.Index(v)]]
		vertices[v] = datastructure.NewVertex(coord.lat, coord.lon, datastructure.Index(v))
	}

	graph := datastructure.NewGraph(vertices)
	for _, e := range scannedEdges {
		if _, err := graph.AddEdgeWithLength(e.GetFrom(), e.GetTo(), p.costFunction.GetWeight(e), e.GetLength()); err != nil {
			return nil, err
		}
	}
	return graph, nil
}
