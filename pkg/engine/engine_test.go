package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/navigatorx-ch/pkg"
	"github.com/lintang-b-s/navigatorx-ch/pkg/contractor"
	"github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewEngineFromFile(t *testing.T) {
	vs := make([]*datastructure.Vertex, 4)
	for i := range vs {
		vs[i] = datastructure.NewVertex(0, float64(i)*0.001, datastructure.Index(i))
	}
	g := datastructure.NewGraph(vs)
	for i := 0; i < 3; i++ {
		_, err := g.AddEdge(datastructure.Index(i), datastructure.Index(i+1), 2, pkg.NO_CONTRACTED_VERTEX)
		require.NoError(t, err)
		_, err = g.AddEdge(datastructure.Index(i+1), datastructure.Index(i), 2, pkg.NO_CONTRACTED_VERTEX)
		require.NoError(t, err)
	}
	c, err := contractor.NewContractor(g, util.DefaultContractionConfig(), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))

	file := filepath.Join(t.TempDir(), "ch.graph")
	require.NoError(t, g.WriteGraph(file))

	e, err := NewEngine(file, 16, 2, zap.NewNop())
	require.NoError(t, err)

	route, found, err := e.GetRoutingEngine().ShortestPath(context.Background(), 0, 3, 0)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 6.0, route.GetWeight())
	assert.Equal(t, []datastructure.Index{0, 1, 2, 3}, route.GetVertices())
}

func TestNewEngineMissingFile(t *testing.T) {
	_, err := NewEngine(filepath.Join(t.TempDir(), "missing.graph"), 0, 1, zap.NewNop())
	assert.Error(t, err)
}
