package preprocesser

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/navigatorx-ch/pkg"
	"github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ringGraph(t *testing.T, n int) *datastructure.Graph {
	t.Helper()
	vs := make([]*datastructure.Vertex, n)
	for i := 0; i < n; i++ {
		vs[i] = datastructure.NewVertex(-7.78, 110.36+float64(i)*0.001, datastructure.Index(i))
	}
	g := datastructure.NewGraph(vs)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		_, err := g.AddEdge(datastructure.Index(i), datastructure.Index(j), float64(1+i%3), pkg.NO_CONTRACTED_VERTEX)
		require.NoError(t, err)
		_, err = g.AddEdge(datastructure.Index(j), datastructure.Index(i), float64(1+i%3), pkg.NO_CONTRACTED_VERTEX)
		require.NoError(t, err)
	}
	return g
}

func TestPreProcessing(t *testing.T) {
	testCases := []struct {
		name  string
		order []datastructure.Index
	}{
		{"by priority", nil},
		{"fixed order", []datastructure.Index{0, 2, 4, 6, 1, 3, 5, 7}},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			g := ringGraph(t, 8)
			cfg := util.DefaultContractionConfig()
			cfg.NumWorkers = 2
			p := NewPreprocessor(g, cfg, zap.NewNop())
			if tt.order != nil {
				p.SetContractionOrder(tt.order)
			}

			out := filepath.Join(t.TempDir(), "ch.graph")
			stats, err := p.PreProcessing(context.Background(), out)
			require.NoError(t, err)
			assert.Equal(t, 8, stats.Contracted)

			read, err := datastructure.ReadGraph(out)
			require.NoError(t, err)
			assert.Equal(t, g.NumberOfVertices(), read.NumberOfVertices())
			assert.Equal(t, g.NumberOfEdges(), read.NumberOfEdges())
			assert.Equal(t, g.NumberOfShortcuts(), read.NumberOfShortcuts())
			for v := 0; v < read.NumberOfVertices(); v++ {
				assert.True(t, read.IsContracted(datastructure.Index(v)))
				assert.Equal(t, g.GetVertexLevel(datastructure.Index(v)), read.GetVertexLevel(datastructure.Index(v)))
			}
			if tt.order != nil {
				for i, v := range tt.order {
					assert.Equal(t, i+1, read.GetVertexLevel(v))
				}
			}
			assert.True(t, read.VerticeUandVAreConnected(0, 5))
		})
	}
}

func TestPreProcessingCancelled(t *testing.T) {
	g := ringGraph(t, 6)
	p := NewPreprocessor(g, util.DefaultContractionConfig(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.PreProcessing(ctx, filepath.Join(t.TempDir(), "ch.graph"))
	assert.ErrorIs(t, err, context.Canceled)
}
