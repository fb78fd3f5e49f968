package contractor

import (
	"testing"

	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasWitness(t *testing.T) {
	// 0 -> 1 -> 2 (cost 2) and the long way 0 -> 3 -> 4 -> 5 -> 2 (cost 4)
	g := buildGraph(t, 6, []testEdge{
		{0, 1, 1}, {1, 2, 1},
		{0, 3, 1}, {3, 4, 1}, {4, 5, 1}, {5, 2, 1},
	}, false)

	testCases := []struct {
		name     string
		limit    float64
		hopLimit int
		avoid    da.Index
		expected bool
	}{
		{"direct path avoided, long path within limit", 4, 5, 1, true},
		{"long path above limit", 3.5, 5, 1, false},
		{"long path exceeds hop limit", 4, 3, 1, false},
		{"avoiding another vertex keeps the short path", 2, 1, 3, false},
		{"avoiding another vertex keeps the short path with enough hops", 2, 2, 3, true},
	}

	wc := NewDijkstraWitnessCalculator(g)
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := wc.HasWitness(0, 2, tt.limit, tt.hopLimit, tt.avoid)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestFindWitnessesBatch(t *testing.T) {
	g := pvqwrGraph(t)
	wc := NewDijkstraWitnessCalculator(g)

	// from q avoiding v: r via w costs 10, p is unreachable
	found, err := wc.FindWitnesses(2, []da.Index{4, 0, 4}, []float64{9, 100, 10}, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, true}, found)

	found, err = wc.FindWitnesses(2, nil, nil, 5, 1)
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = wc.FindWitnesses(2, []da.Index{4}, []float64{1, 2}, 5, 1)
	assert.ErrorIs(t, err, util.ErrBadParamInput)

	_, err = wc.FindWitnesses(42, []da.Index{4}, []float64{1}, 5, 1)
	assert.ErrorIs(t, err, da.ErrVertexNotFound)

	_, err = wc.HasWitness(2, 17, 1, 5, 1)
	assert.ErrorIs(t, err, da.ErrVertexNotFound)
}

func TestWitnessMaxSettledBudget(t *testing.T) {
	g := buildGraph(t, 6, []testEdge{
		{0, 1, 1}, {1, 2, 1},
		{0, 3, 1}, {3, 4, 1}, {4, 5, 1}, {5, 2, 1},
	}, false)

	// budget exhausted before reaching 2 counts as no witness
	wc := NewDijkstraWitnessCalculator(g, WithMaxSettledNodes(2))
	ok, err := wc.HasWitness(0, 2, 10, 10, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	wc = NewDijkstraWitnessCalculator(g, WithMaxSettledNodes(10))
	ok, err = wc.HasWitness(0, 2, 10, 10, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWitnessSkipsContractedVertices(t *testing.T) {
	g := buildGraph(t, 4, []testEdge{{0, 1, 1}, {1, 2, 1}, {0, 3, 1}, {3, 2, 1}}, false)
	require.NoError(t, g.SetVertexLevel(3, 1))

	ok, err := NewDijkstraWitnessCalculator(g).HasWitness(0, 2, 2, 5, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = NewDijkstraWitnessCalculator(g, WithContractedVertices()).HasWitness(0, 2, 2, 5, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}
