package datastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func newPath(vertices []Index, edgeWeights []float64) *CHPathSegment {
	p := NewCHPathSegment(vertices[0])
	for i := 1; i < len(vertices); i++ {
		p = p.Extend(vertices[i], edgeWeights[i-1])
	}
	return p
}

func TestCHPathSegment(t *testing.T) {
	a := newPath([]Index{3, 4, 5}, []float64{2, 5})
	b := newPath([]Index{0, 1, 2, 3}, []float64{1, 1, 4})

	t.Run("length and first", func(t *testing.T) {
		assert.Equal(t, 3, a.Length())
		assert.Equal(t, Index(3), a.First().GetVertex())
		assert.Equal(t, 1, NewCHPathSegment(9).Length())
		assert.InDelta(t, 7.0, a.GetWeight(), eps)
	})

	t.Run("concatenate", func(t *testing.T) {
		c := a.ConcatenateAfter(b)
		assert.Equal(t, a.Length()+b.Length()-1, c.Length())
		assert.InDelta(t, a.GetWeight()+b.GetWeight(), c.GetWeight(), eps)
		assert.Equal(t, []Index{0, 1, 2, 3, 4, 5}, c.Vertices())
		assert.InDeltaSlice(t, []float64{0, 1, 2, 6, 8, 13}, c.Weights(), eps)
		// b is shared, not copied
		assert.Same(t, b, c.GetFrom().GetFrom())
	})

	t.Run("reverse", func(t *testing.T) {
		r := b.Reverse()
		assert.Equal(t, []Index{3, 2, 1, 0}, r.Vertices())
		assert.InDeltaSlice(t, []float64{0, 4, 5, 6}, r.Weights(), eps)
		assert.InDelta(t, b.GetWeight(), r.GetWeight(), eps)
		assert.True(t, r.Reverse().Equal(b, eps))
	})

	t.Run("equal", func(t *testing.T) {
		assert.True(t, a.Equal(newPath([]Index{3, 4, 5}, []float64{2, 5}), eps))
		assert.False(t, a.Equal(newPath([]Index{3, 4, 5}, []float64{2, 6}), eps))
		assert.False(t, a.Equal(newPath([]Index{4, 5}, []float64{7}), eps))
	})
}
