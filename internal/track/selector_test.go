package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

type countingSource struct {
	vals  []float64
	calls int
}

func (c *countingSource) Float64() float64 {
	v := 0.0
	if c.calls < len(c.vals) {
		v = c.vals[c.calls]
	}
	c.calls++
	return v
}

func TestPickWeightedConverges(t *testing.T) {
	a := &Template{Name: "a"}
	b := &Template{Name: "b"}
	c := &Template{Name: "c"}
	cands := []Candidate{{a, 0.2}, {b, 0.3}, {c, 0.5}}

	const n = 100000
	rng := NewRand(42)
	counts := map[*Template]float64{}
	for i := 0; i < n; i++ {
		got, ok := PickWeighted(cands, rng)
		require.True(t, ok)
		counts[got]++
	}

	obs := []float64{counts[a], counts[b], counts[c]}
	exp := []float64{0.2 * n, 0.3 * n, 0.5 * n}
	for i := range obs {
		assert.InDelta(t, exp[i]/n, obs[i]/n, 0.01)
	}
	// two degrees of freedom; 20 is far past the 0.999 quantile
	assert.Less(t, stat.ChiSquare(obs, exp), 20.0)
}

func TestPickWeightedFallbacks(t *testing.T) {
	a := &Template{Name: "a"}
	b := &Template{Name: "b"}

	t.Run("empty", func(t *testing.T) {
		src := &countingSource{}
		got, ok := PickWeighted(nil, src)
		assert.False(t, ok)
		assert.Nil(t, got)
		assert.Zero(t, src.calls)
	})

	t.Run("only nil templates", func(t *testing.T) {
		src := &countingSource{}
		_, ok := PickWeighted([]Candidate{{nil, 1}, {nil, 0.5}}, src)
		assert.False(t, ok)
		assert.Zero(t, src.calls)
	})

	t.Run("all zero picks first valid", func(t *testing.T) {
		src := &countingSource{vals: []float64{0.99}}
		got, ok := PickWeighted([]Candidate{{nil, 1}, {a, 0}, {b, 0}}, src)
		require.True(t, ok)
		assert.Same(t, a, got)
		assert.Equal(t, 1, src.calls)
	})

	t.Run("negative counts as zero", func(t *testing.T) {
		for _, roll := range []float64{0, 0.5, 0.999} {
			got, ok := PickWeighted([]Candidate{{a, -5}, {b, 1}}, &countingSource{vals: []float64{roll}})
			require.True(t, ok)
			assert.Same(t, b, got)
		}
	})

	t.Run("one draw per pick", func(t *testing.T) {
		src := &countingSource{vals: []float64{0.1, 0.9}}
		first, _ := PickWeighted([]Candidate{{a, 0.5}, {b, 0.5}}, src)
		second, _ := PickWeighted([]Candidate{{a, 0.5}, {b, 0.5}}, src)
		assert.Same(t, a, first)
		assert.Same(t, b, second)
		assert.Equal(t, 2, src.calls)
	})
}

func TestCandidatesOfSkipsNil(t *testing.T) {
	a := &Template{Name: "a", Weight: 0.4}
	got := CandidatesOf([]*Template{nil, a})
	require.Len(t, got, 1)
	assert.Equal(t, Candidate{Template: a, Weight: 0.4}, got[0])
}

func TestRandDeterministic(t *testing.T) {
	r1, r2 := NewRand(7), NewRand(7)
	for i := 0; i < 100; i++ {
		v := r1.Float64()
		assert.Equal(t, v, r2.Float64())
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
	assert.NotEqual(t, NewRand(1).NextU64(), NewRand(2).NextU64())
	assert.Zero(t, NewRand(3).Intn(0))
}
