package track

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func placeAt(s *stage, l *Ledger, t *Template, z float64) *Segment {
	pos := r3.Vec{Z: z}
	seg := &Segment{Handle: s.Instantiate(t, pos, Forward), Template: t, Position: pos, Direction: Forward, Length: t.Length}
	l.RecordActive(seg)
	return seg
}

func TestRetireOldestKeepsTail(t *testing.T) {
	s := newStage()
	l := NewLedger(s, s, 1)
	road := plainRoad("straight")

	only := placeAt(s, l, road, 0)
	assert.Nil(t, l.RetireOldest())
	assert.Equal(t, 1, l.Len())

	second := placeAt(s, l, road, 30)
	got := l.RetireOldest()
	assert.Same(t, only, got)
	assert.Same(t, second, l.Tail())
	assert.Equal(t, 1, s.destroyed[only.Handle])
	assert.True(t, only.Released)
	_, ok := l.Lookup(only.Handle)
	assert.False(t, ok)
}

func TestLocateFollowsTheChain(t *testing.T) {
	s := newStage()
	l := NewLedger(s, s, 1)
	_, ok := l.Locate(r3.Vec{})
	assert.False(t, ok)

	road := plainRoad("straight")
	first := placeAt(s, l, road, 0)
	placeAt(s, l, road, 30)
	corner := r3.Vec{Z: 60}
	bend := &Segment{Handle: s.Instantiate(road, corner, Forward), Template: road, Position: corner, Direction: Forward, Length: 30}
	l.RecordActive(bend)
	east := Left(Forward)
	pos := Advance(corner, east, 30)
	turned := &Segment{Handle: s.Instantiate(road, pos, east), Template: road, Position: pos, Direction: east, Length: 30}
	l.RecordActive(turned)

	assert.Zero(t, first.Odometer)
	assert.InDelta(t, 90, turned.Odometer, 1e-9)

	odo, ok := l.Locate(r3.Vec{Z: 40})
	require.True(t, ok)
	assert.InDelta(t, 40, odo, 1e-9)

	// Past the bend the reading keeps growing though nothing moves along Z.
	odo, ok = l.Locate(Advance(corner, east, 40))
	require.True(t, ok)
	assert.InDelta(t, 100, odo, 1e-9)
	assert.InDelta(t, 0, first.Trailing(Advance(corner, east, 40))-first.Trailing(Advance(corner, east, 10)), 1e-9)

	l.RetireOldest()
	odo, _ = l.Locate(Advance(corner, east, 40))
	assert.InDelta(t, 100, odo, 1e-9, "retiring keeps readings")
}

func TestDestroyIsIdempotent(t *testing.T) {
	s := newStage()
	l := NewLedger(s, s, 1)
	br := junction("T")
	branch := placeAt(s, l, br, 0)
	child := &Segment{Handle: s.Instantiate(plainRoad("straight"), r3.Vec{Z: 30}, Forward), Length: 30}
	l.AddProvisional(branch, child)

	l.Destroy(branch)
	l.Destroy(branch)
	l.Destroy(child)

	assert.Equal(t, 1, s.destroyed[branch.Handle])
	assert.Equal(t, 1, s.destroyed[child.Handle])
	assert.Empty(t, branch.Children)
}

func TestClearAreaPaths(t *testing.T) {
	s := newStage()
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	l := NewLedger(s, s, 1)
	l.metrics = m
	road := plainRoad("straight")

	old := placeAt(s, l, road, 0)
	branch := placeAt(s, l, junction("T"), 30)
	childPos := r3.Vec{X: 30, Z: 30}
	child := &Segment{Handle: s.Instantiate(road, childPos, Right(Forward)), Position: childPos, Direction: Right(Forward), Length: 30}
	l.AddProvisional(branch, child)
	root, part := s.placeForeign(r3.Vec{X: -100}, 4)

	t.Run("tracked", func(t *testing.T) {
		rep := l.ClearArea(r3.Vec{Z: 5})
		assert.Equal(t, ClearReport{Tracked: 1}, rep)
		assert.Equal(t, 1, s.destroyed[old.Handle])
		assert.Equal(t, 1, l.Len())
	})

	t.Run("tail is skipped", func(t *testing.T) {
		rep := l.ClearArea(r3.Vec{Z: 30})
		assert.Equal(t, 1, rep.Skipped)
		assert.Zero(t, rep.Total())
		assert.Zero(t, s.destroyed[branch.Handle])
	})

	t.Run("provisional", func(t *testing.T) {
		rep := l.ClearArea(childPos)
		assert.Equal(t, 1, rep.Provisional)
		assert.Equal(t, 1, s.destroyed[child.Handle])
		assert.Empty(t, branch.Children)
	})

	t.Run("foreign root is destroyed once", func(t *testing.T) {
		rep := l.ClearArea(r3.Vec{X: -100})
		assert.Equal(t, 1, rep.Foreign)
		assert.Equal(t, 1, s.destroyed[root])
		assert.Zero(t, s.destroyed[part])
	})

	t.Run("nothing left", func(t *testing.T) {
		assert.Zero(t, l.ClearArea(r3.Vec{Z: 5}).Total())
		assert.Zero(t, l.ClearArea(r3.Vec{X: -100}).Total())
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AreaHits.WithLabelValues("tracked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AreaHits.WithLabelValues("provisional")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AreaHits.WithLabelValues("foreign")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Retired))
}

func TestLedgerCompacts(t *testing.T) {
	s := newStage()
	l := NewLedger(s, s, 1)
	road := plainRoad("straight")
	for i := 0; i < 500; i++ {
		placeAt(s, l, road, float64(i)*30)
		if i >= 3 {
			require.NotNil(t, l.RetireOldest())
		}
	}
	assert.Equal(t, 3, l.Len())
	assert.LessOrEqual(t, len(l.live), 200)
	segs := l.Segments()
	require.Len(t, segs, 3)
	assert.Same(t, l.Tail(), segs[2])
	assert.Equal(t, 497*30.0, segs[0].Position.Z)
}
