package world

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"trackrunner/internal/track"
)

var straight = &track.Template{Name: "straight", Kind: track.KindRoad, Length: 30, Width: 10, Weight: 1}

func TestInstantiateRoadWithWalls(t *testing.T) {
	s := NewStage(nil)
	h := s.Instantiate(straight, r3.Vec{Z: 15}, track.Forward)

	road, ok := s.Lookup(h)
	require.True(t, ok)
	assert.Equal(t, KindRoad, road.Kind)
	assert.Equal(t, h, road.Root)
	require.Len(t, road.Parts, 2)
	assert.Equal(t, 3, s.Len())

	var xs []float64
	for _, p := range road.Parts {
		wall, ok := s.Lookup(p)
		require.True(t, ok)
		assert.Equal(t, KindWall, wall.Kind)
		assert.Equal(t, h, wall.Root)
		xs = append(xs, wall.Position.X)
	}
	assert.ElementsMatch(t, []float64{5, -5}, xs)
}

func TestQueryOverlapResolvesRoots(t *testing.T) {
	s := NewStage(nil)
	h := s.Instantiate(straight, r3.Vec{}, track.Forward)

	hits := s.QueryOverlap(r3.Vec{X: 5.2}, 0.5, track.LayerStage)
	require.NotEmpty(t, hits)
	for _, hit := range hits {
		assert.Equal(t, h, hit.Root)
	}

	assert.Empty(t, s.QueryOverlap(r3.Vec{X: 5.2}, 0.5, track.LayerAgent))
	assert.Empty(t, s.QueryOverlap(r3.Vec{Z: 17}, 1, track.LayerStage))
	assert.NotEmpty(t, s.QueryOverlap(r3.Vec{Z: 15.5}, 1, track.LayerStage))
}

func TestDestroyCountsEveryCall(t *testing.T) {
	s := NewStage(nil)
	h := s.Instantiate(straight, r3.Vec{}, track.Forward)
	road, _ := s.Lookup(h)

	s.Destroy(h)
	assert.Zero(t, s.Len())
	assert.Empty(t, s.QueryOverlap(r3.Vec{}, 20, track.LayerStage))
	assert.Equal(t, 1, s.Destroyed(h))
	assert.Zero(t, s.Destroyed(road.Parts[0]))

	s.Destroy(h)
	assert.Equal(t, 2, s.Destroyed(h))
	assert.Equal(t, map[track.Handle]int{h: 2}, s.DestroyCounts())
}

func TestDestroyPartDetachesFromRoot(t *testing.T) {
	s := NewStage(nil)
	h := s.Instantiate(straight, r3.Vec{}, track.Forward)
	road, _ := s.Lookup(h)

	s.Destroy(road.Parts[0])
	road, _ = s.Lookup(h)
	assert.Len(t, road.Parts, 1)
	assert.Equal(t, 2, s.Len())
}

func TestSetWallsVisible(t *testing.T) {
	s := NewStage(nil)
	h := s.Instantiate(straight, r3.Vec{}, track.Forward)
	s.SetWallsVisible(h, false)

	road, _ := s.Lookup(h)
	for _, p := range road.Parts {
		wall, _ := s.Lookup(p)
		assert.False(t, wall.Visible)
	}
	assert.True(t, road.Visible)

	s.SetWallsVisible(999, true)
}

func TestDescriptor(t *testing.T) {
	s := NewStage(nil)
	tee := &track.Template{Name: "tee", Kind: track.KindBranch, Length: 30, Width: 30, Weight: 1}
	s.SetDescriptor("tee", track.BranchDescriptor{CanGoLeft: true, CanGoRight: true})

	b := s.Instantiate(tee, r3.Vec{}, track.Forward)
	d, ok := s.Descriptor(b)
	require.True(t, ok)
	assert.Equal(t, track.BranchDescriptor{CanGoLeft: true, CanGoRight: true}, d)

	road := s.Instantiate(straight, r3.Vec{Z: 100}, track.Forward)
	_, ok = s.Descriptor(road)
	assert.False(t, ok)

	other := s.Instantiate(&track.Template{Name: "cross", Kind: track.KindBranch, Length: 30}, r3.Vec{Z: 200}, track.Forward)
	_, ok = s.Descriptor(other)
	assert.False(t, ok)

	branch, _ := s.Lookup(b)
	assert.Empty(t, branch.Parts)
}

func TestPlaceAndSnapshot(t *testing.T) {
	s := NewStage(nil)
	road := s.Instantiate(straight, r3.Vec{}, track.Forward)
	decor := s.Place(r3.Vec{X: 50}, 4, track.LayerStage)

	snap := s.Snapshot()
	require.Len(t, snap, 4)
	var handles []track.Handle
	for _, o := range snap {
		handles = append(handles, o.Handle)
	}
	want := []track.Handle{road, road + 1, road + 2, decor}
	if diff := cmp.Diff(want, handles); diff != "" {
		t.Fatalf("snapshot order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "decor", snap[3].Name())
	assert.Equal(t, "straight", snap[0].Name())
}

func TestQuadtreeFindsManyObjects(t *testing.T) {
	s := NewStage(nil)
	var hs []track.Handle
	for i := 0; i < 200; i++ {
		hs = append(hs, s.Place(r3.Vec{X: float64(i%20) * 10, Z: float64(i/20) * 10}, 2, track.LayerStage))
	}
	for i, h := range hs {
		o, _ := s.Lookup(h)
		hits := s.QueryOverlap(o.Position, 0.5, track.LayerStage)
		require.Len(t, hits, 1, "object %d", i)
		assert.Equal(t, h, hits[0].Handle)
	}
	for _, h := range hs[:100] {
		s.Destroy(h)
	}
	assert.Equal(t, 100, s.Len())
	o, _ := s.Lookup(hs[150])
	assert.Len(t, s.QueryOverlap(o.Position, 0.5, track.LayerStage), 1)
	assert.Empty(t, s.QueryOverlap(r3.Vec{}, 0.5, track.LayerStage))

	far := s.Place(r3.Vec{X: 3 * worldExtent}, 1, track.LayerStage)
	hits := s.QueryOverlap(r3.Vec{X: 3 * worldExtent}, 1, track.LayerStage)
	require.Len(t, hits, 1)
	assert.Equal(t, far, hits[0].Handle)
}
