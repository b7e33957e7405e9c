package game

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

type trailPoint struct {
	pos    r3.Vec
	dist   float64 // distance travelled when pos was reached
	pinned bool    // origin or corner, never merged away
}

// Trail is the polyline the runner has covered, indexed by distance. The
// pursuer walks it.
type Trail struct {
	points []trailPoint
}

func NewTrail(origin r3.Vec) *Trail {
	return &Trail{points: []trailPoint{{pos: origin, pinned: true}}}
}

// Add records that the runner reached pos after dist units. Points closer
// than TrailSampleStep to the previous one are merged unless either is
// a corner.
func (t *Trail) Add(pos r3.Vec, dist float64, corner bool) {
	n := len(t.points)
	last := t.points[n-1]
	if !corner && !last.pinned && dist-t.points[n-2].dist < TrailSampleStep {
		t.points[n-1] = trailPoint{pos: pos, dist: dist}
		return
	}
	t.points = append(t.points, trailPoint{pos: pos, dist: dist, pinned: corner})
}

// At returns the point dist units along the trail, clamped to its ends.
func (t *Trail) At(dist float64) r3.Vec {
	n := len(t.points)
	if dist <= t.points[0].dist {
		return t.points[0].pos
	}
	if dist >= t.points[n-1].dist {
		return t.points[n-1].pos
	}
	i := sort.Search(n, func(i int) bool { return t.points[i].dist >= dist })
	a, b := t.points[i-1], t.points[i]
	span := b.dist - a.dist
	if span <= 0 {
		return b.pos
	}
	k := (dist - a.dist) / span
	return r3.Add(a.pos, r3.Scale(k, r3.Sub(b.pos, a.pos)))
}

// Trim drops points wholly before dist, keeping one so At stays exact.
func (t *Trail) Trim(dist float64) {
	i := sort.Search(len(t.points), func(i int) bool { return t.points[i].dist >= dist })
	if i > 1 {
		t.points = append(t.points[:0], t.points[i-1:]...)
		t.points[0].pinned = true
	}
}

func (t *Trail) Len() int {
	return len(t.points)
}
