package game

import (
	"gonum.org/v1/gonum/spatial/r3"

	"trackrunner/internal/track"
	"trackrunner/internal/world"
)

// scenery drops props beyond the frontier. The generator does not track
// them; a prop that ends up where a road is placed is cleared as foreign
// geometry, the rest are removed once far behind.
type scenery struct {
	stage  *world.Stage
	rng    *track.Rand
	props  []prop
	nextAt float64
}

type prop struct {
	h   track.Handle
	pos r3.Vec
}

func newScenery(stage *world.Stage, seed uint64) *scenery {
	sc := &scenery{stage: stage, rng: track.NewRand(seed)}
	sc.nextAt = sc.spacing()
	return sc
}

func (sc *scenery) spacing() float64 {
	return PropSpacingMin + (PropSpacingMax-PropSpacingMin)*sc.rng.Float64()
}

// update places a prop every few dozen units of runner travel, a few
// roads past tail along dir, and releases props further than keep from
// the runner.
func (sc *scenery) update(r *Runner, tail *track.Segment, dir r3.Vec, roadLength, keep float64) {
	if tail != nil && r.Distance >= sc.nextAt {
		sc.nextAt = r.Distance + sc.spacing()
		k := 2 + sc.rng.Intn(3)
		pos := track.Advance(tail.Position, dir, float64(k)*roadLength)
		if sc.rng.Float64() >= PropOnTrack {
			side := track.Left(dir)
			if sc.rng.Intn(2) == 0 {
				side = track.Right(dir)
			}
			off := PropLateralMin + (PropLateralMax-PropLateralMin)*sc.rng.Float64()
			pos = track.Advance(pos, side, off)
		}
		h := sc.stage.Place(pos, PropSize, track.LayerStage)
		sc.props = append(sc.props, prop{h: h, pos: pos})
	}

	kept := sc.props[:0]
	for _, p := range sc.props {
		if _, ok := sc.stage.Lookup(p.h); !ok {
			continue
		}
		if r3.Norm(r3.Sub(p.pos, r.Position)) > keep {
			sc.stage.Destroy(p.h)
			continue
		}
		kept = append(kept, p)
	}
	sc.props = kept
}

// Len is the number of props still standing.
func (sc *scenery) Len() int {
	if sc == nil {
		return 0
	}
	return len(sc.props)
}
