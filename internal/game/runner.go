package game

import (
	"gonum.org/v1/gonum/spatial/r3"

	"trackrunner/internal/track"
)

// Turn is a choice at a junction, relative to the heading on arrival.
type Turn int

const (
	TurnForward Turn = iota
	TurnLeft
	TurnRight
)

func (t Turn) String() string {
	switch t {
	case TurnForward:
		return "forward"
	case TurnLeft:
		return "left"
	case TurnRight:
		return "right"
	}
	return "unknown"
}

// Apply turns dir by t.
func (t Turn) Apply(dir r3.Vec) r3.Vec {
	switch t {
	case TurnLeft:
		return track.Left(dir)
	case TurnRight:
		return track.Right(dir)
	}
	return dir
}

// Opens reports whether d lets the runner take t.
func (t Turn) Opens(d track.BranchDescriptor) bool {
	switch t {
	case TurnForward:
		return d.CanGoForward
	case TurnLeft:
		return d.CanGoLeft
	case TurnRight:
		return d.CanGoRight
	}
	return false
}

// Runner moves along the track at the tier speed and stops on the centre
// of a branch awaiting a choice.
type Runner struct {
	Position r3.Vec
	Heading  r3.Vec
	Speed    float64
	Distance float64 // total distance covered
	Waiting  bool    // standing on a junction
	WaitTime float64 // seconds spent on the current junction

	trail *Trail
}

func NewRunner(origin, dir r3.Vec) *Runner {
	return &Runner{
		Position: origin,
		Heading:  dir,
		trail:    NewTrail(origin),
	}
}

func (r *Runner) Trail() *Trail {
	return r.trail
}

// Update accelerates towards target and moves. With a pending branch
// ahead the runner stops on its centre and waits.
func (r *Runner) Update(dt, target float64, pending *track.PendingBranch) {
	if r.Waiting {
		r.WaitTime += dt
		return
	}
	r.Speed = approach(r.Speed, target, RunnerAccel*dt)
	step := r.Speed * dt
	arrived := false
	if pending != nil {
		ahead := track.Along(pending.Position, r.Position, r.Heading)
		if ahead >= 0 && ahead <= step {
			step = ahead
			arrived = true
		}
	}
	r.Position = track.Advance(r.Position, r.Heading, step)
	r.Distance += step
	if arrived {
		r.Position = pending.Position
		r.Speed = 0
		r.Waiting = true
		r.WaitTime = 0
	}
	r.trail.Add(r.Position, r.Distance, arrived)
}

// Turn leaves the junction along dir.
func (r *Runner) Turn(dir r3.Vec) {
	r.Heading = dir
	r.Waiting = false
	r.WaitTime = 0
}
