package game

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Pursuer chases the runner along its trail. It starts Gap units behind
// and catches the runner when the gap closes to CatchDistance.
type Pursuer struct {
	Position r3.Vec
	Distance float64 // trail distance, negative before it reaches the start
	Speed    float64
}

func NewPursuer(gap float64) *Pursuer {
	return &Pursuer{Distance: -gap}
}

// Update moves the pursuer at speed along trail and trims the trail
// behind it.
func (p *Pursuer) Update(dt, speed float64, trail *Trail) {
	p.Speed = speed
	p.Distance += speed * dt
	p.Position = trail.At(p.Distance)
	trail.Trim(p.Distance)
}

// Gap is how far behind the runner the pursuer is.
func (p *Pursuer) Gap(r *Runner) float64 {
	return r.Distance - p.Distance
}

// Caught reports whether the pursuer has reached the runner.
func (p *Pursuer) Caught(r *Runner) bool {
	return p.Gap(r) <= CatchDistance
}
