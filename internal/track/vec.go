package track

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Track space is Y-up: segments lie on the X/Z plane.
var (
	Up      = r3.Vec{Y: 1}
	Forward = r3.Vec{Z: 1}
)

// keepTolerance is the minimum dot product between a provisional child's
// direction and the committed direction for the child to survive a commit.
const keepTolerance = 0.99

// Horizontal projects v onto the X/Z plane and normalizes it. The second
// result is false when nothing is left after the projection.
func Horizontal(v r3.Vec) (r3.Vec, bool) {
	v.Y = 0
	n := r3.Norm(v)
	if n < 1e-9 || math.IsNaN(n) || math.IsInf(n, 0) {
		return r3.Vec{}, false
	}
	return r3.Scale(1/n, v), true
}

// Left turns a horizontal direction a quarter turn towards the runner's
// left hand (right-handed, Y-up).
func Left(dir r3.Vec) r3.Vec {
	return r3.Vec{X: dir.Z, Z: -dir.X}
}

// Right turns a horizontal direction a quarter turn towards the runner's
// right hand.
func Right(dir r3.Vec) r3.Vec {
	return r3.Vec{X: -dir.Z, Z: dir.X}
}

// Along returns the signed distance from origin to p measured along dir.
func Along(p, origin, dir r3.Vec) float64 {
	return r3.Dot(r3.Sub(p, origin), dir)
}

// Advance returns from + dir*dist.
func Advance(from, dir r3.Vec, dist float64) r3.Vec {
	return r3.Add(from, r3.Scale(dist, dir))
}

// SameHeading reports whether two unit directions agree within the commit
// tolerance.
func SameHeading(a, b r3.Vec) bool {
	return r3.Dot(a, b) > keepTolerance
}
