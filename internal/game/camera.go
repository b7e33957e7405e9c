package game

import (
	"gonum.org/v1/gonum/spatial/r3"

	"trackrunner/internal/track"
)

// Camera looks down on the X/Z plane. X and Y are the world X and Z of
// the view centre.
type Camera struct {
	X, Y float64
	Zoom float64 // screen pixels per world unit
	Yaw  float64 // radians, eases towards the runner's heading

	// Screen shake.
	ShakeX, ShakeY float64 // current offset in world units
	ShakeTimer     float64 // remaining shake time
	ShakeIntensity float64 // max offset magnitude
}

func NewCamera() Camera {
	return Camera{Zoom: DefaultZoom}
}

// AddShake triggers screen shake with given intensity and duration.
func (c *Camera) AddShake(intensity, duration float64) {
	if intensity > c.ShakeIntensity {
		c.ShakeIntensity = intensity
	}
	if duration > c.ShakeTimer {
		c.ShakeTimer = duration
	}
}

// UpdateShake decays shake and computes random offsets.
func (c *Camera) UpdateShake(dt float64, seed uint64) {
	if c.ShakeTimer <= 0 {
		c.ShakeX = 0
		c.ShakeY = 0
		c.ShakeIntensity = 0
		return
	}
	c.ShakeTimer -= dt
	if c.ShakeTimer < 0 {
		c.ShakeTimer = 0
	}
	t := c.ShakeTimer
	rr := track.NewRand(seed ^ uint64(t*10000))
	mag := c.ShakeIntensity * (t / (t + 0.08))
	c.ShakeX = (rr.Float64()*2 - 1) * mag
	c.ShakeY = (rr.Float64()*2 - 1) * mag
}

// EffectivePos returns camera position with shake applied.
func (c *Camera) EffectivePos() (float64, float64) {
	return c.X + c.ShakeX, c.Y + c.ShakeY
}

// Follow eases the camera towards a point CameraLead units ahead of the
// runner and turns it to face the runner's heading.
func (c *Camera) Follow(pos, dir r3.Vec, dt float64) {
	target := track.Advance(pos, dir, CameraLead)
	k := Clamp(dt*CameraStiffness, 0, 1)
	c.X += (target.X - c.X) * k
	c.Y += (target.Z - c.Y) * k
	c.Yaw += angDiff(c.Yaw, heading(dir)) * k
	c.Zoom = Clamp(c.Zoom, MinZoom, MaxZoom)
}

// Snap places the camera on the follow target immediately.
func (c *Camera) Snap(pos, dir r3.Vec) {
	target := track.Advance(pos, dir, CameraLead)
	c.X, c.Y = target.X, target.Z
	c.Yaw = heading(dir)
}
