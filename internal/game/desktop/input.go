//go:build !android

package desktop

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"trackrunner/internal/game"
)

type Input struct {
	prevKeys map[glfw.Key]bool
}

func NewInput() *Input {
	return &Input{prevKeys: make(map[glfw.Key]bool)}
}

func (in *Input) JustPressed(window *glfw.Window, key glfw.Key) bool {
	down := window.GetKey(key) == glfw.Press
	jp := down && !in.prevKeys[key]
	in.prevKeys[key] = down
	return jp
}

// turnKeys maps both the arrow keys and WASD onto junction choices.
var turnKeys = []struct {
	key  glfw.Key
	turn game.Turn
}{
	{glfw.KeyA, game.TurnLeft},
	{glfw.KeyLeft, game.TurnLeft},
	{glfw.KeyW, game.TurnForward},
	{glfw.KeyUp, game.TurnForward},
	{glfw.KeyD, game.TurnRight},
	{glfw.KeyRight, game.TurnRight},
}

// Turn returns the junction choice pressed this frame, if any. Every key
// is polled so held keys do not retrigger on the next frame.
func (in *Input) Turn(window *glfw.Window) (game.Turn, bool) {
	var (
		got game.Turn
		ok  bool
	)
	for _, k := range turnKeys {
		if in.JustPressed(window, k.key) && !ok {
			got, ok = k.turn, true
		}
	}
	return got, ok
}

// UpdateCameraZoom handles E/R zoom.
func UpdateCameraZoom(cam *game.Camera, window *glfw.Window, dt float64) {
	zoomRate := 1.4
	if window.GetKey(glfw.KeyE) == glfw.Press {
		cam.Zoom *= 1 + zoomRate*dt
	}
	if window.GetKey(glfw.KeyR) == glfw.Press {
		cam.Zoom /= 1 + zoomRate*dt
	}
	if cam.Zoom < game.MinZoom {
		cam.Zoom = game.MinZoom
	}
	if cam.Zoom > game.MaxZoom {
		cam.Zoom = game.MaxZoom
	}
}
