//go:build !android

package desktop

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"trackrunner/internal/game"
)

// MaxSpriteRender caps the sprites uploaded per draw call.
const MaxSpriteRender = 4096

// glOffset converts a byte offset to unsafe.Pointer for OpenGL VBO offset params.
func glOffset(n int) unsafe.Pointer { return unsafe.Pointer(uintptr(n)) }

// view is the per-frame camera state shared by every program.
type view struct {
	x, y     float32
	hx, hy   float32
	zoom     float32
	fbW, fbH int
}

func newView(cam game.Camera, fbW, fbH int) view {
	x, y := cam.EffectivePos()
	return view{
		x:    float32(x),
		y:    float32(y),
		hx:   float32(math.Sin(cam.Yaw)),
		hy:   float32(math.Cos(cam.Yaw)),
		zoom: float32(cam.Zoom),
		fbW:  fbW,
		fbH:  fbH,
	}
}

// viewUniforms are the camera uniform locations of one program.
type viewUniforms struct {
	camera, heading, zoom, resolution int32
}

func lookupView(prog uint32) viewUniforms {
	return viewUniforms{
		camera:     gl.GetUniformLocation(prog, gl.Str("uCamera\x00")),
		heading:    gl.GetUniformLocation(prog, gl.Str("uHeading\x00")),
		zoom:       gl.GetUniformLocation(prog, gl.Str("uZoom\x00")),
		resolution: gl.GetUniformLocation(prog, gl.Str("uResolution\x00")),
	}
}

func (u viewUniforms) set(v view) {
	gl.Uniform2f(u.camera, v.x, v.y)
	gl.Uniform2f(u.heading, v.hx, v.hy)
	gl.Uniform1f(u.zoom, v.zoom)
	gl.Uniform2f(u.resolution, float32(v.fbW), float32(v.fbH))
}

type Renderer struct {
	// Rect program.
	rectProg uint32
	rectVAO  uint32
	rectVBO  uint32
	rectView viewUniforms
	uCentre  int32
	uSize    int32
	uDir     int32
	uColor   int32
	uStripe  int32

	// Sprite program.
	spriteProg uint32
	spriteVAO  uint32
	spriteVBO  uint32
	spriteView viewUniforms

	// Glow program, uses spriteVAO with additive blend only.
	glowProg uint32
	glowView viewUniforms

	view view
}

func NewRenderer() (*Renderer, error) {
	rectProg, err := linkProgram(rectVertSrc, rectFragSrc)
	if err != nil {
		return nil, fmt.Errorf("rect program: %w", err)
	}
	spriteProg, err := linkProgram(spriteVertSrc, spriteFragSrc)
	if err != nil {
		gl.DeleteProgram(rectProg)
		return nil, fmt.Errorf("sprite program: %w", err)
	}
	glowProg, err := linkProgram(spriteVertSrc, glowFragSrc)
	if err != nil {
		gl.DeleteProgram(rectProg)
		gl.DeleteProgram(spriteProg)
		return nil, fmt.Errorf("glow program: %w", err)
	}

	r := &Renderer{
		rectProg:   rectProg,
		spriteProg: spriteProg,
		glowProg:   glowProg,
	}

	// Rect VAO/VBO: a unit quad (6 vertices, 2 triangles).
	var qVAO, qVBO uint32
	gl.GenVertexArrays(1, &qVAO)
	gl.GenBuffers(1, &qVBO)
	gl.BindVertexArray(qVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, qVBO)

	quadVerts := [12]float32{
		0, 0, 1, 0, 1, 1,
		0, 0, 1, 1, 0, 1,
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVerts)*4, gl.Ptr(&quadVerts[0]), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, glOffset(0))
	r.rectVAO = qVAO
	r.rectVBO = qVBO

	gl.UseProgram(rectProg)
	r.rectView = lookupView(rectProg)
	r.uCentre = gl.GetUniformLocation(rectProg, gl.Str("uCentre\x00"))
	r.uSize = gl.GetUniformLocation(rectProg, gl.Str("uSize\x00"))
	r.uDir = gl.GetUniformLocation(rectProg, gl.Str("uDir\x00"))
	r.uColor = gl.GetUniformLocation(rectProg, gl.Str("uColor\x00"))
	r.uStripe = gl.GetUniformLocation(rectProg, gl.Str("uStripe\x00"))

	// Sprite VAO/VBO: streaming buffer for point sprites.
	// Each sprite: 8 floats (x, y, size, r, g, b, a, rotation).
	var sVAO, sVBO uint32
	gl.GenVertexArrays(1, &sVAO)
	gl.GenBuffers(1, &sVBO)
	gl.BindVertexArray(sVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, sVBO)

	stride := int32(8 * 4)
	gl.BufferData(gl.ARRAY_BUFFER, MaxSpriteRender*int(stride), nil, gl.STREAM_DRAW)
	// aWorldPos (vec2)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, glOffset(0))
	// aSize (float)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 1, gl.FLOAT, false, stride, glOffset(2*4))
	// aColor (vec4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 4, gl.FLOAT, false, stride, glOffset(3*4))
	// aRotation (float)
	gl.EnableVertexAttribArray(3)
	gl.VertexAttribPointer(3, 1, gl.FLOAT, false, stride, glOffset(7*4))
	r.spriteVAO = sVAO
	r.spriteVBO = sVBO

	gl.UseProgram(spriteProg)
	r.spriteView = lookupView(spriteProg)
	gl.UseProgram(glowProg)
	r.glowView = lookupView(glowProg)

	gl.BindVertexArray(0)
	return r, nil
}

func (r *Renderer) Destroy() {
	for _, id := range []uint32{r.rectVBO, r.spriteVBO} {
		if id != 0 {
			gl.DeleteBuffers(1, &id)
		}
	}
	for _, id := range []uint32{r.rectVAO, r.spriteVAO} {
		if id != 0 {
			gl.DeleteVertexArrays(1, &id)
		}
	}
	for _, id := range []uint32{r.rectProg, r.spriteProg, r.glowProg} {
		if id != 0 {
			gl.DeleteProgram(id)
		}
	}
}

// BeginFrame clears to bg and leaves the rect program bound.
func (r *Renderer) BeginFrame(cam game.Camera, fbW, fbH int, bg game.RGB) {
	r.view = newView(cam, fbW, fbH)
	gl.Viewport(0, 0, int32(fbW), int32(fbH))
	cr, cg, cb := bg.Floats()
	gl.ClearColor(cr, cg, cb, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.UseProgram(r.rectProg)
	gl.BindVertexArray(r.rectVAO)
	r.rectView.set(r.view)
}

// DrawRect fills an oriented rectangle of length along dir and width
// across it. stripe.A of zero draws no centre line.
func (r *Renderer) DrawRect(cx, cy, dx, dy, length, width float32, fill, stripe [4]float32) {
	gl.Uniform2f(r.uCentre, cx, cy)
	gl.Uniform2f(r.uSize, length, width)
	gl.Uniform2f(r.uDir, dx, dy)
	gl.Uniform4f(r.uColor, fill[0], fill[1], fill[2], fill[3])
	gl.Uniform4f(r.uStripe, stripe[0], stripe[1], stripe[2], stripe[3])
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
}

// DrawSprites renders an array of point sprites using the sprite program.
// buf format: [x, y, size, r, g, b, a, rotation] * N (8 floats per sprite).
func (r *Renderer) DrawSprites(buf []float32) {
	r.drawPoints(r.spriteProg, r.spriteView, buf, false)
}

// DrawGlowSprites renders light sprites with additive blending and radial falloff.
// RGB values should be pre-multiplied by desired brightness.
func (r *Renderer) DrawGlowSprites(buf []float32) {
	r.drawPoints(r.glowProg, r.glowView, buf, true)
}

func (r *Renderer) drawPoints(prog uint32, u viewUniforms, buf []float32, additive bool) {
	if len(buf) == 0 {
		return
	}
	count := len(buf) / 8
	if count > MaxSpriteRender {
		count = MaxSpriteRender
	}

	gl.UseProgram(prog)
	gl.BindVertexArray(r.spriteVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.spriteVBO)
	u.set(r.view)

	gl.Enable(gl.BLEND)
	if additive {
		gl.BlendFunc(gl.ONE, gl.ONE)
	} else {
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}

	gl.BufferData(gl.ARRAY_BUFFER, count*8*4, gl.Ptr(buf), gl.STREAM_DRAW)
	gl.DrawArrays(gl.POINTS, 0, int32(count))

	gl.Disable(gl.BLEND)
}

// RestoreRectProgram switches back to the rect program after sprite drawing.
func (r *Renderer) RestoreRectProgram() {
	gl.UseProgram(r.rectProg)
	gl.BindVertexArray(r.rectVAO)
}
