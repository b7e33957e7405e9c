//go:build !android

package desktop

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// viewGLSL maps a world X/Z position to clip space. The view turns with
// the camera so that uHeading points up the screen.
const viewGLSL = `
uniform vec2 uCamera;
uniform vec2 uHeading;
uniform float uZoom;
uniform vec2 uResolution;

vec4 toClip(vec2 worldPos) {
    vec2 d = worldPos - uCamera;
    vec2 right = vec2(-uHeading.y, uHeading.x);
    vec2 view = vec2(dot(d, right), -dot(d, uHeading));
    vec2 screenPos = view * uZoom + uResolution * 0.5;
    vec2 ndc = (screenPos / uResolution) * 2.0 - 1.0;
    ndc.y = -ndc.y;
    return vec4(ndc, 0.0, 1.0);
}
`

// Rect vertex shader: one oriented quad per draw, length along uDir.
const rectVertSrc = `#version 410 core

layout(location = 0) in vec2 aPos; // 0..1 quad vertex

uniform vec2 uCentre;
uniform vec2 uSize;
uniform vec2 uDir;
` + viewGLSL + `
out vec2 vUV;

void main() {
    vUV = aPos;
    vec2 local = (aPos - 0.5) * uSize;
    vec2 across = vec2(-uDir.y, uDir.x);
    gl_Position = toClip(uCentre + uDir * local.x + across * local.y);
}
` + "\x00"

// Rect fragment shader: flat colour with a centre stripe along the length.
const rectFragSrc = `#version 410 core

uniform vec4 uColor;
uniform vec4 uStripe;

in vec2 vUV;
out vec4 FragColor;

void main() {
    float band = step(abs(vUV.y - 0.5), 0.03) * step(0.5, fract(vUV.x * 3.0));
    FragColor = mix(uColor, uStripe, band * uStripe.a);
}
` + "\x00"

// Sprite vertex shader: point sprites with per-vertex pos/size/color/rotation.
const spriteVertSrc = `#version 410 core

layout(location = 0) in vec2 aWorldPos;
layout(location = 1) in float aSize;
layout(location = 2) in vec4 aColor;
layout(location = 3) in float aRotation;
` + viewGLSL + `
out vec4 vColor;

void main() {
    gl_Position = toClip(aWorldPos);
    gl_PointSize = max(1.0, round(aSize * uZoom));
    // round dots ignore aRotation
    vColor = aColor;
}
` + "\x00"

// Sprite fragment shader: round point sprite.
const spriteFragSrc = `#version 410 core

in vec4 vColor;
out vec4 FragColor;

void main() {
    if (length(gl_PointCoord - vec2(0.5)) > 0.5) discard;
    FragColor = vColor;
}
` + "\x00"

// Glow fragment shader: additive light pool, brightest at the centre.
// vColor.rgb carries the brightness.
const glowFragSrc = `#version 410 core

in vec4 vColor;
out vec4 FragColor;

void main() {
    float r = 2.0 * distance(gl_PointCoord, vec2(0.5));
    float pool = 1.0 - smoothstep(0.0, 1.0, r);
    FragColor = vec4(vColor.rgb * pool * pool, 1.0);
}
` + "\x00"

// shaderLog fetches a compile or link log through the given getters.
func shaderLog(id uint32, iv func(uint32, uint32, *int32), info func(uint32, int32, *int32, *uint8)) string {
	var n int32
	iv(id, gl.INFO_LOG_LENGTH, &n)
	if n <= 0 {
		return "no log"
	}
	buf := make([]byte, n)
	info(id, n, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00\n")
}

func compileShader(kind uint32, source string) (uint32, error) {
	sh := gl.CreateShader(kind)
	src, free := gl.Strs(source)
	defer free()
	gl.ShaderSource(sh, 1, src, nil)
	gl.CompileShader(sh)

	var ok int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &ok)
	if ok != gl.TRUE {
		msg := shaderLog(sh, gl.GetShaderiv, gl.GetShaderInfoLog)
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("compile shader %#x: %s", kind, msg)
	}
	return sh, nil
}

// linkProgram builds a program from a vertex and a fragment source. The
// shader objects are released whether or not linking succeeds.
func linkProgram(vertSrc, fragSrc string) (uint32, error) {
	var stages []uint32
	defer func() {
		for _, sh := range stages {
			gl.DeleteShader(sh)
		}
	}()
	for _, st := range []struct {
		kind uint32
		src  string
	}{{gl.VERTEX_SHADER, vertSrc}, {gl.FRAGMENT_SHADER, fragSrc}} {
		sh, err := compileShader(st.kind, st.src)
		if err != nil {
			return 0, err
		}
		stages = append(stages, sh)
	}

	prog := gl.CreateProgram()
	for _, sh := range stages {
		gl.AttachShader(prog, sh)
	}
	gl.LinkProgram(prog)
	for _, sh := range stages {
		gl.DetachShader(prog, sh)
	}

	var ok int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &ok)
	if ok != gl.TRUE {
		msg := shaderLog(prog, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link program: %s", msg)
	}
	return prog, nil
}
