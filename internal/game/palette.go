package game

// RGB is an 8-bit per channel colour.
type RGB struct {
	R, G, B uint8
}

func (c RGB) Mul(k uint8) RGB {
	return RGB{
		R: uint8((uint16(c.R) * uint16(k)) / 255),
		G: uint8((uint16(c.G) * uint16(k)) / 255),
		B: uint8((uint16(c.B) * uint16(k)) / 255),
	}
}

func (c RGB) Add(dr, dg, db int) RGB {
	r := int(c.R) + dr
	g := int(c.G) + dg
	b := int(c.B) + db
	if r < 0 {
		r = 0
	} else if r > 255 {
		r = 255
	}
	if g < 0 {
		g = 0
	} else if g > 255 {
		g = 255
	}
	if b < 0 {
		b = 0
	} else if b > 255 {
		b = 255
	}
	return RGB{R: uint8(r), G: uint8(g), B: uint8(b)}
}

// Floats returns the colour as 0..1 components.
func (c RGB) Floats() (float32, float32, float32) {
	return float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255
}

// RoadPalette colours one family of road templates.
type RoadPalette struct {
	Surface RGB
	Stripe  RGB
	Wall    RGB
}

var Palette = struct {
	Background RGB
	Branch     RGB
	Pending    RGB // branch awaiting a choice
	Runner     RGB
	Pursuer    RGB
	Glow       RGB
	Text       RGB
}{
	Background: RGB{R: 24, G: 26, B: 34},
	Branch:     RGB{R: 104, G: 108, B: 112},
	Pending:    RGB{R: 255, G: 200, B: 90},
	Runner:     RGB{R: 90, G: 220, B: 120},
	Pursuer:    RGB{R: 230, G: 70, B: 60},
	Glow:       RGB{R: 255, G: 200, B: 90},
	Text:       RGB{R: 216, G: 210, B: 191},
}

// RoadPalettes is keyed by the palette name a road template carries.
var RoadPalettes = map[string]RoadPalette{
	"asphalt": {Surface: RGB{R: 60, G: 66, B: 79}, Stripe: RGB{R: 214, G: 190, B: 153}, Wall: RGB{R: 86, G: 89, B: 88}},
	"lit":     {Surface: RGB{R: 72, G: 76, B: 88}, Stripe: RGB{R: 255, G: 210, B: 110}, Wall: RGB{R: 153, G: 144, B: 133}},
	"canyon":  {Surface: RGB{R: 160, G: 110, B: 70}, Stripe: RGB{R: 195, G: 174, B: 142}, Wall: RGB{R: 190, G: 70, B: 45}},
	"neon":    {Surface: RGB{R: 30, G: 20, B: 60}, Stripe: RGB{R: 255, G: 80, B: 220}, Wall: RGB{R: 60, G: 220, B: 255}},
}

var defaultRoadPalette = RoadPalettes["asphalt"]

// RoadPaletteFor resolves a palette key, falling back to asphalt for
// unknown or empty keys.
func RoadPaletteFor(key string) RoadPalette {
	if p, ok := RoadPalettes[key]; ok {
		return p
	}
	return defaultRoadPalette
}

// Fade mixes c towards the background by t, used for segments that have
// not been promoted yet.
func Fade(c RGB, t float64) RGB {
	return lerpRGB(c, Palette.Background, t)
}
