//go:build !android

package desktop

import (
	"math"

	"trackrunner/internal/game"
	"trackrunner/internal/world"
)

// provisionalFade is how far unchosen roads sink into the background.
const provisionalFade = 0.55

func rgba(c game.RGB, a float32) [4]float32 {
	r, g, b := c.Floats()
	return [4]float32{r, g, b, a}
}

// drawTrack draws every road, branch and visible wall on the stage.
func drawTrack(r *Renderer, s *game.GameSession) {
	stage := s.Stage()
	if stage == nil {
		return
	}
	ledger := s.Generator().Ledger()
	pending, hasPending := s.Generator().Pending()

	objs := stage.Snapshot()
	// Surfaces first so walls sit on top of them.
	for pass := 0; pass < 2; pass++ {
		for i := range objs {
			o := &objs[i]
			if !o.Visible || o.Kind == world.KindDecor {
				continue
			}
			if (o.Kind == world.KindWall) != (pass == 1) {
				continue
			}
			fade := 0.0
			if seg, ok := ledger.Lookup(o.Root); ok && seg.Provisional {
				fade = provisionalFade
			}

			pal := s.RoadPalette(o.Template)
			fill := pal.Surface
			stripe := [4]float32{}
			switch o.Kind {
			case world.KindRoad:
				stripe = rgba(game.Fade(pal.Stripe, fade), 1)
			case world.KindBranch:
				fill = game.Palette.Branch
				if hasPending && o.Root == pending.Handle {
					fill = game.Palette.Pending
				}
			case world.KindWall:
				if root, ok := stage.Lookup(o.Root); ok {
					fill = s.RoadPalette(root.Template).Wall
				}
			}
			r.DrawRect(float32(o.Position.X), float32(o.Position.Z),
				float32(o.Direction.X), float32(o.Direction.Z),
				float32(o.Length), float32(o.Width),
				rgba(game.Fade(fill, fade), 1), stripe)
		}
	}
}

// appendSprite adds one [x, y, size, r, g, b, a, rot] record.
func appendSprite(buf []float32, x, y, size float64, c game.RGB, a float32) []float32 {
	cr, cg, cb := c.Floats()
	return append(buf, float32(x), float32(y), float32(size), cr, cg, cb, a, 0)
}

// spriteLayer collects props, the pursuer and the runner.
func spriteLayer(buf []float32, s *game.GameSession) []float32 {
	buf = buf[:0]
	if stage := s.Stage(); stage != nil {
		for _, o := range stage.Snapshot() {
			if o.Kind != world.KindDecor {
				continue
			}
			buf = appendSprite(buf, o.Position.X, o.Position.Z, o.Width, game.Palette.Branch.Add(20, 30, 10), 1)
		}
	}
	if s.Pursuer != nil {
		p := s.Pursuer.Position
		buf = appendSprite(buf, p.X, p.Z, 5, game.Palette.Pursuer, 1)
	}
	if s.Runner != nil {
		buf = appendSprite(buf, s.Runner.Position.X, s.Runner.Position.Z, 4, game.Palette.Runner, 1)
	}
	return buf
}

// glowLayer lights the pending junction and pulses the pursuer when close.
func glowLayer(buf []float32, s *game.GameSession, t float64) []float32 {
	buf = buf[:0]
	if s.Generator() == nil {
		return buf
	}
	pulse := 0.75 + 0.25*math.Sin(t*6)
	if p, ok := s.Generator().Pending(); ok {
		buf = appendSprite(buf, p.Position.X, p.Position.Z, 40, game.Palette.Glow.Mul(uint8(160*pulse)), 1)
	}
	if s.Pursuer != nil && s.Runner != nil {
		if gap := s.Pursuer.Gap(s.Runner); gap < 40 {
			k := 1 - gap/40
			p := s.Pursuer.Position
			buf = appendSprite(buf, p.X, p.Z, 18, game.Palette.Pursuer.Mul(uint8(200*k*pulse)), 1)
		}
	}
	return buf
}
