package sfx

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackrunner/internal/game"
)

func channels(buf []byte) (left, right []float64) {
	for i := 0; i+frameBytes <= len(buf); i += frameBytes {
		left = append(left, float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[i:]))))
		right = append(right, float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[i+4:]))))
	}
	return left, right
}

func peak(s []float64) float64 {
	m := 0.0
	for _, v := range s {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

func TestCuesAreBoundedStereo(t *testing.T) {
	for _, cue := range []game.Cue{game.CueStart, game.CueBranch, game.CueTurn, game.CueTier, game.CueCaught} {
		buf := For(cue)
		require.NotEmpty(t, buf, "cue %d", cue)
		assert.Zero(t, len(buf)%frameBytes)
		assert.Less(t, Frames(buf), SampleRate, "cues stay under a second")

		left, right := channels(buf)
		assert.Equal(t, left, right, "cues are centred")
		for _, v := range left {
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		}
		p := peak(left)
		assert.Greater(t, p, 0.01, "cue %d is audible", cue)
		assert.LessOrEqual(t, p, 1.0)
	}
	assert.Nil(t, For(game.Cue(99)))
}

func TestSirenPans(t *testing.T) {
	left, right := channels(Siren(-1, 1))
	assert.Greater(t, peak(left), 0.05)
	assert.Zero(t, peak(right))

	left, right = channels(Siren(1, 1.2))
	assert.Zero(t, peak(left))
	assert.Greater(t, peak(right), 0.05)

	left, right = channels(Siren(0, 0))
	assert.InDelta(t, peak(left), peak(right), 1e-6)
}

func TestEnvelope(t *testing.T) {
	e := envelope{attack: 0.1, decay: 0.2, sustain: 0.5, release: 0.2}
	assert.InDelta(t, 0.5, e.at(0.05), 1e-9)
	assert.InDelta(t, 1.0, e.at(0.1), 1e-9)
	assert.InDelta(t, 0.5, e.at(0.5), 1e-9)
	assert.InDelta(t, 0.0, e.at(1.0), 1e-9)
	assert.InDelta(t, 0.75, saturate(2), 1e-9)
	assert.InDelta(t, -0.75, saturate(-2), 1e-9)
	assert.InDelta(t, 2.0/3, saturate(1), 1e-9)
}

func TestNoiseStaysInRange(t *testing.T) {
	src := noise(1)
	for i := 0; i < 10000; i++ {
		v := src.next()
		require.GreaterOrEqual(t, v, -1.0)
		require.Less(t, v, 1.0)
	}
}

func TestArpeggioRingsEachNote(t *testing.T) {
	step := seconds(0.05)
	buf := arpeggio([]float64{440, 880}, step, step, bell{ratio: 1, gain: 0.3, env: envelope{0.01, 0.2, 0.5, 0.2}})
	assert.Equal(t, 3*step, Frames(buf))
	left, _ := channels(buf)
	assert.Greater(t, peak(left[step:2*step]), 0.05, "second note starts on its step")
}
