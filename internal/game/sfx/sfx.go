// Package sfx synthesizes the game's sound cues as interleaved stereo
// float32 little-endian PCM.
package sfx

import (
	"encoding/binary"
	"math"

	"trackrunner/internal/game"
)

const (
	SampleRate   = 44100
	ChannelCount = 2
	frameBytes   = 8
)

// For returns the samples for cue, or nil for cues without a sound.
func For(cue game.Cue) []byte {
	switch cue {
	case game.CueStart:
		return start()
	case game.CueBranch:
		return junction()
	case game.CueTurn:
		return turn()
	case game.CueTier:
		return tierUp()
	case game.CueCaught:
		return caught()
	}
	return nil
}

// Frames is the number of stereo frames in buf.
func Frames(buf []byte) int {
	return len(buf) / frameBytes
}

// envelope is attack/decay/sustain/release, with the three timed stages
// given as fractions of the note.
type envelope struct {
	attack, decay, sustain, release float64
}

func (e envelope) at(p float64) float64 {
	switch {
	case p < e.attack:
		return p / e.attack
	case p < e.attack+e.decay:
		return 1 - (p-e.attack)/e.decay*(1-e.sustain)
	case p < 1-e.release:
		return e.sustain
	}
	return e.sustain * (1 - (p-(1-e.release))/e.release)
}

// saturate is a soft knee: cubic inside [-1,1], hyperbolic outside.
func saturate(x float64) float64 {
	switch {
	case x > 1:
		return 1 - 0.5/x
	case x < -1:
		return -1 - 0.5/x
	}
	return x - x*x*x/3
}

// fm is a two-operator sine voice.
func fm(t, carrier, ratio, index float64) float64 {
	return math.Sin(2*math.Pi*carrier*t + index*math.Sin(2*math.Pi*carrier*ratio*t))
}

// noise is a 64-bit LCG yielding samples in [-1,1].
type noise uint64

func (n *noise) next() float64 {
	*n = *n*6364136223846793005 + 1442695040888963407
	return float64(int64(uint64(*n)>>33)-1<<30) / (1 << 30)
}

func seconds(s float64) int { return int(s * SampleRate) }

type pcm []byte

func newPCM(frames int) pcm { return make(pcm, frames*frameBytes) }

func (b pcm) put(i int, left, right float64) {
	binary.LittleEndian.PutUint32(b[i*frameBytes:], math.Float32bits(float32(saturate(left))))
	binary.LittleEndian.PutUint32(b[i*frameBytes+4:], math.Float32bits(float32(saturate(right))))
}

// render saturates a mono mix into a centred stereo buffer.
func render(mix []float64) []byte {
	b := newPCM(len(mix))
	for i, s := range mix {
		b.put(i, s, s)
	}
	return b
}

// bell is one FM note with a quieter octave partial, rung into mix from
// frame at to the end of the buffer.
type bell struct {
	freq, ratio, index, gain, octave float64
	env                              envelope
}

func (n bell) ring(mix []float64, at int) {
	dur := len(mix) - at
	for j := 0; j < dur; j++ {
		t := float64(at+j) / SampleRate
		e := n.env.at(float64(j) / float64(dur))
		mix[at+j] += fm(t, n.freq, n.ratio, n.index*e)*e*n.gain + math.Sin(4*math.Pi*n.freq*t)*e*n.octave
	}
}

// arpeggio rings freqs one after another, step apart, letting each note
// sustain under the next.
func arpeggio(freqs []float64, step, tail int, voice bell) []byte {
	mix := make([]float64, len(freqs)*step+tail)
	for i, f := range freqs {
		voice.freq = f
		voice.ring(mix, i*step)
	}
	return render(mix)
}

// start is a short click that drops an octave.
func start() []byte {
	mix := make([]float64, seconds(0.065))
	env := envelope{0.004, 0.55, 0, 0.1}
	for i := range mix {
		p := float64(i) / float64(len(mix))
		mix[i] = fm(float64(i)/SampleRate, 1400-700*p, 1, 0.6) * env.at(p) * 0.38
	}
	return render(mix)
}

// junction rises a fifth, E5 to B5.
func junction() []byte {
	return arpeggio([]float64{659.25, 987.77}, seconds(0.09), seconds(0.2),
		bell{ratio: 2.756, index: 5, gain: 0.34, octave: 0.08, env: envelope{0.004, 0.55, 0.05, 0.35}})
}

// tierUp climbs an A major arpeggio.
func tierUp() []byte {
	return arpeggio([]float64{440, 554.37, 659.25, 880, 1108.73}, seconds(0.09), seconds(0.25),
		bell{ratio: 3.5, index: 5.5, gain: 0.28, octave: 0.07, env: envelope{0.003, 0.65, 0.04, 0.28}})
}

// turn is low-passed noise swept open over a falling tone.
func turn() []byte {
	mix := make([]float64, seconds(0.18))
	env := envelope{0.08, 0.4, 0.3, 0.4}
	src := noise(0x7A11)
	lp := 0.0
	for i := range mix {
		p := float64(i) / float64(len(mix))
		k := 0.15 + 0.6*p
		lp += (src.next() - lp) * k
		e := env.at(p)
		mix[i] = lp*e*0.45 + math.Sin(2*math.Pi*(520-260*p)*float64(i)/SampleRate)*e*0.12
	}
	return render(mix)
}

// caught lets an A minor triad fall apart, each voice detuning downwards.
func caught() []byte {
	mix := make([]float64, seconds(0.75))
	env := envelope{0.008, 0.25, 0.3, 0.45}
	for _, note := range []struct{ freq, onset float64 }{{329.63, 0}, {261.63, 0.14}, {220, 0.28}} {
		at := seconds(note.onset)
		for i := at; i < len(mix); i++ {
			t := float64(i) / SampleRate
			p := float64(i-at) / float64(len(mix)-at)
			e := env.at(p)
			f := note.freq * (1 - p*0.025)
			mix[i] += fm(t, f, 2, 2*e)*e*0.32 + math.Sin(math.Pi*f*t)*e*0.1
		}
	}
	return render(mix)
}

// Siren is one wail of the pursuer's siren. pan runs from -1 (left) to 1
// (right); pitch scales the sweep, above 1 when closing in.
func Siren(pan, pitch float64) []byte {
	if pitch <= 0 {
		pitch = 1
	}
	const dur = 0.74
	right := 0.5 + 0.5*game.Clamp(pan, -1, 1)
	gl, gr := math.Sqrt(1-right), math.Sqrt(right)

	b := newPCM(seconds(dur))
	src := noise(0xC0D51E7)
	phase := 0.0
	for i := 0; i < Frames(b); i++ {
		t := float64(i) / SampleRate
		tri := 1 - math.Abs(2*t/dur-1)
		sweep := tri * tri * (3 - 2*tri)
		f := (620 + 440*sweep) * pitch * (1 + 0.006*math.Sin(10*math.Pi*t))
		phase += 2 * math.Pi * f / SampleRate

		tone := math.Sin(phase)*0.84 + math.Sin(2*phase+0.22)*0.18 + math.Sin(3*phase+0.55)*0.07 + src.next()*0.012
		s := saturate(tone*1.55) * 0.3 * (0.9 + 0.1*math.Sin(5.4*math.Pi*t))
		s *= game.Clamp(t*34, 0, 1) * game.Clamp((dur-t)*24, 0, 1)
		b.put(i, s*gl, s*gr)
	}
	return b
}
