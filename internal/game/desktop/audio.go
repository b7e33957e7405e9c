//go:build !android

package desktop

import (
	"io"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/oto/v2"

	"trackrunner/internal/game"
	"trackrunner/internal/game/sfx"
)

const (
	sfxVolume = 0.58
	// sirenRange is the pursuer gap below which the siren plays.
	sirenRange  = 60.0
	sirenPeriod = 0.6 // seconds between siren bursts
	bitDepth    = 0   // 32-bit float (oto.FormatFloat32LE)
)

// Audio plays cue sounds through one oto context. A nil *Audio is silent.
type Audio struct {
	ctx    *oto.Context
	ready  chan struct{}
	active int32

	sirenWait float64
}

// maxVoices limits simultaneous sounds to avoid speaker clipping.
const maxVoices = 4

func NewAudio() (*Audio, error) {
	ctx, ready, err := oto.NewContext(sfx.SampleRate, sfx.ChannelCount, bitDepth)
	if err != nil {
		return nil, err
	}
	return &Audio{ctx: ctx, ready: ready}, nil
}

// Cues plays one sound per cue.
func (a *Audio) Cues(cues []game.Cue) {
	if a == nil {
		return
	}
	for _, c := range cues {
		a.play(sfx.For(c), 1)
	}
}

// Siren wails more often and louder the closer the pursuer is.
func (a *Audio) Siren(s *game.GameSession, dt float64) {
	if a == nil || s.State != game.StateRunning {
		return
	}
	gap := s.Pursuer.Gap(s.Runner)
	if gap > sirenRange {
		a.sirenWait = 0
		return
	}
	a.sirenWait -= dt
	if a.sirenWait > 0 {
		return
	}
	a.sirenWait = sirenPeriod
	k := 1 - gap/sirenRange
	a.play(sfx.Siren(0, 1+0.2*k), 0.3+0.7*k)
}

func (a *Audio) play(samples []byte, gain float64) {
	if a == nil || len(samples) == 0 || gain <= 0 {
		return
	}
	select {
	case <-a.ready:
	default:
		return
	}
	if atomic.LoadInt32(&a.active) >= maxVoices {
		return
	}
	atomic.AddInt32(&a.active, 1)
	go func() {
		defer atomic.AddInt32(&a.active, -1)
		reader := &soundReader{data: samples}
		player := a.ctx.NewPlayer(reader)
		player.SetVolume(sfxVolume * gain)
		player.Play()
		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		player.Close()
	}()
}

type soundReader struct {
	data []byte
	pos  int
}

func (r *soundReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
