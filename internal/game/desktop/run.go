//go:build !android

// Package desktop hosts a game session in a GLFW window.
package desktop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trackrunner/internal/config"
	"trackrunner/internal/game"
	"trackrunner/internal/journal"
	"trackrunner/internal/track"
)

// Run opens the window and plays until it is closed or ctx is done.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	reg := prometheus.NewRegistry()
	metrics := track.NewMetrics(reg)
	if addr := cfg.Desktop.MetricsAddr; addr != "" {
		srv := &http.Server{Addr: addr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", "error", err)
			}
		}()
		defer srv.Close()
		logger.Info("serving metrics", "addr", addr)
	}

	session, err := game.NewGameSession(cfg, game.Options{Logger: logger, Metrics: metrics, Autopilot: cfg.Run.Autopilot})
	if err != nil {
		return err
	}

	var runs *journal.Journal
	if path := cfg.Desktop.Journal; path != "" {
		runs, err = journal.Open(path, logger)
		if err != nil {
			return err
		}
		defer runs.Close()
		runs.Attach(session.Events())
	}

	window, err := initWindow(cfg.Desktop)
	if err != nil {
		return err
	}
	defer glfw.Terminate()
	defer window.Destroy()

	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}

	var audio *Audio
	if cfg.Desktop.Audio {
		if audio, err = NewAudio(); err != nil {
			logger.Warn("audio init failed, continuing without sound", "error", err)
			audio = nil
		}
	}

	// GL state.
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	rend, err := NewRenderer()
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	defer rend.Destroy()

	h := &host{
		ctx:     ctx,
		cfg:     cfg,
		logger:  logger,
		session: session,
		runs:    runs,
		audio:   audio,
		seed:    cfg.Run.Seed,
	}
	if h.seed == 0 {
		h.seed = uint64(time.Now().UnixNano())
	}
	input := NewInput()

	var spriteBuf, glowBuf []float32
	last := glfw.GetTime()
	for !window.ShouldClose() {
		if ctx.Err() != nil {
			break
		}
		now := glfw.GetTime()
		dt := now - last
		last = now
		if dt > 0.1 {
			dt = 0.1
		}

		glfw.PollEvents()
		if window.GetKey(glfw.KeyEscape) == glfw.Press {
			window.SetShouldClose(true)
			continue
		}

		fbW, fbH := window.GetFramebufferSize()
		if fbW <= 0 || fbH <= 0 {
			continue
		}

		if input.JustPressed(window, glfw.KeyP) {
			session.SetAutopilot(!session.Autopilot())
			logger.Info("autopilot", "on", session.Autopilot())
		}
		switch session.State {
		case game.StateMenu, game.StateCaught:
			if input.JustPressed(window, glfw.KeySpace) {
				h.start()
			} else {
				session.Update(dt)
			}
		case game.StateRunning:
			if t, ok := input.Turn(window); ok {
				if err := session.Choose(t); err != nil {
					logger.Debug("turn ignored", "turn", t, "error", err)
				}
			}
			session.Update(dt)
			h.flush()
			audio.Siren(session, dt)
			if session.State == game.StateCaught {
				h.finish("caught")
			}
		}
		audio.Cues(session.DrainCues())
		UpdateCameraZoom(&session.Camera, window, dt)

		rend.BeginFrame(session.Camera, fbW, fbH, game.Palette.Background)
		drawTrack(rend, session)
		glowBuf = glowLayer(glowBuf, session, now)
		rend.DrawGlowSprites(glowBuf)
		spriteBuf = spriteLayer(spriteBuf, session)
		rend.DrawSprites(spriteBuf)
		rend.RestoreRectProgram()

		window.SetTitle(h.title())
		window.SwapBuffers()
	}

	if session.State == game.StateRunning {
		h.finish("quit")
	}
	return nil
}

// host is the bookkeeping around runs that a window adds to a session.
type host struct {
	ctx     context.Context
	cfg     *config.Config
	logger  *slog.Logger
	session *game.GameSession
	runs    *journal.Journal
	audio   *Audio
	seed    uint64
	started int
	frames  int
}

func (h *host) start() {
	seed := h.seed + uint64(h.started)
	h.started++
	if h.runs != nil {
		if _, err := h.runs.BeginRun(h.ctx, seed); err != nil {
			h.logger.Error("begin journal run", "error", err)
		}
	}
	if err := h.session.Start(seed); err != nil {
		h.logger.Error("start run", "seed", seed, "error", err)
	}
}

// flush writes journal events every few hundred frames so a long run does
// not hold them all in memory.
func (h *host) flush() {
	h.frames++
	if h.runs == nil || h.frames%game.JournalFlushTick != 0 {
		return
	}
	if err := h.runs.Flush(h.ctx); err != nil {
		h.logger.Error("flush journal", "error", err)
	}
}

func (h *host) finish(outcome string) {
	if h.runs == nil || h.runs.RunID() == "" {
		return
	}
	ctx := context.WithoutCancel(h.ctx)
	if err := h.runs.EndRun(ctx, h.session.Runner.Distance, outcome); err != nil {
		h.logger.Error("end journal run", "error", err)
	}
}

func (h *host) title() string {
	s := h.session
	base := h.cfg.Desktop.Title
	switch s.State {
	case game.StateMenu:
		return base + " - press space to run"
	case game.StateCaught:
		return fmt.Sprintf("%s - caught at %.0f m (best %.0f m) - space to retry", base, s.Score(), s.Best)
	}
	pilot := ""
	if s.Autopilot() {
		pilot = " [autopilot]"
	}
	junction := ""
	if s.Runner.Waiting {
		junction = " - choose a way!"
	}
	return fmt.Sprintf("%s - %.0f m - pace %d - junctions %d - gap %.0f%s%s",
		base, s.Score(), s.Tier.Level, s.Branches, s.Pursuer.Gap(s.Runner), pilot, junction)
}
