package game

import (
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"trackrunner/internal/config"
	"trackrunner/internal/track"
	"trackrunner/internal/world"
)

type GameState int

const (
	StateMenu    GameState = iota
	StateRunning           // runner on the track
	StateCaught            // pursuer reached the runner
)

func (s GameState) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StateRunning:
		return "running"
	case StateCaught:
		return "caught"
	}
	return "unknown"
}

// Cue is something the host may want to play a sound or flash for.
type Cue int

const (
	CueStart  Cue = iota
	CueBranch     // a junction appeared ahead
	CueTurn       // the runner committed at a junction
	CueTier       // pace went up
	CueCaught
)

var (
	ErrNotRunning    = errors.New("game: no run in progress")
	ErrNotAtJunction = errors.New("game: no junction ahead")
	ErrTurnClosed    = errors.New("game: junction does not open that way")
)

// Options configure a GameSession.
type Options struct {
	Logger    *slog.Logger
	Metrics   *track.Metrics
	Autopilot bool
}

// GameSession owns one stage and generator per run and everything that
// moves on it.
type GameSession struct {
	State    GameState
	Seed     uint64
	Tier     Tier
	Elapsed  float64
	Branches int // junctions passed this run
	Best     float64
	Camera   Camera

	Runner  *Runner
	Pursuer *Pursuer

	cfg       *config.Config
	palettes  map[string]string
	catalog   *track.Catalog
	matcher   *track.Matcher
	autopilot bool
	logger    *slog.Logger
	metrics   *track.Metrics
	bus       *track.EventBus

	stage   *world.Stage
	gen     *track.Generator
	props   *scenery
	rng     *track.Rand
	queued  *Turn
	think   float64
	cues    []Cue
	retired int
}

// NewGameSession validates cfg once; runs are started with Start.
func NewGameSession(cfg *config.Config, opts Options) (*GameSession, error) {
	cat, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	m, err := cfg.Matcher()
	if err != nil {
		return nil, err
	}
	if err := cfg.TrackConfig().Validate(); err != nil {
		return nil, fmt.Errorf("track: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &GameSession{
		State:     StateMenu,
		Camera:    NewCamera(),
		cfg:       cfg,
		palettes:  cfg.Palettes(),
		catalog:   cat,
		matcher:   m,
		autopilot: opts.Autopilot,
		logger:    logger,
		metrics:   opts.Metrics,
		bus:       track.NewEventBus(),
	}
	s.bus.Subscribe(track.EventBranchPresented, func(track.Event) { s.cue(CueBranch) })
	s.bus.Subscribe(track.EventSegmentRetired, func(track.Event) { s.retired++ })
	return s, nil
}

// Events is shared by every run of the session, so subscribers attach
// once.
func (s *GameSession) Events() *track.EventBus { return s.bus }
func (s *GameSession) Stage() *world.Stage { return s.stage }
func (s *GameSession) Generator() *track.Generator { return s.gen }
func (s *GameSession) Config() *config.Config { return s.cfg }
func (s *GameSession) Autopilot() bool { return s.autopilot }
func (s *GameSession) SetAutopilot(on bool) { s.autopilot = on }
func (s *GameSession) Score() float64 { return s.Runner.distanceOrZero() }
func (s *GameSession) Retired() int { return s.retired }
func (s *GameSession) Props() int { return s.props.Len() }

// RoadPalette is the palette of the road template t.
func (s *GameSession) RoadPalette(t *track.Template) RoadPalette {
	if t == nil {
		return defaultRoadPalette
	}
	return RoadPaletteFor(s.palettes[t.Name])
}

func (r *Runner) distanceOrZero() float64 {
	if r == nil {
		return 0
	}
	return r.Distance
}

// Start begins a fresh run on a new stage. The same seed gives the same
// track for the same choices.
func (s *GameSession) Start(seed uint64) error {
	stage := world.NewStage(s.logger)
	for name, d := range s.cfg.Descriptors() {
		stage.SetDescriptor(name, d)
	}
	gen, err := track.New(s.cfg.TrackConfig(), s.catalog, stage.Collaborators(),
		track.WithLogger(s.logger),
		track.WithMetrics(s.metrics),
		track.WithEventBus(s.bus),
		track.WithSource(track.NewRand(deriveSeed(seed, 1))),
		track.WithMatcher(s.matcher),
	)
	if err != nil {
		return err
	}
	if err := gen.Start(r3.Vec{}, track.Forward); err != nil {
		return fmt.Errorf("start track: %w", err)
	}

	s.stage = stage
	s.gen = gen
	s.props = newScenery(stage, deriveSeed(seed, 3))
	s.rng = track.NewRand(deriveSeed(seed, 2))
	s.Seed = seed
	s.Runner = NewRunner(r3.Vec{}, track.Forward)
	s.Pursuer = NewPursuer(s.cfg.Run.RunnerSpeed * s.cfg.Run.PursuerDelay)
	s.Tier = TierFor(0, s.cfg.Run.RunnerSpeed, s.cfg.Run.RunnerMaxSpeed)
	s.Elapsed = 0
	s.Branches = 0
	s.retired = 0
	s.queued = nil
	s.think = 0
	s.Camera.Snap(s.Runner.Position, s.Runner.Heading)
	s.State = StateRunning
	s.cue(CueStart)
	s.logger.Info("run started", "seed", seed, "autopilot", s.autopilot)
	return nil
}

// Update advances the run by dt seconds.
func (s *GameSession) Update(dt float64) {
	if s.State != StateRunning {
		s.Camera.UpdateShake(dt, s.Seed)
		return
	}
	s.Elapsed += dt

	if t := TierFor(s.Runner.Distance, s.cfg.Run.RunnerSpeed, s.cfg.Run.RunnerMaxSpeed); t.Level != s.Tier.Level {
		s.Tier = t
		s.cue(CueTier)
		s.logger.Debug("tier up", "level", t.Level, "speed", t.RunnerSpeed)
	}

	var stop *track.PendingBranch
	if p, ok := s.gen.Pending(); ok {
		stop = &p
	}
	s.Runner.Update(dt, s.Tier.RunnerSpeed, stop)
	if s.Runner.Waiting {
		s.decide(dt)
	}

	s.gen.Tick(s.Runner.Position)
	s.props.update(s.Runner, s.gen.Tail(), s.gen.Direction(), s.cfg.Track.RoadLength, s.keepRadius())

	speed := s.Tier.RunnerSpeed * PursuerCloseIn
	if s.Runner.Waiting {
		speed = s.Tier.RunnerSpeed * PursuerLunge
	}
	s.Pursuer.Update(dt, speed, s.Runner.Trail())
	if s.Pursuer.Caught(s.Runner) {
		s.caught()
	}

	s.Camera.Follow(s.Runner.Position, s.Runner.Heading, dt)
	s.Camera.UpdateShake(dt, s.Seed^uint64(s.Elapsed*1000))
}

func (s *GameSession) keepRadius() float64 {
	t := s.cfg.Track
	return float64(t.ForwardCount+t.BackwardCount+5) * t.RoadLength
}

// decide commits a queued choice, or lets the autopilot pick once it has
// thought about it.
func (s *GameSession) decide(dt float64) {
	if s.queued != nil {
		t := *s.queued
		s.queued = nil
		if err := s.commit(t); err != nil {
			s.logger.Warn("queued turn rejected", "turn", t, "error", err)
		}
		return
	}
	if !s.autopilot {
		return
	}
	if s.think == 0 {
		s.think = s.Tier.ThinkTime
	}
	s.think -= dt
	if s.think > 0 {
		return
	}
	s.think = 0
	p, ok := s.gen.Pending()
	if !ok {
		return
	}
	var open []Turn
	for _, t := range []Turn{TurnForward, TurnLeft, TurnRight} {
		if t.Opens(p.Descriptor) {
			open = append(open, t)
		}
	}
	if len(open) == 0 {
		return
	}
	if err := s.commit(open[s.rng.Intn(len(open))]); err != nil {
		s.logger.Error("autopilot turn failed", "error", err)
	}
}

// Choose picks the way out of the next junction. A choice made before
// the runner arrives is queued.
func (s *GameSession) Choose(t Turn) error {
	if s.State != StateRunning {
		return ErrNotRunning
	}
	p, ok := s.gen.Pending()
	if !ok {
		return ErrNotAtJunction
	}
	if !t.Opens(p.Descriptor) {
		return fmt.Errorf("%w: %s", ErrTurnClosed, t)
	}
	if !s.Runner.Waiting {
		s.queued = &t
		return nil
	}
	return s.commit(t)
}

func (s *GameSession) commit(t Turn) error {
	p, ok := s.gen.Pending()
	if !ok {
		return ErrNotAtJunction
	}
	dir := t.Apply(p.Direction)
	if err := s.gen.Commit(dir, p.Handle); err != nil {
		return err
	}
	s.Runner.Turn(dir)
	s.Branches++
	s.Camera.AddShake(CommitShake, CommitShakeTime)
	s.cue(CueTurn)
	s.logger.Debug("turned", "turn", t, "junction", p.Handle, "distance", s.Runner.Distance)
	return nil
}

func (s *GameSession) caught() {
	s.State = StateCaught
	if s.Runner.Distance > s.Best {
		s.Best = s.Runner.Distance
	}
	s.Camera.AddShake(CaughtShake, CaughtShakeTime)
	s.cue(CueCaught)
	s.logger.Info("runner caught", "distance", s.Runner.Distance, "junctions", s.Branches, "elapsed", s.Elapsed)
}

func (s *GameSession) cue(c Cue) {
	s.cues = append(s.cues, c)
}

// DrainCues returns the cues raised since the last call.
func (s *GameSession) DrainCues() []Cue {
	out := s.cues
	s.cues = nil
	return out
}
