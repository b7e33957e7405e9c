package track

import (
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"
)

// Config holds the static tunables of a generator.
type Config struct {
	ForwardCount            int     // roads kept ahead of the runner
	BackwardCount           int     // roads kept behind it
	RoadLength              float64 // nominal road length used for both thresholds
	BranchProbability       float64 // chance per eligible spawn of placing a branch
	MinRoadsBetweenBranches int
	MaxSequenceLength       int     // -1 for unbounded sequences
	ClearRadius             float64 // area-clear probe radius around a spawn point
}

func DefaultConfig() Config {
	return Config{
		ForwardCount:            15,
		BackwardCount:           10,
		RoadLength:              30,
		BranchProbability:       0.1,
		MinRoadsBetweenBranches: 5,
		MaxSequenceLength:       6,
		ClearRadius:             1,
	}
}

func (c Config) Validate() error {
	if c.ForwardCount < 1 {
		return fmt.Errorf("forward count must be at least 1, got %d", c.ForwardCount)
	}
	if c.BackwardCount < 1 {
		return fmt.Errorf("backward count must be at least 1, got %d", c.BackwardCount)
	}
	if c.RoadLength <= 0 {
		return fmt.Errorf("road length must be positive, got %f", c.RoadLength)
	}
	if c.BranchProbability < 0 || c.BranchProbability > 1 {
		return fmt.Errorf("branch probability must be between 0 and 1, got %f", c.BranchProbability)
	}
	if c.MinRoadsBetweenBranches < 0 {
		return fmt.Errorf("min roads between branches must be non-negative, got %d", c.MinRoadsBetweenBranches)
	}
	if c.MaxSequenceLength != -1 && c.MaxSequenceLength < 2 {
		return fmt.Errorf("max sequence length must be -1 or at least 2, got %d", c.MaxSequenceLength)
	}
	if c.ClearRadius <= 0 {
		return fmt.Errorf("clear radius must be positive, got %f", c.ClearRadius)
	}
	return nil
}

// TickReport says what one Tick did.
type TickReport struct {
	Retired   int
	Spawned   int    // active segments placed, branch included
	Branch    Handle // non-zero when this tick presented a branch
	Suspended bool   // the tick was skipped because a branch awaits a choice
}

// PendingBranch describes the branch awaiting a choice.
type PendingBranch struct {
	Handle     Handle
	Position   r3.Vec
	Direction  r3.Vec
	Descriptor BranchDescriptor
}

// Options lists the headings the runner may commit to.
func (p PendingBranch) Options() []r3.Vec {
	var out []r3.Vec
	if p.Descriptor.CanGoForward {
		out = append(out, p.Direction)
	}
	if p.Descriptor.CanGoLeft {
		out = append(out, Left(p.Direction))
	}
	if p.Descriptor.CanGoRight {
		out = append(out, Right(p.Direction))
	}
	return out
}

// Generator owns every piece of mutable track state: the ledger, the
// sequence state and the frontier heading. It is driven by one goroutine
// and is not safe for concurrent use.
type Generator struct {
	cfg     Config
	catalog *Catalog
	matcher *Matcher
	rng     Source
	collab  Collaborators
	ledger  *Ledger

	seq              SequenceState
	direction        r3.Vec
	roadsSinceBranch int
	unresolved       *Segment
	pendingDesc      BranchDescriptor
	busy             bool

	logger  *slog.Logger
	metrics *Metrics
	bus     *EventBus
}

type Option func(*Generator)

// WithLogger sets the logger; nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

func WithEventBus(b *EventBus) Option {
	return func(g *Generator) { g.bus = b }
}

func WithSource(src Source) Option {
	return func(g *Generator) {
		if src != nil {
			g.rng = src
		}
	}
}

// WithMatcher replaces the default matcher (default naming law, compat on).
func WithMatcher(m *Matcher) Option {
	return func(g *Generator) {
		if m != nil {
			g.matcher = m
		}
	}
}

func New(cfg Config, catalog *Catalog, collab Collaborators, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("track config: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("track catalog: %w", err)
	}
	if collab.Spawner == nil {
		return nil, errors.New("track: a spawner is required")
	}
	if collab.Query == nil {
		return nil, errors.New("track: a spatial query is required")
	}

	g := &Generator{
		cfg:       cfg,
		catalog:   catalog,
		collab:    collab,
		rng:       NewRand(1),
		direction: Forward,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.matcher == nil {
		m, err := NewMatcher(DefaultNamingLaw(), true)
		if err != nil {
			return nil, err
		}
		g.matcher = m
	}
	if g.bus == nil {
		g.bus = NewEventBus()
	}
	g.ledger = NewLedger(collab.Spawner, collab.Query, cfg.ClearRadius)
	g.ledger.bus = g.bus
	g.ledger.metrics = g.metrics
	g.ledger.logger = g.logger
	return g, nil
}

func (g *Generator) Config() Config { return g.cfg }
func (g *Generator) Ledger() *Ledger { return g.ledger }
func (g *Generator) Events() *EventBus { return g.bus }
func (g *Generator) Matcher() *Matcher { return g.matcher }
func (g *Generator) Direction() r3.Vec { return g.direction }
func (g *Generator) Sequence() SequenceState { return g.seq }
func (g *Generator) RoadsSinceBranch() int { return g.roadsSinceBranch }
func (g *Generator) Tail() *Segment { return g.ledger.Tail() }
func (g *Generator) retireDistance() float64 { return float64(g.cfg.BackwardCount) * g.cfg.RoadLength }
func (g *Generator) frontierDistance() float64 { return float64(g.cfg.ForwardCount) * g.cfg.RoadLength }

// Suspended reports whether a branch awaits a choice. While it does, Tick
// does nothing and the host should not let the runner reach another
// branch.
func (g *Generator) Suspended() bool {
	return g.unresolved != nil
}

// Pending returns the branch awaiting a choice.
func (g *Generator) Pending() (PendingBranch, bool) {
	b := g.unresolved
	if b == nil {
		return PendingBranch{}, false
	}
	return PendingBranch{
		Handle:     b.Handle,
		Position:   b.Position,
		Direction:  b.Direction,
		Descriptor: g.pendingDesc,
	}, true
}

// Start places the first road at origin, heading along dir.
func (g *Generator) Start(origin, dir r3.Vec) error {
	if g.busy {
		return ErrReentrant
	}
	if g.ledger.Tail() != nil {
		return ErrAlreadyStarted
	}
	d, ok := Horizontal(dir)
	if !ok {
		return ErrInvalidDirection
	}
	t, ok := PickWeighted(g.matcher.Normal(g.catalog.Roads), g.rng)
	if !ok {
		return ErrNoRoadTemplates
	}
	g.direction = d
	g.ledger.ClearArea(origin)
	seg := g.instantiate(t, origin, d)
	g.showWalls(seg, true)
	g.ledger.RecordActive(seg)
	g.metrics.spawned("road")
	g.bus.Emit(seg.event(EventSegmentSpawned))
	if theme, ok := g.matcher.StartTheme(t); ok {
		g.beginSequence(theme, seg)
	}
	return nil
}

// Tick runs one step of the stage driver for the runner at agent.
func (g *Generator) Tick(agent r3.Vec) TickReport {
	var rep TickReport
	if g.busy {
		g.logger.Warn("tick ignored", "error", ErrReentrant)
		return rep
	}
	if g.unresolved != nil {
		rep.Suspended = true
		return rep
	}
	tail := g.ledger.Tail()
	if tail == nil {
		return rep
	}
	g.busy = true
	defer func() { g.busy = false }()

	if old := g.ledger.Oldest(); old != nil && old != tail && g.stale(old, agent) {
		if seg := g.ledger.RetireOldest(); seg != nil {
			rep.Retired++
			g.logger.Debug("retired segment", "handle", seg.Handle, "name", seg.Name())
		}
	}

	if Along(tail.Position, agent, g.direction) < g.frontierDistance() {
		g.generate(&rep)
	}
	return rep
}

// stale reports whether seg is far enough behind agent to retire. The
// trailing distance along seg's own heading stops growing once the track
// turns away from it, so the distance back along the chain counts too.
// On a straight track both measures agree.
func (g *Generator) stale(seg *Segment, agent r3.Vec) bool {
	limit := g.retireDistance()
	if seg.Trailing(agent) > limit {
		return true
	}
	odo, ok := g.ledger.Locate(agent)
	return ok && odo-seg.Odometer > limit
}

func (g *Generator) generate(rep *TickReport) {
	if g.seq.Active {
		if g.spawnSequenceRoad() {
			rep.Spawned++
			return
		}
	} else if g.roadsSinceBranch >= g.cfg.MinRoadsBetweenBranches && g.rng.Float64() < g.cfg.BranchProbability {
		h, err := g.generateBranch()
		if err != nil {
			g.metrics.configErr()
			g.metrics.branch("aborted")
			g.logger.Error("branch generation aborted", "error", err)
			g.bus.Emit(Event{Type: EventBranchAborted, Position: g.ledger.Tail().Front(), Direction: g.direction})
			return
		}
		rep.Spawned++
		rep.Branch = h
		return
	}
	if g.spawnNormalRoad() {
		rep.Spawned++
	}
}

func (g *Generator) spawnNormalRoad() bool {
	t, ok := PickWeighted(g.matcher.Normal(g.catalog.Roads), g.rng)
	if !ok {
		g.metrics.configErr()
		g.logger.Error("road generation aborted", "error", ErrNoRoadTemplates)
		return false
	}
	seg := g.placeRoad(t)
	g.roadsSinceBranch++
	if theme, ok := g.matcher.StartTheme(t); ok {
		g.beginSequence(theme, seg)
	}
	return true
}

// spawnSequenceRoad places the next road of the active sequence. It
// returns false when no template fits, after abandoning the sequence.
func (g *Generator) spawnSequenceRoad() bool {
	theme := g.seq.Theme
	forced := g.seq.NextRole(g.cfg.MaxSequenceLength)
	t, ok := PickWeighted(g.matcher.Candidates(g.catalog.Roads, theme, forced), g.rng)
	if !ok {
		g.logger.Debug("no template for sequence role, abandoning sequence", "theme", theme, "steps", g.seq.Steps)
		g.endSequence("abandoned")
		return false
	}
	g.placeRoad(t)
	isEnd := g.matcher.IsEnd(t, theme)
	if g.seq.Placed(isEnd, forced) {
		end := "natural"
		if forced == ForceEnd {
			end = "forced"
		}
		g.metrics.sequence(end)
		g.bus.Emit(Event{Type: EventSequenceEnded, Theme: theme, Name: t.Name})
	}
	return true
}

func (g *Generator) beginSequence(theme string, seg *Segment) {
	g.seq.Begin(theme)
	ev := seg.event(EventSequenceStarted)
	ev.Theme = theme
	g.bus.Emit(ev)
}

func (g *Generator) endSequence(how string) {
	theme := g.seq.Theme
	g.seq.End()
	g.metrics.sequence(how)
	g.bus.Emit(Event{Type: EventSequenceEnded, Theme: theme})
}

// placeRoad attaches a road of template t to the tail along the current
// heading and records it as active.
func (g *Generator) placeRoad(t *Template) *Segment {
	tail := g.ledger.Tail()
	pos := Advance(tail.Position, g.direction, tail.Length/2+t.Length/2)
	g.ledger.ClearArea(pos)
	seg := g.instantiate(t, pos, g.direction)
	g.showWalls(seg, true)
	g.ledger.RecordActive(seg)
	g.metrics.spawned("road")
	g.bus.Emit(seg.event(EventSegmentSpawned))
	return seg
}

func (g *Generator) instantiate(t *Template, pos, dir r3.Vec) *Segment {
	h := g.collab.Spawner.Instantiate(t, pos, dir)
	return &Segment{
		Handle:    h,
		Template:  t,
		Position:  pos,
		Direction: dir,
		Length:    t.Length,
		IsBranch:  t.Kind == KindBranch,
	}
}

func (g *Generator) showWalls(seg *Segment, visible bool) {
	seg.WallsVisible = visible
	g.collab.Spawner.SetWallsVisible(seg.Handle, visible)
}
