package game

import (
	"context"
	"fmt"
	"log/slog"

	"trackrunner/internal/config"
	"trackrunner/internal/journal"
	"trackrunner/internal/mapplot"
	"trackrunner/internal/track"
)

// HeadlessOptions drive RunHeadless. Zero Ticks runs until the runner is
// caught or ctx is done.
type HeadlessOptions struct {
	Seed    uint64
	Ticks   int
	Logger  *slog.Logger
	Metrics *track.Metrics
	Journal *journal.Journal // optional
	Map     *mapplot.Map     // optional
}

// RunSummary is what a headless run did.
type RunSummary struct {
	Seed      uint64
	RunID     string // journal run, empty without a journal
	Outcome   string // caught, completed or cancelled
	Ticks     int
	Elapsed   float64
	Distance  float64
	Junctions int
	Spawned   int
	Retired   int
	Discarded int
	Cleared   int // foreign objects removed by area clears
	Live      int // active segments at the end
	Objects   int // stage objects at the end
}

// RunHeadless plays one autopilot run at the configured tick rate
// without a window.
func RunHeadless(ctx context.Context, cfg *config.Config, opts HeadlessOptions) (RunSummary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s, err := NewGameSession(cfg, Options{Logger: logger, Metrics: opts.Metrics, Autopilot: true})
	if err != nil {
		return RunSummary{}, err
	}

	sum := RunSummary{Seed: opts.Seed}
	bus := s.Events()
	bus.Subscribe(track.EventSegmentSpawned, func(track.Event) { sum.Spawned++ })
	bus.Subscribe(track.EventProvisionalDiscarded, func(track.Event) { sum.Discarded++ })
	bus.Subscribe(track.EventForeignCleared, func(track.Event) { sum.Cleared++ })
	if opts.Map != nil {
		opts.Map.Attach(bus)
	}
	// Journal writes ignore cancellation so a stopped run is still closed.
	jctx := context.WithoutCancel(ctx)
	if opts.Journal != nil {
		opts.Journal.Attach(bus)
		id, err := opts.Journal.BeginRun(jctx, opts.Seed)
		if err != nil {
			return sum, err
		}
		sum.RunID = id
	}

	if err := s.Start(opts.Seed); err != nil {
		return sum, err
	}

	dt := 1 / float64(cfg.Run.TickRate)
	sum.Outcome = "completed"
loop:
	for opts.Ticks <= 0 || sum.Ticks < opts.Ticks {
		select {
		case <-ctx.Done():
			sum.Outcome = "cancelled"
			break loop
		default:
		}
		s.Update(dt)
		sum.Ticks++
		if opts.Map != nil && sum.Ticks%PathSampleTicks == 0 {
			opts.Map.AddPath(s.Runner.Position)
		}
		if opts.Journal != nil && sum.Ticks%JournalFlushTick == 0 {
			if err := opts.Journal.Flush(jctx); err != nil {
				return sum, fmt.Errorf("flush journal: %w", err)
			}
		}
		if s.State == StateCaught {
			sum.Outcome = "caught"
			if opts.Map != nil {
				opts.Map.AddCatch(s.Runner.Position)
			}
			break loop
		}
	}

	sum.Elapsed = s.Elapsed
	sum.Distance = s.Runner.Distance
	sum.Junctions = s.Branches
	sum.Retired = s.Retired()
	sum.Live = s.Generator().Ledger().Len()
	sum.Objects = s.Stage().Len()

	if opts.Journal != nil {
		if err := opts.Journal.EndRun(jctx, sum.Distance, sum.Outcome); err != nil {
			return sum, fmt.Errorf("end journal run: %w", err)
		}
	}
	logger.Info("headless run finished",
		"outcome", sum.Outcome, "ticks", sum.Ticks, "distance", sum.Distance, "junctions", sum.Junctions)
	return sum, nil
}
