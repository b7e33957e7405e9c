package track

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// generateBranch places a branch at the frontier together with a
// provisional run for each direction it opens, then suspends generation
// until Commit.
func (g *Generator) generateBranch() (Handle, error) {
	t, ok := PickWeighted(CandidatesOf(g.catalog.Branches), g.rng)
	if !ok {
		return 0, ErrNoBranchTemplates
	}
	tail := g.ledger.Tail()
	pos := Advance(tail.Position, g.direction, tail.Length/2+t.Length/2)
	g.ledger.ClearArea(pos)

	branch := g.instantiate(t, pos, g.direction)
	var desc BranchDescriptor
	found := false
	if g.collab.Descriptors != nil {
		desc, found = g.collab.Descriptors.Descriptor(branch.Handle)
	}
	if !found || !desc.Any() {
		g.collab.Spawner.Destroy(branch.Handle)
		if !found {
			return 0, fmt.Errorf("%w: %s", ErrMissingDescriptor, t.Name)
		}
		return 0, fmt.Errorf("%w: %s opens no direction", ErrMissingDescriptor, t.Name)
	}

	g.ledger.RecordActive(branch)
	g.roadsSinceBranch = 0
	g.metrics.spawned("branch")
	g.bus.Emit(branch.event(EventSegmentSpawned))

	if desc.CanGoForward {
		g.provisionalRun(branch, g.direction, g.cfg.ForwardCount)
	}
	if desc.CanGoLeft {
		g.provisionalRun(branch, Left(g.direction), 1)
	}
	if desc.CanGoRight {
		g.provisionalRun(branch, Right(g.direction), 1)
	}

	g.unresolved = branch
	g.pendingDesc = desc
	g.metrics.suspended(true)
	g.metrics.branch("presented")
	ev := branch.event(EventBranchPresented)
	ev.Data = len(branch.Children)
	g.bus.Emit(ev)
	g.logger.Info("branch presented", "handle", branch.Handle, "name", t.Name,
		"forward", desc.CanGoForward, "left", desc.CanGoLeft, "right", desc.CanGoRight)
	return branch.Handle, nil
}

// provisionalRun chains n provisional roads off branch along dir. The
// first road has its walls hidden so the junction stays open.
func (g *Generator) provisionalRun(branch *Segment, dir r3.Vec, n int) {
	prev := branch
	for i := 0; i < n; i++ {
		t, ok := PickWeighted(g.matcher.Normal(g.catalog.Roads), g.rng)
		if !ok {
			g.metrics.configErr()
			g.logger.Error("provisional run cut short", "error", ErrNoRoadTemplates)
			return
		}
		pos := Advance(prev.Position, dir, prev.Length/2+t.Length/2)
		g.ledger.ClearArea(pos)
		child := g.instantiate(t, pos, dir)
		g.showWalls(child, i > 0)
		g.ledger.AddProvisional(branch, child)
		g.metrics.spawned("provisional")
		g.bus.Emit(child.event(EventSegmentSpawned))
		prev = child
	}
}

// Commit resolves the pending branch: children heading along direction
// are promoted in order of distance from the branch, the rest are
// destroyed and generation resumes along direction.
func (g *Generator) Commit(direction r3.Vec, branch Handle) error {
	if g.busy {
		return ErrReentrant
	}
	b := g.unresolved
	if b == nil {
		return ErrNoUnresolvedBranch
	}
	if branch != b.Handle {
		return fmt.Errorf("%w: %d", ErrUnknownBranch, branch)
	}
	dir, ok := Horizontal(direction)
	if !ok {
		return ErrInvalidDirection
	}
	g.busy = true
	defer func() { g.busy = false }()

	g.direction = dir
	children := append([]*Segment(nil), b.Children...)
	var kept []*Segment
	for _, c := range children {
		if SameHeading(c.Direction, dir) {
			kept = append(kept, c)
			continue
		}
		g.ledger.Discard(c)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return r3.Norm(r3.Sub(kept[i].Position, b.Position)) < r3.Norm(r3.Sub(kept[j].Position, b.Position))
	})
	for i, c := range kept {
		g.showWalls(c, i > 0)
		g.ledger.Promote(c)
	}
	b.Children = nil

	if len(kept) == 0 {
		g.ledger.SetTail(b)
	} else if theme, ok := g.matcher.StartTheme(kept[0].Template); ok {
		g.beginSequence(theme, kept[0])
	}

	g.unresolved = nil
	g.pendingDesc = BranchDescriptor{}
	g.metrics.suspended(false)
	g.metrics.branch("committed")
	ev := b.event(EventBranchCommitted)
	ev.Direction = dir
	ev.Data = len(kept)
	g.bus.Emit(ev)
	g.logger.Info("branch committed", "handle", b.Handle, "kept", len(kept), "discarded", len(children)-len(kept))
	return nil
}
