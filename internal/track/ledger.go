package track

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Segment is one placed unit of track.
type Segment struct {
	Handle    Handle
	Template  *Template
	Position  r3.Vec // centre of the footprint
	Direction r3.Vec // unit, horizontal
	Length    float64
	IsBranch  bool

	// Children are the provisional roads hanging off an unresolved branch,
	// in creation order.
	Children []*Segment
	Parent   *Segment

	Provisional  bool
	WallsVisible bool
	Released     bool

	// Odometer is how far along the committed chain the centre lies,
	// counted from the first segment. Set when the segment becomes active.
	Odometer float64
}

// Name is the template name, or "" for a segment without one.
func (s *Segment) Name() string {
	if s == nil || s.Template == nil {
		return ""
	}
	return s.Template.Name
}

// Front is the point where the next segment attaches.
func (s *Segment) Front() r3.Vec {
	return Advance(s.Position, s.Direction, s.Length/2)
}

// Trailing is how far agent has moved past the segment's centre, measured
// along the segment's own direction. Negative while the segment is ahead.
func (s *Segment) Trailing(agent r3.Vec) float64 {
	return Along(agent, s.Position, s.Direction)
}

func (s *Segment) event(t EventType) Event {
	ev := Event{Type: t, Handle: s.Handle, Name: s.Name(), Position: s.Position, Direction: s.Direction, Length: s.Length}
	if s.Template != nil {
		ev.Theme = s.Template.Theme
	}
	return ev
}

// ClearReport counts what one area clear removed.
type ClearReport struct {
	Tracked     int // active segments retired
	Provisional int // provisional children detached and destroyed
	Foreign     int // roots destroyed without any ledger record
	Skipped     int // hits left alone because they hold the frontier
}

func (r ClearReport) Total() int {
	return r.Tracked + r.Provisional + r.Foreign
}

// Ledger is the ordered record of live segments and the sole owner of
// their handles.
type Ledger struct {
	spawner Spawner
	query   SpatialQuery
	radius  float64

	live        []*Segment
	head        int
	active      map[Handle]*Segment
	provisional map[Handle]*Segment
	tail        *Segment

	bus     *EventBus
	metrics *Metrics
	logger  *slog.Logger
}

func NewLedger(spawner Spawner, query SpatialQuery, clearRadius float64) *Ledger {
	return &Ledger{
		spawner:     spawner,
		query:       query,
		radius:      clearRadius,
		active:      make(map[Handle]*Segment),
		provisional: make(map[Handle]*Segment),
		logger:      slog.Default(),
	}
}

// Len is the number of active segments.
func (l *Ledger) Len() int {
	return len(l.live) - l.head
}

// Tail is the last placed segment of the committed chain.
func (l *Ledger) Tail() *Segment {
	return l.tail
}

// Oldest is the earliest recorded active segment, or nil.
func (l *Ledger) Oldest() *Segment {
	if l.Len() == 0 {
		return nil
	}
	return l.live[l.head]
}

// Segments returns the active segments, oldest first.
func (l *Ledger) Segments() []*Segment {
	out := make([]*Segment, l.Len())
	copy(out, l.live[l.head:])
	return out
}

// Locate projects agent onto the nearest active segment and returns the
// odometer reading there. Newer segments win ties.
func (l *Ledger) Locate(agent r3.Vec) (float64, bool) {
	best := math.Inf(1)
	odo := 0.0
	for i := len(l.live) - 1; i >= l.head; i-- {
		seg := l.live[i]
		along := math.Max(-seg.Length/2, math.Min(seg.Length/2, seg.Trailing(agent)))
		d := r3.Norm(r3.Sub(agent, Advance(seg.Position, seg.Direction, along)))
		if d < best {
			best = d
			odo = seg.Odometer + along
		}
	}
	return odo, !math.IsInf(best, 1)
}

// Lookup finds an active or provisional segment by handle.
func (l *Ledger) Lookup(h Handle) (*Segment, bool) {
	if s, ok := l.active[h]; ok {
		return s, true
	}
	s, ok := l.provisional[h]
	return s, ok
}

// RecordActive appends seg to the live set and makes it the tail.
func (l *Ledger) RecordActive(seg *Segment) {
	seg.Provisional = false
	if prev := l.tail; prev != nil && prev != seg {
		seg.Odometer = prev.Odometer + prev.Length/2 + seg.Length/2
	}
	l.live = append(l.live, seg)
	l.active[seg.Handle] = seg
	l.tail = seg
	l.metrics.live(l.Len())
}

// SetTail moves the frontier to an already active segment.
func (l *Ledger) SetTail(seg *Segment) {
	if _, ok := l.active[seg.Handle]; ok {
		l.tail = seg
	}
}

// AddProvisional hangs child off parent without making it active.
func (l *Ledger) AddProvisional(parent, child *Segment) {
	child.Provisional = true
	child.Parent = parent
	parent.Children = append(parent.Children, child)
	l.provisional[child.Handle] = child
}

// Promote turns a provisional child into the newest active segment.
func (l *Ledger) Promote(child *Segment) {
	delete(l.provisional, child.Handle)
	child.Parent = nil
	l.RecordActive(child)
}

// Discard destroys a provisional child and removes it from its parent.
func (l *Ledger) Discard(child *Segment) {
	if child.Released {
		return
	}
	l.detach(child)
	l.release(child)
	l.metrics.discarded()
	l.bus.Emit(child.event(EventProvisionalDiscarded))
}

// RetireOldest removes and destroys the earliest active segment. The tail
// is never retired since the frontier is computed from it.
func (l *Ledger) RetireOldest() *Segment {
	seg := l.Oldest()
	if seg == nil || seg == l.tail {
		return nil
	}
	l.live[l.head] = nil
	l.head++
	l.compact()
	l.retire(seg)
	return seg
}

// Destroy releases seg's handle and every provisional child it still
// holds. Calling it again on the same segment does nothing.
func (l *Ledger) Destroy(seg *Segment) {
	if seg == nil || seg.Released {
		return
	}
	for _, c := range seg.Children {
		delete(l.provisional, c.Handle)
		l.release(c)
	}
	seg.Children = nil
	l.release(seg)
}

// ClearArea removes whatever stage geometry overlaps point so that a new
// segment can be placed there.
func (l *Ledger) ClearArea(point r3.Vec) ClearReport {
	var rep ClearReport
	if l.query == nil {
		return rep
	}
	hits := l.query.QueryOverlap(point, l.radius, LayerStage)
	seen := make(map[Handle]bool, len(hits))
	for _, h := range hits {
		root := h.Root
		if root == 0 {
			root = h.Handle
		}
		if root == 0 || seen[root] {
			continue
		}
		seen[root] = true

		if seg, ok := l.active[root]; ok {
			if seg == l.tail {
				rep.Skipped++
				l.logger.Debug("area clear hit the frontier, leaving it", "handle", root, "name", seg.Name())
				continue
			}
			l.removeActive(seg)
			l.retire(seg)
			rep.Tracked++
			l.metrics.areaHit("tracked")
			continue
		}
		if seg, ok := l.provisional[root]; ok {
			l.detach(seg)
			l.release(seg)
			rep.Provisional++
			l.metrics.areaHit("provisional")
			l.bus.Emit(seg.event(EventProvisionalDiscarded))
			continue
		}

		l.spawner.Destroy(root)
		rep.Foreign++
		l.metrics.areaHit("foreign")
		l.logger.Debug("area clear destroyed untracked stage geometry", "handle", root)
		l.bus.Emit(Event{Type: EventForeignCleared, Handle: root, Position: point})
	}
	return rep
}

func (l *Ledger) retire(seg *Segment) {
	l.Destroy(seg)
	l.metrics.retired()
	l.metrics.live(l.Len())
	l.bus.Emit(seg.event(EventSegmentRetired))
}

func (l *Ledger) release(seg *Segment) {
	if seg.Released {
		return
	}
	seg.Released = true
	delete(l.active, seg.Handle)
	l.spawner.Destroy(seg.Handle)
}

func (l *Ledger) detach(child *Segment) {
	delete(l.provisional, child.Handle)
	p := child.Parent
	if p == nil {
		return
	}
	kept := p.Children[:0]
	for _, c := range p.Children {
		if c != child {
			kept = append(kept, c)
		}
	}
	p.Children = kept
	child.Parent = nil
}

func (l *Ledger) removeActive(seg *Segment) {
	for i := l.head; i < len(l.live); i++ {
		if l.live[i] == seg {
			copy(l.live[i:], l.live[i+1:])
			l.live[len(l.live)-1] = nil
			l.live = l.live[:len(l.live)-1]
			break
		}
	}
	delete(l.active, seg.Handle)
}

// compact drops the retired prefix once it dominates the backing array.
func (l *Ledger) compact() {
	if l.head < 64 || l.head*2 < len(l.live) {
		return
	}
	n := copy(l.live, l.live[l.head:])
	for i := n; i < len(l.live); i++ {
		l.live[i] = nil
	}
	l.live = l.live[:n]
	l.head = 0
}
