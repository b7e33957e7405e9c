// Package world is an in-memory stage: it owns the objects the track
// generator instantiates and answers its area queries.
package world

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"trackrunner/internal/track"
)

type ObjectKind int

const (
	KindRoad ObjectKind = iota
	KindBranch
	KindWall
	KindDecor
)

func (k ObjectKind) String() string {
	switch k {
	case KindRoad:
		return "road"
	case KindBranch:
		return "branch"
	case KindWall:
		return "wall"
	case KindDecor:
		return "decor"
	}
	return "unknown"
}

// WallThickness is the footprint width of a road's boundary markers.
const WallThickness = 0.5

// Object is one thing on the stage. Roads own two wall parts; a part's
// Root is the road, a root's Root is itself.
type Object struct {
	Handle    track.Handle
	Root      track.Handle
	Parts     []track.Handle
	Kind      ObjectKind
	Template  *track.Template
	Layer     track.Layer
	Position  r3.Vec
	Direction r3.Vec
	Length    float64
	Width     float64
	Visible   bool

	bounds Rect
}

// Name is the template name, or the kind for objects without one.
func (o *Object) Name() string {
	if o.Template != nil {
		return o.Template.Name
	}
	return o.Kind.String()
}

// Overlaps reports whether a disc of radius r around p touches the
// object's oriented footprint.
func (o *Object) Overlaps(p r3.Vec, r float64) bool {
	along := math.Abs(track.Along(p, o.Position, o.Direction))
	across := math.Abs(track.Along(p, o.Position, track.Left(o.Direction)))
	dx := math.Max(along-o.Length/2, 0)
	dz := math.Max(across-o.Width/2, 0)
	return dx*dx+dz*dz <= r*r
}

func footprint(pos, dir r3.Vec, length, width float64) Rect {
	hx := math.Abs(dir.X)*length/2 + math.Abs(dir.Z)*width/2
	hz := math.Abs(dir.Z)*length/2 + math.Abs(dir.X)*width/2
	return Rect{X0: pos.X - hx, Z0: pos.Z - hz, X1: pos.X + hx, Z1: pos.Z + hz}
}

// Stage implements track.Spawner, track.SpatialQuery and
// track.BranchDescriptors. It is not safe for concurrent use.
type Stage struct {
	next      track.Handle
	objects   map[track.Handle]*Object
	tree      *quadNode
	descs     map[string]track.BranchDescriptor
	destroyed map[track.Handle]int
	logger    *slog.Logger
}

func NewStage(logger *slog.Logger) *Stage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stage{
		objects:   make(map[track.Handle]*Object),
		tree:      newQuadNode(Rect{X0: -worldExtent, Z0: -worldExtent, X1: worldExtent, Z1: worldExtent}, 0),
		descs:     make(map[string]track.BranchDescriptor),
		destroyed: make(map[track.Handle]int),
		logger:    logger,
	}
}

// Collaborators returns the stage in all three generator roles.
func (s *Stage) Collaborators() track.Collaborators {
	return track.Collaborators{Spawner: s, Query: s, Descriptors: s}
}

// SetDescriptor declares the directions opened by the branch template
// called name.
func (s *Stage) SetDescriptor(name string, d track.BranchDescriptor) {
	s.descs[name] = d
}

func (s *Stage) add(o *Object) track.Handle {
	s.next++
	o.Handle = s.next
	if o.Root == 0 {
		o.Root = o.Handle
	}
	o.bounds = footprint(o.Position, o.Direction, o.Length, o.Width)
	s.objects[o.Handle] = o
	s.tree.Insert(o.Handle, o.bounds)
	return o.Handle
}

func (s *Stage) Instantiate(t *track.Template, pos, dir r3.Vec) track.Handle {
	width := t.Width
	if width <= 0 {
		width = t.Length
	}
	kind := KindRoad
	if t.Kind == track.KindBranch {
		kind = KindBranch
	}
	root := &Object{
		Kind:      kind,
		Template:  t,
		Layer:     track.LayerStage,
		Position:  pos,
		Direction: dir,
		Length:    t.Length,
		Width:     width,
		Visible:   true,
	}
	h := s.add(root)
	if kind != KindRoad {
		return h
	}
	for _, side := range []r3.Vec{track.Left(dir), track.Right(dir)} {
		wall := &Object{
			Root:      h,
			Kind:      KindWall,
			Layer:     track.LayerStage,
			Position:  track.Advance(pos, side, width/2),
			Direction: dir,
			Length:    t.Length,
			Width:     WallThickness,
			Visible:   true,
		}
		root.Parts = append(root.Parts, s.add(wall))
	}
	return h
}

// Place puts decor on the stage without telling the generator about it.
func (s *Stage) Place(pos r3.Vec, size float64, layer track.Layer) track.Handle {
	return s.add(&Object{
		Kind:      KindDecor,
		Layer:     layer,
		Position:  pos,
		Direction: track.Forward,
		Length:    size,
		Width:     size,
		Visible:   true,
	})
}

// Destroy removes h and its parts. Every call is counted, including
// calls for handles that are already gone.
func (s *Stage) Destroy(h track.Handle) {
	s.destroyed[h]++
	o, ok := s.objects[h]
	if !ok {
		s.logger.Debug("destroy of unknown handle", "handle", h)
		return
	}
	for _, p := range o.Parts {
		s.remove(p)
	}
	s.remove(h)
	if o.Root != h {
		if root, ok := s.objects[o.Root]; ok {
			kept := root.Parts[:0]
			for _, p := range root.Parts {
				if p != h {
					kept = append(kept, p)
				}
			}
			root.Parts = kept
		}
	}
}

func (s *Stage) remove(h track.Handle) {
	o, ok := s.objects[h]
	if !ok {
		return
	}
	s.tree.Remove(h, o.bounds)
	delete(s.objects, h)
}

func (s *Stage) SetWallsVisible(h track.Handle, visible bool) {
	o, ok := s.objects[h]
	if !ok {
		return
	}
	for _, p := range o.Parts {
		if part, ok := s.objects[p]; ok && part.Kind == KindWall {
			part.Visible = visible
		}
	}
}

func (s *Stage) QueryOverlap(p r3.Vec, radius float64, layers track.Layer) []track.Hit {
	var cands []track.Handle
	s.tree.Query(Rect{X0: p.X - radius, Z0: p.Z - radius, X1: p.X + radius, Z1: p.Z + radius}, &cands)
	sort.Slice(cands, func(i, j int) bool { return cands[i] < cands[j] })

	var hits []track.Hit
	for _, h := range cands {
		o := s.objects[h]
		if o == nil || o.Layer&layers == 0 || !o.Overlaps(p, radius) {
			continue
		}
		hits = append(hits, track.Hit{Handle: h, Root: o.Root})
	}
	return hits
}

func (s *Stage) Descriptor(h track.Handle) (track.BranchDescriptor, bool) {
	o, ok := s.objects[h]
	if !ok || o.Template == nil || o.Template.Kind != track.KindBranch {
		return track.BranchDescriptor{}, false
	}
	d, ok := s.descs[o.Template.Name]
	return d, ok
}

// Lookup returns a copy of the object behind h.
func (s *Stage) Lookup(h track.Handle) (Object, bool) {
	o, ok := s.objects[h]
	if !ok {
		return Object{}, false
	}
	return *o, true
}

// Len is the number of objects on the stage, parts included.
func (s *Stage) Len() int {
	return len(s.objects)
}

// Destroyed reports how many times Destroy was called for h.
func (s *Stage) Destroyed(h track.Handle) int {
	return s.destroyed[h]
}

// DestroyCounts returns a copy of every Destroy call count.
func (s *Stage) DestroyCounts() map[track.Handle]int {
	out := make(map[track.Handle]int, len(s.destroyed))
	for h, n := range s.destroyed {
		out[h] = n
	}
	return out
}

// Snapshot returns every object in handle order.
func (s *Stage) Snapshot() []Object {
	out := make([]Object, 0, len(s.objects))
	for _, o := range s.objects {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}
