package track

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

type stageObj struct {
	t      *Template
	pos    r3.Vec
	dir    r3.Vec
	length float64
	width  float64
	walls  bool
	root   Handle
}

func (o *stageObj) overlaps(p r3.Vec, r float64) bool {
	along := math.Abs(Along(p, o.pos, o.dir))
	across := math.Abs(Along(p, o.pos, Left(o.dir)))
	return along <= o.length/2+r && across <= o.width/2+r
}

// stage is a minimal in-memory world for generator tests.
type stage struct {
	next      Handle
	objs      map[Handle]*stageObj
	destroyed map[Handle]int
	descs     map[string]BranchDescriptor
}

func newStage() *stage {
	return &stage{
		objs:      make(map[Handle]*stageObj),
		destroyed: make(map[Handle]int),
		descs:     make(map[string]BranchDescriptor),
	}
}

func (s *stage) collab() Collaborators {
	return Collaborators{Spawner: s, Query: s, Descriptors: s}
}

func (s *stage) Instantiate(t *Template, pos, dir r3.Vec) Handle {
	s.next++
	w := t.Width
	if w == 0 {
		w = t.Length
	}
	s.objs[s.next] = &stageObj{t: t, pos: pos, dir: dir, length: t.Length, width: w, walls: true}
	return s.next
}

// Destroy removes h and every part rooted at it. Only h is counted.
func (s *stage) Destroy(h Handle) {
	s.destroyed[h]++
	delete(s.objs, h)
	for k, o := range s.objs {
		if o.root == h {
			delete(s.objs, k)
		}
	}
}

func (s *stage) SetWallsVisible(h Handle, visible bool) {
	if o, ok := s.objs[h]; ok {
		o.walls = visible
	}
}

func (s *stage) QueryOverlap(p r3.Vec, r float64, layers Layer) []Hit {
	if layers&LayerStage == 0 {
		return nil
	}
	var hits []Hit
	for h, o := range s.objs {
		if o.overlaps(p, r) {
			hits = append(hits, Hit{Handle: h, Root: o.root})
		}
	}
	return hits
}

func (s *stage) Descriptor(h Handle) (BranchDescriptor, bool) {
	o, ok := s.objs[h]
	if !ok || o.t == nil {
		return BranchDescriptor{}, false
	}
	d, ok := s.descs[o.t.Name]
	return d, ok
}

// placeForeign adds decor the ledger knows nothing about, as a root with
// one child part. It returns the child handle.
func (s *stage) placeForeign(pos r3.Vec, size float64) (root, part Handle) {
	s.next++
	root = s.next
	s.objs[root] = &stageObj{pos: pos, dir: Forward, length: size, width: size}
	s.next++
	part = s.next
	s.objs[part] = &stageObj{pos: pos, dir: Forward, length: size, width: size, root: root}
	return root, part
}

func plainRoad(name string) *Template {
	return &Template{Name: name, Kind: KindRoad, Length: 30, Width: 10, Weight: 1, Role: RolePlain}
}

func junction(name string) *Template {
	return &Template{Name: name, Kind: KindBranch, Length: 30, Width: 30, Weight: 1}
}
