package world

import "trackrunner/internal/track"

const (
	quadCapacity = 8
	quadMaxDepth = 10

	// Extent of the root node. Objects outside it are still stored, at
	// the root, and found by a linear scan.
	worldExtent = 1 << 20
)

// Rect is an axis-aligned rectangle on the X/Z plane.
type Rect struct {
	X0, Z0 float64
	X1, Z1 float64
}

func (r Rect) Intersects(o Rect) bool {
	return r.X0 <= o.X1 && r.X1 >= o.X0 && r.Z0 <= o.Z1 && r.Z1 >= o.Z0
}

func (r Rect) Contains(o Rect) bool {
	return o.X0 >= r.X0 && o.X1 <= r.X1 && o.Z0 >= r.Z0 && o.Z1 <= r.Z1
}

type quadItem struct {
	h      track.Handle
	bounds Rect
}

// quadNode indexes object footprints for area queries.
type quadNode struct {
	bounds Rect
	depth  int
	items  []quadItem
	child  [4]*quadNode
}

func newQuadNode(bounds Rect, depth int) *quadNode {
	return &quadNode{
		bounds: bounds,
		depth:  depth,
		items:  make([]quadItem, 0, quadCapacity),
	}
}

func (n *quadNode) Insert(h track.Handle, bounds Rect) {
	if n.child[0] != nil {
		if c := n.childThatContains(bounds); c != nil {
			c.Insert(h, bounds)
			return
		}
	}

	n.items = append(n.items, quadItem{h: h, bounds: bounds})

	if len(n.items) > quadCapacity && n.depth < quadMaxDepth {
		n.subdivide()
		kept := n.items[:0]
		for _, it := range n.items {
			if c := n.childThatContains(it.bounds); c != nil {
				c.Insert(it.h, it.bounds)
			} else {
				kept = append(kept, it)
			}
		}
		n.items = kept
	}
}

// Remove deletes h, which must have been inserted with the same bounds.
func (n *quadNode) Remove(h track.Handle, bounds Rect) bool {
	if n.child[0] != nil {
		if c := n.childThatContains(bounds); c != nil {
			return c.Remove(h, bounds)
		}
	}
	for i, it := range n.items {
		if it.h == h {
			last := len(n.items) - 1
			n.items[i] = n.items[last]
			n.items = n.items[:last]
			return true
		}
	}
	return false
}

func (n *quadNode) Query(r Rect, out *[]track.Handle) {
	if n.depth > 0 && !n.bounds.Intersects(r) {
		return
	}
	for _, it := range n.items {
		if it.bounds.Intersects(r) {
			*out = append(*out, it.h)
		}
	}
	if n.child[0] == nil {
		return
	}
	for i := 0; i < 4; i++ {
		n.child[i].Query(r, out)
	}
}

func (n *quadNode) subdivide() {
	if n.child[0] != nil {
		return
	}
	mx := (n.bounds.X0 + n.bounds.X1) * 0.5
	mz := (n.bounds.Z0 + n.bounds.Z1) * 0.5
	n.child[0] = newQuadNode(Rect{X0: n.bounds.X0, Z0: n.bounds.Z0, X1: mx, Z1: mz}, n.depth+1)
	n.child[1] = newQuadNode(Rect{X0: mx, Z0: n.bounds.Z0, X1: n.bounds.X1, Z1: mz}, n.depth+1)
	n.child[2] = newQuadNode(Rect{X0: n.bounds.X0, Z0: mz, X1: mx, Z1: n.bounds.Z1}, n.depth+1)
	n.child[3] = newQuadNode(Rect{X0: mx, Z0: mz, X1: n.bounds.X1, Z1: n.bounds.Z1}, n.depth+1)
}

func (n *quadNode) childThatContains(b Rect) *quadNode {
	for i := 0; i < 4; i++ {
		c := n.child[i]
		if c != nil && c.bounds.Contains(b) {
			return c
		}
	}
	return nil
}
