package track

import "gonum.org/v1/gonum/spatial/r3"

// Handle is an opaque reference to an object owned by the spawner. The
// zero Handle refers to nothing.
type Handle uint64

// Layer is a bit set used to filter spatial queries.
type Layer uint32

const (
	LayerStage Layer = 1 << iota // track geometry and stage decor
	LayerAgent                   // the runner and anything that follows it
)

// Spawner instantiates and destroys world objects. A handle is never
// used again by the track once it has been passed to Destroy.
type Spawner interface {
	Instantiate(t *Template, pos, dir r3.Vec) Handle
	Destroy(h Handle)
	// SetWallsVisible shows or hides a road's boundary markers.
	SetWallsVisible(h Handle, visible bool)
}

// Hit is one overlapping object. Root is the object that owns Handle (it
// may be Handle itself).
type Hit struct {
	Handle Handle
	Root   Handle
}

type SpatialQuery interface {
	QueryOverlap(point r3.Vec, radius float64, layers Layer) []Hit
}

// BranchDescriptor lists the directions a branch template opens.
type BranchDescriptor struct {
	CanGoForward bool
	CanGoLeft    bool
	CanGoRight   bool
}

// Any reports whether at least one direction is open.
func (d BranchDescriptor) Any() bool {
	return d.CanGoForward || d.CanGoLeft || d.CanGoRight
}

type BranchDescriptors interface {
	Descriptor(h Handle) (BranchDescriptor, bool)
}

// Collaborators bundles what the generator needs from the host. World
// implementations usually satisfy all three.
type Collaborators struct {
	Spawner     Spawner
	Query       SpatialQuery
	Descriptors BranchDescriptors
}
