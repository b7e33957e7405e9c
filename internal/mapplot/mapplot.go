// Package mapplot draws a top-down map of a run: every segment that was
// part of the track, the junctions and the runner's path.
package mapplot

import (
	"errors"
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"trackrunner/internal/track"
)

var ErrEmpty = errors.New("mapplot: nothing recorded")

var (
	roadColor     = color.RGBA{R: 90, G: 90, B: 100, A: 255}
	junctionColor = color.RGBA{R: 230, G: 160, B: 40, A: 255}
	pathColor     = color.RGBA{R: 40, G: 170, B: 90, A: 255}
	catchColor    = color.RGBA{R: 210, G: 50, B: 50, A: 255}
)

type segment struct {
	from, to r3.Vec
	branch   bool
}

// Map collects what to draw. Feed it track events with Attach and runner
// positions with AddPath.
type Map struct {
	segments map[track.Handle]segment
	path     plotter.XYs
	catches  plotter.XYs
}

func New() *Map {
	return &Map{segments: make(map[track.Handle]segment)}
}

func (m *Map) Attach(bus *track.EventBus) {
	bus.Subscribe(track.EventSegmentSpawned, m.spawned)
	bus.Subscribe(track.EventProvisionalDiscarded, m.discarded)
	bus.Subscribe(track.EventBranchPresented, func(ev track.Event) { m.MarkJunction(ev.Handle) })
}

func (m *Map) spawned(ev track.Event) {
	half := ev.Length / 2
	m.segments[ev.Handle] = segment{
		from: track.Advance(ev.Position, ev.Direction, -half),
		to:   track.Advance(ev.Position, ev.Direction, half),
	}
}

func (m *Map) discarded(ev track.Event) {
	delete(m.segments, ev.Handle)
}

// MarkJunction flags h as a branch.
func (m *Map) MarkJunction(h track.Handle) {
	if s, ok := m.segments[h]; ok {
		s.branch = true
		m.segments[h] = s
	}
}

// AddPath appends a runner position.
func (m *Map) AddPath(p r3.Vec) {
	m.path = append(m.path, plotter.XY{X: p.X, Y: p.Z})
}

// AddCatch marks where the pursuer caught the runner.
func (m *Map) AddCatch(p r3.Vec) {
	m.catches = append(m.catches, plotter.XY{X: p.X, Y: p.Z})
}

// Segments is the number of segments that will be drawn.
func (m *Map) Segments() int {
	return len(m.segments)
}

// Plot builds the map. World X runs right and world Z runs up.
func (m *Map) Plot(title string) (*plot.Plot, error) {
	if len(m.segments) == 0 && len(m.path) == 0 {
		return nil, ErrEmpty
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "z"

	handles := make([]track.Handle, 0, len(m.segments))
	for h := range m.segments {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	var junctions plotter.XYs
	roadLegend := false
	for _, h := range handles {
		s := m.segments[h]
		if s.branch {
			mid := r3.Scale(0.5, r3.Add(s.from, s.to))
			junctions = append(junctions, plotter.XY{X: mid.X, Y: mid.Z})
			continue
		}
		line, err := plotter.NewLine(plotter.XYs{{X: s.from.X, Y: s.from.Z}, {X: s.to.X, Y: s.to.Z}})
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", h, err)
		}
		line.Color = roadColor
		line.Width = vg.Points(3)
		p.Add(line)
		if !roadLegend {
			p.Legend.Add("road", line)
			roadLegend = true
		}
	}

	if len(junctions) > 0 {
		sc, err := plotter.NewScatter(junctions)
		if err != nil {
			return nil, fmt.Errorf("junctions: %w", err)
		}
		sc.GlyphStyle.Color = junctionColor
		sc.GlyphStyle.Shape = draw.BoxGlyph{}
		sc.GlyphStyle.Radius = vg.Points(4)
		p.Add(sc)
		p.Legend.Add("junction", sc)
	}

	if len(m.path) > 1 {
		line, err := plotter.NewLine(m.path)
		if err != nil {
			return nil, fmt.Errorf("path: %w", err)
		}
		line.Color = pathColor
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add("runner", line)
	}

	if len(m.catches) > 0 {
		sc, err := plotter.NewScatter(m.catches)
		if err != nil {
			return nil, fmt.Errorf("catches: %w", err)
		}
		sc.GlyphStyle.Color = catchColor
		sc.GlyphStyle.Shape = draw.CrossGlyph{}
		sc.GlyphStyle.Radius = vg.Points(5)
		p.Add(sc)
		p.Legend.Add("caught", sc)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// Save writes the map to path; the extension picks the format.
func (m *Map) Save(path, title string, size vg.Length) error {
	p, err := m.Plot(title)
	if err != nil {
		return err
	}
	if err := p.Save(size, size, path); err != nil {
		return fmt.Errorf("save map: %w", err)
	}
	return nil
}
