package metrics

import (
	"sync"

	"github.com/san-kum/mazerun/internal/maze"
	"github.com/san-kum/mazerun/internal/playback"
)

// Default returns the metrics shown for every run on g.
func Default(g *maze.Grid) *Set {
	return NewSet(
		NewRevisits(),
		NewCoverage(g),
		NewPathRatio(),
		NewMeanJump(g),
	)
}

// Revisits counts visited emissions of a cell already emitted before.
type Revisits struct {
	name  string
	seen  map[int]bool
	count int
}

func NewRevisits() *Revisits {
	return &Revisits{name: "revisits", seen: make(map[int]bool)}
}

func (r *Revisits) Name() string { return r.name }

func (r *Revisits) Observe(e playback.Emission) {
	if e.Phase != playback.PhaseVisited {
		return
	}
	if r.seen[e.Cell] {
		r.count++
		return
	}
	r.seen[e.Cell] = true
}

func (r *Revisits) Value() float64 { return float64(r.count) }

func (r *Revisits) Reset() {
	r.seen = make(map[int]bool)
	r.count = 0
}

// Coverage is the share of open cells the search explored.
type Coverage struct {
	name string
	free int
	seen map[int]bool
}

func NewCoverage(g *maze.Grid) *Coverage {
	return &Coverage{name: "coverage", free: g.FreeCount(), seen: make(map[int]bool)}
}

func (c *Coverage) Name() string { return c.name }

func (c *Coverage) Observe(e playback.Emission) {
	if e.Phase == playback.PhaseVisited {
		c.seen[e.Cell] = true
	}
}

func (c *Coverage) Value() float64 {
	if c.free == 0 {
		return 0
	}
	return float64(len(c.seen)) / float64(c.free)
}

func (c *Coverage) Reset() { c.seen = make(map[int]bool) }

// PathRatio is route length over distinct explored cells; 1 means the
// search went straight to the target.
type PathRatio struct {
	name    string
	seen    map[int]bool
	pathLen int
}

func NewPathRatio() *PathRatio {
	return &PathRatio{name: "path_ratio", seen: make(map[int]bool)}
}

func (p *PathRatio) Name() string { return p.name }

func (p *PathRatio) Observe(e playback.Emission) {
	switch e.Phase {
	case playback.PhaseVisited:
		p.seen[e.Cell] = true
	case playback.PhasePath:
		p.pathLen++
	}
}

func (p *PathRatio) Value() float64 {
	if len(p.seen) == 0 {
		return 0
	}
	return float64(p.pathLen) / float64(len(p.seen))
}

func (p *PathRatio) Reset() {
	p.seen = make(map[int]bool)
	p.pathLen = 0
}

// MeanJump is the mean Manhattan distance between consecutive visited
// cells. Breadth-first frontiers jump; depth-first walks stay near 1.
type MeanJump struct {
	name  string
	grid  *maze.Grid
	prev  int
	sum   float64
	jumps int
}

func NewMeanJump(g *maze.Grid) *MeanJump {
	return &MeanJump{name: "mean_jump", grid: g, prev: -1}
}

func (m *MeanJump) Name() string { return m.name }

func (m *MeanJump) Observe(e playback.Emission) {
	if e.Phase != playback.PhaseVisited {
		return
	}
	if m.prev >= 0 {
		m.sum += float64(Manhattan(m.grid, m.prev, e.Cell))
		m.jumps++
	}
	m.prev = e.Cell
}

func (m *MeanJump) Value() float64 {
	if m.jumps == 0 {
		return 0
	}
	return m.sum / float64(m.jumps)
}

func (m *MeanJump) Reset() {
	m.prev = -1
	m.sum = 0
	m.jumps = 0
}

// Manhattan is the grid distance between cells a and b.
func Manhattan(g *maze.Grid, a, b int) int {
	ar, ac := g.Coord(a)
	br, bc := g.Coord(b)
	return abs(ar-br) + abs(ac-bc)
}

// Profile maps every visited step to its distance from the start cell, the
// series plotted by `mazerun plot`.
func Profile(g *maze.Grid, visited []int) []float64 {
	out := make([]float64, len(visited))
	for i, cell := range visited {
		out[i] = float64(Manhattan(g, g.Start(), cell))
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Evaluate runs the default metrics over a whole result without playback.
func Evaluate(g *maze.Grid, visited, path []int) map[string]float64 {
	set := Default(g)
	step := 0
	for _, cell := range visited {
		set.OnEmit(playback.Emission{Step: step, Phase: playback.PhaseVisited, Cell: cell})
		step++
	}
	for _, cell := range path {
		set.OnEmit(playback.Emission{Step: step, Phase: playback.PhasePath, Cell: cell})
		step++
	}
	return set.Values()
}

// Tracker is a playback observer whose metrics follow maze swaps.
type Tracker struct {
	mu  sync.Mutex
	set *Set
}

func NewTracker(g *maze.Grid) *Tracker {
	return &Tracker{set: Default(g)}
}

// SetGrid drops the accumulated values and measures against g from now on.
func (t *Tracker) SetGrid(g *maze.Grid) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.set = Default(g)
}

func (t *Tracker) current() *Set {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.set
}

func (t *Tracker) OnEmit(e playback.Emission) { t.current().OnEmit(e) }
func (t *Tracker) OnReset()                   { t.current().OnReset() }
func (t *Tracker) Values() map[string]float64 { return t.current().Values() }
func (t *Tracker) Names() []string            { return t.current().Names() }
