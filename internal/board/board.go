// Package board holds what the screen shows: the maze, the marks painted by
// playback, the counters and the status line. Renderers read snapshots; the
// sequencer writes from its timer goroutine.
package board

import (
	"sync"

	"github.com/san-kum/mazerun/internal/maze"
	"github.com/san-kum/mazerun/internal/playback"
)

// Board implements playback.Marker, playback.StatusSink and playback.Observer.
type Board struct {
	mu      sync.RWMutex
	grid    *maze.Grid
	marks   []playback.MarkKind
	last    int
	visited int
	path    int
	status  playback.Status
	detail  string
}

func New(g *maze.Grid) *Board {
	b := &Board{}
	b.SetGrid(g)
	return b
}

// SetGrid swaps in a new maze and clears everything painted on the old one.
func (b *Board) SetGrid(g *maze.Grid) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.grid = g
	b.marks = make([]playback.MarkKind, g.Size())
	b.last = -1
	b.visited, b.path = 0, 0
	b.status, b.detail = playback.StatusIdle, ""
}

func (b *Board) Mark(cell int, kind playback.MarkKind) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cell < 0 || cell >= len(b.marks) {
		return
	}
	// a path mark wins over a visited mark, never the other way round
	if b.marks[cell] == playback.MarkPath && kind == playback.MarkVisited {
		return
	}
	b.marks[cell] = kind
}

func (b *Board) ClearMarks() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.marks {
		b.marks[i] = playback.MarkNone
	}
	b.last = -1
}

func (b *Board) SetStatus(s playback.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status, b.detail = s, ""
}

// Fail reports an error status with a detail line.
func (b *Board) Fail(detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status, b.detail = playback.StatusError, detail
}

func (b *Board) OnEmit(e playback.Emission) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.visited, b.path = e.VisitedCount, e.PathCount
	b.last = e.Cell
}

func (b *Board) OnReset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.visited, b.path = 0, 0
	b.last = -1
}

// Fill paints a whole result at once, as the board looks when playback of
// it has finished. Endpoints stay unpainted.
func (b *Board) Fill(visited, path []int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.marks {
		b.marks[i] = playback.MarkNone
	}
	paint := func(cells []int, kind playback.MarkKind) {
		for _, c := range cells {
			if c < 0 || c >= len(b.marks) || b.grid.IsEndpoint(c) {
				continue
			}
			if b.marks[c] == playback.MarkPath {
				continue
			}
			b.marks[c] = kind
		}
	}
	paint(visited, playback.MarkVisited)
	paint(path, playback.MarkPath)

	b.visited, b.path = len(visited), len(path)
	b.last = -1
	b.detail = ""
	b.status = playback.StatusUnreachable
	if len(path) > 0 {
		b.status = playback.StatusFound
	}
}

// Snapshot is an immutable copy for one frame.
type Snapshot struct {
	Grid         *maze.Grid
	Marks        []playback.MarkKind
	Last         int
	VisitedCount int
	PathCount    int
	Status       playback.Status
	Detail       string
}

func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	marks := make([]playback.MarkKind, len(b.marks))
	copy(marks, b.marks)
	return Snapshot{
		Grid:         b.grid,
		Marks:        marks,
		Last:         b.last,
		VisitedCount: b.visited,
		PathCount:    b.path,
		Status:       b.status,
		Detail:       b.detail,
	}
}

// Cell classifies what a renderer draws at i.
type Cell int

const (
	CellFree Cell = iota
	CellWall
	CellStart
	CellEnd
	CellVisited
	CellPath
)

// At resolves the drawn state of cell i, endpoints first.
func (s Snapshot) At(i int) Cell {
	switch s.Grid.Kind(i) {
	case maze.Start:
		return CellStart
	case maze.End:
		return CellEnd
	case maze.Wall:
		return CellWall
	}
	switch s.Marks[i] {
	case playback.MarkPath:
		return CellPath
	case playback.MarkVisited:
		return CellVisited
	}
	return CellFree
}

// Text is the status line, with detail when present.
func (s Snapshot) Text() string {
	if s.Detail != "" {
		return s.Status.String() + " " + s.Detail
	}
	return s.Status.String()
}
