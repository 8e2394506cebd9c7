package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/san-kum/mazerun/internal/board"
	"github.com/san-kum/mazerun/internal/playback"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Glyphs used for each drawn cell state.
var glyphs = map[board.Cell]rune{
	board.CellFree:    '.',
	board.CellWall:    '#',
	board.CellStart:   'S',
	board.CellEnd:     'E',
	board.CellVisited: 'o',
	board.CellPath:    '*',
}

// LiveRenderer redraws the board on every emission, at most frameRate times
// per second. Register it after the board so frames include the emitted cell.
type LiveRenderer struct {
	mu        sync.Mutex
	out       io.Writer
	board     *board.Board
	title     string
	frameRate int
	lastFrame time.Time
	ansi      bool
}

func NewLiveRenderer(out io.Writer, b *board.Board, title string, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &LiveRenderer{
		out:       out,
		board:     b,
		title:     title,
		frameRate: frameRate,
		ansi:      true,
	}
}

// SetANSI turns cursor and clear-screen escapes on or off.
func (r *LiveRenderer) SetANSI(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ansi = on
}

func (r *LiveRenderer) OnEmit(e playback.Emission) {
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()
	r.renderLocked()
}

func (r *LiveRenderer) OnReset() {}

// Flush draws the current board regardless of the frame budget.
func (r *LiveRenderer) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFrame = time.Now()
	r.renderLocked()
}

func (r *LiveRenderer) renderLocked() {
	var b strings.Builder
	if r.ansi {
		b.WriteString(clearScreen)
	}
	b.WriteString(Frame(r.title, r.board.Snapshot()))
	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() {
	if r.ansi {
		fmt.Fprint(r.out, hideCursor)
	}
}

func (r *LiveRenderer) Stop() {
	if r.ansi {
		fmt.Fprint(r.out, showCursor)
	}
}

// Frame renders one snapshot as plain text: a title, the grid framed by
// rules, and the counters with the status line.
func Frame(title string, snap board.Snapshot) string {
	if snap.Grid == nil {
		return ""
	}
	g := snap.Grid
	rule := "  +" + strings.Repeat("-", g.Width()*2) + "+\n"

	var b strings.Builder
	b.WriteString(fmt.Sprintf("  %s  %dx%d\n", title, g.Width(), g.Rows()))
	b.WriteString(rule)
	for row := 0; row < g.Rows(); row++ {
		b.WriteString("  |")
		for col := 0; col < g.Width(); col++ {
			b.WriteRune(glyphs[snap.At(g.Index(row, col))])
			b.WriteByte(' ')
		}
		b.WriteString("|\n")
	}
	b.WriteString(rule)
	b.WriteString(fmt.Sprintf("  visited=%d path=%d  %s\n", snap.VisitedCount, snap.PathCount, snap.Text()))
	return b.String()
}
