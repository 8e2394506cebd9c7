package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/mazerun/internal/board"
)

// Palette maps drawn cell states to fill colours.
type Palette struct {
	Background string
	Free       string
	Wall       string
	Start      string
	End        string
	Visited    string
	Path       string
}

func DefaultPalette() Palette {
	return Palette{
		Background: "#0a0a0a",
		Free:       "#f5f5f5",
		Wall:       "#333333",
		Start:      "#2ecc71",
		End:        "#e74c3c",
		Visited:    "#85c1e9",
		Path:       "#f1c40f",
	}
}

func (p Palette) fill(c board.Cell) string {
	switch c {
	case board.CellWall:
		return p.Wall
	case board.CellStart:
		return p.Start
	case board.CellEnd:
		return p.End
	case board.CellVisited:
		return p.Visited
	case board.CellPath:
		return p.Path
	default:
		return p.Free
	}
}

// BoardToSVG draws every cell of the snapshot as a cell x cell square.
func BoardToSVG(snap board.Snapshot, cell float64) string {
	return BoardToSVGWith(snap, cell, DefaultPalette())
}

func BoardToSVGWith(snap board.Snapshot, cell float64, p Palette) string {
	if snap.Grid == nil {
		return ""
	}
	if cell <= 0 {
		cell = 1
	}

	g := snap.Grid
	width := float64(g.Width()) * cell
	height := float64(g.Rows()) * cell

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g stroke="%s" stroke-width="%.2f">
`, width, height, width, height, p.Background, p.Background, cell*0.05))

	for i := 0; i < g.Size(); i++ {
		row, col := g.Coord(i)
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, float64(col)*cell, float64(row)*cell, cell, cell, p.fill(snap.At(i))))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// RouteToSVG draws the route through the centres of its cells as a single
// polyline over the bare maze.
func RouteToSVG(snap board.Snapshot, route []int, cell float64, stroke string) string {
	if snap.Grid == nil || len(route) < 2 {
		return ""
	}
	if cell <= 0 {
		cell = 1
	}

	g := snap.Grid
	p := DefaultPalette()
	width := float64(g.Width()) * cell
	height := float64(g.Rows()) * cell

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, p.Free, p.Wall))

	for _, w := range g.Walls() {
		row, col := g.Coord(w)
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>
`, float64(col)*cell, float64(row)*cell, cell, cell))
	}

	sb.WriteString(fmt.Sprintf(`</g>
<path fill="none" stroke="%s" stroke-width="%.1f" d="M`, stroke, cell*0.3))

	for i, c := range route {
		row, col := g.Coord(c)
		x := float64(col)*cell + cell/2
		y := float64(row)*cell + cell/2
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
