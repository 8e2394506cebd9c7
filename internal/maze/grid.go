package maze

import (
	"math"
	"math/rand"
	"strings"
)

// Reference layout: a 20x20 board entered on the left edge of the second row
// and left through the right edge of the last row.
const (
	DefaultSize            = 400
	DefaultWidth           = 20
	DefaultStart           = 20
	DefaultEnd             = 379
	DefaultWallProbability = 0.25
)

// Kind is the static state of one cell.
type Kind int

const (
	Free Kind = iota
	Wall
	Start
	End
)

func (k Kind) String() string {
	switch k {
	case Free:
		return "free"
	case Wall:
		return "wall"
	case Start:
		return "start"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

// Spec describes the grid to build. A zero Width means "square grid".
type Spec struct {
	Size            int
	Width           int
	Start           int
	End             int
	WallProbability float64
}

// DefaultSpec returns the reference 20x20 layout.
func DefaultSpec() Spec {
	return Spec{
		Size:            DefaultSize,
		Width:           DefaultWidth,
		Start:           DefaultStart,
		End:             DefaultEnd,
		WallProbability: DefaultWallProbability,
	}
}

// Validate checks the spec and returns it with Width resolved.
func (s Spec) Validate() (Spec, error) {
	if s.Size < 2 {
		return s, invalid("size", s.Size, ErrInvalidSize)
	}
	if s.Width == 0 {
		side := int(math.Round(math.Sqrt(float64(s.Size))))
		if side*side != s.Size {
			return s, invalid("width", s.Width, ErrInvalidWidth)
		}
		s.Width = side
	}
	if s.Width < 0 || s.Size%s.Width != 0 {
		return s, invalid("width", s.Width, ErrInvalidWidth)
	}
	if s.Start < 0 || s.Start >= s.Size {
		return s, invalid("start", s.Start, ErrIndexOutOfRange)
	}
	if s.End < 0 || s.End >= s.Size {
		return s, invalid("end", s.End, ErrIndexOutOfRange)
	}
	if s.Start == s.End {
		return s, invalid("end", s.End, ErrStartIsEnd)
	}
	if math.IsNaN(s.WallProbability) || s.WallProbability < 0 || s.WallProbability >= 1 {
		return s, invalid("wall_probability", s.WallProbability, ErrInvalidProbability)
	}
	return s, nil
}

// Grid is an immutable row-major board. Start and End are never walls.
type Grid struct {
	spec  Spec
	walls []bool
	count int
}

// Generate draws every cell other than start and end as a wall with
// probability spec.WallProbability. The result may have no route.
func Generate(spec Spec, rng *rand.Rand) (*Grid, error) {
	spec, err := spec.Validate()
	if err != nil {
		return nil, err
	}

	g := &Grid{spec: spec, walls: make([]bool, spec.Size)}
	for i := 0; i < spec.Size; i++ {
		if i == spec.Start || i == spec.End {
			continue
		}
		if rng.Float64() < spec.WallProbability {
			g.walls[i] = true
			g.count++
		}
	}
	return g, nil
}

// New rebuilds a grid from an explicit wall list, e.g. a stored run.
func New(spec Spec, walls []int) (*Grid, error) {
	spec, err := spec.Validate()
	if err != nil {
		return nil, err
	}

	g := &Grid{spec: spec, walls: make([]bool, spec.Size)}
	for _, w := range walls {
		if w < 0 || w >= spec.Size {
			return nil, invalid("walls", w, ErrIndexOutOfRange)
		}
		if w == spec.Start || w == spec.End {
			return nil, invalid("walls", w, ErrWallOnEndpoint)
		}
		if !g.walls[w] {
			g.walls[w] = true
			g.count++
		}
	}
	return g, nil
}

func (g *Grid) Spec() Spec     { return g.spec }
func (g *Grid) Size() int      { return g.spec.Size }
func (g *Grid) Width() int     { return g.spec.Width }
func (g *Grid) Rows() int      { return g.spec.Size / g.spec.Width }
func (g *Grid) Start() int     { return g.spec.Start }
func (g *Grid) End() int       { return g.spec.End }
func (g *Grid) WallCount() int { return g.count }

// FreeCount counts cells that are not walls, start and end included.
func (g *Grid) FreeCount() int { return g.spec.Size - g.count }

// Contains reports whether i is a valid cell index.
func (g *Grid) Contains(i int) bool { return i >= 0 && i < g.spec.Size }

func (g *Grid) IsWall(i int) bool {
	return g.Contains(i) && g.walls[i]
}

// IsEndpoint reports whether i is the start or end cell.
func (g *Grid) IsEndpoint(i int) bool {
	return i == g.spec.Start || i == g.spec.End
}

func (g *Grid) Kind(i int) Kind {
	switch {
	case i == g.spec.Start:
		return Start
	case i == g.spec.End:
		return End
	case g.IsWall(i):
		return Wall
	default:
		return Free
	}
}

// Coord maps a cell index to its row and column.
func (g *Grid) Coord(i int) (row, col int) {
	return i / g.spec.Width, i % g.spec.Width
}

// Index is the inverse of Coord.
func (g *Grid) Index(row, col int) int {
	return row*g.spec.Width + col
}

// Walls returns the wall indices in ascending order. Never nil.
func (g *Grid) Walls() []int {
	out := make([]int, 0, g.count)
	for i, w := range g.walls {
		if w {
			out = append(out, i)
		}
	}
	return out
}

func (g *Grid) String() string {
	var b strings.Builder
	b.Grow(g.spec.Size + g.Rows())
	for i := 0; i < g.spec.Size; i++ {
		switch g.Kind(i) {
		case Start:
			b.WriteByte('S')
		case End:
			b.WriteByte('E')
		case Wall:
			b.WriteByte('#')
		default:
			b.WriteByte('.')
		}
		if (i+1)%g.spec.Width == 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
