package maze

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"
)

func TestGenerateNeverWallsEndpoints(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	spec := DefaultSpec()
	spec.WallProbability = 0.9

	for i := 0; i < 1000; i++ {
		g, err := Generate(spec, rng)
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if g.IsWall(g.Start()) || g.IsWall(g.End()) {
			t.Fatalf("iteration %d: endpoint marked as wall", i)
		}
		for _, w := range g.Walls() {
			if w == spec.Start || w == spec.End {
				t.Fatalf("iteration %d: wall list contains endpoint %d", i, w)
			}
		}
	}
}

func TestGenerateWallDensity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	spec := DefaultSpec()

	for _, p := range []float64{0, 0.1, 0.25, 0.5, 0.9} {
		spec.WallProbability = p
		const runs = 200
		total := 0
		for i := 0; i < runs; i++ {
			g, err := Generate(spec, rng)
			if err != nil {
				t.Fatalf("p=%.2f: %v", p, err)
			}
			total += g.WallCount()
		}
		mean := float64(total) / runs
		expected := p * float64(spec.Size-2)
		// binomial std of the mean, with a 5 sigma margin
		sigma := math.Sqrt(float64(spec.Size-2)*p*(1-p)) / math.Sqrt(runs)
		if math.Abs(mean-expected) > 5*sigma+1e-9 {
			t.Errorf("p=%.2f: expected mean %.2f walls, got %.2f", p, expected, mean)
		}
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	a, _ := Generate(DefaultSpec(), rand.New(rand.NewSource(42)))
	b, _ := Generate(DefaultSpec(), rand.New(rand.NewSource(42)))
	if a.String() != b.String() {
		t.Error("same seed produced different grids")
	}
}

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want error
	}{
		{"too small", Spec{Size: 1, Width: 1}, ErrInvalidSize},
		{"width does not divide", Spec{Size: 10, Width: 3, End: 1}, ErrInvalidWidth},
		{"not square", Spec{Size: 10, End: 1}, ErrInvalidWidth},
		{"negative start", Spec{Size: 4, Width: 2, Start: -1, End: 1}, ErrIndexOutOfRange},
		{"end past size", Spec{Size: 4, Width: 2, End: 4}, ErrIndexOutOfRange},
		{"same endpoints", Spec{Size: 4, Width: 2, Start: 2, End: 2}, ErrStartIsEnd},
		{"probability one", Spec{Size: 4, Width: 2, End: 3, WallProbability: 1}, ErrInvalidProbability},
		{"negative probability", Spec{Size: 4, Width: 2, End: 3, WallProbability: -0.1}, ErrInvalidProbability},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.spec, rand.New(rand.NewSource(1)))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var genErr *GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("expected *GenerationError, got %T", err)
			}
		})
	}
}

func TestSpecDerivesSquareWidth(t *testing.T) {
	spec, err := Spec{Size: 400, Start: 20, End: 379}.Validate()
	if err != nil {
		t.Fatal(err)
	}
	if spec.Width != 20 {
		t.Errorf("expected width 20, got %d", spec.Width)
	}
}

func TestNewFromWalls(t *testing.T) {
	spec := Spec{Size: 9, Width: 3, Start: 0, End: 8}

	g, err := New(spec, []int{4, 1, 4})
	if err != nil {
		t.Fatal(err)
	}
	if g.WallCount() != 2 {
		t.Errorf("expected 2 walls, got %d", g.WallCount())
	}
	if got := g.Walls(); len(got) != 2 || got[0] != 1 || got[1] != 4 {
		t.Errorf("expected sorted walls [1 4], got %v", got)
	}
	if g.FreeCount() != 7 {
		t.Errorf("expected 7 free cells, got %d", g.FreeCount())
	}

	if _, err := New(spec, []int{0}); !errors.Is(err, ErrWallOnEndpoint) {
		t.Errorf("expected ErrWallOnEndpoint, got %v", err)
	}
	if _, err := New(spec, []int{9}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestGridLayout(t *testing.T) {
	g, err := New(Spec{Size: 6, Width: 3, Start: 0, End: 5}, []int{1, 4})
	if err != nil {
		t.Fatal(err)
	}

	if row, col := g.Coord(4); row != 1 || col != 1 {
		t.Errorf("expected (1,1), got (%d,%d)", row, col)
	}
	if g.Index(1, 2) != 5 {
		t.Errorf("expected index 5, got %d", g.Index(1, 2))
	}
	if g.Rows() != 2 {
		t.Errorf("expected 2 rows, got %d", g.Rows())
	}
	if g.Kind(0) != Start || g.Kind(5) != End || g.Kind(1) != Wall || g.Kind(2) != Free {
		t.Error("unexpected cell kinds")
	}

	want := "S#.\n.#E\n"
	if g.String() != want {
		t.Errorf("expected\n%s\ngot\n%s", want, g.String())
	}
	if strings.Count(g.String(), "\n") != g.Rows() {
		t.Error("one line per row expected")
	}
}

func TestWallsNeverNil(t *testing.T) {
	g, err := Generate(Spec{Size: 4, Width: 2, End: 3}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	if g.Walls() == nil {
		t.Error("expected empty, non-nil wall slice")
	}
}
