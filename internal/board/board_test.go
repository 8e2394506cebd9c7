package board

import (
	"testing"

	"github.com/san-kum/mazerun/internal/maze"
	"github.com/san-kum/mazerun/internal/playback"
)

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	g, err := maze.New(maze.Spec{Size: 9, Width: 3, Start: 0, End: 8}, []int{4})
	if err != nil {
		t.Fatal(err)
	}
	return New(g)
}

func TestBoardMarks(t *testing.T) {
	b := newTestBoard(t)

	b.Mark(1, playback.MarkVisited)
	b.Mark(2, playback.MarkPath)
	b.Mark(2, playback.MarkVisited)
	b.Mark(99, playback.MarkPath)

	s := b.Snapshot()
	tests := []struct {
		cell int
		want Cell
	}{
		{0, CellStart},
		{8, CellEnd},
		{4, CellWall},
		{1, CellVisited},
		{2, CellPath},
		{3, CellFree},
	}
	for _, tt := range tests {
		if got := s.At(tt.cell); got != tt.want {
			t.Errorf("cell %d: expected %v, got %v", tt.cell, tt.want, got)
		}
	}

	b.ClearMarks()
	if b.Snapshot().At(1) != CellFree {
		t.Error("expected marks cleared")
	}
}

func TestBoardFill(t *testing.T) {
	b := newTestBoard(t)
	b.Fill([]int{0, 1, 3, 2, 5, 8}, []int{0, 1, 2, 5, 8})

	s := b.Snapshot()
	if s.At(0) != CellStart || s.At(8) != CellEnd {
		t.Error("expected endpoints kept")
	}
	if s.At(3) != CellVisited || s.At(2) != CellPath {
		t.Errorf("unexpected marks %v", s.Marks)
	}
	if s.VisitedCount != 6 || s.PathCount != 5 || s.Status != playback.StatusFound {
		t.Errorf("unexpected counters %d/%d %s", s.VisitedCount, s.PathCount, s.Status)
	}

	b.Fill([]int{0, 1}, nil)
	s = b.Snapshot()
	if s.Status != playback.StatusUnreachable || s.At(2) != CellFree {
		t.Error("expected previous fill cleared and unreachable status")
	}
}

func TestBoardSnapshotIsCopy(t *testing.T) {
	b := newTestBoard(t)
	s := b.Snapshot()
	b.Mark(1, playback.MarkVisited)
	if s.At(1) != CellFree {
		t.Error("snapshot changed after a later mark")
	}
}

func TestBoardDrivenBySequencer(t *testing.T) {
	b := newTestBoard(t)
	seq := playback.New(playback.Options{Start: 0, End: 8, Marker: b, Status: b})
	seq.AddObserver(b)

	seq.Start([]int{0, 1, 2}, nil)
	seq.Tick()
	seq.Tick()

	s := b.Snapshot()
	if s.VisitedCount != 3 || s.PathCount != 0 {
		t.Errorf("expected counters 3/0, got %d/%d", s.VisitedCount, s.PathCount)
	}
	if s.Status != playback.StatusUnreachable {
		t.Errorf("expected unreachable, got %v", s.Status)
	}
	if s.Last != 2 {
		t.Errorf("expected last cell 2, got %d", s.Last)
	}
	if s.At(0) != CellStart {
		t.Error("start cell painted")
	}

	seq.Reset()
	s = b.Snapshot()
	if s.VisitedCount != 0 || s.At(1) != CellFree {
		t.Error("expected reset to clear counters and marks")
	}
}

func TestBoardStatusText(t *testing.T) {
	b := newTestBoard(t)
	b.Fail("connection refused")
	if got := b.Snapshot().Text(); got != "API Error! connection refused" {
		t.Errorf("unexpected status text %q", got)
	}
	b.SetStatus(playback.StatusPaused)
	if got := b.Snapshot().Text(); got != "Paused" {
		t.Errorf("unexpected status text %q", got)
	}
}
