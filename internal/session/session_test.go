package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/san-kum/mazerun/internal/maze"
	"github.com/san-kum/mazerun/internal/playback"
	"github.com/san-kum/mazerun/internal/solver"
)

type fakeSolver struct {
	mu    sync.Mutex
	res   *solver.Result
	err   error
	block chan struct{}
	calls []solver.Algorithm
	grids []*maze.Grid
}

func (f *fakeSolver) Solve(ctx context.Context, g *maze.Grid, alg solver.Algorithm) (*solver.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, alg)
	f.grids = append(f.grids, g)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.res, f.err
}

func (f *fakeSolver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testConfig() Config {
	return Config{
		Spec:            maze.Spec{Size: 16, Width: 4, Start: 0, End: 15, WallProbability: 0.2},
		VisitedInterval: time.Millisecond,
		PathInterval:    time.Millisecond,
	}
}

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("playback did not finish: %v", err)
	}
}

func TestSimulatePlaysResult(t *testing.T) {
	fs := &fakeSolver{res: &solver.Result{Visited: []int{0, 1, 2, 15}, Path: []int{0, 1, 15}}}
	s, err := New(testConfig(), fs, 1)
	if err != nil {
		t.Fatal(err)
	}

	var recorded []Run
	s.SetRecorder(func(r Run) error {
		recorded = append(recorded, r)
		return nil
	})
	done := make(chan playback.Summary, 1)
	s.OnDone(func(sum playback.Summary) { done <- sum })

	if _, err := s.Simulate(context.Background(), solver.AStar); err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	waitDone(t, s)

	sum := <-done
	if !sum.Found || sum.VisitedCount != 4 || sum.PathCount != 3 {
		t.Errorf("unexpected summary %+v", sum)
	}
	snap := s.Board().Snapshot()
	if snap.Status != playback.StatusFound {
		t.Errorf("expected found status, got %v", snap.Status)
	}
	if len(recorded) != 1 || recorded[0].Algorithm != solver.AStar || recorded[0].Seed != 1 {
		t.Errorf("unexpected recorded runs %+v", recorded)
	}
	if s.Last() == nil || s.Last().Result != fs.res {
		t.Error("expected last run to be kept")
	}
	if fs.grids[0] != s.Grid() {
		t.Error("solver did not receive the session grid")
	}
	if c := s.Controls(); !c.CanSimulate || c.CanPause {
		t.Errorf("unexpected controls after completion %+v", c)
	}
}

func TestSimulateFailureStartsNothing(t *testing.T) {
	boom := &solver.SolveError{Algorithm: solver.BFS, Err: solver.ErrTransport}
	fs := &fakeSolver{err: boom}
	s, err := New(testConfig(), fs, 1)
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.Simulate(context.Background(), solver.BFS)
	if !errors.Is(err, solver.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}

	snap := s.Board().Snapshot()
	if snap.Status != playback.StatusError || snap.Detail == "" {
		t.Errorf("expected error status with detail, got %q", snap.Text())
	}
	if st := s.Sequencer().State(); st.Phase != playback.PhaseIdle {
		t.Errorf("expected idle sequencer, got %v", st.Phase)
	}
	if c := s.Controls(); !c.CanSimulate {
		t.Error("simulate should be enabled again after a failure")
	}
	if s.Last() != nil {
		t.Error("failed solve kept as last run")
	}
}

func TestSimulateRejectsConcurrentSolve(t *testing.T) {
	fs := &fakeSolver{res: &solver.Result{Visited: []int{0}}, block: make(chan struct{})}
	s, err := New(testConfig(), fs, 1)
	if err != nil {
		t.Fatal(err)
	}

	errc := make(chan error, 1)
	go func() {
		_, err := s.Simulate(context.Background(), solver.BFS)
		errc <- err
	}()

	deadline := time.Now().Add(5 * time.Second)
	for fs.callCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first solve never started")
		}
		time.Sleep(time.Millisecond)
	}
	if c := s.Controls(); c.CanSimulate || c.CanPause || c.CanContinue {
		t.Errorf("expected every control disabled while solving, got %+v", c)
	}
	if snap := s.Board().Snapshot(); snap.Status != playback.StatusSearching {
		t.Errorf("expected searching status, got %v", snap.Status)
	}

	if _, err := s.Simulate(context.Background(), solver.DFS); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if err := s.NewMaze(2); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy for new maze, got %v", err)
	}

	close(fs.block)
	if err := <-errc; err != nil {
		t.Fatalf("first solve failed: %v", err)
	}
	waitDone(t, s)
}

func TestNewMazeResetsPlayback(t *testing.T) {
	fs := &fakeSolver{res: &solver.Result{Visited: []int{1, 2, 3, 4, 5, 6}, Path: []int{}}}
	cfg := testConfig()
	cfg.VisitedInterval = time.Hour
	s, err := New(cfg, fs, 1)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Simulate(context.Background(), solver.BFS); err != nil {
		t.Fatal(err)
	}
	if s.Board().Snapshot().VisitedCount != 1 {
		t.Fatal("expected the first cell emitted")
	}

	before := s.Grid()
	if err := s.NewMaze(99); err != nil {
		t.Fatal(err)
	}
	if s.Grid() == before || s.Seed() != 99 {
		t.Error("expected a new grid")
	}
	if st := s.Sequencer().State(); st.Phase != playback.PhaseIdle || st.Cursor != 0 {
		t.Errorf("expected idle sequencer, got %+v", st)
	}
	if snap := s.Board().Snapshot(); snap.VisitedCount != 0 || snap.Grid != s.Grid() {
		t.Error("board not reset for the new maze")
	}
	if s.Last() != nil {
		t.Error("last run survived a new maze")
	}
}

func TestPauseContinue(t *testing.T) {
	fs := &fakeSolver{res: &solver.Result{Visited: []int{1, 2, 3}, Path: []int{3}}}
	cfg := testConfig()
	cfg.VisitedInterval = time.Hour
	s, err := New(cfg, fs, 1)
	if err != nil {
		t.Fatal(err)
	}

	if s.Pause() {
		t.Error("pause accepted while idle")
	}
	if _, err := s.Simulate(context.Background(), solver.DFS); err != nil {
		t.Fatal(err)
	}
	if !s.Pause() {
		t.Fatal("pause rejected while running")
	}
	if c := s.Controls(); !c.CanContinue || c.CanPause {
		t.Errorf("unexpected controls while paused %+v", c)
	}
	if !s.Continue() {
		t.Fatal("continue rejected while paused")
	}
	if got := s.Sequencer().State().Cursor; got != 2 {
		t.Errorf("expected cursor 2 after continue, got %d", got)
	}
}

func TestNewRejectsInvalidSpec(t *testing.T) {
	cfg := testConfig()
	cfg.Spec.End = cfg.Spec.Start
	if _, err := New(cfg, &fakeSolver{}, 1); !errors.Is(err, maze.ErrStartIsEnd) {
		t.Errorf("expected ErrStartIsEnd, got %v", err)
	}
}
