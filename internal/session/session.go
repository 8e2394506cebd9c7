// Package session wires one maze, the solver client and the sequencer into
// the four triggers a control surface exposes: new maze, simulate, pause and
// continue.
package session

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/mazerun/internal/board"
	"github.com/san-kum/mazerun/internal/logging"
	"github.com/san-kum/mazerun/internal/maze"
	"github.com/san-kum/mazerun/internal/playback"
	"github.com/san-kum/mazerun/internal/solver"
)

// ErrBusy is returned while a solve or a maze swap is in flight.
var ErrBusy = errors.New("session: busy")

// Solver is the remote search capability.
type Solver interface {
	Solve(ctx context.Context, g *maze.Grid, alg solver.Algorithm) (*solver.Result, error)
}

// Run is one successful solve, handed to the Recorder.
type Run struct {
	Grid      *maze.Grid
	Seed      int64
	Algorithm solver.Algorithm
	Result    *solver.Result
}

// Recorder persists runs, e.g. storage.Store.
type Recorder func(Run) error

type Config struct {
	Spec            maze.Spec
	VisitedInterval time.Duration
	PathInterval    time.Duration
	Scheduler       playback.Scheduler
	Logger          *log.Logger
}

type Session struct {
	cfg    Config
	solver Solver
	log    *log.Logger
	board  *board.Board
	seq    *playback.Sequencer

	mu       sync.Mutex
	grid     *maze.Grid
	seed     int64
	inFlight bool
	last     *Run
	record   Recorder
	onDone   func(playback.Summary)
}

// New generates the first maze from seed and returns an idle session.
func New(cfg Config, s Solver, seed int64) (*Session, error) {
	g, err := maze.Generate(cfg.Spec, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}
	return NewWithGrid(cfg, s, g, seed), nil
}

// NewWithGrid starts a session on an existing maze, e.g. a stored run.
func NewWithGrid(cfg Config, s Solver, g *maze.Grid, seed int64) *Session {
	cfg.Spec = g.Spec()
	ses := &Session{
		cfg:    cfg,
		solver: s,
		log:    logging.OrDiscard(cfg.Logger),
		grid:   g,
		seed:   seed,
		board:  board.New(g),
	}
	ses.seq = playback.New(playback.Options{
		Start:           g.Start(),
		End:             g.End(),
		VisitedInterval: cfg.VisitedInterval,
		PathInterval:    cfg.PathInterval,
		Scheduler:       cfg.Scheduler,
		Marker:          ses.board,
		Status:          ses.board,
		OnDone:          ses.finished,
		Logger:          cfg.Logger,
	})
	ses.seq.AddObserver(ses.board)
	return ses
}

func (s *Session) Board() *board.Board            { return s.board }
func (s *Session) Sequencer() *playback.Sequencer { return s.seq }

// SetRecorder installs a hook called after every successful solve.
func (s *Session) SetRecorder(r Recorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = r
}

// OnDone installs a hook for completed playbacks. It runs on the timer
// goroutine with the sequencer lock held.
func (s *Session) OnDone(f func(playback.Summary)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDone = f
}

// AddObserver forwards to the sequencer.
func (s *Session) AddObserver(o playback.Observer) { s.seq.AddObserver(o) }

func (s *Session) Grid() *maze.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid
}

func (s *Session) Seed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seed
}

// Last returns the most recent successful solve, or nil.
func (s *Session) Last() *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// NewMaze stops any playback and replaces the maze.
func (s *Session) NewMaze(seed int64) error {
	g, err := maze.Generate(s.cfg.Spec, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}
	if !s.acquire() {
		return ErrBusy
	}
	defer s.release()

	// the sequencer lock is taken without s.mu held: OnDone takes them in
	// the opposite order
	s.seq.Reset()
	s.seq.SetEndpoints(g.Start(), g.End())
	s.board.SetGrid(g)

	s.mu.Lock()
	s.grid, s.seed, s.last = g, seed, nil
	s.mu.Unlock()

	s.log.Info("new maze", "seed", seed, "walls", g.WallCount())
	return nil
}

func (s *Session) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
}

// Simulate asks the solver for a result on the current maze and starts
// playback. On failure the status shows the error and no playback starts.
func (s *Session) Simulate(ctx context.Context, alg solver.Algorithm) (*solver.Result, error) {
	if !s.acquire() {
		return nil, ErrBusy
	}
	defer s.release()

	s.mu.Lock()
	g, seed := s.grid, s.seed
	s.mu.Unlock()

	s.seq.Reset()
	s.board.SetStatus(playback.StatusSearching)
	s.log.Info("solving", "algorithm", alg, "seed", seed)

	res, err := s.solver.Solve(ctx, g, alg)
	if err != nil {
		s.log.Error("solve failed", "algorithm", alg, "err", err)
		s.board.Fail(err.Error())
		return nil, err
	}

	run := &Run{Grid: g, Seed: seed, Algorithm: alg, Result: res}
	s.mu.Lock()
	s.last = run
	record := s.record
	s.mu.Unlock()

	if record != nil {
		if err := record(*run); err != nil {
			s.log.Warn("run not recorded", "err", err)
		}
	}

	s.log.Info("playing", "algorithm", alg, "visited", len(res.Visited), "path", len(res.Path))
	s.seq.Start(res.Visited, res.Path)
	return res, nil
}

// Replay plays a known result without calling the solver.
func (s *Session) Replay(res *solver.Result) {
	s.seq.Start(res.Visited, res.Path)
}

// Pause reports whether playback was running and is now paused.
func (s *Session) Pause() bool { return s.seq.Pause() }

// Continue reports whether a paused playback resumed.
func (s *Session) Continue() bool { return s.seq.Resume() }

// Wait blocks until the current playback completes.
func (s *Session) Wait(ctx context.Context) error { return s.seq.Wait(ctx) }

// Controls reports the enabled triggers. None is enabled while a solve is
// in flight.
func (s *Session) Controls() playback.Controls {
	s.mu.Lock()
	busy := s.inFlight
	s.mu.Unlock()
	if busy {
		return playback.Controls{}
	}
	return s.seq.Controls()
}

func (s *Session) finished(sum playback.Summary) {
	s.mu.Lock()
	f := s.onDone
	s.mu.Unlock()
	s.log.Info("playback finished", "visited", sum.VisitedCount, "path", sum.PathCount, "found", sum.Found)
	if f != nil {
		f(sum)
	}
}
