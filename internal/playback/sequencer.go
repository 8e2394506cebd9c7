package playback

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/mazerun/internal/logging"
)

type Options struct {
	// Start and End are never painted, even when the solver emits them.
	Start int
	End   int

	VisitedInterval time.Duration
	PathInterval    time.Duration

	Scheduler Scheduler
	Marker    Marker
	Status    StatusSink

	// OnDone runs with the sequencer lock held when a run completes.
	OnDone func(Summary)

	Logger *log.Logger
}

// Sequencer replays a visited sequence and then a path sequence, one cell
// per tick. At most one future tick is pending at any time; every pending
// callback carries the epoch it was scheduled in and is ignored once the
// epoch moves on (pause, tick, reset, start).
type Sequencer struct {
	mu        sync.Mutex
	opts      Options
	log       *log.Logger
	observers []Observer

	visited []int
	path    []int
	cursor  int
	phase   Phase
	paused  bool

	visitedCount int
	pathCount    int

	epoch   uint64
	pending Timer
	done    chan struct{}
}

func New(opts Options) *Sequencer {
	if opts.VisitedInterval <= 0 {
		opts.VisitedInterval = DefaultVisitedInterval
	}
	if opts.PathInterval <= 0 {
		opts.PathInterval = DefaultPathInterval
	}
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler()
	}
	if opts.Marker == nil {
		opts.Marker = nopMarker{}
	}
	if opts.Status == nil {
		opts.Status = nopStatus{}
	}
	return &Sequencer{
		opts: opts,
		log:  logging.OrDiscard(opts.Logger),
		done: make(chan struct{}),
	}
}

// AddObserver registers o for emissions and resets. Observers run with the
// sequencer lock held.
func (s *Sequencer) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// SetEndpoints changes the suppressed cells, e.g. after a new maze.
func (s *Sequencer) SetEndpoints(start, end int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.Start, s.opts.End = start, end
}

// Start resets the sequencer and begins a new run. The first cell is
// emitted before Start returns.
func (s *Sequencer) Start(visited, path []int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.visited = clone(visited)
	s.path = clone(path)
	s.phase = s.phaseAt(0)
	if s.phase == PhaseDone {
		// nothing to play; let the first tick report completion
		s.phase = PhaseVisited
	}

	s.log.Debug("playback start", "visited", len(s.visited), "path", len(s.path), "epoch", s.epoch)
	s.opts.Status.SetStatus(StatusSearching)
	s.tickLocked()
}

// Tick performs one unit of progress and reports whether a cell was
// emitted. It is a no-op without an active, unpaused run.
func (s *Sequencer) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickLocked()
}

// Pause halts the tick chain without moving the cursor.
func (s *Sequencer) Pause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.runningLocked() || s.paused {
		return false
	}
	s.paused = true
	s.cancelLocked()
	s.log.Debug("playback paused", "cursor", s.cursor)
	s.opts.Status.SetStatus(StatusPaused)
	return true
}

// Resume restarts the chain from the current cursor, emitting immediately.
func (s *Sequencer) Resume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.paused {
		return false
	}
	s.paused = false
	s.log.Debug("playback resumed", "cursor", s.cursor)
	s.opts.Status.SetStatus(StatusSearching)
	s.tickLocked()
	return true
}

// Reset cancels the pending tick, zeroes counters, clears marks and returns
// to idle. Calling it twice is the same as calling it once.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Phase:        s.phase,
		Cursor:       s.cursor,
		Total:        len(s.visited) + len(s.path),
		Paused:       s.paused,
		VisitedCount: s.visitedCount,
		PathCount:    s.pathCount,
	}
}

func (s *Sequencer) Controls() Controls {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.runningLocked() {
		return Controls{CanSimulate: true}
	}
	return Controls{CanPause: !s.paused, CanContinue: s.paused}
}

// Wait blocks until the current run completes or ctx is done. A run
// abandoned by Reset never completes.
func (s *Sequencer) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sequencer) runningLocked() bool {
	return s.phase == PhaseVisited || s.phase == PhasePath
}

func (s *Sequencer) tickLocked() bool {
	if !s.runningLocked() || s.paused {
		return false
	}
	s.cancelLocked()

	total := len(s.visited) + len(s.path)
	if s.cursor >= total {
		s.finishLocked()
		return false
	}

	e := Emission{Step: s.cursor, Phase: s.phaseAt(s.cursor)}
	kind := MarkVisited
	if e.Phase == PhaseVisited {
		e.Cell = s.visited[s.cursor]
		s.visitedCount = s.cursor + 1
	} else {
		i := s.cursor - len(s.visited)
		e.Cell = s.path[i]
		s.pathCount = i + 1
		kind = MarkPath
	}
	e.VisitedCount, e.PathCount = s.visitedCount, s.pathCount

	if e.Cell != s.opts.Start && e.Cell != s.opts.End {
		e.Marked = true
		s.opts.Marker.Mark(e.Cell, kind)
	}
	s.cursor++
	for _, o := range s.observers {
		o.OnEmit(e)
	}

	if s.cursor >= total {
		s.finishLocked()
		return true
	}

	s.phase = s.phaseAt(s.cursor)
	s.scheduleLocked(s.intervalFor(s.phase))
	return true
}

// intervalFor is the delay before a tick that emits in phase p, so the
// first path cell already waits the path interval.
func (s *Sequencer) intervalFor(p Phase) time.Duration {
	if p == PhasePath {
		return s.opts.PathInterval
	}
	return s.opts.VisitedInterval
}

func (s *Sequencer) phaseAt(cursor int) Phase {
	switch {
	case cursor < len(s.visited):
		return PhaseVisited
	case cursor < len(s.visited)+len(s.path):
		return PhasePath
	default:
		return PhaseDone
	}
}

func (s *Sequencer) scheduleLocked(d time.Duration) {
	s.epoch++
	epoch := s.epoch
	s.pending = s.opts.Scheduler.AfterFunc(d, func() { s.fire(epoch) })
}

func (s *Sequencer) fire(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return
	}
	s.pending = nil
	s.tickLocked()
}

func (s *Sequencer) cancelLocked() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.epoch++
}

func (s *Sequencer) finishLocked() {
	s.phase = PhaseDone
	found := len(s.path) > 0
	s.log.Debug("playback done", "visited", s.visitedCount, "path", s.pathCount, "found", found)

	if found {
		s.opts.Status.SetStatus(StatusFound)
	} else {
		s.opts.Status.SetStatus(StatusUnreachable)
	}
	if s.opts.OnDone != nil {
		s.opts.OnDone(Summary{VisitedCount: s.visitedCount, PathCount: s.pathCount, Found: found})
	}
	close(s.done)
}

func (s *Sequencer) resetLocked() {
	s.cancelLocked()
	s.visited, s.path = nil, nil
	s.cursor = 0
	s.phase = PhaseIdle
	s.paused = false
	s.visitedCount, s.pathCount = 0, 0
	s.done = make(chan struct{})
	s.opts.Marker.ClearMarks()
	for _, o := range s.observers {
		o.OnReset()
	}
}

func clone(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	return out
}
