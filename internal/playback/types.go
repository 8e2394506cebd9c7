package playback

import "time"

// Reference tick intervals.
const (
	DefaultVisitedInterval = 20 * time.Millisecond
	DefaultPathInterval    = 50 * time.Millisecond
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseVisited
	PhasePath
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseVisited:
		return "visited"
	case PhasePath:
		return "path"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// MarkKind is the visual mark applied to an emitted cell.
type MarkKind int

const (
	MarkNone MarkKind = iota
	MarkVisited
	MarkPath
)

func (k MarkKind) String() string {
	switch k {
	case MarkVisited:
		return "visited"
	case MarkPath:
		return "path"
	default:
		return "none"
	}
}

// Status is the text reported to the control surface.
type Status int

const (
	StatusIdle Status = iota
	StatusSearching
	StatusPaused
	StatusFound
	StatusUnreachable
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSearching:
		return "Searching..."
	case StatusPaused:
		return "Paused"
	case StatusFound:
		return "Target Found!"
	case StatusUnreachable:
		return "No Route Found"
	case StatusError:
		return "API Error!"
	default:
		return "Ready"
	}
}

// Marker is the rendering capability. Implementations are called with the
// sequencer lock held and must not call back into the sequencer.
type Marker interface {
	Mark(cell int, kind MarkKind)
	ClearMarks()
}

type StatusSink interface {
	SetStatus(Status)
}

// Emission describes one tick's output. Marked is false for start and end
// cells, which are counted but never painted.
type Emission struct {
	Step         int
	Phase        Phase
	Cell         int
	Marked       bool
	VisitedCount int
	PathCount    int
}

// Observer receives every emission and every reset, in order.
type Observer interface {
	OnEmit(e Emission)
	OnReset()
}

// State is a point-in-time copy of the sequencer.
type State struct {
	Phase        Phase
	Cursor       int
	Total        int
	Paused       bool
	VisitedCount int
	PathCount    int
}

// Controls mirrors which control-surface triggers are enabled.
type Controls struct {
	CanSimulate bool
	CanPause    bool
	CanContinue bool
}

// Summary is handed to OnDone when a run completes.
type Summary struct {
	VisitedCount int
	PathCount    int
	Found        bool
}

// Scheduler runs f once after d. The real one is time.AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler schedules on wall-clock timers.
func RealScheduler() Scheduler { return realScheduler{} }

type nopMarker struct{}

func (nopMarker) Mark(int, MarkKind) {}
func (nopMarker) ClearMarks()        {}

type nopStatus struct{}

func (nopStatus) SetStatus(Status) {}
