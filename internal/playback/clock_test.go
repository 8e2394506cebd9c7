package playback

import (
	"sync"
	"time"
)

// manualClock is a Scheduler whose time only moves on Advance.
type manualClock struct {
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &manualTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance fires due timers in deadline order, including timers scheduled
// by the callbacks themselves.
func (c *manualClock) Advance(d time.Duration) {
	target := c.now + d
	for {
		var next *manualTimer
		for _, t := range c.timers {
			if t.fired || t.stopped || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			break
		}
		c.now = next.at
		next.fired = true
		next.f()
	}
	c.now = target
}

func (c *manualClock) Pending() int {
	n := 0
	for _, t := range c.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

// NextDelay is the time until the earliest pending timer, or -1.
func (c *manualClock) NextDelay() time.Duration {
	best := time.Duration(-1)
	for _, t := range c.timers {
		if t.fired || t.stopped {
			continue
		}
		if best < 0 || t.at-c.now < best {
			best = t.at - c.now
		}
	}
	return best
}

type mark struct {
	Cell int
	Kind MarkKind
}

// recorder implements Marker, StatusSink and Observer.
type recorder struct {
	mu        sync.Mutex
	marks     []mark
	clears    int
	statuses  []Status
	emissions []Emission
	resets    int
}

func (r *recorder) Mark(cell int, kind MarkKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marks = append(r.marks, mark{cell, kind})
}

func (r *recorder) ClearMarks() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marks = nil
	r.clears++
}

func (r *recorder) SetStatus(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *recorder) OnEmit(e Emission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emissions = append(r.emissions, e)
}

func (r *recorder) OnReset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emissions = nil
	r.resets++
}

func (r *recorder) Cells() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, 0, len(r.emissions))
	for _, e := range r.emissions {
		out = append(out, e.Cell)
	}
	return out
}

func (r *recorder) Marks() []mark {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]mark, len(r.marks))
	copy(out, r.marks)
	return out
}

func (r *recorder) LastStatus() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statuses) == 0 {
		return StatusIdle
	}
	return r.statuses[len(r.statuses)-1]
}
