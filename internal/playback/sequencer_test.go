package playback

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const (
	startCell = 20
	endCell   = 379
)

var _ = Describe("Sequencer", func() {
	var (
		clock   *manualClock
		rec     *recorder
		seq     *Sequencer
		summary []Summary
	)

	BeforeEach(func() {
		clock = &manualClock{}
		rec = &recorder{}
		summary = nil
		seq = New(Options{
			Start:     startCell,
			End:       endCell,
			Scheduler: clock,
			Marker:    rec,
			Status:    rec,
			OnDone:    func(s Summary) { summary = append(summary, s) },
		})
		seq.AddObserver(rec)
	})

	It("starts idle with only simulate enabled", func() {
		Expect(seq.State().Phase).To(Equal(PhaseIdle))
		Expect(seq.Controls()).To(Equal(Controls{CanSimulate: true}))
	})

	It("ignores ticks without an active run", func() {
		Expect(seq.Tick()).To(BeFalse())
		Expect(rec.Cells()).To(BeEmpty())
		Expect(clock.Pending()).To(Equal(0))
	})

	It("emits the first visited cell synchronously on start", func() {
		seq.Start([]int{1, 2}, []int{3})

		Expect(rec.Cells()).To(Equal([]int{1}))
		Expect(seq.State().Cursor).To(Equal(1))
		Expect(seq.State().Phase).To(Equal(PhaseVisited))
		Expect(rec.LastStatus()).To(Equal(StatusSearching))
		Expect(clock.Pending()).To(Equal(1))
		Expect(clock.NextDelay()).To(Equal(DefaultVisitedInterval))
	})

	Context("phase boundary", func() {
		It("reaches done after three ticks in array order", func() {
			seq.Start([]int{10, 11}, []int{12})
			Expect(seq.Tick()).To(BeTrue())
			Expect(seq.Tick()).To(BeTrue())

			st := seq.State()
			Expect(st.Cursor).To(Equal(3))
			Expect(st.Phase).To(Equal(PhaseDone))
			Expect(rec.Cells()).To(Equal([]int{10, 11, 12}))
			Expect(rec.Marks()).To(Equal([]mark{{10, MarkVisited}, {11, MarkVisited}, {12, MarkPath}}))
			Expect(clock.Pending()).To(Equal(0))
			Expect(seq.Tick()).To(BeFalse())
		})

		It("waits the path interval before the first path cell", func() {
			seq.Start([]int{10, 11}, []int{12, 13})

			clock.Advance(DefaultVisitedInterval)
			Expect(rec.Cells()).To(Equal([]int{10, 11}))
			Expect(seq.State().Phase).To(Equal(PhasePath))
			Expect(clock.NextDelay()).To(Equal(DefaultPathInterval))

			clock.Advance(DefaultPathInterval - time.Millisecond)
			Expect(rec.Cells()).To(HaveLen(2))

			clock.Advance(time.Millisecond)
			Expect(rec.Cells()).To(Equal([]int{10, 11, 12}))
			Expect(clock.NextDelay()).To(Equal(DefaultPathInterval))

			clock.Advance(DefaultPathInterval)
			Expect(rec.Cells()).To(Equal([]int{10, 11, 12, 13}))
			Expect(seq.State().Phase).To(Equal(PhaseDone))
		})

		It("uses configured intervals", func() {
			seq = New(Options{Scheduler: clock, Marker: rec, VisitedInterval: 5 * time.Millisecond, PathInterval: 9 * time.Millisecond})
			seq.Start([]int{1}, []int{2})
			Expect(clock.NextDelay()).To(Equal(9 * time.Millisecond))
		})
	})

	It("reports found with path and visited counts", func() {
		seq.Start([]int{1, 2, 3}, []int{1, 3})
		clock.Advance(time.Second)

		st := seq.State()
		Expect(st.VisitedCount).To(Equal(3))
		Expect(st.PathCount).To(Equal(2))
		Expect(rec.LastStatus()).To(Equal(StatusFound))
		Expect(summary).To(Equal([]Summary{{VisitedCount: 3, PathCount: 2, Found: true}}))
		Expect(seq.Controls()).To(Equal(Controls{CanSimulate: true}))
	})

	Context("pause and resume", func() {
		It("resumes from the paused cursor without skips or duplicates", func() {
			seq.Start([]int{5, 6, 7}, nil)
			Expect(rec.Cells()).To(Equal([]int{5}))

			Expect(seq.Pause()).To(BeTrue())
			Expect(clock.Pending()).To(Equal(0))
			Expect(rec.LastStatus()).To(Equal(StatusPaused))
			Expect(seq.Controls()).To(Equal(Controls{CanContinue: true}))

			clock.Advance(time.Hour)
			Expect(rec.Cells()).To(Equal([]int{5}))
			Expect(seq.State().Cursor).To(Equal(1))
			Expect(seq.Tick()).To(BeFalse())

			Expect(seq.Resume()).To(BeTrue())
			Expect(rec.Cells()).To(Equal([]int{5, 6}))
			Expect(seq.Controls()).To(Equal(Controls{CanPause: true}))

			clock.Advance(DefaultVisitedInterval)
			Expect(rec.Cells()).To(Equal([]int{5, 6, 7}))
			Expect(seq.State().Phase).To(Equal(PhaseDone))
		})

		It("does not pause an idle or finished sequencer", func() {
			Expect(seq.Pause()).To(BeFalse())
			seq.Start([]int{1}, nil)
			Expect(seq.State().Phase).To(Equal(PhaseDone))
			Expect(seq.Pause()).To(BeFalse())
			Expect(seq.Resume()).To(BeFalse())
		})

		It("ignores a second pause", func() {
			seq.Start([]int{1, 2}, nil)
			Expect(seq.Pause()).To(BeTrue())
			Expect(seq.Pause()).To(BeFalse())
		})
	})

	Context("unreachable target", func() {
		It("finishes right after the visited phase with zero path count", func() {
			seq.Start([]int{1, 2}, []int{})
			clock.Advance(DefaultVisitedInterval)

			st := seq.State()
			Expect(st.Phase).To(Equal(PhaseDone))
			Expect(st.PathCount).To(Equal(0))
			Expect(rec.LastStatus()).To(Equal(StatusUnreachable))
			Expect(summary).To(Equal([]Summary{{VisitedCount: 2, Found: false}}))
			Expect(clock.Pending()).To(Equal(0))
		})

		It("completes an empty run immediately", func() {
			seq.Start(nil, nil)
			Expect(seq.State().Phase).To(Equal(PhaseDone))
			Expect(summary).To(HaveLen(1))
			Expect(seq.Wait(context.Background())).To(Succeed())
		})
	})

	Context("start and end suppression", func() {
		It("counts but never marks the endpoints", func() {
			seq.Start([]int{startCell, 21, endCell}, []int{startCell, 21, endCell})
			clock.Advance(time.Second)

			Expect(rec.Marks()).To(Equal([]mark{{21, MarkVisited}, {21, MarkPath}}))
			st := seq.State()
			Expect(st.VisitedCount).To(Equal(3))
			Expect(st.PathCount).To(Equal(3))

			Expect(rec.emissions[0].Marked).To(BeFalse())
			Expect(rec.emissions[1].Marked).To(BeTrue())
			Expect(rec.emissions[0].VisitedCount).To(Equal(1))
		})

		It("follows endpoint changes", func() {
			seq.SetEndpoints(1, 2)
			seq.Start([]int{1, 2, startCell}, nil)
			clock.Advance(time.Second)
			Expect(rec.Marks()).To(Equal([]mark{{startCell, MarkVisited}}))
		})
	})

	Context("reset", func() {
		It("is idempotent", func() {
			seq.Start([]int{1, 2, 3}, []int{3})
			clock.Advance(DefaultVisitedInterval)

			seq.Reset()
			once := seq.State()
			seq.Reset()
			Expect(seq.State()).To(Equal(once))
			Expect(once).To(Equal(State{Phase: PhaseIdle}))
			Expect(rec.Marks()).To(BeEmpty())
			Expect(clock.Pending()).To(Equal(0))
		})

		It("stops the chain", func() {
			seq.Start([]int{1, 2, 3}, nil)
			seq.Reset()
			clock.Advance(time.Second)
			Expect(rec.Cells()).To(BeEmpty())
			Expect(summary).To(BeEmpty())
		})
	})

	Context("concurrent runs", func() {
		It("keeps only the second run's chain alive", func() {
			seq.Start([]int{1, 2, 3, 4}, []int{4})
			clock.Advance(DefaultVisitedInterval)
			Expect(rec.Cells()).To(Equal([]int{1, 2}))

			seq.Start([]int{10, 11}, []int{11})
			Expect(clock.Pending()).To(Equal(1))
			clock.Advance(time.Second)

			Expect(rec.Cells()).To(Equal([]int{10, 11, 11}))
			Expect(rec.Marks()).To(Equal([]mark{{10, MarkVisited}, {11, MarkVisited}, {11, MarkPath}}))
			Expect(summary).To(HaveLen(1))
		})

		It("ignores a stale callback that escaped cancellation", func() {
			seq.Start([]int{1, 2, 3}, nil)
			stale := clock.timers[len(clock.timers)-1]

			seq.Start([]int{7, 8}, nil)
			stale.f()

			Expect(rec.Cells()).To(Equal([]int{7}))
			Expect(seq.State().Cursor).To(Equal(1))
		})

		It("ignores a callback that fired while paused", func() {
			seq.Start([]int{1, 2, 3}, nil)
			stale := clock.timers[len(clock.timers)-1]

			seq.Pause()
			seq.Resume()
			stale.f()

			Expect(rec.Cells()).To(Equal([]int{1, 2}))
		})
	})
})

var _ = Describe("Sequencer with wall-clock timers", func() {
	It("plays a full run", func() {
		rec := &recorder{}
		seq := New(Options{
			Start:           -1,
			End:             -1,
			Marker:          rec,
			VisitedInterval: time.Millisecond,
			PathInterval:    time.Millisecond,
		})
		seq.AddObserver(rec)

		seq.Start([]int{1, 2, 3}, []int{4})
		first := make(chan struct{})
		go func() {
			defer close(first)
			seq.Start([]int{5, 6, 7, 8}, []int{9})
		}()
		<-first

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Expect(seq.Wait(ctx)).To(Succeed())
		Expect(rec.Cells()).To(Equal([]int{5, 6, 7, 8, 9}))
	})
})
