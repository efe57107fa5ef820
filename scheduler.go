package detest

import "sort"

// DecisionKind classifies a scheduler's choice against the previous step's
// choice, per spec §4.G step 2.
type DecisionKind int

const (
	// Start is recorded for the very first step, and whenever the previous
	// thread is now blocked or terminated.
	Start DecisionKind = iota
	// Continue is recorded when the scheduler picks the same thread that
	// ran last step.
	Continue
	// SwitchTo is recorded when the scheduler picks a different, still
	// runnable, thread while the previous one could have continued.
	SwitchTo
)

func (d DecisionKind) String() string {
	switch d {
	case Start:
		return "Start"
	case Continue:
		return "Continue"
	case SwitchTo:
		return "SwitchTo"
	default:
		return "Unknown"
	}
}

// Decision is a labelled scheduler choice: which thread, and how that
// choice relates to the previous one.
type Decision struct {
	Kind   DecisionKind
	Thread ThreadId
}

// RunnableThread is one candidate the scheduler may choose, along with a
// one-step lookahead at what it would do if chosen.
type RunnableThread struct {
	Thread    ThreadId
	Lookahead Lookahead
}

// Scheduler is a pluggable, pure function from the runnable set and the
// previous step's decision to the next thread to run (spec §4.F). It is the
// only source of non-determinism in the interpreter: the driver invokes it
// once per step and requires the returned ThreadId to be a member of
// runnable, or the run aborts with InternalError.
//
// S is the scheduler's own carried state, threaded through by the driver and
// returned unmodified to the caller at the end of Run.
type Scheduler[S any] interface {
	Schedule(state S, last *Decision, runnable []RunnableThread) (ThreadId, S)
}

// SchedulerFunc adapts a plain function to Scheduler, mirroring the
// function-adapter idiom used throughout this codebase's host-effect and
// option types.
type SchedulerFunc[S any] func(state S, last *Decision, runnable []RunnableThread) (ThreadId, S)

func (f SchedulerFunc[S]) Schedule(state S, last *Decision, runnable []RunnableThread) (ThreadId, S) {
	return f(state, last, runnable)
}

// RoundRobin always picks the runnable thread with the smallest ThreadId.
// It is the scheduler spec §8's scenarios S1–S6 are defined against
// ("the scheduler 'always pick the least ThreadId'").
func RoundRobin() Scheduler[struct{}] {
	return SchedulerFunc[struct{}](func(_ struct{}, _ *Decision, runnable []RunnableThread) (ThreadId, struct{}) {
		best := runnable[0].Thread
		for _, r := range runnable[1:] {
			if r.Thread < best {
				best = r.Thread
			}
		}
		return best, struct{}{}
	})
}

// Deterministic replays a fixed sequence of thread ids, falling back to
// RoundRobin once the sequence is exhausted. It is a reference
// implementation of the kind of scheduler a preemption-bounded search layer
// would construct on top of this core, not a replacement for that layer.
func Deterministic(sequence []ThreadId) Scheduler[int] {
	rr := RoundRobin()
	return SchedulerFunc[int](func(i int, last *Decision, runnable []RunnableThread) (ThreadId, int) {
		if i < len(sequence) {
			want := sequence[i]
			for _, r := range runnable {
				if r.Thread == want {
					return want, i + 1
				}
			}
		}
		tid, _ := rr.Schedule(struct{}{}, last, runnable)
		return tid, i + 1
	})
}

// Weighted picks the first thread in priority order that is currently
// runnable, falling back to RoundRobin when none of them are. It models the
// kind of fixed-priority preference a preemption-bounding search would
// supply between re-runs.
func Weighted(priority []ThreadId) Scheduler[struct{}] {
	rr := RoundRobin()
	return SchedulerFunc[struct{}](func(s struct{}, last *Decision, runnable []RunnableThread) (ThreadId, struct{}) {
		set := make(map[ThreadId]bool, len(runnable))
		for _, r := range runnable {
			set[r.Thread] = true
		}
		for _, tid := range priority {
			if set[tid] {
				return tid, struct{}{}
			}
		}
		return rr.Schedule(s, last, runnable)
	})
}

// sortRunnable is a small helper used by the driver to present runnable
// threads to the scheduler in a stable, ascending ThreadId order.
func sortRunnable(rs []RunnableThread) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].Thread < rs[j].Thread })
}
