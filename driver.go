package detest

import (
	"fmt"
	"sort"
)

// World is the interpreter's mutable state, owned by the driver for the
// duration of a single Run call (spec §3). Nothing outside this package
// mutates it, and it is dropped when Run returns.
type World struct {
	ids       idSource
	threads   map[ThreadId]*Thread
	order     []ThreadId
	cvars     map[CVarId]*CVar
	crefs     map[CRefId]*CRef
	substrate Substrate
	step      int
	traceLog  Trace
}

func newWorld(substrate Substrate) *World {
	return &World{
		threads:   make(map[ThreadId]*Thread),
		cvars:     make(map[CVarId]*CVar),
		crefs:     make(map[CRefId]*CRef),
		substrate: substrate,
	}
}

func (w *World) newThreadRecord(prog Action) *Thread {
	t := newThread(w.ids.freshThread(), prog)
	w.threads[t.ID] = t
	w.order = append(w.order, t.ID)
	return t
}

// Run interprets prog to completion under the control of scheduler,
// returning its result (ok reports whether it reached Stop), the
// scheduler's final carried state, and the complete Trace (spec §6).
func Run[S any](scheduler Scheduler[S], initial S, prog Program, opts ...RunOption) (value Value, ok bool, state S, tr Trace, err error) {
	cfg := resolveRunOptions(opts)

	w := newWorld(cfg.substrate)
	ctx := RunContext{Substrate: cfg.substrate, SafeIO: cfg.safeIO}
	root := prog(ctx)(func(v Value) Action { return &StopAction{Result: v} })
	w.newThreadRecord(root)

	state = initial
	var last *Decision

	for {
		runnable := w.computeRunnable()
		if len(runnable) == 0 {
			f := w.terminalFailure()
			if f == nil {
				t0 := w.threads[0]
				logTerminal(cfg, t0, nil)
				return t0.Result, true, state, w.trace(), nil
			}
			logTerminal(cfg, w.threads[0], f)
			return nil, false, state, w.trace(), f
		}

		sortRunnable(runnable)
		tid, nextState := scheduler.Schedule(state, last, runnable)
		state = nextState

		if !containsThread(runnable, tid) {
			f := &Failure{Kind: InternalError, Cause: fmt.Errorf("scheduler chose thread %d, not a member of the runnable set", tid)}
			logTerminal(cfg, nil, f)
			return nil, false, state, w.trace(), f
		}

		decision := w.classifyDecision(last, tid)
		threadAction, stepErr := w.safeExecStep(tid)
		if stepErr != nil {
			logTerminal(cfg, w.threads[tid], stepErr)
			return nil, false, state, w.trace(), stepErr
		}
		entry := TraceEntry{
			Step:         w.step_no(),
			Decision:     decision,
			Alternatives: otherThreads(runnable, tid),
			Action:       threadAction,
		}
		w.appendTrace(entry)
		logStep(cfg, entry)

		last = &Decision{Kind: decision.Kind, Thread: tid}
		w.step++
	}
}

// RunResult is the simpler variant of Run that spec §6.2 calls for: it
// returns only the Option<Value>, as (value, ok).
func RunResult[S any](scheduler Scheduler[S], initial S, prog Program, opts ...RunOption) (Value, bool, error) {
	v, ok, _, _, err := Run(scheduler, initial, prog, opts...)
	return v, ok, err
}

func (w *World) step_no() int { return w.step }

func (w *World) trace() Trace { return w.traceLog }

func (w *World) appendTrace(e TraceEntry) { w.traceLog = append(w.traceLog, e) }

// classifyDecision implements spec §4.G step 2's Start/Continue/SwitchTo
// split: Start is emitted whenever the previously-run thread is no longer
// Runnable (including the very first step, where there is no previous
// thread), since in that case the scheduler had to pick some thread other
// than the previous one, and did not preempt it. SwitchTo is reserved for a genuine
// preemption: a different thread chosen while the previous one could still
// have continued.
func (w *World) classifyDecision(last *Decision, tid ThreadId) Decision {
	switch {
	case last == nil:
		return Decision{Kind: Start, Thread: tid}
	case last.Thread == tid:
		return Decision{Kind: Continue, Thread: tid}
	case w.threads[last.Thread].Status != Runnable:
		return Decision{Kind: Start, Thread: tid}
	default:
		return Decision{Kind: SwitchTo, Thread: tid}
	}
}

func containsThread(rs []RunnableThread, tid ThreadId) bool {
	for _, r := range rs {
		if r.Thread == tid {
			return true
		}
	}
	return false
}

func otherThreads(rs []RunnableThread, tid ThreadId) []RunnableThread {
	out := make([]RunnableThread, 0, len(rs))
	for _, r := range rs {
		if r.Thread != tid {
			out = append(out, r)
		}
	}
	return out
}

// computeRunnable builds the runnable set spec §4.G step 1 describes,
// first re-evaluating every ThrowTo-blocked sender against its target's
// current deliverability.
func (w *World) computeRunnable() []RunnableThread {
	w.recomputeThrowToBlocks()

	ids := make([]ThreadId, len(w.order))
	copy(ids, w.order)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []RunnableThread
	for _, id := range ids {
		t := w.threads[id]
		if t.Status == Runnable {
			out = append(out, RunnableThread{Thread: id, Lookahead: lookahead(t)})
		}
	}
	return out
}

func (w *World) recomputeThrowToBlocks() {
	for _, id := range w.order {
		t := w.threads[id]
		if t.Status != Blocked || t.BlockedOn.Kind != OnThrowToOf {
			continue
		}
		target := w.threads[t.BlockedOn.On.(ThreadId)]
		if target.Status == Terminated || target.interruptible() {
			t.Status = Runnable
			t.BlockedOn = BlockReason{}
		}
	}
}

// terminalFailure classifies why no thread is runnable, or returns nil if
// every thread has terminated cleanly (spec §4.G step 1).
func (w *World) terminalFailure() *Failure {
	anyBlocked := false
	allRetry := true
	for _, id := range w.order {
		t := w.threads[id]
		if t.Status == Blocked {
			anyBlocked = true
			if t.BlockedOn.Kind != OnRetry {
				allRetry = false
			}
		}
	}
	if !anyBlocked {
		t0 := w.threads[0]
		if t0.Status == Terminated && t0.Cause == Killed {
			return &Failure{Kind: UncaughtException, Cause: fmt.Errorf("thread 0 killed: %v", t0.KillReason.Value)}
		}
		return nil
	}
	if allRetry {
		return &Failure{Kind: STMDeadlock}
	}
	return &Failure{Kind: Deadlock}
}
