package detest

import (
	"fmt"
	"sort"
)

// safeExecStep wraps execStep, converting a FailureInNoTest panic raised
// deep inside a NoTestAction's opaque body into a returned *Failure instead
// of propagating it out of Run.
func (w *World) safeExecStep(tid ThreadId) (ta ThreadAction, err *Failure) {
	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(*Failure); ok {
				err = f
				return
			}
			panic(r)
		}
	}()
	ta = w.execStep(tid)
	return ta, nil
}

// execStep executes exactly one action belonging to thread tid (spec §4.G
// step 3), mutating World state and returning the ThreadAction recorded for
// the trace. tid is guaranteed Runnable on entry.
func (w *World) execStep(tid ThreadId) ThreadAction {
	t := w.threads[tid]

	if t.PendingException != nil {
		exc := *t.PendingException
		t.PendingException = nil
		w.throwIn(t, exc)
		return ThreadAction{Kind: ActThrow}
	}

	return w.execAction(t, t.Continuation)
}

// execAction dispatches a over t, advancing t.Continuation (or terminating
// t) and returning the ThreadAction to record.
func (w *World) execAction(t *Thread, a Action) ThreadAction {
	switch act := a.(type) {
	case *ForkAction:
		restore := Restore{ThreadID: t.ID, PriorMask: t.Mask, ScopeMask: t.Mask}
		child := w.newThreadRecord(act.Body(restore))
		t.Continuation = act.K(child.ID)
		return ThreadAction{Kind: ActFork, Resource: child.ID}

	case *MyThreadIdAction:
		t.Continuation = act.K(t.ID)
		return ThreadAction{Kind: ActMyThreadId}

	case *PutAction:
		cv := w.cvars[act.Var]
		woken, blocked := cv.put(t.ID, act.Value)
		if blocked {
			t.Status = Blocked
			t.BlockedOn = BlockReason{Kind: OnPutOf, On: act.Var}
			return ThreadAction{Kind: ActPut, Resource: act.Var}
		}
		w.wake(woken)
		t.Continuation = act.K()
		return ThreadAction{Kind: ActPut, Resource: act.Var, Woken: woken}

	case *TryPutAction:
		cv := w.cvars[act.Var]
		woken, succeeded := cv.tryPut(t.ID, act.Value)
		if succeeded {
			w.wake(woken)
		}
		t.Continuation = act.K(succeeded)
		return ThreadAction{Kind: ActTryPut, Resource: act.Var, Woken: woken, Success: succeeded}

	case *ReadAction:
		cv := w.cvars[act.Var]
		v, blocked := cv.read(t.ID)
		if blocked {
			t.Status = Blocked
			t.BlockedOn = BlockReason{Kind: OnReadOf, On: act.Var}
			return ThreadAction{Kind: ActRead, Resource: act.Var}
		}
		t.Continuation = act.K(v)
		return ThreadAction{Kind: ActRead, Resource: act.Var}

	case *TakeAction:
		cv := w.cvars[act.Var]
		v, woken, blocked := cv.take(t.ID)
		if blocked {
			t.Status = Blocked
			t.BlockedOn = BlockReason{Kind: OnTakeOf, On: act.Var}
			return ThreadAction{Kind: ActTake, Resource: act.Var}
		}
		w.wake(woken)
		t.Continuation = act.K(v)
		return ThreadAction{Kind: ActTake, Resource: act.Var, Woken: woken}

	case *TryTakeAction:
		cv := w.cvars[act.Var]
		v, woken, ok := cv.tryTake(t.ID)
		if ok {
			w.wake(woken)
		}
		t.Continuation = act.K(v, ok)
		return ThreadAction{Kind: ActTryTake, Resource: act.Var, Woken: woken, Success: ok}

	case *ReadRefAction:
		ref := w.crefs[act.Ref]
		t.Continuation = act.K(ref.readRef())
		return ThreadAction{Kind: ActReadRef, Resource: act.Ref}

	case *ModRefAction:
		ref := w.crefs[act.Ref]
		result := ref.modRef(act.F)
		t.Continuation = act.K(result)
		return ThreadAction{Kind: ActModRef, Resource: act.Ref}

	case *NewCVarAction:
		id := w.ids.freshCVar()
		w.cvars[id] = newCVar(id)
		t.Continuation = act.K(id)
		return ThreadAction{Kind: ActNewCVar, Resource: id}

	case *NewRefAction:
		id := w.ids.freshCRef()
		w.crefs[id] = newCRef(id, w.substrate.newCell(act.Initial))
		t.Continuation = act.K(id)
		return ThreadAction{Kind: ActNewRef, Resource: id}

	case *LiftAction:
		t.Continuation = w.substrate.lift(act.Effect)
		return ThreadAction{Kind: ActLift}

	case *AtomAction:
		result := act.Tx()
		if result.Retry {
			t.Status = Blocked
			t.BlockedOn = BlockReason{Kind: OnRetry}
			return ThreadAction{Kind: ActAtom, Success: false}
		}
		t.Continuation = act.K(result.Value)
		return ThreadAction{Kind: ActAtom, Success: true}

	case *ThrowAction:
		w.throwIn(t, act.Exc)
		return ThreadAction{Kind: ActThrow}

	case *ThrowToAction:
		return w.execThrowTo(t, act)

	case *CatchingAction:
		t.handlerStack = append(t.handlerStack, handlerFrame{handler: act.Handler, mask: t.Mask})
		t.Continuation = act.Body
		return ThreadAction{Kind: ActCatching}

	case *PopCatchingAction:
		if len(t.handlerStack) > 0 {
			t.handlerStack = t.handlerStack[:len(t.handlerStack)-1]
		}
		t.Continuation = act.Then()
		return ThreadAction{Kind: ActPopCatching}

	case *MaskingAction:
		prior := t.Mask
		t.Mask = act.NewState
		restore := Restore{ThreadID: t.ID, PriorMask: prior, ScopeMask: act.NewState}
		t.Continuation = act.Body(restore)
		return ThreadAction{Kind: ActMasking}

	case *ResetMaskAction:
		t.Mask = act.Restore
		t.Continuation = act.Then()
		return ThreadAction{Kind: ActResetMask}

	case *NoTestAction:
		v, err := w.runOpaque(t, act.Body)
		if err != nil {
			panic(&Failure{Kind: FailureInNoTest, Cause: err})
		}
		t.Continuation = act.Then(v)
		return ThreadAction{Kind: ActNoTest}

	case *KnowsAboutAction:
		t.Acquainted[act.ID] = struct{}{}
		t.Continuation = act.K()
		return ThreadAction{Kind: ActKnowsAbout}

	case *ForgetsAction:
		delete(t.Acquainted, act.ID)
		t.Continuation = act.K()
		return ThreadAction{Kind: ActForgets}

	case *AllKnownAction:
		t.Continuation = act.K(w.allKnown())
		return ThreadAction{Kind: ActAllKnown}

	case *StopAction:
		t.Status = Terminated
		t.Cause = StoppedOK
		t.Result = act.Result
		t.Continuation = nil
		return ThreadAction{Kind: ActStop}

	default:
		panic(&Failure{Kind: InternalError, Cause: errUnknownAction})
	}
}

// wake moves every thread id in ids to Runnable. It is used by CVar
// operations that fill/empty a previously blocked-on slot.
func (w *World) wake(ids []ThreadId) {
	for _, id := range ids {
		t := w.threads[id]
		if t.Status == Blocked {
			t.Status = Runnable
			t.BlockedOn = BlockReason{}
		}
	}
}

// throwIn runs spec §4.E's Throw: it pops handler frames until one matches,
// or kills the thread if the stack empties.
func (w *World) throwIn(t *Thread, exc Exception) {
	for len(t.handlerStack) > 0 {
		frame := t.handlerStack[len(t.handlerStack)-1]
		t.handlerStack = t.handlerStack[:len(t.handlerStack)-1]
		if next, matched := frame.handler(exc); matched {
			t.Mask = frame.mask
			t.Continuation = next
			return
		}
	}
	t.Status = Terminated
	t.Cause = Killed
	t.KillReason = exc
	t.Continuation = nil
}

// execThrowTo implements spec §4.E's ThrowTo: deliver now if the target is
// terminated or currently interruptible, otherwise block the sender.
func (w *World) execThrowTo(t *Thread, act *ThrowToAction) ThreadAction {
	target := w.threads[act.Target]
	if target.Status == Terminated {
		t.Continuation = act.K()
		return ThreadAction{Kind: ActThrowTo, Resource: act.Target, Success: true}
	}
	if !target.interruptible() {
		t.Status = Blocked
		t.BlockedOn = BlockReason{Kind: OnThrowToOf, On: act.Target}
		return ThreadAction{Kind: ActThrowTo, Resource: act.Target, Success: false}
	}

	if target.Status == Blocked {
		w.unregisterFromCVar(target.ID, target.BlockedOn)
	}
	target.PendingException = &act.Exc
	target.Status = Runnable
	target.BlockedOn = BlockReason{}

	t.Continuation = act.K()
	return ThreadAction{Kind: ActThrowTo, Resource: act.Target, Success: true, Woken: []ThreadId{target.ID}}
}

// unregisterFromCVar removes a thread that is about to be interrupted from
// the blocked-waiter lists of the CVar it was blocked on.
func (w *World) unregisterFromCVar(tid ThreadId, reason BlockReason) {
	id, ok := reason.On.(CVarId)
	if !ok {
		return
	}
	cv, ok := w.cvars[id]
	if !ok {
		return
	}
	switch reason.Kind {
	case OnTakeOf:
		cv.BlockedTakers = removeID(cv.BlockedTakers, tid)
	case OnReadOf:
		cv.BlockedReaders = removeID(cv.BlockedReaders, tid)
	case OnPutOf:
		cv.BlockedPutters = removePutWaiter(cv.BlockedPutters, tid)
	}
}

// allKnown aggregates every thread's declared acquaintance set. The result
// is sorted by its fmt.Sprint form so that AllKnown resolves identically
// across repeated runs with the same scheduler decisions, despite Go's
// randomized map iteration order.
func (w *World) allKnown() []any {
	seen := make(map[any]struct{})
	var out []any
	for _, id := range w.order {
		for k := range w.threads[id].Acquainted {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				out = append(out, k)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return fmt.Sprint(out[i]) < fmt.Sprint(out[j]) })
	return out
}

// runOpaque drives act to completion without consulting the scheduler,
// as a single step, on behalf of a NoTestAction; it is only ever invoked
// with actions built from that same thread's own Body closures, so it never
// needs to consider any other thread. A blocking primitive or a Throw
// reaching the top of the handler stack both fail the opaque step.
func (w *World) runOpaque(t *Thread, a Action) (v Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(*Failure); ok {
				err = f
				return
			}
			panic(r)
		}
	}()

	cur := a
	for {
		if stop, ok := cur.(noTestStop); ok {
			return stop.value, nil
		}
		before := t.Status
		ta := w.execAction(t, cur)
		if t.Status == Blocked {
			t.Status = before
			return nil, errBlockedInNoTest
		}
		if t.Status == Terminated {
			return nil, errBlockedInNoTest
		}
		_ = ta
		cur = t.Continuation
	}
}
