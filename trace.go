package detest

// ThreadAction records what a thread actually did in one driver step. It is
// the executed counterpart of Lookahead, which previews it one step ahead
// without executing anything.
type ThreadAction struct {
	Kind ActionKind

	// Resource identifies the CVar/CRef/Thread this step touched, when
	// applicable.
	Resource any

	// Woken lists every thread id unblocked as a side effect of this step
	// (Put/TryPut/Take/TryTake waking waiters; ThrowTo waking an
	// interruptible target).
	Woken []ThreadId

	// Success reports the outcome of a try-variant or a ThrowTo delivery.
	Success bool
}

func (a ThreadAction) String() string { return a.Kind.String() }

// Lookahead is the one-step-deep, side-effect-free preview of what a thread
// would do next (spec §4.H). Its Kind always matches the ThreadAction.Kind
// eventually recorded for that thread, modulo the resource-id refinement
// try/variant outcomes get once actually executed (spec §8 property 3).
type Lookahead struct {
	Kind     ActionKind
	Resource any
}

func (l Lookahead) String() string { return l.Kind.String() }

// TraceEntry is one row of a Trace: the scheduler's decision, the full set
// of alternatives available at that point (each with its lookahead), and
// the action the chosen thread actually performed.
type TraceEntry struct {
	Step         int
	Decision     Decision
	Alternatives []RunnableThread
	Action       ThreadAction
}

// Trace is the complete, ordered log the driver produces for one run.
type Trace []TraceEntry

// lookahead peeks at a thread's next Action without executing it or
// mutating World state, translating it to the Will* tag spec §4.H
// describes. It must stay purely a translation: no CVar/CRef/thread field is
// ever written here.
func lookahead(t *Thread) Lookahead {
	// A PendingException was only ever attached by execThrowTo after
	// confirming deliverability at send time; there is no "undelivery", so
	// it is consumed unconditionally on this thread's next step regardless
	// of the mask state it happens to be in by the time it actually runs.
	if t.PendingException != nil {
		return Lookahead{Kind: ActThrow}
	}
	switch a := t.Continuation.(type) {
	case *ForkAction:
		return Lookahead{Kind: ActFork}
	case *MyThreadIdAction:
		return Lookahead{Kind: ActMyThreadId}
	case *PutAction:
		return Lookahead{Kind: ActPut, Resource: a.Var}
	case *TryPutAction:
		return Lookahead{Kind: ActTryPut, Resource: a.Var}
	case *ReadAction:
		return Lookahead{Kind: ActRead, Resource: a.Var}
	case *TakeAction:
		return Lookahead{Kind: ActTake, Resource: a.Var}
	case *TryTakeAction:
		return Lookahead{Kind: ActTryTake, Resource: a.Var}
	case *ReadRefAction:
		return Lookahead{Kind: ActReadRef, Resource: a.Ref}
	case *ModRefAction:
		return Lookahead{Kind: ActModRef, Resource: a.Ref}
	case *NewCVarAction:
		return Lookahead{Kind: ActNewCVar}
	case *NewRefAction:
		return Lookahead{Kind: ActNewRef}
	case *LiftAction:
		return Lookahead{Kind: ActLift}
	case *AtomAction:
		return Lookahead{Kind: ActAtom}
	case *ThrowAction:
		return Lookahead{Kind: ActThrow}
	case *ThrowToAction:
		return Lookahead{Kind: ActThrowTo, Resource: a.Target}
	case *CatchingAction:
		return Lookahead{Kind: ActCatching}
	case *PopCatchingAction:
		return Lookahead{Kind: ActPopCatching}
	case *MaskingAction:
		return Lookahead{Kind: ActMasking}
	case *ResetMaskAction:
		return Lookahead{Kind: ActResetMask}
	case *NoTestAction:
		return Lookahead{Kind: ActNoTest}
	case *KnowsAboutAction:
		return Lookahead{Kind: ActKnowsAbout}
	case *ForgetsAction:
		return Lookahead{Kind: ActForgets}
	case *AllKnownAction:
		return Lookahead{Kind: ActAllKnown}
	case *StopAction:
		return Lookahead{Kind: ActStop}
	default:
		return Lookahead{Kind: ActStop}
	}
}
