package detest

// Value is an opaque payload carried across a suspension point. The core
// never inspects it; it is whatever the embedding program chose to put
// there.
type Value = any

// ActionKind tags the concrete type implementing Action, so the driver and
// the trace/lookahead producer can dispatch and label without repeating the
// type switch's logic in two places.
type ActionKind int

const (
	ActFork ActionKind = iota
	ActMyThreadId
	ActPut
	ActTryPut
	ActRead
	ActTake
	ActTryTake
	ActReadRef
	ActModRef
	ActNewCVar
	ActNewRef
	ActLift
	ActAtom
	ActThrow
	ActThrowTo
	ActCatching
	ActPopCatching
	ActMasking
	ActResetMask
	ActNoTest
	ActKnowsAbout
	ActForgets
	ActAllKnown
	ActStop
)

var actionKindNames = [...]string{
	ActFork:        "Fork",
	ActMyThreadId:  "MyThreadId",
	ActPut:         "Put",
	ActTryPut:      "TryPut",
	ActRead:        "Read",
	ActTake:        "Take",
	ActTryTake:     "TryTake",
	ActReadRef:     "ReadRef",
	ActModRef:      "ModRef",
	ActNewCVar:     "New",
	ActNewRef:      "NewRef",
	ActLift:        "Lift",
	ActAtom:        "Atom",
	ActThrow:       "Throw",
	ActThrowTo:     "ThrowTo",
	ActCatching:    "Catching",
	ActPopCatching: "PopCatching",
	ActMasking:     "Masking",
	ActResetMask:   "ResetMask",
	ActNoTest:      "NoTest",
	ActKnowsAbout:  "KnowsAbout",
	ActForgets:     "Forgets",
	ActAllKnown:    "AllKnown",
	ActStop:        "Stop",
}

func (k ActionKind) String() string {
	if int(k) >= 0 && int(k) < len(actionKindNames) && actionKindNames[k] != "" {
		return actionKindNames[k]
	}
	return "Unknown"
}

// Action is a tagged, suspended primitive. A thread's continuation is always
// exactly one Action; the driver executes it in a single atomic step and
// replaces the continuation with whatever Action it produces.
//
// Action is implemented only by the variant types in this file; the
// unexported marker method prevents other packages from adding variants the
// driver does not know how to interpret.
type Action interface {
	actionKind() ActionKind
}

// ForkAction spawns a new thread running Body; Body is given a Restore that
// reapplies the parent's mask state on demand (captured by value at fork
// time, per spec §4.B). K receives the new thread's id.
type ForkAction struct {
	Body func(Restore) Action
	K    func(ThreadId) Action
}

func (ForkAction) actionKind() ActionKind { return ActFork }

// MyThreadIdAction resolves K with the id of the thread executing it.
type MyThreadIdAction struct {
	K func(ThreadId) Action
}

func (MyThreadIdAction) actionKind() ActionKind { return ActMyThreadId }

// PutAction blocks until the CVar is empty, then fills it with Value.
type PutAction struct {
	Var   CVarId
	Value Value
	K     func() Action
}

func (PutAction) actionKind() ActionKind { return ActPut }

// TryPutAction never blocks; K receives whether the put succeeded.
type TryPutAction struct {
	Var   CVarId
	Value Value
	K     func(bool) Action
}

func (TryPutAction) actionKind() ActionKind { return ActTryPut }

// ReadAction blocks until the CVar is full, then resolves K with its value
// without emptying it.
type ReadAction struct {
	Var CVarId
	K   func(Value) Action
}

func (ReadAction) actionKind() ActionKind { return ActRead }

// TakeAction blocks until the CVar is full, then empties it and resolves K
// with the removed value.
type TakeAction struct {
	Var CVarId
	K   func(Value) Action
}

func (TakeAction) actionKind() ActionKind { return ActTake }

// TryTakeAction never blocks; K receives the value (if any) and whether the
// CVar was full.
type TryTakeAction struct {
	Var CVarId
	K   func(Value, bool) Action
}

func (TryTakeAction) actionKind() ActionKind { return ActTryTake }

// ReadRefAction reads a CRef's current value with no synchronization.
type ReadRefAction struct {
	Ref CRefId
	K   func(Value) Action
}

func (ReadRefAction) actionKind() ActionKind { return ActReadRef }

// ModRefAction atomically applies F to a CRef's value in a single step,
// storing the first component and resolving K with the second.
type ModRefAction struct {
	Ref CRefId
	F   func(Value) (Value, Value)
	K   func(Value) Action
}

func (ModRefAction) actionKind() ActionKind { return ActModRef }

// NewCVarAction allocates a fresh, empty CVar.
type NewCVarAction struct {
	K func(CVarId) Action
}

func (NewCVarAction) actionKind() ActionKind { return ActNewCVar }

// NewRefAction allocates a fresh CRef holding Initial.
type NewRefAction struct {
	Initial Value
	K       func(CRefId) Action
}

func (NewRefAction) actionKind() ActionKind { return ActNewRef }

// LiftAction lifts a host effect into the action stream. Effect is invoked
// by the driver exactly once, synchronously, producing the next Action; see
// effect.go for the two canonical substrates.
type LiftAction struct {
	Effect func() Action
}

func (LiftAction) actionKind() ActionKind { return ActLift }

// AtomAction executes an opaque STM transaction as a single step; see
// stm.go. K receives the committed result.
type AtomAction struct {
	Tx Transaction
	K  func(Value) Action
}

func (AtomAction) actionKind() ActionKind { return ActAtom }

// ThrowAction raises Exc in the executing thread itself.
type ThrowAction struct {
	Exc Exception
}

func (ThrowAction) actionKind() ActionKind { return ActThrow }

// ThrowToAction asynchronously delivers Exc to Target. If Target cannot
// accept it right now (masked, or masked-interruptible but not blocked), the
// sender blocks until it can.
type ThrowToAction struct {
	Target ThreadId
	Exc    Exception
	K      func() Action
}

func (ThrowToAction) actionKind() ActionKind { return ActThrowTo }

// CatchingAction installs Handler for the duration of Body, popped by a
// matching PopCatchingAction once Body completes normally.
type CatchingAction struct {
	Handler Handler
	Body    Action
}

func (CatchingAction) actionKind() ActionKind { return ActCatching }

// PopCatchingAction removes the top exception handler frame.
type PopCatchingAction struct {
	Then func() Action
}

func (PopCatchingAction) actionKind() ActionKind { return ActPopCatching }

// MaskingAction sets the thread's mask state to NewState for the duration of
// Body, which is handed a Restore capable of temporarily reverting to the
// prior mask.
type MaskingAction struct {
	NewState MaskState
	Body     func(Restore) Action
}

func (MaskingAction) actionKind() ActionKind { return ActMasking }

// ResetMaskAction restores the thread's mask state to Restore and continues
// with Then. It is always emitted by the Masking/Restore combinators in
// program.go, never constructed directly by user programs.
type ResetMaskAction struct {
	Restore MaskState
	Then    func() Action
}

func (ResetMaskAction) actionKind() ActionKind { return ActResetMask }

// NoTestAction marks Body as an opaque, un-interleaved sub-computation: the
// driver runs it to completion in a single step. Then receives its result.
type NoTestAction struct {
	Body Action
	Then func(Value) Action
}

func (NoTestAction) actionKind() ActionKind { return ActNoTest }

// KnowsAboutAction records that the executing thread has declared interest
// in a resource id (a CVarId, CRefId or ThreadId), for consumption by a
// search layer built on this core.
type KnowsAboutAction struct {
	ID any
	K  func() Action
}

func (KnowsAboutAction) actionKind() ActionKind { return ActKnowsAbout }

// ForgetsAction retracts a prior KnowsAbout declaration.
type ForgetsAction struct {
	ID any
	K  func() Action
}

func (ForgetsAction) actionKind() ActionKind { return ActForgets }

// AllKnownAction resolves K with every resource id any thread has declared
// interest in and not yet forgotten.
type AllKnownAction struct {
	K func([]any) Action
}

func (AllKnownAction) actionKind() ActionKind { return ActAllKnown }

// StopAction terminates the executing thread successfully with Result.
type StopAction struct {
	Result Value
}

func (StopAction) actionKind() ActionKind { return ActStop }

// noTestStop is an internal sentinel used only inside a NoTestAction's Body
// to signal that the opaque sub-computation has produced its final value; it
// is never visible to the scheduler or in a Trace.
type noTestStop struct {
	value Value
}

func (noTestStop) actionKind() ActionKind { return ActStop }
