package detest

import "sync"

// Scope is an opaque token carried in every RunContext. Go has no
// phantom-lifetime types; Scope has no exported fields and carries no data,
// and Run never returns one. Nothing in this package checks a Scope, so it
// does not tie anything to a run: a program can keep the Scope it was
// handed, and resource ids (ThreadId, CVarId, CRefId) are plain integers
// that any caller can construct.
type Scope struct{ _ struct{} }

// Substrate is the host-effect capability record spec §4.J requires the
// interpreter to be generic over: it owns how a CRef's backing cell is
// allocated, and how a LiftAction's effect is actually invoked. PureSubstrate
// and IOSubstrate are the two canonical instantiations.
type Substrate interface {
	newCell(initial Value) refCell
	lift(effect func() Action) Action
	String() string
}

// refCell is the backing storage one CRef is allocated against; CRef itself
// only ever calls get/set, never how they're implemented.
type refCell interface {
	get() Value
	set(Value)
}

// pureSubstrate backs each ref with a bare field mutated only by the
// single-threaded driver, and invokes a lift's effect inline. It does not
// restrict what a lifted effect does; a run is replayable only as far as
// its lifted effects are.
type pureSubstrate struct{}

func (pureSubstrate) newCell(initial Value) refCell    { return &plainCell{v: initial} }
func (pureSubstrate) lift(effect func() Action) Action { return effect() }
func (pureSubstrate) String() string                   { return "Pure" }

type plainCell struct{ v Value }

func (c *plainCell) get() Value  { return c.v }
func (c *plainCell) set(v Value) { c.v = v }

// ioSubstrate permits LiftAction effects to perform arbitrary host IO, which
// may run on or call back from a goroutine other than the one driving Run.
// Its refs are guarded with a mutex for that reason — the same defense
// eventloop applies to loop state an external callback might reach from off
// the loop's own goroutine — where PureSubstrate can rely on the bare
// single-threaded driver invariant instead.
type ioSubstrate struct{}

func (ioSubstrate) newCell(initial Value) refCell    { return &lockedCell{v: initial} }
func (ioSubstrate) lift(effect func() Action) Action { return effect() }
func (ioSubstrate) String() string                   { return "IO" }

type lockedCell struct {
	mu sync.Mutex
	v  Value
}

func (c *lockedCell) get() Value {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *lockedCell) set(v Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v = v
}

// PureSubstrate and IOSubstrate are the two concrete Substrate values
// WithSubstrate accepts.
var (
	PureSubstrate Substrate = pureSubstrate{}
	IOSubstrate   Substrate = ioSubstrate{}
)

// RunContext is handed to a Program when it is invoked. SafeIO is a flag the
// core only carries on behalf of the caller: spec §4.J is explicit that
// whether a given LiftAction effect actually respects it is a concern for
// the exploration/search layer, not this interpreter.
type RunContext struct {
	Scope     Scope
	Substrate Substrate
	SafeIO    bool
}

// Program is the top-level shape Run accepts: a function from the run's
// RunContext to the Prog that becomes thread 0's body.
type Program func(RunContext) Prog[Value]
