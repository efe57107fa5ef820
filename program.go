package detest

// Prog[A] is the program-construction surface spec §6 calls for: a
// continuation-passing builder. A Prog[A] is not executed until handed (via
// Run) to the driver — building one has no effect. Composing two Prog
// values is CPS bind: AndThen(p, f) simply hands p's eventual result to f
// and splices in the Prog it returns.
type Prog[A any] func(k func(A) Action) Action

// Return lifts a plain value into Prog without performing any action.
func Return[A any](a A) Prog[A] {
	return func(k func(A) Action) Action { return k(a) }
}

// AndThen is Prog's monadic bind: run p, then run whatever f(p's result)
// builds, continuing from there.
func AndThen[A, B any](p Prog[A], f func(A) Prog[B]) Prog[B] {
	return func(k func(B) Action) Action {
		return p(func(a A) Action { return f(a)(k) })
	}
}

// Seq runs p then q, discarding p's result — the CPS analogue of `p >> q`.
func Seq[A, B any](p Prog[A], q Prog[B]) Prog[B] {
	return AndThen(p, func(A) Prog[B] { return q })
}

// Map transforms a Prog's eventual result without adding a suspension point.
func Map[A, B any](p Prog[A], f func(A) B) Prog[B] {
	return AndThen(p, func(a A) Prog[B] { return Return(f(a)) })
}

// --- thread identity -------------------------------------------------------

// MyThreadId resolves to the id of the thread executing it.
func MyThreadId() Prog[ThreadId] {
	return func(k func(ThreadId) Action) Action {
		return &MyThreadIdAction{K: k}
	}
}

// Fork spawns a new thread running body and resolves to its ThreadId. The
// new thread starts Unmasked regardless of the parent's mask state, per the
// usual async-exception convention; body's own mask changes are local to
// it.
func Fork[A any](body Prog[A]) Prog[ThreadId] {
	return func(k func(ThreadId) Action) Action {
		return &ForkAction{
			Body: func(Restore) Action {
				return body(func(A) Action { return &StopAction{} })
			},
			K: k,
		}
	}
}

// Spawn is the convenience combinator from spec §6: it runs p on a new
// thread and resolves to a CVar that will hold p's result once the child
// finishes.
func Spawn[A any](p Prog[A]) Prog[CVarId] {
	return AndThen(NewEmptyCVar(), func(v CVarId) Prog[CVarId] {
		return Seq(Fork(AndThen(p, func(a A) Prog[struct{}] { return PutCVar(v, a) })), Return(v))
	})
}

// --- CVar operations --------------------------------------------------------

// NewEmptyCVar allocates a fresh, empty CVar.
func NewEmptyCVar() Prog[CVarId] {
	return func(k func(CVarId) Action) Action { return &NewCVarAction{K: k} }
}

// PutCVar blocks until v is empty, then fills it.
func PutCVar[A any](v CVarId, x A) Prog[struct{}] {
	return func(k func(struct{}) Action) Action {
		return &PutAction{Var: v, Value: x, K: func() Action { return k(struct{}{}) }}
	}
}

// TryPutCVar never blocks; it resolves to whether the put succeeded.
func TryPutCVar[A any](v CVarId, x A) Prog[bool] {
	return func(k func(bool) Action) Action {
		return &TryPutAction{Var: v, Value: x, K: k}
	}
}

// ReadCVar blocks until v is full, then resolves to its value without
// emptying it.
func ReadCVar[A any](v CVarId) Prog[A] {
	return func(k func(A) Action) Action {
		return &ReadAction{Var: v, K: func(x Value) Action { return k(x.(A)) }}
	}
}

// TakeCVar blocks until v is full, then empties it and resolves to the
// removed value.
func TakeCVar[A any](v CVarId) Prog[A] {
	return func(k func(A) Action) Action {
		return &TakeAction{Var: v, K: func(x Value) Action { return k(x.(A)) }}
	}
}

// MaybeValue is TryTakeCVar's result: Ok reports whether v was full.
type MaybeValue[A any] struct {
	Value A
	Ok    bool
}

// TryTakeCVar never blocks.
func TryTakeCVar[A any](v CVarId) Prog[MaybeValue[A]] {
	return func(k func(MaybeValue[A]) Action) Action {
		return &TryTakeAction{Var: v, K: func(x Value, ok bool) Action {
			if !ok {
				return k(MaybeValue[A]{})
			}
			return k(MaybeValue[A]{Value: x.(A), Ok: true})
		}}
	}
}

// --- CRef operations --------------------------------------------------------

// NewRef allocates a fresh CRef holding initial.
func NewRef[A any](initial A) Prog[CRefId] {
	return func(k func(CRefId) Action) Action {
		return &NewRefAction{Initial: initial, K: k}
	}
}

// ReadRef reads a CRef's current value with no synchronization.
func ReadRef[A any](r CRefId) Prog[A] {
	return func(k func(A) Action) Action {
		return &ReadRefAction{Ref: r, K: func(x Value) Action { return k(x.(A)) }}
	}
}

// ModRef atomically applies f to r's value in a single step and resolves to
// f's second component.
func ModRef[A, B any](r CRefId, f func(A) (A, B)) Prog[B] {
	return func(k func(B) Action) Action {
		return &ModRefAction{
			Ref: r,
			F: func(v Value) (Value, Value) {
				next, result := f(v.(A))
				return next, result
			},
			K: func(x Value) Action { return k(x.(B)) },
		}
	}
}

// --- host effects & STM ------------------------------------------------------

// Lift lifts a host effect into the action stream; effect is invoked
// exactly once, synchronously, by the driver.
func Lift[A any](effect func() A) Prog[A] {
	return func(k func(A) Action) Action {
		return &LiftAction{Effect: func() Action { return k(effect()) }}
	}
}

// Atom executes tx as a single opaque step.
func Atom[A any](tx func() (A, bool)) Prog[A] {
	return func(k func(A) Action) Action {
		return &AtomAction{
			Tx: func() TxResult {
				v, ok := tx()
				return TxResult{Value: v, Retry: !ok}
			},
			K: func(x Value) Action { return k(x.(A)) },
		}
	}
}

// --- exceptions --------------------------------------------------------------

// Throw raises exc in the executing thread itself.
func Throw[A any](exc any) Prog[A] {
	return func(func(A) Action) Action {
		return &ThrowAction{Exc: Exception{Value: exc}}
	}
}

// ThrowTo asynchronously delivers exc to target, blocking the sender until
// target can accept it.
func ThrowTo(target ThreadId, exc any) Prog[struct{}] {
	return func(k func(struct{}) Action) Action {
		return &ThrowToAction{Target: target, Exc: Exception{Value: exc}, K: func() Action { return k(struct{}{}) }}
	}
}

// Catching installs a Handler, built via Catch[E], for the duration of
// body.
func Catching[E, A any](handle func(E) Prog[A], body Prog[A]) Prog[A] {
	return func(k func(A) Action) Action {
		h := Catch[E, A](handle)(k)
		return &CatchingAction{
			Handler: h,
			Body: body(func(a A) Action {
				return &PopCatchingAction{Then: func() Action { return k(a) }}
			}),
		}
	}
}

// --- masking -----------------------------------------------------------------

// Mask runs body under newState, handing it a Restore that can temporarily
// revert to the prior mask state, and restores that prior state once body
// completes (spec §4.B/§4.E).
func Mask[A any](newState MaskState, body func(Restore) Prog[A]) Prog[A] {
	return func(k func(A) Action) Action {
		return &MaskingAction{
			NewState: newState,
			Body: func(r Restore) Action {
				return body(r)(func(a A) Action {
					return &ResetMaskAction{Restore: r.PriorMask, Then: func() Action { return k(a) }}
				})
			},
		}
	}
}

// Apply runs inner with the mask state that was active before the enclosing
// Mask scope, then restores the enclosing scope's mask before continuing.
func (r Restore) Apply(inner Prog[any]) Prog[any] {
	return func(k func(any) Action) Action {
		return &MaskingAction{
			NewState: r.PriorMask,
			Body: func(Restore) Action {
				return inner(func(a any) Action {
					return &ResetMaskAction{Restore: r.ScopeMask, Then: func() Action { return k(a) }}
				})
			},
		}
	}
}

// --- opaque sub-computations -------------------------------------------------

// NoTest marks body as an opaque, un-interleaved sub-computation: the
// driver runs it to completion in a single step. A block attempted inside
// body surfaces the whole run as FailureInNoTest.
func NoTest[A any](body Prog[A]) Prog[A] {
	return func(k func(A) Action) Action {
		return &NoTestAction{
			Body: body(func(a A) Action { return noTestStop{value: a} }),
			Then: func(v Value) Action { return k(v.(A)) },
		}
	}
}

// --- acquaintance annotations -------------------------------------------------

// KnowsAbout records that the executing thread has declared interest in id,
// for consumption by a search layer built on this core.
func KnowsAbout(id any) Prog[struct{}] {
	return func(k func(struct{}) Action) Action {
		return &KnowsAboutAction{ID: id, K: func() Action { return k(struct{}{}) }}
	}
}

// Forgets retracts a prior KnowsAbout declaration.
func Forgets(id any) Prog[struct{}] {
	return func(k func(struct{}) Action) Action {
		return &ForgetsAction{ID: id, K: func() Action { return k(struct{}{}) }}
	}
}

// AllKnown resolves to every resource id any thread has declared interest in
// and not yet forgotten.
func AllKnown() Prog[[]any] {
	return func(k func([]any) Action) Action {
		return &AllKnownAction{K: k}
	}
}
