package detest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These encode spec §8's S1-S6 scenarios, all run under RoundRobin ("always
// pick the least ThreadId"), the scheduler those scenarios are defined
// against.

func TestScenario_S1_Ping(t *testing.T) {
	p := func(RunContext) Prog[Value] {
		return AndThen(NewEmptyCVar(), func(v CVarId) Prog[Value] {
			return AndThen(Fork(PutCVar(v, 42)), func(ThreadId) Prog[Value] {
				return Map(TakeCVar[int](v), func(n int) Value { return n })
			})
		})
	}

	value, ok, _, tr, err := Run(RoundRobin(), struct{}{}, p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 42, value)
	assert.NotEmpty(t, tr)
}

func TestScenario_S1_DecisionKindsDistinguishStartFromSwitchTo(t *testing.T) {
	// Regression for spec §4.G step 2: switching to the only other runnable
	// thread right after the previous one blocks is a necessary Start, not a
	// preemptive SwitchTo. A genuine SwitchTo only shows up later, once both
	// threads are independently runnable and the scheduler picks away from
	// one that could still have continued.
	p := func(RunContext) Prog[Value] {
		return AndThen(NewEmptyCVar(), func(v CVarId) Prog[Value] {
			return AndThen(Fork(PutCVar(v, 42)), func(ThreadId) Prog[Value] {
				return Map(TakeCVar[int](v), func(n int) Value { return n })
			})
		})
	}

	_, ok, _, tr, err := Run(RoundRobin(), struct{}{}, p)
	require.NoError(t, err)
	require.True(t, ok)

	kinds := make([]DecisionKind, len(tr))
	for i, e := range tr {
		kinds[i] = e.Decision.Kind
	}
	assert.Equal(t, []DecisionKind{Start, Continue, Continue, Start, SwitchTo, Continue, Start}, kinds)
}

func TestScenario_S2_Deadlock(t *testing.T) {
	p := func(RunContext) Prog[Value] {
		return AndThen(NewEmptyCVar(), func(v CVarId) Prog[Value] {
			return Map(TakeCVar[int](v), func(n int) Value { return n })
		})
	}

	_, ok, err := RunResult(RoundRobin(), struct{}{}, p)
	require.False(t, ok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDeadlock))
}

func TestScenario_S3_TryPutSuccessThenFail(t *testing.T) {
	type pair struct{ A, B bool }
	p := func(RunContext) Prog[Value] {
		return AndThen(NewEmptyCVar(), func(v CVarId) Prog[Value] {
			return AndThen(TryPutCVar(v, 1), func(a bool) Prog[Value] {
				return AndThen(TryPutCVar(v, 2), func(b bool) Prog[Value] {
					return Return(Value(pair{a, b}))
				})
			})
		})
	}

	value, ok, err := RunResult(RoundRobin(), struct{}{}, p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pair{A: true, B: false}, value)
}

func TestScenario_S4_ReadDoesNotEmpty(t *testing.T) {
	type pair struct{ X, Y int }
	p := func(RunContext) Prog[Value] {
		return AndThen(NewEmptyCVar(), func(v CVarId) Prog[Value] {
			return AndThen(Fork(PutCVar(v, 7)), func(ThreadId) Prog[Value] {
				return AndThen(ReadCVar[int](v), func(x int) Prog[Value] {
					return AndThen(ReadCVar[int](v), func(y int) Prog[Value] {
						return Return(Value(pair{X: x, Y: y}))
					})
				})
			})
		})
	}

	value, ok, err := RunResult(RoundRobin(), struct{}{}, p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pair{X: 7, Y: 7}, value)
}

func TestScenario_S5_ModRefIsAtomicAcrossForks(t *testing.T) {
	// Each fork signals a dedicated "done" CVar after its increment so main's
	// final read always observes both increments, regardless of how the
	// scheduler interleaves the two forked threads with each other.
	p := func(RunContext) Prog[Value] {
		incr := func(r CRefId, done CVarId) Prog[struct{}] {
			return AndThen(ModRef(r, func(n int) (int, struct{}) { return n + 1, struct{}{} }), func(struct{}) Prog[struct{}] {
				return PutCVar(done, struct{}{})
			})
		}
		return AndThen(NewRef(0), func(r CRefId) Prog[Value] {
			return AndThen(NewEmptyCVar(), func(done1 CVarId) Prog[Value] {
				return AndThen(NewEmptyCVar(), func(done2 CVarId) Prog[Value] {
					return AndThen(Fork(incr(r, done1)), func(ThreadId) Prog[Value] {
						return AndThen(Fork(incr(r, done2)), func(ThreadId) Prog[Value] {
							return AndThen(TakeCVar[struct{}](done1), func(struct{}) Prog[Value] {
								return AndThen(TakeCVar[struct{}](done2), func(struct{}) Prog[Value] {
									return Map(ReadRef[int](r), func(n int) Value { return n })
								})
							})
						})
					})
				})
			})
		})
	}

	value, ok, err := RunResult(RoundRobin(), struct{}{}, p)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, value)
}

func TestScenario_S6_MaskBlocksAsyncThrowTo(t *testing.T) {
	// Stands in for spec §8's "mask (\_ -> forever (return ()))": a thread
	// that masks uninterruptibly and then blocks forever on an empty CVar,
	// so the test terminates (via Deadlock) instead of spinning forever.
	// ready synchronizes so the ThrowTo is attempted only once A has
	// actually entered the uninterruptible mask.
	p := func(RunContext) Prog[Value] {
		return AndThen(NewEmptyCVar(), func(block CVarId) Prog[Value] {
			return AndThen(NewEmptyCVar(), func(ready CVarId) Prog[Value] {
				shielded := Mask(MaskedUninterruptible, func(Restore) Prog[Value] {
					return AndThen(PutCVar(ready, struct{}{}), func(struct{}) Prog[Value] {
						return Map(TakeCVar[struct{}](block), func(struct{}) Value { return nil })
					})
				})
				return AndThen(Fork(shielded), func(a ThreadId) Prog[Value] {
					return AndThen(TakeCVar[struct{}](ready), func(struct{}) Prog[Value] {
						return Map(ThrowTo(a, "die"), func(struct{}) Value { return nil })
					})
				})
			})
		})
	}

	_, ok, err := RunResult(RoundRobin(), struct{}{}, p)
	require.False(t, ok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDeadlock))
}

func TestRun_InvalidSchedulerChoiceIsInternalError(t *testing.T) {
	badSched := SchedulerFunc[struct{}](func(s struct{}, _ *Decision, _ []RunnableThread) (ThreadId, struct{}) {
		return ThreadId(999), s
	})
	p := func(RunContext) Prog[Value] {
		return Return(Value(nil))
	}

	_, ok, err := RunResult[struct{}](badSched, struct{}{}, p)
	require.False(t, ok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInternalError))
}

func TestRun_DeterministicAcrossRepeatedRuns(t *testing.T) {
	p := func(RunContext) Prog[Value] {
		return AndThen(NewEmptyCVar(), func(v CVarId) Prog[Value] {
			return AndThen(Fork(PutCVar(v, 1)), func(ThreadId) Prog[Value] {
				return Map(TakeCVar[int](v), func(n int) Value { return n })
			})
		})
	}

	v1, ok1, _, tr1, err1 := Run(RoundRobin(), struct{}{}, p)
	v2, ok2, _, tr2, err2 := Run(RoundRobin(), struct{}{}, p)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, v1, v2)
	assert.Equal(t, tr1, tr2)
}
