package detest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThread_InterruptibleUnmasked(t *testing.T) {
	th := newThread(0, nil)
	assert.True(t, th.interruptible())
}

func TestThread_MaskedUninterruptibleNeverInterruptible(t *testing.T) {
	th := newThread(0, nil)
	th.Mask = MaskedUninterruptible
	assert.False(t, th.interruptible())
	th.Status = Blocked
	th.BlockedOn = BlockReason{Kind: OnTakeOf}
	assert.False(t, th.interruptible())
}

func TestThread_MaskedInterruptibleOnlyWhileBlockedOnSynchronization(t *testing.T) {
	th := newThread(0, nil)
	th.Mask = MaskedInterruptible

	assert.False(t, th.interruptible(), "Runnable, not yet at a blocking primitive")

	th.Status = Blocked
	th.BlockedOn = BlockReason{Kind: OnRetry}
	assert.False(t, th.interruptible(), "blocked in STM retry is not an interruptible point")

	th.BlockedOn = BlockReason{Kind: OnTakeOf}
	assert.True(t, th.interruptible())
}

func TestCatch_MatchesByType(t *testing.T) {
	type myErr struct{ msg string }

	handled := false
	builder := Catch[myErr, struct{}](func(e myErr) Prog[struct{}] {
		handled = true
		assert.Equal(t, "boom", e.msg)
		return Return(struct{}{})
	})
	handler := builder(func(struct{}) Action { return &StopAction{} })

	_, matched := handler(Exception{Value: "not-my-type"})
	assert.False(t, matched)
	assert.False(t, handled)

	action, matched := handler(Exception{Value: myErr{msg: "boom"}})
	assert.True(t, matched)
	assert.True(t, handled)
	assert.IsType(t, &StopAction{}, action)
}
