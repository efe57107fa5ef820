package detest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCVar_PutThenTake(t *testing.T) {
	c := newCVar(0)

	woken, blocked := c.put(1, "hello")
	require.False(t, blocked)
	require.Empty(t, woken)

	v, woken, blocked := c.take(2)
	require.False(t, blocked)
	require.Empty(t, woken)
	assert.Equal(t, "hello", v)
	assert.False(t, c.Full)
}

func TestCVar_TakeBlocksOnEmpty(t *testing.T) {
	c := newCVar(0)

	_, _, blocked := c.take(1)
	require.True(t, blocked)
	assert.Equal(t, []ThreadId{1}, c.BlockedTakers)
}

func TestCVar_PutWakesBlockedTaker(t *testing.T) {
	c := newCVar(0)
	_, _, _ = c.take(1) // blocks thread 1

	woken, blocked := c.put(2, 7)
	require.False(t, blocked)
	assert.Equal(t, []ThreadId{1}, woken)
	assert.True(t, c.Full, "slot stays full until the woken taker actually re-runs take")
	assert.Empty(t, c.BlockedTakers)
}

func TestCVar_LostRaceReblocks(t *testing.T) {
	c := newCVar(0)
	_, _, _ = c.take(1)
	_, _, _ = c.take(2)
	woken, _ := c.put(3, 7)
	assert.ElementsMatch(t, []ThreadId{1, 2}, woken)

	// thread 1 wins the race
	v, wokenPutters, blocked := c.take(1)
	require.False(t, blocked)
	assert.Equal(t, 7, v)
	assert.Empty(t, wokenPutters)

	// thread 2 re-attempts and loses — it re-blocks
	_, _, blocked = c.take(2)
	require.True(t, blocked)
	assert.Equal(t, []ThreadId{2}, c.BlockedTakers)
}

func TestCVar_ReadDoesNotEmpty(t *testing.T) {
	c := newCVar(0)
	_, _ = c.put(1, 9)

	v, blocked := c.read(2)
	require.False(t, blocked)
	assert.Equal(t, 9, v)
	assert.True(t, c.Full)

	v2, blocked := c.read(3)
	require.False(t, blocked)
	assert.Equal(t, 9, v2)
}

func TestCVar_TryPutFailsWhenFull(t *testing.T) {
	c := newCVar(0)
	_, _ = c.put(1, 1)

	_, ok := c.tryPut(2, 2)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Slot)
}

func TestCVar_TryTakeFailsWhenEmpty(t *testing.T) {
	c := newCVar(0)
	_, _, ok := c.tryTake(1)
	assert.False(t, ok)
}

func TestCVar_PutWakesReadersAndTakersTogether(t *testing.T) {
	c := newCVar(0)
	_, _ = c.read(1)
	_, _, _ = c.take(2)

	woken, blocked := c.put(3, 5)
	require.False(t, blocked)
	assert.Equal(t, []ThreadId{1, 2}, woken, "readers precede takers in the woken list")
}
