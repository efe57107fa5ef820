package detest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRef_ReadReflectsLastWrite(t *testing.T) {
	r := newCRef(0, pureSubstrate{}.newCell(10))
	assert.Equal(t, 10, r.readRef())

	result := r.modRef(func(v Value) (Value, Value) {
		n := v.(int)
		return n + 1, n
	})
	assert.Equal(t, 10, result)
	assert.Equal(t, 11, r.readRef())
}

func TestCRef_ModRefIsSingleStep(t *testing.T) {
	r := newCRef(0, pureSubstrate{}.newCell(0))
	for i := 0; i < 5; i++ {
		r.modRef(func(v Value) (Value, Value) { return v.(int) + 1, nil })
	}
	assert.Equal(t, 5, r.readRef())
}

func TestIOSubstrate_CellIsMutexGuarded(t *testing.T) {
	cell := ioSubstrate{}.newCell(0)
	cell.set(42)
	assert.Equal(t, 42, cell.get())
	_, ok := cell.(*lockedCell)
	assert.True(t, ok)
}

func TestPureSubstrate_CellIsPlain(t *testing.T) {
	cell := pureSubstrate{}.newCell(0)
	_, ok := cell.(*plainCell)
	assert.True(t, ok)
}

func TestSubstrate_String(t *testing.T) {
	assert.Equal(t, "Pure", PureSubstrate.String())
	assert.Equal(t, "IO", IOSubstrate.String())
}
