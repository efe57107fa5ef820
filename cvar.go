package detest

// CVar is a single-slot, multi-waiter synchronized variable (spec §3/§4.C).
//
// Invariant: BlockedPutters is non-empty only while the slot is full, and
// BlockedTakers/BlockedReaders are non-empty only while the slot is empty —
// a step that fills the slot moves every blocked taker and reader to
// Runnable, and a step that empties it moves every blocked putter.
type CVar struct {
	ID             CVarId
	Full           bool
	Slot           Value
	BlockedTakers  []ThreadId
	BlockedPutters []putWaiter
	BlockedReaders []ThreadId

	// pendingTakers/pendingPutters hold threads that were woken by a put/take
	// (so they are Runnable again) but have not yet been re-scheduled to
	// actually attempt filling/emptying the slot. Only the first one the
	// scheduler runs succeeds; the rest observe the race already lost and
	// re-block, exactly as spec §4.C's wake-all-scheduler-picks policy
	// requires.
	pendingTakers  []ThreadId
	pendingPutters []ThreadId
}

type putWaiter struct {
	Thread ThreadId
	Value  Value
}

func newCVar(id CVarId) *CVar {
	return &CVar{ID: id}
}

func removeID(ids []ThreadId, tid ThreadId) []ThreadId {
	for i, t := range ids {
		if t == tid {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}

// put implements spec §4.C: if the slot is empty and there are no blocked
// takers/readers, the value is stored directly. If there are blocked takers
// or readers, all of them are woken — readers observe the value without it
// being emptied; exactly one of the woken takers (chosen later by the
// scheduler re-running this same put/take race) actually empties the slot.
// Otherwise (slot full, no one waiting to receive it) the putter blocks.
//
// woken is readers-then-takers, the union of waiters blocked immediately
// before this call, per spec §8 property 5.
func (c *CVar) put(tid ThreadId, v Value) (woken []ThreadId, blocked bool) {
	c.pendingPutters = removeID(c.pendingPutters, tid)
	c.BlockedPutters = removePutWaiter(c.BlockedPutters, tid)

	if !c.Full && len(c.BlockedTakers) == 0 && len(c.BlockedReaders) == 0 {
		c.Full = true
		c.Slot = v
		return nil, false
	}
	if len(c.BlockedTakers) > 0 || len(c.BlockedReaders) > 0 {
		woken = append(woken, c.BlockedReaders...)
		woken = append(woken, c.BlockedTakers...)
		c.BlockedReaders = nil
		c.pendingTakers = append(c.pendingTakers, c.BlockedTakers...)
		c.BlockedTakers = nil
		c.Full = true
		c.Slot = v
		return woken, false
	}
	c.BlockedPutters = append(c.BlockedPutters, putWaiter{Thread: tid, Value: v})
	return nil, true
}

// tryPut is the non-blocking variant: it never queues as a blocked putter.
func (c *CVar) tryPut(tid ThreadId, v Value) (woken []ThreadId, ok bool) {
	c.pendingPutters = removeID(c.pendingPutters, tid)
	if c.Full {
		return nil, false
	}
	if len(c.BlockedTakers) > 0 || len(c.BlockedReaders) > 0 {
		woken = append(woken, c.BlockedReaders...)
		woken = append(woken, c.BlockedTakers...)
		c.BlockedReaders = nil
		c.pendingTakers = append(c.pendingTakers, c.BlockedTakers...)
		c.BlockedTakers = nil
	}
	c.Full = true
	c.Slot = v
	return woken, true
}

// take implements spec §4.C: if full, empties the slot, returns the value,
// and wakes all blocked putters — exactly one of them (chosen later by the
// scheduler) actually refills the slot. If empty, the caller blocks.
func (c *CVar) take(tid ThreadId) (v Value, woken []ThreadId, blocked bool) {
	c.pendingTakers = removeID(c.pendingTakers, tid)
	c.BlockedTakers = removeID(c.BlockedTakers, tid)

	if !c.Full {
		c.BlockedTakers = append(c.BlockedTakers, tid)
		return nil, nil, true
	}
	v = c.Slot
	c.Slot = nil
	c.Full = false
	if len(c.BlockedPutters) > 0 {
		for _, p := range c.BlockedPutters {
			woken = append(woken, p.Thread)
		}
		c.pendingPutters = append(c.pendingPutters, woken...)
		c.BlockedPutters = nil
	}
	return v, woken, false
}

// tryTake is the non-blocking variant.
func (c *CVar) tryTake(tid ThreadId) (v Value, woken []ThreadId, ok bool) {
	c.pendingTakers = removeID(c.pendingTakers, tid)
	if !c.Full {
		return nil, nil, false
	}
	v = c.Slot
	c.Slot = nil
	c.Full = false
	if len(c.BlockedPutters) > 0 {
		for _, p := range c.BlockedPutters {
			woken = append(woken, p.Thread)
		}
		c.pendingPutters = append(c.pendingPutters, woken...)
		c.BlockedPutters = nil
	}
	return v, woken, true
}

// read implements spec §4.C: if full, resolves without emptying; if empty,
// the caller blocks. Multiple readers may be woken simultaneously when a
// putter eventually writes, and all observe the same value — spec §9 leaves
// the intra-wave order among them to the scheduler.
func (c *CVar) read(tid ThreadId) (v Value, blocked bool) {
	c.BlockedReaders = removeID(c.BlockedReaders, tid)
	if !c.Full {
		c.BlockedReaders = append(c.BlockedReaders, tid)
		return nil, true
	}
	return c.Slot, false
}

func removePutWaiter(ws []putWaiter, tid ThreadId) []putWaiter {
	for i, w := range ws {
		if w.Thread == tid {
			return append(ws[:i:i], ws[i+1:]...)
		}
	}
	return ws
}
