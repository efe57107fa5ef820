package detest

// CRef is an unsynchronized mutable cell (spec §3/§4.D). It never blocks;
// under the sequential-consistency baseline a ReadRef observes the most
// recently written value in global driver step order, because the driver
// is the only thing that ever mutates it and steps are totally ordered.
// Its actual storage is a refCell handed out by the run's Substrate, so a
// CRef's concurrency-safety characteristics follow whichever substrate
// allocated it.
type CRef struct {
	ID   CRefId
	cell refCell
}

func newCRef(id CRefId, cell refCell) *CRef {
	return &CRef{ID: id, cell: cell}
}

func (r *CRef) readRef() Value {
	return r.cell.get()
}

// modRef applies f to the current value as a single atomic step, stores the
// first component, and returns the second.
func (r *CRef) modRef(f func(Value) (Value, Value)) Value {
	next, result := f(r.cell.get())
	r.cell.set(next)
	return result
}
