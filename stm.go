package detest

// Package scope note (spec §1): the STM sub-language itself is not
// specified here. The core exposes it only as an opaque atomic step — a
// Transaction — executed by AtomAction. Anything resembling TVars, a
// transaction-local read/write log, or retry-on-conflict scheduling belongs
// to that unspecified sub-language; this file defines only the boundary the
// core needs to drive one step and classify deadlock correctly.

// TxResult is what a Transaction reports back to the driver for a single
// attempt.
type TxResult struct {
	// Value is the committed result, meaningful only when Retry is false.
	Value Value
	// Retry asks the driver to block the executing thread until some other
	// part of the (unspecified) STM sub-language judges a re-attempt
	// worthwhile. The core itself never re-attempts a retried transaction on
	// its own; see the OnRetry BlockKind and the STMDeadlock FailureKind.
	Retry bool
}

// Transaction is the opaque unit Atom executes. It is invoked synchronously,
// exactly once per AtomAction step, by the driver.
type Transaction func() TxResult

// Retrying is a convenience Transaction that always asks to retry; useful in
// tests exercising STMDeadlock.
func Retrying() TxResult { return TxResult{Retry: true} }

// Committed is a convenience constructor for a Transaction that always
// commits v without reading or writing anything further.
func Committed(v Value) Transaction {
	return func() TxResult { return TxResult{Value: v} }
}
