// Copyright 2026 detest contributors
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package detest is the core of a deterministic concurrency-testing engine.
//
// It interprets a user-written concurrent program one primitive action at a
// time, under the control of an externally supplied [Scheduler]. Running the
// same program with the same scheduler and the same initial scheduler state
// always produces the same result and the same [Trace]: all interleaving
// decisions are pulled out of the interpreter and handed to the caller.
//
// A minimal "ping" program:
//
//	ping := func(detest.RunContext) detest.Prog[detest.Value] {
//		return detest.AndThen(detest.NewEmptyCVar(), func(v detest.CVarId) detest.Prog[detest.Value] {
//			return detest.AndThen(detest.Fork(detest.PutCVar(v, 42)), func(detest.ThreadId) detest.Prog[detest.Value] {
//				return detest.Map(detest.TakeCVar[int](v), func(n int) detest.Value { return n })
//			})
//		})
//	}
//	result, ok, _, tr, err := detest.Run(detest.RoundRobin(), struct{}{}, ping)
//	_ = result // 42
//	_ = ok     // true
//	_ = tr
//	_ = err
//
// The package does not decide which interleaving to explore, does not
// persist traces, and provides no assertions: those belong to a search layer
// built on top of it.
package detest
