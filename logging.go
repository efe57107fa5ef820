package detest

import "fmt"

// logStep emits one structured log line per driver step, when cfg carries a
// logger. It records the step number, decision kind, thread id, action kind
// and the number of alternatives; the alternatives' lookaheads and the
// action's resource, woken set and success flag are not logged.
func logStep(cfg *runOptions, entry TraceEntry) {
	if cfg.logger == nil {
		return
	}
	cfg.logger.Info().
		Int(`step`, entry.Step).
		Str(`decision`, entry.Decision.Kind.String()).
		Uint64(`thread`, uint64(entry.Decision.Thread)).
		Str(`action`, entry.Action.Kind.String()).
		Int(`alternatives`, len(entry.Alternatives)).
		Log(`step`)
}

// logTerminal emits the single event that closes out a Run: either the
// thread-0 result on a clean Stop, or the Failure that aborted the run.
func logTerminal(cfg *runOptions, t *Thread, err error) {
	if cfg.logger == nil {
		return
	}
	if err != nil {
		cfg.logger.Err().
			Err(err).
			Log(`run failed`)
		return
	}
	b := cfg.logger.Info()
	if t != nil {
		b = b.Str(`result`, fmt.Sprint(t.Result))
	}
	b.Log(`run completed`)
}
