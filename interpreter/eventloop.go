package interpreter

import "github.com/BDNK1/flowlang/value"

// TimerSource is the non-blocking pull side of the runtime's timer-callback
// channel. runtime.Runtime implements it; declared here so interpreter
// never imports runtime.
type TimerSource interface {
	NextTimerCallback() (fn value.Value, args []value.Value, ok bool)
}

// DrainTimerCallbacksOnce pulls and executes every timer callback request
// currently queued (non-blocking), matching the Rust original's
// try_recv-until-empty drain used both by `wait` and by the runtime's main
// event-loop tick.
func (e *Evaluator) DrainTimerCallbacksOnce() {
	if e.Timers == nil {
		return
	}
	for {
		fn, args, ok := e.Timers.NextTimerCallback()
		if !ok {
			return
		}
		_, flowErr := e.ExecuteFunction(fn, args)
		if flowErr != nil && e.Log != nil {
			e.Log.Error("timer callback raised", "error", flowErr.Error())
		}
	}
}
