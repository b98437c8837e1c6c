// Package timerbridge implements the two timer-related native functions
// (interval, timeout) and clear, spawning background goroutines that post
// callback requests onto the Runtime's timer channel on each tick,
// cancellable via the registered handle — a direct port of the behavior
// named in §4.4.1 and grounded on the Rust original's timer handle
// lifecycle (handle.rs's Interval/Timeout variants).
package timerbridge

import (
	"fmt"
	"time"

	"github.com/BDNK1/flowlang/runtime"
	"github.com/BDNK1/flowlang/value"
)

// Module builds the std:timer module's exported member map.
func Module(rt *runtime.Runtime) map[string]value.Value {
	return map[string]value.Value{
		"interval": value.Async(func(args []value.Value, actx value.AsyncContext) (value.Value, error) {
			return intervalFn(rt, args)
		}),
		"timeout": value.Async(func(args []value.Value, actx value.AsyncContext) (value.Value, error) {
			return timeoutFn(rt, args)
		}),
		"clear": value.Sync(func(args []value.Value) (value.Value, error) {
			return clearFn(rt, args)
		}),
	}
}

func intervalFn(rt *runtime.Runtime, args []value.Value) (value.Value, error) {
	if len(args) < 2 {
		return value.Null(), fmt.Errorf("timer.interval expects (ms, callback), got %d argument(s)", len(args))
	}
	ms, cb := args[0], args[1]
	h := rt.RegisterHandle(runtime.KindInterval, "interval")
	go func() {
		ticker := time.NewTicker(time.Duration(ms.Number()) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-h.Done():
				rt.UnregisterHandle(h.ID)
				return
			case <-ticker.C:
				rt.RecordTimerFire()
				rt.SendTimerCallback(cb, nil)
			}
		}
	}()
	return value.HandleValue(uint64(h.ID)), nil
}

func timeoutFn(rt *runtime.Runtime, args []value.Value) (value.Value, error) {
	if len(args) < 2 {
		return value.Null(), fmt.Errorf("timer.timeout expects (ms, callback), got %d argument(s)", len(args))
	}
	ms, cb := args[0], args[1]
	h := rt.RegisterHandle(runtime.KindTimeout, "timeout")
	go func() {
		timer := time.NewTimer(time.Duration(ms.Number()) * time.Millisecond)
		defer timer.Stop()
		select {
		case <-h.Done():
		case <-timer.C:
			rt.RecordTimerFire()
			rt.SendTimerCallback(cb, nil)
		}
		rt.UnregisterHandle(h.ID)
	}()
	return value.HandleValue(uint64(h.ID)), nil
}

// clearFn takes the cancel sender out of the registry entry, sends on it,
// and removes the entry. Returns false if the id is unknown.
func clearFn(rt *runtime.Runtime, args []value.Value) (value.Value, error) {
	if len(args) < 1 || args[0].Kind() != value.KindHandle {
		return value.Bool(false), nil
	}
	id := runtime.HandleID(args[0].HandleID())
	h, ok := rt.Handles().Get(id)
	if !ok {
		return value.Bool(false), nil
	}
	h.Cancel()
	rt.UnregisterHandle(id)
	return value.Bool(true), nil
}
