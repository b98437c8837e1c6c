package interpreter

import (
	"testing"

	"github.com/BDNK1/flowlang/value"
)

type fakeTimerSource struct {
	queue []struct {
		fn   value.Value
		args []value.Value
	}
}

func (f *fakeTimerSource) push(fn value.Value, args []value.Value) {
	f.queue = append(f.queue, struct {
		fn   value.Value
		args []value.Value
	}{fn, args})
}

func (f *fakeTimerSource) NextTimerCallback() (value.Value, []value.Value, bool) {
	if len(f.queue) == 0 {
		return value.Null(), nil, false
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	return next.fn, next.args, true
}

func TestDrainTimerCallbacksOnceRunsAllQueued(t *testing.T) {
	e := newTestEvaluator(false)
	var calls []float64
	fn := value.Sync(func(args []value.Value) (value.Value, error) {
		calls = append(calls, args[0].Number())
		return value.Null(), nil
	})

	src := &fakeTimerSource{}
	src.push(fn, []value.Value{value.Number(1)})
	src.push(fn, []value.Value{value.Number(2)})
	src.push(fn, []value.Value{value.Number(3)})
	e.Timers = src

	e.DrainTimerCallbacksOnce()

	if len(calls) != 3 {
		t.Fatalf("calls = %v, want 3 entries", calls)
	}
	for i, want := range []float64{1, 2, 3} {
		if calls[i] != want {
			t.Errorf("calls[%d] = %v, want %v", i, calls[i], want)
		}
	}
	if _, _, ok := src.NextTimerCallback(); ok {
		t.Error("queue should be fully drained")
	}
}

func TestDrainTimerCallbacksOnceNilSourceIsNoop(t *testing.T) {
	e := newTestEvaluator(false)
	e.Timers = nil
	e.DrainTimerCallbacksOnce()
}

func TestDrainTimerCallbacksOnceSwallowsCallbackErrors(t *testing.T) {
	e := newTestEvaluator(false)
	fn := value.Sync(func(args []value.Value) (value.Value, error) {
		return value.Null(), errBoom
	})
	src := &fakeTimerSource{}
	src.push(fn, nil)
	e.Timers = src

	// Should not panic even though Log is nil and the callback errors.
	e.DrainTimerCallbacksOnce()
}

var errBoom = testDrainError("boom")

type testDrainError string

func (e testDrainError) Error() string { return string(e) }
