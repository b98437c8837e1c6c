package runtime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/BDNK1/flowlang/value"
)

// Config mirrors the Rust original's RuntimeConfig: the single tunable is
// the handler-concurrency semaphore's permit count.
type Config struct {
	// MaxConcurrentWebHandlers bounds concurrent web-handler invocations.
	// 250 is chosen to match expected client connection counts without
	// unbounded scheduling pressure, the same default the original ships.
	MaxConcurrentWebHandlers int64 `mapstructure:"max_concurrent_web_handlers" validate:"min=1"`
}

func DefaultConfig() Config {
	return Config{MaxConcurrentWebHandlers: 250}
}

// TimerCallback is a fire-and-forget request posted by the timer bridge.
type TimerCallback struct {
	Fn   value.Value
	Args []value.Value
}

// WebCallback is a request/response request posted by the web bridge; Reply
// receives exactly one Value once the evaluator has produced a response.
type WebCallback struct {
	Fn     value.Value
	Args   []value.Value
	Reply  chan value.Value
}

// Metrics is the narrow instrumentation hook the runtime and its bridges
// report activity through — handle registrations, web requests, and timer
// fires. Declared here as an interface so runtime has no import-cycle
// dependency on internal/telemetry; implemented by telemetry.Metrics. A nil
// Metrics is valid and every call site treats it as a no-op.
type Metrics interface {
	IncHandleRegistered(kind string)
	IncWebRequest()
	IncTimerFire()
}

// Runtime is the process-wide coordinator: the handle registry, the
// shutdown flag, the two callback channels, and the web-handler
// concurrency semaphore.
type Runtime struct {
	handles  *HandleRegistry
	shutdown atomic.Bool

	timerCh chan TimerCallback
	webCh   chan WebCallback

	sem *semaphore.Weighted

	metrics Metrics

	mu sync.Mutex // guards nothing shared beyond what channels already serialize; kept for parity with the registry's own lock discipline
}

func New() *Runtime { return WithConfig(DefaultConfig()) }

func WithConfig(cfg Config) *Runtime {
	return &Runtime{
		handles: NewHandleRegistry(),
		// Buffered to 4096 requests each; a send blocks once that many
		// requests are queued and not yet drained.
		timerCh: make(chan TimerCallback, 4096),
		webCh:   make(chan WebCallback, 4096),
		sem:     semaphore.NewWeighted(cfg.MaxConcurrentWebHandlers),
	}
}

func (r *Runtime) Handles() *HandleRegistry { return r.handles }

// SetMetrics wires the instrumentation hook. Called once at startup;
// unset leaves every counter/span a no-op.
func (r *Runtime) SetMetrics(m Metrics) { r.metrics = m }

func (r *Runtime) RegisterHandle(kind HandleKind, name string) *Handle {
	h := r.handles.Add(kind, name)
	if r.metrics != nil {
		r.metrics.IncHandleRegistered(kind.String())
	}
	return h
}

// RecordWebRequest reports one web request dispatched to the evaluator —
// called from the web bridge's per-request dispatch path.
func (r *Runtime) RecordWebRequest() {
	if r.metrics != nil {
		r.metrics.IncWebRequest()
	}
}

// RecordTimerFire reports one timer callback posted — called from the
// timer bridge on each interval tick or timeout fire.
func (r *Runtime) RecordTimerFire() {
	if r.metrics != nil {
		r.metrics.IncTimerFire()
	}
}

func (r *Runtime) UnregisterHandle(id HandleID) bool { return r.handles.Remove(id) }

func (r *Runtime) ActiveHandleCount() int { return r.handles.Count() }

func (r *Runtime) HasHandle(id HandleID) bool {
	_, ok := r.handles.Get(id)
	return ok
}

// SignalShutdown flips the shutdown flag. Idempotent.
func (r *Runtime) SignalShutdown() { r.shutdown.Store(true) }

func (r *Runtime) IsShutdownSignaled() bool { return r.shutdown.Load() }

// SendTimerCallback posts a fire-and-forget timer callback request.
func (r *Runtime) SendTimerCallback(fn value.Value, args []value.Value) {
	r.timerCh <- TimerCallback{Fn: fn, Args: args}
}

// SendWebCallback posts a request/response web callback request and returns
// the channel its single reply will arrive on.
func (r *Runtime) SendWebCallback(fn value.Value, args []value.Value) chan value.Value {
	reply := make(chan value.Value, 1)
	r.webCh <- WebCallback{Fn: fn, Args: args, Reply: reply}
	return reply
}

// PollTimerCallback is the non-blocking pull side used by the drain loop
// and by interpreter.Evaluator's wait-statement drain.
func (r *Runtime) PollTimerCallback() (TimerCallback, bool) {
	select {
	case req := <-r.timerCh:
		return req, true
	default:
		return TimerCallback{}, false
	}
}

// NextTimerCallback implements interpreter.TimerSource.
func (r *Runtime) NextTimerCallback() (value.Value, []value.Value, bool) {
	req, ok := r.PollTimerCallback()
	if !ok {
		return value.Value{}, nil, false
	}
	return req.Fn, req.Args, true
}

// PollWebCallback is the non-blocking pull side used by the drain loop.
func (r *Runtime) PollWebCallback() (WebCallback, bool) {
	select {
	case req := <-r.webCh:
		return req, true
	default:
		return WebCallback{}, false
	}
}

// AcquireWebPermit blocks until a handler-concurrency permit is available.
// Call Release on the returned release func once the handler completes.
func (r *Runtime) AcquireWebPermit(ctx context.Context) (release func(), err error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { r.sem.Release(1) }, nil
}

// Context satisfies value.AsyncContext so async natives can reach the
// Runtime through a value.Value's opaque AsyncContext parameter.
func (r *Runtime) Context() any { return r }

// RunDrainLoop runs the drain loop described in §2's control-flow summary:
// while handles > 0 and not shut down, drain the timer queue by invoking
// each callback via invoke, then pull up to one batch of web callbacks and
// dispatch each to a worker goroutine via dispatchWeb. It returns when
// either condition becomes false. The idle poll interval (100ms) matches
// the Rust original's run_until_complete cadence.
func (r *Runtime) RunDrainLoop(ctx context.Context, invoke func(fn value.Value, args []value.Value), dispatchWeb func(fn value.Value, args []value.Value, reply chan value.Value)) {
	const batchSize = 10
	const idle = 100 * time.Millisecond

	for {
		if r.IsShutdownSignaled() {
			return
		}
		if r.ActiveHandleCount() == 0 {
			return
		}

		drained := false
		for {
			req, ok := r.PollTimerCallback()
			if !ok {
				break
			}
			drained = true
			invoke(req.Fn, req.Args)
		}

		for i := 0; i < batchSize; i++ {
			req, ok := r.PollWebCallback()
			if !ok {
				break
			}
			drained = true
			release, err := r.AcquireWebPermit(ctx)
			if err != nil {
				req.Reply <- value.Null()
				continue
			}
			go func(req WebCallback) {
				defer release()
				dispatchWeb(req.Fn, req.Args, req.Reply)
			}(req)
		}

		if !drained {
			select {
			case <-ctx.Done():
				return
			case <-time.After(idle):
			}
		}
	}
}
