// Package runtime implements the event-loop coordinator: the handle
// registry, the two callback channels, the handler-concurrency semaphore,
// and cooperative shutdown. It is a direct port of the Rust original's
// runtime/mod.rs and runtime/handle.rs, translated from tokio primitives to
// goroutines, Go channels, and golang.org/x/sync/semaphore.
package runtime

import (
	"sync"
	"time"
)

// HandleID is a monotonic identifier for a registered async resource.
// IDs are never reused during a process lifetime.
type HandleID uint64

// HandleKind tags what a Handle represents.
type HandleKind int

const (
	KindInterval HandleKind = iota
	KindTimeout
	KindHTTPServer
	KindTCPServer
	KindWebSocketServer
	KindGeneric
)

func (k HandleKind) String() string {
	switch k {
	case KindInterval:
		return "Interval"
	case KindTimeout:
		return "Timeout"
	case KindHTTPServer:
		return "HttpServer"
	case KindTCPServer:
		return "TcpServer"
	case KindWebSocketServer:
		return "WebSocketServer"
	default:
		return "Generic"
	}
}

// Handle is a registered live resource: its kind, creation time, and a
// one-shot cancel/shutdown channel taken (closed) exactly once via Cancel.
type Handle struct {
	ID        HandleID
	Kind      HandleKind
	Name      string // populated for Generic handles
	CreatedAt time.Time

	cancel     chan struct{}
	cancelOnce sync.Once
}

// Cancel closes the handle's cancel channel exactly once — the Go
// equivalent of taking an Option<oneshot::Sender<()>> out of the registry
// entry and sending on it.
func (h *Handle) Cancel() {
	h.cancelOnce.Do(func() { close(h.cancel) })
}

// Done returns the channel a background task selects on alongside its
// ticker/timer to detect cancellation.
func (h *Handle) Done() <-chan struct{} { return h.cancel }

func (h *Handle) AgeMS() int64 { return time.Since(h.CreatedAt).Milliseconds() }

// HandleRegistry maps handle IDs to Handles. Guarded by a single mutex —
// registrations and unregistrations are serialized, matching the
// shared-resource policy of a single async mutex around the registry.
type HandleRegistry struct {
	mu      sync.Mutex
	handles map[HandleID]*Handle
	nextID  HandleID
}

func NewHandleRegistry() *HandleRegistry {
	return &HandleRegistry{handles: make(map[HandleID]*Handle), nextID: 1}
}

func (r *HandleRegistry) Add(kind HandleKind, name string) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	h := &Handle{ID: id, Kind: kind, Name: name, CreatedAt: time.Now(), cancel: make(chan struct{})}
	r.handles[id] = h
	return h
}

// Remove deletes a handle by ID, returning true if it existed.
func (r *HandleRegistry) Remove(id HandleID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handles[id]; !ok {
		return false
	}
	delete(r.handles, id)
	return true
}

func (r *HandleRegistry) Get(id HandleID) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[id]
	return h, ok
}

func (r *HandleRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

func (r *HandleRegistry) IsEmpty() bool { return r.Count() == 0 }

// Summary renders a short diagnostic string of all active handles.
func (r *HandleRegistry) Summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.handles) == 0 {
		return "no active handles"
	}
	out := ""
	first := true
	for _, h := range r.handles {
		if !first {
			out += ", "
		}
		first = false
		out += h.Kind.String()
	}
	return out
}
