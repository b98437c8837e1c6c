package value

import "sort"

// Relic is the reference-counted, immutable string-keyed map backing the
// language's map literals. Like Array, every write-shaped operation returns
// a new Relic rather than mutating the receiver.
type Relic struct {
	entries map[string]Value
	order   []string
}

func NewRelic(entries map[string]Value) *Relic {
	order := make([]string, 0, len(entries))
	cp := make(map[string]Value, len(entries))
	for k, v := range entries {
		cp[k] = v
		order = append(order, k)
	}
	sort.Strings(order)
	return &Relic{entries: cp, order: order}
}

// NewRelicOrdered preserves caller-supplied key order (for map literals,
// where source order is observable via Keys()).
func NewRelicOrdered(keys []string, entries map[string]Value) *Relic {
	cp := make(map[string]Value, len(entries))
	order := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		order = append(order, k)
		cp[k] = entries[k]
	}
	return &Relic{entries: cp, order: order}
}

func (r *Relic) Len() int { return len(r.entries) }

func (r *Relic) Get(key string) (Value, bool) {
	v, ok := r.entries[key]
	return v, ok
}

func (r *Relic) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Set returns a new Relic with key bound to value, preserving existing key
// order and appending new keys at the end.
func (r *Relic) Set(key string, val Value) *Relic {
	entries := make(map[string]Value, len(r.entries)+1)
	for k, v := range r.entries {
		entries[k] = v
	}
	order := make([]string, len(r.order))
	copy(order, r.order)
	if _, exists := entries[key]; !exists {
		order = append(order, key)
	}
	entries[key] = val
	return &Relic{entries: entries, order: order}
}

func (r *Relic) ToMap() map[string]Value {
	out := make(map[string]Value, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return out
}
