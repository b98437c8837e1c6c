// Package environment implements FlowLang's lexical scope stack: an ordered
// list of scopes where each binding carries a mutability flag and an
// export flag, matching the Rust original's Environment one-to-one.
package environment

import (
	"fmt"

	"github.com/BDNK1/flowlang/value"
)

type binding struct {
	value    value.Value
	mutable  bool
	exported bool
}

// Environment is the stack of lexical scopes a single evaluator instance
// owns exclusively. Scope 0 is always the module's global scope and is
// never popped.
type Environment struct {
	scopes []map[string]*binding
}

func New() *Environment {
	return &Environment{scopes: []map[string]*binding{make(map[string]*binding)}}
}

func (e *Environment) PushScope() {
	e.scopes = append(e.scopes, make(map[string]*binding))
}

// PopScope is a no-op at depth 1 — the scope stack never shrinks below the
// module global scope.
func (e *Environment) PopScope() {
	if len(e.scopes) > 1 {
		e.scopes = e.scopes[:len(e.scopes)-1]
	}
}

func (e *Environment) ScopeDepth() int { return len(e.scopes) - 1 }

// Define binds name in the innermost scope. mutable distinguishes let
// (true) from seal (false).
func (e *Environment) Define(name string, v value.Value, mutable bool) {
	e.DefineExported(name, v, mutable, false)
}

func (e *Environment) DefineExported(name string, v value.Value, mutable, exported bool) {
	e.scopes[len(e.scopes)-1][name] = &binding{value: v, mutable: mutable, exported: exported}
}

// Get walks scopes innermost-to-outermost.
func (e *Environment) Get(name string) (value.Value, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if b, ok := e.scopes[i][name]; ok {
			return b.value, true
		}
	}
	return value.Value{}, false
}

// Set walks scopes outward from the innermost, reassigning the first
// binding found. It fails if no binding exists, or if the found binding is
// sealed (immutable).
func (e *Environment) Set(name string, v value.Value) error {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if b, ok := e.scopes[i][name]; ok {
			if !b.mutable {
				return fmt.Errorf("cannot reassign sealed binding %q", name)
			}
			b.value = v
			return nil
		}
	}
	return fmt.Errorf("undefined name %q", name)
}

// GetAllPublic returns every exported binding in the global scope — what an
// importer sees from a whole-module or selective import.
func (e *Environment) GetAllPublic() map[string]value.Value {
	out := make(map[string]value.Value)
	for name, b := range e.scopes[0] {
		if b.exported {
			out[name] = b.value
		}
	}
	return out
}

// GetAllVisible flattens every scope, outer to inner, so inner bindings
// shadow outer ones. Used to snapshot the bindings a closure captures at
// declaration time.
func (e *Environment) GetAllVisible() map[string]value.Value {
	out := make(map[string]value.Value)
	for _, scope := range e.scopes {
		for name, b := range scope {
			out[name] = b.value
		}
	}
	return out
}

// FromVisible builds a fresh single-scope Environment seeded with the given
// bindings, all mutable and unexported. Used to materialize a closure's
// captured environment into a callable frame.
func FromVisible(vars map[string]value.Value) *Environment {
	e := New()
	for name, v := range vars {
		e.Define(name, v, true)
	}
	return e
}
