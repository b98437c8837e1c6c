// Package interpreter implements the tree-walking evaluator: statement and
// expression evaluation, scoped environments, user-defined functions, the
// attempt/rescue/ward error-handling sublanguage, and the module
// cache/import machinery. It is the one component the distilled
// specification asks to be hand-built rather than delegated to an embedded
// scripting engine.
package interpreter

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/BDNK1/flowlang/ast"
	"github.com/BDNK1/flowlang/environment"
	"github.com/BDNK1/flowlang/ferr"
	"github.com/BDNK1/flowlang/value"
)

// ModuleLoader resolves a standard-library module name (std: scheme) to its
// exported member map. Implemented by package stdlib; declared here as an
// interface so interpreter has no import-cycle dependency on stdlib.
type ModuleLoader interface {
	LoadModule(name string) (map[string]value.Value, bool)
}

// RuntimeHandle is the subset of *runtime.Runtime the evaluator needs to
// expose to async natives (timer.*, web.* builtins) without importing the
// runtime package.
type RuntimeHandle interface {
	value.AsyncContext
}

// ModuleCache is shared, read-only after first population, across every
// Evaluator clone spawned for concurrent web handlers — see the Design
// Notes on interpreter cloning and DESIGN.md's resolution of the
// module-cache sharing open question.
type ModuleCache struct {
	mu      sync.RWMutex
	modules map[string]map[string]value.Value
}

func NewModuleCache() *ModuleCache {
	return &ModuleCache{modules: make(map[string]map[string]value.Value)}
}

func (c *ModuleCache) get(path string) (map[string]value.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.modules[path]
	return m, ok
}

func (c *ModuleCache) put(path string, exports map[string]value.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modules[path] = exports
}

// Evaluator walks one module's AST. Shared state (the module cache and the
// runtime handle) is held by reference; per-invocation state (environment,
// current file, import stack, strict mode) belongs to this instance alone
// and is what gets cloned per concurrent web handler.
type Evaluator struct {
	Env         *environment.Environment
	Cache       *ModuleCache
	Loader      ModuleLoader
	Runtime     RuntimeHandle
	Log         *slog.Logger
	CurrentFile string
	ImportStack []string
	StrictMode  bool
	Timers      TimerSource

	// rescueBindings holds the error currently bound by `as name` in the
	// innermost active rescue clause, consulted by `rebound`.
	rescueBindings map[string]*ferr.FlowError
}

// New constructs a fresh top-level Evaluator for a module.
func New(loader ModuleLoader, rt RuntimeHandle, log *slog.Logger, strict bool) *Evaluator {
	return &Evaluator{
		Env:            environment.New(),
		Cache:          NewModuleCache(),
		Loader:         loader,
		Runtime:        rt,
		Log:            log,
		StrictMode:     strict,
		rescueBindings: make(map[string]*ferr.FlowError),
	}
}

// Clone produces a per-invocation Evaluator for a concurrent web handler: it
// shares the module cache and runtime but gets its own environment stack
// seeded from the current one's visible bindings, per the concurrency
// model's cloning rule.
func (e *Evaluator) Clone() *Evaluator {
	return &Evaluator{
		Env:            environment.FromVisible(e.Env.GetAllVisible()),
		Cache:          e.Cache,
		Loader:         e.Loader,
		Runtime:        e.Runtime,
		Log:            e.Log,
		CurrentFile:    e.CurrentFile,
		StrictMode:     e.StrictMode,
		Timers:         e.Timers,
		rescueBindings: make(map[string]*ferr.FlowError),
	}
}

// RunProgram evaluates a module's imports then its top-level statements in
// the current environment's global scope.
func (e *Evaluator) RunProgram(p *ast.Program) *ferr.FlowError {
	for _, imp := range p.Imports {
		if err := e.runImport(imp); err != nil {
			return err
		}
	}
	res := e.EvalBlock(p.Statements)
	if res.IsRaised() {
		return res.Err
	}
	return nil
}

// ExecuteFunction is the entry point external callers (the timer drain and
// web-handler workers) use to invoke a callback. It is a plain function
// call — it never reenters the event-loop drain loop, per the Design
// Notes' callback-dispatch-without-reentry rule. Extra arguments are
// ignored; missing arguments bind to null. It returns the value produced by
// return/shatter, or null if control falls through.
func (e *Evaluator) ExecuteFunction(fn value.Value, args []value.Value) (value.Value, *ferr.FlowError) {
	switch fn.Kind() {
	case value.KindUserFunction:
		return e.callUserFunction(fn.UserFunc(), args, 0, 0)
	case value.KindSyncNative:
		v, err := fn.SyncFn()(args)
		if err != nil {
			if fe, ok := err.(*ferr.FlowError); ok {
				return value.Null(), fe
			}
			return value.Null(), ferr.Runtimef(0, 0, "%s", err.Error())
		}
		return v, nil
	case value.KindAsyncNative:
		v, err := fn.AsyncFn()(args, e.Runtime)
		if err != nil {
			if fe, ok := err.(*ferr.FlowError); ok {
				return value.Null(), fe
			}
			return value.Null(), ferr.Runtimef(0, 0, "%s", err.Error())
		}
		return v, nil
	default:
		return value.Null(), ferr.Runtimef(0, 0, "value is not callable")
	}
}

func (e *Evaluator) callUserFunction(fn *value.UserFunction, args []value.Value, line, col int) (value.Value, *ferr.FlowError) {
	closureVars, _ := fn.Closure.(map[string]value.Value)
	callEnv := environment.FromVisible(closureVars)
	callEnv.PushScope()

	for i, p := range fn.Params {
		var av value.Value
		if i < len(args) {
			av = args[i]
		} else {
			av = value.Null()
		}
		if e.StrictMode && p.Type == "" {
			return value.Null(), ferr.Typef(line, col, "parameter %q requires a type annotation in strict mode", p.Name)
		}
		if p.Type != "" && !value.CheckType(av, p.Type) {
			return value.Null(), ferr.Typef(line, col, "argument %q expected type %s, got %s", p.Name, p.Type, av.Kind())
		}
		callEnv.Define(p.Name, av, true)
	}

	body, _ := fn.Body.([]ast.Statement)

	savedEnv := e.Env
	e.Env = callEnv
	res := e.EvalBlock(body)
	e.Env = savedEnv

	if res.IsRaised() {
		return value.Null(), res.Err
	}

	var result value.Value
	if res.IsReturned() {
		result = res.Value
	} else {
		result = value.Null()
	}

	if e.StrictMode && fn.ReturnType == "" {
		return value.Null(), ferr.Typef(line, col, "function %q requires a return type annotation in strict mode", fn.Name)
	}
	if fn.ReturnType != "" && !value.CheckType(result, fn.ReturnType) {
		return value.Null(), ferr.Typef(line, col, "function %q expected return type %s, got %s", fn.Name, fn.ReturnType, result.Kind())
	}
	return result, nil
}

// --- imports ---

func (e *Evaluator) runImport(imp ast.Import) *ferr.FlowError {
	if len(imp.Module) > 4 && imp.Module[:4] == "std:" {
		name := imp.Module[4:]
		exports, ok := e.Loader.LoadModule(name)
		if !ok {
			return ferr.Runtimef(imp.Line, 0, "unknown standard library module %q", name)
		}
		return e.bindImport(imp, exports)
	}

	resolved := e.resolvePath(imp)
	canonical, err := filepath.Abs(resolved)
	if err != nil {
		canonical = resolved
	}

	for _, onStack := range e.ImportStack {
		if onStack == canonical {
			chain := append(append([]string{}, e.ImportStack...), canonical)
			return ferr.New(ferr.Runtime, fmt.Sprintf("circular import detected: %v", chain), imp.Line, 0)
		}
	}

	if cached, ok := e.Cache.get(canonical); ok {
		return e.bindImport(imp, cached)
	}

	prog, rerr := loadProgram(canonical)
	if rerr != nil {
		return ferr.New(ferr.Runtime, rerr.Error(), imp.Line, 0)
	}

	child := &Evaluator{
		Env:            environment.New(),
		Cache:          e.Cache,
		Loader:         e.Loader,
		Runtime:        e.Runtime,
		Log:            e.Log,
		CurrentFile:    canonical,
		ImportStack:    append(append([]string{}, e.ImportStack...), canonical),
		StrictMode:     e.StrictMode,
		rescueBindings: make(map[string]*ferr.FlowError),
	}

	if err := child.RunProgram(prog); err != nil {
		return err
	}

	exports := child.Env.GetAllPublic()
	e.Cache.put(canonical, exports)
	return e.bindImport(imp, exports)
}

// bindImport binds a module's export map per the two import forms in
// §4.1.2. A selective import of a name absent from the export map fails —
// the name was either never exported or never defined.
func (e *Evaluator) bindImport(imp ast.Import, exports map[string]value.Value) *ferr.FlowError {
	if !imp.Selective {
		alias := imp.Alias
		if alias == "" {
			base := filepath.Base(imp.Module)
			alias = base[:len(base)-len(filepath.Ext(base))]
		}
		e.Env.Define(alias, value.MapValue(value.NewRelic(exports)), false)
		return nil
	}
	for _, n := range imp.Names {
		v, ok := exports[n.Name]
		if !ok {
			return ferr.Runtimef(imp.Line, 0, "%q is not exported by %q", n.Name, imp.Module)
		}
		alias := n.Alias
		if alias == "" {
			alias = n.Name
		}
		e.Env.Define(alias, v, true)
	}
	return nil
}

func (e *Evaluator) resolvePath(imp ast.Import) string {
	if filepath.IsAbs(imp.Module) {
		return imp.Module
	}
	dir := filepath.Dir(e.CurrentFile)
	return filepath.Join(dir, imp.Module)
}

// loadProgram is the seam to the external parser/AST-cache collaborators
// (out of scope here): it reads, parses (or loads from cache), and returns
// the Program for a resolved module path. A real deployment wires this to
// the parser and astcache packages; tests supply their own Program values
// directly to RunProgram and never reach this path.
var loadProgram = func(path string) (*ast.Program, error) {
	return nil, fmt.Errorf("no parser wired: cannot load module %q", path)
}
