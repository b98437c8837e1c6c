package interpreter

import (
	"fmt"

	"testing"

	"github.com/BDNK1/flowlang/ast"
	"github.com/BDNK1/flowlang/ferr"
	"github.com/BDNK1/flowlang/value"
)

func TestExecuteFunctionUserFunction(t *testing.T) {
	e := newTestEvaluator(false)
	fn := &value.UserFunction{
		Params: []value.Param{{Name: "x"}},
		Body:   []ast.Statement{ast.ReturnStmt{Value: bin("*", ident("x"), numLit(2))}},
	}
	v, err := e.ExecuteFunction(value.Func(fn), []value.Value{value.Number(21)})
	if err != nil {
		t.Fatalf("ExecuteFunction raised: %v", err)
	}
	if v.Number() != 42 {
		t.Errorf("got %v, want 42", v.Number())
	}
}

func TestExecuteFunctionSyncNativeWrapsPlainError(t *testing.T) {
	e := newTestEvaluator(false)
	fn := value.Sync(func(args []value.Value) (value.Value, error) {
		return value.Null(), fmt.Errorf("plain failure")
	})
	_, err := e.ExecuteFunction(fn, nil)
	if err == nil || err.Kind != ferr.Runtime {
		t.Fatalf("plain errors should be wrapped as Runtime, got %+v", err)
	}
}

func TestExecuteFunctionNonCallableRaises(t *testing.T) {
	e := newTestEvaluator(false)
	_, err := e.ExecuteFunction(value.Number(5), nil)
	if err == nil {
		t.Fatal("calling a non-callable value should raise")
	}
}

func TestCallUserFunctionStrictModeRequiresParamType(t *testing.T) {
	e := newTestEvaluator(true)
	fn := &value.UserFunction{
		Params: []value.Param{{Name: "x"}},
		Body:   []ast.Statement{ast.ReturnStmt{Value: ident("x")}},
	}
	_, err := e.callUserFunction(fn, []value.Value{value.Number(1)}, 0, 0)
	if err == nil || err.Kind != ferr.Type {
		t.Fatalf("strict mode should require param type annotations, got %+v", err)
	}
}

func TestCallUserFunctionArgTypeMismatch(t *testing.T) {
	e := newTestEvaluator(false)
	fn := &value.UserFunction{
		Params: []value.Param{{Name: "x", Type: "number"}},
		Body:   []ast.Statement{ast.ReturnStmt{Value: ident("x")}},
	}
	_, err := e.callUserFunction(fn, []value.Value{value.Str("nope")}, 0, 0)
	if err == nil || err.Kind != ferr.Type {
		t.Fatalf("mismatched argument type should raise Type, got %+v", err)
	}
}

func TestCallUserFunctionReturnTypeMismatch(t *testing.T) {
	e := newTestEvaluator(false)
	fn := &value.UserFunction{
		ReturnType: "number",
		Body:       []ast.Statement{ast.ReturnStmt{Value: strLit("not a number")}},
	}
	_, err := e.callUserFunction(fn, nil, 0, 0)
	if err == nil || err.Kind != ferr.Type {
		t.Fatalf("mismatched return type should raise Type, got %+v", err)
	}
}

func TestCallUserFunctionMissingArgsBindNull(t *testing.T) {
	e := newTestEvaluator(false)
	fn := &value.UserFunction{
		Params: []value.Param{{Name: "x"}},
		Body:   []ast.Statement{ast.ReturnStmt{Value: ident("x")}},
	}
	v, err := e.callUserFunction(fn, nil, 0, 0)
	if err != nil {
		t.Fatalf("missing args should bind null, not raise: %v", err)
	}
	if !v.IsNull() {
		t.Errorf("got %v, want null", v)
	}
}

func TestCloneSharesCacheAndRuntimeButNotEnvironment(t *testing.T) {
	e := newTestEvaluator(false)
	e.Env.Define("x", value.Number(1), true)

	clone := e.Clone()
	if clone.Cache != e.Cache {
		t.Error("clone should share the module cache")
	}
	if clone.Env == e.Env {
		t.Error("clone should get its own environment instance")
	}
	v, ok := clone.Env.Get("x")
	if !ok || v.Number() != 1 {
		t.Errorf("clone should see the parent's visible bindings, got %v, %v", v, ok)
	}

	clone.Env.Define("y", value.Number(2), true)
	if _, ok := e.Env.Get("y"); ok {
		t.Error("mutations to the clone's environment must not leak back to the parent")
	}
}

func TestRunImportStdModule(t *testing.T) {
	e := newTestEvaluator(false)
	e.Loader = fakeLoader{"math": {"pi": value.Number(3)}}
	err := e.runImport(ast.Import{Module: "std:math", Alias: "math"})
	if err != nil {
		t.Fatalf("std import raised: %v", err)
	}
	v, ok := e.Env.Get("math")
	if !ok || v.Kind() != value.KindMap {
		t.Fatalf("math alias = %v, %v; want a bound map", v, ok)
	}
	pi, ok := v.Map().Get("pi")
	if !ok || pi.Number() != 3 {
		t.Errorf("math.pi = %v, %v; want 3, true", pi, ok)
	}
}

func TestRunImportUnknownStdModuleRaises(t *testing.T) {
	e := newTestEvaluator(false)
	e.Loader = fakeLoader{}
	err := e.runImport(ast.Import{Module: "std:nope"})
	if err == nil {
		t.Fatal("unknown std module should raise")
	}
}

func TestRunImportSelectiveBindsOnlyNamedExports(t *testing.T) {
	e := newTestEvaluator(false)
	e.Loader = fakeLoader{"strs": {"upper": value.Number(1), "lower": value.Number(2)}}
	err := e.runImport(ast.Import{
		Module:    "std:strs",
		Selective: true,
		Names:     []ast.SelectiveName{{Name: "upper", Alias: "up"}},
	})
	if err != nil {
		t.Fatalf("selective import raised: %v", err)
	}
	if _, ok := e.Env.Get("strs"); ok {
		t.Error("selective import should not bind the whole-module alias")
	}
	v, ok := e.Env.Get("up")
	if !ok || v.Number() != 1 {
		t.Errorf("up = %v, %v; want 1, true", v, ok)
	}
}

func TestRunImportCircularDependencyRaises(t *testing.T) {
	e := newTestEvaluator(false)
	e.CurrentFile = "/a.flow"
	e.ImportStack = []string{"/b.flow"}

	oldLoad := loadProgram
	defer func() { loadProgram = oldLoad }()
	loadProgram = func(path string) (*ast.Program, error) {
		t.Fatalf("loadProgram should not be reached for a circular import, got path %q", path)
		return nil, nil
	}

	err := e.runImport(ast.Import{Module: "/b.flow"})
	if err == nil {
		t.Fatal("importing a module already on the import stack should raise")
	}
}

func TestRunImportLoadsAndCachesModule(t *testing.T) {
	e := newTestEvaluator(false)
	e.CurrentFile = "/root/a.flow"

	calls := 0
	oldLoad := loadProgram
	defer func() { loadProgram = oldLoad }()
	loadProgram = func(path string) (*ast.Program, error) {
		calls++
		return &ast.Program{Statements: []ast.Statement{
			ast.LetStmt{Name: "answer", Mutable: false, Value: numLit(42), Exported: true},
		}}, nil
	}

	imp := ast.Import{Module: "b.flow", Alias: "b"}
	if err := e.runImport(imp); err != nil {
		t.Fatalf("first import raised: %v", err)
	}
	if err := e.runImport(imp); err != nil {
		t.Fatalf("second import raised: %v", err)
	}
	if calls != 1 {
		t.Errorf("loadProgram called %d times, want 1 (second import should hit the cache)", calls)
	}

	v, ok := e.Env.Get("b")
	if !ok || v.Kind() != value.KindMap {
		t.Fatalf("b alias = %v, %v; want a bound map", v, ok)
	}
	answer, ok := v.Map().Get("answer")
	if !ok || answer.Number() != 42 {
		t.Errorf("b.answer = %v, %v; want 42, true", answer, ok)
	}
}

func TestRunImportHidesUnexportedGlobals(t *testing.T) {
	e := newTestEvaluator(false)
	e.CurrentFile = "/root/a.flow"

	oldLoad := loadProgram
	defer func() { loadProgram = oldLoad }()
	loadProgram = func(path string) (*ast.Program, error) {
		return &ast.Program{Statements: []ast.Statement{
			ast.LetStmt{Name: "secret", Mutable: false, Value: numLit(1), Exported: false},
			ast.LetStmt{Name: "answer", Mutable: false, Value: numLit(42), Exported: true},
		}}, nil
	}

	imp := ast.Import{Module: "b.flow", Alias: "b"}
	if err := e.runImport(imp); err != nil {
		t.Fatalf("import raised: %v", err)
	}

	v, ok := e.Env.Get("b")
	if !ok || v.Kind() != value.KindMap {
		t.Fatalf("b alias = %v, %v; want a bound map", v, ok)
	}
	if _, ok := v.Map().Get("secret"); ok {
		t.Error("unexported global should not be visible to importers")
	}
	if answer, ok := v.Map().Get("answer"); !ok || answer.Number() != 42 {
		t.Errorf("b.answer = %v, %v; want 42, true", answer, ok)
	}
}

func TestRunImportSelectiveFailsOnUnexportedName(t *testing.T) {
	e := newTestEvaluator(false)
	e.CurrentFile = "/root/a.flow"

	oldLoad := loadProgram
	defer func() { loadProgram = oldLoad }()
	loadProgram = func(path string) (*ast.Program, error) {
		return &ast.Program{Statements: []ast.Statement{
			ast.LetStmt{Name: "secret", Mutable: false, Value: numLit(1), Exported: false},
		}}, nil
	}

	err := e.runImport(ast.Import{
		Module:    "b.flow",
		Selective: true,
		Names:     []ast.SelectiveName{{Name: "secret"}},
	})
	if err == nil {
		t.Fatal("selective import of an unexported name should raise")
	}
	if _, ok := e.Env.Get("secret"); ok {
		t.Error("a failed selective import should not bind anything")
	}
}

type fakeLoader map[string]map[string]value.Value

func (f fakeLoader) LoadModule(name string) (map[string]value.Value, bool) {
	m, ok := f[name]
	return m, ok
}
