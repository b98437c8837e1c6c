package interpreter

import (
	"github.com/BDNK1/flowlang/ast"
	"github.com/BDNK1/flowlang/ferr"
	"github.com/BDNK1/flowlang/value"
)

// evalMethodCall dispatches `.method(args)` calls on arrays and maps. Array
// methods are the fixed built-in set (len, push, pop, slice, concat, map,
// filter, reduce, find, every, some, reverse, join), all non-mutating. Map
// method calls look up the key as a callable member, the "module as map"
// pattern used for both std: module tables and plain map literals.
func (e *Evaluator) evalMethodCall(n ast.MethodCallExpr) (value.Value, *ferr.FlowError) {
	recv, err := e.evalExpr(n.Receiver)
	if err != nil {
		return value.Null(), err
	}
	args, err := e.evalArgs(n.Args)
	if err != nil {
		return value.Null(), err
	}

	switch recv.Kind() {
	case value.KindArray:
		return e.arrayMethod(n, recv.Array(), args)
	case value.KindMap:
		return e.mapMethod(n, recv.Map(), args)
	default:
		return value.Null(), ferr.Typef(n.Line, 0, "method %q is not defined on %s", n.Method, recv.Kind())
	}
}

func (e *Evaluator) callback(n ast.MethodCallExpr, fn value.Value, args []value.Value) (value.Value, *ferr.FlowError) {
	if !fn.IsCallable() {
		return value.Null(), ferr.Typef(n.Line, 0, "argument to %q must be callable", n.Method)
	}
	return e.ExecuteFunction(fn, args)
}

func (e *Evaluator) arrayMethod(n ast.MethodCallExpr, a *value.Array, args []value.Value) (value.Value, *ferr.FlowError) {
	switch n.Method {
	case "len":
		return value.Number(float64(a.Len())), nil
	case "push":
		if len(args) < 1 {
			return value.Null(), ferr.Runtimef(n.Line, 0, "push requires one argument")
		}
		return value.ArrayValue(a.Push(args[0])), nil
	case "pop":
		return value.ArrayValue(a.Pop()), nil
	case "slice":
		if len(args) < 2 {
			return value.Null(), ferr.Runtimef(n.Line, 0, "slice requires two arguments")
		}
		return value.ArrayValue(a.Slice(int(args[0].Number()), int(args[1].Number()))), nil
	case "concat":
		if len(args) < 1 || args[0].Kind() != value.KindArray {
			return value.Null(), ferr.Typef(n.Line, 0, "concat requires an array argument")
		}
		return value.ArrayValue(a.Concat(args[0].Array())), nil
	case "reverse":
		return value.ArrayValue(a.Reverse()), nil
	case "join":
		sep := ""
		if len(args) > 0 {
			sep = value.ToDisplayString(args[0])
		}
		return value.Str(a.Join(sep)), nil
	case "map":
		if len(args) < 1 {
			return value.Null(), ferr.Runtimef(n.Line, 0, "map requires a callback")
		}
		out := make([]value.Value, a.Len())
		for i, item := range a.Items() {
			v, err := e.callback(n, args[0], []value.Value{item})
			if err != nil {
				return value.Null(), err
			}
			out[i] = v
		}
		return value.ArrayValue(value.NewArray(out)), nil
	case "filter":
		if len(args) < 1 {
			return value.Null(), ferr.Runtimef(n.Line, 0, "filter requires a callback")
		}
		var out []value.Value
		for _, item := range a.Items() {
			v, err := e.callback(n, args[0], []value.Value{item})
			if err != nil {
				return value.Null(), err
			}
			if v.Truthy() {
				out = append(out, item)
			}
		}
		return value.ArrayValue(value.NewArray(out)), nil
	case "reduce":
		if len(args) < 2 {
			return value.Null(), ferr.Runtimef(n.Line, 0, "reduce requires a callback and an initial value")
		}
		acc := args[1]
		for _, item := range a.Items() {
			v, err := e.callback(n, args[0], []value.Value{acc, item})
			if err != nil {
				return value.Null(), err
			}
			acc = v
		}
		return acc, nil
	case "find":
		if len(args) < 1 {
			return value.Null(), ferr.Runtimef(n.Line, 0, "find requires a callback")
		}
		for _, item := range a.Items() {
			v, err := e.callback(n, args[0], []value.Value{item})
			if err != nil {
				return value.Null(), err
			}
			if v.Truthy() {
				return item, nil
			}
		}
		return value.Null(), nil
	case "every":
		if len(args) < 1 {
			return value.Null(), ferr.Runtimef(n.Line, 0, "every requires a callback")
		}
		for _, item := range a.Items() {
			v, err := e.callback(n, args[0], []value.Value{item})
			if err != nil {
				return value.Null(), err
			}
			if !v.Truthy() {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	case "some":
		if len(args) < 1 {
			return value.Null(), ferr.Runtimef(n.Line, 0, "some requires a callback")
		}
		for _, item := range a.Items() {
			v, err := e.callback(n, args[0], []value.Value{item})
			if err != nil {
				return value.Null(), err
			}
			if v.Truthy() {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	default:
		return value.Null(), ferr.Typef(n.Line, 0, "array has no method %q", n.Method)
	}
}

// mapMethod looks up Method as a key; if the value found is callable it is
// invoked with args, matching the "module as map" pattern so std: module
// tables and ordinary map literals both support `m.name(args)`.
func (e *Evaluator) mapMethod(n ast.MethodCallExpr, m *value.Relic, args []value.Value) (value.Value, *ferr.FlowError) {
	v, ok := m.Get(n.Method)
	if !ok {
		return value.Null(), ferr.Undefinedf(n.Line, 0, "map has no member %q", n.Method)
	}
	if !v.IsCallable() {
		return value.Null(), ferr.Typef(n.Line, 0, "member %q is not a function", n.Method)
	}
	return e.ExecuteFunction(v, args)
}
