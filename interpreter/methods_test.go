package interpreter

import (
	"testing"

	"github.com/BDNK1/flowlang/ast"
	"github.com/BDNK1/flowlang/ferr"
	"github.com/BDNK1/flowlang/value"
)

func arrLit(elems ...ast.Expression) ast.Expression {
	return ast.ArrayLiteral{Elements: elems}
}

func method(recv ast.Expression, name string, args ...ast.Expression) ast.Expression {
	return ast.MethodCallExpr{Receiver: recv, Method: name, Args: args}
}

func TestArrayLenPushPopDoNotMutateSource(t *testing.T) {
	e := newTestEvaluator(false)
	src := arrLit(numLit(1), numLit(2))

	lenV := evalExprOK(t, e, method(src, "len"))
	if lenV.Number() != 2 {
		t.Errorf("len = %v, want 2", lenV.Number())
	}

	pushed := evalExprOK(t, e, method(src, "push", numLit(3)))
	if pushed.Array().Len() != 3 {
		t.Errorf("pushed array len = %d, want 3", pushed.Array().Len())
	}

	popped := evalExprOK(t, e, method(src, "pop"))
	if popped.Array().Len() != 1 {
		t.Errorf("popped array len = %d, want 1", popped.Array().Len())
	}

	// Re-evaluating len on the same literal proves push didn't mutate
	// the underlying source the literal re-materializes from.
	lenAgain := evalExprOK(t, e, method(src, "len"))
	if lenAgain.Number() != 2 {
		t.Errorf("source len after push = %v, want unchanged 2", lenAgain.Number())
	}
}

func TestArraySliceConcatReverseJoin(t *testing.T) {
	e := newTestEvaluator(false)
	src := arrLit(numLit(1), numLit(2), numLit(3), numLit(4))

	sliced := evalExprOK(t, e, method(src, "slice", numLit(1), numLit(3)))
	if sliced.Array().Len() != 2 {
		t.Fatalf("slice(1,3) len = %d, want 2", sliced.Array().Len())
	}

	concatenated := evalExprOK(t, e, method(arrLit(numLit(1)), "concat", arrLit(numLit(2), numLit(3))))
	if concatenated.Array().Len() != 3 {
		t.Errorf("concat len = %d, want 3", concatenated.Array().Len())
	}

	reversed := evalExprOK(t, e, method(arrLit(numLit(1), numLit(2), numLit(3)), "reverse"))
	if reversed.Array().Items()[0].Number() != 3 {
		t.Errorf("reversed[0] = %v, want 3", reversed.Array().Items()[0].Number())
	}

	joined := evalExprOK(t, e, method(arrLit(strLit("a"), strLit("b")), "join", strLit("-")))
	if joined.String() != "a-b" {
		t.Errorf("join = %q, want a-b", joined.String())
	}
}

func TestArrayMapFilterReduceFindEverySome(t *testing.T) {
	e := newTestEvaluator(false)
	e.Env.Define("double", value.Sync(func(args []value.Value) (value.Value, error) {
		return value.Number(args[0].Number() * 2), nil
	}), true)
	e.Env.Define("isEven", value.Sync(func(args []value.Value) (value.Value, error) {
		return value.Bool(int64(args[0].Number())%2 == 0), nil
	}), true)
	e.Env.Define("sum", value.Sync(func(args []value.Value) (value.Value, error) {
		return value.Number(args[0].Number() + args[1].Number()), nil
	}), true)

	src := arrLit(numLit(1), numLit(2), numLit(3), numLit(4))

	mapped := evalExprOK(t, e, method(src, "map", ident("double")))
	if mapped.Array().Items()[0].Number() != 2 {
		t.Errorf("map[0] = %v, want 2", mapped.Array().Items()[0].Number())
	}

	filtered := evalExprOK(t, e, method(src, "filter", ident("isEven")))
	if filtered.Array().Len() != 2 {
		t.Errorf("filter len = %d, want 2", filtered.Array().Len())
	}

	reduced := evalExprOK(t, e, method(src, "reduce", ident("sum"), numLit(0)))
	if reduced.Number() != 10 {
		t.Errorf("reduce = %v, want 10", reduced.Number())
	}

	found := evalExprOK(t, e, method(src, "find", ident("isEven")))
	if found.Number() != 2 {
		t.Errorf("find = %v, want 2 (first even)", found.Number())
	}

	every := evalExprOK(t, e, method(src, "every", ident("isEven")))
	if every.Bool() {
		t.Error("every(isEven) on [1,2,3,4] should be false")
	}

	some := evalExprOK(t, e, method(src, "some", ident("isEven")))
	if !some.Bool() {
		t.Error("some(isEven) on [1,2,3,4] should be true")
	}
}

func TestArrayUnknownMethodRaisesType(t *testing.T) {
	e := newTestEvaluator(false)
	_, err := e.evalExpr(method(arrLit(numLit(1)), "bogus"))
	if err == nil || err.Kind != ferr.Type {
		t.Fatalf("unknown array method should raise Type, got %+v", err)
	}
}

func TestMapMethodDispatchesCallableMember(t *testing.T) {
	e := newTestEvaluator(false)
	m := ast.MapLiteral{Entries: []ast.MapEntry{
		{Key: "greet", Value: ast.LambdaExpr{
			Params: []ast.Param{{Name: "name"}},
			Body:   []ast.Statement{ast.ReturnStmt{Value: bin("+", strLit("hi "), ident("name"))}},
		}},
	}}
	v := evalExprOK(t, e, method(m, "greet", strLit("flow")))
	if v.String() != "hi flow" {
		t.Errorf("m.greet(\"flow\") = %q, want %q", v.String(), "hi flow")
	}
}

func TestMapMethodMissingMemberRaisesUndefined(t *testing.T) {
	e := newTestEvaluator(false)
	m := ast.MapLiteral{Entries: nil}
	_, err := e.evalExpr(method(m, "nope"))
	if err == nil || err.Kind != ferr.Undefined {
		t.Fatalf("missing member should raise Undefined, got %+v", err)
	}
}

func TestMapMethodNonCallableMemberRaisesType(t *testing.T) {
	e := newTestEvaluator(false)
	m := ast.MapLiteral{Entries: []ast.MapEntry{{Key: "x", Value: numLit(1)}}}
	_, err := e.evalExpr(method(m, "x"))
	if err == nil || err.Kind != ferr.Type {
		t.Fatalf("non-callable member accessed as method should raise Type, got %+v", err)
	}
}
