package interpreter

import (
	"github.com/BDNK1/flowlang/ast"
	"github.com/BDNK1/flowlang/ferr"
	"github.com/BDNK1/flowlang/value"
)

func (e *Evaluator) evalExpr(expr ast.Expression) (value.Value, *ferr.FlowError) {
	switch n := expr.(type) {
	case ast.Literal:
		return e.evalLiteral(n), nil
	case ast.Ident:
		v, ok := e.Env.Get(n.Name)
		if !ok {
			return value.Null(), ferr.Undefinedf(n.Line, 0, "you speak the name %q but no binding responds", n.Name)
		}
		return v, nil
	case ast.BinaryExpr:
		return e.evalBinary(n)
	case ast.UnaryExpr:
		return e.evalUnary(n)
	case ast.CallExpr:
		return e.evalCall(n)
	case ast.MethodCallExpr:
		return e.evalMethodCall(n)
	case ast.IndexExpr:
		return e.evalIndex(n)
	case ast.PropertyExpr:
		return e.evalProperty(n)
	case ast.ArrayLiteral:
		return e.evalArrayLiteral(n)
	case ast.MapLiteral:
		return e.evalMapLiteral(n)
	case ast.SigilLiteral:
		return e.evalSigilLiteral(n)
	case ast.LambdaExpr:
		return e.evalLambda(n), nil
	case ast.ComboChainExpr:
		return e.evalComboChain(n)
	case ast.AwaitExpr:
		return e.evalExpr(n.Value)
	default:
		return value.Null(), ferr.Runtimef(expr.NodeLine(), 0, "unsupported expression node %T", expr)
	}
}

func (e *Evaluator) evalLiteral(n ast.Literal) value.Value {
	switch n.Kind {
	case ast.LitNumber:
		return value.Number(n.Num)
	case ast.LitString:
		return value.Str(n.Str)
	case ast.LitBool:
		return value.Bool(n.Bool)
	default:
		return value.Null()
	}
}

func (e *Evaluator) evalUnary(n ast.UnaryExpr) (value.Value, *ferr.FlowError) {
	v, err := e.evalExpr(n.Operand)
	if err != nil {
		return value.Null(), err
	}
	switch n.Op {
	case "-":
		if v.Kind() != value.KindNumber {
			return value.Null(), ferr.Typef(n.Line, 0, "unary - requires a number")
		}
		return value.Number(-v.Number()), nil
	case "!":
		return value.Bool(!v.Truthy()), nil
	default:
		return value.Null(), ferr.Runtimef(n.Line, 0, "unknown unary operator %q", n.Op)
	}
}

func (e *Evaluator) evalBinary(n ast.BinaryExpr) (value.Value, *ferr.FlowError) {
	switch n.Op {
	case "both!":
		l, err := e.evalExpr(n.Left)
		if err != nil {
			return value.Null(), err
		}
		if !l.Truthy() {
			return value.Bool(false), nil
		}
		r, err := e.evalExpr(n.Right)
		if err != nil {
			return value.Null(), err
		}
		return value.Bool(r.Truthy()), nil
	case "either!":
		l, err := e.evalExpr(n.Left)
		if err != nil {
			return value.Null(), err
		}
		if l.Truthy() {
			return value.Bool(true), nil
		}
		r, err := e.evalExpr(n.Right)
		if err != nil {
			return value.Null(), err
		}
		return value.Bool(r.Truthy()), nil
	}

	l, err := e.evalExpr(n.Left)
	if err != nil {
		return value.Null(), err
	}
	r, err := e.evalExpr(n.Right)
	if err != nil {
		return value.Null(), err
	}

	switch n.Op {
	case "+":
		return evalAdd(l, r)
	case "-":
		return numOp(n, l, r, func(a, b float64) float64 { return a - b })
	case "*":
		return numOp(n, l, r, func(a, b float64) float64 { return a * b })
	case "/":
		if l.Kind() != value.KindNumber || r.Kind() != value.KindNumber {
			return value.Null(), ferr.Typef(n.Line, 0, "/ requires two numbers")
		}
		if r.Number() == 0 {
			return value.Null(), ferr.DivByZero(n.Line, 0)
		}
		return value.Number(l.Number() / r.Number()), nil
	case "%":
		if l.Kind() != value.KindNumber || r.Kind() != value.KindNumber {
			return value.Null(), ferr.Typef(n.Line, 0, "%% requires two numbers")
		}
		if r.Number() == 0 {
			return value.Null(), ferr.DivByZero(n.Line, 0)
		}
		return value.Number(float64(int64(l.Number()) % int64(r.Number()))), nil
	case "<", ">", "<=", ">=":
		if l.Kind() != value.KindNumber || r.Kind() != value.KindNumber {
			return value.Null(), ferr.Typef(n.Line, 0, "comparison requires two numbers")
		}
		return value.Bool(compare(n.Op, l.Number(), r.Number())), nil
	case "is~":
		return value.Bool(value.Equal(l, r)), nil
	case "not~":
		return value.Bool(!value.Equal(l, r)), nil
	default:
		return value.Null(), ferr.Runtimef(n.Line, 0, "unknown binary operator %q", n.Op)
	}
}

func evalAdd(l, r value.Value) (value.Value, *ferr.FlowError) {
	if l.Kind() == value.KindString || r.Kind() == value.KindString {
		return value.Str(value.ToDisplayString(l) + value.ToDisplayString(r)), nil
	}
	if l.Kind() == value.KindNumber && r.Kind() == value.KindNumber {
		return value.Number(l.Number() + r.Number()), nil
	}
	return value.Null(), ferr.Typef(0, 0, "+ requires two numbers or a string operand")
}

func numOp(n ast.BinaryExpr, l, r value.Value, f func(a, b float64) float64) (value.Value, *ferr.FlowError) {
	if l.Kind() != value.KindNumber || r.Kind() != value.KindNumber {
		return value.Null(), ferr.Typef(n.Line, 0, "%s requires two numbers", n.Op)
	}
	return value.Number(f(l.Number(), r.Number())), nil
}

func compare(op string, a, b float64) bool {
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	}
	return false
}

func (e *Evaluator) evalCall(n ast.CallExpr) (value.Value, *ferr.FlowError) {
	callee, err := e.evalExpr(n.Callee)
	if err != nil {
		return value.Null(), err
	}
	args, err := e.evalArgs(n.Args)
	if err != nil {
		return value.Null(), err
	}
	return e.ExecuteFunction(callee, args)
}

func (e *Evaluator) evalArgs(exprs []ast.Expression) ([]value.Value, *ferr.FlowError) {
	args := make([]value.Value, len(exprs))
	for i, a := range exprs {
		v, err := e.evalExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (e *Evaluator) evalIndex(n ast.IndexExpr) (value.Value, *ferr.FlowError) {
	recv, err := e.evalExpr(n.Receiver)
	if err != nil {
		return value.Null(), err
	}
	idx, err := e.evalExpr(n.Index)
	if err != nil {
		return value.Null(), err
	}
	switch recv.Kind() {
	case value.KindArray:
		if idx.Kind() != value.KindNumber {
			return value.Null(), ferr.Typef(n.Line, 0, "array index must be a number")
		}
		v, ok := recv.Array().At(int(idx.Number()))
		if !ok {
			return value.Null(), ferr.New(ferr.OutOfRange, "array index out of range", n.Line, 0)
		}
		return v, nil
	case value.KindMap:
		if idx.Kind() != value.KindString {
			return value.Null(), ferr.Typef(n.Line, 0, "map index must be a string")
		}
		v, ok := recv.Map().Get(idx.String())
		if !ok {
			return value.Null(), nil
		}
		return v, nil
	default:
		return value.Null(), ferr.New(ferr.VoidTear, "cannot index a non-container value", n.Line, 0)
	}
}

func (e *Evaluator) evalProperty(n ast.PropertyExpr) (value.Value, *ferr.FlowError) {
	recv, err := e.evalExpr(n.Receiver)
	if err != nil {
		return value.Null(), err
	}
	if recv.Kind() != value.KindMap {
		return value.Null(), ferr.New(ferr.VoidTear, "cannot access property of a non-map value", n.Line, 0)
	}
	v, ok := recv.Map().Get(n.Name)
	if !ok {
		return value.Null(), nil
	}
	return v, nil
}

func (e *Evaluator) evalArrayLiteral(n ast.ArrayLiteral) (value.Value, *ferr.FlowError) {
	items := make([]value.Value, len(n.Elements))
	for i, el := range n.Elements {
		v, err := e.evalExpr(el)
		if err != nil {
			return value.Null(), err
		}
		items[i] = v
	}
	return value.ArrayValue(value.NewArray(items)), nil
}

func (e *Evaluator) evalMapLiteral(n ast.MapLiteral) (value.Value, *ferr.FlowError) {
	keys := make([]string, len(n.Entries))
	entries := make(map[string]value.Value, len(n.Entries))
	for i, ent := range n.Entries {
		v, err := e.evalExpr(ent.Value)
		if err != nil {
			return value.Null(), err
		}
		keys[i] = ent.Key
		entries[ent.Key] = v
	}
	return value.MapValue(value.NewRelicOrdered(keys, entries)), nil
}

// evalSigilLiteral treats a named sigil record as a map with a reserved
// "__sigil" key carrying the constructor name; nothing in the evaluator
// reads that key, and scripts interact with its fields exactly like a plain
// map.
func (e *Evaluator) evalSigilLiteral(n ast.SigilLiteral) (value.Value, *ferr.FlowError) {
	keys := make([]string, 0, len(n.Entries)+1)
	entries := make(map[string]value.Value, len(n.Entries)+1)
	keys = append(keys, "__sigil")
	entries["__sigil"] = value.Str(n.Name)
	for _, ent := range n.Entries {
		v, err := e.evalExpr(ent.Value)
		if err != nil {
			return value.Null(), err
		}
		keys = append(keys, ent.Key)
		entries[ent.Key] = v
	}
	return value.MapValue(value.NewRelicOrdered(keys, entries)), nil
}

func (e *Evaluator) evalLambda(n ast.LambdaExpr) value.Value {
	params := make([]value.Param, len(n.Params))
	for i, p := range n.Params {
		params[i] = value.Param{Name: p.Name, Type: p.Type}
	}
	fn := &value.UserFunction{
		Params:     params,
		ReturnType: n.ReturnType,
		Body:       n.Body,
		Closure:    e.Env.GetAllVisible(),
		Async:      n.Async,
	}
	return value.Func(fn)
}

// evalComboChain threads Source through each step's call left-to-right:
// step(prev, ...args).
func (e *Evaluator) evalComboChain(n ast.ComboChainExpr) (value.Value, *ferr.FlowError) {
	cur, err := e.evalExpr(n.Source)
	if err != nil {
		return value.Null(), err
	}
	for _, step := range n.Steps {
		callee, err := e.evalExpr(step.Callee)
		if err != nil {
			return value.Null(), err
		}
		args, err := e.evalArgs(step.Args)
		if err != nil {
			return value.Null(), err
		}
		full := append([]value.Value{cur}, args...)
		cur, err = e.ExecuteFunction(callee, full)
		if err != nil {
			return value.Null(), err
		}
	}
	return cur, nil
}
