package ast

import (
	gojson "github.com/goccy/go-json"
)

// MarshalJSON and UnmarshalJSON give Program a real round-trip through JSON
// even though Statement and Expression are interfaces: goccy/go-json (like
// encoding/json) can decode into a concrete struct or into `any`, but never
// into an arbitrary non-empty interface, so the default struct tags alone
// cannot reconstruct a Statement/Expression tree. Every node is instead
// encoded as a tagged wire map ({"type": "...", ...fields}) and decoded back
// through a type switch on that tag — the same job the Rust original's
// #[derive(Serialize, Deserialize)] enum gets for free, done by hand here
// since Go has no enum-with-payload equivalent.

func (p Program) MarshalJSON() ([]byte, error) {
	stmts := make([]map[string]any, len(p.Statements))
	for i, s := range p.Statements {
		stmts[i] = stmtWire(s)
	}
	return gojson.Marshal(map[string]any{
		"imports":    p.Imports,
		"statements": stmts,
	})
}

func (p *Program) UnmarshalJSON(data []byte) error {
	var raw struct {
		Imports    []Import         `json:"imports"`
		Statements []map[string]any `json:"statements"`
	}
	if err := gojson.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Imports = raw.Imports
	p.Statements = make([]Statement, len(raw.Statements))
	for i, m := range raw.Statements {
		s, err := wireStmt(m)
		if err != nil {
			return err
		}
		p.Statements[i] = s
	}
	return nil
}

// --- generic wire helpers ---

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	default:
		return 0
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func stmtListWire(stmts []Statement) []map[string]any {
	out := make([]map[string]any, len(stmts))
	for i, s := range stmts {
		out[i] = stmtWire(s)
	}
	return out
}

func wireStmtList(v any) ([]Statement, error) {
	items := asSlice(v)
	out := make([]Statement, len(items))
	for i, it := range items {
		s, err := wireStmt(asMap(it))
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func exprWireOrNil(e Expression) any {
	if e == nil {
		return nil
	}
	return exprWire(e)
}

func wireExprOrNil(v any) (Expression, error) {
	if v == nil {
		return nil, nil
	}
	return wireExpr(asMap(v))
}

func paramsWire(ps []Param) []map[string]any {
	out := make([]map[string]any, len(ps))
	for i, p := range ps {
		out[i] = map[string]any{"name": p.Name, "type": p.Type}
	}
	return out
}

func wireParams(v any) []Param {
	items := asSlice(v)
	out := make([]Param, len(items))
	for i, it := range items {
		m := asMap(it)
		out[i] = Param{Name: asString(m["name"]), Type: asString(m["type"])}
	}
	return out
}

// --- statement wire encode/decode ---

func stmtWire(s Statement) map[string]any {
	switch n := s.(type) {
	case LetStmt:
		return map[string]any{"type": "Let", "line": n.Line, "name": n.Name, "mutable": n.Mutable, "valueType": n.Type, "value": exprWire(n.Value), "exported": n.Exported}
	case AssignStmt:
		return map[string]any{"type": "Assign", "line": n.Line, "name": n.Name, "value": exprWire(n.Value)}
	case FuncDeclStmt:
		return map[string]any{"type": "FuncDecl", "line": n.Line, "name": n.Name, "params": paramsWire(n.Params), "returnType": n.ReturnType, "body": stmtListWire(n.Body), "async": n.Async, "exported": n.Exported}
	case ReturnStmt:
		return map[string]any{"type": "Return", "line": n.Line, "value": exprWireOrNil(n.Value)}
	case IfStmt:
		branches := make([]map[string]any, len(n.Branches))
		for i, br := range n.Branches {
			branches[i] = map[string]any{"cond": exprWireOrNil(br.Cond), "body": stmtListWire(br.Body)}
		}
		return map[string]any{"type": "If", "line": n.Line, "branches": branches}
	case SwitchStmt:
		cases := make([]map[string]any, len(n.Cases))
		for i, c := range n.Cases {
			cases[i] = map[string]any{"value": exprWire(c.Value), "body": stmtListWire(c.Body)}
		}
		var otherwise any
		if n.Otherwise != nil {
			otherwise = stmtListWire(n.Otherwise)
		}
		return map[string]any{"type": "Switch", "line": n.Line, "discriminant": exprWire(n.Discriminant), "cases": cases, "otherwise": otherwise}
	case LoopStmt:
		return map[string]any{
			"type": "Loop", "line": n.Line, "kind": int(n.Kind),
			"from": exprWireOrNil(n.From), "to": exprWireOrNil(n.To),
			"var": n.Var, "iterable": exprWireOrNil(n.Iterable), "cond": exprWireOrNil(n.Cond),
			"body": stmtListWire(n.Body),
		}
	case BreakStmt:
		return map[string]any{"type": "Break", "line": n.Line}
	case ContinueStmt:
		return map[string]any{"type": "Continue", "line": n.Line}
	case WaitStmt:
		return map[string]any{"type": "Wait", "line": n.Line, "durationMs": exprWire(n.DurationMs)}
	case AttemptStmt:
		rescues := make([]map[string]any, len(n.Rescues))
		for i, r := range n.Rescues {
			rescues[i] = map[string]any{"kind": r.Kind, "bindName": r.BindName, "retry": r.Retry, "body": stmtListWire(r.Body)}
		}
		var finally any
		if n.Finally != nil {
			finally = stmtListWire(n.Finally)
		}
		return map[string]any{"type": "Attempt", "line": n.Line, "body": stmtListWire(n.Body), "rescues": rescues, "finally": finally}
	case WardStmt:
		return map[string]any{"type": "Ward", "line": n.Line, "body": stmtListWire(n.Body)}
	case PanicStmt:
		return map[string]any{"type": "Panic", "line": n.Line, "message": exprWire(n.Message)}
	case RuptureStmt:
		return map[string]any{"type": "Rupture", "line": n.Line, "kind": n.Kind, "message": exprWire(n.Message)}
	case WoundStmt:
		return map[string]any{"type": "Wound", "line": n.Line, "message": exprWire(n.Message)}
	case ReboundStmt:
		return map[string]any{"type": "Rebound", "line": n.Line, "name": n.Name}
	case ShatterStmt:
		return map[string]any{"type": "Shatter", "line": n.Line, "value": exprWireOrNil(n.Value)}
	case ExprStmt:
		return map[string]any{"type": "Expr", "line": n.Line, "expr": exprWire(n.Expr)}
	default:
		return map[string]any{"type": "Unknown"}
	}
}

func wireStmt(m map[string]any) (Statement, error) {
	if m == nil {
		return nil, nil
	}
	line := asInt(m["line"])
	base := NewBase(line)
	switch asString(m["type"]) {
	case "Let":
		v, err := wireExprOrNil(m["value"])
		if err != nil {
			return nil, err
		}
		return LetStmt{Base: base, Name: asString(m["name"]), Mutable: asBool(m["mutable"]), Type: asString(m["valueType"]), Value: v, Exported: asBool(m["exported"])}, nil
	case "Assign":
		v, err := wireExprOrNil(m["value"])
		if err != nil {
			return nil, err
		}
		return AssignStmt{Base: base, Name: asString(m["name"]), Value: v}, nil
	case "FuncDecl":
		body, err := wireStmtList(m["body"])
		if err != nil {
			return nil, err
		}
		return FuncDeclStmt{Base: base, Name: asString(m["name"]), Params: wireParams(m["params"]), ReturnType: asString(m["returnType"]), Body: body, Async: asBool(m["async"]), Exported: asBool(m["exported"])}, nil
	case "Return":
		v, err := wireExprOrNil(m["value"])
		if err != nil {
			return nil, err
		}
		return ReturnStmt{Base: base, Value: v}, nil
	case "If":
		items := asSlice(m["branches"])
		branches := make([]IfBranch, len(items))
		for i, it := range items {
			bm := asMap(it)
			cond, err := wireExprOrNil(bm["cond"])
			if err != nil {
				return nil, err
			}
			body, err := wireStmtList(bm["body"])
			if err != nil {
				return nil, err
			}
			branches[i] = IfBranch{Cond: cond, Body: body}
		}
		return IfStmt{Base: base, Branches: branches}, nil
	case "Switch":
		disc, err := wireExprOrNil(m["discriminant"])
		if err != nil {
			return nil, err
		}
		items := asSlice(m["cases"])
		cases := make([]SwitchCase, len(items))
		for i, it := range items {
			cm := asMap(it)
			cv, err := wireExprOrNil(cm["value"])
			if err != nil {
				return nil, err
			}
			cbody, err := wireStmtList(cm["body"])
			if err != nil {
				return nil, err
			}
			cases[i] = SwitchCase{Value: cv, Body: cbody}
		}
		var otherwise []Statement
		if m["otherwise"] != nil {
			otherwise, err = wireStmtList(m["otherwise"])
			if err != nil {
				return nil, err
			}
		}
		return SwitchStmt{Base: base, Discriminant: disc, Cases: cases, Otherwise: otherwise}, nil
	case "Loop":
		from, err := wireExprOrNil(m["from"])
		if err != nil {
			return nil, err
		}
		to, err := wireExprOrNil(m["to"])
		if err != nil {
			return nil, err
		}
		iterable, err := wireExprOrNil(m["iterable"])
		if err != nil {
			return nil, err
		}
		cond, err := wireExprOrNil(m["cond"])
		if err != nil {
			return nil, err
		}
		body, err := wireStmtList(m["body"])
		if err != nil {
			return nil, err
		}
		return LoopStmt{Base: base, Kind: LoopKind(asInt(m["kind"])), From: from, To: to, Var: asString(m["var"]), Iterable: iterable, Cond: cond, Body: body}, nil
	case "Break":
		return BreakStmt{Base: base}, nil
	case "Continue":
		return ContinueStmt{Base: base}, nil
	case "Wait":
		v, err := wireExprOrNil(m["durationMs"])
		if err != nil {
			return nil, err
		}
		return WaitStmt{Base: base, DurationMs: v}, nil
	case "Attempt":
		body, err := wireStmtList(m["body"])
		if err != nil {
			return nil, err
		}
		items := asSlice(m["rescues"])
		rescues := make([]RescueClause, len(items))
		for i, it := range items {
			rm := asMap(it)
			rbody, err := wireStmtList(rm["body"])
			if err != nil {
				return nil, err
			}
			rescues[i] = RescueClause{Kind: asString(rm["kind"]), BindName: asString(rm["bindName"]), Retry: asInt(rm["retry"]), Body: rbody}
		}
		var finally []Statement
		if m["finally"] != nil {
			finally, err = wireStmtList(m["finally"])
			if err != nil {
				return nil, err
			}
		}
		return AttemptStmt{Base: base, Body: body, Rescues: rescues, Finally: finally}, nil
	case "Ward":
		body, err := wireStmtList(m["body"])
		if err != nil {
			return nil, err
		}
		return WardStmt{Base: base, Body: body}, nil
	case "Panic":
		v, err := wireExprOrNil(m["message"])
		if err != nil {
			return nil, err
		}
		return PanicStmt{Base: base, Message: v}, nil
	case "Rupture":
		v, err := wireExprOrNil(m["message"])
		if err != nil {
			return nil, err
		}
		return RuptureStmt{Base: base, Kind: asString(m["kind"]), Message: v}, nil
	case "Wound":
		v, err := wireExprOrNil(m["message"])
		if err != nil {
			return nil, err
		}
		return WoundStmt{Base: base, Message: v}, nil
	case "Rebound":
		return ReboundStmt{Base: base, Name: asString(m["name"])}, nil
	case "Shatter":
		v, err := wireExprOrNil(m["value"])
		if err != nil {
			return nil, err
		}
		return ShatterStmt{Base: base, Value: v}, nil
	case "Expr":
		v, err := wireExprOrNil(m["expr"])
		if err != nil {
			return nil, err
		}
		return ExprStmt{Base: base, Expr: v}, nil
	default:
		return ExprStmt{Base: base, Expr: Literal{Base: base, Kind: LitNull}}, nil
	}
}

// --- expression wire encode/decode ---

func exprWire(e Expression) map[string]any {
	switch n := e.(type) {
	case Literal:
		return map[string]any{"type": "Literal", "line": n.Line, "kind": int(n.Kind), "num": n.Num, "str": n.Str, "bool": n.Bool}
	case Ident:
		return map[string]any{"type": "Ident", "line": n.Line, "name": n.Name}
	case BinaryExpr:
		return map[string]any{"type": "Binary", "line": n.Line, "op": n.Op, "left": exprWire(n.Left), "right": exprWire(n.Right)}
	case UnaryExpr:
		return map[string]any{"type": "Unary", "line": n.Line, "op": n.Op, "operand": exprWire(n.Operand)}
	case CallExpr:
		return map[string]any{"type": "Call", "line": n.Line, "callee": exprWire(n.Callee), "args": exprListWire(n.Args)}
	case MethodCallExpr:
		return map[string]any{"type": "MethodCall", "line": n.Line, "receiver": exprWire(n.Receiver), "method": n.Method, "args": exprListWire(n.Args)}
	case IndexExpr:
		return map[string]any{"type": "Index", "line": n.Line, "receiver": exprWire(n.Receiver), "index": exprWire(n.Index)}
	case PropertyExpr:
		return map[string]any{"type": "Property", "line": n.Line, "receiver": exprWire(n.Receiver), "name": n.Name}
	case ArrayLiteral:
		return map[string]any{"type": "ArrayLit", "line": n.Line, "elements": exprListWire(n.Elements)}
	case MapLiteral:
		return map[string]any{"type": "MapLit", "line": n.Line, "entries": mapEntriesWire(n.Entries)}
	case SigilLiteral:
		return map[string]any{"type": "SigilLit", "line": n.Line, "name": n.Name, "entries": mapEntriesWire(n.Entries)}
	case LambdaExpr:
		return map[string]any{"type": "Lambda", "line": n.Line, "params": paramsWire(n.Params), "returnType": n.ReturnType, "body": stmtListWire(n.Body), "async": n.Async}
	case ComboChainExpr:
		steps := make([]map[string]any, len(n.Steps))
		for i, st := range n.Steps {
			steps[i] = map[string]any{"callee": exprWire(st.Callee), "args": exprListWire(st.Args)}
		}
		return map[string]any{"type": "ComboChain", "line": n.Line, "source": exprWire(n.Source), "steps": steps}
	case AwaitExpr:
		return map[string]any{"type": "Await", "line": n.Line, "value": exprWire(n.Value)}
	default:
		return map[string]any{"type": "Literal", "kind": int(LitNull)}
	}
}

func exprListWire(exprs []Expression) []map[string]any {
	out := make([]map[string]any, len(exprs))
	for i, e := range exprs {
		out[i] = exprWire(e)
	}
	return out
}

func wireExprList(v any) ([]Expression, error) {
	items := asSlice(v)
	out := make([]Expression, len(items))
	for i, it := range items {
		e, err := wireExpr(asMap(it))
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func mapEntriesWire(entries []MapEntry) []map[string]any {
	out := make([]map[string]any, len(entries))
	for i, ent := range entries {
		out[i] = map[string]any{"key": ent.Key, "value": exprWire(ent.Value)}
	}
	return out
}

func wireMapEntries(v any) ([]MapEntry, error) {
	items := asSlice(v)
	out := make([]MapEntry, len(items))
	for i, it := range items {
		m := asMap(it)
		val, err := wireExprOrNil(m["value"])
		if err != nil {
			return nil, err
		}
		out[i] = MapEntry{Key: asString(m["key"]), Value: val}
	}
	return out, nil
}

func wireExpr(m map[string]any) (Expression, error) {
	if m == nil {
		return nil, nil
	}
	line := asInt(m["line"])
	base := NewBase(line)
	switch asString(m["type"]) {
	case "Literal":
		num, _ := m["num"].(float64)
		return Literal{Base: base, Kind: LiteralKind(asInt(m["kind"])), Num: num, Str: asString(m["str"]), Bool: asBool(m["bool"])}, nil
	case "Ident":
		return Ident{Base: base, Name: asString(m["name"])}, nil
	case "Binary":
		l, err := wireExprOrNil(m["left"])
		if err != nil {
			return nil, err
		}
		r, err := wireExprOrNil(m["right"])
		if err != nil {
			return nil, err
		}
		return BinaryExpr{Base: base, Op: asString(m["op"]), Left: l, Right: r}, nil
	case "Unary":
		v, err := wireExprOrNil(m["operand"])
		if err != nil {
			return nil, err
		}
		return UnaryExpr{Base: base, Op: asString(m["op"]), Operand: v}, nil
	case "Call":
		callee, err := wireExprOrNil(m["callee"])
		if err != nil {
			return nil, err
		}
		args, err := wireExprList(m["args"])
		if err != nil {
			return nil, err
		}
		return CallExpr{Base: base, Callee: callee, Args: args}, nil
	case "MethodCall":
		recv, err := wireExprOrNil(m["receiver"])
		if err != nil {
			return nil, err
		}
		args, err := wireExprList(m["args"])
		if err != nil {
			return nil, err
		}
		return MethodCallExpr{Base: base, Receiver: recv, Method: asString(m["method"]), Args: args}, nil
	case "Index":
		recv, err := wireExprOrNil(m["receiver"])
		if err != nil {
			return nil, err
		}
		idx, err := wireExprOrNil(m["index"])
		if err != nil {
			return nil, err
		}
		return IndexExpr{Base: base, Receiver: recv, Index: idx}, nil
	case "Property":
		recv, err := wireExprOrNil(m["receiver"])
		if err != nil {
			return nil, err
		}
		return PropertyExpr{Base: base, Receiver: recv, Name: asString(m["name"])}, nil
	case "ArrayLit":
		els, err := wireExprList(m["elements"])
		if err != nil {
			return nil, err
		}
		return ArrayLiteral{Base: base, Elements: els}, nil
	case "MapLit":
		entries, err := wireMapEntries(m["entries"])
		if err != nil {
			return nil, err
		}
		return MapLiteral{Base: base, Entries: entries}, nil
	case "SigilLit":
		entries, err := wireMapEntries(m["entries"])
		if err != nil {
			return nil, err
		}
		return SigilLiteral{Base: base, Name: asString(m["name"]), Entries: entries}, nil
	case "Lambda":
		body, err := wireStmtList(m["body"])
		if err != nil {
			return nil, err
		}
		return LambdaExpr{Base: base, Params: wireParams(m["params"]), ReturnType: asString(m["returnType"]), Body: body, Async: asBool(m["async"])}, nil
	case "ComboChain":
		src, err := wireExprOrNil(m["source"])
		if err != nil {
			return nil, err
		}
		items := asSlice(m["steps"])
		steps := make([]ComboStep, len(items))
		for i, it := range items {
			sm := asMap(it)
			callee, err := wireExprOrNil(sm["callee"])
			if err != nil {
				return nil, err
			}
			args, err := wireExprList(sm["args"])
			if err != nil {
				return nil, err
			}
			steps[i] = ComboStep{Callee: callee, Args: args}
		}
		return ComboChainExpr{Base: base, Source: src, Steps: steps}, nil
	case "Await":
		v, err := wireExprOrNil(m["value"])
		if err != nil {
			return nil, err
		}
		return AwaitExpr{Base: base, Value: v}, nil
	default:
		return Literal{Base: base, Kind: LitNull}, nil
	}
}
