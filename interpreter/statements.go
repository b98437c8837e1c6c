package interpreter

import (
	"fmt"
	"os"
	"time"

	"github.com/BDNK1/flowlang/ast"
	"github.com/BDNK1/flowlang/ferr"
	"github.com/BDNK1/flowlang/value"
)

// EvalBlock runs a statement list in the current scope (callers push/pop a
// scope around it as needed) and returns the first non-Normal result, or a
// Normal(null) if control falls through.
func (e *Evaluator) EvalBlock(stmts []ast.Statement) ferr.StmtResult {
	var last ferr.StmtResult = ferr.Normal(value.Null())
	for _, s := range stmts {
		res := e.evalStatement(s)
		if res.Unwinding() {
			return res
		}
		last = res
	}
	return last
}

// evalScoped pushes a fresh scope, runs the block, and pops it — used by
// if/switch branches and attempt/ward/finally bodies (loops push their own
// per-iteration scope).
func (e *Evaluator) evalScoped(stmts []ast.Statement) ferr.StmtResult {
	e.Env.PushScope()
	res := e.EvalBlock(stmts)
	e.Env.PopScope()
	return res
}

func (e *Evaluator) evalStatement(s ast.Statement) ferr.StmtResult {
	switch n := s.(type) {
	case ast.LetStmt:
		return e.evalLet(n)
	case ast.AssignStmt:
		return e.evalAssign(n)
	case ast.FuncDeclStmt:
		return e.evalFuncDecl(n)
	case ast.ReturnStmt:
		return e.evalReturn(n)
	case ast.IfStmt:
		return e.evalIf(n)
	case ast.SwitchStmt:
		return e.evalSwitch(n)
	case ast.LoopStmt:
		return e.evalLoop(n)
	case ast.BreakStmt:
		return ferr.Broke()
	case ast.ContinueStmt:
		return ferr.Continued()
	case ast.WaitStmt:
		return e.evalWait(n)
	case ast.AttemptStmt:
		return e.evalAttempt(n)
	case ast.WardStmt:
		return e.evalWard(n)
	case ast.PanicStmt:
		return e.evalPanic(n)
	case ast.RuptureStmt:
		return e.evalRupture(n)
	case ast.WoundStmt:
		return e.evalWound(n)
	case ast.ReboundStmt:
		return e.evalRebound(n)
	case ast.ShatterStmt:
		return e.evalShatter(n)
	case ast.ExprStmt:
		v, err := e.evalExpr(n.Expr)
		if err != nil {
			return ferr.Raised(err)
		}
		return ferr.Normal(v)
	default:
		return ferr.Raised(ferr.Runtimef(s.NodeLine(), 0, "unsupported statement node %T", s))
	}
}

func (e *Evaluator) evalLet(n ast.LetStmt) ferr.StmtResult {
	if e.StrictMode && n.Type == "" {
		return ferr.Raised(ferr.Typef(n.Line, 0, "binding %q requires a type annotation in strict mode", n.Name))
	}
	v, err := e.evalExpr(n.Value)
	if err != nil {
		return ferr.Raised(err)
	}
	if n.Type != "" && !value.CheckType(v, n.Type) {
		return ferr.Raised(ferr.Typef(n.Line, 0, "binding %q expected type %s, got %s", n.Name, n.Type, v.Kind()))
	}
	e.Env.DefineExported(n.Name, v, n.Mutable, n.Exported)
	return ferr.Normal(value.Null())
}

func (e *Evaluator) evalAssign(n ast.AssignStmt) ferr.StmtResult {
	v, err := e.evalExpr(n.Value)
	if err != nil {
		return ferr.Raised(err)
	}
	if serr := e.Env.Set(n.Name, v); serr != nil {
		msg := serr.Error()
		kind := ferr.Undefined
		if containsSealed(msg) {
			kind = ferr.Runtime
		}
		return ferr.Raised(ferr.New(kind, msg, n.Line, 0))
	}
	return ferr.Normal(value.Null())
}

func containsSealed(s string) bool {
	for i := 0; i+6 <= len(s); i++ {
		if s[i:i+6] == "sealed" {
			return true
		}
	}
	return false
}

func (e *Evaluator) evalFuncDecl(n ast.FuncDeclStmt) ferr.StmtResult {
	if e.StrictMode {
		if n.ReturnType == "" {
			return ferr.Raised(ferr.Typef(n.Line, 0, "function %q requires a return type annotation in strict mode", n.Name))
		}
		for _, p := range n.Params {
			if p.Type == "" {
				return ferr.Raised(ferr.Typef(n.Line, 0, "parameter %q of %q requires a type annotation in strict mode", p.Name, n.Name))
			}
		}
	}
	params := make([]value.Param, len(n.Params))
	for i, p := range n.Params {
		params[i] = value.Param{Name: p.Name, Type: p.Type}
	}
	fn := &value.UserFunction{
		Name:       n.Name,
		Params:     params,
		ReturnType: n.ReturnType,
		Body:       n.Body,
		Closure:    e.Env.GetAllVisible(),
		Async:      n.Async,
	}
	e.Env.DefineExported(n.Name, value.Func(fn), false, n.Exported)
	return ferr.Normal(value.Null())
}

func (e *Evaluator) evalReturn(n ast.ReturnStmt) ferr.StmtResult {
	if n.Value == nil {
		return ferr.Returned(value.Null())
	}
	v, err := e.evalExpr(n.Value)
	if err != nil {
		return ferr.Raised(err)
	}
	return ferr.Returned(v)
}

func (e *Evaluator) evalShatter(n ast.ShatterStmt) ferr.StmtResult {
	if n.Value == nil {
		return ferr.Returned(value.Null())
	}
	v, err := e.evalExpr(n.Value)
	if err != nil {
		return ferr.Raised(err)
	}
	return ferr.Returned(v)
}

func (e *Evaluator) evalIf(n ast.IfStmt) ferr.StmtResult {
	for _, br := range n.Branches {
		if br.Cond == nil {
			return e.evalScoped(br.Body)
		}
		v, err := e.evalExpr(br.Cond)
		if err != nil {
			return ferr.Raised(err)
		}
		if v.Truthy() {
			return e.evalScoped(br.Body)
		}
	}
	return ferr.Normal(value.Null())
}

func (e *Evaluator) evalSwitch(n ast.SwitchStmt) ferr.StmtResult {
	disc, err := e.evalExpr(n.Discriminant)
	if err != nil {
		return ferr.Raised(err)
	}
	for _, c := range n.Cases {
		cv, err := e.evalExpr(c.Value)
		if err != nil {
			return ferr.Raised(err)
		}
		if value.Equal(disc, cv) {
			return e.evalScoped(c.Body)
		}
	}
	if n.Otherwise != nil {
		return e.evalScoped(n.Otherwise)
	}
	return ferr.Normal(value.Null())
}

func (e *Evaluator) evalLoop(n ast.LoopStmt) ferr.StmtResult {
	switch n.Kind {
	case ast.LoopCount:
		return e.evalCountLoop(n)
	case ast.LoopForEach:
		return e.evalForEachLoop(n)
	case ast.LoopUntil:
		return e.evalUntilLoop(n)
	case ast.LoopForever:
		return e.evalForeverLoop(n)
	default:
		return ferr.Raised(ferr.Runtimef(n.Line, 0, "unknown loop kind"))
	}
}

func (e *Evaluator) evalCountLoop(n ast.LoopStmt) ferr.StmtResult {
	fromV, err := e.evalExpr(n.From)
	if err != nil {
		return ferr.Raised(err)
	}
	toV, err := e.evalExpr(n.To)
	if err != nil {
		return ferr.Raised(err)
	}
	from, to := int(fromV.Number()), int(toV.Number())
	for i := from; i <= to; i++ {
		e.Env.PushScope()
		e.Env.Define(n.Var, value.Number(float64(i)), true)
		res := e.EvalBlock(n.Body)
		e.Env.PopScope()
		if res.Signal == ferr.SigBroke {
			break
		}
		if res.Signal == ferr.SigContinued {
			continue
		}
		if res.Unwinding() {
			return res
		}
	}
	return ferr.Normal(value.Null())
}

func (e *Evaluator) evalForEachLoop(n ast.LoopStmt) ferr.StmtResult {
	iterV, err := e.evalExpr(n.Iterable)
	if err != nil {
		return ferr.Raised(err)
	}
	if iterV.Kind() != value.KindArray {
		return ferr.Raised(ferr.Typef(n.Line, 0, "for-each requires an array, got %s", iterV.Kind()))
	}
	for _, item := range iterV.Array().Items() {
		e.Env.PushScope()
		e.Env.Define(n.Var, item, true)
		res := e.EvalBlock(n.Body)
		e.Env.PopScope()
		if res.Signal == ferr.SigBroke {
			break
		}
		if res.Signal == ferr.SigContinued {
			continue
		}
		if res.Unwinding() {
			return res
		}
	}
	return ferr.Normal(value.Null())
}

func (e *Evaluator) evalUntilLoop(n ast.LoopStmt) ferr.StmtResult {
	for {
		condV, err := e.evalExpr(n.Cond)
		if err != nil {
			return ferr.Raised(err)
		}
		if condV.Truthy() {
			break
		}
		e.Env.PushScope()
		res := e.EvalBlock(n.Body)
		e.Env.PopScope()
		if res.Signal == ferr.SigBroke {
			break
		}
		if res.Signal == ferr.SigContinued {
			continue
		}
		if res.Unwinding() {
			return res
		}
	}
	return ferr.Normal(value.Null())
}

func (e *Evaluator) evalForeverLoop(n ast.LoopStmt) ferr.StmtResult {
	for {
		e.Env.PushScope()
		res := e.EvalBlock(n.Body)
		e.Env.PopScope()
		if res.Signal == ferr.SigBroke {
			break
		}
		if res.Signal == ferr.SigContinued {
			continue
		}
		if res.Unwinding() {
			return res
		}
	}
	return ferr.Normal(value.Null())
}

// evalWait sleeps for the requested duration while draining whatever timer
// callbacks are currently queued in small ticks, so timers still fire
// during a wait — see DESIGN.md's resolution of the wait-drain open
// question.
func (e *Evaluator) evalWait(n ast.WaitStmt) ferr.StmtResult {
	durV, err := e.evalExpr(n.DurationMs)
	if err != nil {
		return ferr.Raised(err)
	}
	total := time.Duration(durV.Number()) * time.Millisecond
	const tick = 10 * time.Millisecond
	deadline := time.Now().Add(total)
	for {
		e.DrainTimerCallbacksOnce()
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		sleep := tick
		if remaining < sleep {
			sleep = remaining
		}
		time.Sleep(sleep)
	}
	e.DrainTimerCallbacksOnce()
	return ferr.Normal(value.Null())
}

func (e *Evaluator) evalWard(n ast.WardStmt) ferr.StmtResult {
	res := e.evalScoped(n.Body)
	if res.IsRaised() {
		fmt.Fprintln(os.Stderr, res.Err.Error())
		return ferr.Normal(value.Null())
	}
	if res.Signal == ferr.SigBroke || res.Signal == ferr.SigContinued {
		// ward never catches loop control signals; let them propagate.
		return res
	}
	return res
}

func (e *Evaluator) evalPanic(n ast.PanicStmt) ferr.StmtResult {
	msg, err := e.evalExpr(n.Message)
	if err != nil {
		return ferr.Raised(err)
	}
	return ferr.Raised(ferr.New(ferr.Panic, value.ToDisplayString(msg), n.Line, 0))
}

// ruptureKinds is the closed set of kinds a `rupture` statement may name —
// the network/parse/null-access/generic catchable kinds of §4.2, matching
// the original's restriction (interpreter/mod.rs's rupture handling) to
// exactly these four rather than accepting any string as a kind tag.
var ruptureKinds = map[ferr.Kind]bool{
	ferr.Rift:     true,
	ferr.Glitch:   true,
	ferr.VoidTear: true,
	ferr.Spirit:   true,
}

func (e *Evaluator) evalRupture(n ast.RuptureStmt) ferr.StmtResult {
	msg, err := e.evalExpr(n.Message)
	if err != nil {
		return ferr.Raised(err)
	}
	kind := ferr.Kind(n.Kind)
	if kind == "" {
		kind = ferr.Spirit
	} else if !ruptureKinds[kind] {
		return ferr.Raised(ferr.Runtimef(n.Line, 0, "unknown error type %q", n.Kind))
	}
	return ferr.Raised(ferr.New(kind, value.ToDisplayString(msg), n.Line, 0))
}

func (e *Evaluator) evalWound(n ast.WoundStmt) ferr.StmtResult {
	msg, err := e.evalExpr(n.Message)
	if err != nil {
		return ferr.Raised(err)
	}
	if e.Log != nil {
		e.Log.Warn("wound", "message", value.ToDisplayString(msg), "line", n.Line)
	} else {
		fmt.Fprintln(os.Stderr, value.ToDisplayString(msg))
	}
	return ferr.Normal(value.Null())
}

// evalRebound re-raises the error currently bound to name by an enclosing
// rescue clause's `as name`, always repackaged as the generic Spirit kind
// — see DESIGN.md's resolution of the rebound open question.
func (e *Evaluator) evalRebound(n ast.ReboundStmt) ferr.StmtResult {
	bound, ok := e.rescueBindings[n.Name]
	if !ok {
		return ferr.Raised(ferr.Undefinedf(n.Line, 0, "rebound references unbound name %q", n.Name))
	}
	return ferr.Raised(ferr.Spiritf(n.Line, 0, "%s", bound.Message))
}
