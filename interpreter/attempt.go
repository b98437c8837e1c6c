package interpreter

import (
	"github.com/BDNK1/flowlang/ast"
	"github.com/BDNK1/flowlang/ferr"
	"github.com/BDNK1/flowlang/value"
)

// evalAttempt implements attempt { body } rescue [Kind] [as name] [retry N]
// { body }* [finally { body }], generalizing the teacher's step-level retry
// loop (executor.go) down to statement granularity (reattempts run
// immediately, with no backoff delay), and following the Rust original's exact
// rescue-then-reattempt ordering: on a retry clause, the rescue body runs
// BEFORE each reattempt of the attempt body, not merely once after the
// first failure.
func (e *Evaluator) evalAttempt(n ast.AttemptStmt) ferr.StmtResult {
	result := e.evalScoped(n.Body)

	if result.IsRaised() && result.Err.Kind.Catchable() {
		for _, clause := range n.Rescues {
			if clause.Kind != "" && ferr.Kind(clause.Kind) != result.Err.Kind {
				continue
			}
			result = e.runRescueClause(clause, result.Err, n.Body)
			break
		}
	}

	if n.Finally != nil {
		finalRes := e.evalScoped(n.Finally)
		if finalRes.Unwinding() {
			// Finally's own outcome overrides the current result.
			result = finalRes
		}
	}

	return result
}

func (e *Evaluator) runRescueClause(clause ast.RescueClause, original *ferr.FlowError, attemptBody []ast.Statement) ferr.StmtResult {
	bindName := clause.BindName
	if bindName != "" {
		e.rescueBindings[bindName] = original
		defer delete(e.rescueBindings, bindName)
	}

	runRescueBody := func() ferr.StmtResult {
		e.Env.PushScope()
		if bindName != "" {
			e.Env.Define(bindName, value.Str(original.Message), true)
		}
		res := e.EvalBlock(clause.Body)
		e.Env.PopScope()
		return res
	}

	if clause.Retry <= 0 {
		rescueRes := runRescueBody()
		if rescueRes.Unwinding() && rescueRes.Signal != ferr.SigNormal {
			return rescueRes
		}
		return ferr.Normal(value.Null())
	}

	var last ferr.StmtResult
	for attempt := 0; attempt < clause.Retry; attempt++ {
		rescueRes := runRescueBody()
		if rescueRes.Unwinding() {
			return rescueRes
		}
		last = e.evalScoped(attemptBody)
		if !last.IsRaised() {
			return last
		}
	}
	return last
}
