package interpreter

import (
	"github.com/BDNK1/flowlang/ast"
)

// Small AST-construction shorthands shared by this package's tests, since
// the parser that would normally produce these trees is out of scope.

func numLit(n float64) ast.Expression { return ast.Literal{Kind: ast.LitNumber, Num: n} }
func strLit(s string) ast.Expression  { return ast.Literal{Kind: ast.LitString, Str: s} }
func boolLit(b bool) ast.Expression   { return ast.Literal{Kind: ast.LitBool, Bool: b} }
func nullLit() ast.Expression         { return ast.Literal{Kind: ast.LitNull} }
func ident(name string) ast.Expression { return ast.Ident{Name: name} }

func bin(op string, l, r ast.Expression) ast.Expression {
	return ast.BinaryExpr{Op: op, Left: l, Right: r}
}

func call(callee ast.Expression, args ...ast.Expression) ast.Expression {
	return ast.CallExpr{Callee: callee, Args: args}
}

func letStmt(name string, mutable bool, v ast.Expression) ast.Statement {
	return ast.LetStmt{Name: name, Mutable: mutable, Value: v}
}

func exprStmt(e ast.Expression) ast.Statement {
	return ast.ExprStmt{Expr: e}
}

func newTestEvaluator(strict bool) *Evaluator {
	return New(nil, nil, nil, strict)
}
