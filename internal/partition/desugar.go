package partition

import (
	"github.com/gogpu/shaderpart/internal/diag"
	"github.com/gogpu/shaderpart/internal/hir"
)

// desugarStmtListExprs rewrites every ExprStmtList reachable from stmts
// into an ordinary statement sequence: its Stmts are spliced in immediately
// before the statement that referenced it, and the occurrence itself is
// replaced by its Result expression. GLSL has no expression-block
// equivalent, so this runs once, before tier inference, and nothing
// downstream (processBlock, depgraph, glslgen) ever needs a case for
// ExprStmtList.
func desugarStmtListExprs(fn *hir.Function, stmts []hir.StmtHandle, diags *diag.List) []hir.StmtHandle {
	out := make([]hir.StmtHandle, 0, len(stmts))
	for _, h := range stmts {
		out = append(out, desugarStmt(fn, h, diags)...)
	}
	return out
}

func desugarStmt(fn *hir.Function, h hir.StmtHandle, diags *diag.List) []hir.StmtHandle {
	s := fn.Stmt(h)
	switch k := s.Kind.(type) {
	case hir.StmtAssign:
		hoistP, place := desugarExpr(fn, k.Place, diags)
		hoistV, value := desugarExpr(fn, k.Value, diags)
		fn.Statements[h] = hir.Statement{Kind: hir.StmtAssign{Place: place, Value: value}, Span: s.Span}
		return finish(appendAll(hoistP, hoistV), h)
	case hir.StmtLocalDecl:
		if k.Init == nil {
			return []hir.StmtHandle{h}
		}
		hoist, init := desugarExpr(fn, *k.Init, diags)
		fn.Statements[h] = hir.Statement{Kind: hir.StmtLocalDecl{Symbol: k.Symbol, Init: &init}, Span: s.Span}
		return finish(hoist, h)
	case hir.StmtConstDecl:
		hoist, value := desugarExpr(fn, k.Value, diags)
		fn.Statements[h] = hir.Statement{Kind: hir.StmtConstDecl{Symbol: k.Symbol, Value: value}, Span: s.Span}
		return finish(hoist, h)
	case hir.StmtIf:
		hoist, cond := desugarExpr(fn, k.Condition, diags)
		then := desugarStmtListExprs(fn, k.Then.Statements, diags)
		els := desugarStmtListExprs(fn, k.Else.Statements, diags)
		fn.Statements[h] = hir.Statement{Kind: hir.StmtIf{
			Condition: cond,
			Then:      hir.Block{Statements: then},
			Else:      hir.Block{Statements: els},
		}, Span: s.Span}
		return finish(hoist, h)
	case hir.StmtExpr:
		hoist, e := desugarExpr(fn, k.Expr, diags)
		fn.Statements[h] = hir.Statement{Kind: hir.StmtExpr{Expr: e}, Span: s.Span}
		return finish(hoist, h)
	case hir.StmtForRange:
		hoistLo, lo := desugarExpr(fn, k.Lo, diags)
		hoistHi, hi := desugarExpr(fn, k.Hi, diags)
		body := desugarStmtListExprs(fn, k.Body.Statements, diags)
		fn.Statements[h] = hir.Statement{Kind: hir.StmtForRange{
			Var: k.Var, Lo: lo, Hi: hi, Body: hir.Block{Statements: body},
		}, Span: s.Span}
		return finish(appendAll(hoistLo, hoistHi), h)
	case hir.StmtForItems:
		hoist, arr := desugarExpr(fn, k.Array, diags)
		body := desugarStmtListExprs(fn, k.Body.Statements, diags)
		fn.Statements[h] = hir.Statement{Kind: hir.StmtForItems{
			Var: k.Var, Array: arr, Body: hir.Block{Statements: body},
		}, Span: s.Span}
		return finish(hoist, h)
	case hir.StmtWhile:
		hoist, cond := desugarExpr(fn, k.Cond, diags)
		if len(hoist) > 0 {
			diags.ErrorAt(diag.KindUnsupportedConstruct,
				"a while condition that requires evaluating statements for its value is not a supported construct (would need re-evaluation every iteration)", s.Span)
			return []hir.StmtHandle{h}
		}
		body := desugarStmtListExprs(fn, k.Body.Statements, diags)
		fn.Statements[h] = hir.Statement{Kind: hir.StmtWhile{Cond: cond, Body: hir.Block{Statements: body}}, Span: s.Span}
		return []hir.StmtHandle{h}
	case hir.StmtReturn:
		if k.Value == nil {
			return []hir.StmtHandle{h}
		}
		hoist, v := desugarExpr(fn, *k.Value, diags)
		fn.Statements[h] = hir.Statement{Kind: hir.StmtReturn{Value: &v}, Span: s.Span}
		return finish(hoist, h)
	default:
		return []hir.StmtHandle{h}
	}
}

// finish appends the owning statement's (possibly rewritten) handle after
// any statements hoisted out of its subexpressions.
func finish(hoist []hir.StmtHandle, h hir.StmtHandle) []hir.StmtHandle {
	return append(hoist, h)
}

// desugarExpr rewrites e, returning statements that must run before e's
// value is used (in evaluation order) and e's own (possibly rewritten)
// handle.
func desugarExpr(fn *hir.Function, h hir.ExprHandle, diags *diag.List) ([]hir.StmtHandle, hir.ExprHandle) {
	e := fn.Expr(h)
	switch k := e.Kind.(type) {
	case hir.ExprLiteral, hir.ExprIdent:
		return nil, h
	case hir.ExprFieldAccess:
		hoist, base := desugarExpr(fn, k.Base, diags)
		if base == k.Base {
			return hoist, h
		}
		return hoist, fn.AddExpr(hir.Expression{Kind: hir.ExprFieldAccess{Base: base, Field: k.Field}, Type: e.Type})
	case hir.ExprIndex:
		hoistB, base := desugarExpr(fn, k.Base, diags)
		hoistI, idx := desugarExpr(fn, k.Index, diags)
		hoist := appendAll(hoistB, hoistI)
		if base == k.Base && idx == k.Index {
			return hoist, h
		}
		return hoist, fn.AddExpr(hir.Expression{Kind: hir.ExprIndex{Base: base, Index: idx}, Type: e.Type})
	case hir.ExprSwizzle:
		hoist, base := desugarExpr(fn, k.Base, diags)
		if base == k.Base {
			return hoist, h
		}
		return hoist, fn.AddExpr(hir.Expression{Kind: hir.ExprSwizzle{Base: base, Components: k.Components}, Type: e.Type})
	case hir.ExprBinary:
		hoistL, left := desugarExpr(fn, k.Left, diags)
		hoistR, right := desugarExpr(fn, k.Right, diags)
		hoist := appendAll(hoistL, hoistR)
		if left == k.Left && right == k.Right {
			return hoist, h
		}
		return hoist, fn.AddExpr(hir.Expression{Kind: hir.ExprBinary{Op: k.Op, Left: left, Right: right}, Type: e.Type})
	case hir.ExprUnary:
		hoist, operand := desugarExpr(fn, k.Operand, diags)
		if operand == k.Operand {
			return hoist, h
		}
		return hoist, fn.AddExpr(hir.Expression{Kind: hir.ExprUnary{Op: k.Op, Operand: operand}, Type: e.Type})
	case hir.ExprCompose:
		var hoist []hir.StmtHandle
		changed := false
		comps := make([]hir.ExprHandle, len(k.Components))
		for i, c := range k.Components {
			hc, nc := desugarExpr(fn, c, diags)
			hoist = append(hoist, hc...)
			comps[i] = nc
			if nc != c {
				changed = true
			}
		}
		if !changed {
			return hoist, h
		}
		return hoist, fn.AddExpr(hir.Expression{Kind: hir.ExprCompose{Type: k.Type, Components: comps}, Type: e.Type})
	case hir.ExprCall:
		var hoist []hir.StmtHandle
		changed := false
		args := make([]hir.ExprHandle, len(k.Args))
		for i, a := range k.Args {
			ha, na := desugarExpr(fn, a, diags)
			hoist = append(hoist, ha...)
			args[i] = na
			if na != a {
				changed = true
			}
		}
		if !changed {
			return hoist, h
		}
		return hoist, fn.AddExpr(hir.Expression{Kind: hir.ExprCall{Builtin: k.Builtin, IsUser: k.IsUser, Proc: k.Proc, Args: args}, Type: e.Type})
	case hir.ExprConversion:
		hoist, inner := desugarExpr(fn, k.Expr, diags)
		if inner == k.Expr {
			return hoist, h
		}
		return hoist, fn.AddExpr(hir.Expression{Kind: hir.ExprConversion{To: k.To, Expr: inner}, Type: e.Type})
	case hir.ExprConditional:
		hoistC, cond := desugarExpr(fn, k.Cond, diags)
		hoistT, then := desugarExpr(fn, k.Then, diags)
		hoistE, els := desugarExpr(fn, k.Else, diags)
		hoist := appendAll(hoistC, appendAll(hoistT, hoistE))
		if cond == k.Cond && then == k.Then && els == k.Else {
			return hoist, h
		}
		return hoist, fn.AddExpr(hir.Expression{Kind: hir.ExprConditional{Cond: cond, Then: then, Else: els}, Type: e.Type})
	case hir.ExprStmtList:
		var hoist []hir.StmtHandle
		for _, sh := range k.Stmts {
			hoist = append(hoist, desugarStmt(fn, sh, diags)...)
		}
		hoistR, result := desugarExpr(fn, k.Result, diags)
		hoist = append(hoist, hoistR...)
		return hoist, result
	default:
		diags.Error(diag.KindUnsupportedConstruct, "expression kind is not a supported construct")
		return nil, h
	}
}

func appendAll(lists ...[]hir.StmtHandle) []hir.StmtHandle {
	var out []hir.StmtHandle
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
