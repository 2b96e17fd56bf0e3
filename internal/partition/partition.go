// Package partition implements the Partitioner (§4.5): bottom-up tier
// inference over a pipeline function's expressions and statements, a
// fixpoint pass propagating tiers through local variables, stage-split
// conflict detection against interpolate() annotations, and the final
// per-stage statement ordering via internal/depgraph's reordering
// primitive.
package partition

import (
	"fmt"
	"sort"

	"github.com/gogpu/shaderpart/internal/depgraph"
	"github.com/gogpu/shaderpart/internal/diag"
	"github.com/gogpu/shaderpart/internal/hir"
	"github.com/gogpu/shaderpart/internal/lattice"
)

// maxFixpointPasses bounds the statement-tier fixpoint: a local's tier is
// monotonically non-decreasing across passes and there are only
// len(lattice tiers) possible values, so convergence within that many
// full passes is guaranteed if the input is well-formed. Exceeding it
// indicates a compiler bug, not a user error.
const maxFixpointPasses = 6

// ConflictSplit records a symbol accepted as split across tiers via an
// explicit interpolate() annotation: written at more than one tier (Tiers,
// ascending). Qualifier is the interpolation qualifier the annotation
// named, or nil when it named none.
type ConflictSplit struct {
	Symbol hir.SymbolID
	Tiers  []lattice.Tier
	Qualifier *hir.Qualifier
}

// Result is the output of one Partition run.
type Result struct {
	ExprTier  map[hir.ExprHandle]lattice.Tier
	StmtTier  map[hir.StmtHandle]lattice.Tier
	LocalTier map[hir.SymbolID]lattice.Tier
	Order     map[lattice.Tier][]hir.StmtHandle
	Splits    []ConflictSplit
}

// Config carries the opt-in knob §9's Open Questions leave to the
// caller. EnableVertexTextureFetch defaults to false (off): a texture
// sample is then pinned to FS tier. Geometry/tessellation has no knob
// here; the Partitioner always uses the lattice it is given.
type Config struct {
	EnableVertexTextureFetch bool
}

// Partition runs §4.5 steps 1-6 over fn's body and returns the per-tier
// execution schedule, or an error when diags accumulates any fatal
// diagnostic.
func Partition(fn *hir.Function, table *hir.Table, lat lattice.StageLattice, cfg Config, diags *diag.List) (*Result, error) {
	top := fn.Body.Statements

	scheduled, err := resolveInterpolateAnnotations(fn, table, top, diags)
	if err != nil {
		return nil, err
	}
	scheduled = desugarStmtListExprs(fn, scheduled, diags)
	if diags.HasErrors() {
		return nil, fmt.Errorf("partition: %w", diags.Errors()[0])
	}

	st := &tierState{
		fn:                  fn,
		table:               table,
		lat:                 lat,
		enableVertexTexture: cfg.EnableVertexTextureFetch,
		diags:               diags,
		localTier:           map[hir.SymbolID]lattice.Tier{},
		writeTiers:          map[hir.SymbolID]map[lattice.Tier]struct{}{},
	}

	converged := false
	for pass := 0; pass < maxFixpointPasses; pass++ {
		before := snapshotTiers(st.localTier)
		st.exprTier = map[hir.ExprHandle]lattice.Tier{}
		st.stmtTier = map[hir.StmtHandle]lattice.Tier{}
		st.processBlock(scheduled)
		if tiersEqual(before, st.localTier) {
			converged = true
			break
		}
	}
	if !converged {
		diags.Error(diag.KindInternalInvariantViolated, "statement-tier fixpoint did not converge within the tier bound")
		return nil, fmt.Errorf("partition: %w", diags.Errors()[len(diags.Errors())-1])
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("partition: %w", diags.Errors()[0])
	}

	scheduled = st.hoistCrossTierAttributes(scheduled)

	if err := detectSplits(table, st, diags); err != nil {
		return nil, err
	}

	order, err := scheduleStatements(fn, scheduled, st.stmtTier, lat)
	if err != nil {
		diags.Add(diag.New(diag.KindStageOrderConflict, err.Error()))
		return nil, fmt.Errorf("partition: %w", err)
	}

	return &Result{
		ExprTier:  st.exprTier,
		StmtTier:  st.stmtTier,
		LocalTier: snapshotTiers(st.localTier),
		Order:     order,
		Splits:    st.splits,
	}, nil
}

// resolveInterpolateAnnotations consumes every StmtInterpolate in stmts,
// validating that its target names a whole symbol (not a field, index, or
// swizzle projection — §4.5 step 6) and recording the annotation onto that
// symbol. The returned slice is stmts with every StmtInterpolate removed,
// since the annotation is not itself an executable statement.
func resolveInterpolateAnnotations(fn *hir.Function, table *hir.Table, stmts []hir.StmtHandle, diags *diag.List) ([]hir.StmtHandle, error) {
	out := make([]hir.StmtHandle, 0, len(stmts))
	for _, h := range stmts {
		s := fn.Stmt(h)
		interp, ok := s.Kind.(hir.StmtInterpolate)
		if !ok {
			out = append(out, h)
			continue
		}
		e := fn.Expr(interp.Target)
		ident, ok := e.Kind.(hir.ExprIdent)
		if !ok {
			diags.ErrorAt(diag.KindBadInterpolate,
				"interpolate() must name a whole variable, not a field, index, or swizzle expression", s.Span)
			continue
		}
		sym := table.Get(ident.Symbol)
		sym.Interpolate = &hir.InterpolateAnnotation{Qualifier: interp.Qualifier, Span: s.Span}
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("partition: %w", diags.Errors()[0])
	}
	return out, nil
}

type tierState struct {
	fn                  *hir.Function
	table               *hir.Table
	lat                 lattice.StageLattice
	enableVertexTexture bool
	diags              *diag.List

	localTier  map[hir.SymbolID]lattice.Tier
	writeTiers map[hir.SymbolID]map[lattice.Tier]struct{}
	splits     []ConflictSplit

	exprTier map[hir.ExprHandle]lattice.Tier
	stmtTier map[hir.StmtHandle]lattice.Tier
}

func (s *tierState) expr(h hir.ExprHandle) lattice.Tier {
	if t, ok := s.exprTier[h]; ok {
		return t
	}
	e := s.fn.Expr(h)
	var t lattice.Tier
	switch k := e.Kind.(type) {
	case hir.ExprLiteral:
		t = lattice.Const
	case hir.ExprIdent:
		t = s.symbolTier(k.Symbol)
	case hir.ExprFieldAccess:
		t = s.expr(k.Base)
	case hir.ExprIndex:
		t = s.lat.Join(s.expr(k.Base), s.expr(k.Index))
	case hir.ExprSwizzle:
		t = s.expr(k.Base)
	case hir.ExprBinary:
		t = s.lat.Join(s.expr(k.Left), s.expr(k.Right))
	case hir.ExprUnary:
		t = s.expr(k.Operand)
	case hir.ExprCompose:
		t = lattice.Const
		for _, c := range k.Components {
			t = s.lat.Join(t, s.expr(c))
		}
	case hir.ExprCall:
		t = lattice.Const
		for _, a := range k.Args {
			t = s.lat.Join(t, s.expr(a))
		}
		if k.Builtin == hir.FnTextureSample && !s.enableVertexTexture {
			t = s.lat.Join(t, lattice.FS)
		}
	case hir.ExprConversion:
		t = s.expr(k.Expr)
	case hir.ExprConditional:
		t = s.lat.Join(s.expr(k.Cond), s.lat.Join(s.expr(k.Then), s.expr(k.Else)))
	default:
		s.diags.Error(diag.KindUnsupportedConstruct,
			fmt.Sprintf("expression kind %T is not a supported construct", e.Kind))
		t = lattice.Const
	}
	s.exprTier[h] = t
	return t
}

func (s *tierState) symbolTier(id hir.SymbolID) lattice.Tier {
	sym := s.table.Get(id)
	if sym.TierHint != nil {
		return *sym.TierHint
	}
	switch sym.Builtin {
	case hir.BuiltinVertexAttr:
		return lattice.VS
	case hir.BuiltinFragCoord:
		return lattice.FS
	case hir.BuiltinTextureSampler:
		if s.enableVertexTexture {
			return lattice.CPU
		}
		return lattice.FS
	case hir.BuiltinCPUGlobal:
		return lattice.CPU
	case hir.BuiltinPositionOut:
		return lattice.VS
	case hir.BuiltinFragColorOut:
		return lattice.FS
	}
	switch sym.Kind {
	case hir.ModuleConst:
		return lattice.Const
	case hir.Param, hir.Global:
		return lattice.CPU
	case hir.Local:
		if t, ok := s.localTier[id]; ok {
			return t
		}
		s.diags.ErrorAt(diag.KindUnknownIdentifier,
			fmt.Sprintf("%q is read but never written", sym.Name), sym.Span)
		return lattice.Const
	default:
		return lattice.Const
	}
}

func (s *tierState) processBlock(stmts []hir.StmtHandle) {
	for _, h := range stmts {
		st := s.fn.Stmt(h)
		switch k := st.Kind.(type) {
		case hir.StmtAssign:
			vt := s.expr(k.Value)
			sym := baseSymbol(s.fn, k.Place)
			symObj := s.table.Get(sym)
			tier := vt
			switch symObj.Builtin {
			case hir.BuiltinPositionOut:
				// gl_Position can only be written from the vertex stage
				// (§3): a value that only resolves once a later tier runs
				// can never flow back into it.
				if vt > lattice.VS {
					s.diags.ErrorAt(diag.KindStageSplitConflict,
						fmt.Sprintf("%q is assigned a value resolved at %s, but its write site is pinned to VS", symObj.Name, vt),
						st.Span)
				}
				tier = lattice.VS
				s.recordWrite(sym, tier)
			case hir.BuiltinFragColorOut:
				tier = lattice.FS
				s.recordWrite(sym, tier)
			default:
				if symObj.Kind == hir.Local {
					s.recordWrite(sym, vt)
					tier = s.lat.Join(s.localTier[sym], vt)
					s.localTier[sym] = tier
				}
			}
			s.stmtTier[h] = tier
		case hir.StmtLocalDecl:
			vt := lattice.Const
			if k.Init != nil {
				vt = s.expr(*k.Init)
			}
			s.recordWrite(k.Symbol, vt)
			joined := s.lat.Join(s.localTier[k.Symbol], vt)
			s.localTier[k.Symbol] = joined
			s.stmtTier[h] = joined
		case hir.StmtIf:
			ct := s.expr(k.Condition)
			s.processBlock(k.Then.Statements)
			s.processBlock(k.Else.Statements)
			t := ct
			for _, ch := range k.Then.Statements {
				t = s.lat.Join(t, s.stmtTier[ch])
			}
			for _, ch := range k.Else.Statements {
				t = s.lat.Join(t, s.stmtTier[ch])
			}
			s.stmtTier[h] = t
		case hir.StmtExpr:
			s.stmtTier[h] = s.expr(k.Expr)
		default:
			s.stmtTier[h] = lattice.Const
		}
	}
}

// recordWrite tracks the tier a symbol is written at, for detectSplits
// (§4.5 step 4). It covers Locals and Result-kind builtin write sites
// (gl_Position, result.color) — every symbol a stage-split conflict check
// needs to see — but not Params/Globals, which are never assigned to by a
// pipeline statement.
func (s *tierState) recordWrite(sym hir.SymbolID, tier lattice.Tier) {
	switch s.table.Get(sym).Kind {
	case hir.Local, hir.Result:
	default:
		return
	}
	set, ok := s.writeTiers[sym]
	if !ok {
		set = map[lattice.Tier]struct{}{}
		s.writeTiers[sym] = set
	}
	set[tier] = struct{}{}
}

// hoistCrossTierAttributes rewrites every direct read of a vertex-attribute
// symbol (always produced at VS) that lands inside a statement scheduled
// at a later tier into a read of a synthesized Local holding the same
// value, declared at VS and written by an ordinary StmtLocalDecl. This is
// what lets VaryingPlanner forward it across the VS->FS boundary through
// the same machinery as any other Local (§4.5 step 4's "RHS straddles
// tiers" case, e.g. a builtin write-site accumulating an attribute-derived
// term at FS). Without it the attribute would be referenced directly in
// FS-emitted GLSL with no declaration in scope.
func (s *tierState) hoistCrossTierAttributes(stmts []hir.StmtHandle) []hir.StmtHandle {
	shadows := map[hir.SymbolID]hir.SymbolID{}
	var prelude []hir.StmtHandle

	shadowFor := func(orig hir.SymbolID) hir.SymbolID {
		if sh, ok := shadows[orig]; ok {
			return sh
		}
		origSym := s.table.Get(orig)
		producing := s.symbolTier(orig)
		shID := s.table.Declare("fwd_"+origSym.Name, hir.Local, origSym.Type)
		identExpr := s.fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: orig}, Type: origSym.Type})
		declStmt := s.fn.AddStmt(hir.Statement{Kind: hir.StmtLocalDecl{Symbol: shID, Init: &identExpr}})
		s.exprTier[identExpr] = producing
		s.stmtTier[declStmt] = producing
		s.localTier[shID] = producing
		s.recordWrite(shID, producing)
		prelude = append(prelude, declStmt)
		shadows[orig] = shID
		return shID
	}

	for _, h := range stmts {
		tier, ok := s.stmtTier[h]
		if !ok {
			continue
		}
		s.rewriteStmtAttrs(h, tier, shadowFor)
	}

	if len(prelude) == 0 {
		return stmts
	}
	out := make([]hir.StmtHandle, 0, len(prelude)+len(stmts))
	out = append(out, prelude...)
	out = append(out, stmts...)
	return out
}

func (s *tierState) rewriteStmtAttrs(h hir.StmtHandle, tier lattice.Tier, shadowFor func(hir.SymbolID) hir.SymbolID) {
	stmt := s.fn.Stmt(h)
	switch k := stmt.Kind.(type) {
	case hir.StmtAssign:
		place := s.rewriteExprAttrs(k.Place, tier, shadowFor)
		value := s.rewriteExprAttrs(k.Value, tier, shadowFor)
		s.fn.Statements[h] = hir.Statement{Kind: hir.StmtAssign{Place: place, Value: value}, Span: stmt.Span}
	case hir.StmtLocalDecl:
		if k.Init == nil {
			return
		}
		init := s.rewriteExprAttrs(*k.Init, tier, shadowFor)
		s.fn.Statements[h] = hir.Statement{Kind: hir.StmtLocalDecl{Symbol: k.Symbol, Init: &init}, Span: stmt.Span}
	case hir.StmtIf:
		cond := s.rewriteExprAttrs(k.Condition, tier, shadowFor)
		for _, ch := range k.Then.Statements {
			s.rewriteStmtAttrs(ch, tier, shadowFor)
		}
		for _, ch := range k.Else.Statements {
			s.rewriteStmtAttrs(ch, tier, shadowFor)
		}
		s.fn.Statements[h] = hir.Statement{Kind: hir.StmtIf{Condition: cond, Then: k.Then, Else: k.Else}, Span: stmt.Span}
	case hir.StmtExpr:
		e := s.rewriteExprAttrs(k.Expr, tier, shadowFor)
		s.fn.Statements[h] = hir.Statement{Kind: hir.StmtExpr{Expr: e}, Span: stmt.Span}
	}
}

func (s *tierState) rewriteExprAttrs(h hir.ExprHandle, tier lattice.Tier, shadowFor func(hir.SymbolID) hir.SymbolID) hir.ExprHandle {
	e := s.fn.Expr(h)
	switch k := e.Kind.(type) {
	case hir.ExprIdent:
		sym := s.table.Get(k.Symbol)
		if sym.Builtin == hir.BuiltinVertexAttr && tier > lattice.VS {
			shID := shadowFor(k.Symbol)
			nh := s.fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: shID}, Type: e.Type})
			s.exprTier[nh] = s.exprTier[h]
			return nh
		}
		return h
	case hir.ExprFieldAccess:
		base := s.rewriteExprAttrs(k.Base, tier, shadowFor)
		if base == k.Base {
			return h
		}
		nh := s.fn.AddExpr(hir.Expression{Kind: hir.ExprFieldAccess{Base: base, Field: k.Field}, Type: e.Type})
		s.exprTier[nh] = s.exprTier[h]
		return nh
	case hir.ExprIndex:
		base := s.rewriteExprAttrs(k.Base, tier, shadowFor)
		idx := s.rewriteExprAttrs(k.Index, tier, shadowFor)
		if base == k.Base && idx == k.Index {
			return h
		}
		nh := s.fn.AddExpr(hir.Expression{Kind: hir.ExprIndex{Base: base, Index: idx}, Type: e.Type})
		s.exprTier[nh] = s.exprTier[h]
		return nh
	case hir.ExprSwizzle:
		base := s.rewriteExprAttrs(k.Base, tier, shadowFor)
		if base == k.Base {
			return h
		}
		nh := s.fn.AddExpr(hir.Expression{Kind: hir.ExprSwizzle{Base: base, Components: k.Components}, Type: e.Type})
		s.exprTier[nh] = s.exprTier[h]
		return nh
	case hir.ExprBinary:
		left := s.rewriteExprAttrs(k.Left, tier, shadowFor)
		right := s.rewriteExprAttrs(k.Right, tier, shadowFor)
		if left == k.Left && right == k.Right {
			return h
		}
		nh := s.fn.AddExpr(hir.Expression{Kind: hir.ExprBinary{Op: k.Op, Left: left, Right: right}, Type: e.Type})
		s.exprTier[nh] = s.exprTier[h]
		return nh
	case hir.ExprUnary:
		operand := s.rewriteExprAttrs(k.Operand, tier, shadowFor)
		if operand == k.Operand {
			return h
		}
		nh := s.fn.AddExpr(hir.Expression{Kind: hir.ExprUnary{Op: k.Op, Operand: operand}, Type: e.Type})
		s.exprTier[nh] = s.exprTier[h]
		return nh
	case hir.ExprCompose:
		changed := false
		comps := make([]hir.ExprHandle, len(k.Components))
		for i, c := range k.Components {
			nc := s.rewriteExprAttrs(c, tier, shadowFor)
			comps[i] = nc
			if nc != c {
				changed = true
			}
		}
		if !changed {
			return h
		}
		nh := s.fn.AddExpr(hir.Expression{Kind: hir.ExprCompose{Type: k.Type, Components: comps}, Type: e.Type})
		s.exprTier[nh] = s.exprTier[h]
		return nh
	case hir.ExprCall:
		changed := false
		args := make([]hir.ExprHandle, len(k.Args))
		for i, a := range k.Args {
			na := s.rewriteExprAttrs(a, tier, shadowFor)
			args[i] = na
			if na != a {
				changed = true
			}
		}
		if !changed {
			return h
		}
		nh := s.fn.AddExpr(hir.Expression{Kind: hir.ExprCall{Builtin: k.Builtin, IsUser: k.IsUser, Proc: k.Proc, Args: args}, Type: e.Type})
		s.exprTier[nh] = s.exprTier[h]
		return nh
	case hir.ExprConversion:
		inner := s.rewriteExprAttrs(k.Expr, tier, shadowFor)
		if inner == k.Expr {
			return h
		}
		nh := s.fn.AddExpr(hir.Expression{Kind: hir.ExprConversion{To: k.To, Expr: inner}, Type: e.Type})
		s.exprTier[nh] = s.exprTier[h]
		return nh
	case hir.ExprConditional:
		cond := s.rewriteExprAttrs(k.Cond, tier, shadowFor)
		then := s.rewriteExprAttrs(k.Then, tier, shadowFor)
		els := s.rewriteExprAttrs(k.Else, tier, shadowFor)
		if cond == k.Cond && then == k.Then && els == k.Else {
			return h
		}
		nh := s.fn.AddExpr(hir.Expression{Kind: hir.ExprConditional{Cond: cond, Then: then, Else: els}, Type: e.Type})
		s.exprTier[nh] = s.exprTier[h]
		return nh
	default:
		return h
	}
}

// baseSymbol walks a place expression (Ident, or a FieldAccess/Index chain
// rooted at one) down to the symbol it ultimately denotes.
func baseSymbol(fn *hir.Function, h hir.ExprHandle) hir.SymbolID {
	e := fn.Expr(h)
	switch k := e.Kind.(type) {
	case hir.ExprIdent:
		return k.Symbol
	case hir.ExprFieldAccess:
		return baseSymbol(fn, k.Base)
	case hir.ExprIndex:
		return baseSymbol(fn, k.Base)
	default:
		return 0
	}
}

func snapshotTiers(m map[hir.SymbolID]lattice.Tier) map[hir.SymbolID]lattice.Tier {
	out := make(map[hir.SymbolID]lattice.Tier, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func tiersEqual(a, b map[hir.SymbolID]lattice.Tier) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// detectSplits resolves the §4.5 step 4 conflict check: a Local symbol
// written at more than one distinct tier is a stage split. It is accepted
// (and recorded into st.splits) only when the symbol carries a whole-symbol
// interpolate() annotation; otherwise it is diag.KindStageSplitConflict.
func detectSplits(table *hir.Table, st *tierState, diags *diag.List) error {
	syms := make([]hir.SymbolID, 0, len(st.writeTiers))
	for sym := range st.writeTiers {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })

	for _, sym := range syms {
		tiers := st.writeTiers[sym]
		if len(tiers) <= 1 {
			continue
		}
		sorted := sortedTiers(tiers)
		symObj := table.Get(sym)
		if symObj.Interpolate == nil {
			diags.ErrorAt(diag.KindStageSplitConflict,
				fmt.Sprintf("%q is written at multiple tiers without an interpolate() annotation", symObj.Name),
				symObj.Span)
			continue
		}
		st.splits = append(st.splits, ConflictSplit{
			Symbol:    sym,
			Tiers:     sorted,
			Qualifier: symObj.Interpolate.Qualifier,
		})
	}

	if diags.HasErrors() {
		return fmt.Errorf("partition: %w", diags.Errors()[0])
	}
	return nil
}

func sortedTiers(set map[lattice.Tier]struct{}) []lattice.Tier {
	out := make([]lattice.Tier, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// scheduleStatements builds the dependency graph over the (interpolate-
// stripped) top-level statement list and runs the §4.4 reordering
// primitive, grouping the resulting schedule by tier.
func scheduleStatements(fn *hir.Function, stmts []hir.StmtHandle, stmtTier map[hir.StmtHandle]lattice.Tier, lat lattice.StageLattice) (map[lattice.Tier][]hir.StmtHandle, error) {
	g := depgraph.Build(fn, stmts)
	order := lat.ExecutionOrder()
	tierOf := func(i int) lattice.Tier { return stmtTier[stmts[i]] }

	schedule, err := g.Reorder(tierOf, order)
	if err != nil {
		return nil, err
	}

	out := make(map[lattice.Tier][]hir.StmtHandle)
	for _, idx := range schedule {
		t := tierOf(idx)
		out[t] = append(out[t], stmts[idx])
	}
	return out, nil
}
