// Package depgraph implements DependencyGraph (§4.4): a flat, indexed
// def-use graph over a function's top-level statements, and the
// tier-grouped reordering primitive the Partitioner uses to move
// statements into per-stage execution order without breaking a dependency.
package depgraph

import (
	"fmt"
	"sort"

	"github.com/gogpu/shaderpart/internal/diag"
	"github.com/gogpu/shaderpart/internal/hir"
	"github.com/gogpu/shaderpart/internal/lattice"
)

// Record is the dependency-relevant summary of one top-level statement:
// which symbols it reads and writes, aggregated over its entire subtree
// (an If's condition plus both arms count as one record — per hir.StmtIf,
// a statement inside an arm never migrates across the If's own boundary,
// so the If moves as a unit).
type Record struct {
	Index  int
	Stmt   hir.StmtHandle
	Reads  map[hir.SymbolID]struct{}
	Writes map[hir.SymbolID]struct{}
}

// Graph is the flat, indexed dependency graph over one function's
// top-level statement list: Records and Edges are parallel to the input
// slice of statement handles, referenced by integer index rather than by
// pointer, per §9's handle-based design note.
type Graph struct {
	fn      *hir.Function
	Records []Record
	Edges   [][]int // Edges[i] lists statement indices that must execute before i
}

// Build walks fn's body and produces one Record per top-level statement,
// plus the def-use edges between them. A later statement depends on an
// earlier one when they touch a common symbol and at least one side
// writes it (read-after-write, write-after-write, or write-after-read).
func Build(fn *hir.Function, stmts []hir.StmtHandle) *Graph {
	g := &Graph{fn: fn}
	g.Records = make([]Record, len(stmts))
	for i, h := range stmts {
		reads := map[hir.SymbolID]struct{}{}
		writes := map[hir.SymbolID]struct{}{}
		collectStmt(fn, h, reads, writes)
		g.Records[i] = Record{Index: i, Stmt: h, Reads: reads, Writes: writes}
	}
	g.Edges = make([][]int, len(stmts))
	for i := range g.Records {
		for j := 0; j < i; j++ {
			if dependsOn(g.Records[i], g.Records[j]) {
				g.Edges[i] = append(g.Edges[i], j)
			}
		}
	}
	return g
}

func dependsOn(later, earlier Record) bool {
	for sym := range later.Reads {
		if _, ok := earlier.Writes[sym]; ok {
			return true
		}
	}
	for sym := range later.Writes {
		if _, ok := earlier.Writes[sym]; ok {
			return true
		}
		if _, ok := earlier.Reads[sym]; ok {
			return true
		}
	}
	return false
}

func collectStmt(fn *hir.Function, h hir.StmtHandle, reads, writes map[hir.SymbolID]struct{}) {
	s := fn.Stmt(h)
	switch k := s.Kind.(type) {
	case hir.StmtAssign:
		collectLValue(fn, k.Place, writes, reads)
		collectExpr(fn, k.Value, reads)
	case hir.StmtLocalDecl:
		writes[k.Symbol] = struct{}{}
		if k.Init != nil {
			collectExpr(fn, *k.Init, reads)
		}
	case hir.StmtIf:
		collectExpr(fn, k.Condition, reads)
		for _, sh := range k.Then.Statements {
			collectStmt(fn, sh, reads, writes)
		}
		for _, sh := range k.Else.Statements {
			collectStmt(fn, sh, reads, writes)
		}
	case hir.StmtExpr:
		collectExpr(fn, k.Expr, reads)
	case hir.StmtInterpolate:
		// Consumed during HIR construction; carries no runtime dependency.
	case hir.StmtConstDecl:
		writes[k.Symbol] = struct{}{}
		collectExpr(fn, k.Value, reads)
	case hir.StmtForRange:
		writes[k.Var] = struct{}{}
		collectExpr(fn, k.Lo, reads)
		collectExpr(fn, k.Hi, reads)
		for _, sh := range k.Body.Statements {
			collectStmt(fn, sh, reads, writes)
		}
	case hir.StmtForItems:
		writes[k.Var] = struct{}{}
		collectExpr(fn, k.Array, reads)
		for _, sh := range k.Body.Statements {
			collectStmt(fn, sh, reads, writes)
		}
	case hir.StmtWhile:
		collectExpr(fn, k.Cond, reads)
		for _, sh := range k.Body.Statements {
			collectStmt(fn, sh, reads, writes)
		}
	case hir.StmtReturn:
		if k.Value != nil {
			collectExpr(fn, *k.Value, reads)
		}
	}
}

// collectLValue records the symbol a place expression ultimately denotes
// as written, and (for a field/index place) the base's symbol as also
// read, since e.g. `v.x = ...` both reads and writes through v.
func collectLValue(fn *hir.Function, h hir.ExprHandle, writes, reads map[hir.SymbolID]struct{}) {
	e := fn.Expr(h)
	switch k := e.Kind.(type) {
	case hir.ExprIdent:
		writes[k.Symbol] = struct{}{}
	case hir.ExprFieldAccess:
		collectLValue(fn, k.Base, writes, reads)
	case hir.ExprIndex:
		collectLValue(fn, k.Base, writes, reads)
		collectExpr(fn, k.Index, reads)
	}
}

func collectExpr(fn *hir.Function, h hir.ExprHandle, reads map[hir.SymbolID]struct{}) {
	e := fn.Expr(h)
	switch k := e.Kind.(type) {
	case hir.ExprLiteral:
	case hir.ExprIdent:
		reads[k.Symbol] = struct{}{}
	case hir.ExprFieldAccess:
		collectExpr(fn, k.Base, reads)
	case hir.ExprIndex:
		collectExpr(fn, k.Base, reads)
		collectExpr(fn, k.Index, reads)
	case hir.ExprSwizzle:
		collectExpr(fn, k.Base, reads)
	case hir.ExprBinary:
		collectExpr(fn, k.Left, reads)
		collectExpr(fn, k.Right, reads)
	case hir.ExprUnary:
		collectExpr(fn, k.Operand, reads)
	case hir.ExprCompose:
		for _, c := range k.Components {
			collectExpr(fn, c, reads)
		}
	case hir.ExprCall:
		for _, a := range k.Args {
			collectExpr(fn, a, reads)
		}
	case hir.ExprConversion:
		collectExpr(fn, k.Expr, reads)
	case hir.ExprConditional:
		collectExpr(fn, k.Cond, reads)
		collectExpr(fn, k.Then, reads)
		collectExpr(fn, k.Else, reads)
	}
}

// Reorder implements the §4.4 reordering primitive: a stable tier-grouped
// topological sort. tierOf reports the already-assigned tier of the
// statement at a given graph index; order lists the tiers in execution
// order. Statements are grouped by tier in that order, and within a group
// Kahn's algorithm runs with the ready set kept in ascending original
// index order, so ties always break by source order (§4.5 "Determinism").
// Returns diag.KindStageOrderConflict if a dependency would force a
// statement to execute before one of its own dependencies' tier group.
func (g *Graph) Reorder(tierOf func(int) lattice.Tier, order []lattice.Tier) ([]int, error) {
	n := len(g.Records)
	indegree := make([]int, n)
	forward := make([][]int, n) // forward[j] = statements that depend on j
	for i := range g.Records {
		for _, j := range g.Edges[i] {
			indegree[i]++
			forward[j] = append(forward[j], i)
		}
	}

	var result []int
	scheduled := make([]bool, n)

	for _, tier := range order {
		var ready []int
		for i := 0; i < n; i++ {
			if !scheduled[i] && tierOf(i) == tier && indegree[i] == 0 {
				ready = append(ready, i)
			}
		}
		sort.Ints(ready)

		for len(ready) > 0 {
			i := ready[0]
			ready = ready[1:]
			result = append(result, i)
			scheduled[i] = true
			for _, dep := range forward[i] {
				indegree[dep]--
				if tierOf(dep) != tier {
					continue
				}
				if indegree[dep] == 0 && !scheduled[dep] {
					ready = append(ready, dep)
					sort.Ints(ready)
				}
			}
		}

		for i := 0; i < n; i++ {
			if !scheduled[i] && tierOf(i) == tier {
				return nil, fmt.Errorf("%w", diag.New(diag.KindStageOrderConflict,
					fmt.Sprintf("statement %d in tier %s cannot be ordered: a dependency resolves to a later tier", i, tier)))
			}
		}
	}

	for i := 0; i < n; i++ {
		if !scheduled[i] {
			return nil, fmt.Errorf("%w", diag.New(diag.KindStageOrderConflict,
				fmt.Sprintf("statement %d could not be scheduled in any present tier", i)))
		}
	}

	return result, nil
}
