package depgraph

import (
	"testing"

	"github.com/gogpu/shaderpart/internal/hir"
	"github.com/gogpu/shaderpart/internal/lattice"
	"github.com/gogpu/shaderpart/internal/typesystem"
)

// buildFn constructs a tiny function: two locals declared independently,
// then a third reading both, for dependency-edge and reorder tests.
func buildFn() (*hir.Function, hir.SymbolID, hir.SymbolID, hir.SymbolID) {
	fn := &hir.Function{Name: "pipeline"}
	a := hir.SymbolID(0)
	b := hir.SymbolID(1)
	c := hir.SymbolID(2)

	litA := fn.AddExpr(hir.Expression{Kind: hir.ExprLiteral{Value: hir.LiteralValue{Kind: typesystem.Float, Float: 1}}})
	litB := fn.AddExpr(hir.Expression{Kind: hir.ExprLiteral{Value: hir.LiteralValue{Kind: typesystem.Float, Float: 2}}})
	declA := fn.AddStmt(hir.Statement{Kind: hir.StmtLocalDecl{Symbol: a, Init: &litA}})
	declB := fn.AddStmt(hir.Statement{Kind: hir.StmtLocalDecl{Symbol: b, Init: &litB}})

	identA := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: a}})
	identB := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: b}})
	sum := fn.AddExpr(hir.Expression{Kind: hir.ExprBinary{Op: hir.OpAdd, Left: identA, Right: identB}})
	declC := fn.AddStmt(hir.Statement{Kind: hir.StmtLocalDecl{Symbol: c, Init: &sum}})

	fn.Body = hir.Block{Statements: []hir.StmtHandle{declA, declB, declC}}
	return fn, a, b, c
}

func TestBuild_RecordsReadsAndWrites(t *testing.T) {
	fn, a, _, c := buildFn()
	g := Build(fn, fn.Body.Statements)
	if len(g.Records) != 3 {
		t.Fatalf("len(Records) = %d, want 3", len(g.Records))
	}
	if _, ok := g.Records[0].Writes[a]; !ok {
		t.Error("first statement should record a write to symbol a")
	}
	if _, ok := g.Records[2].Reads[a]; !ok {
		t.Error("third statement should record a read of symbol a")
	}
	_ = c
}

func TestBuild_ThirdStatementDependsOnFirstTwo(t *testing.T) {
	fn, _, _, _ := buildFn()
	g := Build(fn, fn.Body.Statements)
	// Edges[2] must list 0 and 1 (the statement "c = a + b" depends on both
	// declarations), order-independent within the edge list.
	if len(g.Edges[2]) != 2 {
		t.Fatalf("len(Edges[2]) = %d, want 2", len(g.Edges[2]))
	}
	seen := map[int]bool{}
	for _, j := range g.Edges[2] {
		seen[j] = true
	}
	if !seen[0] || !seen[1] {
		t.Errorf("Edges[2] = %v, want to contain both 0 and 1", g.Edges[2])
	}
}

func TestReorder_PreservesDependencyEdges(t *testing.T) {
	fn, _, _, _ := buildFn()
	stmts := fn.Body.Statements
	g := Build(fn, stmts)

	// All three statements classified at the same tier: the only valid
	// order respecting RAW edges keeps index 2 after 0 and 1.
	tierOf := func(i int) lattice.Tier { return lattice.VS }
	order, err := g.Reorder(tierOf, []lattice.Tier{lattice.VS})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	pos := map[int]int{}
	for i, idx := range order {
		pos[idx] = i
	}
	if pos[2] < pos[0] || pos[2] < pos[1] {
		t.Errorf("Reorder result %v violates dependency: statement 2 must follow 0 and 1", order)
	}
}

func TestReorder_TiesBreakBySourceOrder(t *testing.T) {
	// Three independent statements (no shared symbols) all in the same
	// tier must come out in original source order.
	fn := &hir.Function{Name: "pipeline"}
	var stmts []hir.StmtHandle
	for i := 0; i < 3; i++ {
		lit := fn.AddExpr(hir.Expression{Kind: hir.ExprLiteral{Value: hir.LiteralValue{Kind: typesystem.Float, Float: float64(i)}}})
		stmts = append(stmts, fn.AddStmt(hir.Statement{Kind: hir.StmtLocalDecl{Symbol: hir.SymbolID(i), Init: &lit}}))
	}
	fn.Body = hir.Block{Statements: stmts}
	g := Build(fn, stmts)
	tierOf := func(i int) lattice.Tier { return lattice.FS }
	order, err := g.Reorder(tierOf, []lattice.Tier{lattice.FS})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	want := []int{0, 1, 2}
	for i, idx := range order {
		if idx != want[i] {
			t.Errorf("Reorder() = %v, want %v (source order preserved among independent statements)", order, want)
			break
		}
	}
}

func TestReorder_ConflictWhenDependencyIsInLaterTier(t *testing.T) {
	fn, a, _, _ := buildFn()
	stmts := fn.Body.Statements
	g := Build(fn, stmts)

	// Declare 'a' at FS (later) but make statement 2, which reads a, sit
	// at VS (earlier) — no valid tier-respecting order exists.
	tierOf := func(i int) lattice.Tier {
		if i == 0 {
			return lattice.FS
		}
		if i == 1 {
			return lattice.VS
		}
		return lattice.VS
	}
	_, err := g.Reorder(tierOf, []lattice.Tier{lattice.VS, lattice.FS})
	if err == nil {
		t.Error("Reorder should fail when a dependency is scheduled at a later tier than its dependent")
	}
	_ = a
}
