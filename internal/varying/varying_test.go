package varying

import (
	"testing"

	"github.com/gogpu/shaderpart/internal/hir"
	"github.com/gogpu/shaderpart/internal/lattice"
	"github.com/gogpu/shaderpart/internal/partition"
	"github.com/gogpu/shaderpart/internal/typesystem"
)

func twoStageLattice() lattice.StageLattice { return lattice.New(false, false) }

func TestPlan_CrossingSymbolBecomesVarying(t *testing.T) {
	fn := &hir.Function{Name: "pipeline"}
	table := hir.NewTable()
	color := table.Declare("color", hir.Local, typesystem.Vec(3, typesystem.Float))

	// color is read by a statement scheduled into the FS tier group.
	colorExpr := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: color}})
	readStmt := fn.AddStmt(hir.Statement{Kind: hir.StmtExpr{Expr: colorExpr}})
	part := &partition.Result{
		LocalTier: map[hir.SymbolID]lattice.Tier{color: lattice.VS},
		Order:     map[lattice.Tier][]hir.StmtHandle{lattice.FS: {readStmt}},
	}

	forwards, dropped := Plan(fn, table, part, twoStageLattice())
	if len(dropped) != 0 {
		t.Errorf("dropped = %v, want none", dropped)
	}
	if len(forwards) != 1 {
		t.Fatalf("len(forwards) = %d, want 1", len(forwards))
	}
	b := forwards[0]
	if b.From != lattice.VS || b.To != lattice.FS {
		t.Errorf("boundary = %s->%s, want VS->FS", b.From, b.To)
	}
	if len(b.Varyings) != 1 || b.Varyings[0].Symbol != color {
		t.Fatalf("Varyings = %+v, want one entry for color", b.Varyings)
	}
	if b.Varyings[0].Slot != 0 {
		t.Errorf("Slot = %d, want 0", b.Varyings[0].Slot)
	}
}

func TestPlan_NeverReadDownstreamIsDropped(t *testing.T) {
	fn := &hir.Function{Name: "pipeline"}
	table := hir.NewTable()
	unused := table.Declare("unused", hir.Local, typesystem.Vec(3, typesystem.Float))

	// unused is read once but only by a statement scheduled into the VS
	// tier group itself (not downstream), so it never crosses VS->FS.
	unusedExpr := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: unused}})
	readStmt := fn.AddStmt(hir.Statement{Kind: hir.StmtExpr{Expr: unusedExpr}})
	part := &partition.Result{
		LocalTier: map[hir.SymbolID]lattice.Tier{unused: lattice.VS},
		Order:     map[lattice.Tier][]hir.StmtHandle{lattice.VS: {readStmt}},
	}

	forwards, dropped := Plan(fn, table, part, twoStageLattice())
	if len(forwards) != 0 {
		t.Errorf("forwards = %+v, want none (symbol never read at or after FS)", forwards)
	}
	if len(dropped) != 1 || dropped[0] != unused {
		t.Errorf("dropped = %v, want [unused]", dropped)
	}
}

func TestPlan_SlotsAreDenseAndOrderedByAssignedName(t *testing.T) {
	fn := &hir.Function{Name: "pipeline"}
	table := hir.NewTable()
	a := table.Declare("zeta", hir.Local, typesystem.ScalarFloat())
	b := table.Declare("alpha", hir.Local, typesystem.ScalarFloat())

	aExpr := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: a}})
	bExpr := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: b}})
	readA := fn.AddStmt(hir.Statement{Kind: hir.StmtExpr{Expr: aExpr}})
	readB := fn.AddStmt(hir.Statement{Kind: hir.StmtExpr{Expr: bExpr}})
	part := &partition.Result{
		LocalTier: map[hir.SymbolID]lattice.Tier{a: lattice.VS, b: lattice.VS},
		Order:     map[lattice.Tier][]hir.StmtHandle{lattice.FS: {readA, readB}},
	}

	forwards, _ := Plan(fn, table, part, twoStageLattice())
	if len(forwards) != 1 {
		t.Fatalf("len(forwards) = %d, want 1", len(forwards))
	}
	vs := forwards[0].Varyings
	if len(vs) != 2 {
		t.Fatalf("len(Varyings) = %d, want 2", len(vs))
	}
	// Names sort alphabetically: alpha (symbol b) before zeta (symbol a).
	if vs[0].Name != "alpha" || vs[0].Slot != 0 {
		t.Errorf("Varyings[0] = %+v, want name alpha at slot 0", vs[0])
	}
	if vs[1].Name != "zeta" || vs[1].Slot != 1 {
		t.Errorf("Varyings[1] = %+v, want name zeta at slot 1", vs[1])
	}
}

func TestChooseQualifier(t *testing.T) {
	floatSym := &hir.Symbol{Type: typesystem.ScalarFloat()}
	intSym := &hir.Symbol{Type: typesystem.ScalarInt()}
	boolSym := &hir.Symbol{Type: typesystem.ScalarBool()}
	flatQualifier := hir.Flat
	annotated := &hir.Symbol{Type: typesystem.ScalarFloat(), Interpolate: &hir.InterpolateAnnotation{Qualifier: &flatQualifier}}

	tests := []struct {
		name string
		sym  *hir.Symbol
		want hir.Qualifier
	}{
		{"float_defaults_smooth", floatSym, hir.Smooth},
		{"int_defaults_flat", intSym, hir.Flat},
		{"bool_defaults_flat", boolSym, hir.Flat},
		{"annotation_overrides_default", annotated, hir.Flat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chooseQualifier(tt.sym); got != tt.want {
				t.Errorf("chooseQualifier(%+v) = %s, want %s", tt.sym, got, tt.want)
			}
		})
	}
}

func TestLowerBoolType(t *testing.T) {
	tests := []struct {
		name string
		typ  typesystem.Type
		want string
	}{
		{"scalar_bool", typesystem.ScalarBool(), "int"},
		{"bvec3", typesystem.Vec(3, typesystem.Bool), "ivec3"},
		{"bvec2", typesystem.Vec(2, typesystem.Bool), "ivec2"},
		{"non_bool_untouched", typesystem.ScalarFloat(), "float"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			glslName, _ := typesystem.GLSLName(tt.typ)
			if got := lowerBoolType(tt.typ, glslName); got != tt.want {
				t.Errorf("lowerBoolType(%+v, %q) = %q, want %q", tt.typ, glslName, got, tt.want)
			}
		})
	}
}
