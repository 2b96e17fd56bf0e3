package partition

import (
	"testing"

	"github.com/gogpu/shaderpart/internal/diag"
	"github.com/gogpu/shaderpart/internal/hir"
	"github.com/gogpu/shaderpart/internal/lattice"
	"github.com/gogpu/shaderpart/internal/typesystem"
)

func defaultLattice() lattice.StageLattice { return lattice.New(false, false) }

// buildSimplePipeline declares a CPU global and a vertex attribute, and
// writes result = global * attr into a Local, matching the spec's S1-style
// scenario: a pure CPU-tier value multiplied by a VS-tier value lands at VS.
func buildSimplePipeline(t *testing.T) (*hir.Function, *hir.Table, hir.SymbolID, hir.SymbolID, hir.SymbolID) {
	t.Helper()
	table := hir.NewTable()
	global := table.Declare("mvp", hir.Global, typesystem.Mat(4, 4))
	table.Get(global).Builtin = hir.BuiltinCPUGlobal
	attr := table.Declare("position", hir.Param, typesystem.Vec(4, typesystem.Float))
	table.Get(attr).Builtin = hir.BuiltinVertexAttr
	result := table.Declare("clipPos", hir.Local, typesystem.Vec(4, typesystem.Float))

	fn := &hir.Function{Name: "pipeline"}
	gExpr := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: global}})
	aExpr := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: attr}})
	mul := fn.AddExpr(hir.Expression{Kind: hir.ExprBinary{Op: hir.OpMul, Left: gExpr, Right: aExpr}})
	decl := fn.AddStmt(hir.Statement{Kind: hir.StmtLocalDecl{Symbol: result, Init: &mul}})
	fn.Body = hir.Block{Statements: []hir.StmtHandle{decl}}
	return fn, table, global, attr, result
}

func TestPartition_JoinsCPUAndVSTierToVS(t *testing.T) {
	fn, table, _, _, result := buildSimplePipeline(t)
	var diags diag.List
	res, err := Partition(fn, table, defaultLattice(), Config{}, &diags)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if got := res.LocalTier[result]; got != lattice.VS {
		t.Errorf("LocalTier[clipPos] = %s, want VS", got)
	}
}

func TestPartition_TextureSamplePinnedToFSByDefault(t *testing.T) {
	table := hir.NewTable()
	sampler := table.Declare("albedo", hir.Global, typesystem.Sampler(typesystem.Sampler2D))
	table.Get(sampler).Builtin = hir.BuiltinTextureSampler
	uv := table.Declare("uv", hir.Local, typesystem.Vec(2, typesystem.Float))
	result := table.Declare("color", hir.Local, typesystem.Vec(4, typesystem.Float))

	fn := &hir.Function{Name: "pipeline"}
	zero := fn.AddExpr(hir.Expression{Kind: hir.ExprLiteral{Value: hir.LiteralValue{Kind: typesystem.Float, Float: 0}}})
	uvVec := fn.AddExpr(hir.Expression{Kind: hir.ExprCompose{Type: typesystem.Vec(2, typesystem.Float), Components: []hir.ExprHandle{zero, zero}}})
	declUV := fn.AddStmt(hir.Statement{Kind: hir.StmtLocalDecl{Symbol: uv, Init: &uvVec}})

	samplerExpr := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: sampler}})
	uvExpr := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: uv}})
	call := fn.AddExpr(hir.Expression{Kind: hir.ExprCall{Builtin: hir.FnTextureSample, Args: []hir.ExprHandle{samplerExpr, uvExpr}}})
	declColor := fn.AddStmt(hir.Statement{Kind: hir.StmtLocalDecl{Symbol: result, Init: &call}})
	fn.Body = hir.Block{Statements: []hir.StmtHandle{declUV, declColor}}

	var diags diag.List
	res, err := Partition(fn, table, defaultLattice(), Config{}, &diags)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if got := res.LocalTier[result]; got != lattice.FS {
		t.Errorf("LocalTier[color] = %s, want FS (texture sample pinned to FS by default)", got)
	}
}

func TestPartition_VertexTextureFetchOptInAllowsEarlierTier(t *testing.T) {
	table := hir.NewTable()
	sampler := table.Declare("heightmap", hir.Global, typesystem.Sampler(typesystem.Sampler2D))
	table.Get(sampler).Builtin = hir.BuiltinTextureSampler
	result := table.Declare("height", hir.Local, typesystem.Vec(4, typesystem.Float))

	fn := &hir.Function{Name: "pipeline"}
	zero := fn.AddExpr(hir.Expression{Kind: hir.ExprLiteral{Value: hir.LiteralValue{Kind: typesystem.Float, Float: 0}}})
	uvVec := fn.AddExpr(hir.Expression{Kind: hir.ExprCompose{Type: typesystem.Vec(2, typesystem.Float), Components: []hir.ExprHandle{zero, zero}}})
	samplerExpr := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: sampler}})
	call := fn.AddExpr(hir.Expression{Kind: hir.ExprCall{Builtin: hir.FnTextureSample, Args: []hir.ExprHandle{samplerExpr, uvVec}}})
	decl := fn.AddStmt(hir.Statement{Kind: hir.StmtLocalDecl{Symbol: result, Init: &call}})
	fn.Body = hir.Block{Statements: []hir.StmtHandle{decl}}

	var diags diag.List
	res, err := Partition(fn, table, defaultLattice(), Config{EnableVertexTextureFetch: true}, &diags)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if got := res.LocalTier[result]; got == lattice.FS {
		t.Errorf("LocalTier[height] = %s, want a non-FS tier once vertex texture fetch is enabled", got)
	}
}

// A Local assigned at two distinct tiers without an interpolate() annotation
// is a stage-split conflict (§4.5 step 4).
func TestPartition_UnannotatedSplitIsConflict(t *testing.T) {
	table := hir.NewTable()
	attr := table.Declare("position", hir.Param, typesystem.Vec(4, typesystem.Float))
	table.Get(attr).Builtin = hir.BuiltinVertexAttr
	sampler := table.Declare("albedo", hir.Global, typesystem.Sampler(typesystem.Sampler2D))
	table.Get(sampler).Builtin = hir.BuiltinTextureSampler
	shared := table.Declare("shared", hir.Local, typesystem.Vec(4, typesystem.Float))

	fn := &hir.Function{Name: "pipeline"}
	attrExpr := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: attr}})
	declVS := fn.AddStmt(hir.Statement{Kind: hir.StmtLocalDecl{Symbol: shared, Init: &attrExpr}})

	samplerExpr := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: sampler}})
	uv := fn.AddExpr(hir.Expression{Kind: hir.ExprLiteral{Value: hir.LiteralValue{Kind: typesystem.Float, Float: 0}}})
	call := fn.AddExpr(hir.Expression{Kind: hir.ExprCall{Builtin: hir.FnTextureSample, Args: []hir.ExprHandle{samplerExpr, uv}}})
	sharedPlace := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: shared}})
	assignFS := fn.AddStmt(hir.Statement{Kind: hir.StmtAssign{Place: sharedPlace, Value: call}})

	fn.Body = hir.Block{Statements: []hir.StmtHandle{declVS, assignFS}}

	var diags diag.List
	_, err := Partition(fn, table, defaultLattice(), Config{}, &diags)
	if err == nil {
		t.Fatal("Partition should fail: shared is written at both VS and FS tiers with no interpolate() annotation")
	}
	found := false
	for _, d := range diags {
		if d.Kind == diag.KindStageSplitConflict {
			found = true
		}
	}
	if !found {
		t.Errorf("diags = %v, want a KindStageSplitConflict entry", diags)
	}
}

// interpolate() applied to a swizzle/field/index target is rejected,
// independent of whether the symbol is actually split (§4.5 step 6, spec §8 S5).
func TestPartition_BadInterpolateTargetRejected(t *testing.T) {
	table := hir.NewTable()
	v := table.Declare("v", hir.Local, typesystem.Vec(3, typesystem.Float))

	fn := &hir.Function{Name: "pipeline"}
	zero := fn.AddExpr(hir.Expression{Kind: hir.ExprLiteral{Value: hir.LiteralValue{Kind: typesystem.Float, Float: 0}}})
	decl := fn.AddStmt(hir.Statement{Kind: hir.StmtLocalDecl{Symbol: v, Init: &zero}})

	vExpr := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: v}})
	swizzle := fn.AddExpr(hir.Expression{Kind: hir.ExprSwizzle{Base: vExpr, Components: []hir.SwizzleComponent{hir.ComponentX}}})
	interp := fn.AddStmt(hir.Statement{Kind: hir.StmtInterpolate{Target: swizzle}})

	fn.Body = hir.Block{Statements: []hir.StmtHandle{decl, interp}}

	var diags diag.List
	_, err := Partition(fn, table, defaultLattice(), Config{}, &diags)
	if err == nil {
		t.Fatal("Partition should reject interpolate() applied to a swizzle target")
	}
	found := false
	for _, d := range diags {
		if d.Kind == diag.KindBadInterpolate {
			found = true
		}
	}
	if !found {
		t.Errorf("diags = %v, want a KindBadInterpolate entry", diags)
	}
}

// A whole-symbol interpolate() annotation turns an otherwise-conflicting
// multi-tier write into an accepted ConflictSplit.
func TestPartition_AnnotatedSplitIsAccepted(t *testing.T) {
	table := hir.NewTable()
	attr := table.Declare("position", hir.Param, typesystem.Vec(4, typesystem.Float))
	table.Get(attr).Builtin = hir.BuiltinVertexAttr
	sampler := table.Declare("albedo", hir.Global, typesystem.Sampler(typesystem.Sampler2D))
	table.Get(sampler).Builtin = hir.BuiltinTextureSampler
	shared := table.Declare("shared", hir.Local, typesystem.Vec(4, typesystem.Float))

	fn := &hir.Function{Name: "pipeline"}
	attrExpr := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: attr}})
	declVS := fn.AddStmt(hir.Statement{Kind: hir.StmtLocalDecl{Symbol: shared, Init: &attrExpr}})

	sharedExpr := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: shared}})
	interp := fn.AddStmt(hir.Statement{Kind: hir.StmtInterpolate{Target: sharedExpr}})

	samplerExpr := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: sampler}})
	uv := fn.AddExpr(hir.Expression{Kind: hir.ExprLiteral{Value: hir.LiteralValue{Kind: typesystem.Float, Float: 0}}})
	call := fn.AddExpr(hir.Expression{Kind: hir.ExprCall{Builtin: hir.FnTextureSample, Args: []hir.ExprHandle{samplerExpr, uv}}})
	sharedPlace := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: shared}})
	assignFS := fn.AddStmt(hir.Statement{Kind: hir.StmtAssign{Place: sharedPlace, Value: call}})

	fn.Body = hir.Block{Statements: []hir.StmtHandle{declVS, interp, assignFS}}

	var diags diag.List
	res, err := Partition(fn, table, defaultLattice(), Config{}, &diags)
	if err != nil {
		t.Fatalf("Partition with interpolate() annotation should succeed: %v", err)
	}
	if len(res.Splits) != 1 {
		t.Fatalf("len(Splits) = %d, want 1", len(res.Splits))
	}
	if res.Splits[0].Symbol != shared {
		t.Errorf("Splits[0].Symbol = %v, want %v", res.Splits[0].Symbol, shared)
	}
}

// A Local read before any statement writes it is an unknown identifier
// (spec §8 boundary behavior), not a silent CONST default.
func TestPartition_UnwrittenLocalIsUnknownIdentifier(t *testing.T) {
	table := hir.NewTable()
	ghost := table.Declare("ghost", hir.Local, typesystem.ScalarFloat())
	result := table.Declare("out", hir.Local, typesystem.ScalarFloat())

	fn := &hir.Function{Name: "pipeline"}
	ghostExpr := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: ghost}})
	decl := fn.AddStmt(hir.Statement{Kind: hir.StmtLocalDecl{Symbol: result, Init: &ghostExpr}})
	fn.Body = hir.Block{Statements: []hir.StmtHandle{decl}}

	var diags diag.List
	_, err := Partition(fn, table, defaultLattice(), Config{}, &diags)
	if err == nil {
		t.Fatal("Partition should fail: ghost is read but never written")
	}
	found := false
	for _, d := range diags {
		if d.Kind == diag.KindUnknownIdentifier {
			found = true
		}
	}
	if !found {
		t.Errorf("diags = %v, want a KindUnknownIdentifier entry", diags)
	}
}

func TestPartition_ModuleConstIsConstTier(t *testing.T) {
	table := hir.NewTable()
	c := table.Declare("PI", hir.ModuleConst, typesystem.ScalarFloat())
	result := table.Declare("two_pi", hir.Local, typesystem.ScalarFloat())

	fn := &hir.Function{Name: "pipeline"}
	cExpr := fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: c}})
	two := fn.AddExpr(hir.Expression{Kind: hir.ExprLiteral{Value: hir.LiteralValue{Kind: typesystem.Float, Float: 2}}})
	mul := fn.AddExpr(hir.Expression{Kind: hir.ExprBinary{Op: hir.OpMul, Left: two, Right: cExpr}})
	decl := fn.AddStmt(hir.Statement{Kind: hir.StmtLocalDecl{Symbol: result, Init: &mul}})
	fn.Body = hir.Block{Statements: []hir.StmtHandle{decl}}

	var diags diag.List
	res, err := Partition(fn, table, defaultLattice(), Config{}, &diags)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if got := res.LocalTier[result]; got != lattice.Const {
		t.Errorf("LocalTier[two_pi] = %s, want CONST", got)
	}
}
