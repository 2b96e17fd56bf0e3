// Package shaderpart implements the Driver (§4.8): it orchestrates
// Partition -> PlanVaryings -> Emit-per-stage over a host pipeline
// function and produces the compiled GLSL artifact bundle, mirroring
// naga.CompileWithOptions's pipeline-of-named-stages shape.
package shaderpart

import (
	"fmt"
	"sort"

	"github.com/gogpu/shaderpart/internal/diag"
	"github.com/gogpu/shaderpart/internal/glslgen"
	"github.com/gogpu/shaderpart/internal/hir"
	"github.com/gogpu/shaderpart/internal/lattice"
	"github.com/gogpu/shaderpart/internal/partition"
	"github.com/gogpu/shaderpart/internal/symtab"
	"github.com/gogpu/shaderpart/internal/typesystem"
	"github.com/gogpu/shaderpart/internal/varying"
)

// Config carries this compiler's opt-in behavior switches. Both default
// to false; see SPEC_FULL.md §3/§9.
type Config struct {
	// EnableGeometryTessellation opts into geometry/tessellation stage
	// statement classification. Unimplemented — set true and Compile
	// fails with diag.KindUnsupportedConstruct, since no GS/TS builtin
	// classification rule exists in internal/partition.
	EnableGeometryTessellation bool
	// EnableVertexTextureFetch allows a texture sample expression to
	// resolve to CPU/VS tier instead of being pinned to FS.
	EnableVertexTextureFetch bool
}

// CompileOptions is the top-level Compile configuration.
type CompileOptions struct {
	Config Config
	GLSL   glslgen.Options
}

// DefaultOptions returns the default CompileOptions: geometry/tessellation
// and vertex texture fetch both off, GLSL 4.40 core target.
func DefaultOptions() CompileOptions {
	return CompileOptions{GLSL: glslgen.DefaultOptions()}
}

// UniformBinding describes one CPU-supplied uniform in the compiled
// bundle, naming which GLSL stages declare it.
type UniformBinding struct {
	Symbol   hir.SymbolID
	Name     string
	GLSLType string
	Stages   []lattice.Tier
}

// AttributeBinding describes one vertex attribute input and its assigned
// location.
type AttributeBinding struct {
	Symbol   hir.SymbolID
	Name     string
	GLSLType string
	Location uint32
}

// TextureBinding describes one sampler/texture uniform.
type TextureBinding struct {
	Symbol   hir.SymbolID
	Name     string
	GLSLType string
}

// Bundle is the compiled artifact set: per-stage GLSL source plus the
// CPU-side binding tables needed to wire up draw calls.
type Bundle struct {
	VertexShader   string
	FragmentShader string
	GeometryShader *string
	TessellationShader *string

	UniformBindings   []UniformBinding
	AttributeBindings []AttributeBinding
	TextureBindings   []TextureBinding
}

// BoundarySlots summarizes one stage-to-stage varying allocation, for
// diagnostics/tooling — mirrors glsl.TranslationInfo's bookkeeping role.
type BoundarySlots struct {
	From, To lattice.Tier
	Names    []string
}

// CompileInfo is non-source-code bookkeeping about a successful compile.
type CompileInfo struct {
	EmittedStages   []lattice.Tier
	Boundaries      []BoundarySlots
	RequiredVersion glslgen.Version
}

// Compile runs the full pipeline over mod and returns the compiled
// bundle, its bookkeeping info, and any accumulated diagnostics. An error
// is returned exactly when diags contains a fatal (non-warning)
// diagnostic, per §6.3.
func Compile(mod *hir.Module, opts CompileOptions) (*Bundle, CompileInfo, diag.List, error) {
	var diags diag.List

	if opts.Config.EnableGeometryTessellation {
		diags.Error(diag.KindUnsupportedConstruct,
			"geometry/tessellation stage classification is not implemented; Config.EnableGeometryTessellation must stay false")
		return nil, CompileInfo{}, diags, fmt.Errorf("shaderpart: %w", diags.Errors()[0])
	}

	lat := lattice.New(false, false)
	fn := mod.Pipeline
	table := mod.Symbols

	partResult, err := partition.Partition(fn, table, lat, partition.Config{
		EnableVertexTextureFetch: opts.Config.EnableVertexTextureFetch,
	}, &diags)
	if err != nil {
		return nil, CompileInfo{}, diags, fmt.Errorf("shaderpart: %w", err)
	}

	forwards, dropped := varying.Plan(fn, table, partResult, lat)
	for _, sym := range dropped {
		diags.Warn(diag.KindRedundantForward,
			fmt.Sprintf("%q crosses a stage boundary but is never read downstream; dropped", table.Get(sym).Name))
	}
	reportUnusedLocals(fn, table, partResult, &diags)

	stages := lat.ShaderStages()
	stageNamespace := make(map[lattice.Tier]*symtab.Namespace, len(stages))
	for _, s := range stages {
		stageNamespace[s] = symtab.NewNamespace()
	}
	boundaryByFrom := map[lattice.Tier]varying.BoundaryForward{}
	var boundaries []BoundarySlots
	for _, b := range forwards {
		boundaryByFrom[b.From] = b
		names := make([]string, len(b.Varyings))
		for _, v := range b.Varyings {
			stageNamespace[b.From].Bind(v.Symbol, v.Name)
			stageNamespace[b.To].Bind(v.Symbol, v.Name)
			names[v.Slot] = v.Name
		}
		boundaries = append(boundaries, BoundarySlots{From: b.From, To: b.To, Names: names})
	}

	uniformSymbols := collectUniforms(fn, table, partResult)
	var uniformBindings []UniformBinding
	var textureBindings []TextureBinding
	uniformsByStage := map[lattice.Tier][]glslgen.UniformBinding{}
	for _, sym := range uniformSymbols {
		symObj := table.Get(sym)
		name := symObj.Name
		glslType, ok := typesystem.GLSLName(symObj.Type)
		if !ok {
			diags.ErrorAt(diag.KindTypeNotRepresentable,
				fmt.Sprintf("uniform %q has no GLSL spelling", symObj.Name), symObj.Span)
			continue
		}
		var usedAt []lattice.Tier
		for _, s := range stages {
			if symbolUsedInStage(fn, partResult, s, sym) {
				usedAt = append(usedAt, s)
				stageNamespace[s].Bind(sym, name)
				uniformsByStage[s] = append(uniformsByStage[s], glslgen.UniformBinding{Symbol: sym, Name: name, GLSLType: glslType})
			}
		}
		if symObj.IsSamplerSymbol() {
			textureBindings = append(textureBindings, TextureBinding{Symbol: sym, Name: name, GLSLType: glslType})
		} else {
			uniformBindings = append(uniformBindings, UniformBinding{Symbol: sym, Name: name, GLSLType: glslType, Stages: usedAt})
		}
	}

	if diags.HasErrors() {
		return nil, CompileInfo{}, diags, fmt.Errorf("shaderpart: %w", diags.Errors()[0])
	}

	attributeBindings := collectAttributes(table, partResult)
	for _, a := range attributeBindings {
		stageNamespace[lattice.VS].Bind(a.Symbol, a.Name)
	}

	source := map[lattice.Tier]string{}
	for _, stage := range stages {
		io := glslgen.StageIO{Uniforms: uniformsByStage[stage]}
		if stage == lattice.VS {
			for _, a := range attributeBindings {
				io.Attributes = append(io.Attributes, glslgen.AttributeBinding{
					Symbol: a.Symbol, Name: a.Name, GLSLType: a.GLSLType, Location: a.Location,
				})
			}
		} else if b, ok := inboundBoundary(forwards, stage); ok {
			io.VaryingsIn = b.Varyings
		}
		if out, ok := boundaryByFrom[stage]; ok {
			io.VaryingsOut = out.Varyings
		}
		if stage == lattice.FS {
			io.FragColorType = "vec4"
		}

		text, err := glslgen.Emit(stage, fn, table, partResult.Order[stage], io, stageNamespace[stage], opts.GLSL)
		if err != nil {
			diags.Error(diag.KindUnsupportedConstruct, err.Error())
			return nil, CompileInfo{}, diags, fmt.Errorf("shaderpart: emitting stage %s: %w", stage, err)
		}
		source[stage] = text
	}

	bundle := &Bundle{
		VertexShader:      source[lattice.VS],
		FragmentShader:    source[lattice.FS],
		UniformBindings:   uniformBindings,
		AttributeBindings: attributeBindings,
		TextureBindings:   textureBindings,
	}

	info := CompileInfo{
		EmittedStages:   stages,
		Boundaries:      boundaries,
		RequiredVersion: opts.GLSL.Version,
	}

	return bundle, info, diags, nil
}

func inboundBoundary(forwards []varying.BoundaryForward, to lattice.Tier) (varying.BoundaryForward, bool) {
	for _, b := range forwards {
		if b.To == to {
			return b, true
		}
	}
	return varying.BoundaryForward{}, false
}

// collectUniforms returns every global (CPU-dynamic or sampler) actually
// read somewhere in the scheduled program, sorted by symbol id for
// deterministic bundle ordering. Module constants are not uniforms.
func collectUniforms(fn *hir.Function, table *hir.Table, part *partition.Result) []hir.SymbolID {
	seen := map[hir.SymbolID]struct{}{}
	for h := range part.ExprTier {
		e := fn.Expr(h)
		ident, ok := e.Kind.(hir.ExprIdent)
		if !ok {
			continue
		}
		sym := table.Get(ident.Symbol)
		if sym.Kind == hir.Global || sym.Builtin == hir.BuiltinCPUGlobal || sym.Builtin == hir.BuiltinTextureSampler {
			seen[ident.Symbol] = struct{}{}
		}
	}
	out := make([]hir.SymbolID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func collectAttributes(table *hir.Table, part *partition.Result) []AttributeBinding {
	var syms []hir.SymbolID
	for _, sym := range table.All() {
		if sym.Builtin == hir.BuiltinVertexAttr {
			syms = append(syms, sym.ID)
		}
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	out := make([]AttributeBinding, 0, len(syms))
	for i, id := range syms {
		sym := table.Get(id)
		glslType, _ := typesystem.GLSLName(sym.Type)
		out = append(out, AttributeBinding{Symbol: id, Name: sym.Name, GLSLType: glslType, Location: uint32(i)})
	}
	return out
}

func symbolUsedInStage(fn *hir.Function, part *partition.Result, stage lattice.Tier, sym hir.SymbolID) bool {
	for _, h := range part.Order[stage] {
		if statementReferencesSymbol(fn, h, sym) {
			return true
		}
	}
	return false
}

func statementReferencesSymbol(fn *hir.Function, h hir.StmtHandle, sym hir.SymbolID) bool {
	s := fn.Stmt(h)
	switch k := s.Kind.(type) {
	case hir.StmtAssign:
		return exprReferencesSymbol(fn, k.Place, sym) || exprReferencesSymbol(fn, k.Value, sym)
	case hir.StmtLocalDecl:
		return k.Init != nil && exprReferencesSymbol(fn, *k.Init, sym)
	case hir.StmtIf:
		if exprReferencesSymbol(fn, k.Condition, sym) {
			return true
		}
		for _, sh := range k.Then.Statements {
			if statementReferencesSymbol(fn, sh, sym) {
				return true
			}
		}
		for _, sh := range k.Else.Statements {
			if statementReferencesSymbol(fn, sh, sym) {
				return true
			}
		}
		return false
	case hir.StmtExpr:
		return exprReferencesSymbol(fn, k.Expr, sym)
	default:
		return false
	}
}

func exprReferencesSymbol(fn *hir.Function, h hir.ExprHandle, sym hir.SymbolID) bool {
	e := fn.Expr(h)
	switch k := e.Kind.(type) {
	case hir.ExprIdent:
		return k.Symbol == sym
	case hir.ExprFieldAccess:
		return exprReferencesSymbol(fn, k.Base, sym)
	case hir.ExprIndex:
		return exprReferencesSymbol(fn, k.Base, sym) || exprReferencesSymbol(fn, k.Index, sym)
	case hir.ExprSwizzle:
		return exprReferencesSymbol(fn, k.Base, sym)
	case hir.ExprBinary:
		return exprReferencesSymbol(fn, k.Left, sym) || exprReferencesSymbol(fn, k.Right, sym)
	case hir.ExprUnary:
		return exprReferencesSymbol(fn, k.Operand, sym)
	case hir.ExprCompose:
		for _, c := range k.Components {
			if exprReferencesSymbol(fn, c, sym) {
				return true
			}
		}
		return false
	case hir.ExprCall:
		for _, a := range k.Args {
			if exprReferencesSymbol(fn, a, sym) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// reportUnusedLocals emits a warning for every Local symbol the
// Partitioner's fixpoint never recorded a read of — grounded on
// wgsl.Lowerer's usedLocals/localDecls unused-variable tracking (§3
// supplemented feature).
func reportUnusedLocals(fn *hir.Function, table *hir.Table, part *partition.Result, diags *diag.List) {
	read := map[hir.SymbolID]bool{}
	for h := range part.ExprTier {
		e := fn.Expr(h)
		if ident, ok := e.Kind.(hir.ExprIdent); ok {
			read[ident.Symbol] = true
		}
	}
	for sym := range part.LocalTier {
		if !read[sym] {
			symObj := table.Get(sym)
			diags.Add(diag.NewWarningWithSpan(diag.KindUnusedVariable,
				fmt.Sprintf("local %q is assigned but never read", symObj.Name), symObj.Span))
		}
	}
}
