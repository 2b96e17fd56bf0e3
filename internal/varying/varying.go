// Package varying implements the VaryingPlanner (§4.6): it scans every
// adjacent stage boundary for symbols that cross it, allocates stable
// varying slots, chooses an interpolation qualifier default, and lowers
// boolean varyings to int (GLSL has no interpolated bool).
package varying

import (
	"sort"

	"github.com/gogpu/shaderpart/internal/depgraph"
	"github.com/gogpu/shaderpart/internal/hir"
	"github.com/gogpu/shaderpart/internal/lattice"
	"github.com/gogpu/shaderpart/internal/partition"
	"github.com/gogpu/shaderpart/internal/symtab"
	"github.com/gogpu/shaderpart/internal/typesystem"
)

// Varying is one value forwarded across a single stage boundary.
type Varying struct {
	Symbol   hir.SymbolID
	Name     string
	From, To lattice.Tier
	Type     typesystem.Type
	GLSLType string
	Interp   hir.Qualifier
	Slot     uint32
}

// BoundaryForward groups the varyings crossing one adjacent stage
// boundary, in slot order.
type BoundaryForward struct {
	From, To lattice.Tier
	Varyings []Varying
}

// Plan walks every adjacent boundary in lat's execution order and decides,
// for each symbol live across it, whether it must be forwarded as a
// varying. A symbol produced at or before From and read at or after To
// crosses the boundary. Dropped is populated with symbols eligible to
// cross a boundary that nothing downstream actually reads — the
// redundant-forward-elimination warning source (§3 supplemented feature).
func Plan(fn *hir.Function, table *hir.Table, part *partition.Result, lat lattice.StageLattice) (forwards []BoundaryForward, dropped []hir.SymbolID) {
	order := lat.ShaderStages()
	if len(order) < 2 {
		return nil, nil
	}

	readTierBySymbol := collectReadTiers(fn, part)
	writeTierBySymbol := part.LocalTier

	for i := 0; i+1 < len(order); i++ {
		from, to := order[i], order[i+1]
		ns := symtab.NewNamespace()

		var live []hir.SymbolID
		for sym, writeTier := range writeTierBySymbol {
			if writeTier > from {
				continue
			}
			maxRead, ok := readTierBySymbol[sym]
			if !ok || maxRead < to {
				if ok {
					dropped = append(dropped, sym)
				}
				continue
			}
			live = append(live, sym)
		}

		// Sort by Symbol.ID first so Assign's namespace-collision order is
		// itself deterministic, then name-assign and re-sort by the
		// resulting identifier — the stable, deterministic order slot
		// allocation requires (§4.6).
		sort.Slice(live, func(a, b int) bool { return live[a] < live[b] })
		for _, sym := range live {
			ns.Assign(sym, table.Get(sym).Name)
		}
		sort.Slice(live, func(a, b int) bool {
			na, _ := ns.Lookup(live[a])
			nb, _ := ns.Lookup(live[b])
			return na < nb
		})

		var vs []Varying
		for slot, sym := range live {
			symObj := table.Get(sym)
			name, _ := ns.Lookup(sym)
			glslName, _ := typesystem.GLSLName(symObj.Type)
			vs = append(vs, Varying{
				Symbol:   sym,
				Name:     name,
				From:     from,
				To:       to,
				Type:     symObj.Type,
				GLSLType: lowerBoolType(symObj.Type, glslName),
				Interp:   chooseQualifier(symObj),
				Slot:     uint32(slot),
			})
		}
		if len(vs) > 0 {
			forwards = append(forwards, BoundaryForward{From: from, To: to, Varyings: vs})
		}
	}

	return forwards, dropped
}

// chooseQualifier applies §4.6's default: a user interpolate() annotation
// wins; otherwise Smooth for float scalars/vectors, Flat for
// integer/bool/unsigned (bool is always flat since it is lowered to an
// int varying with no meaningful interpolated value in between 0 and 1).
func chooseQualifier(sym *hir.Symbol) hir.Qualifier {
	if sym.Interpolate != nil && sym.Interpolate.Qualifier != nil {
		return *sym.Interpolate.Qualifier
	}
	switch sym.Type.Scalar {
	case typesystem.Int, typesystem.Uint, typesystem.Bool:
		return hir.Flat
	default:
		return hir.Smooth
	}
}

// lowerBoolType rewrites a bool/bvecN GLSL spelling to its int/ivecN
// equivalent — GLSL has no interpolator for bool, so a bool varying is
// carried as 0/1 in an int (or ivecN) and reinterpreted as bool on read.
func lowerBoolType(t typesystem.Type, glslName string) string {
	if t.Scalar != typesystem.Bool {
		return glslName
	}
	switch t.Kind {
	case typesystem.KindScalar:
		return "int"
	case typesystem.KindVector:
		switch t.VecSize {
		case 2:
			return "ivec2"
		case 3:
			return "ivec3"
		default:
			return "ivec4"
		}
	default:
		return glslName
	}
}

// collectReadTiers returns, for each symbol, the highest tier at which any
// scheduled statement reads it. An expression's own recorded ExprTier is the
// symbol's resolved tier, not the tier of the statement consuming it, so it
// cannot answer "when is this read" — the statement's final scheduled tier
// (part.Order) is the only place that information lives.
func collectReadTiers(fn *hir.Function, part *partition.Result) map[hir.SymbolID]lattice.Tier {
	out := map[hir.SymbolID]lattice.Tier{}
	for tier, stmts := range part.Order {
		g := depgraph.Build(fn, stmts)
		for _, rec := range g.Records {
			for sym := range rec.Reads {
				if cur, ok := out[sym]; !ok || tier > cur {
					out[sym] = tier
				}
			}
		}
	}
	return out
}

