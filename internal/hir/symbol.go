package hir

import (
	"github.com/gogpu/shaderpart/internal/diag"
	"github.com/gogpu/shaderpart/internal/lattice"
	"github.com/gogpu/shaderpart/internal/typesystem"
)

// SymbolID is a stable, globally unique handle for a Symbol — a small
// integer, not a pointer, per §9's design note against shared mutable
// node references.
type SymbolID uint32

// SymbolKind classifies what a Symbol denotes, per spec §3.
type SymbolKind uint8

const (
	Param SymbolKind = iota
	Local
	Result
	Global
	ModuleConst
	Proc
	Field
)

func (k SymbolKind) String() string {
	switch k {
	case Param:
		return "param"
	case Local:
		return "local"
	case Result:
		return "result"
	case Global:
		return "global"
	case ModuleConst:
		return "module-const"
	case Proc:
		return "proc"
	case Field:
		return "field"
	default:
		return "unknown"
	}
}

// Builtin names a well-known pipeline value a Symbol may denote, when its
// tier cannot be derived from SymbolKind alone (spec §3 "Expression tier").
type Builtin uint8

const (
	NotBuiltin Builtin = iota
	BuiltinPositionOut    // gl_Position write site; RHS tier pinned to <= VS
	BuiltinFragColorOut   // result.color (and sibling fragment outputs); FS write site
	BuiltinFragCoord      // gl_FragCoord and kin; FS-tier read
	BuiltinVertexAttr     // a vertex attribute field of the input record; VS-tier read
	BuiltinCPUGlobal      // a CPU-dynamic global; CPU-tier read
	BuiltinTextureSampler // a sampler/texture global; FS-tier unless vertex texture fetch is enabled
)

// Symbol is a globally unique identity referenced by Ident expressions.
type Symbol struct {
	ID   SymbolID
	Name string
	Kind SymbolKind
	Type typesystem.Type

	// TierHint is set for declared constants, uniforms, and other symbols
	// whose tier is known a priori rather than computed bottom-up.
	TierHint *lattice.Tier

	Builtin Builtin

	// Interpolate records a user interpolate(...) annotation naming this
	// whole symbol (spec §4.5 step 4 / §4.6). Nil when none was given.
	Interpolate *InterpolateAnnotation

	Span diag.Span
}

// InterpolateAnnotation captures a user interpolate(symbol[, qualifier])
// statement naming a whole variable.
type InterpolateAnnotation struct {
	// Qualifier is nil when the user did not request a specific
	// interpolation qualifier, leaving VaryingPlanner's defaulting rule
	// (§4.6) to choose smooth/flat by scalar kind.
	Qualifier *Qualifier
	Span      diag.Span
}

// Qualifier is a GLSL interpolation qualifier.
type Qualifier uint8

const (
	Smooth Qualifier = iota
	Flat
	NoPerspective
)

func (q Qualifier) String() string {
	switch q {
	case Smooth:
		return "smooth"
	case Flat:
		return "flat"
	case NoPerspective:
		return "noperspective"
	default:
		return "smooth"
	}
}

// IsSamplerSymbol reports whether sym denotes a sampler/texture binding.
func (s Symbol) IsSamplerSymbol() bool {
	return s.Type.IsSampler() || s.Builtin == BuiltinTextureSampler
}

// Table owns every Symbol created during one compile, indexed by SymbolID.
// Lifetimes match §3: built once per compile, discarded afterward.
type Table struct {
	symbols []Symbol
}

// NewTable creates an empty symbol table.
func NewTable() *Table { return &Table{} }

// Declare registers a new symbol and returns its handle.
func (t *Table) Declare(name string, kind SymbolKind, typ typesystem.Type) SymbolID {
	id := SymbolID(len(t.symbols))
	t.symbols = append(t.symbols, Symbol{ID: id, Name: name, Kind: kind, Type: typ})
	return id
}

// Get returns the Symbol for id. Panics on an out-of-range id, which
// indicates a compiler bug (an id was fabricated rather than returned by
// Declare) — callers on the public diagnostic path must validate ids via
// Valid before calling Get.
func (t *Table) Get(id SymbolID) *Symbol { return &t.symbols[id] }

// Valid reports whether id refers to a real entry in this table.
func (t *Table) Valid(id SymbolID) bool { return int(id) < len(t.symbols) }

// Len returns the number of declared symbols.
func (t *Table) Len() int { return len(t.symbols) }

// All returns every declared symbol in declaration order.
func (t *Table) All() []Symbol { return t.symbols }
