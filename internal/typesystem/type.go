// Package typesystem implements TypeModel (§4.1): canonicalization of
// host-level types to their GLSL spelling, and sampler/image classification.
package typesystem

import "fmt"

// ScalarKind is the scalar element kind of a host type.
type ScalarKind uint8

const (
	Float ScalarKind = iota
	Int
	Uint
	Bool
)

// Kind discriminates the shape of a canonical Type.
type Kind uint8

const (
	KindScalar Kind = iota
	KindVector
	KindMatrix
	KindArray
	KindStruct
	KindSampler
	KindUnrepresentable // host-only reference/pointer types, etc.
)

// Type is a canonical host-level type, matching spec §3's type model:
// scalars, VecN<T>, MatRxC<float> (R rows, C columns — see GLSLName for
// the GLSL column x row tie-break), arrays, sampler types, and structs.
type Type struct {
	Kind Kind

	Scalar ScalarKind // valid when Kind is Scalar, Vector, Matrix, or Sampler element type

	VecSize uint8 // 2..4, valid when Kind == KindVector

	MatRows, MatCols uint8 // valid when Kind == KindMatrix

	ArrayLen  uint32 // 0 means runtime/unknown-sized (rejected: arrays must be fixed-size per §4.1)
	ArrayElem *Type  // valid when Kind == KindArray

	Struct *StructType // valid when Kind == KindStruct

	Sampler SamplerKind // valid when Kind == KindSampler

	Name string // host-level name, used for error messages and struct dedup
}

// StructType is a host-level record type. GLSLName spells a struct-typed
// value by the struct's Name; the GLSL emitter does not write a struct
// declaration for it in any stage.
type StructType struct {
	Name    string
	Members []StructMember
}

// StructMember is one field of a StructType.
type StructMember struct {
	Name string
	Type Type
}

// SamplerKind classifies a sampler/texture binding.
type SamplerKind uint8

const (
	Sampler2D SamplerKind = iota
	Sampler3D
	SamplerCube
	Sampler2DArray
	SamplerCubeShadow
)

// Scalar constructors for the common scalar types.
func ScalarFloat() Type { return Type{Kind: KindScalar, Scalar: Float, Name: "float"} }
func ScalarInt() Type   { return Type{Kind: KindScalar, Scalar: Int, Name: "int"} }
func ScalarUint() Type  { return Type{Kind: KindScalar, Scalar: Uint, Name: "uint"} }
func ScalarBool() Type  { return Type{Kind: KindScalar, Scalar: Bool, Name: "bool"} }

// Vec constructs a fixed-size vector type VecN<scalar>.
func Vec(size uint8, scalar ScalarKind) Type {
	return Type{Kind: KindVector, VecSize: size, Scalar: scalar}
}

// Mat constructs a MatRxC<float> type. Per §4.1, R is rows and C is
// columns in the host's own naming — the GLSL spelling inverts this (see
// GLSLName) because GLSL names matrices column-major, columns first.
func Mat(rows, cols uint8) Type {
	return Type{Kind: KindMatrix, MatRows: rows, MatCols: cols, Scalar: Float}
}

// Array constructs a fixed-size array[N, T] type.
func Array(n uint32, elem Type) Type {
	e := elem
	return Type{Kind: KindArray, ArrayLen: n, ArrayElem: &e}
}

// Sampler constructs a sampler type of the given kind.
func Sampler(kind SamplerKind) Type {
	return Type{Kind: KindSampler, Sampler: kind}
}

// IsSampler reports whether t is a sampler/texture type.
func (t Type) IsSampler() bool { return t.Kind == KindSampler }

// GLSLName returns the GLSL spelling of a canonical host type, per §4.1.
// Returns ("", false) when the type has no GLSL spelling; callers report
// that as diag.KindTypeNotRepresentable.
func GLSLName(t Type) (string, bool) {
	switch t.Kind {
	case KindScalar:
		return scalarName(t.Scalar), true
	case KindVector:
		return vectorName(t), true
	case KindMatrix:
		return matrixName(t), true
	case KindArray:
		if t.ArrayLen == 0 {
			return "", false
		}
		base, ok := GLSLName(*t.ArrayElem)
		if !ok {
			return "", false
		}
		return fmt.Sprintf("%s[%d]", base, t.ArrayLen), true
	case KindStruct:
		if t.Struct == nil {
			return "", false
		}
		return t.Struct.Name, true
	case KindSampler:
		return samplerName(t.Sampler), true
	default:
		return "", false
	}
}

func scalarName(k ScalarKind) string {
	switch k {
	case Float:
		return "float"
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Bool:
		return "bool"
	default:
		return "float"
	}
}

func vectorName(t Type) string {
	n := t.VecSize
	if n < 2 || n > 4 {
		n = 4
	}
	switch t.Scalar {
	case Bool:
		return fmt.Sprintf("bvec%d", n)
	case Int:
		return fmt.Sprintf("ivec%d", n)
	case Uint:
		return fmt.Sprintf("uvec%d", n)
	default:
		return fmt.Sprintf("vec%d", n)
	}
}

// matrixName spells a MatRxC<float> host type as GLSL's matCxR — GLSL
// names matrices column-major, columns before rows, which is the inverse
// of the host's row x column convention. This is the §4.1 tie-break
// point: implementers must not confuse the dimension order.
func matrixName(t Type) string {
	rows, cols := t.MatRows, t.MatCols
	if rows < 2 || rows > 4 {
		rows = 4
	}
	if cols < 2 || cols > 4 {
		cols = 4
	}
	if rows == cols {
		return fmt.Sprintf("mat%d", cols)
	}
	return fmt.Sprintf("mat%dx%d", cols, rows)
}

func samplerName(k SamplerKind) string {
	switch k {
	case Sampler2D:
		return "sampler2D"
	case Sampler3D:
		return "sampler3D"
	case SamplerCube:
		return "samplerCube"
	case Sampler2DArray:
		return "sampler2DArray"
	case SamplerCubeShadow:
		return "samplerCubeShadow"
	default:
		return "sampler2D"
	}
}

// Equal reports structural equality between two canonical types — used
// by the VaryingPlanner invariant that a varying's glsl_type is identical
// on both sides of a stage boundary (§3 Invariants).
func Equal(a, b Type) bool {
	an, aok := GLSLName(a)
	bn, bok := GLSLName(b)
	return aok && bok && an == bn
}
