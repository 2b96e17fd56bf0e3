// Package hirjson decodes a JSON program description into an internal/hir
// Module. The host-language front end that would normally parse pipeline
// source text is explicitly out of scope for this compiler (§1), so the
// CLI and tests built against it accept an already-structured tree
// instead of raw host syntax — this package is that tree's wire format,
// the thinnest front end that lets cmd/shaderpartc exercise the full
// Partition -> PlanVaryings -> Emit pipeline end to end.
package hirjson

import (
	"encoding/json"
	"fmt"

	"github.com/gogpu/shaderpart/internal/hir"
	"github.com/gogpu/shaderpart/internal/lattice"
	"github.com/gogpu/shaderpart/internal/typesystem"
)

// Program is the top-level JSON document: a flat symbol list plus the
// pipeline function's statement list, referencing symbols by name.
type Program struct {
	Symbols    []SymbolDecl `json:"symbols"`
	Statements []StmtDecl   `json:"statements"`
}

// SymbolDecl describes one declared symbol.
type SymbolDecl struct {
	Name     string     `json:"name"`
	Kind     string     `json:"kind"`     // param | local | result | global | const | proc | field
	Type     TypeDecl   `json:"type"`
	Builtin  string     `json:"builtin"`  // "", position_out, fragcolor_out, fragcoord, vertex_attr, cpu_global, sampler
	TierHint string     `json:"tierHint"` // "", const, cpu, vs, ts, gs, fs
}

// TypeDecl describes a canonical type in JSON.
type TypeDecl struct {
	Scalar  string   `json:"scalar"` // float | int | uint | bool
	Vec     uint8    `json:"vec"`
	MatRows uint8    `json:"matRows"`
	MatCols uint8    `json:"matCols"`
	Sampler string   `json:"sampler"` // sampler2D | sampler3D | samplerCube | sampler2DArray | samplerCubeShadow
	Array   *TypeDecl `json:"array"`
	ArrayLen uint32   `json:"arrayLen"`
}

// StmtDecl is a tagged statement node.
type StmtDecl struct {
	Kind string `json:"kind"` // assign | decl | if | expr | interpolate

	// assign
	Place *ExprDecl `json:"place,omitempty"`
	Value *ExprDecl `json:"value,omitempty"`

	// decl
	Symbol string    `json:"symbol,omitempty"`
	Init   *ExprDecl `json:"init,omitempty"`

	// if
	Condition *ExprDecl  `json:"condition,omitempty"`
	Then      []StmtDecl `json:"then,omitempty"`
	Else      []StmtDecl `json:"else,omitempty"`

	// expr / interpolate
	Expr      *ExprDecl `json:"expr,omitempty"`
	Target    *ExprDecl `json:"target,omitempty"`
	Qualifier string    `json:"qualifier,omitempty"` // "", smooth, flat, noperspective
}

// ExprDecl is a tagged expression node.
type ExprDecl struct {
	Kind string `json:"kind"` // literal | ident | field | index | swizzle | binary | unary | compose | call

	// literal
	Float *float64 `json:"float,omitempty"`
	Int   *int64   `json:"int,omitempty"`
	Uint  *uint64  `json:"uint,omitempty"`
	Bool  *bool    `json:"bool,omitempty"`

	// ident
	Symbol string `json:"symbol,omitempty"`

	// field / index / swizzle
	Base       *ExprDecl `json:"base,omitempty"`
	Field      string    `json:"field,omitempty"`
	Index      *ExprDecl `json:"index,omitempty"`
	Components string    `json:"components,omitempty"` // e.g. "xyz"

	// binary / unary
	Op    string    `json:"op,omitempty"`
	Left  *ExprDecl `json:"left,omitempty"`
	Right *ExprDecl `json:"right,omitempty"`
	Operand *ExprDecl `json:"operand,omitempty"`

	// compose
	Type     *TypeDecl  `json:"composeType,omitempty"`
	Elements []ExprDecl `json:"elements,omitempty"`

	// call
	Func   string     `json:"func,omitempty"`
	IsUser bool       `json:"isUser,omitempty"`
	Args   []ExprDecl `json:"args,omitempty"`
}

// Decode parses data into a *hir.Module.
func Decode(data []byte) (*hir.Module, error) {
	var p Program
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("hirjson: %w", err)
	}

	mod := hir.NewModule()
	byName := map[string]hir.SymbolID{}

	for _, sd := range p.Symbols {
		kind, err := symbolKind(sd.Kind)
		if err != nil {
			return nil, err
		}
		typ := decodeType(sd.Type)
		id := mod.Symbols.Declare(sd.Name, kind, typ)
		sym := mod.Symbols.Get(id)
		sym.Builtin = decodeBuiltin(sd.Builtin)
		if t, ok := decodeTier(sd.TierHint); ok {
			sym.TierHint = &t
		}
		byName[sd.Name] = id
	}

	fn := &hir.Function{Name: "pipeline"}
	b := &builder{fn: fn, byName: byName}
	top, err := b.stmts(p.Statements)
	if err != nil {
		return nil, err
	}
	fn.Body = hir.Block{Statements: top}
	mod.Pipeline = fn
	return mod, nil
}

type builder struct {
	fn     *hir.Function
	byName map[string]hir.SymbolID
}

func (b *builder) stmts(decls []StmtDecl) ([]hir.StmtHandle, error) {
	out := make([]hir.StmtHandle, 0, len(decls))
	for _, d := range decls {
		h, err := b.stmt(d)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func (b *builder) stmt(d StmtDecl) (hir.StmtHandle, error) {
	switch d.Kind {
	case "assign":
		place, err := b.expr(*d.Place)
		if err != nil {
			return 0, err
		}
		value, err := b.expr(*d.Value)
		if err != nil {
			return 0, err
		}
		return b.fn.AddStmt(hir.Statement{Kind: hir.StmtAssign{Place: place, Value: value}}), nil
	case "decl":
		id, ok := b.byName[d.Symbol]
		if !ok {
			return 0, fmt.Errorf("hirjson: unknown symbol %q", d.Symbol)
		}
		var init *hir.ExprHandle
		if d.Init != nil {
			h, err := b.expr(*d.Init)
			if err != nil {
				return 0, err
			}
			init = &h
		}
		return b.fn.AddStmt(hir.Statement{Kind: hir.StmtLocalDecl{Symbol: id, Init: init}}), nil
	case "if":
		cond, err := b.expr(*d.Condition)
		if err != nil {
			return 0, err
		}
		then, err := b.stmts(d.Then)
		if err != nil {
			return 0, err
		}
		els, err := b.stmts(d.Else)
		if err != nil {
			return 0, err
		}
		return b.fn.AddStmt(hir.Statement{Kind: hir.StmtIf{
			Condition: cond,
			Then:      hir.Block{Statements: then},
			Else:      hir.Block{Statements: els},
		}}), nil
	case "expr":
		e, err := b.expr(*d.Expr)
		if err != nil {
			return 0, err
		}
		return b.fn.AddStmt(hir.Statement{Kind: hir.StmtExpr{Expr: e}}), nil
	case "interpolate":
		target, err := b.expr(*d.Target)
		if err != nil {
			return 0, err
		}
		var q *hir.Qualifier
		if d.Qualifier != "" {
			qv, err := decodeQualifier(d.Qualifier)
			if err != nil {
				return 0, err
			}
			q = &qv
		}
		return b.fn.AddStmt(hir.Statement{Kind: hir.StmtInterpolate{Target: target, Qualifier: q}}), nil
	default:
		return 0, fmt.Errorf("hirjson: unknown statement kind %q", d.Kind)
	}
}

func (b *builder) expr(d ExprDecl) (hir.ExprHandle, error) {
	switch d.Kind {
	case "literal":
		lv := hir.LiteralValue{}
		switch {
		case d.Float != nil:
			lv.Kind, lv.Float = typesystem.Float, *d.Float
		case d.Int != nil:
			lv.Kind, lv.Int = typesystem.Int, *d.Int
		case d.Uint != nil:
			lv.Kind, lv.Uint = typesystem.Uint, *d.Uint
		case d.Bool != nil:
			lv.Kind, lv.Bool = typesystem.Bool, *d.Bool
		}
		return b.fn.AddExpr(hir.Expression{Kind: hir.ExprLiteral{Value: lv}}), nil
	case "ident":
		id, ok := b.byName[d.Symbol]
		if !ok {
			return 0, fmt.Errorf("hirjson: unknown symbol %q", d.Symbol)
		}
		return b.fn.AddExpr(hir.Expression{Kind: hir.ExprIdent{Symbol: id}}), nil
	case "field":
		base, err := b.expr(*d.Base)
		if err != nil {
			return 0, err
		}
		return b.fn.AddExpr(hir.Expression{Kind: hir.ExprFieldAccess{Base: base, Field: d.Field}}), nil
	case "index":
		base, err := b.expr(*d.Base)
		if err != nil {
			return 0, err
		}
		idx, err := b.expr(*d.Index)
		if err != nil {
			return 0, err
		}
		return b.fn.AddExpr(hir.Expression{Kind: hir.ExprIndex{Base: base, Index: idx}}), nil
	case "swizzle":
		base, err := b.expr(*d.Base)
		if err != nil {
			return 0, err
		}
		comps, err := decodeSwizzle(d.Components)
		if err != nil {
			return 0, err
		}
		return b.fn.AddExpr(hir.Expression{Kind: hir.ExprSwizzle{Base: base, Components: comps}}), nil
	case "binary":
		left, err := b.expr(*d.Left)
		if err != nil {
			return 0, err
		}
		right, err := b.expr(*d.Right)
		if err != nil {
			return 0, err
		}
		op, err := decodeBinaryOp(d.Op)
		if err != nil {
			return 0, err
		}
		return b.fn.AddExpr(hir.Expression{Kind: hir.ExprBinary{Op: op, Left: left, Right: right}}), nil
	case "unary":
		operand, err := b.expr(*d.Operand)
		if err != nil {
			return 0, err
		}
		op, err := decodeUnaryOp(d.Op)
		if err != nil {
			return 0, err
		}
		return b.fn.AddExpr(hir.Expression{Kind: hir.ExprUnary{Op: op, Operand: operand}}), nil
	case "compose":
		comps := make([]hir.ExprHandle, len(d.Elements))
		for i, c := range d.Elements {
			h, err := b.expr(c)
			if err != nil {
				return 0, err
			}
			comps[i] = h
		}
		var typ typesystem.Type
		if d.Type != nil {
			typ = decodeType(*d.Type)
		}
		return b.fn.AddExpr(hir.Expression{Kind: hir.ExprCompose{Type: typ, Components: comps}}), nil
	case "call":
		args := make([]hir.ExprHandle, len(d.Args))
		for i, a := range d.Args {
			h, err := b.expr(a)
			if err != nil {
				return 0, err
			}
			args[i] = h
		}
		if d.IsUser {
			id, ok := b.byName[d.Func]
			if !ok {
				return 0, fmt.Errorf("hirjson: unknown procedure %q", d.Func)
			}
			return b.fn.AddExpr(hir.Expression{Kind: hir.ExprCall{IsUser: true, Proc: id, Args: args}}), nil
		}
		fnID, err := decodeBuiltinFunction(d.Func)
		if err != nil {
			return 0, err
		}
		return b.fn.AddExpr(hir.Expression{Kind: hir.ExprCall{Builtin: fnID, Args: args}}), nil
	default:
		return 0, fmt.Errorf("hirjson: unknown expression kind %q", d.Kind)
	}
}

func decodeType(t TypeDecl) typesystem.Type {
	if t.Array != nil {
		return typesystem.Array(t.ArrayLen, decodeType(*t.Array))
	}
	if t.Sampler != "" {
		return typesystem.Sampler(decodeSamplerKind(t.Sampler))
	}
	if t.MatRows > 0 && t.MatCols > 0 {
		return typesystem.Mat(t.MatRows, t.MatCols)
	}
	scalar := decodeScalarKind(t.Scalar)
	if t.Vec > 0 {
		return typesystem.Vec(t.Vec, scalar)
	}
	switch scalar {
	case typesystem.Int:
		return typesystem.ScalarInt()
	case typesystem.Uint:
		return typesystem.ScalarUint()
	case typesystem.Bool:
		return typesystem.ScalarBool()
	default:
		return typesystem.ScalarFloat()
	}
}

func decodeScalarKind(s string) typesystem.ScalarKind {
	switch s {
	case "int":
		return typesystem.Int
	case "uint":
		return typesystem.Uint
	case "bool":
		return typesystem.Bool
	default:
		return typesystem.Float
	}
}

func decodeSamplerKind(s string) typesystem.SamplerKind {
	switch s {
	case "sampler3D":
		return typesystem.Sampler3D
	case "samplerCube":
		return typesystem.SamplerCube
	case "sampler2DArray":
		return typesystem.Sampler2DArray
	case "samplerCubeShadow":
		return typesystem.SamplerCubeShadow
	default:
		return typesystem.Sampler2D
	}
}

func symbolKind(s string) (hir.SymbolKind, error) {
	switch s {
	case "param":
		return hir.Param, nil
	case "local":
		return hir.Local, nil
	case "result":
		return hir.Result, nil
	case "global":
		return hir.Global, nil
	case "const":
		return hir.ModuleConst, nil
	case "proc":
		return hir.Proc, nil
	case "field":
		return hir.Field, nil
	default:
		return 0, fmt.Errorf("hirjson: unknown symbol kind %q", s)
	}
}

func decodeBuiltin(s string) hir.Builtin {
	switch s {
	case "position_out":
		return hir.BuiltinPositionOut
	case "fragcolor_out":
		return hir.BuiltinFragColorOut
	case "fragcoord":
		return hir.BuiltinFragCoord
	case "vertex_attr":
		return hir.BuiltinVertexAttr
	case "cpu_global":
		return hir.BuiltinCPUGlobal
	case "sampler":
		return hir.BuiltinTextureSampler
	default:
		return hir.NotBuiltin
	}
}

func decodeTier(s string) (lattice.Tier, bool) {
	switch s {
	case "const":
		return lattice.Const, true
	case "cpu":
		return lattice.CPU, true
	case "vs":
		return lattice.VS, true
	case "ts":
		return lattice.TS, true
	case "gs":
		return lattice.GS, true
	case "fs":
		return lattice.FS, true
	default:
		return 0, false
	}
}

func decodeQualifier(s string) (hir.Qualifier, error) {
	switch s {
	case "smooth":
		return hir.Smooth, nil
	case "flat":
		return hir.Flat, nil
	case "noperspective":
		return hir.NoPerspective, nil
	default:
		return 0, fmt.Errorf("hirjson: unknown qualifier %q", s)
	}
}

func decodeSwizzle(s string) ([]hir.SwizzleComponent, error) {
	out := make([]hir.SwizzleComponent, 0, len(s))
	for _, r := range s {
		switch r {
		case 'x':
			out = append(out, hir.ComponentX)
		case 'y':
			out = append(out, hir.ComponentY)
		case 'z':
			out = append(out, hir.ComponentZ)
		case 'w':
			out = append(out, hir.ComponentW)
		default:
			return nil, fmt.Errorf("hirjson: invalid swizzle component %q", string(r))
		}
	}
	return out, nil
}

func decodeBinaryOp(s string) (hir.BinaryOperator, error) {
	switch s {
	case "add":
		return hir.OpAdd, nil
	case "sub":
		return hir.OpSub, nil
	case "mul":
		return hir.OpMul, nil
	case "div":
		return hir.OpDiv, nil
	case "mod":
		return hir.OpMod, nil
	case "eq":
		return hir.OpEqual, nil
	case "neq":
		return hir.OpNotEqual, nil
	case "lt":
		return hir.OpLess, nil
	case "le":
		return hir.OpLessEqual, nil
	case "gt":
		return hir.OpGreater, nil
	case "ge":
		return hir.OpGreaterEqual, nil
	case "and":
		return hir.OpLogicalAnd, nil
	case "or":
		return hir.OpLogicalOr, nil
	default:
		return 0, fmt.Errorf("hirjson: unknown binary operator %q", s)
	}
}

func decodeUnaryOp(s string) (hir.UnaryOperator, error) {
	switch s {
	case "neg":
		return hir.OpNegate, nil
	case "not":
		return hir.OpNot, nil
	default:
		return 0, fmt.Errorf("hirjson: unknown unary operator %q", s)
	}
}

func decodeBuiltinFunction(s string) (hir.BuiltinFunction, error) {
	switch s {
	case "sin":
		return hir.FnSin, nil
	case "cos":
		return hir.FnCos, nil
	case "tan":
		return hir.FnTan, nil
	case "normalize":
		return hir.FnNormalize, nil
	case "dot":
		return hir.FnDot, nil
	case "cross":
		return hir.FnCross, nil
	case "length":
		return hir.FnLength, nil
	case "distance":
		return hir.FnDistance, nil
	case "reflect":
		return hir.FnReflect, nil
	case "refract":
		return hir.FnRefract, nil
	case "mix":
		return hir.FnMix, nil
	case "clamp":
		return hir.FnClamp, nil
	case "step":
		return hir.FnStep, nil
	case "smoothstep":
		return hir.FnSmoothstep, nil
	case "min":
		return hir.FnMin, nil
	case "max":
		return hir.FnMax, nil
	case "abs":
		return hir.FnAbs, nil
	case "floor":
		return hir.FnFloor, nil
	case "ceil":
		return hir.FnCeil, nil
	case "fract":
		return hir.FnFract, nil
	case "pow":
		return hir.FnPow, nil
	case "exp":
		return hir.FnExp, nil
	case "log":
		return hir.FnLog, nil
	case "sqrt":
		return hir.FnSqrt, nil
	case "inversesqrt":
		return hir.FnInverseSqrt, nil
	case "transpose":
		return hir.FnTranspose, nil
	case "inverse":
		return hir.FnInverse, nil
	case "textureSample":
		return hir.FnTextureSample, nil
	default:
		return 0, fmt.Errorf("hirjson: unknown builtin function %q", s)
	}
}
