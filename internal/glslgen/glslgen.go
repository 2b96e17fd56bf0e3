// Package glslgen implements the GlslEmitter (§4.7): it lowers one stage's
// scheduled statement list to GLSL 4.40 source text, following
// glsl.Writer's section ordering (version -> precision -> uniforms ->
// inputs -> outputs -> main body) and its one-function-per-expression-kind
// dispatch style.
package glslgen

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/shaderpart/internal/hir"
	"github.com/gogpu/shaderpart/internal/lattice"
	"github.com/gogpu/shaderpart/internal/symtab"
	"github.com/gogpu/shaderpart/internal/typesystem"
	"github.com/gogpu/shaderpart/internal/varying"
)

// UniformBinding is a single CPU-supplied uniform visible to a stage.
type UniformBinding struct {
	Symbol   hir.SymbolID
	Name     string
	GLSLType string
}

// AttributeBinding is a single vertex attribute input, VS-stage only.
type AttributeBinding struct {
	Symbol   hir.SymbolID
	Name     string
	GLSLType string
	Location uint32
}

// StageIO describes everything a single stage's prologue must declare.
type StageIO struct {
	Uniforms    []UniformBinding
	Attributes  []AttributeBinding // non-empty only for the VS stage
	VaryingsIn  []varying.Varying  // empty for the first emitted stage
	VaryingsOut []varying.Varying  // empty for the terminal (FS) stage
	// FragColorType is the GLSL type of the sole fragment color output,
	// only meaningful when stage == lattice.FS.
	FragColorType string
}

// Emit lowers stmts (already scheduled into stage's execution order by
// the Partitioner) into one complete GLSL 4.40 shader stage source string.
// ns must already have every symbol in io.VaryingsIn/io.VaryingsOut bound
// to its varying name (shared identically on both sides of the boundary,
// per §3 invariant), so that ordinary reads/writes of those symbols
// inside stmts resolve to the declared in/out variable automatically.
func Emit(stage lattice.Tier, fn *hir.Function, table *hir.Table, stmts []hir.StmtHandle,
	io StageIO, ns *symtab.Namespace, opts Options) (string, error) {
	w := &writer{fn: fn, table: table, ns: ns, opts: opts, declared: map[hir.SymbolID]bool{}}

	w.writeLine("#version %s", opts.Version)
	if opts.ForceHighPrecision {
		w.writeLine("precision highp float;")
	}
	w.writeLine("")

	for _, u := range io.Uniforms {
		w.writeLine("uniform %s %s;", u.GLSLType, u.Name)
	}
	if len(io.Uniforms) > 0 {
		w.writeLine("")
	}

	if stage == lattice.VS {
		for _, a := range io.Attributes {
			w.writeLine("layout(location = %d) in %s %s;", a.Location, a.GLSLType, a.Name)
		}
	} else {
		for _, v := range io.VaryingsIn {
			w.writeLine("layout(location = %d) %s in %s %s;", v.Slot, v.Interp, v.GLSLType, v.Name)
		}
	}
	if len(io.Attributes) > 0 || len(io.VaryingsIn) > 0 {
		w.writeLine("")
	}

	if stage == lattice.FS {
		ft := io.FragColorType
		if ft == "" {
			ft = "vec4"
		}
		w.writeLine("layout(location = 0) out %s fragColor;", ft)
	} else {
		for _, v := range io.VaryingsOut {
			w.writeLine("layout(location = %d) %s out %s %s;", v.Slot, v.Interp, v.GLSLType, v.Name)
		}
	}
	w.writeLine("")

	w.writeLine("void main() {")
	w.pushIndent()
	for _, h := range stmts {
		if err := w.writeStatement(h); err != nil {
			return "", err
		}
	}
	w.popIndent()
	w.writeLine("}")

	return w.out.String(), nil
}

type writer struct {
	fn    *hir.Function
	table *hir.Table
	ns    *symtab.Namespace
	opts  Options

	out      strings.Builder
	indent   int
	declared map[hir.SymbolID]bool
}

func (w *writer) writeLine(format string, args ...any) {
	w.writeIndent()
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

func (w *writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

func (w *writer) pushIndent() { w.indent++ }
func (w *writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

func (w *writer) nameOf(id hir.SymbolID) string {
	if n, ok := w.ns.Lookup(id); ok {
		return n
	}
	return w.ns.Assign(id, w.table.Get(id).Name)
}

func (w *writer) glslType(t typesystem.Type) string {
	n, ok := typesystem.GLSLName(t)
	if !ok {
		return "float"
	}
	return n
}

func (w *writer) writeStatement(h hir.StmtHandle) error {
	s := w.fn.Stmt(h)
	switch k := s.Kind.(type) {
	case hir.StmtLocalDecl:
		sym := w.table.Get(k.Symbol)
		w.declared[k.Symbol] = true
		if k.Init != nil {
			val, err := w.genExpr(*k.Init)
			if err != nil {
				return err
			}
			w.writeLine("%s %s = %s;", w.glslType(sym.Type), w.nameOf(k.Symbol), val)
		} else {
			w.writeLine("%s %s = %s;", w.glslType(sym.Type), w.nameOf(k.Symbol), zeroValue(sym.Type))
		}
		return nil
	case hir.StmtAssign:
		place, err := w.genPlace(k.Place)
		if err != nil {
			return err
		}
		val, err := w.genExpr(k.Value)
		if err != nil {
			return err
		}
		w.writeLine("%s = %s;", place, val)
		return nil
	case hir.StmtIf:
		cond, err := w.genExpr(k.Condition)
		if err != nil {
			return err
		}
		w.writeLine("if (%s) {", cond)
		w.pushIndent()
		for _, sh := range k.Then.Statements {
			if err := w.writeStatement(sh); err != nil {
				return err
			}
		}
		w.popIndent()
		if len(k.Else.Statements) > 0 {
			w.writeLine("} else {")
			w.pushIndent()
			for _, sh := range k.Else.Statements {
				if err := w.writeStatement(sh); err != nil {
					return err
				}
			}
			w.popIndent()
		}
		w.writeLine("}")
		return nil
	case hir.StmtExpr:
		val, err := w.genExpr(k.Expr)
		if err != nil {
			return err
		}
		w.writeLine("%s;", val)
		return nil
	default:
		return nil
	}
}

// genPlace renders an lvalue expression (Ident / FieldAccess / Index) as
// it appears on the left of an assignment — a Local not yet declared in
// this stage is implicitly declared at its point of first assignment,
// since the Partitioner only assigns a statement to this stage when the
// symbol's producing write genuinely belongs here.
func (w *writer) genPlace(h hir.ExprHandle) (string, error) {
	e := w.fn.Expr(h)
	switch k := e.Kind.(type) {
	case hir.ExprIdent:
		sym := w.table.Get(k.Symbol)
		if sym.Kind == hir.Local && !w.declared[k.Symbol] {
			w.declared[k.Symbol] = true
			return fmt.Sprintf("%s %s", w.glslType(sym.Type), w.nameOf(k.Symbol)), nil
		}
		switch sym.Builtin {
		case hir.BuiltinPositionOut:
			return "gl_Position", nil
		case hir.BuiltinFragColorOut:
			return "fragColor", nil
		}
		return w.nameOf(k.Symbol), nil
	case hir.ExprFieldAccess:
		base, err := w.genExpr(k.Base)
		if err != nil {
			return "", err
		}
		return base + "." + k.Field, nil
	case hir.ExprIndex:
		base, err := w.genExpr(k.Base)
		if err != nil {
			return "", err
		}
		idx, err := w.genExpr(k.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%s]", base, idx), nil
	default:
		return "", fmt.Errorf("glslgen: invalid assignment target expression")
	}
}

func (w *writer) genExpr(h hir.ExprHandle) (string, error) {
	e := w.fn.Expr(h)
	switch k := e.Kind.(type) {
	case hir.ExprLiteral:
		return formatLiteral(k.Value), nil
	case hir.ExprIdent:
		sym := w.table.Get(k.Symbol)
		switch sym.Builtin {
		case hir.BuiltinFragCoord:
			return "gl_FragCoord", nil
		case hir.BuiltinPositionOut:
			return "gl_Position", nil
		case hir.BuiltinFragColorOut:
			return "fragColor", nil
		}
		return w.nameOf(k.Symbol), nil
	case hir.ExprFieldAccess:
		base, err := w.genExpr(k.Base)
		if err != nil {
			return "", err
		}
		return base + "." + k.Field, nil
	case hir.ExprIndex:
		base, err := w.genExpr(k.Base)
		if err != nil {
			return "", err
		}
		idx, err := w.genExpr(k.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s[%s]", base, idx), nil
	case hir.ExprSwizzle:
		base, err := w.genExpr(k.Base)
		if err != nil {
			return "", err
		}
		return base + "." + swizzleString(k.Components), nil
	case hir.ExprBinary:
		left, err := w.genExpr(k.Left)
		if err != nil {
			return "", err
		}
		right, err := w.genExpr(k.Right)
		if err != nil {
			return "", err
		}
		if k.Op == hir.OpMod {
			return fmt.Sprintf("mod(%s, %s)", left, right), nil
		}
		return fmt.Sprintf("(%s %s %s)", left, binaryOpString(k.Op), right), nil
	case hir.ExprUnary:
		operand, err := w.genExpr(k.Operand)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s%s)", unaryOpString(k.Op), operand), nil
	case hir.ExprCompose:
		parts := make([]string, len(k.Components))
		for i, c := range k.Components {
			v, err := w.genExpr(c)
			if err != nil {
				return "", err
			}
			parts[i] = v
		}
		return fmt.Sprintf("%s(%s)", w.glslType(k.Type), strings.Join(parts, ", ")), nil
	case hir.ExprCall:
		args := make([]string, len(k.Args))
		for i, a := range k.Args {
			v, err := w.genExpr(a)
			if err != nil {
				return "", err
			}
			args[i] = v
		}
		if k.IsUser {
			return fmt.Sprintf("%s(%s)", w.nameOf(k.Proc), strings.Join(args, ", ")), nil
		}
		return fmt.Sprintf("%s(%s)", builtinFnName(k.Builtin), strings.Join(args, ", ")), nil
	default:
		return "", fmt.Errorf("glslgen: unsupported expression kind %T", e.Kind)
	}
}

func binaryOpString(op hir.BinaryOperator) string {
	switch op {
	case hir.OpAdd:
		return "+"
	case hir.OpSub:
		return "-"
	case hir.OpMul:
		return "*"
	case hir.OpDiv:
		return "/"
	case hir.OpEqual:
		return "=="
	case hir.OpNotEqual:
		return "!="
	case hir.OpLess:
		return "<"
	case hir.OpLessEqual:
		return "<="
	case hir.OpGreater:
		return ">"
	case hir.OpGreaterEqual:
		return ">="
	case hir.OpLogicalAnd:
		return "&&"
	case hir.OpLogicalOr:
		return "||"
	default:
		return "+"
	}
}

func unaryOpString(op hir.UnaryOperator) string {
	switch op {
	case hir.OpNegate:
		return "-"
	case hir.OpNot:
		return "!"
	default:
		return ""
	}
}

func builtinFnName(fn hir.BuiltinFunction) string {
	switch fn {
	case hir.FnSin:
		return "sin"
	case hir.FnCos:
		return "cos"
	case hir.FnTan:
		return "tan"
	case hir.FnNormalize:
		return "normalize"
	case hir.FnDot:
		return "dot"
	case hir.FnCross:
		return "cross"
	case hir.FnLength:
		return "length"
	case hir.FnDistance:
		return "distance"
	case hir.FnReflect:
		return "reflect"
	case hir.FnRefract:
		return "refract"
	case hir.FnMix:
		return "mix"
	case hir.FnClamp:
		return "clamp"
	case hir.FnStep:
		return "step"
	case hir.FnSmoothstep:
		return "smoothstep"
	case hir.FnMin:
		return "min"
	case hir.FnMax:
		return "max"
	case hir.FnAbs:
		return "abs"
	case hir.FnFloor:
		return "floor"
	case hir.FnCeil:
		return "ceil"
	case hir.FnFract:
		return "fract"
	case hir.FnPow:
		return "pow"
	case hir.FnExp:
		return "exp"
	case hir.FnLog:
		return "log"
	case hir.FnSqrt:
		return "sqrt"
	case hir.FnInverseSqrt:
		return "inversesqrt"
	case hir.FnTranspose:
		return "transpose"
	case hir.FnInverse:
		return "inverse"
	case hir.FnTextureSample:
		return "texture"
	default:
		return "/*unknown*/"
	}
}

func swizzleString(components []hir.SwizzleComponent) string {
	var sb strings.Builder
	for _, c := range components {
		switch c {
		case hir.ComponentX:
			sb.WriteByte('x')
		case hir.ComponentY:
			sb.WriteByte('y')
		case hir.ComponentZ:
			sb.WriteByte('z')
		case hir.ComponentW:
			sb.WriteByte('w')
		}
	}
	return sb.String()
}

// formatLiteral renders a literal value, always with a decimal point or
// exponent for float values, matching glsl.formatFloat/formatFloat64.
func formatLiteral(v hir.LiteralValue) string {
	switch v.Kind {
	case typesystem.Float:
		return formatFloat(v.Float)
	case typesystem.Int:
		return fmt.Sprintf("%d", v.Int)
	case typesystem.Uint:
		return fmt.Sprintf("%du", v.Uint)
	case typesystem.Bool:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return "0.0"
	}
}

func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "(1.0 / 0.0)"
	}
	if math.IsInf(f, -1) {
		return "(-1.0 / 0.0)"
	}
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// zeroValue renders the default-initializer GLSL expression for t.
func zeroValue(t typesystem.Type) string {
	name, ok := typesystem.GLSLName(t)
	if !ok {
		return "0.0"
	}
	switch t.Kind {
	case typesystem.KindScalar:
		switch t.Scalar {
		case typesystem.Int:
			return "0"
		case typesystem.Uint:
			return "0u"
		case typesystem.Bool:
			return "false"
		default:
			return "0.0"
		}
	case typesystem.KindVector, typesystem.KindMatrix:
		return name + "(0.0)"
	default:
		return name + "(0.0)"
	}
}
