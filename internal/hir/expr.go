package hir

import "github.com/gogpu/shaderpart/internal/typesystem"

// ExprHandle is a small integer reference to an Expression stored in a
// Function's expression arena, per §9's handle-not-pointer design note.
type ExprHandle uint32

// ExprKind is implemented by every concrete expression payload, following
// the tagged-sum idiom: a closed set of marker types rather than a type
// switch over interface{} or runtime reflection.
type ExprKind interface {
	exprKind()
}

// Expression is one node of a Function's expression arena.
type Expression struct {
	Kind ExprKind
	Type typesystem.Type
}

// ExprLiteral is a constant scalar/vector/matrix literal.
type ExprLiteral struct {
	Value LiteralValue
}

func (ExprLiteral) exprKind() {}

// LiteralValue holds the bit pattern of a literal, tagged by scalar kind.
type LiteralValue struct {
	Kind  typesystem.ScalarKind
	Float float64
	Int   int64
	Uint  uint64
	Bool  bool
}

// ExprIdent references a Symbol by its stable handle.
type ExprIdent struct {
	Symbol SymbolID
}

func (ExprIdent) exprKind() {}

// ExprFieldAccess projects a named field out of a struct-typed expression.
type ExprFieldAccess struct {
	Base  ExprHandle
	Field string
}

func (ExprFieldAccess) exprKind() {}

// ExprIndex indexes a vector or array-typed expression.
type ExprIndex struct {
	Base  ExprHandle
	Index ExprHandle
}

func (ExprIndex) exprKind() {}

// SwizzleComponent names one output component of a swizzle.
type SwizzleComponent uint8

const (
	ComponentX SwizzleComponent = iota
	ComponentY
	ComponentZ
	ComponentW
)

// ExprSwizzle projects a fixed set of vector components, e.g. `.xyz`.
type ExprSwizzle struct {
	Base       ExprHandle
	Components []SwizzleComponent
}

func (ExprSwizzle) exprKind() {}

// BinaryOperator names a binary operator.
type BinaryOperator uint8

const (
	OpAdd BinaryOperator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpLogicalAnd
	OpLogicalOr
)

// ExprBinary applies a binary operator to two sub-expressions.
type ExprBinary struct {
	Op          BinaryOperator
	Left, Right ExprHandle
}

func (ExprBinary) exprKind() {}

// UnaryOperator names a unary operator.
type UnaryOperator uint8

const (
	OpNegate UnaryOperator = iota
	OpNot
)

// ExprUnary applies a unary operator to a sub-expression.
type ExprUnary struct {
	Op      UnaryOperator
	Operand ExprHandle
}

func (ExprUnary) exprKind() {}

// ExprCompose constructs a vector, matrix, array, or struct value from
// component sub-expressions, e.g. vec3(x, y, z).
type ExprCompose struct {
	Type       typesystem.Type
	Components []ExprHandle
}

func (ExprCompose) exprKind() {}

// BuiltinFunction names a GLSL built-in function callable from host code,
// per spec §4.1/§6.1's allow-list (trigonometric, texture sampling,
// vector/matrix algebra, clamp/mix/step and kin).
type BuiltinFunction uint8

const (
	FnSin BuiltinFunction = iota
	FnCos
	FnTan
	FnNormalize
	FnDot
	FnCross
	FnLength
	FnDistance
	FnReflect
	FnRefract
	FnMix
	FnClamp
	FnStep
	FnSmoothstep
	FnMin
	FnMax
	FnAbs
	FnFloor
	FnCeil
	FnFract
	FnPow
	FnExp
	FnLog
	FnSqrt
	FnInverseSqrt
	FnTranspose
	FnInverse
	FnTextureSample
)

// ExprCall invokes a builtin function or a host-defined procedure.
type ExprCall struct {
	Builtin  BuiltinFunction
	IsUser   bool
	Proc     SymbolID // valid when IsUser
	Args     []ExprHandle
}

func (ExprCall) exprKind() {}

// ExprConversion renders a host conversion call whose callee names a
// recognized GLSL constructor, e.g. float(x) or vec3(x).
type ExprConversion struct {
	To   typesystem.Type
	Expr ExprHandle
}

func (ExprConversion) exprKind() {}

// ExprConditional is an if-expression: Cond ? Then : Else.
type ExprConditional struct {
	Cond, Then, Else ExprHandle
}

func (ExprConditional) exprKind() {}

// ExprStmtList is a statement-list-expression: Stmts run for their side
// effects, then Result is the expression's value. GLSL has no
// expression-block equivalent, so the Partitioner desugars every
// ExprStmtList out of the tree before tier inference runs — no
// downstream stage ever sees this kind directly.
type ExprStmtList struct {
	Stmts  []StmtHandle
	Result ExprHandle
}

func (ExprStmtList) exprKind() {}
