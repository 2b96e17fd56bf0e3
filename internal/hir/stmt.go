package hir

import "github.com/gogpu/shaderpart/internal/diag"

// StmtHandle is a small integer reference into a Function's statement arena.
type StmtHandle uint32

// StmtKind is implemented by every concrete statement payload, mirroring
// ExprKind's tagged-sum idiom.
type StmtKind interface {
	stmtKind()
}

// Statement is one node of a Function's statement list.
type Statement struct {
	Kind StmtKind
	Span diag.Span
}

// Block is an ordered sequence of statements. The Partitioner's stage split
// operates over a Function's top-level Block; nested blocks (inside an If)
// move with their owning statement.
type Block struct {
	Statements []StmtHandle
}

// StmtAssign writes the result of an expression to a place (an Ident,
// FieldAccess, or Index expression serving as an lvalue).
type StmtAssign struct {
	Place ExprHandle
	Value ExprHandle
}

func (StmtAssign) stmtKind() {}

// StmtLocalDecl introduces a new Local symbol, optionally with an
// initializer.
type StmtLocalDecl struct {
	Symbol SymbolID
	Init   *ExprHandle
}

func (StmtLocalDecl) stmtKind() {}

// StmtIf is a two-armed conditional. Per §6.1, the condition and each arm
// are partitioned independently; a statement inside an arm never migrates
// across the If's own boundary.
type StmtIf struct {
	Condition ExprHandle
	Then      Block
	Else      Block // empty Statements when there is no else arm
}

func (StmtIf) stmtKind() {}

// StmtExpr evaluates an expression for its side effect (a bare call).
type StmtExpr struct {
	Expr ExprHandle
}

func (StmtExpr) stmtKind() {}

// StmtInterpolate is the in-source interpolate(target[, qualifier])
// annotation statement (§4.5 step 4). Target is an expression handle
// rather than a bare SymbolID so the Partitioner can reject a
// swizzle/field/index target with diag.KindBadInterpolate (§4.5 step 6) —
// the annotation is only meaningful applied to a whole symbol. Once
// validated, it is recorded onto the named Symbol's Interpolate
// field and does not itself survive into the partitioned output as an
// executable statement.
type StmtInterpolate struct {
	Target    ExprHandle
	Qualifier *Qualifier
}

func (StmtInterpolate) stmtKind() {}

// StmtConstDecl declares a module-level constant: Symbol is a ModuleConst
// and Value is the compile-time expression it is bound to. Its tier is
// always CONST; the value is inlined as a GLSL const in every stage that
// reads it.
type StmtConstDecl struct {
	Symbol SymbolID
	Value  ExprHandle
}

func (StmtConstDecl) stmtKind() {}

// StmtForRange lowers to a C-style counting loop:
// for (int Var = Lo; Var < Hi; ++Var) { Body }.
type StmtForRange struct {
	Var    SymbolID
	Lo, Hi ExprHandle
	Body   Block
}

func (StmtForRange) stmtKind() {}

// StmtForItems iterates the elements of a fixed-size array:
// for (int _i = 0; _i < N; ++_i) { T Var = Array[_i]; Body }.
type StmtForItems struct {
	Var   SymbolID
	Array ExprHandle
	Body  Block
}

func (StmtForItems) stmtKind() {}

// StmtWhile lowers to a GLSL while loop.
type StmtWhile struct {
	Cond ExprHandle
	Body Block
}

func (StmtWhile) stmtKind() {}

// StmtReturn lowers to a GLSL return statement, bare when Value is nil.
type StmtReturn struct {
	Value *ExprHandle
}

func (StmtReturn) stmtKind() {}

// Function is one host-language procedure or the top-level pipeline body.
type Function struct {
	Name       string
	Params     []SymbolID
	Result     *SymbolID
	Locals     []SymbolID
	Expressions []Expression
	Statements  []Statement
	Body        Block
}

// Expr returns the expression stored at h.
func (f *Function) Expr(h ExprHandle) *Expression { return &f.Expressions[h] }

// Stmt returns the statement stored at h.
func (f *Function) Stmt(h StmtHandle) *Statement { return &f.Statements[h] }

// AddExpr appends an expression to the arena and returns its handle.
func (f *Function) AddExpr(e Expression) ExprHandle {
	h := ExprHandle(len(f.Expressions))
	f.Expressions = append(f.Expressions, e)
	return h
}

// AddStmt appends a statement to the arena and returns its handle.
func (f *Function) AddStmt(s Statement) StmtHandle {
	h := StmtHandle(len(f.Statements))
	f.Statements = append(f.Statements, s)
	return h
}

// Module is the full host program: its global symbols and the single
// pipeline Function (plus any user-defined procedures it calls).
type Module struct {
	Symbols   *Table
	Pipeline  *Function
	Procs     map[SymbolID]*Function
}

// NewModule creates an empty Module ready for incremental construction.
func NewModule() *Module {
	return &Module{
		Symbols: NewTable(),
		Procs:   make(map[SymbolID]*Function),
	}
}
