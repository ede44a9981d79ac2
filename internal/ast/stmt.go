package ast

import "github.com/ringlang/ringc/internal/token"

// Stmt is any statement-level node: module-local (const/static/type/
// struct/enum/fn/mod/use/impl/contract/`;`), contract-local (field/
// const/fn), impl-local (const/fn), or inner (let/const/for/expr),
// per spec.md §4.P's statement taxonomy.
type Stmt interface {
	Location() token.Location
	Attrs() []*Attribute
	SetAttrs([]*Attribute)
	stmtNode()
}

type StmtBase struct {
	Loc        token.Location
	Attributes []*Attribute
}

func (s StmtBase) Location() token.Location { return s.Loc }
func (s StmtBase) Attrs() []*Attribute       { return s.Attributes }
func (s *StmtBase) SetAttrs(a []*Attribute)  { s.Attributes = a }
func (StmtBase) stmtNode()                  {}

// EmptyStmt is a bare `;`.
type EmptyStmt struct{ StmtBase }

// LetStmt is `let [mut] name[: Type] = expr;`.
type LetStmt struct {
	StmtBase
	Mutable bool
	Name    string
	Type    *TypeExpr // optional declared type
	Value   Expr
}

// ConstStmt is `const NAME: Type = expr;`.
type ConstStmt struct {
	StmtBase
	Name  string
	Type  *TypeExpr
	Value Expr
}

// StaticStmt is `static NAME: Type = expr;`.
type StaticStmt struct {
	StmtBase
	Name  string
	Type  *TypeExpr
	Value Expr
}

// TypeAliasStmt is `type Name = Type;`.
type TypeAliasStmt struct {
	StmtBase
	Name string
	Type *TypeExpr
}

// StructField is one field of a struct/contract declaration.
type StructField struct {
	Name string
	Type *TypeExpr
}

// StructStmt is `struct Name { field: Type, ... }`.
type StructStmt struct {
	StmtBase
	Name   string
	Fields []StructField
}

// EnumVariant is one `Name = value` entry of an enum.
type EnumVariant struct {
	Name  string
	Value *token.IntegerLiteral // nil => auto-numbered from previous + 1
}

// EnumStmt is `enum Name { Variant = N, ... }`.
type EnumStmt struct {
	StmtBase
	Name     string
	Variants []EnumVariant
}

// Param is one function parameter.
type Param struct {
	Mutable bool
	Name    string
	Type    *TypeExpr
	IsSelf  bool
}

// FnStmt is `[pub] [const] fn name(params) [-> Type] { body }`.
type FnStmt struct {
	StmtBase
	Public     bool
	Name       string
	Params     []Param
	ReturnType *TypeExpr // nil => Unit
	Body       []Stmt
}

// ModStmt is `mod name;` or `mod name { items... }`.
type ModStmt struct {
	StmtBase
	Name  string
	Items []Stmt // nil if this is a file-reference `mod name;`
}

// UseStmt is `use path::to::item [as alias];`.
type UseStmt struct {
	StmtBase
	Path  []string
	Alias string
}

// ImplStmt is `impl TypeName { items... }`.
type ImplStmt struct {
	StmtBase
	Type  string
	Items []Stmt
}

// ContractStmt is `contract Name { field: Type, ... items... }`.
type ContractStmt struct {
	StmtBase
	Name   string
	Fields []StructField
	Items  []Stmt
}

// ForStmt is `for i in a..b [while c] { body }`.
type ForStmt struct {
	StmtBase
	Variable  string
	Low, High Expr
	Inclusive bool
	While     Expr // optional guard
	Body      []Stmt
}

// InnerLetStmt and InnerConstStmt reuse LetStmt/ConstStmt above (inner
// position allows the same forms as module-local position).

// ExprStmt is an expression used as a statement, with optional
// trailing `;` recorded (a block's final expr without `;` is its
// value).
type ExprStmt struct {
	StmtBase
	Expr       Expr
	Terminated bool
}
