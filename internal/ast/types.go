// Package ast defines the tree produced by the parser: expressions
// (tree form with operator nodes, per spec.md §3's "AST expression
// tree" invariant), statements, type expressions, patterns, and
// attributes. Traversal is by explicit type switch, matching the
// teacher's visitor-free node shapes once the node count grows beyond
// what a small ExprVisitor interface (internal/parser/ast.go in the
// teacher) comfortably covers — spec.md's system design notes call
// for exactly this: "all traversal is via explicit match."
package ast

import "github.com/ringlang/ringc/internal/token"

// TypeExpr is a parsed type annotation, resolved to a types.Type by
// the semantic analyzer.
type TypeExpr struct {
	Loc  token.Location
	Kind TypeExprKind
	Name string      // Unit/Bool/Field/Uint/Int/Ident/etc. base name
	Bits int         // bit width for Uint/Int
	Elem *TypeExpr    // Array element / Option-less wrapped type
	Size Expr          // Array size expression (must fold to a constant)
	Items []*TypeExpr  // Tuple element types
	Path  []string      // dotted/:: path for a named struct/enum/module type
	Args  []*TypeExpr   // generic args, e.g. MTreeMap<K,V>
}

type TypeExprKind int

const (
	TypeUnit TypeExprKind = iota
	TypeBool
	TypeUint
	TypeInt
	TypeField
	TypeArray
	TypeTuple
	TypeNamed
	TypeString
)

// Attribute is a parsed #[path(args...)] or #![...] outer/inner
// attribute, per spec.md §4.P.
type Attribute struct {
	Loc    token.Location
	Inner  bool
	Path   []string
	Elements []AttributeElement
}

// AttributeElement is one entry of an attribute's argument list: a
// bare path, `path = literal`, or `path(nested...)`.
type AttributeElement struct {
	Path    []string
	Literal *Literal // set if this is `path = literal`
	Nested  []AttributeElement
}

func (a *Attribute) Is(name string) bool {
	return len(a.Path) == 1 && a.Path[0] == name
}

// Literal is the restricted literal form accepted as an attribute
// argument value (`path = literal`): bool, integer, or string.
type Literal struct {
	Bool    *bool
	Integer *token.IntegerLiteral
	Str     *string
}

func (a *Attribute) HasPath(parts ...string) bool {
	if len(a.Path) != len(parts) {
		return false
	}
	for i, p := range parts {
		if a.Path[i] != p {
			return false
		}
	}
	return true
}
