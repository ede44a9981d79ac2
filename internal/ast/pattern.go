package ast

import "github.com/ringlang/ringc/internal/token"

// Pattern is a match-arm pattern: literal, constant path, binding,
// wildcard, tuple, structure, or enum-variant path (spec.md §4.A).
type Pattern interface {
	Location() token.Location
	patternNode()
}

type PatternBase struct{ Loc token.Location }

func (p PatternBase) Location() token.Location { return p.Loc }
func (PatternBase) patternNode()                {}

// WildcardPattern is `_`.
type WildcardPattern struct{ PatternBase }

// BindingPattern binds the scrutinee to a new name.
type BindingPattern struct {
	PatternBase
	Name string
}

// LiteralPattern matches a boolean or integer literal exactly.
type LiteralPattern struct {
	PatternBase
	Bool    *bool
	Integer *token.IntegerLiteral
}

// PathPattern matches a named constant or enum variant by path.
type PathPattern struct {
	PatternBase
	Segments []string
}

// TuplePattern destructures a tuple, recursively.
type TuplePattern struct {
	PatternBase
	Elements []Pattern
}

// StructPattern destructures a structure by field name, recursively.
type StructPattern struct {
	PatternBase
	Type   []string
	Fields []StructPatternField
}

type StructPatternField struct {
	Name    string
	Pattern Pattern
}
