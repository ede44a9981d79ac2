// Package scope implements the lexical environment chain the semantic
// analyzer resolves names through: a root intrinsic scope seeded by
// internal/intrinsic, with nested block/function/module scopes
// chaining up to it. Grounded on the teacher's internal/compiler
// variable-table handling, generalized into an explicit parent-linked
// chain since this language nests modules, impls, and blocks more
// deeply than the teacher's flat script scoping.
package scope

import (
	"github.com/ringlang/ringc/internal/types"
)

// ItemKind discriminates what a ScopeItem names.
type ItemKind int

const (
	ItemVariable ItemKind = iota
	ItemConstant
	ItemType
	ItemModule
	ItemFunction
)

// Item is one name bound in a scope.
type Item struct {
	Kind     ItemKind
	Name     string
	Type     *types.Type
	Mutable  bool
	Address  int // data-stack address, valid for ItemVariable
	Module   *Scope
	// ConstValue is filled for ItemConstant by the analyzer, typed as
	// interface{} here to avoid an import cycle with internal/value;
	// the analyzer type-asserts it back to value.Value.
	ConstValue interface{}
}

// Scope is one lexical environment: a name table plus a link to its
// enclosing scope. The root scope (Parent == nil) is the intrinsic
// scope built by internal/intrinsic.
type Scope struct {
	Parent *Scope
	items  map[string]*Item
}

func New(parent *Scope) *Scope {
	return &Scope{Parent: parent, items: make(map[string]*Item)}
}

// Define adds name to this scope, returning false if it is already
// bound in this (not an enclosing) scope — duplicate definition is a
// semantic error the caller raises using the returned bool.
func (s *Scope) Define(item *Item) bool {
	if _, exists := s.items[item.Name]; exists {
		return false
	}
	s.items[item.Name] = item
	return true
}

// Resolve searches this scope and its ancestors for name.
func (s *Scope) Resolve(name string) (*Item, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if it, ok := cur.items[name]; ok {
			return it, true
		}
	}
	return nil, false
}

// ResolveLocal searches only this scope, not its ancestors.
func (s *Scope) ResolveLocal(name string) (*Item, bool) {
	it, ok := s.items[name]
	return it, ok
}

// Depth counts how many scopes separate s from the root.
func (s *Scope) Depth() int {
	n := 0
	for cur := s.Parent; cur != nil; cur = cur.Parent {
		n++
	}
	return n
}
