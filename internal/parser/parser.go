// Package parser implements the recursive-descent parser of spec.md
// §4.P: one state machine per non-terminal, a Pratt-style precedence
// climb for expressions, and panic/recover-based error propagation
// grounded on the teacher's internal/parser/parser.go (`consume`,
// `match`, `check`, `peek`/`advance`, and a panic carrying a
// structured error that the top-level Parse recovers).
package parser

import (
	"github.com/ringlang/ringc/internal/ast"
	"github.com/ringlang/ringc/internal/diag"
	"github.com/ringlang/ringc/internal/token"
)

// Parser consumes a token slice produced by the lexer and builds an
// AST. The expression precedence climb is:
// assignment → range → or → and → comparison → bitor → bitxor →
// bitand → bitshift → addsub → muldivrem → casting → unary → access →
// terminal. There is no boolean-xor (`^^`) level; `^^` lexes as two
// `^` tokens.
type Parser struct {
	tokens      []token.Token
	current     int
	sourceLines []string
}

// New builds a Parser over tokens, with sourceLines used only to
// render caret snippets in diagnostics.
func New(tokens []token.Token, sourceLines []string) *Parser {
	return &Parser{tokens: tokens, sourceLines: sourceLines}
}

// Parse runs the parser over the whole token stream, returning the
// module-local statement list, or the first syntax diagnostic hit.
func (p *Parser) Parse() (stmts []ast.Stmt, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*parseError); ok {
				err = pe.d
				return
			}
			panic(r)
		}
	}()
	for !p.atEnd() {
		stmts = append(stmts, p.moduleItem())
	}
	return stmts, nil
}

// parseError wraps a *diag.Diagnostic so it can be thrown with panic
// and only recovered at Parse's top level; the parser never guesses
// past a mismatch (spec.md §4.P: "it does not [continue]").
type parseError struct{ d *diag.Diagnostic }

func (e *parseError) Error() string { return e.d.Error() }

func (p *Parser) fail(found token.Token, expected []string, hint string) {
	d := diag.NewSyntax(found.Loc, string(found.Type), expected)
	if p.sourceLines != nil && found.Loc.Line >= 1 && found.Loc.Line <= len(p.sourceLines) {
		d = d.WithSource(p.sourceLines[found.Loc.Line-1])
	}
	if hint != "" {
		d = d.WithHint(hint)
	}
	panic(&parseError{d})
}

// --- token-stream primitives ---

func (p *Parser) peek() token.Token     { return p.tokens[p.current] }
func (p *Parser) previous() token.Token { return p.tokens[p.current-1] }
func (p *Parser) atEnd() bool           { return p.peek().Type == token.EOF }

func (p *Parser) advance() token.Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(t token.Type) bool {
	return !p.atEnd() && p.peek().Type == t
}

func (p *Parser) checkAt(offset int, t token.Type) bool {
	idx := p.current + offset
	if idx >= len(p.tokens) {
		return false
	}
	return p.tokens[idx].Type == t
}

func (p *Parser) match(types ...token.Type) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(t token.Type, expectedDesc string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	p.fail(p.peek(), []string{expectedDesc}, "")
	panic("unreachable")
}

func (p *Parser) consumeIdent(what string) token.Token {
	if p.check(token.Ident) {
		return p.advance()
	}
	p.fail(p.peek(), []string{what}, "")
	panic("unreachable")
}

// --- attributes ---

// attributes parses zero or more leading `#[...]` outer attributes (or
// `#![...]` inner attributes at the very top of a file/block).
func (p *Parser) attributes() []*ast.Attribute {
	var attrs []*ast.Attribute
	for p.check(token.Hash) {
		attrs = append(attrs, p.attribute())
	}
	return attrs
}

func (p *Parser) attribute() *ast.Attribute {
	loc := p.peek().Loc
	p.advance() // '#'
	inner := p.match(token.Not)
	p.consume(token.LBracket, "'['")
	a := &ast.Attribute{Loc: loc, Inner: inner}
	a.Path = p.path()
	a.Elements = p.attributeArgs()
	p.consume(token.RBracket, "']'")
	return a
}

func (p *Parser) path() []string {
	segs := []string{p.consumeIdent("identifier").Lexeme}
	for p.match(token.DoubleColon) {
		segs = append(segs, p.consumeIdent("identifier").Lexeme)
	}
	return segs
}

func (p *Parser) attributeArgs() []ast.AttributeElement {
	if !p.match(token.LParen) {
		return nil
	}
	var elems []ast.AttributeElement
	for !p.check(token.RParen) && !p.atEnd() {
		elems = append(elems, p.attributeElement())
		if !p.match(token.Comma) {
			break
		}
	}
	p.consume(token.RParen, "')'")
	return elems
}

func (p *Parser) attributeElement() ast.AttributeElement {
	elemPath := p.path()
	elem := ast.AttributeElement{Path: elemPath}
	if p.match(token.Assign) {
		elem.Literal = p.attributeLiteral()
	} else if p.check(token.LParen) {
		elem.Nested = p.attributeArgs()
	}
	return elem
}

func (p *Parser) attributeLiteral() *ast.Literal {
	tok := p.advance()
	switch tok.Type {
	case token.True:
		v := true
		return &ast.Literal{Bool: &v}
	case token.False:
		v := false
		return &ast.Literal{Bool: &v}
	case token.Integer:
		lit := tok.Literal
		return &ast.Literal{Integer: &lit}
	case token.Str:
		s := tok.Str
		return &ast.Literal{Str: &s}
	default:
		p.fail(tok, []string{"literal"}, "")
		panic("unreachable")
	}
}
