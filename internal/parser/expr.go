package parser

import (
	"github.com/ringlang/ringc/internal/ast"
	"github.com/ringlang/ringc/internal/token"
)

// expression parses a full expression, top of the precedence climb:
// assignment → range → or → and → comparison → bitor → bitxor → bitand
// → bitshift → addsub → muldivrem → casting → unary → access →
// terminal (spec.md §4.P).
func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

// rangeOperand parses one bound of a `for`-loop range; it must not
// itself consume `..`/`..=`, so it starts at the `or` level, below
// both assignment and range (range bounds are not themselves
// assignable or further ranges).
func (p *Parser) rangeOperand() ast.Expr {
	return p.or()
}

func (p *Parser) assignment() ast.Expr {
	loc := p.peek().Loc
	left := p.rangeExpr()

	var op ast.BinaryOp
	switch p.peek().Type {
	case token.Assign:
		op = ""
	case token.PlusEq:
		op = ast.OpAdd
	case token.MinusEq:
		op = ast.OpSub
	case token.StarEq:
		op = ast.OpMul
	case token.SlashEq:
		op = ast.OpDiv
	case token.PercentEq:
		op = ast.OpRem
	case token.PipeEq:
		op = ast.OpBitOr
	case token.CaretEq:
		op = ast.OpBitXor
	case token.AmpEq:
		op = ast.OpBitAnd
	case token.ShlEq:
		op = ast.OpShl
	case token.ShrEq:
		op = ast.OpShr
	default:
		return left
	}
	p.advance()
	value := p.assignment()
	return &ast.Assign{ExprBase: eb(loc), Target: left, Operator: op, Value: value}
}

func (p *Parser) rangeExpr() ast.Expr {
	loc := p.peek().Loc
	low := p.or()
	if p.check(token.DotDot) || p.check(token.DotDotEq) {
		inclusive := p.peek().Type == token.DotDotEq
		p.advance()
		high := p.or()
		return &ast.Range{ExprBase: eb(loc), Low: low, High: high, Inclusive: inclusive}
	}
	return low
}

func (p *Parser) or() ast.Expr {
	loc := p.peek().Loc
	left := p.and()
	for p.match(token.OrOr) {
		right := p.and()
		left = &ast.Binary{ExprBase: eb(loc), Left: left, Operator: ast.OpOrOr, Right: right}
	}
	return left
}

func (p *Parser) and() ast.Expr {
	loc := p.peek().Loc
	left := p.comparison()
	for p.match(token.AndAnd) {
		right := p.comparison()
		left = &ast.Binary{ExprBase: eb(loc), Left: left, Operator: ast.OpAndAnd, Right: right}
	}
	return left
}

func (p *Parser) comparison() ast.Expr {
	loc := p.peek().Loc
	left := p.bitOr()
	for {
		var op ast.BinaryOp
		switch p.peek().Type {
		case token.Eq:
			op = ast.OpEq
		case token.NotEq:
			op = ast.OpNe
		case token.Lt:
			op = ast.OpLt
		case token.Le:
			op = ast.OpLe
		case token.Gt:
			op = ast.OpGt
		case token.Ge:
			op = ast.OpGe
		default:
			return left
		}
		p.advance()
		right := p.bitOr()
		left = &ast.Binary{ExprBase: eb(loc), Left: left, Operator: op, Right: right}
	}
}

func (p *Parser) bitOr() ast.Expr {
	loc := p.peek().Loc
	left := p.bitXor()
	for p.match(token.Pipe) {
		right := p.bitXor()
		left = &ast.Binary{ExprBase: eb(loc), Left: left, Operator: ast.OpBitOr, Right: right}
	}
	return left
}

func (p *Parser) bitXor() ast.Expr {
	loc := p.peek().Loc
	left := p.bitAnd()
	for p.match(token.Caret) {
		right := p.bitAnd()
		left = &ast.Binary{ExprBase: eb(loc), Left: left, Operator: ast.OpBitXor, Right: right}
	}
	return left
}

func (p *Parser) bitAnd() ast.Expr {
	loc := p.peek().Loc
	left := p.bitShift()
	for p.match(token.Amp) {
		right := p.bitShift()
		left = &ast.Binary{ExprBase: eb(loc), Left: left, Operator: ast.OpBitAnd, Right: right}
	}
	return left
}

func (p *Parser) bitShift() ast.Expr {
	loc := p.peek().Loc
	left := p.addSub()
	for {
		var op ast.BinaryOp
		switch p.peek().Type {
		case token.Shl:
			op = ast.OpShl
		case token.Shr:
			op = ast.OpShr
		default:
			return left
		}
		p.advance()
		right := p.addSub()
		left = &ast.Binary{ExprBase: eb(loc), Left: left, Operator: op, Right: right}
	}
}

func (p *Parser) addSub() ast.Expr {
	loc := p.peek().Loc
	left := p.mulDivRem()
	for {
		var op ast.BinaryOp
		switch p.peek().Type {
		case token.Plus:
			op = ast.OpAdd
		case token.Minus:
			op = ast.OpSub
		default:
			return left
		}
		p.advance()
		right := p.mulDivRem()
		left = &ast.Binary{ExprBase: eb(loc), Left: left, Operator: op, Right: right}
	}
}

func (p *Parser) mulDivRem() ast.Expr {
	loc := p.peek().Loc
	left := p.casting()
	for {
		var op ast.BinaryOp
		switch p.peek().Type {
		case token.Star:
			op = ast.OpMul
		case token.Slash:
			op = ast.OpDiv
		case token.Percent:
			op = ast.OpRem
		default:
			return left
		}
		p.advance()
		right := p.casting()
		left = &ast.Binary{ExprBase: eb(loc), Left: left, Operator: op, Right: right}
	}
}

func (p *Parser) casting() ast.Expr {
	loc := p.peek().Loc
	left := p.unary()
	for p.match(token.As) {
		ty := p.typeExpr()
		left = &ast.Cast{ExprBase: eb(loc), Operand: left, Type: ty}
	}
	return left
}

func (p *Parser) unary() ast.Expr {
	loc := p.peek().Loc
	var op ast.UnaryOp
	switch p.peek().Type {
	case token.Minus:
		op = ast.OpNeg
	case token.Not:
		op = ast.OpNot
	case token.Tilde:
		op = ast.OpBitNot
	default:
		return p.access()
	}
	p.advance()
	operand := p.unary()
	return &ast.Unary{ExprBase: eb(loc), Operator: op, Operand: operand}
}

// access parses postfix call/index/field/tuple-index chains over a
// terminal expression.
func (p *Parser) access() ast.Expr {
	expr := p.terminal()
	for {
		loc := p.peek().Loc
		switch {
		case p.match(token.LParen):
			var args []ast.Expr
			for !p.check(token.RParen) && !p.atEnd() {
				args = append(args, p.expression())
				if !p.match(token.Comma) {
					break
				}
			}
			p.consume(token.RParen, "')'")
			expr = &ast.Call{ExprBase: eb(loc), Callee: expr, Args: args}
		case p.match(token.LBracket):
			low := p.expression()
			if p.check(token.DotDot) || p.check(token.DotDotEq) {
				inclusive := p.peek().Type == token.DotDotEq
				p.advance()
				high := p.expression()
				p.consume(token.RBracket, "']'")
				expr = &ast.RangeIndex{ExprBase: eb(loc), Object: expr, Low: low, High: high, Inclusive: inclusive}
			} else {
				p.consume(token.RBracket, "']'")
				expr = &ast.Index{ExprBase: eb(loc), Object: expr, Index: low}
			}
		case p.match(token.Dot):
			if p.check(token.Integer) {
				tok := p.advance()
				expr = &ast.TupleIndex{ExprBase: eb(loc), Object: expr, Index: atoiIndex(tok.Lexeme)}
			} else {
				name := p.consumeIdent("field name").Lexeme
				expr = &ast.Field{ExprBase: eb(loc), Object: expr, Name: name}
			}
		default:
			return expr
		}
	}
}

func atoiIndex(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// eb builds the embedded ast.ExprBase every concrete expression node
// carries.
func eb(loc token.Location) ast.ExprBase {
	return ast.ExprBase{Loc: loc}
}

func (p *Parser) terminal() ast.Expr {
	tok := p.peek()
	loc := tok.Loc
	switch tok.Type {
	case token.True:
		p.advance()
		return &ast.BoolLiteral{ExprBase: eb(loc), Value: true}
	case token.False:
		p.advance()
		return &ast.BoolLiteral{ExprBase: eb(loc), Value: false}
	case token.Integer:
		p.advance()
		return &ast.IntegerLiteral{ExprBase: eb(loc), Literal: tok.Literal}
	case token.Str:
		p.advance()
		return &ast.StringLiteral{ExprBase: eb(loc), Value: tok.Str}
	case token.SelfKw:
		p.advance()
		return &ast.SelfExpr{ExprBase: eb(loc)}
	case token.Crate, token.Super, token.SelfType, token.Ident:
		return p.pathOrStructOrIdent()
	case token.LParen:
		return p.parenOrTuple()
	case token.LBracket:
		return p.arrayExpr()
	case token.LBrace:
		return p.block()
	case token.If:
		return p.conditional()
	case token.Match:
		return p.matchExpr()
	default:
		p.fail(tok, []string{"expression"}, "")
		panic("unreachable")
	}
}

// pathOrStructOrIdent parses a bare identifier, a `::`-joined path, or
// (when followed by `{ IDENT :` or `{ }`) a structure literal. Plain
// blocks also start with `{`, so the struct-literal form is only
// entered after seeing a path and a disambiguating two-token lookahead.
func (p *Parser) pathOrStructOrIdent() ast.Expr {
	loc := p.peek().Loc
	segs := []string{p.advance().Lexeme}
	for p.match(token.DoubleColon) {
		segs = append(segs, p.consumeIdent("identifier").Lexeme)
	}

	if p.check(token.LBrace) && p.looksLikeStructLiteral() {
		p.advance() // '{'
		ty := &ast.TypeExpr{Loc: loc, Kind: ast.TypeNamed, Path: segs}
		var fields []ast.StructLiteralField
		for !p.check(token.RBrace) && !p.atEnd() {
			fname := p.consumeIdent("field name").Lexeme
			p.consume(token.Colon, "':'")
			fval := p.expression()
			fields = append(fields, ast.StructLiteralField{Name: fname, Value: fval})
			if !p.match(token.Comma) {
				break
			}
		}
		p.consume(token.RBrace, "'}'")
		return &ast.StructLiteral{ExprBase: eb(loc), Type: ty, Fields: fields}
	}

	if len(segs) == 1 {
		return &ast.Identifier{ExprBase: eb(loc), Name: segs[0]}
	}
	return &ast.Path{ExprBase: eb(loc), Segments: segs}
}

// looksLikeStructLiteral performs the two-token lookahead past `{`
// that distinguishes `Point { x: 1, y: 2 }` from a following block.
// Every expression position uses this same check, `if`/`match`/`for`
// heads included: a bare path there followed by `{}` or `{ name:` is
// read as a structure literal.
func (p *Parser) looksLikeStructLiteral() bool {
	if p.checkAt(1, token.RBrace) {
		return true
	}
	return p.checkAt(1, token.Ident) && p.checkAt(2, token.Colon)
}

func (p *Parser) parenOrTuple() ast.Expr {
	loc := p.peek().Loc
	p.advance() // '('
	if p.match(token.RParen) {
		return &ast.TupleLiteral{ExprBase: eb(loc)}
	}
	first := p.expression()
	if p.match(token.Comma) {
		elems := []ast.Expr{first}
		for !p.check(token.RParen) && !p.atEnd() {
			elems = append(elems, p.expression())
			if !p.match(token.Comma) {
				break
			}
		}
		p.consume(token.RParen, "')'")
		return &ast.TupleLiteral{ExprBase: eb(loc), Elements: elems}
	}
	p.consume(token.RParen, "')'")
	return &ast.Paren{ExprBase: eb(loc), Inner: first}
}

func (p *Parser) arrayExpr() ast.Expr {
	loc := p.peek().Loc
	p.advance() // '['
	if p.match(token.RBracket) {
		return &ast.ArrayList{ExprBase: eb(loc)}
	}
	first := p.expression()
	if p.match(token.Semicolon) {
		count := p.expression()
		p.consume(token.RBracket, "']'")
		return &ast.ArrayRepeated{ExprBase: eb(loc), Value: first, Count: count}
	}
	elems := []ast.Expr{first}
	for p.match(token.Comma) {
		if p.check(token.RBracket) {
			break
		}
		elems = append(elems, p.expression())
	}
	p.consume(token.RBracket, "']'")
	return &ast.ArrayList{ExprBase: eb(loc), Elements: elems}
}

func (p *Parser) block() *ast.Block {
	loc := p.peek().Loc
	p.consume(token.LBrace, "'{'")
	stmts := p.innerStmtsUntilBrace()
	p.consume(token.RBrace, "'}'")
	return &ast.Block{ExprBase: eb(loc), Statements: stmts}
}

func (p *Parser) conditional() ast.Expr {
	loc := p.peek().Loc
	p.advance() // 'if'
	cond := p.expression()
	then := p.block()
	var els ast.Expr
	if p.match(token.Else) {
		if p.check(token.If) {
			els = p.conditional()
		} else {
			els = p.block()
		}
	}
	return &ast.Conditional{ExprBase: eb(loc), Condition: cond, Then: then, Else: els}
}

func (p *Parser) matchExpr() ast.Expr {
	loc := p.peek().Loc
	p.advance() // 'match'
	scrutinee := p.expression()
	p.consume(token.LBrace, "'{'")
	var arms []ast.MatchArm
	for !p.check(token.RBrace) && !p.atEnd() {
		pat := p.pattern()
		var guard ast.Expr
		if p.match(token.If) {
			guard = p.expression()
		}
		p.consume(token.FatArrow, "'=>'")
		result := p.expression()
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Result: result})
		if !p.match(token.Comma) {
			if p.check(token.RBrace) {
				break
			}
		}
	}
	p.consume(token.RBrace, "'}'")
	return &ast.Match{ExprBase: eb(loc), Scrutinee: scrutinee, Arms: arms}
}

// pattern parses one match-arm pattern (spec.md §4.A pattern forms),
// recursing into tuple and structure sub-patterns.
func (p *Parser) pattern() ast.Pattern {
	loc := p.peek().Loc
	switch p.peek().Type {
	case token.Underscore:
		p.advance()
		return &ast.WildcardPattern{PatternBase: pb(loc)}
	case token.True:
		p.advance()
		v := true
		return &ast.LiteralPattern{PatternBase: pb(loc), Bool: &v}
	case token.False:
		p.advance()
		v := false
		return &ast.LiteralPattern{PatternBase: pb(loc), Bool: &v}
	case token.Integer:
		tok := p.advance()
		lit := tok.Literal
		return &ast.LiteralPattern{PatternBase: pb(loc), Integer: &lit}
	case token.LParen:
		p.advance()
		var elems []ast.Pattern
		for !p.check(token.RParen) && !p.atEnd() {
			elems = append(elems, p.pattern())
			if !p.match(token.Comma) {
				break
			}
		}
		p.consume(token.RParen, "')'")
		return &ast.TuplePattern{PatternBase: pb(loc), Elements: elems}
	case token.Ident, token.Crate, token.Super, token.SelfType:
		segs := []string{p.advance().Lexeme}
		for p.match(token.DoubleColon) {
			segs = append(segs, p.consumeIdent("identifier").Lexeme)
		}
		if p.check(token.LBrace) {
			p.advance()
			var fields []ast.StructPatternField
			for !p.check(token.RBrace) && !p.atEnd() {
				fname := p.consumeIdent("field name").Lexeme
				var fpat ast.Pattern
				if p.match(token.Colon) {
					fpat = p.pattern()
				} else {
					fpat = &ast.BindingPattern{PatternBase: pb(loc), Name: fname}
				}
				fields = append(fields, ast.StructPatternField{Name: fname, Pattern: fpat})
				if !p.match(token.Comma) {
					break
				}
			}
			p.consume(token.RBrace, "'}'")
			return &ast.StructPattern{PatternBase: pb(loc), Type: segs, Fields: fields}
		}
		if len(segs) == 1 {
			return &ast.BindingPattern{PatternBase: pb(loc), Name: segs[0]}
		}
		return &ast.PathPattern{PatternBase: pb(loc), Segments: segs}
	default:
		p.fail(p.peek(), []string{"pattern"}, "")
		panic("unreachable")
	}
}

func pb(loc token.Location) ast.PatternBase {
	return ast.PatternBase{Loc: loc}
}

// typeExpr parses a type annotation: primitive (bool/field/uN/iN),
// array `[T; N]`, tuple `(T1, T2, ...)`, or a named/generic path type.
func (p *Parser) typeExpr() *ast.TypeExpr {
	tok := p.peek()
	loc := tok.Loc
	switch tok.Type {
	case token.LBracket:
		p.advance()
		elem := p.typeExpr()
		p.consume(token.Semicolon, "';'")
		size := p.expression()
		p.consume(token.RBracket, "']'")
		return &ast.TypeExpr{Loc: loc, Kind: ast.TypeArray, Elem: elem, Size: size}
	case token.LParen:
		p.advance()
		if p.match(token.RParen) {
			return &ast.TypeExpr{Loc: loc, Kind: ast.TypeUnit}
		}
		var items []*ast.TypeExpr
		items = append(items, p.typeExpr())
		for p.match(token.Comma) {
			if p.check(token.RParen) {
				break
			}
			items = append(items, p.typeExpr())
		}
		p.consume(token.RParen, "')'")
		return &ast.TypeExpr{Loc: loc, Kind: ast.TypeTuple, Items: items}
	case token.Ident:
		name := tok.Lexeme
		switch name {
		case "bool":
			p.advance()
			return &ast.TypeExpr{Loc: loc, Kind: ast.TypeBool, Name: name}
		case "field":
			p.advance()
			return &ast.TypeExpr{Loc: loc, Kind: ast.TypeField, Name: name}
		case "str", "string":
			p.advance()
			return &ast.TypeExpr{Loc: loc, Kind: ast.TypeString, Name: name}
		}
		if bits, signed, ok := parseSizedIntName(name); ok {
			p.advance()
			kind := ast.TypeUint
			if signed {
				kind = ast.TypeInt
			}
			return &ast.TypeExpr{Loc: loc, Kind: kind, Name: name, Bits: bits}
		}
		return p.namedType(loc)
	case token.Crate, token.Super, token.SelfType:
		return p.namedType(loc)
	default:
		p.fail(tok, []string{"type"}, "")
		panic("unreachable")
	}
}

func (p *Parser) namedType(loc token.Location) *ast.TypeExpr {
	segs := []string{p.advance().Lexeme}
	for p.match(token.DoubleColon) {
		segs = append(segs, p.consumeIdent("identifier").Lexeme)
	}
	te := &ast.TypeExpr{Loc: loc, Kind: ast.TypeNamed, Path: segs, Name: segs[len(segs)-1]}
	if p.match(token.Lt) {
		te.Args = append(te.Args, p.typeExpr())
		for p.match(token.Comma) {
			te.Args = append(te.Args, p.typeExpr())
		}
		p.consume(token.Gt, "'>'")
	}
	return te
}

// parseSizedIntName recognizes u1..=u248 / i1..=i248 style names; the
// exact bit width is range-checked by the analyzer, not here.
func parseSizedIntName(name string) (bits int, signed bool, ok bool) {
	if len(name) < 2 {
		return 0, false, false
	}
	switch name[0] {
	case 'u':
		signed = false
	case 'i':
		signed = true
	default:
		return 0, false, false
	}
	digits := name[1:]
	n := 0
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false, false
		}
		n = n*10 + int(c-'0')
	}
	if n <= 0 {
		return 0, false, false
	}
	return n, signed, true
}
