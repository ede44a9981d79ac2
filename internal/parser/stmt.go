package parser

import (
	"github.com/ringlang/ringc/internal/ast"
	"github.com/ringlang/ringc/internal/token"
)

// moduleItem parses one module-local statement: const, static, type,
// struct, enum, fn, mod, use, impl, contract, or a bare `;`.
func (p *Parser) moduleItem() ast.Stmt {
	attrs := p.attributes()
	loc := p.peek().Loc

	public := p.match(token.Pub)
	isConst := false
	if p.check(token.Const) && p.checkAt(1, token.Fn) {
		p.advance()
		isConst = true
	}

	var stmt ast.Stmt
	switch {
	case p.match(token.Semicolon):
		stmt = &ast.EmptyStmt{StmtBase: base(loc)}
	case p.match(token.Const):
		stmt = p.constStmt(loc)
	case p.match(token.Static):
		stmt = p.staticStmt(loc)
	case p.match(token.TypeKw):
		stmt = p.typeAliasStmt(loc)
	case p.match(token.Struct):
		stmt = p.structStmt(loc)
	case p.match(token.Enum):
		stmt = p.enumStmt(loc)
	case p.match(token.Fn):
		f := p.fnStmt(loc)
		f.Public = public
		_ = isConst
		stmt = f
	case p.match(token.Mod):
		stmt = p.modStmt(loc)
	case p.match(token.Use):
		stmt = p.useStmt(loc)
	case p.match(token.Impl):
		stmt = p.implStmt(loc)
	case p.match(token.Contract):
		stmt = p.contractStmt(loc)
	default:
		p.fail(p.peek(), []string{"const", "static", "type", "struct", "enum", "fn", "mod", "use", "impl", "contract", "';'"}, "")
	}
	stmt.SetAttrs(attrs)
	return stmt
}

// base builds the embedded ast.StmtBase every concrete statement node
// carries.
func base(loc token.Location) ast.StmtBase {
	return ast.StmtBase{Loc: loc}
}

func (p *Parser) constStmt(loc token.Location) *ast.ConstStmt {
	name := p.consumeIdent("constant name").Lexeme
	p.consume(token.Colon, "':'")
	ty := p.typeExpr()
	p.consume(token.Assign, "'='")
	val := p.expression()
	p.consume(token.Semicolon, "';'")
	return &ast.ConstStmt{StmtBase: base(loc), Name: name, Type: ty, Value: val}
}

func (p *Parser) staticStmt(loc token.Location) *ast.StaticStmt {
	name := p.consumeIdent("static name").Lexeme
	p.consume(token.Colon, "':'")
	ty := p.typeExpr()
	p.consume(token.Assign, "'='")
	val := p.expression()
	p.consume(token.Semicolon, "';'")
	return &ast.StaticStmt{StmtBase: base(loc), Name: name, Type: ty, Value: val}
}

func (p *Parser) typeAliasStmt(loc token.Location) *ast.TypeAliasStmt {
	name := p.consumeIdent("type name").Lexeme
	p.consume(token.Assign, "'='")
	ty := p.typeExpr()
	p.consume(token.Semicolon, "';'")
	return &ast.TypeAliasStmt{StmtBase: base(loc), Name: name, Type: ty}
}

func (p *Parser) structStmt(loc token.Location) *ast.StructStmt {
	name := p.consumeIdent("struct name").Lexeme
	p.consume(token.LBrace, "'{'")
	var fields []ast.StructField
	for !p.check(token.RBrace) && !p.atEnd() {
		fname := p.consumeIdent("field name").Lexeme
		p.consume(token.Colon, "':'")
		fty := p.typeExpr()
		fields = append(fields, ast.StructField{Name: fname, Type: fty})
		if !p.match(token.Comma) {
			break
		}
	}
	p.consume(token.RBrace, "'}'")
	return &ast.StructStmt{StmtBase: base(loc), Name: name, Fields: fields}
}

func (p *Parser) enumStmt(loc token.Location) *ast.EnumStmt {
	name := p.consumeIdent("enum name").Lexeme
	p.consume(token.LBrace, "'{'")
	var variants []ast.EnumVariant
	for !p.check(token.RBrace) && !p.atEnd() {
		vname := p.consumeIdent("variant name").Lexeme
		var val *token.IntegerLiteral
		if p.match(token.Assign) {
			tok := p.consume(token.Integer, "integer literal")
			lit := tok.Literal
			val = &lit
		}
		variants = append(variants, ast.EnumVariant{Name: vname, Value: val})
		if !p.match(token.Comma) {
			break
		}
	}
	p.consume(token.RBrace, "'}'")
	return &ast.EnumStmt{StmtBase: base(loc), Name: name, Variants: variants}
}

func (p *Parser) fnStmt(loc token.Location) *ast.FnStmt {
	name := p.consumeIdent("function name").Lexeme
	p.consume(token.LParen, "'('")
	var params []ast.Param
	for !p.check(token.RParen) && !p.atEnd() {
		params = append(params, p.param())
		if !p.match(token.Comma) {
			break
		}
	}
	p.consume(token.RParen, "')'")
	var ret *ast.TypeExpr
	if p.match(token.Arrow) {
		ret = p.typeExpr()
	}
	p.consume(token.LBrace, "'{'")
	body := p.innerStmtsUntilBrace()
	p.consume(token.RBrace, "'}'")
	return &ast.FnStmt{StmtBase: base(loc), Name: name, Params: params, ReturnType: ret, Body: body}
}

func (p *Parser) param() ast.Param {
	if p.check(token.Mut) && p.checkAt(1, token.SelfKw) {
		p.advance()
		p.advance()
		return ast.Param{Mutable: true, Name: "self", IsSelf: true}
	}
	if p.check(token.SelfKw) {
		p.advance()
		return ast.Param{Name: "self", IsSelf: true}
	}
	mut := p.match(token.Mut)
	name := p.consumeIdent("parameter name").Lexeme
	p.consume(token.Colon, "':'")
	ty := p.typeExpr()
	return ast.Param{Mutable: mut, Name: name, Type: ty}
}

func (p *Parser) modStmt(loc token.Location) *ast.ModStmt {
	name := p.consumeIdent("module name").Lexeme
	if p.match(token.Semicolon) {
		return &ast.ModStmt{StmtBase: base(loc), Name: name}
	}
	p.consume(token.LBrace, "'{' or ';'")
	var items []ast.Stmt
	for !p.check(token.RBrace) && !p.atEnd() {
		items = append(items, p.moduleItem())
	}
	p.consume(token.RBrace, "'}'")
	return &ast.ModStmt{StmtBase: base(loc), Name: name, Items: items}
}

func (p *Parser) useStmt(loc token.Location) *ast.UseStmt {
	path := p.path()
	alias := ""
	if p.match(token.As) {
		alias = p.consumeIdent("alias name").Lexeme
	}
	p.consume(token.Semicolon, "';'")
	return &ast.UseStmt{StmtBase: base(loc), Path: path, Alias: alias}
}

func (p *Parser) implStmt(loc token.Location) *ast.ImplStmt {
	name := p.consumeIdent("type name").Lexeme
	p.consume(token.LBrace, "'{'")
	var items []ast.Stmt
	for !p.check(token.RBrace) && !p.atEnd() {
		items = append(items, p.implItem())
	}
	p.consume(token.RBrace, "'}'")
	return &ast.ImplStmt{StmtBase: base(loc), Type: name, Items: items}
}

func (p *Parser) implItem() ast.Stmt {
	attrs := p.attributes()
	loc := p.peek().Loc
	public := p.match(token.Pub)
	var stmt ast.Stmt
	switch {
	case p.match(token.Const):
		stmt = p.constStmt(loc)
	case p.match(token.Fn):
		f := p.fnStmt(loc)
		f.Public = public
		stmt = f
	default:
		p.fail(p.peek(), []string{"const", "fn"}, "")
	}
	stmt.SetAttrs(attrs)
	return stmt
}

func (p *Parser) contractStmt(loc token.Location) *ast.ContractStmt {
	name := p.consumeIdent("contract name").Lexeme
	p.consume(token.LBrace, "'{'")
	c := &ast.ContractStmt{StmtBase: base(loc), Name: name}
	for !p.check(token.RBrace) && !p.atEnd() {
		if p.check(token.Ident) && p.checkAt(1, token.Colon) {
			fname := p.advance().Lexeme
			p.advance() // ':'
			fty := p.typeExpr()
			c.Fields = append(c.Fields, ast.StructField{Name: fname, Type: fty})
			if !p.match(token.Comma) {
				continue
			}
			continue
		}
		c.Items = append(c.Items, p.contractItem())
	}
	p.consume(token.RBrace, "'}'")
	return c
}

func (p *Parser) contractItem() ast.Stmt {
	attrs := p.attributes()
	loc := p.peek().Loc
	public := p.match(token.Pub)
	var stmt ast.Stmt
	switch {
	case p.match(token.Const):
		stmt = p.constStmt(loc)
	case p.match(token.Fn):
		f := p.fnStmt(loc)
		f.Public = public
		stmt = f
	default:
		p.fail(p.peek(), []string{"const", "fn"}, "")
	}
	stmt.SetAttrs(attrs)
	return stmt
}

// innerStmtsUntilBrace parses the inner-position statements that make
// up a function/block body: let, const, for, and expression
// statements (with optional trailing `;`), plus nested module items
// (fn/struct/etc. may also appear nested, mirroring the teacher's
// blockStatements allowing nested `fn`).
func (p *Parser) innerStmtsUntilBrace() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RBrace) && !p.atEnd() {
		stmts = append(stmts, p.innerStmt())
	}
	return stmts
}

func (p *Parser) innerStmt() ast.Stmt {
	attrs := p.attributes()
	loc := p.peek().Loc
	var stmt ast.Stmt
	switch {
	case p.match(token.Semicolon):
		stmt = &ast.EmptyStmt{StmtBase: base(loc)}
	case p.match(token.Let):
		stmt = p.letStmt(loc)
	case p.match(token.Const):
		stmt = p.constStmt(loc)
	case p.match(token.For):
		stmt = p.forStmt(loc)
	case p.match(token.Fn):
		stmt = p.fnStmt(loc)
	case p.match(token.Struct):
		stmt = p.structStmt(loc)
	case p.match(token.Enum):
		stmt = p.enumStmt(loc)
	default:
		expr := p.expression()
		terminated := p.match(token.Semicolon)
		stmt = &ast.ExprStmt{StmtBase: base(loc), Expr: expr, Terminated: terminated}
	}
	stmt.SetAttrs(attrs)
	return stmt
}

func (p *Parser) letStmt(loc token.Location) *ast.LetStmt {
	mut := p.match(token.Mut)
	name := p.consumeIdent("variable name").Lexeme
	var ty *ast.TypeExpr
	if p.match(token.Colon) {
		ty = p.typeExpr()
	}
	p.consume(token.Assign, "'='")
	val := p.expression()
	p.consume(token.Semicolon, "';'")
	return &ast.LetStmt{StmtBase: base(loc), Mutable: mut, Name: name, Type: ty, Value: val}
}

func (p *Parser) forStmt(loc token.Location) *ast.ForStmt {
	variable := p.consumeIdent("loop variable name").Lexeme
	p.consume(token.In, "'in'")
	low := p.rangeOperand()
	inclusive := p.match(token.DotDotEq)
	if !inclusive {
		p.consume(token.DotDot, "'..' or '..='")
	}
	high := p.rangeOperand()
	var guard ast.Expr
	if p.match(token.While) {
		guard = p.expression()
	}
	p.consume(token.LBrace, "'{'")
	body := p.innerStmtsUntilBrace()
	p.consume(token.RBrace, "'}'")
	return &ast.ForStmt{
		StmtBase:  base(loc),
		Variable:  variable,
		Low:       low,
		High:      high,
		Inclusive: inclusive,
		While:     guard,
		Body:      body,
	}
}
