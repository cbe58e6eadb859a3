package parser

import (
	"github.com/akshatnamdeo/osfl/internal/ast"
	"github.com/akshatnamdeo/osfl/internal/token"
)

// parseDeclaration = Frame | FuncDecl | ClassDecl | ImportDecl | VarDecl | Statement.
func (p *Parser) parseDeclaration() *ast.Node {
	switch p.peek().Kind {
	case token.KwFrame:
		return p.parseFrame()
	case token.KwFunc, token.KwFunction:
		return p.parseFuncDecl()
	case token.KwClass:
		return p.parseClassDecl()
	case token.KwImport:
		return p.parseImportDecl()
	case token.KwVar, token.KwConst:
		return p.parseVarDecl()
	default:
		return p.parseStatement()
	}
}

func (p *Parser) parseFrame() *ast.Node {
	loc := p.advance().Location // 'frame'
	name := p.consume(token.Identifier)
	n := &ast.Node{Kind: ast.KindFrame, Location: loc, Name: name.Lexeme}
	n.Body = p.parseBlock()
	return n
}

func (p *Parser) parseFuncDecl() *ast.Node {
	loc := p.advance().Location // 'func'/'function'
	name := p.consume(token.Identifier)
	n := &ast.Node{Kind: ast.KindFuncDecl, Location: loc, Name: name.Lexeme}
	p.consume(token.LParen)
	for !p.check(token.RParen) && !p.atEOF() {
		param := p.consume(token.Identifier)
		n.Params = append(n.Params, param.Lexeme)
		if p.check(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.consume(token.RParen)
	n.Body = p.parseBlock()
	return n
}

func (p *Parser) parseClassDecl() *ast.Node {
	loc := p.advance().Location // 'class'
	name := p.consume(token.Identifier)
	n := &ast.Node{Kind: ast.KindClassDecl, Location: loc, Name: name.Lexeme}
	p.consume(token.LBrace)
	for !p.check(token.RBrace) && !p.atEOF() {
		n.Members = append(n.Members, p.parseDeclaration())
	}
	p.consume(token.RBrace)
	return n
}

func (p *Parser) parseImportDecl() *ast.Node {
	loc := p.advance().Location // 'import'
	path := p.consume(token.String)
	n := &ast.Node{Kind: ast.KindImportDecl, Location: loc, ImportPath: path.Value.Str}
	p.optionalSemicolon()
	return n
}

func (p *Parser) parseVarDecl() *ast.Node {
	tok := p.advance() // 'var'/'const'
	kind := ast.KindVarDecl
	if tok.Kind == token.KwConst {
		kind = ast.KindConstDecl
	}
	name := p.consume(token.Identifier)
	n := &ast.Node{Kind: kind, Location: tok.Location, Name: name.Lexeme}
	if p.check(token.Eq) {
		p.advance()
		n.Init = p.parseExpression()
	}
	p.optionalSemicolon()
	return n
}

func (p *Parser) optionalSemicolon() {
	if p.check(token.Semicolon) {
		p.advance()
	}
}
