package parser

import (
	"github.com/akshatnamdeo/osfl/internal/ast"
	"github.com/akshatnamdeo/osfl/internal/token"
)

// parseStatement = If | While | For | Switch | TryCatch | OnError | Return
// | Block | ExprStmt.
func (p *Parser) parseStatement() *ast.Node {
	switch p.peek().Kind {
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile, token.KwLoop:
		return p.parseWhile()
	case token.KwFor:
		return p.parseFor()
	case token.KwSwitch:
		return p.parseSwitch()
	case token.KwTry:
		return p.parseTryCatch()
	case token.KwOnError:
		return p.parseOnError()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwBreak:
		loc := p.advance().Location
		p.optionalSemicolon()
		return &ast.Node{Kind: ast.KindBreak, Location: loc}
	case token.KwContinue:
		loc := p.advance().Location
		p.optionalSemicolon()
		return &ast.Node{Kind: ast.KindContinue, Location: loc}
	case token.KwRetry, token.KwReset:
		// retry/reset carry no further grammar of their own (reserved words
		// only); they lower to a bare call of
		// a same-named native, so an on_error handler can retry/reset the
		// enclosing operation via the native bridge like any other helper.
		tok := p.advance()
		p.optionalSemicolon()
		callee := &ast.Node{Kind: ast.KindIdentifier, Location: tok.Location, Name: tok.Lexeme}
		call := &ast.Node{Kind: ast.KindCall, Location: tok.Location, Callee: callee}
		return &ast.Node{Kind: ast.KindExprStmt, Location: tok.Location, Expr: call}
	case token.LBrace:
		return p.parseBlock()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseBlock() *ast.Node {
	loc := p.consume(token.LBrace).Location
	n := &ast.Node{Kind: ast.KindBlock, Location: loc}
	var last *ast.Node
	for !p.check(token.RBrace) && !p.atEOF() {
		stmt := p.parseDeclaration()
		if stmt == nil {
			continue
		}
		n.Members = append(n.Members, stmt)
		if last != nil {
			last.Next = stmt
		}
		last = stmt
	}
	p.consume(token.RBrace)
	return n
}

func (p *Parser) parseIf() *ast.Node {
	loc := p.advance().Location // 'if'
	n := &ast.Node{Kind: ast.KindIf, Location: loc}
	p.consume(token.LParen)
	n.Cond = p.parseExpression()
	p.consume(token.RParen)
	n.Then = p.parseStatement()
	switch p.peek().Kind {
	case token.KwElse:
		p.advance()
		n.Else = p.parseStatement()
	case token.KwElif:
		n.Else = p.parseIf()
	}
	return n
}

func (p *Parser) parseWhile() *ast.Node {
	loc := p.advance().Location // 'while'/'loop'
	n := &ast.Node{Kind: ast.KindWhile, Location: loc}
	p.consume(token.LParen)
	n.Cond = p.parseExpression()
	p.consume(token.RParen)
	n.Body = p.parseStatement()
	return n
}

func (p *Parser) parseFor() *ast.Node {
	loc := p.advance().Location // 'for'
	n := &ast.Node{Kind: ast.KindFor, Location: loc}
	p.consume(token.LParen)
	if !p.check(token.Semicolon) {
		n.Init = p.parseForClause()
	}
	p.consume(token.Semicolon)
	if !p.check(token.Semicolon) {
		n.Cond = p.parseExpression()
	}
	p.consume(token.Semicolon)
	if !p.check(token.RParen) {
		n.Post = p.parseExprNoSemi()
	}
	p.consume(token.RParen)
	n.Body = p.parseStatement()
	return n
}

// parseForClause parses the initializer clause of a For header, which may
// be a var/const declaration or a bare expression statement, without
// consuming the separating semicolon (the For header consumes it).
func (p *Parser) parseForClause() *ast.Node {
	if p.check(token.KwVar) || p.check(token.KwConst) {
		tok := p.advance()
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
		return n
	}
	return p.parseExprNoSemi()
}

func (p *Parser) parseExprNoSemi() *ast.Node {
	loc := p.peek().Location
	expr := p.parseExpression()
	n := &ast.Node{Kind: ast.KindExprStmt, Location: loc, Expr: expr}
	return n
}

func (p *Parser) parseSwitch() *ast.Node {
	// Switch is accepted grammatically but lowers to an If/Else chain at the
	// statement level, so
	// the Compiler needs no dedicated Switch node: parse it directly into
	// nested If nodes here.
	loc := p.advance().Location // 'switch'
	p.consume(token.LParen)
	subject := p.parseExpression()
	p.consume(token.RParen)
	p.consume(token.LBrace)

	var root, tail *ast.Node
	for !p.check(token.RBrace) && !p.atEOF() {
		caseLoc := p.peek().Location
		var cond *ast.Node
		isDefault := false
		if p.check(token.KwElse) {
			p.advance()
			isDefault = true
		} else {
			val := p.parseExpression()
			cond = &ast.Node{
				Kind: ast.KindBinary, Location: caseLoc, Operator: token.EqEq,
				Left: subject, Right: val,
			}
		}
		p.consume(token.ColonColon)
		body := p.parseStatement()

		if isDefault {
			if tail != nil {
				tail.Else = body
			} else {
				root = body
			}
			continue
		}

		ifNode := &ast.Node{Kind: ast.KindIf, Location: caseLoc, Cond: cond, Then: body}
		if tail != nil {
			tail.Else = ifNode
		} else {
			root = ifNode
		}
		tail = ifNode
	}
	p.consume(token.RBrace)
	if root == nil {
		root = &ast.Node{Kind: ast.KindBlock, Location: loc}
	}
	return root
}

func (p *Parser) parseTryCatch() *ast.Node {
	loc := p.advance().Location // 'try'
	n := &ast.Node{Kind: ast.KindTryCatch, Location: loc}
	n.Body = p.parseBlock()
	if p.check(token.KwCatch) {
		p.advance()
		if p.check(token.LParen) {
			p.advance()
			name := p.consume(token.Identifier)
			n.CatchName = name.Lexeme
			p.consume(token.RParen)
		}
		n.Catch = p.parseBlock()
	}
	return n
}

func (p *Parser) parseOnError() *ast.Node {
	loc := p.advance().Location // 'on_error'
	n := &ast.Node{Kind: ast.KindOnError, Location: loc}
	n.Body = p.parseBlock()
	return n
}

func (p *Parser) parseReturn() *ast.Node {
	loc := p.advance().Location // 'return'
	n := &ast.Node{Kind: ast.KindReturn, Location: loc}
	if !p.check(token.Semicolon) && !p.check(token.RBrace) && !p.atEOF() {
		n.Expr = p.parseExpression()
	}
	p.optionalSemicolon()
	return n
}

func (p *Parser) parseExprStmt() *ast.Node {
	loc := p.peek().Location
	expr := p.parseExpression()
	p.optionalSemicolon()
	return &ast.Node{Kind: ast.KindExprStmt, Location: loc, Expr: expr}
}
