package parser

import (
	"github.com/akshatnamdeo/osfl/internal/ast"
	"github.com/akshatnamdeo/osfl/internal/token"
)

// parseExpression enters the precedence-climbing ladder at its lowest tier:
// assignment (right-assoc), logical-or, logical-and, bitwise-or, bitwise-xor,
// bitwise-and, equality, comparison, additive, multiplicative, power
// (right-assoc), unary, primary.
func (p *Parser) parseExpression() *ast.Node {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() *ast.Node {
	left := p.parseLogicalOr()
	switch p.peek().Kind {
	case token.Eq, token.PlusEq, token.MinusEq, token.StarEq, token.SlashEq:
		op := p.advance()
		right := p.parseAssignment() // right-associative
		return &ast.Node{Kind: ast.KindBinary, Location: op.Location, Operator: op.Kind, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseLeftAssoc(ops []token.Kind, next func(*Parser) *ast.Node) *ast.Node {
	left := next(p)
	for {
		tok := p.peek()
		matched := false
		for _, op := range ops {
			if tok.Kind == op {
				matched = true
				break
			}
		}
		if !matched {
			return left
		}
		p.advance()
		right := next(p)
		left = &ast.Node{Kind: ast.KindBinary, Location: tok.Location, Operator: tok.Kind, Left: left, Right: right}
	}
}

func (p *Parser) parseLogicalOr() *ast.Node {
	return p.parseLeftAssoc([]token.Kind{token.PipePipe}, (*Parser).parseLogicalAnd)
}

func (p *Parser) parseLogicalAnd() *ast.Node {
	return p.parseLeftAssoc([]token.Kind{token.AmpAmp}, (*Parser).parseBitOr)
}

func (p *Parser) parseBitOr() *ast.Node {
	return p.parseLeftAssoc([]token.Kind{token.Pipe}, (*Parser).parseBitXor)
}

func (p *Parser) parseBitXor() *ast.Node {
	return p.parseLeftAssoc([]token.Kind{token.Caret}, (*Parser).parseBitAnd)
}

func (p *Parser) parseBitAnd() *ast.Node {
	return p.parseLeftAssoc([]token.Kind{token.Amp}, (*Parser).parseEquality)
}

func (p *Parser) parseEquality() *ast.Node {
	return p.parseLeftAssoc([]token.Kind{token.EqEq, token.BangEq}, (*Parser).parseComparison)
}

func (p *Parser) parseComparison() *ast.Node {
	return p.parseLeftAssoc([]token.Kind{token.Lt, token.LtEq, token.Gt, token.GtEq}, (*Parser).parseAdditive)
}

func (p *Parser) parseAdditive() *ast.Node {
	return p.parseLeftAssoc([]token.Kind{token.Plus, token.Minus}, (*Parser).parseMultiplicative)
}

func (p *Parser) parseMultiplicative() *ast.Node {
	return p.parseLeftAssoc([]token.Kind{token.Star, token.Slash, token.Percent}, (*Parser).parsePower)
}

func (p *Parser) parsePower() *ast.Node {
	left := p.parseUnary()
	if p.check(token.StarStar) {
		tok := p.advance()
		right := p.parsePower() // right-associative
		return &ast.Node{Kind: ast.KindBinary, Location: tok.Location, Operator: tok.Kind, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() *ast.Node {
	switch p.peek().Kind {
	case token.Minus, token.Plus, token.Bang, token.Tilde:
		tok := p.advance()
		operand := p.parseUnary()
		return &ast.Node{Kind: ast.KindUnary, Location: tok.Location, Operator: tok.Kind, Operand: operand}
	default:
		return p.parseCallSuffixed()
	}
}

// parseCallSuffixed parses a Primary and then collapses any trailing
// call/index/member suffixes onto it.
func (p *Parser) parseCallSuffixed() *ast.Node {
	n := p.parsePrimary()
	for {
		switch p.peek().Kind {
		case token.LParen:
			n = p.parseCallSuffix(n)
		case token.LBracket:
			n = p.parseIndexSuffix(n)
		case token.Dot:
			n = p.parseMemberSuffix(n)
		default:
			return n
		}
	}
}

func (p *Parser) parseCallSuffix(callee *ast.Node) *ast.Node {
	loc := p.consume(token.LParen).Location
	n := &ast.Node{Kind: ast.KindCall, Location: loc, Callee: callee}
	for !p.check(token.RParen) && !p.atEOF() {
		n.Args = append(n.Args, p.parseExpression())
		if p.check(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.consume(token.RParen)
	return n
}

func (p *Parser) parseIndexSuffix(target *ast.Node) *ast.Node {
	loc := p.consume(token.LBracket).Location
	idx := p.parseExpression()
	p.consume(token.RBracket)
	return &ast.Node{Kind: ast.KindIndex, Location: loc, Left: target, Index: idx}
}

func (p *Parser) parseMemberSuffix(target *ast.Node) *ast.Node {
	loc := p.consume(token.Dot).Location
	name := p.consume(token.Identifier)
	return &ast.Node{Kind: ast.KindMember, Location: loc, Left: target, Name: name.Lexeme}
}

// parsePrimary covers literals, parenthesized expressions, identifiers,
// interpolation, docstrings, and regex.
func (p *Parser) parsePrimary() *ast.Node {
	tok := p.peek()
	switch tok.Kind {
	case token.Int, token.Float, token.Boolean, token.Docstring, token.Regex:
		p.advance()
		return ast.NewLiteral(tok.Location, tok.Kind, tok.Value)
	case token.String:
		return p.parseStringOrInterpolation()
	case token.KwNull:
		p.advance()
		return &ast.Node{Kind: ast.KindLiteral, Location: tok.Location, TokenKind: token.KwNull}
	case token.Identifier:
		p.advance()
		return &ast.Node{Kind: ast.KindIdentifier, Location: tok.Location, Name: tok.Lexeme}
	case token.LParen:
		p.advance()
		inner := p.parseExpression()
		p.consume(token.RParen)
		return inner
	default:
		p.diagnostics = append(p.diagnostics, Diagnostic{
			Location: tok.Location,
			Message:  "expected expression, found " + tok.Kind.String() + " " + tok.Lexeme,
		})
		if !p.atEOF() {
			p.advance()
		}
		return &ast.Node{Kind: ast.KindLiteral, Location: tok.Location, TokenKind: token.KwNull}
	}
}

// parseStringOrInterpolation assembles the token sequence String,
// InterpolationStart, expr-tokens, InterpolationEnd, String, ... into either
// a plain Literal or an Interpolation node listing alternating
// string/expression Parts.
func (p *Parser) parseStringOrInterpolation() *ast.Node {
	first := p.advance() // String
	if !p.check(token.InterpolationStart) {
		return ast.NewLiteral(first.Location, token.String, first.Value)
	}

	n := &ast.Node{Kind: ast.KindInterpolation, Location: first.Location}
	n.Parts = append(n.Parts, ast.NewLiteral(first.Location, token.String, first.Value))
	for p.check(token.InterpolationStart) {
		p.advance()
		n.Parts = append(n.Parts, p.parseExpression())
		p.consume(token.InterpolationEnd)
		if p.check(token.String) {
			str := p.advance()
			n.Parts = append(n.Parts, ast.NewLiteral(str.Location, token.String, str.Value))
		}
	}
	return n
}
