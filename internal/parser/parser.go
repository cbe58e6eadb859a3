// Package parser builds an AST from a token stream via recursive descent
// with precedence climbing.
package parser

import (
	"fmt"

	"github.com/akshatnamdeo/osfl/internal/ast"
	"github.com/akshatnamdeo/osfl/internal/token"
)

// Diagnostic is one recovered parse error: an unexpected token, reported
// and then skipped so parsing can continue.
type Diagnostic struct {
	Location token.SourceLocation
	Message  string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Location, d.Message)
}

// Parser builds an AST from a fixed token array.
type Parser struct {
	toks        []token.Token
	pos         int
	diagnostics []Diagnostic
}

// New constructs a Parser over toks (typically drained from a Lexer ahead
// of time into an array.
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

// Diagnostics returns every recovered parse error encountered so far.
func (p *Parser) Diagnostics() []Diagnostic { return p.diagnostics }

// Parse builds the Program AST: a sequence of declarations until EOF,
// wrapped in a Block.
func (p *Parser) Parse() *ast.Node {
	loc := p.peek().Location
	block := &ast.Node{Kind: ast.KindBlock, Location: loc}
	var last *ast.Node
	for !p.atEOF() {
		decl := p.parseDeclaration()
		if decl == nil {
			continue
		}
		block.Members = append(block.Members, decl)
		if last != nil {
			last.Next = decl
		}
		last = decl
	}
	return block
}

// isTrivia reports whether a raw lexer token should never reach grammar
// code: Peek/consume skip these internally rather than via an up-front
// filter: whitespace and newline tokens are skipped by peek internally.
func isTrivia(k token.Kind) bool {
	return k == token.Whitespace || k == token.Newline || k == token.Comment
}

func (p *Parser) skipTrivia() {
	for p.pos < len(p.toks) && isTrivia(p.toks[p.pos].Kind) {
		p.pos++
	}
}

func (p *Parser) peek() token.Token {
	p.skipTrivia()
	if p.pos >= len(p.toks) {
		if len(p.toks) > 0 {
			return token.Token{Kind: token.EOF, Location: p.toks[len(p.toks)-1].Location}
		}
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	save := p.pos
	defer func() { p.pos = save }()
	for i := 0; i <= n; i++ {
		tok := p.peek()
		if i == n {
			return tok
		}
		p.pos++
	}
	return token.Token{Kind: token.EOF}
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

func (p *Parser) atEOF() bool { return p.peek().Kind == token.EOF }

func (p *Parser) check(k token.Kind) bool { return p.peek().Kind == k }

// consume requires the next token to have kind k, recording a diagnostic
// and skipping one token if not.
func (p *Parser) consume(k token.Kind) token.Token {
	tok := p.peek()
	if tok.Kind != k {
		p.diagnostics = append(p.diagnostics, Diagnostic{
			Location: tok.Location,
			Message:  fmt.Sprintf("expected %s, found %s %q", k, tok.Kind, tok.Lexeme),
		})
		if !p.atEOF() {
			p.advance()
		}
		return token.Token{Kind: k, Location: tok.Location}
	}
	return p.advance()
}

func (p *Parser) synthNode(kind ast.Kind, loc token.SourceLocation) *ast.Node {
	return &ast.Node{Kind: kind, Location: loc}
}
