package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshatnamdeo/osfl/internal/ast"
	"github.com/akshatnamdeo/osfl/internal/lexer"
	"github.com/akshatnamdeo/osfl/internal/parser"
	"github.com/akshatnamdeo/osfl/internal/token"
)

func parseSource(t *testing.T, src string) (*ast.Node, *parser.Parser) {
	t.Helper()
	lx := lexer.New([]byte(src), lexer.DefaultConfig("test.osfl"))
	var toks []token.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	p := parser.New(toks)
	return p.Parse(), p
}

func TestParserFrame(t *testing.T) {
	prog, p := parseSource(t, `frame Main { var x = 3; }`)
	require.Empty(t, p.Diagnostics())
	require.Len(t, prog.Members, 1)
	frame := prog.Members[0]
	assert.Equal(t, ast.KindFrame, frame.Kind)
	assert.Equal(t, "Main", frame.Name)
	require.Len(t, frame.Body.Members, 1)
	decl := frame.Body.Members[0]
	assert.Equal(t, ast.KindVarDecl, decl.Kind)
	assert.Equal(t, "x", decl.Name)
	require.NotNil(t, decl.Init)
	assert.Equal(t, int64(3), decl.Init.IntValue)
}

func TestParserFuncDeclParams(t *testing.T) {
	prog, p := parseSource(t, `func add(a, b) { return a + b; }`)
	require.Empty(t, p.Diagnostics())
	require.Len(t, prog.Members, 1)
	fn := prog.Members[0]
	assert.Equal(t, ast.KindFuncDecl, fn.Kind)
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, []string{"a", "b"}, fn.Params)

	ret := fn.Body.Members[0]
	assert.Equal(t, ast.KindReturn, ret.Kind)
	require.NotNil(t, ret.Expr)
	assert.Equal(t, ast.KindBinary, ret.Expr.Kind)
	assert.Equal(t, token.Plus, ret.Expr.Operator)
}

func TestParserCallSuffix(t *testing.T) {
	prog, p := parseSource(t, `print(1, 2, x);`)
	require.Empty(t, p.Diagnostics())
	stmt := prog.Members[0]
	require.Equal(t, ast.KindExprStmt, stmt.Kind)
	call := stmt.Expr
	require.Equal(t, ast.KindCall, call.Kind)
	require.Equal(t, ast.KindIdentifier, call.Callee.Kind)
	assert.Equal(t, "print", call.Callee.Name)
	require.Len(t, call.Args, 3)
	assert.Equal(t, int64(1), call.Args[0].IntValue)
	assert.Equal(t, int64(2), call.Args[1].IntValue)
	assert.Equal(t, "x", call.Args[2].Name)
}

func TestParserPrecedence(t *testing.T) {
	// 1 + 2 * 3 should group as 1 + (2 * 3).
	prog, p := parseSource(t, `var y = 1 + 2 * 3;`)
	require.Empty(t, p.Diagnostics())
	decl := prog.Members[0]
	add := decl.Init
	require.Equal(t, token.Plus, add.Operator)
	assert.Equal(t, int64(1), add.Left.IntValue)
	require.Equal(t, token.Star, add.Right.Operator)
	assert.Equal(t, int64(2), add.Right.Left.IntValue)
	assert.Equal(t, int64(3), add.Right.Right.IntValue)
}

func TestParserPowerIsRightAssociative(t *testing.T) {
	// 2 ** 3 ** 2 should group as 2 ** (3 ** 2).
	prog, p := parseSource(t, `var z = 2 ** 3 ** 2;`)
	require.Empty(t, p.Diagnostics())
	top := prog.Members[0].Init
	require.Equal(t, token.StarStar, top.Operator)
	assert.Equal(t, int64(2), top.Left.IntValue)
	require.Equal(t, token.StarStar, top.Right.Operator)
}

func TestParserIfElifElse(t *testing.T) {
	prog, p := parseSource(t, `
		if (a) { return 1; }
		elif (b) { return 2; }
		else { return 3; }
	`)
	require.Empty(t, p.Diagnostics())
	top := prog.Members[0]
	require.Equal(t, ast.KindIf, top.Kind)
	require.NotNil(t, top.Else)
	assert.Equal(t, ast.KindIf, top.Else.Kind)
	require.NotNil(t, top.Else.Else)
	assert.Equal(t, ast.KindBlock, top.Else.Else.Kind)
}

func TestParserWhileAndFor(t *testing.T) {
	prog, p := parseSource(t, `
		while (x) { continue; }
		for (var i = 0; i; i) { break; }
	`)
	require.Empty(t, p.Diagnostics())
	require.Len(t, prog.Members, 2)
	assert.Equal(t, ast.KindWhile, prog.Members[0].Kind)
	forNode := prog.Members[1]
	assert.Equal(t, ast.KindFor, forNode.Kind)
	require.NotNil(t, forNode.Init)
	assert.Equal(t, ast.KindVarDecl, forNode.Init.Kind)
	require.NotNil(t, forNode.Cond)
	require.NotNil(t, forNode.Post)
}

func TestParserSwitchLowersToIfChain(t *testing.T) {
	prog, p := parseSource(t, `
		switch (n) {
			1 :: return 1;
			2 :: return 2;
			else :: return 0;
		}
	`)
	require.Empty(t, p.Diagnostics())
	top := prog.Members[0]
	require.Equal(t, ast.KindIf, top.Kind)
	require.Equal(t, token.EqEq, top.Cond.Operator)
	require.NotNil(t, top.Else)
	require.Equal(t, ast.KindIf, top.Else.Kind)
	require.NotNil(t, top.Else.Else)
	assert.Equal(t, ast.KindReturn, top.Else.Else.Kind)
}

func TestParserTryCatch(t *testing.T) {
	prog, p := parseSource(t, `try { risky(); } catch (e) { handle(e); }`)
	require.Empty(t, p.Diagnostics())
	top := prog.Members[0]
	require.Equal(t, ast.KindTryCatch, top.Kind)
	assert.Equal(t, "e", top.CatchName)
	require.NotNil(t, top.Catch)
}

func TestParserOnError(t *testing.T) {
	prog, p := parseSource(t, `on_error { retry; }`)
	require.Empty(t, p.Diagnostics())
	top := prog.Members[0]
	require.Equal(t, ast.KindOnError, top.Kind)
	require.Len(t, top.Body.Members, 1)
	stmt := top.Body.Members[0]
	assert.Equal(t, ast.KindExprStmt, stmt.Kind)
	assert.Equal(t, ast.KindCall, stmt.Expr.Kind)
	assert.Equal(t, "retry", stmt.Expr.Callee.Name)
}

func TestParserImportDecl(t *testing.T) {
	prog, p := parseSource(t, `import "lib/util.osfl";`)
	require.Empty(t, p.Diagnostics())
	top := prog.Members[0]
	require.Equal(t, ast.KindImportDecl, top.Kind)
	assert.Equal(t, "lib/util.osfl", top.ImportPath)
}

func TestParserClassDecl(t *testing.T) {
	prog, p := parseSource(t, `class Point { var x = 0; func move(d) { return d; } }`)
	require.Empty(t, p.Diagnostics())
	top := prog.Members[0]
	require.Equal(t, ast.KindClassDecl, top.Kind)
	assert.Equal(t, "Point", top.Name)
	require.Len(t, top.Members, 2)
	assert.Equal(t, ast.KindVarDecl, top.Members[0].Kind)
	assert.Equal(t, ast.KindFuncDecl, top.Members[1].Kind)
}

func TestParserInterpolation(t *testing.T) {
	prog, p := parseSource(t, `var s = "hi ${name}!";`)
	require.Empty(t, p.Diagnostics())
	init := prog.Members[0].Init
	require.Equal(t, ast.KindInterpolation, init.Kind)
	require.Len(t, init.Parts, 3)
	assert.Equal(t, "hi ", init.Parts[0].StringValue)
	assert.Equal(t, ast.KindIdentifier, init.Parts[1].Kind)
	assert.Equal(t, "name", init.Parts[1].Name)
	assert.Equal(t, "!", init.Parts[2].StringValue)
}

func TestParserRecoversFromUnexpectedToken(t *testing.T) {
	_, p := parseSource(t, `var = 5;`)
	require.NotEmpty(t, p.Diagnostics())
}

func TestParserMemberAndIndexSuffix(t *testing.T) {
	prog, p := parseSource(t, `x = obj.field[0];`)
	require.Empty(t, p.Diagnostics())
	assign := prog.Members[0].Expr
	require.Equal(t, token.Eq, assign.Operator)
	idx := assign.Right
	require.Equal(t, ast.KindIndex, idx.Kind)
	member := idx.Left
	require.Equal(t, ast.KindMember, member.Kind)
	assert.Equal(t, "field", member.Name)
}
