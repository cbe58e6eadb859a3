// Package compiler lowers an AST into a flat Bytecode: a register-allocating
// tree walk that resolves names through nested Scopes and interns constants
// into the Bytecode's string and float pools.
package compiler

import (
	"fmt"

	"github.com/akshatnamdeo/osfl/internal/ast"
	"github.com/akshatnamdeo/osfl/internal/bytecode"
	"github.com/akshatnamdeo/osfl/internal/scope"
	"github.com/akshatnamdeo/osfl/internal/token"
)

// maxRegisters mirrors the VM's fixed 16-slot register file; the allocator
// must never hand out a register beyond this.
const maxRegisters = 16

// Diagnostic is one compiler-reported problem (debug info for an unresolved
// name, or a fatal abort condition).
type Diagnostic struct {
	Location token.SourceLocation
	Message  string
	Fatal    bool
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Location, d.Message)
}

type loopCtx struct {
	breakPatches    []int
	continuePatches []int
}

// Compiler holds the two pieces of mutable compilation state named by the
// lowering rules: a register allocator (c.nextReg, monotonically increasing,
// reset to the parameter count on FuncDecl entry) and the function table
// (embedded in the Bytecode itself). Scope nests per function body.
type Compiler struct {
	bc          *bytecode.Bytecode
	scope       *scope.Scope
	nextReg     int
	loops       []*loopCtx
	diagnostics []Diagnostic
	fatal       *Diagnostic
}

// New returns a Compiler ready to compile a Program node.
func New() *Compiler {
	return &Compiler{bc: bytecode.New(), scope: scope.New(nil)}
}

// Diagnostics returns every diagnostic recorded so far, fatal or not.
func (c *Compiler) Diagnostics() []Diagnostic { return c.diagnostics }

func (c *Compiler) report(loc token.SourceLocation, format string, args ...interface{}) {
	c.diagnostics = append(c.diagnostics, Diagnostic{Location: loc, Message: fmt.Sprintf(format, args...)})
}

// fatalf records an abort-worthy diagnostic: function-table overflow,
// unsupported callee kind, a missing Main.main, or register exhaustion.
func (c *Compiler) fatalf(loc token.SourceLocation, format string, args ...interface{}) {
	d := Diagnostic{Location: loc, Message: fmt.Sprintf(format, args...), Fatal: true}
	c.diagnostics = append(c.diagnostics, d)
	if c.fatal == nil {
		c.fatal = &d
	}
}

func (c *Compiler) allocReg(loc token.SourceLocation) int {
	if c.nextReg >= maxRegisters {
		c.fatalf(loc, "register allocator exhausted: function needs more than %d registers", maxRegisters)
		return maxRegisters - 1
	}
	r := c.nextReg
	c.nextReg++
	return r
}

// Compile walks root (the Program Block of top-level declarations),
// appending a trailing HALT unconditionally, and returns the resulting
// Bytecode or the first fatal diagnostic encountered.
func (c *Compiler) Compile(root *ast.Node) (*bytecode.Bytecode, error) {
	if root != nil {
		c.compileBlockMembers(root.Members)
	}
	c.bc.Emit(bytecode.HALT, 0, 0, 0, 0)
	if c.fatal != nil {
		return nil, *c.fatal
	}
	return c.bc, nil
}

func (c *Compiler) compileBlockMembers(members []*ast.Node) {
	for _, m := range members {
		c.compileNode(m)
		if c.fatal != nil {
			return
		}
	}
}

func (c *Compiler) compileNode(n *ast.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindFrame:
		c.compileFrame(n)
	case ast.KindFuncDecl:
		c.compileFuncDecl(n)
	case ast.KindClassDecl:
		c.compileClassDecl(n)
	case ast.KindImportDecl:
		// The loader splices an import's declarations into this AST before
		// compilation ever sees it; by the time Compile runs there is
		// nothing left to emit for the declaration itself.
	case ast.KindVarDecl, ast.KindConstDecl:
		c.compileVarDecl(n)
	case ast.KindBlock:
		c.compileBlockMembers(n.Members)
	case ast.KindIf:
		c.compileIf(n)
	case ast.KindWhile:
		c.compileWhile(n)
	case ast.KindFor:
		c.compileFor(n)
	case ast.KindReturn:
		c.compileReturn(n)
	case ast.KindTryCatch:
		c.compileTryCatch(n)
	case ast.KindOnError:
		c.compileOnError(n)
	case ast.KindExprStmt:
		c.compileExpr(n.Expr)
	case ast.KindBreak, ast.KindContinue:
		c.compileBreakContinue(n)
	default:
		c.report(n.Location, "unsupported statement kind %d", n.Kind)
	}
}

// compileFrame compiles the frame body in sequence; the literally-named
// Main frame gets an implicit CALL to main plus a HALT appended right after
// its body, ahead of whatever top-level code follows it.
func (c *Compiler) compileFrame(n *ast.Node) {
	if n.Body != nil {
		c.compileBlockMembers(n.Body.Members)
	}
	if n.Name != "Main" {
		return
	}
	entry, ok := c.bc.FindFunction("main")
	if !ok {
		c.fatalf(n.Location, "frame Main has no main function")
		return
	}
	c.bc.Emit(bytecode.CALL, entry, 0, 0, 0)
	c.bc.Emit(bytecode.HALT, 0, 0, 0, 0)
}

// compileFuncDecl records (name, entry) in the function table before
// compiling the body so recursive calls resolve, then swaps in a child
// scope with parameters bound to registers 0..n-1 and a reset allocator,
// restoring both on return.
func (c *Compiler) compileFuncDecl(n *ast.Node) {
	entry := c.bc.Here()
	if !c.bc.AddFunction(n.Name, entry) {
		c.fatalf(n.Location, "function table is full, cannot register %q", n.Name)
		return
	}

	savedReg := c.nextReg
	savedScope := c.scope
	c.scope = scope.New(savedScope)
	for i, p := range n.Params {
		c.scope.Add(p, scope.Var, i)
	}
	c.nextReg = len(n.Params)

	if n.Body != nil {
		c.compileBlockMembers(n.Body.Members)
	}
	c.bc.Emit(bytecode.RET, 0, 0, 0, 0)

	c.scope = savedScope
	c.nextReg = savedReg
}

// compileClassDecl compiles member declarations in sequence; the core
// emits no method-dispatch machinery.
func (c *Compiler) compileClassDecl(n *ast.Node) {
	c.compileBlockMembers(n.Members)
}

// compileVarDecl binds the initializer's destination register to the
// variable's name in the current scope, per the compiler's own resolution
// of an otherwise-ambiguous binding rule: without this, identifier
// references to the variable could never resolve.
func (c *Compiler) compileVarDecl(n *ast.Node) {
	var reg int
	if n.Init != nil {
		reg = c.compileExpr(n.Init)
	} else {
		reg = c.allocReg(n.Location)
		c.bc.Emit(bytecode.LOAD_CONST, reg, 0, 0, 0)
	}
	kind := scope.Var
	if n.Kind == ast.KindConstDecl {
		kind = scope.Const
	}
	if !c.scope.Add(n.Name, kind, reg) {
		c.report(n.Location, "duplicate declaration of %q in this scope", n.Name)
	}
}

func (c *Compiler) compileIf(n *ast.Node) {
	rc := c.compileExpr(n.Cond)
	failJump := c.bc.Emit(bytecode.JUMP_IF_ZERO, -1, rc, 0, 0)
	c.compileNode(n.Then)
	if n.Else != nil {
		skip := c.bc.Emit(bytecode.JUMP, -1, 0, 0, 0)
		c.bc.Patch(failJump, c.bc.Here())
		c.compileNode(n.Else)
		c.bc.Patch(skip, c.bc.Here())
	} else {
		c.bc.Patch(failJump, c.bc.Here())
	}
}

func (c *Compiler) compileWhile(n *ast.Node) {
	loopStart := c.bc.Here()
	rc := c.compileExpr(n.Cond)
	failJump := c.bc.Emit(bytecode.JUMP_IF_ZERO, -1, rc, 0, 0)

	ctx := &loopCtx{}
	c.loops = append(c.loops, ctx)
	c.compileNode(n.Body)
	c.loops = c.loops[:len(c.loops)-1]

	for _, p := range ctx.continuePatches {
		c.bc.Patch(p, loopStart)
	}
	c.bc.Emit(bytecode.JUMP, loopStart, 0, 0, 0)
	end := c.bc.Here()
	c.bc.Patch(failJump, end)
	for _, p := range ctx.breakPatches {
		c.bc.Patch(p, end)
	}
}

// compileFor interleaves the increment between body and back-jump: continue
// targets the increment, not the loop start, so the increment still runs.
func (c *Compiler) compileFor(n *ast.Node) {
	if n.Init != nil {
		c.compileNode(n.Init)
	}
	loopStart := c.bc.Here()

	haveFail := false
	var failJump int
	if n.Cond != nil {
		rc := c.compileExpr(n.Cond)
		failJump = c.bc.Emit(bytecode.JUMP_IF_ZERO, -1, rc, 0, 0)
		haveFail = true
	}

	ctx := &loopCtx{}
	c.loops = append(c.loops, ctx)
	c.compileNode(n.Body)
	postStart := c.bc.Here()
	if n.Post != nil {
		c.compileNode(n.Post)
	}
	c.loops = c.loops[:len(c.loops)-1]

	for _, p := range ctx.continuePatches {
		c.bc.Patch(p, postStart)
	}
	c.bc.Emit(bytecode.JUMP, loopStart, 0, 0, 0)
	end := c.bc.Here()
	if haveFail {
		c.bc.Patch(failJump, end)
	}
	for _, p := range ctx.breakPatches {
		c.bc.Patch(p, end)
	}
}

func (c *Compiler) compileBreakContinue(n *ast.Node) {
	if len(c.loops) == 0 {
		c.report(n.Location, "break/continue used outside of a loop")
		return
	}
	ctx := c.loops[len(c.loops)-1]
	idx := c.bc.Emit(bytecode.JUMP, -1, 0, 0, 0)
	if n.Kind == ast.KindBreak {
		ctx.breakPatches = append(ctx.breakPatches, idx)
	} else {
		ctx.continuePatches = append(ctx.continuePatches, idx)
	}
}

func (c *Compiler) compileReturn(n *ast.Node) {
	if n.Expr != nil {
		c.compileExpr(n.Expr)
	}
	c.bc.Emit(bytecode.RET, 0, 0, 0, 0)
}

// compileTryCatch compiles the protected body in line and then jumps over
// the catch block: the core instruction set has no exception-trap opcode,
// so the catch body is reachable only by whatever native-level retry/reset
// hook a host chooses to wire up, not by any jump this compiler emits.
func (c *Compiler) compileTryCatch(n *ast.Node) {
	c.compileNode(n.Body)
	if n.Catch == nil {
		return
	}
	skip := c.bc.Emit(bytecode.JUMP, -1, 0, 0, 0)
	if n.CatchName != "" {
		reg := c.allocReg(n.Location)
		c.bc.Emit(bytecode.LOAD_CONST, reg, 0, 0, 0)
		c.scope.Add(n.CatchName, scope.Var, reg)
	}
	c.compileNode(n.Catch)
	c.bc.Patch(skip, c.bc.Here())
}

// compileOnError compiles its handler body but skips over it unconditionally:
// same rationale as compileTryCatch's catch block.
func (c *Compiler) compileOnError(n *ast.Node) {
	skip := c.bc.Emit(bytecode.JUMP, -1, 0, 0, 0)
	c.compileNode(n.Body)
	c.bc.Patch(skip, c.bc.Here())
}
