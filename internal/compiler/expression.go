package compiler

import (
	"github.com/akshatnamdeo/osfl/internal/ast"
	"github.com/akshatnamdeo/osfl/internal/bytecode"
	"github.com/akshatnamdeo/osfl/internal/token"
)

// binaryOps maps a source operator onto the VM's fixed Int-arithmetic
// instruction set. Logical, bitwise, relational and power operators parse
// fine (the grammar accepts them) but have no matching core opcode; they
// fall through to compileBinary's "has no core VM instruction" diagnostic.
var binaryOps = map[token.Kind]bytecode.Opcode{
	token.Plus:  bytecode.ADD,
	token.Minus: bytecode.SUB,
	token.Star:  bytecode.MUL,
	token.Slash: bytecode.DIV,
	token.EqEq:  bytecode.EQ,
	token.BangEq: bytecode.NEQ,
}

var compoundOps = map[token.Kind]bytecode.Opcode{
	token.PlusEq:  bytecode.ADD,
	token.MinusEq: bytecode.SUB,
	token.StarEq:  bytecode.MUL,
	token.SlashEq: bytecode.DIV,
}

// compileExpr lowers n and returns the register holding its result.
func (c *Compiler) compileExpr(n *ast.Node) int {
	if n == nil {
		r := c.allocReg(token.SourceLocation{})
		c.bc.Emit(bytecode.LOAD_CONST, r, 0, 0, 0)
		return r
	}
	switch n.Kind {
	case ast.KindLiteral:
		return c.compileLiteral(n)
	case ast.KindIdentifier:
		return c.compileIdentifier(n)
	case ast.KindBinary:
		return c.compileBinary(n)
	case ast.KindUnary:
		return c.compileUnary(n)
	case ast.KindCall:
		return c.compileCall(n)
	case ast.KindInterpolation:
		return c.compileInterpolation(n)
	case ast.KindIndex:
		return c.compileGetIndexOrMember(n.Location, c.compileExpr(n.Left), c.compileExpr(n.Index))
	case ast.KindMember:
		return c.compileGetIndexOrMember(n.Location, c.compileExpr(n.Left), c.compileFieldKeyReg(n.Location, n.Name))
	default:
		c.report(n.Location, "unsupported expression kind %d", n.Kind)
		r := c.allocReg(n.Location)
		c.bc.Emit(bytecode.LOAD_CONST, r, 0, 0, 0)
		return r
	}
}

func (c *Compiler) compileGetIndexOrMember(loc token.SourceLocation, robj, keyReg int) int {
	dest := c.allocReg(loc)
	c.bc.Emit(bytecode.GETPROP, dest, robj, keyReg, 0)
	return dest
}

// compileFieldKeyReg loads a field name's interned pool index as an Int key
// register; GETPROP/SETPROP address VMObject fields by the decimal string
// of an Int key, so a Member access ("a.field") and an Index access
// ("a[i]") share one addressing scheme: the field name's own pool index
// stands in for the numeric key.
func (c *Compiler) compileFieldKeyReg(loc token.SourceLocation, name string) int {
	idx := c.bc.InternString(name)
	r := c.allocReg(loc)
	c.bc.Emit(bytecode.LOAD_CONST, r, idx, 0, 0)
	return r
}

func (c *Compiler) compileLiteral(n *ast.Node) int {
	r := c.allocReg(n.Location)
	switch n.TokenKind {
	case token.Int:
		c.bc.Emit(bytecode.LOAD_CONST, r, int(n.IntValue), 0, 0)
	case token.Float:
		idx := c.bc.InternFloat(n.FloatValue)
		c.bc.Emit(bytecode.LOAD_CONST_FLOAT, r, idx, 0, 0)
	case token.String, token.Docstring, token.Regex:
		idx := c.bc.InternString(n.StringValue)
		c.bc.Emit(bytecode.LOAD_CONST_STR, r, idx, 0, 0)
	case token.Boolean:
		v := 0
		if n.BoolValue {
			v = 1
		}
		c.bc.Emit(bytecode.LOAD_CONST, r, v, 0, 0)
	case token.KwNull:
		c.bc.Emit(bytecode.LOAD_CONST, r, 0, 0, 0)
	default:
		c.report(n.Location, "unsupported literal token kind %s", n.TokenKind)
	}
	return r
}

// compileIdentifier resolves first via scope lookup (the parameter's or
// local variable's own register), second via the function table (a bare
// function name used where a value is expected gets a fresh, otherwise
// unused register since the core has no first-class function value). An
// unresolved name produces a fresh dummy register and a debug diagnostic;
// no bytecode is emitted for it.
func (c *Compiler) compileIdentifier(n *ast.Node) int {
	if sym, ok := c.scope.Lookup(n.Name); ok {
		return sym.Register
	}
	if _, ok := c.bc.FindFunction(n.Name); ok {
		return c.allocReg(n.Location)
	}
	c.report(n.Location, "unresolved identifier %q", n.Name)
	return c.allocReg(n.Location)
}

func (c *Compiler) compileBinary(n *ast.Node) int {
	switch n.Operator {
	case token.Eq, token.PlusEq, token.MinusEq, token.StarEq, token.SlashEq:
		return c.compileAssign(n)
	}
	rl := c.compileExpr(n.Left)
	rr := c.compileExpr(n.Right)
	op, ok := binaryOps[n.Operator]
	if !ok {
		c.report(n.Location, "operator %s has no core VM instruction", n.Operator)
		return rl
	}
	rd := c.allocReg(n.Location)
	c.bc.Emit(op, rd, rl, rr, 0)
	return rd
}

func (c *Compiler) compileAssign(n *ast.Node) int {
	rhsReg := c.compileExpr(n.Right)
	switch n.Left.Kind {
	case ast.KindIdentifier:
		sym, ok := c.scope.Lookup(n.Left.Name)
		if !ok {
			c.report(n.Left.Location, "assignment to undeclared identifier %q", n.Left.Name)
			return rhsReg
		}
		if n.Operator != token.Eq {
			rhsReg = c.compileCompoundValue(n.Location, n.Operator, sym.Register, rhsReg)
		}
		c.bc.Emit(bytecode.MOVE, sym.Register, rhsReg, 0, 0)
		return sym.Register
	case ast.KindMember:
		robj := c.compileExpr(n.Left.Left)
		keyReg := c.compileFieldKeyReg(n.Left.Location, n.Left.Name)
		return c.compileSetIndexOrMember(n.Location, n.Operator, robj, keyReg, rhsReg)
	case ast.KindIndex:
		robj := c.compileExpr(n.Left.Left)
		keyReg := c.compileExpr(n.Left.Index)
		return c.compileSetIndexOrMember(n.Location, n.Operator, robj, keyReg, rhsReg)
	default:
		c.report(n.Location, "unsupported assignment target")
		return rhsReg
	}
}

func (c *Compiler) compileSetIndexOrMember(loc token.SourceLocation, op token.Kind, robj, keyReg, rhsReg int) int {
	if op != token.Eq {
		cur := c.allocReg(loc)
		c.bc.Emit(bytecode.GETPROP, cur, robj, keyReg, 0)
		rhsReg = c.compileCompoundValue(loc, op, cur, rhsReg)
	}
	c.bc.Emit(bytecode.SETPROP, robj, keyReg, rhsReg, 0)
	return rhsReg
}

func (c *Compiler) compileCompoundValue(loc token.SourceLocation, op token.Kind, curReg, rhsReg int) int {
	opcode, ok := compoundOps[op]
	if !ok {
		c.report(loc, "unsupported compound assignment operator %s", op)
		return rhsReg
	}
	combined := c.allocReg(loc)
	c.bc.Emit(opcode, combined, curReg, rhsReg, 0)
	return combined
}

// compileUnary lowers unary minus as `0 - operand` (no dedicated negate
// opcode exists); unary plus passes its operand through untouched.
func (c *Compiler) compileUnary(n *ast.Node) int {
	switch n.Operator {
	case token.Minus:
		rOperand := c.compileExpr(n.Operand)
		rd := c.allocReg(n.Location)
		c.bc.Emit(bytecode.LOAD_CONST, rd, 0, 0, 0)
		c.bc.Emit(bytecode.SUB, rd, rd, rOperand, 0)
		return rd
	case token.Plus:
		return c.compileExpr(n.Operand)
	default:
		c.report(n.Location, "unsupported unary operator %s", n.Operator)
		return c.compileExpr(n.Operand)
	}
}

// compileCall treats an identifier callee absent from the function table as
// a native: arguments are compiled into scratch registers and the call is
// emitted as CALL_NATIVE against the interned name. A known function gets
// its arguments MOVE-shuffled into registers 0..argc-1 ahead of a CALL.
func (c *Compiler) compileCall(n *ast.Node) int {
	name := ""
	if n.Callee != nil && n.Callee.Kind == ast.KindIdentifier {
		name = n.Callee.Name
	} else {
		c.fatalf(n.Location, "unsupported callee expression")
	}

	argRegs := make([]int, len(n.Args))
	for i, a := range n.Args {
		argRegs[i] = c.compileExpr(a)
	}

	if entry, ok := c.bc.FindFunction(name); ok {
		for i, r := range argRegs {
			c.bc.Emit(bytecode.MOVE, i, r, 0, 0)
		}
		c.bc.Emit(bytecode.CALL, entry, 0, 0, 0)
		return c.allocReg(n.Location)
	}

	poolIdx := c.bc.InternString(name)
	base := 0
	if len(argRegs) > 0 {
		base = argRegs[0]
	}
	rd := c.allocReg(n.Location)
	c.bc.Emit(bytecode.CALL_NATIVE, rd, poolIdx, len(argRegs), base)
	return rd
}

// compileInterpolation coerces every part except string literals through
// the "str" native and folds the results together through "join", keeping each pairwise call's
// two arguments in adjacent registers since CALL_NATIVE addresses its
// argument window as a contiguous run starting at base.
func (c *Compiler) compileInterpolation(n *ast.Node) int {
	if len(n.Parts) == 0 {
		r := c.allocReg(n.Location)
		idx := c.bc.InternString("")
		c.bc.Emit(bytecode.LOAD_CONST_STR, r, idx, 0, 0)
		return r
	}

	acc := c.compilePartAsString(n.Parts[0])
	for _, part := range n.Parts[1:] {
		cur := c.compilePartAsString(part)
		base := c.allocReg(n.Location)
		c.bc.Emit(bytecode.MOVE, base, acc, 0, 0)
		next := c.allocReg(n.Location)
		c.bc.Emit(bytecode.MOVE, next, cur, 0, 0)
		joinIdx := c.bc.InternString("join")
		acc = c.allocReg(n.Location)
		c.bc.Emit(bytecode.CALL_NATIVE, acc, joinIdx, 2, base)
	}
	return acc
}

func (c *Compiler) compilePartAsString(part *ast.Node) int {
	if part.Kind == ast.KindLiteral && part.TokenKind == token.String {
		return c.compileExpr(part)
	}
	r := c.compileExpr(part)
	strIdx := c.bc.InternString("str")
	rd := c.allocReg(part.Location)
	c.bc.Emit(bytecode.CALL_NATIVE, rd, strIdx, 1, r)
	return rd
}
