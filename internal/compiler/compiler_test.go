package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshatnamdeo/osfl/internal/bytecode"
	"github.com/akshatnamdeo/osfl/internal/compiler"
	"github.com/akshatnamdeo/osfl/internal/lexer"
	"github.com/akshatnamdeo/osfl/internal/parser"
	"github.com/akshatnamdeo/osfl/internal/token"
)

func compileSource(t *testing.T, src string) (*bytecode.Bytecode, *compiler.Compiler, error) {
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
	root := p.Parse()
	require.Empty(t, p.Diagnostics())
	c := compiler.New()
	bc, err := c.Compile(root)
	return bc, c, err
}

func TestVarDeclBindsInitializerRegister(t *testing.T) {
	bc, _, err := compileSource(t, `
frame Main {
    func main() {
        var x = 1 + 2;
        x = x + 1;
    }
}
`)
	require.NoError(t, err)
	require.NotNil(t, bc)

	var sawMove bool
	for _, ins := range bc.Instructions {
		if ins.Op == bytecode.MOVE {
			sawMove = true
		}
	}
	assert.True(t, sawMove, "assignment to x should MOVE into its bound register")
}

func TestIfWithoutElseSingleForwardJump(t *testing.T) {
	bc, _, err := compileSource(t, `
frame Main {
    func main() {
        var x = 1;
        if (x) {
            x = 2;
        }
    }
}
`)
	require.NoError(t, err)

	count := 0
	var jumpIdx int
	for i, ins := range bc.Instructions {
		if ins.Op == bytecode.JUMP_IF_ZERO {
			count++
			jumpIdx = i
		}
	}
	require.Equal(t, 1, count)
	target := bc.Instructions[jumpIdx].Op1
	assert.GreaterOrEqual(t, target, jumpIdx+1)
	assert.LessOrEqual(t, target, len(bc.Instructions))
}

func TestFuncDeclRegistersAndCallsKnownFunction(t *testing.T) {
	bc, _, err := compileSource(t, `
frame Main {
    func add(a, b) {
        return a + b;
    }
    func main() {
        var r = add(1, 2);
    }
}
`)
	require.NoError(t, err)

	_, ok := bc.FindFunction("add")
	assert.True(t, ok)

	var sawCall bool
	for _, ins := range bc.Instructions {
		if ins.Op == bytecode.CALL {
			sawCall = true
		}
	}
	assert.True(t, sawCall)
}

func TestUnknownCalleeLowersToCallNative(t *testing.T) {
	bc, _, err := compileSource(t, `
frame Main {
    func main() {
        print(1);
    }
}
`)
	require.NoError(t, err)

	var sawNative bool
	for _, ins := range bc.Instructions {
		if ins.Op == bytecode.CALL_NATIVE {
			sawNative = true
			assert.Equal(t, "print", bc.String(ins.Op2))
		}
	}
	assert.True(t, sawNative)
}

func TestMainFrameWithoutMainFunctionIsFatal(t *testing.T) {
	_, _, err := compileSource(t, `
frame Main {
    func helper() {
        return 1;
    }
}
`)
	require.Error(t, err)
	d, ok := err.(compiler.Diagnostic)
	require.True(t, ok)
	assert.True(t, d.Fatal)
}

func TestArithmeticEndToEnd(t *testing.T) {
	bc, _, err := compileSource(t, `
frame Main {
    func main() {
        print(1 + 2);
    }
}
`)
	require.NoError(t, err)

	var sawAdd, sawPrint bool
	for _, ins := range bc.Instructions {
		if ins.Op == bytecode.ADD {
			sawAdd = true
		}
		if ins.Op == bytecode.CALL_NATIVE && bc.String(ins.Op2) == "print" {
			sawPrint = true
		}
	}
	assert.True(t, sawAdd)
	assert.True(t, sawPrint)
	assert.Equal(t, bytecode.HALT, bc.Instructions[len(bc.Instructions)-1].Op)
}

func TestWhileLoopContinueTargetsLoopStart(t *testing.T) {
	bc, _, err := compileSource(t, `
frame Main {
    func main() {
        var i = 0;
        while (i) {
            i = i + 1;
            continue;
        }
    }
}
`)
	require.NoError(t, err)

	var continueJumpIdx = -1
	for i, ins := range bc.Instructions {
		if ins.Op == bytecode.JUMP && i > 0 && bc.Instructions[i-1].Op != bytecode.RET {
			continueJumpIdx = i
		}
	}
	require.GreaterOrEqual(t, continueJumpIdx, 0)

	// The condition `i` is a bare register read that emits no code, so the
	// loop starts at its JUMP_IF_ZERO; every JUMP in the body (the continue
	// and the back-jump) lands there.
	jz := -1
	for i, ins := range bc.Instructions {
		if ins.Op == bytecode.JUMP_IF_ZERO {
			jz = i
		}
	}
	require.GreaterOrEqual(t, jz, 0)
	for _, ins := range bc.Instructions[jz+1:] {
		if ins.Op == bytecode.JUMP {
			assert.Equal(t, jz, ins.Op1, "continue and back-jump should target the loop start")
		}
	}
}

func TestForLoopContinueTargetsPostNotStart(t *testing.T) {
	bc, _, err := compileSource(t, `
frame Main {
    func main() {
        for (var i = 0; i; i = i + 1) {
            continue;
        }
    }
}
`)
	require.NoError(t, err)
	require.NotEmpty(t, bc.Instructions)

	// The body is only `continue`, so the instruction right after the
	// condition's JUMP_IF_ZERO is the continue jump.
	jz := -1
	for i, ins := range bc.Instructions {
		if ins.Op == bytecode.JUMP_IF_ZERO {
			jz = i
		}
	}
	require.GreaterOrEqual(t, jz, 0)
	cont := bc.Instructions[jz+1]
	require.Equal(t, bytecode.JUMP, cont.Op)
	assert.Greater(t, cont.Op1, jz+1, "continue should jump forward to the increment, not back to the condition")
}

func TestBreakContinueOutsideLoopIsDiagnostic(t *testing.T) {
	_, c, err := compileSource(t, `
frame Main {
    func main() {
        break;
    }
}
`)
	require.NoError(t, err)
	found := false
	for _, d := range c.Diagnostics() {
		if !d.Fatal {
			found = true
		}
	}
	assert.True(t, found)
}
