package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshatnamdeo/osfl/internal/bytecode"
	"github.com/akshatnamdeo/osfl/internal/value"
	"github.com/akshatnamdeo/osfl/internal/vm"
)

// TestSimpleArithmetic is spec.md §8 scenario 1, built by hand against
// Bytecode directly rather than through the Compiler.
func TestSimpleArithmetic(t *testing.T) {
	bc := bytecode.New()
	bc.Emit(bytecode.LOAD_CONST, 0, 10, 0, 0)
	bc.Emit(bytecode.LOAD_CONST, 1, 20, 0, 0)
	bc.Emit(bytecode.ADD, 2, 0, 1, 0)
	bc.Emit(bytecode.SUB, 3, 1, 0, 0)
	bc.Emit(bytecode.MUL, 4, 0, 1, 0)
	bc.Emit(bytecode.LOAD_CONST, 1, 2, 0, 0)
	bc.Emit(bytecode.DIV, 5, 4, 1, 0)
	bc.Emit(bytecode.HALT, 0, 0, 0, 0)

	v := vm.New(bc)
	require.NoError(t, v.Run())

	assert.Equal(t, int64(10), v.Register(0).Int())
	assert.Equal(t, int64(2), v.Register(1).Int())
	assert.Equal(t, int64(30), v.Register(2).Int())
	assert.Equal(t, int64(10), v.Register(3).Int())
	assert.Equal(t, int64(200), v.Register(4).Int())
	assert.Equal(t, int64(100), v.Register(5).Int())
}

// TestJump is spec.md §8 scenario 2.
func TestJump(t *testing.T) {
	bc := bytecode.New()
	bc.Emit(bytecode.LOAD_CONST, 0, 0, 0, 0)
	bc.Emit(bytecode.JUMP_IF_ZERO, 4, 0, 0, 0)
	bc.Emit(bytecode.LOAD_CONST, 1, 999, 0, 0)
	bc.Emit(bytecode.HALT, 0, 0, 0, 0)
	bc.Emit(bytecode.LOAD_CONST, 1, 123, 0, 0)
	bc.Emit(bytecode.HALT, 0, 0, 0, 0)

	v := vm.New(bc)
	require.NoError(t, v.Run())
	assert.Equal(t, int64(123), v.Register(1).Int())
}

// TestCallReturn is spec.md §8 scenario 3.
func TestCallReturn(t *testing.T) {
	bc := bytecode.New()
	bc.Emit(bytecode.LOAD_CONST, 0, 10, 0, 0)
	bc.Emit(bytecode.CALL, 5, 0, 0, 0)
	bc.Emit(bytecode.HALT, 0, 0, 0, 0)
	bc.Emit(bytecode.NOP, 0, 0, 0, 0)
	bc.Emit(bytecode.NOP, 0, 0, 0, 0)
	bc.Emit(bytecode.LOAD_CONST, 0, 99, 0, 0)
	bc.Emit(bytecode.RET, 0, 0, 0, 0)

	v := vm.New(bc)
	require.NoError(t, v.Run())
	assert.Equal(t, int64(99), v.Register(0).Int())
	assert.Equal(t, 0, v.CallDepth())
}

func TestReturnWithEmptyCallStackHaltsCleanly(t *testing.T) {
	bc := bytecode.New()
	bc.Emit(bytecode.LOAD_CONST, 0, 1, 0, 0)
	bc.Emit(bytecode.RET, 0, 0, 0, 0)
	bc.Emit(bytecode.LOAD_CONST, 0, 2, 0, 0) // unreachable

	v := vm.New(bc)
	require.NoError(t, v.Run())
	assert.Equal(t, int64(1), v.Register(0).Int())
}

func TestDivisionByZeroHaltsWithError(t *testing.T) {
	bc := bytecode.New()
	bc.Emit(bytecode.LOAD_CONST, 0, 10, 0, 0)
	bc.Emit(bytecode.LOAD_CONST, 1, 0, 0, 0)
	bc.Emit(bytecode.DIV, 2, 0, 1, 0)
	bc.Emit(bytecode.HALT, 0, 0, 0, 0)

	v := vm.New(bc)
	err := v.Run()
	require.Error(t, err)
	ve, ok := err.(*vm.Error)
	require.True(t, ok)
	assert.Equal(t, vm.KindDivByZero, ve.Kind)
}

func TestTypeMismatchOnArithmeticHalts(t *testing.T) {
	bc := bytecode.New()
	bc.Emit(bytecode.LOAD_CONST_STR, 0, 0, 0, 0)
	bc.Emit(bytecode.LOAD_CONST, 1, 1, 0, 0)
	bc.Emit(bytecode.ADD, 2, 0, 1, 0)
	bc.Emit(bytecode.HALT, 0, 0, 0, 0)
	bc.Strings = append(bc.Strings, "oops")

	v := vm.New(bc)
	err := v.Run()
	require.Error(t, err)
	ve := err.(*vm.Error)
	assert.Equal(t, vm.KindType, ve.Kind)
}

func TestInvalidRegisterIndexHalts(t *testing.T) {
	bc := bytecode.New()
	bc.Emit(bytecode.LOAD_CONST, 16, 1, 0, 0) // out of [0,16)
	bc.Emit(bytecode.HALT, 0, 0, 0, 0)

	v := vm.New(bc)
	err := v.Run()
	require.Error(t, err)
	assert.Equal(t, vm.KindRegister, err.(*vm.Error).Kind)
}

func TestJumpTargetOutOfRangeHalts(t *testing.T) {
	bc := bytecode.New()
	bc.Emit(bytecode.JUMP, 99, 0, 0, 0)

	v := vm.New(bc)
	err := v.Run()
	require.Error(t, err)
	assert.Equal(t, vm.KindJumpTarget, err.(*vm.Error).Kind)
}

func TestUnknownOpcodeHalts(t *testing.T) {
	bc := bytecode.New()
	bc.Emit(bytecode.Opcode(999), 0, 0, 0, 0)

	v := vm.New(bc)
	err := v.Run()
	require.Error(t, err)
	assert.Equal(t, vm.KindOpcode, err.(*vm.Error).Kind)
}

func TestCallStackOverflow(t *testing.T) {
	bc := bytecode.New()
	bc.Emit(bytecode.CALL, 0, 0, 0, 0) // calls itself, forever

	v := vm.New(bc)
	err := v.Run()
	require.Error(t, err)
	assert.Equal(t, vm.KindCallOverflow, err.(*vm.Error).Kind)
	assert.LessOrEqual(t, v.CallDepth(), vm.MaxCallStack)
}

func TestUnknownNativeReturnsNullWithoutHalting(t *testing.T) {
	bc := bytecode.New()
	idx := bc.InternString("does_not_exist")
	bc.Emit(bytecode.CALL_NATIVE, 0, idx, 0, 0)
	bc.Emit(bytecode.HALT, 0, 0, 0, 0)

	v := vm.New(bc)
	require.NoError(t, v.Run())
	assert.True(t, v.Register(0).IsNull())
}

func TestCallNativeInvokesRegisteredFunction(t *testing.T) {
	bc := bytecode.New()
	bc.Emit(bytecode.LOAD_CONST, 0, 7, 0, 0)
	idx := bc.InternString("double")
	bc.Emit(bytecode.CALL_NATIVE, 1, idx, 1, 0)
	bc.Emit(bytecode.HALT, 0, 0, 0, 0)

	v := vm.New(bc)
	var seenArgc int
	v.RegisterNative("double", func(args []value.Value) value.Value {
		seenArgc = len(args)
		return value.NewInt(args[0].Int() * 2)
	})
	require.NoError(t, v.Run())
	assert.Equal(t, 1, seenArgc)
	assert.Equal(t, int64(14), v.Register(1).Int())
}

// TestObjectHeapLifecycle exercises invariant 7: after NEWOBJ the object
// appears exactly once in the registry; once its refcount reaches zero via
// a register overwrite, it appears zero times.
func TestObjectHeapLifecycle(t *testing.T) {
	bc := bytecode.New()
	bc.Emit(bytecode.NEWOBJ, 0, 0, 0, 0)
	bc.Emit(bytecode.LOAD_CONST, 0, 0, 0, 0) // overwrite R0, dropping the object
	bc.Emit(bytecode.HALT, 0, 0, 0, 0)

	v := vm.New(bc)
	require.Equal(t, 0, v.Heap().Len())
	require.NoError(t, v.Run())
	assert.Equal(t, 0, v.Heap().Len())
}

func TestSetpropGetprop(t *testing.T) {
	bc := bytecode.New()
	bc.Emit(bytecode.NEWOBJ, 0, 0, 0, 0)
	bc.Emit(bytecode.LOAD_CONST, 1, 1, 0, 0) // key
	bc.Emit(bytecode.LOAD_CONST, 2, 42, 0, 0)
	bc.Emit(bytecode.SETPROP, 0, 1, 2, 0)
	bc.Emit(bytecode.GETPROP, 3, 0, 1, 0)
	bc.Emit(bytecode.HALT, 0, 0, 0, 0)

	v := vm.New(bc)
	require.NoError(t, v.Run())
	assert.Equal(t, int64(42), v.Register(3).Int())
	assert.Equal(t, 1, v.Heap().Len())
}

func TestCoroutineInitActivatesAtMostOneSlotPerCall(t *testing.T) {
	bc := bytecode.New()
	bc.Emit(bytecode.CORO_INIT, 0, 0, 0, 0)
	bc.Emit(bytecode.CORO_INIT, 1, 0, 0, 0)
	bc.Emit(bytecode.HALT, 0, 0, 0, 0)

	v := vm.New(bc)
	require.NoError(t, v.Run())
	assert.Equal(t, 2, v.ActiveCoroutines())
	assert.NotEqual(t, v.Register(0).Int(), v.Register(1).Int())
}

func TestResumeOfInactiveSlotIsDiagnosticNotFatal(t *testing.T) {
	bc := bytecode.New()
	bc.Emit(bytecode.CORO_RESUME, 5, 0, 0, 0)
	bc.Emit(bytecode.HALT, 0, 0, 0, 0)

	v := vm.New(bc)
	require.NoError(t, v.Run())
}

func TestSetRegisterSeedsBeforeRun(t *testing.T) {
	bc := bytecode.New()
	bc.Emit(bytecode.ADD, 2, 0, 1, 0)
	bc.Emit(bytecode.HALT, 0, 0, 0, 0)

	v := vm.New(bc)
	v.SetRegister(0, value.NewInt(3))
	v.SetRegister(1, value.NewInt(4))
	require.NoError(t, v.Run())
	assert.Equal(t, int64(7), v.Register(2).Int())
}
