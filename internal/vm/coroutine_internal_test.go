package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshatnamdeo/osfl/internal/bytecode"
	"github.com/akshatnamdeo/osfl/internal/value"
)

// These exercise coroYield/coroResume's PC-and-register swap directly,
// bypassing the dispatch loop: a program built from CORO_YIELD/CORO_RESUME
// always restarts an activated slot at PC 0 (the slot table carries no
// entry-address operand), so driving the round robin through Run() risks
// the coroutine re-running CORO_INIT forever. Testing the swap in isolation
// avoids that.
func TestCoroYieldSwapsPCAndRegisters(t *testing.T) {
	v := New(bytecode.New())
	v.coroInit(0)
	v.coroInit(1)
	v.coros[1].pc = 20

	v.current = 0
	v.pc = 7
	v.registers[0] = value.NewInt(42)

	require.True(t, v.coroYield())
	assert.Equal(t, 1, v.current, "round robin advances from slot 0 to slot 1")
	assert.Equal(t, 20, v.pc, "resumes slot 1 at its own saved PC")
	assert.Equal(t, 7, v.coros[0].pc, "yielding out of slot 0 saves its PC")
	assert.Equal(t, int64(42), v.coros[0].registers[0].Int(), "yielding out of slot 0 saves its registers")
	assert.Equal(t, v.coros[1].registers, v.registers, "resumes slot 1 with its own registers")
}

func TestCoroResumeTargetsNamedSlot(t *testing.T) {
	v := New(bytecode.New())
	v.coroInit(0)
	v.coroInit(1)
	v.coros[1].pc = 12

	require.True(t, v.coroResume(1))
	assert.Equal(t, 1, v.current)
	assert.Equal(t, 12, v.pc)
}

func TestCoroYieldWithNoActiveSlotsReportsFalse(t *testing.T) {
	v := New(bytecode.New())
	assert.False(t, v.coroYield())
}

func TestCoroResumeOfInactiveSlotReportsFalse(t *testing.T) {
	v := New(bytecode.New())
	assert.False(t, v.coroResume(5))
}

func TestCancelCoroutineFreesSlotForReuse(t *testing.T) {
	v := New(bytecode.New())
	v.coroInit(0)
	idx := int(v.Register(0).Int())
	require.Equal(t, 1, v.ActiveCoroutines())

	v.CancelCoroutine(idx)
	assert.Equal(t, 0, v.ActiveCoroutines())
	assert.False(t, v.coros[idx].active)

	v.coroInit(1)
	assert.Equal(t, int64(idx), v.Register(1).Int(), "the freed slot is claimed again")
	assert.Equal(t, 1, v.ActiveCoroutines())
}
