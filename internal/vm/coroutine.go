package vm

import (
	"golang.org/x/sync/semaphore"

	"github.com/akshatnamdeo/osfl/internal/value"
)

// MaxCoroutines is the coroutine slot table's fixed capacity.
const MaxCoroutines = 64

// coroSlot is one cooperative coroutine's saved state: program counter plus
// a private 16-register file, activated round-robin on CORO_YIELD.
type coroSlot struct {
	active    bool
	pc        int
	registers [16]value.Value
}

func newCoroutineTable() ([MaxCoroutines]coroSlot, *semaphore.Weighted) {
	var slots [MaxCoroutines]coroSlot
	return slots, semaphore.NewWeighted(MaxCoroutines)
}

// coroInit finds the first inactive slot, claims it against the 64-slot
// semaphore cap, activates it with PC 0, and writes the slot index into
// R[destReg] so bytecode can address it from CORO_RESUME.
func (vm *VM) coroInit(destReg int) {
	idx := -1
	for i := range vm.coros {
		if !vm.coros[i].active {
			idx = i
			break
		}
	}
	if idx < 0 {
		vm.tracef("no inactive coroutine slot available")
		return
	}
	if !vm.coroSem.TryAcquire(1) {
		vm.tracef("coroutine slot cap reached")
		return
	}
	vm.coros[idx] = coroSlot{active: true}
	vm.setFresh(destReg, value.NewInt(int64(idx)))
}

// coroYield saves the current slot's state (if executing inside one) and
// advances to the next active slot, round-robin. Yielding with no active
// coroutine is a diagnostic, not a VM-halting error; it reports false so the
// caller leaves the PC advancing normally instead of re-dispatching the same
// instruction forever.
func (vm *VM) coroYield() bool {
	if vm.current >= 0 {
		vm.coros[vm.current].pc = vm.pc
		vm.coros[vm.current].registers = vm.registers
	}
	next := vm.nextActiveSlot(vm.current)
	if next < 0 {
		vm.tracef("yield with no active coroutine slots")
		return false
	}
	vm.switchTo(next)
	return true
}

// coroResume yields the current coroutine and switches directly to slot.
func (vm *VM) coroResume(slot int) bool {
	if vm.current >= 0 {
		vm.coros[vm.current].pc = vm.pc
		vm.coros[vm.current].registers = vm.registers
	}
	if slot < 0 || slot >= MaxCoroutines || !vm.coros[slot].active {
		vm.tracef("resume of inactive coroutine slot %d", slot)
		return false
	}
	vm.switchTo(slot)
	return true
}

func (vm *VM) switchTo(slot int) {
	vm.current = slot
	vm.pc = vm.coros[slot].pc
	vm.registers = vm.coros[slot].registers
}

func (vm *VM) nextActiveSlot(from int) int {
	for step := 1; step <= MaxCoroutines; step++ {
		i := (from + step) % MaxCoroutines
		if vm.coros[i].active {
			return i
		}
	}
	return -1
}

// CancelCoroutine clears a slot's active flag and releases its semaphore
// claim. Not reachable from any opcode (the core exposes no cancellation
// instruction); a host embedding the VM calls it directly to reclaim a slot
// whose work is done.
func (vm *VM) CancelCoroutine(slot int) {
	if slot < 0 || slot >= MaxCoroutines || !vm.coros[slot].active {
		return
	}
	vm.coros[slot].active = false
	vm.coroSem.Release(1)
}

// ActiveCoroutines reports how many coroutine slots are currently active,
// for tests and a host's capacity monitoring.
func (vm *VM) ActiveCoroutines() int {
	n := 0
	for _, s := range vm.coros {
		if s.active {
			n++
		}
	}
	return n
}
