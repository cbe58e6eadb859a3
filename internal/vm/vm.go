// Package vm implements the dispatch loop described in spec.md §4.5: a
// fixed 16-register file, a bounded call stack of paired Frames and return
// addresses, a ref-counted object heap, a bounded coroutine slot table, and
// a linearly-scanned native-function registry.
package vm

import (
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/akshatnamdeo/osfl/internal/bytecode"
	"github.com/akshatnamdeo/osfl/internal/value"
)

// NumRegisters is the VM's fixed register file size.
const NumRegisters = 16

// MaxCallStack bounds the number of active Frame/return-address pairs.
const MaxCallStack = 1024

// Kind discriminates the VM's runtime error taxonomy (spec §7 "VM:").
type Kind string

const (
	KindRegister     Kind = "register"
	KindType         Kind = "type"
	KindDivByZero    Kind = "division-by-zero"
	KindCallOverflow Kind = "call-stack-overflow"
	KindJumpTarget   Kind = "jump-target"
	KindOpcode       Kind = "opcode"
	KindNative       Kind = "native"
)

// Error is a single VM-halting diagnostic: §7 says every one of these sets
// running = false after being emitted, never panics.
type Error struct {
	Kind    Kind
	Message string
	PC      int
}

func (e *Error) Error() string {
	return fmt.Sprintf("vm: %s error at pc=%d: %s", e.Kind, e.PC, e.Message)
}

type callEntry struct {
	frame      *Frame
	returnAddr int
}

// VM holds every piece of state named in spec.md §3 "VM state": program
// counter, register file, call stack, object heap, coroutine table, and
// native registry. A VM executes one Bytecode at a time and is never shared
// across goroutines (spec §5: "Single-threaded cooperative").
type VM struct {
	bc        *bytecode.Bytecode
	pc        int
	registers [NumRegisters]value.Value
	calls     []callEntry
	frame     *Frame
	heap      *value.Heap
	natives   []nativeEntry
	coros     [MaxCoroutines]coroSlot
	coroSem   *semaphore.Weighted
	current   int

	running bool
	lastErr error
	logfn   func(mess string, args ...interface{})
}

// New returns a VM ready to load bc and run from instruction 0. The
// register file starts zeroed to Null per spec's VM-creation invariant.
func New(bc *bytecode.Bytecode) *VM {
	vm := &VM{bc: bc, heap: value.NewHeap(), current: -1}
	vm.coros, vm.coroSem = newCoroutineTable()
	return vm
}

// SetLogf installs a printf-style sink for instruction-by-instruction debug
// traces (spec §7 "Debug mode additionally writes instruction-by-instruction
// traces"). A nil sink (the default) disables tracing.
func (vm *VM) SetLogf(logfn func(mess string, args ...interface{})) {
	vm.logfn = logfn
}

func (vm *VM) tracef(format string, args ...interface{}) {
	if vm.logfn != nil {
		vm.logfn(format, args...)
	}
}

// Err returns the most recently recorded VM error, or nil if none occurred.
func (vm *VM) Err() error { return vm.lastErr }

// Stop requests a clean halt between instructions (spec §5: "A host may
// stop execution by setting running = false between instructions"). Used
// by the exit native; it never interrupts a native call already in flight.
func (vm *VM) Stop() { vm.running = false }

// PC returns the current program counter, for tests and the debug dumper.
func (vm *VM) PC() int { return vm.pc }

// CallDepth returns the number of active call-stack entries.
func (vm *VM) CallDepth() int { return len(vm.calls) }

// Heap exposes the object registry for tests asserting invariant 7 (an
// object appears exactly once after NEWOBJ, zero times after release).
func (vm *VM) Heap() *value.Heap { return vm.heap }

// Register returns a copy of R[i] without retaining it, for host inspection
// and test assertions (spec scenario 1-3's "After run: R0=...").
func (vm *VM) Register(i int) value.Value {
	if i < 0 || i >= NumRegisters {
		return value.NewNull()
	}
	return vm.registers[i]
}

// SetRegister seeds R[i] before Run, e.g. to construct the literal bytecode
// in spec scenario 1 without going through a Compiler.
func (vm *VM) SetRegister(i int, v value.Value) {
	if i < 0 || i >= NumRegisters {
		return
	}
	vm.registers[i] = v
}

func (vm *VM) fail(kind Kind, format string, args ...interface{}) {
	err := &Error{Kind: kind, Message: fmt.Sprintf(format, args...), PC: vm.pc}
	vm.lastErr = err
	vm.tracef("! %v", err)
	vm.running = false
}

func (vm *VM) validReg(i int) bool {
	if i < 0 || i >= NumRegisters {
		vm.fail(KindRegister, "index %d out of range [0,%d)", i, NumRegisters)
		return false
	}
	return true
}

// setFresh stores a newly constructed Value (one nobody else already holds
// a reference to) into R[dest], releasing whatever it displaces. It must
// not retain v: v's refcount already reflects its single, about-to-be-
// recorded owner.
func (vm *VM) setFresh(dest int, v value.Value) {
	if !vm.validReg(dest) {
		return
	}
	vm.release(vm.registers[dest])
	vm.registers[dest] = v
}

// setCopy stores a duplicate of an existing Value (e.g. MOVE, GETPROP) into
// R[dest]: the source keeps its own owner, so the new owner must retain.
func (vm *VM) setCopy(dest int, v value.Value) {
	if !vm.validReg(dest) {
		return
	}
	v.Retain()
	vm.release(vm.registers[dest])
	vm.registers[dest] = v
}

// release drops a register's prior occupant. Plain Release() only manages
// the refcount; an Object variant reaching zero must also leave the VM's
// object registry, per invariant 7 ("after its refcount reaches zero, it
// appears zero times").
func (vm *VM) release(old value.Value) {
	if old.Kind == value.ObjectKind {
		if obj := old.Object(); obj != nil {
			if old.Release() <= 0 {
				vm.heap.Forget(obj)
			}
			return
		}
	}
	old.Release()
}

func (vm *VM) reg(i int) (value.Value, bool) {
	if !vm.validReg(i) {
		return value.Value{}, false
	}
	return vm.registers[i], true
}

func (vm *VM) regInt(i int) (int64, bool) {
	v, ok := vm.reg(i)
	if !ok {
		return 0, false
	}
	if v.Kind != value.IntKind {
		vm.fail(KindType, "R[%d] is %s, want int", i, v.Kind)
		return 0, false
	}
	return v.Int(), true
}

// Run executes from the current PC (0 on a fresh VM) until HALT, an
// exhausted instruction stream, or a fatal diagnostic. Invariant 4: PC
// stays in [0, instruction_count) for the whole time running is true.
func (vm *VM) Run() error {
	vm.running = true
	vm.lastErr = nil
	for vm.running && vm.pc >= 0 && vm.pc < len(vm.bc.Instructions) {
		vm.step()
	}
	return vm.lastErr
}

func (vm *VM) step() {
	in := vm.bc.Instructions[vm.pc]
	if vm.logfn != nil {
		vm.tracef("@%-4d %-16s %d %d %d %d", vm.pc, in.Op, in.Op1, in.Op2, in.Op3, in.Op4)
	}
	next := vm.pc + 1
	switch in.Op {
	case bytecode.NOP:
	case bytecode.LOAD_CONST:
		vm.setFresh(in.Op1, value.NewInt(int64(in.Op2)))
	case bytecode.LOAD_CONST_FLOAT:
		vm.setFresh(in.Op1, value.NewFloat(vm.bc.Float(in.Op2)))
	case bytecode.LOAD_CONST_STR:
		vm.setFresh(in.Op1, value.NewString(vm.bc.String(in.Op2)))
	case bytecode.MOVE:
		if src, ok := vm.reg(in.Op2); ok {
			vm.setCopy(in.Op1, src)
		}
	case bytecode.ADD:
		vm.binaryInt(in.Op1, in.Op2, in.Op3, func(a, b int64) (int64, bool) { return a + b, true })
	case bytecode.SUB:
		vm.binaryInt(in.Op1, in.Op2, in.Op3, func(a, b int64) (int64, bool) { return a - b, true })
	case bytecode.MUL:
		vm.binaryInt(in.Op1, in.Op2, in.Op3, func(a, b int64) (int64, bool) { return a * b, true })
	case bytecode.DIV:
		vm.binaryInt(in.Op1, in.Op2, in.Op3, func(a, b int64) (int64, bool) {
			if b == 0 {
				vm.fail(KindDivByZero, "division by zero")
				return 0, false
			}
			return a / b, true
		})
	case bytecode.EQ:
		vm.binaryInt(in.Op1, in.Op2, in.Op3, func(a, b int64) (int64, bool) {
			if a == b {
				return 1, true
			}
			return 0, true
		})
	case bytecode.NEQ:
		vm.binaryInt(in.Op1, in.Op2, in.Op3, func(a, b int64) (int64, bool) {
			if a != b {
				return 1, true
			}
			return 0, true
		})
	case bytecode.JUMP:
		next = in.Op1
	case bytecode.JUMP_IF_ZERO:
		if cond, ok := vm.regInt(in.Op2); ok {
			if cond == 0 {
				next = in.Op1
			}
		}
	case bytecode.CALL:
		vm.doCall(in.Op1, next)
		return
	case bytecode.CALL_NATIVE:
		vm.doCallNative(in.Op1, in.Op2, in.Op3, in.Op4)
	case bytecode.RET:
		if !vm.doReturn() {
			return
		}
		next = vm.pc
	case bytecode.HALT:
		vm.running = false
		return
	case bytecode.NEWOBJ:
		obj := value.NewVMObject()
		vm.heap.Register(obj)
		vm.setFresh(in.Op1, value.NewObject(obj))
	case bytecode.SETPROP:
		vm.doSetprop(in.Op1, in.Op2, in.Op3)
	case bytecode.GETPROP:
		vm.doGetprop(in.Op1, in.Op2, in.Op3)
	case bytecode.CORO_INIT:
		vm.coroInit(in.Op1)
	case bytecode.CORO_YIELD:
		if vm.coroYield() {
			next = vm.pc
		}
	case bytecode.CORO_RESUME:
		if vm.coroResume(in.Op1) {
			next = vm.pc
		}
	default:
		vm.fail(KindOpcode, "unknown opcode %d", in.Op)
		return
	}
	if vm.running {
		if next < 0 || next > len(vm.bc.Instructions) {
			vm.fail(KindJumpTarget, "jump target %d out of range", next)
			return
		}
		vm.pc = next
	}
}

func (vm *VM) binaryInt(dest, s1, s2 int, op func(a, b int64) (int64, bool)) {
	a, ok := vm.regInt(s1)
	if !ok {
		return
	}
	b, ok := vm.regInt(s2)
	if !ok {
		return
	}
	result, ok := op(a, b)
	if !ok {
		return
	}
	vm.setFresh(dest, value.NewInt(result))
}

// doCall implements §4.5's calling convention: push a fresh 8-local Frame
// (parented to the current top-of-stack frame) plus the return address,
// then jump to entry. Arguments are expected to already sit in R[0..argc)
// via MOVE, emitted by the Compiler ahead of CALL.
func (vm *VM) doCall(entry, returnAddr int) {
	if len(vm.calls) >= MaxCallStack {
		vm.fail(KindCallOverflow, "call stack overflow: depth %d exceeds %d", len(vm.calls), MaxCallStack)
		return
	}
	if entry < 0 || entry >= len(vm.bc.Instructions) {
		vm.fail(KindJumpTarget, "call target %d out of range", entry)
		return
	}
	f := newFrame(vm.frame)
	vm.calls = append(vm.calls, callEntry{frame: f, returnAddr: returnAddr})
	vm.frame = f
	vm.pc = entry
}

// doReturn pops the call stack and resumes at the stored return address.
// Per spec, RET with an empty call stack halts cleanly rather than
// underflowing; it then reports false, and true after a normal pop.
func (vm *VM) doReturn() bool {
	if len(vm.calls) == 0 {
		vm.running = false
		return false
	}
	top := vm.calls[len(vm.calls)-1]
	vm.calls = vm.calls[:len(vm.calls)-1]
	vm.frame = top.frame.Parent
	vm.pc = top.returnAddr
	return true
}

// doCallNative gathers the argc-register window starting at base, invokes
// the named native, and stores its single return value as a fresh value
// (the native bridge hands back ownership of whatever it constructs).
func (vm *VM) doCallNative(dest, poolIdx, argc, base int) {
	if argc < 0 || base < 0 || base+argc > NumRegisters {
		vm.fail(KindRegister, "native argument window [%d,%d) out of range", base, base+argc)
		return
	}
	args := make([]value.Value, argc)
	copy(args, vm.registers[base:base+argc])
	name := vm.bc.String(poolIdx)
	result := vm.callNative(name, args)
	vm.setFresh(dest, result)
}

func (vm *VM) doSetprop(objReg, keyReg, valReg int) {
	obj, ok := vm.reg(objReg)
	if !ok {
		return
	}
	if obj.Kind != value.ObjectKind {
		vm.fail(KindType, "R[%d] is %s, want object", objReg, obj.Kind)
		return
	}
	key, ok := vm.regInt(keyReg)
	if !ok {
		return
	}
	val, ok := vm.reg(valReg)
	if !ok {
		return
	}
	obj.Object().Set(fmt.Sprintf("%d", key), val)
}

func (vm *VM) doGetprop(dest, objReg, keyReg int) {
	obj, ok := vm.reg(objReg)
	if !ok {
		return
	}
	if obj.Kind != value.ObjectKind {
		vm.fail(KindType, "R[%d] is %s, want object", objReg, obj.Kind)
		return
	}
	key, ok := vm.regInt(keyReg)
	if !ok {
		return
	}
	vm.setCopy(dest, obj.Object().Get(fmt.Sprintf("%d", key)))
}
