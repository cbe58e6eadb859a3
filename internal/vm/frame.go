package vm

import "github.com/akshatnamdeo/osfl/internal/value"

// FrameLocals is the fixed local-variable count a CALL allocates per Frame.
const FrameLocals = 8

// Frame is a per-call activation record: a fixed bank of local Values plus
// a parent link to the enclosing activation. The parent link exists for
// lexical-style lookup through enclosing activations; the core dispatch
// loop never walks it, since register-based calls carry no free variables.
type Frame struct {
	Locals [FrameLocals]value.Value
	Parent *Frame
}

func newFrame(parent *Frame) *Frame {
	return &Frame{Parent: parent}
}
