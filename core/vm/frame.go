package vm

import (
	"github.com/evmexec/evmexec/core/types"
)

// Frame is one invocation's private execution state: program counter,
// stack, memory, remaining gas, the code being run, and the call context it
// runs under.
type Frame struct {
	PC     uint64
	Stack  *Stack
	Memory *Memory
	Gas    uint64

	Code []byte
	Call CallContext

	ReturnData []byte
	Logs       []*types.Log

	jumpdests map[uint64]bool
}

// NewFrame builds a frame ready to execute code with the given call
// context and starting gas.
func NewFrame(code []byte, call CallContext, gas uint64) *Frame {
	return &Frame{
		Stack:  NewStack(),
		Memory: NewMemory(),
		Gas:    gas,
		Code:   code,
		Call:   call,
	}
}

// OpAt returns the opcode at offset n, or STOP past the end of the code --
// code execution implicitly terminates with STOP once it runs off the end.
func (f *Frame) OpAt(n uint64) OpCode {
	if n >= uint64(len(f.Code)) {
		return STOP
	}
	return OpCode(f.Code[n])
}

// UseGas deducts amount from the frame's gas, reporting false (out of gas)
// if insufficient.
func (f *Frame) UseGas(amount uint64) bool {
	if f.Gas < amount {
		return false
	}
	f.Gas -= amount
	return true
}

// ValidJumpDest reports whether dest is a legal JUMP/JUMPI target: the byte
// at dest must be JUMPDEST and must not fall inside a PUSHn immediate.
// Computed by a single linear scan over the code tracking PUSH skip
// distances -- more expensive than a byte-before-target check but immune to
// the false positives that approximation produces against PUSH immediates
// that happen to contain the JUMPDEST byte value.
func (f *Frame) ValidJumpDest(dest uint64) bool {
	if f.jumpdests == nil {
		f.jumpdests = analyzeJumpDests(f.Code)
	}
	return f.jumpdests[dest]
}

// analyzeJumpDests scans code once, skipping PUSHn immediates, and records
// every offset holding a JUMPDEST byte that is not inside an immediate.
func analyzeJumpDests(code []byte) map[uint64]bool {
	dests := make(map[uint64]bool)
	for i := uint64(0); i < uint64(len(code)); i++ {
		op := OpCode(code[i])
		if op == JUMPDEST {
			dests[i] = true
		}
		if op.IsPush() {
			i += op.PushSize()
		}
	}
	return dests
}
