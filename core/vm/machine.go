package vm

import (
	"errors"
	"math/big"

	"github.com/evmexec/evmexec/core/state"
	"github.com/evmexec/evmexec/core/types"
	"github.com/evmexec/evmexec/log"
)

var vmLog = log.Default().Module("vm")

// Machine is the top-level interpreter: it owns the world state and block
// context shared by every frame it runs, and dispatches the sub-call and
// create machinery.
type Machine struct {
	State     *state.WorldState
	Block     BlockContext
	jumpTable *JumpTable
	depth     int
	returnData []byte
	Verbose   bool
}

// NewMachine returns a Machine over the given world state and block
// context, using the single fixed jump table -- there is no hardfork
// concept to switch between tables.
func NewMachine(st *state.WorldState, block BlockContext) *Machine {
	return &Machine{State: st, Block: block, jumpTable: defaultJumpTable}
}

// RunResult is the outcome of one top-level or sub-call frame execution:
// success bit, final stack (top-first), emitted logs, and return data.
type RunResult struct {
	Success    bool
	Stack      []types.Word
	Logs       []*types.Log
	ReturnData []byte
	GasLeft    uint64
}

// Run executes a frame to completion: fetch, validate, charge gas, execute,
// advance -- repeated until a halting opcode or an error ends the frame.
func (m *Machine) Run(f *Frame) RunResult {
	for {
		op := f.OpAt(f.PC)
		operation := m.jumpTable[op]
		if operation == nil {
			return m.finishError(f, ErrInvalidOpCode)
		}
		if operation.writes && f.Call.Static {
			return m.finishError(f, ErrWriteProtection)
		}
		if f.Stack.Len() < operation.minStack {
			return m.finishError(f, ErrStackUnderflow)
		}
		if f.Stack.Len() > operation.maxStack {
			return m.finishError(f, ErrStackOverflow)
		}

		cost := operation.constantGas
		if operation.dynamicGas != nil {
			dyn, err := operation.dynamicGas(f, m)
			if err != nil {
				return m.finishError(f, err)
			}
			cost += dyn
		}
		var memOffset, memSize uint64
		if operation.memorySize != nil {
			memOffset, memSize = operation.memorySize(f)
			cost += gasMemoryExpansion(f.Memory, memOffset, memSize)
		}
		if !f.UseGas(cost) {
			return m.finishError(f, ErrOutOfGas)
		}
		if operation.memorySize != nil {
			f.Memory.Resize(memOffset, memSize)
		}

		ret, err := operation.execute(f, m)
		if err != nil {
			if errors.Is(err, ErrExecutionReverted) {
				return m.finishRevert(f, ret)
			}
			return m.finishError(f, err)
		}
		if operation.halts {
			return m.finishSuccess(f, ret)
		}
		if !operation.jumps {
			f.PC++
		}
	}
}

func (m *Machine) finishSuccess(f *Frame, ret []byte) RunResult {
	m.State.CommitDestructs()
	return RunResult{Success: true, Stack: f.Stack.TopFirst(), Logs: f.Logs, ReturnData: ret, GasLeft: f.Gas}
}

func (m *Machine) finishRevert(f *Frame, ret []byte) RunResult {
	m.State.DiscardDestructs()
	return RunResult{Success: false, Stack: nil, Logs: nil, ReturnData: ret, GasLeft: f.Gas}
}

func (m *Machine) finishError(f *Frame, err error) RunResult {
	m.State.DiscardDestructs()
	vmLog.Debug("frame failed", "err", err, "pc", f.PC)
	return RunResult{Success: false, Stack: nil, Logs: nil, ReturnData: nil, GasLeft: f.Gas}
}

// ---------------------------------------------------------------------
// Sub-calls
// ---------------------------------------------------------------------

// callKind distinguishes the four sub-call opcodes' context-construction
// rules.
type callKind int

const (
	kindCall callKind = iota
	kindCallCode
	kindDelegateCall
	kindStaticCall
)

// call runs CALL/CALLCODE/DELEGATECALL/STATICCALL against a deep-cloned
// world-state snapshot, adopting it on success and discarding it otherwise.
//
// A non-nil fatal error means a sub-call precondition check failed
// (static-with-value, insufficient balance) or the depth limit was
// hit; the calling opcode must propagate it, reverting the parent frame.
// Otherwise success reports whether the child frame itself completed
// (Stop/Return) or failed (Revert/error) -- the calling opcode pushes 1 or
// 0 accordingly but the parent frame continues either way.
func (m *Machine) call(kind callKind, parent *Frame, addr types.Address, input []byte, gas uint64, value *big.Int) (ret []byte, gasLeft uint64, success bool, fatal error) {
	if m.depth >= MaxCallDepth {
		return nil, gas, false, ErrMaxCallDepthExceeded
	}
	if parent.Call.Static && kind == kindCall && value != nil && value.Sign() != 0 {
		return nil, gas, false, ErrWriteProtection
	}
	if value != nil && value.Sign() != 0 && m.State.Balance(parent.Call.Recipient).Cmp(value) < 0 {
		return nil, gas, false, state.ErrInsufficientBalance
	}

	child := CallContext{Static: parent.Call.Static}
	switch kind {
	case kindCall:
		child.Sender = parent.Call.Recipient
		child.Recipient = addr
		child.CodeTarget = addr
		child.Origin = parent.Call.Origin
		child.Value = orZero(value)
		child.GasPrice = parent.Call.GasPrice
	case kindCallCode:
		child.Sender = parent.Call.Recipient
		child.Recipient = parent.Call.Recipient
		child.CodeTarget = addr
		child.Origin = parent.Call.Origin
		child.Value = orZero(value)
		child.GasPrice = parent.Call.GasPrice
	case kindDelegateCall:
		child.Sender = parent.Call.Sender
		child.Recipient = parent.Call.Recipient
		child.CodeTarget = addr
		child.Origin = parent.Call.Origin
		child.Value = orZero(parent.Call.Value)
		child.GasPrice = parent.Call.GasPrice
	case kindStaticCall:
		child.Sender = parent.Call.Recipient
		child.Recipient = addr
		child.CodeTarget = addr
		child.Origin = parent.Call.Origin
		child.Value = new(big.Int)
		child.GasPrice = parent.Call.GasPrice
		child.Static = true
	}
	child.Calldata = input

	snapshot := m.State.Clone()
	sandbox := &Machine{State: snapshot, Block: m.Block, jumpTable: m.jumpTable, depth: m.depth + 1}

	if kind == kindCall || kind == kindCallCode {
		if err := snapshot.Transfer(parent.Call.Recipient, child.Recipient, child.Value); err != nil {
			return nil, gas, false, err
		}
	}

	code := snapshot.Code(child.CodeTarget)
	if len(code) == 0 {
		m.State.Adopt(snapshot)
		m.returnData = nil
		return nil, gas, true, nil
	}

	childFrame := NewFrame(code, child, gas)
	result := sandbox.Run(childFrame)
	m.returnData = result.ReturnData

	if !result.Success {
		return result.ReturnData, result.GasLeft, false, nil
	}
	if !child.Static {
		m.State.Adopt(snapshot)
	}
	return result.ReturnData, result.GasLeft, true, nil
}

// Call implements the CALL opcode's sub-call semantics.
func (m *Machine) Call(parent *Frame, addr types.Address, input []byte, gas uint64, value *big.Int) ([]byte, uint64, bool, error) {
	return m.call(kindCall, parent, addr, input, gas, value)
}

// CallCode implements CALLCODE.
func (m *Machine) CallCode(parent *Frame, addr types.Address, input []byte, gas uint64, value *big.Int) ([]byte, uint64, bool, error) {
	return m.call(kindCallCode, parent, addr, input, gas, value)
}

// DelegateCall implements DELEGATECALL.
func (m *Machine) DelegateCall(parent *Frame, addr types.Address, input []byte, gas uint64) ([]byte, uint64, bool, error) {
	return m.call(kindDelegateCall, parent, addr, input, gas, nil)
}

// StaticCall implements STATICCALL.
func (m *Machine) StaticCall(parent *Frame, addr types.Address, input []byte, gas uint64) ([]byte, uint64, bool, error) {
	return m.call(kindStaticCall, parent, addr, input, gas, nil)
}

