package vm

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/evmexec/evmexec/core/state"
	"github.com/evmexec/evmexec/core/types"
)

func runCode(t *testing.T, code []byte, gas uint64) (*state.WorldState, RunResult) {
	t.Helper()
	st := state.New()
	m := NewMachine(st, BlockContext{})
	recipient := types.HexToAddress("0xaaaa")
	frame := NewFrame(code, CallContext{Sender: recipient, Recipient: recipient, CodeTarget: recipient}, gas)
	return st, m.Run(frame)
}

func TestScenarioAdd(t *testing.T) {
	_, res := runCode(t, []byte{0x60, 0x01, 0x60, 0x02, 0x01}, 100000)
	if !res.Success {
		t.Fatalf("expected success")
	}
	if len(res.Stack) != 1 || res.Stack[0] != wordN(3) {
		t.Fatalf("expected stack [3], got %v", res.Stack)
	}
}

func TestScenarioSubUnderflowWraps(t *testing.T) {
	_, res := runCode(t, []byte{0x60, 0x03, 0x60, 0x02, 0x03}, 100000)
	if !res.Success {
		t.Fatalf("expected success")
	}
	want := types.BigToWord(new(big.Int).Neg(big.NewInt(1)))
	if res.Stack[0] != want {
		t.Fatalf("expected wraparound max word, got %v", res.Stack[0])
	}
}

func TestScenarioRevert(t *testing.T) {
	_, res := runCode(t, []byte{0x60, 0x00, 0x60, 0x00, 0xfd}, 100000)
	if res.Success {
		t.Fatalf("expected failure")
	}
	if len(res.Stack) != 0 {
		t.Fatalf("expected empty stack on revert, got %v", res.Stack)
	}
	if len(res.ReturnData) != 0 {
		t.Fatalf("expected empty return data, got %x", res.ReturnData)
	}
}

func TestScenarioValidJump(t *testing.T) {
	_, res := runCode(t, []byte{0x60, 0x03, 0x56, 0x5b, 0x60, 0x2a}, 100000)
	if !res.Success {
		t.Fatalf("expected success")
	}
	if res.Stack[0] != wordN(0x2a) {
		t.Fatalf("expected stack [0x2a], got %v", res.Stack)
	}
}

func TestScenarioInvalidJump(t *testing.T) {
	_, res := runCode(t, []byte{0x60, 0x04, 0x56, 0x60, 0x2a, 0x5b}, 100000)
	if res.Success {
		t.Fatalf("expected failure for jump into PUSH immediate")
	}
}

func TestScenarioCallToEmptyAccount(t *testing.T) {
	addrB := types.BytesToAddress(bytes.Repeat([]byte{0xbb}, 20))

	code := []byte{
		0x60, 0x00, // PUSH1 0  (retSize)
		0x60, 0x00, // PUSH1 0  (retOffset)
		0x60, 0x00, // PUSH1 0  (argsSize)
		0x60, 0x00, // PUSH1 0  (argsOffset)
		0x60, 0x0a, // PUSH1 10 (value)
		0x73, // PUSH20 <addr>
	}
	code = append(code, addrB.Bytes()...)
	code = append(code,
		0x62, 0x0f, 0x42, 0x40, // PUSH3 0x0F4240 (gas)
		0xf1,                   // CALL
		0x50,                   // POP (the pushed success flag)
		0x61, 0x6f, 0x6b,       // PUSH2 "ok"
		0x60, 0x00, // PUSH1 0
		0x52,       // MSTORE
		0x60, 0x02, // PUSH1 2 (size)
		0x60, 0x1e, // PUSH1 30 (offset)
		0xf3, // RETURN
	)

	st := state.New()
	addrA := types.HexToAddress("0xaaaa")
	st.CreateAccount(addrA, nil, big.NewInt(100))

	m := NewMachine(st, BlockContext{})
	frame := NewFrame(code, CallContext{Sender: addrA, Recipient: addrA, CodeTarget: addrA}, 10_000_000)
	res := m.Run(frame)

	if !res.Success {
		t.Fatalf("expected success, diffs: %+v", res)
	}
	if string(res.ReturnData) != "ok" {
		t.Fatalf("expected return data \"ok\", got %q", res.ReturnData)
	}
	if st.Balance(addrA).Cmp(big.NewInt(90)) != 0 {
		t.Fatalf("expected A balance 90, got %s", st.Balance(addrA))
	}
	if st.Balance(addrB).Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("expected B balance 10, got %s", st.Balance(addrB))
	}
}

func TestSignedDivision(t *testing.T) {
	// SDIV(-8, 2) == -4
	st := state.New()
	m := NewMachine(st, BlockContext{})
	f := NewFrame(nil, CallContext{}, 1000)
	f.Stack.Push(types.BigToWord(big.NewInt(2)))
	f.Stack.Push(types.BigToWord(big.NewInt(-8)))
	if _, err := opSdiv(f, m); err != nil {
		t.Fatalf("opSdiv: %v", err)
	}
	got, _ := f.Stack.Pop()
	if toSigned(got).Cmp(big.NewInt(-4)) != 0 {
		t.Fatalf("expected -4, got %s", toSigned(got))
	}
}

func TestSignExtend(t *testing.T) {
	st := state.New()
	m := NewMachine(st, BlockContext{})
	f := NewFrame(nil, CallContext{}, 1000)
	f.Stack.Push(types.BytesToWord([]byte{0xff})) // value = 0xff
	f.Stack.Push(wordN(0))                         // k = 0 (extend from the low byte)
	if _, err := opSignExtend(f, m); err != nil {
		t.Fatalf("opSignExtend: %v", err)
	}
	got, _ := f.Stack.Pop()
	if toSigned(got).Cmp(big.NewInt(-1)) != 0 {
		t.Fatalf("expected -1, got %s", toSigned(got))
	}
}
