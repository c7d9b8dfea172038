package vm

import (
	"math/big"

	"github.com/evmexec/evmexec/core/types"
	"github.com/evmexec/evmexec/crypto"
)

// createAddress derives the CREATE address: the low 20 bytes of
// keccak256(rlp(sender, nonce)), using minimal RLP encoding.
func createAddress(sender types.Address, nonce uint64) types.Address {
	encNonce := encodeRLPUint(nonce)
	encSender := encodeRLPBytes(sender.Bytes())
	payload := wrapRLPList(append(append([]byte{}, encSender...), encNonce...))
	return types.BytesToAddress(crypto.Keccak256(payload))
}

// create2Address derives the CREATE2 address: the low 20 bytes of
// keccak256(0xff ++ sender ++ salt ++ keccak256(initcode)).
func create2Address(sender types.Address, salt types.Word, initCode []byte) types.Address {
	initHash := crypto.Keccak256(initCode)
	buf := make([]byte, 0, 1+20+32+32)
	buf = append(buf, 0xff)
	buf = append(buf, sender.Bytes()...)
	buf = append(buf, salt[:]...)
	buf = append(buf, initHash...)
	return types.BytesToAddress(crypto.Keccak256(buf))
}

func encodeRLPBytes(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return b
	}
	return append(encodeRLPLength(0x80, len(b)), b...)
}

func encodeRLPUint(n uint64) []byte {
	if n == 0 {
		return []byte{0x80}
	}
	return encodeRLPBytes(uintToMinBytes(n))
}

func uintToMinBytes(n uint64) []byte {
	var b [8]byte
	for i := 7; i >= 0; i-- {
		b[i] = byte(n)
		n >>= 8
	}
	i := 0
	for i < 8 && b[i] == 0 {
		i++
	}
	return b[i:]
}

func wrapRLPList(payload []byte) []byte {
	return append(encodeRLPLength(0xc0, len(payload)), payload...)
}

func encodeRLPLength(base byte, n int) []byte {
	if n < 56 {
		return []byte{base + byte(n)}
	}
	lenBytes := uintToMinBytes(uint64(n))
	return append([]byte{base + 55 + byte(len(lenBytes))}, lenBytes...)
}

// createKind distinguishes CREATE from CREATE2 for dispatch.
type createKind int

const (
	createPlain createKind = iota
	createSalted
)

// create runs the shared CREATE/CREATE2 implementation: collision check,
// nonce bump, value transfer, init-code execution, and code deposit.
//
// A non-nil fatal error means a precondition the opcode itself cannot
// recover from was violated (static-with-value, oversized init code,
// address collision, oversized deployed code) and the calling opcode must
// propagate it, ending the parent frame -- mirroring the fatal-vs-ordinary-
// failure split already used at the call() sub-call boundary.
func (m *Machine) create(kind createKind, parent *Frame, value *big.Int, code []byte, salt types.Word) (addr types.Address, ret []byte, gasLeft uint64, success bool, fatal error) {
	sender := parent.Call.Recipient
	if parent.Call.Static && value.Sign() != 0 {
		return types.Address{}, nil, parent.Gas, false, ErrWriteProtection
	}
	if value.Sign() != 0 && m.State.Balance(sender).Cmp(value) < 0 {
		return types.Address{}, nil, parent.Gas, false, nil
	}
	if len(code) > MaxInitCodeSize {
		return types.Address{}, nil, parent.Gas, false, ErrMaxInitCodeSizeExceeded
	}

	nonce := m.State.Nonce(sender)
	m.State.SetNonce(sender, nonce+1)

	if kind == createSalted {
		addr = create2Address(sender, salt, code)
	} else {
		addr = createAddress(sender, nonce)
	}

	if m.State.Exists(addr) && (m.State.Nonce(addr) != 0 || m.State.CodeSize(addr) != 0) {
		return types.Address{}, nil, parent.Gas, false, ErrContractAddressCollide
	}

	snapshot := m.State.Clone()
	sandbox := &Machine{State: snapshot, Block: m.Block, jumpTable: m.jumpTable, depth: m.depth + 1}

	snapshot.CreateAccount(addr, nil, nil)
	if err := snapshot.Transfer(sender, addr, value); err != nil {
		return types.Address{}, nil, parent.Gas, false, nil
	}

	// All remaining gas is forwarded to the init code; the EIP-150 63/64
	// reservation is not implemented.
	callGas := parent.Gas
	parent.Gas = 0

	childCtx := CallContext{
		Sender:     sender,
		Recipient:  addr,
		CodeTarget: addr,
		Origin:     parent.Call.Origin,
		Value:      value,
		GasPrice:   parent.Call.GasPrice,
	}
	childFrame := NewFrame(code, childCtx, callGas)
	result := sandbox.Run(childFrame)
	m.returnData = result.ReturnData
	parent.Gas += result.GasLeft

	if !result.Success {
		return types.Address{}, result.ReturnData, parent.Gas, false, nil
	}

	deployed := result.ReturnData
	if len(deployed) > MaxCodeSize {
		return types.Address{}, nil, parent.Gas, false, ErrMaxCodeSizeExceeded
	}
	depositCost := GasCodeDeposit * uint64(len(deployed))
	if parent.Gas < depositCost {
		return types.Address{}, nil, parent.Gas, false, nil
	}
	parent.Gas -= depositCost

	snapshot.SetCode(addr, deployed)
	m.State.Adopt(snapshot)
	return addr, nil, parent.Gas, true, nil
}
