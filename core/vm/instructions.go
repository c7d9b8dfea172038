package vm

import (
	"math/big"

	"github.com/evmexec/evmexec/core/types"
	"github.com/evmexec/evmexec/crypto"
)

// toSigned interprets w as a two's-complement signed 256-bit integer.
func toSigned(w types.Word) *big.Int {
	v := w.Big()
	if v.Bit(255) == 1 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), 256))
	}
	return v
}

// fromSigned wraps a (possibly negative) big.Int into its 256-bit two's
// complement word representation.
func fromSigned(v *big.Int) types.Word {
	return types.BigToWord(v)
}

func pop2(f *Frame) (types.Word, types.Word, error) {
	a, err := f.Stack.Pop()
	if err != nil {
		return types.Word{}, types.Word{}, err
	}
	b, err := f.Stack.Pop()
	if err != nil {
		return types.Word{}, types.Word{}, err
	}
	return a, b, nil
}

func boolWord(b bool) types.Word {
	if b {
		return types.BytesToWord([]byte{1})
	}
	return types.Word{}
}

// ---------------------------------------------------------------------
// Arithmetic
// ---------------------------------------------------------------------

func opAdd(f *Frame, m *Machine) ([]byte, error) {
	a, b, err := pop2(f)
	if err != nil {
		return nil, err
	}
	sum := new(big.Int).Add(a.Big(), b.Big())
	return nil, f.Stack.Push(types.BigToWord(sum))
}

func opMul(f *Frame, m *Machine) ([]byte, error) {
	a, b, err := pop2(f)
	if err != nil {
		return nil, err
	}
	return nil, f.Stack.Push(types.BigToWord(new(big.Int).Mul(a.Big(), b.Big())))
}

func opSub(f *Frame, m *Machine) ([]byte, error) {
	a, b, err := pop2(f)
	if err != nil {
		return nil, err
	}
	return nil, f.Stack.Push(types.BigToWord(new(big.Int).Sub(a.Big(), b.Big())))
}

func opDiv(f *Frame, m *Machine) ([]byte, error) {
	a, b, err := pop2(f)
	if err != nil {
		return nil, err
	}
	if b.IsZero() {
		return nil, f.Stack.Push(types.Word{})
	}
	return nil, f.Stack.Push(types.BigToWord(new(big.Int).Quo(a.Big(), b.Big())))
}

func opSdiv(f *Frame, m *Machine) ([]byte, error) {
	a, b, err := pop2(f)
	if err != nil {
		return nil, err
	}
	if b.IsZero() {
		return nil, f.Stack.Push(types.Word{})
	}
	sa, sb := toSigned(a), toSigned(b)
	return nil, f.Stack.Push(fromSigned(new(big.Int).Quo(sa, sb)))
}

func opMod(f *Frame, m *Machine) ([]byte, error) {
	a, b, err := pop2(f)
	if err != nil {
		return nil, err
	}
	if b.IsZero() {
		return nil, f.Stack.Push(types.Word{})
	}
	return nil, f.Stack.Push(types.BigToWord(new(big.Int).Mod(a.Big(), b.Big())))
}

func opSmod(f *Frame, m *Machine) ([]byte, error) {
	a, b, err := pop2(f)
	if err != nil {
		return nil, err
	}
	if b.IsZero() {
		return nil, f.Stack.Push(types.Word{})
	}
	sa, sb := toSigned(a), toSigned(b)
	return nil, f.Stack.Push(fromSigned(new(big.Int).Rem(sa, sb)))
}

func opAddmod(f *Frame, m *Machine) ([]byte, error) {
	a, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	b, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	n, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	if n.IsZero() {
		return nil, f.Stack.Push(types.Word{})
	}
	sum := new(big.Int).Add(a.Big(), b.Big())
	return nil, f.Stack.Push(types.BigToWord(sum.Mod(sum, n.Big())))
}

func opMulmod(f *Frame, m *Machine) ([]byte, error) {
	a, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	b, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	n, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	if n.IsZero() {
		return nil, f.Stack.Push(types.Word{})
	}
	prod := new(big.Int).Mul(a.Big(), b.Big())
	return nil, f.Stack.Push(types.BigToWord(prod.Mod(prod, n.Big())))
}

var twoTo256 = new(big.Int).Lsh(big.NewInt(1), 256)

func opExp(f *Frame, m *Machine) ([]byte, error) {
	base, exp, err := pop2(f)
	if err != nil {
		return nil, err
	}
	result := new(big.Int).Exp(base.Big(), exp.Big(), twoTo256)
	return nil, f.Stack.Push(types.BigToWord(result))
}

func opSignExtend(f *Frame, m *Machine) ([]byte, error) {
	k, value, err := pop2(f)
	if err != nil {
		return nil, err
	}
	kv := k.Big()
	if kv.Cmp(big.NewInt(31)) >= 0 {
		return nil, f.Stack.Push(value)
	}
	pos := 31 - int(kv.Int64())
	raw := value.Bytes()
	signByte := raw[pos]
	fill := byte(0x00)
	if signByte&0x80 != 0 {
		fill = 0xff
	}
	for i := 0; i < pos; i++ {
		raw[i] = fill
	}
	return nil, f.Stack.Push(types.BytesToWord(raw))
}

// ---------------------------------------------------------------------
// Comparison and bitwise
// ---------------------------------------------------------------------

func opLt(f *Frame, m *Machine) ([]byte, error) {
	a, b, err := pop2(f)
	if err != nil {
		return nil, err
	}
	return nil, f.Stack.Push(boolWord(a.Big().Cmp(b.Big()) < 0))
}

func opGt(f *Frame, m *Machine) ([]byte, error) {
	a, b, err := pop2(f)
	if err != nil {
		return nil, err
	}
	return nil, f.Stack.Push(boolWord(a.Big().Cmp(b.Big()) > 0))
}

func opSlt(f *Frame, m *Machine) ([]byte, error) {
	a, b, err := pop2(f)
	if err != nil {
		return nil, err
	}
	return nil, f.Stack.Push(boolWord(toSigned(a).Cmp(toSigned(b)) < 0))
}

func opSgt(f *Frame, m *Machine) ([]byte, error) {
	a, b, err := pop2(f)
	if err != nil {
		return nil, err
	}
	return nil, f.Stack.Push(boolWord(toSigned(a).Cmp(toSigned(b)) > 0))
}

func opEq(f *Frame, m *Machine) ([]byte, error) {
	a, b, err := pop2(f)
	if err != nil {
		return nil, err
	}
	return nil, f.Stack.Push(boolWord(a == b))
}

func opIsZero(f *Frame, m *Machine) ([]byte, error) {
	a, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	return nil, f.Stack.Push(boolWord(a.IsZero()))
}

func opAnd(f *Frame, m *Machine) ([]byte, error) {
	a, b, err := pop2(f)
	if err != nil {
		return nil, err
	}
	var out types.Word
	for i := range out {
		out[i] = a[i] & b[i]
	}
	return nil, f.Stack.Push(out)
}

func opOr(f *Frame, m *Machine) ([]byte, error) {
	a, b, err := pop2(f)
	if err != nil {
		return nil, err
	}
	var out types.Word
	for i := range out {
		out[i] = a[i] | b[i]
	}
	return nil, f.Stack.Push(out)
}

func opXor(f *Frame, m *Machine) ([]byte, error) {
	a, b, err := pop2(f)
	if err != nil {
		return nil, err
	}
	var out types.Word
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return nil, f.Stack.Push(out)
}

func opNot(f *Frame, m *Machine) ([]byte, error) {
	a, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	var out types.Word
	for i := range out {
		out[i] = ^a[i]
	}
	return nil, f.Stack.Push(out)
}

func opByte(f *Frame, m *Machine) ([]byte, error) {
	i, x, err := pop2(f)
	if err != nil {
		return nil, err
	}
	iv := i.Big()
	if iv.Cmp(big.NewInt(31)) > 0 {
		return nil, f.Stack.Push(types.Word{})
	}
	return nil, f.Stack.Push(types.BytesToWord([]byte{x[iv.Int64()]}))
}

func shiftAmount(w types.Word) (uint, bool) {
	v := w.Big()
	if v.Cmp(big.NewInt(256)) >= 0 {
		return 0, false
	}
	return uint(v.Uint64()), true
}

func opShl(f *Frame, m *Machine) ([]byte, error) {
	shift, value, err := pop2(f)
	if err != nil {
		return nil, err
	}
	amt, ok := shiftAmount(shift)
	if !ok {
		return nil, f.Stack.Push(types.Word{})
	}
	result := new(big.Int).Lsh(value.Big(), amt)
	return nil, f.Stack.Push(types.BigToWord(result))
}

func opShr(f *Frame, m *Machine) ([]byte, error) {
	shift, value, err := pop2(f)
	if err != nil {
		return nil, err
	}
	amt, ok := shiftAmount(shift)
	if !ok {
		return nil, f.Stack.Push(types.Word{})
	}
	result := new(big.Int).Rsh(value.Big(), amt)
	return nil, f.Stack.Push(types.BigToWord(result))
}

func opSar(f *Frame, m *Machine) ([]byte, error) {
	shift, value, err := pop2(f)
	if err != nil {
		return nil, err
	}
	signed := toSigned(value)
	amt, ok := shiftAmount(shift)
	if !ok {
		if signed.Sign() < 0 {
			var allOnes types.Word
			for i := range allOnes {
				allOnes[i] = 0xff
			}
			return nil, f.Stack.Push(allOnes)
		}
		return nil, f.Stack.Push(types.Word{})
	}
	result := new(big.Int).Rsh(signed, amt)
	return nil, f.Stack.Push(fromSigned(result))
}

// ---------------------------------------------------------------------
// SHA3
// ---------------------------------------------------------------------

func opSha3(f *Frame, m *Machine) ([]byte, error) {
	offset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	size, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	data := f.Memory.Load(offset.Uint64(), size.Uint64())
	return nil, f.Stack.Push(crypto.Keccak256Word(data))
}

// ---------------------------------------------------------------------
// Environmental
// ---------------------------------------------------------------------

func opAddress(f *Frame, m *Machine) ([]byte, error) {
	return nil, f.Stack.Push(f.Call.Recipient.Word())
}

func opBalance(f *Frame, m *Machine) ([]byte, error) {
	addrWord, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	return nil, f.Stack.Push(types.BigToWord(m.State.Balance(addrWord.Address())))
}

func opOrigin(f *Frame, m *Machine) ([]byte, error) {
	return nil, f.Stack.Push(f.Call.Origin.Word())
}

func opCaller(f *Frame, m *Machine) ([]byte, error) {
	return nil, f.Stack.Push(f.Call.Sender.Word())
}

func opCallValue(f *Frame, m *Machine) ([]byte, error) {
	return nil, f.Stack.Push(types.BigToWord(orZero(f.Call.Value)))
}

func readPadded(src []byte, offset, size uint64) []byte {
	out := make([]byte, size)
	if offset >= uint64(len(src)) {
		return out
	}
	copy(out, src[offset:])
	return out
}

func opCalldataLoad(f *Frame, m *Machine) ([]byte, error) {
	offset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	return nil, f.Stack.Push(types.BytesToWord(readPadded(f.Call.Calldata, offset.Uint64(), 32)))
}

func opCalldataSize(f *Frame, m *Machine) ([]byte, error) {
	return nil, f.Stack.Push(types.BigToWord(new(big.Int).SetUint64(uint64(len(f.Call.Calldata)))))
}

func opCalldataCopy(f *Frame, m *Machine) ([]byte, error) {
	destOffset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	offset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	size, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	f.Memory.Store(destOffset.Uint64(), readPadded(f.Call.Calldata, offset.Uint64(), size.Uint64()))
	return nil, nil
}

func opCodeSize(f *Frame, m *Machine) ([]byte, error) {
	return nil, f.Stack.Push(types.BigToWord(new(big.Int).SetUint64(uint64(len(f.Code)))))
}

func opCodeCopy(f *Frame, m *Machine) ([]byte, error) {
	destOffset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	offset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	size, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	f.Memory.Store(destOffset.Uint64(), readPadded(f.Code, offset.Uint64(), size.Uint64()))
	return nil, nil
}

func opGasPrice(f *Frame, m *Machine) ([]byte, error) {
	return nil, f.Stack.Push(types.BigToWord(orZero(f.Call.GasPrice)))
}

func opExtCodeSize(f *Frame, m *Machine) ([]byte, error) {
	addrWord, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	return nil, f.Stack.Push(types.BigToWord(new(big.Int).SetUint64(uint64(m.State.CodeSize(addrWord.Address())))))
}

func opExtCodeCopy(f *Frame, m *Machine) ([]byte, error) {
	addrWord, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	destOffset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	offset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	size, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	code := m.State.Code(addrWord.Address())
	f.Memory.Store(destOffset.Uint64(), readPadded(code, offset.Uint64(), size.Uint64()))
	return nil, nil
}

func opReturnDataSize(f *Frame, m *Machine) ([]byte, error) {
	return nil, f.Stack.Push(types.BigToWord(new(big.Int).SetUint64(uint64(len(m.returnData)))))
}

func opReturnDataCopy(f *Frame, m *Machine) ([]byte, error) {
	destOffset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	offset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	size, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	off, sz := offset.Uint64(), size.Uint64()
	if off+sz > uint64(len(m.returnData)) {
		return nil, ErrReturnDataOutOfBounds
	}
	f.Memory.Store(destOffset.Uint64(), m.returnData[off:off+sz])
	return nil, nil
}

func opExtCodeHash(f *Frame, m *Machine) ([]byte, error) {
	addrWord, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	addr := addrWord.Address()
	if !m.State.Exists(addr) {
		return nil, f.Stack.Push(types.Word{})
	}
	return nil, f.Stack.Push(m.State.CodeHash(addr))
}

// ---------------------------------------------------------------------
// Block context
// ---------------------------------------------------------------------

func opBlockHash(f *Frame, m *Machine) ([]byte, error) {
	if _, err := f.Stack.Pop(); err != nil {
		return nil, err
	}
	return nil, f.Stack.Push(types.Word{})
}

func opCoinbase(f *Frame, m *Machine) ([]byte, error) {
	if m.Block.Coinbase == nil {
		return nil, f.Stack.Push(types.Word{})
	}
	return nil, f.Stack.Push(m.Block.Coinbase.Word())
}

func opTimestamp(f *Frame, m *Machine) ([]byte, error) {
	return nil, f.Stack.Push(types.BigToWord(m.Block.timestampOrZero()))
}

func opNumber(f *Frame, m *Machine) ([]byte, error) {
	return nil, f.Stack.Push(types.BigToWord(m.Block.numberOrZero()))
}

func opPrevRandao(f *Frame, m *Machine) ([]byte, error) {
	if m.Block.PrevRandao == nil {
		return nil, f.Stack.Push(types.Word{})
	}
	return nil, f.Stack.Push(*m.Block.PrevRandao)
}

func opGasLimit(f *Frame, m *Machine) ([]byte, error) {
	return nil, f.Stack.Push(types.BigToWord(m.Block.gasLimitOrZero()))
}

func opChainID(f *Frame, m *Machine) ([]byte, error) {
	return nil, f.Stack.Push(types.BigToWord(new(big.Int).SetUint64(m.Block.ChainID)))
}

func opSelfBalance(f *Frame, m *Machine) ([]byte, error) {
	return nil, f.Stack.Push(types.BigToWord(m.State.Balance(f.Call.Recipient)))
}

func opBaseFee(f *Frame, m *Machine) ([]byte, error) {
	return nil, f.Stack.Push(types.BigToWord(m.Block.baseFeeOrZero()))
}

// ---------------------------------------------------------------------
// Stack, memory, storage, flow
// ---------------------------------------------------------------------

func opPop(f *Frame, m *Machine) ([]byte, error) {
	_, err := f.Stack.Pop()
	return nil, err
}

func opMload(f *Frame, m *Machine) ([]byte, error) {
	offset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	return nil, f.Stack.Push(types.BytesToWord(f.Memory.Load(offset.Uint64(), 32)))
}

func opMstore(f *Frame, m *Machine) ([]byte, error) {
	offset, value, err := pop2(f)
	if err != nil {
		return nil, err
	}
	f.Memory.StoreWord(offset.Uint64(), value)
	return nil, nil
}

func opMstore8(f *Frame, m *Machine) ([]byte, error) {
	offset, value, err := pop2(f)
	if err != nil {
		return nil, err
	}
	f.Memory.StoreByte(offset.Uint64(), value[31])
	return nil, nil
}

func opSload(f *Frame, m *Machine) ([]byte, error) {
	key, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	return nil, f.Stack.Push(m.State.StorageLoad(f.Call.Recipient, key))
}

func opSstore(f *Frame, m *Machine) ([]byte, error) {
	key, value, err := pop2(f)
	if err != nil {
		return nil, err
	}
	m.State.StorageStore(f.Call.Recipient, key, value)
	return nil, nil
}

func opJump(f *Frame, m *Machine) ([]byte, error) {
	dest, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	d := dest.Uint64()
	if !f.ValidJumpDest(d) {
		return nil, ErrInvalidJump
	}
	f.PC = d
	return nil, nil
}

func opJumpi(f *Frame, m *Machine) ([]byte, error) {
	dest, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	cond, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	if cond.IsZero() {
		f.PC++
		return nil, nil
	}
	d := dest.Uint64()
	if !f.ValidJumpDest(d) {
		return nil, ErrInvalidJump
	}
	f.PC = d
	return nil, nil
}

func opPc(f *Frame, m *Machine) ([]byte, error) {
	return nil, f.Stack.Push(types.BigToWord(new(big.Int).SetUint64(f.PC)))
}

func opMsize(f *Frame, m *Machine) ([]byte, error) {
	return nil, f.Stack.Push(types.BigToWord(new(big.Int).SetUint64(f.Memory.Size())))
}

func opGas(f *Frame, m *Machine) ([]byte, error) {
	return nil, f.Stack.Push(types.BigToWord(new(big.Int).SetUint64(f.Gas)))
}

func opJumpdest(f *Frame, m *Machine) ([]byte, error) {
	return nil, nil
}

func opPush0(f *Frame, m *Machine) ([]byte, error) {
	return nil, f.Stack.Push(types.Word{})
}

// makePush returns an executionFunc reading n immediate bytes following the
// opcode, zero-padded past the end of code. The run loop's automatic PC++
// accounts for the opcode byte itself; the immediate is skipped here.
func makePush(n uint64) executionFunc {
	return func(f *Frame, m *Machine) ([]byte, error) {
		start := f.PC + 1
		imm := readPadded(f.Code, start, n)
		f.PC += n
		return nil, f.Stack.Push(types.BytesToWord(imm))
	}
}

func makeDup(n int) executionFunc {
	return func(f *Frame, m *Machine) ([]byte, error) {
		return nil, f.Stack.Dup(n)
	}
}

func makeSwap(n int) executionFunc {
	return func(f *Frame, m *Machine) ([]byte, error) {
		return nil, f.Stack.SwapWithTop(n)
	}
}

// ---------------------------------------------------------------------
// Logs
// ---------------------------------------------------------------------

func makeLog(topicCount int) executionFunc {
	return func(f *Frame, m *Machine) ([]byte, error) {
		offset, err := f.Stack.Pop()
		if err != nil {
			return nil, err
		}
		size, err := f.Stack.Pop()
		if err != nil {
			return nil, err
		}
		topics := make([]types.Word, topicCount)
		for i := 0; i < topicCount; i++ {
			t, err := f.Stack.Pop()
			if err != nil {
				return nil, err
			}
			topics[i] = t
		}
		data := f.Memory.Load(offset.Uint64(), size.Uint64())
		f.Logs = append(f.Logs, &types.Log{Address: f.Call.Recipient, Topics: topics, Data: data})
		return nil, nil
	}
}

// ---------------------------------------------------------------------
// Terminal, call, create
// ---------------------------------------------------------------------

func opStop(f *Frame, m *Machine) ([]byte, error) {
	return nil, nil
}

func opReturn(f *Frame, m *Machine) ([]byte, error) {
	offset, size, err := pop2(f)
	if err != nil {
		return nil, err
	}
	return f.Memory.Load(offset.Uint64(), size.Uint64()), nil
}

func opRevert(f *Frame, m *Machine) ([]byte, error) {
	offset, size, err := pop2(f)
	if err != nil {
		return nil, err
	}
	return f.Memory.Load(offset.Uint64(), size.Uint64()), ErrExecutionReverted
}

func opInvalid(f *Frame, m *Machine) ([]byte, error) {
	return nil, ErrInvalidOpCode
}

func opSelfDestruct(f *Frame, m *Machine) ([]byte, error) {
	beneficiaryWord, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	balance := m.State.Balance(f.Call.Recipient)
	if balance.Sign() != 0 {
		if terr := m.State.Transfer(f.Call.Recipient, beneficiaryWord.Address(), balance); terr != nil {
			return nil, terr
		}
	}
	m.State.QueueDestruct(f.Call.Recipient)
	return nil, nil
}

func opCreate(f *Frame, m *Machine) ([]byte, error) {
	value, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	offset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	size, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	code := f.Memory.Load(offset.Uint64(), size.Uint64())
	addr, ret, gasLeft, success, fatal := m.create(createPlain, f, value.Big(), code, types.Word{})
	f.Gas = gasLeft
	if fatal != nil {
		return nil, fatal
	}
	if !success {
		m.returnData = ret
		return nil, f.Stack.Push(types.Word{})
	}
	m.returnData = nil
	return nil, f.Stack.Push(addr.Word())
}

func opCreate2(f *Frame, m *Machine) ([]byte, error) {
	value, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	offset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	size, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	salt, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	code := f.Memory.Load(offset.Uint64(), size.Uint64())
	addr, ret, gasLeft, success, fatal := m.create(createSalted, f, value.Big(), code, salt)
	f.Gas = gasLeft
	if fatal != nil {
		return nil, fatal
	}
	if !success {
		m.returnData = ret
		return nil, f.Stack.Push(types.Word{})
	}
	m.returnData = nil
	return nil, f.Stack.Push(addr.Word())
}

func opCall(f *Frame, m *Machine) ([]byte, error) {
	gasWord, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	addrWord, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	valueWord, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	argsOffset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	argsSize, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	retOffset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	retSize, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}

	input := f.Memory.Load(argsOffset.Uint64(), argsSize.Uint64())
	requested := gasWord.Uint64()
	if requested > f.Gas {
		requested = f.Gas
	}
	f.Gas -= requested

	ret, gasLeft, success, fatal := m.Call(f, addrWord.Address(), input, requested, valueWord.Big())
	f.Gas += gasLeft
	if fatal != nil {
		return nil, fatal
	}

	copyLen := min(int(retSize.Uint64()), len(ret))
	if copyLen > 0 {
		f.Memory.Store(retOffset.Uint64(), ret[:copyLen])
	}
	return nil, f.Stack.Push(boolWord(success))
}

func opCallCode(f *Frame, m *Machine) ([]byte, error) {
	gasWord, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	addrWord, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	valueWord, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	argsOffset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	argsSize, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	retOffset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	retSize, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}

	input := f.Memory.Load(argsOffset.Uint64(), argsSize.Uint64())
	requested := gasWord.Uint64()
	if requested > f.Gas {
		requested = f.Gas
	}
	f.Gas -= requested

	ret, gasLeft, success, fatal := m.CallCode(f, addrWord.Address(), input, requested, valueWord.Big())
	f.Gas += gasLeft
	if fatal != nil {
		return nil, fatal
	}

	copyLen := min(int(retSize.Uint64()), len(ret))
	if copyLen > 0 {
		f.Memory.Store(retOffset.Uint64(), ret[:copyLen])
	}
	return nil, f.Stack.Push(boolWord(success))
}

func opDelegateCall(f *Frame, m *Machine) ([]byte, error) {
	gasWord, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	addrWord, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	argsOffset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	argsSize, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	retOffset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	retSize, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}

	input := f.Memory.Load(argsOffset.Uint64(), argsSize.Uint64())
	requested := gasWord.Uint64()
	if requested > f.Gas {
		requested = f.Gas
	}
	f.Gas -= requested

	ret, gasLeft, success, fatal := m.DelegateCall(f, addrWord.Address(), input, requested)
	f.Gas += gasLeft
	if fatal != nil {
		return nil, fatal
	}

	copyLen := min(int(retSize.Uint64()), len(ret))
	if copyLen > 0 {
		f.Memory.Store(retOffset.Uint64(), ret[:copyLen])
	}
	return nil, f.Stack.Push(boolWord(success))
}

func opStaticCall(f *Frame, m *Machine) ([]byte, error) {
	gasWord, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	addrWord, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	argsOffset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	argsSize, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	retOffset, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}
	retSize, err := f.Stack.Pop()
	if err != nil {
		return nil, err
	}

	input := f.Memory.Load(argsOffset.Uint64(), argsSize.Uint64())
	requested := gasWord.Uint64()
	if requested > f.Gas {
		requested = f.Gas
	}
	f.Gas -= requested

	ret, gasLeft, success, fatal := m.StaticCall(f, addrWord.Address(), input, requested)
	f.Gas += gasLeft
	if fatal != nil {
		return nil, fatal
	}

	copyLen := min(int(retSize.Uint64()), len(ret))
	if copyLen > 0 {
		f.Memory.Store(retOffset.Uint64(), ret[:copyLen])
	}
	return nil, f.Stack.Push(boolWord(success))
}
