package vm

import (
	"math/big"

	"github.com/evmexec/evmexec/core/types"
)

// BlockContext carries the block metadata available to environmental
// opcodes. Optional fields are nil when the test vector or caller didn't
// supply them; opcodes substitute zero in that case.
type BlockContext struct {
	ChainID    uint64
	Number     *big.Int
	Timestamp  *big.Int
	GasLimit   *big.Int
	BaseFee    *big.Int
	Coinbase   *types.Address
	PrevRandao *types.Word
	Difficulty *big.Int
}

func (b *BlockContext) numberOrZero() *big.Int     { return orZero(b.Number) }
func (b *BlockContext) timestampOrZero() *big.Int  { return orZero(b.Timestamp) }
func (b *BlockContext) gasLimitOrZero() *big.Int   { return orZero(b.GasLimit) }
func (b *BlockContext) baseFeeOrZero() *big.Int    { return orZero(b.BaseFee) }
func (b *BlockContext) difficultyOrZero() *big.Int { return orZero(b.Difficulty) }

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// CallContext is the per-invocation call metadata: who is calling whom,
// with what value and calldata, under what visibility.
type CallContext struct {
	Sender     types.Address
	Recipient  types.Address
	CodeTarget types.Address
	Origin     types.Address
	GasPrice   *big.Int
	Value      *big.Int
	Calldata   []byte
	Static     bool
}
