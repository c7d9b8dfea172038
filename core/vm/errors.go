package vm

import "errors"

// Program-level errors: all finalize the current frame as a
// failed run. ErrExecutionReverted is distinguished from the rest because
// REVERT's return data must survive to the parent.
var (
	ErrInvalidJump             = errors.New("vm: invalid jump destination")
	ErrInvalidOpCode           = errors.New("vm: invalid opcode")
	ErrWriteProtection         = errors.New("vm: write protection")
	ErrExecutionReverted       = errors.New("vm: execution reverted")
	ErrMaxCallDepthExceeded    = errors.New("vm: max call depth exceeded")
	ErrReturnDataOutOfBounds   = errors.New("vm: return data out of bounds")
	ErrOutOfGas                = errors.New("vm: out of gas")
	ErrMaxCodeSizeExceeded     = errors.New("vm: max code size exceeded")
	ErrMaxInitCodeSizeExceeded = errors.New("vm: max init code size exceeded")
	ErrContractAddressCollide  = errors.New("vm: contract address collision")
)
