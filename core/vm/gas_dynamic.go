package vm

// Dynamic gas functions: evaluated after the constant cost and before the
// memory-expansion surcharge (computed by the run loop from the
// operation's memorySize), from the stack contents the corresponding
// execute function will later consume. Functions that need
// nothing beyond memory expansion (MLOAD, MSTORE, RETURN, REVERT, ...) omit
// dynamicGas entirely and rely on memorySize alone.

func dgasExp(f *Frame, m *Machine) (uint64, error) {
	exp, err := f.Stack.PeekFromTop(1)
	if err != nil {
		return 0, err
	}
	return gasExp(byteLen(exp.Big())), nil
}

func dgasSha3(f *Frame, m *Machine) (uint64, error) {
	_, size := memOffsetSize(0, 1)(f)
	return GasKeccakWord * wordCount(size), nil
}

func dgasCopy(f *Frame, m *Machine) (uint64, error) {
	_, size := memOffsetSize(0, 2)(f)
	return GasVerylow * wordCount(size), nil
}

func dgasExtCodeCopy(f *Frame, m *Machine) (uint64, error) {
	_, size := memOffsetSize(1, 3)(f)
	return GasVerylow * wordCount(size), nil
}

func dgasSstore(f *Frame, m *Machine) (uint64, error) {
	key, err := f.Stack.PeekFromTop(0)
	if err != nil {
		return 0, err
	}
	value, err := f.Stack.PeekFromTop(1)
	if err != nil {
		return 0, err
	}
	current := m.State.StorageLoad(f.Call.Recipient, key)
	return gasSstore(current.IsZero(), value.IsZero()), nil
}

func dgasLog(topics int) dynamicGasFunc {
	return func(f *Frame, m *Machine) (uint64, error) {
		_, size := memOffsetSize(0, 1)(f)
		return gasLog(topics, size), nil
	}
}

func dgasCall(f *Frame, m *Machine) (uint64, error) {
	value, err := f.Stack.PeekFromTop(2)
	if err != nil {
		return 0, err
	}
	if !value.IsZero() {
		return GasCallStipend, nil
	}
	return 0, nil
}

func dgasCallNoValue(f *Frame, m *Machine) (uint64, error) {
	return 0, nil
}

func dgasCreate(f *Frame, m *Machine) (uint64, error) {
	return 0, nil
}

func dgasCreate2(f *Frame, m *Machine) (uint64, error) {
	_, size := memOffsetSize(1, 2)(f)
	return GasKeccakWord * wordCount(size), nil
}

func byteLen(v interface{ BitLen() int }) int {
	return (v.BitLen() + 7) / 8
}
