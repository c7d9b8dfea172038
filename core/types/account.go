package types

import "math/big"

// Log is a single emitted LOGn record: the emitting address, 0-4 topic
// words, and the data bytes. Topics and Data are copied out of memory when
// the log is built so that later memory writes cannot alias the record.
type Log struct {
	Address Address
	Topics  []Word
	Data    []byte
}

// Account is the world-state record for one address: balance, nonce, code,
// and storage. A cleared account has balance=0, nonce=0, empty code, and
// empty storage.
type Account struct {
	Balance *big.Int
	Nonce   uint64
	Code    []byte
	Storage map[Word]Word

	// WarmSlots records storage keys touched during the current
	// transaction. Observed but not charged differentially: a hook for a
	// future EIP-2929 integration.
	WarmSlots []Word
}

// NewAccount returns the default record for an address referenced for the
// first time: zero balance, zero nonce, no code, empty storage.
func NewAccount() *Account {
	return &Account{
		Balance: new(big.Int),
		Storage: make(map[Word]Word),
	}
}

// Clone deep-copies the account, including its storage map, so that a child
// frame's mutations cannot be observed by the parent until adopted.
func (a *Account) Clone() *Account {
	clone := &Account{
		Balance: new(big.Int).Set(a.Balance),
		Nonce:   a.Nonce,
		Storage: make(map[Word]Word, len(a.Storage)),
	}
	if a.Code != nil {
		clone.Code = append([]byte(nil), a.Code...)
	}
	for k, v := range a.Storage {
		clone.Storage[k] = v
	}
	clone.WarmSlots = append([]Word(nil), a.WarmSlots...)
	return clone
}

// Empty reports whether the account has no balance, no nonce activity, and
// no code -- the EIP-161 notion of an "empty" account.
func (a *Account) Empty() bool {
	return a.Balance.Sign() == 0 && a.Nonce == 0 && len(a.Code) == 0
}
