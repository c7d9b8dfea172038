// Package state implements the world state: the mapping from address to
// account record that the interpreter's sub-call and create machinery
// snapshots and restores by value-copy.
package state

import (
	"errors"
	"math/big"

	"github.com/evmexec/evmexec/core/types"
	"github.com/evmexec/evmexec/crypto"
)

// ErrInsufficientBalance is returned by Transfer when the sender's balance
// is less than the requested value.
var ErrInsufficientBalance = errors.New("state: insufficient balance")

// WorldState owns every account reachable during one top-level execution.
// The top-level frame owns the canonical instance; sub-frames run against a
// Clone and the parent either adopts it (Adopt) or discards it.
type WorldState struct {
	accounts map[types.Address]*types.Account
	// destructs accumulates addresses queued by SELFDESTRUCT during the
	// current frame; committed by the caller only on Stop/Return.
	destructs map[types.Address]struct{}
}

// New returns an empty world state.
func New() *WorldState {
	return &WorldState{
		accounts:  make(map[types.Address]*types.Account),
		destructs: make(map[types.Address]struct{}),
	}
}

func (s *WorldState) get(addr types.Address) *types.Account {
	return s.accounts[addr]
}

func (s *WorldState) getOrCreate(addr types.Address) *types.Account {
	acc, ok := s.accounts[addr]
	if !ok {
		acc = types.NewAccount()
		s.accounts[addr] = acc
	}
	return acc
}

// Exists reports whether addr currently has an account record. Reads such
// as Balance or Code do not create one; Delete and CommitDestructs remove it.
func (s *WorldState) Exists(addr types.Address) bool {
	_, ok := s.accounts[addr]
	return ok
}

// Balance returns the account's balance, or zero for a never-referenced
// address.
func (s *WorldState) Balance(addr types.Address) *big.Int {
	if acc := s.get(addr); acc != nil {
		return new(big.Int).Set(acc.Balance)
	}
	return new(big.Int)
}

// Nonce returns the account's nonce, or zero if absent.
func (s *WorldState) Nonce(addr types.Address) uint64 {
	if acc := s.get(addr); acc != nil {
		return acc.Nonce
	}
	return 0
}

// SetNonce sets the account's nonce, creating the account if absent.
func (s *WorldState) SetNonce(addr types.Address, nonce uint64) {
	s.getOrCreate(addr).Nonce = nonce
}

// Code returns the account's code, or nil if absent.
func (s *WorldState) Code(addr types.Address) []byte {
	if acc := s.get(addr); acc != nil {
		return acc.Code
	}
	return nil
}

// CodeSize returns len(Code(addr)).
func (s *WorldState) CodeSize(addr types.Address) int {
	return len(s.Code(addr))
}

// CodeHash returns the Keccak-256 hash of the account's code, or the
// canonical empty-code hash if the account has no code.
func (s *WorldState) CodeHash(addr types.Address) types.Word {
	code := s.Code(addr)
	if len(code) == 0 {
		return crypto.EmptyCodeHash
	}
	return crypto.Keccak256Word(code)
}

// SetCode installs code on addr, creating the account if absent.
func (s *WorldState) SetCode(addr types.Address, code []byte) {
	s.getOrCreate(addr).Code = code
}

// StorageLoad returns the value stored at key, or the zero word if absent.
// Loads also warm-touch the slot.
func (s *WorldState) StorageLoad(addr types.Address, key types.Word) types.Word {
	s.WarmTouch(addr, key)
	if acc := s.get(addr); acc != nil {
		return acc.Storage[key]
	}
	return types.Word{}
}

// StorageStore writes value at key, creating the account if absent.
func (s *WorldState) StorageStore(addr types.Address, key, value types.Word) {
	acc := s.getOrCreate(addr)
	acc.Storage[key] = value
	s.WarmTouch(addr, key)
}

// WarmTouch records key as touched for addr's warm-slot list. The list is
// observed but never consulted for pricing.
func (s *WorldState) WarmTouch(addr types.Address, key types.Word) {
	acc := s.getOrCreate(addr)
	for _, k := range acc.WarmSlots {
		if k == key {
			return
		}
	}
	acc.WarmSlots = append(acc.WarmSlots, key)
}

// Transfer moves value from `from` to `to`. A zero value is always a no-op.
// Fails with ErrInsufficientBalance if from's balance is short; `to` is
// created if it doesn't yet exist.
func (s *WorldState) Transfer(from, to types.Address, value *big.Int) error {
	if value.Sign() == 0 {
		return nil
	}
	sender := s.get(from)
	if sender == nil || sender.Balance.Cmp(value) < 0 {
		return ErrInsufficientBalance
	}
	sender.Balance.Sub(sender.Balance, value)
	recipient := s.getOrCreate(to)
	recipient.Balance.Add(recipient.Balance, value)
	return nil
}

// AddBalance credits addr, creating the account if absent.
func (s *WorldState) AddBalance(addr types.Address, value *big.Int) {
	acc := s.getOrCreate(addr)
	acc.Balance.Add(acc.Balance, value)
}

// CreateAccount installs a fresh account at addr with the given code and
// balance, nonce zero, empty storage -- overwriting any prior record.
func (s *WorldState) CreateAccount(addr types.Address, code []byte, balance *big.Int) {
	acc := types.NewAccount()
	acc.Code = code
	if balance != nil {
		acc.Balance.Set(balance)
	}
	s.accounts[addr] = acc
}

// EnsureAccount creates addr with defaults if it doesn't already exist.
func (s *WorldState) EnsureAccount(addr types.Address) {
	s.getOrCreate(addr)
}

// Delete removes addr's account entirely.
func (s *WorldState) Delete(addr types.Address) {
	delete(s.accounts, addr)
}

// QueueDestruct records addr as pending deletion for the current frame.
func (s *WorldState) QueueDestruct(addr types.Address) {
	s.destructs[addr] = struct{}{}
}

// CommitDestructs deletes every account queued by QueueDestruct. Called by
// the frame driver only when the frame finishes with Stop or Return.
func (s *WorldState) CommitDestructs() {
	for addr := range s.destructs {
		delete(s.accounts, addr)
	}
	s.destructs = make(map[types.Address]struct{})
}

// DiscardDestructs drops the pending-deletion set without applying it.
// Called when the frame reverts.
func (s *WorldState) DiscardDestructs() {
	s.destructs = make(map[types.Address]struct{})
}

// Clone deep-copies the entire world state, including every account's
// storage, for a sub-frame snapshot. Full-state copy-on-call is simple and
// correct; it is not the access-tracked diff a production state database
// would use.
func (s *WorldState) Clone() *WorldState {
	clone := &WorldState{
		accounts:  make(map[types.Address]*types.Account, len(s.accounts)),
		destructs: make(map[types.Address]struct{}),
	}
	for addr, acc := range s.accounts {
		clone.accounts[addr] = acc.Clone()
	}
	return clone
}

// Adopt replaces s's contents with other's -- called by the parent after a
// successful sub-call to merge the child's snapshot back in.
func (s *WorldState) Adopt(other *WorldState) {
	s.accounts = other.accounts
}
