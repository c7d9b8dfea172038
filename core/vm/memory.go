package vm

import "github.com/evmexec/evmexec/core/types"

// Memory is the byte-addressable, zero-initialized memory of one frame. It
// is expanded to 32-byte granularity on any access that touches bytes past
// the current length.
type Memory struct {
	store []byte
}

// NewMemory returns an empty memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Len returns the current physical length, always a multiple of 32.
func (m *Memory) Len() int { return len(m.store) }

// Size returns the word-aligned length (identical to Len, kept as a
// distinct accessor since MSIZE and internal growth bookkeeping read it
// under different names).
func (m *Memory) Size() uint64 { return uint64(len(m.store)) }

// Expansion reports how many additional bytes touching [offset,
// offset+size) would require, word-aligned, without mutating the memory.
// Used by the gas layer to price expansion before committing it.
func (m *Memory) Expansion(offset, size uint64) uint64 {
	if size == 0 {
		return 0
	}
	needed := wordAlign(offset + size)
	if needed <= uint64(len(m.store)) {
		return 0
	}
	return needed - uint64(len(m.store))
}

// Resize grows the store to cover [0, offset+size), word-aligned, zero
// filling the new bytes. A no-op if already large enough.
func (m *Memory) Resize(offset, size uint64) {
	if size == 0 {
		return
	}
	needed := wordAlign(offset + size)
	if needed <= uint64(len(m.store)) {
		return
	}
	grown := make([]byte, needed)
	copy(grown, m.store)
	m.store = grown
}

// Load returns a copy of [offset, offset+size), expanding memory as needed.
func (m *Memory) Load(offset, size uint64) []byte {
	if size == 0 {
		return []byte{}
	}
	m.Resize(offset, size)
	out := make([]byte, size)
	copy(out, m.store[offset:offset+size])
	return out
}

// Store writes data at offset, expanding memory as needed.
func (m *Memory) Store(offset uint64, data []byte) {
	if len(data) == 0 {
		return
	}
	m.Resize(offset, uint64(len(data)))
	copy(m.store[offset:], data)
}

// StoreWord right-aligns w into 32 bytes at offset (MSTORE).
func (m *Memory) StoreWord(offset uint64, w types.Word) {
	m.Store(offset, w[:])
}

// StoreByte writes the single byte b at offset (MSTORE8 passes the
// least-significant byte of its value word).
func (m *Memory) StoreByte(offset uint64, b byte) {
	m.Store(offset, []byte{b})
}

func wordAlign(n uint64) uint64 {
	return (n + 31) / 32 * 32
}
