package vm

import (
	"errors"
	"math/big"
	"testing"

	"github.com/evmexec/evmexec/core/types"
)

func wordN(n uint64) types.Word {
	return types.BigToWord(new(big.Int).SetUint64(n))
}

func TestStackPushPop(t *testing.T) {
	st := NewStack()
	if err := st.Push(wordN(1)); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := st.Push(wordN(2)); err != nil {
		t.Fatalf("push: %v", err)
	}
	v, err := st.Pop()
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if v != wordN(2) {
		t.Fatalf("expected top=2, got %v", v)
	}
	if st.Len() != 1 {
		t.Fatalf("expected len=1, got %d", st.Len())
	}
}

func TestStackUnderflow(t *testing.T) {
	st := NewStack()
	if _, err := st.Pop(); !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("expected ErrStackUnderflow, got %v", err)
	}
}

func TestStackOverflow(t *testing.T) {
	st := NewStack()
	for i := 0; i < stackLimit; i++ {
		if err := st.Push(wordN(uint64(i))); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := st.Push(wordN(9999)); !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("expected ErrStackOverflow, got %v", err)
	}
}

func TestStackDupSwap(t *testing.T) {
	st := NewStack()
	st.Push(wordN(1))
	st.Push(wordN(2))
	st.Push(wordN(3))
	if err := st.Dup(2); err != nil {
		t.Fatalf("dup: %v", err)
	}
	top, _ := st.Pop()
	if top != wordN(2) {
		t.Fatalf("dup 2 expected 2, got %v", top)
	}
	if err := st.SwapWithTop(2); err != nil {
		t.Fatalf("swap: %v", err)
	}
	top, _ = st.Pop()
	if top != wordN(1) {
		t.Fatalf("swap 2 expected top=1, got %v", top)
	}
}

func TestStackTopFirst(t *testing.T) {
	st := NewStack()
	st.Push(wordN(1))
	st.Push(wordN(2))
	st.Push(wordN(3))
	got := st.TopFirst()
	want := []types.Word{wordN(3), wordN(2), wordN(1)}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("TopFirst mismatch at %d: want %v got %v", i, want[i], got[i])
		}
	}
}
