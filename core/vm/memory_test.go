package vm

import "testing"

func TestMemoryWordAlignedGrowth(t *testing.T) {
	m := NewMemory()
	m.Resize(0, 1)
	if m.Len() != 32 {
		t.Fatalf("expected word-aligned growth to 32, got %d", m.Len())
	}
	m.Resize(33, 1)
	if m.Len() != 64 {
		t.Fatalf("expected growth to 64, got %d", m.Len())
	}
}

func TestMemoryStoreLoadRoundTrip(t *testing.T) {
	m := NewMemory()
	data := []byte{1, 2, 3, 4}
	m.Store(10, data)
	got := m.Load(10, 4)
	for i, b := range data {
		if got[i] != b {
			t.Fatalf("byte %d: want %d got %d", i, b, got[i])
		}
	}
}

func TestMemoryExpansionNonMutating(t *testing.T) {
	m := NewMemory()
	needed := m.Expansion(0, 40)
	if needed != 64 {
		t.Fatalf("expected 64 bytes needed, got %d", needed)
	}
	if m.Len() != 0 {
		t.Fatalf("Expansion must not mutate memory, got len=%d", m.Len())
	}
}
