package harness

import "testing"

func TestRunOnePass(t *testing.T) {
	v := Vector{
		Name: "add",
		Code: CodeSpec{Bin: "6001600201"}, // PUSH1 1, PUSH1 2, ADD
		Expect: ExpectSpec{
			Success: true,
			Stack:   []string{"0x03"},
		},
	}
	r := RunOne(v)
	if r.Fatal != nil {
		t.Fatalf("unexpected fatal: %v", r.Fatal)
	}
	if !r.Passed {
		t.Fatalf("expected pass, diffs: %v", r.Diffs)
	}
}

func TestRunOneFailsOnMismatch(t *testing.T) {
	v := Vector{
		Name: "add-wrong-expectation",
		Code: CodeSpec{Bin: "6001600201"},
		Expect: ExpectSpec{
			Success: true,
			Stack:   []string{"0x04"},
		},
	}
	r := RunOne(v)
	if r.Fatal != nil {
		t.Fatalf("unexpected fatal: %v", r.Fatal)
	}
	if r.Passed {
		t.Fatalf("expected failure on stack mismatch")
	}
	if len(r.Diffs) == 0 {
		t.Fatalf("expected a diff describing the mismatch")
	}
}

func TestRunAllSummary(t *testing.T) {
	vectors := []Vector{
		{Name: "pass", Code: CodeSpec{Bin: "6001600201"}, Expect: ExpectSpec{Success: true, Stack: []string{"0x03"}}},
		{Name: "fail", Code: CodeSpec{Bin: "6001600201"}, Expect: ExpectSpec{Success: true, Stack: []string{"0x04"}}},
	}
	summary := RunAll(vectors)
	if summary.AllPassed() {
		t.Fatalf("expected AllPassed=false")
	}
	if idx := summary.FirstFailure(); idx != 1 {
		t.Fatalf("expected first failure at index 1, got %d", idx)
	}
}

func TestRunOneRevert(t *testing.T) {
	v := Vector{
		Name:   "revert",
		Code:   CodeSpec{Bin: "60006000fd"}, // PUSH1 0, PUSH1 0, REVERT
		Expect: ExpectSpec{Success: false},
	}
	r := RunOne(v)
	if r.Fatal != nil {
		t.Fatalf("unexpected fatal: %v", r.Fatal)
	}
	if !r.Passed {
		t.Fatalf("expected pass (success=false matches expect), diffs: %v", r.Diffs)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/evm.json"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
