package harness

import "fmt"

// FormatResult renders one result as the CLI's diagnostic line: the failing
// test's name, its hint, and the expected-vs-actual diffs.
func FormatResult(v Vector, r Result) string {
	if r.Fatal != nil {
		return fmt.Sprintf("FAIL %s: fatal: %v", r.Name, r.Fatal)
	}
	if r.Passed {
		return fmt.Sprintf("PASS %s", r.Name)
	}
	out := fmt.Sprintf("FAIL %s (%s)", r.Name, v.Hint)
	for _, d := range r.Diffs {
		out += "\n  " + d
	}
	return out
}

// FirstFailure returns the index of the first failing result, or -1 if the
// summary is all-pass.
func (s Summary) FirstFailure() int {
	for i, r := range s.Results {
		if !r.Passed {
			return i
		}
	}
	return -1
}
