// Package verify checks scan output against a reference sequence.
package verify

import (
	"fmt"
)

// Outcome is the result of comparing output to its reference. A mismatch is
// an outcome, not an error: the run still reports its throughput.
type Outcome[T comparable] struct {
	Passed   bool
	Count    int
	Index    int
	Actual   T
	Expected T
}

// Compare checks the first n elements of actual against expected with exact
// equality and stops at the first mismatch. Either slice holding fewer than
// n elements is a configuration error.
func Compare[T comparable](actual, expected []T, n int) (Outcome[T], error) {
	if n < 0 || len(actual) < n || len(expected) < n {
		return Outcome[T]{}, fmt.Errorf("cannot compare %d elements: actual has %d, expected has %d",
			n, len(actual), len(expected))
	}
	for i := 0; i < n; i++ {
		if actual[i] != expected[i] {
			return Outcome[T]{Count: n, Index: i, Actual: actual[i], Expected: expected[i]}, nil
		}
	}
	return Outcome[T]{Passed: true, Count: n, Index: -1}, nil
}

func (o Outcome[T]) String() string {
	if o.Passed {
		return "CORRECT"
	}
	return fmt.Sprintf("INCORRECT: [%d]: %v != %v", o.Index, o.Actual, o.Expected)
}
