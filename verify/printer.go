package verify

import (
	"fmt"
	"io"
)

// ValuePrinter renders one element for verbose output
type ValuePrinter[T any] func(w io.Writer, v T)

// DefaultPrinter prints v with its default format
func DefaultPrinter[T any](w io.Writer, v T) {
	fmt.Fprint(w, v)
}

// PrintValues writes every element of data followed by ", "
func PrintValues[T any](w io.Writer, data []T, printer ValuePrinter[T]) {
	if printer == nil {
		printer = DefaultPrinter[T]
	}
	for _, v := range data {
		printer(w, v)
		fmt.Fprint(w, ", ")
	}
}
