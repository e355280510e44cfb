package scan

import (
	"math"
)

// Element is the set of value types the harness can move to and from a device.
// It matches the precisions the kernel builder knows how to declare.
type Element interface {
	int32 | int64 | float32 | float64
}

// Operator is a binary associative combine with an identity element.
// Op(Identity(), x) must equal x for every x the problem uses.
type Operator[T Element] interface {
	Name() string
	Op(a, b T) T
	Identity() T
	// Expression is the OKL/C expression combining the macro arguments a and b,
	// used by device engines to generate their kernels.
	Expression() string
}

// Sum adds its operands. Identity is zero.
type Sum[T Element] struct{}

func (Sum[T]) Name() string       { return "Sum" }
func (Sum[T]) Op(a, b T) T        { return a + b }
func (Sum[T]) Identity() T        { return 0 }
func (Sum[T]) Expression() string { return "((a) + (b))" }

// Max keeps the larger operand.
type Max[T Element] struct {
	identity T
}

// NewMax returns a max operator whose identity is the true minimum of T,
// so negative-only inputs scan correctly.
func NewMax[T Element]() Max[T] {
	return Max[T]{identity: Lowest[T]()}
}

// NewMaxWithIdentity pins the identity to a caller-chosen floor. The caller is
// responsible for no input falling below it.
func NewMaxWithIdentity[T Element](identity T) Max[T] {
	return Max[T]{identity: identity}
}

func (Max[T]) Name() string { return "Max" }
func (Max[T]) Op(a, b T) T {
	if a > b {
		return a
	}
	return b
}
func (m Max[T]) Identity() T      { return m.identity }
func (Max[T]) Expression() string { return "(((a) > (b)) ? (a) : (b))" }

// Min keeps the smaller operand. Identity is the largest value of T.
type Min[T Element] struct{}

func (Min[T]) Name() string { return "Min" }
func (Min[T]) Op(a, b T) T {
	if a < b {
		return a
	}
	return b
}
func (Min[T]) Identity() T        { return Highest[T]() }
func (Min[T]) Expression() string { return "(((a) < (b)) ? (a) : (b))" }

// Lowest returns the smallest value representable by T (-Inf for floats).
func Lowest[T Element]() T {
	var zero T
	switch p := any(&zero).(type) {
	case *int32:
		*p = math.MinInt32
	case *int64:
		*p = math.MinInt64
	case *float32:
		*p = float32(math.Inf(-1))
	case *float64:
		*p = math.Inf(-1)
	default:
		panic("scan: unsupported element type")
	}
	return zero
}

// Highest returns the largest value representable by T (+Inf for floats).
func Highest[T Element]() T {
	var zero T
	switch p := any(&zero).(type) {
	case *int32:
		*p = math.MaxInt32
	case *int64:
		*p = math.MaxInt64
	case *float32:
		*p = float32(math.Inf(1))
	case *float64:
		*p = math.Inf(1)
	default:
		panic("scan: unsupported element type")
	}
	return zero
}

// ByName resolves an operator from its command-line name.
func ByName[T Element](name string) (Operator[T], bool) {
	switch name {
	case "sum", "Sum":
		return Sum[T]{}, true
	case "max", "Max":
		return NewMax[T](), true
	case "min", "Min":
		return Min[T]{}, true
	}
	return nil, false
}
