package device

import (
	"fmt"
	"unsafe"

	"github.com/notargets/ScanKernel/scan"
)

// Buffers owns the source/destination pair for one benchmark run. Both
// regions always hold exactly N elements of T.
type Buffers[T scan.Element] struct {
	n           int
	source      Memory
	destination Memory
	released    bool
}

// ElementSize returns sizeof(T) in bytes.
func ElementSize[T scan.Element]() int64 {
	var sample T
	return int64(unsafe.Sizeof(sample))
}

// Acquire allocates two regions of n elements each. If the second allocation
// fails the first is freed before the error is returned.
func Acquire[T scan.Element](alloc Allocator, n int) (*Buffers[T], error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid element count %d", n)
	}
	bytes := int64(n) * ElementSize[T]()

	src, err := alloc.Malloc(bytes)
	if err != nil {
		return nil, newAllocationError("source", bytes, err)
	}
	dst, err := alloc.Malloc(bytes)
	if err != nil {
		src.Free()
		return nil, newAllocationError("destination", bytes, err)
	}

	return &Buffers[T]{n: n, source: src, destination: dst}, nil
}

// Len returns the element capacity of each buffer.
func (b *Buffers[T]) Len() int { return b.n }

// Bytes returns the size of each buffer in bytes.
func (b *Buffers[T]) Bytes() int64 { return int64(b.n) * ElementSize[T]() }

// Source returns the input region handle for engine calls.
func (b *Buffers[T]) Source() Memory { return b.source }

// Destination returns the output region handle for engine calls.
func (b *Buffers[T]) Destination() Memory { return b.destination }

// Released reports whether Release has run.
func (b *Buffers[T]) Released() bool { return b == nil || b.released }

// Stage copies host into the source buffer; host must hold exactly N
// elements. On failure both buffers are released before the error is returned.
func (b *Buffers[T]) Stage(host []T) error {
	if b.Released() {
		return newTransferError("source", 0, fmt.Errorf("buffers released"))
	}
	bytes := b.Bytes()
	if len(host) != b.n {
		b.Release()
		return newTransferError("source", bytes,
			fmt.Errorf("host data holds %d elements, need %d", len(host), b.n))
	}
	if b.n == 0 {
		return nil
	}
	if err := b.source.CopyFrom(unsafe.Pointer(&host[0]), bytes); err != nil {
		b.Release()
		return newTransferError("source", bytes, err)
	}
	return nil
}

// Retrieve copies the destination buffer into a new host slice. On failure
// both buffers are released before the error is returned.
func (b *Buffers[T]) Retrieve() ([]T, error) {
	if b.Released() {
		return nil, newTransferError("destination", 0, fmt.Errorf("buffers released"))
	}
	bytes := b.Bytes()
	host := make([]T, b.n)
	if b.n == 0 {
		return host, nil
	}
	if err := b.destination.CopyTo(unsafe.Pointer(&host[0]), bytes); err != nil {
		b.Release()
		return nil, newTransferError("destination", bytes, err)
	}
	return host, nil
}

// Release frees both regions. It is safe to call more than once and on a
// nil Buffers.
func (b *Buffers[T]) Release() {
	if b == nil || b.released {
		return
	}
	b.released = true
	if b.source != nil {
		b.source.Free()
		b.source = nil
	}
	if b.destination != nil {
		b.destination.Free()
		b.destination = nil
	}
}
