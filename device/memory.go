package device

import (
	"fmt"
	"unsafe"
)

// Memory is one region of device-resident storage.
type Memory interface {
	// CopyFrom copies bytes from host memory at src into the region.
	CopyFrom(src unsafe.Pointer, bytes int64) error
	// CopyTo copies bytes from the region into host memory at dst.
	CopyTo(dst unsafe.Pointer, bytes int64) error
	Size() int64
	Free()
}

// Allocator hands out device memory regions.
type Allocator interface {
	Malloc(bytes int64) (Memory, error)
}

// HostAllocator backs "device" memory with ordinary Go heap storage.
// It serves the host engine and any run without an OCCA backend.
type HostAllocator struct{}

func (HostAllocator) Malloc(bytes int64) (Memory, error) {
	if bytes < 0 {
		return nil, fmt.Errorf("negative size %d", bytes)
	}
	return &HostMemory{data: make([]byte, bytes)}, nil
}

// HostMemory is a heap-backed Memory region.
type HostMemory struct {
	data  []byte
	freed bool
}

func (m *HostMemory) check(bytes int64) error {
	if m.freed {
		return fmt.Errorf("memory already freed")
	}
	if bytes < 0 || bytes > int64(len(m.data)) {
		return fmt.Errorf("copy of %d bytes exceeds region of %d bytes", bytes, len(m.data))
	}
	return nil
}

func (m *HostMemory) CopyFrom(src unsafe.Pointer, bytes int64) error {
	if err := m.check(bytes); err != nil {
		return err
	}
	if bytes == 0 {
		return nil
	}
	copy(m.data[:bytes], unsafe.Slice((*byte)(src), bytes))
	return nil
}

func (m *HostMemory) CopyTo(dst unsafe.Pointer, bytes int64) error {
	if err := m.check(bytes); err != nil {
		return err
	}
	if bytes == 0 {
		return nil
	}
	copy(unsafe.Slice((*byte)(dst), bytes), m.data[:bytes])
	return nil
}

func (m *HostMemory) Size() int64 { return int64(len(m.data)) }

func (m *HostMemory) Free() {
	m.freed = true
	m.data = nil
}
