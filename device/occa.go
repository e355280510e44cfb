package device

import (
	"fmt"
	"unsafe"

	"github.com/notargets/gocca"
)

// OCCAAllocator allocates regions in an OCCA device's global memory.
type OCCAAllocator struct {
	Device *gocca.OCCADevice
}

// NewOCCAAllocator wraps device. It panics on a nil device, matching how the
// runner treats a missing device.
func NewOCCAAllocator(device *gocca.OCCADevice) *OCCAAllocator {
	if device == nil {
		panic("device cannot be nil")
	}
	return &OCCAAllocator{Device: device}
}

func (a *OCCAAllocator) Malloc(bytes int64) (Memory, error) {
	if bytes < 0 {
		return nil, fmt.Errorf("negative size %d", bytes)
	}
	// OCCA rejects zero-byte allocations; an empty problem still gets a handle
	allocBytes := bytes
	if allocBytes == 0 {
		allocBytes = 1
	}
	mem := a.Device.Malloc(allocBytes, nil, nil)
	if mem == nil {
		return nil, fmt.Errorf("%s device returned no memory", a.Device.Mode())
	}
	return &OCCAMemory{Mem: mem, size: bytes}, nil
}

// OCCAMemory adapts gocca memory to the Memory interface.
type OCCAMemory struct {
	Mem   *gocca.OCCAMemory
	size  int64
	freed bool
}

func (m *OCCAMemory) check(bytes int64) error {
	if m.freed || m.Mem == nil {
		return fmt.Errorf("memory already freed")
	}
	if bytes < 0 || bytes > m.size {
		return fmt.Errorf("copy of %d bytes exceeds region of %d bytes", bytes, m.size)
	}
	return nil
}

func (m *OCCAMemory) CopyFrom(src unsafe.Pointer, bytes int64) error {
	if err := m.check(bytes); err != nil {
		return err
	}
	if bytes == 0 {
		return nil
	}
	m.Mem.CopyFrom(src, bytes)
	return nil
}

func (m *OCCAMemory) CopyTo(dst unsafe.Pointer, bytes int64) error {
	if err := m.check(bytes); err != nil {
		return err
	}
	if bytes == 0 {
		return nil
	}
	m.Mem.CopyTo(dst, bytes)
	return nil
}

func (m *OCCAMemory) Size() int64 { return m.size }

func (m *OCCAMemory) Free() {
	if m.freed {
		return
	}
	m.freed = true
	if m.Mem != nil {
		m.Mem.Free()
	}
}
