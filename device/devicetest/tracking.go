// Package devicetest provides allocation-tracking doubles for device tests.
package devicetest

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/notargets/ScanKernel/device"
)

// ErrInjected is returned by every failure the tracking allocator injects.
var ErrInjected = errors.New("injected failure")

// TrackingAllocator wraps host memory and counts live regions. FailOnMalloc
// (1-based) makes that allocation fail; FailCopyFrom / FailCopyTo make the
// corresponding transfers on every region fail.
type TrackingAllocator struct {
	FailOnMalloc int
	FailCopyFrom bool
	FailCopyTo   bool

	mu      sync.Mutex
	mallocs int
	live    int
	frees   int
	doubles int
}

func (a *TrackingAllocator) Malloc(bytes int64) (device.Memory, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mallocs++
	if a.FailOnMalloc == a.mallocs {
		return nil, ErrInjected
	}
	mem, err := device.HostAllocator{}.Malloc(bytes)
	if err != nil {
		return nil, err
	}
	a.live++
	return &trackedMemory{Memory: mem, owner: a}, nil
}

// Live returns the number of regions allocated and not yet freed.
func (a *TrackingAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

// Mallocs returns the number of allocation attempts.
func (a *TrackingAllocator) Mallocs() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mallocs
}

// Frees returns the number of regions freed.
func (a *TrackingAllocator) Frees() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frees
}

// DoubleFrees returns how many times an already-freed region was freed again.
func (a *TrackingAllocator) DoubleFrees() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.doubles
}

type trackedMemory struct {
	device.Memory
	owner *TrackingAllocator
	freed bool
}

func (m *trackedMemory) CopyFrom(src unsafe.Pointer, bytes int64) error {
	if m.owner.FailCopyFrom {
		return ErrInjected
	}
	return m.Memory.CopyFrom(src, bytes)
}

func (m *trackedMemory) CopyTo(dst unsafe.Pointer, bytes int64) error {
	if m.owner.FailCopyTo {
		return ErrInjected
	}
	return m.Memory.CopyTo(dst, bytes)
}

func (m *trackedMemory) Free() {
	m.owner.mu.Lock()
	defer m.owner.mu.Unlock()
	if m.freed {
		m.owner.doubles++
		return
	}
	m.freed = true
	m.owner.live--
	m.owner.frees++
	m.Memory.Free()
}
