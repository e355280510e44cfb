package engine

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/notargets/gocca"

	"github.com/notargets/ScanKernel/device"
	"github.com/notargets/ScanKernel/runner/builder"
	"github.com/notargets/ScanKernel/scan"
)

// OCCAEngine runs the three-phase scan kernels on an OCCA device. Kernels are
// compiled on first use per operator, so the first call carries JIT cost.
type OCCAEngine[T scan.Element] struct {
	Device *gocca.OCCADevice
	Log    io.Writer

	kernels     map[string]*scanKernels
	partials    *gocca.OCCAMemory
	partialsCap int
}

type scanKernels struct {
	upsweep   *gocca.OCCAKernel
	spine     *gocca.OCCAKernel
	downsweep *gocca.OCCAKernel
}

// NewOCCAEngine creates an engine on device
func NewOCCAEngine[T scan.Element](device *gocca.OCCADevice) *OCCAEngine[T] {
	if device == nil {
		panic("device cannot be nil")
	}
	return &OCCAEngine[T]{
		Device:  device,
		Log:     os.Stdout,
		kernels: make(map[string]*scanKernels),
	}
}

func (e *OCCAEngine[T]) Execute(op scan.Operator[T], req Request) error {
	if err := validate(req); err != nil {
		return newEngineError("occa", "validate", err)
	}
	if req.N > math.MaxInt32 {
		return newEngineError("occa", "validate",
			fmt.Errorf("%d elements exceed the kernel index range", req.N))
	}
	src, err := occaMemory(req.Source)
	if err != nil {
		return newEngineError("occa", "validate", err)
	}
	dst, err := occaMemory(req.Destination)
	if err != nil {
		return newEngineError("occa", "validate", err)
	}

	grid := Plan(req.N, req.MaxCTAs, req.Genre)
	if req.Debug {
		e.printPlan(op, req, grid)
	}
	if req.N == 0 {
		return nil
	}

	kernels, err := e.buildKernels(op)
	if err != nil {
		return newEngineError("occa", "build", err)
	}
	if err := e.reservePartials(grid.Blocks); err != nil {
		return newEngineError("occa", "scratch", err)
	}

	n, chunk, blocks := int32(req.N), int32(grid.Chunk), int32(grid.Blocks)
	exclusive := int32(0)
	if req.Exclusive {
		exclusive = 1
	}
	identity := op.Identity()

	if err := kernels.upsweep.RunWithArgs(n, chunk, blocks, identity, src, e.partials); err != nil {
		return newEngineError("occa", builder.UpsweepKernel, err)
	}
	if err := kernels.spine.RunWithArgs(blocks, identity, e.partials); err != nil {
		return newEngineError("occa", builder.SpineKernel, err)
	}
	if err := kernels.downsweep.RunWithArgs(n, chunk, blocks, exclusive, src, e.partials, dst); err != nil {
		return newEngineError("occa", builder.DownsweepKernel, err)
	}

	e.Device.Finish()
	return nil
}

// Synchronize waits for all queued device work
func (e *OCCAEngine[T]) Synchronize() {
	e.Device.Finish()
}

// Free releases kernels and scratch memory
func (e *OCCAEngine[T]) Free() {
	for _, k := range e.kernels {
		k.upsweep.Free()
		k.spine.Free()
		k.downsweep.Free()
	}
	e.kernels = make(map[string]*scanKernels)
	if e.partials != nil {
		e.partials.Free()
		e.partials = nil
		e.partialsCap = 0
	}
}

func occaMemory(mem device.Memory) (*gocca.OCCAMemory, error) {
	m, ok := mem.(*device.OCCAMemory)
	if !ok || m.Mem == nil {
		return nil, fmt.Errorf("memory of type %T is not OCCA device memory", mem)
	}
	return m.Mem, nil
}

func (e *OCCAEngine[T]) buildKernels(op scan.Operator[T]) (*scanKernels, error) {
	key := op.Name() + " " + op.Expression()
	if k, exists := e.kernels[key]; exists {
		return k, nil
	}

	source := builder.ForOperator(op).KernelSource()
	k := &scanKernels{}
	var err error
	if k.upsweep, err = e.buildKernel(source, builder.UpsweepKernel); err != nil {
		return nil, err
	}
	if k.spine, err = e.buildKernel(source, builder.SpineKernel); err != nil {
		k.upsweep.Free()
		return nil, err
	}
	if k.downsweep, err = e.buildKernel(source, builder.DownsweepKernel); err != nil {
		k.upsweep.Free()
		k.spine.Free()
		return nil, err
	}

	e.kernels[key] = k
	return k, nil
}

func (e *OCCAEngine[T]) buildKernel(source, name string) (*gocca.OCCAKernel, error) {
	var kernel *gocca.OCCAKernel
	var err error

	if e.Device.Mode() == "OpenMP" {
		// Workaround for OCCA bug: OpenMP doesn't get default -O3 flag
		props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
		defer props.Free()
		kernel, err = e.Device.BuildKernelFromString(source, name, props)
	} else {
		kernel, err = e.Device.BuildKernelFromString(source, name, nil)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to build kernel %s: %w", name, err)
	}
	if kernel == nil {
		return nil, fmt.Errorf("kernel build returned nil for %s", name)
	}
	return kernel, nil
}

func (e *OCCAEngine[T]) reservePartials(blocks int) error {
	if blocks <= e.partialsCap && e.partials != nil {
		return nil
	}
	if e.partials != nil {
		e.partials.Free()
		e.partials, e.partialsCap = nil, 0
	}
	mem := e.Device.Malloc(int64(blocks)*device.ElementSize[T](), nil, nil)
	if mem == nil {
		return fmt.Errorf("no memory for %d block partials", blocks)
	}
	e.partials, e.partialsCap = mem, blocks
	return nil
}

func (e *OCCAEngine[T]) printPlan(op scan.Operator[T], req Request, grid Grid) {
	w := e.Log
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "%s %s %s scan: %d elements, genre %s, %d blocks x %d elements\n",
		e.Device.Mode(), op.Name(), scan.Direction(req.Exclusive), req.N, req.Genre, grid.Blocks, grid.Chunk)
}
