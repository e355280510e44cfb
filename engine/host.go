package engine

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sync/errgroup"

	"github.com/notargets/ScanKernel/device"
	"github.com/notargets/ScanKernel/scan"
)

// HostEngine runs the reduce-then-scan on the CPU, one goroutine per block.
// It works against any device.Memory by staging through host scratch space.
type HostEngine[T scan.Element] struct {
	// Workers caps concurrent blocks; GOMAXPROCS when zero
	Workers int
	// Log receives debug plans; os.Stdout when nil
	Log io.Writer

	in       []T
	out      []T
	partials []T
}

// NewHostEngine creates a HostEngine using every available CPU.
func NewHostEngine[T scan.Element]() *HostEngine[T] {
	return &HostEngine[T]{Workers: runtime.GOMAXPROCS(0), Log: os.Stdout}
}

func (e *HostEngine[T]) Execute(op scan.Operator[T], req Request) error {
	if err := validate(req); err != nil {
		return newEngineError("host", "validate", err)
	}
	grid := Plan(req.N, req.MaxCTAs, req.Genre)
	if req.Debug {
		e.printPlan(op, req, grid)
	}
	if req.N == 0 {
		return nil
	}

	e.reserve(req.N, grid.Blocks)
	bytes := int64(req.N) * device.ElementSize[T]()
	if err := req.Source.CopyTo(unsafe.Pointer(&e.in[0]), bytes); err != nil {
		return newEngineError("host", "load", err)
	}

	identity := op.Identity()
	g := new(errgroup.Group)
	g.SetLimit(e.workers())

	// Upsweep: per-block totals
	for b := 0; b < grid.Blocks; b++ {
		g.Go(func() error {
			start, end := grid.Bounds(b, req.N)
			acc := identity
			for _, v := range e.in[start:end] {
				acc = op.Op(acc, v)
			}
			e.partials[b] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return newEngineError("host", "upsweep", err)
	}

	// Spine: exclusive scan of block totals
	acc := identity
	for b := 0; b < grid.Blocks; b++ {
		total := e.partials[b]
		e.partials[b] = acc
		acc = op.Op(acc, total)
	}

	// Downsweep: rescan each block seeded with its prefix
	for b := 0; b < grid.Blocks; b++ {
		g.Go(func() error {
			start, end := grid.Bounds(b, req.N)
			acc := e.partials[b]
			for i := start; i < end; i++ {
				if req.Exclusive {
					e.out[i] = acc
					acc = op.Op(acc, e.in[i])
				} else {
					acc = op.Op(acc, e.in[i])
					e.out[i] = acc
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return newEngineError("host", "downsweep", err)
	}

	if err := req.Destination.CopyFrom(unsafe.Pointer(&e.out[0]), bytes); err != nil {
		return newEngineError("host", "store", err)
	}
	return nil
}

func (e *HostEngine[T]) workers() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// reserve grows the scratch slices; later calls of the same size reuse them.
func (e *HostEngine[T]) reserve(n, blocks int) {
	if cap(e.in) < n {
		e.in = make([]T, n)
		e.out = make([]T, n)
	}
	e.in, e.out = e.in[:n], e.out[:n]
	if cap(e.partials) < blocks {
		e.partials = make([]T, blocks)
	}
	e.partials = e.partials[:blocks]
}

func (e *HostEngine[T]) printPlan(op scan.Operator[T], req Request, grid Grid) {
	w := e.Log
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "Host %s %s scan: %d elements, genre %s, %d blocks x %d elements, %d workers\n",
		op.Name(), scan.Direction(req.Exclusive), req.N, req.Genre, grid.Blocks, grid.Chunk, e.workers())
}
