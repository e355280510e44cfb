// Package runner drives timed scan benchmarks: it stages a problem on the
// device, runs one warm-up and K timed engine calls, then verifies and
// reports the result.
package runner

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/notargets/ScanKernel/device"
	"github.com/notargets/ScanKernel/engine"
	"github.com/notargets/ScanKernel/scan"
	"github.com/notargets/ScanKernel/verify"
)

// ErrReferenceLength is returned when the reference and input differ in length.
var ErrReferenceLength = errors.New("reference length does not match input length")

// Config selects the scan variant and measurement protocol for one run
type Config[T scan.Element] struct {
	Exclusive  bool
	Genre      engine.ProbSizeGenre
	MaxCTAs    int
	Iterations int
	Verbose    bool

	// Output receives the report; os.Stdout when nil
	Output  io.Writer
	Printer verify.ValuePrinter[T]

	// OnIteration is called after each timed iteration, outside the timed window
	OnIteration func(i int)
	// Clock defaults to time.Now
	Clock Clock
}

// DefaultConfig returns an inclusive scan with 100 timed iterations
func DefaultConfig[T scan.Element]() Config[T] {
	return Config[T]{
		Genre:      engine.Unknown,
		Iterations: 100,
		Output:     os.Stdout,
		Printer:    verify.DefaultPrinter[T],
	}
}

// Result holds everything one run produced
type Result[T scan.Element] struct {
	Operator  string
	Exclusive bool
	Stats     Statistics
	Outcome   verify.Outcome[T]
	Output    []T
	Phase     Phase
}

// Passed reports whether the output matched the reference
func (r *Result[T]) Passed() bool {
	return r != nil && r.Outcome.Passed
}

// TimedScan runs one benchmark of eng over data and checks the output
// against reference. Buffers come from alloc and are released on every path.
// A verification mismatch is reported in the Result, not as an error.
func TimedScan[T scan.Element](alloc device.Allocator, eng engine.Engine[T], op scan.Operator[T],
	data, reference []T, cfg Config[T]) (res *Result[T], err error) {

	if len(reference) != len(data) {
		return nil, fmt.Errorf("%w: %d reference elements for %d inputs",
			ErrReferenceLength, len(reference), len(data))
	}
	if cfg.Iterations < 0 {
		return nil, fmt.Errorf("invalid iteration count %d", cfg.Iterations)
	}
	n := len(data)
	res = &Result[T]{Operator: op.Name(), Exclusive: cfg.Exclusive, Phase: Idle}

	bufs, err := device.Acquire[T](alloc, n)
	if err != nil {
		res.Phase = Released
		return res, fmt.Errorf("%s %s scan acquire: %w", op.Name(), scan.Direction(cfg.Exclusive), err)
	}
	defer func() {
		bufs.Release()
		res.Phase = Released
	}()
	res.Phase = Acquired

	fail := func(err error) (*Result[T], error) {
		return res, fmt.Errorf("%s %s scan after %s: %w", op.Name(), scan.Direction(cfg.Exclusive), res.Phase, err)
	}

	if err = bufs.Stage(data); err != nil {
		return fail(err)
	}
	res.Phase = Staged

	req := engine.Request{
		Destination: bufs.Destination(),
		Source:      bufs.Source(),
		N:           n,
		MaxCTAs:     cfg.MaxCTAs,
		Exclusive:   cfg.Exclusive,
		Genre:       cfg.Genre,
	}

	// One untimed call to allocate scratch space, compile kernels and prime caches
	warmup := req
	warmup.Debug = true
	if err = eng.Execute(op, warmup); err != nil {
		return fail(fmt.Errorf("warm-up: %w", err))
	}
	engine.Synchronize(eng)
	res.Phase = WarmedUp

	res.Phase = Timing
	watch := newStopwatch(cfg.Clock)
	samples := make([]float64, 0, cfg.Iterations)
	for i := 0; i < cfg.Iterations; i++ {
		watch.Start()
		if err = eng.Execute(op, req); err != nil {
			return fail(fmt.Errorf("iteration %d: %w", i, err))
		}
		engine.Synchronize(eng)
		samples = append(samples, millis(watch.Stop()))

		if cfg.OnIteration != nil {
			cfg.OnIteration(i)
		}
	}
	res.Stats = ComputeStatistics(samples, n, device.ElementSize[T]())

	if res.Output, err = bufs.Retrieve(); err != nil {
		return fail(err)
	}
	res.Phase = Retrieved

	if res.Outcome, err = verify.Compare(res.Output, reference, n); err != nil {
		return fail(err)
	}
	res.Phase = Verified

	Reporter[T]{Output: cfg.Output, Printer: cfg.Printer, Verbose: cfg.Verbose}.
		Report(op.Name(), cfg.Exclusive, res.Stats, res.Outcome, res.Output)
	res.Phase = Reported

	return res, nil
}
