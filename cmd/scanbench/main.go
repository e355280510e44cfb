package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/notargets/ScanKernel/device"
	"github.com/notargets/ScanKernel/engine"
	"github.com/notargets/ScanKernel/runner"
	"github.com/notargets/ScanKernel/scan"
	"github.com/notargets/ScanKernel/utils"
)

type options struct {
	n          int
	iterations int
	op         string
	elemType   string
	exclusive  bool
	verbose    bool
	maxCTAs    int
	genre      string
	backend    string
	props      string
	progress   bool
	seed       uint64
}

func main() {
	var opts options
	flag.IntVar(&opts.n, "n", 1<<20, "number of elements")
	flag.IntVar(&opts.iterations, "i", 100, "timed iterations")
	flag.StringVar(&opts.op, "op", "sum", "operator: sum, max, min")
	flag.StringVar(&opts.elemType, "type", "int32", "element type: int32, int64, float32, float64")
	flag.BoolVar(&opts.exclusive, "exclusive", false, "exclusive scan")
	flag.BoolVar(&opts.verbose, "verbose", false, "print every output element")
	flag.IntVar(&opts.maxCTAs, "max-ctas", 0, "maximum blocks per launch (0: engine default)")
	flag.StringVar(&opts.genre, "genre", "unknown", "problem size genre: unknown, small, large")
	flag.StringVar(&opts.backend, "backend", "occa", "engine backend: occa, host")
	flag.StringVar(&opts.props, "props", "", `OCCA device properties, e.g. {"mode": "CUDA", "device_id": 0}`)
	flag.BoolVar(&opts.progress, "progress", false, "show a progress bar over the timed iterations")
	flag.Uint64Var(&opts.seed, "seed", 1, "seed for random max/min inputs")
	flag.Parse()

	retcode := 0
	defer func() { os.Exit(retcode) }()

	var passed bool
	var err error
	switch opts.elemType {
	case "int32":
		passed, err = run[int32](opts)
	case "int64":
		passed, err = run[int64](opts)
	case "float32":
		passed, err = run[float32](opts)
	case "float64":
		passed, err = run[float64](opts)
	default:
		err = fmt.Errorf("unsupported element type %q", opts.elemType)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "scanbench: %v\n", err)
		retcode = 1
		return
	}
	if !passed {
		retcode = 2
	}
}

func run[T scan.Element](opts options) (bool, error) {
	op, ok := scan.ByName[T](opts.op)
	if !ok {
		return false, fmt.Errorf("unknown operator %q", opts.op)
	}
	genre, err := engine.ParseGenre(opts.genre)
	if err != nil {
		return false, err
	}
	if opts.n < 0 {
		return false, fmt.Errorf("invalid element count %d", opts.n)
	}
	if _, isSum := op.(scan.Sum[T]); isSum {
		if limit := exactSumLimit[T](); limit > 0 && opts.n > limit {
			return false, fmt.Errorf("%s sum over %d ones exceeds %d, the largest count whose prefixes are exact",
				opts.elemType, opts.n, limit)
		}
	}

	data := problem[T](op, opts.n, opts.seed)
	reference := scan.Reference(op, data, opts.exclusive)

	cfg := runner.DefaultConfig[T]()
	cfg.Exclusive = opts.exclusive
	cfg.Genre = genre
	cfg.MaxCTAs = opts.maxCTAs
	cfg.Iterations = opts.iterations
	cfg.Verbose = opts.verbose
	if opts.progress && opts.iterations > 0 {
		bar := progressbar.Default(int64(opts.iterations), "timing")
		defer bar.Finish()
		cfg.OnIteration = func(int) { bar.Add(1) }
	}

	var res *runner.Result[T]
	switch opts.backend {
	case "host":
		res, err = runner.TimedScan[T](device.HostAllocator{}, engine.NewHostEngine[T](), op, data, reference, cfg)
	case "occa":
		res, err = runOCCA(op, data, reference, cfg, opts.props)
	default:
		return false, fmt.Errorf("unknown backend %q", opts.backend)
	}
	if err != nil {
		return false, err
	}
	return res.Passed(), nil
}

func runOCCA[T scan.Element](op scan.Operator[T], data, reference []T, cfg runner.Config[T],
	props string) (*runner.Result[T], error) {
	var backends []string
	if props != "" {
		backends = []string{props}
	}
	dev, err := utils.CreateDevice(backends...)
	if err != nil {
		return nil, err
	}
	defer dev.Free()

	eng := engine.NewOCCAEngine[T](dev)
	defer eng.Free()
	return runner.TimedScan[T](device.NewOCCAAllocator(dev), eng, op, data, reference, cfg)
}

// exactSumLimit is the largest all-ones sum for which every prefix is
// exactly representable in T, or 0 when the int range is never exceeded.
// Integer sums wrap identically under any grouping.
func exactSumLimit[T scan.Element]() int {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return 1 << 24
	}
	return 0
}

// problem builds the input: all ones for sums, seeded random values otherwise
func problem[T scan.Element](op scan.Operator[T], n int, seed uint64) []T {
	data := make([]T, n)
	if _, isSum := op.(scan.Sum[T]); isSum {
		for i := range data {
			data[i] = 1
		}
		return data
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range data {
		data[i] = T(rng.Int32N(2001) - 1000)
	}
	return data
}
