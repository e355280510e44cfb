package runner

import (
	"fmt"
	"io"
	"os"

	"github.com/notargets/ScanKernel/scan"
	"github.com/notargets/ScanKernel/verify"
)

// Reporter prints run results. It only writes; it never changes run state.
type Reporter[T scan.Element] struct {
	Output  io.Writer
	Printer verify.ValuePrinter[T]
	Verbose bool
}

// Report prints the output elements when verbose, then one summary line:
//
//	Sum inclusive scan: 10 iterations, 1048576 elements, 0.512 device ms, ... CORRECT
func (r Reporter[T]) Report(opName string, exclusive bool, stats Statistics,
	outcome verify.Outcome[T], output []T) {
	w := r.Output
	if w == nil {
		w = os.Stdout
	}

	if r.Verbose {
		fmt.Fprintf(w, "\nData:\n")
		verify.PrintValues(w, output, r.Printer)
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "\n%s %s scan: %d iterations, %d elements, ",
		opName, scan.Direction(exclusive), stats.Iterations, stats.Elements)
	fmt.Fprintf(w, "%f device ms, %f x10^9 elts/sec, %f x10^9 B/sec, %s\n",
		stats.AvgMillis, stats.GigaElementsPerSec(), stats.GigaBytesPerSec(), outcome)

	if r.Verbose && stats.Iterations > 0 {
		fmt.Fprintf(w, "\tsamples: min %f ms, max %f ms, stddev %f ms\n",
			stats.MinMillis, stats.MaxMillis, stats.StdDevMillis)
	}
}
