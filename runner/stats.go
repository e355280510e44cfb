package runner

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PassesPerElement is the reporting convention for bytes moved per element:
// one read and one write of the working set plus one pass attributable to the
// reduce-then-scan access pattern.
const PassesPerElement = 3

// Statistics summarizes the timed iterations of one run. All times are in
// milliseconds of device time.
type Statistics struct {
	Iterations  int
	Elements    int
	ElementSize int64

	Samples      []float64
	TotalMillis  float64
	AvgMillis    float64
	MinMillis    float64
	MaxMillis    float64
	StdDevMillis float64

	ElementsPerSec float64
	BytesPerSec    float64
}

// ComputeStatistics derives latency and throughput from per-iteration samples.
// With no samples, or a zero average, every derived figure is zero.
func ComputeStatistics(samples []float64, n int, elementSize int64) Statistics {
	s := Statistics{
		Iterations:  len(samples),
		Elements:    n,
		ElementSize: elementSize,
		Samples:     samples,
	}
	if len(samples) == 0 {
		return s
	}

	s.TotalMillis = floats.Sum(samples)
	s.AvgMillis = s.TotalMillis / float64(len(samples))
	s.MinMillis = floats.Min(samples)
	s.MaxMillis = floats.Max(samples)
	if len(samples) > 1 {
		_, s.StdDevMillis = stat.MeanStdDev(samples, nil)
	}

	if s.AvgMillis > 0 && n > 0 {
		s.ElementsPerSec = float64(n) / (s.AvgMillis / 1000)
		s.BytesPerSec = s.ElementsPerSec * float64(elementSize) * PassesPerElement
	}
	return s
}

// GigaElementsPerSec returns throughput in 10^9 elements/sec
func (s Statistics) GigaElementsPerSec() float64 { return s.ElementsPerSec / 1e9 }

// GigaBytesPerSec returns throughput in 10^9 bytes/sec
func (s Statistics) GigaBytesPerSec() float64 { return s.BytesPerSec / 1e9 }

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
