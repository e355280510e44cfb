package runner

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/ScanKernel/device"
	"github.com/notargets/ScanKernel/device/devicetest"
	"github.com/notargets/ScanKernel/engine"
	"github.com/notargets/ScanKernel/scan"
)

var errEngineFault = errors.New("device fault")

// recordingEngine forwards to the host engine and records how it was driven
type recordingEngine[T scan.Element] struct {
	inner  engine.Engine[T]
	failAt int // 1-based call that fails; 0 never
	calls  int
	debug  []bool
	syncs  int
}

func newRecordingEngine[T scan.Element]() *recordingEngine[T] {
	eng := engine.NewHostEngine[T]()
	eng.Log = &bytes.Buffer{}
	return &recordingEngine[T]{inner: eng}
}

func (e *recordingEngine[T]) Execute(op scan.Operator[T], req engine.Request) error {
	e.calls++
	e.debug = append(e.debug, req.Debug)
	if e.calls == e.failAt {
		return &engine.EngineError{Engine: "recording", Phase: "run", Err: errEngineFault}
	}
	return e.inner.Execute(op, req)
}

func (e *recordingEngine[T]) Synchronize() { e.syncs++ }

// steppingClock advances by step on every reading
type steppingClock struct {
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

func testConfig[T scan.Element](out *bytes.Buffer, iterations int, exclusive bool) Config[T] {
	cfg := DefaultConfig[T]()
	cfg.Output = out
	cfg.Iterations = iterations
	cfg.Exclusive = exclusive
	cfg.Clock = (&steppingClock{step: 2 * time.Millisecond}).Now
	return cfg
}

func TestTimedScan_Scenarios(t *testing.T) {
	ones := []int32{1, 1, 1, 1, 1, 1, 1, 1}

	testCases := []struct {
		name      string
		op        scan.Operator[int32]
		data      []int32
		exclusive bool
		expected  []int32
	}{
		{"sum_inclusive", scan.Sum[int32]{}, ones, false, []int32{1, 2, 3, 4, 5, 6, 7, 8}},
		{"sum_exclusive", scan.Sum[int32]{}, ones, true, []int32{0, 1, 2, 3, 4, 5, 6, 7}},
		{"max_inclusive", scan.NewMax[int32](), []int32{3, 1, 4, 1, 5}, false, []int32{3, 3, 4, 4, 5}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			alloc := &devicetest.TrackingAllocator{}
			eng := newRecordingEngine[int32]()

			res, err := TimedScan[int32](alloc, eng, tc.op, tc.data, tc.expected, testConfig[int32](&out, 5, tc.exclusive))
			require.NoError(t, err)

			assert.True(t, res.Passed(), res.Outcome.String())
			assert.Equal(t, tc.expected, res.Output)
			assert.Equal(t, Released, res.Phase)
			assert.Equal(t, 0, alloc.Live())
			assert.Contains(t, out.String(), "CORRECT")
		})
	}
}

func TestTimedScan_WarmupThenTimedIterations(t *testing.T) {
	var out bytes.Buffer
	eng := newRecordingEngine[int64]()
	data := []int64{1, 2, 3, 4}

	res, err := TimedScan[int64](device.HostAllocator{}, eng, scan.Sum[int64]{}, data,
		scan.Reference[int64](scan.Sum[int64]{}, data, false), testConfig[int64](&out, 3, false))
	require.NoError(t, err)

	// Exactly one debug warm-up, then the timed calls
	assert.Equal(t, []bool{true, false, false, false}, eng.debug)
	assert.Equal(t, 4, eng.syncs)

	stats := res.Stats
	assert.Equal(t, 3, stats.Iterations)
	assert.Equal(t, []float64{2, 2, 2}, stats.Samples)
	assert.Equal(t, 6.0, stats.TotalMillis)
	assert.Equal(t, stats.TotalMillis/3, stats.AvgMillis)
	assert.InDelta(t, 4/0.002, stats.ElementsPerSec, 1e-6)
	assert.InDelta(t, stats.ElementsPerSec*8*3, stats.BytesPerSec, 1e-6)
}

func TestTimedScan_ZeroIterations(t *testing.T) {
	var out bytes.Buffer
	eng := newRecordingEngine[float64]()
	data := []float64{1, 2}

	res, err := TimedScan[float64](device.HostAllocator{}, eng, scan.Sum[float64]{}, data,
		[]float64{1, 3}, testConfig[float64](&out, 0, false))
	require.NoError(t, err)

	assert.Equal(t, 1, eng.calls, "warm-up still runs")
	assert.Zero(t, res.Stats.AvgMillis)
	assert.Zero(t, res.Stats.ElementsPerSec)
	assert.Zero(t, res.Stats.BytesPerSec)
	assert.True(t, res.Passed())
}

func TestTimedScan_Mismatch(t *testing.T) {
	var out bytes.Buffer
	alloc := &devicetest.TrackingAllocator{}
	data := []int32{1, 1, 1, 1}

	res, err := TimedScan[int32](alloc, newRecordingEngine[int32](), scan.Sum[int32]{}, data,
		[]int32{1, 2, 3, 5}, testConfig[int32](&out, 2, false))
	require.NoError(t, err, "a mismatch is an outcome, not an error")

	assert.False(t, res.Passed())
	assert.Equal(t, 3, res.Outcome.Index)
	assert.Equal(t, int32(4), res.Outcome.Actual)
	assert.Equal(t, int32(5), res.Outcome.Expected)
	assert.Positive(t, res.Stats.ElementsPerSec, "throughput still reported")
	assert.Contains(t, out.String(), "INCORRECT: [3]: 4 != 5")
	assert.Equal(t, 0, alloc.Live())
}

func TestTimedScan_EngineFailureAborts(t *testing.T) {
	for _, failAt := range []int{1, 3} {
		var out bytes.Buffer
		alloc := &devicetest.TrackingAllocator{}
		eng := newRecordingEngine[int32]()
		eng.failAt = failAt

		res, err := TimedScan[int32](alloc, eng, scan.Sum[int32]{}, []int32{1, 2}, []int32{1, 3},
			testConfig[int32](&out, 10, false))
		require.Error(t, err)

		var engErr *engine.EngineError
		assert.True(t, errors.As(err, &engErr))
		assert.ErrorIs(t, err, errEngineFault)
		assert.Equal(t, failAt, eng.calls, "no retry after a fault")
		assert.Equal(t, Released, res.Phase)
		assert.Equal(t, 0, alloc.Live())
		assert.Empty(t, out.String(), "nothing reported for an aborted run")
	}
}

func TestTimedScan_AllocationFailure(t *testing.T) {
	alloc := &devicetest.TrackingAllocator{FailOnMalloc: 2}
	eng := newRecordingEngine[int32]()

	res, err := TimedScan[int32](alloc, eng, scan.Sum[int32]{}, []int32{1}, []int32{1},
		testConfig[int32](&bytes.Buffer{}, 1, false))

	var allocErr *device.AllocationError
	require.True(t, errors.As(err, &allocErr))
	assert.Equal(t, "destination", allocErr.What)
	assert.Equal(t, Released, res.Phase)
	assert.Equal(t, 0, eng.calls)
	assert.Equal(t, 0, alloc.Live())
}

func TestTimedScan_StageFailure(t *testing.T) {
	alloc := &devicetest.TrackingAllocator{FailCopyFrom: true}
	eng := newRecordingEngine[int32]()

	_, err := TimedScan[int32](alloc, eng, scan.Sum[int32]{}, []int32{1}, []int32{1},
		testConfig[int32](&bytes.Buffer{}, 1, false))

	var transferErr *device.TransferError
	require.True(t, errors.As(err, &transferErr))
	assert.Equal(t, 0, eng.calls)
	assert.Equal(t, 0, alloc.Live())
	assert.Equal(t, 0, alloc.DoubleFrees())
}

func TestTimedScan_ReferenceLengthMismatch(t *testing.T) {
	alloc := &devicetest.TrackingAllocator{}

	res, err := TimedScan[int32](alloc, newRecordingEngine[int32](), scan.Sum[int32]{},
		[]int32{1, 2, 3}, []int32{1, 3}, testConfig[int32](&bytes.Buffer{}, 1, false))

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrReferenceLength)
	assert.Equal(t, 0, alloc.Mallocs(), "configuration errors precede allocation")
}

func TestTimedScan_OnIteration(t *testing.T) {
	var seen []int
	cfg := testConfig[int32](&bytes.Buffer{}, 4, false)
	cfg.OnIteration = func(i int) { seen = append(seen, i) }

	_, err := TimedScan[int32](device.HostAllocator{}, newRecordingEngine[int32](), scan.Sum[int32]{},
		[]int32{1}, []int32{1}, cfg)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, seen)
}

func TestTimedScan_EmptyProblem(t *testing.T) {
	var out bytes.Buffer
	res, err := TimedScan[int32](&devicetest.TrackingAllocator{}, newRecordingEngine[int32](), scan.Sum[int32]{},
		[]int32{}, []int32{}, testConfig[int32](&out, 2, true))
	require.NoError(t, err)
	assert.True(t, res.Passed())
	assert.Zero(t, res.Stats.ElementsPerSec)
}
