package verify

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare_FirstMismatch(t *testing.T) {
	outcome, err := Compare([]int{1, 2, 3, 5}, []int{1, 2, 3, 4}, 4)
	require.NoError(t, err)

	assert.False(t, outcome.Passed)
	assert.Equal(t, 3, outcome.Index)
	assert.Equal(t, 5, outcome.Actual)
	assert.Equal(t, 4, outcome.Expected)
	assert.Equal(t, "INCORRECT: [3]: 5 != 4", outcome.String())
}

func TestCompare_StopsAtFirst(t *testing.T) {
	outcome, err := Compare([]int32{9, 2, 9}, []int32{1, 2, 3}, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.Index)
}

func TestCompare_Pass(t *testing.T) {
	outcome, err := Compare([]float64{0.5, 1.5}, []float64{0.5, 1.5}, 2)
	require.NoError(t, err)
	assert.True(t, outcome.Passed)
	assert.Equal(t, 2, outcome.Count)
	assert.Equal(t, "CORRECT", outcome.String())

	outcome, err = Compare([]float64{}, []float64{}, 0)
	require.NoError(t, err)
	assert.True(t, outcome.Passed)
}

func TestCompare_ExactEquality(t *testing.T) {
	// Evaluated at run time; a constant expression would fold to exactly 0.3
	x, y := 0.1, 0.2
	a := x + y
	outcome, err := Compare([]float64{a}, []float64{0.3}, 1)
	require.NoError(t, err)
	assert.False(t, outcome.Passed, "no epsilon tolerance")

	outcome, err = Compare([]float64{math.NaN()}, []float64{math.NaN()}, 1)
	require.NoError(t, err)
	assert.False(t, outcome.Passed)
}

func TestCompare_LengthMismatch(t *testing.T) {
	_, err := Compare([]int{1, 2}, []int{1, 2, 3}, 3)
	assert.Error(t, err)
	_, err = Compare([]int{1, 2, 3}, []int{1}, 3)
	assert.Error(t, err)
}

func TestPrintValues(t *testing.T) {
	var buf bytes.Buffer
	PrintValues(&buf, []int64{1, 2, 3}, nil)
	assert.Equal(t, "1, 2, 3, ", buf.String())

	buf.Reset()
	hex := func(w io.Writer, v int64) { fmt.Fprintf(w, "%#x", v) }
	PrintValues(&buf, []int64{10, 255}, hex)
	assert.Equal(t, "0xa, 0xff, ", buf.String())
}
