package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReference(t *testing.T) {
	ones := []int32{1, 1, 1, 1, 1, 1, 1, 1}

	testCases := []struct {
		name      string
		op        Operator[int32]
		data      []int32
		exclusive bool
		expected  []int32
	}{
		{"sum_inclusive", Sum[int32]{}, ones, false, []int32{1, 2, 3, 4, 5, 6, 7, 8}},
		{"sum_exclusive", Sum[int32]{}, ones, true, []int32{0, 1, 2, 3, 4, 5, 6, 7}},
		{"max_inclusive", NewMax[int32](), []int32{3, 1, 4, 1, 5}, false, []int32{3, 3, 4, 4, 5}},
		{"min_inclusive", Min[int32]{}, []int32{3, 1, 4, 1, 5}, false, []int32{3, 1, 1, 1, 1}},
		{"empty", Sum[int32]{}, []int32{}, false, []int32{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Reference(tc.op, tc.data, tc.exclusive))
		})
	}
}

func TestReference_ExclusiveStartsAtIdentity(t *testing.T) {
	op := NewMax[float64]()
	out := Reference[float64](op, []float64{2.5, -1, 8}, true)
	assert.Equal(t, op.Identity(), out[0])
	assert.Equal(t, []float64{2.5, 2.5}, out[1:])
}

func TestDirection(t *testing.T) {
	assert.Equal(t, "exclusive", Direction(true))
	assert.Equal(t, "inclusive", Direction(false))
}
