package scan

// Reference computes the scan of data serially on the host. The result is the
// expected sequence the harness verifies device output against.
func Reference[T Element](op Operator[T], data []T, exclusive bool) []T {
	out := make([]T, len(data))
	acc := op.Identity()
	for i, v := range data {
		if exclusive {
			out[i] = acc
			acc = op.Op(acc, v)
		} else {
			acc = op.Op(acc, v)
			out[i] = acc
		}
	}
	return out
}

// Direction names the scan variant as it appears in reports.
func Direction(exclusive bool) string {
	if exclusive {
		return "exclusive"
	}
	return "inclusive"
}
