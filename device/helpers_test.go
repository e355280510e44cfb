package device_test

import "unsafe"

func ptr[T any](s []T) unsafe.Pointer {
	return unsafe.Pointer(&s[0])
}
