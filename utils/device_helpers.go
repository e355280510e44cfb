package utils

import (
	"fmt"
	"github.com/notargets/gocca"
)

// DefaultBackends lists OCCA device properties in order of preference
var DefaultBackends = []string{
	`{"mode": "OpenMP"}`,
	`{"mode": "CUDA", "device_id": 0}`,
	`{"mode": "Serial"}`,
}

// CreateDevice returns the first device that can be created from backends,
// trying DefaultBackends when none are given
func CreateDevice(backends ...string) (*gocca.OCCADevice, error) {
	if len(backends) == 0 {
		backends = DefaultBackends
	}

	var lastErr error
	for _, props := range backends {
		device, err := gocca.NewDevice(props)
		if err == nil {
			fmt.Printf("Created %s Device\n", device.Mode())
			return device, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("failed to create any Device from %d backends: %w", len(backends), lastErr)
}

// CreateTestDevice creates a Device for testing, preferring parallel backends
func CreateTestDevice() *gocca.OCCADevice {
	device, err := CreateDevice()
	if err != nil {
		// Should not reach here
		panic(err)
	}
	return device
}
