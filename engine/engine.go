// Package engine defines the scan engine contract the harness drives and
// provides host and OCCA implementations of it.
package engine

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/notargets/ScanKernel/device"
	"github.com/notargets/ScanKernel/scan"
)

// ProbSizeGenre hints the engine at the expected problem scale. The harness
// passes it through untouched.
type ProbSizeGenre int

const (
	Unknown ProbSizeGenre = iota
	Small
	Large
)

func (g ProbSizeGenre) String() string {
	switch g {
	case Small:
		return "small"
	case Large:
		return "large"
	default:
		return "unknown"
	}
}

// ParseGenre maps a command-line name to a genre.
func ParseGenre(s string) (ProbSizeGenre, error) {
	switch s {
	case "", "unknown":
		return Unknown, nil
	case "small":
		return Small, nil
	case "large":
		return Large, nil
	}
	return Unknown, fmt.Errorf("unknown problem size genre %q", s)
}

// Request describes one scan invocation.
type Request struct {
	Destination device.Memory
	Source      device.Memory
	N           int
	MaxCTAs     int
	Exclusive   bool
	Genre       ProbSizeGenre
	// Debug makes the engine print its launch plan
	Debug bool
}

// Engine performs a scan of Source into Destination. Execute blocks until
// Destination holds all N results and must not modify Source.
type Engine[T scan.Element] interface {
	Execute(op scan.Operator[T], req Request) error
}

// Synchronizer is implemented by engines whose work can still be in flight
// when Execute returns. The driver calls Synchronize before each stop timestamp.
type Synchronizer interface {
	Synchronize()
}

// Synchronize waits for eng if it supports it.
func Synchronize(eng any) {
	if s, ok := eng.(Synchronizer); ok {
		s.Synchronize()
	}
}

// EngineError reports a failed engine invocation.
type EngineError struct {
	Engine string
	Phase  string
	File   string
	Line   int
	Err    error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s:%d: %s engine %s failed: %v", e.File, e.Line, e.Engine, e.Phase, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

func newEngineError(engine, phase string, err error) *EngineError {
	file, line := "???", 0
	if _, f, l, ok := runtime.Caller(1); ok {
		file, line = filepath.Base(f), l
	}
	return &EngineError{Engine: engine, Phase: phase, File: file, Line: line, Err: err}
}

func validate(req Request) error {
	if req.N < 0 {
		return fmt.Errorf("invalid element count %d", req.N)
	}
	if req.Source == nil || req.Destination == nil {
		return fmt.Errorf("source and destination must be set")
	}
	return nil
}
