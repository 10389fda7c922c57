// Package cpu implements the CPU matrix-multiplication engine over strided tensor views.
package cpu

import "github.com/strided-ml/strided/internal/parallel"

// CPUBackend carries execution settings for CPU kernels.
type CPUBackend struct {
	parallel parallel.Config
}

// New creates a CPU backend that runs every kernel on the calling goroutine.
func New() *CPUBackend {
	return &CPUBackend{
		parallel: parallel.Sequential(),
	}
}

// NewWithConfig creates a CPU backend that fans batched work out according to cfg.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		parallel: cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Parallel returns the backend's parallel execution settings.
func (cpu *CPUBackend) Parallel() parallel.Config {
	return cpu.parallel
}

var defaultBackend = New()
