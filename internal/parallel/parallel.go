// Package parallel provides parallel execution utilities for batched tensor kernels.
package parallel

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 1, // Each item is a whole matrix product.
	}
}

// Sequential returns a Config that always runs on the calling goroutine.
func Sequential() Config {
	return Config{Enabled: false, NumWorkers: 1, MinChunkSize: 1}
}

// WithWorkers returns a Config using n workers; n <= 1 disables parallelism.
func WithWorkers(n int) Config {
	if n <= 1 {
		return Sequential()
	}
	return Config{Enabled: true, NumWorkers: n, MinChunkSize: 1}
}

// chunkSize returns the number of items each goroutine handles,
// or 0 when the work should run sequentially.
func (cfg Config) chunkSize(n int) int {
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < 2 || n < cfg.MinChunkSize {
		return 0
	}
	return max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	chunk := cfg.chunkSize(n)
	if chunk == 0 {
		// Sequential fallback.
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForErr executes f(i) for i in [0, n) and returns the first error.
// Once an error occurs, or ctx is done, remaining chunks stop early.
func ForErr(ctx context.Context, n int, f func(i int) error, cfg Config) error {
	chunk := cfg.chunkSize(n)
	if chunk == 0 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := f(i); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.NumWorkers)
	for start := 0; start < n; start += chunk {
		s, e := start, min(start+chunk, n)
		g.Go(func() error {
			for i := s; i < e; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := f(i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
