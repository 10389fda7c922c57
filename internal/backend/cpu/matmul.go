package cpu

import (
	"context"
	"fmt"

	"github.com/strided-ml/strided/internal/parallel"
	"github.com/strided-ml/strided/internal/tensor"
)

// MatMul multiplies x1 by x2 into out using the default sequential backend.
//
// Operands may have different ranks:
//   - rank-1 operands are promoted: a left vector becomes a 1×n row,
//     a right vector an n×1 column;
//   - the last two axes of each operand are the matrix, the leading axes are batch axes;
//   - a lower-rank operand is replicated across the leading batch axes of the higher-rank one.
//
// Batch extents must match exactly where both operands have them; extent-1 batch
// axes are not broadcast. All shapes are validated before out is written.
//
// Example:
//
//	// [2, 2] @ [3, 2, 2] -> [3, 2, 2]
//	err := cpu.MatMul(weights, batch, out)
func MatMul[T tensor.Number](x1, x2, out *tensor.Tensor[T]) error {
	return MatMulContext(context.Background(), defaultBackend, x1, x2, out)
}

// MatMulContext is MatMul with an explicit backend and context.
// The outermost batch axis is split across the backend's workers. A plain
// matrix product splits its output rows instead.
func MatMulContext[T tensor.Number](ctx context.Context, cpu *CPUBackend, x1, x2, out *tensor.Tensor[T]) error {
	for _, t := range []*tensor.Tensor[T]{x1, x2, out} {
		if s := t.Storage(); s == nil || s.Freed() {
			return fmt.Errorf("matmul: %w", tensor.ErrReleased)
		}
	}

	a, b, c, release, err := promote(x1, x2, out)
	if err != nil {
		return fmt.Errorf("matmul: %w", err)
	}
	defer release()

	if err := validateShapes(a.Shape(), b.Shape(), c.Shape()); err != nil {
		return fmt.Errorf("matmul: %w", err)
	}

	if c.Rank() == 2 {
		matmul2D(a, b, c, cpu.parallel)
		return nil
	}

	n := c.Shape()[0]
	err = parallel.ForErr(ctx, n, func(i int) error {
		return batchStep(a, b, c, i)
	}, cpu.parallel)
	if err != nil {
		return fmt.Errorf("matmul: %w", err)
	}
	return nil
}

// promote expands rank-1 operands to matrices. The returned release func drops
// every view promote created.
func promote[T tensor.Number](x1, x2, out *tensor.Tensor[T]) (a, b, c *tensor.Tensor[T], release func(), err error) {
	var owned []*tensor.Tensor[T]
	release = func() {
		for _, v := range owned {
			v.Release()
		}
	}
	expand := func(t *tensor.Tensor[T], axis int) (*tensor.Tensor[T], error) {
		v, err := t.Expand(axis)
		if err != nil {
			return nil, err
		}
		owned = append(owned, v)
		return v, nil
	}

	a, b, c = x1, x2, out
	if x1.Rank() == 1 {
		if a, err = expand(x1, 0); err != nil {
			release()
			return nil, nil, nil, nil, err
		}
	}
	if x2.Rank() == 1 {
		if b, err = expand(x2, 1); err != nil {
			release()
			return nil, nil, nil, nil, err
		}
	}
	if out.Rank() == 1 {
		axis := 0
		if x2.Rank() == 1 {
			axis = 1
		}
		if c, err = expand(out, axis); err != nil {
			release()
			return nil, nil, nil, nil, err
		}
	}
	return a, b, c, release, nil
}

// validateShapes checks every extent the recursion will pair, so a failing
// call never writes to out.
func validateShapes(s1, s2, so tensor.Shape) error {
	r1, r2 := len(s1), len(s2)
	maxRank := max(r1, r2)
	if len(so) != maxRank {
		return fmt.Errorf("output rank %d does not match operand rank %d: %w", len(so), maxRank, tensor.ErrInvalidArgument)
	}

	m, k := s1[r1-2], s1[r1-1]
	k2, n := s2[r2-2], s2[r2-1]
	if k != k2 {
		return fmt.Errorf("shape mismatch %v @ %v: inner dimensions %d and %d: %w", s1, s2, k, k2, tensor.ErrInvalidArgument)
	}

	// The recursion strips leading axes of the higher-rank operand first, so the
	// lower-rank operand's batch axes line up with the trailing batch axes of the other.
	// Batch axes are compared trailing-aligned here, not by front index.
	larger, smaller := s1, s2
	if r2 > r1 {
		larger, smaller = s2, s1
	}
	shift := len(larger) - len(smaller)
	for i := 0; i < len(smaller)-2; i++ {
		if smaller[i] != larger[shift+i] {
			return fmt.Errorf("batch dimension mismatch %v @ %v at axis %d: %d vs %d: %w",
				s1, s2, shift+i, larger[shift+i], smaller[i], tensor.ErrInvalidArgument)
		}
	}
	for i := 0; i < maxRank-2; i++ {
		if so[i] != larger[i] {
			return fmt.Errorf("output batch dimension %d is %d, want %d: %w", i, so[i], larger[i], tensor.ErrInvalidArgument)
		}
	}

	if so[maxRank-2] != m || so[maxRank-1] != n {
		return fmt.Errorf("output matrix shape [%d, %d], want [%d, %d]: %w",
			so[maxRank-2], so[maxRank-1], m, n, tensor.ErrInvalidArgument)
	}
	return nil
}

// matmul performs naive matrix multiplication over two already-validated views.
// It runs on the calling goroutine; fan-out happens once at the outermost axis.
func matmul[T tensor.Number](a, b, c *tensor.Tensor[T]) error {
	if c.Rank() == 2 {
		matmul2D(a, b, c, parallel.Sequential())
		return nil
	}
	for i := 0; i < c.Shape()[0]; i++ {
		if err := batchStep(a, b, c, i); err != nil {
			return err
		}
	}
	return nil
}

// batchStep reduces rank by one at batch index i.
// A higher-rank operand is sliced on its own before equal ranks are sliced together,
// which replicates the lower-rank operand across every leading batch index.
func batchStep[T tensor.Number](a, b, c *tensor.Tensor[T], i int) error {
	cs, err := c.Slice(i)
	if err != nil {
		return err
	}
	defer cs.Release()

	as, bs := a, b
	switch ra, rb := a.Rank(), b.Rank(); {
	case ra > rb:
		if as, err = a.Slice(i); err != nil {
			return err
		}
		defer as.Release()
	case rb > ra:
		if bs, err = b.Slice(i); err != nil {
			return err
		}
		defer bs.Release()
	default:
		if as, err = a.Slice(i); err != nil {
			return err
		}
		defer as.Release()
		if bs, err = b.Slice(i); err != nil {
			return err
		}
		defer bs.Release()
	}
	return matmul(as, bs, cs)
}

// matmul2D computes C[i,j] = sum_k A[i,k] * B[k,j] over strided rank-2 views.
// Accumulation happens in T. Rows of C are disjoint, so cfg may split them
// across goroutines.
func matmul2D[T tensor.Number](a, b, c *tensor.Tensor[T], cfg parallel.Config) {
	m, k := a.Shape()[0], a.Shape()[1]
	n := b.Shape()[1]

	aData, bData, cData := a.Storage().Data(), b.Storage().Data(), c.Storage().Data()
	aOff, bOff, cOff := a.Offset(), b.Offset(), c.Offset()
	as0, as1 := a.Strides()[0], a.Strides()[1]
	bs0, bs1 := b.Strides()[0], b.Strides()[1]
	cs0, cs1 := c.Strides()[0], c.Strides()[1]

	// Naive O(n³) implementation
	parallel.For(m, func(i int) {
		for j := 0; j < n; j++ {
			var sum T
			for kIdx := 0; kIdx < k; kIdx++ {
				sum += aData[aOff+i*as0+kIdx*as1] * bData[bOff+kIdx*bs0+j*bs1]
			}
			cData[cOff+i*cs0+j*cs1] = sum
		}
	}, cfg)
}
