package cpu

import (
	"context"
	"math/rand"
	"testing"

	"github.com/strided-ml/strided/internal/parallel"
	"github.com/strided-ml/strided/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func fromSlice[T tensor.Number](t *testing.T, data []T, dims ...int) *tensor.Tensor[T] {
	t.Helper()
	out, err := tensor.FromSlice(data, dims...)
	require.NoError(t, err)
	return out
}

func zeros[T tensor.Number](t *testing.T, dims ...int) *tensor.Tensor[T] {
	t.Helper()
	out, err := tensor.Zeros[T](dims...)
	require.NoError(t, err)
	return out
}

func values[T tensor.Number](t *testing.T, x *tensor.Tensor[T]) []T {
	t.Helper()
	out, err := x.ToSlice()
	require.NoError(t, err)
	return out
}

func randomTensor(t *testing.T, rng *rand.Rand, dims ...int) *tensor.Tensor[float64] {
	t.Helper()
	data := make([]float64, tensor.Shape(dims).NumElements())
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return fromSlice(t, data, dims...)
}

// dense converts a rank-2 view into a gonum matrix.
func dense(t *testing.T, x *tensor.Tensor[float64]) *mat.Dense {
	t.Helper()
	require.Equal(t, 2, x.Rank())
	return mat.NewDense(x.Shape()[0], x.Shape()[1], values(t, x))
}

// assertMatchesGonum checks c == a @ b for rank-2 views using gonum as the reference.
func assertMatchesGonum(t *testing.T, a, b, c *tensor.Tensor[float64]) {
	t.Helper()
	var want mat.Dense
	want.Mul(dense(t, a), dense(t, b))
	assert.True(t, mat.EqualApprox(&want, dense(t, c), 1e-9), "want %v\ngot %v", mat.Formatted(&want), mat.Formatted(dense(t, c)))
}

func TestMatMul2D(t *testing.T) {
	x1 := fromSlice(t, []int32{4, 1, -6, 8}, 2, 2)
	x2 := fromSlice(t, []int32{4, -18, 2, -3}, 2, 2)
	out := zeros[int32](t, 2, 2)

	require.NoError(t, MatMul(x1, x2, out))
	assert.Equal(t, []int32{18, -75, -8, 84}, values(t, out))
}

func TestMatMulNonSquare(t *testing.T) {
	// [2, 3] @ [3, 4] -> [2, 4]
	x1 := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	x2 := fromSlice(t, []float32{1, 0, 0, 1, 0, 1, 0, 1, 0, 0, 1, 1}, 3, 4)
	out := zeros[float32](t, 2, 4)

	require.NoError(t, MatMul(x1, x2, out))
	assert.Equal(t, []float32{1, 2, 3, 6, 4, 5, 6, 15}, values(t, out))
}

func TestMatMulBroadcastLeftOperand(t *testing.T) {
	x1 := fromSlice(t, []int64{4, 1, -6, 8}, 2, 2)
	x2 := fromSlice(t, []int64{4, -18, 2, -3, 9, -1, -92, 3}, 2, 2, 2)
	out := zeros[int64](t, 2, 2, 2)

	require.NoError(t, MatMul(x1, x2, out))
	assert.Equal(t, []int64{18, -75, -8, 84, -56, -1, -790, 30}, values(t, out))
}

func TestMatMulBroadcastRightOperand(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	x1 := randomTensor(t, rng, 3, 2, 4)
	x2 := randomTensor(t, rng, 4, 5)
	out := zeros[float64](t, 3, 2, 5)

	require.NoError(t, MatMul(x1, x2, out))
	for i := 0; i < 3; i++ {
		a, _ := x1.Slice(i)
		c, _ := out.Slice(i)
		assertMatchesGonum(t, a, x2, c)
	}
}

func TestMatMulEqualRankBatches(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	x1 := randomTensor(t, rng, 2, 3, 3, 4)
	x2 := randomTensor(t, rng, 2, 3, 4, 2)
	out := zeros[float64](t, 2, 3, 3, 2)

	require.NoError(t, MatMul(x1, x2, out))
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			a1, _ := x1.Slice(i)
			a, _ := a1.Slice(j)
			b1, _ := x2.Slice(i)
			b, _ := b1.Slice(j)
			c1, _ := out.Slice(i)
			c, _ := c1.Slice(j)
			assertMatchesGonum(t, a, b, c)
		}
	}
}

func TestMatMulSharedBatchAxis(t *testing.T) {
	// [2, 2, 3] @ [2, 3, 4]: only the leading batch axis is compared, never a matrix axis.
	rng := rand.New(rand.NewSource(11))
	x1 := randomTensor(t, rng, 2, 2, 3)
	x2 := randomTensor(t, rng, 2, 3, 4)
	out := zeros[float64](t, 2, 2, 4)

	require.NoError(t, MatMul(x1, x2, out))
	assert.Equal(t, []int{2, 2, 4}, []int(out.Shape()))
	for i := 0; i < 2; i++ {
		a, _ := x1.Slice(i)
		b, _ := x2.Slice(i)
		c, _ := out.Slice(i)
		assertMatchesGonum(t, a, b, c)
	}
}

func TestMatMulRankGapWithBatch(t *testing.T) {
	// [2, 3, 2, 4] @ [3, 4, 5]: x2 is replicated across axis 0 and paired on axis 1.
	rng := rand.New(rand.NewSource(3))
	x1 := randomTensor(t, rng, 2, 3, 2, 4)
	x2 := randomTensor(t, rng, 3, 4, 5)
	out := zeros[float64](t, 2, 3, 2, 5)

	require.NoError(t, MatMul(x1, x2, out))
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			a1, _ := x1.Slice(i)
			a, _ := a1.Slice(j)
			b, _ := x2.Slice(j)
			c1, _ := out.Slice(i)
			c, _ := c1.Slice(j)
			assertMatchesGonum(t, a, b, c)
		}
	}
}

func TestMatMulVectorPromotion(t *testing.T) {
	m := fromSlice(t, []int32{1, 2, 3, 4, 5, 6}, 2, 3)

	// [3] as a row: [1, 3] @ [3, 2] -> [2]
	row := fromSlice(t, []int32{1, 0, 2}, 3)
	mt, err := m.SwapAxes(0, 1)
	require.NoError(t, err)
	out := zeros[int32](t, 2)
	require.NoError(t, MatMul(row, mt, out))
	assert.Equal(t, []int32{7, 16}, values(t, out))

	// [3] as a column: [2, 3] @ [3, 1] -> [2]
	out = zeros[int32](t, 2)
	require.NoError(t, MatMul(m, row, out))
	assert.Equal(t, []int32{7, 16}, values(t, out))

	// Both vectors: dot product.
	dot := zeros[int32](t, 1)
	require.NoError(t, MatMul(row, row, dot))
	assert.Equal(t, []int32{5}, values(t, dot))

	// Output may also be given at full rank.
	col := zeros[int32](t, 2, 1)
	require.NoError(t, MatMul(m, row, col))
	assert.Equal(t, []int32{7, 16}, values(t, col))
}

func TestMatMulVectorBroadcastOverBatch(t *testing.T) {
	// [3] @ [2, 3, 2] -> [2, 1, 2]
	v := fromSlice(t, []float64{1, 1, 1}, 3)
	x2 := fromSlice(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, 2, 3, 2)
	out := zeros[float64](t, 2, 1, 2)

	require.NoError(t, MatMul(v, x2, out))
	assert.Equal(t, []float64{9, 12, 27, 30}, values(t, out))
}

func TestMatMulStridedViews(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	base := randomTensor(t, rng, 4, 3)
	x2 := randomTensor(t, rng, 4, 2)

	// base^T is a non-contiguous [3, 4] view.
	x1, err := base.SwapAxes(0, 1)
	require.NoError(t, err)
	out := zeros[float64](t, 3, 2)

	require.NoError(t, MatMul(x1, x2, out))
	assertMatchesGonum(t, x1, x2, out)

	// Write into a transposed output view.
	outT := zeros[float64](t, 2, 3)
	outView, err := outT.SwapAxes(0, 1)
	require.NoError(t, err)
	require.NoError(t, MatMul(x1, x2, outView))
	assert.True(t, out.Equal(outView))
}

func TestMatMulShapeErrors(t *testing.T) {
	tests := []struct {
		name       string
		d1, d2, do []int
	}{
		{"inner mismatch", []int{2, 3}, []int{2, 2}, []int{2, 2}},
		{"output rank too small", []int{2, 2}, []int{3, 2, 2}, []int{2, 2}},
		{"output rank too large", []int{2, 2}, []int{2, 2}, []int{1, 2, 2}},
		{"batch mismatch", []int{3, 2, 2}, []int{4, 2, 2}, []int{3, 2, 2}},
		{"no size-1 batch broadcast", []int{1, 2, 2}, []int{4, 2, 2}, []int{4, 2, 2}},
		{"paired batch mismatch across ranks", []int{2, 3, 2, 2}, []int{4, 2, 2}, []int{2, 3, 2, 2}},
		{"output batch mismatch", []int{2, 2}, []int{3, 2, 2}, []int{4, 2, 2}},
		{"output matrix mismatch", []int{2, 3}, []int{3, 4}, []int{2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x1 := zeros[float32](t, tt.d1...)
			x2 := zeros[float32](t, tt.d2...)
			out, err := tensor.Full[float32](-1, tt.do...)
			require.NoError(t, err)

			err = MatMul(x1, x2, out)
			assert.ErrorIs(t, err, tensor.ErrInvalidArgument)

			for _, v := range values(t, out) {
				assert.Equal(t, float32(-1), v, "failed matmul must not write the output")
			}
		})
	}
}

func TestMatMulReleasedOperand(t *testing.T) {
	x1 := zeros[float32](t, 2, 2)
	x2 := zeros[float32](t, 2, 2)
	out := zeros[float32](t, 2, 2)
	x2.Release()

	assert.ErrorIs(t, MatMul(x1, x2, out), tensor.ErrReleased)
}

func TestMatMulReleasesIntermediateViews(t *testing.T) {
	x1 := fromSlice(t, []int64{4, 1, -6, 8}, 2, 2)
	x2 := zeros[int64](t, 4, 2, 2)
	out := zeros[int64](t, 4, 2, 2)
	v := fromSlice(t, []int64{1, 2}, 2)
	outV := zeros[int64](t, 2)

	require.NoError(t, MatMul(x1, x2, out))
	require.NoError(t, MatMul(v, x1, outV))

	for _, x := range []*tensor.Tensor[int64]{x1, x2, out, v, outV} {
		assert.Equal(t, 1, x.Storage().Refs())
	}
}

func TestMatMulParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	x1 := randomTensor(t, rng, 8, 3, 4, 5)
	x2 := randomTensor(t, rng, 5, 6)

	seq := zeros[float64](t, 8, 3, 4, 6)
	par := zeros[float64](t, 8, 3, 4, 6)

	require.NoError(t, MatMulContext(context.Background(), New(), x1, x2, seq))
	require.NoError(t, MatMulContext(context.Background(), NewWithConfig(parallel.WithWorkers(4)), x1, x2, par))

	assert.Equal(t, values(t, seq), values(t, par))
	assert.Equal(t, 1, x2.Storage().Refs())
}

func TestMatMulParallelRows(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	x1 := randomTensor(t, rng, 7, 5)
	x2 := randomTensor(t, rng, 5, 3)

	seq := zeros[float64](t, 7, 3)
	par := zeros[float64](t, 7, 3)

	require.NoError(t, MatMulContext(context.Background(), New(), x1, x2, seq))
	require.NoError(t, MatMulContext(context.Background(), NewWithConfig(parallel.WithWorkers(3)), x1, x2, par))

	assert.Equal(t, values(t, seq), values(t, par))
	assertMatchesGonum(t, x1, x2, par)
}

func TestBackendName(t *testing.T) {
	assert.Equal(t, "CPU", New().Name())
	assert.False(t, New().Parallel().Enabled)
	assert.True(t, NewWithConfig(parallel.WithWorkers(2)).Parallel().Enabled)
}
