package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoCmd(t *testing.T) {
	want := []string{
		"1. matmul: Tensor[int32][2 2] [[18 -75] [-8 84]]",
		"2. broadcast matmul: Tensor[int32][2 2 2] [[[18 -75] [-8 84]] [[-56 -1] [-790 30]]]",
		"3. in-place add: Tensor[int32][2 2] [[6 8] [10 12]] then Tensor[int32][2 2] [[12 16] [20 24]]",
		"4. broadcast add: Tensor[int32][2 2] [[6 8] [8 10]]",
		"5. iteration order: 0 1 2 3 4 5 6 7 8 9 10 11",
		"6. slice and clone: 6 7 8 9 10 11",
	}

	for _, workers := range []string{"1", "2"} {
		t.Run("workers="+workers, func(t *testing.T) {
			out, err := runCmd(t, "--workers", workers, "demo")
			require.NoError(t, err)
			assert.Equal(t, want, strings.Split(strings.TrimRight(out, "\n"), "\n"))
		})
	}
}
