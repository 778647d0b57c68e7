package contraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGemmProblemFlopCount(t *testing.T) {
	p, err := NewGemmProblem(1000, 1000, 1000, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2e9, p.FlopCount(), 1e-3)
	assert.InDelta(t, p.FlopCount(), p.TotalFlopCount(), 1e-3)

	batched, err := NewGemmProblem(100, 100, 100, 4)
	require.NoError(t, err)
	assert.InDelta(t, 4*2e6, batched.FlopCount(), 1e-3)
}

func TestGemmProblemValidation(t *testing.T) {
	_, err := NewGemmProblem(0, 64, 64, 1)
	assert.Error(t, err)
	_, err = NewGemmProblem(64, -1, 64, 1)
	assert.Error(t, err)
	_, err = NewGemmProblem(64, 64, 0, 1)
	assert.Error(t, err)

	// A non-positive batch defaults to 1.
	p, err := NewGemmProblem(64, 64, 64, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, p.BatchCount)
}

func TestGemmProblemCapability(t *testing.T) {
	p, err := NewGemmProblem(64, 32, 16, 1)
	require.NoError(t, err)

	assert.Same(t, p, p.Representative())
	assert.Equal(t, 1, p.Count())
	assert.Equal(t, "gemm_64x32x16", p.String())

	p.BatchCount = 3
	assert.Equal(t, "gemm_64x32x16_b3", p.String())
}

func TestGroupedProblemCapability(t *testing.T) {
	a, err := NewGemmProblem(64, 64, 64, 1)
	require.NoError(t, err)
	b, err := NewGemmProblem(128, 128, 128, 1)
	require.NoError(t, err)

	g, err := NewGroupedProblem([]GemmProblem{*a, *b})
	require.NoError(t, err)

	assert.Equal(t, 2, g.Count())
	assert.InDelta(t, a.FlopCount()+b.FlopCount(), g.TotalFlopCount(), 1e-3)
	assert.Equal(t, a.M, g.Representative().M)
	assert.Equal(t, "grouped_gemm_x2", g.String())
}

func TestGroupedProblemRejectsEmpty(t *testing.T) {
	_, err := NewGroupedProblem(nil)
	assert.Error(t, err)
}

func TestNewInputsSingle(t *testing.T) {
	p, err := NewGemmProblem(8, 4, 2, 3)
	require.NoError(t, err)

	in := NewInputs(p)
	require.Len(t, in.Operands, 1)

	ops := in.Operands[0]
	assert.Len(t, ops.A, 8*2*3)
	assert.Len(t, ops.B, 2*4*3)
	assert.Len(t, ops.C, 8*4*3)
	assert.Len(t, ops.D, 8*4*3)

	// Inputs are non-trivial so kernels cannot shortcut on zeros.
	var nonZero bool
	for _, v := range ops.A {
		if v != 0 {
			nonZero = true
			break
		}
	}
	assert.True(t, nonZero)
}

func TestNewInputsGrouped(t *testing.T) {
	a, err := NewGemmProblem(4, 4, 4, 1)
	require.NoError(t, err)
	b, err := NewGemmProblem(8, 8, 8, 1)
	require.NoError(t, err)
	g, err := NewGroupedProblem([]GemmProblem{*a, *b})
	require.NoError(t, err)

	in := NewInputs(g)
	require.Len(t, in.Operands, 2)
	assert.Len(t, in.Operands[0].A, 4*4)
	assert.Len(t, in.Operands[1].A, 8*8)
}

func TestSolutionString(t *testing.T) {
	s := Solution{MacroTile0: 64, MacroTile1: 32, DepthU: 16}
	assert.Equal(t, "MT64x32x16", s.String())
	s.Name = "custom"
	assert.Equal(t, "custom", s.String())
}

func TestDefaultSolutionsWellFormed(t *testing.T) {
	sols := DefaultSolutions()
	require.NotEmpty(t, sols)

	seen := make(map[string]bool)
	for _, s := range sols {
		assert.False(t, seen[s.Name], "duplicate solution %q", s.Name)
		seen[s.Name] = true
		assert.Greater(t, s.MacroTile0, 0)
		assert.Greater(t, s.MacroTile1, 0)
		assert.Greater(t, s.WorkgroupSize, 0)
		assert.Greater(t, s.WavefrontSize, 0)
		assert.GreaterOrEqual(t, s.GlobalSplitU, 1)
	}
}
