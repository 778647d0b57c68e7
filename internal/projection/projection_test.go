package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiranjeevipattigidi/hipBLASLt/internal/contraction"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/device"
)

func testHardware() device.Properties {
	return device.Properties{
		Name:          "test",
		ComputeUnits:  64,
		MaxWavesPerCU: 32,
	}
}

func testSolution() contraction.Solution {
	return contraction.Solution{
		Name:          "MT64x64",
		MacroTile0:    64,
		MacroTile1:    64,
		DepthU:        16,
		WorkgroupSize: 256,
		WavefrontSize: 64,
		GlobalSplitU:  1,
	}
}

func TestProjectEvenlyDividingProblem(t *testing.T) {
	p, err := contraction.NewGemmProblem(512, 512, 512, 1)
	require.NoError(t, err)

	proj := NewAnalyticalModel().Project(p, testSolution(), testHardware())
	g := proj.Granularities

	// 8x8 tiles on 64 CUs: everything divides evenly.
	assert.InDelta(t, 1.0, g.Tile0, 1e-9)
	assert.InDelta(t, 1.0, g.Tile1, 1e-9)
	assert.InDelta(t, 1.0, g.Cu, 1e-9)
	assert.InDelta(t, 1.0, g.TilesPerCu, 1e-9)
	assert.InDelta(t, g.Tile0*g.Tile1*g.Cu*g.Wave, g.Total, 1e-9)
}

func TestProjectRaggedTileEdges(t *testing.T) {
	p, err := contraction.NewGemmProblem(100, 64, 64, 1)
	require.NoError(t, err)

	proj := NewAnalyticalModel().Project(p, testSolution(), testHardware())
	g := proj.Granularities

	// M=100 on 64-wide tiles needs 2 tiles covering 128 rows.
	assert.InDelta(t, 100.0/128.0, g.Tile0, 1e-9)
	assert.InDelta(t, 1.0, g.Tile1, 1e-9)
	// 2 tiles on 64 CUs round up to one tile slot each.
	assert.InDelta(t, 2.0/64.0, g.Cu, 1e-9)
	assert.InDelta(t, 2.0/64.0, g.TilesPerCu, 1e-9)
}

func TestProjectGlobalSplitUMultipliesTiles(t *testing.T) {
	p, err := contraction.NewGemmProblem(512, 512, 512, 1)
	require.NoError(t, err)

	s := testSolution()
	s.GlobalSplitU = 4
	proj := NewAnalyticalModel().Project(p, s, testHardware())

	// 64 tiles x gsu 4 = 256 tiles on 64 CUs.
	assert.InDelta(t, 4.0, proj.Granularities.TilesPerCu, 1e-9)
	assert.InDelta(t, 1.0, proj.Granularities.Cu, 1e-9)
}

func TestProjectBatchMultipliesTiles(t *testing.T) {
	p, err := contraction.NewGemmProblem(64, 64, 64, 8)
	require.NoError(t, err)

	proj := NewAnalyticalModel().Project(p, testSolution(), testHardware())
	// One tile per batch entry, 8 batches on 64 CUs.
	assert.InDelta(t, 8.0/64.0, proj.Granularities.TilesPerCu, 1e-9)
}

func TestWaveGranularityNeverExceedsOne(t *testing.T) {
	shapes := [][3]int{{64, 64, 64}, {100, 100, 100}, {4096, 4096, 64}, {1, 1, 1}}
	for _, shape := range shapes {
		p, err := contraction.NewGemmProblem(shape[0], shape[1], shape[2], 1)
		require.NoError(t, err)
		g := NewAnalyticalModel().Project(p, testSolution(), testHardware()).Granularities
		assert.LessOrEqual(t, g.Wave, 1.0)
		assert.Greater(t, g.Wave, 0.0)
	}
}

func TestStaticModelBytes(t *testing.T) {
	p, err := contraction.NewGemmProblem(128, 256, 64, 1)
	require.NoError(t, err)

	sm := NewAnalyticalModel().Project(p, testSolution(), testHardware()).StaticModel

	// float32 operands: A is 128x64, B is 64x256, D is 128x256.
	assert.InDelta(t, float64(128*64*4+64*256*4), sm.MemReadBytes, 1e-9)
	assert.InDelta(t, float64(128*256*4), sm.MemWriteBytes, 1e-9)
}

func TestStaticModelBetaReadsAccumulator(t *testing.T) {
	p, err := contraction.NewGemmProblem(128, 256, 64, 1)
	require.NoError(t, err)
	p.UseBeta = true

	sm := NewAnalyticalModel().Project(p, testSolution(), testHardware()).StaticModel
	assert.InDelta(t, float64(128*64*4+64*256*4+128*256*4), sm.MemReadBytes, 1e-9)
}

func TestStaticModelScalesWithBatch(t *testing.T) {
	p, err := contraction.NewGemmProblem(64, 64, 64, 4)
	require.NoError(t, err)

	sm := NewAnalyticalModel().Project(p, testSolution(), testHardware()).StaticModel
	assert.InDelta(t, float64(4*(64*64*4+64*64*4)), sm.MemReadBytes, 1e-9)
	assert.InDelta(t, float64(4*64*64*4), sm.MemWriteBytes, 1e-9)
}

func TestProjectDegenerateHardware(t *testing.T) {
	p, err := contraction.NewGemmProblem(64, 64, 64, 1)
	require.NoError(t, err)

	// Zero-valued hardware falls back to safe divisors.
	g := NewAnalyticalModel().Project(p, testSolution(), device.Properties{}).Granularities
	assert.False(t, g.TilesPerCu == 0)
	assert.Greater(t, g.Total, 0.0)
}
