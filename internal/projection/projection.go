// Package projection implements the analytical performance model the
// benchmarking core consults per solution: how efficiently a problem's work
// tiles map onto the hardware (granularity ratios) and a static estimate of
// memory traffic. The model is consulted before timing, so everything here
// is pure arithmetic over the problem, solution and hardware descriptors.
package projection

import (
	"math"

	"github.com/chiranjeevipattigidi/hipBLASLt/internal/contraction"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/device"
)

// Granularities are occupancy ratios in (0, 1]. A ratio of 1 means the
// dimension divides evenly onto the hardware; lower values mean padding
// waste in that dimension.
type Granularities struct {
	Tile0      float64
	Tile1      float64
	Cu         float64
	Wave       float64
	Total      float64
	TilesPerCu float64
}

// StaticModel estimates the memory traffic of one launch in bytes.
type StaticModel struct {
	MemReadBytes  float64
	MemWriteBytes float64
}

// Projection is the full projected-performance record for one
// problem/solution pair on one piece of hardware.
type Projection struct {
	Granularities Granularities
	StaticModel   StaticModel
}

// Model projects performance for a problem/solution pair. The benchmarking
// core treats it as opaque; AnalyticalModel is the stock implementation.
type Model interface {
	Project(p *contraction.GemmProblem, s contraction.Solution, hw device.Properties) Projection
}

// AnalyticalModel derives granularities from tile coverage arithmetic, the
// way an occupancy calculator does: count tiles, round up to hardware
// quanta, and express the waste as a ratio.
type AnalyticalModel struct{}

// NewAnalyticalModel returns the stock projection model.
func NewAnalyticalModel() *AnalyticalModel {
	return &AnalyticalModel{}
}

// Project implements Model.
func (m *AnalyticalModel) Project(p *contraction.GemmProblem, s contraction.Solution, hw device.Properties) Projection {
	tiles0 := ceilDiv(p.M, s.MacroTile0)
	tiles1 := ceilDiv(p.N, s.MacroTile1)

	tile0Gran := float64(p.M) / float64(tiles0*s.MacroTile0)
	tile1Gran := float64(p.N) / float64(tiles1*s.MacroTile1)

	gsu := s.GlobalSplitU
	if gsu < 1 {
		gsu = 1
	}
	totalTiles := tiles0 * tiles1 * p.BatchCount * gsu

	cus := hw.ComputeUnits
	if cus < 1 {
		cus = 1
	}
	tilesPerCu := float64(totalTiles) / float64(cus)
	cuGran := float64(totalTiles) / (math.Ceil(tilesPerCu) * float64(cus))

	waveGran := m.waveGranularity(totalTiles, s, hw)

	g := Granularities{
		Tile0:      tile0Gran,
		Tile1:      tile1Gran,
		Cu:         cuGran,
		Wave:       waveGran,
		Total:      tile0Gran * tile1Gran * cuGran * waveGran,
		TilesPerCu: tilesPerCu,
	}

	return Projection{
		Granularities: g,
		StaticModel:   staticModel(p),
	}
}

// waveGranularity measures how evenly the solution's waves fill the wave
// slots of the compute units they occupy.
func (m *AnalyticalModel) waveGranularity(totalTiles int, s contraction.Solution, hw device.Properties) float64 {
	wavefront := s.WavefrontSize
	if wavefront < 1 {
		wavefront = 64
	}
	wavesPerWorkgroup := ceilDiv(s.WorkgroupSize, wavefront)

	maxWaves := hw.MaxWavesPerCU
	if maxWaves < 1 {
		maxWaves = 32
	}
	cus := hw.ComputeUnits
	if cus < 1 {
		cus = 1
	}

	totalWaves := float64(totalTiles * wavesPerWorkgroup)
	slots := math.Ceil(totalWaves/float64(cus*maxWaves)) * float64(cus*maxWaves)
	if slots == 0 {
		return 1
	}
	gran := totalWaves / slots
	if gran > 1 {
		gran = 1
	}
	return gran
}

// staticModel counts the bytes one launch must move: both input matrices and
// (with beta) the accumulator are read once, the output is written once.
func staticModel(p *contraction.GemmProblem) StaticModel {
	batch := float64(p.BatchCount)
	read := float64(p.M)*float64(p.K)*float64(p.ABytes) +
		float64(p.K)*float64(p.N)*float64(p.BBytes)
	if p.UseBeta {
		read += float64(p.M) * float64(p.N) * float64(p.CBytes)
	}
	write := float64(p.M) * float64(p.N) * float64(p.DBytes)

	return StaticModel{
		MemReadBytes:  read * batch,
		MemWriteBytes: write * batch,
	}
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
