package contraction

import "fmt"

// Solution describes a compiled kernel variant: the macro-tile it carves the
// output into, its workgroup shape and split factors. The benchmarking core
// copies the descriptor per solution; it never mutates it.
type Solution struct {
	Name string

	// Macro tile carved out of the MxN output per workgroup.
	MacroTile0 int
	MacroTile1 int

	// Unroll depth along K.
	DepthU int

	WorkgroupSize int // threads per workgroup
	WavefrontSize int // threads per wave, 64 on CDNA

	// GlobalSplitU > 1 splits the K loop across workgroups.
	GlobalSplitU int
}

func (s Solution) String() string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("MT%dx%dx%d", s.MacroTile0, s.MacroTile1, s.DepthU)
}

// DefaultSolutions is a small inventory of kernel variants covering common
// macro-tile shapes. Real inventories come from a solution library; this one
// exists so the tool benchmarks something meaningful out of the box.
func DefaultSolutions() []Solution {
	return []Solution{
		{Name: "MT64x64x16_WG256", MacroTile0: 64, MacroTile1: 64, DepthU: 16, WorkgroupSize: 256, WavefrontSize: 64, GlobalSplitU: 1},
		{Name: "MT128x64x16_WG256", MacroTile0: 128, MacroTile1: 64, DepthU: 16, WorkgroupSize: 256, WavefrontSize: 64, GlobalSplitU: 1},
		{Name: "MT128x128x32_WG256", MacroTile0: 128, MacroTile1: 128, DepthU: 32, WorkgroupSize: 256, WavefrontSize: 64, GlobalSplitU: 1},
		{Name: "MT64x32x32_WG128_GSU2", MacroTile0: 64, MacroTile1: 32, DepthU: 32, WorkgroupSize: 128, WavefrontSize: 64, GlobalSplitU: 2},
	}
}
