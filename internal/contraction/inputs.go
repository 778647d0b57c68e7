package contraction

import "math/rand"

// Inputs holds the operand buffers for one problem. For a grouped problem
// there is one entry per member, in member order.
type Inputs struct {
	Operands []Operands
}

// Operands is the buffer set of a single GEMM.
type Operands struct {
	A []float32 // M*K*batch
	B []float32 // K*N*batch
	C []float32 // M*N*batch
	D []float32 // M*N*batch
}

// NewInputs allocates and initializes operand buffers for every member of
// the problem. Data is pseudo-random so kernels cannot shortcut on zeros.
func NewInputs(p Problem) *Inputs {
	in := &Inputs{}
	rng := rand.New(rand.NewSource(42))

	forEachMember(p, func(g *GemmProblem) {
		ops := Operands{
			A: randomSlice(rng, g.M*g.K*g.BatchCount),
			B: randomSlice(rng, g.K*g.N*g.BatchCount),
			C: randomSlice(rng, g.M*g.N*g.BatchCount),
			D: make([]float32, g.M*g.N*g.BatchCount),
		}
		in.Operands = append(in.Operands, ops)
	})
	return in
}

func forEachMember(p Problem, fn func(*GemmProblem)) {
	if grouped, ok := p.(*GroupedProblem); ok {
		for i := range grouped.Gemms {
			fn(&grouped.Gemms[i])
		}
		return
	}
	fn(p.Representative())
}

func randomSlice(rng *rand.Rand, n int) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = rng.Float32()*2 - 1
	}
	return s
}
