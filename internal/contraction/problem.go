// Package contraction describes tensor-contraction problems and the compiled
// kernel variants ("solutions") that execute them. A problem is either a
// single GEMM or a grouped batch of GEMMs; both expose a uniform capability
// so the benchmarking core never needs to type-switch per phase.
package contraction

import (
	"fmt"

	"github.com/pkg/errors"
)

// GemmProblem is a single contraction: D = alpha*A*B + beta*C with shapes
// MxK * KxN -> MxN, repeated BatchCount times.
type GemmProblem struct {
	M, N, K    int
	BatchCount int

	// Element widths in bytes for each operand.
	ABytes, BBytes, CBytes, DBytes int

	UseBeta bool
}

// NewGemmProblem builds a single-GEMM problem with float32 operands.
func NewGemmProblem(m, n, k, batch int) (*GemmProblem, error) {
	if m <= 0 || n <= 0 || k <= 0 {
		return nil, errors.Errorf("contraction: invalid problem shape %dx%dx%d", m, n, k)
	}
	if batch <= 0 {
		batch = 1
	}
	return &GemmProblem{
		M: m, N: n, K: k,
		BatchCount: batch,
		ABytes:     4, BBytes: 4, CBytes: 4, DBytes: 4,
	}, nil
}

// FlopCount returns the floating-point operations one launch of this problem
// performs: one multiply and one add per inner-product element.
func (p *GemmProblem) FlopCount() float64 {
	return 2 * float64(p.M) * float64(p.N) * float64(p.K) * float64(p.BatchCount)
}

// TotalFlopCount implements Problem. For a single GEMM it equals FlopCount.
func (p *GemmProblem) TotalFlopCount() float64 {
	return p.FlopCount()
}

// Representative implements Problem.
func (p *GemmProblem) Representative() *GemmProblem {
	return p
}

// Count implements Problem.
func (p *GemmProblem) Count() int {
	return 1
}

func (p *GemmProblem) String() string {
	if p.BatchCount > 1 {
		return fmt.Sprintf("gemm_%dx%dx%d_b%d", p.M, p.N, p.K, p.BatchCount)
	}
	return fmt.Sprintf("gemm_%dx%dx%d", p.M, p.N, p.K)
}

// GroupedProblem is an ordered batch of GEMMs measured as one unit. The
// first member is the representative used by the projection model; FLOP
// totals sum over all members.
type GroupedProblem struct {
	Gemms []GemmProblem
}

// NewGroupedProblem builds a grouped problem. At least one member is
// required; an empty group has no representative and cannot be measured.
func NewGroupedProblem(gemms []GemmProblem) (*GroupedProblem, error) {
	if len(gemms) == 0 {
		return nil, errors.New("contraction: grouped problem needs at least one gemm")
	}
	return &GroupedProblem{Gemms: gemms}, nil
}

// TotalFlopCount implements Problem: the sum over every member.
func (p *GroupedProblem) TotalFlopCount() float64 {
	var total float64
	for i := range p.Gemms {
		total += p.Gemms[i].FlopCount()
	}
	return total
}

// Representative implements Problem: the first member.
func (p *GroupedProblem) Representative() *GemmProblem {
	return &p.Gemms[0]
}

// Count implements Problem.
func (p *GroupedProblem) Count() int {
	return len(p.Gemms)
}

func (p *GroupedProblem) String() string {
	return fmt.Sprintf("grouped_gemm_x%d", len(p.Gemms))
}

// Problem is the capability both variants expose to the benchmarking core.
// It is resolved once when a problem becomes active; phase hooks only ever
// consume these three operations.
type Problem interface {
	fmt.Stringer

	// TotalFlopCount is the floating-point work of one launch, summed
	// across members for a grouped batch.
	TotalFlopCount() float64

	// Representative is the member the projection model runs against.
	Representative() *GemmProblem

	// Count is the number of member contractions in one launch.
	Count() int
}

var (
	_ Problem = (*GemmProblem)(nil)
	_ Problem = (*GroupedProblem)(nil)
)
