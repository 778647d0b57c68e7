// Package kernels provides reference contraction kernels executed on the
// device runtime. They are the opaque launch action the timing controller
// measures around: the runner enqueues them, the controller only sees
// streams and events.
package kernels

import (
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/contraction"
	"github.com/chiranjeevipattigidi/hipBLASLt/internal/device"
)

// EnqueueProblem submits one launch of the whole problem on the stream:
// every member of a grouped problem, a single GEMM otherwise.
func EnqueueProblem(stream *device.Stream, p contraction.Problem, in *contraction.Inputs, sol contraction.Solution) {
	if grouped, ok := p.(*contraction.GroupedProblem); ok {
		for i := range grouped.Gemms {
			EnqueueGemm(stream, &grouped.Gemms[i], &in.Operands[i], sol)
		}
		return
	}
	EnqueueGemm(stream, p.Representative(), &in.Operands[0], sol)
}

// EnqueueGemm submits one GEMM launch on the stream. The kernel walks the
// output in macro-tile order, matching how the solution would carve the
// problem across workgroups.
func EnqueueGemm(stream *device.Stream, p *contraction.GemmProblem, ops *contraction.Operands, sol contraction.Solution) {
	m, n, k := p.M, p.N, p.K
	batch := p.BatchCount

	mt0, mt1 := sol.MacroTile0, sol.MacroTile1
	if mt0 <= 0 {
		mt0 = 64
	}
	if mt1 <= 0 {
		mt1 = 64
	}

	a, b, c, d := ops.A, ops.B, ops.C, ops.D
	useBeta := p.UseBeta

	stream.Submit(func() {
		for bi := 0; bi < batch; bi++ {
			aOff := bi * m * k
			bOff := bi * k * n
			cOff := bi * m * n
			for i0 := 0; i0 < m; i0 += mt0 {
				iEnd := min(i0+mt0, m)
				for j0 := 0; j0 < n; j0 += mt1 {
					jEnd := min(j0+mt1, n)
					gemmTile(a[aOff:], b[bOff:], c[cOff:], d[cOff:],
						m, n, k, i0, iEnd, j0, jEnd, useBeta)
				}
			}
		}
	})
}

// gemmTile computes one macro tile of D = A*B (+ C), row-major operands.
func gemmTile(a, b, c, d []float32, m, n, k, i0, iEnd, j0, jEnd int, useBeta bool) {
	for i := i0; i < iEnd; i++ {
		for j := j0; j < jEnd; j++ {
			var acc float32
			for kk := 0; kk < k; kk++ {
				acc += a[i*k+kk] * b[kk*n+j]
			}
			if useBeta {
				acc += c[i*n+j]
			}
			d[i*n+j] = acc
		}
	}
}

// EnqueueFlush submits a cache-disturbing no-result task, used to measure
// the constant launch/flush overhead subtracted from every timing sample.
func EnqueueFlush(stream *device.Stream, scratch []float32) {
	stream.Submit(func() {
		for i := range scratch {
			scratch[i]++
		}
	})
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
