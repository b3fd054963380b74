package regularizer

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofusion/utils"
)

// LaplacianOperator is the assembled smoothing term Hessian for one grid
// shape: a graph Laplacian over the 4-neighbour lattice, where each row holds
// the in-grid neighbour count on the diagonal and -1 for every neighbour.
type LaplacianOperator struct {
	Nr, Nc int
	L      *sparse.CSR
}

func NewLaplacianOperator(nr, nc int) (op *LaplacianOperator) {
	var (
		N   = nr * nc
		dok = sparse.NewDOK(N, N)
	)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			var (
				k      = j + nc*i
				degree float64
			)
			for _, nb := range [4][2]int{{i - 1, j}, {i + 1, j}, {i, j - 1}, {i, j + 1}} {
				ii, jj := nb[0], nb[1]
				if ii < 0 || ii >= nr || jj < 0 || jj >= nc {
					continue
				}
				dok.Set(k, jj+nc*ii, -1)
				degree++
			}
			dok.Set(k, k, degree)
		}
	}
	op = &LaplacianOperator{
		Nr: nr,
		Nc: nc,
		L:  dok.ToCSR(),
	}
	return
}

// Apply writes L*w for both components of every batch of warp into dst
func (op *LaplacianOperator) Apply(dst, warp utils.VectorField) utils.VectorField {
	var (
		nr, nc = warp.Dims()
		N      = nr * nc
		x      = mat.NewVecDense(N, nil)
		y      = mat.NewVecDense(N, nil)
	)
	if nr != op.Nr || nc != op.Nc {
		panic(fmt.Errorf("operator assembled for %dx%d grid, warp field is %dx%d", op.Nr, op.Nc, nr, nc))
	}
	checkDestination(dst, warp)
	for b := 0; b < warp.NumBatches(); b++ {
		var (
			wD = warp.Batch(b).Data
			gD = dst.Batch(b).Data
		)
		for c := 0; c < 2; c++ {
			for k := 0; k < N; k++ {
				x.SetVec(k, wD[2*k+c])
			}
			y.MulVec(op.L, x)
			for k := 0; k < N; k++ {
				gD[2*k+c] = y.AtVec(k)
			}
		}
	}
	return dst
}

// OperatorGradient assembles the operator for warp's grid and applies it
func OperatorGradient(dst, warp utils.VectorField) utils.VectorField {
	nr, nc := warp.Dims()
	return NewLaplacianOperator(nr, nc).Apply(dst, warp)
}
