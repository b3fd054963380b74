package regularizer

import (
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gofusion/narrowband"
	"github.com/notargets/gofusion/utils"
)

// VectorizedGradient writes the smoothing term gradient of warp into dst
// using shifted differences over whole rows, batch by batch, and returns dst.
func VectorizedGradient(dst, warp utils.VectorField) utils.VectorField {
	var (
		nr, nc = warp.Dims()
		stride = 2 * nc
		rowD   []float64
		colD   []float64
	)
	checkDestination(dst, warp)
	if nr > 1 {
		rowD = make([]float64, stride*(nr-1))
	}
	if nc > 1 {
		colD = make([]float64, stride-2)
	}
	for b := 0; b < warp.NumBatches(); b++ {
		var (
			wD = warp.Batch(b).Data
			gD = dst.Batch(b).Zero().Data
		)
		if nr > 1 {
			// Forward differences between consecutive rows, every term is
			// subtracted at its origin and added at its destination
			floats.SubTo(rowD, wD[stride:], wD[:len(wD)-stride])
			floats.Sub(gD[:len(gD)-stride], rowD)
			floats.Add(gD[stride:], rowD)
		}
		if nc > 1 {
			for i := 0; i < nr; i++ {
				var (
					row  = wD[i*stride : (i+1)*stride]
					gRow = gD[i*stride : (i+1)*stride]
				)
				floats.SubTo(colD, row[2:], row[:stride-2])
				floats.Sub(gRow[:stride-2], colD)
				floats.Add(gRow[2:], colD)
			}
		}
	}
	return dst
}

// Energy returns the smoothing energy of warp using one-sided differences on
// the grid boundary and central differences inside. When fields is non-nil
// and bandUnionOnly is set, only cells inside the narrow band union count.
func Energy(warp utils.VectorField, fields *narrowband.FieldPair, bandUnionOnly bool) (energy float64) {
	var (
		nr, nc  = warp.Dims()
		weights []float64
		dRow    = make([]float64, 2*nr*nc)
		dCol    = make([]float64, 2*nr*nc)
	)
	if fields != nil && bandUnionOnly {
		mask := fields.UnionMask()
		mask.CheckDims(nr, nc)
		weights = mask.Weights()
	}
	for b := 0; b < warp.NumBatches(); b++ {
		wD := warp.Batch(b).Data
		derivative(dRow, wD, nr, 2*nc)
		for i := 0; i < nr; i++ {
			derivative(dCol[i*2*nc:(i+1)*2*nc], wD[i*2*nc:(i+1)*2*nc], nc, 2)
		}
		floats.Mul(dRow, dRow)
		floats.Mul(dCol, dCol)
		floats.Add(dRow, dCol)
		if weights != nil {
			energy += floats.Dot(dRow, weights)
		} else {
			energy += floats.Sum(dRow)
		}
	}
	return 0.5 * energy
}

// derivative fills dst with the first derivative of src along an axis of n
// blocks, each block being stride values wide. A single block has zero
// derivative.
func derivative(dst, src []float64, n, stride int) {
	if n < 2 {
		for i := range dst {
			dst[i] = 0
		}
		return
	}
	var (
		last = len(src) - stride
	)
	// forward difference blocks, dst[k] = src[k+stride] - src[k]
	floats.SubTo(dst[:last], src[stride:], src[:last])
	// the last block reuses the backward difference of its predecessor
	copy(dst[last:], dst[last-stride:last])
	// interior blocks average the differences on either side, back to front
	// so that each block still reads its unmodified forward difference
	for k := last - 1; k >= stride; k-- {
		dst[k] = 0.5 * (dst[k] + dst[k-stride])
	}
}
