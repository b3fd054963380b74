// Package regularizer evaluates the Tikhonov (H1) smoothness term of a warp
// field: the energy 0.5 * sum |grad w|^2 and its gradient with respect to w.
//
// Two evaluators exist. DirectGradient walks the grid cell by cell and is the
// reference for gradients. VectorizedGradient and Energy work on whole slices.
// Both produce the same gradient, a negated Laplacian with zero-derivative
// boundaries, but their energies use different boundary differences: the
// direct energy takes central differences over duplicated boundary cells,
// Energy takes one-sided differences on the boundary. The energy only tracks
// convergence, so the two values are allowed to disagree.
package regularizer

import (
	"fmt"

	"github.com/notargets/gofusion/narrowband"
	"github.com/notargets/gofusion/utils"
)

// DirectGradient writes the smoothing term gradient of warp into dst and
// returns dst along with the smoothing energy. With a non-nil field pair,
// cells outside the narrow band union get a zero gradient and add no energy.
func DirectGradient(dst, warp utils.VectorField, fields *narrowband.FieldPair) (utils.VectorField, float64) {
	var (
		nr, nc = warp.Dims()
		inBand []bool
		energy float64
	)
	checkDestination(dst, warp)
	if fields != nil {
		mask := fields.UnionMask()
		mask.CheckDims(nr, nc)
		inBand = mask.InBand
	}
	for b := 0; b < warp.NumBatches(); b++ {
		var (
			wD = warp.Batch(b).Data
			gD = dst.Batch(b).Data
		)
		for i := 0; i < nr; i++ {
			iPrev, iNext := clamp(i-1, nr), clamp(i+1, nr)
			for j := 0; j < nc; j++ {
				ind := 2 * (j + nc*i)
				if inBand != nil && !inBand[j+nc*i] {
					gD[ind], gD[ind+1] = 0, 0
					continue
				}
				var (
					jPrev, jNext = clamp(j-1, nc), clamp(j+1, nc)
					up           = 2 * (j + nc*iPrev)
					down         = 2 * (j + nc*iNext)
					left         = 2 * (jPrev + nc*i)
					right        = 2 * (jNext + nc*i)
				)
				for c := 0; c < 2; c++ {
					w := wD[ind+c]
					gD[ind+c] = 4*w - wD[up+c] - wD[down+c] - wD[left+c] - wD[right+c]
					dRow := 0.5 * (wD[down+c] - wD[up+c])
					dCol := 0.5 * (wD[right+c] - wD[left+c])
					energy += dRow*dRow + dCol*dCol
				}
			}
		}
	}
	return dst, 0.5 * energy
}

// clamp duplicates the boundary cell for out of grid neighbours
func clamp(i, n int) int {
	switch {
	case i < 0:
		return 0
	case i >= n:
		return n - 1
	}
	return i
}

func checkDestination(dst, warp utils.VectorField) {
	if !dst.SameShape(warp) {
		panic(fmt.Errorf("gradient buffer shape %v does not match warp field shape %v", dst.Shape, warp.Shape))
	}
	if dst.Aliases(warp) {
		panic(fmt.Errorf("gradient buffer must not share storage with the warp field"))
	}
}
