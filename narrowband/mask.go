// Package narrowband restricts gradient contributions to the cells where at
// least one of two truncated signed distance fields has not saturated.
package narrowband

import (
	"fmt"
	"math"

	"github.com/notargets/gofusion/utils"
)

// DefaultTruncation is the magnitude at which distance values saturate
const DefaultTruncation = 1.0

// Mask is true where a cell lies inside the band of either field
type Mask struct {
	Nr, Nc int
	InBand []bool // Row major
}

func UnionMask(live, canonical utils.ScalarField, truncation float64) (m Mask) {
	var (
		nr, nc   = live.Dims()
		cnr, cnc = canonical.Dims()
	)
	if nr != cnr || nc != cnc {
		panic(fmt.Errorf("live field is %dx%d but canonical field is %dx%d", nr, nc, cnr, cnc))
	}
	m = Mask{Nr: nr, Nc: nc, InBand: make([]bool, nr*nc)}
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			m.InBand[j+nc*i] = math.Abs(live.At(i, j)) < truncation ||
				math.Abs(canonical.At(i, j)) < truncation
		}
	}
	return
}

func (m Mask) At(i, j int) bool { return m.InBand[j+m.Nc*i] }

// Count returns the number of cells inside the band union
func (m Mask) Count() (n int) {
	for _, in := range m.InBand {
		if in {
			n++
		}
	}
	return
}

// CheckDims panics unless the mask covers an nr x nc grid
func (m Mask) CheckDims(nr, nc int) {
	if m.Nr != nr || m.Nc != nc {
		panic(fmt.Errorf("mask is %dx%d but vector field is %dx%d", m.Nr, m.Nc, nr, nc))
	}
}

// Apply zeroes, in place, every vector outside the band union. The same 2D
// mask is used for every batch of the gradient.
func (m Mask) Apply(gradient utils.VectorField) utils.VectorField {
	nr, nc := gradient.Dims()
	m.CheckDims(nr, nc)
	for b := 0; b < gradient.NumBatches(); b++ {
		gD := gradient.Batch(b).Data
		for k, in := range m.InBand {
			if !in {
				gD[2*k], gD[2*k+1] = 0, 0
			}
		}
	}
	return gradient
}

// Weights expands the mask to one 0/1 weight per vector component
func (m Mask) Weights() (w []float64) {
	w = make([]float64, 2*len(m.InBand))
	for k, in := range m.InBand {
		if in {
			w[2*k], w[2*k+1] = 1, 1
		}
	}
	return
}

// Apply masks gradient in place using the default truncation bound
func Apply(live, canonical utils.ScalarField, gradient utils.VectorField) utils.VectorField {
	return UnionMask(live, canonical, DefaultTruncation).Apply(gradient)
}

// FieldPair bundles the live and canonical fields whose band union limits a
// smoothing term evaluation
type FieldPair struct {
	Live, Canonical utils.ScalarField
	Truncation      float64
}

func NewFieldPair(live, canonical utils.ScalarField) *FieldPair {
	return &FieldPair{
		Live:       live,
		Canonical:  canonical,
		Truncation: DefaultTruncation,
	}
}

func (fp *FieldPair) UnionMask() Mask {
	truncation := fp.Truncation
	if truncation == 0 {
		truncation = DefaultTruncation
	}
	return UnionMask(fp.Live, fp.Canonical, truncation)
}
