package narrowband

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gofusion/utils"
)

func TestUnionMask(t *testing.T) {
	live := utils.NewScalarFieldFromRows([][]float64{
		{1., 1., 0.49999955},
		{1., 0.44999936, 0.34999937},
		{-1.5, 0.35000065, 0.25000066},
	})
	canonical := utils.NewScalarFieldFromRows([][]float64{
		{1., -1., 3.7499955e-01},
		{1., 1., 1.9999936e-01},
		{1.5, 1.7500064e-01, 1.0000064e-01},
	})
	{ // Only cells saturated in both fields are excluded
		m := UnionMask(live, canonical, DefaultTruncation)
		assert.Equal(t, []bool{
			false, false, true,
			false, true, true,
			false, true, true,
		}, m.InBand)
		assert.Equal(t, 5, m.Count())
		assert.True(t, m.At(1, 1))
		assert.False(t, m.At(2, 0))
	}
	{ // A wider truncation bound widens the band
		m := UnionMask(live, canonical, 1.2)
		assert.Equal(t, 8, m.Count())
		assert.False(t, m.At(2, 0))
	}
	{ // Mismatched fields fail fast
		assert.Panics(t, func() {
			UnionMask(live, utils.NewScalarField(3, 2), DefaultTruncation)
		})
	}
}

func TestApply(t *testing.T) {
	live := utils.NewScalarFieldFromRows([][]float64{
		{0.3, 1.0},
		{-1.0, 1.0},
	})
	canonical := utils.NewScalarFieldFromRows([][]float64{
		{1.0, -0.3},
		{1.0, 0.0},
	})
	newGradient := func() utils.VectorField {
		return utils.NewVectorFieldFromRows([][][2]float64{
			{{1, 2}, {3, 4}},
			{{5, 6}, {7, 8}},
		})
	}
	{ // Gradient is modified in place and returned
		G := newGradient()
		R := Apply(live, canonical, G)
		assert.True(t, R.Aliases(G))
		assert.Equal(t, []float64{1, 2, 3, 4, 0, 0, 7, 8}, G.Data)
	}
	{ // Idempotence
		G := newGradient()
		m := NewFieldPair(live, canonical).UnionMask()
		m.Apply(G)
		once := G.Copy()
		m.Apply(G)
		assert.Equal(t, once.Data, G.Data)
	}
	{ // The 2D mask broadcasts over leading batch dimensions
		data := make([]float64, 3*2*2*2)
		for i := range data {
			data[i] = 1
		}
		G := utils.NewBatchedVectorField([]int{3}, 2, 2, data)
		Apply(live, canonical, G)
		for b := 0; b < 3; b++ {
			assert.Equal(t, []float64{1, 1, 1, 1, 0, 0, 1, 1}, G.Batch(b).Data)
		}
	}
	{ // Everything saturated gives an all zero gradient, not an error
		sat := utils.NewScalarFieldFromRows([][]float64{{1, -1}, {1, 2}})
		G := newGradient()
		Apply(sat, sat, G)
		assert.Equal(t, make([]float64, 8), G.Data)
		assert.Equal(t, 0, UnionMask(sat, sat, DefaultTruncation).Count())
	}
	{ // Spatial mismatch with the gradient fails fast
		assert.Panics(t, func() { Apply(live, canonical, utils.NewVectorField(2, 3)) })
	}
	{ // Zero truncation in a pair falls back to the default bound
		fp := &FieldPair{Live: live, Canonical: canonical}
		assert.Equal(t, 3, fp.UnionMask().Count())
	}
}
