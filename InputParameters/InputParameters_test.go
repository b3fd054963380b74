package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofusion/narrowband"
	"github.com/notargets/gofusion/sobolev"
)

func TestParse(t *testing.T) {
	{ // Full file
		fileInput := []byte(`
Title: Test Case
SmoothingTermWeight: 0.5
TruncationBound: 1.2
SobolevKernel: [0.25, 0.5, 0.25]
BoundaryMode: Replicate
ParallelDegree: 4
BandUnionOnly: false
LiveField:
  - [1., 0.5]
  - [0.2, -1.]
CanonicalField:
  - [1., 0.1]
  - [0.3, 0.9]
WarpField:
  - [[0., 0.], [1., -1.]]
  - [[0.5, 0.25], [2., 3.]]
`)
		ip := &FusionParameters{}
		require.NoError(t, ip.Parse(fileInput))
		ip.Print()
		assert.Equal(t, "Test Case", ip.Title)
		assert.Equal(t, 0.5, ip.SmoothingTermWeight)
		assert.Equal(t, 1.2, ip.TruncationBound)
		assert.Equal(t, []float64{0.25, 0.5, 0.25}, ip.SobolevKernel)
		assert.False(t, *ip.BandUnionOnly)
		assert.Equal(t, sobolev.ZeroEpsilon, ip.ZeroEpsilon)

		W, err := ip.Warp()
		require.NoError(t, err)
		nr, nc := W.Dims()
		assert.Equal(t, 2, nr)
		assert.Equal(t, 2, nc)
		assert.Equal(t, [2]float64{2, 3}, W.At(1, 1))

		fp := ip.FieldPair()
		require.NotNil(t, fp)
		assert.Equal(t, 1.2, fp.Truncation)
		assert.Equal(t, 0.9, fp.Canonical.At(1, 1))

		f := ip.Filter()
		assert.Equal(t, sobolev.Replicate, f.Boundary)
		assert.Equal(t, 4, f.ParallelDegree)
		assert.Equal(t, ip.SobolevKernel, f.Kernel)
	}
	{ // Defaults fill in what the file omits
		ip := &FusionParameters{}
		require.NoError(t, ip.Parse([]byte(`Title: Defaults`)))
		assert.Equal(t, DefaultSmoothingTermWeight, ip.SmoothingTermWeight)
		assert.Equal(t, narrowband.DefaultTruncation, ip.TruncationBound)
		assert.Equal(t, sobolev.DefaultKernel(), ip.SobolevKernel)
		assert.Equal(t, 1, ip.ParallelDegree)
		assert.True(t, *ip.BandUnionOnly)
		assert.Nil(t, ip.FieldPair())
		_, err := ip.Warp()
		assert.Error(t, err)
		assert.Equal(t, sobolev.ZeroPad, ip.Filter().Boundary)
		assert.Equal(t, NewFusionParameters(), &FusionParameters{
			SmoothingTermWeight: ip.SmoothingTermWeight,
			TruncationBound:     ip.TruncationBound,
			SobolevKernel:       ip.SobolevKernel,
			ZeroEpsilon:         ip.ZeroEpsilon,
			ParallelDegree:      ip.ParallelDegree,
			BandUnionOnly:       ip.BandUnionOnly,
		})
	}
}

func TestValidate(t *testing.T) {
	bad := map[string]string{
		"even kernel":       `SobolevKernel: [0.5, 0.5]`,
		"boundary mode":     `BoundaryMode: mirror`,
		"lonely live field": "LiveField:\n  - [1., 2.]",
		"ragged field": `
LiveField:
  - [1., 2.]
  - [1.]
CanonicalField:
  - [1., 2.]
  - [1., 2.]`,
		"field mismatch": `
LiveField:
  - [1., 2.]
CanonicalField:
  - [1.]`,
		"warp components": `WarpField: [[[0., 0., 0.]]]`,
		"warp shape": `
LiveField:
  - [1., 2.]
CanonicalField:
  - [1., 2.]
WarpField: [[[0., 0.]]]`,
		"not yaml": `Title: [`,
	}
	for name, input := range bad {
		ip := &FusionParameters{}
		assert.Error(t, ip.Parse([]byte(input)), name)
	}
}

func TestSimpleTestCase01(t *testing.T) {
	live, canonical := SimpleTestCase01()
	nr, nc := live.Dims()
	assert.Equal(t, 4, nr)
	assert.Equal(t, 4, nc)
	cnr, cnc := canonical.Dims()
	assert.Equal(t, nr, cnr)
	assert.Equal(t, nc, cnc)
	mask := narrowband.UnionMask(live, canonical, narrowband.DefaultTruncation)
	// The saturated left column of both fields is outside the band
	for i := 0; i < 4; i++ {
		assert.False(t, mask.At(i, 0))
	}
	assert.True(t, mask.At(3, 3))
}
