package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ghodss/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofusion/InputParameters"
	"github.com/notargets/gofusion/sobolev"
)

var fileInput = []byte(`
Title: Corner Case
SmoothingTermWeight: 0.5
LiveField:
  - [1., 1., 0.49999955]
  - [1., 0.44999936, 0.34999937]
  - [1., 0.35000065, 0.25000066]
CanonicalField:
  - [1., 1., 0.37499955]
  - [1., 0.32499936, 0.19999936]
  - [1., 0.17500064, 0.10000064]
WarpField:
  - [[0., 0.], [0., 0.], [-0.3, -0.2]]
  - [[0., 0.], [-0.40, -0.40], [-0.1, -0.2]]
  - [[0., 0.], [-0.6, -0.2], [-0.1, -0.1]]
`)

func TestRunRegularize(t *testing.T) {
	var (
		ip       = &InputParameters.FusionParameters{}
		expected = [][][]float64{
			{{0., 0.}, {0., 0.}, {-0.5, -0.2}},
			{{0., 0.}, {-0.9, -1.2}, {0.5, 0.1}},
			{{0., 0.}, {-1.3, -0.1}, {0.5, 0.2}},
		}
	)
	require.NoError(t, ip.Parse(fileInput))
	assert.Equal(t, Operator, NewMethodType(" Operator"))
	assert.Equal(t, "Vectorized", Vectorized.Print())
	assert.Panics(t, func() { NewMethodType("spectral") })
	{ // Direct evaluator, masked
		res, err := RunRegularize(&Regularize{Method: Direct, BandUnionOnly: true}, ip)
		require.NoError(t, err)
		assert.Equal(t, "Corner Case", res.Title)
		assert.InDelta(t, 0.14625, res.Energy, 1.e-6)
		assert.InDelta(t, 0.5*0.14625, res.WeightedEnergy, 1.e-6)
		assert.InDelta(t, 1.5, res.MaxNorm, 1.e-6)
		assert.Equal(t, [2]int{1, 1}, res.MaxNormAt)
		assertRowsInDelta(t, expected, res.Gradient)
	}
	for _, method := range []MethodType{Vectorized, Operator} {
		res, err := RunRegularize(&Regularize{Method: method, BandUnionOnly: true}, ip)
		require.NoError(t, err)
		assert.Equal(t, method.Print(), res.Method)
		assert.InDelta(t, 0.39, res.Energy, 1.e-6)
		assertRowsInDelta(t, expected, res.Gradient)
	}
	{ // Without the mask the saturated column picks up a gradient
		res, err := RunRegularize(&Regularize{Method: Vectorized}, ip)
		require.NoError(t, err)
		assert.InDelta(t, 0.7, res.Gradient[0][1][0], 1.e-6)
	}
	{ // Predefined fields only apply when the file has none
		ip4 := &InputParameters.FusionParameters{}
		require.NoError(t, ip4.Parse([]byte(`
WarpField:
  - [[0., 0.], [0., 0.], [-0.35937524, -0.18750024], [-0.13125, -0.17500037]]
  - [[0., 0.], [-0.4062504, -0.4062496], [-0.09375, -0.1874992], [-0.04375001, -0.17499907]]
  - [[0., 0.], [-0.65624946, -0.21874908], [-0.09375, -0.1499992], [-0.04375001, -0.21874908]]
  - [[0., 0.], [-0.5312497, -0.18750025], [-0.09374999, -0.15000032], [-0.13125001, -0.2625004]]
`)))
		plain, err := RunRegularize(&Regularize{Method: Direct, BandUnionOnly: true}, ip4)
		require.NoError(t, err)
		masked, err := RunRegularize(&Regularize{Method: Direct, BandUnionOnly: true, SimpleTestCase: true}, ip4)
		require.NoError(t, err)
		assert.InDelta(t, 0.2126010925, masked.Energy, 1.e-6)
		assert.Greater(t, plain.Energy, masked.Energy)
		_, err = RunRegularize(&Regularize{Method: Direct, BandUnionOnly: true, SimpleTestCase: true}, ip)
		require.NoError(t, err)
	}
	{ // Missing warp field
		_, err := RunRegularize(&Regularize{}, InputParameters.NewFusionParameters())
		assert.Error(t, err)
	}
}

func TestRunSmooth(t *testing.T) {
	ip := &InputParameters.FusionParameters{}
	require.NoError(t, ip.Parse(fileInput))
	{
		res, err := RunSmooth(&Smooth{}, ip)
		require.NoError(t, err)
		W, _ := ip.Warp()
		sobolev.Smooth(W)
		assertRowsInDelta(t, vectorRows(W), res.WarpField)
		assert.Equal(t, "Zero padding", res.Boundary)
		assert.Equal(t, sobolev.DefaultKernel(), res.Kernel)
	}
	{ // Zeros of the first column survive
		res, err := RunSmooth(&Smooth{PreserveZeros: true}, ip)
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			assert.Equal(t, []float64{0, 0}, res.WarpField[i][0])
		}
		assert.Equal(t, []float64{0, 0}, res.WarpField[0][1])
	}
	{ // Identity kernel
		ip.SobolevKernel = []float64{0, 1, 0}
		res, err := RunSmooth(&Smooth{}, ip)
		require.NoError(t, err)
		assert.Equal(t, ip.WarpField, res.WarpField)
		assert.InDelta(t, 0.6324555320336759, res.MaxNorm, 1.e-12)
		assert.Equal(t, [2]int{2, 1}, res.MaxNormAt)
	}
}

func TestReadWrite(t *testing.T) {
	dir := t.TempDir()
	_, err := readParameters("")
	assert.Error(t, err)
	_, err = readParameters(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	icFile := filepath.Join(dir, "input.yaml")
	require.NoError(t, os.WriteFile(icFile, fileInput, 0644))
	ip, err := readParameters(icFile)
	require.NoError(t, err)
	assert.Equal(t, 0.5, ip.SmoothingTermWeight)

	res, err := RunRegularize(&Regularize{Method: Direct, BandUnionOnly: true}, ip)
	require.NoError(t, err)
	outFile := filepath.Join(dir, "out.yaml")
	require.NoError(t, writeOutput(outFile, res))
	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var back RegularizeResult
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, res.Method, back.Method)
	assert.InDelta(t, res.Energy, back.Energy, 1.e-12)
	assertRowsInDelta(t, res.Gradient, back.Gradient)
}

func assertRowsInDelta(t *testing.T, expected, actual [][][]float64) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		require.Len(t, actual[i], len(expected[i]))
		for j := range expected[i] {
			assert.InDeltaSlice(t, expected[i][j], actual[i][j], 1.e-6)
		}
	}
}
