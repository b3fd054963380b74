// Package sobolev low-pass filters gradient fields with a separable kernel,
// turning a plain L2 gradient into an approximate Sobolev (H1) gradient
// before it is applied as a warp update.
package sobolev

import (
	"math"

	"github.com/notargets/gofusion/utils"
)

// Filter convolves every vector component of a field with Kernel, first down
// each column and then along each row. Output lines keep the input length.
type Filter struct {
	Kernel         []float64
	Boundary       BoundaryMode
	ZeroEpsilon    float64 // Defaults to ZeroEpsilon
	ParallelDegree int     // Lines of a pass are split over this many goroutines
}

func NewFilter(kernelO ...[]float64) (f *Filter) {
	f = &Filter{
		Kernel:         DefaultKernel(),
		Boundary:       ZeroPad,
		ZeroEpsilon:    ZeroEpsilon,
		ParallelDegree: 1,
	}
	if len(kernelO) != 0 && kernelO[0] != nil {
		f.Kernel = kernelO[0]
	}
	CheckKernel(f.Kernel)
	return
}

// Smooth filters field and overwrites its storage with the result
func (f *Filter) Smooth(field utils.VectorField) utils.VectorField {
	return f.smooth(field, false)
}

// SmoothPreserveZeros filters like Smooth, then forces every value that was
// zero in the input back to zero after each pass, so masked out cells stay
// masked out
func (f *Filter) SmoothPreserveZeros(field utils.VectorField) utils.VectorField {
	return f.smooth(field, true)
}

// ConvolveY runs the column pass alone, in place
func (f *Filter) ConvolveY(field utils.VectorField) utils.VectorField {
	CheckKernel(f.Kernel)
	var (
		nr, nc = field.Dims()
		out    = make([]float64, 2*nr*nc)
	)
	for b := 0; b < field.NumBatches(); b++ {
		src := field.Batch(b).Data
		f.passY(out, src, nr, nc)
		copy(src, out)
	}
	return field
}

// ConvolveX runs the row pass alone, in place
func (f *Filter) ConvolveX(field utils.VectorField) utils.VectorField {
	CheckKernel(f.Kernel)
	var (
		nr, nc = field.Dims()
		out    = make([]float64, 2*nr*nc)
	)
	for b := 0; b < field.NumBatches(); b++ {
		src := field.Batch(b).Data
		f.passX(out, src, nr, nc)
		copy(src, out)
	}
	return field
}

func (f *Filter) smooth(field utils.VectorField, preserveZeros bool) utils.VectorField {
	CheckKernel(f.Kernel)
	var (
		nr, nc = field.Dims()
		tmp    = make([]float64, 2*nr*nc)
		out    = make([]float64, 2*nr*nc)
		zeros  []bool
		eps    = f.ZeroEpsilon
	)
	if eps == 0 {
		eps = ZeroEpsilon
	}
	if preserveZeros {
		zeros = make([]bool, 2*nr*nc)
	}
	for b := 0; b < field.NumBatches(); b++ {
		src := field.Batch(b).Data
		if preserveZeros {
			for k, val := range src {
				zeros[k] = math.Abs(val) < eps
			}
		}
		f.passY(tmp, src, nr, nc)
		if preserveZeros {
			applyZeros(tmp, zeros)
		}
		f.passX(out, tmp, nr, nc)
		if preserveZeros {
			applyZeros(out, zeros)
		}
		copy(src, out)
	}
	return field
}

// passY convolves each of the 2*nc column lines, line l being component l%2
// of column l/2
func (f *Filter) passY(dst, src []float64, nr, nc int) {
	stride := 2 * nc
	utils.NewPartitionMap(f.ParallelDegree, 2*nc).Run(func(lMin, lMax int) {
		for l := lMin; l < lMax; l++ {
			convolve1D(dst, src, l, stride, nr, f.Kernel, f.Boundary)
		}
	})
}

// passX convolves each of the 2*nr row lines, line l being component l%2 of
// row l/2
func (f *Filter) passX(dst, src []float64, nr, nc int) {
	utils.NewPartitionMap(f.ParallelDegree, 2*nr).Run(func(lMin, lMax int) {
		for l := lMin; l < lMax; l++ {
			convolve1D(dst, src, 2*nc*(l/2)+l%2, 2, nc, f.Kernel, f.Boundary)
		}
	})
}

func applyZeros(data []float64, zeros []bool) {
	for k, isZero := range zeros {
		if isZero {
			data[k] = 0
		}
	}
}

// convolve1D computes the centered, input length convolution of the n values
// src[offset], src[offset+stride], ... into the same positions of dst
func convolve1D(dst, src []float64, offset, stride, n int, kernel []float64, bm BoundaryMode) {
	khalf := len(kernel) / 2
	for i := 0; i < n; i++ {
		var sum float64
		for k, kv := range kernel {
			s := i + khalf - k
			if s < 0 || s >= n {
				if bm == ZeroPad {
					continue
				}
				s = min(max(s, 0), n-1)
			}
			sum += kv * src[offset+s*stride]
		}
		dst[offset+i*stride] = sum
	}
}

// Smooth filters field in place with the given kernel, or the default kernel
func Smooth(field utils.VectorField, kernelO ...[]float64) utils.VectorField {
	return NewFilter(kernelO...).Smooth(field)
}

// SmoothPreserveZeros is Smooth keeping exact zeros of the input at zero
func SmoothPreserveZeros(field utils.VectorField, kernelO ...[]float64) utils.VectorField {
	return NewFilter(kernelO...).SmoothPreserveZeros(field)
}

func ConvolveY(field utils.VectorField, kernelO ...[]float64) utils.VectorField {
	return NewFilter(kernelO...).ConvolveY(field)
}

func ConvolveX(field utils.VectorField, kernelO ...[]float64) utils.VectorField {
	return NewFilter(kernelO...).ConvolveX(field)
}
