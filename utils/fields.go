package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ScalarField is a dense 2D grid of truncated signed distances
type ScalarField struct {
	M *mat.Dense
}

func NewScalarField(nr, nc int, dataO ...[]float64) (R ScalarField) {
	var m *mat.Dense
	if len(dataO) != 0 {
		if len(dataO[0]) != nr*nc {
			err := fmt.Errorf("mismatch in allocation: NewScalarField nr,nc = %v,%v, len(data[0]) = %v", nr, nc, len(dataO[0]))
			panic(err)
		}
		m = mat.NewDense(nr, nc, dataO[0])
	} else {
		m = mat.NewDense(nr, nc, make([]float64, nr*nc))
	}
	R = ScalarField{m}
	return
}

func NewScalarFieldFromRows(rows [][]float64) (R ScalarField) {
	var (
		nr = len(rows)
		nc int
	)
	if nr != 0 {
		nc = len(rows[0])
	}
	data := make([]float64, 0, nr*nc)
	for i, row := range rows {
		if len(row) != nc {
			panic(fmt.Errorf("ragged scalar field: row %d has %d columns, expected %d", i, len(row), nc))
		}
		data = append(data, row...)
	}
	return NewScalarField(nr, nc, data)
}

func (s ScalarField) Dims() (nr, nc int)      { return s.M.Dims() }
func (s ScalarField) At(i, j int) float64     { return s.M.At(i, j) }
func (s ScalarField) Set(i, j int, v float64) { s.M.Set(i, j, v) }

func (s ScalarField) Rows() (rows [][]float64) {
	nr, nc := s.Dims()
	rows = make([][]float64, nr)
	for i := range rows {
		rows[i] = make([]float64, nc)
		mat.Row(rows[i], i, s.M)
	}
	return
}

func (s ScalarField) String() string {
	return fmt.Sprintf("%v", mat.Formatted(s.M, mat.Squeeze()))
}

// VectorField holds 2-vectors on a grid, shaped [batch..., rows, cols, 2] in
// row-major order. Shape omits the trailing component axis.
type VectorField struct {
	Shape []int
	Data  []float64
}

func NewVectorField(nr, nc int, dataO ...[]float64) VectorField {
	return NewBatchedVectorField(nil, nr, nc, dataO...)
}

func NewBatchedVectorField(batch []int, nr, nc int, dataO ...[]float64) (R VectorField) {
	shape := make([]int, 0, len(batch)+2)
	shape = append(shape, batch...)
	shape = append(shape, nr, nc)
	size := 2
	for _, d := range shape {
		if d < 0 {
			panic(fmt.Errorf("negative dimension in vector field shape %v", shape))
		}
		size *= d
	}
	R.Shape = shape
	if len(dataO) != 0 {
		if len(dataO[0]) != size {
			err := fmt.Errorf("mismatch in allocation: vector field shape %v needs %d values, len(data[0]) = %v", shape, size, len(dataO[0]))
			panic(err)
		}
		R.Data = dataO[0]
	} else {
		R.Data = make([]float64, size)
	}
	return
}

func NewVectorFieldFromRows(rows [][][2]float64) (R VectorField) {
	var (
		nr = len(rows)
		nc int
	)
	if nr != 0 {
		nc = len(rows[0])
	}
	data := make([]float64, 0, 2*nr*nc)
	for i, row := range rows {
		if len(row) != nc {
			panic(fmt.Errorf("ragged vector field: row %d has %d columns, expected %d", i, len(row), nc))
		}
		for _, v := range row {
			data = append(data, v[0], v[1])
		}
	}
	return NewVectorField(nr, nc, data)
}

// Dims returns the spatial dimensions
func (f VectorField) Dims() (nr, nc int) {
	n := len(f.Shape)
	if n < 2 {
		panic(fmt.Errorf("vector field has invalid shape %v", f.Shape))
	}
	return f.Shape[n-2], f.Shape[n-1]
}

func (f VectorField) BatchShape() []int { return f.Shape[:len(f.Shape)-2] }

func (f VectorField) NumBatches() (n int) {
	n = 1
	for _, d := range f.BatchShape() {
		n *= d
	}
	return
}

// Batch returns the b-th spatial slab as an unbatched view sharing storage
func (f VectorField) Batch(b int) VectorField {
	var (
		nr, nc = f.Dims()
		sz     = 2 * nr * nc
	)
	if b < 0 || b >= f.NumBatches() {
		panic(fmt.Errorf("batch index %d out of range for shape %v", b, f.Shape))
	}
	return VectorField{
		Shape: []int{nr, nc},
		Data:  f.Data[b*sz : (b+1)*sz : (b+1)*sz],
	}
}

func (f VectorField) index(i, j int) int {
	f.checkUnbatched()
	_, nc := f.Dims()
	return 2 * (j + nc*i)
}

func (f VectorField) At(i, j int) [2]float64 {
	ind := f.index(i, j)
	return [2]float64{f.Data[ind], f.Data[ind+1]}
}

func (f VectorField) Set(i, j int, v [2]float64) {
	ind := f.index(i, j)
	f.Data[ind], f.Data[ind+1] = v[0], v[1]
}

func (f VectorField) checkUnbatched() {
	if len(f.Shape) != 2 {
		panic(fmt.Errorf("cell access on batched vector field with shape %v, use Batch() first", f.Shape))
	}
}

func (f VectorField) SameShape(o VectorField) bool {
	if len(f.Shape) != len(o.Shape) {
		return false
	}
	for i := range f.Shape {
		if f.Shape[i] != o.Shape[i] {
			return false
		}
	}
	return true
}

// CheckSameShape panics unless o has exactly the shape of f
func (f VectorField) CheckSameShape(o VectorField) {
	if !f.SameShape(o) {
		panic(fmt.Errorf("vector field shape mismatch: %v vs %v", f.Shape, o.Shape))
	}
}

// Aliases reports whether f and o share backing storage
func (f VectorField) Aliases(o VectorField) bool {
	if len(f.Data) == 0 || len(o.Data) == 0 {
		return false
	}
	return &f.Data[0] == &o.Data[0]
}

func (f VectorField) ZerosLike() VectorField {
	return VectorField{
		Shape: append([]int(nil), f.Shape...),
		Data:  make([]float64, len(f.Data)),
	}
}

func (f VectorField) Copy() (R VectorField) {
	R = f.ZerosLike()
	copy(R.Data, f.Data)
	return
}

func (f VectorField) Zero() VectorField {
	for i := range f.Data {
		f.Data[i] = 0
	}
	return f
}

// Add accumulates o into the receiver storage
func (f VectorField) Add(o VectorField) VectorField {
	f.CheckSameShape(o)
	floats.Add(f.Data, o.Data)
	return f
}

func (f VectorField) Scale(a float64) VectorField {
	floats.Scale(a, f.Data)
	return f
}

// Component extracts channel c of an unbatched field
func (f VectorField) Component(c int) (R ScalarField) {
	f.checkUnbatched()
	var (
		nr, nc = f.Dims()
		data   = make([]float64, nr*nc)
	)
	for k := range data {
		data[k] = f.Data[2*k+c]
	}
	R = NewScalarField(nr, nc, data)
	return
}

func (f VectorField) Rows() (rows [][][2]float64) {
	nr, nc := f.Dims()
	rows = make([][][2]float64, nr)
	for i := range rows {
		rows[i] = make([][2]float64, nc)
		for j := range rows[i] {
			rows[i][j] = f.At(i, j)
		}
	}
	return
}

// MaxNorm locates the longest vector across all batches, returning its
// length and spatial position
func (f VectorField) MaxNorm() (length float64, i, j int) {
	var (
		_, nc = f.Dims()
		cells = len(f.Data) / 2
		max2  = -1.
	)
	for k := 0; k < cells; k++ {
		u, v := f.Data[2*k], f.Data[2*k+1]
		if l2 := u*u + v*v; l2 > max2 {
			max2 = l2
			ind := k % (len(f.Data) / 2 / f.NumBatches())
			i, j = ind/nc, ind%nc
		}
	}
	if max2 < 0 {
		return 0, 0, 0
	}
	length = math.Sqrt(max2)
	return
}

func (f VectorField) String() string {
	if len(f.Shape) != 2 {
		return fmt.Sprintf("VectorField%v", f.Shape)
	}
	return fmt.Sprintf("u = \n%v\nv = \n%v\n", f.Component(0), f.Component(1))
}
