package InputParameters

import (
	"fmt"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/gofusion/narrowband"
	"github.com/notargets/gofusion/sobolev"
	"github.com/notargets/gofusion/utils"
)

const DefaultSmoothingTermWeight = 0.2

// Parameters obtained from the YAML input file
type FusionParameters struct {
	Title               string        `json:"Title"`
	SmoothingTermWeight float64       `json:"SmoothingTermWeight"`
	TruncationBound     float64       `json:"TruncationBound"`
	SobolevKernel       []float64     `json:"SobolevKernel"`
	BoundaryMode        string        `json:"BoundaryMode"` // "zero" or "replicate"
	ZeroEpsilon         float64       `json:"ZeroEpsilon"`
	ParallelDegree      int           `json:"ParallelDegree"`
	BandUnionOnly       *bool         `json:"BandUnionOnly"`
	LiveField           [][]float64   `json:"LiveField"`
	CanonicalField      [][]float64   `json:"CanonicalField"`
	WarpField           [][][]float64 `json:"WarpField"` // rows x cols x 2
}

func NewFusionParameters() (ip *FusionParameters) {
	ip = &FusionParameters{}
	ip.setDefaults()
	return
}

func (ip *FusionParameters) setDefaults() {
	if ip.SmoothingTermWeight == 0 {
		ip.SmoothingTermWeight = DefaultSmoothingTermWeight
	}
	if ip.TruncationBound == 0 {
		ip.TruncationBound = narrowband.DefaultTruncation
	}
	if len(ip.SobolevKernel) == 0 {
		ip.SobolevKernel = sobolev.DefaultKernel()
	}
	if ip.ZeroEpsilon == 0 {
		ip.ZeroEpsilon = sobolev.ZeroEpsilon
	}
	if ip.ParallelDegree < 1 {
		ip.ParallelDegree = 1
	}
	if ip.BandUnionOnly == nil {
		bandUnionOnly := true
		ip.BandUnionOnly = &bandUnionOnly
	}
}

func (ip *FusionParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	ip.setDefaults()
	return ip.Validate()
}

func (ip *FusionParameters) Validate() (err error) {
	if len(ip.SobolevKernel)%2 == 0 {
		return fmt.Errorf("SobolevKernel must have an odd number of taps, has %d", len(ip.SobolevKernel))
	}
	label := strings.ToLower(strings.TrimSpace(ip.BoundaryMode))
	if _, ok := sobolev.BoundaryModeNames[label]; !ok && len(label) != 0 {
		return fmt.Errorf("unknown BoundaryMode [%s]", ip.BoundaryMode)
	}
	if (ip.LiveField == nil) != (ip.CanonicalField == nil) {
		return fmt.Errorf("LiveField and CanonicalField must be given together")
	}
	var nr, nc int
	if ip.LiveField != nil {
		if nr, nc, err = dims(ip.LiveField); err != nil {
			return fmt.Errorf("LiveField: %w", err)
		}
		cnr, cnc, err := dims(ip.CanonicalField)
		if err != nil {
			return fmt.Errorf("CanonicalField: %w", err)
		}
		if cnr != nr || cnc != nc {
			return fmt.Errorf("LiveField is %dx%d but CanonicalField is %dx%d", nr, nc, cnr, cnc)
		}
	}
	if ip.WarpField != nil {
		wnr, wnc, err := dims(ip.WarpField)
		if err != nil {
			return fmt.Errorf("WarpField: %w", err)
		}
		for i, row := range ip.WarpField {
			for j, v := range row {
				if len(v) != 2 {
					return fmt.Errorf("WarpField[%d][%d] has %d components, expected 2", i, j, len(v))
				}
			}
		}
		if ip.LiveField != nil && (wnr != nr || wnc != nc) {
			return fmt.Errorf("WarpField is %dx%d but the scalar fields are %dx%d", wnr, wnc, nr, nc)
		}
	}
	return
}

func dims[T any](rows [][]T) (nr, nc int, err error) {
	nr = len(rows)
	if nr == 0 {
		err = fmt.Errorf("field has no rows")
		return
	}
	nc = len(rows[0])
	for i, row := range rows {
		if len(row) != nc || nc == 0 {
			err = fmt.Errorf("row %d has %d columns, expected %d", i, len(row), nc)
			return
		}
	}
	return
}

// FieldPair returns nil when no scalar fields were supplied
func (ip *FusionParameters) FieldPair() (fp *narrowband.FieldPair) {
	if ip.LiveField == nil {
		return nil
	}
	fp = narrowband.NewFieldPair(
		utils.NewScalarFieldFromRows(ip.LiveField),
		utils.NewScalarFieldFromRows(ip.CanonicalField))
	fp.Truncation = ip.TruncationBound
	return
}

func (ip *FusionParameters) Warp() (W utils.VectorField, err error) {
	if ip.WarpField == nil {
		err = fmt.Errorf("no WarpField in input parameters")
		return
	}
	rows := make([][][2]float64, len(ip.WarpField))
	for i, row := range ip.WarpField {
		rows[i] = make([][2]float64, len(row))
		for j, v := range row {
			rows[i][j] = [2]float64{v[0], v[1]}
		}
	}
	W = utils.NewVectorFieldFromRows(rows)
	return
}

func (ip *FusionParameters) Filter() (f *sobolev.Filter) {
	f = sobolev.NewFilter(ip.SobolevKernel)
	f.Boundary = sobolev.NewBoundaryMode(ip.BoundaryMode)
	f.ZeroEpsilon = ip.ZeroEpsilon
	f.ParallelDegree = ip.ParallelDegree
	return
}

func (ip *FusionParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%8.5f\t\t= Smoothing Term Weight\n", ip.SmoothingTermWeight)
	fmt.Printf("%8.5f\t\t= Truncation Bound\n", ip.TruncationBound)
	fmt.Printf("%v\t= Sobolev Kernel\n", ip.SobolevKernel)
	fmt.Printf("[%s]\t\t= Boundary Mode\n", sobolev.NewBoundaryMode(ip.BoundaryMode).Print())
	fmt.Printf("%8.2g\t\t= Zero Epsilon\n", ip.ZeroEpsilon)
	fmt.Printf("[%d]\t\t\t= Parallel Degree\n", ip.ParallelDegree)
	fmt.Printf("[%v]\t\t\t= Band Union Only\n", *ip.BandUnionOnly)
	if ip.WarpField != nil {
		fmt.Printf("[%dx%d]\t\t\t= Warp Field\n", len(ip.WarpField), len(ip.WarpField[0]))
	}
	if ip.LiveField != nil {
		fmt.Printf("[%dx%d]\t\t\t= Live/Canonical Fields\n", len(ip.LiveField), len(ip.LiveField[0]))
	}
}

// SimpleTestCase01 is a 4x4 live/canonical pair around a corner of a surface
func SimpleTestCase01() (live, canonical utils.ScalarField) {
	canonical = utils.NewScalarFieldFromRows([][]float64{
		{1.0000000e+00, 1.0000000e+00, 3.7499955e-01, 2.4999955e-01},
		{1.0000000e+00, 3.2499936e-01, 1.9999936e-01, 1.4999935e-01},
		{1.0000000e+00, 1.7500064e-01, 1.0000064e-01, 5.0000645e-02},
		{1.0000000e+00, 7.5000443e-02, 4.4107438e-07, -9.9999562e-02},
	})
	live = utils.NewScalarFieldFromRows([][]float64{
		{1., 1., 0.49999955, 0.42499956},
		{1., 0.44999936, 0.34999937, 0.32499936},
		{1., 0.35000065, 0.25000066, 0.22500065},
		{1., 0.20000044, 0.15000044, 0.07500044},
	})
	return
}
