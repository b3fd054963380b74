package sobolev

import (
	"fmt"
	"strings"
)

// ZeroEpsilon is the magnitude below which SmoothPreserveZeros treats a value
// as an exact zero
const ZeroEpsilon = 1.e-6

var defaultKernel = [7]float64{
	2.995900285895913839e-04,
	4.410949535667896271e-03,
	6.571318954229354858e-02,
	9.956527948379516602e-01,
	6.571318954229354858e-02,
	4.410949535667896271e-03,
	2.995900285895913839e-04,
}

// DefaultKernel returns a copy of the 7-tap Sobolev gradient kernel
func DefaultKernel() []float64 {
	k := defaultKernel
	return k[:]
}

// CheckKernel panics unless kernel has an odd, non-zero length
func CheckKernel(kernel []float64) {
	if len(kernel) == 0 || len(kernel)%2 == 0 {
		panic(fmt.Errorf("convolution kernel must have odd length, has %d", len(kernel)))
	}
}

type BoundaryMode uint8

const (
	ZeroPad   BoundaryMode = iota // Values beyond the grid are zero
	Replicate                     // Values beyond the grid repeat the edge value
)

var (
	BoundaryModeNames = map[string]BoundaryMode{
		"zero":      ZeroPad,
		"zeropad":   ZeroPad,
		"zero pad":  ZeroPad,
		"replicate": Replicate,
		"edge":      Replicate,
	}
	BoundaryModeNamesRev = map[BoundaryMode]string{
		ZeroPad:   "Zero padding",
		Replicate: "Edge replication",
	}
)

func (bm BoundaryMode) Print() (txt string) {
	if val, ok := BoundaryModeNamesRev[bm]; !ok {
		txt = "Unknown"
	} else {
		txt = val
	}
	return
}

func NewBoundaryMode(label string) (bm BoundaryMode) {
	var (
		ok  bool
		err error
	)
	if len(label) == 0 {
		return ZeroPad
	}
	label = strings.ToLower(strings.TrimSpace(label))
	if bm, ok = BoundaryModeNames[label]; !ok {
		err = fmt.Errorf("unable to use boundary mode named [%s]", label)
		panic(err)
	}
	return
}
