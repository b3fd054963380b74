package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/ghodss/yaml"
	"github.com/spf13/viper"

	"github.com/notargets/gofusion/InputParameters"
	"github.com/notargets/gofusion/utils"
)

const exampleFile = `
########################################
Title: "Test Case"
SmoothingTermWeight: 0.2
TruncationBound: 1.
BoundaryMode: zero # Can be "replicate"
LiveField:
  - [1., 0.5]
  - [1., 0.2]
CanonicalField:
  - [1., 0.4]
  - [1., 0.1]
WarpField:
  - [[0., 0.], [-0.35, -0.18]]
  - [[0., 0.], [-0.40, -0.40]]
########################################
`

func readParameters(icFile string) (ip *InputParameters.FusionParameters, err error) {
	var data []byte
	if len(icFile) == 0 {
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
		return
	}
	if data, err = os.ReadFile(icFile); err != nil {
		return
	}
	ip = &InputParameters.FusionParameters{}
	if err = ip.Parse(data); err != nil {
		err = fmt.Errorf("%s: %w", icFile, err)
		return
	}
	if pd := viper.GetInt("parallelDegree"); pd > 0 {
		ip.ParallelDegree = pd
	}
	return
}

// mustReadParameters exits with the example input when the file is unusable
func mustReadParameters(icFile string) (ip *InputParameters.FusionParameters) {
	var err error
	if ip, err = readParameters(icFile); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	return
}

func writeOutput(outFile string, result interface{}) (err error) {
	var data []byte
	if data, err = yaml.Marshal(result); err != nil {
		return
	}
	if len(outFile) == 0 {
		fmt.Print(string(data))
		return
	}
	if err = os.WriteFile(outFile, data, 0644); err != nil {
		return
	}
	log.Printf("wrote %s\n", outFile)
	return
}

func vectorRows(F utils.VectorField) (rows [][][]float64) {
	r2 := F.Rows()
	rows = make([][][]float64, len(r2))
	for i, row := range r2 {
		rows[i] = make([][]float64, len(row))
		for j, v := range row {
			rows[i][j] = []float64{v[0], v[1]}
		}
	}
	return
}
