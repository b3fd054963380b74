/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/notargets/gofusion/InputParameters"
	"github.com/notargets/gofusion/utils"
)

type Smooth struct {
	ICFile        string
	OutFile       string
	PreserveZeros bool
}

type SmoothResult struct {
	Title     string        `json:"Title"`
	Kernel    []float64     `json:"Kernel"`
	Boundary  string        `json:"Boundary"`
	MaxNorm   float64       `json:"MaxNorm"`
	MaxNormAt [2]int        `json:"MaxNormAt"`
	WarpField [][][]float64 `json:"WarpField"`
}

// SmoothCmd represents the smooth command
var SmoothCmd = &cobra.Command{
	Use:   "smooth",
	Short: "Filter a warp or gradient field with the Sobolev kernel",
	Long: `Filter the warp field of the input file with the separable Sobolev kernel,
first down each column and then along each row`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			sm  = &Smooth{}
		)
		if sm.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		sm.OutFile, _ = cmd.Flags().GetString("output")
		sm.PreserveZeros, _ = cmd.Flags().GetBool("preserveZeros")
		ip := mustReadParameters(sm.ICFile)
		ip.Print()
		var res *SmoothResult
		if res, err = RunSmooth(sm, ip); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		fmt.Printf("%12.8g\t\t= Max Norm at %v\n", res.MaxNorm, res.MaxNormAt)
		if err = writeOutput(sm.OutFile, res); err != nil {
			panic(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(SmoothCmd)
	SmoothCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- WarpField\n\t- SobolevKernel")
	SmoothCmd.Flags().StringP("output", "o", "", "YAML file for the smoothed field, default is stdout")
	SmoothCmd.Flags().BoolP("preserveZeros", "z", false, "keep values that are zero in the input at zero")
}

func RunSmooth(sm *Smooth, ip *InputParameters.FusionParameters) (res *SmoothResult, err error) {
	var W utils.VectorField
	if W, err = ip.Warp(); err != nil {
		return
	}
	f := ip.Filter()
	start := time.Now()
	if sm.PreserveZeros {
		f.SmoothPreserveZeros(W)
	} else {
		f.Smooth(W)
	}
	log.Printf("smoothed %v field in %v\n", W.Shape[:2], time.Since(start))
	res = &SmoothResult{
		Title:     ip.Title,
		Kernel:    f.Kernel,
		Boundary:  f.Boundary.Print(),
		WarpField: vectorRows(W),
	}
	var i, j int
	res.MaxNorm, i, j = W.MaxNorm()
	res.MaxNormAt = [2]int{i, j}
	return
}
