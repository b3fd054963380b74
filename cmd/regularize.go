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
	"strings"

	"github.com/spf13/cobra"

	"github.com/notargets/gofusion/InputParameters"
	"github.com/notargets/gofusion/narrowband"
	"github.com/notargets/gofusion/regularizer"
	"github.com/notargets/gofusion/utils"
)

type MethodType uint8

const (
	Direct MethodType = iota
	Vectorized
	Operator
)

var (
	MethodNames = map[string]MethodType{
		"direct":     Direct,
		"vectorized": Vectorized,
		"operator":   Operator,
	}
	MethodPrintNames = []string{"Direct", "Vectorized", "Sparse Operator"}
)

func (mt MethodType) Print() (txt string) {
	if int(mt) >= len(MethodPrintNames) {
		return "Unknown"
	}
	return MethodPrintNames[mt]
}

func NewMethodType(label string) (mt MethodType) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(strings.TrimSpace(label))
	if mt, ok = MethodNames[label]; !ok {
		err = fmt.Errorf("unable to use regularizer method named [%s]", label)
		panic(err)
	}
	return
}

type Regularize struct {
	ICFile         string
	OutFile        string
	Method         MethodType
	BandUnionOnly  bool
	SimpleTestCase bool
}

type RegularizeResult struct {
	Title          string        `json:"Title"`
	Method         string        `json:"Method"`
	Energy         float64       `json:"Energy"`
	WeightedEnergy float64       `json:"WeightedEnergy"`
	MaxNorm        float64       `json:"MaxNorm"`
	MaxNormAt      [2]int        `json:"MaxNormAt"`
	Gradient       [][][]float64 `json:"Gradient"`
}

// RegularizeCmd represents the regularize command
var RegularizeCmd = &cobra.Command{
	Use:   "regularize",
	Short: "Evaluate the smoothness term energy and gradient of a warp field",
	Long: `Evaluate the Tikhonov smoothness term energy and gradient of the warp field
in the input file, optionally restricted to the narrow band union of the
live and canonical fields`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
			rg  = &Regularize{}
		)
		if rg.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		rg.OutFile, _ = cmd.Flags().GetString("output")
		method, _ := cmd.Flags().GetString("method")
		rg.Method = NewMethodType(method)
		rg.SimpleTestCase, _ = cmd.Flags().GetBool("simpleTestCase")
		ip := mustReadParameters(rg.ICFile)
		rg.BandUnionOnly = *ip.BandUnionOnly
		if cmd.Flags().Changed("bandUnionOnly") {
			rg.BandUnionOnly, _ = cmd.Flags().GetBool("bandUnionOnly")
		}
		ip.Print()
		var res *RegularizeResult
		if res, err = RunRegularize(rg, ip); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		fmt.Printf("%12.8g\t\t= Energy\n", res.Energy)
		fmt.Printf("%12.8g\t\t= Weighted Energy\n", res.WeightedEnergy)
		fmt.Printf("%12.8g\t\t= Max Gradient Norm at %v\n", res.MaxNorm, res.MaxNormAt)
		if err = writeOutput(rg.OutFile, res); err != nil {
			panic(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(RegularizeCmd)
	RegularizeCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- WarpField\n\t- LiveField, CanonicalField")
	RegularizeCmd.Flags().StringP("output", "o", "", "YAML file for the energy and gradient, default is stdout")
	RegularizeCmd.Flags().StringP("method", "m", "direct", "gradient evaluator: direct, vectorized or operator")
	RegularizeCmd.Flags().BoolP("bandUnionOnly", "b", true, "restrict the term to the narrow band union of the live and canonical fields")
	RegularizeCmd.Flags().Bool("simpleTestCase", false, "use the predefined 4x4 live and canonical fields when the input has none")
}

func RunRegularize(rg *Regularize, ip *InputParameters.FusionParameters) (res *RegularizeResult, err error) {
	var (
		W      utils.VectorField
		fields = ip.FieldPair()
		energy float64
	)
	if W, err = ip.Warp(); err != nil {
		return
	}
	if fields == nil && rg.SimpleTestCase {
		live, canonical := InputParameters.SimpleTestCase01()
		fields = narrowband.NewFieldPair(live, canonical)
		fields.Truncation = ip.TruncationBound
	}
	if fields != nil {
		nr, nc := W.Dims()
		if fnr, fnc := fields.Live.Dims(); fnr != nr || fnc != nc {
			err = fmt.Errorf("warp field is %dx%d but the scalar fields are %dx%d", nr, nc, fnr, fnc)
			return
		}
	}
	if !rg.BandUnionOnly {
		fields = nil
	}
	G := W.ZerosLike()
	switch rg.Method {
	case Direct:
		_, energy = regularizer.DirectGradient(G, W, fields)
	case Vectorized:
		regularizer.VectorizedGradient(G, W)
		energy = regularizer.Energy(W, fields, fields != nil)
	case Operator:
		regularizer.NewLaplacianOperator(W.Dims()).Apply(G, W)
		energy = regularizer.Energy(W, fields, fields != nil)
	default:
		panic(fmt.Errorf("unknown method %d", rg.Method))
	}
	if rg.Method != Direct && fields != nil {
		fields.UnionMask().Apply(G)
	}
	if fields != nil {
		log.Printf("%d of %d cells inside the narrow band union\n", fields.UnionMask().Count(), len(G.Data)/2)
	}
	res = &RegularizeResult{
		Title:          ip.Title,
		Method:         rg.Method.Print(),
		Energy:         energy,
		WeightedEnergy: ip.SmoothingTermWeight * energy,
		Gradient:       vectorRows(G),
	}
	var i, j int
	res.MaxNorm, i, j = G.MaxNorm()
	res.MaxNormAt = [2]int{i, j}
	return
}
