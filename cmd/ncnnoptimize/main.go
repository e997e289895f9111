// Command ncnnoptimize rewrites a serialized model's topology and
// weight files into an equivalent, smaller one: BatchNorm folded into
// its preceding affine layer, a following Scale merged into BatchNorm, ReLU and
// Clip absorbed into an activation slot, and identity Dropout removed.
package main

import (
	"fmt"
	"os"

	"github.com/born-ml/ncnnoptimize/internal/ncnn/ncnnfile"
	"github.com/born-ml/ncnnoptimize/internal/ncnn/optimize"
)

const usage = "usage: ncnnoptimize <in.param> <in.bin> <out.param> <out.bin> <flag>\n"

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if len(args) != 6 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	inParam, inBin, outParam, outBin := args[1], args[2], args[3], args[4]

	g, err := ncnnfile.Load(inParam, inBin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ncnnoptimize: load: %v\n", err)
		return 1
	}

	report := optimize.Run(g, nil)
	fmt.Fprintf(os.Stderr, "ncnnoptimize: run %s, %d rewrite(s) total\n", report.RunID, report.TotalRewrites())

	if err := g.CheckInvariants(); err != nil {
		fmt.Fprintf(os.Stderr, "ncnnoptimize: %v\n", err)
		return 1
	}
	if err := g.CycleCheck(); err != nil {
		fmt.Fprintf(os.Stderr, "ncnnoptimize: %v\n", err)
		return 1
	}

	if err := ncnnfile.Save(g, outParam, outBin); err != nil {
		fmt.Fprintf(os.Stderr, "ncnnoptimize: save: %v\n", err)
		return 1
	}

	return 0
}
