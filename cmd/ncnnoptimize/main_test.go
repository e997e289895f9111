package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ncnnoptimize/internal/ncnn"
	"github.com/born-ml/ncnnoptimize/internal/ncnn/catalog"
	"github.com/born-ml/ncnnoptimize/internal/ncnn/ncnnfile"
)

func TestRunRejectsWrongArgCount(t *testing.T) {
	assert.Equal(t, 2, run([]string{"ncnnoptimize", "only-one-arg"}))
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	inParam := filepath.Join(dir, "in.param")
	inBin := filepath.Join(dir, "in.bin")
	outParam := filepath.Join(dir, "out.param")
	outBin := filepath.Join(dir, "out.bin")

	g := ncnn.NewGraph()
	in := g.BlobByName("data")
	mid := g.BlobByName("bn_out")
	out := g.BlobByName("relu_out")

	convParams := catalog.Defaults("Convolution")
	convParams[0] = ncnn.Int(2)
	convParams[1] = ncnn.Int(1)
	convParams[11] = ncnn.Int(1)
	convParams[6] = ncnn.Int(2)
	conv := &ncnn.Layer{
		Kind: "Convolution", Name: "conv", Bottoms: []int{in}, Tops: []int{mid},
		Params: convParams,
		Weights: map[string]*ncnn.Tensor{
			"weight": {C: 2, Data: []float32{1, 1}},
		},
	}
	convIdx := g.AppendLayer(conv)
	g.Blob(mid).Producer = convIdx

	bn := &ncnn.Layer{
		Kind: "BatchNorm", Name: "bn", Bottoms: []int{mid}, Tops: []int{out},
		Params: ncnn.Params{0: ncnn.Int(2), 1: ncnn.Float(0)},
		Weights: map[string]*ncnn.Tensor{
			"slope": {C: 2, Data: []float32{1, 1}},
			"mean":  {C: 2, Data: []float32{0, 0}},
			"var":   {C: 2, Data: []float32{1, 1}},
			"bias":  {C: 2, Data: []float32{0, 0}},
		},
	}
	bnIdx := g.AppendLayer(bn)
	g.Blob(out).Producer = bnIdx
	bn.Bottoms = []int{mid}
	_ = bnIdx

	require.NoError(t, ncnnfile.Save(g, inParam, inBin))

	code := run([]string{"ncnnoptimize", inParam, inBin, outParam, outBin, "0"})
	require.Equal(t, 0, code)

	_, err := os.Stat(outParam)
	require.NoError(t, err)

	optimized, err := ncnnfile.Load(outParam, outBin)
	require.NoError(t, err)
	require.Equal(t, 1, len(optimized.Layers))
	assert.Equal(t, "Convolution", optimized.Layers[0].Kind)
}
