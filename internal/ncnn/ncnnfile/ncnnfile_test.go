package ncnnfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ncnnoptimize/internal/ncnn"
	"github.com/born-ml/ncnnoptimize/internal/ncnn/catalog"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func buildSampleGraph() *ncnn.Graph {
	g := ncnn.NewGraph()
	in := g.BlobByName("data")
	mid := g.BlobByName("conv1_out")
	out := g.BlobByName("prob")

	convParams := catalog.Defaults("Convolution")
	convParams[0] = ncnn.Int(4)
	convParams[1] = ncnn.Int(3)
	convParams[11] = ncnn.Int(3)
	convParams[5] = ncnn.Int(1)
	convParams[6] = ncnn.Int(4 * 3 * 3)

	conv := &ncnn.Layer{
		Kind:    "Convolution",
		Name:    "conv1",
		Bottoms: []int{in},
		Tops:    []int{mid},
		Params:  convParams,
		Weights: map[string]*ncnn.Tensor{
			"weight": {C: 4, H: 1, W: 9, Data: make([]float32, 4*9)},
			"bias":   {C: 4, H: 1, W: 1, Data: make([]float32, 4)},
		},
	}
	convIdx := g.AppendLayer(conv)
	g.Blob(mid).Producer = convIdx

	softmax := &ncnn.Layer{
		Kind:    "Softmax",
		Name:    "prob",
		Bottoms: []int{mid},
		Tops:    []int{out},
		Params:  catalog.Defaults("Softmax"),
	}
	softmaxIdx := g.AppendLayer(softmax)
	g.Blob(out).Producer = softmaxIdx

	return g
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	paramPath := filepath.Join(dir, "model.param")
	binPath := filepath.Join(dir, "model.bin")

	g := buildSampleGraph()
	for i := range g.Layer(0).Weights["weight"].Data {
		g.Layer(0).Weights["weight"].Data[i] = float32(i) + 0.5
	}

	require.NoError(t, Save(g, paramPath, binPath))

	loaded, err := Load(paramPath, binPath)
	require.NoError(t, err)

	require.Equal(t, 2, len(loaded.Layers))
	conv := loaded.Layer(0)
	assert.Equal(t, "Convolution", conv.Kind)
	assert.Equal(t, 4, conv.Params[0].I)
	assert.Equal(t, 3, conv.Params[1].I)
	assert.Equal(t, g.Layer(0).Weights["weight"].Data, conv.Weights["weight"].Data)

	softmax := loaded.Layer(1)
	assert.Equal(t, "Softmax", softmax.Kind)
	assert.Equal(t, 0, softmax.Params[0].I)
}

func TestSaveOmitsDefaultedParams(t *testing.T) {
	dir := t.TempDir()
	paramPath := filepath.Join(dir, "model.param")
	binPath := filepath.Join(dir, "model.bin")

	g := buildSampleGraph()
	require.NoError(t, Save(g, paramPath, binPath))

	loaded, err := Load(paramPath, binPath)
	require.NoError(t, err)

	// kernel_h was never written onto the wire since it equals kernel_w;
	// the loader falls it back to kernel_w rather than leaving it unset.
	conv := loaded.Layer(0)
	assert.Equal(t, conv.Params[1].I, conv.Params[11].I)

	// Only non-default params reach the wire: the conv line carries no
	// kernel_h, dilation, stride, pad or int8 token, and the all-default
	// Softmax line ends right after its blob names.
	text, err := os.ReadFile(paramPath)
	require.NoError(t, err)
	assert.Contains(t, string(text), " 1 1 data conv1_out 0=4 1=3 5=1 6=36\n")
	assert.Contains(t, string(text), " 1 1 conv1_out prob\n")
}

func TestSaveSkipsTombstonedLayers(t *testing.T) {
	dir := t.TempDir()
	paramPath := filepath.Join(dir, "model.param")
	binPath := filepath.Join(dir, "model.bin")

	g := buildSampleGraph()
	g.Layer(1).Tombstone()

	require.NoError(t, Save(g, paramPath, binPath))

	loaded, err := Load(paramPath, binPath)
	require.NoError(t, err)
	require.Equal(t, 1, len(loaded.Layers))
	assert.Equal(t, "Convolution", loaded.Layer(0).Kind)
}

func TestLoadRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	paramPath := filepath.Join(dir, "model.param")
	binPath := filepath.Join(dir, "model.bin")

	require.NoError(t, writeFile(paramPath, "not-a-magic\n0 0\n"))
	require.NoError(t, writeFile(binPath, ""))

	_, err := Load(paramPath, binPath)
	assert.ErrorIs(t, err, ErrBadMagic)
}
