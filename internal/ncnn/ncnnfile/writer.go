package ncnnfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/born-ml/ncnnoptimize/internal/ncnn"
	"github.com/born-ml/ncnnoptimize/internal/ncnn/catalog"
)

// Save writes g out as a param/bin pair. Tombstoned layers are skipped
// entirely, and the blob count reported on the second line only counts
// blobs still referenced by a live layer, matching ncnnoptimize.cpp's
// own save() pass.
func Save(g *ncnn.Graph, paramPath, binPath string) error {
	live := liveLayerIndices(g)
	blobCount := liveBlobCount(g, live)

	pp, err := os.Create(paramPath)
	if err != nil {
		return err
	}
	defer pp.Close()
	ppw := bufio.NewWriter(pp)

	bp, err := os.Create(binPath)
	if err != nil {
		return err
	}
	defer bp.Close()
	bpw := bufio.NewWriter(bp)

	fmt.Fprintf(ppw, "7767517\n")
	fmt.Fprintf(ppw, "%d %d\n", len(live), blobCount)

	for _, i := range live {
		l := g.Layer(i)
		fmt.Fprintf(ppw, "%-24s %-24s %d %d", l.Kind, l.Name, len(l.Bottoms), len(l.Tops))
		for _, b := range l.Bottoms {
			fmt.Fprintf(ppw, " %s", g.Blob(b).Name)
		}
		for _, t := range l.Tops {
			fmt.Fprintf(ppw, " %s", g.Blob(t).Name)
		}
		ppw.WriteString(layerParamsText(l))
		ppw.WriteString("\n")

		if err := writeLayerWeights(bpw, l); err != nil {
			return err
		}
	}

	if err := ppw.Flush(); err != nil {
		return err
	}
	return bpw.Flush()
}

func liveLayerIndices(g *ncnn.Graph) []int {
	var out []int
	for i, l := range g.Layers {
		if l.Live() {
			out = append(out, i)
		}
	}
	return out
}

func liveBlobCount(g *ncnn.Graph, live []int) int {
	seen := make(map[int]bool)
	for _, i := range live {
		l := g.Layer(i)
		for _, b := range l.Bottoms {
			seen[b] = true
		}
		for _, t := range l.Tops {
			seen[t] = true
		}
	}
	return len(seen)
}

// layerParamsText dispatches to the kind-specific emitter. The four
// convolution-family kinds and Pooling have paired h/w or multi-way pad
// fields that only appear on the wire when they differ from their
// sibling field, which a flat defaults-diff cannot express; InnerProduct
// carries the activation slot and Softmax its compatibility flag; every
// other kind emits generically from the catalog.
func layerParamsText(l *ncnn.Layer) string {
	switch l.Kind {
	case "Convolution", "ConvolutionDepthWise":
		return convLikeParamsText(l, l.Kind == "ConvolutionDepthWise", true)
	case "Deconvolution", "DeconvolutionDepthWise":
		return convLikeParamsText(l, l.Kind == "DeconvolutionDepthWise", false)
	case "InnerProduct":
		return innerProductParamsText(l)
	case "Pooling":
		return poolingParamsText(l)
	case "Softmax":
		return softmaxParamsText(l)
	default:
		return genericParamsText(l)
	}
}

func gi(l *ncnn.Layer, id int) int { return l.Params[id].I }

// emitIfNonDefault appends an "<id>=<value>" token only when l's current
// value for id differs from kind's catalog default, reproducing
// ncnnoptimize.cpp's fprintf_param_value macro.
func emitIfNonDefault(b []byte, l *ncnn.Layer, spec catalog.KindSpec, id int) []byte {
	def, ok := spec.ScalarDefault(id)
	if !ok || gi(l, id) == def.I {
		return b
	}
	return append(b, formatScalarInt(id, gi(l, id))...)
}

func convLikeParamsText(l *ncnn.Layer, depthwise, hasInt8Term bool) string {
	spec, _ := catalog.Kind(l.Kind)
	var b []byte
	kernelW, kernelH := gi(l, 1), gi(l, 11)
	dilationW, dilationH := gi(l, 2), gi(l, 12)
	strideW, strideH := gi(l, 3), gi(l, 13)
	padW, padH := gi(l, 4), gi(l, 14)

	b = emitIfNonDefault(b, l, spec, 0)
	b = emitIfNonDefault(b, l, spec, 1)
	if kernelH != kernelW {
		b = append(b, formatScalarInt(11, kernelH)...)
	}
	b = emitIfNonDefault(b, l, spec, 2)
	if dilationH != dilationW {
		b = append(b, formatScalarInt(12, dilationH)...)
	}
	b = emitIfNonDefault(b, l, spec, 3)
	if strideH != strideW {
		b = append(b, formatScalarInt(13, strideH)...)
	}
	b = emitIfNonDefault(b, l, spec, 4)
	if padH != padW {
		b = append(b, formatScalarInt(14, padH)...)
	}
	b = emitIfNonDefault(b, l, spec, 5)
	b = emitIfNonDefault(b, l, spec, 6)
	if depthwise {
		b = emitIfNonDefault(b, l, spec, 7)
	}
	if hasInt8Term {
		b = emitIfNonDefault(b, l, spec, 8)
	}
	b = append(b, activationText(l)...)
	return string(b)
}

func innerProductParamsText(l *ncnn.Layer) string {
	spec, _ := catalog.Kind(l.Kind)
	var b []byte
	b = emitIfNonDefault(b, l, spec, 0)
	b = emitIfNonDefault(b, l, spec, 1)
	b = emitIfNonDefault(b, l, spec, 2)
	b = emitIfNonDefault(b, l, spec, 8)
	b = append(b, activationText(l)...)
	return string(b)
}

func poolingParamsText(l *ncnn.Layer) string {
	spec, _ := catalog.Kind(l.Kind)
	var b []byte
	kernelW, kernelH := gi(l, 1), gi(l, 11)
	strideW, strideH := gi(l, 2), gi(l, 12)
	padLeft, padTop, padRight, padBottom := gi(l, 3), gi(l, 13), gi(l, 14), gi(l, 15)

	b = emitIfNonDefault(b, l, spec, 0)
	b = emitIfNonDefault(b, l, spec, 1)
	if kernelH != kernelW {
		b = append(b, formatScalarInt(11, kernelH)...)
	}
	b = emitIfNonDefault(b, l, spec, 2)
	if strideH != strideW {
		b = append(b, formatScalarInt(12, strideH)...)
	}
	b = emitIfNonDefault(b, l, spec, 3)
	if padTop != padLeft {
		b = append(b, formatScalarInt(13, padTop)...)
	}
	if padRight != padLeft {
		b = append(b, formatScalarInt(14, padRight)...)
	}
	if padBottom != padTop {
		b = append(b, formatScalarInt(15, padBottom)...)
	}
	b = emitIfNonDefault(b, l, spec, 4)
	b = emitIfNonDefault(b, l, spec, 5)
	return string(b)
}

// softmaxParamsText emits axis like any other scalar, plus a compatibility
// flag (wire id 1, always 1) old ncnn readers need whenever axis isn't the
// default 0: without it those readers fall back to an axis-1 default of
// their own rather than honoring 0=<axis>.
func softmaxParamsText(l *ncnn.Layer) string {
	spec, _ := catalog.Kind(l.Kind)
	var b []byte
	b = emitIfNonDefault(b, l, spec, 0)
	if gi(l, 0) != 0 {
		b = append(b, formatScalarInt(1, 1)...)
	}
	return string(b)
}

// activationText emits the shared activation_type/activation_params tail
// every affine kind carries, reading from l.Activation rather than
// l.Params: the slot is the authoritative in-memory value once a fusion
// pass has run, and Params[9]/Params[10] are load-time scratch only.
func activationText(l *ncnn.Layer) string {
	if l.Activation == nil || l.Activation.Type == 0 {
		return ""
	}
	s := formatScalarInt(9, l.Activation.Type)
	if len(l.Activation.Params) > 0 {
		s += formatFloatArray(activationParamsID, l.Activation.Params)
	}
	return s
}

// genericParamsText emits every scalar differing from its catalog
// default, in catalog declaration order, followed by every non-empty
// array parameter.
func genericParamsText(l *ncnn.Layer) string {
	spec, ok := catalog.Kind(l.Kind)
	if !ok {
		return ""
	}
	var b []byte
	for _, s := range spec.Scalars {
		v, present := l.Params[s.ID]
		if !present || v.Equal(s.Default) {
			continue
		}
		if s.Float {
			b = append(b, formatScalarFloat(s.ID, v.F)...)
		} else {
			b = append(b, formatScalarInt(s.ID, v.I)...)
		}
	}
	for _, a := range spec.Arrays {
		v, present := l.Params[a.ID]
		if !present {
			continue
		}
		if a.Float && len(v.Floats) > 0 {
			b = append(b, formatFloatArray(a.ID, v.Floats)...)
		} else if !a.Float && len(v.Ints) > 0 {
			b = append(b, formatIntArray(a.ID, v.Ints)...)
		}
	}
	return string(b)
}

func writeLayerWeights(w *bufio.Writer, l *ncnn.Layer) error {
	spec, ok := catalog.Kind(l.Kind)
	if !ok {
		return nil
	}
	for _, wt := range spec.Weights {
		if wt.Tagged {
			if err := binary.Write(w, binary.LittleEndian, int32(0)); err != nil {
				return err
			}
		}
		t := l.Weights[wt.Name]
		if t == nil {
			continue
		}
		if err := binary.Write(w, binary.LittleEndian, t.Data); err != nil {
			return err
		}
	}
	return nil
}
