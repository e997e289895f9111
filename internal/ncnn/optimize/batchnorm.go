package optimize

import (
	"math"

	"github.com/born-ml/ncnnoptimize/internal/ncnn"
)

// batchNormAffine computes, for each channel c, the scale b_c and shift
// a_c such that y = b_c*x + a_c reproduces the BatchNorm layer's output:
//
//	b_c = slope_c / sqrt(var_c + eps)
//	a_c = bias_c - slope_c*mean_c / sqrt(var_c + eps)
func batchNormAffine(bn *ncnn.Layer) (b, a []float32) {
	channels := bn.Params[0].I
	eps := bn.Params[1].F
	slope := bn.Weights["slope"].Data
	mean := bn.Weights["mean"].Data
	variance := bn.Weights["var"].Data
	bias := bn.Weights["bias"].Data

	b = make([]float32, channels)
	a = make([]float32, channels)
	for c := 0; c < channels; c++ {
		denom := float32(math.Sqrt(float64(variance[c] + eps)))
		b[c] = slope[c] / denom
		a[c] = bias[c] - slope[c]*mean[c]/denom
	}
	return b, a
}

// fuseBatchNormScale merges a BatchNorm directly followed by a Scale into
// the BatchNorm itself: slope *= scale.scale, bias = bias*scale.scale +
// scale.bias. The Scale layer is tombstoned and the BatchNorm's top
// rerouted to take over the Scale's former output blob.
func fuseBatchNormScale(g *ncnn.Graph) int {
	rewrites := 0
	for i, bn := range g.Layers {
		if !bn.Live() || bn.Kind != "BatchNorm" || len(bn.Tops) != 1 {
			continue
		}
		bnTop := bn.Tops[0]
		if g.LiveConsumerCount(bnTop) != 1 {
			continue
		}
		j := soleLiveConsumer(g, bnTop)
		if j < 0 {
			continue
		}
		scale := g.Layers[j]
		if scale.Kind != "Scale" || len(scale.Bottoms) != 1 || scale.Bottoms[0] != bnTop || len(scale.Tops) != 1 {
			continue
		}
		if scale.Params[0].I == 0 {
			// scale_data_size 0 means per-value scale.scale isn't a
			// per-channel weight at all; nothing to fold safely.
			continue
		}

		channels := bn.Params[0].I
		slope := bn.Weights["slope"].Data
		bias := bn.Weights["bias"].Data
		scaleData := scale.Weights["scale"].Data
		var scaleBias []float32
		if scale.Params[1].I != 0 {
			scaleBias = scale.Weights["bias"].Data
		}
		for c := 0; c < channels; c++ {
			newBias := bias[c] * scaleData[c]
			if scaleBias != nil {
				newBias += scaleBias[c]
			}
			bias[c] = newBias
			slope[c] *= scaleData[c]
		}

		scaleTop := scale.Tops[0]
		if err := g.RerouteTop(i, bnTop, scaleTop); err != nil {
			continue
		}
		scale.Tombstone()
		rewrites++
	}
	return rewrites
}

// soleLiveConsumer returns the index of the one live layer consuming
// blobIdx, or -1 if there is not exactly one (the caller should already
// have checked LiveConsumerCount == 1; this just locates it).
func soleLiveConsumer(g *ncnn.Graph, blobIdx int) int {
	for i, l := range g.Layers {
		if !l.Live() {
			continue
		}
		for _, b := range l.Bottoms {
			if b == blobIdx {
				return i
			}
		}
	}
	return -1
}

// affineBatchNormIDs gives the catalog wire ids an affine kind uses for
// num_output, weight_data_size, and bias_term; these differ between the
// Convolution/Deconvolution family (ids 0, 6, 5) and InnerProduct (ids
// 0, 2, 1).
type affineBatchNormIDs struct {
	numOutput       int
	weightDataSize  int
	biasTerm        int
}

var convLikeBatchNormIDs = affineBatchNormIDs{numOutput: 0, weightDataSize: 6, biasTerm: 5}
var innerProductBatchNormIDs = affineBatchNormIDs{numOutput: 0, weightDataSize: 2, biasTerm: 1}

func fuseConvolutionBatchNorm(g *ncnn.Graph) int {
	return fuseAffineBatchNormKind(g, "Convolution", convLikeBatchNormIDs)
}

func fuseConvolutionDepthWiseBatchNorm(g *ncnn.Graph) int {
	return fuseAffineBatchNormKind(g, "ConvolutionDepthWise", convLikeBatchNormIDs)
}

func fuseDeconvolutionBatchNorm(g *ncnn.Graph) int {
	return fuseAffineBatchNormKind(g, "Deconvolution", convLikeBatchNormIDs)
}

func fuseDeconvolutionDepthWiseBatchNorm(g *ncnn.Graph) int {
	return fuseAffineBatchNormKind(g, "DeconvolutionDepthWise", convLikeBatchNormIDs)
}

func fuseInnerProductBatchNorm(g *ncnn.Graph) int {
	return fuseAffineBatchNormKind(g, "InnerProduct", innerProductBatchNormIDs)
}

// fuseAffineBatchNormKind finds every live layer of the given kind
// immediately followed by a sole-consumer BatchNorm and folds the
// BatchNorm's affine transform into the layer's weight and bias.
// weight_data_size/num_output gives the per-output-channel element
// count; this holds for every affine kind's weight layout because each
// one stores all of one output channel's weights contiguously, whatever
// the kernel/input-channel layout within that chunk looks like.
func fuseAffineBatchNormKind(g *ncnn.Graph, kind string, ids affineBatchNormIDs) int {
	rewrites := 0
	for i, affine := range g.Layers {
		if !affine.Live() || affine.Kind != kind || len(affine.Tops) != 1 {
			continue
		}
		top := affine.Tops[0]
		if g.LiveConsumerCount(top) != 1 {
			continue
		}
		j := soleLiveConsumer(g, top)
		if j < 0 {
			continue
		}
		bn := g.Layers[j]
		if bn.Kind != "BatchNorm" || len(bn.Bottoms) != 1 || bn.Bottoms[0] != top || len(bn.Tops) != 1 {
			continue
		}

		numOutput := affine.Params[ids.numOutput].I
		if numOutput == 0 || numOutput != bn.Params[0].I {
			continue
		}
		weightDataSize := affine.Params[ids.weightDataSize].I
		if weightDataSize == 0 || weightDataSize%numOutput != 0 {
			continue
		}
		perChannel := weightDataSize / numOutput

		b, a := batchNormAffine(bn)

		weight := affine.Weights["weight"].Data
		for c := 0; c < numOutput; c++ {
			chunk := weight[c*perChannel : (c+1)*perChannel]
			for k := range chunk {
				chunk[k] *= b[c]
			}
		}

		hasBias := affine.Params[ids.biasTerm].I != 0
		var bias []float32
		if hasBias {
			bias = affine.Weights["bias"].Data
		} else {
			bias = make([]float32, numOutput)
			affine.Weights["bias"] = &ncnn.Tensor{C: numOutput, H: 1, W: 1, Data: bias}
			affine.Params[ids.biasTerm] = ncnn.Int(1)
		}
		for c := 0; c < numOutput; c++ {
			bias[c] += a[c]
		}

		bnTop := bn.Tops[0]
		if err := g.RerouteTop(i, top, bnTop); err != nil {
			continue
		}
		bn.Tombstone()
		rewrites++
	}
	return rewrites
}
