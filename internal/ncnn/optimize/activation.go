package optimize

import "github.com/born-ml/ncnnoptimize/internal/ncnn"

// Activation type codes ncnn's affine layers encode in their activation
// slot. Type 0 means none; this module never produces it directly since
// a layer either keeps no slot or gets one of the three below.
const (
	activationReLU      = 1
	activationLeakyReLU = 2 // ReLU with a nonzero negative slope (leaky ReLU)
	activationClip      = 3
)

func fuseConvolutionActivation(g *ncnn.Graph) int {
	return fuseAffineActivationKind(g, "Convolution")
}

func fuseConvolutionDepthWiseActivation(g *ncnn.Graph) int {
	return fuseAffineActivationKind(g, "ConvolutionDepthWise")
}

func fuseDeconvolutionActivation(g *ncnn.Graph) int {
	return fuseAffineActivationKind(g, "Deconvolution")
}

func fuseDeconvolutionDepthWiseActivation(g *ncnn.Graph) int {
	return fuseAffineActivationKind(g, "DeconvolutionDepthWise")
}

func fuseInnerProductActivation(g *ncnn.Graph) int {
	return fuseAffineActivationKind(g, "InnerProduct")
}

// fuseAffineActivationKind finds every live layer of kind whose sole
// output is consumed by exactly one live ReLU or Clip, and absorbs that
// activation into the layer's activation slot instead of leaving it as a
// separate layer. A layer that already carries an activation slot (from
// an earlier run of this same pass, which cannot happen within one Run
// but guards against a hand-built graph in tests) is left alone.
func fuseAffineActivationKind(g *ncnn.Graph, kind string) int {
	rewrites := 0
	for i, affine := range g.Layers {
		if !affine.Live() || affine.Kind != kind || len(affine.Tops) != 1 {
			continue
		}
		if affine.Activation != nil {
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
		act := g.Layers[j]
		if len(act.Bottoms) != 1 || act.Bottoms[0] != top || len(act.Tops) != 1 {
			continue
		}

		var slot *ncnn.ActivationSlot
		switch act.Kind {
		case "ReLU":
			slope := act.Params[0].F
			if slope == 0 {
				slot = &ncnn.ActivationSlot{Type: activationReLU}
			} else {
				slot = &ncnn.ActivationSlot{Type: activationLeakyReLU, Params: []float32{slope}}
			}
		case "Clip":
			min := act.Params[0].F
			max := act.Params[1].F
			slot = &ncnn.ActivationSlot{Type: activationClip, Params: []float32{min, max}}
		default:
			continue
		}

		actTop := act.Tops[0]
		if err := g.RerouteTop(i, top, actTop); err != nil {
			continue
		}
		affine.Activation = slot
		act.Tombstone()
		rewrites++
	}
	return rewrites
}
