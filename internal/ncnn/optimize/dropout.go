package optimize

import "github.com/born-ml/ncnnoptimize/internal/ncnn"

// eliminateDropout removes every live Dropout layer whose scale is
// exactly 1.0 (the identity case) by renaming its upstream producer's top
// to the Dropout's own output blob, then tombstoning the Dropout. This
// keeps the output blob's name alive under its new producer instead of
// touching every downstream consumer's Bottoms, so a Dropout sitting
// directly in front of a graph output still leaves that output name
// live. A Dropout with any other scale is left in place: folding it
// would change the numeric result, and this module only ever removes
// layers that are provably no-ops.
func eliminateDropout(g *ncnn.Graph) int {
	rewrites := 0
	for _, l := range g.Layers {
		if !l.Live() || l.Kind != "Dropout" || len(l.Bottoms) != 1 || len(l.Tops) != 1 {
			continue
		}
		if l.Params[0].F != 1 {
			continue
		}

		in := l.Bottoms[0]
		out := l.Tops[0]
		producerIdx := g.Blob(in).Producer
		if producerIdx == ncnn.InputProducer {
			continue
		}
		if len(g.Layer(producerIdx).Tops) != 1 {
			// A multi-output producer can't hand its one name away to
			// the Dropout's output blob without also displacing its
			// other tops; leave it alone, same as the other passes do
			// for a multi-consumer blob.
			continue
		}
		if err := g.RerouteTop(producerIdx, in, out); err != nil {
			continue
		}
		l.Tombstone()
		rewrites++
	}
	return rewrites
}
