// Package optimize implements the fusion and elimination passes that
// rewrite a loaded graph in place: folding BatchNorm into a preceding
// affine layer's weights, merging a directly following Scale into a
// BatchNorm, absorbing a pointwise ReLU or Clip into an affine layer's
// activation slot, and eliminating identity Dropout layers.
//
// Every pass operates on ncnn.Graph directly and tombstones the layers it
// retires; none of them touch the wire format, which lives in ncnnfile.
// Passes run in a fixed order via Run, mirroring ncnnoptimize.cpp's own
// pass sequence, since later passes rely on earlier ones having already
// collapsed BatchNorm layers out of the graph.
package optimize
