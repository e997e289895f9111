package catalog

import "github.com/born-ml/ncnnoptimize/internal/ncnn"

// ScalarParam declares one scalar (int or float) parameter a kind may
// carry, its wire id, and its default value.
type ScalarParam struct {
	ID      int
	Name    string
	Float   bool
	Default ncnn.Value
}

// ArrayParam declares one array (int or float element) parameter. Arrays
// have no default: absence on the wire means absence in Params, never an
// implicit empty array.
type ArrayParam struct {
	ID    int
	Name  string
	Float bool
}

// Weight declares one named weight tensor a kind writes, in wire order.
// Tagged is true only for the tensor a 4-byte precision tag precedes.
type Weight struct {
	Name   string
	Tagged bool
}

// KindSpec is the full catalog entry for one layer kind.
type KindSpec struct {
	Name          string
	Scalars       []ScalarParam
	Arrays        []ArrayParam
	Weights       []Weight
	HasActivation bool
}

// ScalarDefault returns the default Value for scalar id, and whether that
// id is declared at all for this kind.
func (k KindSpec) ScalarDefault(id int) (ncnn.Value, bool) {
	for _, s := range k.Scalars {
		if s.ID == id {
			return s.Default, true
		}
	}
	return ncnn.Value{}, false
}

// Kind looks up a catalog entry by name.
func Kind(name string) (KindSpec, bool) {
	k, ok := registry[name]
	return k, ok
}

// Known reports whether name is a recognized, non-tombstone catalog kind.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// Defaults builds a fresh Params instance holding every scalar default for
// kind. Array parameters are never present. A new map is built on every
// call (the loader calls it once per layer line), not once at startup,
// since Params is a plain map and cheap to build; the writer compares
// against KindSpec.ScalarDefault instead.
func Defaults(kind string) ncnn.Params {
	k, ok := registry[kind]
	if !ok {
		return ncnn.Params{}
	}
	p := make(ncnn.Params, len(k.Scalars))
	for _, s := range k.Scalars {
		p[s.ID] = s.Default
	}
	return p
}

// HasActivation reports whether kind carries an activation slot.
func HasActivation(kind string) bool {
	k, ok := registry[kind]
	return ok && k.HasActivation
}

// AffineKinds are the five layer kinds BatchNorm folding and activation
// absorption both operate on: Convolution-family and InnerProduct, the
// kinds whose weight layout is output-channel-major (spec.md §4.4.1).
var AffineKinds = []string{
	"Convolution",
	"ConvolutionDepthWise",
	"Deconvolution",
	"DeconvolutionDepthWise",
	"InnerProduct",
}
