// Package catalog declares, for every layer kind ncnnoptimize.cpp knows
// about, the set of scalar parameters, array parameters, and weight
// tensors it carries, plus whether it exposes an activation slot.
//
// The catalog is the single source of truth the loader uses to fill in
// defaults for parameters absent from a topology line, and the serializer
// uses to decide which parameters differ from default and are therefore
// worth emitting. The fusion passes in the optimize package do not consult
// it: they name their layer kinds, parameter ids and weight names directly.
//
// Scalar/array defaults reproduce ncnn's own layer defaults as closely as
// the retrieved sources allow; ncnnoptimize.cpp itself only shows the wire
// ids and format characters (the defaults come from each layer's private
// header, which is out of scope for this module's retrieval pack — see
// DESIGN.md for the reconstruction note).
package catalog
