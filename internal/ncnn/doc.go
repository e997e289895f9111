// Package ncnn provides the in-memory computation-graph representation for
// ncnn param/bin models: blobs, layers, and the graph that owns them.
//
// A Graph is an arena: layers and blobs are addressed by index rather than
// by pointer, so rerouting an edge after a fusion is a single slice write
// instead of a reference-ownership dance. Layer kinds are looked up in the
// sibling catalog package, which is the single source of truth for which
// parameters and weight tensors a kind declares.
//
// This package never parses or writes the on-disk format (see ncnnfile) and
// never performs a fusion itself (see optimize); it only maintains the
// invariants those two packages depend on.
package ncnn
