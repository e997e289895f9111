// Package ncnnfile reads and writes the two files that make up one
// serialized model: a textual topology ("param") file and a binary
// weight ("bin") file. Load builds an *ncnn.Graph from them; Save walks
// a graph back out to the same pair of files, skipping tombstoned
// layers and omitting any parameter still at its catalog default.
//
// The writer is a port of ncnnoptimize.cpp's save(); the reader is this
// package's own inverse of that writer. The format is a magic line, a "<layer count> <blob count>" line, then one line per
// layer holding its kind, name, bottom/top blob names, and parameters,
// followed by a flat stream of float32 weight tensors in catalog order.
package ncnnfile
