package ncnnfile

import (
	"gopkg.in/yaml.v3"

	"github.com/born-ml/ncnnoptimize/internal/ncnn"
)

// dumpLayer is DumpGraph's view of one layer: just enough to eyeball a
// graph's shape without reaching for a hex dump of the bin file.
type dumpLayer struct {
	Kind       string   `yaml:"kind"`
	Name       string   `yaml:"name"`
	Bottoms    []string `yaml:"bottoms,omitempty"`
	Tops       []string `yaml:"tops,omitempty"`
	Tombstoned bool     `yaml:"tombstoned,omitempty"`
	Activation *int     `yaml:"activation_type,omitempty"`
}

type dumpGraph struct {
	Layers []dumpLayer `yaml:"layers"`
}

// DumpGraph renders g as YAML for debugging: one entry per layer
// (including tombstoned ones, flagged as such) with its blob names
// resolved to strings instead of indices. It never round-trips back
// into a Graph; Load/Save are the only format this package treats as a
// contract.
func DumpGraph(g *ncnn.Graph) ([]byte, error) {
	out := dumpGraph{}
	for _, l := range g.Layers {
		dl := dumpLayer{
			Kind:       l.Kind,
			Name:       l.Name,
			Tombstoned: !l.Live(),
		}
		for _, b := range l.Bottoms {
			dl.Bottoms = append(dl.Bottoms, g.Blob(b).Name)
		}
		for _, t := range l.Tops {
			dl.Tops = append(dl.Tops, g.Blob(t).Name)
		}
		if l.Activation != nil {
			typ := l.Activation.Type
			dl.Activation = &typ
		}
		out.Layers = append(out.Layers, dl)
	}
	return yaml.Marshal(out)
}
