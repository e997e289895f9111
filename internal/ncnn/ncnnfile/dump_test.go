package ncnnfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDumpGraphRoundTripsThroughYAML(t *testing.T) {
	g := buildSampleGraph()
	g.Layer(1).Tombstone()

	out, err := DumpGraph(g)
	require.NoError(t, err)

	var parsed dumpGraph
	require.NoError(t, yaml.Unmarshal(out, &parsed))

	require.Len(t, parsed.Layers, 2)
	assert.Equal(t, "Convolution", parsed.Layers[0].Kind)
	assert.False(t, parsed.Layers[0].Tombstoned)
	assert.Equal(t, []string{"data"}, parsed.Layers[0].Bottoms)
	assert.Equal(t, []string{"conv1_out"}, parsed.Layers[0].Tops)

	assert.Equal(t, "ncnnfused", parsed.Layers[1].Kind)
	assert.True(t, parsed.Layers[1].Tombstoned)
}
