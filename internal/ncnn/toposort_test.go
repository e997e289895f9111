package ncnn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopologicalOrderRespectsDependencies(t *testing.T) {
	g := NewGraph()
	a := g.BlobByName("a")
	b := g.BlobByName("b")
	c := g.BlobByName("c")

	l2 := g.AppendLayer(&Layer{Kind: "ReLU", Name: "l2", Bottoms: []int{b}, Tops: []int{c}})
	l1 := g.AppendLayer(&Layer{Kind: "Convolution", Name: "l1", Bottoms: []int{a}, Tops: []int{b}})
	g.Blob(b).Producer = l1
	g.Blob(c).Producer = l2

	order := g.TopologicalOrder()
	require.Len(t, order, 2)
	assert.Equal(t, l1, order[0])
	assert.Equal(t, l2, order[1])
}

func TestCycleCheckDetectsCycle(t *testing.T) {
	g := NewGraph()
	x := g.BlobByName("x")
	y := g.BlobByName("y")

	i1 := g.AppendLayer(&Layer{Kind: "ReLU", Name: "l1", Bottoms: []int{x}, Tops: []int{y}})
	i2 := g.AppendLayer(&Layer{Kind: "ReLU", Name: "l2", Bottoms: []int{y}, Tops: []int{x}})
	g.Blob(y).Producer = i1
	g.Blob(x).Producer = i2

	err := g.CycleCheck()
	require.Error(t, err)
	var cycleErr *CycleError
	assert.ErrorAs(t, err, &cycleErr)
}

func TestCycleCheckAcceptsAcyclicGraph(t *testing.T) {
	g := NewGraph()
	a := g.BlobByName("a")
	b := g.BlobByName("b")
	l1 := g.AppendLayer(&Layer{Kind: "Convolution", Name: "l1", Bottoms: []int{a}, Tops: []int{b}})
	g.Blob(b).Producer = l1

	assert.NoError(t, g.CycleCheck())
}
