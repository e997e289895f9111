package optimize

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

func TestPipelineOrderGolden(t *testing.T) {
	g := goldie.New(t)
	content := strings.Join(PassNames(), "\n") + "\n"
	g.Assert(t, "pass_order", []byte(content))
}
