package ncnnfile

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// arrayWireBase is added to a catalog array param's id to get its wire
// id; this is how the format tells an array token apart from a scalar
// one sharing the same id space.
const arrayWireBase = 23300

// activationParamsID is the activation absorption table's array id
// (id 10 on every affine kind), handled through the same bit-reinterpret
// path as every other float array param; see formatFloatArray.
const activationParamsID = 10

func formatScalarInt(id, v int) string {
	return fmt.Sprintf(" %d=%d", id, v)
}

func formatScalarFloat(id int, v float32) string {
	return fmt.Sprintf(" %d=%f", id, v)
}

func formatIntArray(id int, v []int) string {
	var b strings.Builder
	fmt.Fprintf(&b, " -%d=%d", arrayWireBase+id, len(v))
	for _, x := range v {
		fmt.Fprintf(&b, ",%d", x)
	}
	return b.String()
}

// formatFloatArray reproduces the original tool's bit-reinterpret bug:
// ncnnoptimize.cpp never calls its own fprintf_param_float_array helper
// (dead code in the real source) — every array parameter, float-valued
// or not, is written through fprintf_param_int_array, which reads the
// Mat's backing store as raw int32 and prints that. So every declared
// float array param (activation_params, Eltwise's coeffs, PriorBox's
// min_sizes/max_sizes/aspect_ratios, the Yolo kinds' biases) is written
// here as the signed int32 sharing each float32's bit pattern, through
// the plain int-array formatter, not as decimal float text.
func formatFloatArray(id int, v []float32) string {
	ints := make([]int, len(v))
	for i, f := range v {
		ints[i] = int(int32(math.Float32bits(f)))
	}
	return formatIntArray(id, ints)
}

// parseFloatArrayBits undoes formatFloatArray.
func parseFloatArrayBits(ints []int) []float32 {
	out := make([]float32, len(ints))
	for i, v := range ints {
		out[i] = math.Float32frombits(uint32(int32(v)))
	}
	return out
}

// paramToken is one "<id>=<value>" or "-<wireid>=<count>,<v0>,..." token
// parsed off a layer line.
type paramToken struct {
	isArray  bool
	id       int // catalog id, already offset-corrected for arrays
	intVal   int
	floatRaw string // unparsed scalar text, so the caller picks int or float
	ints     []int
}

func parseParamToken(tok string) (paramToken, error) {
	eq := strings.IndexByte(tok, '=')
	if eq < 0 {
		return paramToken{}, fmt.Errorf("%w: %q", ErrMalformedLine, tok)
	}
	left, right := tok[:eq], tok[eq+1:]

	if strings.HasPrefix(left, "-") {
		wireID, err := strconv.Atoi(left[1:])
		if err != nil {
			return paramToken{}, fmt.Errorf("%w: bad array id %q", ErrMalformedLine, left)
		}
		parts := strings.Split(right, ",")
		count, err := strconv.Atoi(parts[0])
		if err != nil {
			return paramToken{}, fmt.Errorf("%w: bad array count %q", ErrMalformedLine, parts[0])
		}
		elems := parts[1:]
		if len(elems) != count {
			return paramToken{}, fmt.Errorf("%w: array declared %d elements, found %d", ErrMalformedLine, count, len(elems))
		}
		t := paramToken{isArray: true, id: wireID - arrayWireBase}
		t.ints = make([]int, count)
		for i, e := range elems {
			if iv, err := strconv.Atoi(e); err == nil {
				t.ints[i] = iv
			}
		}
		return t, nil
	}

	id, err := strconv.Atoi(left)
	if err != nil {
		return paramToken{}, fmt.Errorf("%w: bad scalar id %q", ErrMalformedLine, left)
	}
	return paramToken{id: id, floatRaw: right}, nil
}
