package ncnnfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/ncnnoptimize/internal/ncnn"
	"github.com/born-ml/ncnnoptimize/internal/ncnn/catalog"
)

// Load parses a param/bin pair into a fresh *ncnn.Graph. Every scalar
// parameter the catalog declares for a recognized kind starts at its
// default and is then overwritten by whatever the param line actually
// carries, so a layer built from a line that omits a default-valued
// field behaves identically to one that spells it out.
func Load(paramPath, binPath string) (*ncnn.Graph, error) {
	pf, err := os.Open(paramPath)
	if err != nil {
		return nil, err
	}
	defer pf.Close()

	sc := bufio.NewScanner(pf)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		return nil, fmt.Errorf("%w: empty param file", ErrTruncated)
	}
	if strings.TrimSpace(sc.Text()) != "7767517" {
		return nil, ErrBadMagic
	}

	if !sc.Scan() {
		return nil, fmt.Errorf("%w: missing layer/blob count line", ErrTruncated)
	}
	counts := strings.Fields(sc.Text())
	if len(counts) != 2 {
		return nil, fmt.Errorf("%w: bad count line %q", ErrMalformedLine, sc.Text())
	}
	layerCount, err := strconv.Atoi(counts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: bad layer count %q", ErrMalformedLine, counts[0])
	}

	g := ncnn.NewGraph()

	for n := 0; n < layerCount; n++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("%w: expected %d layer lines, found %d", ErrTruncated, layerCount, n)
		}
		if err := loadLayerLine(g, sc.Text()); err != nil {
			return nil, err
		}
	}

	bf, err := os.Open(binPath)
	if err != nil {
		return nil, err
	}
	defer bf.Close()
	br := bufio.NewReader(bf)

	for _, l := range g.Layers {
		if err := readLayerWeights(br, l); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func loadLayerLine(g *ncnn.Graph, line string) error {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	kind, name := fields[0], fields[1]
	bottomCount, err := strconv.Atoi(fields[2])
	if err != nil {
		return fmt.Errorf("%w: bad bottom count in %q", ErrMalformedLine, line)
	}
	topCount, err := strconv.Atoi(fields[3])
	if err != nil {
		return fmt.Errorf("%w: bad top count in %q", ErrMalformedLine, line)
	}
	pos := 4
	if len(fields) < pos+bottomCount+topCount {
		return fmt.Errorf("%w: %q declares more bottoms/tops than fields present", ErrMalformedLine, line)
	}

	l := &ncnn.Layer{Kind: kind, Name: name, Params: catalog.Defaults(kind)}
	if l.Params == nil {
		l.Params = ncnn.Params{}
	}

	for i := 0; i < bottomCount; i++ {
		l.Bottoms = append(l.Bottoms, g.BlobByName(fields[pos+i]))
	}
	pos += bottomCount
	for i := 0; i < topCount; i++ {
		l.Tops = append(l.Tops, g.BlobByName(fields[pos+i]))
	}
	pos += topCount

	idx := g.AppendLayer(l)
	for _, b := range l.Bottoms {
		g.Blob(b).Consumers = append(g.Blob(b).Consumers, idx)
	}
	for _, t := range l.Tops {
		g.Blob(t).Producer = idx
	}

	hasActivation := catalog.HasActivation(kind)
	var activationType int
	seen := make(map[int]bool)

	for _, tok := range fields[pos:] {
		pt, err := parseParamToken(tok)
		if err != nil {
			return err
		}
		seen[pt.id] = true
		if pt.isArray {
			spec, _ := catalog.Kind(kind)
			isFloat := false
			for _, a := range spec.Arrays {
				if a.ID == pt.id {
					isFloat = a.Float
					break
				}
			}
			if isFloat {
				// Every float array, not just activation_params, is
				// written through the int-array bit-reinterpret path,
				// so pt.ints holds bit patterns, not decimal values.
				l.Params[pt.id] = ncnn.FloatArray(parseFloatArrayBits(pt.ints))
			} else {
				l.Params[pt.id] = ncnn.IntArray(pt.ints)
			}
			continue
		}

		if hasActivation && pt.id == 9 {
			v, _ := strconv.Atoi(pt.floatRaw)
			activationType = v
			l.Params[pt.id] = ncnn.Int(v)
			continue
		}

		isFloat := false
		if spec, ok := catalog.Kind(kind); ok {
			for _, s := range spec.Scalars {
				if s.ID == pt.id {
					isFloat = s.Float
					break
				}
			}
		}
		if isFloat {
			fv, err := strconv.ParseFloat(pt.floatRaw, 32)
			if err != nil {
				return fmt.Errorf("%w: bad float value %q", ErrMalformedLine, pt.floatRaw)
			}
			l.Params[pt.id] = ncnn.Float(float32(fv))
		} else {
			iv, err := strconv.Atoi(pt.floatRaw)
			if err != nil {
				return fmt.Errorf("%w: bad int value %q", ErrMalformedLine, pt.floatRaw)
			}
			l.Params[pt.id] = ncnn.Int(iv)
		}
	}

	if hasActivation && activationType != 0 {
		params, _ := l.Params[activationParamsID]
		l.Activation = &ncnn.ActivationSlot{Type: activationType, Params: params.Floats}
		delete(l.Params, activationParamsID)
	}

	resolvePairedDimensions(l, seen)

	return nil
}

// resolvePairedDimensions fills in the h-side of every w/h-paired field
// (and Pooling's right/bottom pad sides) that the wire line left
// unspecified. ncnn's own load_param resolves these the same way: each
// missing side falls back to its sibling's parsed value, not to a fixed
// constant, since "square kernel/stride/pad" is the common case the
// format is optimized to not spell out twice.
func resolvePairedDimensions(l *ncnn.Layer, seen map[int]bool) {
	fallback := func(to, from int) {
		if !seen[to] {
			l.Params[to] = l.Params[from]
		}
	}
	switch l.Kind {
	case "Convolution", "ConvolutionDepthWise", "Deconvolution", "DeconvolutionDepthWise":
		fallback(11, 1) // kernel_h <- kernel_w
		fallback(12, 2) // dilation_h <- dilation_w
		fallback(13, 3) // stride_h <- stride_w
		fallback(14, 4) // pad_h <- pad_w
	case "Pooling":
		fallback(11, 1) // kernel_h <- kernel_w
		fallback(12, 2) // stride_h <- stride_w
		fallback(13, 3) // pad_top <- pad_left
		fallback(14, 3) // pad_right <- pad_left
		fallback(15, 13) // pad_bottom <- pad_top
	}
}

// weightLength returns the element count the named weight tensor on
// layer l should hold, derived from whichever scalar parameter
// determines it for that kind. Kinds without a declared weight of that
// name are never asked.
func weightLength(l *ncnn.Layer, name string) int {
	switch l.Kind {
	case "BatchNorm":
		return gi(l, 0) // channels
	case "Bias":
		return gi(l, 0) // bias_data_size
	case "Convolution", "ConvolutionDepthWise":
		if name == "weight" {
			return gi(l, 6)
		}
		if gi(l, 5) != 0 {
			return gi(l, 0)
		}
		return 0
	case "Deconvolution", "DeconvolutionDepthWise":
		if name == "weight" {
			return gi(l, 6)
		}
		if gi(l, 5) != 0 {
			return gi(l, 0)
		}
		return 0
	case "InnerProduct":
		if name == "weight" {
			return gi(l, 2)
		}
		if gi(l, 1) != 0 {
			return gi(l, 0)
		}
		return 0
	case "Scale":
		if name == "scale" {
			return gi(l, 0)
		}
		if gi(l, 1) != 0 {
			return gi(l, 0)
		}
		return 0
	case "PReLU":
		return gi(l, 0) // num_slope
	case "Normalize":
		return gi(l, 3) // scale_data_size
	default:
		return 0
	}
}

func readLayerWeights(r *bufio.Reader, l *ncnn.Layer) error {
	spec, ok := catalog.Kind(l.Kind)
	if !ok {
		return nil
	}
	for _, wt := range spec.Weights {
		if wt.Tagged {
			var tag int32
			if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
				return fmt.Errorf("%w: reading weight tag for %q", ErrTruncated, l.Name)
			}
			if tag != 0 {
				return ErrUnsupportedPrecision
			}
		}
		n := weightLength(l, wt.Name)
		if n == 0 {
			continue
		}
		data := make([]float32, n)
		if err := binary.Read(r, binary.LittleEndian, data); err != nil {
			return fmt.Errorf("%w: reading %q weight for %q", ErrTruncated, wt.Name, l.Name)
		}
		if l.Weights == nil {
			l.Weights = make(map[string]*ncnn.Tensor)
		}
		l.Weights[wt.Name] = &ncnn.Tensor{C: n, H: 1, W: 1, Data: data}
	}
	return nil
}
