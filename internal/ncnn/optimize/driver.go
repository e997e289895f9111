package optimize

import (
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/born-ml/ncnnoptimize/internal/ncnn"
)

// Logger receives one line per pass describing how many rewrites it made.
// Passing nil to Run installs a logger that writes to stderr, matching
// ncnnoptimize's own progress chatter.
type Logger interface {
	Printf(format string, v ...any)
}

type stderrLogger struct{ l *log.Logger }

func (s stderrLogger) Printf(format string, v ...any) { s.l.Printf(format, v...) }

func defaultLogger() Logger {
	return stderrLogger{l: log.New(os.Stderr, "", 0)}
}

// PassResult records one pass's name and how many rewrites it made.
type PassResult struct {
	Name     string
	Rewrites int
}

// Report summarizes one optimization run: a unique run id and the
// per-pass rewrite counts in execution order.
type Report struct {
	RunID string
	Passes []PassResult
}

// TotalRewrites sums every pass's rewrite count.
func (r Report) TotalRewrites() int {
	n := 0
	for _, p := range r.Passes {
		n += p.Rewrites
	}
	return n
}

type pass struct {
	name string
	run  func(*ncnn.Graph) int
}

// pipeline lists the passes in the exact order ncnnoptimize.cpp's main()
// runs them: the lone BatchNorm->Scale merge first, then each affine
// kind's BatchNorm fold, then each affine kind's activation absorption,
// then Dropout elimination last. Later passes depend on this order: an
// activation fuse must never run before its affine layer has already
// absorbed any BatchNorm ahead of it.
var pipeline = []pass{
	{"fuse_batchnorm_scale", fuseBatchNormScale},
	{"fuse_convolution_batchnorm", fuseConvolutionBatchNorm},
	{"fuse_convolutiondepthwise_batchnorm", fuseConvolutionDepthWiseBatchNorm},
	{"fuse_deconvolution_batchnorm", fuseDeconvolutionBatchNorm},
	{"fuse_deconvolutiondepthwise_batchnorm", fuseDeconvolutionDepthWiseBatchNorm},
	{"fuse_innerproduct_batchnorm", fuseInnerProductBatchNorm},
	{"fuse_convolution_activation", fuseConvolutionActivation},
	{"fuse_convolutiondepthwise_activation", fuseConvolutionDepthWiseActivation},
	{"fuse_deconvolution_activation", fuseDeconvolutionActivation},
	{"fuse_deconvolutiondepthwise_activation", fuseDeconvolutionDepthWiseActivation},
	{"fuse_innerproduct_activation", fuseInnerProductActivation},
	{"eliminate_dropout", eliminateDropout},
}

// PassNames returns the pipeline's pass names in execution order. Tests
// pin this list down so a reordering of the pipeline slice is a visible,
// deliberate change rather than a silent one.
func PassNames() []string {
	names := make([]string, len(pipeline))
	for i, p := range pipeline {
		names[i] = p.name
	}
	return names
}

// Run executes every pass in pipeline order against g and returns a
// report of what each one did. A nil logger is replaced by one that writes
// to stderr; Run itself never logs more than one line per pass.
func Run(g *ncnn.Graph, logger Logger) Report {
	if logger == nil {
		logger = defaultLogger()
	}
	report := Report{RunID: uuid.NewString()}
	for _, p := range pipeline {
		n := p.run(g)
		logger.Printf("%s: %d rewrite(s)", p.name, n)
		report.Passes = append(report.Passes, PassResult{Name: p.name, Rewrites: n})
	}
	return report
}
