package catalog

import "github.com/born-ml/ncnnoptimize/internal/ncnn"

func si(id int, name string, def int) ScalarParam {
	return ScalarParam{ID: id, Name: name, Float: false, Default: ncnn.Int(def)}
}

func sf(id int, name string, def float32) ScalarParam {
	return ScalarParam{ID: id, Name: name, Float: true, Default: ncnn.Float(def)}
}

func ai(id int, name string) ArrayParam { return ArrayParam{ID: id, Name: name, Float: false} }
func af(id int, name string) ArrayParam { return ArrayParam{ID: id, Name: name, Float: true} }

func w(name string) Weight  { return Weight{Name: name, Tagged: false} }
func wt(name string) Weight { return Weight{Name: name, Tagged: true} }

// registry holds every layer kind ncnnoptimize.cpp's serializer recognizes.
// Defaults reconstruct ncnn's documented layer defaults; where the
// original tool only fixes the wire id and format character (the default
// itself lives in a header this module's retrieval pack does not carry),
// the value below is ncnn's well-known public default — see DESIGN.md.
var registry = map[string]KindSpec{
	"BatchNorm": {
		Name: "BatchNorm",
		Scalars: []ScalarParam{
			si(0, "channels", 0),
			sf(1, "eps", 0),
		},
		Weights: []Weight{w("slope"), w("mean"), w("var"), w("bias")},
	},
	"Bias": {
		Name:    "Bias",
		Scalars: []ScalarParam{si(0, "bias_data_size", 0)},
		Weights: []Weight{w("bias")},
	},
	"BinaryOp": {
		Name: "BinaryOp",
		Scalars: []ScalarParam{
			si(0, "op_type", 0),
			si(1, "with_scalar", 0),
			sf(2, "b", 0),
		},
	},
	"Clip": {
		Name: "Clip",
		Scalars: []ScalarParam{
			sf(0, "min", negInf),
			sf(1, "max", posInf),
		},
	},
	"Concat": {
		Name:    "Concat",
		Scalars: []ScalarParam{si(0, "axis", 0)},
	},
	"Convolution": {
		Name: "Convolution",
		Scalars: []ScalarParam{
			si(0, "num_output", 0),
			si(1, "kernel_w", 0),
			si(11, "kernel_h", 0),
			si(2, "dilation_w", 1),
			si(12, "dilation_h", 1),
			si(3, "stride_w", 1),
			si(13, "stride_h", 1),
			si(4, "pad_w", 0),
			si(14, "pad_h", 0),
			si(5, "bias_term", 0),
			si(6, "weight_data_size", 0),
			si(8, "int8_scale_term", 0),
			si(9, "activation_type", 0),
		},
		Arrays:        []ArrayParam{af(10, "activation_params")},
		Weights:       []Weight{wt("weight"), w("bias")},
		HasActivation: true,
	},
	"ConvolutionDepthWise": {
		Name: "ConvolutionDepthWise",
		Scalars: []ScalarParam{
			si(0, "num_output", 0),
			si(1, "kernel_w", 0),
			si(11, "kernel_h", 0),
			si(2, "dilation_w", 1),
			si(12, "dilation_h", 1),
			si(3, "stride_w", 1),
			si(13, "stride_h", 1),
			si(4, "pad_w", 0),
			si(14, "pad_h", 0),
			si(5, "bias_term", 0),
			si(6, "weight_data_size", 0),
			si(7, "group", 1),
			si(8, "int8_scale_term", 0),
			si(9, "activation_type", 0),
		},
		Arrays:        []ArrayParam{af(10, "activation_params")},
		Weights:       []Weight{wt("weight"), w("bias")},
		HasActivation: true,
	},
	"Crop": {
		Name: "Crop",
		Scalars: []ScalarParam{
			si(0, "woffset", 0),
			si(1, "hoffset", 0),
			si(2, "coffset", 0),
			si(3, "outw", 0),
			si(4, "outh", 0),
			si(5, "outc", 0),
		},
	},
	"Deconvolution": {
		Name: "Deconvolution",
		Scalars: []ScalarParam{
			si(0, "num_output", 0),
			si(1, "kernel_w", 0),
			si(11, "kernel_h", 0),
			si(2, "dilation_w", 1),
			si(12, "dilation_h", 1),
			si(3, "stride_w", 1),
			si(13, "stride_h", 1),
			si(4, "pad_w", 0),
			si(14, "pad_h", 0),
			si(5, "bias_term", 0),
			si(6, "weight_data_size", 0),
			si(9, "activation_type", 0),
		},
		Arrays:        []ArrayParam{af(10, "activation_params")},
		Weights:       []Weight{wt("weight"), w("bias")},
		HasActivation: true,
	},
	"DeconvolutionDepthWise": {
		Name: "DeconvolutionDepthWise",
		Scalars: []ScalarParam{
			si(0, "num_output", 0),
			si(1, "kernel_w", 0),
			si(11, "kernel_h", 0),
			si(2, "dilation_w", 1),
			si(12, "dilation_h", 1),
			si(3, "stride_w", 1),
			si(13, "stride_h", 1),
			si(4, "pad_w", 0),
			si(14, "pad_h", 0),
			si(5, "bias_term", 0),
			si(6, "weight_data_size", 0),
			si(7, "group", 1),
			si(9, "activation_type", 0),
		},
		Arrays:        []ArrayParam{af(10, "activation_params")},
		Weights:       []Weight{wt("weight"), w("bias")},
		HasActivation: true,
	},
	"DetectionOutput": {
		Name: "DetectionOutput",
		Scalars: []ScalarParam{
			si(0, "num_class", 0),
			sf(1, "nms_threshold", 0.05),
			si(2, "nms_top_k", 300),
			si(3, "keep_top_k", 100),
			sf(4, "confidence_threshold", 0.05),
			sf(5, "variance0", 0.1),
			sf(6, "variance1", 0.1),
			sf(7, "variance2", 0.2),
			sf(8, "variance3", 0.2),
		},
	},
	"Dropout": {
		Name:    "Dropout",
		Scalars: []ScalarParam{sf(0, "scale", 1)},
	},
	"Eltwise": {
		Name:    "Eltwise",
		Scalars: []ScalarParam{si(0, "op_type", 0)},
		Arrays:  []ArrayParam{af(1, "coeffs")},
	},
	"ELU": {
		Name:    "ELU",
		Scalars: []ScalarParam{sf(0, "alpha", 0.1)},
	},
	"Exp": {
		Name: "Exp",
		Scalars: []ScalarParam{
			sf(0, "base", -1),
			sf(1, "scale", 1),
			sf(2, "shift", 0),
		},
	},
	"InnerProduct": {
		Name: "InnerProduct",
		Scalars: []ScalarParam{
			si(0, "num_output", 0),
			si(1, "bias_term", 0),
			si(2, "weight_data_size", 0),
			si(8, "int8_scale_term", 0),
			si(9, "activation_type", 0),
		},
		Arrays:        []ArrayParam{af(10, "activation_params")},
		Weights:       []Weight{wt("weight"), w("bias")},
		HasActivation: true,
	},
	"Input": {
		Name: "Input",
		Scalars: []ScalarParam{
			si(0, "w", 0),
			si(1, "h", 0),
			si(2, "c", 0),
		},
	},
	"InstanceNorm": {
		Name: "InstanceNorm",
		Scalars: []ScalarParam{
			si(0, "channels", 0),
			sf(1, "eps", 1e-5),
		},
	},
	"Interp": {
		Name: "Interp",
		Scalars: []ScalarParam{
			si(0, "resize_type", 0),
			sf(1, "height_scale", 1),
			sf(2, "width_scale", 1),
			si(3, "output_height", 0),
			si(4, "output_width", 0),
		},
	},
	"Log": {
		Name: "Log",
		Scalars: []ScalarParam{
			sf(0, "base", -1),
			sf(1, "scale", 1),
			sf(2, "shift", 0),
		},
	},
	"LRN": {
		Name: "LRN",
		Scalars: []ScalarParam{
			si(0, "region_type", 0),
			si(1, "local_size", 5),
			sf(2, "alpha", 1),
			sf(3, "beta", 0.75),
			sf(4, "bias", 1),
		},
	},
	"MVN": {
		Name: "MVN",
		Scalars: []ScalarParam{
			si(0, "normalize_variance", 0),
			si(1, "across_channels", 0),
			sf(2, "eps", 0.0001),
		},
	},
	"Normalize": {
		Name: "Normalize",
		Scalars: []ScalarParam{
			si(0, "across_spatial", 0),
			si(1, "channel_shared", 0),
			sf(2, "eps", 0.0001),
			si(3, "scale_data_size", 0),
			si(4, "across_channel", 0),
		},
		Weights: []Weight{w("scale")},
	},
	"Padding": {
		Name: "Padding",
		Scalars: []ScalarParam{
			si(0, "top", 0),
			si(1, "bottom", 0),
			si(2, "left", 0),
			si(3, "right", 0),
			si(4, "type", 0),
			sf(5, "value", 0),
		},
	},
	"Permute": {
		Name:    "Permute",
		Scalars: []ScalarParam{si(0, "order_type", 0)},
	},
	"Pooling": {
		Name: "Pooling",
		Scalars: []ScalarParam{
			si(0, "pooling_type", 0),
			si(1, "kernel_w", 0),
			si(11, "kernel_h", 0),
			si(2, "stride_w", 1),
			si(12, "stride_h", 1),
			si(3, "pad_left", 0),
			si(13, "pad_top", 0),
			si(14, "pad_right", 0),
			si(15, "pad_bottom", 0),
			si(4, "global_pooling", 0),
			si(5, "pad_mode", 0),
		},
	},
	"Power": {
		Name: "Power",
		Scalars: []ScalarParam{
			sf(0, "power", 1),
			sf(1, "scale", 1),
			sf(2, "shift", 0),
		},
	},
	"PReLU": {
		Name:    "PReLU",
		Scalars: []ScalarParam{si(0, "num_slope", 0)},
		Weights: []Weight{w("slope")},
	},
	"PriorBox": {
		Name: "PriorBox",
		Scalars: []ScalarParam{
			sf(3, "variance0", 0.1),
			sf(4, "variance1", 0.1),
			sf(5, "variance2", 0.2),
			sf(6, "variance3", 0.2),
			si(7, "flip", 1),
			si(8, "clip", 0),
			si(9, "image_width", 0),
			si(10, "image_height", 0),
			sf(11, "step_width", -233),
			sf(12, "step_height", -233),
			sf(13, "offset", 0),
		},
		Arrays: []ArrayParam{
			af(0, "min_sizes"),
			af(1, "max_sizes"),
			af(2, "aspect_ratios"),
		},
	},
	"Proposal": {
		Name: "Proposal",
		Scalars: []ScalarParam{
			si(0, "feat_stride", 16),
			si(1, "base_size", 16),
			si(2, "pre_nms_topN", 6000),
			si(3, "after_nms_topN", 300),
			sf(4, "nms_thresh", 0.7),
			si(5, "min_size", 16),
		},
	},
	"PSROIPooling": {
		Name: "PSROIPooling",
		Scalars: []ScalarParam{
			si(0, "pooled_width", 7),
			si(1, "pooled_height", 7),
			sf(2, "spatial_scale", 0.0625),
			si(3, "output_dim", 0),
		},
	},
	"Quantize": {
		Name:    "Quantize",
		Scalars: []ScalarParam{sf(0, "scale", 1)},
	},
	"Reduction": {
		Name: "Reduction",
		Scalars: []ScalarParam{
			si(0, "operation", 0),
			si(1, "dim", 0),
			sf(2, "coeff", 1),
		},
	},
	"ReLU": {
		Name:    "ReLU",
		Scalars: []ScalarParam{sf(0, "slope", 0)},
	},
	"Reorg": {
		Name:    "Reorg",
		Scalars: []ScalarParam{si(0, "stride", 1)},
	},
	"Requantize": {
		Name: "Requantize",
		Scalars: []ScalarParam{
			sf(0, "scale_in", 1),
			sf(1, "scale_out", 1),
			si(2, "bias_term", 0),
			si(3, "bias_data_size", 0),
			si(4, "fusion_relu", 0),
		},
	},
	"Reshape": {
		Name: "Reshape",
		Scalars: []ScalarParam{
			si(0, "w", -233),
			si(1, "h", -233),
			si(2, "c", -233),
			si(3, "permute", 0),
		},
	},
	"ROIAlign": {
		Name: "ROIAlign",
		Scalars: []ScalarParam{
			si(0, "pooled_width", 7),
			si(1, "pooled_height", 7),
			sf(2, "spatial_scale", 1),
		},
	},
	"ROIPooling": {
		Name: "ROIPooling",
		Scalars: []ScalarParam{
			si(0, "pooled_width", 7),
			si(1, "pooled_height", 7),
			sf(2, "spatial_scale", 0.0625),
		},
	},
	"Scale": {
		Name: "Scale",
		Scalars: []ScalarParam{
			si(0, "scale_data_size", 0),
			si(1, "bias_term", 0),
		},
		Weights: []Weight{w("scale"), w("bias")},
	},
	"ShuffleChannel": {
		Name:    "ShuffleChannel",
		Scalars: []ScalarParam{si(0, "group", 1)},
	},
	"Slice": {
		Name:    "Slice",
		Scalars: []ScalarParam{si(1, "axis", 0)},
		Arrays:  []ArrayParam{ai(0, "slices")},
	},
	"Softmax": {
		Name:    "Softmax",
		Scalars: []ScalarParam{si(0, "axis", 0)},
	},
	"Threshold": {
		Name:    "Threshold",
		Scalars: []ScalarParam{sf(0, "threshold", 0)},
	},
	"UnaryOp": {
		Name:    "UnaryOp",
		Scalars: []ScalarParam{si(0, "op_type", 0)},
	},
	"YoloDetectionOutput": {
		Name: "YoloDetectionOutput",
		Scalars: []ScalarParam{
			si(0, "num_class", 20),
			si(1, "num_box", 5),
			sf(2, "confidence_threshold", 0.01),
			sf(3, "nms_threshold", 0.45),
		},
		Arrays: []ArrayParam{af(4, "biases")},
	},
	"Yolov3DetectionOutput": {
		Name: "Yolov3DetectionOutput",
		Scalars: []ScalarParam{
			si(0, "num_class", 20),
			si(1, "num_box", 5),
			sf(2, "confidence_threshold", 0.01),
			sf(3, "nms_threshold", 0.45),
		},
		Arrays: []ArrayParam{
			af(4, "biases"),
			ai(5, "mask"),
			ai(6, "anchors_scale"),
		},
	},
}

// negInf and posInf stand in for Clip's unbounded default min/max. ncnn
// itself uses -FLT_MAX/FLT_MAX; Go's math.MaxFloat32 round-trips through
// %f identically for the purposes this module's serializer cares about.
const (
	negInf = -3.4028235e38
	posInf = 3.4028235e38
)
