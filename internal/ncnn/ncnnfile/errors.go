package ncnnfile

import "errors"

// ErrBadMagic means the param file's first line was not "7767517".
var ErrBadMagic = errors.New("ncnnfile: bad magic line")

// ErrTruncated means a param or bin file ended before its declared
// content was fully read.
var ErrTruncated = errors.New("ncnnfile: unexpected end of file")

// ErrMalformedLine means a param file line could not be parsed: a bad
// layer/blob count line, a layer line without the four fixed fields
// (kind, name, bottom count, top count) or its declared blob names, or
// a malformed parameter token.
var ErrMalformedLine = errors.New("ncnnfile: malformed layer line")

// ErrUnsupportedPrecision means a tagged weight tensor carried a nonzero
// precision tag (fp16 or int8 quantization). This module only ever
// produces and consumes plain float32 weights.
var ErrUnsupportedPrecision = errors.New("ncnnfile: unsupported weight precision tag")
