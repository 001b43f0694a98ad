// Package jxlerr defines the FourCC error taxonomy shared by every layer of
// the decoder. Errors are compared by FourCC value (see CodeOf and
// IsShortRead), not by
// pointer identity, since the same failure can be wrapped and rewrapped as
// it propagates up through the state machine.
package jxlerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is a 4-ASCII-byte error identifier, matching the wire-level FourCC
// scheme described by the format's error taxonomy.
type Code [4]byte

func (c Code) String() string { return string(c[:]) }

// Short-read is the only recoverable condition; every other Code is fatal
// and latches the decoder.
var ShortRead = Code{'s', 'h', 'r', 't'}

// Fixed table of known codes. Declared as vars (not const) because Code is
// an array type with no constant form.
var (
	ErrBadSig      = Code{'!', 'j', 'x', 'l'}
	ErrBadFtyp     = Code{'!', 'f', 't', 'y'}
	ErrBoxOrder    = Code{'b', 'o', 'x', '?'}
	ErrBrotli      = Code{'b', 'r', 'o', 't'}
	ErrNotJxl      = Code{'!', 'j', 'x', 'l'}
	ErrOverflow    = Code{'b', 'i', 'g', 'g'}
	ErrTooLong     = Code{'f', 'l', 'e', 'n'}
	ErrPad0        = Code{'p', 'a', 'd', '0'}
	ErrRange       = Code{'r', 'n', 'g', 'e'}
	ErrEnum        = Code{'e', 'n', 'u', 'm'}
	ErrHuffman     = Code{'h', 'u', 'f', 'd'}
	ErrANSDist     = Code{'a', 'n', 's', 'd'}
	ErrIntOverflow = Code{'i', 'o', 'v', 'f'}
	ErrPixOverflow = Code{'p', 'o', 'v', 'f'}
	ErrCoeff       = Code{'c', 'o', 'e', 'f'}
	ErrVarblock    = Code{'v', 'b', 'l', 'k'}
	ErrDqmRange    = Code{'d', 'q', 'm', '?'}
	ErrDqmZero     = Code{'d', 'q', 'm', '0'}
	ErrRctType     = Code{'r', 'c', 't', 't'}
	ErrRctChan     = Code{'r', 'c', 't', 'c'}
	ErrRctData     = Code{'r', 't', 'c', 'd'}
	ErrPalParam    = Code{'p', 'a', 'l', 'p'}
	ErrPalChan     = Code{'p', 'a', 'l', 'c'}
	ErrPalData     = Code{'p', 'a', 'l', 'd'}
	ErrTransform   = Code{'x', 'f', 'm', '?'}
	ErrTreeLimit   = Code{'x', 'l', 'i', 'm'}
	ErrTree        = Code{'t', 'r', 'e', 'e'}
	ErrTreeSize    = Code{'t', 'l', 'i', 'm'}
	ErrANSState    = Code{'a', 'n', 's', '?'}
	ErrPredictor   = Code{'p', 'r', 'e', 'd'}
	ErrMATree      = Code{'m', 't', 'r', 'e'}
	ErrBlockCtx    = Code{'h', 'f', 'b', 'c'}
	ErrPass        = Code{'p', 'a', 's', 's'}
	ErrPerm        = Code{'p', 'e', 'r', 'm'}
	ErrCluster     = Code{'c', 'l', 's', 't'}
	ErrLZ77        = Code{'l', 'z', '7', '7'}
	ErrBand        = Code{'b', 'a', 'n', 'd'}
	ErrWeightedPr  = Code{'w', 'p', 't', '?'}
	ErrParam       = Code{'p', 'r', 'm', '?'}
	ErrTransferFn  = Code{'t', 'f', 'n', '?'}
	ErrIntent      = Code{'i', 't', 't', '?'}
	ErrColorSpace  = Code{'c', 's', 'p', '?'}
	ErrGamma       = Code{'g', 'a', 'm', 'a'}
	ErrTone        = Code{'t', 'o', 'n', 'e'}
	ErrBpp         = Code{'b', 'p', 'p', '?'}
	ErrExponent    = Code{'e', 'x', 'p', '?'}
	ErrName        = Code{'n', 'a', 'm', 'e'}
	ErrUpsample    = Code{'u', 's', 'm', 'p'}
	ErrPassLimit   = Code{'p', 'l', 'i', 'm'}
	ErrSectionLim  = Code{'s', 'l', 'i', 'm'}
	ErrExtraLimit  = Code{'e', 'l', 'i', 'm'}
	ErrExtraType   = Code{'e', 'c', 't', '?'}
	ErrSharpness   = Code{'s', 'h', 'r', 'p'}
	ErrEPFZero     = Code{'e', 'p', 'f', '0'}
	ErrGaborZero   = Code{'g', 'a', 'b', '0'}
	ErrNotFinite   = Code{'f', 'i', 'n', 0}
	ErrOutOfMemory = Code{'!', 'm', 'e', 'm'}
)

// UserReserved is the minimum value of the user-reserved FourCC space,
// interpreted as a big-endian uint32 of the code bytes.
const UserReserved = 1 << 24

// Unsupported marks a valid-but-unimplemented feature. It is sticky like any
// other fatal error, but carries a feature name for error_string().
type Unsupported struct {
	Feature string
}

func (u *Unsupported) Error() string { return "TODO:" + u.Feature }

// TODO wraps a feature name as a fatal Unsupported error.
func TODO(feature string) error { return &Unsupported{Feature: feature} }

// CodedError is a fatal decode error tagged with its FourCC and an optional
// wrapped cause, preserving a debuggable chain via github.com/pkg/errors
// while keeping the FourCC recoverable through errors.As.
type CodedError struct {
	Code  Code
	Where string
	cause error
}

func (e *CodedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Where, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Where)
}

func (e *CodedError) Unwrap() error { return e.cause }

// New creates a fatal CodedError with no wrapped cause.
func New(code Code, where string) error {
	return &CodedError{Code: code, Where: where}
}

// Wrap attaches a FourCC and calling context to an underlying error,
// preserving a stack trace via pkg/errors for internal diagnostics.
func Wrap(code Code, where string, cause error) error {
	if cause == nil {
		return nil
	}
	return &CodedError{Code: code, Where: where, cause: errors.Wrap(cause, where)}
}

// ShortReadErr is the single recoverable error instance. Callers test for it
// with errors.Is.
var ShortReadErr = New(ShortRead, "short read")

// IsShortRead reports whether err (or any error it wraps) is the short-read
// sentinel.
func IsShortRead(err error) bool {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code == ShortRead
	}
	return false
}

// CodeOf extracts the FourCC from err, or the zero Code if err does not
// carry one (e.g. it is a plain Go error from an I/O layer).
func CodeOf(err error) Code {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	var un *Unsupported
	if errors.As(err, &un) {
		return Code{'T', 'O', 'D', 'O'}
	}
	return Code{}
}

// Phrase renders a short human phrase for a FourCC, used by error_string().
func Phrase(c Code) string {
	switch c {
	case ErrBadSig:
		return "not a JPEG XL codestream"
	case ErrBadFtyp:
		return "malformed ftyp box"
	case ErrBoxOrder:
		return "container boxes in invalid order"
	case ErrBrotli:
		return "unsupported brotli-compressed box"
	case ErrOverflow:
		return "integer overflow"
	case ErrTooLong:
		return "size exceeds profile limits"
	case ErrPad0:
		return "non-zero byte-alignment padding"
	case ErrRange:
		return "value out of range"
	case ErrEnum:
		return "invalid enum value"
	case ErrHuffman:
		return "invalid prefix code"
	case ErrANSDist:
		return "invalid ANS distribution"
	case ErrIntOverflow:
		return "hybrid integer overflow"
	case ErrPixOverflow:
		return "pixel value overflow"
	case ErrCoeff:
		return "invalid coefficient"
	case ErrVarblock:
		return "invalid varblock placement"
	case ErrDqmRange:
		return "dequant matrix mode out of range"
	case ErrDqmZero:
		return "dequant matrix entry is zero"
	case ErrRctType:
		return "invalid RCT type"
	case ErrRctChan:
		return "invalid RCT channel range"
	case ErrRctData:
		return "invalid RCT data"
	case ErrPalParam:
		return "invalid palette parameters"
	case ErrPalChan:
		return "invalid palette channel range"
	case ErrPalData:
		return "invalid palette data"
	case ErrTransform:
		return "unknown modular transform"
	case ErrTreeLimit:
		return "MA tree exceeds size limit"
	case ErrTree:
		return "invalid MA tree"
	case ErrTreeSize:
		return "MA tree depth exceeds limit"
	case ErrANSState:
		return "rANS final state mismatch"
	case ErrPredictor:
		return "invalid predictor id"
	case ErrMATree:
		return "MA tree context ids not contiguous"
	case ErrBlockCtx:
		return "invalid block context map"
	case ErrPass:
		return "invalid pass/group section"
	case ErrPerm:
		return "invalid permutation"
	case ErrCluster:
		return "invalid cluster map"
	case ErrLZ77:
		return "invalid LZ77 stream"
	case ErrBand:
		return "invalid coefficient band"
	case ErrWeightedPr:
		return "invalid weighted predictor parameters"
	case ErrParam:
		return "invalid varblock parameter index"
	case ErrTransferFn:
		return "invalid transfer function"
	case ErrIntent:
		return "invalid rendering intent"
	case ErrColorSpace:
		return "invalid color space"
	case ErrGamma:
		return "invalid gamma"
	case ErrTone:
		return "invalid tone mapping constants"
	case ErrBpp:
		return "invalid bits per sample"
	case ErrExponent:
		return "invalid exponent bits"
	case ErrName:
		return "invalid name field"
	case ErrUpsample:
		return "unsupported upsampling"
	case ErrPassLimit:
		return "too many passes"
	case ErrSectionLim:
		return "too many TOC sections"
	case ErrExtraLimit:
		return "too many extra channels"
	case ErrExtraType:
		return "invalid extra channel type"
	case ErrSharpness:
		return "invalid sharpness value"
	case ErrEPFZero:
		return "EPF iteration count is zero but filter enabled"
	case ErrGaborZero:
		return "gaborish weights out of range"
	case ErrNotFinite:
		return "non-finite float16 value"
	case ErrOutOfMemory:
		return "allocation failed"
	case ShortRead:
		return "short read, need more input"
	}
	return "unknown error"
}
