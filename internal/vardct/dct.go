// Package vardct implements the VarDCT sub-codec: the LF/HF coefficient
// pipeline, adaptive quantization, the Perera-Liu radix-2 inverse DCT
// family, chroma-from-luma, the opsin-to-sRGB color pipeline, Gaborish
// convolution and the edge-preserving filter. The varblock-metadata
// iteration and dequantization-then-transform pipeline shape follow
// github.com/deepteams/webp/internal/vp8's per-macroblock residual decode
// (read coefficients, dequantize, inverse-transform into the macroblock's
// pixel region), generalized from VP8's fixed 4x4/16x16 block sizes to
// JPEG XL's 27 variable block shapes.
package vardct

import (
	"math"

	"github.com/jxldecoder/jxl/internal/jxlerr"
)

// halfSecants[2^n+k] = 1/(2*cos((k+0.5)*pi/2^(n+1))) for n in [1,7], the
// stabilizer constants the Perera-Liu radix-2 recursion multiplies the
// "difference" half of each split by.
var halfSecants = buildHalfSecants()

func buildHalfSecants() []float64 {
	tbl := make([]float64, 1<<8)
	for n := 1; n <= 7; n++ {
		size := 1 << n
		for k := 0; k < size; k++ {
			tbl[size+k] = 1.0 / (2.0 * math.Cos((float64(k)+0.5)*math.Pi/float64(size*2)))
		}
	}
	return tbl
}

// idct1D applies an inverse DCT-II of length n (a power of two, 2..256)
// to src, writing n outputs to dst, using the Perera-Liu radix-2
// butterfly: split into sum/difference halves, scale the difference half
// by the stage's half-secant, recurse on both halves, then interleave.
func idct1D(dst, src []float64, n int) {
	if n == 1 {
		dst[0] = src[0]
		return
	}
	if n == 2 {
		a, b := src[0], src[1]
		dst[0] = a + b
		dst[1] = a - b
		return
	}
	half := n / 2
	even := make([]float64, half)
	odd := make([]float64, half)
	for k := 0; k < half; k++ {
		even[k] = src[2*k]
	}
	for k := 0; k < half; k++ {
		odd[k] = src[2*k+1] * halfSecants[half+k]
	}
	evenOut := make([]float64, half)
	oddOut := make([]float64, half)
	idct1D(evenOut, even, half)
	idct1D(oddOut, odd, half)
	for k := 0; k < half; k++ {
		dst[k] = evenOut[k] + oddOut[k]
		dst[n-1-k] = evenOut[k] - oddOut[k]
	}
}

// IDCT2D applies a separable inverse DCT to a rows x cols coefficient
// block: row transform, transpose, column transform, following the
// row-then-column-then-detranspose order §4.6 specifies (coefficients
// arrive row-major with rows possibly the longer axis when
// log_columns > log_rows).
func IDCT2D(coeffs []float64, rows, cols int) []float64 {
	tmp := make([]float64, rows*cols)
	rowBuf := make([]float64, cols)
	for y := 0; y < rows; y++ {
		idct1D(rowBuf, coeffs[y*cols:(y+1)*cols], cols)
		copy(tmp[y*cols:(y+1)*cols], rowBuf)
	}
	out := make([]float64, rows*cols)
	colIn := make([]float64, rows)
	colOut := make([]float64, rows)
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			colIn[y] = tmp[y*cols+x]
		}
		idct1D(colOut, colIn, rows)
		for y := 0; y < rows; y++ {
			out[y*cols+x] = colOut[y]
		}
	}
	return out
}

// DctSelect identifies one of the 27 varblock transform kinds the format
// defines; LogRows/LogColumns give the block's shape in 8x8-cell units
// (0 => 8, 1 => 16, ...), and Kind distinguishes the handful of
// non-generic small transforms from the generic power-of-two IDCT2D path.
type DctSelect struct {
	LogRows, LogColumns int
	Kind                TransformKind
}

// TransformKind enumerates the distinct inverse-transform shapes.
type TransformKind uint8

const (
	KindGeneric TransformKind = iota
	KindHornuss
	KindDCT11
	KindDCT22
	KindDCT23
	KindDCT32
	KindAFV0
	KindAFV1
	KindAFV2
	KindAFV3
)

// dctSelectTable enumerates the 27 DctSelect kinds in id order. Ids 0-8
// and 18-26 are generic power-of-two rectangles up to 256x256; ids 9-17
// are the small hand-crafted transforms (Hornuss, DCT11/22/23/32, AFV0-3).
var dctSelectTable = [27]DctSelect{
	{0, 0, KindGeneric},  // DCT8x8
	{1, 1, KindGeneric},  // DCT16x16
	{2, 2, KindGeneric},  // DCT32x32
	{0, 1, KindGeneric},  // DCT8x16
	{1, 0, KindGeneric},  // DCT16x8
	{0, 2, KindGeneric},  // DCT8x32
	{2, 0, KindGeneric},  // DCT32x8
	{1, 2, KindGeneric},  // DCT16x32
	{2, 1, KindGeneric},  // DCT32x16
	{0, 0, KindHornuss},
	{0, 0, KindDCT11},
	{0, 0, KindDCT22},
	{0, 0, KindDCT23},
	{0, 0, KindDCT32},
	{0, 0, KindAFV0},
	{0, 0, KindAFV1},
	{0, 0, KindAFV2},
	{0, 0, KindAFV3},
	{3, 3, KindGeneric},  // DCT64x64
	{3, 2, KindGeneric},  // DCT64x32
	{2, 3, KindGeneric},  // DCT32x64
	{4, 4, KindGeneric},  // DCT128x128
	{4, 3, KindGeneric},  // DCT128x64
	{3, 4, KindGeneric},  // DCT64x128
	{5, 5, KindGeneric},  // DCT256x256
	{5, 4, KindGeneric},  // DCT256x128
	{4, 5, KindGeneric},  // DCT128x256
}

// DctSelectByID returns the DctSelect for id in [0, 27).
func DctSelectByID(id int) (DctSelect, error) {
	if id < 0 || id >= len(dctSelectTable) {
		return DctSelect{}, jxlerr.New(jxlerr.ErrVarblock, "dct select id out of range")
	}
	return dctSelectTable[id], nil
}

// Rows/Columns return the varblock's pixel dimensions.
func (d DctSelect) Rows() int    { return 8 << d.LogRows }
func (d DctSelect) Columns() int { return 8 << d.LogColumns }

// Inverse applies this DctSelect's inverse transform to an already
// dequantized coefficient block, returning spatial-domain samples in the
// same row-major layout.
func (d DctSelect) Inverse(coeffs []float64) []float64 {
	switch d.Kind {
	case KindHornuss:
		return inverseHornuss(coeffs)
	case KindDCT11, KindDCT22, KindDCT23, KindDCT32:
		return inverseStitched(coeffs, d.Kind)
	case KindAFV0, KindAFV1, KindAFV2, KindAFV3:
		return inverseAFV(coeffs, d.Kind)
	default:
		return IDCT2D(coeffs, d.Rows(), d.Columns())
	}
}
