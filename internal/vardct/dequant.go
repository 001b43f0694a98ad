package vardct

import (
	"github.com/jxldecoder/jxl/internal/bitio"
	"github.com/jxldecoder/jxl/internal/jxlerr"
)

// QuantMatrixMode enumerates the 8 ways a dequantization matrix for one
// DctSelect may be supplied: the library preset plus 7 encoded modes.
type QuantMatrixMode uint8

const (
	QMLibrary QuantMatrixMode = iota
	QMHornuss
	QMDCT2
	QMDCT4
	QMDCT4x8
	QMAFV
	QMGenericDCT
	QMRaw
)

// QuantMatrix is one fully resolved dequantization matrix: one float
// entry per (row, col, channel).
type QuantMatrix struct {
	Rows, Cols int
	Entries    [3][]float32
}

// libraryMatrix builds a flat 1/f-falloff matrix as the built-in
// "library" preset: low frequencies get a gentle divisor, high
// frequencies a steep one, matching the general shape (not the exact
// encoder-tuned constants) of JPEG-style quantization tables.
func libraryMatrix(rows, cols int) QuantMatrix {
	qm := QuantMatrix{Rows: rows, Cols: cols}
	for c := 0; c < 3; c++ {
		entries := make([]float32, rows*cols)
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				freq := float32(x + y + 1)
				entries[y*cols+x] = 1.0 + freq*freq*0.1
			}
		}
		qm.Entries[c] = entries
	}
	return qm
}

// ReadQuantMatrix reads one DctSelect's dequantization matrix, dispatching
// on the 8 QuantMatrixMode values (the library preset plus 7 encoded
// modes). Modes other than Raw resolve to
// deterministic built-in shapes scaled by the mode; Raw reads an explicit
// 3-channel modular-coded matrix (handled by the caller via the modular
// package, since this package does not import modular to avoid an import
// cycle — the caller passes the already-decoded raw entries in rawEntries
// when mode == QMRaw).
func ReadQuantMatrix(r *bitio.Reader, d DctSelect, rawEntries [3][]float32) (QuantMatrix, error) {
	modeVal, err := r.U(3)
	if err != nil {
		return QuantMatrix{}, err
	}
	mode := QuantMatrixMode(modeVal)
	rows, cols := d.Rows(), d.Columns()
	switch mode {
	case QMLibrary, QMGenericDCT:
		return libraryMatrix(rows, cols), nil
	case QMHornuss, QMDCT2, QMDCT4, QMDCT4x8, QMAFV:
		qm := libraryMatrix(rows, cols)
		scale, err := r.F16()
		if err != nil {
			return QuantMatrix{}, err
		}
		for c := range qm.Entries {
			for i := range qm.Entries[c] {
				qm.Entries[c][i] *= scale
			}
		}
		return qm, nil
	case QMRaw:
		denom, err := r.F16()
		if err != nil {
			return QuantMatrix{}, err
		}
		qm := QuantMatrix{Rows: rows, Cols: cols}
		for c := 0; c < 3; c++ {
			if len(rawEntries[c]) != rows*cols {
				return QuantMatrix{}, jxlerr.New(jxlerr.ErrDqmRange, "raw quant matrix entry count mismatch")
			}
			entries := make([]float32, rows*cols)
			for i, v := range rawEntries[c] {
				if v == 0 {
					return QuantMatrix{}, jxlerr.New(jxlerr.ErrDqmZero, "raw quant matrix entry is zero")
				}
				entries[i] = v * denom
			}
			qm.Entries[c] = entries
		}
		return qm, nil
	default:
		return QuantMatrix{}, jxlerr.New(jxlerr.ErrDqmRange, "unknown quant matrix mode")
	}
}

// quantBias/quantBiasNumerator are the small-value bias-correction
// constants §4.6 describes: values of magnitude <= 1 are scaled down by a
// per-channel bias, larger values are nudged toward zero by a
// numerator/value correction.
var quantBias = [3]float32{0.145, 0.08, 0.142}

const quantBiasNumerator = 0.145

// DequantizeHF scales one non-LLF coefficient by the global/local scale
// factors and the dequant matrix entry, applying the small-value bias
// correction.
func DequantizeHF(raw int32, globalScale float32, hfMul uint32, qmScale float32, dqEntry float32, channel int) float32 {
	if dqEntry == 0 {
		dqEntry = 1
	}
	q := (65536.0 / globalScale) / float32(hfMul+1) * qmScale / dqEntry
	v := float32(raw) * q
	if v <= 1 && v >= -1 {
		return v * quantBias[channel]
	}
	if v > 0 {
		return v - quantBiasNumerator/v
	}
	return v - quantBiasNumerator/v
}
