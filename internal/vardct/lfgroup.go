package vardct

import (
	"github.com/jxldecoder/jxl/internal/bitio"
	"github.com/jxldecoder/jxl/internal/jxlerr"
	"github.com/jxldecoder/jxl/internal/modular"
)

// VarblockEntry records one placed varblock's DctSelect, its HF
// multiplier, and the coefficient-buffer offset HF decoding will write
// into.
type VarblockEntry struct {
	DctSelectID int
	HfMul       uint32
	CoeffOffset int
	QFIndex     int
}

// LfGroup holds one LF tile's reduced-resolution LF image plus the HF
// placement metadata (which 8x8 cells belong to which varblock).
type LfGroup struct {
	Width8, Height8 int // size in 8x8-cell units

	LF [3]*modular.Channel // one LF plane per channel, size Width8 x Height8

	XFromY, BFromY *modular.Channel // 64-reduced color-correlation planes
	Sharpness      *modular.Channel // 8-reduced sharpness plane

	// Blocks[y8*Width8+x8]: 0 => unclaimed, 1 => claimed-non-top-left,
	// (dctSelectID+2)<<20 | varblock index => top-left of a varblock of
	// that DctSelect.
	Blocks []int32

	Varblocks []VarblockEntry

	LFIndices *modular.Channel // per-8x8 LF-threshold bucket id, combined across channels
}

// NewLfGroup allocates an LfGroup for the given tile size in 8x8 cells.
func NewLfGroup(w8, h8 int) *LfGroup {
	lfg := &LfGroup{Width8: w8, Height8: h8}
	for c := 0; c < 3; c++ {
		lfg.LF[c] = modular.NewChannel(w8, h8, 0, 0)
	}
	lfg.XFromY = modular.NewChannel((w8+7)/8, (h8+7)/8, 3, 3)
	lfg.BFromY = modular.NewChannel((w8+7)/8, (h8+7)/8, 3, 3)
	lfg.Sharpness = modular.NewChannel(w8, h8, 0, 0)
	lfg.Blocks = make([]int32, w8*h8)
	lfg.LFIndices = modular.NewChannel(w8, h8, 0, 0)
	return lfg
}

// ApplyLFScale converts decoded LF modular coefficients into LF
// floating-point values: multiply by m_lf_scaled[c] / (global_scale *
// quant_lf) * 2^(16-extra_prec).
func ApplyLFScale(lfg *LfGroup, lg *LfGlobal, mLfScaled [3]float32, extraPrec uint32) {
	scale := [3]float32{}
	for c := 0; c < 3; c++ {
		scale[c] = mLfScaled[c] / (lg.GlobalScale * lg.QuantLF) * float32(uint32(1)<<(16-extraPrec))
	}
	for c := 0; c < 3; c++ {
		for i, v := range lfg.LF[c].Data {
			lfg.LF[c].Data[i] = int32(float32(v) * scale[c])
		}
	}
}

// ComputeLFIndices fills lfg.LFIndices by, for each 8x8 cell, counting how
// many of each channel's lf_thr thresholds are below that channel's LF
// value and combining the three per-channel counts into one bucket id.
func ComputeLFIndices(lfg *LfGroup, lfThr [3][]int32) {
	for y := 0; y < lfg.Height8; y++ {
		for x := 0; x < lfg.Width8; x++ {
			combined := int32(0)
			mult := int32(1)
			for c := 0; c < 3; c++ {
				v := lfg.LF[c].At(x, y)
				count := int32(0)
				for _, thr := range lfThr[c] {
					if v > thr {
						count++
					}
				}
				combined += count * mult
				mult *= int32(len(lfThr[c]) + 1)
			}
			lfg.LFIndices.Set(x, y, combined)
		}
	}
}

// SmoothLF applies the 3x3 weighted-average LF smoothing pass described
// in §4.6: blend each pixel toward its local weighted average based on
// how far neighbors disagree.
func SmoothLF(lfg *LfGroup, invMLf [3]float32) {
	const w0, w1, w2 = 0.0523, 0.2035, 0.0335
	for c := 0; c < 3; c++ {
		ch := lfg.LF[c]
		src := append([]int32(nil), ch.Data...)
		get := func(x, y int) float32 {
			if x < 0 {
				x = 0
			}
			if x >= ch.Width {
				x = ch.Width - 1
			}
			if y < 0 {
				y = 0
			}
			if y >= ch.Height {
				y = ch.Height - 1
			}
			return float32(src[y*ch.Width+x])
		}
		for y := 0; y < ch.Height; y++ {
			for x := 0; x < ch.Width; x++ {
				center := get(x, y)
				ortho := get(x-1, y) + get(x+1, y) + get(x, y-1) + get(x, y+1)
				diag := get(x-1, y-1) + get(x+1, y-1) + get(x-1, y+1) + get(x+1, y+1)
				wa := float32(w0)*center + float32(w1)*ortho/4 + float32(w2)*diag/4
				diff := wa - center
				absDiff := diff
				if absDiff < 0 {
					absDiff = -absDiff
				}
				blend := float32(3) - 4*absDiff*invMLf[c]
				if blend < 0 {
					blend = 0
				}
				if blend > 3 {
					blend = 3
				}
				result := center + blend/3*(wa-center)
				ch.Set(x, y, int32(result))
			}
		}
	}
}

// PlaceVarblock marks an 8x8-aligned region starting at (x8, y8) as one
// varblock of the given DctSelect, filling lfg.Blocks and appending a
// VarblockEntry; coeffOffset is bumped by the block's coefficient count
// (cells*64).
func PlaceVarblock(lfg *LfGroup, x8, y8, dctSelectID int, hfMul uint32, coeffOffset *int) error {
	sel, err := DctSelectByID(dctSelectID)
	if err != nil {
		return err
	}
	wCells := sel.Columns() / 8
	hCells := sel.Rows() / 8
	if x8+wCells > lfg.Width8 || y8+hCells > lfg.Height8 {
		return jxlerr.New(jxlerr.ErrVarblock, "varblock extends past lf group bounds")
	}
	voff := len(lfg.Varblocks)
	for dy := 0; dy < hCells; dy++ {
		for dx := 0; dx < wCells; dx++ {
			idx := (y8+dy)*lfg.Width8 + (x8 + dx)
			if lfg.Blocks[idx] != 0 {
				return jxlerr.New(jxlerr.ErrVarblock, "varblock overlaps an already-claimed cell")
			}
			if dx == 0 && dy == 0 {
				lfg.Blocks[idx] = int32(dctSelectID+2)<<20 | int32(voff)
			} else {
				lfg.Blocks[idx] = 1
			}
		}
	}
	lfg.Varblocks = append(lfg.Varblocks, VarblockEntry{
		DctSelectID: dctSelectID,
		HfMul:       hfMul,
		CoeffOffset: *coeffOffset,
	})
	*coeffOffset += wCells * hCells * 64
	return nil
}
