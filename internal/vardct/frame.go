package vardct

import (
	"github.com/jxldecoder/jxl/internal/bitio"
	"github.com/jxldecoder/jxl/internal/entropy"
	"github.com/jxldecoder/jxl/internal/modular"
)

// FrameState holds everything needed to decode one VarDCT frame's LF and
// HF sections and resolve them into pixel-domain color channels, mirroring
// the per-frame state the container decode loop threads through LfGlobal,
// the per-tile LfGroups, HfGlobal and the per-tile PassGroups.
type FrameState struct {
	Global *LfGlobal
	HF     *HfGlobal
	Groups []*LfGroup
	Nnz    []*NnzGrid

	GroupsWide int
}

// NewFrameState allocates the per-group LfGroup and NnzGrid slices for a
// frame laid out in groupsWide x groupsHigh LF tiles, each w8 x h8 cells.
func NewFrameState(lg *LfGlobal, hg *HfGlobal, groupsWide, groupsHigh, w8, h8 int) *FrameState {
	fs := &FrameState{Global: lg, HF: hg, GroupsWide: groupsWide}
	n := groupsWide * groupsHigh
	fs.Groups = make([]*LfGroup, n)
	fs.Nnz = make([]*NnzGrid, n)
	for i := 0; i < n; i++ {
		fs.Groups[i] = NewLfGroup(w8, h8)
		fs.Nnz[i] = NewNnzGrid(w8, h8)
	}
	return fs
}

// DecodePassGroup decodes one progressive pass's worth of HF coefficients
// for one LF-group tile, placing dequantized, inverse-transformed pixel
// values into the tile's three color channels. blockCtxBase is the
// block-context-map cluster id resolved per-varblock by the caller (via
// BlockContextMap.ClusterOf), since the context depends on per-varblock
// LF/QF bucket placement that the container loop tracks alongside tile
// indices.
func DecodePassGroup(r *bitio.Reader, state *entropy.CodeState, pass HfPass, fs *FrameState, groupIdx int, blockCtxBase []int, out [3]*modular.Channel) error {
	lfg := fs.Groups[groupIdx]
	nnz := fs.Nnz[groupIdx]

	for vi, vb := range lfg.Varblocks {
		sel, err := DctSelectByID(vb.DctSelectID)
		if err != nil {
			return err
		}
		order, ok := pass.UsedOrders[vb.DctSelectID]
		if !ok {
			order = naturalOrder(sel)
		}
		numCells := (sel.Rows() / 8) * (sel.Columns() / 8)

		x8, y8 := cellOrigin(lfg, vi)
		ctxBase := 0
		if vi < len(blockCtxBase) {
			ctxBase = blockCtxBase[vi]
		}

		// Decode and dequantize all three channels before inverse-
		// transforming any of them: chroma-from-luma mixes the Y buffer
		// into X/B in the coefficient domain, so it must run between
		// dequantization and IDCT, not after.
		var bufs [3][]float64
		qm := fs.HF.QuantMatrices[vb.DctSelectID]
		for c := 0; c < 3; c++ {
			buf := make([]float64, numCells*64)
			if err := DecodeVarblockCoeffs(r, state, pass.CoeffSpec, order, c, numCells, ctxBase, nnz, x8, y8, buf); err != nil {
				return err
			}
			for i := range buf {
				var dq float32 = 1
				if qm.Entries[c] != nil && i < len(qm.Entries[c]) {
					dq = qm.Entries[c][i]
				}
				buf[i] = float64(DequantizeHF(int32(buf[i]), fs.Global.GlobalScale, vb.HfMul, 1, dq, c))
			}
			bufs[c] = buf
		}

		xFactor, bFactor := int32(0), int32(0)
		if fs.Global != nil {
			bx, by := x8/8, y8/8
			if lfg.XFromY != nil && bx < lfg.XFromY.Width && by < lfg.XFromY.Height {
				xFactor = lfg.XFromY.At(bx, by)
			}
			if lfg.BFromY != nil && bx < lfg.BFromY.Width && by < lfg.BFromY.Height {
				bFactor = lfg.BFromY.At(bx, by)
			}
			ApplyChromaFromLuma(bufs[0], bufs[1], bufs[2], fs.Global.BaseCorrX, fs.Global.BaseCorrB, fs.Global.InvColourFactor, xFactor, bFactor)
		}

		for c := 0; c < 3; c++ {
			spatial := sel.Inverse(bufs[c])
			placePixels(out[c], spatial, x8*8, y8*8, sel.Columns(), sel.Rows())
		}
	}
	return nil
}

// ComputeBlockContextBase resolves each of an LfGroup's varblocks to a
// block-context-map cluster id, derived from the LF-threshold bucket at
// the varblock's top-left cell and its HF QFIndex, for DecodePassGroup's
// blockCtxBase parameter.
func ComputeBlockContextBase(lg *LfGlobal, lfg *LfGroup) []int {
	out := make([]int, len(lfg.Varblocks))
	for vi, vb := range lfg.Varblocks {
		x8, y8 := cellOrigin(lfg, vi)
		lfBucket := 0
		if lfg.LFIndices != nil {
			lfBucket = int(lfg.LFIndices.At(x8, y8))
		}
		out[vi] = lg.BlockCtxMap.ClusterOf(0, lfBucket, vb.QFIndex)
	}
	return out
}

func cellOrigin(lfg *LfGroup, varblockIndex int) (int, int) {
	for idx, v := range lfg.Blocks {
		if v>>20 != 0 && int(v&0xFFFFF) == varblockIndex {
			return idx % lfg.Width8, idx / lfg.Width8
		}
	}
	return 0, 0
}

func naturalOrder(sel DctSelect) CoeffOrder {
	n := (sel.Rows() / 8) * (sel.Columns() / 8) * 64
	perm := make([]int32, n)
	for i := range perm {
		perm[i] = int32(i)
	}
	return CoeffOrder{Perm: [3][]int32{perm, perm, perm}}
}

func placePixels(ch *modular.Channel, spatial []float64, x0, y0, w, h int) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ch.Set(x0+x, y0+y, int32(spatial[y*w+x]+0.5))
		}
	}
}
