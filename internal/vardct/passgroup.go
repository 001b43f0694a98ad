package vardct

import (
	"github.com/jxldecoder/jxl/internal/bitio"
	"github.com/jxldecoder/jxl/internal/entropy"
)

// NnzGrid tracks the non-zero coefficient count per 8x8 cell per channel,
// used both to pick the entropy context for the next cell's count and to
// derive per-coefficient contexts while scanning.
type NnzGrid struct {
	Width int
	Nnz   [3][]uint8
}

func NewNnzGrid(w8, h8 int) *NnzGrid {
	g := &NnzGrid{Width: w8}
	for c := 0; c < 3; c++ {
		g.Nnz[c] = make([]uint8, w8*h8)
	}
	return g
}

func (g *NnzGrid) predicted(c, x8, y8 int) int {
	left, above := 0, 0
	if x8 > 0 {
		left = int(g.Nnz[c][y8*g.Width+x8-1])
	}
	if y8 > 0 {
		above = int(g.Nnz[c][(y8-1)*g.Width+x8])
	}
	return (left + above + 1) / 2
}

// DecodeVarblockCoeffs decodes one varblock's HF coefficients for channel
// c into a numCells*64 buffer, adding each decoded value onto whatever buf
// already holds at its scan position, using the pass's coefficient
// CodeSpec and the varblock's resolved scan order. DecodePassGroup passes
// a zeroed buffer, so no LLF values are included.
func DecodeVarblockCoeffs(r *bitio.Reader, state *entropy.CodeState, spec *entropy.CodeSpec, order CoeffOrder, channel int, numCells int, blockCtxBase int, nnz *NnzGrid, x8, y8 int, buf []float64) error {
	predicted := nnz.predicted(channel, x8, y8)
	nnzCtx := predicted
	if nnzCtx > 63 {
		nnzCtx = 63
	}
	ctx := blockCtxBase + nnzCtx
	raw, err := state.Read(r, spec, ctx)
	if err != nil {
		return err
	}
	nzCount := int(raw)
	maxCoeffs := numCells*64 - 1
	if nzCount > maxCoeffs {
		nzCount = maxCoeffs
	}
	nnz.Nnz[channel][y8*nnz.Width+x8] = uint8(minInt(nzCount, 255))

	perm := order.Perm[channel]
	prevNonzero := 0
	decoded := 0
	for k := 1; k < len(perm) && decoded < nzCount; k++ {
		freqCtx := k * 64 / len(perm)
		remaining := nzCount - decoded
		remCtx := remaining
		if remCtx > 15 {
			remCtx = 15
		}
		coefCtx := blockCtxBase + 64 + freqCtx + remCtx*8 + prevNonzero
		rawCoef, err := state.Read(r, spec, coefCtx)
		if err != nil {
			return err
		}
		v := entropy.UnpackSigned(rawCoef)
		pos := int(perm[k])
		if pos >= 0 && pos < len(buf) {
			buf[pos] += float64(v)
		}
		if v != 0 {
			prevNonzero = 1
			decoded++
		} else {
			prevNonzero = 0
		}
	}
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
