package vardct

import (
	"github.com/jxldecoder/jxl/internal/bitio"
	"github.com/jxldecoder/jxl/internal/entropy"
	"github.com/jxldecoder/jxl/internal/jxlerr"
)

// CoeffOrder is a fully-resolved scan order for one used DctSelect: three
// permutations (one per channel) of the block's coefficient indices.
type CoeffOrder struct {
	Perm [3][]int32
}

// HfGlobal is the frame-wide HF metadata read once, before any
// PassGroup section.
type HfGlobal struct {
	QuantMatrices [27]QuantMatrix
	NumHfPresets  uint32
	Passes        []HfPass
}

// HfPass is one progressive pass's used-order set and coefficient
// CodeSpec.
type HfPass struct {
	UsedOrders map[int]CoeffOrder
	CoeffSpec  *entropy.CodeSpec
}

// ReadHfGlobal reads HfGlobal given the number of progressive passes and
// number of groups (needed to size num_hf_presets and the coefficient
// CodeSpec's context count).
func ReadHfGlobal(r *bitio.Reader, numPasses, numGroups, numBlockCtx int) (*HfGlobal, error) {
	hg := &HfGlobal{}

	haveMatrices, err := r.U(1)
	if err != nil {
		return nil, err
	}
	if haveMatrices == 1 {
		for i := 0; i < 27; i++ {
			sel, err := DctSelectByID(i)
			if err != nil {
				return nil, err
			}
			var raw [3][]float32
			qm, err := ReadQuantMatrix(r, sel, raw)
			if err != nil {
				return nil, err
			}
			hg.QuantMatrices[i] = qm
		}
	} else {
		for i := range hg.QuantMatrices {
			sel, _ := DctSelectByID(i)
			hg.QuantMatrices[i] = libraryMatrix(sel.Rows(), sel.Columns())
		}
	}

	presetBits := ceilLog2(numGroups)
	presetVal, err := r.U(presetBits)
	if err != nil {
		return nil, err
	}
	hg.NumHfPresets = presetVal + 1

	hg.Passes = make([]HfPass, numPasses)
	for p := 0; p < numPasses; p++ {
		mask, err := r.U(13)
		if err != nil {
			return nil, err
		}
		hp := HfPass{UsedOrders: map[int]CoeffOrder{}}
		for orderID := 0; orderID < 13; orderID++ {
			if mask&(1<<orderID) == 0 {
				continue
			}
			sel, err := DctSelectByID(orderID)
			if err != nil {
				return nil, err
			}
			size := sel.Rows() * sel.Columns()
			var co CoeffOrder
			for c := 0; c < 3; c++ {
				perm, err := readLehmerSkipFirst(r, size, size/64)
				if err != nil {
					return nil, err
				}
				co.Perm[c] = perm
			}
			hp.UsedOrders[orderID] = co
		}
		numContexts := numBlockCtx * int(hg.NumHfPresets) * 495
		spec, err := entropy.ReadCodeSpec(r, numContexts, maxCoeffAlphabet)
		if err != nil {
			return nil, err
		}
		hp.CoeffSpec = spec
		hg.Passes[p] = hp
	}

	return hg, nil
}

const maxCoeffAlphabet = 272

func ceilLog2(n int) uint {
	v := uint(0)
	for (1 << v) < n {
		v++
	}
	if v == 0 {
		return 1
	}
	return v
}

// readLehmerSkipFirst reads a Lehmer-coded permutation of size elements,
// skipping (not permuting) the first `skip` natural-order positions, which
// §4.6 exempts since the lowest-frequency coefficients are rarely
// reordered.
func readLehmerSkipFirst(r *bitio.Reader, size, skip int) ([]int32, error) {
	perm := make([]int32, size)
	for i := 0; i < skip && i < size; i++ {
		perm[i] = int32(i)
	}
	if skip >= size {
		return perm, nil
	}
	remaining := make([]int32, 0, size-skip)
	for i := skip; i < size; i++ {
		remaining = append(remaining, int32(i))
	}
	for i := skip; i < size; i++ {
		if len(remaining) == 0 {
			return nil, jxlerr.New(jxlerr.ErrPerm, "coefficient order permutation exhausted")
		}
		idx, err := r.AtMost(uint32(len(remaining) - 1))
		if err != nil {
			return nil, err
		}
		perm[i] = remaining[idx]
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return perm, nil
}
