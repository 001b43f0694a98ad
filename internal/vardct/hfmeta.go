package vardct

import (
	"github.com/jxldecoder/jxl/internal/bitio"
	"github.com/jxldecoder/jxl/internal/entropy"
)

// HF metadata's own fixed context assignment: one context per field,
// exactly like matree.ReadTreeSpec's fixed six-context tree-node CodeSpec.
const (
	hfMetaCtxDctSelect = iota
	hfMetaCtxHfMul
	hfMetaCtxXFromY
	hfMetaCtxBFromY
	hfMetaCtxSharpness
	hfMetaNumContexts
)

const hfMetaAlphabet = 272

// ReadHfMetadataSpec reads the CodeSpec the per-LfGroup HF metadata stream
// (DctSelect/HfMul per varblock plus the xfromy/bfromy/sharpness planes)
// is coded with.
func ReadHfMetadataSpec(r *bitio.Reader) (*entropy.CodeSpec, error) {
	return entropy.ReadCodeSpec(r, hfMetaNumContexts, hfMetaAlphabet)
}

// ReadHfMetadata reads one LfGroup's xfromy/bfromy/sharpness planes and
// then raster-scans its 8x8 cells, placing a varblock at every unclaimed
// top-left, per §4.6's "iterate over 8x8 blocks in raster order; at each
// un-claimed top-left read varblock metadata" rule.
func ReadHfMetadata(r *bitio.Reader, spec *entropy.CodeSpec, lfg *LfGroup) error {
	state := spec.NewState()

	for y := 0; y < lfg.XFromY.Height; y++ {
		for x := 0; x < lfg.XFromY.Width; x++ {
			xf, err := state.Read(r, spec, hfMetaCtxXFromY)
			if err != nil {
				return err
			}
			lfg.XFromY.Set(x, y, entropy.UnpackSigned(xf))

			bf, err := state.Read(r, spec, hfMetaCtxBFromY)
			if err != nil {
				return err
			}
			lfg.BFromY.Set(x, y, entropy.UnpackSigned(bf))
		}
	}

	for y := 0; y < lfg.Sharpness.Height; y++ {
		for x := 0; x < lfg.Sharpness.Width; x++ {
			sh, err := state.Read(r, spec, hfMetaCtxSharpness)
			if err != nil {
				return err
			}
			lfg.Sharpness.Set(x, y, int32(sh))
		}
	}

	coeffOffset := 0
	for y8 := 0; y8 < lfg.Height8; y8++ {
		for x8 := 0; x8 < lfg.Width8; x8++ {
			if lfg.Blocks[y8*lfg.Width8+x8] != 0 {
				continue
			}
			selRaw, err := state.Read(r, spec, hfMetaCtxDctSelect)
			if err != nil {
				return err
			}
			dctSelectID := int(selRaw) % len(dctSelectTable)

			mulRaw, err := state.Read(r, spec, hfMetaCtxHfMul)
			if err != nil {
				return err
			}
			hfMul := mulRaw + 1

			if err := PlaceVarblock(lfg, x8, y8, dctSelectID, hfMul, &coeffOffset); err != nil {
				return err
			}
		}
	}

	return state.Finish()
}
