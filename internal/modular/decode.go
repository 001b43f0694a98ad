package modular

import (
	"github.com/jxldecoder/jxl/internal/bitio"
	"github.com/jxldecoder/jxl/internal/entropy"
	"github.com/jxldecoder/jxl/internal/jxlerr"
	"github.com/jxldecoder/jxl/internal/matree"
)

// maxCoeffAlphabet bounds the raw prefix/ANS alphabet Modular pixel
// streams are coded over; pixel residuals are hybrid-integer coded so the
// raw token itself only ever needs to span the hybrid split points.
const maxCoeffAlphabet = 272

// DecodeSpec holds the MA tree and its per-leaf CodeSpec used to decode
// one group's worth of Modular channels. The transform list is read and
// applied separately (see ReadTransforms and Transform.ApplyInverse).
type DecodeSpec struct {
	Tree     *matree.Tree
	CodeSpec *entropy.CodeSpec
}

// ReadDecodeSpec reads the MA tree and its leaf-context CodeSpec for one
// Modular stream. width/height/nchan describe the image this tree governs
// and bound its node count per matree.MaxTreeSizeFor.
func ReadDecodeSpec(r *bitio.Reader, width, height, nchan int) (*DecodeSpec, error) {
	treeSpec, err := matree.ReadTreeSpec(r)
	if err != nil {
		return nil, err
	}
	tree, err := matree.DecodeTree(r, treeSpec, matree.MaxTreeSizeFor(width, height, nchan))
	if err != nil {
		return nil, err
	}
	numLeaves := tree.NumLeaves()
	if numLeaves == 0 {
		return nil, jxlerr.New(jxlerr.ErrMATree, "tree has no leaves")
	}
	codeSpec, err := entropy.ReadCodeSpec(r, numLeaves, maxCoeffAlphabet)
	if err != nil {
		return nil, err
	}
	return &DecodeSpec{Tree: tree, CodeSpec: codeSpec}, nil
}

// DecodeChannel fills one channel in raster order, consulting the MA tree
// for a predictor/context at every pixel. The weighted predictor's running
// state (used by predictor id 6, and read by property 15) advances on
// every pixel regardless of which predictor id the tree actually selects,
// since the tree may branch on property 15 without choosing predictor 6.
func DecodeChannel(r *bitio.Reader, spec *DecodeSpec, c *Channel, channelIndex int, state *entropy.CodeState) error {
	wp := NewWeightedPredictor(c.Width)
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			wpPred, est := wp.Predict(c, x, y)
			props := staticProperties(c, channelIndex, x, y, wp)
			leaf, err := spec.Tree.Eval(props)
			if err != nil {
				return err
			}

			var pred int32
			if leaf.Predictor == PredictorWeighted {
				pred = wpPred
			} else {
				pred = Predict(leaf.Predictor, c, x, y)
			}
			pred += leaf.PredictorOffset

			raw, err := state.Read(r, spec.CodeSpec, int(leaf.Context))
			if err != nil {
				return err
			}
			residual := entropy.UnpackSigned(raw) * int32(leaf.Multiplier)
			val := pred + residual
			c.Set(x, y, val)

			wp.Update(x, val, est, wpPred)
		}
		wp.EndRow()
	}
	return nil
}

// staticProperties builds the fixed per-pixel property vector an MA tree
// branch may test, matching spec.md section 4.4's property numbering
// exactly for indices 0-5 and 15: 0=channel, 1=sidx (always 0 - this
// decoder only supports single-section streams, see DESIGN.md), 2=y, 3=x,
// 4=|N|, 5=|W|, and 15=the weighted predictor's own max absolute true
// error over W/N/NW/NE. Indices 6-14 are the nine residual properties
// spec.md describes only by example ("N-NW, W-N, W+N-NW, gradient
// residuals") over the {W,N,NW,NE,NN,WW,NWW,NEE} stencil; this decoder
// fills that slot range with a concrete, documented ordering built from
// that same stencil, since no original_source/ material survives to
// recover the authoritative bit-for-bit order (see DESIGN.md).
func staticProperties(c *Channel, channelIndex, x, y int, wp *WeightedPredictor) matree.Properties {
	n := neighbors(c, x, y)
	nn := c.At(x, y-2)
	nee := c.At(x+2, y-1)
	nww := c.At(x-2, y-1)
	props := make(matree.Properties, matree.NumStaticProperties)
	props[0] = int32(channelIndex)
	props[1] = 0 // sidx: no streaming/sub-image support in this decoder
	props[2] = int32(y)
	props[3] = int32(x)
	props[4] = abs32(n.N)
	props[5] = abs32(n.W)
	props[6] = n.N - n.NW
	props[7] = n.W - n.N
	props[8] = n.W + n.N - n.NW
	props[9] = n.W - n.WW
	props[10] = n.N - nn
	props[11] = nww - n.NW
	props[12] = n.NE - n.N
	props[13] = nee - n.NE
	props[14] = abs32(n.W-n.NW) - abs32(n.N-n.NW)

	wErr, nErr, nwErr, neErr := wp.TrueErrorNeighbors(x)
	maxAbs := abs32(wErr)
	if v := abs32(nErr); v > maxAbs {
		maxAbs = v
	}
	if v := abs32(nwErr); v > maxAbs {
		maxAbs = v
	}
	if v := abs32(neErr); v > maxAbs {
		maxAbs = v
	}
	props[15] = maxAbs
	return props
}
