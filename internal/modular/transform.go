package modular

import (
	"github.com/jxldecoder/jxl/internal/bitio"
	"github.com/jxldecoder/jxl/internal/jxlerr"
)

// TransformKind tags the three Modular detransforms a frame's transform
// list may declare, the tagged-union shape §9 describes (RCT/Palette/
// Squeeze as one variant type rather than separate inheritance branches).
type TransformKind uint8

const (
	TransformRCT TransformKind = iota
	TransformPalette
	TransformSqueeze
)

// Transform is one entry of a Modular image's transform list, read in
// forward (encode) order and applied in reverse during decode.
type Transform struct {
	Kind         TransformKind
	BeginChannel int

	RCTType int // RCT only: permutation*7 + shape, see RCT()

	NumColors int // Palette only
	NumDeltas int
	NumOutputChannels int
	DPredictor uint8
}

var transformCountConfig = bitio.U32Config{
	Offsets: [4]uint32{0, 1, 2, 18},
	Lens:    [4]uint{0, 0, 4, 12},
}

// ReadTransforms reads the sequence of transforms a Modular image declares
// before its per-channel entropy-coded data, stopping at the first
// zero "more transforms" bit.
func ReadTransforms(r *bitio.Reader) ([]Transform, error) {
	var out []Transform
	for {
		more, err := r.U(1)
		if err != nil {
			return nil, err
		}
		if more == 0 {
			return out, nil
		}
		kind, err := r.U(2)
		if err != nil {
			return nil, err
		}
		beginC, err := r.U32(transformCountConfig)
		if err != nil {
			return nil, err
		}
		t := Transform{Kind: TransformKind(kind), BeginChannel: int(beginC)}
		switch t.Kind {
		case TransformRCT:
			rt, err := r.U(6)
			if err != nil {
				return nil, err
			}
			if rt >= 42 {
				return nil, jxlerr.New(jxlerr.ErrRctType, "rct type out of range")
			}
			t.RCTType = int(rt)
		case TransformPalette:
			nc, err := r.U32(transformCountConfig)
			if err != nil {
				return nil, err
			}
			numColors, err := r.U32(transformCountConfig)
			if err != nil {
				return nil, err
			}
			numDeltas, err := r.U32(transformCountConfig)
			if err != nil {
				return nil, err
			}
			dpred, err := r.U(4)
			if err != nil {
				return nil, err
			}
			if dpred > 13 {
				return nil, jxlerr.New(jxlerr.ErrPredictor, "palette delta predictor out of range")
			}
			t.NumOutputChannels = int(nc)
			t.NumColors = int(numColors)
			t.NumDeltas = int(numDeltas)
			t.DPredictor = uint8(dpred)
		case TransformSqueeze:
			return nil, jxlerr.TODO("squeeze")
		default:
			return nil, jxlerr.New(jxlerr.ErrTransform, "unknown modular transform kind")
		}
		out = append(out, t)
	}
}

// ApplyInverse undoes one transform against im.Channels in place. Palette
// consumes its synthetic index+meta channel pair and replaces them with
// NumOutputChannels resolved color channels; RCT operates on three
// existing consecutive channels.
func (t Transform) ApplyInverse(im *Image) error {
	switch t.Kind {
	case TransformRCT:
		if t.BeginChannel+3 > len(im.Channels) {
			return jxlerr.New(jxlerr.ErrRctChan, "rct begin_c out of range")
		}
		a := im.Channels[t.BeginChannel]
		b := im.Channels[t.BeginChannel+1]
		c := im.Channels[t.BeginChannel+2]
		return RCT(a, b, c, t.RCTType)
	case TransformPalette:
		if t.BeginChannel+1 >= len(im.Channels) {
			return jxlerr.New(jxlerr.ErrPalChan, "palette begin_c out of range")
		}
		paletteChan := im.Channels[t.BeginChannel]
		indexChan := im.Channels[t.BeginChannel+1]

		pal := NewPalette(t.NumColors, t.NumOutputChannels)
		for i := 0; i < t.NumColors; i++ {
			for ch := 0; ch < t.NumOutputChannels; ch++ {
				pal.Entries[i][ch] = paletteChan.At(i, ch)
			}
		}
		pal.NumDeltas = t.NumDeltas

		outs := make([]*Channel, t.NumOutputChannels)
		rest := im.Channels[t.BeginChannel+2:]
		tail := append([]*Channel(nil), im.Channels[:t.BeginChannel]...)
		for i := 0; i < t.NumOutputChannels; i++ {
			outs[i] = NewChannel(indexChan.Width, indexChan.Height, indexChan.HShift, indexChan.VShift)
		}
		if err := pal.Resolve(indexChan, outs); err != nil {
			return err
		}
		newChannels := append(append(tail, outs...), rest...)
		im.Channels = newChannels
		return nil
	case TransformSqueeze:
		return jxlerr.TODO("squeeze")
	}
	return jxlerr.New(jxlerr.ErrTransform, "unknown modular transform kind")
}
