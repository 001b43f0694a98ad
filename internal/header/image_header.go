// Package header decodes ImageHeader, FrameHeader and the per-frame table
// of contents: the structural metadata that governs how a frame's section
// bytes are organized and interpreted, read the same top-down
// field-by-field way github.com/deepteams/webp/internal/vp8.ParseHeader
// reads the VP8 frame tag before handing off to the per-macroblock decode
// loop.
package header

import (
	"github.com/jxldecoder/jxl/internal/bitio"
	"github.com/jxldecoder/jxl/internal/jxlerr"
	"github.com/jxldecoder/jxl/internal/limits"
)

// ColorSpace enumerates the image's declared color representation.
type ColorSpace uint8

const (
	ColorSpaceRGB ColorSpace = iota
	ColorSpaceGray
	ColorSpaceXYB
	ColorSpaceUnknown
)

// ExtraChannel describes one declared extra channel (alpha, depth, spot
// color, CFA, ...).
type ExtraChannel struct {
	Type           uint32
	BitsPerSample  uint32
	ExpBits        uint32
	DimShift       uint32
	Name           string
	AlphaAssoc     bool
}

// ImageHeader is the decoded top-level metadata for the whole image.
type ImageHeader struct {
	Width, Height   uint32
	OrientationOK   bool
	Orientation     uint32
	IntrinsicWidth  uint32
	IntrinsicHeight uint32

	BitsPerSample uint32
	ExpBits       uint32

	HaveAnimation bool
	TicksNum      uint32
	TicksDen      uint32
	NumLoops      uint32

	HaveICC bool

	ExtraChannels []ExtraChannel

	ColorSpace       ColorSpace
	RenderIntent     uint32
	IntensityTarget  float32
	MinNits          float32
	OpsinInverseMat  [9]float32
	OpsinBias        [3]float32
	QuantBias        [3]float32
	QuantBiasNumerator float32
}

// bppConfig is the fixed selector shape for an explicitly coded
// bits-per-sample field, shared by ImageHeader and each ExtraChannel.
var bppConfig = bitio.U32Config{
	Offsets: [4]uint32{1, 2, 1, 1},
	Lens:    [4]uint{0, 0, 6, 12},
}

var smallCountConfig = bitio.U32Config{
	Offsets: [4]uint32{0, 1, 2, 18},
	Lens:    [4]uint{0, 0, 4, 12},
}

// ReadImageHeader decodes the size_header + image metadata preceding the
// first frame.
func ReadImageHeader(r *bitio.Reader) (*ImageHeader, error) {
	ih := &ImageHeader{}

	smallBit, err := r.U(1)
	if err != nil {
		return nil, err
	}
	if smallBit == 1 {
		h8, err := r.U(5)
		if err != nil {
			return nil, err
		}
		w8, err := r.U(5)
		if err != nil {
			return nil, err
		}
		ih.Height = (h8 + 1) * 8
		ih.Width = (w8 + 1) * 8
	} else {
		h, err := r.U32(smallCountConfig)
		if err != nil {
			return nil, err
		}
		ih.Height = h
		ratioBits, err := r.U(3)
		if err != nil {
			return nil, err
		}
		if ratioBits == 0 {
			w, err := r.U32(smallCountConfig)
			if err != nil {
				return nil, err
			}
			ih.Width = w
		} else {
			ih.Width = aspectRatioWidth(ih.Height, ratioBits)
		}
	}
	if err := limits.CheckDimensions(int64(ih.Width), int64(ih.Height)); err != nil {
		return nil, err
	}

	haveIntrinsic, err := r.U(1)
	if err != nil {
		return nil, err
	}
	if haveIntrinsic == 1 {
		ih.IntrinsicWidth, err = r.U32(smallCountConfig)
		if err != nil {
			return nil, err
		}
		ih.IntrinsicHeight, err = r.U32(smallCountConfig)
		if err != nil {
			return nil, err
		}
	}

	ih.OrientationOK = true
	orient, err := r.U(3)
	if err != nil {
		return nil, err
	}
	ih.Orientation = orient + 1

	bppSel, err := r.U(1)
	if err != nil {
		return nil, err
	}
	if bppSel == 1 {
		ih.BitsPerSample = 8
	} else {
		v, err := r.U32(bppConfig)
		if err != nil {
			return nil, err
		}
		if v == 0 || v > 32 {
			return nil, jxlerr.New(jxlerr.ErrBpp, "bits_per_sample out of range")
		}
		ih.BitsPerSample = v
	}
	expBit, err := r.U(1)
	if err != nil {
		return nil, err
	}
	if expBit == 1 {
		eb, err := r.U(4)
		if err != nil {
			return nil, err
		}
		if eb == 0 || eb > 12 {
			return nil, jxlerr.New(jxlerr.ErrExponent, "exp_bits out of range")
		}
		ih.ExpBits = eb
	}

	haveAnim, err := r.U(1)
	if err != nil {
		return nil, err
	}
	if haveAnim == 1 {
		ih.HaveAnimation = true
		ih.TicksNum, err = r.U32(smallCountConfig)
		if err != nil {
			return nil, err
		}
		ih.TicksDen, err = r.U32(smallCountConfig)
		if err != nil {
			return nil, err
		}
		ih.NumLoops, err = r.U32(smallCountConfig)
		if err != nil {
			return nil, err
		}
	}

	numExtra, err := r.U32(smallCountConfig)
	if err != nil {
		return nil, err
	}
	if err := limits.CheckExtraChannels(int(numExtra)); err != nil {
		return nil, err
	}
	for i := uint32(0); i < numExtra; i++ {
		ec, err := readExtraChannel(r)
		if err != nil {
			return nil, err
		}
		ih.ExtraChannels = append(ih.ExtraChannels, ec)
	}

	haveICC, err := r.U(1)
	if err != nil {
		return nil, err
	}
	ih.HaveICC = haveICC == 1

	csBits, err := r.U(2)
	if err != nil {
		return nil, err
	}
	switch csBits {
	case 0:
		ih.ColorSpace = ColorSpaceRGB
	case 1:
		ih.ColorSpace = ColorSpaceGray
	case 2:
		ih.ColorSpace = ColorSpaceXYB
	default:
		ih.ColorSpace = ColorSpaceUnknown
	}

	intent, err := r.Enum()
	if err != nil {
		return nil, err
	}
	ih.RenderIntent = intent

	it, err := r.F16()
	if err != nil {
		return nil, err
	}
	ih.IntensityTarget = it
	mn, err := r.F16()
	if err != nil {
		return nil, err
	}
	ih.MinNits = mn

	if ih.ColorSpace == ColorSpaceXYB {
		for i := range ih.OpsinInverseMat {
			v, err := r.F16()
			if err != nil {
				return nil, err
			}
			ih.OpsinInverseMat[i] = v
		}
		for i := range ih.OpsinBias {
			v, err := r.F16()
			if err != nil {
				return nil, err
			}
			ih.OpsinBias[i] = v
		}
		qb, err := r.F16()
		if err != nil {
			return nil, err
		}
		ih.QuantBiasNumerator = qb
	}

	return ih, nil
}

func aspectRatioWidth(height uint32, ratioBits uint32) uint32 {
	// Fixed aspect ratio table, 3/4, 1/1, 3/2, 16/9, 5/4, 2/1, matching the
	// enum ordering used for the ratio selector.
	num := [7]uint32{0, 3, 1, 3, 16, 5, 2}
	den := [7]uint32{0, 4, 1, 2, 9, 4, 1}
	if ratioBits == 0 || int(ratioBits) >= len(num) {
		return height
	}
	return height * num[ratioBits] / den[ratioBits]
}

func readExtraChannel(r *bitio.Reader) (ExtraChannel, error) {
	var ec ExtraChannel
	t, err := r.Enum()
	if err != nil {
		return ec, err
	}
	ec.Type = t

	bppSel, err := r.U(1)
	if err != nil {
		return ec, err
	}
	if bppSel == 1 {
		ec.BitsPerSample = 8
	} else {
		v, err := r.U32(bppConfig)
		if err != nil {
			return ec, err
		}
		ec.BitsPerSample = v
	}
	expBit, err := r.U(1)
	if err != nil {
		return ec, err
	}
	if expBit == 1 {
		eb, err := r.U(4)
		if err != nil {
			return ec, err
		}
		ec.ExpBits = eb
	}
	ds, err := r.U32(smallCountConfig)
	if err != nil {
		return ec, err
	}
	ec.DimShift = ds

	nameLen, err := r.U32(smallCountConfig)
	if err != nil {
		return ec, err
	}
	nameBytes := make([]byte, nameLen)
	for i := range nameBytes {
		v, err := r.U(8)
		if err != nil {
			return ec, err
		}
		nameBytes[i] = byte(v)
	}
	ec.Name = string(nameBytes)

	if ec.Type == 1 { // alpha
		assoc, err := r.U(1)
		if err != nil {
			return ec, err
		}
		ec.AlphaAssoc = assoc == 1
	}
	return ec, nil
}
