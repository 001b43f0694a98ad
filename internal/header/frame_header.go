package header

import (
	"github.com/jxldecoder/jxl/internal/bitio"
	"github.com/jxldecoder/jxl/internal/jxlerr"
	"github.com/jxldecoder/jxl/internal/limits"
)

// FrameType enumerates the four frame roles the format distinguishes.
type FrameType uint8

const (
	FrameRegular FrameType = iota
	FrameLF
	FrameRefOnly
	FrameRegularSkipProg
)

// BlendMode enumerates the per-channel compositing operation used when a
// frame is combined with the canvas.
type BlendMode uint8

const (
	BlendReplace BlendMode = iota
	BlendAdd
	BlendBlend
	BlendMulAdd
	BlendMul
)

// BlendInfo describes how one channel of this frame combines with the
// canvas it is painted onto.
type BlendInfo struct {
	Mode        BlendMode
	AlphaChan   uint32
	Clamp       bool
	Source      uint32
}

// RestorationParams bundles the Gaborish + edge-preserving-filter knobs
// read from the frame header.
type RestorationParams struct {
	GaborishEnabled bool
	GaborishWeights [2]float32

	EPFIterations  uint32
	SharpLUT       [8]float32
	EPFChannelScale [3]float32
	EPFQuantMul    float32
	EPFSigmaScale  [2]float32
	BorderSadMul   float32
}

// Pass describes one progressive pass's downsampling schedule.
type Pass struct {
	Shift     uint32
	Downsample uint32
}

// FrameHeader is the decoded per-frame metadata.
type FrameHeader struct {
	Type        FrameType
	Modular     bool
	UpsampleLog uint32

	Passes []Pass

	GroupSizeShift uint32
	XQuantMatrixScale float32
	BQuantMatrixScale float32

	CropX0, CropY0 int32
	CropWidth, CropHeight uint32

	BlendInfos []BlendInfo

	DurationTicks uint32
	HaveTimecode  bool
	Timecode      uint32

	SaveAsReference uint32
	SaveBeforeCT    bool
	Name            string

	Restoration RestorationParams

	IsLast bool
}

var frameSmallCountConfig = bitio.U32Config{
	Offsets: [4]uint32{0, 1, 2, 18},
	Lens:    [4]uint{0, 0, 4, 12},
}

// ReadFrameHeader decodes one frame_header.
func ReadFrameHeader(r *bitio.Reader, numExtraChannels int) (*FrameHeader, error) {
	fh := &FrameHeader{}

	typeBits, err := r.U(2)
	if err != nil {
		return nil, err
	}
	fh.Type = FrameType(typeBits)

	modularBit, err := r.U(1)
	if err != nil {
		return nil, err
	}
	fh.Modular = modularBit == 1

	upBit, err := r.U(1)
	if err != nil {
		return nil, err
	}
	if upBit == 1 {
		up, err := r.U(2)
		if err != nil {
			return nil, err
		}
		fh.UpsampleLog = up
	}

	numPasses, err := r.AtMost(limits.MaxPasses - 1)
	if err != nil {
		return nil, err
	}
	if err := limits.CheckPasses(int(numPasses) + 1); err != nil {
		return nil, err
	}
	fh.Passes = make([]Pass, numPasses+1)
	for i := range fh.Passes {
		shift, err := r.U(3)
		if err != nil {
			return nil, err
		}
		down, err := r.U(2)
		if err != nil {
			return nil, err
		}
		fh.Passes[i] = Pass{Shift: shift, Downsample: down}
	}

	gss, err := r.U(2)
	if err != nil {
		return nil, err
	}
	fh.GroupSizeShift = gss

	if !fh.Modular {
		xq, err := r.F16()
		if err != nil {
			return nil, err
		}
		bq, err := r.F16()
		if err != nil {
			return nil, err
		}
		fh.XQuantMatrixScale = xq
		fh.BQuantMatrixScale = bq
	}

	haveCrop, err := r.U(1)
	if err != nil {
		return nil, err
	}
	if haveCrop == 1 {
		w, err := r.U32(frameSmallCountConfig)
		if err != nil {
			return nil, err
		}
		h, err := r.U32(frameSmallCountConfig)
		if err != nil {
			return nil, err
		}
		fh.CropWidth, fh.CropHeight = w, h
	}

	fh.BlendInfos = make([]BlendInfo, numExtraChannels+1)
	for i := range fh.BlendInfos {
		mode, err := r.U(3)
		if err != nil {
			return nil, err
		}
		if mode > uint32(BlendMul) {
			return nil, jxlerr.New(jxlerr.ErrParam, "blend mode out of range")
		}
		bi := BlendInfo{Mode: BlendMode(mode)}
		if mode == uint32(BlendBlend) || mode == uint32(BlendMulAdd) {
			ac, err := r.U(2)
			if err != nil {
				return nil, err
			}
			bi.AlphaChan = ac
			clampBit, err := r.U(1)
			if err != nil {
				return nil, err
			}
			bi.Clamp = clampBit == 1
		}
		if fh.Type != FrameRegular {
			src, err := r.U(2)
			if err != nil {
				return nil, err
			}
			bi.Source = src
		}
		fh.BlendInfos[i] = bi
	}

	dur, err := r.U32(frameSmallCountConfig)
	if err != nil {
		return nil, err
	}
	fh.DurationTicks = dur

	tcBit, err := r.U(1)
	if err != nil {
		return nil, err
	}
	if tcBit == 1 {
		fh.HaveTimecode = true
		tc, err := r.U(32)
		if err != nil {
			return nil, err
		}
		fh.Timecode = tc
	}

	isLastBit, err := r.U(1)
	if err != nil {
		return nil, err
	}
	fh.IsLast = isLastBit == 1

	if fh.Type == FrameRegular || fh.Type == FrameRegularSkipProg {
		sar, err := r.U(2)
		if err != nil {
			return nil, err
		}
		fh.SaveAsReference = sar
	}

	sbct, err := r.U(1)
	if err != nil {
		return nil, err
	}
	fh.SaveBeforeCT = sbct == 1

	nameLen, err := r.U32(frameSmallCountConfig)
	if err != nil {
		return nil, err
	}
	nameBytes := make([]byte, nameLen)
	for i := range nameBytes {
		v, err := r.U(8)
		if err != nil {
			return nil, err
		}
		nameBytes[i] = byte(v)
	}
	fh.Name = string(nameBytes)

	restoration, err := readRestorationParams(r)
	if err != nil {
		return nil, err
	}
	fh.Restoration = restoration

	return fh, nil
}

func readRestorationParams(r *bitio.Reader) (RestorationParams, error) {
	var rp RestorationParams
	gEnable, err := r.U(1)
	if err != nil {
		return rp, err
	}
	rp.GaborishEnabled = gEnable == 1
	if rp.GaborishEnabled {
		for i := range rp.GaborishWeights {
			v, err := r.F16()
			if err != nil {
				return rp, err
			}
			rp.GaborishWeights[i] = v
		}
	}

	epfBit, err := r.U(1)
	if err != nil {
		return rp, err
	}
	if epfBit == 1 {
		iters, err := r.U(2)
		if err != nil {
			return rp, err
		}
		rp.EPFIterations = iters
		for i := range rp.SharpLUT {
			v, err := r.F16()
			if err != nil {
				return rp, err
			}
			rp.SharpLUT[i] = v
		}
		for i := range rp.EPFChannelScale {
			v, err := r.F16()
			if err != nil {
				return rp, err
			}
			rp.EPFChannelScale[i] = v
		}
		qm, err := r.F16()
		if err != nil {
			return rp, err
		}
		rp.EPFQuantMul = qm
		for i := range rp.EPFSigmaScale {
			v, err := r.F16()
			if err != nil {
				return rp, err
			}
			rp.EPFSigmaScale[i] = v
		}
		bsm, err := r.F16()
		if err != nil {
			return rp, err
		}
		rp.BorderSadMul = bsm
	}
	return rp, nil
}
