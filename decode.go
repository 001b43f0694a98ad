package jxl

import (
	"github.com/jxldecoder/jxl/internal/bitio"
	"github.com/jxldecoder/jxl/internal/container"
	"github.com/jxldecoder/jxl/internal/header"
	"github.com/jxldecoder/jxl/internal/jxlerr"
	"github.com/jxldecoder/jxl/internal/modular"
	"github.com/jxldecoder/jxl/internal/render"
	"github.com/jxldecoder/jxl/internal/source"
	"github.com/jxldecoder/jxl/internal/vardct"
)

// DecodedFrame is one fully rendered frame: packed 8-bit RGBA pixels at
// the frame's own (possibly cropped) dimensions.
type DecodedFrame struct {
	Width, Height int
	RGBA          []byte
}

// Decoder walks a parsed JPEG XL document one frame at a time. It is built
// eagerly by decodeFromSource: every frame this revision supports is
// decoded up front, and NextFrame simply advances a cursor over the
// result, mirroring the teacher's own non-streaming animation.Decoder.
type Decoder struct {
	Header *header.ImageHeader

	frames []DecodedFrame
	pos    int
	err    error
}

// readAllFromSource drains src into a single contiguous buffer, following
// the same grow-until-short-read loop ausocean-av's H264Reader uses to
// accumulate NAL units from a live stream.
func readAllFromSource(src source.Source) ([]byte, error) {
	var buf []byte
	chunk := make([]byte, 1<<16)
	for {
		n, err := src.TryRead(chunk, 1)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			if jxlerr.IsShortRead(err) {
				break
			}
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	return buf, nil
}

// assembleCodestream concatenates a container's piecewise-mapped file
// spans (one jxlc box, or a sequence of jxlp fragments, or a bare
// codestream) into a single contiguous codestream buffer.
func assembleCodestream(c *container.Container, fileBuf []byte) ([]byte, error) {
	if len(c.Entries) == 0 {
		return nil, jxlerr.ShortReadErr
	}
	var out []byte
	for i, e := range c.Entries {
		var length int64
		switch {
		case i+1 < len(c.Entries):
			length = c.Entries[i+1].CodeOff - e.CodeOff
		case c.Flags.ImplicitLast:
			length = int64(len(fileBuf)) - e.FileOff
		default:
			length = c.MappedLength() - e.CodeOff
		}
		if length < 0 || e.FileOff+length > int64(len(fileBuf)) {
			return nil, jxlerr.ShortReadErr
		}
		out = append(out, fileBuf[e.FileOff:e.FileOff+length]...)
	}
	return out, nil
}

// decodeFromSource runs the full header->TOC->pixels pipeline against
// whatever bytes src can supply, producing a Decoder with every frame it
// was able to fully decode.
func decodeFromSource(src source.Source) (*Decoder, error) {
	fileBuf, err := readAllFromSource(src)
	if err != nil {
		return nil, err
	}

	c := container.New()
	if err := c.Scan(fileBuf); err != nil {
		return nil, err
	}
	code, err := assembleCodestream(c, fileBuf)
	if err != nil {
		return nil, err
	}

	r := bitio.NewReader(code)
	ih, err := header.ReadImageHeader(r)
	if err != nil {
		return nil, err
	}
	if ih.HaveICC {
		return nil, jxlerr.TODO("icc")
	}

	d := &Decoder{Header: ih}
	for {
		frame, isLast, err := decodeOneFrame(r, ih)
		if err != nil {
			return nil, err
		}
		d.frames = append(d.frames, *frame)
		if isLast {
			break
		}
	}
	return d, nil
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// channelShape is the (width, height) a Modular channel must be allocated
// at before entropy decode, which a Palette transform changes for the
// channels it consumes.
type channelShape struct {
	width, height int
}

// applyTransformShapes walks a transform list in the order it was read
// (encode order) and rewrites the per-channel allocation shapes so they
// match what the bitstream actually carries: a Palette transform shrinks
// NumOutputChannels original color channels down to a {meta, index} pair,
// where the meta channel is NumColors wide by NumOutputChannels tall (one
// row of decoded palette entries per output channel) and the index channel
// keeps the original per-pixel shape. RCT does not change channel count or
// shape. This mirrors modular.Transform.ApplyInverse's own BeginChannel
// bookkeeping so the two stay in lockstep.
func applyTransformShapes(shapes []channelShape, transforms []modular.Transform) ([]channelShape, error) {
	for _, t := range transforms {
		switch t.Kind {
		case modular.TransformPalette:
			if t.BeginChannel+t.NumOutputChannels > len(shapes) {
				return nil, jxlerr.New(jxlerr.ErrPalChan, "palette begin_c/num_c out of range")
			}
			orig := shapes[t.BeginChannel]
			meta := channelShape{width: t.NumColors, height: t.NumOutputChannels}
			index := channelShape{width: orig.width, height: orig.height}
			tail := append([]channelShape{}, shapes[:t.BeginChannel]...)
			rest := append([]channelShape{}, shapes[t.BeginChannel+t.NumOutputChannels:]...)
			shapes = append(append(tail, meta, index), rest...)
		case modular.TransformRCT:
			// no-op: operates on three channels in place.
		}
	}
	return shapes, nil
}

// decodeOneFrame reads one frame_header, its TOC, and (for the frame
// shapes this revision supports) its pixel data.
//
// groupDim/lfGroupDim follow the convention adopted in DESIGN.md's
// GroupSizeShift Open Question: group tiles are 128<<GroupSizeShift
// samples square, LF-group tiles are eight times that.
func decodeOneFrame(r *bitio.Reader, ih *header.ImageHeader) (*DecodedFrame, bool, error) {
	fh, err := header.ReadFrameHeader(r, len(ih.ExtraChannels))
	if err != nil {
		return nil, false, err
	}

	width, height := int(ih.Width), int(ih.Height)
	if fh.CropWidth != 0 {
		width = int(fh.CropWidth)
	}
	if fh.CropHeight != 0 {
		height = int(fh.CropHeight)
	}

	groupDim := 128 << fh.GroupSizeShift
	lfGroupDim := groupDim * 8
	numGroups := ceilDiv(width, groupDim) * ceilDiv(height, groupDim)
	numLfGroups := ceilDiv(width, lfGroupDim) * ceilDiv(height, lfGroupDim)
	numPasses := len(fh.Passes)

	toc, err := header.ReadToc(r, numLfGroups, numGroups, numPasses)
	if err != nil {
		return nil, false, err
	}

	// A multi-section Modular frame and a multi-LfGroup/multi-pass VarDCT
	// frame both parse their header and TOC correctly here, but this
	// revision's per-group pixel loop only covers the single-implicit-
	// section shape (one LF group, one group, one pass) for each sub-
	// codec; both report TODO rather than silently mis-decoding.
	if !toc.SingleSection {
		if fh.Modular {
			return nil, false, jxlerr.TODO("modular-multi-group")
		}
		return nil, false, jxlerr.TODO("vardct-multi-group")
	}

	var frame *DecodedFrame
	if fh.Modular {
		frame, err = decodeModularSingleSection(r, ih, fh, width, height)
	} else {
		frame, err = decodeVarDCTSingleSection(r, ih, fh, width, height)
	}
	if err != nil {
		return nil, false, err
	}
	return frame, fh.IsLast, nil
}

// decodeModularSingleSection decodes the one-section case: a single group,
// single LF-group, single-pass Modular frame whose entire section is one
// implicit TOC entry. This is the shape spec scenario 1 (a trivial image)
// always takes.
func decodeModularSingleSection(r *bitio.Reader, ih *header.ImageHeader, fh *header.FrameHeader, width, height int) (*DecodedFrame, error) {
	numColor := 3
	if ih.ColorSpace == header.ColorSpaceGray {
		numColor = 1
	}
	numExtra := len(ih.ExtraChannels)
	numChannels := numColor + numExtra

	transforms, err := modular.ReadTransforms(r)
	if err != nil {
		return nil, err
	}

	shapes := make([]channelShape, numChannels)
	for i := range shapes {
		shapes[i] = channelShape{width: width, height: height}
	}
	shapes, err = applyTransformShapes(shapes, transforms)
	if err != nil {
		return nil, err
	}

	im := &modular.Image{}
	for _, s := range shapes {
		im.Channels = append(im.Channels, modular.NewChannel(s.width, s.height, 0, 0))
	}

	spec, err := modular.ReadDecodeSpec(r, width, height, numChannels)
	if err != nil {
		return nil, err
	}
	state := spec.CodeSpec.NewState(int32(width))
	for i, ch := range im.Channels {
		if err := modular.DecodeChannel(r, spec, ch, i, state); err != nil {
			return nil, err
		}
	}
	if err := state.Finish(); err != nil {
		return nil, err
	}

	for i := len(transforms) - 1; i >= 0; i-- {
		if err := transforms[i].ApplyInverse(im); err != nil {
			return nil, err
		}
	}

	var alpha *modular.Channel
	base := len(im.Channels) - numExtra
	if base < 0 {
		base = 0
	}
	for i, ec := range ih.ExtraChannels {
		if ec.Type != 1 {
			continue
		}
		if idx := base + i; idx < len(im.Channels) {
			alpha = im.Channels[idx]
		}
		break
	}

	var rgba []byte
	if numColor == 1 && len(im.Channels) > 0 {
		rgba = render.ToGray8(im.Channels[0], alpha, ih.BitsPerSample)
	} else if len(im.Channels) >= 3 {
		rgba = render.ToRGBA8(im.Channels[0], im.Channels[1], im.Channels[2], alpha, ih.BitsPerSample)
	} else {
		return nil, jxlerr.New(jxlerr.ErrColorSpace, "not enough decoded channels to render")
	}

	return &DecodedFrame{Width: width, Height: height, RGBA: rgba}, nil
}

// decodeVarDCTSingleSection decodes the one-section VarDCT case: a single
// LF group, single group, single-pass frame whose LfGlobal, LfGroup
// sub-sections, HfGlobal and PassGroup all sit back to back in one
// implicit TOC entry. It covers plain XYB color, no extra channels;
// frames with either report TODO rather than mis-render, matching the
// Modular orchestrator's scoping.
func decodeVarDCTSingleSection(r *bitio.Reader, ih *header.ImageHeader, fh *header.FrameHeader, width, height int) (*DecodedFrame, error) {
	if len(ih.ExtraChannels) > 0 {
		return nil, jxlerr.TODO("vardct-extra-channels")
	}
	if ih.ColorSpace != header.ColorSpaceXYB {
		return nil, jxlerr.TODO("vardct-non-xyb")
	}

	w8, h8 := ceilDiv(width, 8), ceilDiv(height, 8)

	lg, err := vardct.ReadLfGlobal(r, w8, h8)
	if err != nil {
		return nil, err
	}

	lfg := vardct.NewLfGroup(w8, h8)

	lfSpec, err := modular.ReadDecodeSpec(r, w8, h8, 3)
	if err != nil {
		return nil, err
	}
	extraPrec, err := r.U(4)
	if err != nil {
		return nil, err
	}
	lfState := lfSpec.CodeSpec.NewState(int32(w8))
	for c := 0; c < 3; c++ {
		if err := modular.DecodeChannel(r, lfSpec, lfg.LF[c], c, lfState); err != nil {
			return nil, err
		}
	}
	if err := lfState.Finish(); err != nil {
		return nil, err
	}

	mLfScaled := [3]float32{1, fh.XQuantMatrixScale, fh.BQuantMatrixScale}
	for i, v := range mLfScaled {
		if v == 0 {
			mLfScaled[i] = 1
		}
	}
	vardct.ApplyLFScale(lfg, lg, mLfScaled, extraPrec)

	smoothBit, err := r.U(1)
	if err != nil {
		return nil, err
	}
	if smoothBit == 1 {
		var invMLf [3]float32
		for c, s := range mLfScaled {
			scale := s / (lg.GlobalScale * lg.QuantLF) * float32(uint32(1)<<(16-extraPrec))
			if scale != 0 {
				invMLf[c] = 1 / scale
			}
		}
		vardct.SmoothLF(lfg, invMLf)
	}

	vardct.ComputeLFIndices(lfg, lg.BlockCtxMap.LFThresholds)

	hfMetaSpec, err := vardct.ReadHfMetadataSpec(r)
	if err != nil {
		return nil, err
	}
	if err := vardct.ReadHfMetadata(r, hfMetaSpec, lfg); err != nil {
		return nil, err
	}

	hg, err := vardct.ReadHfGlobal(r, len(fh.Passes), 1, lg.BlockCtxMap.NumContexts)
	if err != nil {
		return nil, err
	}

	fs := &vardct.FrameState{
		Global:     lg,
		HF:         hg,
		Groups:     []*vardct.LfGroup{lfg},
		Nnz:        []*vardct.NnzGrid{vardct.NewNnzGrid(w8, h8)},
		GroupsWide: 1,
	}
	blockCtxBase := vardct.ComputeBlockContextBase(lg, lfg)

	pw, ph := w8*8, h8*8
	var planes [3]*modular.Channel
	for c := range planes {
		planes[c] = modular.NewChannel(pw, ph, 0, 0)
	}

	for _, pass := range hg.Passes {
		state := pass.CoeffSpec.NewState(int32(pw))
		if err := vardct.DecodePassGroup(r, state, pass, fs, 0, blockCtxBase, planes); err != nil {
			return nil, err
		}
		if err := state.Finish(); err != nil {
			return nil, err
		}
	}

	if fh.Restoration.GaborishEnabled {
		for _, p := range planes {
			vardct.ApplyGaborish(p, fh.Restoration.GaborishWeights[0], fh.Restoration.GaborishWeights[1])
		}
	}

	if fh.Restoration.EPFIterations > 0 {
		recipSigma := buildRecipSigma(lfg, fh, w8, h8)
		for step := 0; step < int(fh.Restoration.EPFIterations); step++ {
			for _, p := range planes {
				vardct.EPFStep(p, recipSigma, w8, step, fh.Restoration.EPFSigmaScale[0], fh.Restoration.BorderSadMul)
			}
		}
	}

	for i := range planes[0].Data {
		cr, cg, cb := vardct.InverseOpsin(float32(planes[0].Data[i]), float32(planes[1].Data[i]), float32(planes[2].Data[i]), ih.OpsinBias, ih.OpsinInverseMat)
		planes[0].Data[i] = int32(vardct.QuantizeToBpp(vardct.SRGBTransfer(cr), ih.BitsPerSample))
		planes[1].Data[i] = int32(vardct.QuantizeToBpp(vardct.SRGBTransfer(cg), ih.BitsPerSample))
		planes[2].Data[i] = int32(vardct.QuantizeToBpp(vardct.SRGBTransfer(cb), ih.BitsPerSample))
	}

	rgba := render.ToRGBA8(planes[0], planes[1], planes[2], nil, ih.BitsPerSample)
	if pw != width || ph != height {
		rgba = cropRGBA(rgba, pw, width, height)
	}

	return &DecodedFrame{Width: width, Height: height, RGBA: rgba}, nil
}

// buildRecipSigma resolves the per-8x8-block 1/sigma EPF needs from each
// cell's sharpness bucket (via the frame's sharp_lut) and the HfMul of
// whichever varblock covers it.
func buildRecipSigma(lfg *vardct.LfGroup, fh *header.FrameHeader, w8, h8 int) []float32 {
	out := make([]float32, w8*h8)
	for y8 := 0; y8 < h8; y8++ {
		for x8 := 0; x8 < w8; x8++ {
			idx := y8*w8 + x8
			sharp := int(lfg.Sharpness.At(x8, y8))
			if sharp < 0 {
				sharp = 0
			}
			if sharp > 7 {
				sharp = 7
			}
			lut := fh.Restoration.SharpLUT[sharp]
			hfMul := uint32(1)
			if v := lfg.Blocks[idx]; v>>20 != 0 {
				voff := int(v & 0xFFFFF)
				if voff < len(lfg.Varblocks) {
					hfMul = lfg.Varblocks[voff].HfMul
				}
			}
			denom := fh.Restoration.EPFQuantMul * lut * float32(hfMul+1)
			if denom == 0 {
				out[idx] = 0
				continue
			}
			out[idx] = 1 / denom
		}
	}
	return out
}

// cropRGBA trims a srcW-wide RGBA buffer down to width x height, dropping
// the padding VarDCT's 8x8-cell-aligned plane allocation adds past the
// frame's true crop dimensions.
func cropRGBA(src []byte, srcW, width, height int) []byte {
	out := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		copy(out[y*width*4:(y+1)*width*4], src[y*srcW*4:y*srcW*4+width*4])
	}
	return out
}
