package header

import (
	"testing"

	"github.com/jxldecoder/jxl/internal/bitio"
)

// writeMinimalFrameHeader builds a one-pass, Modular, non-cropped,
// FrameRegular frame_header with replace blending, no timecode, no name,
// and restoration disabled, for a frame with zero extra channels.
func writeMinimalFrameHeader(isLast bool) []byte {
	w := &bitWriter{}
	w.writeU(2, uint32(FrameRegular)) // type
	w.writeU(1, 1)                   // modular = true
	w.writeU(1, 0)                   // no upsampling
	w.writeU(4, 0)                   // AtMost(10): numPasses selector bits -> 0 (1 pass)
	// one pass: shift(3), downsample(2)
	w.writeU(3, 0)
	w.writeU(2, 0)
	w.writeU(2, 0) // group size shift
	// Modular == true, so xq/bq F16 fields are skipped.
	w.writeU(1, 0) // no crop
	// one BlendInfo (numExtraChannels=0 -> 1 entry): mode=BlendReplace(0)
	w.writeU(3, uint32(BlendReplace))
	// fh.Type == FrameRegular, so BlendInfo.Source is not read.
	w.writeU(2, 0) // duration u32 selector 0 -> value 0 (0 extra bits)
	w.writeU(1, 0) // no timecode
	if isLast {
		w.writeU(1, 1)
	} else {
		w.writeU(1, 0)
	}
	w.writeU(2, 0) // save_as_reference (Type == FrameRegular)
	w.writeU(1, 0) // save_before_ct = false
	w.writeU(2, 0) // name length u32 selector 0 -> 0
	w.writeU(1, 0) // gaborish disabled
	w.writeU(1, 0) // epf disabled
	return w.bytes()
}

func TestReadFrameHeaderMinimal(t *testing.T) {
	data := writeMinimalFrameHeader(true)
	r := bitio.NewReader(data)
	fh, err := ReadFrameHeader(r, 0)
	if err != nil {
		t.Fatalf("ReadFrameHeader: %v", err)
	}
	if fh.Type != FrameRegular {
		t.Fatalf("Type = %v, want FrameRegular", fh.Type)
	}
	if !fh.Modular {
		t.Fatal("Modular = false, want true")
	}
	if len(fh.Passes) != 1 {
		t.Fatalf("len(Passes) = %d, want 1", len(fh.Passes))
	}
	if fh.Passes[0].Shift != 0 || fh.Passes[0].Downsample != 0 {
		t.Fatalf("Passes[0] = %+v, want zero shift/downsample", fh.Passes[0])
	}
	if len(fh.BlendInfos) != 1 {
		t.Fatalf("len(BlendInfos) = %d, want 1", len(fh.BlendInfos))
	}
	if fh.BlendInfos[0].Mode != BlendReplace {
		t.Fatalf("BlendInfos[0].Mode = %v, want BlendReplace", fh.BlendInfos[0].Mode)
	}
	if !fh.IsLast {
		t.Fatal("IsLast = false, want true")
	}
	if fh.Name != "" {
		t.Fatalf("Name = %q, want empty", fh.Name)
	}
	if fh.Restoration.GaborishEnabled {
		t.Fatal("GaborishEnabled = true, want false")
	}
}

func TestReadFrameHeaderRejectsBadBlendMode(t *testing.T) {
	w := &bitWriter{}
	w.writeU(2, uint32(FrameRegular))
	w.writeU(1, 1) // modular
	w.writeU(1, 0) // no upsampling
	w.writeU(4, 0) // 1 pass
	w.writeU(3, 0)
	w.writeU(2, 0)
	w.writeU(2, 0) // group size shift
	w.writeU(1, 0) // no crop
	w.writeU(3, 7) // invalid blend mode (max valid is BlendMul=4)
	r := bitio.NewReader(w.bytes())
	if _, err := ReadFrameHeader(r, 0); err == nil {
		t.Fatal("expected error for out-of-range blend mode")
	}
}
