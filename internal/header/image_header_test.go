package header

import (
	"testing"

	"github.com/jxldecoder/jxl/internal/bitio"
)

// writeMinimalImageHeader assembles a small-size, 8bpp, RGB, no-intrinsic,
// no-animation, no-extra-channel image header, with haveICC controlling
// the one bit this test cares about.
func writeMinimalImageHeader(haveICC bool) []byte {
	w := &bitWriter{}
	w.writeU(1, 1)    // small size
	w.writeU(5, 0)    // h8 -> height = 8
	w.writeU(5, 0)    // w8 -> width = 8
	w.writeU(1, 0)    // no intrinsic size
	w.writeU(3, 0)    // orientation
	w.writeU(1, 1)    // bpp_sel=1 -> 8 bits per sample
	w.writeU(1, 0)    // no explicit exp_bits
	w.writeU(1, 0)    // no animation
	w.writeU(2, 0)    // num_extra_channels selector=0 -> 0
	icc := uint32(0)
	if haveICC {
		icc = 1
	}
	w.writeU(1, icc)  // have_icc
	w.writeU(2, 0)    // color_space selector -> RGB
	w.writeU(2, 0)    // render_intent enum selector -> 0
	w.writeU(16, 0x3C00) // intensity_target = 1.0
	w.writeU(16, 0x3C00) // min_nits = 1.0
	return w.bytes()
}

func TestReadImageHeaderBasicDimensions(t *testing.T) {
	r := bitio.NewReader(writeMinimalImageHeader(false))
	ih, err := ReadImageHeader(r)
	if err != nil {
		t.Fatal(err)
	}
	if ih.Width != 8 || ih.Height != 8 {
		t.Fatalf("dimensions = %dx%d, want 8x8", ih.Width, ih.Height)
	}
	if ih.BitsPerSample != 8 {
		t.Fatalf("BitsPerSample = %d, want 8", ih.BitsPerSample)
	}
	if ih.ColorSpace != ColorSpaceRGB {
		t.Fatalf("ColorSpace = %v, want ColorSpaceRGB", ih.ColorSpace)
	}
	if ih.HaveICC {
		t.Fatal("HaveICC should be false")
	}
	if ih.HaveAnimation {
		t.Fatal("HaveAnimation should be false")
	}
	if len(ih.ExtraChannels) != 0 {
		t.Fatalf("ExtraChannels = %v, want none", ih.ExtraChannels)
	}
}

func TestReadImageHeaderHaveICC(t *testing.T) {
	r := bitio.NewReader(writeMinimalImageHeader(true))
	ih, err := ReadImageHeader(r)
	if err != nil {
		t.Fatal(err)
	}
	if !ih.HaveICC {
		t.Fatal("HaveICC should be true")
	}
}
