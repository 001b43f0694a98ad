package jxl

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jxldecoder/jxl/internal/jxlerr"
)

func TestFromMemoryBadSignature(t *testing.T) {
	// 12+ bytes so the container layer has enough to compare against the
	// full JXL box signature rather than reporting a short read first.
	_, err := FromMemory(make([]byte, 16))
	if err == nil {
		t.Fatal("expected error for bad signature")
	}
	if jxlerr.CodeOf(err) != jxlerr.ErrBadSig {
		t.Fatalf("CodeOf(err) = %v, want ErrBadSig", jxlerr.CodeOf(err))
	}
}

func TestFromMemoryTruncatedInput(t *testing.T) {
	// A single byte can never resolve the two-byte bare signature nor the
	// full boxed signature; this must surface as a short read, not panic.
	_, err := FromMemory([]byte{0xFF})
	if !jxlerr.IsShortRead(err) {
		t.Fatalf("expected short read for truncated input, got %v", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not a jxl file at all")))
	if err == nil {
		t.Fatal("expected error decoding garbage input")
	}
}

func TestDecodeConfigRejectsGarbage(t *testing.T) {
	_, err := DecodeConfig(bytes.NewReader([]byte("not a jxl file at all")))
	if err == nil {
		t.Fatal("expected error decoding config from garbage input")
	}
}

func TestTranslateErrWrapsUnsupported(t *testing.T) {
	wrapped := translateErr(jxlerr.TODO("squeeze"))
	if !errors.Is(wrapped, ErrUnsupported) {
		t.Fatalf("translateErr(TODO) = %v, want wrapping ErrUnsupported", wrapped)
	}
}

func TestFramePixelsU8x4BeforeNextFrame(t *testing.T) {
	d := &Decoder{}
	if _, err := d.FramePixelsU8x4(OutputChannelRGBA); err == nil {
		t.Fatal("expected error calling FramePixelsU8x4 before NextFrame")
	}
}
