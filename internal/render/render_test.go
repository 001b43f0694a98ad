package render

import (
	"testing"

	"github.com/jxldecoder/jxl/internal/modular"
)

func TestToRGBA8NoAlpha(t *testing.T) {
	r := modular.NewChannel(1, 1, 0, 0)
	g := modular.NewChannel(1, 1, 0, 0)
	b := modular.NewChannel(1, 1, 0, 0)
	r.Data[0], g.Data[0], b.Data[0] = 255, 128, 0

	out := ToRGBA8(r, g, b, nil, 8)
	if len(out) != 4 {
		t.Fatalf("len(out) = %d, want 4", len(out))
	}
	if out[0] != 255 {
		t.Fatalf("R = %d, want 255", out[0])
	}
	if out[2] != 0 {
		t.Fatalf("B = %d, want 0", out[2])
	}
	if out[3] != 255 {
		t.Fatalf("missing-alpha should default to opaque, got %d", out[3])
	}
}

func TestToRGBA8WithAlpha(t *testing.T) {
	r := modular.NewChannel(1, 1, 0, 0)
	g := modular.NewChannel(1, 1, 0, 0)
	b := modular.NewChannel(1, 1, 0, 0)
	alpha := modular.NewChannel(1, 1, 0, 0)
	alpha.Data[0] = 128

	out := ToRGBA8(r, g, b, alpha, 8)
	if out[3] != 128 {
		t.Fatalf("alpha = %d, want 128", out[3])
	}
}

func TestToGray8Replicates(t *testing.T) {
	gray := modular.NewChannel(1, 1, 0, 0)
	gray.Data[0] = 64

	out := ToGray8(gray, nil, 8)
	if out[0] != out[1] || out[1] != out[2] {
		t.Fatalf("gray channel should replicate across RGB, got (%d,%d,%d)", out[0], out[1], out[2])
	}
	if out[3] != 255 {
		t.Fatalf("missing-alpha should default to opaque, got %d", out[3])
	}
}

func TestToRGBA8ClampsNegative(t *testing.T) {
	r := modular.NewChannel(1, 1, 0, 0)
	g := modular.NewChannel(1, 1, 0, 0)
	b := modular.NewChannel(1, 1, 0, 0)
	r.Data[0] = -5

	out := ToRGBA8(r, g, b, nil, 8)
	if out[0] != 0 {
		t.Fatalf("negative sample should clamp to 0, got %d", out[0])
	}
}
