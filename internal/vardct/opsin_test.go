package vardct

import (
	"math"
	"testing"
)

func TestSRGBTransferLowAndHighRange(t *testing.T) {
	if got := SRGBTransfer(0); got != 0 {
		t.Fatalf("SRGBTransfer(0) = %v, want 0", got)
	}
	low := SRGBTransfer(0.001)
	if math.Abs(float64(low-12.92*0.001)) > 1e-6 {
		t.Fatalf("SRGBTransfer(0.001) = %v, want linear segment value", low)
	}
	high := SRGBTransfer(1.0)
	if math.Abs(float64(high-1.0)) > 1e-5 {
		t.Fatalf("SRGBTransfer(1.0) = %v, want ~1.0", high)
	}
}

func TestQuantizeToBppClamps(t *testing.T) {
	if got := QuantizeToBpp(-1, 8); got != 0 {
		t.Fatalf("QuantizeToBpp(-1) = %d, want 0", got)
	}
	if got := QuantizeToBpp(2.0, 8); got != 255 {
		t.Fatalf("QuantizeToBpp(2.0, 8) = %d, want 255 (clamped)", got)
	}
	if got := QuantizeToBpp(1.0, 8); got != 255 {
		t.Fatalf("QuantizeToBpp(1.0, 8) = %d, want 255", got)
	}
}

func TestInverseOpsinRoundTripShape(t *testing.T) {
	// Zero input with zero bias should map through the matrix as exactly
	// zero (cbrt(0)=0, 0^3=0, +bias(0)=0).
	r, g, b := InverseOpsin(0, 0, 0, [3]float32{0, 0, 0}, defaultOpsinInvMat)
	if r != 0 || g != 0 || b != 0 {
		t.Fatalf("InverseOpsin(0,0,0) = (%v,%v,%v), want (0,0,0)", r, g, b)
	}
}
