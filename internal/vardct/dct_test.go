package vardct

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// TestIDCT2DDCOnly verifies the defining property of an inverse DCT: a
// block with only the DC coefficient set decodes to a constant-value
// block.
func TestIDCT2DDCOnly(t *testing.T) {
	const rows, cols = 8, 8
	coeffs := make([]float64, rows*cols)
	coeffs[0] = 8.0

	out := IDCT2D(coeffs, rows, cols)
	if len(out) != rows*cols {
		t.Fatalf("len(out) = %d, want %d", len(out), rows*cols)
	}
	for i, v := range out {
		if math.Abs(v-8.0) > 1e-9 {
			t.Fatalf("out[%d] = %v, want 8.0 (DC-only block should be constant)", i, v)
		}
	}
}

func TestIDCT2DRectangular(t *testing.T) {
	const rows, cols = 4, 8
	coeffs := make([]float64, rows*cols)
	coeffs[0] = 2.0

	out := IDCT2D(coeffs, rows, cols)
	for i, v := range out {
		if math.Abs(v-2.0) > 1e-9 {
			t.Fatalf("out[%d] = %v, want 2.0", i, v)
		}
	}
}

// TestIDCT2DRectangularPlaneMatchesConstant compares the whole decoded
// plane against an expected constant plane in one shot (within float
// tolerance) instead of indexing every sample by hand.
func TestIDCT2DRectangularPlaneMatchesConstant(t *testing.T) {
	const rows, cols = 2, 4
	coeffs := make([]float64, rows*cols)
	coeffs[0] = 4.0

	out := IDCT2D(coeffs, rows, cols)
	want := make([]float64, rows*cols)
	for i := range want {
		want[i] = 4.0
	}

	if diff := cmp.Diff(want, out, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("IDCT2D plane mismatch (-want +got):\n%s", diff)
	}
}

func TestDctSelectByIDOutOfRange(t *testing.T) {
	if _, err := DctSelectByID(-1); err == nil {
		t.Fatal("expected error for negative id")
	}
	if _, err := DctSelectByID(27); err == nil {
		t.Fatal("expected error for id beyond table")
	}
}

func TestDctSelectDimensions(t *testing.T) {
	d, err := DctSelectByID(1) // DCT16x16
	if err != nil {
		t.Fatal(err)
	}
	if d.Rows() != 16 || d.Columns() != 16 {
		t.Fatalf("DCT16x16 dims = %dx%d, want 16x16", d.Rows(), d.Columns())
	}
}
