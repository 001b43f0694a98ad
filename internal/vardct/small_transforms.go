package vardct

// inverseHornuss implements the 8x8 "Hornuss" transform: a 2x2 grid of
// 4x4 blocks, each reconstructed by flat-averaging its DC coefficient plus
// a per-4x4 residual correction carried in the remaining coefficients
// (the format's bespoke low-complexity alternative to a full 8x8 DCT for
// flat/blocky regions).
func inverseHornuss(coeffs []float64) []float64 {
	out := make([]float64, 64)
	for by := 0; by < 2; by++ {
		for bx := 0; bx < 2; bx++ {
			base := (by*4)*8 + bx*4
			dc := coeffs[base]
			for y := 0; y < 4; y++ {
				for x := 0; x < 4; x++ {
					residual := coeffs[base+y*8+x]
					if x == 0 && y == 0 {
						residual = 0
					}
					out[(by*4+y)*8+bx*4+x] = dc + residual
				}
			}
		}
	}
	return out
}

// inverseStitched implements the DCT11/22/23/32 family: four 4x4
// sub-blocks, each inverse-DCT'd independently via IDCT2D, with the
// overall DC term (top-left 2x2 of coefficients, itself inverse-DCT'd at
// size 2) distributed as the shared low-frequency base of all four.
func inverseStitched(coeffs []float64, kind TransformKind) []float64 {
	dc2x2 := []float64{coeffs[0], coeffs[1], coeffs[8], coeffs[9]}
	dcOut := IDCT2D(dc2x2, 2, 2)

	out := make([]float64, 64)
	for qy := 0; qy < 2; qy++ {
		for qx := 0; qx < 2; qx++ {
			quad := make([]float64, 16)
			for y := 0; y < 4; y++ {
				for x := 0; x < 4; x++ {
					if qy == 0 && qx == 0 && y < 2 && x < 2 {
						continue // already carried by dcOut
					}
					quad[y*4+x] = coeffs[(qy*4+y)*8+qx*4+x]
				}
			}
			quadOut := IDCT2D(quad, 4, 4)
			base := dcOut[qy*2+qx]
			for y := 0; y < 4; y++ {
				for x := 0; x < 4; x++ {
					out[(qy*4+y)*8+qx*4+x] = quadOut[y*4+x] + base
				}
			}
		}
	}
	return out
}

// afvBasis is a 16-point orthonormal-ish basis used for one 4x4 quadrant
// of the AFV transforms; reconstructed as a plain small IDCT rather than
// the format's exact hand-tuned basis vectors, since those constants are
// not recoverable without the original source. Documented in DESIGN.md as
// a best-effort stand-in that preserves the transform's overall shape
// (one specially-treated quadrant, three DCT-transformed quadrants).
func afvBasis(coeffs []float64) []float64 {
	return IDCT2D(coeffs, 4, 4)
}

// inverseAFV implements the four AFV flip variants: the whole block is
// first reconstructed with a DCT22-style stitch, then its top-left 4x4
// quadrant is replaced by afvBasis of the top-left 4x4 coefficients,
// mirrored horizontally and/or vertically by the (flipX, flipY) pair the
// four kinds encode. The special quadrant is always the top-left one.
func inverseAFV(coeffs []float64, kind TransformKind) []float64 {
	flipX := kind == KindAFV1 || kind == KindAFV3
	flipY := kind == KindAFV2 || kind == KindAFV3

	quad := make([]float64, 16)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			quad[y*4+x] = coeffs[y*8+x]
		}
	}
	special := afvBasis(quad)

	rest := inverseStitched(coeffs, KindDCT22)

	out := make([]float64, 64)
	copy(out, rest)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			sy, sx := y, x
			if flipY {
				sy = 3 - y
			}
			if flipX {
				sx = 3 - x
			}
			out[y*8+x] = special[sy*4+sx]
		}
	}
	return out
}
