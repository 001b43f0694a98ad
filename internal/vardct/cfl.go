package vardct

// ApplyChromaFromLuma adds the luma-derived correction to the X and B
// channel coefficient buffers for one varblock, per §4.6: X += Y*kx,
// B += Y*kb, where kx/kb derive from the frame-wide base correlation plus
// a per-varblock (or per-8x8, for LF) factor scaled by inv_colour_factor.
func ApplyChromaFromLuma(y, x, b []float64, baseCorrX, baseCorrB, invColourFactor float32, xFactor, bFactor int32) {
	kx := baseCorrX + invColourFactor*float32(xFactor)
	kb := baseCorrB + invColourFactor*float32(bFactor)
	for i := range y {
		x[i] += float64(kx) * y[i]
		b[i] += float64(kb) * y[i]
	}
}
