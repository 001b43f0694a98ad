package jxl

// PixelView exposes one decoded frame's packed pixel buffer without
// copying it out of the Decoder.
type PixelView struct {
	Width, Height int
	StrideBytes   int
	Data          []byte
}
