// Package modular implements the Modular sub-codec: per-channel predictive
// decoding driven by an MA tree, the reversible color transform (RCT),
// palette detransformation, and the 14 fixed predictors plus the adaptive
// weighted predictor. The channel/plane memory layout and row-major stride
// convention follow github.com/deepteams/webp/internal/lossless's pixel
// buffer handling (VP8L also decodes into a flat plane and applies its
// color/subtract-green transforms in place before returning ARGB pixels).
package modular

import "github.com/jxldecoder/jxl/internal/jxlerr"

// Channel is one decoded plane: a rectangular grid of signed 32-bit
// samples, wide enough to hold VarDCT residuals and high-bit-depth
// Modular data alike. HShift/VShift record the channel's subsampling
// relative to the frame (used by chroma channels and Squeeze outputs).
type Channel struct {
	Width, Height int
	HShift, VShift int
	Data          []int32 // row-major, len == Width*Height
}

// NewChannel allocates a zeroed channel of the given dimensions.
func NewChannel(w, h, hshift, vshift int) *Channel {
	return &Channel{Width: w, Height: h, HShift: hshift, VShift: vshift, Data: make([]int32, w*h)}
}

// At returns the sample at (x, y), or 0 if out of bounds (the border
// value predictors and context computation rely on).
func (c *Channel) At(x, y int) int32 {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return 0
	}
	return c.Data[y*c.Width+x]
}

// Set stores the sample at (x, y).
func (c *Channel) Set(x, y int, v int32) {
	c.Data[y*c.Width+x] = v
}

// Image is a full Modular decode result: one channel per color/extra
// channel, in the order the bitstream declared them.
type Image struct {
	Channels []*Channel
}

// ChannelByIndex returns ch, bounds-checked.
func (im *Image) ChannelByIndex(ch int) (*Channel, error) {
	if ch < 0 || ch >= len(im.Channels) {
		return nil, jxlerr.New(jxlerr.ErrBlockCtx, "channel index out of range")
	}
	return im.Channels[ch], nil
}
