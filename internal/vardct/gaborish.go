package vardct

import "github.com/jxldecoder/jxl/internal/modular"

// ApplyGaborish convolves a channel with the normalized 3x3 separable
// kernel (1, w1, w2), mirroring at the image border.
func ApplyGaborish(c *modular.Channel, w1, w2 float32) {
	total := 1 + 4*w1 + 4*w2
	if total == 0 {
		total = 1
	}
	k1, k2 := w1/total, w2/total
	k0 := 1 / total

	src := append([]int32(nil), c.Data...)
	get := func(x, y int) float32 {
		if x < 0 {
			x = 0
		}
		if x >= c.Width {
			x = c.Width - 1
		}
		if y < 0 {
			y = 0
		}
		if y >= c.Height {
			y = c.Height - 1
		}
		return float32(src[y*c.Width+x])
	}
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			center := get(x, y)
			ortho := get(x-1, y) + get(x+1, y) + get(x, y-1) + get(x, y+1)
			diag := get(x-1, y-1) + get(x+1, y-1) + get(x-1, y+1) + get(x+1, y+1)
			v := k0*center + k1*ortho + k2*diag
			c.Set(x, y, int32(v+0.5))
		}
	}
}
