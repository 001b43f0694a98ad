// Package render converts decoded high-bit-depth sample planes into the
// 8-bit-per-channel RGBA pixel buffer the public API hands back, mirroring
// github.com/deepteams/webp's final YUV/RGB-to-image.Image conversion
// step (clamp, pack, optionally substitute a constant alpha).
package render

import "github.com/jxldecoder/jxl/internal/modular"

// ToRGBA8 packs three color channels plus an optional alpha channel into
// interleaved 8-bit RGBA bytes, scaling from the source bit depth.
func ToRGBA8(r, g, b, alpha *modular.Channel, bitsPerSample uint32) []byte {
	w, h := r.Width, r.Height
	out := make([]byte, w*h*4)
	maxVal := float32((uint64(1) << bitsPerSample) - 1)
	if maxVal == 0 {
		maxVal = 255
	}
	for i := 0; i < w*h; i++ {
		out[i*4+0] = scaleSample(r.Data[i], maxVal)
		out[i*4+1] = scaleSample(g.Data[i], maxVal)
		out[i*4+2] = scaleSample(b.Data[i], maxVal)
		if alpha != nil {
			out[i*4+3] = scaleSample(alpha.Data[i], maxVal)
		} else {
			out[i*4+3] = 255
		}
	}
	return out
}

func scaleSample(v int32, maxVal float32) byte {
	if v < 0 {
		v = 0
	}
	scaled := float32(v) * 255 / maxVal
	if scaled < 0 {
		scaled = 0
	}
	if scaled > 255 {
		scaled = 255
	}
	return byte(scaled + 0.5)
}

// ToGray8 packs a single grayscale channel (plus optional alpha) into
// interleaved 8-bit RGBA bytes, replicating the gray value across R/G/B.
func ToGray8(gray, alpha *modular.Channel, bitsPerSample uint32) []byte {
	w, h := gray.Width, gray.Height
	out := make([]byte, w*h*4)
	maxVal := float32((uint64(1) << bitsPerSample) - 1)
	if maxVal == 0 {
		maxVal = 255
	}
	for i := 0; i < w*h; i++ {
		v := scaleSample(gray.Data[i], maxVal)
		out[i*4+0] = v
		out[i*4+1] = v
		out[i*4+2] = v
		if alpha != nil {
			out[i*4+3] = scaleSample(alpha.Data[i], maxVal)
		} else {
			out[i*4+3] = 255
		}
	}
	return out
}
