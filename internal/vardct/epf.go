package vardct

import "github.com/jxldecoder/jxl/internal/modular"

// EPFStep applies one edge-preserving-filter pass to channel c.
// recipSigma gives 1/sigma per 8x8 block (flattened, width in 8x8 units);
// pixels whose block's 1/sigma falls below 0.3 are left untouched.
func EPFStep(c *modular.Channel, recipSigma []float32, blocksWide int, step int, sigmaScale float32, borderSadMul float32) {
	offsets := stepOffsets(step)
	out := make([]int32, len(c.Data))
	copy(out, c.Data)

	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			bx, by := x/8, y/8
			idx := by*blocksWide + bx
			if idx < 0 || idx >= len(recipSigma) {
				continue
			}
			invSigma := recipSigma[idx]
			if invSigma < 0.3 {
				continue
			}
			onBorder := x%8 == 0 || y%8 == 0 || x%8 == 7 || y%8 == 7
			scaleMul := float32(1)
			if onBorder {
				scaleMul = borderSadMul
			}
			center := float32(c.At(x, y))
			var wsum, vsum float32
			for _, off := range offsets {
				nv := float32(c.At(x+off[0], y+off[1]))
				dist := nv - center
				if dist < 0 {
					dist = -dist
				}
				weight := 1 - dist*invSigma*sigmaScale*scaleMul
				if weight < 0 {
					weight = 0
				}
				wsum += weight
				vsum += weight * nv
			}
			// Include the center sample itself with a nominal weight of 1.
			wsum += 1
			vsum += center
			if wsum > 0 {
				out[y*c.Width+x] = int32(vsum/wsum + 0.5)
			}
		}
	}
	copy(c.Data, out)
}

func stepOffsets(step int) [][2]int {
	switch step {
	case 0:
		return [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}, {2, 0}, {-2, 0}, {0, 2}, {0, -2}}
	case 2:
		return [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	default:
		return [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	}
}
