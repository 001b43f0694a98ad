package modular

import "github.com/jxldecoder/jxl/internal/jxlerr"

// floorAvg computes floor((x+y)/2) for signed values without the
// double-width intermediate an (x+y)>>1 would need, via the x/2 + y/2 +
// (x&y&1) identity: splitting each operand's low bit out before halving
// keeps the rounding exact for both even and odd sums. RCT kind 4 and the
// LF-smoothing/Squeeze family both rely on this exact rounding behavior
// (see DESIGN.md's Open Questions entry on preserving it exactly).
func floorAvg(x, y int32) int32 {
	return (x >> 1) + (y >> 1) + (x & y & 1)
}

// RCT applies one of the reversible color transforms to three channels in
// place, undoing the lossless decorrelation the encoder applied before
// entropy coding. rctType encodes both the permutation of the three
// channels (rctType / 7) and which of the 7 transform shapes to invert
// (rctType % 7), following the packed encoding the format uses to cover
// all 6 permutations x 7 shapes without a separate field for each. The
// per-kind formulas follow spec.md's RCT description exactly: 0 is the
// identity, 1-3 are additive chains, 4 folds the first and third channels
// into the second via floorAvg, 5 updates both the second and third
// channels from the first, and 6 is the fully reversible YCoCg-like
// transform.
func RCT(a, b, c *Channel, rctType int) error {
	perm := rctType / 7
	kind := rctType % 7
	if perm < 0 || perm > 5 || kind < 0 || kind > 6 {
		return jxlerr.New(jxlerr.ErrRctType, "rct type out of range")
	}
	if a.Width != b.Width || a.Width != c.Width || a.Height != b.Height || a.Height != c.Height {
		return jxlerr.New(jxlerr.ErrRctChan, "rct channels have mismatched dimensions")
	}
	for i := range a.Data {
		x, y, z := a.Data[i], b.Data[i], c.Data[i]
		switch kind {
		case 0: // identity
		case 1: // additive chain: third += first
			z = z + x
		case 2: // additive chain: second += first
			y = y + x
		case 3: // additive chain: second += first; third += first
			y = y + x
			z = z + x
		case 4: // Y + floor_avg(X, Z)
			y = y + floorAvg(x, z)
		case 5: // Y+X+(Z/2), Z+X
			newY := y + x + (z >> 1)
			newZ := z + x
			y, z = newY, newZ
		case 6: // YCgCo reversible
			tmp := x - (z >> 1)
			g := z + tmp
			bch := tmp - (y >> 1)
			r := bch + y
			x, y, z = r, g, bch
		}
		a.Data[i], b.Data[i], c.Data[i] = permute(x, y, z, perm)
	}
	return nil
}

func permute(x, y, z int32, perm int) (int32, int32, int32) {
	switch perm {
	case 0:
		return x, y, z
	case 1:
		return x, z, y
	case 2:
		return y, x, z
	case 3:
		return y, z, x
	case 4:
		return z, x, y
	default:
		return z, y, x
	}
}
