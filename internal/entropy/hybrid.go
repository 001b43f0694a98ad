// Package entropy implements the JPEG XL entropy code subsystem: hybrid
// integer decoding, prefix-code tree construction (RFC 7932 §3), the rANS
// alias-table decoder, cluster maps and the LZ77-augmented token stream.
//
// The two-level table-with-overflow shape of the prefix-code decoder and
// the sorted-by-length table construction follow
// github.com/deepteams/webp/internal/lossless.BuildHuffmanTable; the
// back-reference copy/window handling follows
// github.com/deepteams/webp/internal/lossless's PixOrCopy + hashchain
// back-reference model. The hybrid-integer split and the rANS alias table
// itself have no webp analog (VP8L uses plain prefix codes with fixed
// length/distance extra-bit tables, not a split token/rANS scheme) and are
// implemented directly from the bitstream grammar in the same file/struct
// idiom as the rest of this package.
package entropy

import (
	"math/bits"

	"github.com/jxldecoder/jxl/internal/bitio"
	"github.com/jxldecoder/jxl/internal/jxlerr"
)

// HybridConfig describes one cluster's hybrid-integer split, read as three
// small bit fields (split_exp, msb_in_token, lsb_in_token).
type HybridConfig struct {
	SplitExp   uint32
	MsbInToken uint32
	LsbInToken uint32
}

// ReadHybridConfig reads a hybrid-int config with the given log-alpha-size
// bound on split_exp (15 for most CodeSpecs, 8 for LZ77 length configs,
// log_alpha_size for ANS-coded clusters).
func ReadHybridConfig(r *bitio.Reader, logAlphaSize uint32) (HybridConfig, error) {
	splitExp, err := r.AtMost(logAlphaSize)
	if err != nil {
		return HybridConfig{}, err
	}
	var msb, lsb uint32
	if splitExp != logAlphaSize {
		msbBound := uint32(bits.Len32(splitExp))
		msb, err = r.AtMost(minU32(splitExp, maxNonzero(msbBound)))
		if err != nil {
			return HybridConfig{}, err
		}
		lsb, err = r.AtMost(minU32(splitExp-msb, maxNonzero(msbBound)))
		if err != nil {
			return HybridConfig{}, err
		}
	}
	return HybridConfig{SplitExp: splitExp, MsbInToken: msb, LsbInToken: lsb}, nil
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// maxNonzero guards AtMost(0) degenerate calls; a bound of 0 still means
// "read zero bits, value must be zero", which AtMost already handles.
func maxNonzero(b uint32) uint32 { return b }

// Decode expands a raw token into its final integer value per the
// hybrid-integer scheme (§4.3): tokens below 2^split_exp pass through
// unchanged; larger tokens split token-2^split_exp into NNHHHLLL, read
// midbits extra bits, and reassemble. Decoded values are capped below 2^30.
func (c HybridConfig) Decode(r *bitio.Reader, token uint32) (uint32, error) {
	if token < (uint32(1) << c.SplitExp) {
		return token, nil
	}
	n := token - (uint32(1) << c.SplitExp)
	lsb := n & ((uint32(1) << c.LsbInToken) - 1)
	n >>= c.LsbInToken
	msb := n & ((uint32(1) << c.MsbInToken) - 1)
	n >>= c.MsbInToken
	// n now holds the NN bits.
	midbits := c.SplitExp - (c.LsbInToken + c.MsbInToken) + n
	extra, err := r.U(uint(midbits))
	if err != nil {
		return 0, err
	}
	value := ((uint64(1)<<c.MsbInToken | uint64(msb)) << (uint64(midbits) + uint64(c.LsbInToken))) |
		(uint64(extra) << c.LsbInToken) | uint64(lsb)
	if value >= 1<<30 {
		return 0, jxlerr.New(jxlerr.ErrIntOverflow, "hybrid integer overflow")
	}
	return uint32(value), nil
}

// UnpackSigned maps a non-negative raw decoded value to a signed one using
// JXL's zigzag-style unpacking: even values are non-negative halves, odd
// values are the bitwise complement of the (value>>1)-th negative.
func UnpackSigned(v uint32) int32 {
	if v&1 == 0 {
		return int32(v >> 1)
	}
	return -int32(v>>1) - 1
}
