// Package bitio implements the 64-bit LSB-first bit reader that every
// higher layer of the decoder pulls from. The refill strategy — keep a
// wide accumulator, shift newly consumed bytes into its high end, mask off
// exactly the requested low bits — mirrors
// github.com/deepteams/webp/internal/bitio.LosslessReader, which reads
// VP8L's little-endian/LSB-first bitstream the same way; this reader
// additionally supports checkpoint/rewind so the outer decode state machine
// can recover from a short read without losing already-decoded state.
package bitio

import (
	"math"
	"math/bits"

	"github.com/jxldecoder/jxl/internal/jxlerr"
)

// maxRefillBits is the threshold below which Refill tops up the
// accumulator; kept well short of 64 so a single u(31)+u32 worst case never
// straddles a refill boundary incorrectly.
const maxRefillBits = 56

// Reader is the checkpointable 64-bit LSB-first bit reader.
type Reader struct {
	buf   []byte
	pos   int // index of the next unconsumed byte in buf
	bits  uint64
	nbits uint

	// checkpoint state, restored on Rewind.
	ckPos   int
	ckBits  uint64
	ckNbits uint
}

// NewReader creates a Reader over buf starting at byte offset 0.
func NewReader(buf []byte) *Reader {
	r := &Reader{buf: buf}
	r.Checkpoint()
	return r
}

// Reset repoints the reader at a new backing slice (used when the backing
// buffer has been grown or slid by the container layer) while preserving
// any bits already pulled into the accumulator.
func (r *Reader) Reset(buf []byte, pos int) {
	r.buf = buf
	r.pos = pos
}

// Checkpoint records the current reader position so a later short read can
// Rewind back to it.
func (r *Reader) Checkpoint() {
	r.ckPos, r.ckBits, r.ckNbits = r.pos, r.bits, r.nbits
}

// Rewind restores the reader to its last Checkpoint.
func (r *Reader) Rewind() {
	r.pos, r.bits, r.nbits = r.ckPos, r.ckBits, r.ckNbits
}

// refill tops up the accumulator to at least n valid bits, consuming bytes
// from buf. It returns jxlerr.ShortReadErr if the buffer runs out first;
// bytes consumed before that point stay in the accumulator and the
// position stays advanced past them (refill only ever adds whole bytes and
// never drops bits, so no data is lost).
func (r *Reader) refill(n uint) error {
	if r.nbits >= n {
		return nil
	}
	for r.nbits <= maxRefillBits {
		if r.pos >= len(r.buf) {
			if r.nbits >= n {
				return nil
			}
			return jxlerr.ShortReadErr
		}
		r.bits |= uint64(r.buf[r.pos]) << r.nbits
		r.nbits += 8
		r.pos++
		if r.nbits >= n {
			return nil
		}
	}
	return nil
}

// PeekU returns the next n bits (0 <= n <= 31) without consuming them.
// Use Drop to consume fewer bits than were peeked, as required by prefix
// codes whose length is determined only after inspecting the bits.
func (r *Reader) PeekU(n uint) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	if err := r.refill(n); err != nil {
		return 0, err
	}
	return uint32(r.bits & ((uint64(1) << n) - 1)), nil
}

// Drop consumes n bits previously inspected via PeekU without re-reading
// them.
func (r *Reader) Drop(n uint) {
	r.bits >>= n
	r.nbits -= n
}

// U reads an unsigned n-bit field, 0 <= n <= 31, LSB-first.
func (r *Reader) U(n uint) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	if err := r.refill(n); err != nil {
		return 0, err
	}
	v := uint32(r.bits & ((uint64(1) << n) - 1))
	r.bits >>= n
	r.nbits -= n
	return v, nil
}

// U32Config describes one u32(o0,n0,...,o3,n3) configuration.
type U32Config struct {
	Offsets [4]uint32
	Lens    [4]uint
}

// U32 reads a 2-bit selector then u(lens[s])+offsets[s]. Each offset+2^len
// must be <= 2^31, the caller's responsibility to configure correctly.
func (r *Reader) U32(cfg U32Config) (uint32, error) {
	s, err := r.U(2)
	if err != nil {
		return 0, err
	}
	v, err := r.U(cfg.Lens[s])
	if err != nil {
		return 0, err
	}
	return v + cfg.Offsets[s], nil
}

// U64 reads JXL's variable-width u64 encoding: selector in {0,1,2} reads
// 4*s bits plus offset 17>>(8-4*s) (giving offsets {0,17,272}); selector 3
// reads a 12-bit base then 8-bit continuations while the continuation bit
// is set, with the final continuation limited to stay within 64 bits.
func (r *Reader) U64() (uint64, error) {
	s, err := r.U(2)
	if err != nil {
		return 0, err
	}
	if s < 3 {
		n := uint(4 * s)
		v, err := r.U(n)
		if err != nil {
			return 0, err
		}
		off := uint64(17) >> (8 - 4*s)
		return uint64(v) + off, nil
	}
	v, err := r.U(12)
	if err != nil {
		return 0, err
	}
	result := uint64(v)
	shift := uint(12)
	for {
		more, err := r.U(1)
		if err != nil {
			return 0, err
		}
		if more == 0 {
			break
		}
		take := uint(8)
		if shift+take > 64 {
			take = 64 - shift
		}
		chunk, err := r.U(take)
		if err != nil {
			return 0, err
		}
		result |= uint64(chunk) << shift
		shift += take
		if shift >= 64 {
			break
		}
	}
	return result, nil
}

// enumConfig is the fixed u32 configuration used by Enum (§4.2).
var enumConfig = U32Config{
	Offsets: [4]uint32{0, 1, 2, 18},
	Lens:    [4]uint{0, 0, 4, 6},
}

// Enum reads an enum value via u32(0,0,1,0,2,4,18,6), rejecting values >= 31.
func (r *Reader) Enum() (uint32, error) {
	v, err := r.U32(enumConfig)
	if err != nil {
		return 0, err
	}
	if v >= 31 {
		return 0, jxlerr.New(jxlerr.ErrEnum, "enum value out of range")
	}
	return v, nil
}

// F16 reads a 16-bit IEEE-754 half float and rejects NaN/Inf.
func (r *Reader) F16() (float32, error) {
	bits16, err := r.U(16)
	if err != nil {
		return 0, err
	}
	exp := (bits16 >> 10) & 0x1f
	if exp == 0x1f {
		return 0, jxlerr.New(jxlerr.ErrNotFinite, "non-finite float16")
	}
	sign := uint32(bits16>>15) & 1
	mant := bits16 & 0x3ff
	var f32bits uint32
	if exp == 0 {
		if mant == 0 {
			f32bits = sign << 31
		} else {
			// Subnormal half: normalize into a float32.
			e := -1
			m := mant
			for m&0x400 == 0 {
				m <<= 1
				e--
			}
			m &= 0x3ff
			exp32 := uint32(int32(e) + 1 + 127 - 15)
			f32bits = sign<<31 | exp32<<23 | uint32(m)<<13
		}
	} else {
		exp32 := exp - 15 + 127
		f32bits = sign<<31 | exp32<<23 | mant<<13
	}
	return math.Float32frombits(f32bits), nil
}

// ZeroPadToByte verifies any pending sub-byte bits are zero and discards
// them, realigning the reader to the next byte boundary.
func (r *Reader) ZeroPadToByte() error {
	rem := r.nbits & 7
	if rem == 0 {
		return nil
	}
	v, err := r.U(rem)
	if err != nil {
		return err
	}
	if v != 0 {
		return jxlerr.New(jxlerr.ErrPad0, "non-zero byte-alignment padding")
	}
	return nil
}

// Skip discards n bits without returning their value.
func (r *Reader) Skip(n uint) error {
	for n > 32 {
		if _, err := r.U(32); err != nil {
			return err
		}
		n -= 32
	}
	_, err := r.U(n)
	return err
}

// AtMost reads ceil(log2(max+1)) bits and rejects decoded values above max.
func (r *Reader) AtMost(max uint32) (uint32, error) {
	n := uint(bits.Len32(max))
	v, err := r.U(n)
	if err != nil {
		return 0, err
	}
	if v > max {
		return 0, jxlerr.New(jxlerr.ErrRange, "value exceeds at_most bound")
	}
	return v, nil
}

// ByteAligned reports whether the reader is currently on a byte boundary.
func (r *Reader) ByteAligned() bool { return r.nbits%8 == 0 }

// BitsConsumed returns the total number of bits consumed from the start of
// buf, used by callers that need to know the codestream offset of the
// reader's current position.
func (r *Reader) BitsConsumed() int64 {
	return int64(r.pos)*8 - int64(r.nbits)
}
