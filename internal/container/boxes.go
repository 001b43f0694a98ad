// Package container maps logical JPEG XL codestream offsets onto file
// offsets, scanning ISO BMFF boxes (jxll/jxli/jxlc/jxlp/brob) or recognizing
// a bare codestream. The box-scanning shape — read an 8-byte header, branch
// on a FourCC, validate ordering flags, extend a piecewise map — follows
// github.com/deepteams/webp/internal/container's RIFF chunk walk; the
// concrete box grammar is BMFF, not RIFF, so the header sizes, extension
// rules and FourCCs differ throughout.
package container

import (
	"encoding/binary"

	"github.com/jxldecoder/jxl/internal/jxlerr"
)

// FourCC values for recognized BMFF boxes.
var (
	FourCCJXL  = [4]byte{'J', 'X', 'L', ' '}
	FourCCFtyp = [4]byte{'f', 't', 'y', 'p'}
	FourCCJxlBrand = [4]byte{'j', 'x', 'l', ' '}
	FourCCJxll = [4]byte{'j', 'x', 'l', 'l'}
	FourCCJxli = [4]byte{'j', 'x', 'l', 'i'}
	FourCCJxlc = [4]byte{'j', 'x', 'l', 'c'}
	FourCCJxlp = [4]byte{'j', 'x', 'l', 'p'}
	FourCCBrob = [4]byte{'b', 'r', 'o', 'b'}
)

// BareSignature is the two-byte marker identifying a bare (unwrapped)
// codestream.
var BareSignature = [2]byte{0xFF, 0x0A}

// JXLBoxBytes and FtypBoxBytes are the two fixed leading boxes of a
// container-wrapped stream, given verbatim by the wire format.
var JXLBoxBytes = [12]byte{0x00, 0x00, 0x00, 0x0C, 'J', 'X', 'L', ' ', 0x0D, 0x0A, 0x87, 0x0A}
var FtypBoxBytes = [20]byte{
	0x00, 0x00, 0x00, 0x14, 'f', 't', 'y', 'p', 'j', 'x', 'l', ' ', 0x00, 0x00, 0x00, 0x00, 'j', 'x', 'l', ' ',
}

// BoxHeaderMinSize is the smallest possible box header: 4-byte size +
// 4-byte type.
const BoxHeaderMinSize = 8

// BoxHeader describes one parsed BMFF box header.
type BoxHeader struct {
	Type       [4]byte
	HeaderSize int   // bytes consumed by the header itself (8, or 16 with a 64-bit size)
	BodySize   int64 // -1 means "extends to EOF" (size32 == 0)
}

// ReadBoxHeader parses a box header starting at buf[0]. It returns
// jxlerr.ShortReadErr if buf does not yet contain a complete header.
func ReadBoxHeader(buf []byte) (BoxHeader, error) {
	if len(buf) < BoxHeaderMinSize {
		return BoxHeader{}, jxlerr.ShortReadErr
	}
	size32 := binary.BigEndian.Uint32(buf[0:4])
	var typ [4]byte
	copy(typ[:], buf[4:8])

	switch size32 {
	case 0:
		return BoxHeader{Type: typ, HeaderSize: BoxHeaderMinSize, BodySize: -1}, nil
	case 1:
		if len(buf) < 16 {
			return BoxHeader{}, jxlerr.ShortReadErr
		}
		size64 := binary.BigEndian.Uint64(buf[8:16])
		if size64 < 16 {
			return BoxHeader{}, jxlerr.New(jxlerr.ErrBoxOrder, "box size64 too small")
		}
		return BoxHeader{Type: typ, HeaderSize: 16, BodySize: int64(size64) - 16}, nil
	default:
		if size32 < BoxHeaderMinSize {
			return BoxHeader{}, jxlerr.New(jxlerr.ErrBoxOrder, "box size too small")
		}
		return BoxHeader{Type: typ, HeaderSize: BoxHeaderMinSize, BodySize: int64(size32) - BoxHeaderMinSize}, nil
	}
}

// TotalSize returns the header+body size, or -1 if the box is indefinite.
func (h BoxHeader) TotalSize() int64 {
	if h.BodySize < 0 {
		return -1
	}
	return int64(h.HeaderSize) + h.BodySize
}
