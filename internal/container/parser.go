package container

import (
	"bytes"

	"github.com/jxldecoder/jxl/internal/jxlerr"
)

// MapEntry is one piecewise-linear mapping point: codestream bytes in
// [CodeOff, nextEntry.CodeOff) live at file bytes starting at FileOff.
type MapEntry struct {
	CodeOff int64
	FileOff int64
}

// Flags records container-level state that constrains which boxes may still
// appear, mirroring the cardinality/ordering bits enumerated in §4.1.
type Flags struct {
	SeenJXLBox     bool
	SeenFtyp       bool
	SeenJxll       bool // jxll seen (must be before first jxlc/jxlp)
	SeenJxli       bool // jxli seen (at most once)
	SeenJxlc       bool // a jxlc box has been used (excludes jxlp)
	SeenJxlp       bool // a jxlp box has been used (excludes jxlc)
	SeenCodestream bool // true once any codestream-carrying box appeared
	ImplicitLast   bool // an indefinite-size box is extending the map to EOF
	Closed         bool // no further boxes/codestream boxes permitted
	Bare           bool // true if this is a bare (unwrapped) codestream
}

// Container incrementally maps codestream offsets to file offsets by
// scanning BMFF boxes. It holds no byte buffer of its own: callers re-invoke
// Scan with a growing slice of the file each time more bytes are available,
// exactly as container.Parser in the teacher re-parses from byte 0 of a
// RIFF buffer — but here scanning resumes from LastScanned instead of
// restarting, since JXL boxes may be split across jxlp fragments.
type Container struct {
	Flags       Flags
	Entries     []MapEntry
	LastScanned int64 // file offset up to which boxes have been fully parsed
	totalMapped int64 // running codestream length covered by Entries so far
}

// New creates an empty Container ready for incremental scanning.
func New() *Container { return &Container{} }

// Scan advances box parsing as far as buf (a file-offset-0-based prefix of
// the whole input) allows. It may be called repeatedly with a longer buf
// each time; already-scanned boxes are not re-parsed. Returns
// jxlerr.ShortReadErr if a box header or body is not yet fully present.
func (c *Container) Scan(buf []byte) error {
	if !c.Flags.SeenJXLBox && !c.Flags.Bare {
		if err := c.scanSignature(buf); err != nil {
			return err
		}
	}
	if c.Flags.Bare {
		return nil
	}

	pos := c.LastScanned
	for {
		if c.Flags.Closed {
			return nil
		}
		if int64(len(buf)) < pos+BoxHeaderMinSize {
			return jxlerr.ShortReadErr
		}
		hdr, err := ReadBoxHeader(buf[pos:])
		if err != nil {
			return err
		}
		total := hdr.TotalSize()
		if total >= 0 && int64(len(buf)) < pos+total {
			return jxlerr.ShortReadErr
		}

		if err := c.applyBox(hdr, buf, pos); err != nil {
			return err
		}

		if total < 0 {
			c.Flags.ImplicitLast = true
			c.Flags.Closed = true
			c.LastScanned = int64(len(buf))
			return nil
		}
		pos += total
		c.LastScanned = pos
	}
}

func (c *Container) scanSignature(buf []byte) error {
	if len(buf) < 2 {
		return jxlerr.ShortReadErr
	}
	if buf[0] == BareSignature[0] && buf[1] == BareSignature[1] {
		c.Flags.Bare = true
		c.Entries = append(c.Entries, MapEntry{CodeOff: 0, FileOff: 0})
		c.Flags.ImplicitLast = true
		return nil
	}
	n := len(buf)
	if n > len(JXLBoxBytes) {
		n = len(JXLBoxBytes)
	}
	if !bytes.Equal(buf[:n], JXLBoxBytes[:n]) {
		return jxlerr.New(jxlerr.ErrBadSig, "missing JXL signature box")
	}
	if len(buf) < len(JXLBoxBytes) {
		return jxlerr.ShortReadErr
	}
	if len(buf) < len(JXLBoxBytes)+len(FtypBoxBytes) {
		return jxlerr.ShortReadErr
	}
	if !bytes.Equal(buf[len(JXLBoxBytes):len(JXLBoxBytes)+len(FtypBoxBytes)], FtypBoxBytes[:]) {
		return jxlerr.New(jxlerr.ErrBadFtyp, "missing or malformed ftyp box")
	}
	c.Flags.SeenJXLBox = true
	c.Flags.SeenFtyp = true
	c.LastScanned = int64(len(JXLBoxBytes) + len(FtypBoxBytes))
	return nil
}

func (c *Container) applyBox(hdr BoxHeader, buf []byte, pos int64) error {
	bodyOff := pos + int64(hdr.HeaderSize)
	switch hdr.Type {
	case FourCCJxll:
		if c.Flags.SeenJxll || c.Flags.SeenCodestream {
			return jxlerr.New(jxlerr.ErrBoxOrder, "jxll after codestream or duplicated")
		}
		c.Flags.SeenJxll = true
	case FourCCJxli:
		if c.Flags.SeenJxli {
			return jxlerr.New(jxlerr.ErrBoxOrder, "duplicate jxli box")
		}
		c.Flags.SeenJxli = true
	case FourCCJxlc:
		if c.Flags.SeenJxlp {
			return jxlerr.New(jxlerr.ErrBoxOrder, "jxlc after jxlp")
		}
		if c.Flags.SeenJxlc {
			return jxlerr.New(jxlerr.ErrBoxOrder, "duplicate jxlc box")
		}
		c.Flags.SeenJxlc = true
		c.Flags.SeenCodestream = true
		c.Entries = append(c.Entries, MapEntry{CodeOff: c.totalMapped, FileOff: bodyOff})
		c.totalMapped += hdr.BodySize
		c.Flags.Closed = true
	case FourCCJxlp:
		if c.Flags.SeenJxlc {
			return jxlerr.New(jxlerr.ErrBoxOrder, "jxlp after jxlc")
		}
		if hdr.BodySize < 4 {
			return jxlerr.New(jxlerr.ErrBoxOrder, "jxlp box too small for index")
		}
		idx := be32(buf[bodyOff : bodyOff+4])
		more := idx&0x80000000 != 0
		c.Flags.SeenJxlp = true
		c.Flags.SeenCodestream = true
		c.Entries = append(c.Entries, MapEntry{CodeOff: c.totalMapped, FileOff: bodyOff + 4})
		c.totalMapped += hdr.BodySize - 4
		if !more {
			c.Flags.Closed = true
		}
	case FourCCBrob:
		if hdr.BodySize < 4 {
			return jxlerr.New(jxlerr.ErrBrotli, "brob box too small for inner type")
		}
		var inner [4]byte
		copy(inner[:], buf[bodyOff:bodyOff+4])
		if inner == FourCCJxlc || inner == FourCCJxlp {
			return jxlerr.New(jxlerr.ErrBrotli, "brotli-compressed codestream box unsupported")
		}
		// Unsupported metadata compression; tolerated as an opaque skip.
	default:
		// Unknown/metadata boxes (Exif, xml, ...) are skipped.
	}
	return nil
}

// MappedLength returns the total number of codestream bytes currently
// covered by Entries.
func (c *Container) MappedLength() int64 { return c.totalMapped }

// MapCodestreamOffset resolves a logical codestream offset to a file
// offset. It binary-searches Entries and, if codeoff lies past the last
// mapped byte, either extrapolates via the implicit-last-entry rule or
// reports a short read (more boxes must be scanned first).
func (c *Container) MapCodestreamOffset(codeoff int64) (int64, error) {
	if len(c.Entries) == 0 {
		return 0, jxlerr.ShortReadErr
	}
	// Find the last entry with CodeOff <= codeoff.
	lo, hi := 0, len(c.Entries)-1
	idx := 0
	for lo <= hi {
		mid := (lo + hi) / 2
		if c.Entries[mid].CodeOff <= codeoff {
			idx = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	e := c.Entries[idx]
	within := codeoff - e.CodeOff
	if idx+1 < len(c.Entries) {
		span := c.Entries[idx+1].CodeOff - e.CodeOff
		if within >= span {
			// Shouldn't happen given idx selection, but guard anyway.
			return 0, jxlerr.New(jxlerr.ErrBoxOrder, "codestream offset beyond mapped span")
		}
		return e.FileOff + within, nil
	}
	if codeoff >= c.totalMapped {
		if c.Flags.ImplicitLast {
			return e.FileOff + within, nil
		}
		return 0, jxlerr.ShortReadErr
	}
	return e.FileOff + within, nil
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
