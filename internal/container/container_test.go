package container

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jxldecoder/jxl/internal/jxlerr"
)

func TestScanBareSignature(t *testing.T) {
	buf := []byte{0xFF, 0x0A, 0x01, 0x02, 0x03}
	c := New()
	if err := c.Scan(buf); err != nil {
		t.Fatal(err)
	}
	if !c.Flags.Bare {
		t.Fatal("expected bare codestream to be detected")
	}
	if len(c.Entries) != 1 || c.Entries[0].FileOff != 0 {
		t.Fatalf("entries = %+v, want single entry at file offset 0", c.Entries)
	}
}

func TestScanBadSignature(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	c := New()
	err := c.Scan(buf)
	if err == nil {
		t.Fatal("expected bad-signature error")
	}
	if jxlerr.CodeOf(err) != jxlerr.ErrBadSig {
		t.Fatalf("CodeOf(err) = %v, want ErrBadSig", jxlerr.CodeOf(err))
	}
}

func TestScanShortReadOnTruncatedSignature(t *testing.T) {
	c := New()
	err := c.Scan([]byte{0x00})
	if !jxlerr.IsShortRead(err) {
		t.Fatalf("expected short read, got %v", err)
	}
}

// TestScanJxlcBox builds a minimal JXL-box container: the fixed
// signature+ftyp prefix followed by one jxlc box wrapping a tiny
// codestream payload, and verifies the codestream is mapped to the
// correct file offset.
func TestScanJxlcBox(t *testing.T) {
	payload := []byte{0xAA, 0xBB, 0xCC}
	var buf []byte
	buf = append(buf, JXLBoxBytes[:]...)
	buf = append(buf, FtypBoxBytes[:]...)

	boxSize := uint32(BoxHeaderMinSize + len(payload))
	jxlcHeader := []byte{
		byte(boxSize >> 24), byte(boxSize >> 16), byte(boxSize >> 8), byte(boxSize),
		'j', 'x', 'l', 'c',
	}
	buf = append(buf, jxlcHeader...)
	buf = append(buf, payload...)

	c := New()
	if err := c.Scan(buf); err != nil {
		t.Fatal(err)
	}
	if !c.Flags.SeenJxlc || !c.Flags.Closed {
		t.Fatalf("flags = %+v, want jxlc seen and closed", c.Flags)
	}
	if len(c.Entries) != 1 {
		t.Fatalf("entries = %+v, want one entry", c.Entries)
	}
	wantFileOff := int64(len(JXLBoxBytes) + len(FtypBoxBytes) + BoxHeaderMinSize)
	if c.Entries[0].FileOff != wantFileOff {
		t.Fatalf("FileOff = %d, want %d", c.Entries[0].FileOff, wantFileOff)
	}
	if c.MappedLength() != int64(len(payload)) {
		t.Fatalf("MappedLength() = %d, want %d", c.MappedLength(), len(payload))
	}
}

// TestScanMultipleJxlPBoxesBuildsFullEntryMap builds a two-box stream
// (two jxlp boxes carrying the two fragments of one codestream) and compares the whole
// resulting entry map against an expected slice in one shot, rather than
// asserting field-by-field.
func TestScanMultipleJxlPBoxesBuildsFullEntryMap(t *testing.T) {
	first := []byte{0x01, 0x02, 0x03}
	second := []byte{0x04, 0x05}

	var buf []byte
	buf = append(buf, JXLBoxBytes[:]...)
	buf = append(buf, FtypBoxBytes[:]...)

	appendJxlp := func(seq uint32, payload []byte, last bool) {
		boxSize := uint32(BoxHeaderMinSize + 4 + len(payload))
		buf = append(buf, byte(boxSize>>24), byte(boxSize>>16), byte(boxSize>>8), byte(boxSize))
		buf = append(buf, 'j', 'x', 'l', 'p')
		seqField := seq
		if !last {
			seqField |= 0x80000000 // high bit set: more jxlp fragments follow
		}
		buf = append(buf, byte(seqField>>24), byte(seqField>>16), byte(seqField>>8), byte(seqField))
		buf = append(buf, payload...)
	}
	appendJxlp(0, first, false)
	appendJxlp(1, second, true)

	c := New()
	if err := c.Scan(buf); err != nil {
		t.Fatal(err)
	}

	firstOff := int64(len(JXLBoxBytes) + len(FtypBoxBytes) + BoxHeaderMinSize + 4)
	secondOff := firstOff + int64(len(first)) + int64(BoxHeaderMinSize+4)
	want := []MapEntry{
		{CodeOff: 0, FileOff: firstOff},
		{CodeOff: int64(len(first)), FileOff: secondOff},
	}
	if diff := cmp.Diff(want, c.Entries); diff != "" {
		t.Fatalf("entry map mismatch (-want +got):\n%s", diff)
	}
}

func TestMapCodestreamOffset(t *testing.T) {
	c := New()
	c.Entries = []MapEntry{{CodeOff: 0, FileOff: 100}}
	c.Flags.ImplicitLast = true
	off, err := c.MapCodestreamOffset(5)
	if err != nil {
		t.Fatal(err)
	}
	if off != 105 {
		t.Fatalf("MapCodestreamOffset(5) = %d, want 105", off)
	}
}
