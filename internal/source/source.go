// Package source implements the pull-based byte source abstraction that
// feeds the container and bitstream layers. It mirrors the buffering idiom
// of ausocean-av/codec/h264/h264dec.H264Reader (accumulate into a byte
// slice, track a running offset, surface short reads as a distinguished
// error) adapted to JPEG XL's resumable decode model.
package source

import (
	"io"

	"github.com/jxldecoder/jxl/internal/jxlerr"
)

// Source is the pull contract every decoder input implements: bounded reads,
// optional seeking, and a hard upper bound on how much data will ever exist
// (fileoff_limit). In-memory sources set the limit to the buffer length;
// streaming sources set it to the largest offset observed so far, or to
// infinity if unknown.
type Source interface {
	// TryRead fills buf[:n] with min <= n <= len(buf) bytes read starting at
	// the source's current file offset, advancing it by n. It returns
	// jxlerr.ShortReadErr if fewer than min bytes are currently available.
	TryRead(buf []byte, min int) (n int, err error)

	// Seek moves the current file offset to abs, clamped to FileOffLimit().
	// Sources with no random access (pure streams) return an error other
	// than ShortRead if asked to seek backwards.
	Seek(abs int64) error

	// FileOff returns the current absolute file offset.
	FileOff() int64

	// FileOffLimit returns the inclusive upper bound on valid file offsets,
	// or -1 if unbounded (e.g. a live stream of unknown total length).
	FileOffLimit() int64
}

// MemorySource is a one-shot in-memory Source: the entire codestream or
// container is already resident, so TryRead and Seek are pure slice
// arithmetic. TryRead returns jxlerr.ShortReadErr when fewer than min
// bytes remain before the end of buf; since no more bytes can arrive, such
// a short read means the input is truncated.
type MemorySource struct {
	buf []byte
	off int64
}

// NewMemorySource wraps buf as a Source. buf is retained, not copied.
func NewMemorySource(buf []byte) *MemorySource {
	return &MemorySource{buf: buf}
}

func (s *MemorySource) TryRead(buf []byte, min int) (int, error) {
	avail := int64(len(s.buf)) - s.off
	if avail < int64(min) {
		return 0, jxlerr.ShortReadErr
	}
	n := len(buf)
	if int64(n) > avail {
		n = int(avail)
	}
	copy(buf[:n], s.buf[s.off:s.off+int64(n)])
	s.off += int64(n)
	return n, nil
}

func (s *MemorySource) Seek(abs int64) error {
	if abs < 0 {
		abs = 0
	}
	if abs > int64(len(s.buf)) {
		abs = int64(len(s.buf))
	}
	s.off = abs
	return nil
}

func (s *MemorySource) FileOff() int64      { return s.off }
func (s *MemorySource) FileOffLimit() int64 { return int64(len(s.buf)) }

// ReaderSource wraps an io.ReadSeeker, reading incrementally. It is used
// when the full codestream is not resident in memory; unlike MemorySource,
// an incomplete final read below min is a genuine short read that a caller
// may retry once more data becomes available upstream (e.g. a growing file).
type ReaderSource struct {
	r        io.ReadSeeker
	off      int64
	limit    int64 // -1 if unknown
}

// NewReaderSource wraps r. If r also implements a Len()/Size() accessor the
// caller may set limit via SetFileOffLimit once known; otherwise pass -1.
func NewReaderSource(r io.ReadSeeker, limit int64) *ReaderSource {
	return &ReaderSource{r: r, limit: limit}
}

func (s *ReaderSource) SetFileOffLimit(limit int64) { s.limit = limit }

func (s *ReaderSource) TryRead(buf []byte, min int) (int, error) {
	n, err := io.ReadAtLeast(s.r, buf, min)
	s.off += int64(n)
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return n, jxlerr.ShortReadErr
		}
		return n, err
	}
	return n, nil
}

func (s *ReaderSource) Seek(abs int64) error {
	if s.limit >= 0 && abs > s.limit {
		abs = s.limit
	}
	if abs < 0 {
		abs = 0
	}
	pos, err := s.r.Seek(abs, io.SeekStart)
	if err != nil {
		return err
	}
	s.off = pos
	return nil
}

func (s *ReaderSource) FileOff() int64      { return s.off }
func (s *ReaderSource) FileOffLimit() int64 { return s.limit }
