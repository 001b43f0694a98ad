package jxl

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/jxldecoder/jxl/internal/jxlerr"
	"github.com/jxldecoder/jxl/internal/source"
)

func init() {
	image.RegisterFormat("jxl", "\xff\x0a", Decode, DecodeConfig)
	image.RegisterFormat("jxl", "\x00\x00\x00\x0cJXL \x0d\x0a\x87\x0a", Decode, DecodeConfig)
}

// Errors returned by the decoder.
var (
	ErrUnsupported = errors.New("jxl: unsupported feature")
	ErrNoFrames    = errors.New("jxl: no image frames found")
)

// readAll reads all data from r. If r implements Len() int (e.g.
// *bytes.Reader), a single exact-sized allocation is used instead of the
// repeated doublings io.ReadAll performs.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		n := lr.Len()
		if n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return io.ReadAll(r)
}

// Decode reads a JPEG XL image from r and returns it as an image.Image.
// The returned type is always *image.NRGBA; this decoder does not attempt
// to preserve a source YCbCr-like representation the way lossy WebP does.
func Decode(r io.Reader) (image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("jxl: reading data: %w", err)
	}
	d, err := FromMemory(data)
	if err != nil {
		return nil, translateErr(err)
	}
	defer d.Close()

	ok, err := d.NextFrame()
	if err != nil {
		return nil, translateErr(err)
	}
	if !ok {
		return nil, ErrNoFrames
	}
	return d.frameAsImage(0), nil
}

// DecodeConfig returns the color model and dimensions of a JPEG XL image
// without decoding any frame's pixels.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := readAll(r)
	if err != nil {
		return image.Config{}, fmt.Errorf("jxl: reading data: %w", err)
	}
	d, err := FromMemory(data)
	if err != nil {
		return image.Config{}, translateErr(err)
	}
	defer d.Close()

	model := color.NRGBAModel
	return image.Config{
		ColorModel: model,
		Width:      int(d.Header.Width),
		Height:     int(d.Header.Height),
	}, nil
}

func translateErr(err error) error {
	if _, ok := err.(*jxlerr.Unsupported); ok {
		return fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return err
}

// FromMemory decodes a fully-buffered codestream or container. buf is
// retained, not copied.
func FromMemory(buf []byte) (*Decoder, error) {
	return decodeFromSource(source.NewMemorySource(buf))
}

// FromReader decodes from an io.ReadSeeker. It reads r to its end before
// decoding, then decodes every frame up front just as FromMemory does.
func FromReader(r io.ReadSeeker) (*Decoder, error) {
	return decodeFromSource(source.NewReaderSource(r, -1))
}

// OutputFormat reports the pixel layout this Decoder's FramePixelsU8x4
// produces: always interleaved 8-bit samples, RGBA channel order.
func (d *Decoder) OutputFormat() OutputFormat {
	return OutputFormat{Channel: OutputChannelRGBA, Sample: OutputU8x4}
}

// NextFrame advances to the next decoded frame, returning false once every
// frame produced during FromMemory/FromReader has been consumed.
func (d *Decoder) NextFrame() (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	if d.pos >= len(d.frames) {
		return false, nil
	}
	d.pos++
	return true, nil
}

// FramePixelsU8x4 returns a view of the current frame's packed RGBA8
// pixels. channel is accepted for API symmetry with image_output_format
// but this revision only ever produces RGBA.
func (d *Decoder) FramePixelsU8x4(channel OutputChannel) (PixelView, error) {
	if d.pos == 0 || d.pos > len(d.frames) {
		return PixelView{}, fmt.Errorf("jxl: FramePixelsU8x4 called before a successful NextFrame")
	}
	f := d.frames[d.pos-1]
	return PixelView{Width: f.Width, Height: f.Height, StrideBytes: f.Width * 4, Data: f.RGBA}, nil
}

// Err returns the first fatal error this Decoder has latched, if any.
func (d *Decoder) Err() error { return d.err }

// Close releases resources held by the Decoder. It is always safe to call
// and never returns an error; it exists for symmetry with FromReader's
// streaming sources that may one day hold an open handle.
func (d *Decoder) Close() error { return nil }

func (d *Decoder) frameAsImage(idx int) image.Image {
	f := d.frames[idx]
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	copy(img.Pix, f.RGBA)
	return img
}
