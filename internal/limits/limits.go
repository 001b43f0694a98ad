// Package limits centralizes the Main Profile Level 5 ceilings the decoder
// enforces before allocating memory for attacker-controlled sizes,
// mirroring the defensive bounds-checking style of
// github.com/deepteams/webp's RIFF chunk-size validation (reject before
// allocate, never allocate-then-truncate).
package limits

import "github.com/jxldecoder/jxl/internal/jxlerr"

const (
	MaxImageArea     = 1 << 28
	MaxDimension     = 1 << 18
	MaxExtraChannels = 4
	MaxPasses        = 11
	MaxICCSize       = 4 << 20
	MaxTOCSections   = 1 << 20
)

// CheckDimensions validates a frame or intrinsic size against the profile
// ceilings.
func CheckDimensions(width, height int64) error {
	if width <= 0 || height <= 0 {
		return jxlerr.New(jxlerr.ErrRange, "non-positive image dimension")
	}
	if width > MaxDimension || height > MaxDimension {
		return jxlerr.New(jxlerr.ErrOverflow, "image dimension exceeds profile limit")
	}
	if width*height > MaxImageArea {
		return jxlerr.New(jxlerr.ErrOverflow, "image area exceeds profile limit")
	}
	return nil
}

// CheckExtraChannels validates the declared extra-channel count.
func CheckExtraChannels(n int) error {
	if n < 0 || n > MaxExtraChannels {
		return jxlerr.New(jxlerr.ErrExtraLimit, "too many extra channels")
	}
	return nil
}

// CheckPasses validates the declared pass count.
func CheckPasses(n int) error {
	if n < 1 || n > MaxPasses {
		return jxlerr.New(jxlerr.ErrPassLimit, "too many passes")
	}
	return nil
}

// CheckICCSize validates a declared ICC profile payload size.
func CheckICCSize(n int64) error {
	if n < 0 || n > MaxICCSize {
		return jxlerr.New(jxlerr.ErrOverflow, "ICC profile exceeds size limit")
	}
	return nil
}

// CheckTOCSections validates a declared section count.
func CheckTOCSections(n int) error {
	if n < 0 || n > MaxTOCSections {
		return jxlerr.New(jxlerr.ErrSectionLim, "too many TOC sections")
	}
	return nil
}
