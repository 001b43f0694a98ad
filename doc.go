// Package jxl decodes still-image JPEG XL codestreams (ISO/IEC 18181),
// bare or wrapped in the BMFF-style box container, into standard library
// image.Image values. It registers itself with the image package the same
// way github.com/deepteams/webp registers WebP, so image.Decode and
// image.DecodeConfig work on ".jxl" data without any explicit reference to
// this package.
//
// The decoder is single-threaded and not resumable: FromReader accepts any
// io.ReadSeeker but reads it to its end before decoding, and FromMemory
// takes already-buffered data. Both decode every frame up front; input
// that ends early fails with a short-read error, and the decode does not
// continue when more bytes become available later.
//
// Progressive/animated and VarDCT (lossy) multi-section frames are only
// partially supported; see decode.go for exactly which frame shapes this
// revision decodes end to end.
package jxl
