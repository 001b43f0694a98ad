package jxl

// OutputChannel selects which channel set a pixel accessor resolves.
type OutputChannel uint8

const (
	OutputChannelRGBA OutputChannel = iota
	OutputChannelRGB
	OutputChannelGray
)

// OutputSampleFormat selects the packed sample layout a pixel accessor
// produces. This decoder only ever emits interleaved 8-bit samples; the
// type exists so callers have a stable name to request, mirroring
// image_output_format(handle, channel, format)'s shape for future formats.
type OutputSampleFormat uint8

const (
	OutputU8x4 OutputSampleFormat = iota
)

// OutputFormat is the negotiated pixel layout a Decoder produces.
type OutputFormat struct {
	Channel OutputChannel
	Sample  OutputSampleFormat
}
