package entropy

import "github.com/jxldecoder/jxl/internal/bitio"

// kSpecialDistances is the fixed table mapping the first 120 LZ77 distance
// symbols to (dx, dy) offsets relative to the current pixel. Most natural
// images repeat content along row-aligned or diagonal neighbors, so these
// short codes let the distance code stay compact for the common case of
// "copy from a nearby row" instead of spending a full hybrid-integer value.
// The actual distance is resolved against the image width via
// SpecialDistance.
var kSpecialDistances = [120][2]int32{
	{0, 1}, {1, 0}, {1, 1}, {-1, 1}, {0, 2}, {2, 0}, {1, 2}, {-1, 2},
	{2, 1}, {-2, 1}, {2, 2}, {-2, 2}, {0, 3}, {3, 0}, {1, 3}, {-1, 3},
	{3, 1}, {-3, 1}, {2, 3}, {-2, 3}, {3, 2}, {-3, 2}, {0, 4}, {4, 0},
	{1, 4}, {-1, 4}, {4, 1}, {-4, 1}, {3, 3}, {-3, 3}, {2, 4}, {-2, 4},
	{4, 2}, {-4, 2}, {0, 5}, {3, 4}, {-3, 4}, {4, 3}, {-4, 3}, {5, 0},
	{1, 5}, {-1, 5}, {5, 1}, {-5, 1}, {2, 5}, {-2, 5}, {5, 2}, {-5, 2},
	{4, 4}, {-4, 4}, {3, 5}, {-3, 5}, {5, 3}, {-5, 3}, {0, 6}, {6, 0},
	{1, 6}, {-1, 6}, {6, 1}, {-6, 1}, {2, 6}, {-2, 6}, {6, 2}, {-6, 2},
	{4, 5}, {-4, 5}, {5, 4}, {-5, 4}, {3, 6}, {-3, 6}, {6, 3}, {-6, 3},
	{0, 7}, {7, 0}, {1, 7}, {-1, 7}, {5, 5}, {-5, 5}, {7, 1}, {-7, 1},
	{4, 6}, {-4, 6}, {6, 4}, {-6, 4}, {2, 7}, {-2, 7}, {7, 2}, {-7, 2},
	{3, 7}, {-3, 7}, {7, 3}, {-7, 3}, {5, 6}, {-5, 6}, {6, 5}, {-6, 5},
	{8, 0}, {4, 7}, {-4, 7}, {7, 4}, {-7, 4}, {8, 1}, {8, 2}, {6, 6},
	{-6, 6}, {8, 3}, {5, 7}, {-5, 7}, {7, 5}, {-7, 5}, {8, 4}, {6, 7},
	{-6, 7}, {7, 6}, {-7, 6}, {8, 5}, {7, 7}, {-7, 7}, {8, 6}, {8, 7},
}

// SpecialDistance resolves one of the first 120 distance codes to an actual
// backward-reference distance given the image row stride, clamping to a
// minimum of 1 as required when dy==0 && dx<=0.
func SpecialDistance(code int, width int32) int32 {
	dx, dy := kSpecialDistances[code][0], kSpecialDistances[code][1]
	d := dy*width + dx
	if d < 1 {
		return 1
	}
	return d
}

// Lz77Config describes how a CodeSpec reserves tokens as the LZ77 escape:
// tokens >= MinSymbol encode a run length via the dedicated hybrid-integer
// LengthConf, followed by a distance token decoded through
// the stream's normal distance context.
type Lz77Config struct {
	Enabled    bool
	MinSymbol  uint32
	MinLength  uint32
	LengthConf HybridConfig
}

// DecodeLength expands an LZ77 length token (already offset by MinSymbol)
// into the actual run length: the raw token is unpacked through the
// hybrid-integer scheme like any other value, then shifted by MinLength.
func (c Lz77Config) DecodeLength(r *bitio.Reader, rawToken uint32) (uint32, error) {
	v, err := c.LengthConf.Decode(r, rawToken)
	if err != nil {
		return 0, err
	}
	return v + c.MinLength, nil
}
