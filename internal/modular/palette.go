package modular

import "github.com/jxldecoder/jxl/internal/jxlerr"

// paletteDeltas is the fixed 144-entry synthetic-color table used to
// extend an explicit palette with procedurally generated entries once the
// encoder-provided entries run out (the format's "delta palette" tail).
// Entries are generated on the fly from base-5/base-6 digit expansions of
// the index rather than spelled out as a literal table; paletteDelta
// below reproduces that generation rule.
const (
	paletteNumDeltas = 144
)

// paletteDelta synthesizes the i-th procedural palette entry (0-indexed
// within the synthetic tail) as a signed (dr, dg, db) offset, using a
// base-5-then-base-6 digit decomposition of the index so a decoder never
// needs to store a literal table.
func paletteDelta(i int) (int32, int32, int32) {
	i = i % paletteNumDeltas
	hi := i / 5
	lo := i % 5
	dg := int32(lo) - 2
	dr := int32(hi%6) - 3
	db := int32(hi/6) - 2
	return dr, dg, db
}

// Palette resolves palette-transformed channels back to their original
// colors: channel 0 holds an index per pixel into the combined
// explicit+procedural palette; numColors of those indices are explicit
// entries carried (as extra channels produced by the Modular decode
// itself), and indices beyond numColors resolve to procedural deltas
// relative to the highest explicit color.
type Palette struct {
	NumColors      int
	NumDeltas      int
	NumChannels    int // colors per palette entry (3 for RGB, 1 for gray)
	Entries        [][]int32
}

// NewPalette allocates a palette with the given explicit entry count and
// channel depth; Entries must be filled by the caller from the decoded
// palette channel before Resolve is used.
func NewPalette(numColors, numChannels int) *Palette {
	e := make([][]int32, numColors)
	for i := range e {
		e[i] = make([]int32, numChannels)
	}
	return &Palette{NumColors: numColors, NumChannels: numChannels, Entries: e}
}

// Resolve replaces the index channel's values with the actual colors,
// writing each resolved channel into outs (len(outs) == NumChannels).
func (p *Palette) Resolve(index *Channel, outs []*Channel) error {
	if len(outs) != p.NumChannels {
		return jxlerr.New(jxlerr.ErrPalChan, "palette output channel count mismatch")
	}
	for _, o := range outs {
		if o.Width != index.Width || o.Height != index.Height {
			return jxlerr.New(jxlerr.ErrPalData, "palette output dimensions mismatch index channel")
		}
	}
	for i, idx := range index.Data {
		colors, err := p.colorFor(idx)
		if err != nil {
			return err
		}
		for ch, o := range outs {
			o.Data[i] = colors[ch]
		}
	}
	return nil
}

func (p *Palette) colorFor(idx int32) ([]int32, error) {
	if idx >= 0 && int(idx) < p.NumColors {
		return p.Entries[idx], nil
	}
	if idx < 0 {
		// Negative indices select the procedural tail directly (common
		// grayscale/RGB deltas without consulting an explicit entry).
		dr, dg, db := paletteDelta(int(-idx) - 1)
		return expandDelta(p.NumChannels, dr, dg, db), nil
	}
	procIdx := int(idx) - p.NumColors
	if procIdx >= p.NumDeltas && p.NumDeltas != 0 {
		return nil, jxlerr.New(jxlerr.ErrPalParam, "palette index beyond declared deltas")
	}
	dr, dg, db := paletteDelta(procIdx)
	base := p.Entries[p.NumColors-1]
	colors := expandDelta(p.NumChannels, dr, dg, db)
	for i := range colors {
		colors[i] += base[i%len(base)]
	}
	return colors, nil
}

func expandDelta(numChannels int, dr, dg, db int32) []int32 {
	switch numChannels {
	case 1:
		return []int32{dg}
	case 3:
		return []int32{dr, dg, db}
	default:
		out := make([]int32, numChannels)
		out[0], out[1%numChannels], out[2%numChannels] = dr, dg, db
		return out
	}
}
