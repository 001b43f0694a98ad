package jxl

import (
	"testing"

	"github.com/jxldecoder/jxl/internal/modular"
)

func TestApplyTransformShapesRCTNoOp(t *testing.T) {
	shapes := []channelShape{{8, 8}, {8, 8}, {8, 8}}
	got, err := applyTransformShapes(shapes, []modular.Transform{
		{Kind: modular.TransformRCT, BeginChannel: 0, RCTType: 6},
	})
	if err != nil {
		t.Fatalf("applyTransformShapes: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	for i, s := range got {
		if s != (channelShape{8, 8}) {
			t.Fatalf("shape[%d] = %+v, want {8,8}", i, s)
		}
	}
}

func TestApplyTransformShapesPaletteShrinksToMetaIndexPair(t *testing.T) {
	// Three RGB channels at (4,4) collapse into a {meta, index} pair: a
	// meta channel (numColors wide, numOutputChannels tall) and an index
	// channel keeping the original per-pixel shape.
	shapes := []channelShape{{4, 4}, {4, 4}, {4, 4}}
	got, err := applyTransformShapes(shapes, []modular.Transform{
		{Kind: modular.TransformPalette, BeginChannel: 0, NumColors: 5, NumDeltas: 0, NumOutputChannels: 3},
	})
	if err != nil {
		t.Fatalf("applyTransformShapes: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2 (meta, index)", len(got))
	}
	if got[0] != (channelShape{width: 5, height: 3}) {
		t.Fatalf("meta shape = %+v, want {5,3}", got[0])
	}
	if got[1] != (channelShape{width: 4, height: 4}) {
		t.Fatalf("index shape = %+v, want {4,4}", got[1])
	}
}

func TestApplyTransformShapesPaletteOutOfRange(t *testing.T) {
	shapes := []channelShape{{4, 4}}
	_, err := applyTransformShapes(shapes, []modular.Transform{
		{Kind: modular.TransformPalette, BeginChannel: 0, NumColors: 5, NumOutputChannels: 3},
	})
	if err == nil {
		t.Fatal("expected error for out-of-range palette begin_c/num_c")
	}
}

func TestApplyTransformShapesPaletteThenTrailingChannel(t *testing.T) {
	// A palette over channels [0,3) followed by an untouched extra channel
	// at index 3 must land after the meta/index pair, unshifted.
	shapes := []channelShape{{4, 4}, {4, 4}, {4, 4}, {4, 4}}
	got, err := applyTransformShapes(shapes, []modular.Transform{
		{Kind: modular.TransformPalette, BeginChannel: 0, NumColors: 2, NumOutputChannels: 3},
	})
	if err != nil {
		t.Fatalf("applyTransformShapes: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3 (meta, index, trailing extra)", len(got))
	}
	if got[2] != (channelShape{4, 4}) {
		t.Fatalf("trailing channel shape = %+v, want {4,4}", got[2])
	}
}
