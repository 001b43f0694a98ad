package modular

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jxldecoder/jxl/internal/bitio"
)

func TestRCTIdentity(t *testing.T) {
	a := NewChannel(2, 1, 0, 0)
	b := NewChannel(2, 1, 0, 0)
	c := NewChannel(2, 1, 0, 0)
	a.Data = []int32{10, 20}
	b.Data = []int32{30, 40}
	c.Data = []int32{50, 60}

	if err := RCT(a, b, c, 0); err != nil { // perm 0, kind 0: identity
		t.Fatal(err)
	}
	if a.Data[0] != 10 || b.Data[0] != 30 || c.Data[0] != 50 {
		t.Fatalf("identity RCT should not change values, got a=%v b=%v c=%v", a.Data, b.Data, c.Data)
	}
}

func TestRCTPermutationSwapsChannels(t *testing.T) {
	a := NewChannel(1, 1, 0, 0)
	b := NewChannel(1, 1, 0, 0)
	c := NewChannel(1, 1, 0, 0)
	a.Data[0], b.Data[0], c.Data[0] = 1, 2, 3

	// perm=2 (x,y,z -> y,x,z), kind=0: rctType = 2*7+0 = 14.
	if err := RCT(a, b, c, 14); err != nil {
		t.Fatal(err)
	}
	if a.Data[0] != 2 || b.Data[0] != 1 || c.Data[0] != 3 {
		t.Fatalf("perm 2 should swap a,b, got a=%d b=%d c=%d", a.Data[0], b.Data[0], c.Data[0])
	}
}

func TestRCTRejectsMismatchedDimensions(t *testing.T) {
	a := NewChannel(2, 1, 0, 0)
	b := NewChannel(1, 1, 0, 0)
	c := NewChannel(2, 1, 0, 0)
	if err := RCT(a, b, c, 0); err == nil {
		t.Fatal("expected error for mismatched channel dimensions")
	}
}

func TestRCTAdditiveChains(t *testing.T) {
	newTriple := func() (*Channel, *Channel, *Channel) {
		a := NewChannel(1, 1, 0, 0)
		b := NewChannel(1, 1, 0, 0)
		c := NewChannel(1, 1, 0, 0)
		a.Data[0], b.Data[0], c.Data[0] = 5, 10, 20
		return a, b, c
	}

	// kind 1: third += first.
	a, b, c := newTriple()
	if err := RCT(a, b, c, 1); err != nil {
		t.Fatal(err)
	}
	if a.Data[0] != 5 || b.Data[0] != 10 || c.Data[0] != 25 {
		t.Fatalf("kind 1 = %d,%d,%d, want 5,10,25", a.Data[0], b.Data[0], c.Data[0])
	}

	// kind 2: second += first.
	a, b, c = newTriple()
	if err := RCT(a, b, c, 2); err != nil {
		t.Fatal(err)
	}
	if a.Data[0] != 5 || b.Data[0] != 15 || c.Data[0] != 20 {
		t.Fatalf("kind 2 = %d,%d,%d, want 5,15,20", a.Data[0], b.Data[0], c.Data[0])
	}

	// kind 3: second += first; third += first.
	a, b, c = newTriple()
	if err := RCT(a, b, c, 3); err != nil {
		t.Fatal(err)
	}
	if a.Data[0] != 5 || b.Data[0] != 15 || c.Data[0] != 25 {
		t.Fatalf("kind 3 = %d,%d,%d, want 5,15,25", a.Data[0], b.Data[0], c.Data[0])
	}
}

func TestRCTFloorAvgChain(t *testing.T) {
	// kind 4: second += floor_avg(first, third). floor_avg(5, 20) = 2+10+(5&20&1) = 12.
	a := NewChannel(1, 1, 0, 0)
	b := NewChannel(1, 1, 0, 0)
	c := NewChannel(1, 1, 0, 0)
	a.Data[0], b.Data[0], c.Data[0] = 5, 10, 20
	if err := RCT(a, b, c, 4); err != nil {
		t.Fatal(err)
	}
	if a.Data[0] != 5 || b.Data[0] != 22 || c.Data[0] != 20 {
		t.Fatalf("kind 4 = %d,%d,%d, want 5,22,20", a.Data[0], b.Data[0], c.Data[0])
	}
}

func TestRCTSecondThirdChain(t *testing.T) {
	// kind 5: second = Y+X+(Z/2) using the original Z, then third = Z+X.
	a := NewChannel(1, 1, 0, 0)
	b := NewChannel(1, 1, 0, 0)
	c := NewChannel(1, 1, 0, 0)
	a.Data[0], b.Data[0], c.Data[0] = 5, 10, 20
	if err := RCT(a, b, c, 5); err != nil {
		t.Fatal(err)
	}
	wantY := int32(10 + 5 + (20 >> 1))
	wantZ := int32(20 + 5)
	if a.Data[0] != 5 || b.Data[0] != wantY || c.Data[0] != wantZ {
		t.Fatalf("kind 5 = %d,%d,%d, want 5,%d,%d", a.Data[0], b.Data[0], c.Data[0], wantY, wantZ)
	}
}

func TestRCTYCgCoRoundTrip(t *testing.T) {
	// kind 6 is the inverse of the YCoCg-like forward transform; feeding it
	// the forward transform's own output must recover the original triple.
	r, g, bl := int32(200), int32(100), int32(50)
	co := r - bl
	tmp := bl + (co >> 1)
	cg := g - tmp
	y := tmp + (cg >> 1)

	a := NewChannel(1, 1, 0, 0)
	b := NewChannel(1, 1, 0, 0)
	c := NewChannel(1, 1, 0, 0)
	a.Data[0], b.Data[0], c.Data[0] = y, co, cg
	if err := RCT(a, b, c, 6); err != nil {
		t.Fatal(err)
	}
	if a.Data[0] != r || b.Data[0] != g || c.Data[0] != bl {
		t.Fatalf("kind 6 inverse = %d,%d,%d, want %d,%d,%d", a.Data[0], b.Data[0], c.Data[0], r, g, bl)
	}
}

// TestRCTAdditiveChainsMultiPixel runs kind 1 over several pixels at once
// and compares the whole resulting plane triple against an expected
// triple in one shot, rather than indexing each pixel by hand.
func TestRCTAdditiveChainsMultiPixel(t *testing.T) {
	a := NewChannel(4, 1, 0, 0)
	b := NewChannel(4, 1, 0, 0)
	c := NewChannel(4, 1, 0, 0)
	a.Data = []int32{1, 2, 3, 4}
	b.Data = []int32{10, 20, 30, 40}
	c.Data = []int32{0, 5, -5, 100}

	if err := RCT(a, b, c, 1); err != nil { // kind 1: third += first
		t.Fatal(err)
	}

	wantA := []int32{1, 2, 3, 4}
	wantB := []int32{10, 20, 30, 40}
	wantC := []int32{1, 7, -2, 104}

	if diff := cmp.Diff(wantA, a.Data); diff != "" {
		t.Fatalf("channel a mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantB, b.Data); diff != "" {
		t.Fatalf("channel b mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantC, c.Data); diff != "" {
		t.Fatalf("channel c mismatch (-want +got):\n%s", diff)
	}
}

func TestRCTRejectsOutOfRangeType(t *testing.T) {
	a := NewChannel(1, 1, 0, 0)
	b := NewChannel(1, 1, 0, 0)
	c := NewChannel(1, 1, 0, 0)
	if err := RCT(a, b, c, 42); err == nil {
		t.Fatal("expected error for rct type out of range")
	}
}

func TestPredictFixed(t *testing.T) {
	c := NewChannel(3, 3, 0, 0)
	c.Set(0, 0, 5)
	c.Set(1, 0, 7)
	c.Set(0, 1, 9)

	if got := Predict(PredictorZero, c, 1, 1); got != 0 {
		t.Fatalf("PredictorZero = %d, want 0", got)
	}
	if got := Predict(PredictorLeft, c, 1, 1); got != 9 {
		t.Fatalf("PredictorLeft at (1,1) = %d, want 9 (west sample)", got)
	}
	if got := Predict(PredictorTop, c, 1, 1); got != 7 {
		t.Fatalf("PredictorTop at (1,1) = %d, want 7 (north sample)", got)
	}
}

func TestPredictIDsMatchSpecTable(t *testing.T) {
	// A 5x5 grid with distinct values at every causal neighbor position
	// lets each predictor id's exact spec formula be checked independently.
	c := NewChannel(5, 5, 0, 0)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			c.Set(x, y, int32(y*10+x))
		}
	}
	// Evaluate at (2,2): W=c(1,2)=21, N=c(2,1)=12, NW=c(1,1)=11, NE=c(3,1)=13,
	// WW=c(0,2)=20, NN=c(2,0)=2, NEE=c(4,1)=14.
	x, y := 2, 2

	if got, want := Predict(PredictorTopRight, c, x, y), int32(13); got != want {
		t.Fatalf("id 7 (TopRight/NE) = %d, want %d", got, want)
	}
	if got, want := Predict(PredictorTopLeft, c, x, y), int32(11); got != want {
		t.Fatalf("id 8 (TopLeft/NW) = %d, want %d", got, want)
	}
	if got, want := Predict(PredictorLeftLeft, c, x, y), int32(20); got != want {
		t.Fatalf("id 9 (LeftLeft/WW) = %d, want %d", got, want)
	}
	if got, want := Predict(PredictorAverage1, c, x, y), int32((21+11)/2); got != want {
		t.Fatalf("id 10 (W+NW)/2 = %d, want %d", got, want)
	}
	if got, want := Predict(PredictorAverage2, c, x, y), int32((12+11)/2); got != want {
		t.Fatalf("id 11 (N+NW)/2 = %d, want %d", got, want)
	}
	if got, want := Predict(PredictorAverage3, c, x, y), int32((12+13)/2); got != want {
		t.Fatalf("id 12 (N+NE)/2 = %d, want %d", got, want)
	}
	wantAvg4 := int32((6*12 - 2*2 + 7*21 + 20 + 14 + 3*13 + 8) / 16)
	if got := Predict(PredictorAverage4, c, x, y); got != wantAvg4 {
		t.Fatalf("id 13 (6N-2NN+7W+WW+NEE+3NE+8)/16 = %d, want %d", got, wantAvg4)
	}
}

func TestPaletteResolveExplicitEntries(t *testing.T) {
	pal := NewPalette(2, 3)
	pal.Entries[0] = []int32{255, 0, 0}
	pal.Entries[1] = []int32{0, 255, 0}

	index := NewChannel(2, 1, 0, 0)
	index.Data = []int32{0, 1}

	outs := []*Channel{
		NewChannel(2, 1, 0, 0),
		NewChannel(2, 1, 0, 0),
		NewChannel(2, 1, 0, 0),
	}
	if err := pal.Resolve(index, outs); err != nil {
		t.Fatal(err)
	}
	if outs[0].Data[0] != 255 || outs[1].Data[0] != 0 || outs[2].Data[0] != 0 {
		t.Fatalf("pixel 0 should resolve to red, got (%d,%d,%d)", outs[0].Data[0], outs[1].Data[0], outs[2].Data[0])
	}
	if outs[0].Data[1] != 0 || outs[1].Data[1] != 255 || outs[2].Data[1] != 0 {
		t.Fatalf("pixel 1 should resolve to green, got (%d,%d,%d)", outs[0].Data[1], outs[1].Data[1], outs[2].Data[1])
	}
}

func TestPaletteResolveOutputChannelCountMismatch(t *testing.T) {
	pal := NewPalette(1, 3)
	index := NewChannel(1, 1, 0, 0)
	if err := pal.Resolve(index, []*Channel{NewChannel(1, 1, 0, 0)}); err == nil {
		t.Fatal("expected error for output channel count mismatch")
	}
}

// TestReadTransformsRCTOnly decodes a single RCT transform (begin_c=0,
// rct_type=0) followed by the "no more transforms" terminator bit.
// Packed LSB-first: bit0=more(1), bits1-2=kind(00=RCT), bits3-4=begin_c
// selector(00), bits5-10=rct_type(000000), bit11=more(0).
func TestReadTransformsRCTOnly(t *testing.T) {
	r := bitio.NewReader([]byte{0x01, 0x00})
	transforms, err := ReadTransforms(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(transforms) != 1 {
		t.Fatalf("got %d transforms, want 1", len(transforms))
	}
	tr := transforms[0]
	if tr.Kind != TransformRCT || tr.BeginChannel != 0 || tr.RCTType != 0 {
		t.Fatalf("transform = %+v, want RCT begin=0 type=0", tr)
	}
}

func TestReadTransformsNone(t *testing.T) {
	r := bitio.NewReader([]byte{0x00})
	transforms, err := ReadTransforms(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(transforms) != 0 {
		t.Fatalf("got %d transforms, want 0", len(transforms))
	}
}

func TestApplyInverseRCT(t *testing.T) {
	a := NewChannel(1, 1, 0, 0)
	b := NewChannel(1, 1, 0, 0)
	c := NewChannel(1, 1, 0, 0)
	a.Data[0], b.Data[0], c.Data[0] = 1, 2, 3

	im := &Image{Channels: []*Channel{a, b, c}}
	tr := Transform{Kind: TransformRCT, BeginChannel: 0, RCTType: 0}
	if err := tr.ApplyInverse(im); err != nil {
		t.Fatal(err)
	}
	if im.Channels[0].Data[0] != 1 {
		t.Fatalf("identity RCT inverse should leave data unchanged, got %d", im.Channels[0].Data[0])
	}
}
