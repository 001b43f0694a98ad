package bitio

import "testing"

func TestU(t *testing.T) {
	// Bits packed LSB-first: byte0 = 0b1011_0101.
	r := NewReader([]byte{0b10110101})
	tests := []struct {
		n    uint
		want uint32
	}{
		{1, 1},
		{2, 0b10},
		{3, 0b110},
	}
	for _, tc := range tests {
		got, err := r.U(tc.n)
		if err != nil {
			t.Fatalf("U(%d): %v", tc.n, err)
		}
		if got != tc.want {
			t.Fatalf("U(%d) = %b, want %b", tc.n, got, tc.want)
		}
	}
}

func TestUShortRead(t *testing.T) {
	r := NewReader([]byte{0xff})
	if _, err := r.U(16); err == nil {
		t.Fatal("expected short read error")
	}
}

func TestPeekDrop(t *testing.T) {
	r := NewReader([]byte{0b00001111})
	peeked, err := r.PeekU(4)
	if err != nil {
		t.Fatal(err)
	}
	if peeked != 0b1111 {
		t.Fatalf("PeekU(4) = %b, want 1111", peeked)
	}
	r.Drop(4)
	v, err := r.U(4)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0b0000 {
		t.Fatalf("U(4) after drop = %b, want 0000", v)
	}
}

func TestCheckpointRewind(t *testing.T) {
	r := NewReader([]byte{0xff, 0x00})
	r.Checkpoint()
	if _, err := r.U(8); err != nil {
		t.Fatal(err)
	}
	r.Rewind()
	v, err := r.U(8)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xff {
		t.Fatalf("U(8) after rewind = %#x, want 0xff", v)
	}
}

func TestU32Config(t *testing.T) {
	cfg := U32Config{
		Offsets: [4]uint32{0, 1, 2, 18},
		Lens:    [4]uint{0, 0, 4, 12},
	}
	// selector=0 (2 bits '00'), no payload bits -> value 0.
	r := NewReader([]byte{0b00000000})
	v, err := r.U32(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0 {
		t.Fatalf("U32 = %d, want 0", v)
	}
}

func TestAtMost(t *testing.T) {
	// max=5 -> 3 bits read; value 6 (110) should be rejected as out-of-range.
	r := NewReader([]byte{0b00000110})
	if _, err := r.AtMost(5); err == nil {
		t.Fatal("expected range error for value exceeding max")
	}
}

func TestZeroPadToByte(t *testing.T) {
	r := NewReader([]byte{0b00000001})
	if _, err := r.U(1); err != nil {
		t.Fatal(err)
	}
	if err := r.ZeroPadToByte(); err != nil {
		t.Fatalf("expected clean pad, got %v", err)
	}
}

func TestZeroPadToByteRejectsNonZero(t *testing.T) {
	r := NewReader([]byte{0b00000011})
	if _, err := r.U(1); err != nil {
		t.Fatal(err)
	}
	if err := r.ZeroPadToByte(); err == nil {
		t.Fatal("expected non-zero padding to be rejected")
	}
}

func TestF16RoundTrip(t *testing.T) {
	// 1.0 in IEEE-754 half precision: sign=0 exp=15 mant=0 -> 0x3C00.
	r := NewReader([]byte{0x00, 0x3C})
	v, err := r.F16()
	if err != nil {
		t.Fatal(err)
	}
	if v != 1.0 {
		t.Fatalf("F16() = %v, want 1.0", v)
	}
}

func TestF16RejectsInf(t *testing.T) {
	// exp=0x1f, mant=0 -> +Inf, must be rejected.
	r := NewReader([]byte{0x00, 0x7C})
	if _, err := r.F16(); err == nil {
		t.Fatal("expected non-finite float16 to be rejected")
	}
}

func TestByteAligned(t *testing.T) {
	r := NewReader([]byte{0xff, 0xff})
	if !r.ByteAligned() {
		t.Fatal("fresh reader should be byte aligned")
	}
	if _, err := r.U(3); err != nil {
		t.Fatal(err)
	}
	if r.ByteAligned() {
		t.Fatal("reader should not be byte aligned after U(3)")
	}
}
