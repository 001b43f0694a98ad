package entropy

import (
	"testing"

	"github.com/jxldecoder/jxl/internal/bitio"
)

func TestUnpackSigned(t *testing.T) {
	tests := []struct {
		in   uint32
		want int32
	}{
		{0, 0},
		{1, -1},
		{2, 1},
		{3, -2},
		{4, 2},
	}
	for _, tc := range tests {
		if got := UnpackSigned(tc.in); got != tc.want {
			t.Errorf("UnpackSigned(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestHybridConfigDecodeBelowSplit(t *testing.T) {
	cfg := HybridConfig{SplitExp: 4, MsbInToken: 1, LsbInToken: 1}
	r := bitio.NewReader(nil)
	got, err := cfg.Decode(r, 5) // 5 < 1<<4, passes through unchanged
	if err != nil {
		t.Fatal(err)
	}
	if got != 5 {
		t.Fatalf("Decode(5) = %d, want 5", got)
	}
}

func TestReadClusterMapTrivial(t *testing.T) {
	cm, err := ReadClusterMap(bitio.NewReader(nil), 1)
	if err != nil {
		t.Fatal(err)
	}
	if cm.NumClusters != 1 || len(cm.Cluster) != 1 || cm.Cluster[0] != 0 {
		t.Fatalf("trivial cluster map = %+v, want {[0],1}", cm)
	}
}

// TestAnsAllMassSingleSymbol builds a distribution where all 4096 units of
// probability mass belong to symbol 0 and checks that decoding always
// resolves to that symbol and leaves the state at the canonical init value,
// a decode that needs no bitstream input at all.
func TestAnsAllMassSingleSymbol(t *testing.T) {
	const logAlphaSize = 5
	dist := make([]uint32, 1<<logAlphaSize)
	dist[0] = AnsDistTotal

	table, err := BuildAliasTable(dist, logAlphaSize)
	if err != nil {
		t.Fatal(err)
	}

	r := bitio.NewReader(nil)
	state := NewAnsState()
	for i := 0; i < 8; i++ {
		sym, err := state.Decode(r, table)
		if err != nil {
			t.Fatalf("Decode #%d: %v", i, err)
		}
		if sym != 0 {
			t.Fatalf("Decode #%d = %d, want 0", i, sym)
		}
	}
	if err := state.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestSpecialDistance(t *testing.T) {
	// code 0 is (dx=0, dy=1): one row back, distance == width.
	if got := SpecialDistance(0, 100); got != 100 {
		t.Fatalf("SpecialDistance(0, 100) = %d, want 100", got)
	}
	// code 1 is (dx=1, dy=0): previous pixel, distance == 1.
	if got := SpecialDistance(1, 100); got != 1 {
		t.Fatalf("SpecialDistance(1, 100) = %d, want 1", got)
	}
}

// TestAnsLogCountTableIsCompletePrefixCode checks the fixed prefix code
// ReadAnsDistribution's mode-0 path uses for per-symbol log-counts (see
// ansLogCountLengths) is what it claims to be: a complete code (no wasted
// codespace, so every 4-bit lookahead resolves directly with no overflow
// scan) covering all 14 symbols.
func TestAnsLogCountTableIsCompletePrefixCode(t *testing.T) {
	if ansLogCountTable.MaxLen > 4 {
		t.Fatalf("MaxLen = %d, want <= 4", ansLogCountTable.MaxLen)
	}
	if len(ansLogCountTable.Overflow) != 0 {
		t.Fatalf("expected a complete max-length-4 code to need no overflow entries, got %d", len(ansLogCountTable.Overflow))
	}
	seen := make(map[uint16]bool)
	for _, e := range ansLogCountTable.Fast {
		if e.Len == 0 {
			t.Fatal("complete code should leave no unfilled fast-table slot")
		}
		seen[e.Symbol] = true
	}
	if len(seen) != len(ansLogCountLengths) {
		t.Fatalf("table resolves to %d distinct symbols, want %d", len(seen), len(ansLogCountLengths))
	}
}

func TestReadPrefixCodeSingleSymbol(t *testing.T) {
	table, err := ReadPrefixCode(bitio.NewReader(nil), 1)
	if err != nil {
		t.Fatal(err)
	}
	sym, err := table.Decode(bitio.NewReader(nil))
	if err != nil {
		t.Fatal(err)
	}
	if sym != 0 {
		t.Fatalf("Decode = %d, want 0", sym)
	}
}

// TestReadPrefixCodeSimpleTwoSymbol exercises hskip==1's two-symbol shape:
// both codewords get length 1, distinguished by a single following bit.
// Bits, LSB-first: hskip=01, nsymBits=01 (nsym=2), sym0=01, sym1=11.
func TestReadPrefixCodeSimpleTwoSymbol(t *testing.T) {
	r := bitio.NewReader([]byte{0b11_01_01_01})
	_, err := ReadPrefixCode(r, 4)
	if err != nil {
		t.Fatal(err)
	}
}
