package vardct

import "testing"

func TestComputeBlockContextBaseUsesTopLeftLFBucket(t *testing.T) {
	lfg := NewLfGroup(2, 1)
	coeffOffset := 0
	if err := PlaceVarblock(lfg, 0, 0, 0, 3, &coeffOffset); err != nil {
		t.Fatalf("PlaceVarblock: %v", err)
	}
	if err := PlaceVarblock(lfg, 1, 0, 0, 7, &coeffOffset); err != nil {
		t.Fatalf("PlaceVarblock: %v", err)
	}
	lfg.LFIndices.Set(0, 0, 2)
	lfg.LFIndices.Set(1, 0, 5)

	lg := &LfGlobal{BlockCtxMap: defaultBlockContextMap()}
	got := ComputeBlockContextBase(lg, lfg)
	if len(got) != 2 {
		t.Fatalf("len(ComputeBlockContextBase) = %d, want 2", len(got))
	}
	want0 := lg.BlockCtxMap.ClusterOf(0, 2, 0)
	want1 := lg.BlockCtxMap.ClusterOf(0, 5, 0)
	if got[0] != want0 || got[1] != want1 {
		t.Fatalf("ComputeBlockContextBase = %v, want [%d %d]", got, want0, want1)
	}
}

func TestCellOriginFindsTopLeft(t *testing.T) {
	lfg := NewLfGroup(2, 2)
	coeffOffset := 0
	if err := PlaceVarblock(lfg, 0, 0, 1, 1, &coeffOffset); err != nil {
		t.Fatalf("PlaceVarblock: %v", err)
	}
	x8, y8 := cellOrigin(lfg, 0)
	if x8 != 0 || y8 != 0 {
		t.Fatalf("cellOrigin = (%d,%d), want (0,0)", x8, y8)
	}
}
