package vardct

import (
	"github.com/jxldecoder/jxl/internal/bitio"
	"github.com/jxldecoder/jxl/internal/matree"
)

// BlockContextMap assigns one of a small number of contexts to each
// (channel, LF-threshold-bucket) combination seen while decoding HF
// coefficients; the default map has 39 contexts, matching the fixed
// table the format falls back to when none is explicitly coded.
type BlockContextMap struct {
	NumContexts int
	LFThresholds [3][]int32
	QFThresholds []int32
	ClusterOf    func(channel, lfBucket, qfBucket int) int
}

func defaultBlockContextMap() *BlockContextMap {
	return &BlockContextMap{
		NumContexts: 39,
		ClusterOf: func(channel, lfBucket, qfBucket int) int {
			return (channel*3+lfBucket)%39
		},
	}
}

// LfGlobal holds the frame-wide VarDCT state read once per frame, before
// any LfGroup or HfGlobal section.
type LfGlobal struct {
	GlobalScale  float32
	QuantLF      float32
	BlockCtxMap  *BlockContextMap
	InvColourFactor float32
	BaseCorrX, BaseCorrB float32
	XFactorLF, BFactorLF int32
	GlobalTree   *matree.Tree
}

var lfScaleConfig = bitio.U32Config{
	Offsets: [4]uint32{1, 2049, 4097, 8193},
	Lens:    [4]uint{11, 11, 12, 16},
}

// ReadLfGlobal reads the LfGlobal section. w8/h8 are the frame's 8x-reduced
// dimensions, used to bound the optional global MA tree's node count per
// matree.MaxTreeSizeFor (the tree governs the frame's 3-channel LF image).
func ReadLfGlobal(r *bitio.Reader, w8, h8 int) (*LfGlobal, error) {
	lg := &LfGlobal{BlockCtxMap: defaultBlockContextMap()}

	gs, err := r.U32(lfScaleConfig)
	if err != nil {
		return nil, err
	}
	lg.GlobalScale = float32(gs)

	ql, err := r.U32(lfScaleConfig)
	if err != nil {
		return nil, err
	}
	lg.QuantLF = float32(ql)

	haveExplicitMap, err := r.U(1)
	if err != nil {
		return nil, err
	}
	if haveExplicitMap == 1 {
		n, err := r.AtMost(255)
		if err != nil {
			return nil, err
		}
		lg.BlockCtxMap = &BlockContextMap{NumContexts: int(n) + 1, ClusterOf: func(channel, lfBucket, qfBucket int) int {
			return (channel*7 + lfBucket*3 + qfBucket) % (int(n) + 1)
		}}
	}

	icf, err := r.U32(bitio.U32Config{Offsets: [4]uint32{84, 256, 256, 256}, Lens: [4]uint{0, 8, 16, 16}})
	if err != nil {
		return nil, err
	}
	lg.InvColourFactor = 1.0 / float32(icf)

	bcx, err := r.F16()
	if err != nil {
		return nil, err
	}
	lg.BaseCorrX = bcx
	bcb, err := r.F16()
	if err != nil {
		return nil, err
	}
	lg.BaseCorrB = bcb

	xf, err := r.U(8)
	if err != nil {
		return nil, err
	}
	lg.XFactorLF = int32(xf) - 128
	bf, err := r.U(8)
	if err != nil {
		return nil, err
	}
	lg.BFactorLF = int32(bf) - 128

	haveTree, err := r.U(1)
	if err != nil {
		return nil, err
	}
	if haveTree == 1 {
		treeSpec, err := matree.ReadTreeSpec(r)
		if err != nil {
			return nil, err
		}
		tree, err := matree.DecodeTree(r, treeSpec, matree.MaxTreeSizeFor(w8, h8, 3))
		if err != nil {
			return nil, err
		}
		lg.GlobalTree = tree
	}

	return lg, nil
}
