// Package matree implements the Meta-Adaptive tree: a small decision tree,
// itself serialized through the entropy subsystem, that picks a predictor
// and an entropy context for every pixel the Modular decoder visits. The
// branch/leaf tagged-union shape and depth-first decode loop follow
// github.com/deepteams/webp/internal/vp8.parseIntraMode's tree-walking
// decode style, generalized from VP8's fixed 9-leaf intra-mode tree to an
// arbitrarily sized, bitstream-defined tree.
package matree

import (
	"github.com/jxldecoder/jxl/internal/bitio"
	"github.com/jxldecoder/jxl/internal/entropy"
	"github.com/jxldecoder/jxl/internal/jxlerr"
)

// absoluteMaxTreeSize is the hard node-count ceiling spec.md:114 defines
// regardless of image size: min(2^20, ...).
const absoluteMaxTreeSize = 1 << 20

// MaxTreeDepth is the hard recursion-depth ceiling spec.md:114 and spec §8
// both require: depth <= 64.
const MaxTreeDepth = 64

// MaxTreeSizeFor computes the image-size-dependent node ceiling spec.md:114
// defines: min(2^20, 1024 + clamp(w*h*nchan)/16). clamp guards the
// w*h*nchan product against overflowing an int before the division; images
// this decoder accepts are themselves bounded well below that clamp by
// internal/limits, so the clamp only ever matters for a value this decoder
// would already have rejected upstream.
func MaxTreeSizeFor(w, h, nchan int) int {
	const clampCap = int64(1) << 40
	product := int64(w) * int64(h) * int64(nchan)
	if product < 0 {
		product = 0
	}
	if product > clampCap {
		product = clampCap
	}
	size := 1024 + int(product/16)
	if size > absoluteMaxTreeSize {
		size = absoluteMaxTreeSize
	}
	return size
}

// NumStaticProperties is the count of fixed per-pixel properties evaluated
// at a branch (channel index, group position x/y, neighbor values, etc.)
// before the four-per-previous-channel dynamic properties begin.
const NumStaticProperties = 16

// treeNodeAlphabetSize bounds the raw token alphabet used to decode the
// tree's six per-node fields (property, predictor, offset, mul-log,
// mul-bits, split value), all read through one shared CodeSpec.
const treeNodeAlphabetSize = 256

// treeContextProperty, treeContextPredictor, ... name the six fixed
// contexts the tree's own CodeSpec dedicates one per field, independent
// of tree depth.
const (
	treeContextProperty = iota
	treeContextPredictor
	treeContextOffset
	treeContextMulLog
	treeContextMulBits
	treeContextSplitVal
	treeNumContexts
)

// Node is one MA tree node. Leaf nodes (Property < 0) carry Predictor and
// the per-leaf entropy context/cluster index Context; branch nodes compare
// Property against SplitVal and descend to Left (>) or Right (<=).
type Node struct {
	Property int32
	SplitVal int32
	Left     int32
	Right    int32

	Predictor       uint8
	Context         int32
	Multiplier      uint32
	PredictorOffset int32
}

// Tree is a decoded MA tree ready for per-pixel evaluation.
type Tree struct {
	Nodes []Node
}

// Properties is the per-pixel evaluation context passed to Eval: static
// properties (channel, position, neighbor samples, local gradient/texture
// estimates) plus carried-over per-previous-channel properties used by
// multi-channel correlation splits.
type Properties []int32

// ReadTreeSpec reads the CodeSpec the tree's own node stream is coded
// with: a fixed treeNumContexts-context, LZ77-eligible entropy code,
// exactly like any other CodeSpec in the format.
func ReadTreeSpec(r *bitio.Reader) (*entropy.CodeSpec, error) {
	return entropy.ReadCodeSpec(r, treeNumContexts, treeNodeAlphabetSize)
}

// DecodeTree decodes a full MA tree: a depth-first preorder walk where
// each node either is a branch (reads property + split value, then
// recurses into two children) or a leaf (reads predictor, offset,
// multiplier, and uses the running context counter as its entropy
// context). maxTreeSize is the image-size-dependent node ceiling from
// MaxTreeSizeFor; depth is tracked against MaxTreeDepth independently of
// node count, since a pathologically unbalanced tree can exceed the depth
// bound long before the node-count bound.
func DecodeTree(r *bitio.Reader, spec *entropy.CodeSpec, maxTreeSize int) (*Tree, error) {
	state := spec.NewState()
	t := &Tree{}
	nodeCount := 0
	leafCount := int32(0)

	readSigned := func(ctx int) (int32, error) {
		raw, err := state.Read(r, spec, ctx)
		if err != nil {
			return 0, err
		}
		return entropy.UnpackSigned(raw), nil
	}

	var build func(depth int) (int32, error)
	build = func(depth int) (int32, error) {
		if depth > MaxTreeDepth {
			return 0, jxlerr.New(jxlerr.ErrTreeSize, "MA tree exceeds depth limit")
		}
		if nodeCount >= maxTreeSize {
			return 0, jxlerr.New(jxlerr.ErrTreeSize, "MA tree exceeds node limit")
		}
		property, err := readSigned(treeContextProperty)
		if err != nil {
			return 0, err
		}
		idx := int32(len(t.Nodes))
		t.Nodes = append(t.Nodes, Node{})
		nodeCount++

		if property < 0 {
			predictor, err := readSigned(treeContextPredictor)
			if err != nil {
				return 0, err
			}
			offset, err := readSigned(treeContextOffset)
			if err != nil {
				return 0, err
			}
			mulLog, err := readSigned(treeContextMulLog)
			if err != nil {
				return 0, err
			}
			mulBits, err := readSigned(treeContextMulBits)
			if err != nil {
				return 0, err
			}
			if predictor < 0 || predictor > 13 {
				return 0, jxlerr.New(jxlerr.ErrPredictor, "predictor id out of range")
			}
			ctx := leafCount
			leafCount++
			t.Nodes[idx] = Node{
				Property:        -1,
				Predictor:       uint8(predictor),
				PredictorOffset: offset,
				Multiplier:      (uint32(mulBits) + 1) << uint32(mulLog),
				Context:         ctx,
			}
			return idx, nil
		}

		splitVal, err := readSigned(treeContextSplitVal)
		if err != nil {
			return 0, err
		}
		t.Nodes[idx].Property = property
		t.Nodes[idx].SplitVal = splitVal

		left, err := build(depth + 1)
		if err != nil {
			return 0, err
		}
		right, err := build(depth + 1)
		if err != nil {
			return 0, err
		}
		t.Nodes[idx].Left = left
		t.Nodes[idx].Right = right
		return idx, nil
	}

	if _, err := build(0); err != nil {
		return nil, err
	}
	if err := state.Finish(); err != nil {
		return nil, err
	}
	return t, nil
}

// Eval walks the tree for one pixel's Properties and returns the leaf
// node selected.
func (t *Tree) Eval(props Properties) (*Node, error) {
	idx := int32(0)
	for {
		if int(idx) >= len(t.Nodes) {
			return nil, jxlerr.New(jxlerr.ErrTree, "tree walk left valid range")
		}
		n := &t.Nodes[idx]
		if n.Property < 0 {
			return n, nil
		}
		p := int32(0)
		if int(n.Property) < len(props) {
			p = props[n.Property]
		}
		if p > n.SplitVal {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
}

// NumLeaves reports how many distinct leaf contexts DecodeTree assigned,
// the count a caller must size its per-context CodeSpec to.
func (t *Tree) NumLeaves() int {
	n := 0
	for _, node := range t.Nodes {
		if node.Property < 0 {
			n++
		}
	}
	return n
}
