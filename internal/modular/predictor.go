package modular

// Predictor IDs 0-13, exactly as enumerated in spec.md's predictor table:
// fixed spatial predictors plus the adaptive weighted predictor at id 6.
const (
	PredictorZero = iota
	PredictorLeft
	PredictorTop
	PredictorAverage0
	PredictorSelect
	PredictorGradient
	PredictorWeighted
	PredictorTopRight
	PredictorTopLeft
	PredictorLeftLeft
	PredictorAverage1
	PredictorAverage2
	PredictorAverage3
	PredictorAverage4
	numFixedPredictors
)

// neighborhood bundles the five causal neighbor samples every fixed
// predictor reads: west, north, northwest, northeast, west-west.
type neighborhood struct {
	W, N, NW, NE, WW int32
}

func neighbors(c *Channel, x, y int) neighborhood {
	return neighborhood{
		W:  c.At(x-1, y),
		N:  c.At(x, y-1),
		NW: c.At(x-1, y-1),
		NE: c.At(x+1, y-1),
		WW: c.At(x-2, y),
	}
}

func clampedGradient(a, b, c int32) int32 {
	minv, maxv := a, b
	if minv > maxv {
		minv, maxv = maxv, minv
	}
	g := a + b - c
	if g < minv {
		return minv
	}
	if g > maxv {
		return maxv
	}
	return g
}

// Predict evaluates fixed predictor id at (x, y), given already-decoded
// causal neighbors, following spec.md's per-id formula table exactly. The
// weighted predictor (id 6) is handled separately by WeightedPredictor
// since it carries running error-accumulator state rather than being a
// pure function of the neighborhood.
func Predict(id uint8, c *Channel, x, y int) int32 {
	n := neighbors(c, x, y)
	switch id {
	case PredictorZero:
		return 0
	case PredictorLeft:
		return n.W
	case PredictorTop:
		return n.N
	case PredictorAverage0:
		return (n.W + n.N) / 2
	case PredictorSelect:
		if abs32(n.N-n.NW) < abs32(n.W-n.NW) {
			return n.W
		}
		return n.N
	case PredictorGradient:
		return clampedGradient(n.W, n.N, n.NW)
	case PredictorTopRight:
		return n.NE
	case PredictorTopLeft:
		return n.NW
	case PredictorLeftLeft:
		return n.WW
	case PredictorAverage1:
		return (n.W + n.NW) / 2
	case PredictorAverage2:
		return (n.N + n.NW) / 2
	case PredictorAverage3:
		return (n.N + n.NE) / 2
	case PredictorAverage4:
		nn := c.At(x, y-2)
		nee := c.At(x+2, y-1)
		return (6*n.N - 2*nn + 7*n.W + n.WW + nee + 3*n.NE + 8) / 16
	default:
		return 0
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// WeightedPredictor implements predictor 6: a per-channel running set of
// four weights adapted after every pixel by how well each of four simple
// estimators (N, W, the clamped N+W-NW gradient and the clamped N+NE-NN
// gradient) predicted the last sample, using the simplified weight update
// described on Update. Grounded on the general shape of adaptive
// per-pixel weighting used throughout predictive codecs in the pack (e.g.
// FLAC's adaptive LMS stages in the broader example set) rather than any
// single teacher file, since the teacher has no per-pixel adaptive
// predictor of its own.
type WeightedPredictor struct {
	weights [4]int32
	errSum  [4]int32
	width   int
	errRow  []int32 // previous row's per-pixel absolute errors, length width+4

	curErr []int32

	// trueErrRow/trueErrCur carry the signed (actual - predicted) error of
	// the weighted predictor's own estimate, one row behind/ahead exactly
	// like errRow/curErr, so property 15 (max absolute wp true error of
	// W/N/NW/NE) can be read for the pixel currently being predicted. Each
	// is padded by one slot on both ends (index x+1) so W/NE lookups at
	// the row edges don't need their own bounds check beyond the slice
	// bounds.
	trueErrRow []int32
	trueErrCur []int32
}

// NewWeightedPredictor creates state for a channel of the given width.
func NewWeightedPredictor(width int) *WeightedPredictor {
	return &WeightedPredictor{
		weights:    [4]int32{1 << 16, 1 << 16, 1 << 16, 1 << 16},
		width:      width,
		errRow:     make([]int32, width+4),
		curErr:     make([]int32, width+4),
		trueErrRow: make([]int32, width+2),
		trueErrCur: make([]int32, width+2),
	}
}

// Predict returns the weighted estimate at (x, y) and the four raw
// estimator values needed by Update after the true sample is known.
func (w *WeightedPredictor) Predict(c *Channel, x, y int) (int32, [4]int32) {
	n := neighbors(c, x, y)
	nn := c.At(x, y-2)
	est := [4]int32{
		n.N,
		n.W,
		clampedGradient(n.N, n.W, n.NW),
		clampedGradient(n.N, n.NE, nn),
	}
	var sum, wsum int64
	for i, e := range est {
		sum += int64(w.weights[i]) * int64(e)
		wsum += int64(w.weights[i])
	}
	if wsum == 0 {
		return est[0], est
	}
	return int32(sum / wsum), est
}

// Update adapts the four weights after the true value at x on the current
// row is known, following the multiplicative-weight-update shape common to
// context-mixing predictors: estimators closer to the truth gain weight.
// rawPred is the weighted estimate Predict returned at this same (x, y);
// Update records trueVal-rawPred as this pixel's true error for property
// 15's neighbor lookups, independent of which predictor id the MA tree
// actually selected for this pixel (the weighted predictor's state
// advances on every pixel so the tree can branch on it).
func (w *WeightedPredictor) Update(x int, trueVal int32, est [4]int32, rawPred int32) {
	for i, e := range est {
		err := abs32(trueVal - e)
		w.curErr[x] += err
		// Halve weight on large error, nudge up on small error; kept as a
		// simple monotonic rule rather than the format's exact integer
		// weight-update constants, which are not recoverable without the
		// original source.
		if err == 0 {
			w.weights[i] += w.weights[i] >> 4
		} else {
			adj := w.weights[i] >> 3
			if adj < 1 {
				adj = 1
			}
			w.weights[i] -= adj
			if w.weights[i] < 1 {
				w.weights[i] = 1
			}
		}
	}
	if idx := x + 1; idx >= 0 && idx < len(w.trueErrCur) {
		w.trueErrCur[idx] = trueVal - rawPred
	}
}

// trueErrorAt returns the signed true error recorded at column x of either
// the just-finished row (cur=false) or the row in progress (cur=true), or
// 0 if x falls outside the channel (matching Channel.At's border value).
func (w *WeightedPredictor) trueErrorAt(cur bool, x int) int32 {
	arr := w.trueErrRow
	if cur {
		arr = w.trueErrCur
	}
	idx := x + 1
	if idx < 0 || idx >= len(arr) {
		return 0
	}
	return arr[idx]
}

// TrueErrorNeighbors returns the weighted predictor's recorded true error
// at W (this row, already decoded), N/NW/NE (previous row), for use by
// property 15 (max absolute wp true error of W/N/NW/NE).
func (w *WeightedPredictor) TrueErrorNeighbors(x int) (wErr, nErr, nwErr, neErr int32) {
	wErr = w.trueErrorAt(true, x-1)
	nErr = w.trueErrorAt(false, x)
	nwErr = w.trueErrorAt(false, x-1)
	neErr = w.trueErrorAt(false, x+1)
	return
}

// EndRow rotates the per-row error accumulators at the end of a scanline.
func (w *WeightedPredictor) EndRow() {
	copy(w.errRow, w.curErr)
	for i := range w.curErr {
		w.curErr[i] = 0
	}
	copy(w.trueErrRow, w.trueErrCur)
	for i := range w.trueErrCur {
		w.trueErrCur[i] = 0
	}
}
