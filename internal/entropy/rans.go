package entropy

import (
	"github.com/jxldecoder/jxl/internal/bitio"
	"github.com/jxldecoder/jxl/internal/jxlerr"
)

// AnsDistTotal is the fixed point all rANS distributions must sum to.
const AnsDistTotal = 1 << 12

// AnsInitState is the rANS decoder's initial/final state constant.
const AnsInitState = 0x130000

// AliasBucket is one slot of the alias-table decoder (§4.3): a symbol
// owns the low `Cutoff` part of the bucket directly, and the remainder is
// redirected to `Other` (a different symbol sharing the same bucket).
type AliasBucket struct {
	Cutoff uint32
	Other  uint16
	Offset uint32 // cumulative frequency offset for Other's share
	Symbol uint16
}

// AnsTable is a fully constructed rANS alias table over an alphabet of size
// 2^LogAlphaSize.
type AnsTable struct {
	LogAlphaSize uint32
	Dist         []uint32 // per-symbol frequency, sums to AnsDistTotal
	Buckets      []AliasBucket
}

// BuildAliasTable constructs the alias-table decoder structure from a
// frequency distribution summing to AnsDistTotal, using the
// underfull/overfull stack algorithm described in §4.3: repeatedly move
// probability mass from the top of the overfull stack into the top of the
// underfull stack until every bucket is exactly full.
func BuildAliasTable(dist []uint32, logAlphaSize uint32) (*AnsTable, error) {
	n := len(dist)
	bucketSize := uint32(1) << (12 - logAlphaSize)
	numBuckets := uint32(1) << logAlphaSize

	buckets := make([]AliasBucket, numBuckets)
	// Each under/over entry tracks the probability mass still held by one
	// bucket's own symbol: buckets whose mass already equals bucketSize are
	// "exactly full" and never touched.
	type entry struct {
		symbol uint16
		prob   uint32 // remaining probability mass for this symbol's bucket
		bucket uint32 // bucket index this mass currently lives in
	}
	var under, over []entry

	for b := uint32(0); b < numBuckets; b++ {
		var sym uint16
		var prob uint32
		if int(b) < n {
			sym = uint16(b)
			prob = dist[b]
		}
		buckets[b] = AliasBucket{Cutoff: prob, Symbol: sym}
		if prob < bucketSize {
			under = append(under, entry{symbol: sym, prob: prob, bucket: b})
		} else if prob > bucketSize {
			over = append(over, entry{symbol: sym, prob: prob, bucket: b})
		}
	}

	for len(under) > 0 && len(over) > 0 {
		u := under[len(under)-1]
		under = under[:len(under)-1]
		o := over[len(over)-1]
		over = over[:len(over)-1]

		need := bucketSize - u.prob
		buckets[u.bucket].Other = o.symbol
		buckets[u.bucket].Offset = o.prob - need

		o.prob -= need
		buckets[o.bucket].Cutoff = o.prob
		if o.prob < bucketSize {
			if o.prob > 0 {
				under = append(under, entry{symbol: o.symbol, prob: o.prob, bucket: o.bucket})
			}
		} else if o.prob > bucketSize {
			over = append(over, entry{symbol: o.symbol, prob: o.prob, bucket: o.bucket})
		}
	}

	return &AnsTable{LogAlphaSize: logAlphaSize, Dist: append([]uint32(nil), dist...), Buckets: buckets}, nil
}

// AnsState is the running rANS decoder state for one CodeState.
type AnsState struct {
	state uint32
}

// NewAnsState returns a decoder state primed to AnsInitState.
func NewAnsState() *AnsState { return &AnsState{state: AnsInitState} }

// Decode pulls one symbol from the rANS stream, advancing state and
// refilling from r in 16-bit increments whenever state drops below 2^16.
func (a *AnsState) Decode(r *bitio.Reader, t *AnsTable) (uint16, error) {
	idx := a.state & 0xfff
	bucketSize := uint32(1) << (12 - t.LogAlphaSize)
	bucket := idx / bucketSize
	pos := idx % bucketSize

	b := t.Buckets[bucket]
	var symbol uint16
	var freq, offset uint32
	if pos < b.Cutoff {
		symbol = b.Symbol
		freq = t.Dist[symbol]
		offset = pos
	} else {
		symbol = b.Other
		freq = t.Dist[symbol]
		offset = b.Offset + (pos - b.Cutoff)
	}

	// state update: state = D[s] * (state >> 12) + offset_or_pos
	a.state = freq*(a.state>>12) + offset

	if a.state < (1 << 16) {
		bits, err := r.U(16)
		if err != nil {
			return 0, err
		}
		a.state = (a.state << 16) | bits
	}
	return symbol, nil
}

// Finish verifies the stream ended at the canonical init state, the
// testable property required after decoding an ANS-coded CodeSpec.
func (a *AnsState) Finish() error {
	if a.state != AnsInitState {
		return jxlerr.New(jxlerr.ErrANSState, "rANS stream did not end at init state")
	}
	return nil
}

// ReadAnsDistribution reads one cluster's ANS frequency table (the
// "ans_table" grammar of §4.3): a 2-bit header selects bitcount+RLE (0),
// single-entry (1), flat (2), or two-entry (3) encodings.
func ReadAnsDistribution(r *bitio.Reader, logAlphaSize uint32) ([]uint32, error) {
	alphaSize := int(1) << logAlphaSize
	dist := make([]uint32, alphaSize)

	mode, err := r.U(2)
	if err != nil {
		return nil, err
	}
	switch mode {
	case 1: // single entry: one symbol carries the whole mass.
		sym, err := r.AtMost(uint32(alphaSize - 1))
		if err != nil {
			return nil, err
		}
		dist[sym] = AnsDistTotal
		return dist, nil
	case 2: // flat: every symbol in [0, n) gets an equal share.
		n, err := r.AtMost(uint32(alphaSize))
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, jxlerr.New(jxlerr.ErrANSDist, "flat distribution with zero symbols")
		}
		base := AnsDistTotal / n
		rem := AnsDistTotal % n
		for i := uint32(0); i < n; i++ {
			dist[i] = base
		}
		dist[0] += rem
		return dist, nil
	case 3: // two entries share the mass, first gets an explicit split.
		s0, err := r.AtMost(uint32(alphaSize - 1))
		if err != nil {
			return nil, err
		}
		s1, err := r.AtMost(uint32(alphaSize - 1))
		if err != nil {
			return nil, err
		}
		v0, err := r.U(12)
		if err != nil {
			return nil, err
		}
		if v0 == 0 || v0 >= AnsDistTotal {
			return nil, jxlerr.New(jxlerr.ErrANSDist, "two-entry split out of range")
		}
		dist[s0] = v0
		dist[s1] = AnsDistTotal - v0
		return dist, nil
	}

	// mode 0: bitcount+RLE over the full alphabet.
	shift, err := r.U(3)
	if err != nil {
		return nil, err
	}
	alphaSizeMinus1, err := r.AtMost(uint32(alphaSize - 1))
	if err != nil {
		return nil, err
	}
	n := int(alphaSizeMinus1) + 1

	var logCounts [1 << 8]uint32
	omitLog := uint32(0)
	omitPos := -1
	i := 0
	for i < n {
		sym, err := ansLogCountTable.Decode(r) // fixed prefix code, see ansLogCountLengths
		if err != nil {
			return nil, err
		}
		v := uint32(sym)
		if v == 13 {
			rep, err := r.U(8)
			if err != nil {
				return nil, err
			}
			count := int(rep) + 4
			prevVal := uint32(0)
			if i > 0 {
				prevVal = logCounts[i-1]
			}
			for c := 0; c < count && i < n; c++ {
				logCounts[i] = prevVal
				i++
			}
			continue
		}
		logCounts[i] = v
		if v > omitLog {
			omitLog = v
			omitPos = i
		}
		i++
	}

	total := uint32(0)
	for k := 0; k < n; k++ {
		if k == omitPos {
			continue
		}
		if logCounts[k] == 0 {
			dist[k] = 0
			continue
		}
		v := uint32(1)
		if logCounts[k] > 1 {
			extra, err := r.U(uint(logCounts[k] - 1))
			if err != nil {
				return nil, err
			}
			v = (uint32(1) << (logCounts[k] - 1)) + extra
		}
		if shift > 0 {
			v <<= shift
		}
		dist[k] = v
		total += v
	}
	if omitPos >= 0 {
		if total > AnsDistTotal {
			return nil, jxlerr.New(jxlerr.ErrANSDist, "distribution exceeds total")
		}
		dist[omitPos] = AnsDistTotal - total
	}
	return dist, nil
}
