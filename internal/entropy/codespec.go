// CodeSpec ties together the four building blocks of a JPEG XL entropy
// stream: the cluster map that groups per-pixel contexts into a small
// number of distinct statistical models, the hybrid-integer split that
// expands each raw token into its final value, the prefix-code or rANS
// backend that supplies those raw tokens, and the optional LZ77 layer that
// lets a stream refer back to its own decoded history instead of coding a
// value directly.
package entropy

import (
	"github.com/jxldecoder/jxl/internal/bitio"
	"github.com/jxldecoder/jxl/internal/jxlerr"
)

// lz77MinSymbolConfig/lz77MinLengthConfig are the fixed u32 encodings used
// to read the two LZ77 header fields, following the same offset/length
// table shape as bitio's other fixed U32Config instances.
var lz77MinSymbolConfig = bitio.U32Config{
	Offsets: [4]uint32{224, 512, 4096, 8192},
	Lens:    [4]uint{0, 0, 8, 15},
}
var lz77MinLengthConfig = bitio.U32Config{
	Offsets: [4]uint32{3, 4, 5, 8},
	Lens:    [4]uint{0, 0, 0, 8},
}

// logAlphaSizeTable maps the 2-bit log_alpha_size selector to the actual
// exponent, keeping every ANS alphabet in the [32, 256] range required for
// AnsDistTotal's bucketing to stay an integer.
var logAlphaSizeTable = [4]uint32{5, 6, 7, 8}

// CodeSpec is a fully parsed, ready-to-decode entropy code header.
type CodeSpec struct {
	ClusterMap   *ClusterMap
	UsePrefix    bool
	LogAlphaSize uint32
	HybridConfig []HybridConfig
	PrefixTables []*PrefixTable
	AnsTables    []*AnsTable
	Lz77         Lz77Config
	distCtx      int
}

// ReadCodeSpec reads one entropy code header: the lz77 preamble (if any),
// the cluster map over numCtx contexts (numCtx+1 when lz77 reserves a
// distance context), the prefix-vs-ANS selector, and per-cluster
// configuration. alphabetSize bounds the raw prefix-code alphabet; it is
// unused when ANS coding is selected (ANS's alphabet is 1<<LogAlphaSize).
func ReadCodeSpec(r *bitio.Reader, numCtx int, alphabetSize int) (*CodeSpec, error) {
	lz77Bit, err := r.U(1)
	if err != nil {
		return nil, err
	}
	var lz77 Lz77Config
	effectiveCtx := numCtx
	if lz77Bit == 1 {
		minSymbol, err := r.U32(lz77MinSymbolConfig)
		if err != nil {
			return nil, err
		}
		minLength, err := r.U32(lz77MinLengthConfig)
		if err != nil {
			return nil, err
		}
		lengthConf, err := ReadHybridConfig(r, 8)
		if err != nil {
			return nil, err
		}
		lz77 = Lz77Config{Enabled: true, MinSymbol: minSymbol, MinLength: minLength, LengthConf: lengthConf}
		effectiveCtx = numCtx + 1
	}

	cm, err := ReadClusterMap(r, effectiveCtx)
	if err != nil {
		return nil, err
	}

	usePrefixBit, err := r.U(1)
	if err != nil {
		return nil, err
	}
	usePrefix := usePrefixBit == 1

	spec := &CodeSpec{
		ClusterMap: cm,
		UsePrefix:  usePrefix,
		Lz77:       lz77,
		distCtx:    effectiveCtx - 1,
	}

	hybridBound := uint32(15)
	if !usePrefix {
		sel, err := r.U(2)
		if err != nil {
			return nil, err
		}
		spec.LogAlphaSize = logAlphaSizeTable[sel]
		hybridBound = spec.LogAlphaSize
	}

	spec.HybridConfig = make([]HybridConfig, cm.NumClusters)
	if usePrefix {
		spec.PrefixTables = make([]*PrefixTable, cm.NumClusters)
	} else {
		spec.AnsTables = make([]*AnsTable, cm.NumClusters)
	}

	for i := 0; i < cm.NumClusters; i++ {
		hc, err := ReadHybridConfig(r, hybridBound)
		if err != nil {
			return nil, err
		}
		spec.HybridConfig[i] = hc
		if usePrefix {
			t, err := ReadPrefixCode(r, alphabetSize)
			if err != nil {
				return nil, err
			}
			spec.PrefixTables[i] = t
		} else {
			dist, err := ReadAnsDistribution(r, spec.LogAlphaSize)
			if err != nil {
				return nil, err
			}
			t, err := BuildAliasTable(dist, spec.LogAlphaSize)
			if err != nil {
				return nil, err
			}
			spec.AnsTables[i] = t
		}
	}
	return spec, nil
}

// NewState creates a fresh decode state for this CodeSpec. width is the
// row stride used to resolve LZ77's first 120 special distance codes; pass
// 0 for code specs that never enable LZ77 (e.g. the cluster-map bootstrap).
func (spec *CodeSpec) NewState(width ...int32) *CodeState {
	var w int32
	if len(width) > 0 {
		w = width[0]
	}
	s := &CodeState{width: w}
	if !spec.UsePrefix {
		s.ans = NewAnsState()
	}
	return s
}

// CodeState is the mutable per-stream decode state: the rANS state machine
// (if ANS coded), the decoded-value history LZ77 copies read from, and any
// values still queued from an in-progress LZ77 expansion.
type CodeState struct {
	ans     *AnsState
	window  []uint32
	pending []uint32
	width   int32
}

// Read decodes the next value for context ctx, transparently expanding any
// LZ77 back-reference it encounters.
func (s *CodeState) Read(r *bitio.Reader, spec *CodeSpec, ctx int) (uint32, error) {
	if len(s.pending) > 0 {
		v := s.pending[0]
		s.pending = s.pending[1:]
		s.window = append(s.window, v)
		return v, nil
	}

	cluster := int(spec.ClusterMap.Cluster[ctx])
	tok, err := s.decodeRaw(r, spec, cluster)
	if err != nil {
		return 0, err
	}

	if spec.Lz77.Enabled && tok >= spec.Lz77.MinSymbol {
		length, err := spec.Lz77.DecodeLength(r, tok-spec.Lz77.MinSymbol)
		if err != nil {
			return 0, err
		}
		distCluster := int(spec.ClusterMap.Cluster[spec.distCtx])
		distTok, err := s.decodeRaw(r, spec, distCluster)
		if err != nil {
			return 0, err
		}
		distVal, err := spec.HybridConfig[distCluster].Decode(r, distTok)
		if err != nil {
			return 0, err
		}
		var dist int
		if distVal < 120 {
			dist = int(SpecialDistance(int(distVal), s.width))
		} else {
			dist = int(distVal) - 120 + 1
		}
		if dist <= 0 || dist > len(s.window) {
			return 0, jxlerr.New(jxlerr.ErrLZ77, "back-reference distance outside decoded window")
		}
		start := len(s.window) - dist
		for i := uint32(0); i < length; i++ {
			s.pending = append(s.pending, s.window[start+int(i)%dist])
		}
		v := s.pending[0]
		s.pending = s.pending[1:]
		s.window = append(s.window, v)
		return v, nil
	}

	val, err := spec.HybridConfig[cluster].Decode(r, tok)
	if err != nil {
		return 0, err
	}
	s.window = append(s.window, val)
	return val, nil
}

func (s *CodeState) decodeRaw(r *bitio.Reader, spec *CodeSpec, cluster int) (uint32, error) {
	if spec.UsePrefix {
		v, err := spec.PrefixTables[cluster].Decode(r)
		return uint32(v), err
	}
	v, err := s.ans.Decode(r, spec.AnsTables[cluster])
	return uint32(v), err
}

// Finish validates any trailing decoder state (only the rANS final-state
// check applies; prefix codes have no end-of-stream condition beyond
// consuming exactly as many symbols as the caller expected).
func (s *CodeState) Finish() error {
	if s.ans != nil {
		return s.ans.Finish()
	}
	return nil
}
