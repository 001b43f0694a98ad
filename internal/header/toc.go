package header

import (
	"sort"

	"github.com/jxldecoder/jxl/internal/bitio"
	"github.com/jxldecoder/jxl/internal/jxlerr"
	"github.com/jxldecoder/jxl/internal/limits"
)

// SectionKind distinguishes the three roles a TOC section can play.
type SectionKind uint8

const (
	SectionLfGlobal SectionKind = iota
	SectionLfGroup
	SectionHfGlobal
	SectionPassGroup
)

// Section is one entry of the table of contents: its declared byte size,
// role, and (for LfGroup/PassGroup) which group/pass it belongs to.
type Section struct {
	Kind  SectionKind
	Size  uint32
	Pass  int // -1 for LfGroup/LfGlobal/HfGlobal
	Index int // lf-group or group index

	CodeOffset int64 // filled in once section order is finalized
}

// Toc is either a single implicit section (the whole frame is one blob)
// or an ordered list of sections.
type Toc struct {
	SingleSection bool
	Sections      []Section
}

var sectionSizeConfig = bitio.U32Config{
	Offsets: [4]uint32{0, 1024, 17408, 4211712},
	Lens:    [4]uint{0, 10, 14, 30},
}

// ReadToc reads a frame's TOC given its precomputed section roles: the
// caller supplies numLfGroups/numGroups/numPasses so ReadToc knows how
// many sizes to read and how to classify each one.
func ReadToc(r *bitio.Reader, numLfGroups, numGroups, numPasses int) (*Toc, error) {
	if numLfGroups*numGroups*numPasses == 1 {
		sz, err := r.U32(sectionSizeConfig)
		if err != nil {
			return nil, err
		}
		return &Toc{SingleSection: true, Sections: []Section{{Kind: SectionPassGroup, Size: sz, Pass: 0, Index: 0}}}, nil
	}

	var sections []Section
	sections = append(sections, Section{Kind: SectionLfGlobal, Pass: -1})
	for i := 0; i < numLfGroups; i++ {
		sections = append(sections, Section{Kind: SectionLfGroup, Pass: -1, Index: i})
	}
	sections = append(sections, Section{Kind: SectionHfGlobal, Pass: -1})
	for p := 0; p < numPasses; p++ {
		for g := 0; g < numGroups; g++ {
			sections = append(sections, Section{Kind: SectionPassGroup, Pass: p, Index: g})
		}
	}

	if err := limits.CheckTOCSections(len(sections)); err != nil {
		return nil, err
	}

	for i := range sections {
		sz, err := r.U32(sectionSizeConfig)
		if err != nil {
			return nil, err
		}
		sections[i].Size = sz
	}

	permBit, err := r.U(1)
	if err != nil {
		return nil, err
	}
	if permBit == 1 {
		perm, err := readLehmerPermutation(r, len(sections))
		if err != nil {
			return nil, err
		}
		sections = applyPermutation(sections, perm)
	}

	if err := r.ZeroPadToByte(); err != nil {
		return nil, err
	}

	var offset int64
	for i := range sections {
		sections[i].CodeOffset = offset
		offset += int64(sections[i].Size)
	}

	relocatePassGroups(sections, numLfGroups)

	return &Toc{Sections: sections}, nil
}

// readLehmerPermutation reads a Lehmer-coded permutation of n elements:
// n factorial-base digits, each bounded by its remaining range, following
// the same "decode index, remove from remaining pool" scheme as any
// factorial-number-system permutation decoder.
func readLehmerPermutation(r *bitio.Reader, n int) ([]int, error) {
	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}
	perm := make([]int, n)
	for i := 0; i < n; i++ {
		if len(remaining) == 0 {
			return nil, jxlerr.New(jxlerr.ErrPerm, "permutation ran out of remaining indices")
		}
		idx, err := r.AtMost(uint32(len(remaining) - 1))
		if err != nil {
			return nil, err
		}
		perm[i] = remaining[idx]
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return perm, nil
}

func applyPermutation(sections []Section, perm []int) []Section {
	out := make([]Section, len(sections))
	for i, p := range perm {
		out[i] = sections[p]
	}
	return out
}

// relocatePassGroups implements the "pass-group sections before their
// covering LfGroup are pulled out and re-emitted immediately after it"
// rule from §4.7: any PassGroup section whose CodeOffset precedes its
// LfGroup section's offset is moved to directly follow that LfGroup
// section, preserving relative order among relocated sections.
func relocatePassGroups(sections []Section, numLfGroups int) {
	lfGroupOffset := make([]int64, numLfGroups)
	for _, s := range sections {
		if s.Kind == SectionLfGroup {
			lfGroupOffset[s.Index] = s.CodeOffset
		}
	}

	type indexed struct {
		s   Section
		pos int
	}
	var stay []indexed
	var relocate []Section
	for i, s := range sections {
		if s.Kind == SectionPassGroup && s.CodeOffset < lfGroupOffset[s.Index%numLfGroups] {
			relocate = append(relocate, s)
			continue
		}
		stay = append(stay, indexed{s: s, pos: i})
	}
	if len(relocate) == 0 {
		return
	}

	sort.SliceStable(relocate, func(i, j int) bool { return relocate[i].CodeOffset < relocate[j].CodeOffset })

	var out []Section
	for _, is := range stay {
		out = append(out, is.s)
		if is.s.Kind == SectionLfGroup {
			for _, rs := range relocate {
				if rs.Index%numLfGroups == is.s.Index {
					out = append(out, rs)
				}
			}
		}
	}
	copy(sections, out)
}
