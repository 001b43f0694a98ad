package header

import (
	"testing"

	"github.com/jxldecoder/jxl/internal/bitio"
)

func TestReadTocSingleSection(t *testing.T) {
	w := &bitWriter{}
	w.writeU(2, 0) // sectionSizeConfig selector=0 -> size=0
	r := bitio.NewReader(w.bytes())

	toc, err := ReadToc(r, 1, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !toc.SingleSection {
		t.Fatal("expected single implicit section")
	}
	if len(toc.Sections) != 1 || toc.Sections[0].Size != 0 {
		t.Fatalf("Sections = %+v, want one zero-size section", toc.Sections)
	}
}

func TestReadTocSingleSectionNonzeroSize(t *testing.T) {
	w := &bitWriter{}
	// sectionSizeConfig: selector=1 (offset 1024, 10 bits) -> size = 1024+5 = 1029.
	w.writeU(2, 1)
	w.writeU(10, 5)
	r := bitio.NewReader(w.bytes())

	toc, err := ReadToc(r, 1, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if toc.Sections[0].Size != 1029 {
		t.Fatalf("Size = %d, want 1029", toc.Sections[0].Size)
	}
}
