package dicom

import "testing"

func TestHeaderPartWithUpdatedLengthImplicitVR(t *testing.T) {
	bytes := []byte{0x10, 0x00, 0x10, 0x00, 0x04, 0x00, 0x00, 0x00}
	p := NewHeaderPart(PatientNameTag, nil, 4, false, false, false, bytes)

	updated := p.WithUpdatedLength(8)
	if updated.Length != 8 {
		t.Fatalf("Length = %d, want 8", updated.Length)
	}
	if got := updated.Bytes()[4:8]; got[0] != 8 || got[1] != 0 || got[2] != 0 || got[3] != 0 {
		t.Fatalf("length field bytes = %v, want [8 0 0 0]", got)
	}
	// original is untouched: WithUpdatedLength copies rather than mutates.
	if p.Length != 4 {
		t.Fatalf("original Length mutated: got %d, want 4", p.Length)
	}
}

func TestHeaderPartWithUpdatedLengthShortExplicitHeader(t *testing.T) {
	bytes := []byte{0x08, 0x00, 0x20, 0x00, 'D', 'A', 0x08, 0x00}
	p := NewHeaderPart(StudyDateTag, DAVR, 8, false, false, true, bytes)

	updated := p.WithUpdatedLength(0)
	if updated.Length != 0 {
		t.Fatalf("Length = %d, want 0", updated.Length)
	}
	if got := updated.Bytes()[6:8]; got[0] != 0 || got[1] != 0 {
		t.Fatalf("length field bytes = %v, want [0 0]", got)
	}
}

func TestHeaderPartWithUpdatedLengthLongExplicitHeaderBigEndian(t *testing.T) {
	bytes := []byte{0x7F, 0xE0, 0x00, 0x10, 'O', 'B', 0x00, 0x00, 0x00, 0x00, 0x00, 0x02}
	p := NewHeaderPart(PixelDataTag, OBVR, 2, false, true, true, bytes)

	updated := p.WithUpdatedLength(0x0100)
	if got := updated.Bytes()[8:12]; got[0] != 0x00 || got[1] != 0x00 || got[2] != 0x01 || got[3] != 0x00 {
		t.Fatalf("length field bytes = %v, want [0 0 1 0] (big endian)", got)
	}
}

func TestDicomPartVariantsImplementTheInterface(t *testing.T) {
	// This is an exhaustiveness smoke test: if a new DicomPart variant is
	// added without a BigEndian/Bytes pair, this line stops compiling.
	var parts = []DicomPart{
		NewPreamblePart(make([]byte, 132)),
		NewHeaderPart(PatientNameTag, PNVR, 0, false, false, true, nil),
		NewValueChunkPart(nil, true, false),
		NewSequencePart(NewTag(0x0008, 0x1115), UndefinedLength, false, true, nil),
		NewSequenceDelimitationPart(false, nil),
		NewItemPart(1, UndefinedLength, false, nil),
		NewItemDelimitationPart(1, false, nil),
		NewFragmentsPart(PixelDataTag, OBVR, false, nil),
		NewDeflatedChunk(nil, false),
		NewUnknownPart(false, nil),
		NewCollectedElementsPart("id", "label", nil, nil, false),
	}
	if len(parts) != 11 {
		t.Fatalf("got %d variants, want 11", len(parts))
	}
}

func TestCollectedElementsPartBytesIsEmpty(t *testing.T) {
	p := NewCollectedElementsPart("id", "label", []string{"ISO_IR 100"}, []Element{
		{Tag: StudyDateTag, VR: DAVR, Length: 8, Bytes: []byte("20240101")},
	}, false)
	if p.Bytes() != nil {
		t.Fatalf("Bytes() = %v, want nil", p.Bytes())
	}
	if len(p.Elements) != 1 || p.Elements[0].Tag != StudyDateTag {
		t.Fatalf("Elements = %v, want one StudyDate element", p.Elements)
	}
}
