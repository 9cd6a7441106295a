package dicom

import (
	"errors"
	"testing"
)

func TestContainsMatchesExactDepthAndWildcardItem(t *testing.T) {
	matcher := Contains(TagPathOf(StudyDateTag))

	if !matcher(TagPathOf(StudyDateTag)) {
		t.Fatalf("Contains should match an exact root-level path")
	}
	if matcher(RootTagPath.Push(NewTag(0x0008, 0x1115), 1).Push(StudyDateTag, 0)) {
		t.Fatalf("Contains(root path) should not match a path nested inside a sequence")
	}

	nested := Contains(RootTagPath.Push(NewTag(0x0008, 0x1115), 0).Push(StudyDateTag, 0))
	if !nested(RootTagPath.Push(NewTag(0x0008, 0x1115), 3).Push(StudyDateTag, 0)) {
		t.Fatalf("Contains with a wildcard item should match any concrete item index")
	}
}

func TestEndsWithMatchesAtAnyDepth(t *testing.T) {
	matcher := EndsWith(TagPathOf(StudyDateTag))

	if !matcher(TagPathOf(StudyDateTag)) {
		t.Fatalf("EndsWith should match the root-level case")
	}
	if !matcher(RootTagPath.Push(NewTag(0x0008, 0x1115), 1).Push(StudyDateTag, 0)) {
		t.Fatalf("EndsWith should match nested inside a sequence item")
	}
	if matcher(TagPathOf(PatientNameTag)) {
		t.Fatalf("EndsWith should not match an unrelated tag")
	}
}

func TestNewModifyFlowConfigSortsByPath(t *testing.T) {
	cfg, err := NewModifyFlowConfig([]TagModification{
		Replace(TagPathOf(PixelDataTag), nil),
		Replace(TagPathOf(StudyDateTag), nil),
	}, true)
	if err != nil {
		t.Fatalf("NewModifyFlowConfig error: %v", err)
	}
	if len(cfg.Modifications) != 2 {
		t.Fatalf("len(Modifications) = %d, want 2", len(cfg.Modifications))
	}
	first, _ := cfg.Modifications[0].Path.Tag()
	if first != StudyDateTag {
		t.Fatalf("Modifications[0] tag = %v, want StudyDateTag (lower tag sorts first)", first)
	}
}

func TestNewModifyFlowConfigRejectsEndsWithInsert(t *testing.T) {
	bad := TagModification{Path: TagPathOf(StudyDateTag), Matcher: EndsWith(TagPathOf(StudyDateTag)), Insert: true, endsWith: true}
	if _, err := NewModifyFlowConfig([]TagModification{bad}, true); !errors.Is(err, ErrEndsWithInsert) {
		t.Fatalf("NewModifyFlowConfig(endsWith insert) error = %v, want ErrEndsWithInsert", err)
	}
}

func TestNewModifyFlowConfigGuardsRejectInsertingSequence(t *testing.T) {
	_, err := NewModifyFlowConfig([]TagModification{
		Insert(TagPathOf(Tag(0x00089215)), nil), // DerivationCodeSequence, VR SQ
	}, true)
	if !errors.Is(err, ErrCannotInsertSequence) {
		t.Fatalf("NewModifyFlowConfig(insert sequence) error = %v, want ErrCannotInsertSequence", err)
	}
}

func TestNewModifyFlowConfigGuardsRejectUnknownInsertTag(t *testing.T) {
	_, err := NewModifyFlowConfig([]TagModification{
		Insert(TagPathOf(Tag(0x00090001)), nil), // private tag, not in the dictionary
	}, true)
	if !errors.Is(err, ErrUnknownTagForInsertion) {
		t.Fatalf("NewModifyFlowConfig(insert unknown tag) error = %v, want ErrUnknownTagForInsertion", err)
	}
}

func TestNewModifyFlowConfigGuardsDisabledAllowsUnknownTag(t *testing.T) {
	cfg, err := NewModifyFlowConfig([]TagModification{
		Insert(TagPathOf(Tag(0x00090001)), nil),
	}, false)
	if err != nil {
		t.Fatalf("NewModifyFlowConfig with guards disabled error: %v", err)
	}
	if len(cfg.Modifications) != 1 {
		t.Fatalf("len(Modifications) = %d, want 1", len(cfg.Modifications))
	}
}

func TestNewCollectFlowConfigForTags(t *testing.T) {
	cfg := NewCollectFlowConfigForTags([]TagPath{TagPathOf(PatientNameTag), TagPathOf(StudyDateTag)}, "demographics")

	if !cfg.TagCondition(TagPathOf(PatientNameTag)) {
		t.Fatalf("TagCondition should match PatientName")
	}
	if cfg.TagCondition(TagPathOf(PixelDataTag)) {
		t.Fatalf("TagCondition should not match PixelData")
	}
	if cfg.StopCondition(TagPathOf(StudyDateTag)) {
		t.Fatalf("StopCondition should not fire on the max configured tag itself")
	}
	if !cfg.StopCondition(TagPathOf(PixelDataTag)) {
		t.Fatalf("StopCondition should fire once past the max configured tag")
	}
	if cfg.Label != "demographics" {
		t.Fatalf("Label = %q, want %q", cfg.Label, "demographics")
	}
	if cfg.MaxBufferSize != DefaultCollectMaxBufferSize {
		t.Fatalf("MaxBufferSize = %d, want %d", cfg.MaxBufferSize, DefaultCollectMaxBufferSize)
	}
}
