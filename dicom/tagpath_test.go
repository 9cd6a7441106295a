package dicom

import "testing"

func TestTagPathPushAndTag(t *testing.T) {
	p := RootTagPath.Push(PatientNameTag, 0)
	if got, ok := p.Tag(); !ok || got != PatientNameTag {
		t.Fatalf("Tag() = (%v, %v), want (%v, true)", got, ok, PatientNameTag)
	}
	if p.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1", p.Depth())
	}

	seq := RootTagPath.Push(NewTag(0x0008, 0x1115), 2).Push(StudyDateTag, 0)
	if got, ok := seq.Tag(); !ok || got != StudyDateTag {
		t.Fatalf("Tag() = (%v, %v), want (%v, true)", got, ok, StudyDateTag)
	}
	if seq.Depth() != 2 {
		t.Fatalf("Depth() = %d, want 2", seq.Depth())
	}
}

func TestTagPathIsRoot(t *testing.T) {
	if !RootTagPath.IsRoot() {
		t.Fatalf("RootTagPath.IsRoot() = false, want true")
	}
	if TagPathOf(PatientNameTag).IsRoot() {
		t.Fatalf("TagPathOf(...).IsRoot() = true, want false")
	}
}

func TestTagPathEqual(t *testing.T) {
	a := RootTagPath.Push(NewTag(0x0008, 0x1115), 1).Push(StudyDateTag, 0)
	b := RootTagPath.Push(NewTag(0x0008, 0x1115), 1).Push(StudyDateTag, 0)
	c := RootTagPath.Push(NewTag(0x0008, 0x1115), 2).Push(StudyDateTag, 0)

	if !a.Equal(b) {
		t.Fatalf("a.Equal(b) = false, want true")
	}
	if a.Equal(c) {
		t.Fatalf("a.Equal(c) = true, want false (different item index)")
	}
}

func TestTagPathLess(t *testing.T) {
	tests := []struct {
		name string
		a, b TagPath
		want bool
	}{
		{
			"lower tag sorts first",
			TagPathOf(StudyDateTag),
			TagPathOf(PatientNameTag),
			StudyDateTag < PatientNameTag,
		},
		{
			"shorter path sorts first when it's a prefix",
			RootTagPath.Push(NewTag(0x0008, 0x1115), 1),
			RootTagPath.Push(NewTag(0x0008, 0x1115), 1).Push(StudyDateTag, 0),
			true,
		},
		{
			"lower item index sorts first",
			RootTagPath.Push(NewTag(0x0008, 0x1115), 1),
			RootTagPath.Push(NewTag(0x0008, 0x1115), 2),
			true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Less(tc.b); got != tc.want {
				t.Fatalf("Less() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTagPathStartsWith(t *testing.T) {
	full := RootTagPath.Push(NewTag(0x0008, 0x1115), 2).Push(StudyDateTag, 0)

	wildcard := RootTagPath.Push(NewTag(0x0008, 0x1115), 0).Push(StudyDateTag, 0)
	if !full.StartsWith(wildcard) {
		t.Fatalf("StartsWith(wildcard item) = false, want true")
	}

	exact := RootTagPath.Push(NewTag(0x0008, 0x1115), 2)
	if !full.StartsWith(exact) {
		t.Fatalf("StartsWith(exact prefix) = false, want true")
	}

	wrongItem := RootTagPath.Push(NewTag(0x0008, 0x1115), 3)
	if full.StartsWith(wrongItem) {
		t.Fatalf("StartsWith(wrong item) = true, want false")
	}
}

func TestTagPathStartsWithSuperPath(t *testing.T) {
	full := RootTagPath.Push(NewTag(0x0008, 0x1115), 2).Push(StudyDateTag, 0)
	ignoreItem := RootTagPath.Push(NewTag(0x0008, 0x1115), 5)

	if full.StartsWith(ignoreItem) {
		t.Fatalf("StartsWith should reject the mismatched item index")
	}
	if !full.StartsWithSuperPath(ignoreItem) {
		t.Fatalf("StartsWithSuperPath should ignore the item index mismatch")
	}
}

func TestTagPathEndsWith(t *testing.T) {
	full := RootTagPath.Push(NewTag(0x0008, 0x1115), 2).Push(StudyDateTag, 0)
	suffix := TagPathOf(StudyDateTag)

	if !full.EndsWith(suffix) {
		t.Fatalf("EndsWith(StudyDateTag) = false, want true")
	}
	if full.EndsWith(TagPathOf(PatientNameTag)) {
		t.Fatalf("EndsWith(PatientNameTag) = true, want false")
	}
	if RootTagPath.EndsWith(suffix) {
		t.Fatalf("RootTagPath.EndsWith(non-empty suffix) = true, want false")
	}
}
