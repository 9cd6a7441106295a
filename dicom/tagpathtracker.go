// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dicom

// TagPathTracker is a pass-through PartSource that maintains the TagPath of
// whatever part it most recently returned, per spec section 4.3. It never
// modifies a part; callers that need tag-path-aware behavior (ModifyStage,
// CollectStage) pull through the tracker and call CurrentPath after each
// Next.
type TagPathTracker struct {
	upstream PartSource

	// base is the nesting context: the path to the innermost open sequence
	// or fragments container, not including any element currently being
	// read inside it.
	base TagPath

	// current is the TagPath attributed to the part Next most recently
	// returned.
	current TagPath
}

// NewTagPathTracker returns a TagPathTracker pulling from upstream.
func NewTagPathTracker(upstream PartSource) *TagPathTracker {
	return &TagPathTracker{upstream: upstream, base: RootTagPath, current: RootTagPath}
}

// CurrentPath returns the TagPath of the part most recently returned by
// Next. It is only meaningful after a successful Next call.
func (t *TagPathTracker) CurrentPath() TagPath {
	return t.current
}

// Next pulls and returns the next part from upstream, updating CurrentPath
// to reflect it.
func (t *TagPathTracker) Next() (DicomPart, error) {
	part, err := t.upstream.Next()
	if err != nil {
		return nil, err
	}

	switch p := part.(type) {
	case HeaderPart:
		t.current = t.base.pushTag(p.Tag)
	case SequencePart:
		t.base = t.base.pushTag(p.Tag)
		t.current = t.base
	case FragmentsPart:
		t.base = t.base.pushTag(p.Tag)
		t.current = t.base
	case ItemPart:
		t.base = t.base.withItem(p.Index)
		t.current = t.base
	case ItemDelimitationPart:
		t.current = t.base
	case SequenceDelimitationPart:
		t.current = t.base
		t.base = t.base.pop()
	default:
		// ValueChunkPart, PreamblePart, DeflatedChunk, UnknownPart: these
		// carry no tag of their own, so the path they belong to is
		// whatever was last established.
	}

	return part, nil
}
