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

// TagPathStep is one step from the root of a TagPath to the current
// position: either a plain root-level element (Tag) or a position within a
// specific item of a sequence (SeqItem). Item is 1-based; 0 means "no item
// selected yet" and is used as a wildcard by modification matchers.
type TagPathStep struct {
	Tag  Tag
	Item int // 0 for a plain Tag step, 1-based item index for a SeqItem step
}

// TagPath is an immutable ordered sequence of steps from the root of a data
// set to the current element or sequence. The empty TagPath denotes the
// root scope itself.
type TagPath struct {
	steps []TagPathStep
}

// RootTagPath is the empty path: the root scope, before any element has
// been seen.
var RootTagPath = TagPath{}

// TagPathOf builds a root-level TagPath pointing directly at tag t.
func TagPathOf(t Tag) TagPath {
	return TagPath{steps: []TagPathStep{{Tag: t}}}
}

// pushTag returns a new TagPath with a plain Tag step appended.
func (p TagPath) pushTag(t Tag) TagPath {
	return TagPath{steps: append(append([]TagPathStep{}, p.steps...), TagPathStep{Tag: t})}
}

// pushSeqItem returns a new TagPath with a sequence-item step appended.
func (p TagPath) pushSeqItem(t Tag, item int) TagPath {
	return TagPath{steps: append(append([]TagPathStep{}, p.steps...), TagPathStep{Tag: t, Item: item})}
}

// withItem returns a copy of p with the item index of its last step set to
// item. It is used by TagPathTracker to bump the current item index of an
// open sequence without re-walking the whole path.
func (p TagPath) withItem(item int) TagPath {
	if len(p.steps) == 0 {
		return p
	}
	steps := append([]TagPathStep{}, p.steps...)
	steps[len(steps)-1].Item = item
	return TagPath{steps: steps}
}

// Push returns a new TagPath with a step for tag appended. item is the
// 1-based sequence-item index that step belongs to, or 0 for a plain
// root/element step (or a wildcard item, when used in a TagModification
// path). External callers building a TagPath from a configuration format
// (see internal/pipelineconfig) use this instead of the unexported
// pushTag/pushSeqItem so they need not know which one applies.
func (p TagPath) Push(tag Tag, item int) TagPath {
	if item == 0 {
		return p.pushTag(tag)
	}
	return p.pushSeqItem(tag, item)
}

// pop returns a copy of p with its last step removed; popping the root path
// returns the root path.
func (p TagPath) pop() TagPath {
	if len(p.steps) == 0 {
		return p
	}
	return TagPath{steps: p.steps[:len(p.steps)-1]}
}

// Depth returns the number of steps in the path. The root path has depth 0.
func (p TagPath) Depth() int {
	return len(p.steps)
}

// Head returns the tag at the given 0-based step index and whether that
// index exists.
func (p TagPath) Head(i int) (Tag, bool) {
	if i < 0 || i >= len(p.steps) {
		return 0, false
	}
	return p.steps[i].Tag, true
}

// Tag returns the final tag of the path (the element or sequence the path
// currently points at) and whether the path is non-empty.
func (p TagPath) Tag() (Tag, bool) {
	return p.Head(len(p.steps) - 1)
}

// IsRoot reports whether p is the empty, root-scope path.
func (p TagPath) IsRoot() bool {
	return len(p.steps) == 0
}

// Equal reports whether p and other have exactly the same steps, including
// item indices.
func (p TagPath) Equal(other TagPath) bool {
	if len(p.steps) != len(other.steps) {
		return false
	}
	for i := range p.steps {
		if p.steps[i] != other.steps[i] {
			return false
		}
	}
	return true
}

// Less defines a strict lexicographic ordering over TagPaths consistent
// with stream order: root-level tags compare by tag value; within a
// sequence, item index is compared before descending into the item.
func (p TagPath) Less(other TagPath) bool {
	for i := 0; i < len(p.steps) && i < len(other.steps); i++ {
		a, b := p.steps[i], other.steps[i]
		if a.Tag != b.Tag {
			return a.Tag < b.Tag
		}
		if a.Item != b.Item {
			return a.Item < b.Item
		}
	}
	return len(p.steps) < len(other.steps)
}

// StartsWith reports whether prefix is a literal prefix of p: every step of
// prefix, including item indices, matches the corresponding step of p. An
// item index of 0 in prefix acts as a wildcard, matching any item index in p
// at that step.
func (p TagPath) StartsWith(prefix TagPath) bool {
	if len(prefix.steps) > len(p.steps) {
		return false
	}
	for i, s := range prefix.steps {
		if p.steps[i].Tag != s.Tag {
			return false
		}
		if s.Item != 0 && p.steps[i].Item != s.Item {
			return false
		}
	}
	return true
}

// StartsWithSuperPath is StartsWith but ignoring item indices entirely: it
// matches prefix against p using only the tag at each step, regardless of
// which item of a sequence p is actually in.
func (p TagPath) StartsWithSuperPath(prefix TagPath) bool {
	if len(prefix.steps) > len(p.steps) {
		return false
	}
	for i, s := range prefix.steps {
		if p.steps[i].Tag != s.Tag {
			return false
		}
	}
	return true
}

// EndsWith reports whether suffix matches the tail of p: the last
// len(suffix.steps) steps of p equal suffix step-for-step, ignoring item
// indices (an EndsWith match applies at any nesting depth and in any item).
func (p TagPath) EndsWith(suffix TagPath) bool {
	if len(suffix.steps) > len(p.steps) {
		return false
	}
	offset := len(p.steps) - len(suffix.steps)
	for i, s := range suffix.steps {
		if p.steps[offset+i].Tag != s.Tag {
			return false
		}
	}
	return true
}
