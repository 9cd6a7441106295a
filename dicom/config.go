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

import "sort"

// ParseConfig configures ParseStage, per spec.md section 6.
type ParseConfig struct {
	// AssumeBigEndian is the default byte order used for a preamble-less
	// dataset before the endianness heuristic can correct it.
	AssumeBigEndian bool

	// AssumeExplicitVR is the default VR mode for a preamble-less dataset.
	AssumeExplicitVR bool

	// StrictTagOrder rejects non-monotonic root-level tags with
	// ErrNonMonotonicTag instead of silently accepting them.
	StrictTagOrder bool
}

// DefaultParseConfig is a ready-made ParseConfig for NewFlow and
// NewParseStage callers (the dicomflow CLI passes it): little endian,
// explicit VR, lenient tag ordering.
var DefaultParseConfig = ParseConfig{AssumeBigEndian: false, AssumeExplicitVR: true}

// ValidationContext restricts ValidateStage to datasets whose File Meta
// Information declares exactly this (SOP Class UID, Transfer Syntax UID)
// pair.
type ValidationContext struct {
	SOPClassUID       string
	TransferSyntaxUID string
}

// ValidateFlowConfig configures ValidateStage, per spec.md sections 4.5/6.
type ValidateFlowConfig struct {
	// Contexts, if non-empty, is the set of (SOPClassUID, TransferSyntaxUID)
	// pairs ValidateStage accepts. An empty slice means "no contexts": only
	// the shape of the stream prefix is checked (valid preamble or header).
	Contexts []ValidationContext

	// DrainIncoming selects the failure behavior of spec.md section 4.5: if
	// true, a failing stream is pulled to completion and discarded before
	// the error is emitted; if false, upstream demand is cancelled
	// immediately on failure.
	DrainIncoming bool
}

// Matches reports whether (sopClassUID, transferSyntaxUID) is one of the
// configured contexts.
func (c ValidateFlowConfig) Matches(sopClassUID, transferSyntaxUID string) bool {
	for _, ctx := range c.Contexts {
		if ctx.SOPClassUID == sopClassUID && ctx.TransferSyntaxUID == transferSyntaxUID {
			return true
		}
	}
	return false
}

// TagMatcher decides whether a TagModification applies at a given TagPath.
type TagMatcher func(TagPath) bool

// ValueTransform computes a replacement value from the current raw value
// bytes of a matched element (empty for an inserted element).
type ValueTransform func([]byte) []byte

// Contains returns a TagMatcher that matches TagPaths exactly equal to path
// in depth and tag at every step; a step in path with Item == 0 matches any
// item index at that step, per spec.md section 4.4.
func Contains(path TagPath) TagMatcher {
	return func(p TagPath) bool {
		return p.Depth() == path.Depth() && p.StartsWith(path)
	}
}

// EndsWith returns a TagMatcher that matches any TagPath whose tail equals
// path, at any nesting depth, per spec.md section 4.4.
func EndsWith(path TagPath) TagMatcher {
	return func(p TagPath) bool {
		return p.EndsWith(path)
	}
}

// TagModification is one entry of a ModifyFlowConfig: a rule that replaces,
// or optionally inserts, the element(s) matched by Matcher.
type TagModification struct {
	// Path is the tag path this modification targets. For Contains-style
	// (depth-exact) modifications it doubles as the tag ModifyStage
	// synthesizes when Insert is true and the target is absent from the
	// stream.
	Path TagMatcherPath

	// Matcher decides whether this modification applies to a given
	// TagPath. Built by Contains or EndsWith.
	Matcher TagMatcher

	// Transform computes the new value bytes from the old ones (or from an
	// empty slice, for an insertion).
	Transform ValueTransform

	// Insert allows ModifyStage to synthesize this element when it is
	// absent from the stream. Insert is only valid for Contains-style
	// modifications; spec.md section 9's open question on endsWith VR
	// mismatches is resolved by forbidding insertion there outright (see
	// NewModifyFlowConfig).
	Insert bool

	// endsWith records whether Matcher was built via EndsWith, so
	// NewModifyFlowConfig can reject Insert on it.
	endsWith bool
}

// TagMatcherPath is a TagPath carried alongside a TagMatcher so ModifyStage
// can recover the concrete tag/sequence-item to synthesize on insertion
// without having to invert an arbitrary predicate.
type TagMatcherPath = TagPath

// Replace returns a TagModification that rewrites the value of the element
// at path, by exact tag-path match (item indices of 0 are wildcards).
func Replace(path TagPath, transform ValueTransform) TagModification {
	return TagModification{Path: path, Matcher: Contains(path), Transform: transform}
}

// Insert returns a TagModification that rewrites the value of the element
// at path if present, or synthesizes it at the end of its enclosing scope
// if absent.
func Insert(path TagPath, transform ValueTransform) TagModification {
	return TagModification{Path: path, Matcher: Contains(path), Transform: transform, Insert: true}
}

// ReplaceEndsWith returns a TagModification that rewrites the value of
// every element whose tag path ends with path, at any nesting depth. It
// never inserts: per spec.md section 9's open question, an endsWith
// modification applies only where a matching element already exists.
func ReplaceEndsWith(path TagPath, transform ValueTransform) TagModification {
	return TagModification{Path: path, Matcher: EndsWith(path), Transform: transform, endsWith: true}
}

// ModifyFlowConfig configures ModifyStage, per spec.md sections 4.4/6.
type ModifyFlowConfig struct {
	// Modifications is applied in the order the stream encounters matching
	// tag paths; for insertion purposes NewModifyFlowConfig sorts them by
	// Path so ModifyStage can advance a single cursor through them.
	Modifications []TagModification

	// InsertGuards, when true (the default), rejects a TagModification
	// that tries to Insert a tag with VR SQ or a tag absent from the
	// dictionary (ErrCannotInsertSequence / ErrUnknownTagForInsertion)
	// before any bytes are read, instead of failing mid-stream.
	InsertGuards bool
}

// NewModifyFlowConfig validates and sorts modifications into a
// ModifyFlowConfig. It rejects Insert on an endsWith-built modification
// (ErrEndsWithInsert) and, when guards is true, rejects inserting a
// sequence or a tag absent from the dictionary up front.
func NewModifyFlowConfig(modifications []TagModification, guards bool) (ModifyFlowConfig, error) {
	for _, m := range modifications {
		if m.Insert && m.endsWith {
			return ModifyFlowConfig{}, ErrEndsWithInsert
		}
		if m.Insert && guards {
			tag, ok := m.Path.Tag()
			if !ok {
				return ModifyFlowConfig{}, ErrUnknownTagForInsertion
			}
			vr, ok := DictionaryVR(tag)
			if !ok {
				return ModifyFlowConfig{}, ErrUnknownTagForInsertion
			}
			if vr == SQVR {
				return ModifyFlowConfig{}, ErrCannotInsertSequence
			}
		}
	}

	sorted := append([]TagModification{}, modifications...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Path.Less(sorted[j].Path)
	})

	return ModifyFlowConfig{Modifications: sorted, InsertGuards: guards}, nil
}

// CollectFlowConfig configures CollectStage, per spec.md sections 4.6/6.
type CollectFlowConfig struct {
	// TagCondition selects which elements are harvested into the buffered
	// CollectedElementsPart.
	TagCondition TagMatcher

	// StopCondition marks the part at which the harvested elements are
	// flushed downstream, prepended to the buffered parts seen so far.
	StopCondition TagMatcher

	// Label identifies the CollectedElementsPart this config produces.
	Label string

	// MaxBufferSize caps the bytes CollectStage buffers before failing with
	// ErrCollectBufferOverflow. 0 means unlimited.
	MaxBufferSize int
}

// DefaultCollectMaxBufferSize is the default CollectFlowConfig.MaxBufferSize
// per spec.md section 6.
const DefaultCollectMaxBufferSize = 1_000_000

// NewCollectFlowConfigForTags builds a CollectFlowConfig from a set of root-
// level tag paths to harvest, per spec.md section 4.6's convenience
// constructor: TagCondition matches any TagPath for which one of tags is a
// super-prefix; StopCondition fires once the parser is back at the root
// scope looking at a tag greater than the maximum of tags.
func NewCollectFlowConfigForTags(tags []TagPath, label string) CollectFlowConfig {
	paths := append([]TagPath{}, tags...)
	maxTag := Tag(0)
	for _, p := range paths {
		if t, ok := p.Tag(); ok && t > maxTag {
			maxTag = t
		}
	}

	tagCondition := func(p TagPath) bool {
		for _, target := range paths {
			if p.StartsWithSuperPath(target) {
				return true
			}
		}
		return false
	}
	stopCondition := func(p TagPath) bool {
		if !p.IsRoot() && p.Depth() != 1 {
			return false
		}
		t, ok := p.Tag()
		return ok && t > maxTag
	}

	return CollectFlowConfig{
		TagCondition:  tagCondition,
		StopCondition: stopCondition,
		Label:         label,
		MaxBufferSize: DefaultCollectMaxBufferSize,
	}
}
