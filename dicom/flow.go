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

import "io"

// FlowComposition is a fluent builder wiring ParseStage to zero or more of
// ValidateStage, ModifyStage, and CollectStage, producing a single
// PartSource a caller pulls from. It generalizes the teacher's small,
// interface-returning constructors (NewDataElementIterator,
// CollectDataElements) to the multi-stage pipeline described in spec
// section 2.
type FlowComposition struct {
	source PartSource
	// tracker is the TagPathTracker withTracker placed directly after
	// f.source, if any. Modify and Collect reset it to nil once they have
	// wrapped it, so each tag-path-aware stage gets its own tracker sitting
	// immediately upstream of it.
	tracker *TagPathTracker
}

// NewFlow starts a FlowComposition pulling chunks from source, parsed under
// config.
func NewFlow(source ChunkSource, config ParseConfig) *FlowComposition {
	return &FlowComposition{source: NewParseStage(source, config)}
}

// NewFlowFromReader is a convenience wrapper around NewFlow for a plain
// io.Reader, mirroring NewParseStageFromReader.
func NewFlowFromReader(r io.Reader, config ParseConfig) *FlowComposition {
	return NewFlow(NewReaderChunkSource(r, 0), config)
}

// Validate appends a ValidateStage.
func (f *FlowComposition) Validate(config ValidateFlowConfig) *FlowComposition {
	f.source = NewValidateStage(f.source, config)
	return f
}

// withTracker returns the TagPathTracker sitting immediately downstream of
// f.source, creating one and re-pointing f.source at it if none exists yet.
func (f *FlowComposition) withTracker() *TagPathTracker {
	if f.tracker == nil {
		f.tracker = NewTagPathTracker(f.source)
		f.source = f.tracker
	}
	return f.tracker
}

// Modify appends a ModifyStage.
func (f *FlowComposition) Modify(config ModifyFlowConfig) *FlowComposition {
	tracker := f.withTracker()
	modify := NewModifyStage(tracker, config)
	f.source = modify
	f.tracker = nil // modify's output is no longer tag-path-annotated
	return f
}

// Collect appends a CollectStage.
func (f *FlowComposition) Collect(config CollectFlowConfig) *FlowComposition {
	tracker := f.withTracker()
	collect := NewCollectStage(tracker, config)
	f.source = collect
	f.tracker = nil
	return f
}

// Build returns the composed PartSource.
func (f *FlowComposition) Build() PartSource {
	return f.source
}
