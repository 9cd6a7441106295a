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

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// CollectStage buffers every part it pulls while also harvesting, into an
// in-memory Element per match, every part whose TagPath satisfies its
// TagCondition. Once a part satisfies StopCondition, it prepends a
// CollectedElementsPart to everything buffered so far and transitions to
// pass-through, per spec section 4.6.
type CollectStage struct {
	upstream *TagPathTracker
	config   CollectFlowConfig

	done bool // stop condition already fired; pure pass-through from here

	queue []DicomPart

	buffered      []DicomPart
	bufferedBytes int

	characterSets []string
	elements      []Element

	capturing     bool
	capturingAs   Element
	capturingBuf  []byte
	capturingPath TagPath
}

// NewCollectStage returns a CollectStage pulling tag-path-annotated parts
// from upstream.
func NewCollectStage(upstream *TagPathTracker, config CollectFlowConfig) *CollectStage {
	return &CollectStage{upstream: upstream, config: config}
}

// Next returns the next DicomPart: a CollectedElementsPart exactly once (if
// the stop condition ever fires, or at stream end otherwise), followed by
// the buffered parts, followed by plain pass-through.
func (c *CollectStage) Next() (DicomPart, error) {
	for len(c.queue) == 0 {
		if c.done {
			return c.upstream.Next()
		}

		part, err := c.upstream.Next()
		if err != nil {
			if err != io.EOF {
				return nil, err
			}
			c.flush()
			if len(c.queue) == 0 {
				return nil, io.EOF
			}
			break
		}

		path := c.upstream.CurrentPath()

		if err := c.observe(part, path); err != nil {
			return nil, err
		}

		c.buffered = append(c.buffered, part)
		c.bufferedBytes += len(part.Bytes())
		if c.config.MaxBufferSize > 0 && c.bufferedBytes > c.config.MaxBufferSize {
			return nil, fmt.Errorf("dicom: collect stage buffered %d bytes under label %q: %w", c.bufferedBytes, c.config.Label, ErrCollectBufferOverflow)
		}

		if c.config.StopCondition(path) {
			c.flush()
			break
		}
	}

	p := c.queue[0]
	c.queue = c.queue[1:]
	return p, nil
}

// observe updates capture state from part, harvesting its header and value
// bytes into an Element if path matches TagCondition, or into
// CharacterSets if it is a SpecificCharacterSet element (collected
// unconditionally, per spec section 4.6).
func (c *CollectStage) observe(part DicomPart, path TagPath) error {
	switch p := part.(type) {
	case HeaderPart:
		tag, _ := path.Tag()
		if tag == SpecificCharacterSetTag || c.config.TagCondition(path) {
			c.capturing = true
			c.capturingPath = path
			c.capturingBuf = nil
			c.capturingAs = Element{Tag: p.Tag, VR: p.VR, Length: p.Length, BigEndian: p.BigEndian(), ExplicitVR: p.ExplicitVR}
			if p.Length == 0 {
				c.finishCapture()
			}
		}
		return nil

	case ValueChunkPart:
		if c.capturing {
			c.capturingBuf = append(c.capturingBuf, p.Bytes()...)
			if p.Last {
				c.finishCapture()
			}
		}
		return nil

	default:
		return nil
	}
}

func (c *CollectStage) finishCapture() {
	tag, _ := c.capturingPath.Tag()
	if tag == SpecificCharacterSetTag {
		c.characterSets = append(c.characterSets, strings.TrimRight(string(c.capturingBuf), "\x00 "))
	} else {
		c.capturingAs.Bytes = append([]byte{}, c.capturingBuf...)
		c.capturingAs.Length = uint32(len(c.capturingAs.Bytes))
		c.queueElement(c.capturingAs)
	}
	c.capturing = false
	c.capturingBuf = nil
}

func (c *CollectStage) queueElement(e Element) {
	c.elements = append(c.elements, e)
}

func (c *CollectStage) flush() {
	bigEndian := false
	if len(c.buffered) > 0 {
		bigEndian = c.buffered[0].BigEndian()
	}
	c.queue = append(c.queue, NewCollectedElementsPart(uuid.NewString(), c.config.Label, c.characterSets, c.elements, bigEndian))
	c.queue = append(c.queue, c.buffered...)
	c.buffered = nil
	c.done = true
}
