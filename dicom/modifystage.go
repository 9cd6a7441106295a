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
)

// pendingInsert tracks, for one insertable TagModification, which concrete
// scopes (root, or a specific sequence item) it has already been satisfied
// in -- either because a real matching element was seen, or because
// ModifyStage already synthesized it there. A wildcard-item insert targets
// every item of a sequence independently, so "satisfied" is tracked per
// concrete scope rather than once globally.
type pendingInsert struct {
	mod     TagModification
	handled map[string]bool
}

func (pi *pendingInsert) isHandled(scope TagPath) bool {
	return pi.handled[tagPathKey(scope)]
}

func (pi *pendingInsert) markHandled(scope TagPath) {
	if pi.handled == nil {
		pi.handled = map[string]bool{}
	}
	pi.handled[tagPathKey(scope)] = true
}

func tagPathKey(p TagPath) string {
	var b strings.Builder
	for _, s := range p.steps {
		fmt.Fprintf(&b, "%08x/%d;", uint32(s.Tag), s.Item)
	}
	return b.String()
}

// ModifyStage applies an ordered set of TagModifications to a part stream,
// per spec section 4.4: replacing the value of matched elements in place,
// and synthesizing absent ones at the right point in their enclosing scope.
type ModifyStage struct {
	upstream *TagPathTracker
	config   ModifyFlowConfig
	pending  []pendingInsert

	// openItemScopes mirrors the stack of sequence items currently open,
	// innermost last, so item-scoped inserts can be flushed when their item
	// ends: at its ItemDelimitationPart, at the SequenceDelimitationPart
	// closing its sequence, or at the first part whose tag path no longer
	// lies inside it. Item byte lengths are not counted.
	openItemScopes []TagPath

	queue []DicomPart

	replacing     bool
	replaceMod    *TagModification
	replaceHeader HeaderPart
	replaceBuf    []byte

	lastBigEndian  bool
	lastExplicitVR bool
}

// NewModifyStage returns a ModifyStage pulling tag-path-annotated parts
// from upstream.
func NewModifyStage(upstream *TagPathTracker, config ModifyFlowConfig) *ModifyStage {
	pending := make([]pendingInsert, len(config.Modifications))
	for i, mod := range config.Modifications {
		pending[i] = pendingInsert{mod: mod}
	}
	return &ModifyStage{upstream: upstream, config: config, pending: pending, lastExplicitVR: true}
}

// Next returns the next (possibly synthesized) DicomPart.
func (m *ModifyStage) Next() (DicomPart, error) {
	for len(m.queue) == 0 {
		part, err := m.upstream.Next()
		if err != nil {
			if err != io.EOF {
				return nil, err
			}
			for i := len(m.openItemScopes) - 1; i >= 0; i-- {
				if ferr := m.flushScope(m.openItemScopes[i]); ferr != nil {
					return nil, ferr
				}
			}
			m.openItemScopes = nil
			if ferr := m.flushScope(RootTagPath); ferr != nil {
				return nil, ferr
			}
			if len(m.queue) == 0 {
				return nil, io.EOF
			}
			break
		}

		path := m.upstream.CurrentPath()

		if _, isItemDelim := part.(ItemDelimitationPart); isItemDelim {
			if len(m.openItemScopes) > 0 {
				innermost := m.openItemScopes[len(m.openItemScopes)-1]
				if err := m.flushScope(innermost); err != nil {
					return nil, err
				}
				m.openItemScopes = m.openItemScopes[:len(m.openItemScopes)-1]
			}
		} else {
			_, isSeqDelim := part.(SequenceDelimitationPart)
			for len(m.openItemScopes) > 0 {
				innermost := m.openItemScopes[len(m.openItemScopes)-1]
				// A SequenceDelimitationPart carries the path of its sequence's
				// last item, so an item still open at that point ends here.
				if path.StartsWith(innermost) && !(isSeqDelim && path.Equal(innermost)) {
					break
				}
				if err := m.flushScope(innermost); err != nil {
					return nil, err
				}
				m.openItemScopes = m.openItemScopes[:len(m.openItemScopes)-1]
			}
		}

		if err := m.handlePart(part, path); err != nil {
			return nil, err
		}
	}

	p := m.queue[0]
	m.queue = m.queue[1:]
	return p, nil
}

func (m *ModifyStage) handlePart(part DicomPart, path TagPath) error {
	switch p := part.(type) {
	case HeaderPart:
		if err := m.insertDueBefore(path, p); err != nil {
			return err
		}
		m.lastBigEndian, m.lastExplicitVR = p.BigEndian(), p.ExplicitVR
		matched, err := m.startReplaceIfMatched(path, p)
		if err != nil {
			return err
		}
		if !matched {
			m.queue = append(m.queue, part)
		}
		return nil

	case ValueChunkPart:
		if m.replacing {
			return m.continueReplace(p)
		}
		m.queue = append(m.queue, part)
		return nil

	case SequencePart:
		m.lastBigEndian, m.lastExplicitVR = p.BigEndian(), p.ExplicitVR
		m.queue = append(m.queue, part)
		return nil

	case FragmentsPart:
		m.lastBigEndian = p.BigEndian()
		m.queue = append(m.queue, part)
		return nil

	case ItemPart:
		m.openItemScopes = append(m.openItemScopes, path)
		m.queue = append(m.queue, part)
		return nil

	default:
		m.queue = append(m.queue, part)
		return nil
	}
}

// insertDueBefore synthesizes every pending insert targeting header's
// enclosing scope whose tag sorts before header.Tag and has not yet been
// satisfied in that scope.
func (m *ModifyStage) insertDueBefore(path TagPath, header HeaderPart) error {
	scope := path.pop()
	for i := range m.pending {
		pi := &m.pending[i]
		if !pi.mod.Insert || pi.isHandled(scope) {
			continue
		}
		modScope := pi.mod.Path.pop()
		if modScope.Depth() != scope.Depth() || !scope.StartsWith(modScope) {
			continue
		}
		modTag, _ := pi.mod.Path.Tag()
		if modTag >= header.Tag {
			continue
		}
		if err := m.synthesizeInsert(pi, scope); err != nil {
			return err
		}
	}
	return nil
}

// flushScope synthesizes every still-unsatisfied pending insert targeting
// exactly scope -- called when scope is about to close (an item, or the
// root at end of stream).
func (m *ModifyStage) flushScope(scope TagPath) error {
	for i := range m.pending {
		pi := &m.pending[i]
		if !pi.mod.Insert || pi.isHandled(scope) {
			continue
		}
		modScope := pi.mod.Path.pop()
		if modScope.Depth() != scope.Depth() || !scope.StartsWith(modScope) {
			continue
		}
		if err := m.synthesizeInsert(pi, scope); err != nil {
			return err
		}
	}
	return nil
}

func (m *ModifyStage) synthesizeInsert(pi *pendingInsert, scope TagPath) error {
	tag, ok := pi.mod.Path.Tag()
	if !ok {
		return fmt.Errorf("dicom: insert modification has no target tag: %w", ErrUnknownTagForInsertion)
	}
	vr, ok := DictionaryVR(tag)
	if !ok {
		return fmt.Errorf("dicom: inserting %v: %w", tag, ErrUnknownTagForInsertion)
	}
	if vr == SQVR {
		return fmt.Errorf("dicom: inserting %v: %w", tag, ErrCannotInsertSequence)
	}

	value := pi.mod.Transform(nil)
	header := buildSyntheticHeader(tag, vr, uint32(len(value)), m.lastBigEndian, m.lastExplicitVR)
	m.queue = append(m.queue, header)
	if len(value) > 0 {
		m.queue = append(m.queue, NewValueChunkPart(value, true, m.lastBigEndian))
	}
	pi.markHandled(scope)
	return nil
}

func buildSyntheticHeader(tag Tag, vr *VR, length uint32, bigEndian, explicitVR bool) HeaderPart {
	order := byteOrderFor(bigEndian)
	var w dcmWriter
	w.Tag(order, tag)
	if explicitVR {
		w.String(vr.Name)
		if vr.longHeader {
			w.UInt16(order, 0)
			w.UInt32(order, length)
		} else {
			w.UInt16(order, uint16(length))
		}
	} else {
		w.UInt32(order, length)
	}
	return NewHeaderPart(tag, vr, length, false, bigEndian, explicitVR, w.Bytes())
}

// startReplaceIfMatched checks header against every configured modification
// (insertable or not) and, on the first match, begins buffering it for
// replacement. Matching an insertable modification this way satisfies it
// for this scope, per spec section 4.4 ("treat it as replace").
func (m *ModifyStage) startReplaceIfMatched(path TagPath, header HeaderPart) (bool, error) {
	for i := range m.pending {
		pi := &m.pending[i]
		if !pi.mod.Matcher(path) {
			continue
		}
		if pi.mod.Insert {
			pi.markHandled(path.pop())
		}

		m.replaceMod = &pi.mod
		m.replaceHeader = header
		m.replaceBuf = nil

		if header.Length == 0 {
			m.replacing = false
			return true, m.finishReplace()
		}
		m.replacing = true
		return true, nil
	}
	return false, nil
}

func (m *ModifyStage) continueReplace(chunk ValueChunkPart) error {
	m.replaceBuf = append(m.replaceBuf, chunk.Bytes()...)
	if !chunk.Last {
		return nil
	}
	return m.finishReplace()
}

func (m *ModifyStage) finishReplace() error {
	newValue := m.replaceMod.Transform(m.replaceBuf)
	newHeader := m.replaceHeader.WithUpdatedLength(uint32(len(newValue)))
	m.queue = append(m.queue, newHeader)
	if len(newValue) > 0 {
		m.queue = append(m.queue, NewValueChunkPart(newValue, true, newHeader.BigEndian()))
	}
	m.replacing = false
	m.replaceMod = nil
	m.replaceBuf = nil
	return nil
}
