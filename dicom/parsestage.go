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
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// maxValueChunkSize bounds how many value bytes ParseStage emits in a
// single ValueChunkPart, so a single large element (pixel data routinely
// runs hundreds of megabytes) never forces downstream stages to hold more
// than one chunk's worth of a value in memory at a time.
const maxValueChunkSize = 64 * 1024

// PartSource is the pull side of the pipeline: callers pull one DicomPart
// at a time, and Next returns io.EOF once the stream is exhausted. It is
// the dicom package's equivalent of the teacher's DataElementIterator.
type PartSource interface {
	Next() (DicomPart, error)
}

type parseState int

const (
	stateAtBeginning parseState = iota
	stateFmiHeader
	stateDatasetHeader
	stateDeflated
	stateDone
)

type containerKind int

const (
	containerSequence containerKind = iota
	containerItem
	containerFragments
	containerFragmentItem
)

// container is one entry of ParseStage's nesting stack: an open sequence,
// item, fragments stream, or fragment item. remaining is only meaningful
// when definedLength is true; it is decremented by every byte ParseStage
// consumes while this frame (and any frame nested inside it) is open, so a
// defined-length container closes itself the instant its budget reaches
// zero, without needing a delimitation part.
type container struct {
	kind          containerKind
	tag           Tag
	index         int // this container's own item index, for containerItem/containerFragmentItem
	itemIndex     int // last-opened child item index, for containerSequence/containerFragments
	definedLength bool
	remaining     uint32
}

// ParseStage is the byte-level state machine of spec section 4.2: it turns
// a raw byte stream into a typed sequence of DicomParts. It holds all the
// mutable state a single pass through one DICOM stream needs and is not
// safe for concurrent use, matching the single-threaded cooperative model
// the rest of this package follows.
type ParseStage struct {
	br     *ByteReader
	config ParseConfig

	state parseState
	stack []container

	ts    TransferSyntax
	hadFmi bool

	heuristicPending bool

	haveLastRootTag bool
	lastRootTag     Tag

	fmiEndOffset             int64 // -1 until FileMetaInformationGroupLength is seen
	capturingTag             Tag
	capturingBuf             []byte
	capturedTransferSyntaxUID string

	inValue             bool
	valueRemaining      uint32
	valueBigEndian      bool
	valueClosesContainer bool
	afterValueState     parseState
}

// NewParseStage returns a ParseStage pulling chunks from source.
func NewParseStage(source ChunkSource, config ParseConfig) *ParseStage {
	return &ParseStage{
		br:           NewByteReader(source),
		config:       config,
		state:        stateAtBeginning,
		fmiEndOffset: -1,
	}
}

// NewParseStageFromReader is a convenience constructor wrapping a plain
// io.Reader in a default-sized ChunkSource.
func NewParseStageFromReader(r io.Reader, config ParseConfig) *ParseStage {
	return NewParseStage(NewReaderChunkSource(r, 0), config)
}

// Next returns the next DicomPart in the stream, or io.EOF when the stream
// is exhausted. It returns a wrapped parse error (see errors.go) on
// malformed input.
func (s *ParseStage) Next() (DicomPart, error) {
	for {
		if s.inValue {
			part, done, err := s.nextValueChunk()
			if err != nil {
				s.state = stateDone
				return nil, err
			}
			if done {
				s.inValue = false
				if s.valueClosesContainer {
					s.popContainer()
				}
				if s.capturingTag != 0 {
					s.finishCapture()
				}
				s.state = s.afterValueState
			}
			return part, nil
		}

		switch s.state {
		case stateAtBeginning:
			part, err := s.stepAtBeginning()
			if err != nil {
				s.state = stateDone
				return nil, err
			}
			if part != nil {
				return part, nil
			}
			// no preamble: state has been set to stateDatasetHeader; loop.
		case stateFmiHeader:
			part, err := s.stepFmiHeader()
			if err != nil {
				s.state = stateDone
				return nil, err
			}
			if part != nil {
				return part, nil
			}
			// boundary reached or non-FMI tag seen; state transitioned, loop.
		case stateDatasetHeader:
			part, err := s.stepDatasetHeader()
			if err != nil {
				s.state = stateDone
				return nil, err
			}
			if part != nil {
				return part, nil
			}
			if s.state == stateDone {
				return nil, io.EOF
			}
		case stateDeflated:
			part, err := s.stepDeflated()
			if err != nil {
				s.state = stateDone
				return nil, err
			}
			if part != nil {
				return part, nil
			}
			// buffer was momentarily empty but upstream isn't done; loop.
			if s.state == stateDone {
				return nil, io.EOF
			}
		case stateDone:
			return nil, io.EOF
		}
	}
}

// take consumes n bytes, charging them against every defined-length
// container currently open (each ancestor container's declared length
// bounds all bytes consumed while it is open).
func (s *ParseStage) take(n int) ([]byte, error) {
	b, err := s.br.Take(n)
	if err != nil {
		if err == ErrTruncated {
			return nil, fmt.Errorf("dicom: reading %d bytes: %w", n, ErrUnexpectedEndOfStream)
		}
		return nil, err
	}
	for i := range s.stack {
		if s.stack[i].definedLength {
			s.stack[i].remaining -= uint32(n)
		}
	}
	return b, nil
}

func (s *ParseStage) pushContainer(c container) {
	s.stack = append(s.stack, c)
}

func (s *ParseStage) popContainer() {
	if len(s.stack) == 0 {
		return
	}
	s.stack = s.stack[:len(s.stack)-1]
}

func (s *ParseStage) top() (*container, bool) {
	if len(s.stack) == 0 {
		return nil, false
	}
	return &s.stack[len(s.stack)-1], true
}

// popCompletedContainers closes every open defined-length container whose
// budget has reached zero, innermost first.
func (s *ParseStage) popCompletedContainers() {
	for {
		top, ok := s.top()
		if !ok || !top.definedLength || top.remaining != 0 {
			return
		}
		s.popContainer()
	}
}

func (s *ParseStage) peekTag() (Tag, error) {
	b, err := s.br.Peek(4)
	if err != nil {
		if err == ErrTruncated {
			return 0, fmt.Errorf("dicom: peeking tag: %w", ErrUnexpectedEndOfStream)
		}
		return 0, err
	}
	order := s.ts.ByteOrder()
	return NewTag(order.Uint16(b[0:2]), order.Uint16(b[2:4])), nil
}

// startValue arms the generic value-emission machinery so the next call(s)
// to Next produce ValueChunkParts instead of dispatching headers.
func (s *ParseStage) startValue(length uint32, bigEndian, closesContainer bool, afterState parseState) {
	s.inValue = true
	s.valueRemaining = length
	s.valueBigEndian = bigEndian
	s.valueClosesContainer = closesContainer
	s.afterValueState = afterState
}

func (s *ParseStage) nextValueChunk() (DicomPart, bool, error) {
	n := int(s.valueRemaining)
	if n > maxValueChunkSize {
		n = maxValueChunkSize
	}
	b, err := s.take(n)
	if err != nil {
		return nil, false, err
	}
	s.valueRemaining -= uint32(n)
	if s.capturingTag != 0 {
		s.capturingBuf = append(s.capturingBuf, b...)
	}
	last := s.valueRemaining == 0
	return NewValueChunkPart(b, last, s.valueBigEndian), last, nil
}

func (s *ParseStage) finishCapture() {
	switch s.capturingTag {
	case FileMetaInformationGroupLengthTag:
		if len(s.capturingBuf) >= 4 {
			groupLength := binary.LittleEndian.Uint32(s.capturingBuf)
			s.fmiEndOffset = s.br.BytesRead() + int64(groupLength)
		}
	case TransferSyntaxUIDTag:
		s.capturedTransferSyntaxUID = strings.TrimRight(string(s.capturingBuf), "\x00 ")
	}
	s.capturingTag = 0
	s.capturingBuf = nil
}

// stepAtBeginning implements the AtBeginning state of spec section 4.2.
func (s *ParseStage) stepAtBeginning() (DicomPart, error) {
	ok, err := s.br.Ensure(132)
	if err != nil {
		return nil, err
	}
	if ok {
		peek, err := s.br.Peek(132)
		if err != nil {
			return nil, err
		}
		if string(peek[128:132]) == "DICM" {
			bytes, err := s.take(132)
			if err != nil {
				return nil, err
			}
			s.ts = ExplicitVRLittleEndian
			s.hadFmi = true
			s.fmiEndOffset = -1
			s.state = stateFmiHeader
			return NewPreamblePart(bytes), nil
		}
	}

	s.ts = TransferSyntax{BigEndian: s.config.AssumeBigEndian, ExplicitVR: s.config.AssumeExplicitVR}
	s.hadFmi = false
	s.heuristicPending = true
	s.state = stateDatasetHeader
	return nil, nil
}

// stepFmiHeader implements the InFmiHeader/InFmiValue states.
func (s *ParseStage) stepFmiHeader() (DicomPart, error) {
	if s.fmiEndOffset >= 0 && s.br.BytesRead() >= s.fmiEndOffset {
		s.finalizeFmi()
		return nil, nil
	}

	atEnd, err := s.br.AtEnd()
	if err != nil {
		return nil, err
	}
	if atEnd {
		return nil, fmt.Errorf("dicom: stream ended inside file meta information: %w", ErrUnexpectedEndOfStream)
	}

	tag, err := s.peekTag()
	if err != nil {
		return nil, err
	}
	if !tag.IsFileMeta() {
		s.finalizeFmi()
		return nil, nil
	}

	headerTag, vr, length, explicitVR, headerBytes, err := s.readHeaderFields()
	if err != nil {
		return nil, err
	}

	part := NewHeaderPart(headerTag, vr, length, true, s.ts.BigEndian, explicitVR, headerBytes)

	if headerTag == FileMetaInformationGroupLengthTag || headerTag == TransferSyntaxUIDTag {
		s.capturingTag = headerTag
		s.capturingBuf = nil
	}
	if length > 0 {
		s.startValue(length, s.ts.BigEndian, false, stateFmiHeader)
	} else if s.capturingTag != 0 {
		s.finishCapture()
	}
	return part, nil
}

func (s *ParseStage) finalizeFmi() {
	if s.capturedTransferSyntaxUID == "" {
		s.ts = ExplicitVRLittleEndian
	} else {
		s.ts = LookupTransferSyntax(s.capturedTransferSyntaxUID)
	}
	if s.ts.Deflated {
		s.state = stateDeflated
	} else {
		s.state = stateDatasetHeader
	}
}

// stepDatasetHeader implements the InDatasetHeader state, dispatching on
// the innermost open container (spec section 4.2).
func (s *ParseStage) stepDatasetHeader() (DicomPart, error) {
	s.popCompletedContainers()

	atEnd, err := s.br.AtEnd()
	if err != nil {
		return nil, err
	}
	if atEnd {
		if len(s.stack) > 0 {
			return nil, fmt.Errorf("dicom: stream ended with open sequence or item: %w", ErrUnexpectedEndOfStream)
		}
		s.state = stateDone
		return nil, nil
	}

	if s.heuristicPending {
		s.heuristicPending = false
		s.maybeCorrectEndianness()
	}

	top, hasTop := s.top()
	if hasTop && (top.kind == containerSequence || top.kind == containerFragments) {
		return s.stepSequenceOrFragmentsScope(top)
	}
	return s.stepOrdinaryScope(top)
}

// maybeCorrectEndianness implements the endianness heuristic of spec
// section 4.2 for preamble-less input: if the assumed byte order produces
// an implausible first header, retry with the opposite order.
func (s *ParseStage) maybeCorrectEndianness() {
	if s.ts.ExplicitVR {
		b, err := s.br.Peek(6)
		if err != nil || len(b) < 6 {
			return
		}
		vrCode := string(b[4:6])
		if _, ok := vrLookupMap[vrCode]; !ok {
			s.ts.BigEndian = !s.ts.BigEndian
		}
		return
	}

	b, err := s.br.Peek(8)
	if err != nil || len(b) < 8 {
		return
	}
	order := s.ts.ByteOrder()
	length := order.Uint32(b[4:8])
	if length != UndefinedLength && length > 0x00FFFFFF {
		s.ts.BigEndian = !s.ts.BigEndian
	}
}

// stepSequenceOrFragmentsScope handles a container whose only valid
// children are Item and SequenceDelimitationItem tokens.
func (s *ParseStage) stepSequenceOrFragmentsScope(top *container) (DicomPart, error) {
	tag, err := s.peekTag()
	if err != nil {
		return nil, err
	}

	switch tag {
	case ItemTag:
		b, err := s.take(8)
		if err != nil {
			return nil, err
		}
		order := s.ts.ByteOrder()
		length := order.Uint32(b[4:8])
		top.itemIndex++
		index := top.itemIndex
		part := NewItemPart(index, length, s.ts.BigEndian, b)

		if top.kind == containerSequence {
			s.pushContainer(container{kind: containerItem, index: index, definedLength: length != UndefinedLength, remaining: length})
			return part, nil
		}

		// containerFragments: the item's body is raw fragment bytes, not headers.
		if length > 0 {
			s.pushContainer(container{kind: containerFragmentItem, index: index, definedLength: true, remaining: length})
			s.startValue(length, s.ts.BigEndian, true, stateDatasetHeader)
		}
		return part, nil

	case SequenceDelimitationItemTag:
		b, err := s.take(8)
		if err != nil {
			return nil, err
		}
		s.popContainer()
		return NewSequenceDelimitationPart(s.ts.BigEndian, b), nil

	default:
		return nil, fmt.Errorf("dicom: expected item or sequence delimitation, found tag %v: %w", tag, ErrMalformedHeader)
	}
}

// stepOrdinaryScope handles the root scope or an open item: ordinary
// element headers, sequence headers, fragments headers, and (inside an
// undefined-length item) the item delimitation token.
func (s *ParseStage) stepOrdinaryScope(top *container) (DicomPart, error) {
	tag, err := s.peekTag()
	if err != nil {
		return nil, err
	}

	if tag == ItemDelimitationItemTag {
		if top == nil || top.kind != containerItem {
			return nil, fmt.Errorf("dicom: unexpected item delimitation outside an item: %w", ErrMalformedHeader)
		}
		b, err := s.take(8)
		if err != nil {
			return nil, err
		}
		index := top.index
		s.popContainer()
		return NewItemDelimitationPart(index, s.ts.BigEndian, b), nil
	}

	headerTag, vr, length, explicitVR, headerBytes, err := s.readHeaderFields()
	if err != nil {
		return nil, err
	}

	if vr == SQVR {
		s.pushContainer(container{kind: containerSequence, tag: headerTag, definedLength: length != UndefinedLength, remaining: length})
		return NewSequencePart(headerTag, length, s.ts.BigEndian, explicitVR, headerBytes), nil
	}

	if headerTag == PixelDataTag && length == UndefinedLength && (vr == OBVR || vr == OWVR) {
		s.pushContainer(container{kind: containerFragments, tag: headerTag, definedLength: false})
		return NewFragmentsPart(headerTag, vr, s.ts.BigEndian, headerBytes), nil
	}

	if length == UndefinedLength {
		return nil, fmt.Errorf("dicom: element %v has undefined length but is not a sequence or fragments: %w", headerTag, ErrMalformedHeader)
	}

	if len(s.stack) == 0 {
		if s.config.StrictTagOrder && s.haveLastRootTag && headerTag <= s.lastRootTag {
			return nil, fmt.Errorf("dicom: tag %v out of order after %v: %w", headerTag, s.lastRootTag, ErrNonMonotonicTag)
		}
		s.haveLastRootTag = true
		s.lastRootTag = headerTag
	}

	part := NewHeaderPart(headerTag, vr, length, false, s.ts.BigEndian, explicitVR, headerBytes)
	if length > 0 {
		s.startValue(length, s.ts.BigEndian, false, stateDatasetHeader)
	}
	return part, nil
}

// readHeaderFields reads one element header under the stage's current
// transfer syntax: an 8-byte implicit-VR header, an 8-byte short explicit-VR
// header, or a 12-byte long explicit-VR header, per spec section 6.
func (s *ParseStage) readHeaderFields() (tag Tag, vr *VR, length uint32, explicitVR bool, raw []byte, err error) {
	order := s.ts.ByteOrder()

	tagBytes, err := s.take(4)
	if err != nil {
		return 0, nil, 0, false, nil, err
	}
	tag = NewTag(order.Uint16(tagBytes[0:2]), order.Uint16(tagBytes[2:4]))

	if !s.ts.ExplicitVR {
		lenBytes, err := s.take(4)
		if err != nil {
			return 0, nil, 0, false, nil, err
		}
		length = order.Uint32(lenBytes)
		vr, _ = DictionaryVR(tag)
		if vr == nil {
			vr = UNVR
		}
		return tag, vr, length, false, append(append([]byte{}, tagBytes...), lenBytes...), nil
	}

	vrBytes, err := s.take(2)
	if err != nil {
		return 0, nil, 0, false, nil, err
	}
	vr, lookupErr := LookupVRByName(string(vrBytes))
	if lookupErr != nil {
		return 0, nil, 0, false, nil, fmt.Errorf("dicom: tag %v: %w", tag, ErrMalformedHeader)
	}

	if vr.longHeader {
		rest, err := s.take(6) // reserved(2) + length(4)
		if err != nil {
			return 0, nil, 0, false, nil, err
		}
		length = order.Uint32(rest[2:6])
		raw = append(append(append([]byte{}, tagBytes...), vrBytes...), rest...)
		return tag, vr, length, true, raw, nil
	}

	lenBytes, err := s.take(2)
	if err != nil {
		return 0, nil, 0, false, nil, err
	}
	length = uint32(order.Uint16(lenBytes))
	raw = append(append(append([]byte{}, tagBytes...), vrBytes...), lenBytes...)
	return tag, vr, length, true, raw, nil
}

// stepDeflated implements the InDeflated state: bytes after a deflated
// transfer syntax boundary are handed downstream verbatim.
func (s *ParseStage) stepDeflated() (DicomPart, error) {
	if _, err := s.br.Ensure(1); err != nil {
		return nil, err
	}
	n := s.br.Buffered()
	if n == 0 {
		s.state = stateDone
		return nil, nil
	}
	if n > maxValueChunkSize {
		n = maxValueChunkSize
	}
	b, err := s.take(n)
	if err != nil {
		return nil, err
	}
	return NewDeflatedChunk(b, s.ts.BigEndian), nil
}
