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

import "encoding/binary"

// DicomPart is the sealed sum type emitted by ParseStage and passed through
// the rest of the pipeline. The unexported sealedDicomPart method closes the
// set of implementations to this package: callers outside dicom cannot add
// new variants, so a type switch here can be treated as exhaustive over the
// eleven variants below. CollectedElementsPart is the one variant never
// produced by ParseStage itself; CollectStage synthesizes it downstream.
type DicomPart interface {
	// Bytes is this part's exact on-the-wire serialization.
	Bytes() []byte

	// BigEndian reports the byte order in effect when this part was parsed.
	BigEndian() bool

	sealedDicomPart()
}

// PreamblePart is the 128 zero bytes followed by "DICM" that optionally
// precede a DICOM file.
type PreamblePart struct {
	bytes []byte // always 132 bytes: 128 zeros + "DICM"
}

// NewPreamblePart builds a PreamblePart from its 132-byte payload.
func NewPreamblePart(bytes []byte) PreamblePart { return PreamblePart{bytes} }

func (p PreamblePart) Bytes() []byte    { return p.bytes }
func (p PreamblePart) BigEndian() bool  { return false }
func (p PreamblePart) sealedDicomPart() {}

// HeaderPart is a data element header: tag, VR, declared value length, and
// the exact bytes of the header as they appeared on the wire.
type HeaderPart struct {
	Tag        Tag
	VR         *VR
	Length     uint32
	IsFmi      bool
	ExplicitVR bool
	bigEndian  bool
	bytes      []byte
}

// NewHeaderPart builds a HeaderPart.
func NewHeaderPart(tag Tag, vr *VR, length uint32, isFmi, bigEndian, explicitVR bool, bytes []byte) HeaderPart {
	return HeaderPart{tag, vr, length, isFmi, explicitVR, bigEndian, bytes}
}

func (p HeaderPart) Bytes() []byte    { return p.bytes }
func (p HeaderPart) BigEndian() bool  { return p.bigEndian }
func (p HeaderPart) sealedDicomPart() {}

// WithUpdatedLength returns a copy of p whose Length is n and whose bytes
// have the on-the-wire length field rewritten in place, respecting p's byte
// order and 8- vs 12-byte header layout. It mirrors the arithmetic the
// teacher's explicitSyntax.writeValueLength/elementSize used to compute a
// length field from scratch, applied here to an existing header instead.
func (p HeaderPart) WithUpdatedLength(n uint32) HeaderPart {
	order := byteOrderFor(p.bigEndian)
	out := append([]byte{}, p.bytes...)

	switch {
	case !p.ExplicitVR:
		// implicit VR: group(2) element(2) length(4)
		order.PutUint32(out[4:8], n)
	case p.VR != nil && p.VR.longHeader:
		// explicit VR, 12-byte header: group(2) element(2) vr(2) reserved(2) length(4)
		order.PutUint32(out[8:12], n)
	default:
		// explicit VR, 8-byte header: group(2) element(2) vr(2) length(2)
		order.PutUint16(out[6:8], uint16(n))
	}

	p.Length = n
	p.bytes = out
	return p
}

func byteOrderFor(bigEndian bool) binary.ByteOrder {
	if bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// ValueChunkPart is a slice of a value body. Values may arrive as multiple
// chunks; Last is true on the final chunk of the current value.
type ValueChunkPart struct {
	bytes     []byte
	Last      bool
	bigEndian bool
}

// NewValueChunkPart builds a ValueChunkPart.
func NewValueChunkPart(bytes []byte, last, bigEndian bool) ValueChunkPart {
	return ValueChunkPart{bytes, last, bigEndian}
}

func (p ValueChunkPart) Bytes() []byte    { return p.bytes }
func (p ValueChunkPart) BigEndian() bool  { return p.bigEndian }
func (p ValueChunkPart) sealedDicomPart() {}

// SequencePart opens a sequence: a nested dataset container with defined or
// undefined length.
type SequencePart struct {
	Tag        Tag
	Length     uint32
	ExplicitVR bool
	bigEndian  bool
	bytes      []byte
}

// NewSequencePart builds a SequencePart.
func NewSequencePart(tag Tag, length uint32, bigEndian, explicitVR bool, bytes []byte) SequencePart {
	return SequencePart{tag, length, explicitVR, bigEndian, bytes}
}

func (p SequencePart) Bytes() []byte    { return p.bytes }
func (p SequencePart) BigEndian() bool  { return p.bigEndian }
func (p SequencePart) sealedDicomPart() {}

// SequenceDelimitationPart terminates an undefined-length sequence or
// fragments stream.
type SequenceDelimitationPart struct {
	bigEndian bool
	bytes     []byte
}

// NewSequenceDelimitationPart builds a SequenceDelimitationPart.
func NewSequenceDelimitationPart(bigEndian bool, bytes []byte) SequenceDelimitationPart {
	return SequenceDelimitationPart{bigEndian, bytes}
}

func (p SequenceDelimitationPart) Bytes() []byte    { return p.bytes }
func (p SequenceDelimitationPart) BigEndian() bool  { return p.bigEndian }
func (p SequenceDelimitationPart) sealedDicomPart() {}

// ItemPart opens an item within a sequence or a fragments stream. Index is
// 1-based and increases within its enclosing sequence or fragments stream.
type ItemPart struct {
	Index     int
	Length    uint32
	bigEndian bool
	bytes     []byte
}

// NewItemPart builds an ItemPart.
func NewItemPart(index int, length uint32, bigEndian bool, bytes []byte) ItemPart {
	return ItemPart{index, length, bigEndian, bytes}
}

func (p ItemPart) Bytes() []byte    { return p.bytes }
func (p ItemPart) BigEndian() bool  { return p.bigEndian }
func (p ItemPart) sealedDicomPart() {}

// ItemDelimitationPart terminates an undefined-length item.
type ItemDelimitationPart struct {
	Index     int
	bigEndian bool
	bytes     []byte
}

// NewItemDelimitationPart builds an ItemDelimitationPart.
func NewItemDelimitationPart(index int, bigEndian bool, bytes []byte) ItemDelimitationPart {
	return ItemDelimitationPart{index, bigEndian, bytes}
}

func (p ItemDelimitationPart) Bytes() []byte    { return p.bytes }
func (p ItemDelimitationPart) BigEndian() bool  { return p.bigEndian }
func (p ItemDelimitationPart) sealedDicomPart() {}

// FragmentsPart opens an encapsulated pixel data stream: (7FE0,0010) with
// undefined length.
type FragmentsPart struct {
	Tag       Tag
	VR        *VR
	bigEndian bool
	bytes     []byte
}

// NewFragmentsPart builds a FragmentsPart.
func NewFragmentsPart(tag Tag, vr *VR, bigEndian bool, bytes []byte) FragmentsPart {
	return FragmentsPart{tag, vr, bigEndian, bytes}
}

func (p FragmentsPart) Bytes() []byte    { return p.bytes }
func (p FragmentsPart) BigEndian() bool  { return p.bigEndian }
func (p FragmentsPart) sealedDicomPart() {}

// DeflatedChunk is raw bytes read after a Deflate transfer syntax boundary.
// ParseStage does not inflate; it hands these chunks downstream verbatim.
type DeflatedChunk struct {
	bytes     []byte
	bigEndian bool
}

// NewDeflatedChunk builds a DeflatedChunk.
func NewDeflatedChunk(bytes []byte, bigEndian bool) DeflatedChunk {
	return DeflatedChunk{bytes, bigEndian}
}

func (p DeflatedChunk) Bytes() []byte    { return p.bytes }
func (p DeflatedChunk) BigEndian() bool  { return p.bigEndian }
func (p DeflatedChunk) sealedDicomPart() {}

// UnknownPart is emitted for recoverable, uninterpretable-but-framed data;
// it is the only soft-recovery path in the parser (spec.md section 7).
type UnknownPart struct {
	bigEndian bool
	bytes     []byte
}

// NewUnknownPart builds an UnknownPart.
func NewUnknownPart(bigEndian bool, bytes []byte) UnknownPart {
	return UnknownPart{bigEndian, bytes}
}

func (p UnknownPart) Bytes() []byte    { return p.bytes }
func (p UnknownPart) BigEndian() bool  { return p.bigEndian }
func (p UnknownPart) sealedDicomPart() {}

// Element is a fully-buffered data element harvested by CollectStage: its
// header fields alongside the complete, reassembled value bytes.
type Element struct {
	Tag        Tag
	VR         *VR
	Length     uint32
	BigEndian  bool
	ExplicitVR bool
	Bytes      []byte
}

// CollectedElementsPart is synthesized by CollectStage, per spec section
// 4.6: the elements it harvested matching its TagCondition, plus the value
// (trailing NUL and space padding trimmed) of every SpecificCharacterSet
// element seen (collected unconditionally
// so downstream string decoders can be configured), under Label.
//
// Its Bytes is empty: it carries no on-the-wire representation of its own,
// since everything it reports was already framed by the HeaderPart and
// ValueChunkPart parts CollectStage buffers and re-emits alongside it.
type CollectedElementsPart struct {
	// ID is a per-flush correlation id, used only so a caller's logging can
	// tie a CollectedElementsPart back to the pipeline run that produced it.
	ID            string
	Label         string
	CharacterSets []string
	Elements      []Element
	bigEndian     bool
}

// NewCollectedElementsPart builds a CollectedElementsPart.
func NewCollectedElementsPart(id, label string, characterSets []string, elements []Element, bigEndian bool) CollectedElementsPart {
	return CollectedElementsPart{id, label, characterSets, elements, bigEndian}
}

func (p CollectedElementsPart) Bytes() []byte    { return nil }
func (p CollectedElementsPart) BigEndian() bool  { return p.bigEndian }
func (p CollectedElementsPart) sealedDicomPart() {}
