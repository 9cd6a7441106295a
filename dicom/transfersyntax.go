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

// Well-known transfer syntax UIDs, obtained from
// http://dicom.nema.org/medical/dicom/current/output/html/part06.html#chapter_A
const (
	ImplicitVRLittleEndianUID         = "1.2.840.10008.1.2"
	ExplicitVRLittleEndianUID         = "1.2.840.10008.1.2.1"
	ExplicitVRBigEndianUID            = "1.2.840.10008.1.2.2"
	DeflatedExplicitVRLittleEndianUID = "1.2.840.10008.1.2.1.99"
	// DeflatedExplicitVRLittleEndianRetiredUID is a retired, equivalent UID for
	// the deflated explicit VR little endian syntax that some senders still emit.
	DeflatedExplicitVRLittleEndianRetiredUID = "1.2.840.10008.1.2.1.98"
)

// TransferSyntax names the byte order, VR mode, and deflate-ness of a
// dataset, per spec.md section 3 / GLOSSARY.
type TransferSyntax struct {
	BigEndian  bool
	ExplicitVR bool
	Deflated   bool
}

// ByteOrder returns the binary.ByteOrder implied by this transfer syntax.
func (s TransferSyntax) ByteOrder() binary.ByteOrder {
	if s.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

var (
	ImplicitVRLittleEndian         = TransferSyntax{BigEndian: false, ExplicitVR: false, Deflated: false}
	ExplicitVRLittleEndian         = TransferSyntax{BigEndian: false, ExplicitVR: true, Deflated: false}
	ExplicitVRBigEndian            = TransferSyntax{BigEndian: true, ExplicitVR: true, Deflated: false}
	DeflatedExplicitVRLittleEndian = TransferSyntax{BigEndian: false, ExplicitVR: true, Deflated: true}
)

// LookupTransferSyntax resolves a transfer syntax UID to a TransferSyntax.
// Any UID not recognized here falls back to Explicit VR Little Endian per
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_A.4 --
// unrecognized UIDs are almost always a compressed pixel data syntax, which
// is still carried in an explicit-VR little-endian dataset container.
func LookupTransferSyntax(uid string) TransferSyntax {
	switch uid {
	case ImplicitVRLittleEndianUID:
		return ImplicitVRLittleEndian
	case ExplicitVRBigEndianUID:
		return ExplicitVRBigEndian
	case DeflatedExplicitVRLittleEndianUID, DeflatedExplicitVRLittleEndianRetiredUID:
		return DeflatedExplicitVRLittleEndian
	default:
		return ExplicitVRLittleEndian
	}
}

// hasLongHeader reports whether, under explicit VR, this VR's header uses
// the 12-byte layout (reserved(2) + length(4)) rather than the 8-byte one
// (length(2)). Grounded on the teacher's explicitSyntax.has32BitLength,
// restricted to spec.md section 3's 12-byte-header VR list.
func hasLongHeader(vr *VR) bool {
	return vr != nil && vr.longHeader
}
