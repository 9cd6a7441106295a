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
)

// vrType groups VRs that share an on-the-wire header shape or decoding need.
type vrType int

const (
	// textVR is for value fields that must be decoded through the current character set.
	textVR vrType = iota

	// numberBinaryVR is for value fields parsed as fixed-width binary numbers.
	numberBinaryVR

	// bulkDataVR groups value fields that may be large and are not decoded
	// through a character set.
	bulkDataVR

	// uniqueIdentifierVR is for VR: UI. ASCII, null padded.
	uniqueIdentifierVR

	// sequenceVR is for VR: SQ.
	sequenceVR

	// tagVR is for VR: AT, a list of 4-byte tags.
	tagVR
)

// UndefinedLength as specified in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.1
const UndefinedLength uint32 = 0xffffffff

// VR models a DICOM Value Representation.
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2
type VR struct {
	// Name is the 2-character VR code.
	Name string

	kind vrType

	// longHeader is true for explicit-VR headers with the 12-byte layout:
	// group(2) element(2) vr(2) reserved(2)=0 length(4). All other explicit-VR
	// headers use the 8-byte layout: group(2) element(2) vr(2) length(2).
	longHeader bool
}

// IsString reports whether values of this VR must be routed through the
// current character set before being interpreted as text.
func (vr *VR) IsString() bool {
	return vr.kind == textVR || vr.kind == uniqueIdentifierVR
}

// HeaderSize returns the size in bytes of an explicit-VR header for this VR.
func (vr *VR) HeaderSize() int {
	if vr.longHeader {
		return 12
	}
	return 8
}

var vrLookupMap = map[string]*VR{}

func newVR(text string, kind vrType, longHeader bool) *VR {
	vr := &VR{text, kind, longHeader}
	vrLookupMap[vr.Name] = vr
	return vr
}

// LookupVRByName returns the VR registered under the given 2-character code.
func LookupVRByName(name string) (*VR, error) {
	r, ok := vrLookupMap[name]
	if !ok {
		return nil, fmt.Errorf("dicom: unknown vr name: %v", name)
	}
	return r, nil
}

// VR list and 12-byte-header membership per
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2 and #sect_7.1.2
var (
	// textual VRs
	CSVR = newVR("CS", textVR, false)
	SHVR = newVR("SH", textVR, false)
	LOVR = newVR("LO", textVR, false)
	STVR = newVR("ST", textVR, false)
	LTVR = newVR("LT", textVR, false)
	ASVR = newVR("AS", textVR, false)

	// person name
	PNVR = newVR("PN", textVR, false)

	// application entity
	AEVR = newVR("AE", textVR, false)

	// dates/time VR
	DAVR = newVR("DA", textVR, false)
	TMVR = newVR("TM", textVR, false)
	DTVR = newVR("DT", textVR, false)

	// textual numbers
	ISVR = newVR("IS", textVR, false)
	DSVR = newVR("DS", textVR, false)

	// binary numbers
	SSVR = newVR("SS", numberBinaryVR, false)
	USVR = newVR("US", numberBinaryVR, false)
	SLVR = newVR("SL", numberBinaryVR, false)
	ULVR = newVR("UL", numberBinaryVR, false)
	FLVR = newVR("FL", numberBinaryVR, false)
	FDVR = newVR("FD", numberBinaryVR, false)

	// large binary sequences, 12-byte header per spec.md section 3
	OBVR = newVR("OB", bulkDataVR, true)
	OWVR = newVR("OW", bulkDataVR, true)
	OFVR = newVR("OF", bulkDataVR, true)
	UNVR = newVR("UN", bulkDataVR, true)

	// large binary sequences, 8-byte header
	ODVR = newVR("OD", bulkDataVR, false)
	OLVR = newVR("OL", bulkDataVR, false)

	// unlimited char
	UCVR = newVR("UC", textVR, false)

	// URL
	URVR = newVR("UR", bulkDataVR, false)

	// unlimited text, 12-byte header per spec.md section 3
	UTVR = newVR("UT", textVR, true)

	// attribute tag
	ATVR = newVR("AT", tagVR, false)

	// unique identifier
	UIVR = newVR("UI", uniqueIdentifierVR, false)

	// sequence, 12-byte header per spec.md section 3
	SQVR = newVR("SQ", sequenceVR, true)
)
