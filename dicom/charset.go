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
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// DefaultCharacterRepertoire is the character set DICOM datasets use when no
// (0008,0005) SpecificCharacterSet element is present.
var DefaultCharacterRepertoire encoding.Encoding = charmap.Windows1252

// lookupLabelByTerm maps SpecificCharacterSet defined terms to golang.org/x/net
// charset labels. See
// http://dicom.nema.org/medical/dicom/current/output/chtml/part02/sect_D.6.2.html
var lookupLabelByTerm = map[string]string{
	"ISO_IR 100": "iso-ir-100",
	"ISO_IR 101": "iso-ir-101",
	"ISO_IR 109": "iso-ir-109",
	"ISO_IR 110": "iso-ir-110",
	"ISO_IR 144": "iso-ir-144",
	"ISO_IR 127": "iso-ir-127",
	"ISO_IR 126": "iso-ir-126",
	"ISO_IR 138": "iso-ir-138",
	"ISO_IR 148": "iso-ir-148",
	"ISO_IR 13":  "shift-jis",
	"ISO_IR 166": "tis-620",
	"ISO_IR 192": "utf-8",
	"GB18030":    "gb18030",
	"GBK":        "gbk",
	// TODO: properly support ISO 2022 code extensions instead of mapping the
	// leading designator straight to its single-byte equivalent.
	"ISO 2022 IR 6":   "us-ascii",
	"ISO 2022 IR 100": "iso-ir-100",
	"ISO 2022 IR 101": "iso-ir-101",
	"ISO 2022 IR 109": "iso-ir-109",
	"ISO 2022 IR 110": "iso-ir-110",
	"ISO 2022 IR 144": "iso-ir-144",
	"ISO 2022 IR 127": "iso-ir-127",
	"ISO 2022 IR 126": "iso-ir-126",
	"ISO 2022 IR 138": "iso-ir-138",
	"ISO 2022 IR 148": "iso-ir-148",
	"ISO 2022 IR 13":  "shift-jis",
	"ISO 2022 IR 166": "tis-620",
	"ISO 2022 IR 87":  "iso-2022-jp",
	"ISO 2022 IR 159": "iso-2022-jp",
	"ISO 2022 IR 149": "iso-ir-149",
}

// lookupEncoding resolves a single SpecificCharacterSet defined term to an
// encoding.Encoding.
func lookupEncoding(term string) (encoding.Encoding, error) {
	label, ok := lookupLabelByTerm[term]
	if !ok {
		return nil, fmt.Errorf("dicom: specific character set defined term not found: %v", term)
	}
	coding, _ := charset.Lookup(label)
	if coding == nil {
		return nil, fmt.Errorf("dicom: missing encoding for label %q", label)
	}
	return coding, nil
}

// CharacterSetDecoder decodes byte strings using the character set(s)
// declared by a dataset's (0008,0005) SpecificCharacterSet element. It is
// the external collaborator spec.md section 9 describes: the core pipeline
// only observes and surfaces SpecificCharacterSet bytes (CollectStage does
// this via CollectedElementsPart.CharacterSets), it never decodes text
// itself.
type CharacterSetDecoder struct {
	encodings []encoding.Encoding
}

// NewCharacterSetDecoder builds a CharacterSetDecoder from the raw value of
// a SpecificCharacterSet element (its backslash-separated defined terms, as
// collected by CollectStage). An empty value decodes using
// DefaultCharacterRepertoire.
func NewCharacterSetDecoder(specificCharacterSet string) (*CharacterSetDecoder, error) {
	terms := strings.Split(specificCharacterSet, "\\")
	var encodings []encoding.Encoding
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		enc, err := lookupEncoding(term)
		if err != nil {
			return nil, err
		}
		encodings = append(encodings, enc)
	}
	if len(encodings) == 0 {
		encodings = []encoding.Encoding{DefaultCharacterRepertoire}
	}
	return &CharacterSetDecoder{encodings}, nil
}

// Decode decodes raw value bytes of a string VR into text, using the first
// configured character set. Multi-byte ISO 2022 escape-sequence switching
// between the configured character sets mid-value is not supported; this
// matches the teacher's own TODOs in charactersets.go.
func (d *CharacterSetDecoder) Decode(raw []byte) (string, error) {
	decoded, err := d.encodings[0].NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("dicom: decoding value with character set: %w", err)
	}
	return string(decoded), nil
}
