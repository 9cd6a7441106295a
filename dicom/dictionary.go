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

// dictionaryEntry is one row of the static DICOM data dictionary: a tag's
// standard VR and human-readable keyword.
type dictionaryEntry struct {
	VR   *VR
	Name string
}

// dictionary is a read-only tag -> (VR, name) lookup table, built once at
// package init and never mutated afterwards. It covers the elements this
// package's stages and tests need to resolve a standard VR for: FMI
// elements, the handful of dataset elements exercised by ModifyStage
// insertion, and one sequence tag (DerivationCodeSequence) used to test the
// guard against inserting a sequence. It is not a complete PS3.6 dictionary -- a
// faithful one is a generated table outside this package's scope (see
// spec.md section 1, "the DICOM dictionary... is a static lookup table").
var dictionary = map[Tag]dictionaryEntry{
	FileMetaInformationGroupLengthTag: {ULVR, "FileMetaInformationGroupLength"},
	Tag(0x00020001):                   {OBVR, "FileMetaInformationVersion"},
	MediaStorageSOPClassUIDTag:        {UIVR, "MediaStorageSOPClassUID"},
	Tag(0x00020003):                   {UIVR, "MediaStorageSOPInstanceUID"},
	TransferSyntaxUIDTag:              {UIVR, "TransferSyntaxUID"},
	Tag(0x00020012):                   {UIVR, "ImplementationClassUID"},
	Tag(0x00020013):                   {SHVR, "ImplementationVersionName"},
	InstanceCreatorUIDTag:             {UIVR, "InstanceCreatorUID"},

	SpecificCharacterSetTag: {CSVR, "SpecificCharacterSet"},
	StudyDateTag:            {DAVR, "StudyDate"},
	Tag(0x00080030):         {TMVR, "StudyTime"},
	SOPClassUIDTag:          {UIVR, "SOPClassUID"},
	Tag(0x00080018):         {UIVR, "SOPInstanceUID"},
	Tag(0x00080060):         {CSVR, "Modality"},
	Tag(0x00089215):         {SQVR, "DerivationCodeSequence"},

	PatientNameTag:  {PNVR, "PatientName"},
	Tag(0x00100020): {LOVR, "PatientID"},
	Tag(0x00100030): {DAVR, "PatientBirthDate"},
	Tag(0x00100040): {CSVR, "PatientSex"},

	Tag(0x00280002): {USVR, "SamplesPerPixel"},
	Tag(0x00280010): {USVR, "Rows"},
	Tag(0x00280011): {USVR, "Columns"},
	Tag(0x00280100): {USVR, "BitsAllocated"},

	PixelDataTag: {OWVR, "PixelData"},
}

// DictionaryVR returns the standard VR for the given tag and whether the
// tag is present in the dictionary.
func DictionaryVR(t Tag) (*VR, bool) {
	entry, ok := dictionary[t]
	if !ok {
		return nil, false
	}
	return entry.VR, true
}

// DictionaryName returns the keyword for the given tag and whether the tag
// is present in the dictionary.
func DictionaryName(t Tag) (string, bool) {
	entry, ok := dictionary[t]
	if !ok {
		return "", false
	}
	return entry.Name, true
}
