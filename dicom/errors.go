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

import "errors"

// Error kinds per spec.md section 7. Each is a sentinel that a concrete
// error wraps, so callers can match with errors.Is instead of string
// matching, unlike the teacher's plain fmt.Errorf chains.
var (
	// ParseError kinds.
	ErrMalformedHeader          = errors.New("dicom: malformed header")
	ErrUnexpectedEndOfStream    = errors.New("dicom: unexpected end of stream")
	ErrUnsupportedTransferSyntax = errors.New("dicom: unsupported transfer syntax")
	ErrMisalignedLength         = errors.New("dicom: misaligned length")
	ErrNonMonotonicTag          = errors.New("dicom: non-monotonic tag")

	// ValidationError kinds.
	ErrNoValidContext   = errors.New("dicom: no valid context")
	ErrFmiOutOfOrder    = errors.New("dicom: file meta information out of order")
	ErrPreambleCorrupt  = errors.New("dicom: preamble corrupt")

	// ModifyError kinds.
	ErrUnknownTagForInsertion   = errors.New("dicom: unknown tag for insertion")
	ErrCannotInsertSequence     = errors.New("dicom: cannot insert sequence")
	ErrMissingSequenceForInsert = errors.New("dicom: missing sequence for insert")
	ErrEndsWithInsert           = errors.New("dicom: endsWith matcher cannot be used to insert")

	// CollectError kinds.
	ErrCollectBufferOverflow = errors.New("dicom: collect buffer overflow")

	// ResourceError kinds.
	ErrUpstreamFailed = errors.New("dicom: upstream failed")
)
