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
)

// fmiLookaheadBytes bounds how much of the stream ValidateStage buffers
// while hunting for the File Meta Information fields it needs to check
// against its configured contexts, per spec section 4.5.
const fmiLookaheadBytes = 512

type validateMode int

const (
	validateModeUnknown validateMode = iota
	validateModePreamble
	validateModeBare
)

// ValidateStage is a bounded-lookahead gate: it accepts or rejects a stream
// by matching its declared (SOP Class UID, Transfer Syntax UID) against a
// configured set of ValidationContexts, per spec section 4.5.
type ValidateStage struct {
	upstream PartSource
	config   ValidateFlowConfig

	decided bool
	passed  bool
	err     error

	buffered      []DicomPart
	bufferedBytes int

	mode validateMode

	capturingTag Tag
	capturingBuf []byte

	mediaStorageSOPClassUID    string
	haveMediaStorageSOPClassUID bool
	transferSyntaxUID          string
	haveTransferSyntaxUID      bool
	sopClassUID                string
	haveSOPClassUID            bool

	haveLastBareTag bool
	lastBareTag     Tag
}

// NewValidateStage returns a ValidateStage pulling from upstream.
func NewValidateStage(upstream PartSource, config ValidateFlowConfig) *ValidateStage {
	return &ValidateStage{upstream: upstream, config: config}
}

// Next returns the next DicomPart, or the validation error if the stream
// failed the gate.
func (v *ValidateStage) Next() (DicomPart, error) {
	if v.decided {
		if !v.passed {
			return nil, v.err
		}
		if len(v.buffered) > 0 {
			p := v.buffered[0]
			v.buffered = v.buffered[1:]
			return p, nil
		}
		return v.upstream.Next()
	}

	if len(v.config.Contexts) == 0 {
		return v.nextNoContexts()
	}
	return v.nextWithContexts()
}

// nextNoContexts implements spec section 4.5's "no contexts" mode: accept
// iff the stream begins with a valid preamble or a valid first header.
func (v *ValidateStage) nextNoContexts() (DicomPart, error) {
	part, err := v.upstream.Next()
	if err != nil {
		return v.fail(err)
	}
	switch part.(type) {
	case PreamblePart, HeaderPart:
		v.decided = true
		v.passed = true
		return part, nil
	default:
		return v.fail(fmt.Errorf("dicom: stream does not begin with a valid preamble or header: %w", ErrPreambleCorrupt))
	}
}

// nextWithContexts implements spec section 4.5's "with contexts" mode.
func (v *ValidateStage) nextWithContexts() (DicomPart, error) {
	for {
		part, err := v.upstream.Next()
		if err != nil {
			return v.fail(err)
		}
		v.buffered = append(v.buffered, part)
		v.bufferedBytes += len(part.Bytes())

		decided, ok, observeErr := v.observe(part)
		if observeErr != nil {
			return v.fail(observeErr)
		}
		if decided {
			if !ok {
				return v.fail(fmt.Errorf("dicom: no configured validation context matched: %w", ErrNoValidContext))
			}
			v.decided = true
			v.passed = true
			p := v.buffered[0]
			v.buffered = v.buffered[1:]
			return p, nil
		}

		if v.bufferedBytes > fmiLookaheadBytes {
			return v.fail(fmt.Errorf("dicom: file meta information exceeded %d byte lookahead: %w", fmiLookaheadBytes, ErrFmiOutOfOrder))
		}
	}
}

// observe updates ValidateStage's capture state from part and reports
// whether enough information has been gathered to decide (decided), and if
// so whether the decision is a pass (ok).
func (v *ValidateStage) observe(part DicomPart) (decided bool, ok bool, err error) {
	switch p := part.(type) {
	case PreamblePart:
		v.mode = validateModePreamble
		return false, false, nil

	case HeaderPart:
		if v.mode == validateModeUnknown {
			v.mode = validateModeBare
		}
		if v.mode == validateModeBare {
			if v.haveLastBareTag && p.Tag <= v.lastBareTag {
				return true, false, nil
			}
			v.haveLastBareTag = true
			v.lastBareTag = p.Tag
			if p.Tag == SOPClassUIDTag {
				v.capturingTag = SOPClassUIDTag
				v.capturingBuf = nil
				if p.Length == 0 {
					v.finishCapture()
				}
			}
			return false, false, nil
		}

		if p.Tag == MediaStorageSOPClassUIDTag || p.Tag == TransferSyntaxUIDTag {
			v.capturingTag = p.Tag
			v.capturingBuf = nil
			if p.Length == 0 {
				v.finishCapture()
			}
		}
		return false, false, nil

	case ValueChunkPart:
		if v.capturingTag != 0 {
			v.capturingBuf = append(v.capturingBuf, p.Bytes()...)
			if p.Last {
				v.finishCapture()
			}
		}
		if v.mode == validateModePreamble && v.haveMediaStorageSOPClassUID && v.haveTransferSyntaxUID {
			return true, v.config.Matches(v.mediaStorageSOPClassUID, v.transferSyntaxUID), nil
		}
		if v.mode == validateModeBare && v.haveSOPClassUID {
			return true, v.config.Matches(v.sopClassUID, ExplicitVRLittleEndianUID), nil
		}
		return false, false, nil

	default:
		return false, false, nil
	}
}

func (v *ValidateStage) finishCapture() {
	val := strings.TrimRight(string(v.capturingBuf), "\x00 ")
	switch v.capturingTag {
	case MediaStorageSOPClassUIDTag:
		v.mediaStorageSOPClassUID = val
		v.haveMediaStorageSOPClassUID = true
	case TransferSyntaxUIDTag:
		v.transferSyntaxUID = val
		v.haveTransferSyntaxUID = true
	case SOPClassUIDTag:
		v.sopClassUID = val
		v.haveSOPClassUID = true
	}
	v.capturingTag = 0
	v.capturingBuf = nil
}

// fail records the validation failure, optionally draining the remainder
// of upstream first per the configured DrainIncoming policy (spec section
// 4.5), and returns the wrapped error.
func (v *ValidateStage) fail(cause error) (DicomPart, error) {
	v.decided = true
	v.passed = false
	v.buffered = nil
	v.err = fmt.Errorf("dicom: validation failed: %w", cause)
	if v.config.DrainIncoming {
		for {
			if _, err := v.upstream.Next(); err != nil {
				break
			}
		}
	}
	return nil, v.err
}
