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
	"bytes"
	"encoding/binary"
)

// dcmWriter accumulates the bytes of a synthesized part (an inserted or
// rewritten header) into an in-memory buffer. ModifyStage uses it to build
// the exact on-the-wire bytes a synthesized HeaderPart must carry.
type dcmWriter struct {
	buf bytes.Buffer
}

func (dw *dcmWriter) Tag(order binary.ByteOrder, tag Tag) {
	dw.UInt16(order, tag.Group())
	dw.UInt16(order, tag.Element())
}

func (dw *dcmWriter) UInt16(order binary.ByteOrder, v uint16) {
	var b [2]byte
	order.PutUint16(b[:], v)
	dw.buf.Write(b[:])
}

func (dw *dcmWriter) UInt32(order binary.ByteOrder, v uint32) {
	var b [4]byte
	order.PutUint32(b[:], v)
	dw.buf.Write(b[:])
}

func (dw *dcmWriter) String(s string) {
	dw.buf.WriteString(s)
}

func (dw *dcmWriter) Bytes() []byte {
	return dw.buf.Bytes()
}
