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
	"errors"
	"io"
)

// ErrTruncated is returned by ByteReader when upstream signals end of input
// while a pending Ensure is still outstanding.
var ErrTruncated = errors.New("dicom: truncated stream")

// ChunkSource supplies the raw byte chunks a ByteReader accumulates. It is
// the "upstream" side of the pipeline described in spec.md section 5:
// NextChunk is pulled only when the reader is short on buffered bytes.
// NextChunk returns io.EOF, possibly alongside a final non-empty chunk, to
// signal that no further chunks will arrive.
type ChunkSource interface {
	NextChunk() ([]byte, error)
}

// readerChunkSource adapts a plain io.Reader into a ChunkSource by reading
// fixed-size chunks from it, mirroring the countReader wrapper in
// dcmreader.go but at chunk rather than byte granularity.
type readerChunkSource struct {
	r       io.Reader
	bufSize int
}

// NewReaderChunkSource returns a ChunkSource that reads chunkSize-sized
// chunks from r. A non-positive chunkSize is replaced by a 32KiB default.
func NewReaderChunkSource(r io.Reader, chunkSize int) ChunkSource {
	if chunkSize <= 0 {
		chunkSize = 32 * 1024
	}
	return &readerChunkSource{r, chunkSize}
}

func (s *readerChunkSource) NextChunk() ([]byte, error) {
	buf := make([]byte, s.bufSize)
	n, err := io.ReadFull(s.r, buf)
	switch {
	case err == io.ErrUnexpectedEOF:
		return buf[:n], io.EOF
	case err == io.EOF:
		return nil, io.EOF
	case err != nil:
		return nil, err
	}
	return buf, nil
}

// ByteReader accumulates chunks from a ChunkSource into a queue of buffers
// and exposes a cursor over their concatenation, per spec.md section 4.1.
// Peek and Take return the requested bytes as a fresh copy, and fully
// consumed buffers are dropped immediately so their memory can be
// reclaimed.
type ByteReader struct {
	source    ChunkSource
	buffers   [][]byte
	offset    int // read offset into buffers[0]
	available int // total unread bytes currently buffered
	eof       bool
	bytesRead int64
}

// NewByteReader returns a ByteReader pulling chunks from source on demand.
func NewByteReader(source ChunkSource) *ByteReader {
	return &ByteReader{source: source}
}

// BytesRead returns the total number of bytes consumed via Take/Discard so
// far. It is used to compute byte offsets for structural parts.
func (b *ByteReader) BytesRead() int64 {
	return b.bytesRead
}

// Ensure pulls chunks from upstream, if necessary, until at least n bytes
// are buffered, or upstream is exhausted. It returns true iff n bytes ended
// up available.
func (b *ByteReader) Ensure(n int) (bool, error) {
	for b.available < n && !b.eof {
		chunk, err := b.source.NextChunk()
		if len(chunk) > 0 {
			b.buffers = append(b.buffers, chunk)
			b.available += len(chunk)
		}
		if err == io.EOF {
			b.eof = true
		} else if err != nil {
			return false, err
		}
	}
	return b.available >= n, nil
}

// Peek returns the next n bytes without consuming them. It fails with
// ErrTruncated if fewer than n bytes remain and upstream is exhausted.
func (b *ByteReader) Peek(n int) ([]byte, error) {
	ok, err := b.Ensure(n)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTruncated
	}

	out := make([]byte, 0, n)
	remaining := n
	offset := b.offset
	for _, buf := range b.buffers {
		avail := len(buf) - offset
		if avail <= 0 {
			offset -= len(buf)
			continue
		}
		take := avail
		if take > remaining {
			take = remaining
		}
		out = append(out, buf[offset:offset+take]...)
		remaining -= take
		offset = 0
		if remaining == 0 {
			break
		}
	}
	return out, nil
}

// Take consumes and returns the next n bytes, compacting across buffer
// boundaries as needed. It fails with ErrTruncated if fewer than n bytes
// remain and upstream is exhausted.
func (b *ByteReader) Take(n int) ([]byte, error) {
	out, err := b.Peek(n)
	if err != nil {
		return nil, err
	}
	if err := b.Discard(n); err != nil {
		return nil, err
	}
	return out, nil
}

// Discard consumes and drops the next n bytes without returning them.
func (b *ByteReader) Discard(n int) error {
	ok, err := b.Ensure(n)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTruncated
	}

	b.available -= n
	b.bytesRead += int64(n)
	for n > 0 {
		head := b.buffers[0]
		remaining := len(head) - b.offset
		if n < remaining {
			b.offset += n
			return nil
		}
		n -= remaining
		b.buffers = b.buffers[1:]
		b.offset = 0
	}
	return nil
}

// AtEnd reports whether the reader has no buffered bytes left and upstream
// has signalled completion.
func (b *ByteReader) AtEnd() (bool, error) {
	ok, err := b.Ensure(1)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// Buffered returns the number of bytes currently held in memory, without
// pulling from upstream. ParseStage uses this to size opportunistic,
// non-blocking reads of pass-through deflated data.
func (b *ByteReader) Buffered() int {
	return b.available
}
