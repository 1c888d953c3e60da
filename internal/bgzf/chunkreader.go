// Copyright 2019 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bgzf

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/googlegenomics/vcfdiff/internal/storage"
)

// blockHeaderSize is the size of the fixed-layout BGZF block header: the
// gzip header, the extra field length, and the BC subfield carrying BSIZE.
const blockHeaderSize = 18

// ChunkReader streams the uncompressed contents of a single BGZF chunk read
// from a range-readable object.  It honors the intra-block positions of the
// chunk bounds, trimming the first and last blocks as needed.
type ChunkReader struct {
	src    *bufio.Reader
	closer io.Closer
	chunk  Chunk
	offset uint64
	data   []byte
	done   bool
}

// NewChunkReader opens a reader over the given chunk of object.  A chunk
// ending at LastOffset reads through to the end of the object.
func NewChunkReader(ctx context.Context, object storage.Object, chunk Chunk) (*ChunkReader, error) {
	offset := chunk.Begin.File()
	length := int64(-1)
	if chunk.End != LastOffset {
		length = int64(chunk.End.File()-offset) + MaximumBlockSize
	}
	r, err := object.NewRangeReader(ctx, int64(offset), length)
	if err != nil {
		return nil, fmt.Errorf("opening chunk %v: %v", chunk, err)
	}
	return &ChunkReader{
		src:    bufio.NewReader(r),
		closer: r,
		chunk:  chunk,
		offset: offset,
	}, nil
}

// Read implements io.Reader.
func (r *ChunkReader) Read(p []byte) (int, error) {
	for len(r.data) == 0 {
		if r.done {
			return 0, io.EOF
		}
		if err := r.fill(); err != nil {
			return 0, err
		}
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

// Close releases the underlying range reader.
func (r *ChunkReader) Close() error {
	r.done = true
	return r.closer.Close()
}

// fill decodes the next block of the chunk into r.data.  It reads the fixed
// block header first so that the position of the following block is known
// exactly, independent of how the decompressor buffers its input.
func (r *ChunkReader) fill() error {
	end := r.chunk.End.File()
	if r.offset > end || (r.offset == end && r.chunk.End.Block() == 0) {
		r.done = true
		return nil
	}

	var header [blockHeaderSize]byte
	if _, err := io.ReadFull(r.src, header[:]); err != nil {
		if err == io.EOF {
			r.done = true
			return nil
		}
		return fmt.Errorf("reading block header at %d: %v", r.offset, err)
	}
	if header[0] != 0x1f || header[1] != 0x8b {
		return fmt.Errorf("bad gzip magic at offset %d", r.offset)
	}
	if header[12] != 'B' || header[13] != 'C' {
		return fmt.Errorf("missing BC subfield at offset %d", r.offset)
	}

	size := int(uint16(header[16])|uint16(header[17])<<8) + 1
	if size < blockHeaderSize {
		return fmt.Errorf("invalid block size %d at offset %d", size, r.offset)
	}
	block := make([]byte, size)
	copy(block, header[:])
	if _, err := io.ReadFull(r.src, block[blockHeaderSize:]); err != nil {
		return fmt.Errorf("reading block at %d: %v", r.offset, err)
	}

	data, _, err := DecodeBlock(bytes.NewReader(block))
	if err != nil {
		return fmt.Errorf("decoding block at %d: %v", r.offset, err)
	}

	if r.offset == end {
		if off := int(r.chunk.End.Block()); off <= len(data) {
			data = data[:off]
		} else {
			return fmt.Errorf("chunk end offset %d beyond block size %d", off, len(data))
		}
		r.done = true
	}
	if r.offset == r.chunk.Begin.File() {
		if off := int(r.chunk.Begin.Block()); off <= len(data) {
			data = data[off:]
		} else {
			return fmt.Errorf("chunk begin offset %d beyond block size %d", off, len(data))
		}
	}
	r.data = data
	r.offset += uint64(size)
	return nil
}
