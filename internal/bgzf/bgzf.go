// Copyright 2017 Google Inc.
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

// Package bgzf reads the blocked gzip format used by indexed VCF files.  A
// BGZF file is a series of gzip members of bounded size, so that an index
// can address any byte of the uncompressed stream by the position of its
// block and its position inside that block.
package bgzf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/gzip"
)

// MaximumBlockSize is the largest allowed size of a single block,
// compressed or uncompressed.
const MaximumBlockSize = 0x10000

// Offset is a virtual file offset: the upper 48 bits hold the position of a
// block in the compressed file, the lower 16 bits a position in that
// block's uncompressed data.
type Offset uint64

// LastOffset is the largest valid virtual file offset.
const LastOffset = Offset(0xffffffffffffffff)

// NewOffset packs the two positions into a virtual file offset.
func NewOffset(file uint64, block uint16) Offset {
	return Offset(file<<16 | uint64(block))
}

// File returns the position of the block in the compressed file.
func (o Offset) File() uint64 {
	return uint64(o >> 16)
}

// Block returns the position of the data in the uncompressed block.
func (o Offset) Block() uint16 {
	return uint16(o & 0xffff)
}

// Chunk is the range of the uncompressed stream from Begin up to End.
type Chunk struct {
	Begin, End Offset
}

// String renders the chunk bounds as hexadecimal virtual file offsets.
func (c Chunk) String() string {
	return fmt.Sprintf("[%x-%x]", uint64(c.Begin), uint64(c.End))
}

// Merge combines chunks that overlap, as long as the combined chunk cannot
// span more than sizeLimit bytes of compressed data.  The input is sorted
// in place.
func Merge(chunks []Chunk, sizeLimit uint64) []Chunk {
	if len(chunks) < 2 {
		return chunks
	}
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Begin < chunks[j].Begin
	})

	merged := []Chunk{chunks[0]}
	for _, next := range chunks[1:] {
		last := &merged[len(merged)-1]

		var size uint64
		if next.End.File() == last.Begin.File() {
			size = uint64(next.End.Block() - last.Begin.Block())
		} else {
			// The compressed size of the final block is not knowable
			// here, so assume the worst.
			size = next.End.File() - last.Begin.File() + MaximumBlockSize
		}
		if next.Begin <= last.End && size <= sizeLimit {
			if last.End < next.End {
				last.End = next.End
			}
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

// DecodeBlock reads a single block from r and returns the uncompressed data
// and the compressed block size.  When r does not implement io.ByteReader
// the decompressor may consume bytes past the end of the block.
func DecodeBlock(r io.Reader) ([]byte, uint16, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("reading gzip header: %v", err)
	}
	defer zr.Close()

	extra := zr.Header.Extra
	if len(extra) < 6 || extra[0] != 'B' || extra[1] != 'C' {
		return nil, 0, errors.New("missing BC subfield")
	}
	if extra[2] != 2 || extra[3] != 0 {
		return nil, 0, fmt.Errorf("wrong BC subfield length: %d", uint16(extra[2])|uint16(extra[3])<<8)
	}

	zr.Multistream(false)
	var data bytes.Buffer
	if _, err := io.Copy(&data, zr); err != nil {
		return nil, 0, fmt.Errorf("decompressing block: %v", err)
	}
	return data.Bytes(), (uint16(extra[4]) | uint16(extra[5])<<8) + 1, nil
}

// EncodeBlock compresses data into a single block.
func EncodeBlock(data []byte) ([]byte, error) {
	if len(data) > MaximumBlockSize {
		return nil, fmt.Errorf("block size %d exceeds maximum %d", len(data), MaximumBlockSize)
	}

	var buffer bytes.Buffer
	zw := gzip.NewWriter(&buffer)
	zw.Header.Extra = []byte{'B', 'C', 2, 0, 0, 0}
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compressing block: %v", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("flushing block: %v", err)
	}

	// BSIZE is the total block size minus one, stored in the last two
	// bytes of the extra field reserved above.
	block := buffer.Bytes()
	bsize := len(block) - 1
	block[blockHeaderSize-2] = byte(bsize)
	block[blockHeaderSize-1] = byte(bsize >> 8)
	return block, nil
}
