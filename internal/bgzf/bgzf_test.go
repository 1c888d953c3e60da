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

package bgzf

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func TestOffset(t *testing.T) {
	testCases := []struct {
		name  string
		file  uint64
		block uint16
	}{
		{"zero", 0, 0},
		{"block only", 0, 0xffff},
		{"file only", 0xffff, 0},
		{"maximum value", 0x0000ffffffffffff, 0xffff},
		{"mixed", 0x1234, 0x5678},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			offset := NewOffset(tc.file, tc.block)
			if got, want := offset.File(), tc.file; got != want {
				t.Errorf("Wrong file position: got 0x%x, want 0x%x", got, want)
			}
			if got, want := offset.Block(), tc.block; got != want {
				t.Errorf("Wrong block position: got 0x%x, want 0x%x", got, want)
			}
		})
	}
}

func TestLastOffset(t *testing.T) {
	if got, want := NewOffset(LastOffset.File(), LastOffset.Block()), LastOffset; got != want {
		t.Errorf("Repacking LastOffset: got %x, want %x", uint64(got), uint64(want))
	}
}

func TestChunk_String(t *testing.T) {
	testCases := []struct {
		name       string
		begin, end Offset
		want       string
	}{
		{"zero", 0, 0, "[0-0]"},
		{"same block", 0, 0xffff, "[0-ffff]"},
		{"different block", 0, 0xaffff, "[0-affff]"},
		{"0 -> limit", 0, LastOffset, "[0-ffffffffffffffff]"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			chunk := Chunk{tc.begin, tc.end}
			if got, want := chunk.String(), tc.want; got != want {
				t.Errorf("String(): got %q, want %q", got, want)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	testCases := []struct {
		name   string
		limit  uint64
		input  string
		merged string
	}{
		{
			"no chunks",
			1024,
			"",
			"",
		},
		{
			"single chunk",
			1024,
			"0-10",
			"0-10",
		},
		{
			"three chunks, same block, all overlapping",
			1024,
			"0-10,10-40,40-80",
			"0-80",
		},
		{
			"three chunks, same block, one not overlapping",
			1024,
			"0-10,20-40,40-80",
			"0-10,20-80",
		},
		{
			"unsorted (but mergeable) chunks",
			1024,
			"40-80,10-40,0-10",
			"0-80",
		},
		{
			"two chunks, same block, too large",
			32768,
			"0-8000,9000-a000",
			"0-8000,9000-a000",
		},
		{
			"two chunks, same block, exactly small enough",
			32768,
			"0-7000,7000-8000",
			"0-8000",
		},
		{
			"two chunks, different blocks, ok to merge",
			64*1024 + 4096,
			"00000000-00008000,00008000-10000000",
			"00000000-10000000",
		},
		{
			"two chunks, different blocks, too big",
			64*1024 + 4096 - 1,
			"00000000-00008000,00008000-10000000",
			"00000000-00008000,00008000-10000000",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input, err := parseChunkString(tc.input)
			if err != nil {
				t.Fatalf("Bad chunk string: %v", err)
			}
			want, err := parseChunkString(tc.merged)
			if err != nil {
				t.Fatalf("Bad chunk string: %v", err)
			}
			if got := Merge(input, tc.limit); !reflect.DeepEqual(got, want) {
				t.Errorf("Merge: got %s, want %s", got, want)
			}
		})
	}
}

func TestEncodeDecodeBlocks(t *testing.T) {
	blocks := [][]byte{
		[]byte("##fileformat=VCFv4.2\n"),
		[]byte("chr1\t100\t.\tA\tT\t50\tPASS\t.\n"),
		nil, // EOF marker.
	}

	var file bytes.Buffer
	sizes := make([]uint16, len(blocks))
	for i, data := range blocks {
		encoded, err := EncodeBlock(data)
		if err != nil {
			t.Fatalf("EncodeBlock(%d) returned error: %v", i, err)
		}
		sizes[i] = uint16(len(encoded))
		file.Write(encoded)
	}

	// Decode sequentially from a ByteReader so that the gzip reader does not
	// read past the end of each block.
	r := bytes.NewReader(file.Bytes())
	for i, want := range blocks {
		data, size, err := DecodeBlock(r)
		if err != nil {
			t.Fatalf("DecodeBlock(%d) returned error: %v", i, err)
		}
		if got, want := size, sizes[i]; got != want {
			t.Errorf("Block %d: wrong compressed size: got %d, want %d", i, got, want)
		}
		if !bytes.Equal(data, want) {
			t.Errorf("Block %d: wrong contents: got %q, want %q", i, data, want)
		}
	}
}

func TestDecodeBlock_InvalidInputs(t *testing.T) {
	var noExtra bytes.Buffer
	zw := gzip.NewWriter(&noExtra)
	if _, err := zw.Write([]byte("data")); err != nil {
		t.Fatalf("Failed to write gzip member: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close gzip member: %v", err)
	}

	testCases := []struct {
		name  string
		input []byte
	}{
		{"empty input", nil},
		{"not gzip", []byte("plain text, definitely not gzip")},
		{"missing extra field", noExtra.Bytes()},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := DecodeBlock(bytes.NewReader(tc.input)); err == nil {
				t.Fatalf("DecodeBlock(): expected error, not success")
			}
		})
	}
}

func TestEncodeBlock_BlockSizes(t *testing.T) {
	if _, err := EncodeBlock(make([]byte, MaximumBlockSize+1)); err == nil {
		t.Fatal("EncodeBlock() should fail with block over size limit but didn't")
	}
	if _, err := EncodeBlock(make([]byte, MaximumBlockSize)); err != nil {
		t.Fatal("EncodeBlock() should succeed with block at size limit but didn't")
	}
}

func parseChunkString(input string) ([]Chunk, error) {
	if input == "" {
		return nil, nil
	}
	var chunks []Chunk
	for _, s := range strings.Split(input, ",") {
		v := strings.Split(s, "-")
		begin, err := strconv.ParseUint(v[0], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing chunk begin: %v", err)
		}
		end, err := strconv.ParseUint(v[1], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing chunk end: %v", err)
		}
		chunks = append(chunks, Chunk{Offset(begin), Offset(end)})
	}
	return chunks, nil
}
