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

// Package tabix provides support for parsing tabix (TBI) and CSI index
// files, which index BGZF-compressed, coordinate-sorted text files such as
// VCFs.
package tabix

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/googlegenomics/vcfdiff/internal/bgzf"
	"github.com/googlegenomics/vcfdiff/internal/binary"
)

const (
	tbiMagic = "TBI\x01"
	csiMagic = "CSI\x01"

	// TBI indexes always use the BAI binning scheme from the SAM
	// specification, section 5.1.1.
	tbiMinShift = 14
	tbiDepth    = 5

	// The size of each tiling window from the linear index, as specified in
	// the SAM specification section 5.1.3.
	linearWindowSize = 1 << 14

	// This is just to prevent arbitrarily long allocations due to malformed
	// data.  No name table should be longer than this in practice.
	maximumNameTableLength = 1 << 24
)

// Index is a parsed TBI or CSI index.  It maps reference names to IDs and
// genomic ranges to the BGZF chunks that may contain overlapping records.
type Index struct {
	minShift, depth int32
	ids             map[string]int32
	refs            []reference
}

type reference struct {
	bins      map[uint32]*bin
	intervals []bgzf.Offset
}

type bin struct {
	offset bgzf.Offset
	chunks []bgzf.Chunk
}

// Read parses a gzip-compressed TBI or CSI index from r.
func Read(r io.Reader) (*Index, error) {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("initializing gzip reader: %v", err)
	}
	defer gzr.Close()

	magic := make([]byte, 4)
	if _, err := io.ReadFull(gzr, magic); err != nil {
		return nil, fmt.Errorf("reading magic: %v", err)
	}
	switch string(magic) {
	case tbiMagic:
		return readTBI(gzr)
	case csiMagic:
		return readCSI(gzr)
	}
	return nil, fmt.Errorf("unsupported index magic %q", magic)
}

// ReferenceID returns the numeric ID of the named reference sequence.
func (idx *Index) ReferenceID(name string) (int32, bool) {
	id, ok := idx.ids[name]
	return id, ok
}

// Chunks returns the BGZF chunks that may contain records overlapping the
// zero-based, half-open range [start, end) on the reference with the given
// ID.  An end of zero means the end of the reference.
func (idx *Index) Chunks(refID int32, start, end uint32) []bgzf.Chunk {
	if refID < 0 || int(refID) >= len(idx.refs) {
		return nil
	}
	ref := idx.refs[refID]

	var minOffset bgzf.Offset
	if i := int(start / linearWindowSize); i < len(ref.intervals) {
		minOffset = ref.intervals[i]
	}

	var chunks []bgzf.Chunk
	for _, id := range binsForRange(start, end, idx.minShift, idx.depth) {
		b, ok := ref.bins[id]
		if !ok {
			continue
		}
		for _, c := range b.chunks {
			if c.End < minOffset || c.End < b.offset {
				continue
			}
			chunks = append(chunks, c)
		}
	}
	return chunks
}

// tabixConfig is the tabix header describing the indexed file: the file
// format, the columns holding coordinates, the comment character, the lines
// to skip, and the length of the reference name table.
type tabixConfig struct {
	Format, ColSeq, ColBeg, ColEnd int32
	Meta, Skip                     int32
	NameLength                     int32
}

func readTBI(r io.Reader) (*Index, error) {
	var refCount int32
	if err := binary.Read(r, &refCount); err != nil {
		return nil, fmt.Errorf("reading reference count: %v", err)
	}
	var conf tabixConfig
	if err := binary.Read(r, &conf); err != nil {
		return nil, fmt.Errorf("reading configuration: %v", err)
	}

	idx := &Index{minShift: tbiMinShift, depth: tbiDepth}
	if err := idx.readNames(r, conf.NameLength, refCount); err != nil {
		return nil, err
	}
	for i := int32(0); i < refCount; i++ {
		ref, err := readReference(r, false, maximumBinID(idx.depth))
		if err != nil {
			return nil, fmt.Errorf("reading reference %d: %v", i, err)
		}
		idx.refs = append(idx.refs, ref)
	}
	return idx, nil
}

func readCSI(r io.Reader) (*Index, error) {
	var header struct {
		MinShift, Depth, AuxLength int32
	}
	if err := binary.Read(r, &header); err != nil {
		return nil, fmt.Errorf("reading header: %v", err)
	}
	if header.MinShift < 0 || header.Depth < 0 || header.Depth > 10 {
		return nil, fmt.Errorf("invalid binning scheme (shift %d, depth %d)", header.MinShift, header.Depth)
	}
	if header.AuxLength < 28 {
		return nil, fmt.Errorf("index has no tabix configuration")
	}
	var conf tabixConfig
	if err := binary.Read(r, &conf); err != nil {
		return nil, fmt.Errorf("reading configuration: %v", err)
	}
	if conf.NameLength != header.AuxLength-28 {
		return nil, fmt.Errorf("inconsistent auxiliary data length")
	}

	idx := &Index{minShift: header.MinShift, depth: header.Depth}
	var refCount int32
	if err := idx.readNames(r, conf.NameLength, -1); err != nil {
		return nil, err
	}
	if err := binary.Read(r, &refCount); err != nil {
		return nil, fmt.Errorf("reading reference count: %v", err)
	}
	if int32(len(idx.ids)) != refCount {
		return nil, fmt.Errorf("index names %d references, expected %d", len(idx.ids), refCount)
	}
	for i := int32(0); i < refCount; i++ {
		ref, err := readReference(r, true, maximumBinID(idx.depth))
		if err != nil {
			return nil, fmt.Errorf("reading reference %d: %v", i, err)
		}
		idx.refs = append(idx.refs, ref)
	}
	return idx, nil
}

// readNames reads the reference name table.  A negative refCount skips the
// count consistency check.
func (idx *Index) readNames(r io.Reader, length, refCount int32) error {
	if length < 0 || length > maximumNameTableLength {
		return fmt.Errorf("invalid name table length (%d bytes)", length)
	}
	names, err := binary.ReadStrings(r, length)
	if err != nil {
		return fmt.Errorf("reading reference names: %v", err)
	}
	if refCount >= 0 && int32(len(names)) != refCount {
		return fmt.Errorf("index names %d references, expected %d", len(names), refCount)
	}
	idx.ids = make(map[string]int32, len(names))
	for i, name := range names {
		idx.ids[name] = int32(i)
	}
	return nil
}

// readReference reads the binning index (and, for TBI, the linear index) of
// a single reference.  Bins at or above metadataBin carry chunk metadata
// rather than record locations and are skipped.
func readReference(r io.Reader, csi bool, metadataBin uint32) (reference, error) {
	ref := reference{bins: make(map[uint32]*bin)}

	var binCount int32
	if err := binary.Read(r, &binCount); err != nil {
		return ref, fmt.Errorf("reading bin count: %v", err)
	}
	for j := int32(0); j < binCount; j++ {
		var id uint32
		if err := binary.Read(r, &id); err != nil {
			return ref, fmt.Errorf("reading bin ID: %v", err)
		}
		var offset uint64
		if csi {
			if err := binary.Read(r, &offset); err != nil {
				return ref, fmt.Errorf("reading bin offset: %v", err)
			}
		}
		var chunkCount int32
		if err := binary.Read(r, &chunkCount); err != nil {
			return ref, fmt.Errorf("reading chunk count: %v", err)
		}

		b := &bin{offset: bgzf.Offset(offset)}
		for k := int32(0); k < chunkCount; k++ {
			var chunk bgzf.Chunk
			if err := binary.Read(r, &chunk); err != nil {
				return ref, fmt.Errorf("reading chunk: %v", err)
			}
			if id >= metadataBin {
				continue
			}
			b.chunks = append(b.chunks, chunk)
		}
		if id < metadataBin {
			ref.bins[id] = b
		}
	}

	if !csi {
		var intervals int32
		if err := binary.Read(r, &intervals); err != nil {
			return ref, fmt.Errorf("reading interval count: %v", err)
		}
		if intervals < 0 {
			return ref, fmt.Errorf("invalid interval count (%d intervals)", intervals)
		}
		ref.intervals = make([]bgzf.Offset, intervals)
		if err := binary.Read(r, &ref.intervals); err != nil {
			return ref, fmt.Errorf("reading intervals: %v", err)
		}
	}
	return ref, nil
}

// maximumBinID returns the number of bins in a scheme of the given depth.
// Valid record bins have IDs strictly below it; the TBI metadata pseudo-bin
// (37450) and the CSI equivalent land at or above it.
func maximumBinID(depth int32) uint32 {
	return (uint32(1)<<uint32(3*(depth+1)) - 1) / 7
}

// This function is derived from the C examples in the CSI index
// specification.
func binsForRange(start, end uint32, minShift, depth int32) []uint32 {
	maxWidth := maximumBinWidth(minShift, depth)
	if end == 0 || end > maxWidth {
		end = maxWidth
	}
	if end <= start {
		return nil
	}
	if start > maxWidth {
		return nil
	}

	end--
	var bins []uint32
	for l, t, s := uint(0), uint(0), uint(minShift+depth*3); l <= uint(depth); l++ {
		b := t + (uint(start) >> s)
		e := t + (uint(end) >> s)
		for i := b; i <= e; i++ {
			bins = append(bins, uint32(i))
		}
		s -= 3
		t += 1 << (l * 3)
	}
	return bins
}

func maximumBinWidth(minShift, depth int32) uint32 {
	return uint32(1) << uint32(minShift+depth*3)
}
