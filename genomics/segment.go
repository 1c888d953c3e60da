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

package genomics

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Segment is a contiguous, zero-based, half-open span of a single chromosome.
type Segment struct {
	Chrom      string
	Start, End uint32
}

// Length returns the number of base pairs the segment covers.
func (s Segment) Length() uint32 {
	return s.End - s.Start
}

// Left returns the left half of the segment.  The right half receives the
// middle base when the length is odd, so the two halves together cover
// exactly the original span.
func (s Segment) Left() Segment {
	return Segment{s.Chrom, s.Start, s.Start + s.Length()/2}
}

// Right returns the right half of the segment.
func (s Segment) Right() Segment {
	return Segment{s.Chrom, s.Start + s.Length()/2, s.End}
}

// Region returns the region covered by the segment.
func (s Segment) Region() Region {
	return Region{Chrom: s.Chrom, Start: s.Start, End: s.End}
}

// String returns a human readable representation of the segment.
func (s Segment) String() string {
	return fmt.Sprintf("%s:%d-%d (%d bp)", s.Chrom, s.Start, s.End, s.Length())
}

// ChromLength names a chromosome and its length in base pairs.
type ChromLength struct {
	Chrom  string
	Length uint32
}

// ReadChromLengths parses a chromosome lengths table from r.  Each non-empty
// line provides a chromosome name and its length in base pairs, separated by
// whitespace.  Additional columns are ignored, which allows a FASTA index
// (.fai) file to be used directly.
func ReadChromLengths(r io.Reader) ([]ChromLength, error) {
	var lengths []ChromLength
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("malformed chromosome length line %q", line)
		}
		n, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parsing length of %s: %v", fields[0], err)
		}
		lengths = append(lengths, ChromLength{Chrom: fields[0], Length: uint32(n)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading chromosome lengths: %v", err)
	}
	return lengths, nil
}

// Split partitions the listed chromosomes into n buckets of segments with
// approximately equal total length.  Chromosomes no longer than minLength
// are left out entirely.  Longer chromosomes become segments which are
// bisected, largest first, until at least n exist, and the segments are then
// dealt to the buckets in rotation from largest to smallest.
func Split(lengths []ChromLength, n int, minLength uint32) ([][]Segment, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid bucket count %d", n)
	}

	var segments []Segment
	for _, cl := range lengths {
		if cl.Length > minLength {
			segments = append(segments, Segment{Chrom: cl.Chrom, Start: 0, End: cl.Length})
		}
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("no chromosomes longer than %d bp", minLength)
	}

	byLength := func(i, j int) bool {
		if segments[i].Length() != segments[j].Length() {
			return segments[i].Length() < segments[j].Length()
		}
		if segments[i].Chrom != segments[j].Chrom {
			return segments[i].Chrom < segments[j].Chrom
		}
		return segments[i].Start < segments[j].Start
	}
	sort.Slice(segments, byLength)
	for len(segments) < n {
		largest := segments[len(segments)-1]
		segments = append(segments[:len(segments)-1], largest.Left(), largest.Right())
		sort.Slice(segments, byLength)
	}

	buckets := make([][]Segment, n)
	next := 0
	for i := len(segments) - 1; i >= 0; i-- {
		buckets[next] = append(buckets[next], segments[i])
		next = (next + 1) % n
	}
	return buckets, nil
}
