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

package vcf

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/googlegenomics/vcfdiff/genomics"
	"github.com/googlegenomics/vcfdiff/internal/bgzf"
	"github.com/googlegenomics/vcfdiff/internal/storage"
	"github.com/googlegenomics/vcfdiff/internal/tabix"
)

const (
	// maximumLineLength bounds a single VCF line.  Lines for cohorts with
	// many samples can run to megabytes.
	maximumLineLength = 16 * 1024 * 1024

	// maximumMergedChunk bounds the gap-spanning size of merged index
	// chunks.  Larger values trade wasted reads for fewer range requests.
	maximumMergedChunk = 64 * 1024 * 1024
)

var indexSuffixes = []string{".tbi", ".csi"}

// Reader provides indexed access to the records of a BGZF-compressed,
// tabix-indexed VCF object.  The index is parsed once when the reader is
// opened, and each Fetch call reads independently from the underlying
// object, so a single reader may serve concurrent fetches.
type Reader struct {
	data   storage.Object
	index  *tabix.Index
	header []string
}

// Open opens the VCF object at url, locating its index at url + ".tbi" or
// url + ".csi".
func Open(ctx context.Context, url string) (*Reader, error) {
	return OpenWith(ctx, "", url)
}

// OpenWith behaves like Open, forwarding authorization to the storage layer.
func OpenWith(ctx context.Context, authorization, url string) (*Reader, error) {
	data, err := storage.OpenWith(ctx, authorization, url)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %v", url, err)
	}
	var lastErr error
	for _, suffix := range indexSuffixes {
		index, err := storage.OpenWith(ctx, authorization, url+suffix)
		if err != nil {
			lastErr = fmt.Errorf("%s%s: %v", url, suffix, err)
			continue
		}
		reader, err := OpenIndexed(ctx, data, index)
		if err != nil {
			lastErr = fmt.Errorf("%s%s: %v", url, suffix, err)
			continue
		}
		return reader, nil
	}
	return nil, fmt.Errorf("locating index for %s: %v", url, lastErr)
}

// OpenIndexed opens a VCF object using an explicit index object.
func OpenIndexed(ctx context.Context, data, index storage.Object) (*Reader, error) {
	r, err := index.NewRangeReader(ctx, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("opening index: %v", err)
	}
	defer r.Close()

	idx, err := tabix.Read(r)
	if err != nil {
		return nil, fmt.Errorf("reading index: %v", err)
	}

	reader := &Reader{data: data, index: idx}
	if err := reader.readHeader(ctx); err != nil {
		return nil, err
	}
	return reader, nil
}

func (r *Reader) readHeader(ctx context.Context) error {
	cr, err := bgzf.NewChunkReader(ctx, r.data, bgzf.Chunk{Begin: 0, End: bgzf.LastOffset})
	if err != nil {
		return fmt.Errorf("opening header: %v", err)
	}
	defer cr.Close()

	scanner := bufio.NewScanner(cr)
	scanner.Buffer(make([]byte, 0, 64*1024), maximumLineLength)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "#") {
			break
		}
		r.header = append(r.header, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading header: %v", err)
	}
	return nil
}

// Header returns the header lines captured when the reader was opened,
// without trailing newlines.
func (r *Reader) Header() []string {
	return r.header
}

// Fetch returns a scanner over the records overlapping region, in file
// order.  Fetching an unknown chromosome is an error.
func (r *Reader) Fetch(ctx context.Context, region genomics.Region) (*Scanner, error) {
	var chunks []bgzf.Chunk
	if region.Chrom == "" {
		chunks = []bgzf.Chunk{{Begin: 0, End: bgzf.LastOffset}}
	} else {
		id, ok := r.index.ReferenceID(region.Chrom)
		if !ok {
			return nil, fmt.Errorf("unknown chromosome %q", region.Chrom)
		}
		chunks = bgzf.Merge(r.index.Chunks(id, region.Start, region.End), maximumMergedChunk)
	}
	return &Scanner{ctx: ctx, object: r.data, chunks: chunks, region: region}, nil
}

// Scanner iterates over the records within a set of BGZF chunks, filtered to
// a region.  It follows the bufio.Scanner idiom: Scan advances to the next
// record, Record returns it, and Err reports the first error.  The scanner
// releases its reader when Scan returns false.
type Scanner struct {
	ctx    context.Context
	object storage.Object
	chunks []bgzf.Chunk
	region genomics.Region

	reader *bgzf.ChunkReader
	lines  *bufio.Scanner
	rec    *Record
	err    error
	done   bool
}

// Scan advances the scanner to the next record overlapping the region.
func (s *Scanner) Scan() bool {
	if s.done || s.err != nil {
		return false
	}
	for {
		if s.lines == nil {
			if len(s.chunks) == 0 {
				s.done = true
				return false
			}
			reader, err := bgzf.NewChunkReader(s.ctx, s.object, s.chunks[0])
			if err != nil {
				s.err = fmt.Errorf("opening chunk: %v", err)
				return false
			}
			s.chunks = s.chunks[1:]
			s.reader = reader
			s.lines = bufio.NewScanner(reader)
			s.lines.Buffer(make([]byte, 0, 64*1024), maximumLineLength)
		}
		if !s.lines.Scan() {
			err := s.lines.Err()
			s.close()
			if err != nil {
				s.err = fmt.Errorf("reading records: %v", err)
				return false
			}
			continue
		}
		line := s.lines.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			s.close()
			s.err = fmt.Errorf("parsing record: %v", err)
			return false
		}
		if !s.overlaps(rec) {
			if s.pastRegion(rec) {
				s.close()
				s.done = true
				return false
			}
			continue
		}
		s.rec = rec
		return true
	}
}

// Record returns the record advanced to by the last call to Scan.
func (s *Scanner) Record() *Record {
	return s.rec
}

// Err returns the first error encountered by the scanner.
func (s *Scanner) Err() error {
	return s.err
}

func (s *Scanner) close() {
	if s.reader != nil {
		s.reader.Close()
		s.reader, s.lines = nil, nil
	}
}

func (s *Scanner) overlaps(rec *Record) bool {
	if s.region.Chrom == "" {
		return true
	}
	if rec.Chrom != s.region.Chrom {
		return false
	}
	if s.region.End > 0 && rec.Start() >= s.region.End {
		return false
	}
	return rec.End() > s.region.Start
}

// pastRegion reports whether rec starts at or beyond the region end.  No
// later record of a position-sorted file can overlap the region, so the
// scan stops early.
func (s *Scanner) pastRegion(rec *Record) bool {
	return s.region.Chrom != "" && rec.Chrom == s.region.Chrom &&
		s.region.End > 0 && rec.Start() >= s.region.End
}
