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

// Package mask provides genomic position masks backed by BED intervals.
package mask

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/klauspost/compress/gzip"

	"github.com/googlegenomics/vcfdiff/internal/storage"
)

// Mask records genomic positions excluded from comparison.  It is immutable
// after loading and safe for concurrent readers.
type Mask struct {
	contigs map[string]*roaring.Bitmap
}

// Open reads a mask from a BED object.  Gzip-compressed BED files are
// detected and decompressed.
func Open(ctx context.Context, object storage.Object) (*Mask, error) {
	r, err := object.NewRangeReader(ctx, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("opening mask: %v", err)
	}
	defer r.Close()

	br := bufio.NewReader(r)
	head, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading mask: %v", err)
	}
	if len(head) == 2 && head[0] == 0x1f && head[1] == 0x8b {
		gzr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("decompressing mask: %v", err)
		}
		defer gzr.Close()
		return Read(gzr)
	}
	return Read(br)
}

// Read parses BED intervals from r into a new mask.  Intervals are
// zero-based and half-open, as in the BED specification.
func Read(r io.Reader) (*Mask, error) {
	m := &Mask{contigs: make(map[string]*roaring.Bitmap)}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("malformed BED line %q", line)
		}
		start, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parsing start of BED line %q: %v", line, err)
		}
		end, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parsing end of BED line %q: %v", line, err)
		}
		if end < start {
			return nil, fmt.Errorf("inverted interval in BED line %q", line)
		}

		bitmap, ok := m.contigs[fields[0]]
		if !ok {
			bitmap = roaring.New()
			m.contigs[fields[0]] = bitmap
		}
		bitmap.AddRange(start, end)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading mask: %v", err)
	}
	return m, nil
}

// HasContig reports whether the mask lists any interval on chrom.
func (m *Mask) HasContig(chrom string) bool {
	_, ok := m.contigs[chrom]
	return ok
}

// Masked reports whether the zero-based position pos on chrom is masked.
func (m *Mask) Masked(chrom string, pos uint32) bool {
	bitmap, ok := m.contigs[chrom]
	return ok && bitmap.Contains(pos)
}
