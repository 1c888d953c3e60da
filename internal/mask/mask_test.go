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

package mask

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/googlegenomics/vcfdiff/internal/storage"
)

const testBED = `# regions to ignore
track name=mask description="ignored regions"
chr1	100	200
chr1	500	501
chr2	0	10
`

func TestRead(t *testing.T) {
	m, err := Read(strings.NewReader(testBED))
	if err != nil {
		t.Fatalf("Read() returned error: %v", err)
	}

	if !m.HasContig("chr1") || !m.HasContig("chr2") {
		t.Errorf("HasContig() missing listed contigs")
	}
	if m.HasContig("chr3") {
		t.Errorf("HasContig(chr3) unexpectedly true")
	}

	testCases := []struct {
		name   string
		chrom  string
		pos    uint32
		masked bool
	}{
		{"interval start is masked", "chr1", 100, true},
		{"interval middle is masked", "chr1", 150, true},
		{"interval end is not masked", "chr1", 200, false},
		{"before interval", "chr1", 99, false},
		{"single base interval", "chr1", 500, true},
		{"after single base interval", "chr1", 501, false},
		{"other contig", "chr2", 5, true},
		{"unlisted contig", "chr3", 150, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got, want := m.Masked(tc.chrom, tc.pos), tc.masked; got != want {
				t.Fatalf("Masked(%q, %d) = %t, want %t", tc.chrom, tc.pos, got, want)
			}
		})
	}
}

func TestRead_InvalidInputs(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"too few columns", "chr1\t100"},
		{"non-numeric start", "chr1\tx\t200"},
		{"non-numeric end", "chr1\t100\ty"},
		{"inverted interval", "chr1\t200\t100"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tc.input)); err == nil {
				t.Fatalf("Read(%q): expected error, not success", tc.input)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	if _, err := zw.Write([]byte(testBED)); err != nil {
		t.Fatalf("Failed to compress testdata: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close testdata: %v", err)
	}

	testCases := []struct {
		name string
		data []byte
	}{
		{"plain", []byte(testBED)},
		{"gzip", compressed.Bytes()},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "mask.bed")
			if err := os.WriteFile(path, tc.data, 0644); err != nil {
				t.Fatalf("Failed to write testdata: %v", err)
			}

			m, err := Open(context.Background(), storage.NewFileObject(path))
			if err != nil {
				t.Fatalf("Open() returned error: %v", err)
			}
			if !m.Masked("chr1", 150) {
				t.Errorf("Masked(chr1, 150) = false, want true")
			}
			if m.Masked("chr1", 250) {
				t.Errorf("Masked(chr1, 250) = true, want false")
			}
		})
	}
}

func TestOpen_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bed")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("Failed to write testdata: %v", err)
	}

	m, err := Open(context.Background(), storage.NewFileObject(path))
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	if m.HasContig("chr1") {
		t.Errorf("HasContig(chr1) = true for empty mask")
	}
}
