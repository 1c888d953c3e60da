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
	"testing"
)

func TestParseRegion(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  Region
	}{
		{"empty", "", WholeGenome},
		{"wildcard", "*", WholeGenome},
		{"chromosome only", "chr1", Region{Chrom: "chr1"}},
		{"open ended", "chr1:1000-", Region{Chrom: "chr1", Start: 1000}},
		{"bounded", "chr1:1000-2000", Region{Chrom: "chr1", Start: 1000, End: 2000}},
		{"zero start", "20:0-63025520", Region{Chrom: "20", End: 63025520}},
		{"colon in name", "HLA-A*01:01:1-100", Region{Chrom: "HLA-A*01:01", Start: 1, End: 100}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseRegion(tc.input)
			if err != nil {
				t.Fatalf("ParseRegion(%q) returned error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("ParseRegion(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseRegion_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"missing chromosome", ":100-200"},
		{"missing range", "chr1:100"},
		{"bad start", "chr1:x-200"},
		{"bad end", "chr1:100-y"},
		{"empty range", "chr1:200-200"},
		{"inverted range", "chr1:200-100"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if region, err := ParseRegion(tc.input); err == nil {
				t.Fatalf("ParseRegion(%q) = %v, expected error", tc.input, region)
			}
		})
	}
}

func TestRegionString(t *testing.T) {
	testCases := []struct {
		name   string
		region Region
		want   string
	}{
		{"whole genome", WholeGenome, "*"},
		{"chromosome only", Region{Chrom: "chr2"}, "chr2"},
		{"open ended", Region{Chrom: "chr2", Start: 5}, "chr2:5-"},
		{"bounded", Region{Chrom: "chr2", Start: 5, End: 10}, "chr2:5-10"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got, want := tc.region.String(), tc.want; got != want {
				t.Fatalf("String() = %q, want %q", got, want)
			}
		})
	}
}
