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

package compare

import (
	"testing"

	"github.com/googlegenomics/vcfdiff/vcf"
)

func parseRecord(t *testing.T, line string) *vcf.Record {
	t.Helper()
	rec, err := vcf.ParseRecord(line)
	if err != nil {
		t.Fatalf("ParseRecord(%q) returned %v, want no error", line, err)
	}
	return rec
}

func TestOrientation(t *testing.T) {
	testCases := []struct {
		alt  string
		want BreakendJoin
	}{
		{"T[chr2:400[", JoinAfterForward},
		{"T]chr2:400]", JoinAfterReverse},
		{"]chr2:400]T", JoinBeforeForward},
		{"[chr2:400[T", JoinBeforeReverse},
		{"G[1:200[", JoinAfterForward},
		{"TT[chr2:400[", BreakendJoin("TT[chr2:400[")},
		{"<DEL>", BreakendJoin("<DEL>")},
		{"T", BreakendJoin("T")},
		{"", BreakendJoin("")},
	}

	for _, tc := range testCases {
		t.Run(tc.alt, func(t *testing.T) {
			if got := Orientation(tc.alt); got != tc.want {
				t.Fatalf("Orientation(%q) = %q, want %q", tc.alt, got, tc.want)
			}
		})
	}
}

func TestOrientation_UnknownEquality(t *testing.T) {
	if Orientation("TT[chr2:400[") == Orientation("GG[chr2:400[") {
		t.Error("distinct unknown alleles compare equal")
	}
	if Orientation("TT[chr2:400[") != Orientation("TT[chr2:400[") {
		t.Error("identical unknown alleles compare unequal")
	}
}

func TestMatch(t *testing.T) {
	testCases := []struct {
		name string
		a, b string
		want bool
	}{
		{
			"identical snv",
			"chr1\t100\t.\tA\tT\t50\tPASS\tDP=30",
			"chr1\t100\trs7\tA\tT\t10\tq10\tDP=2",
			true,
		},
		{
			"snv position differs",
			"chr1\t100\t.\tA\tT\t.\tPASS\t.",
			"chr1\t101\t.\tA\tT\t.\tPASS\t.",
			false,
		},
		{
			"snv reference differs",
			"chr1\t100\t.\tA\tT\t.\tPASS\t.",
			"chr1\t100\t.\tG\tT\t.\tPASS\t.",
			false,
		},
		{
			"snv alternate differs",
			"chr1\t100\t.\tA\tT\t.\tPASS\t.",
			"chr1\t100\t.\tA\tC\t.\tPASS\t.",
			false,
		},
		{
			"snv alternate order",
			"chr1\t100\t.\tA\tT,C\t.\tPASS\t.",
			"chr1\t100\t.\tA\tC,T\t.\tPASS\t.",
			true,
		},
		{
			"snv alternate subset",
			"chr1\t100\t.\tA\tT,C\t.\tPASS\t.",
			"chr1\t100\t.\tA\tT\t.\tPASS\t.",
			false,
		},
		{
			"indel ignores position",
			"chr1\t100\t.\tA\tATT\t.\tPASS\t.",
			"chr1\t140\t.\tA\tATT\t.\tPASS\t.",
			true,
		},
		{
			"indel alternate differs",
			"chr1\t100\t.\tA\tATT\t.\tPASS\t.",
			"chr1\t100\t.\tA\tAT\t.\tPASS\t.",
			false,
		},
		{
			"snv against indel",
			"chr1\t100\t.\tA\tT\t.\tPASS\t.",
			"chr1\t100\t.\tA\tAT\t.\tPASS\t.",
			false,
		},
		{
			"breakends overlapping",
			"chr1\t100\t.\tT\tT[chr2:400[\t.\tPASS\tSVTYPE=BND;CIPOS=-50,50",
			"chr1\t120\t.\tA\tA[chr2:410[\t.\tPASS\tSVTYPE=BND;CIPOS=-50,50",
			true,
		},
		{
			"breakends orientation differs",
			"chr1\t100\t.\tT\tT[chr2:400[\t.\tPASS\tSVTYPE=BND;CIPOS=-50,50",
			"chr1\t120\t.\tA\t]chr2:410]A\t.\tPASS\tSVTYPE=BND;CIPOS=-50,50",
			false,
		},
		{
			"breakends disjoint",
			"chr1\t100\t.\tT\tT[chr2:400[\t.\tPASS\tSVTYPE=BND;CIPOS=-5,5",
			"chr1\t200\t.\tA\tA[chr2:410[\t.\tPASS\tSVTYPE=BND;CIPOS=-5,5",
			false,
		},
		{
			"breakend against symbolic",
			"chr1\t100\t.\tT\tT[chr2:400[\t.\tPASS\tSVTYPE=BND",
			"chr1\t100\t.\tT\t<DEL>\t.\tPASS\tSVTYPE=DEL;END=300",
			false,
		},
		{
			"symbolic against symbolic",
			"chr1\t100\t.\tT\t<DEL>\t.\tPASS\tSVTYPE=DEL;END=300",
			"chr1\t100\t.\tT\t<DEL>\t.\tPASS\tSVTYPE=DEL;END=300",
			false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, b := parseRecord(t, tc.a), parseRecord(t, tc.b)
			if got := Match(a, b); got != tc.want {
				t.Fatalf("Match(%q, %q) = %v, want %v", a, b, got, tc.want)
			}
		})
	}
}

func TestMatch_BreakendsTouching(t *testing.T) {
	// Confidence intervals that only touch have no overlap to score.
	a := parseRecord(t, "chr1\t100\t.\tT\tT[chr2:400[\t.\tPASS\tSVTYPE=BND;CIPOS=0,10")
	b := parseRecord(t, "chr1\t111\t.\tA\tA[chr2:400[\t.\tPASS\tSVTYPE=BND;CIPOS=0,10")
	if Match(a, b) {
		t.Error("Match accepted breakends with touching confidence intervals")
	}
}
