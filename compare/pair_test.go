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
	"math"
	"testing"

	"github.com/googlegenomics/vcfdiff/internal/interval"
)

func TestPairBind(t *testing.T) {
	first := parseRecord(t, "chr1\t100\t.\tA\tT\t.\tPASS\t.")
	second := parseRecord(t, "chr1\t100\trs5\tA\tT\t.\tPASS\t.")

	pair := &Pair{RecA: parseRecord(t, "chr1\t100\t.\tA\tT\t.\tPASS\t.")}
	if pair.Matched() {
		t.Fatal("Matched() = true before binding")
	}
	if !pair.bind(first) {
		t.Fatal("bind(first) = false, want true")
	}
	if pair.bind(second) {
		t.Fatal("bind(second) = true, want false")
	}
	if !pair.Matched() {
		t.Fatal("Matched() = false after binding")
	}
	if pair.RecB != first {
		t.Fatalf("RecB = %v, want the first bound record", pair.RecB)
	}
}

func TestPairPredicates(t *testing.T) {
	pair := &Pair{
		RecA: parseRecord(t, "chr1\t100\t.\tA\tT\t.\tPASS\tSOMATIC"),
		RecB: parseRecord(t, "chr1\t100\t.\tA\tT\t.\tq10\t."),
	}
	if !pair.PassA() {
		t.Error("PassA() = false, want true")
	}
	if pair.PassB() {
		t.Error("PassB() = true, want false")
	}
	if !pair.SomaticA() {
		t.Error("SomaticA() = false, want true")
	}
	if pair.SomaticB() {
		t.Error("SomaticB() = true, want false")
	}
	if pair.IsTrue() {
		t.Error("IsTrue() = true without a truth match")
	}

	pair.RecT = pair.RecB
	if !pair.IsTrue() {
		t.Error("IsTrue() = false with a truth match")
	}
}

func TestPairPredicates_Unmatched(t *testing.T) {
	pair := &Pair{RecA: parseRecord(t, "chr1\t100\t.\tA\tT\t.\tPASS\t.")}
	if pair.PassB() {
		t.Error("PassB() = true for an unmatched pair")
	}
	if pair.SomaticB() {
		t.Error("SomaticB() = true for an unmatched pair")
	}
}

func TestSomatic(t *testing.T) {
	testCases := []struct {
		name string
		line string
		want bool
	}{
		{"ss somatic", "chr1\t100\t.\tA\tT\t.\tPASS\tSS=SOMATIC", true},
		{"ss two", "chr1\t100\t.\tA\tT\t.\tPASS\tSS=2", true},
		{"somatic flag", "chr1\t100\t.\tA\tT\t.\tPASS\tSOMATIC", true},
		{"somatic flag with loh", "chr1\t100\t.\tA\tT\t.\tPASS\tSOMATIC;SS=LOH", false},
		{"loh alone", "chr1\t100\t.\tA\tT\t.\tPASS\tSS=LOH", false},
		{"ss germline", "chr1\t100\t.\tA\tT\t.\tPASS\tSS=1", false},
		{"sample ss two", "chr1\t100\t.\tA\tT\t.\tPASS\t.\tGT:SS\t0/1:.\t1/1:2", true},
		{"sample ss germline", "chr1\t100\t.\tA\tT\t.\tPASS\t.\tGT:SS\t0/1:1", false},
		{"unannotated", "chr1\t100\t.\tA\tT\t.\tPASS\tDP=30", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := somatic(parseRecord(t, tc.line)); got != tc.want {
				t.Fatalf("somatic(%q) = %v, want %v", tc.line, got, tc.want)
			}
		})
	}
}

func TestPairScore(t *testing.T) {
	t.Run("snv", func(t *testing.T) {
		pair := &Pair{
			RecA: parseRecord(t, "chr1\t100\t.\tA\tT\t.\tPASS\t."),
			RecB: parseRecord(t, "chr1\t100\t.\tA\tT\t.\tPASS\t."),
		}
		score, err := pair.Score()
		if err != nil {
			t.Fatalf("Score() returned %v, want no error", err)
		}
		if score != 1 {
			t.Fatalf("Score() = %f, want 1", score)
		}
	})

	t.Run("indel", func(t *testing.T) {
		pair := &Pair{
			RecA: parseRecord(t, "chr1\t100\t.\tA\tATT\t.\tPASS\t."),
			RecB: parseRecord(t, "chr1\t140\t.\tA\tATT\t.\tPASS\t."),
		}
		score, err := pair.Score()
		if err != nil {
			t.Fatalf("Score() returned %v, want no error", err)
		}
		if score != 1 {
			t.Fatalf("Score() = %f, want 1", score)
		}
	})

	t.Run("breakend", func(t *testing.T) {
		// Intervals [49, 150) and [69, 170) overlap by 81 of 2*101.
		pair := &Pair{
			RecA: parseRecord(t, "chr1\t100\t.\tT\tT[chr2:400[\t.\tPASS\tSVTYPE=BND;CIPOS=-50,50"),
			RecB: parseRecord(t, "chr1\t120\t.\tA\tA[chr2:410[\t.\tPASS\tSVTYPE=BND;CIPOS=-50,50"),
		}
		score, err := pair.Score()
		if err != nil {
			t.Fatalf("Score() returned %v, want no error", err)
		}
		if want := 2 * 81.0 / 202.0; math.Abs(score-want) > 1e-9 {
			t.Fatalf("Score() = %f, want %f", score, want)
		}
	})

	t.Run("unmatched", func(t *testing.T) {
		pair := &Pair{RecA: parseRecord(t, "chr1\t100\t.\tA\tT\t.\tPASS\t.")}
		if _, err := pair.Score(); err != ErrUnmatched {
			t.Fatalf("Score() returned %v, want %v", err, ErrUnmatched)
		}
	})

	t.Run("disjoint breakends", func(t *testing.T) {
		pair := &Pair{
			RecA: parseRecord(t, "chr1\t100\t.\tT\tT[chr2:400[\t.\tPASS\tSVTYPE=BND"),
			RecB: parseRecord(t, "chr1\t500\t.\tA\tA[chr2:410[\t.\tPASS\tSVTYPE=BND"),
		}
		if _, err := pair.Score(); err != interval.ErrNonPositive {
			t.Fatalf("Score() returned %v, want %v", err, interval.ErrNonPositive)
		}
	})
}
