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

// Package interval provides confidence interval arithmetic for variant
// positions.
package interval

import (
	"errors"
	"fmt"

	"github.com/googlegenomics/vcfdiff/vcf"
)

// ErrNonPositive is returned when a score is requested for intervals that do
// not have a positive overlap.
var ErrNonPositive = errors.New("interval: non-positive length")

// Interval is a half-open range [Start, End) of zero-based genomic
// positions.  A confidence interval may extend below zero.
type Interval struct {
	Start, End int64
}

// Length returns the length of the interval, which may be non-positive.
func (i Interval) Length() int64 {
	return i.End - i.Start
}

// String returns the interval in half-open notation.
func (i Interval) String() string {
	return fmt.Sprintf("[%d, %d)", i.Start, i.End)
}

// Confidence returns the confidence interval around a record's position.
// The base interval covers the position itself, extended to the INFO END
// field when present.  CIPOS widens the start and, for records without END,
// the end; CIEND widens the end of records with END.  Indel records widen
// both sides by a further indelWiden bases.
func Confidence(rec *vcf.Record, indelWiden int64) Interval {
	start := int64(rec.Pos) - 1
	end := int64(rec.Pos)

	endValue, hasEnd := rec.InfoInt("END")
	if hasEnd {
		end = int64(endValue)
	}

	if cipos, ok := rec.InfoInts("CIPOS"); ok && len(cipos) > 0 {
		left, right := flanks(cipos)
		start -= left
		if !hasEnd {
			end += right
		}
	}
	if ciend, ok := rec.InfoInts("CIEND"); ok && len(ciend) > 0 && hasEnd {
		// The start side flank of CIEND does not apply to any
		// coordinate of the interval.
		_, right := flanks(ciend)
		end += right
	}

	if rec.Kind() == vcf.Indel {
		start -= indelWiden
		end += indelWiden
	}
	return Interval{Start: start, End: end}
}

// flanks converts a confidence interval field into non-negative flank
// widths.  Single-valued fields widen both sides equally.
func flanks(values []int) (int64, int64) {
	left := abs(values[0])
	right := left
	if len(values) > 1 {
		right = abs(values[1])
	}
	return left, right
}

func abs(n int) int64 {
	if n < 0 {
		return -int64(n)
	}
	return int64(n)
}

// Overlap returns the intersection of a and b when it has positive length,
// and the zero Interval otherwise.
func Overlap(a, b Interval) Interval {
	o := Interval{Start: max(a.Start, b.Start), End: min(a.End, b.End)}
	if o.Length() <= 0 {
		return Interval{}
	}
	return o
}

// Score returns 2*overlap/(len(a)+len(b)), which lies in (0, 1] and equals 1
// exactly when a and b are identical.  Intervals that do not both have
// positive length, or that do not overlap, yield ErrNonPositive.
func Score(a, b Interval) (float64, error) {
	if a.Length() <= 0 || b.Length() <= 0 {
		return 0, ErrNonPositive
	}
	overlap := Overlap(a, b).Length()
	if overlap <= 0 {
		return 0, ErrNonPositive
	}
	return 2 * float64(overlap) / float64(a.Length()+b.Length()), nil
}
