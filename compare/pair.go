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
	"errors"

	"github.com/googlegenomics/vcfdiff/internal/interval"
	"github.com/googlegenomics/vcfdiff/vcf"
)

// ErrUnmatched is returned when a score is requested for a pair without a
// primary match.
var ErrUnmatched = errors.New("compare: pair is not matched")

// Pair couples a source record with its primary match from the target and,
// when a truth set is configured, from the truth.
type Pair struct {
	// RecA is the source record.
	RecA *vcf.Record
	// RecB is the primary match from the target, or nil.
	RecB *vcf.Record
	// RecT is the first truth record matching RecA, or nil.
	RecT *vcf.Record
	// AltMatch holds acceptable candidates that did not become the
	// primary match, either because RecB was already bound or because an
	// earlier pair claimed them.
	AltMatch []*vcf.Record
}

// bind sets the primary match.  Only the first call succeeds.
func (p *Pair) bind(rec *vcf.Record) bool {
	if p.RecB != nil {
		return false
	}
	p.RecB = rec
	return true
}

// Matched reports whether a primary match was bound.
func (p *Pair) Matched() bool {
	return p.RecB != nil
}

// PassA reports whether the source record passed all filters.
func (p *Pair) PassA() bool {
	return p.RecA.Pass()
}

// PassB reports whether the primary match passed all filters.  Unmatched
// pairs report false.
func (p *Pair) PassB() bool {
	return p.RecB != nil && p.RecB.Pass()
}

// SomaticA reports whether the source record is annotated as somatic.
func (p *Pair) SomaticA() bool {
	return somatic(p.RecA)
}

// SomaticB reports whether the primary match is annotated as somatic.
// Unmatched pairs report false.
func (p *Pair) SomaticB() bool {
	return p.RecB != nil && somatic(p.RecB)
}

// IsTrue reports whether the source record matched the truth set.
func (p *Pair) IsTrue() bool {
	return p.RecT != nil
}

// Score returns the match quality in (0, 1].  Single nucleotide variant and
// indel matches always score 1; breakend matches score the overlap of their
// confidence intervals.  Scoring an unmatched pair is an error.
func (p *Pair) Score() (float64, error) {
	if p.RecB == nil {
		return 0, ErrUnmatched
	}
	switch p.RecA.Kind() {
	case vcf.SNV, vcf.Indel:
		return 1, nil
	}
	return interval.Score(interval.Confidence(p.RecA, 0), interval.Confidence(p.RecB, 0))
}

// somatic reports whether a record is annotated as a somatic call: an INFO
// SS value of SOMATIC or 2, the INFO SOMATIC flag on records not marked as
// LOH, or a FORMAT SS value of 2 in any sample.
func somatic(rec *vcf.Record) bool {
	ss, _ := rec.Info("SS")
	if ss == "SOMATIC" || ss == "2" {
		return true
	}
	if _, ok := rec.Info("SOMATIC"); ok && ss != "LOH" {
		return true
	}
	for _, value := range rec.SampleStrings("SS") {
		if value == "2" {
			return true
		}
	}
	return false
}
