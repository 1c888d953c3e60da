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
	"sort"

	"github.com/googlegenomics/vcfdiff/internal/interval"
	"github.com/googlegenomics/vcfdiff/vcf"
)

// BreakendJoin describes how a breakend record joins its mate, in the
// bracket notation of the VCF specification ("t" is the local base, "p" the
// mate position).  Alleles outside the notation are carried verbatim and so
// compare equal only when written identically.
type BreakendJoin string

const (
	// JoinAfterForward is t[p[: the mate sequence extends to the right of
	// p and is joined after t.
	JoinAfterForward BreakendJoin = "t[p["
	// JoinAfterReverse is t]p]: the reverse complement of the sequence
	// left of p is joined after t.
	JoinAfterReverse BreakendJoin = "t]p]"
	// JoinBeforeForward is ]p]t: the sequence left of p is joined before
	// t.
	JoinBeforeForward BreakendJoin = "]p]t"
	// JoinBeforeReverse is [p[t: the reverse complement of the sequence
	// right of p is joined before t.
	JoinBeforeReverse BreakendJoin = "[p[t"
)

// Orientation classifies a breakend alternate allele by its bracket
// notation: a single leading base followed by a bracket, or a leading
// bracket.  Any other form, including a multi-base local sequence, is
// returned verbatim.
func Orientation(alt string) BreakendJoin {
	if len(alt) >= 2 {
		switch {
		case alt[0] == '[':
			return JoinBeforeReverse
		case alt[0] == ']':
			return JoinBeforeForward
		case alt[1] == '[':
			return JoinAfterForward
		case alt[1] == ']':
			return JoinAfterReverse
		}
	}
	return BreakendJoin(alt)
}

// Match reports whether b is an acceptable match for a.  Single nucleotide
// variants match on position, reference and the full alternate set; indels
// match on reference and alternate set anywhere inside the candidate
// window; breakends match on orientation and overlapping confidence
// intervals.  Records of differing kinds never match.
func Match(a, b *vcf.Record) bool {
	kindA, kindB := a.Kind(), b.Kind()
	switch {
	case kindA == vcf.SNV && kindB == vcf.SNV:
		return a.Pos == b.Pos && a.Ref == b.Ref && sameAlts(a.Alt, b.Alt)
	case kindA == vcf.Indel && kindB == vcf.Indel:
		return a.Ref == b.Ref && sameAlts(a.Alt, b.Alt)
	case isBreakend(a) && isBreakend(b):
		if Orientation(a.Alt[0]) != Orientation(b.Alt[0]) {
			return false
		}
		overlap := interval.Overlap(interval.Confidence(a, 0), interval.Confidence(b, 0))
		return overlap.Length() > 0
	}
	return false
}

func isBreakend(rec *vcf.Record) bool {
	if rec.Kind() != vcf.SV || len(rec.Alt) == 0 {
		return false
	}
	value, ok := rec.Info("SVTYPE")
	return ok && value == "BND"
}

func sameAlts(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
