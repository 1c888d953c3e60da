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
	"fmt"
	"strings"

	"github.com/googlegenomics/vcfdiff/vcf"
)

// The category space is fixed: matched pairs land in one of 32 categories
// (pass A and B, somatic A and B, counted overall and again under truth
// when the pair has a truth match), unmatched pairs in one of 8 per side.
// Categories are indexed by packing the predicates into an integer, truth
// block first, true contributing zero, so counting never touches a string.
const (
	matchedCategories   = 32
	unmatchedCategories = 8
)

var (
	matchedNames   = buildMatchedNames()
	unmatchedNames = buildUnmatchedNames()
)

var productOrder = []bool{true, false}

func buildMatchedNames() [matchedCategories]string {
	var names [matchedCategories]string
	i := 0
	for _, truth := range productOrder {
		for _, passA := range productOrder {
			for _, passB := range productOrder {
				for _, somaticA := range productOrder {
					for _, somaticB := range productOrder {
						names[i] = fmt.Sprintf("matched_%s_%s_%s_%s_%s",
							passLabel(passA), passLabel(passB),
							somaticLabel(somaticA), somaticLabel(somaticB),
							truthLabel(truth))
						i++
					}
				}
			}
		}
	}
	return names
}

func buildUnmatchedNames() [unmatchedCategories]string {
	var names [unmatchedCategories]string
	i := 0
	for _, truth := range productOrder {
		for _, pass := range productOrder {
			for _, som := range productOrder {
				names[i] = fmt.Sprintf("%s_%s_%s",
					passLabel(pass), somaticLabel(som), truthLabel(truth))
				i++
			}
		}
	}
	return names
}

func passLabel(b bool) string {
	if b {
		return "pass"
	}
	return "fail"
}

func somaticLabel(b bool) string {
	if b {
		return "somatic"
	}
	return "germline"
}

func truthLabel(b bool) string {
	if b {
		return "truth"
	}
	return "overall"
}

func matchedIndex(passA, passB, somaticA, somaticB bool) int {
	i := 0
	if !passA {
		i += 8
	}
	if !passB {
		i += 4
	}
	if !somaticA {
		i += 2
	}
	if !somaticB {
		i++
	}
	return i
}

func unmatchedIndex(pass, somatic bool) int {
	i := 0
	if !pass {
		i += 2
	}
	if !somatic {
		i++
	}
	return i
}

// Summary aggregates the pair counts of a single variant kind.
type Summary struct {
	kind       vcf.Kind
	matched    [matchedCategories]int64
	unmatchedA [unmatchedCategories]int64
	unmatchedB [unmatchedCategories]int64
}

// NewSummary returns an empty summary for the given kind.
func NewSummary(kind vcf.Kind) *Summary {
	return &Summary{kind: kind}
}

// Kind returns the variant kind the summary covers.
func (s *Summary) Kind() vcf.Kind {
	return s.kind
}

// addMatched counts a matched pair from the A to B direction.
func (s *Summary) addMatched(p *Pair) {
	i := matchedIndex(p.PassA(), p.PassB(), p.SomaticA(), p.SomaticB())
	s.matched[matchedCategories/2+i]++
	if p.IsTrue() {
		s.matched[i]++
	}
}

func addUnmatched(counters *[unmatchedCategories]int64, p *Pair) {
	i := unmatchedIndex(p.PassA(), p.SomaticA())
	counters[unmatchedCategories/2+i]++
	if p.IsTrue() {
		counters[i]++
	}
}

// Add merges other into s counter-wise.  Merging summaries of different
// kinds is an error.
func (s *Summary) Add(other *Summary) error {
	if s.kind != other.kind {
		return fmt.Errorf("cannot merge a %v summary into a %v summary", other.kind, s.kind)
	}
	for i := range s.matched {
		s.matched[i] += other.matched[i]
	}
	for i := range s.unmatchedA {
		s.unmatchedA[i] += other.unmatchedA[i]
		s.unmatchedB[i] += other.unmatchedB[i]
	}
	return nil
}

// Count is a single named counter value.
type Count struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// Counts returns every category counter in presentation order: the
// unmatched categories with the A and B sides interleaved, then the
// matched categories.
func (s *Summary) Counts() []Count {
	counts := make([]Count, 0, 2*unmatchedCategories+matchedCategories)
	for i, name := range unmatchedNames {
		counts = append(counts, Count{"A_unmatched_" + name, s.unmatchedA[i]})
		counts = append(counts, Count{"B_unmatched_" + name, s.unmatchedB[i]})
	}
	for i, name := range matchedNames {
		counts = append(counts, Count{name, s.matched[i]})
	}
	return counts
}

// String renders the summary as "name: count" lines preceded by the
// variant kind.
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "vartype: %s\n", s.kind)
	for _, count := range s.Counts() {
		fmt.Fprintf(&b, "%s: %d\n", count.Name, count.Value)
	}
	return b.String()
}

// Summarize merges directional comparison results into one summary per
// variant kind.  The slices hold the A to B and B to A results of the same
// regions and must have equal lengths.  Matched categories count the A to B
// direction; the unmatched categories of each side count its own direction.
// The returned warnings flag any per-kind asymmetry between the directional
// match counts.
func Summarize(ab, ba []*Comparison) ([]*Summary, []string, error) {
	if len(ab) != len(ba) {
		return nil, nil, fmt.Errorf("mismatched comparison counts: %d vs %d", len(ab), len(ba))
	}

	var summaries []*Summary
	var warnings []string
	for _, kind := range vcf.Kinds {
		summary := NewSummary(kind)
		var sharedAB, sharedBA int64
		for _, c := range ab {
			for _, pair := range c.Pairs[kind] {
				if pair.Matched() {
					summary.addMatched(pair)
					sharedAB++
				} else {
					addUnmatched(&summary.unmatchedA, pair)
				}
			}
		}
		for _, c := range ba {
			for _, pair := range c.Pairs[kind] {
				if pair.Matched() {
					sharedBA++
				} else {
					addUnmatched(&summary.unmatchedB, pair)
				}
			}
		}
		if sharedAB != sharedBA {
			warnings = append(warnings, fmt.Sprintf(
				"%s: overlap was not symmetric: %d records matched from A to B but %d matched from B to A",
				kind, sharedAB, sharedBA))
		}
		summaries = append(summaries, summary)
	}
	return summaries, warnings, nil
}
