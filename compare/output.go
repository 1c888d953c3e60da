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

	"github.com/googlegenomics/vcfdiff/vcf"
)

// WriteRecords writes the source record of every pair in comparisons to
// either the matched or the unmatched sink and returns the two counts.
// Records are grouped by variant kind, in source order within a kind.
func WriteRecords(comparisons []*Comparison, matched, unmatched *vcf.Writer) (int, int, error) {
	var matchedCount, unmatchedCount int
	for _, c := range comparisons {
		for _, kind := range vcf.Kinds {
			for _, pair := range c.Pairs[kind] {
				if pair.Matched() {
					if err := matched.Write(pair.RecA); err != nil {
						return matchedCount, unmatchedCount, fmt.Errorf("writing matched record: %v", err)
					}
					matchedCount++
				} else {
					if err := unmatched.Write(pair.RecA); err != nil {
						return matchedCount, unmatchedCount, fmt.Errorf("writing unmatched record: %v", err)
					}
					unmatchedCount++
				}
			}
		}
	}
	return matchedCount, unmatchedCount, nil
}
