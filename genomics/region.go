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

// Package genomics contains definitions related to genomic data.
package genomics

import (
	"fmt"
	"strconv"
	"strings"
)

// WholeGenome defines a Region that matches all records.
var WholeGenome = Region{}

// Region defines a region of genomic interest.
type Region struct {
	// Chrom specifies the chromosome to match.  If it is empty, any
	// chromosome matches the region.
	Chrom string
	// Start and End specify the zero-based, half-open range (in base pairs)
	// relative to the chromosome.  If End is zero, it is treated as though it
	// was set to the last possible position.
	Start, End uint32
}

// String returns a human readable representation of the region.
func (r Region) String() string {
	if r.Chrom == "" {
		return "*"
	}
	if r.End == 0 {
		if r.Start == 0 {
			return r.Chrom
		}
		return fmt.Sprintf("%s:%d-", r.Chrom, r.Start)
	}
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End)
}

// ParseRegion parses a region from its string representation.  Accepted forms
// are "chrom", "chrom:start-" and "chrom:start-end", where start and end are
// zero-based and the range is half-open.
func ParseRegion(s string) (Region, error) {
	if s == "" || s == "*" {
		return WholeGenome, nil
	}
	colon := strings.LastIndex(s, ":")
	if colon < 0 {
		return Region{Chrom: s}, nil
	}
	chrom, span := s[:colon], s[colon+1:]
	if chrom == "" {
		return Region{}, fmt.Errorf("missing chromosome in region %q", s)
	}
	dash := strings.Index(span, "-")
	if dash < 0 {
		return Region{}, fmt.Errorf("missing position range in region %q", s)
	}
	start, err := strconv.ParseUint(span[:dash], 10, 32)
	if err != nil {
		return Region{}, fmt.Errorf("parsing start of region %q: %v", s, err)
	}
	region := Region{Chrom: chrom, Start: uint32(start)}
	if rest := span[dash+1:]; rest != "" {
		end, err := strconv.ParseUint(rest, 10, 32)
		if err != nil {
			return Region{}, fmt.Errorf("parsing end of region %q: %v", s, err)
		}
		if end <= start {
			return Region{}, fmt.Errorf("region %q is empty", s)
		}
		region.End = uint32(end)
	}
	return region, nil
}
