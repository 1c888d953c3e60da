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
	"context"
	"fmt"
	"log"

	"github.com/googlegenomics/vcfdiff/genomics"
	"github.com/googlegenomics/vcfdiff/internal/mask"
	"github.com/googlegenomics/vcfdiff/vcf"
)

// DefaultSVWiden is the default candidate window flank for breakends.
const DefaultSVWiden = 1000

const (
	progressInterval = 10000

	// maximumWarnings bounds the warnings retained on a Comparison.  A
	// whole genome run against an unreachable target would otherwise
	// accumulate one warning per record.  Every warning is still logged.
	maximumWarnings = 100
)

// Options configures a directional comparison.
type Options struct {
	// Mask excludes records on chromosomes it does not list and records
	// at positions it covers.
	Mask *mask.Mask

	// Truth is an optional source of truth records.
	Truth Source

	// Region restricts the comparison.  The zero region compares
	// everything.
	Region genomics.Region

	// IndelWiden widens indel candidate windows and confidence
	// intervals.
	IndelWiden int64

	// SVWiden widens breakend candidate windows.  Zero selects
	// DefaultSVWiden.
	SVWiden int64

	// Verbose enables progress logging.
	Verbose bool
}

// Comparison holds the outcome of comparing the records of one source
// against one target.
type Comparison struct {
	// Pairs holds one bucket of pairs per variant kind, in source record
	// order.  All four comparable kinds are present.
	Pairs map[vcf.Kind][]*Pair

	// Warnings lists recovered per-record failures, capped at
	// maximumWarnings entries.
	Warnings []string

	// MissedTruthRegions counts candidate windows that could not be
	// fetched from the truth source.
	MissedTruthRegions int
}

func (c *Comparison) warn(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	log.Printf("Warning: %s", message)
	if len(c.Warnings) < maximumWarnings {
		c.Warnings = append(c.Warnings, message)
	}
}

// Compare matches every record of source inside the region against the
// records of target.  Each source record of a comparable kind produces
// exactly one Pair unless the mask excludes it.  Failures to fetch
// candidates from the target or truth sources degrade the affected record
// rather than aborting the comparison.
func Compare(ctx context.Context, source, target Source, opts Options) (*Comparison, error) {
	svWiden := opts.SVWiden
	if svWiden == 0 {
		svWiden = DefaultSVWiden
	}

	comparison := &Comparison{Pairs: map[vcf.Kind][]*Pair{
		vcf.SNV:   {},
		vcf.Indel: {},
		vcf.SV:    {},
		vcf.CNV:   {},
	}}
	claimed := make(map[string]bool)

	records, err := source.Fetch(ctx, opts.Region)
	if err != nil {
		return nil, fmt.Errorf("fetching source records: %v", err)
	}

	var count int
	for records.Scan() {
		rec := records.Record()
		count++
		if opts.Verbose && count%progressInterval == 0 {
			log.Printf("Processed %d records (at %s:%d)", count, rec.Chrom, rec.Pos)
		}

		if opts.Mask != nil &&
			(!opts.Mask.HasContig(rec.Chrom) || opts.Mask.Masked(rec.Chrom, rec.Start())) {
			continue
		}

		kind := rec.Kind()
		var widen int64
		switch kind {
		case vcf.SNV:
		case vcf.Indel:
			widen = opts.IndelWiden
		case vcf.SV:
			if !isBreakend(rec) {
				continue
			}
			widen = svWiden
		default:
			continue
		}

		pair := &Pair{RecA: rec}
		window := candidateWindow(rec, widen)

		candidates, err := target.Fetch(ctx, window)
		if err != nil {
			comparison.warn("fetching %s from target: %v", window, err)
		} else if err := matchCandidates(pair, candidates, claimed); err != nil {
			comparison.warn("scanning %s from target: %v", window, err)
		}

		if opts.Truth != nil {
			if err := matchTruth(ctx, pair, opts.Truth, window); err != nil {
				comparison.MissedTruthRegions++
			}
		}

		comparison.Pairs[kind] = append(comparison.Pairs[kind], pair)
	}
	if err := records.Err(); err != nil {
		return nil, fmt.Errorf("scanning source records: %v", err)
	}
	if opts.Verbose {
		log.Printf("Processed %d records in total", count)
	}
	return comparison, nil
}

// candidateWindow returns the region to search for match candidates.  The
// widened start is clamped to position 1.
func candidateWindow(rec *vcf.Record, widen int64) genomics.Region {
	start := int64(rec.Start()) - widen
	if start < 1 {
		start = 1
	}
	return genomics.Region{
		Chrom: rec.Chrom,
		Start: uint32(start),
		End:   rec.End() + uint32(widen),
	}
}

// matchCandidates binds the first acceptable unclaimed candidate as the
// primary match.  Acceptable candidates that were already claimed by an
// earlier pair, or that arrive after the primary match, accumulate as
// alternates.
func matchCandidates(pair *Pair, candidates Records, claimed map[string]bool) error {
	for candidates.Scan() {
		candidate := candidates.Record()
		if !Match(pair.RecA, candidate) {
			continue
		}
		fingerprint := candidate.Fingerprint()
		if claimed[fingerprint] {
			pair.AltMatch = append(pair.AltMatch, candidate)
			continue
		}
		if pair.bind(candidate) {
			claimed[fingerprint] = true
		} else {
			pair.AltMatch = append(pair.AltMatch, candidate)
		}
	}
	return candidates.Err()
}

// matchTruth binds the first truth record matching the pair's source
// record.  The scan always runs to completion so that the underlying
// reader is released.
func matchTruth(ctx context.Context, pair *Pair, truth Source, window genomics.Region) error {
	candidates, err := truth.Fetch(ctx, window)
	if err != nil {
		return err
	}
	var match *vcf.Record
	for candidates.Scan() {
		if match == nil && Match(pair.RecA, candidates.Record()) {
			match = candidates.Record()
		}
	}
	if err := candidates.Err(); err != nil {
		return err
	}
	pair.RecT = match
	return nil
}
