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

	"golang.org/x/sync/errgroup"

	"github.com/googlegenomics/vcfdiff/genomics"
	"github.com/googlegenomics/vcfdiff/internal/mask"
)

// Config configures a concurrent comparison run.
type Config struct {
	// OpenA and OpenB create handles for the two inputs.  Each worker
	// calls them once, so implementations need not be safe for
	// concurrent iteration.
	OpenA, OpenB func(ctx context.Context) (Source, error)

	// OpenTruth optionally creates a handle for the truth input.
	OpenTruth func(ctx context.Context) (Source, error)

	// Mask excludes records from the comparison.  It is shared by all
	// workers and must not be modified during the run.
	Mask *mask.Mask

	// Buckets assigns genome segments to workers, one worker per bucket.
	Buckets [][]genomics.Segment

	IndelWiden int64
	SVWiden    int64
	Verbose    bool

	// Output, when set, receives each bucket's directional results after
	// all workers finish.  Calls are made sequentially in bucket order.
	Output func(bucket int, ab, ba []*Comparison) error
}

// Result aggregates a full run across all buckets.
type Result struct {
	// Summaries holds one merged summary per variant kind.
	Summaries []*Summary

	// Warnings lists recovered failures and detected asymmetries.
	Warnings []string

	// MissedTruthRegions counts candidate windows that could not be
	// fetched from the truth source.
	MissedTruthRegions int
}

type bucketResult struct {
	ab, ba []*Comparison
}

// Run compares the two inputs over every segment bucket concurrently, one
// worker per bucket, and merges the directional results.  The first worker
// error cancels the remaining workers, which stop at their next segment
// boundary.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	group, ctx := errgroup.WithContext(ctx)

	results := make([]bucketResult, len(cfg.Buckets))
	for i := range cfg.Buckets {
		i := i
		group.Go(func() error {
			return runBucket(ctx, cfg, cfg.Buckets[i], &results[i])
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var ab, ba []*Comparison
	result := &Result{}
	for i := range results {
		if cfg.Output != nil {
			if err := cfg.Output(i, results[i].ab, results[i].ba); err != nil {
				return nil, fmt.Errorf("writing bucket %d output: %v", i, err)
			}
		}
		ab = append(ab, results[i].ab...)
		ba = append(ba, results[i].ba...)
	}
	for _, c := range ab {
		result.Warnings = append(result.Warnings, c.Warnings...)
		result.MissedTruthRegions += c.MissedTruthRegions
	}
	for _, c := range ba {
		result.Warnings = append(result.Warnings, c.Warnings...)
		result.MissedTruthRegions += c.MissedTruthRegions
	}

	summaries, warnings, err := Summarize(ab, ba)
	if err != nil {
		return nil, err
	}
	result.Summaries = summaries
	result.Warnings = append(result.Warnings, warnings...)
	return result, nil
}

func runBucket(ctx context.Context, cfg Config, segments []genomics.Segment, out *bucketResult) error {
	sourceA, err := cfg.OpenA(ctx)
	if err != nil {
		return fmt.Errorf("opening first input: %v", err)
	}
	sourceB, err := cfg.OpenB(ctx)
	if err != nil {
		return fmt.Errorf("opening second input: %v", err)
	}
	var truth Source
	if cfg.OpenTruth != nil {
		if truth, err = cfg.OpenTruth(ctx); err != nil {
			return fmt.Errorf("opening truth input: %v", err)
		}
	}

	opts := Options{
		Mask:       cfg.Mask,
		Truth:      truth,
		IndelWiden: cfg.IndelWiden,
		SVWiden:    cfg.SVWiden,
		Verbose:    cfg.Verbose,
	}
	for _, segment := range segments {
		if err := ctx.Err(); err != nil {
			return err
		}
		opts.Region = segment.Region()

		ab, err := Compare(ctx, sourceA, sourceB, opts)
		if err != nil {
			return fmt.Errorf("comparing %s: %v", opts.Region, err)
		}
		ba, err := Compare(ctx, sourceB, sourceA, opts)
		if err != nil {
			return fmt.Errorf("comparing %s (reverse): %v", opts.Region, err)
		}
		out.ab = append(out.ab, ab)
		out.ba = append(out.ba, ba)
	}
	return nil
}
