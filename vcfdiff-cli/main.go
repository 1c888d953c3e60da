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

// This binary compares two sorted, tabix-indexed VCF files and optionally
// masks regions.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/profile"

	"github.com/googlegenomics/vcfdiff/compare"
	"github.com/googlegenomics/vcfdiff/genomics"
	"github.com/googlegenomics/vcfdiff/internal/mask"
	"github.com/googlegenomics/vcfdiff/internal/storage"
	"github.com/googlegenomics/vcfdiff/vcf"
)

var (
	maskFile = flag.String("mask", "", "BED file of masked intervals")
	truth    = flag.String("truth", "", `also compare results to a "truth" VCF (sorted and tabix-indexed)`)
	outdir   = flag.String("outdir", "", "directory for output")
	summary  = flag.String("summary", "", "output file for the summary (default stdout)")

	chrom = flag.String("chrom", "", "limit the comparison to one chromosome")
	start = flag.Uint64("start", 0, "start position (zero based)")
	end   = flag.Uint64("end", 0, "end position (zero based, half open)")

	lengths    = flag.String("lengths", "", "chromosome lengths table; enables worker mode")
	workers    = flag.Int("workers", 1, "number of concurrent workers in worker mode")
	minSegment = flag.Uint64("min_segment", 1000000, "skip chromosomes up to this length in worker mode")

	indelWiden = flag.Int64("indel_widen", 0, "bases to widen indel confidence intervals")
	svWiden    = flag.Int64("sv_widen", compare.DefaultSVWiden, "bases to widen breakend query windows")

	verbose    = flag.Bool("verbose", false, "verbose progress reporting")
	cpuProfile = flag.Bool("profile", false, "enable CPU profiling")
)

func main() {
	flag.Parse()

	if flag.NArg() != 2 {
		log.Fatalf("Expected exactly two tabix-indexed VCF files, got %d arguments", flag.NArg())
	}
	urlA, urlB := flag.Arg(0), flag.Arg(1)

	if *cpuProfile {
		defer profile.Start().Stop()
	}

	ctx := context.Background()
	headers := openInputs(ctx, urlA, urlB)

	cfg := compare.Config{
		OpenA:      openSource(urlA),
		OpenB:      openSource(urlB),
		Buckets:    makeBuckets(ctx),
		IndelWiden: *indelWiden,
		SVWiden:    *svWiden,
		Verbose:    *verbose,
	}
	if *truth != "" {
		cfg.OpenTruth = openSource(*truth)
	}
	if *maskFile != "" {
		cfg.Mask = openMask(ctx)
	}

	if *outdir != "" {
		if _, err := os.Stat(*outdir); os.IsNotExist(err) {
			log.Printf("Creating output directory %s", *outdir)
			if err := os.MkdirAll(*outdir, 0755); err != nil {
				log.Fatalf("Failed to create output directory: %v", err)
			}
		}
	}

	tagged := len(cfg.Buckets) > 1
	cfg.Output = func(bucket int, ab, ba []*compare.Comparison) error {
		var tag string
		if tagged {
			tag = fmt.Sprintf(".job%d", bucket)
		}
		if err := writeRecords(headers[0], urlA, tag, ab); err != nil {
			return err
		}
		return writeRecords(headers[1], urlB, tag, ba)
	}

	result, err := compare.Run(ctx, cfg)
	if err != nil {
		log.Fatalf("Comparison failed: %v", err)
	}

	w := io.Writer(os.Stdout)
	if *summary != "" {
		f, err := os.Create(*summary)
		if err != nil {
			log.Fatalf("Failed to open summary file: %v", err)
		}
		defer f.Close()
		w = f
	}
	for _, s := range result.Summaries {
		fmt.Fprintln(w, s)
	}

	if n := len(result.Warnings); n > 0 {
		log.Printf("Comparison finished with %d warnings", n)
	}
	if result.MissedTruthRegions > 0 {
		log.Printf("Could not fetch %d regions from the truth input", result.MissedTruthRegions)
	}
}

// openInputs verifies that both inputs are readable before any work starts
// and returns their headers for the output writers.
func openInputs(ctx context.Context, urls ...string) [][]string {
	headers := make([][]string, 0, len(urls))
	for _, url := range urls {
		reader, err := vcf.Open(ctx, url)
		if err != nil {
			log.Fatalf("Failed to open %s: %v -- is this an indexed tabix file?", url, err)
		}
		headers = append(headers, reader.Header())
	}
	return headers
}

func openSource(url string) func(ctx context.Context) (compare.Source, error) {
	return func(ctx context.Context) (compare.Source, error) {
		reader, err := vcf.Open(ctx, url)
		if err != nil {
			return nil, err
		}
		return compare.NewSource(reader), nil
	}
}

func openMask(ctx context.Context) *mask.Mask {
	object, err := storage.Open(ctx, *maskFile)
	if err != nil {
		log.Fatalf("Failed to open mask %s: %v", *maskFile, err)
	}
	m, err := mask.Open(ctx, object)
	if err != nil {
		log.Fatalf("Failed to read mask %s: %v", *maskFile, err)
	}
	return m
}

// makeBuckets derives the work segments: a genome split in worker mode, or a
// single segment bounded by -chrom/-start/-end otherwise.
func makeBuckets(ctx context.Context) [][]genomics.Segment {
	if *lengths == "" {
		if *workers > 1 {
			log.Fatalf("Worker mode requires a -lengths table")
		}
		if *chrom == "" && (*start != 0 || *end != 0) {
			log.Fatalf("-start and -end require -chrom")
		}
		if *end != 0 && *end <= *start {
			log.Fatalf("Region end %d is not after start %d", *end, *start)
		}
		segment := genomics.Segment{Chrom: *chrom, Start: uint32(*start), End: uint32(*end)}
		return [][]genomics.Segment{{segment}}
	}

	if *chrom != "" {
		log.Fatalf("-chrom cannot be combined with worker mode")
	}
	object, err := storage.Open(ctx, *lengths)
	if err != nil {
		log.Fatalf("Failed to open lengths table %s: %v", *lengths, err)
	}
	r, err := object.NewRangeReader(ctx, 0, -1)
	if err != nil {
		log.Fatalf("Failed to read lengths table %s: %v", *lengths, err)
	}
	defer r.Close()
	table, err := genomics.ReadChromLengths(r)
	if err != nil {
		log.Fatalf("Failed to parse lengths table %s: %v", *lengths, err)
	}

	buckets, err := genomics.Split(table, *workers, uint32(*minSegment))
	if err != nil {
		log.Fatalf("Failed to split genome: %v", err)
	}
	if *verbose {
		log.Printf("Split genome into %d jobs", len(buckets))
		for i, bucket := range buckets {
			segments := make([]string, 0, len(bucket))
			for _, s := range bucket {
				segments = append(segments, s.String())
			}
			log.Printf("Job %d: %s", i, strings.Join(segments, ", "))
		}
	}
	return buckets
}

// writeRecords splits one direction's records into matched and unmatched
// VCF files named after the input.
func writeRecords(header []string, url, tag string, comparisons []*compare.Comparison) error {
	matchedFile, err := os.Create(outputPath(url, tag+".matched.vcf"))
	if err != nil {
		return err
	}
	defer matchedFile.Close()
	unmatchedFile, err := os.Create(outputPath(url, tag+".unmatched.vcf"))
	if err != nil {
		return err
	}
	defer unmatchedFile.Close()

	matched := vcf.NewWriter(matchedFile, header)
	unmatched := vcf.NewWriter(unmatchedFile, header)
	m, u, err := compare.WriteRecords(comparisons, matched, unmatched)
	if err != nil {
		return err
	}
	if err := matched.Close(); err != nil {
		return err
	}
	if err := unmatched.Close(); err != nil {
		return err
	}

	log.Printf("%s%s: %d matched, %d unmatched", path.Base(url), tag, m, u)
	return nil
}

func outputPath(url, suffix string) string {
	base := path.Base(url)
	base = strings.TrimSuffix(base, ".gz")
	base = strings.TrimSuffix(base, ".vcf")
	if *outdir != "" {
		return filepath.Join(*outdir, base+suffix)
	}
	return base + suffix
}
