package job

import (
	"context"
	"fmt"

	"github.com/googlegenomics/vcfdiff/compare"
	"github.com/googlegenomics/vcfdiff/genomics"
	"github.com/googlegenomics/vcfdiff/internal/mask"
	"github.com/googlegenomics/vcfdiff/internal/storage"
	"github.com/googlegenomics/vcfdiff/vcf"
)

// NewRunner returns a Runner that resolves request URLs through the storage
// package and executes the comparison with compare.Run.
func NewRunner() Runner {
	return func(ctx context.Context, req Request) (*compare.Result, error) {
		cfg := compare.Config{
			OpenA:      openVCF(req.VCFA),
			OpenB:      openVCF(req.VCFB),
			IndelWiden: req.IndelWiden,
			SVWiden:    req.SVWiden,
		}
		if req.Truth != "" {
			cfg.OpenTruth = openVCF(req.Truth)
		}
		if req.Mask != "" {
			object, err := storage.Open(ctx, req.Mask)
			if err != nil {
				return nil, fmt.Errorf("opening mask %s: %v", req.Mask, err)
			}
			m, err := mask.Open(ctx, object)
			if err != nil {
				return nil, fmt.Errorf("reading mask %s: %v", req.Mask, err)
			}
			cfg.Mask = m
		}

		buckets, err := requestBuckets(ctx, req)
		if err != nil {
			return nil, err
		}
		cfg.Buckets = buckets

		return compare.Run(ctx, cfg)
	}
}

func openVCF(url string) func(ctx context.Context) (compare.Source, error) {
	return func(ctx context.Context) (compare.Source, error) {
		reader, err := vcf.Open(ctx, url)
		if err != nil {
			return nil, err
		}
		return compare.NewSource(reader), nil
	}
}

// requestBuckets derives the segment buckets for req: either a genome split
// across workers, or a single bucket covering the requested region.
func requestBuckets(ctx context.Context, req Request) ([][]genomics.Segment, error) {
	if req.Workers > 0 {
		object, err := storage.Open(ctx, req.Lengths)
		if err != nil {
			return nil, fmt.Errorf("opening lengths table %s: %v", req.Lengths, err)
		}
		r, err := object.NewRangeReader(ctx, 0, -1)
		if err != nil {
			return nil, fmt.Errorf("reading lengths table %s: %v", req.Lengths, err)
		}
		defer r.Close()
		lengths, err := genomics.ReadChromLengths(r)
		if err != nil {
			return nil, err
		}
		return genomics.Split(lengths, req.Workers, req.MinSegment)
	}

	region, err := genomics.ParseRegion(req.Region)
	if err != nil {
		return nil, err
	}
	segment := genomics.Segment{Chrom: region.Chrom, Start: region.Start, End: region.End}
	return [][]genomics.Segment{{segment}}, nil
}
