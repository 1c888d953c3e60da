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

// Package compare matches the variant records of two VCF inputs against
// each other and aggregates the outcome into named categories.
package compare

import (
	"context"

	"github.com/googlegenomics/vcfdiff/genomics"
	"github.com/googlegenomics/vcfdiff/vcf"
)

// Source provides indexed access to the records of one input.
type Source interface {
	// Fetch returns an iterator over the records overlapping region, in
	// file order.  Every call returns an independent iterator.
	Fetch(ctx context.Context, region genomics.Region) (Records, error)
}

// Records iterates over a stream of records in the manner of
// bufio.Scanner.
type Records interface {
	Scan() bool
	Record() *vcf.Record
	Err() error
}

type readerSource struct {
	reader *vcf.Reader
}

// NewSource adapts an indexed VCF reader to the Source interface.
func NewSource(reader *vcf.Reader) Source {
	return readerSource{reader}
}

func (s readerSource) Fetch(ctx context.Context, region genomics.Region) (Records, error) {
	return s.reader.Fetch(ctx, region)
}
