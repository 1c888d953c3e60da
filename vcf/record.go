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

// Package vcf provides support for reading and writing VCF files.
package vcf

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies a record by the shape of its alleles.
type Kind int

const (
	// Other covers records that fit no other kind, such as records with
	// missing or non-sequence alleles.
	Other Kind = iota
	// SNV is a single nucleotide variant: one reference base substituted by
	// one alternate base.
	SNV
	// Indel is an insertion or deletion of sequence.
	Indel
	// SV is a structural variant with a symbolic or breakend alternate
	// allele.
	SV
	// CNV is a copy number variant, written as the symbolic allele <CNV>.
	CNV
)

// Kinds lists the kinds in reporting order.
var Kinds = []Kind{SNV, Indel, SV, CNV}

// String returns the conventional name of the kind.
func (k Kind) String() string {
	switch k {
	case SNV:
		return "SNV"
	case Indel:
		return "INDEL"
	case SV:
		return "SV"
	case CNV:
		return "CNV"
	}
	return "OTHER"
}

// Record is a single data line of a VCF file.
type Record struct {
	Chrom string
	// Pos is the 1-based position from the POS column.
	Pos    int
	ID     string
	Ref    string
	Alt    []string
	Qual   string
	Filter []string
	Format []string

	info    map[string]string
	rawInfo string
	samples []string
	raw     string
}

// ParseRecord parses a single VCF data line.
func ParseRecord(line string) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return nil, fmt.Errorf("record has %d columns, expected at least 8", len(fields))
	}
	pos, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("parsing position %q: %v", fields[1], err)
	}
	if pos < 1 {
		return nil, fmt.Errorf("invalid position %d", pos)
	}

	rec := &Record{
		Chrom:   fields[0],
		Pos:     pos,
		ID:      fields[2],
		Ref:     fields[3],
		Qual:    fields[5],
		info:    parseInfo(fields[7]),
		rawInfo: fields[7],
		raw:     line,
	}
	if alt := fields[4]; alt != "" && alt != "." {
		rec.Alt = strings.Split(alt, ",")
	}
	if filter := fields[6]; filter != "" && filter != "." && filter != "PASS" {
		rec.Filter = strings.Split(filter, ";")
	}
	if len(fields) > 8 {
		rec.Format = strings.Split(fields[8], ":")
		rec.samples = fields[9:]
	}
	return rec, nil
}

func parseInfo(column string) map[string]string {
	info := make(map[string]string)
	if column == "" || column == "." {
		return info
	}
	for _, field := range strings.Split(column, ";") {
		if field == "" {
			continue
		}
		if eq := strings.Index(field, "="); eq >= 0 {
			info[field[:eq]] = field[eq+1:]
		} else {
			info[field] = ""
		}
	}
	return info
}

// Start returns the record's zero-based start position.
func (r *Record) Start() uint32 {
	return uint32(r.Pos - 1)
}

// End returns the record's zero-based, half-open end position.  The INFO END
// field takes precedence over the reference allele length.
func (r *Record) End() uint32 {
	if end, ok := r.InfoInt("END"); ok && end > 0 {
		return uint32(end)
	}
	return r.Start() + uint32(len(r.Ref))
}

// Pass reports whether the record passed all filters.
func (r *Record) Pass() bool {
	return len(r.Filter) == 0
}

// Info returns the raw value of the named INFO field and whether the field
// is present.  Flag fields yield an empty value.
func (r *Record) Info(key string) (string, bool) {
	value, ok := r.info[key]
	return value, ok
}

// InfoInt returns the named INFO field as an integer.  Multi-valued fields
// yield their first value.
func (r *Record) InfoInt(key string) (int, bool) {
	values, ok := r.InfoInts(key)
	if !ok || len(values) == 0 {
		return 0, false
	}
	return values[0], true
}

// InfoInts returns the named INFO field as a list of integers.  Fields that
// are absent, empty, or not entirely numeric yield no values.
func (r *Record) InfoInts(key string) ([]int, bool) {
	value, ok := r.info[key]
	if !ok || value == "" {
		return nil, false
	}
	parts := strings.Split(value, ",")
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, false
		}
		values = append(values, n)
	}
	return values, true
}

// SampleStrings returns the per-sample values of the named FORMAT field for
// every sample that carries it.
func (r *Record) SampleStrings(key string) []string {
	index := -1
	for i, k := range r.Format {
		if k == key {
			index = i
			break
		}
	}
	if index < 0 || len(r.samples) == 0 {
		return nil
	}
	values := make([]string, 0, len(r.samples))
	for _, sample := range r.samples {
		fields := strings.Split(sample, ":")
		if index < len(fields) {
			values = append(values, fields[index])
		}
	}
	return values
}

// Kind returns the record's variant kind.
func (r *Record) Kind() Kind {
	if len(r.Alt) == 0 {
		return Other
	}
	for _, alt := range r.Alt {
		if strings.ContainsAny(alt, "[]") ||
			(strings.HasPrefix(alt, "<") && strings.HasSuffix(alt, ">")) {
			if len(r.Alt) == 1 && r.Alt[0] == "<CNV>" {
				return CNV
			}
			return SV
		}
	}
	if !plainSequence(r.Ref) {
		return Other
	}
	single := len(r.Ref) == 1
	for _, alt := range r.Alt {
		if !plainSequence(alt) {
			return Other
		}
		if len(alt) != 1 {
			single = false
		}
	}
	if single {
		return SNV
	}
	return Indel
}

func plainSequence(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'C', 'G', 'T', 'N', 'a', 'c', 'g', 't', 'n':
		default:
			return false
		}
	}
	return true
}

// Fingerprint returns a stable identity for the record built from its fixed
// columns.  It distinguishes records that share a position but differ in
// alleles or annotations.
func (r *Record) Fingerprint() string {
	return strings.Join([]string{
		r.Chrom,
		strconv.Itoa(r.Pos),
		r.ID,
		r.Ref,
		strings.Join(r.Alt, ","),
		r.Qual,
		strings.Join(r.Filter, ";"),
		r.rawInfo,
	}, "\t")
}

// String returns the record as a VCF data line.  Parsed records render
// byte-identically to their input line.
func (r *Record) String() string {
	if r.raw != "" {
		return r.raw
	}
	columns := []string{
		r.Chrom,
		strconv.Itoa(r.Pos),
		orMissing(r.ID),
		orMissing(r.Ref),
		orMissing(strings.Join(r.Alt, ",")),
		orMissing(r.Qual),
		filterColumn(r.Filter),
		orMissing(r.rawInfo),
	}
	if len(r.Format) > 0 {
		columns = append(columns, strings.Join(r.Format, ":"))
		columns = append(columns, r.samples...)
	}
	return strings.Join(columns, "\t")
}

func orMissing(s string) string {
	if s == "" {
		return "."
	}
	return s
}

func filterColumn(filters []string) string {
	if len(filters) == 0 {
		return "PASS"
	}
	return strings.Join(filters, ";")
}
