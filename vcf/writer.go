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

package vcf

import (
	"bufio"
	"fmt"
	"io"
)

// Writer writes VCF records preceded by a header.  The header is written
// once, before the first record, or by Close when no records were written.
type Writer struct {
	w      *bufio.Writer
	header []string
	wrote  bool
}

// NewWriter returns a writer that emits header followed by any written
// records to w.
func NewWriter(w io.Writer, header []string) *Writer {
	return &Writer{w: bufio.NewWriter(w), header: header}
}

// Write writes a single record.
func (w *Writer) Write(rec *Record) error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	if _, err := w.w.WriteString(rec.String()); err != nil {
		return fmt.Errorf("writing record: %v", err)
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("writing record: %v", err)
	}
	return nil
}

func (w *Writer) writeHeader() error {
	if w.wrote {
		return nil
	}
	w.wrote = true
	for _, line := range w.header {
		if _, err := w.w.WriteString(line); err != nil {
			return fmt.Errorf("writing header: %v", err)
		}
		if err := w.w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing header: %v", err)
		}
	}
	return nil
}

// Close writes the header if it has not been written and flushes any
// buffered output.  It does not close the underlying writer.
func (w *Writer) Close() error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flushing output: %v", err)
	}
	return nil
}
