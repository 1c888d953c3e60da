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

package storage

import (
	"context"
	"fmt"
	"io"
	"os"
)

// NewFileObject returns a handle to a local file.  Each range reader opens
// its own file descriptor, so readers are independent of each other.
func NewFileObject(path string) Object {
	return fileObject{path: path}
}

type fileObject struct {
	path string
}

func (o fileObject) NewRangeReader(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
	file, err := os.Open(o.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", o.path, ErrNotFound)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%s: %w", o.path, ErrPermissionDenied)
		}
		return nil, err
	}
	if length < 0 {
		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			file.Close()
			return nil, fmt.Errorf("seeking to %d: %v", offset, err)
		}
		return file, nil
	}
	return &sectionReadCloser{
		SectionReader: io.NewSectionReader(file, offset, length),
		file:          file,
	}, nil
}

type sectionReadCloser struct {
	*io.SectionReader
	file *os.File
}

func (r *sectionReadCloser) Close() error {
	return r.file.Close()
}
