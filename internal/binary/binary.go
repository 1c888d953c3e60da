// Copyright 2018 Google Inc.
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

// Package binary provides support for operating on binary data.
package binary

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Read reads a little endian value from r into v using binary.Read.
func Read(r io.Reader, v interface{}) error {
	return binary.Read(r, binary.LittleEndian, v)
}

// ReadStrings splits a block of n NUL-terminated bytes read from r into the
// strings it contains.
func ReadStrings(r io.Reader, n int32) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid block length %d", n)
	}
	block := make([]byte, n)
	if _, err := io.ReadFull(r, block); err != nil {
		return nil, fmt.Errorf("reading %d bytes: %v", n, err)
	}
	if n == 0 {
		return nil, nil
	}
	if block[n-1] != 0 {
		return nil, fmt.Errorf("block is not NUL-terminated")
	}
	parts := bytes.Split(block[:n-1], []byte{0})
	names := make([]string, len(parts))
	for i, part := range parts {
		names[i] = string(part)
	}
	return names, nil
}
