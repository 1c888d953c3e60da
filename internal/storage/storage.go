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

// Package storage provides range-readable access to objects stored on local
// disk, in Google Cloud Storage, or in Amazon S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrNotFound indicates that the requested object does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrPermissionDenied indicates that the credentials in use cannot read
	// the requested object.
	ErrPermissionDenied = errors.New("permission denied")
)

// Object is a handle to stored data that can be read in arbitrary ranges.
type Object interface {
	// NewRangeReader returns a reader over the specified byte range.  A
	// length of -1 means to read everything until the end of the object.
	NewRangeReader(ctx context.Context, offset, length int64) (io.ReadCloser, error)
}

// Open returns a handle to the object named by url.  URLs with a gs:// or
// s3:// scheme address cloud objects; anything else names a local file.
// Google Cloud Storage requests use the application default credentials.
func Open(ctx context.Context, url string) (Object, error) {
	return OpenWith(ctx, "", url)
}

// OpenWith behaves like Open but authorizes Google Cloud Storage requests
// with the provided OAuth2 bearer token when authorization is non-empty.
func OpenWith(ctx context.Context, authorization, url string) (Object, error) {
	switch {
	case strings.HasPrefix(url, "gs://"):
		bucket, name, err := splitObjectURL(url, "gs://")
		if err != nil {
			return nil, err
		}
		if authorization != "" {
			return NewGCSObjectWithToken(ctx, authorization, bucket, name)
		}
		return NewGCSObject(ctx, bucket, name)
	case strings.HasPrefix(url, "s3://"):
		bucket, key, err := splitObjectURL(url, "s3://")
		if err != nil {
			return nil, err
		}
		return NewS3Object(ctx, bucket, key)
	default:
		return NewFileObject(url), nil
	}
}

// OpenPublic behaves like Open but makes unauthenticated Google Cloud
// Storage requests.  It can only read publicly-readable objects.
func OpenPublic(ctx context.Context, url string) (Object, error) {
	if strings.HasPrefix(url, "gs://") {
		bucket, name, err := splitObjectURL(url, "gs://")
		if err != nil {
			return nil, err
		}
		return NewPublicGCSObject(ctx, bucket, name)
	}
	return Open(ctx, url)
}

// splitObjectURL splits an object URL of the given scheme into its bucket
// and object name components.
func splitObjectURL(url, scheme string) (string, string, error) {
	path := strings.TrimPrefix(url, scheme)
	slash := strings.Index(path, "/")
	if slash <= 0 || slash == len(path)-1 {
		return "", "", fmt.Errorf("malformed object URL %q", url)
	}
	return path[:slash], path[slash+1:], nil
}
