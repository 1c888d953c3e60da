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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var (
	defaultS3Client     *s3.Client
	defaultS3ClientErr  error
	initDefaultS3Client sync.Once
)

// NewS3Object returns a handle to an Amazon S3 object using the shared AWS
// configuration.  The S3 client is cached for efficiency.
func NewS3Object(ctx context.Context, bucket, key string) (Object, error) {
	initDefaultS3Client.Do(func() {
		cfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			defaultS3ClientErr = fmt.Errorf("loading AWS configuration: %v", err)
			return
		}
		defaultS3Client = s3.NewFromConfig(cfg)
	})
	if defaultS3ClientErr != nil {
		return nil, defaultS3ClientErr
	}
	return s3Object{client: defaultS3Client, bucket: bucket, key: key}, nil
}

type s3Object struct {
	client      *s3.Client
	bucket, key string
}

func (o s3Object) NewRangeReader(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
	if length == 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	input := &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
	}
	switch {
	case length < 0 && offset == 0:
		// Read the whole object.
	case length < 0:
		input.Range = aws.String(fmt.Sprintf("bytes=%d-", offset))
	default:
		input.Range = aws.String(fmt.Sprintf("bytes=%d-%d", offset, offset+length-1))
	}
	output, err := o.client.GetObject(ctx, input)
	if err != nil {
		return nil, s3Error(err)
	}
	return output.Body, nil
}

func s3Error(err error) error {
	var noKey *types.NoSuchKey
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noKey) || errors.As(err, &noBucket) {
		return ErrNotFound
	}
	return err
}
