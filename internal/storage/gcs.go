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
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	gcs "cloud.google.com/go/storage"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

var errMissingOrInvalidToken = errors.New("missing or invalid bearer token")

var (
	defaultGCSClient     *gcs.Client
	defaultGCSClientErr  error
	initDefaultGCSClient sync.Once

	publicGCSClient     *gcs.Client
	publicGCSClientErr  error
	initPublicGCSClient sync.Once
)

// NewGCSObject returns a handle to a Google Cloud Storage object using the
// application default credentials.  The storage client is cached for
// efficiency.
func NewGCSObject(ctx context.Context, bucket, name string) (Object, error) {
	initDefaultGCSClient.Do(func() {
		defaultGCSClient, defaultGCSClientErr = gcs.NewClient(context.Background())
	})
	if defaultGCSClientErr != nil {
		return nil, fmt.Errorf("creating default storage client: %v", defaultGCSClientErr)
	}
	return gcsObject{defaultGCSClient.Bucket(bucket).Object(name)}, nil
}

// NewPublicGCSObject returns a handle to a Google Cloud Storage object that
// does not use any form of client authorization.  It can only be used to
// read publicly-readable objects.  The storage client is cached for
// efficiency.
func NewPublicGCSObject(ctx context.Context, bucket, name string) (Object, error) {
	initPublicGCSClient.Do(func() {
		publicGCSClient, publicGCSClientErr = gcs.NewClient(context.Background(), option.WithHTTPClient(http.DefaultClient))
	})
	if publicGCSClientErr != nil {
		return nil, fmt.Errorf("creating public storage client: %v", publicGCSClientErr)
	}
	return gcsObject{publicGCSClient.Bucket(bucket).Object(name)}, nil
}

// NewGCSObjectWithToken returns a handle to a Google Cloud Storage object
// that uses the OAuth2 bearer token in authorization to make storage
// requests.
func NewGCSObjectWithToken(ctx context.Context, authorization, bucket, name string) (Object, error) {
	fields := strings.Split(authorization, " ")
	if len(fields) != 2 || fields[0] != "Bearer" {
		return nil, errMissingOrInvalidToken
	}

	token := oauth2.Token{
		TokenType:   fields[0],
		AccessToken: fields[1],
	}
	client, err := gcs.NewClient(ctx, option.WithTokenSource(oauth2.StaticTokenSource(&token)))
	if err != nil {
		return nil, fmt.Errorf("creating client with token source: %v", err)
	}
	return gcsObject{client.Bucket(bucket).Object(name)}, nil
}

type gcsObject struct {
	object *gcs.ObjectHandle
}

func (o gcsObject) NewRangeReader(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
	r, err := o.object.NewRangeReader(ctx, offset, length)
	if err != nil {
		return nil, gcsError(err)
	}
	return r, nil
}

func gcsError(err error) error {
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return ErrNotFound
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrPermissionDenied
		}
	}
	return err
}
