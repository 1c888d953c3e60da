// Copyright 2017 Google Inc.
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

// Package analytics provides functions for sending anonymous usage data to
// Google Analytics.
package analytics

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	defaultEndpoint  = "https://www.google-analytics.com"
	defaultBatchSize = 20 // Limit imposed by the batch endpoint.
)

// Hit holds the measurement protocol parameters of a single tracked hit.
type Hit map[string]string

// Event builds an event hit.  Category and action are required; an empty
// label and a nil value are omitted from the hit.
func Event(category, action, label string, value *int64) Hit {
	hit := Hit{
		"t":  "event",
		"ec": category,
		"ea": action,
	}
	if label != "" {
		hit["el"] = label
	}
	if value != nil {
		hit["ev"] = strconv.FormatInt(*value, 10)
	}
	return hit
}

// Timing builds a timing hit reporting the duration in whole milliseconds.
func Timing(category, variable string, duration time.Duration) Hit {
	return Hit{
		"t":   "timing",
		"utc": category,
		"utv": variable,
		"utt": strconv.FormatInt(duration.Milliseconds(), 10),
	}
}

// Client uploads hits for a single property, attributed to an anonymous
// client ID.  Use NewClient to construct one.
type Client struct {
	propertyID string
	clientID   string
	endpoint   string
	batchSize  int
}

// NewClient returns a Client that reports hits against the given property.
func NewClient(propertyID, clientID string) *Client {
	return &Client{propertyID, clientID, defaultEndpoint, defaultBatchSize}
}

// Send uploads the provided hits, splitting them into batches that the
// batch endpoint accepts.
func (c *Client) Send(hits []Hit) error {
	for len(hits) > 0 {
		batch := hits
		if len(batch) > c.batchSize {
			batch = batch[:c.batchSize]
		}
		if err := c.upload(batch); err != nil {
			return fmt.Errorf("uploading hits: %v", err)
		}
		hits = hits[len(batch):]
	}
	return nil
}

// upload posts one batch of hits, one URL-encoded payload per line.
func (c *Client) upload(batch []Hit) error {
	var body bytes.Buffer
	for _, hit := range batch {
		payload := url.Values{
			"v":   {"1"},
			"tid": {c.propertyID},
			"cid": {c.clientID},
		}
		for key, value := range hit {
			payload.Set(key, value)
		}
		body.WriteString(payload.Encode())
		body.WriteByte('\n')
	}

	response, err := http.Post(c.endpoint+"/batch", "text/plain", &body)
	if err != nil {
		return fmt.Errorf("sending request: %v", err)
	}
	response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected response status: %v", response.Status)
	}
	return nil
}

type contextKey int

var hitsKey = contextKey(1)

// Middleware returns a gin middleware that prepares each request's context
// for use with the TrackerFromContext function.  When the request completes,
// the track function is invoked with any hits accumulated while handling it.
func Middleware(track func([]Hit)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var hits []Hit
		ctx := context.WithValue(c.Request.Context(), hitsKey, &hits)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		track(hits)
	}
}

// TrackerFromContext is intended to be used with request contexts prepared
// by the Middleware function.  It returns a function that buffers hits to be
// delivered to the track function provided in the original call to
// Middleware.  Hits tracked on other contexts are discarded.
func TrackerFromContext(ctx context.Context) func(Hit) {
	if hits, ok := ctx.Value(hitsKey).(*[]Hit); ok {
		return func(hit Hit) { *hits = append(*hits, hit) }
	}
	return func(Hit) {}
}
