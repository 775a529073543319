// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package s3 loads delimited records from S3 objects into partitions and
// saves Datasets back to S3 as part objects.
package s3

import (
	"bytes"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pilosa/prep"
	"github.com/pilosa/prep/file"
	"github.com/pilosa/prep/local"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Option is a functional option type for Client.
type Option func(c *Client)

// OptBucket sets the S3 bucket.
func OptBucket(bucket string) Option {
	return func(c *Client) {
		c.bucket = bucket
	}
}

// OptRegion sets the AWS region.
func OptRegion(region string) Option {
	return func(c *Client) {
		c.region = region
	}
}

// OptPrefix restricts loading to the objects in the bucket which match
// prefix. Saved part objects are put under prefix.
func OptPrefix(prefix string) Option {
	return func(c *Client) {
		c.prefix = prefix
	}
}

// OptEndpoint points the client at an S3 compatible service other than AWS.
// Path style addressing is used in that case.
func OptEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// OptConcurrency sets how many objects are transferred at once.
func OptConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// Client moves records between S3 and Datasets.
type Client struct {
	bucket      string
	prefix      string
	region      string
	endpoint    string
	concurrency int

	s3   *s3.S3
	sess *session.Session
}

// NewClient returns a new Client with the options applied.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		region:      "us-east-1",
		concurrency: 8,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.bucket == "" {
		return nil, errors.New("no bucket")
	}
	cfg := &aws.Config{Region: aws.String(c.region)}
	if c.endpoint != "" {
		cfg.Endpoint = aws.String(c.endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	var err error
	c.sess, err = session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "getting new session")
	}
	c.s3 = s3.New(c.sess)
	return c, nil
}

// Keys lists the keys of all non-empty objects under the prefix.
func (c *Client) Keys() ([]string, error) {
	return c.list(c.prefix, func(obj *s3.Object) bool {
		return obj.Size == nil || *obj.Size > 0
	})
}

func (c *Client) list(prefix string, keep func(obj *s3.Object) bool) ([]string, error) {
	keys := make([]string, 0)
	err := c.s3.ListObjectsPages(&s3.ListObjectsInput{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsOutput, last bool) bool {
		for _, obj := range page.Contents {
			if obj.Key == nil || !keep(obj) {
				continue
			}
			keys = append(keys, *obj.Key)
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing objects")
	}
	return keys, nil
}

// Load reads every object under the prefix into a Collection with one
// partition per object.
func (c *Client) Load(opts ...local.Option) (*local.Collection, error) {
	keys, err := c.Keys()
	if err != nil {
		return nil, err
	}
	parts := make([][]string, len(keys))
	g := errgroup.Group{}
	g.SetLimit(c.concurrency)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			result, err := c.s3.GetObject(&s3.GetObjectInput{
				Bucket: aws.String(c.bucket),
				Key:    aws.String(key),
			})
			if err != nil {
				return errors.Wrapf(err, "fetching %v", key)
			}
			defer result.Body.Close()
			parts[i], err = file.ReadLines(result.Body)
			return errors.Wrapf(err, "reading %v", key)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return local.NewCollection(parts, opts...), nil
}

// PartKey returns the key the i-th part object is saved under.
func (c *Client) PartKey(i int) string {
	return path.Join(c.prefix, file.PartName(i))
}

// partPrefix is the common prefix of all part keys.
func (c *Client) partPrefix() string {
	return path.Join(c.prefix, "part-")
}

// Save evaluates ds and puts its records under the prefix, one part object
// per partition of the Dataset. Part objects of an earlier Save which this
// one did not overwrite are deleted afterwards.
func (c *Client) Save(ds *prep.Dataset) error {
	recs, err := ds.Collect()
	if err != nil {
		return errors.Wrap(err, "evaluating dataset")
	}
	chunks := file.Chunk(recs, ds.Records().Partitions())
	written := make(map[string]struct{}, len(chunks))
	g := errgroup.Group{}
	g.SetLimit(c.concurrency)
	for i, chunk := range chunks {
		key, chunk := c.PartKey(i), chunk
		written[key] = struct{}{}
		g.Go(func() error {
			buf := &bytes.Buffer{}
			if err := file.WriteLines(buf, chunk); err != nil {
				return err
			}
			_, err := c.s3.PutObject(&s3.PutObjectInput{
				Bucket: aws.String(c.bucket),
				Key:    aws.String(key),
				Body:   bytes.NewReader(buf.Bytes()),
			})
			return errors.Wrapf(err, "putting %s", key)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	removed, err := c.removeStale(written)
	if err != nil {
		return err
	}
	ds.Logger().Printf("wrote %d records to s3://%s/%s, removed %d stale parts", len(recs), c.bucket, c.prefix, removed)
	return nil
}

// removeStale deletes the part objects under the prefix which are not in
// keep.
func (c *Client) removeStale(keep map[string]struct{}) (int, error) {
	parts, err := c.list(c.partPrefix(), func(*s3.Object) bool { return true })
	if err != nil {
		return 0, err
	}
	n := 0
	for _, key := range parts {
		if _, ok := keep[key]; ok {
			continue
		}
		_, err := c.s3.DeleteObject(&s3.DeleteObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return n, errors.Wrapf(err, "deleting stale part %s", key)
		}
		n++
	}
	return n, nil
}
