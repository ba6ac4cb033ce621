// Package common holds shared infrastructure helpers, currently the S3
// wrapper used to archive completed research documents.
package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"tickerbrief/types"
)

// S3Config contains minimal configuration for creating an S3 client.
// Values are optional and fall back to the standard AWS config chain.
type S3Config struct {
	// Region to use for requests, e.g. "us-east-1". If empty, AWS defaults apply.
	Region string
	// Profile selects a named shared config/credentials profile.
	Profile string
	// UsePathStyle forces path-style addressing (S3-compatible providers).
	UsePathStyle bool
}

// S3 wraps the AWS SDK v2 S3 client behind the narrow surface the archiver needs.
type S3 struct {
	client *s3.Client
}

// NewS3 creates an S3 wrapper using the default AWS configuration chain,
// with optional overrides from S3Config.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	c := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &S3{client: c}, nil
}

// Put uploads an object to the given bucket/key.
func (s *S3) Put(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	_, err := s.client.PutObject(ctx, in)
	return err
}

// ObjectStore is the upload surface the archiver depends on.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
}

// Archiver writes completed research documents to an object store. A nil
// *Archiver is valid and archives nothing, so callers need no configured
// check of their own.
type Archiver struct {
	store  ObjectStore
	bucket string
	prefix string
}

// NewArchiver returns nil when bucket is empty (archival not configured).
func NewArchiver(store ObjectStore, bucket, prefix string) *Archiver {
	if store == nil || bucket == "" {
		return nil
	}
	return &Archiver{store: store, bucket: bucket, prefix: prefix}
}

// Archive uploads the document as pretty-printed JSON under
// <prefix>research/<ticker>_<exchange>/<timestamp>.json.
func (a *Archiver) Archive(ctx context.Context, doc *types.ResearchDocument) error {
	if a == nil || doc == nil {
		return nil
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	ts := doc.Timestamp
	if ts == "" {
		ts = time.Now().UTC().Format(time.RFC3339)
	}
	ts = strings.ReplaceAll(ts, ":", "-")

	key := fmt.Sprintf("%sresearch/%s_%s/%s.json", a.prefix, doc.Ticker, doc.Exchange, ts)
	return a.store.Put(ctx, a.bucket, key, b, "application/json")
}
