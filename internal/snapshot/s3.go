// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pdiddy/pubmed-digest/pkg/types"
)

const s3Scheme = "s3://"

// ObjectPutter is the subset of *s3.Client used by S3Sink.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink overwrites a single S3 object.
type S3Sink struct {
	Client ObjectPutter
	Bucket string
	Key    string
}

// Put uploads data as the object body.
func (s S3Sink) Put(ctx context.Context, data []byte, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(s.Key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.Client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("s3 put: %w", err)
	}
	return nil
}

func (s S3Sink) String() string { return s3Scheme + s.Bucket + "/" + s.Key }

// ParseS3URL splits s3://bucket/key. ok is false for anything else,
// including an s3 URL without a key.
func ParseS3URL(dest string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(dest, s3Scheme) {
		return "", "", false
	}
	bucket, key, found := strings.Cut(strings.TrimPrefix(dest, s3Scheme), "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// NewSink returns the sink for cfg.Path. s3:// destinations load the AWS
// default credential chain, with cfg.S3Region overriding the region.
func NewSink(ctx context.Context, cfg types.OutputConfig) (Sink, error) {
	if !strings.HasPrefix(cfg.Path, s3Scheme) {
		return FileSink{Path: cfg.Path}, nil
	}
	bucket, key, ok := ParseS3URL(cfg.Path)
	if !ok {
		return nil, fmt.Errorf("invalid S3 destination %q (want s3://bucket/key)", cfg.Path)
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.S3Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.S3Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return S3Sink{Client: s3.NewFromConfig(awsCfg), Bucket: bucket, Key: key}, nil
}
