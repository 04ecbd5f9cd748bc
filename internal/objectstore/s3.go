// Package objectstore implements core.ObjectStore on Amazon S3 and
// S3-compatible stores.
package objectstore

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/JonMunkholm/tweetpipe/internal/config"
	"github.com/JonMunkholm/tweetpipe/internal/core"
	"github.com/JonMunkholm/tweetpipe/internal/logging"
)

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store lists and reads objects from S3.
type S3Store struct {
	client S3API
	prefix string
}

// compile-time check
var _ core.ObjectStore = (*S3Store)(nil)

// New wraps an existing client. Only keys under prefix are listed.
func New(client S3API, prefix string) *S3Store {
	return &S3Store{client: client, prefix: prefix}
}

// NewS3Store creates a store from an AWS config, applying the custom
// endpoint and path-style addressing from cfg.
func NewS3Store(awsCfg aws.Config, cfg config.SourceConfig) *S3Store {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})
	return New(client, cfg.Prefix)
}

// List returns every object in bucket, following continuation tokens.
// Objects with no key are skipped.
func (s *S3Store) List(ctx context.Context, bucket string) ([]core.ObjectInfo, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if s.prefix != "" {
		input.Prefix = aws.String(s.prefix)
	}

	var objects []core.ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	pages := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects page %d: %w", pages+1, err)
		}
		pages++

		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			objects = append(objects, core.ObjectInfo{
				Key:          aws.ToString(obj.Key),
				LastModified: aws.ToTime(obj.LastModified),
				Size:         aws.ToInt64(obj.Size),
			})
		}
	}

	logging.FromContext(ctx).Debug("listed objects", "bucket", bucket, "prefix", s.prefix, "pages", pages, "objects", len(objects))
	return objects, nil
}

// Get opens the object body. The caller must close it.
func (s *S3Store) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	return out.Body, nil
}
