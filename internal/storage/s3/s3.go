// Package s3 implements the storage port on top of AWS S3 (or any
// S3-compatible service such as MinIO).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/config"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/types"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/storage"
)

// Store implements storage.Store against a single S3 bucket.
type Store struct {
	client  *s3.Client
	bucket  string
	logger  types.Logger
	metrics types.Metrics
}

// New creates an S3 store for the configured bucket.
func New(cfg *config.S3Config, logger types.Logger, metrics types.Metrics) (*Store, error) {
	awsCfg, err := buildAWSConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	logger.Info(context.Background(), "S3 storage initialized", types.Fields{
		"bucket": cfg.Bucket,
		"region": cfg.Region,
	})

	return &Store{
		client:  client,
		bucket:  cfg.Bucket,
		logger:  logger.WithFields(types.Fields{"adapter": "s3"}),
		metrics: metrics,
	}, nil
}

// Read fetches the object at key.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			s.metrics.RecordError("storage_read", "not_found")
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, key)
		}
		s.logger.Error(ctx, "Failed to get object", err, types.Fields{"key": key})
		s.metrics.RecordError("storage_read", "s3_error")
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		s.metrics.RecordError("storage_read", "body_read")
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	s.metrics.RecordSuccess("storage_read")
	s.metrics.RecordFileSize("input", int64(len(data)))
	s.metrics.RecordDuration("storage_read", time.Since(start).Seconds())

	return data, nil
}

// Write stores data at key.
func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	start := time.Now()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to put object", err, types.Fields{"key": key})
		s.metrics.RecordError("storage_write", "s3_error")
		return fmt.Errorf("failed to put s3://%s/%s: %w", s.bucket, key, err)
	}

	s.metrics.RecordSuccess("storage_write")
	s.metrics.RecordFileSize("output", int64(len(data)))
	s.metrics.RecordDuration("storage_write", time.Since(start).Seconds())

	return nil
}

// Exists reports whether an object is present at key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head s3://%s/%s: %w", s.bucket, key, err)
	}
	return true, nil
}

// List returns the keys of all objects under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			s.logger.Error(ctx, "Failed to list objects", err, types.Fields{"prefix": prefix})
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", s.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}

	return keys, nil
}

// buildAWSConfig assembles the AWS SDK configuration, preferring static
// credentials from the harness config and falling back to the default
// credential chain.
func buildAWSConfig(cfg *config.S3Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	return awsconfig.LoadDefaultConfig(context.Background(), opts...)
}
