// Package s3blob implements the engine's opaque blob-store contract over
// an S3-compatible object store (AWS S3, MinIO). Containers map to
// buckets and blob paths to object keys.
package s3blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	caseSvc "casedocs/internal/domain/services/casework"
)

// Options configures the S3 client.
type Options struct {
	Region    string
	AccessKey string
	SecretKey string
	// Endpoint overrides the AWS endpoint for MinIO-style deployments.
	// Leave empty for AWS.
	Endpoint string
}

// Store implements the BlobStore interface over S3.
type Store struct {
	client *s3.Client
	logger *slog.Logger
}

// New creates an S3-backed blob store.
func New(ctx context.Context, opts Options, logger *slog.Logger) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{client: client, logger: logger}, nil
}

// Put writes a blob under container/key.
func (s *Store) Put(ctx context.Context, container, key string, body io.Reader, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put object %s/%s: %w", container, key, err)
	}

	s.logger.Debug("blob stored", "container", container, "key", key)
	return nil
}

// GetProperties returns blob metadata, or nil when the blob is absent.
func (s *Store) GetProperties(ctx context.Context, container, key string) (*caseSvc.BlobProperties, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("head object %s/%s: %w", container, key, err)
	}

	props := &caseSvc.BlobProperties{
		ContentType: aws.ToString(out.ContentType),
	}
	if out.ContentLength != nil {
		props.Size = *out.ContentLength
	}
	return props, nil
}

// DownloadStream opens a stream over a blob's bytes, or returns nil when
// the blob is absent. The caller owns the stream and must close it.
func (s *Store) DownloadStream(ctx context.Context, container, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get object %s/%s: %w", container, key, err)
	}
	return out.Body, nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}
