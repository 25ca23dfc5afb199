package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"lens/internal/config"
)

// S3 stores blob content in a bucket and issues presigned upload URLs, so
// uploads go straight to S3 instead of through the daemon.
type S3 struct {
	client    *s3.Client
	presign   *s3.PresignClient
	bucket    string
	uploadTTL time.Duration
}

// NewS3 constructs the bucket-backed object store. Credentials come from the
// standard AWS environment and shared config.
func NewS3(ctx context.Context, cfg *config.Config) (*S3, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3{
		client:    client,
		presign:   s3.NewPresignClient(client),
		bucket:    cfg.Storage.Bucket,
		uploadTTL: time.Duration(cfg.Workflow.UploadWindow) * time.Second,
	}, nil
}

// UploadURL presigns a PUT for the blob's object key. The URL expires with
// the upload watchdog window; a caller holding an expired URL would be timed
// out anyway.
func (s *S3) UploadURL(ctx context.Context, blobID string) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(blobID),
	}, s3.WithPresignExpires(s.uploadTTL))
	if err != nil {
		return "", fmt.Errorf("presign upload: %w", err)
	}
	return req.URL, nil
}

// Exists reports whether the blob's object key is present in the bucket.
func (s *S3) Exists(ctx context.Context, blobID string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(blobID),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("head object: %w", err)
	}
	return true, nil
}

// Put uploads content to the blob's object key.
func (s *S3) Put(ctx context.Context, blobID string, content io.Reader) error {
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(blobID),
		Body:   content,
	}); err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// Open streams the blob's object content from the bucket.
func (s *S3) Open(ctx context.Context, blobID string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(blobID),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("blob %q: %w", blobID, ErrNotUploaded)
		}
		return nil, fmt.Errorf("get object: %w", err)
	}
	return out.Body, nil
}

// Bucket returns the configured bucket name.
func (s *S3) Bucket() string {
	return s.bucket
}
