package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "legacyvault/internal/server/config"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// s3API is the subset of the S3 client used by S3Store.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store stores attachments in an S3-compatible bucket (AWS S3, MinIO).
// Objects are addressed path-style under a fixed base endpoint, so the
// public URL of a key is <endpoint>/<bucket>/<key>.
type S3Store struct {
	client   s3API
	bucket   string
	endpoint string
}

// NewS3Store builds a store from the server configuration, using static
// credentials and the configured base endpoint (MINIO_ROOT_USER /
// MINIO_ROOT_PASSWORD style setups).
func NewS3Store(ctx context.Context, c *sc.Config) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3RootUser,
			c.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{
		client:   client,
		bucket:   c.S3Bucket,
		endpoint: strings.TrimSuffix(c.S3BaseEndpoint, "/"),
	}, nil
}

// Put uploads data under key.
func (s *S3Store) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("putting object %s: %w", key, err)
	}
	return nil
}

// URL returns the public, path-style URL of key.
func (s *S3Store) URL(key string) string {
	return s.endpoint + "/" + s.bucket + "/" + key
}

// Delete removes the object identified by a key or by a URL previously
// issued by URL.
func (s *S3Store) Delete(ctx context.Context, keyOrURL string) error {
	key := s.keyFrom(keyOrURL)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting object %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) keyFrom(keyOrURL string) string {
	prefix := s.endpoint + "/" + s.bucket + "/"
	if strings.HasPrefix(keyOrURL, prefix) {
		return strings.TrimPrefix(keyOrURL, prefix)
	}
	return keyOrURL
}
