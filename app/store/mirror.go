package store

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// Mirror publishes a copy of the encoded collection somewhere public.
type Mirror interface {
	Publish(ctx context.Context, data []byte) error
}

type S3Config struct {
	Bucket   string
	Key      string
	Region   string
	Endpoint string
	KeyID    string
	Secret   string
}

type S3Mirror struct {
	api    *s3.S3
	bucket string
	key    string
}

// NewS3Mirror builds a mirror for S3 or an S3 compatible endpoint. Without
// static credentials the default AWS credential chain is used.
func NewS3Mirror(c S3Config) (*S3Mirror, error) {
	awsCfg := &aws.Config{
		Region: aws.String(c.Region),
	}
	if c.Endpoint != "" {
		awsCfg.Endpoint = aws.String(c.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if c.KeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(c.KeyID, c.Secret, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	key := c.Key
	if key == "" {
		key = "releases.json"
	}

	return &S3Mirror{api: s3.New(sess), bucket: c.Bucket, key: key}, nil
}

func (m *S3Mirror) Publish(ctx context.Context, data []byte) error {
	_, err := m.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(m.bucket),
		Key:          aws.String(m.key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("max-age=300"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to s3://%s/%s: %w", m.bucket, m.key, err)
	}

	slog.Info("Collection mirrored", "bucket", m.bucket, "key", m.key, "bytes", len(data))
	return nil
}
