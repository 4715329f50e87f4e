package backup

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/kaarshe/core/internal/config"
)

const defaultRegion = "us-east-1"

// Uploader stores one object.
type Uploader interface {
	Upload(ctx context.Context, objectKey string, payload []byte, contentType string) error
}

type s3Uploader struct {
	client *s3.Client
	bucket string
}

// NewS3Uploader builds an uploader for AWS or any S3-compatible endpoint.
// A custom endpoint implies path-style addressing.
func NewS3Uploader(opts config.ExportConfig) (Uploader, error) {
	bucket := strings.TrimSpace(opts.Bucket)
	accessKey := strings.TrimSpace(opts.AccessKeyID)
	secretKey := strings.TrimSpace(opts.SecretAccessKey)
	if bucket == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("incomplete s3 config: bucket/access_key_id/secret_access_key are required")
	}
	region := strings.TrimSpace(opts.Region)
	if region == "" {
		region = defaultRegion
	}

	s3opts := s3.Options{
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: opts.PathStyle,
	}
	if endpoint := strings.TrimSpace(opts.Endpoint); endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		s3opts.BaseEndpoint = aws.String(strings.TrimSuffix(endpoint, "/"))
		s3opts.UsePathStyle = true
	}
	return &s3Uploader{client: s3.New(s3opts), bucket: bucket}, nil
}

func (u *s3Uploader) Upload(ctx context.Context, objectKey string, payload []byte, contentType string) error {
	key := normalizeObjectKey(objectKey)
	if key == "" {
		return fmt.Errorf("invalid s3 object key")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(payload),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(payload))),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}

func normalizeObjectKey(key string) string {
	key = strings.ReplaceAll(strings.TrimSpace(key), "\\", "/")
	key = strings.TrimLeft(key, "/")
	for strings.Contains(key, "//") {
		key = strings.ReplaceAll(key, "//", "/")
	}
	return key
}
