package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/abanwa/twitter/internal/server/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Host keeps images in an S3-compatible bucket under uuid keys; the
// public URL is the configured base followed by key and extension.
type S3Host struct {
	client    objectAPI
	bucket    string
	publicURL string
}

func NewS3Host(ctx context.Context, c *config.Config) (*S3Host, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(c.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3AccessKey,
			c.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Host{
		client:    client,
		bucket:    c.S3Bucket,
		publicURL: strings.TrimSuffix(c.S3PublicURL, "/"),
	}, nil
}

func (h *S3Host) Upload(ctx context.Context, payload string) (string, error) {
	contentType, data, err := DecodePayload(payload)
	if err != nil {
		return "", err
	}

	key := uuid.NewString()
	_, err = h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put: %w", err)
	}

	return h.publicURL + "/" + key + extensions[contentType], nil
}

func (h *S3Host) Delete(ctx context.Context, url string) error {
	key := IDFromURL(url)
	if key == "" {
		return nil
	}
	_, err := h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete: %w", err)
	}
	return nil
}
