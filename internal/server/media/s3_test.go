package media

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/abanwa/twitter/internal/server/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	puts    []*s3.PutObjectInput
	body    []byte
	deletes []*s3.DeleteObjectInput
	err     error
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.puts = append(f.puts, in)
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deletes = append(f.deletes, in)
	return &s3.DeleteObjectOutput{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		S3Region:       "us-east-1",
		S3AccessKey:    "admin",
		S3SecretKey:    "secretpassword",
		S3Bucket:       "images",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3PublicURL:    "http://127.0.0.1:9000/images/",
	}
}

func TestNewS3Host_AppliesConfig(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}

	fake := &fakeObjects{}
	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		for _, fn := range optFns {
			fn(&opts)
		}
		return fake
	}

	h, err := NewS3Host(context.Background(), testConfig())
	require.NoError(t, err)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "http://127.0.0.1:9000/images", h.publicURL)
	assert.Same(t, fake, h.client)
}

func TestNewS3Host_ConfigError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("boom")
	}

	_, err := NewS3Host(context.Background(), testConfig())
	require.ErrorContains(t, err, "boom")
}

func TestS3Host_UploadAndDelete(t *testing.T) {
	fake := &fakeObjects{}
	h := &S3Host{client: fake, bucket: "images", publicURL: "http://cdn/images"}

	url, err := h.Upload(context.Background(), "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngBytes))
	require.NoError(t, err)
	require.Len(t, fake.puts, 1)

	put := fake.puts[0]
	assert.Equal(t, "images", aws.ToString(put.Bucket))
	assert.Equal(t, "image/png", aws.ToString(put.ContentType))
	assert.Equal(t, pngBytes, fake.body)
	assert.True(t, strings.HasPrefix(url, "http://cdn/images/"))
	assert.True(t, strings.HasSuffix(url, ".png"))
	assert.Equal(t, aws.ToString(put.Key), IDFromURL(url))

	require.NoError(t, h.Delete(context.Background(), url))
	require.Len(t, fake.deletes, 1)
	assert.Equal(t, aws.ToString(put.Key), aws.ToString(fake.deletes[0].Key))
}

func TestS3Host_Errors(t *testing.T) {
	fake := &fakeObjects{err: errors.New("unavailable")}
	h := &S3Host{client: fake, bucket: "images", publicURL: "http://cdn/images"}

	_, err := h.Upload(context.Background(), "garbage!")
	require.Error(t, err)
	assert.Empty(t, fake.puts)

	_, err = h.Upload(context.Background(), base64.StdEncoding.EncodeToString(pngBytes))
	require.ErrorContains(t, err, "s3 put")

	require.ErrorContains(t, h.Delete(context.Background(), "http://cdn/images/k.png"), "s3 delete")
	require.NoError(t, h.Delete(context.Background(), ""))
}
