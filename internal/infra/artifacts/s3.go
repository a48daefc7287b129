// Where: cli/internal/infra/artifacts/s3.go
// What: S3-compatible archive uploader.
// Why: Publish packaged function archives to an artifact bucket.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awscredentials "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/poruru/bsam-cli/internal/domain/function"
	"github.com/poruru/bsam-cli/internal/infra/credentials"
)

const archiveContentType = "application/zip"

var errBucketRequired = errors.New("artifact bucket is required")

// PutObjectAPI is the SDK surface the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader writes archives to a bucket.
type Uploader struct {
	client PutObjectAPI
	bucket string
}

// NewUploader wraps an SDK client.
func NewUploader(client PutObjectAPI, bucket string) (*Uploader, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("%w: %w", function.ErrConfiguration, errBucketRequired)
	}
	return &Uploader{client: client, bucket: bucket}, nil
}

// Upload stores archivePath under key and returns its s3:// location.
func (u *Uploader) Upload(ctx context.Context, archivePath, key string) (string, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("%w: open archive: %w", function.ErrConfiguration, err)
	}
	defer file.Close()

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(archiveContentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put object %s: %w", function.ErrPlatform, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}

// Settings configure the S3 client.
type Settings struct {
	Bucket   string
	Endpoint string
	Region   string
}

// New builds an Uploader from a credential source. A custom endpoint uses
// path-style addressing.
func New(ctx context.Context, source credentials.Source, settings Settings) (*Uploader, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: credential source is not configured", function.ErrConfiguration)
	}
	record, err := source.Credentials()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(settings.Region),
		config.WithCredentialsProvider(awscredentials.NewStaticCredentialsProvider(
			record.Key,
			record.Secret,
			record.SessionToken,
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: load client config: %w", function.ErrConfiguration, err)
	}
	client := s3.NewFromConfig(cfg, func(options *s3.Options) {
		if endpoint := strings.TrimSpace(settings.Endpoint); endpoint != "" {
			options.BaseEndpoint = aws.String(endpoint)
			options.UsePathStyle = true
		}
	})
	return NewUploader(client, settings.Bucket)
}
