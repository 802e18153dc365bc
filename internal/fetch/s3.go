package fetch

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	awscredentials "github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Config holds the connection settings for an S3-compatible backend.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// S3Fetcher fetches assets from a bucket on an S3-compatible store.
//
// Asset paths are object keys within the configured bucket; a leading "/"
// is stripped.
type S3Fetcher struct {
	client *s3.S3
	bucket string
}

// NewS3Fetcher creates an S3Fetcher for the given configuration.
func NewS3Fetcher(cfg S3Config) (*S3Fetcher, error) {
	sess, err := session.NewSession(&aws.Config{
		Credentials: awscredentials.NewStaticCredentials(
			cfg.AccessKey,
			cfg.SecretKey, "",
		),
		Endpoint:         aws.String(cfg.Endpoint),
		Region:           aws.String(cfg.Region),
		DisableSSL:       aws.Bool(!cfg.UseSSL),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("creating S3 session: %w", err)
	}
	return &S3Fetcher{
		client: s3.New(sess),
		bucket: cfg.Bucket,
	}, nil
}

// Fetch downloads the object at the given key and returns it as a Resource.
func (f *S3Fetcher) Fetch(ctx context.Context, path string) (*Resource, error) {
	out, err := f.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(objectKey(path)),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, err
	}

	return NewResource(path, data, aws.StringValue(out.ContentType)), nil
}

// Size returns the size of the object at the given key via HeadObject.
func (f *S3Fetcher) Size(ctx context.Context, path string) (int64, error) {
	out, err := f.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(objectKey(path)),
	})
	if err != nil {
		return 0, err
	}
	return aws.Int64Value(out.ContentLength), nil
}

func objectKey(path string) string {
	return strings.TrimPrefix(path, "/")
}
