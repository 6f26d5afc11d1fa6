package s3

import (
	"context"
	"fmt"
	"io"
	"time"

	"clientkit/internal/config"
	"clientkit/internal/infra/cache"
	"clientkit/internal/storage"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

const (
	emptyAWSSessionToken                     = ""
	errFailedCreateAWSSessionFmt             = "failed to create AWS session: %w"
	errFailedPutObjectFmt                    = "failed to put object %s: %w"
	errFailedGeneratePresignedDownloadURLFmt = "failed to generate presigned download URL: %w"
	errFailedDeleteObjectFmt                 = "failed to delete object: %w"
)

// Client stores uploads in a single bucket and hands out presigned GET URLs.
type Client struct {
	svc                *s3.S3
	bucket             string
	presignedURLExpiry time.Duration
	urls               *cache.URLCache
}

var _ storage.BlobStore = (*Client)(nil)

func NewClient(cfg *config.AWSConfig, bucket string, presignedURLExpiry time.Duration) (*Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			emptyAWSSessionToken,
		),
	})

	if err != nil {
		return nil, fmt.Errorf(errFailedCreateAWSSessionFmt, err)
	}

	return &Client{
		svc:                s3.New(sess),
		bucket:             bucket,
		presignedURLExpiry: presignedURLExpiry,
		urls:               cache.NewURLCache(),
	}, nil
}

func (c *Client) Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := c.svc.PutObjectWithContext(ctx, input); err != nil {
		return fmt.Errorf(errFailedPutObjectFmt, key, err)
	}

	return nil
}

func (c *Client) DownloadURL(ctx context.Context, key string) (string, error) {
	if url, ok := c.urls.Get(key); ok {
		return url, nil
	}

	req, _ := c.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	req.SetContext(ctx)

	url, err := req.Presign(c.presignedURLExpiry)
	if err != nil {
		return "", fmt.Errorf(errFailedGeneratePresignedDownloadURLFmt, err)
	}

	c.urls.Set(key, url, time.Now().Add(c.presignedURLExpiry))
	return url, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		return fmt.Errorf(errFailedDeleteObjectFmt, err)
	}

	c.urls.Forget(key)
	return nil
}

// SweepURLs drops expired presigned URLs from the cache.
func (c *Client) SweepURLs() int {
	return c.urls.Sweep()
}
