// Package s3blob implements blob storage on AWS SDK v2, with compatibility
// for S3-compatible providers such as MinIO and Cloudflare R2. The pipeline
// uses it to export each race's price history to cold storage.
package s3blob

import (
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ClientConfig holds the configuration for connecting to an S3-compatible
// object store.
type ClientConfig struct {
	// Endpoint is the S3-compatible endpoint URL. Leave empty for AWS S3.
	Endpoint string

	// Region is the AWS region or equivalent for the provider.
	Region string

	// Bucket is the default bucket name for all operations.
	Bucket string

	// AccessKey is the access key ID for authentication.
	AccessKey string

	// SecretKey is the secret access key for authentication.
	SecretKey string

	// UseSSL controls the scheme used when Endpoint has none.
	UseSSL bool

	// ForcePathStyle forces path-style addressing (bucket in path rather
	// than subdomain), required by many S3-compatible providers.
	ForcePathStyle bool
}

// Client wraps the AWS S3 SDK client and stores the default bucket name.
type Client struct {
	s3     *s3.Client
	bucket string
}

// New creates an S3 client from the given configuration.
func New(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3blob: bucket name is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("s3blob: region is required")
	}

	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("s3blob: load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := normaliseEndpoint(cfg.Endpoint, cfg.UseSSL)
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &Client{
		s3:     s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: cfg.Bucket,
	}, nil
}

// Health performs a HeadBucket call to verify connectivity and permissions.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err != nil {
		return fmt.Errorf("s3blob: health check failed for bucket %s: %w", c.bucket, err)
	}
	return nil
}

// S3 returns the underlying AWS SDK S3 client.
func (c *Client) S3() *s3.Client {
	return c.s3
}

// Bucket returns the configured default bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// normaliseEndpoint ensures the endpoint has a scheme, defaulting to the
// scheme implied by useSSL when none is present.
func normaliseEndpoint(endpoint string, useSSL bool) string {
	parsed, err := url.Parse(endpoint)
	if err == nil && parsed.Scheme != "" {
		return endpoint
	}
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return scheme + "://" + endpoint
}
