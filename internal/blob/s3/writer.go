package s3blob

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

// minPartSize is the minimum allowed part size for S3 multipart uploads (5 MiB).
const minPartSize int64 = 5 * 1024 * 1024

// Writer implements domain.BlobWriter using an S3-compatible backend.
type Writer struct {
	client *s3.Client
	bucket string
}

// NewWriter creates a Writer that uploads objects to the client's configured
// bucket.
func NewWriter(c *Client) *Writer {
	return &Writer{
		client: c.S3(),
		bucket: c.Bucket(),
	}
}

// Put uploads data as a single S3 PutObject request. Race archives are a few
// hundred lines of JSONL, well inside single-shot territory.
func (w *Writer) Put(ctx context.Context, path string, data io.Reader, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(path),
		Body:        data,
		ContentType: aws.String(contentType),
	}

	if _, err := w.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3blob: put object %s: %w", path, err)
	}
	return nil
}

// PutMultipart uploads data through the multipart upload manager, splitting
// the payload into parts uploaded concurrently. partSize below the S3
// minimum is clamped up to it.
func (w *Writer) PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error {
	if partSize < minPartSize {
		partSize = minPartSize
	}

	uploader := manager.NewUploader(w.client, func(u *manager.Uploader) {
		u.PartSize = partSize
	})

	input := &s3.PutObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(path),
		Body:   data,
	}

	if _, err := uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("s3blob: multipart upload %s: %w", path, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.BlobWriter = (*Writer)(nil)
