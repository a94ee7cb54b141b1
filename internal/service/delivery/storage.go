package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gcs "cloud.google.com/go/storage"

	"vegshop/internal/domain"
	"vegshop/internal/service/receipt"
)

const ChannelStorage = "storage"

// ObjectWriter stores one object in a bucket.
type ObjectWriter interface {
	WriteObject(ctx context.Context, object, contentType string, body []byte) error
}

// gcsObjectWriter writes to a Cloud Storage bucket.
type gcsObjectWriter struct {
	bucket *gcs.BucketHandle
}

func (w gcsObjectWriter) WriteObject(ctx context.Context, object, contentType string, body []byte) error {
	ow := w.bucket.Object(object).NewWriter(ctx)
	ow.ContentType = contentType
	if _, err := ow.Write(body); err != nil {
		_ = ow.Close()
		return err
	}
	return ow.Close()
}

// BucketUploader archives receipts under receipts/<yyyy>/<mm>/<orderID>.txt.
type BucketUploader struct {
	bucket string
	writer ObjectWriter
}

// NewBucketUploader constructs an uploader backed by the provided Cloud Storage client.
func NewBucketUploader(client *gcs.Client, bucket string) (*BucketUploader, error) {
	if client == nil {
		return nil, errors.New("bucket uploader: client is required")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("bucket uploader: bucket is required")
	}
	return &BucketUploader{bucket: bucket, writer: gcsObjectWriter{bucket: client.Bucket(bucket)}}, nil
}

func (u *BucketUploader) Channel() string { return ChannelStorage }

func (u *BucketUploader) Deliver(ctx context.Context, order domain.Order, doc receipt.Document) (string, error) {
	object := ObjectName(order)
	if err := u.writer.WriteObject(ctx, object, doc.ContentType, doc.Body); err != nil {
		return "", fmt.Errorf("upload %s: %w", object, err)
	}
	return "gs://" + u.bucket + "/" + object, nil
}

// ObjectName is the archive path for an order's receipt.
func ObjectName(order domain.Order) string {
	return fmt.Sprintf("receipts/%s/%s.txt", order.PlacedAt.UTC().Format("2006/01"), order.ID)
}
