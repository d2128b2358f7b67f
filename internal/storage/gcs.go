package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSBucket stores objects in a Google Cloud Storage bucket.
type GCSBucket struct {
	client *gcs.Client
	bucket string
}

// NewGCSBucket creates a bucket client. An empty credentialsFile uses
// application default credentials.
func NewGCSBucket(ctx context.Context, bucket, credentialsFile string) (*GCSBucket, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	return &GCSBucket{client: client, bucket: bucket}, nil
}

func (b *GCSBucket) object(path string) *gcs.ObjectHandle {
	return b.client.Bucket(b.bucket).Object(path)
}

func (b *GCSBucket) Put(ctx context.Context, path, contentType string, data []byte) error {
	w := b.object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "no-cache, no-store, must-revalidate"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gs://%s/%s: %w", b.bucket, path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close GCS writer for %s: %w", path, err)
	}
	return nil
}

func (b *GCSBucket) Get(ctx context.Context, path string) (*Object, error) {
	r, err := b.object(path).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open gs://%s/%s: %w", b.bucket, path, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read gs://%s/%s: %w", b.bucket, path, err)
	}
	return &Object{
		Path:        path,
		ContentType: r.Attrs.ContentType,
		Data:        data,
		UpdatedAt:   r.Attrs.LastModified,
	}, nil
}

func (b *GCSBucket) Delete(ctx context.Context, path string) error {
	err := b.object(path).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return ErrNotFound
	}
	return err
}

func (b *GCSBucket) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	it := b.client.Bucket(b.bucket).Objects(ctx, &gcs.Query{Prefix: prefix})
	var out []ObjectInfo
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list gs://%s/%s: %w", b.bucket, prefix, err)
		}
		out = append(out, ObjectInfo{Path: attrs.Name, Size: attrs.Size, UpdatedAt: attrs.Updated})
	}
	return out, nil
}

// Close releases the client.
func (b *GCSBucket) Close() error {
	return b.client.Close()
}
