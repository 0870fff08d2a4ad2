//go:build gcp

package archive

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
)

// GCSSink ships snapshots to a Google Cloud Storage bucket.
type GCSSink struct {
	client *storage.Client
	bucket string
	prefix string
}

// GCSSinkConfig holds configuration for GCSSink.
type GCSSinkConfig struct {
	Bucket string
	Prefix string
}

// NewGCSSink creates a GCS-backed snapshot sink using ADC credentials.
func NewGCSSink(ctx context.Context, cfg GCSSinkConfig) (*GCSSink, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive: create GCS client: %w", err)
	}
	return &GCSSink{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (s *GCSSink) Store(ctx context.Context, key string, data []byte) error {
	obj := s.client.Bucket(s.bucket).Object(s.prefix + key)

	_, err := obj.Attrs(ctx)
	if err == nil {
		return nil // already archived
	}
	if !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("archive: gcs head failed: %w", err)
	}

	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("archive: gcs write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("archive: gcs close failed: %w", err)
	}
	return nil
}
