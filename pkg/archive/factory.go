package archive

import (
	"context"
	"fmt"
	"os"
)

// SinkType selects the snapshot sink backend.
type SinkType string

const (
	SinkTypeFS  SinkType = "fs"
	SinkTypeS3  SinkType = "s3"
	SinkTypeGCS SinkType = "gcs"
)

// NewSinkFromEnv creates a snapshot sink based on environment variables.
//
// Environment variables:
//   - ARCHIVE_SINK_TYPE: "fs" (default), "s3", or "gcs"
//   - ARCHIVE_DIR: base directory for the fs sink (default "archive")
//
// For S3:
//   - ARCHIVE_S3_BUCKET (required)
//   - ARCHIVE_S3_REGION or AWS_REGION
//   - ARCHIVE_S3_ENDPOINT (optional, for MinIO/LocalStack)
//   - ARCHIVE_S3_PREFIX (optional)
//
// For GCS (requires -tags gcp):
//   - ARCHIVE_GCS_BUCKET (required)
//   - ARCHIVE_GCS_PREFIX (optional)
func NewSinkFromEnv(ctx context.Context) (Sink, error) {
	sinkType := SinkType(os.Getenv("ARCHIVE_SINK_TYPE"))
	if sinkType == "" {
		sinkType = SinkTypeFS
	}

	switch sinkType {
	case SinkTypeFS:
		dir := os.Getenv("ARCHIVE_DIR")
		if dir == "" {
			dir = "archive"
		}
		return NewFSSink(dir)
	case SinkTypeS3:
		return newS3SinkFromEnv(ctx)
	case SinkTypeGCS:
		return newGCSSinkFromEnv(ctx)
	default:
		return nil, fmt.Errorf("archive: unsupported sink type: %s", sinkType)
	}
}

func newS3SinkFromEnv(ctx context.Context) (Sink, error) {
	bucket := os.Getenv("ARCHIVE_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("archive: ARCHIVE_S3_BUCKET is required for the s3 sink")
	}

	region := os.Getenv("ARCHIVE_S3_REGION")
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	return NewS3Sink(ctx, S3SinkConfig{
		Bucket:   bucket,
		Region:   region,
		Endpoint: os.Getenv("ARCHIVE_S3_ENDPOINT"),
		Prefix:   os.Getenv("ARCHIVE_S3_PREFIX"),
	})
}
