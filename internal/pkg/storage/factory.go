package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Drivers accepted by storage.driver.
const (
	DriverS3    = "s3"
	DriverMinIO = "minio"
)

// ErrUnknownDriver is returned for a storage.driver value with no adapter.
var ErrUnknownDriver = errors.New("storage: unknown driver")

// FactoryOptions holds the settings for every adapter; only the one picked
// by driver is read. Bucket applies to all of them.
type FactoryOptions struct {
	Bucket string
	S3     S3Options
	MinIO  MinIOOptions
}

// NewFromDriver builds the adapter named by driver.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Storage, error) {
	bucket := strings.TrimSpace(opts.Bucket)
	if bucket == "" {
		return nil, ErrBucketRequired
	}

	switch d := strings.ToLower(strings.TrimSpace(driver)); d {
	case DriverS3:
		opts.S3.Bucket = bucket
		return NewS3(ctx, opts.S3)
	case DriverMinIO:
		opts.MinIO.Bucket = bucket
		return NewMinIO(opts.MinIO)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
