// Package storage stores generated documents (payment receipts) in an
// S3-compatible bucket and hands out time-limited download links.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrBucketRequired is returned when an adapter is built without a bucket.
	ErrBucketRequired = errors.New("storage: bucket is required")
	// ErrObjectNotFound is returned when the requested key does not exist.
	ErrObjectNotFound = errors.New("storage: object not found")
)

// Storage is bound to a single bucket.
type Storage interface {
	io.Closer

	// Bucket returns the bucket name this adapter writes to.
	Bucket() string
	// EnsureBucket creates the bucket when it does not exist yet.
	EnsureBucket(ctx context.Context) error
	// PutObject stores data under key and returns object metadata.
	PutObject(ctx context.Context, key string, r io.Reader, opts PutOptions) (ObjectInfo, error)
	// StatObject returns object metadata; ErrObjectNotFound when missing.
	StatObject(ctx context.Context, key string) (ObjectInfo, error)
	// DeleteObject removes the object.
	DeleteObject(ctx context.Context, key string) error
	// PresignGet returns a signed URL for downloading.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// PutOptions configures upload behavior.
type PutOptions struct {
	// Size is the expected content length.
	Size int64
	// ContentType is the MIME type for the object.
	ContentType string
	// Metadata includes custom key/value metadata.
	Metadata map[string]string
}

// ObjectInfo describes object metadata.
type ObjectInfo struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
	Metadata    map[string]string
	UpdatedAt   time.Time
}
