package storage

import (
	"context"
	"io"
)

type Object struct {
	Name string
	Size int64
}

// ObjectStore is the write side used by the feedback object sink. The
// concrete stores also expose GetObject and ListObjects for reading
// feedback back out.
type ObjectStore interface {
	CreateBucket(ctx context.Context, bucket string) error

	PutObject(ctx context.Context, bucket, key string, data io.Reader) error
}
