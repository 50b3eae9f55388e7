package service

import (
	"context"
	"io"
)

// UploadedObject describes a file accepted by a media host.
type UploadedObject struct {
	Key string
	URL string
}

// MediaHost stores uploaded media and serves it from a public URL.
type MediaHost interface {
	Upload(ctx context.Context, file io.Reader, contentType, folder string) (*UploadedObject, error)
	Delete(ctx context.Context, key string) error
	Close() error
}
