package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"alima/internal/domain/service"
	"alima/pkg/logger"
)

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

func NewCloudStorageClient(ctx context.Context, bucketName string, opts ...option.ClientOption) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	storageClient := &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
	}

	if err := storageClient.setBucketCORS(ctx); err != nil {
		logger.Warn("Failed to set CORS configuration: %v", err)
	}

	return storageClient, nil
}

func (c *CloudStorageClient) setBucketCORS(ctx context.Context) error {
	bucket := c.client.Bucket(c.bucketName)

	bucketAttrs, err := bucket.Attrs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bucket attributes: %v", err)
	}
	if len(bucketAttrs.CORS) > 0 {
		return nil
	}

	_, err = bucket.Update(ctx, storage.BucketAttrsToUpdate{
		CORS: []storage.CORS{{
			MaxAge:          time.Hour,
			Methods:         []string{"GET", "HEAD"},
			Origins:         []string{"*"},
			ResponseHeaders: []string{"Content-Type"},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to update bucket CORS: %v", err)
	}
	return nil
}

func (c *CloudStorageClient) Upload(ctx context.Context, file io.Reader, contentType, folder string) (*service.UploadedObject, error) {
	key := objectKey(folder, contentType)

	obj := c.client.Bucket(c.bucketName).Object(key)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(wc, file); err != nil {
		wc.Close()
		return nil, fmt.Errorf("failed to copy file to GCS: %v", err)
	}
	if err := wc.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %v", err)
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return nil, fmt.Errorf("failed to set ACL: %v", err)
	}

	return &service.UploadedObject{
		Key: key,
		URL: fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, key),
	}, nil
}

func (c *CloudStorageClient) Delete(ctx context.Context, key string) error {
	if err := c.client.Bucket(c.bucketName).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete file: %v", err)
	}
	return nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}

// objectKey builds "<folder>/<uuid>-<timestamp><ext>".
func objectKey(folder, contentType string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = "uploads"
	}
	return fmt.Sprintf("%s/%s-%s%s", folder, uuid.New().String(), time.Now().Format("20060102150405"), extension(contentType))
}

func extension(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}
