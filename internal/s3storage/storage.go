// Package s3storage mirrors signed documents into a MinIO/S3 bucket.
package s3storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dharsanguruparan/vdocsign/internal/config"
)

// Storage wraps MinIO/S3 interactions for the archive bucket.
type Storage struct {
	client *minio.Client
	bucket string
	region string
}

// New creates a MinIO client from the Config.
func New(cfg *config.Config) (*Storage, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &Storage{client: client, bucket: cfg.ArchiveBucket, region: cfg.S3Region}, nil
}

// EnsureBucket makes sure the archive bucket exists before use.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	return nil
}

// ObjectKey is where the signed copy of a document is stored.
func ObjectKey(documentID, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "signed.pdf"
	}
	return path.Join("signed", documentID, name)
}

// TextKey is the sidecar holding the extracted text of objectKey.
func TextKey(objectKey string) string {
	return strings.TrimSuffix(objectKey, path.Ext(objectKey)) + ".txt"
}

// UploadSigned stores the signed PDF.
func (s *Storage) UploadSigned(ctx context.Context, objectKey string, data []byte) error {
	return s.put(ctx, objectKey, bytes.NewReader(data), int64(len(data)), "application/pdf")
}

// UploadText stores the extracted text next to the PDF.
func (s *Storage) UploadText(ctx context.Context, objectKey, text string) error {
	return s.put(ctx, objectKey, strings.NewReader(text), int64(len(text)), "text/plain; charset=utf-8")
}

func (s *Storage) put(ctx context.Context, objectKey string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectKey, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("upload object %s: %w", objectKey, err)
	}
	return nil
}

// PresignURL returns a signed GET URL for an archived object.
func (s *Storage) PresignURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign object: %w", err)
	}
	return u.String(), nil
}
