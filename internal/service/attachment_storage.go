package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	maxAttachmentSize    = 10 * 1024 * 1024 // 10 MB
	attachmentURLTTL     = 15 * time.Minute
	attachmentPathPrefix = "maintenance-records"
)

var (
	ErrAttachmentTooBig     = errors.New("file size exceeds 10MB limit")
	ErrInvalidFileType      = errors.New("invalid file type, only PDF, JPEG and PNG are allowed")
	ErrBucketCreationFailed = errors.New("failed to create storage bucket")
	ErrUploadFailed         = errors.New("failed to upload file")
	ErrDeleteFailed         = errors.New("failed to delete file")
	ErrURLGenerationFailed  = errors.New("failed to generate presigned URL")

	allowedContentTypes = map[string]string{
		"application/pdf": ".pdf",
		"image/jpeg":      ".jpg",
		"image/png":       ".png",
	}
)

// AttachmentStorage stores documents attached to maintenance records:
// invoices, inspection photos, signed work orders.
type AttachmentStorage interface {
	// Upload stores an attachment for a record and returns the object key.
	Upload(ctx context.Context, recordID uint, file io.Reader, fileSize int64, contentType string) (string, error)

	// Delete removes an attachment by object key. Empty keys are a no-op.
	Delete(ctx context.Context, objectKey string) error

	// PresignedURL generates a short-lived download URL for an attachment.
	PresignedURL(ctx context.Context, objectKey string) (string, error)
}

// MinIOAttachmentStorage implements AttachmentStorage on MinIO/S3-compatible
// object storage.
type MinIOAttachmentStorage struct {
	client     *minio.Client
	bucketName string
}

func NewMinIOAttachmentStorage(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOAttachmentStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	s := &MinIOAttachmentStorage{client: client, bucketName: bucketName}
	if err := s.ensureBucketExists(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MinIOAttachmentStorage) ensureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("%w: check bucket existence: %v", ErrBucketCreationFailed, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("%w: create bucket: %v", ErrBucketCreationFailed, err)
		}
	}
	return nil
}

func (s *MinIOAttachmentStorage) Upload(ctx context.Context, recordID uint, file io.Reader, fileSize int64, contentType string) (string, error) {
	if fileSize > maxAttachmentSize {
		return "", ErrAttachmentTooBig
	}
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	ext, allowed := allowedContentTypes[normalized]
	if !allowed {
		return "", ErrInvalidFileType
	}

	objectKey := fmt.Sprintf("%s/record-%d/%s%s", attachmentPathPrefix, recordID, uuid.New().String(), ext)
	metadata := map[string]string{
		"Record-ID":   fmt.Sprintf("%d", recordID),
		"Uploaded-At": time.Now().UTC().Format(time.RFC3339),
	}

	_, err := s.client.PutObject(ctx, s.bucketName, objectKey, file, fileSize, minio.PutObjectOptions{
		ContentType:  normalized,
		UserMetadata: metadata,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return objectKey, nil
}

func (s *MinIOAttachmentStorage) Delete(ctx context.Context, objectKey string) error {
	if strings.TrimSpace(objectKey) == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

func (s *MinIOAttachmentStorage) PresignedURL(ctx context.Context, objectKey string) (string, error) {
	if strings.TrimSpace(objectKey) == "" {
		return "", fmt.Errorf("%w: empty object key", ErrURLGenerationFailed)
	}
	presigned, err := s.client.PresignedGetObject(ctx, s.bucketName, objectKey, attachmentURLTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrURLGenerationFailed, err)
	}
	return presigned.String(), nil
}
