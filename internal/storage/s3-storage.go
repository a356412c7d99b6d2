package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/campusforms/docufill-api/internal/config"
	"github.com/campusforms/docufill-api/internal/models"
)

// Storage is the blob store for uploaded application documents. Objects live
// under {prefix}/{userID}/{section}/{filename}.
type Storage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	ListUserFiles(ctx context.Context, userID string) ([]models.StoredFile, error)
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	ObjectKey(userID, section, filename string) string
}

type s3Storage struct {
	client       *minio.Client
	bucketName   string
	uploadPrefix string
}

func NewS3Storage(cfg *config.Config) (Storage, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	// Ensure bucket exists
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.S3BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.S3BucketName, minio.MakeBucketOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &s3Storage{
		client:       client,
		bucketName:   cfg.S3BucketName,
		uploadPrefix: cfg.S3UploadPrefix,
	}, nil
}

// ObjectKey builds the canonical object key for one uploaded file.
func (s *s3Storage) ObjectKey(userID, section, filename string) string {
	return fmt.Sprintf("%s/%s/%s/%s", s.uploadPrefix, userID, section, filename)
}

func (s *s3Storage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	reader := bytes.NewReader(data)

	_, err := s.client.PutObject(
		ctx,
		s.bucketName,
		key,
		reader,
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	)

	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

func (s *s3Storage) Download(ctx context.Context, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer object.Close()

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read object data: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *s3Storage) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

// ListUserFiles lists every uploaded object of one user with its derived
// section and file type.
func (s *s3Storage) ListUserFiles(ctx context.Context, userID string) ([]models.StoredFile, error) {
	prefix := fmt.Sprintf("%s/%s/", s.uploadPrefix, userID)

	var files []models.StoredFile
	for object := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		files = append(files, storedFileFromKey(object.Key, prefix, object.Size, object.LastModified))
	}

	return files, nil
}

// PresignedURL returns a time-limited download URL for one object.
func (s *s3Storage) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucketName, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign object URL: %w", err)
	}
	return u.String(), nil
}

func storedFileFromKey(key, prefix string, size int64, lastModified time.Time) models.StoredFile {
	rel := strings.TrimPrefix(key, prefix)

	// Layout after the user prefix is {section}/{filename}; objects
	// uploaded outside that shape default to the general section.
	section := "general"
	filename := rel
	if idx := strings.Index(rel, "/"); idx > 0 {
		section = rel[:idx]
		filename = rel[idx+1:]
	}

	return models.StoredFile{
		Key:          key,
		Filename:     filename,
		Section:      section,
		FileType:     FileTypeOf(filename),
		Size:         size,
		LastModified: lastModified,
	}
}

// FileTypeOf maps a filename extension to the pipeline's file type labels.
func FileTypeOf(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		return "pdf"
	case ".jpg", ".jpeg", ".png", ".webp", ".heic":
		return "image"
	case ".docx":
		return "docx"
	case ".txt":
		return "txt"
	default:
		return "unknown"
	}
}
