package s3

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Abdurahmanit/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

const objectPrefix = "listings"

// S3Storage stores listing images in an S3-compatible bucket.
type S3Storage struct {
	client *minio.Client
	bucket string
	logger *logger.Logger
}

// NewS3Storage connects to the endpoint and makes sure the bucket exists.
func NewS3Storage(ctx context.Context, endpoint, accessKey, secretKey, bucketName string, useSSL bool, log *logger.Logger) (*S3Storage, error) {
	log.Info("Initializing S3 MinIO Storage", zap.String("endpoint", endpoint), zap.String("bucket", bucketName), zap.Bool("use_ssl", useSSL))

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		log.Error("S3Storage: failed to create MinIO client", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
		exists, errExists := client.BucketExists(ctx, bucketName)
		if errExists != nil || !exists {
			log.Error("S3Storage: failed to make or verify bucket", zap.String("bucket", bucketName), zap.Error(err), zap.NamedError("exists_error", errExists))
			return nil, fmt.Errorf("failed to make/verify bucket %s: %w", bucketName, err)
		}
		log.Info("S3Storage: bucket already exists", zap.String("bucket", bucketName))
	} else {
		log.Info("S3Storage: bucket created", zap.String("bucket", bucketName))
	}

	return newS3Storage(client, bucketName, log), nil
}

func newS3Storage(client *minio.Client, bucket string, log *logger.Logger) *S3Storage {
	return &S3Storage{
		client: client,
		bucket: bucket,
		logger: log.Named("S3Storage"),
	}
}

// Upload stores r under a fresh key that keeps the original extension and
// returns the public URL together with the key as filename.
func (s *S3Storage) Upload(ctx context.Context, originalFileName string, r io.Reader, size int64, contentType string) (domain.Image, error) {
	key := objectKey(originalFileName)

	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"original-filename": filepath.Base(originalFileName)},
	})
	if err != nil {
		s.logger.Error("PutObject failed", zap.String("bucket", s.bucket), zap.String("key", key), zap.Error(err))
		return domain.Image{}, fmt.Errorf("failed to upload object %s to bucket %s: %w", key, s.bucket, err)
	}

	s.logger.Info("Image uploaded",
		zap.String("bucket", info.Bucket),
		zap.String("key", info.Key),
		zap.Int64("size", info.Size),
		zap.String("original_filename", originalFileName),
	)
	return domain.Image{URL: s.objectURL(key), Filename: key}, nil
}

// Remove deletes the object stored under filename, the key returned by Upload.
func (s *S3Storage) Remove(ctx context.Context, filename string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, filename, minio.RemoveObjectOptions{}); err != nil {
		s.logger.Error("RemoveObject failed", zap.String("bucket", s.bucket), zap.String("key", filename), zap.Error(err))
		return fmt.Errorf("failed to remove object %s from bucket %s: %w", filename, s.bucket, err)
	}
	s.logger.Info("Image removed", zap.String("bucket", s.bucket), zap.String("key", filename))
	return nil
}

func (s *S3Storage) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.client.EndpointURL().String(), "/"), s.bucket, key)
}

func objectKey(originalFileName string) string {
	ext := strings.ToLower(filepath.Ext(originalFileName))
	return fmt.Sprintf("%s/%s%s", objectPrefix, uuid.New().String(), ext)
}
