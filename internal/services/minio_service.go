package services

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"whutmovie/internal/config"
	"whutmovie/internal/utils"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

const posterUploadExpiry = 15 * time.Minute

var posterContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// PresignedUpload is a one-shot PUT target for a poster image.
type PresignedUpload struct {
	UploadURL string    `json:"uploadUrl"`
	PublicURL string    `json:"publicUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PosterStorage keeps poster images outside the database.
type PosterStorage interface {
	PresignUpload(ctx context.Context, filename, contentType string) (*PresignedUpload, error)
	// Owns reports whether publicURL points into this storage.
	Owns(publicURL string) bool
	Delete(ctx context.Context, publicURL string) error
}

type MinIOService struct {
	client    *minio.Client
	bucket    string
	publicURL string
	logger    *logrus.Logger
}

func NewMinIOService(cfg *config.MinIOConfig, logger *logrus.Logger) (*MinIOService, error) {
	endpoint := cfg.Endpoint
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, endpoint, cfg.BucketName)
	}

	logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"bucket":   cfg.BucketName,
		"useSSL":   cfg.UseSSL,
	}).Info("MinIO client initialized successfully")

	service := &MinIOService{
		client:    minioClient,
		bucket:    cfg.BucketName,
		publicURL: publicURL,
		logger:    logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := service.ensureBucket(ctx, cfg.Region); err != nil {
		logger.WithError(err).Warn("Failed to configure poster bucket, continuing")
	}

	return service, nil
}

func (s *MinIOService) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		s.logger.WithField("bucket", s.bucket).Info("Bucket created successfully")
	}

	policy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Effect": "Allow",
				"Principal": {"AWS": ["*"]},
				"Action": ["s3:GetObject"],
				"Resource": ["arn:aws:s3:::%s/posters/*"]
			}
		]
	}`, s.bucket)

	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}
	return nil
}

func (s *MinIOService) PresignUpload(ctx context.Context, filename, contentType string) (*PresignedUpload, error) {
	objectPath, err := posterObjectPath(filename, contentType)
	if err != nil {
		return nil, err
	}

	presignedURL, err := s.client.PresignedPutObject(ctx, s.bucket, objectPath, posterUploadExpiry)
	if err != nil {
		s.logger.WithError(err).Error("Failed to generate presigned URL")
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"objectPath": objectPath,
		"expiry":     posterUploadExpiry,
	}).Info("Generated poster upload URL")

	return &PresignedUpload{
		UploadURL: presignedURL.String(),
		PublicURL: s.publicURL + "/" + objectPath,
		ExpiresAt: time.Now().UTC().Add(posterUploadExpiry),
	}, nil
}

func (s *MinIOService) Owns(publicURL string) bool {
	return publicURL != "" && strings.HasPrefix(publicURL, s.publicURL+"/")
}

func (s *MinIOService) Delete(ctx context.Context, publicURL string) error {
	if !s.Owns(publicURL) {
		return nil
	}
	objectPath := strings.TrimPrefix(publicURL, s.publicURL+"/")
	if i := strings.IndexAny(objectPath, "?#"); i >= 0 {
		objectPath = objectPath[:i]
	}

	if err := s.client.RemoveObject(ctx, s.bucket, objectPath, minio.RemoveObjectOptions{}); err != nil {
		s.logger.WithError(err).WithField("objectPath", objectPath).Error("Failed to delete poster")
		return fmt.Errorf("failed to delete poster: %w", err)
	}

	s.logger.WithField("objectPath", objectPath).Info("Poster deleted")
	return nil
}

// posterObjectPath builds "posters/<slugged-name>_<uuid8><ext>" and rejects
// anything that is not an image type we serve.
func posterObjectPath(filename, contentType string) (string, error) {
	ext, ok := posterContentTypes[contentType]
	if !ok {
		return "", invalid("contentType", "contentType must be image/jpeg, image/png or image/webp")
	}

	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "", invalid("filename", "filename is required")
	}
	base := path.Base(filepath.ToSlash(filename))
	name := utils.Slugify(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" {
		name = "poster"
	}

	return fmt.Sprintf("posters/%s_%s%s", name, uuid.New().String()[:8], ext), nil
}
