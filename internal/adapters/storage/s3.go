package storage

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"campusevents/internal/domain"
)

// S3Config holds configuration for the S3 media store.
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// MediaConfig holds configuration for creating a media store.
type MediaConfig struct {
	Provider string
	S3       S3Config
	// BaseURL overrides the public URL prefix for uploaded objects. When
	// empty the standard S3 virtual-hosted URL is used.
	BaseURL string
}

// NewMediaStore creates a media store from config. Provider "s3" uploads to
// AWS S3; "noop" or unknown uses a no-op store that only logs.
func NewMediaStore(config MediaConfig) (domain.MediaStore, error) {
	switch config.Provider {
	case "s3":
		s3Config := config.S3
		awsCfg := aws.Config{
			Region: s3Config.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					s3Config.AccessKeyID,
					s3Config.SecretAccessKey,
					"",
				),
			),
		}
		baseURL := config.BaseURL
		if baseURL == "" {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s3Config.Bucket, s3Config.Region)
		}
		return &s3Store{
			client:  s3.NewFromConfig(awsCfg),
			bucket:  s3Config.Bucket,
			baseURL: strings.TrimRight(baseURL, "/"),
		}, nil
	case "noop":
		return &noopStore{}, nil
	default:
		log.Printf("[MEDIA] Unknown media provider %q, using noop", config.Provider)
		return &noopStore{}, nil
	}
}

type s3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func (s *s3Store) Upload(ctx context.Context, folder string, upload *domain.Upload) (string, error) {
	key := folder + "/" + uuid.NewString() + path.Ext(upload.Filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          upload.Data,
		ContentType:   aws.String(upload.ContentType),
		ContentLength: aws.Int64(upload.Size),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object to S3: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *s3Store) Delete(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, s.baseURL+"/") {
		// Not ours to delete (e.g. an externally hosted image).
		return nil
	}
	key := strings.TrimPrefix(url, s.baseURL+"/")
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object from S3: %w", err)
	}
	return nil
}

type noopStore struct{}

func (n *noopStore) Upload(ctx context.Context, folder string, upload *domain.Upload) (string, error) {
	log.Println("[MEDIA] Upload skipped (noop)", "folder", folder, "filename", upload.Filename)
	return "", nil
}

func (n *noopStore) Delete(ctx context.Context, url string) error {
	return nil
}
