package gcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
)

// BucketService stores collection item photos. Photo URLs are display-only
// data and never participate in recommendation fingerprints.
type BucketService interface {
	UploadObject(ctx context.Context, key string, contentType string, r io.Reader) error
	DeleteObject(ctx context.Context, key string) error
	PublicURL(key string) string
}

type bucketService struct {
	log        *logger.Logger
	client     *storage.Client
	bucketName string
	cdnDomain  string
}

func NewBucketService(ctx context.Context, log *logger.Logger) (BucketService, error) {
	bucketName := strings.TrimSpace(os.Getenv("PHOTO_GCS_BUCKET_NAME"))
	if bucketName == "" {
		return nil, fmt.Errorf("missing env var PHOTO_GCS_BUCKET_NAME")
	}

	var opts []option.ClientOption
	if creds := strings.TrimSpace(os.Getenv("PHOTO_GCS_CREDENTIALS_FILE")); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init storage client: %w", err)
	}

	return &bucketService{
		log:        log.With("service", "BucketService"),
		client:     client,
		bucketName: bucketName,
		cdnDomain:  strings.TrimSpace(os.Getenv("PHOTO_CDN_DOMAIN")),
	}, nil
}

func (s *bucketService) UploadObject(ctx context.Context, key string, contentType string, r io.Reader) error {
	if key == "" {
		return fmt.Errorf("missing object key")
	}

	w := s.client.Bucket(s.bucketName).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close object %q: %w", key, err)
	}
	return nil
}

func (s *bucketService) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	err := s.client.Bucket(s.bucketName).Object(key).Delete(ctx)
	if err == storage.ErrObjectNotExist {
		return nil
	}
	return err
}

func (s *bucketService) PublicURL(key string) string {
	if s.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cdnDomain, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, key)
}
