package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/config"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// Allowed upload MIME types: study PDFs plus avatar/attachment images.
var allowedMIMETypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
}

// MediaService stores uploaded files in S3-compatible object storage, with a
// local-directory fallback when no endpoint is configured.
type MediaService struct {
	cfg    *config.Config
	client *minio.Client
	log    zerolog.Logger
}

// NewMediaService creates a new MediaService. An empty S3_ENDPOINT selects
// the local filesystem backend.
func NewMediaService(cfg *config.Config, log zerolog.Logger) (*MediaService, error) {
	s := &MediaService{
		cfg: cfg,
		log: log.With().Str("component", "media_service").Logger(),
	}
	if cfg.S3Endpoint == "" {
		s.log.Info().Str("dir", cfg.UploadDir).Msg("object storage not configured, using local uploads")
		return s, nil
	}

	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	s.client = client
	return s, nil
}

// SaveUpload stores an uploaded file under a UUID name and returns its
// public URL.
func (s *MediaService) SaveUpload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error) {
	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedMIMETypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFileType, contentType, strings.Join(allowedTypes(), ", "))
	}
	if header.Size > s.cfg.MaxUploadBytes {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}

	objectName := uuid.New().String() + ext
	if s.client == nil {
		return s.saveLocal(file, objectName)
	}

	if _, err := s.client.PutObject(ctx, s.cfg.S3Bucket, objectName, file, header.Size,
		minio.PutObjectOptions{ContentType: contentType}); err != nil {
		s.log.Error().Err(err).Str("object", objectName).Msg("object storage upload failed")
		return "", fmt.Errorf("store object: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.MediaPublicBase, "/"), s.cfg.S3Bucket, objectName), nil
}

func (s *MediaService) saveLocal(file multipart.File, objectName string) (string, error) {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	dst, err := os.Create(filepath.Join(s.cfg.UploadDir, objectName))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return "/uploads/" + objectName, nil
}

func allowedTypes() []string {
	types := make([]string, 0, len(allowedMIMETypes))
	for t := range allowedMIMETypes {
		types = append(types, t)
	}
	return types
}
