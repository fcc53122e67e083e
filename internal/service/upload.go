package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/linemk/agro-shop/internal/config"
)

var ErrStorageUnavailable = errors.New("image storage is not configured")

// UploadService определяет интерфейс загрузки изображений товаров.
type UploadService interface {
	// UploadImage сохраняет файл в MinIO и возвращает публичный URL.
	UploadImage(ctx context.Context, filename, contentType string, size int64, r io.Reader) (string, error)
}

type uploadService struct {
	log    *slog.Logger
	client *minio.Client
	cfg    config.StorageConfig
}

func NewUploadService(log *slog.Logger, client *minio.Client, cfg config.StorageConfig) UploadService {
	return &uploadService{
		log:    log,
		client: client,
		cfg:    cfg,
	}
}

func (s *uploadService) UploadImage(ctx context.Context, filename, contentType string, size int64, r io.Reader) (string, error) {
	const op = "service.UploadService.UploadImage"
	logger := s.log.With(slog.String("op", op), slog.String("filename", filename))

	if s.client == nil {
		return "", fmt.Errorf("%s: %w", op, ErrStorageUnavailable)
	}

	// Префикс uuid исключает перезапись файлов с одинаковыми именами
	objectName := uuid.New().String() + "-" + filename

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, objectName, r, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		logger.Error("failed to upload image", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to upload image: %w", op, err)
	}

	base := s.cfg.PublicURL
	if base == "" {
		scheme := "http"
		if s.cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s", scheme, s.cfg.Endpoint)
	}
	url := fmt.Sprintf("%s/%s/%s", base, s.cfg.Bucket, objectName)

	logger.Info("image uploaded", slog.String("url", url))
	return url, nil
}
