package service

//go:generate mockgen -destination=mocks/mock_fetcher.go -package=mocks github.com/anpinghuang/tiktok-void-backend/internal/app/service Fetcher

import (
	"context"

	"github.com/anpinghuang/tiktok-void-backend/internal/app/models"
)

// Service определяет бизнес-логику получения видео
type Service interface {
	// GetVideo ищет видео по ссылке TikTok и возвращает нормализованные данные
	GetVideo(ctx context.Context, videoURL string) (*models.VideoData, error)
}

// Fetcher получает метаданные видео из внешнего API
type Fetcher interface {
	Lookup(ctx context.Context, videoURL string) (*models.Metadata, error)
}
