package service

import (
	"context"

	"github.com/anpinghuang/tiktok-void-backend/internal/app/models"
)

// DefaultTitle подставляется, если у видео нет описания
const DefaultTitle = "TikTok Video"

type downloaderService struct {
	fetcher Fetcher
}

// NewService создаёт новый экземпляр сервиса
func NewService(fetcher Fetcher) Service {
	return &downloaderService{fetcher: fetcher}
}

// GetVideo возвращает ошибку фетчера без изменений
func (s *downloaderService) GetVideo(ctx context.Context, videoURL string) (*models.VideoData, error) {
	meta, err := s.fetcher.Lookup(ctx, videoURL)
	if err != nil {
		return nil, err
	}
	return Normalize(meta), nil
}

// Normalize добавляет к метаданным удобные для фронтенда псевдонимы
func Normalize(meta *models.Metadata) *models.VideoData {
	title := meta.String("desc")
	if title == "" {
		title = DefaultTitle
	}

	return &models.VideoData{
		Fields:       meta.Fields,
		DownloadURL:  meta.DownloadURL,
		Thumbnail:    meta.First("cover", "dynamic_cover"),
		Title:        title,
		Author:       meta.First("author_name", "author_id"),
		AuthorAvatar: meta.Value("author_avatar"),
		LikeCount:    meta.Value("like_count"),
		CommentCount: meta.Value("comment_count"),
		ShareCount:   meta.Value("share_count"),
		CreateTime:   meta.Value("create_time"),
	}
}
