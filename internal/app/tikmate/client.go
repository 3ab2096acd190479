// Package tikmate реализует обращение к TikMate lookup API.
package tikmate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/anpinghuang/tiktok-void-backend/internal/app/config"
	"github.com/anpinghuang/tiktok-void-backend/internal/app/models"
	"github.com/anpinghuang/tiktok-void-backend/internal/middleware/logger"
)

// DownloadURLField — поле, в которое записывается ссылка на видео без водяного знака
const DownloadURLField = "no_watermark_download_url"

// Client выполняет поиск метаданных видео через TikMate
type Client struct {
	http            *resty.Client
	transport       Transport
	lookupURL       string
	downloadBaseURL string
}

// NewClient создаёт клиента по конфигурации приложения
func NewClient(cfg *config.Config) (*Client, error) {
	transport, err := NewTransport(cfg.ProxyURL)
	if err != nil {
		return nil, err
	}
	return NewClientWithTransport(transport, cfg.LookupURL, cfg.DownloadBaseURL, cfg.UpstreamTimeout), nil
}

// NewClientWithTransport создаёт клиента с явно заданным транспортом.
// timeout == 0 означает отсутствие таймаута.
func NewClientWithTransport(transport Transport, lookupURL, downloadBaseURL string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetTransport(transport.RoundTripper()).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:            httpClient,
		transport:       transport,
		lookupURL:       lookupURL,
		downloadBaseURL: strings.TrimRight(downloadBaseURL, "/"),
	}
}

// Transport возвращает выбранный транспорт
func (c *Client) Transport() Transport {
	return c.transport
}

// Lookup отправляет videoURL в TikMate и возвращает метаданные с производной
// ссылкой на скачивание. Любой отказ логируется и возвращается как ошибка,
// обёрнутая в ErrNetwork, ErrUpstreamRejected или ErrMalformedResponse.
func (c *Client) Lookup(ctx context.Context, videoURL string) (*models.Metadata, error) {
	meta, err := c.lookup(ctx, videoURL)
	if err != nil {
		logger.Log.Error("tikmate lookup failed",
			zap.String("url", videoURL),
			zap.String("transport", c.transport.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return meta, nil
}

func (c *Client) lookup(ctx context.Context, videoURL string) (*models.Metadata, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{"url": videoURL}).
		Post(c.lookupURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUpstreamRejected, resp.StatusCode())
	}

	fields, err := decodeFields(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	meta := &models.Metadata{Fields: fields}
	if !meta.Success() {
		return nil, fmt.Errorf("%w: success flag is not set", ErrUpstreamRejected)
	}

	meta.Token = meta.String("token")
	meta.ID = meta.String("id")
	if meta.Token == "" || meta.ID == "" {
		return nil, fmt.Errorf("%w: token or id is missing", ErrMalformedResponse)
	}

	meta.DownloadURL = c.DownloadURL(meta.Token, meta.ID)
	meta.Fields[DownloadURLField] = meta.DownloadURL

	return meta, nil
}

// DownloadURL строит ссылку на видео без водяного знака
func (c *Client) DownloadURL(token, id string) string {
	return fmt.Sprintf("%s/%s/%s.mp4", c.downloadBaseURL, token, id)
}

func decodeFields(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("response body is not a JSON object")
	}
	return fields, nil
}
