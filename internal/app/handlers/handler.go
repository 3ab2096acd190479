package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anpinghuang/tiktok-void-backend/internal/app/config"
	"github.com/anpinghuang/tiktok-void-backend/internal/app/models"
	"github.com/anpinghuang/tiktok-void-backend/internal/app/service"
	"github.com/anpinghuang/tiktok-void-backend/internal/middleware/logger"
)

const (
	// tiktokDomain — подстрока, по которой ссылка считается ссылкой TikTok
	tiktokDomain = "tiktok.com"
	// maxBodySize ограничивает размер тела запроса
	maxBodySize   = 100 << 10
	timeLayoutISO = "2006-01-02T15:04:05.000Z07:00"
)

// Handler обрабатывает HTTP-запросы API загрузчика
type Handler struct {
	config  *config.Config
	service service.Service
	now     func() time.Time
}

// NewHandler создаёт новый Handler
func NewHandler(config *config.Config, svc service.Service) (*Handler, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if svc == nil {
		return nil, errors.New("service is required")
	}
	return &Handler{
		config:  config,
		service: svc,
		now:     time.Now,
	}, nil
}

// MainPage сообщает, что API запущено
func (h *Handler) MainPage(res http.ResponseWriter, req *http.Request) {
	writeJSON(res, http.StatusOK, models.MessageResponse{Message: "TikTok Downloader API is running!"})
}

// Health возвращает статус сервиса и текущее время в формате ISO-8601
func (h *Handler) Health(res http.ResponseWriter, req *http.Request) {
	writeJSON(res, http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(timeLayoutISO),
	})
}

// DownloadHandle принимает ссылку на видео TikTok и возвращает данные для скачивания.
// Тело запроса — JSON {"url": "..."} или форма url=...
func (h *Handler) DownloadHandle(res http.ResponseWriter, req *http.Request) {
	videoURL := readURL(res, req)

	if err := ValidateURL(videoURL); err != nil {
		writeError(res, http.StatusBadRequest, err.Error())
		return
	}

	logger.Log.Info("Processing TikTok URL",
		zap.String("url", videoURL),
		zap.Bool("via_proxy", h.config.ProxyURL != ""),
	)

	video, err := h.service.GetVideo(req.Context(), videoURL)
	if err != nil {
		writeError(res, http.StatusInternalServerError, MsgProcessFailed)
		return
	}

	writeJSON(res, http.StatusOK, models.Response{Success: true, Data: video})
}

// ValidateURL проверяет ссылку: она не пуста и содержит домен TikTok.
// Это проверка подстроки, а не разбор URL.
func ValidateURL(videoURL string) error {
	if videoURL == "" {
		return &ValidationError{Message: MsgURLRequired}
	}
	if !strings.Contains(videoURL, tiktokDomain) {
		return &ValidationError{Message: MsgInvalidURL}
	}
	return nil
}

// readURL достаёт поле url из тела запроса. Нечитаемое тело считается пустым.
func readURL(res http.ResponseWriter, req *http.Request) string {
	req.Body = http.MaxBytesReader(res, req.Body, maxBodySize)

	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := req.ParseForm(); err != nil {
			logger.Log.Debug("failed to parse form body", zap.Error(err))
			return ""
		}
		return req.PostForm.Get("url")
	}

	var data models.DownloadRequest
	if err := json.NewDecoder(req.Body).Decode(&data); err != nil {
		if !errors.Is(err, io.EOF) {
			logger.Log.Debug("failed to decode JSON body", zap.Error(err))
		}
		return ""
	}
	return data.URL
}

func writeError(res http.ResponseWriter, status int, message string) {
	writeJSON(res, status, models.Response{Success: false, Error: message})
}

// writeJSON сериализует v; если это не удалось, клиент получает 500
func writeJSON(res http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Log.Error("failed to encode response", zap.Error(err))
		body, _ = json.Marshal(models.Response{Success: false, Error: MsgInternalServer})
		status = http.StatusInternalServerError
	}

	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if _, err := res.Write(body); err != nil {
		logger.Log.Debug("failed to write response", zap.Error(err))
	}
}
