package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anpinghuang/tiktok-void-backend/internal/app/config"
	"github.com/anpinghuang/tiktok-void-backend/internal/app/handlers"
	"github.com/anpinghuang/tiktok-void-backend/internal/app/models"
	"github.com/anpinghuang/tiktok-void-backend/internal/app/tikmate"
)

type mockService struct {
	GetVideoFunc func(ctx context.Context, videoURL string) (*models.VideoData, error)
	calls        []string
}

func (m *mockService) GetVideo(ctx context.Context, videoURL string) (*models.VideoData, error) {
	m.calls = append(m.calls, videoURL)
	if m.GetVideoFunc != nil {
		return m.GetVideoFunc(ctx, videoURL)
	}
	return &models.VideoData{}, nil
}

func decodeResponse(t *testing.T, res *http.Response) models.Response {
	t.Helper()

	var body struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return models.Response{Success: body.Success, Data: body.Data, Error: body.Error}
}

func TestNewHandler_NilService(t *testing.T) {
	_, err := handlers.NewHandler(&config.Config{}, nil)
	assert.Error(t, err)
}

func TestNewHandler_NilConfig(t *testing.T) {
	_, err := handlers.NewHandler(nil, &mockService{})
	assert.Error(t, err)
}

func TestDownloadHandle_Validation(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantError   string
	}{
		{name: "empty body", contentType: "application/json", body: "", wantError: handlers.MsgURLRequired},
		{name: "no url field", contentType: "application/json", body: `{}`, wantError: handlers.MsgURLRequired},
		{name: "empty url", contentType: "application/json", body: `{"url":""}`, wantError: handlers.MsgURLRequired},
		{name: "invalid json", contentType: "application/json", body: `not-json`, wantError: handlers.MsgURLRequired},
		{name: "empty form", contentType: "application/x-www-form-urlencoded", body: `url=`, wantError: handlers.MsgURLRequired},
		{name: "other domain", contentType: "application/json", body: `{"url":"https://youtube.com/watch?v=1"}`, wantError: handlers.MsgInvalidURL},
		{name: "plain text", contentType: "application/json", body: `{"url":"hello"}`, wantError: handlers.MsgInvalidURL},
		{name: "form other domain", contentType: "application/x-www-form-urlencoded", body: `url=https%3A%2F%2Fvimeo.com%2F1`, wantError: handlers.MsgInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			h, err := handlers.NewHandler(&config.Config{}, svc)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/download", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()

			h.DownloadHandle(w, req)

			res := w.Result()
			defer res.Body.Close()

			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
			assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
			body := decodeResponse(t, res)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantError, body.Error)
			assert.Empty(t, svc.calls, "service must not be called on invalid input")
		})
	}
}

func TestDownloadHandle_PassesExactURL(t *testing.T) {
	// подстрока домена достаточна, даже если ссылка некорректна
	rawURLs := []string{
		"https://www.tiktok.com/@user/video/123?is_from_webapp=1",
		"not a url but tiktok.com anyway",
		"  tiktok.com  ",
	}

	for _, raw := range rawURLs {
		t.Run(raw, func(t *testing.T) {
			svc := &mockService{}
			h, _ := handlers.NewHandler(&config.Config{}, svc)

			body, _ := json.Marshal(models.DownloadRequest{URL: raw})
			req := httptest.NewRequest(http.MethodPost, "/api/download", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			h.DownloadHandle(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, []string{raw}, svc.calls)
		})
	}
}

func TestDownloadHandle_Form(t *testing.T) {
	svc := &mockService{}
	h, _ := handlers.NewHandler(&config.Config{}, svc)

	form := url.Values{"url": {"https://vm.tiktok.com/ZMabc/"}}
	req := httptest.NewRequest(http.MethodPost, "/api/download", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	w := httptest.NewRecorder()

	h.DownloadHandle(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"https://vm.tiktok.com/ZMabc/"}, svc.calls)
}

func TestDownloadHandle_Success(t *testing.T) {
	svc := &mockService{
		GetVideoFunc: func(ctx context.Context, videoURL string) (*models.VideoData, error) {
			return &models.VideoData{
				Fields:      map[string]any{"success": true, "token": "T1", "id": "ID1"},
				DownloadURL: "https://tikmate.app/download/T1/ID1.mp4",
				Title:       "d",
				Thumbnail:   "c",
				Author:      "a",
				LikeCount:   json.Number("5"),
			}, nil
		},
	}
	h, _ := handlers.NewHandler(&config.Config{}, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/download", strings.NewReader(`{"url":"https://www.tiktok.com/@a/video/1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.DownloadHandle(w, req)

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	body := decodeResponse(t, res)
	assert.True(t, body.Success)
	assert.Empty(t, body.Error)

	var data map[string]any
	require.NoError(t, json.Unmarshal(body.Data.(json.RawMessage), &data))
	assert.Equal(t, "https://tikmate.app/download/T1/ID1.mp4", data["downloadUrl"])
	assert.Equal(t, "d", data["title"])
	assert.Equal(t, "c", data["thumbnail"])
	assert.Equal(t, "a", data["author"])
	assert.Equal(t, float64(5), data["likeCount"])
	assert.Equal(t, "T1", data["token"])
}

func TestDownloadHandle_UpstreamFailuresLookTheSame(t *testing.T) {
	failures := []error{
		fmt.Errorf("%w: %w", tikmate.ErrNetwork, context.DeadlineExceeded),
		fmt.Errorf("%w: dial tcp: connection refused", tikmate.ErrNetwork),
		fmt.Errorf("%w: success flag is not set", tikmate.ErrUpstreamRejected),
		fmt.Errorf("%w: invalid character '<'", tikmate.ErrMalformedResponse),
		errors.New("anything else"),
	}

	var bodies []string
	for _, failure := range failures {
		svc := &mockService{
			GetVideoFunc: func(ctx context.Context, videoURL string) (*models.VideoData, error) {
				return nil, failure
			},
		}
		h, _ := handlers.NewHandler(&config.Config{}, svc)

		req := httptest.NewRequest(http.MethodPost, "/api/download", strings.NewReader(`{"url":"https://tiktok.com/x"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		h.DownloadHandle(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), failure.Error())
		bodies = append(bodies, w.Body.String())
	}

	for _, b := range bodies[1:] {
		assert.Equal(t, bodies[0], b)
	}
	assert.JSONEq(t, `{"success":false,"error":"`+handlers.MsgProcessFailed+`"}`, bodies[0])
}

func TestHealth(t *testing.T) {
	h, _ := handlers.NewHandler(&config.Config{}, &mockService{})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.Health(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		require.Equal(t, http.StatusOK, w.Code)

		var body models.HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body.Status)

		ts, err := time.Parse(time.RFC3339, body.Timestamp)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), ts, time.Minute)
		assert.True(t, strings.HasSuffix(body.Timestamp, "Z"))
	}
}

func TestMainPage(t *testing.T) {
	h, _ := handlers.NewHandler(&config.Config{}, &mockService{})

	w := httptest.NewRecorder()
	h.MainPage(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"TikTok Downloader API is running!"}`, w.Body.String())
}

func TestValidateURL(t *testing.T) {
	var verr *handlers.ValidationError

	err := handlers.ValidateURL("")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, handlers.MsgURLRequired, verr.Message)

	err = handlers.ValidateURL("https://instagram.com/p/1")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, handlers.MsgInvalidURL, verr.Message)

	assert.NoError(t, handlers.ValidateURL("https://m.tiktok.com/v/1.html"))
}
