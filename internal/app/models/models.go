package models

import "encoding/json"

// DownloadRequest представляет входную структуру запроса на скачивание видео
type DownloadRequest struct {
	URL string `json:"url"`
}

// Response — общий конверт ответа API
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// MessageResponse возвращается корневым маршрутом
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse возвращается маршрутом проверки состояния
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Metadata содержит ответ TikMate API.
// Fields хранит все поля upstream-ответа без изменений, включая производное
// no_watermark_download_url.
type Metadata struct {
	Fields      map[string]any
	Token       string
	ID          string
	DownloadURL string
}

// String возвращает строковое значение поля или пустую строку.
// Числа (json.Number) приводятся к строке.
func (m *Metadata) String(key string) string {
	switch v := m.Fields[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// Success сообщает, подтвердил ли upstream успешный поиск
func (m *Metadata) Success() bool {
	return truthy(m.Value("success"))
}

// First возвращает первое истинное поле из keys, а если таких нет,
// значение последнего ключа (как оператор ||)
func (m *Metadata) First(keys ...string) any {
	var v any
	for _, key := range keys {
		if v = m.Value(key); truthy(v) {
			return v
		}
	}
	return v
}

// Value возвращает поле как есть или nil, если его нет
func (m *Metadata) Value(key string) any {
	if m.Fields == nil {
		return nil
	}
	return m.Fields[key]
}

// VideoData — нормализованный ответ для клиента: все поля upstream плюс
// удобные псевдонимы. Псевдонимы с пустым источником не попадают в JSON.
type VideoData struct {
	Fields       map[string]any `json:"-"`
	DownloadURL  string         `json:"downloadUrl"`
	Thumbnail    any            `json:"thumbnail,omitempty"`
	Title        string         `json:"title"`
	Author       any            `json:"author,omitempty"`
	AuthorAvatar any            `json:"authorAvatar,omitempty"`
	LikeCount    any            `json:"likeCount,omitempty"`
	CommentCount any            `json:"commentCount,omitempty"`
	ShareCount   any            `json:"shareCount,omitempty"`
	CreateTime   any            `json:"createTime,omitempty"`
}

// MarshalJSON сливает поля upstream с псевдонимами; псевдонимы имеют приоритет
func (v VideoData) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(v.Fields)+10)
	for k, val := range v.Fields {
		out[k] = val
	}

	out["downloadUrl"] = v.DownloadURL
	out["title"] = v.Title
	aliases := map[string]any{
		"thumbnail":    v.Thumbnail,
		"author":       v.Author,
		"authorAvatar": v.AuthorAvatar,
		"likeCount":    v.LikeCount,
		"commentCount": v.CommentCount,
		"shareCount":   v.ShareCount,
		"createTime":   v.CreateTime,
	}
	for k, val := range aliases {
		if val == nil {
			delete(out, k)
			continue
		}
		out[k] = val
	}

	return json.Marshal(out)
}

// truthy повторяет правила истинности JSON-значений из upstream:
// false, null, 0 и пустая строка считаются ложью
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case float64:
		return t != 0
	default:
		return true
	}
}
