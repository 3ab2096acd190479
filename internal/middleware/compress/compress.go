package compress

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/anpinghuang/tiktok-void-backend/internal/app/models"
	"github.com/anpinghuang/tiktok-void-backend/internal/middleware/logger"
)

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)
		return w
	},
}

// compressWriter сжимает только успешные JSON-ответы.
// Решение принимается в момент записи заголовков.
type compressWriter struct {
	http.ResponseWriter
	zw          *gzip.Writer
	wroteHeader bool
}

func (c *compressWriter) WriteHeader(statusCode int) {
	if c.wroteHeader {
		return
	}
	c.wroteHeader = true

	h := c.Header()
	if statusCode < 300 && strings.HasPrefix(h.Get("Content-Type"), "application/json") {
		h.Set("Content-Encoding", "gzip")
		h.Del("Content-Length")
		h.Add("Vary", "Accept-Encoding")

		c.zw = gzipWriterPool.Get().(*gzip.Writer)
		c.zw.Reset(c.ResponseWriter)
	}
	c.ResponseWriter.WriteHeader(statusCode)
}

func (c *compressWriter) Write(p []byte) (int, error) {
	if !c.wroteHeader {
		c.WriteHeader(http.StatusOK)
	}
	if c.zw == nil {
		return c.ResponseWriter.Write(p)
	}
	return c.zw.Write(p)
}

func (c *compressWriter) Close() error {
	if c.zw == nil {
		return nil
	}
	err := c.zw.Close()
	c.zw.Reset(io.Discard)
	gzipWriterPool.Put(c.zw)
	c.zw = nil
	return err
}

// gzipBody распаковывает тело запроса и закрывает исходный поток
type gzipBody struct {
	r  io.ReadCloser
	zr *gzip.Reader
}

func (g *gzipBody) Read(p []byte) (int, error) {
	return g.zr.Read(p)
}

func (g *gzipBody) Close() error {
	if err := g.r.Close(); err != nil {
		return err
	}
	return g.zr.Close()
}

// GzipMiddleware распаковывает gzip-тела запросов и сжимает JSON-ответы
// для клиентов, поддерживающих gzip
func GzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			zr, err := gzip.NewReader(r.Body)
			if err != nil {
				logger.Log.Debug("failed to read gzip body", zap.Error(err))
				body, _ := json.Marshal(models.Response{Success: false, Error: "Invalid gzip body"})
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write(body)
				return
			}
			r.Body = &gzipBody{r: r.Body, zr: zr}
			r.Header.Del("Content-Encoding")
		}

		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		cw := &compressWriter{ResponseWriter: w}
		defer func() {
			if err := cw.Close(); err != nil {
				logger.Log.Debug("failed to close gzip writer", zap.Error(err))
			}
		}()
		next.ServeHTTP(cw, r)
	})
}
