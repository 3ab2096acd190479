package recovery

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/anpinghuang/tiktok-void-backend/internal/app/models"
	"github.com/anpinghuang/tiktok-void-backend/internal/middleware/logger"
)

// internalError — ответ клиенту при панике в обработчике
var internalError, _ = json.Marshal(models.Response{Success: false, Error: "Internal server error"})

// Recoverer перехватывает панику в обработчике, логирует её со стеком
// и отвечает 500 в общем JSON-формате
func Recoverer(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.Log.Error("API Error",
				zap.Any("panic", rec),
				zap.String("uri", r.RequestURI),
				zap.ByteString("stack", debug.Stack()),
			)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write(internalError)
		}()

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}
