package pprof

import (
	"errors"
	"net"
	"net/http"
	"net/http/pprof"

	"go.uber.org/zap"

	"github.com/anpinghuang/tiktok-void-backend/internal/middleware/logger"
	"github.com/anpinghuang/tiktok-void-backend/internal/middleware/trustedsubnet"
)

// Handler возвращает маршруты net/http/pprof без регистрации в http.DefaultServeMux
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// Start запускает pprof-сервер на addr в отдельной горутине.
// Если trusted задана, доступ разрешён только из этой подсети.
// Возвращённый сервер останавливается вызывающим.
func Start(addr string, trusted *net.IPNet) *http.Server {
	handler := Handler()
	if trusted != nil {
		handler = trustedsubnet.Middleware(trusted)(handler)
	}
	srv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		logger.Log.Info("Starting pprof server", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("pprof server error", zap.Error(err))
		}
	}()

	return srv
}
