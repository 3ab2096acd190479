package trustedsubnet

import (
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/anpinghuang/tiktok-void-backend/internal/middleware/logger"
)

// Middleware пропускает только запросы, пришедшие с адресов из trustedNet.
// Адрес берётся из соединения, а не из заголовков: защищаемый listener
// не стоит за обратным прокси.
func Middleware(trustedNet *net.IPNet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := remoteIP(r)
			if trustedNet == nil || ip == nil || !trustedNet.Contains(ip) {
				logger.Log.Warn("request from untrusted address rejected",
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("uri", r.RequestURI),
				)
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func remoteIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}
