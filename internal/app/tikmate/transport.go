package tikmate

import (
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/net/proxy"
)

// Transport определяет способ доставки исходящих запросов к TikMate.
// Реализация выбирается один раз при старте приложения.
type Transport interface {
	// RoundTripper возвращает транспорт для HTTP-клиента
	RoundTripper() http.RoundTripper
	// String описывает транспорт для логов без учётных данных
	String() string
}

// DirectTransport отправляет запросы напрямую.
// Переменные окружения HTTP_PROXY/HTTPS_PROXY игнорируются.
type DirectTransport struct {
	rt *http.Transport
}

// NewDirectTransport создаёт прямой транспорт
func NewDirectTransport() *DirectTransport {
	return &DirectTransport{rt: baseTransport()}
}

func (d *DirectTransport) RoundTripper() http.RoundTripper {
	return d.rt
}

func (d *DirectTransport) String() string {
	return "direct"
}

// ProxyTransport направляет все запросы через заданный прокси.
// Для http/https используется CONNECT, для socks5/socks5h — SOCKS-диалер.
type ProxyTransport struct {
	rt   *http.Transport
	host string
}

// NewProxyTransport создаёт транспорт через прокси proxyURL
func NewProxyTransport(proxyURL string) (*ProxyTransport, error) {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy url %q has no host", u.Redacted())
	}

	rt := baseTransport()
	switch u.Scheme {
	case "http", "https":
		rt.Proxy = http.ProxyURL(u)
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("create socks dialer: %w", err)
		}
		cd, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("socks dialer for %q does not support contexts", u.Host)
		}
		rt.DialContext = cd.DialContext
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}

	return &ProxyTransport{rt: rt, host: u.Host}, nil
}

func (p *ProxyTransport) RoundTripper() http.RoundTripper {
	return p.rt
}

func (p *ProxyTransport) String() string {
	return "proxy " + p.host
}

// NewTransport выбирает прямой транспорт или транспорт через прокси
func NewTransport(proxyURL string) (Transport, error) {
	if proxyURL == "" {
		return NewDirectTransport(), nil
	}
	return NewProxyTransport(proxyURL)
}

// baseTransport копирует настройки http.DefaultTransport без чтения прокси из окружения
func baseTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.Proxy = nil
	return t
}
