package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	defaultPort            = "5000"
	defaultLookupURL       = "https://api.tikmate.app/api/lookup"
	defaultDownloadBaseURL = "https://tikmate.app/download"
	defaultLoggerLevel     = "info"
	defaultCORSOrigins     = "*"
)

// Config содержит все конфигурационные параметры приложения
type Config struct {
	ServerAddress   string        `json:"server_address" env:"SERVER_ADDRESS"`
	Port            string        `json:"port" env:"PORT" envDefault:"5000"`
	ProxyURL        string        `json:"proxy_url" env:"PROXY_URL"`
	LookupURL       string        `json:"lookup_url" env:"TIKMATE_LOOKUP_URL" envDefault:"https://api.tikmate.app/api/lookup"`
	DownloadBaseURL string        `json:"download_base_url" env:"TIKMATE_DOWNLOAD_URL" envDefault:"https://tikmate.app/download"`
	UpstreamTimeout time.Duration `json:"upstream_timeout" env:"UPSTREAM_TIMEOUT"`
	LoggerLevel     string        `json:"log_level" env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins     string        `json:"cors_origins" env:"CORS_ORIGINS" envDefault:"*"`
	PprofAddress    string        `json:"pprof_address" env:"PPROF_ADDRESS"`
	TrustedSubnet   string        `json:"trusted_subnet" env:"TRUSTED_SUBNET"`
	ConfigFile      string        `json:"-" env:"CONFIG"`
}

// LoadConfig загружает конфигурацию: .env файл, переменные окружения,
// флаги командной строки и, при наличии, JSON конфиг файл
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("error parsing env variables: %w", err)
	}

	if err := ParseFlags(flag.CommandLine, config, os.Args[1:]); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	if config.ConfigFile != "" {
		fileConfig, err := loadConfigFromFile(config.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
		mergeConfigs(config, fileConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ParseFlags регистрирует флаги в наборе flags и переопределяет ими значения config
func ParseFlags(flags *flag.FlagSet, config *Config, args []string) error {
	flags.StringVar(&config.ServerAddress, "a", config.ServerAddress, "address and port to run server (overrides -p)")
	flags.StringVar(&config.Port, "p", config.Port, "port to run server")
	flags.StringVar(&config.ProxyURL, "x", config.ProxyURL, "forward proxy URL for outbound requests")
	flags.StringVar(&config.LookupURL, "u", config.LookupURL, "TikMate lookup endpoint")
	flags.StringVar(&config.DownloadBaseURL, "D", config.DownloadBaseURL, "TikMate download base URL")
	flags.DurationVar(&config.UpstreamTimeout, "T", config.UpstreamTimeout, "timeout for upstream requests, 0 disables it")
	flags.StringVar(&config.LoggerLevel, "l", config.LoggerLevel, "log level")
	flags.StringVar(&config.CORSOrigins, "o", config.CORSOrigins, "comma-separated list of allowed CORS origins")
	flags.StringVar(&config.PprofAddress, "P", config.PprofAddress, "pprof listen address, empty disables it")
	flags.StringVar(&config.TrustedSubnet, "t", config.TrustedSubnet, "trusted subnet in CIDR format allowed to reach pprof")
	flags.StringVar(&config.ConfigFile, "c", config.ConfigFile, "path to JSON config file")

	return flags.Parse(args)
}

// Validate проверяет согласованность параметров
func (c *Config) Validate() error {
	if c.ServerAddress == "" && c.Port == "" {
		return errors.New("either server address or port must be set")
	}
	if c.ProxyURL != "" {
		u, err := url.Parse(c.ProxyURL)
		if err != nil {
			return fmt.Errorf("invalid proxy URL: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid proxy URL: scheme and host are required")
		}
	}
	if c.TrustedSubnet != "" {
		if _, _, err := net.ParseCIDR(c.TrustedSubnet); err != nil {
			return fmt.Errorf("invalid trusted subnet: %w", err)
		}
	}
	if c.UpstreamTimeout < 0 {
		return fmt.Errorf("upstream timeout must not be negative, got %s", c.UpstreamTimeout)
	}
	return nil
}

// Addr возвращает адрес, на котором слушает HTTP-сервер
func (c *Config) Addr() string {
	if c.ServerAddress != "" {
		return c.ServerAddress
	}
	return ":" + c.Port
}

// ProxyHost возвращает часть адреса прокси после учётных данных,
// чтобы логин и пароль не попадали в лог
func (c *Config) ProxyHost() string {
	parts := strings.SplitN(c.ProxyURL, "@", 2)
	if len(parts) < 2 || parts[1] == "" {
		return "***"
	}
	return parts[1]
}

// TrustedNet возвращает доверенную подсеть или nil, если она не задана
func (c *Config) TrustedNet() *net.IPNet {
	if c.TrustedSubnet == "" {
		return nil
	}
	_, n, err := net.ParseCIDR(c.TrustedSubnet)
	if err != nil {
		return nil
	}
	return n
}

// AllowedOrigins возвращает список разрешённых CORS-источников
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{defaultCORSOrigins}
	}
	return origins
}

func loadConfigFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) isDefault(field string) bool {
	switch field {
	case "ServerAddress":
		return c.ServerAddress == ""
	case "Port":
		return c.Port == defaultPort
	case "ProxyURL":
		return c.ProxyURL == ""
	case "LookupURL":
		return c.LookupURL == defaultLookupURL
	case "DownloadBaseURL":
		return c.DownloadBaseURL == defaultDownloadBaseURL
	case "UpstreamTimeout":
		return c.UpstreamTimeout == 0
	case "LoggerLevel":
		return c.LoggerLevel == defaultLoggerLevel
	case "CORSOrigins":
		return c.CORSOrigins == defaultCORSOrigins
	case "PprofAddress":
		return c.PprofAddress == ""
	case "TrustedSubnet":
		return c.TrustedSubnet == ""
	default:
		return false
	}
}

// mergeConfigs переносит значения из файла только в поля, оставшиеся со значениями по умолчанию
func mergeConfigs(dst, src *Config) {
	if src.ServerAddress != "" && dst.isDefault("ServerAddress") {
		dst.ServerAddress = src.ServerAddress
	}
	if src.Port != "" && dst.isDefault("Port") {
		dst.Port = src.Port
	}
	if src.ProxyURL != "" && dst.isDefault("ProxyURL") {
		dst.ProxyURL = src.ProxyURL
	}
	if src.LookupURL != "" && dst.isDefault("LookupURL") {
		dst.LookupURL = src.LookupURL
	}
	if src.DownloadBaseURL != "" && dst.isDefault("DownloadBaseURL") {
		dst.DownloadBaseURL = src.DownloadBaseURL
	}
	if src.UpstreamTimeout != 0 && dst.isDefault("UpstreamTimeout") {
		dst.UpstreamTimeout = src.UpstreamTimeout
	}
	if src.LoggerLevel != "" && dst.isDefault("LoggerLevel") {
		dst.LoggerLevel = src.LoggerLevel
	}
	if src.CORSOrigins != "" && dst.isDefault("CORSOrigins") {
		dst.CORSOrigins = src.CORSOrigins
	}
	if src.PprofAddress != "" && dst.isDefault("PprofAddress") {
		dst.PprofAddress = src.PprofAddress
	}
	if src.TrustedSubnet != "" && dst.isDefault("TrustedSubnet") {
		dst.TrustedSubnet = src.TrustedSubnet
	}
}
