package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvConfigPath переопределяет путь к файлу конфигурации
const EnvConfigPath = "CONFIG_PATH"

var (
	// ErrReadConfig возвращается, когда файл конфигурации не удалось прочитать или разобрать
	ErrReadConfig = errors.New("config: failed to read config")

	// ErrInvalidConfig возвращается, когда конфигурация не прошла валидацию
	ErrInvalidConfig = errors.New("config: invalid config")
)

// Config конфигурация сервиса
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Logs        LogsConfig        `toml:"logs"`
	Metrics     MetricsConfig     `toml:"metrics"`
	Redis       RedisConfig       `toml:"redis"`
	Reservation ReservationConfig `toml:"reservation"`
	Payments    PaymentsConfig    `toml:"payments"`
	Broker      BrokerConfig      `toml:"broker"`
	Admin       AdminConfig       `toml:"admin"`
	RateLimit   RateLimitConfig   `toml:"rate_limit"`
	TaskQueue   TaskQueueConfig   `toml:"task_queue"`
}

// ServerConfig настройки HTTP сервера, таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig настройки Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// RedisConfig настройки распределённой блокировки по лодке.
// При enabled = false используется блокировка внутри процесса.
type RedisConfig struct {
	Enabled       bool   `toml:"enabled"`
	Addr          string `toml:"addr"`
	Password      string `toml:"password"`
	DB            int    `toml:"db"`
	LockTTLMs     int    `toml:"lock_ttl_ms"`
	LockWaitMs    int    `toml:"lock_wait_ms"`
	LockRetryMs   int    `toml:"lock_retry_ms"`
	LockKeyPrefix string `toml:"lock_key_prefix"`
}

func (c RedisConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLMs) * time.Millisecond
}

func (c RedisConfig) LockWait() time.Duration {
	return time.Duration(c.LockWaitMs) * time.Millisecond
}

func (c RedisConfig) LockRetry() time.Duration {
	return time.Duration(c.LockRetryMs) * time.Millisecond
}

// ReservationConfig параметры резервирования
type ReservationConfig struct {
	HoldTTLMinutes          int    `toml:"hold_ttl_minutes"`
	ReaperIntervalSeconds   int    `toml:"reaper_interval_seconds"`
	ReaperBatchSize         int    `toml:"reaper_batch_size"`
	CatalogRefreshSeconds   int    `toml:"catalog_refresh_seconds"`
	Currency                string `toml:"currency"`
	MaxBookingsPageSize     int    `toml:"max_bookings_page_size"`
	DefaultBookingsPageSize int    `toml:"default_bookings_page_size"`
}

func (c ReservationConfig) HoldTTL() time.Duration {
	return time.Duration(c.HoldTTLMinutes) * time.Minute
}

func (c ReservationConfig) ReaperInterval() time.Duration {
	return time.Duration(c.ReaperIntervalSeconds) * time.Second
}

func (c ReservationConfig) CatalogRefresh() time.Duration {
	return time.Duration(c.CatalogRefreshSeconds) * time.Second
}

// PaymentsConfig настройки Stripe
type PaymentsConfig struct {
	StripeSecretKey string `toml:"stripe_secret_key"`
	WebhookSecret   string `toml:"webhook_secret"`
}

// BrokerConfig настройки публикации событий в RabbitMQ
type BrokerConfig struct {
	Enabled  bool   `toml:"enabled"`
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
}

// AdminConfig настройки доступа администратора
type AdminConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

// RateLimitConfig ограничение частоты запросов на создание котировок, по IP.
// TrustedProxies адреса или CIDR прокси, которым разрешено передавать X-Forwarded-For.
type RateLimitConfig struct {
	QuoteRPS       float64  `toml:"quote_rps"`
	QuoteBurst     int      `toml:"quote_burst"`
	TrustedProxies []string `toml:"trusted_proxies"`
}

// TrustedProxyPrefixes разбирает TrustedProxies; одиночный адрес становится префиксом /32 или /128
func (c RateLimitConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// TaskQueueConfig настройки asynq для отложенного истечения холдов
type TaskQueueConfig struct {
	Enabled     bool   `toml:"enabled"`
	RedisAddr   string `toml:"redis_addr"`
	Concurrency int    `toml:"concurrency"`
	Queue       string `toml:"queue"`
}

// Path возвращает путь к конфигурации с учётом CONFIG_PATH
func Path(defaultPath string) string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	return defaultPath
}

// Load читает конфигурацию из TOML файла, применяет значения по умолчанию и валидирует её
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: Load - decode %s: %v", ErrReadConfig, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "boatrental",
		},
		Redis: RedisConfig{
			Addr:          "localhost:6379",
			LockTTLMs:     5000,
			LockWaitMs:    3000,
			LockRetryMs:   50,
			LockKeyPrefix: "boatrental:lock:",
		},
		Reservation: ReservationConfig{
			HoldTTLMinutes:          30,
			ReaperIntervalSeconds:   15,
			ReaperBatchSize:         100,
			CatalogRefreshSeconds:   60,
			Currency:                "eur",
			MaxBookingsPageSize:     200,
			DefaultBookingsPageSize: 50,
		},
		Broker: BrokerConfig{
			Exchange: "boatrental.bookings",
		},
		RateLimit: RateLimitConfig{
			QuoteRPS:   2,
			QuoteBurst: 5,
		},
		TaskQueue: TaskQueueConfig{
			RedisAddr:   "localhost:6379",
			Concurrency: 5,
			Queue:       "holds",
		},
	}
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port must be in 1..65535, got %d", ErrInvalidConfig, c.Server.HTTPPort)
	}
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("%w: database.host, database.dbname and database.user are required", ErrInvalidConfig)
	}
	if c.Reservation.HoldTTLMinutes <= 0 {
		return fmt.Errorf("%w: reservation.hold_ttl_minutes must be positive", ErrInvalidConfig)
	}
	if c.Reservation.ReaperIntervalSeconds <= 0 {
		return fmt.Errorf("%w: reservation.reaper_interval_seconds must be positive", ErrInvalidConfig)
	}
	if c.Reservation.ReaperBatchSize <= 0 {
		return fmt.Errorf("%w: reservation.reaper_batch_size must be positive", ErrInvalidConfig)
	}
	if c.Reservation.Currency == "" {
		return fmt.Errorf("%w: reservation.currency is required", ErrInvalidConfig)
	}
	if c.Payments.StripeSecretKey == "" || c.Payments.WebhookSecret == "" {
		return fmt.Errorf("%w: payments.stripe_secret_key and payments.webhook_secret are required", ErrInvalidConfig)
	}
	if c.Admin.JWTSecret == "" {
		return fmt.Errorf("%w: admin.jwt_secret is required", ErrInvalidConfig)
	}
	if c.Redis.Enabled && c.Redis.LockTTLMs <= 0 {
		return fmt.Errorf("%w: redis.lock_ttl_ms must be positive", ErrInvalidConfig)
	}
	if c.Broker.Enabled && c.Broker.URL == "" {
		return fmt.Errorf("%w: broker.url is required when broker is enabled", ErrInvalidConfig)
	}
	if c.RateLimit.QuoteRPS <= 0 || c.RateLimit.QuoteBurst <= 0 {
		return fmt.Errorf("%w: rate_limit.quote_rps and rate_limit.quote_burst must be positive", ErrInvalidConfig)
	}
	if _, err := c.RateLimit.TrustedProxyPrefixes(); err != nil {
		return fmt.Errorf("%w: rate_limit.trusted_proxies: %v", ErrInvalidConfig, err)
	}
	if c.TaskQueue.Enabled && c.TaskQueue.Concurrency <= 0 {
		return fmt.Errorf("%w: task_queue.concurrency must be positive", ErrInvalidConfig)
	}
	return nil
}
