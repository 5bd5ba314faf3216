package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	AppName        string        `env:"APP_NAME"`
	DatabaseURL    string        `env:"DATABASE_URL,required"`
	MigrationsPath string        `env:"MIGRATIONS_PATH"`
	ServerPort     string        `env:"SERVER_PORT"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`

	// Кэш снимков изображений
	CacheBackend   string `env:"CACHE_BACKEND"`
	CacheExpire    int    `env:"CACHE_EXPIRE"` // секунды
	CacheBadgerDir string `env:"CACHE_BADGER_DIR"`

	// Настройки для MinIO
	MinioEndpoint        string `env:"MINIO_ENDPOINT,required"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID,required"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY,required"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME,required"`
	MinioRegion          string `env:"MINIO_REGION,required"`
	// MinioPublicURL — базовый адрес для публичных ссылок, по умолчанию совпадает с endpoint
	MinioPublicURL string `env:"MINIO_PUBLIC_URL"`

	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL,required"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME"`
	}
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Значения по умолчанию выставляются вручную, а не через теги envDefault
func (c *Config) applyDefaults() {
	if c.AppName == "" {
		c.AppName = "photoshare"
	}
	if c.ServerPort == "" {
		c.ServerPort = "8080"
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 15 * time.Second
	}
	if c.MigrationsPath == "" {
		c.MigrationsPath = "file://internal/database/postgres/migrations"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
	if c.CacheBackend == "" {
		c.CacheBackend = "memory"
	}
	if c.CacheExpire == 0 {
		c.CacheExpire = 60
	}
	if c.CacheBadgerDir == "" {
		c.CacheBadgerDir = "data/cache"
	}
	if c.RabbitMQ.RabbitMQQueueName == "" {
		c.RabbitMQ.RabbitMQQueueName = "media_cleanup_queue"
	}
}

func (c *Config) validate() error {
	switch c.CacheBackend {
	case "memory", "badger":
	default:
		return fmt.Errorf("неизвестный CACHE_BACKEND %q: ожидается memory или badger", c.CacheBackend)
	}
	if c.CacheExpire < 0 {
		return fmt.Errorf("CACHE_EXPIRE не может быть отрицательным: %d", c.CacheExpire)
	}
	return nil
}

// CacheTTL возвращает время жизни снимка в кэше
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheExpire) * time.Second
}
