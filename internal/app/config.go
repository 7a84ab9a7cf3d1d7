package app

import (
	"os"
	"strconv"
	"time"
)

// Config описывает настройки запуска приложения.
type Config struct {
	// HTTPAddr — адрес REST API.
	HTTPAddr string
	// MetricsAddr — отдельный listener для /metrics и health-проб.
	MetricsAddr string
	// PostgresDSN — строка подключения; пустая означает in-memory хранилище.
	PostgresDSN string
	// KafkaBrokers — список брокеров через запятую; пустой отключает eventing.
	KafkaBrokers string
	// OutboxPollInterval — период опроса transactional outbox.
	OutboxPollInterval time.Duration
	// OutboxBatchSize — размер батча outbox-воркера.
	OutboxBatchSize int
	// OutboxRetention — срок хранения отправленных outbox-сообщений.
	OutboxRetention time.Duration
}

// DefaultConfig возвращает базовые адреса и интервалы.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:           ":8080",
		MetricsAddr:        ":9090",
		OutboxPollInterval: time.Second,
		OutboxBatchSize:    100,
		OutboxRetention:    72 * time.Hour,
	}
}

// ConfigFromEnv читает конфигурацию из переменных окружения LEATHERSHOP_*,
// подставляя значения по умолчанию для незаданных.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("LEATHERSHOP_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("LEATHERSHOP_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("LEATHERSHOP_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("LEATHERSHOP_KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = v
	}
	if v := os.Getenv("LEATHERSHOP_OUTBOX_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.OutboxPollInterval = d
		}
	}
	if v := os.Getenv("LEATHERSHOP_OUTBOX_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.OutboxBatchSize = n
		}
	}
	if v := os.Getenv("LEATHERSHOP_OUTBOX_RETENTION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.OutboxRetention = d
		}
	}

	return cfg
}
