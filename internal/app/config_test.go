package app

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("unexpected http addr: %s", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("unexpected metrics addr: %s", cfg.MetricsAddr)
	}
	if cfg.OutboxPollInterval != time.Second {
		t.Errorf("unexpected outbox poll interval: %s", cfg.OutboxPollInterval)
	}
	if cfg.OutboxBatchSize != 100 {
		t.Errorf("unexpected outbox batch size: %d", cfg.OutboxBatchSize)
	}
	if cfg.OutboxRetention != 72*time.Hour {
		t.Errorf("unexpected outbox retention: %s", cfg.OutboxRetention)
	}
	if cfg.PostgresDSN != "" {
		t.Errorf("postgres dsn must default to empty, got %s", cfg.PostgresDSN)
	}
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("LEATHERSHOP_HTTP_ADDR", ":18080")
	t.Setenv("LEATHERSHOP_METRICS_ADDR", ":19090")
	t.Setenv("LEATHERSHOP_POSTGRES_DSN", "postgres://localhost/leathershop")
	t.Setenv("LEATHERSHOP_KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("LEATHERSHOP_OUTBOX_POLL_INTERVAL", "250ms")
	t.Setenv("LEATHERSHOP_OUTBOX_BATCH_SIZE", "25")
	t.Setenv("LEATHERSHOP_OUTBOX_RETENTION", "24h")

	cfg := ConfigFromEnv()

	if cfg.HTTPAddr != ":18080" {
		t.Errorf("http addr override failed: %s", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":19090" {
		t.Errorf("metrics addr override failed: %s", cfg.MetricsAddr)
	}
	if cfg.PostgresDSN != "postgres://localhost/leathershop" {
		t.Errorf("dsn override failed: %s", cfg.PostgresDSN)
	}
	if cfg.KafkaBrokers != "kafka-1:9092,kafka-2:9092" {
		t.Errorf("brokers override failed: %s", cfg.KafkaBrokers)
	}
	if cfg.OutboxPollInterval != 250*time.Millisecond {
		t.Errorf("poll interval override failed: %s", cfg.OutboxPollInterval)
	}
	if cfg.OutboxBatchSize != 25 {
		t.Errorf("batch size override failed: %d", cfg.OutboxBatchSize)
	}
	if cfg.OutboxRetention != 24*time.Hour {
		t.Errorf("retention override failed: %s", cfg.OutboxRetention)
	}
}

func TestConfigFromEnv_IgnoresInvalidValues(t *testing.T) {
	t.Setenv("LEATHERSHOP_OUTBOX_POLL_INTERVAL", "not-a-duration")
	t.Setenv("LEATHERSHOP_OUTBOX_BATCH_SIZE", "-3")

	cfg := ConfigFromEnv()

	if cfg.OutboxPollInterval != time.Second {
		t.Errorf("invalid interval must keep default, got %s", cfg.OutboxPollInterval)
	}
	if cfg.OutboxBatchSize != 100 {
		t.Errorf("invalid batch size must keep default, got %d", cfg.OutboxBatchSize)
	}
}
