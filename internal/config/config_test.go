package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "STORE_DRIVER", "DATA_DIR", "KAFKA_BROKERS", "SHUTDOWN_TIMEOUT_SECONDS", "KAFKA_RECEIPT_TOPIC"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" || cfg.StoreDriver != DriverFile || cfg.DataDir != "./data" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.ShutdownTimeout != 10*time.Second || cfg.KafkaTopic != "receipts.dispatch" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("expected no brokers, got %v", cfg.KafkaBrokers)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("DELIVERY_TIMEOUT_SECONDS", "3")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "nope")

	cfg := FromEnv()
	if cfg.StoreDriver != DriverPostgres {
		t.Fatalf("expected postgres driver, got %s", cfg.StoreDriver)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.DeliveryTimeout != 3*time.Second || cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected durations %v %v", cfg.DeliveryTimeout, cfg.ShutdownTimeout)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("RECEIPT_BUCKET=shop-receipts\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("RECEIPT_BUCKET", "")
	os.Unsetenv("RECEIPT_BUCKET")

	cfg := Load(path)
	if cfg.ReceiptBucket != "shop-receipts" {
		t.Fatalf("expected bucket from file, got %q", cfg.ReceiptBucket)
	}
}
