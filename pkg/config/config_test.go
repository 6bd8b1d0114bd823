package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServiceName != "theoprice" || cfg.HTTP.Port != 8080 || cfg.Database.Driver != "mysql" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Reconcile.Tolerance != "0.01" || cfg.Reconcile.Workers != 8 || cfg.Database.MaxRetries != 3 {
		t.Errorf("reconcile = %+v", cfg.Reconcile)
	}
	if cfg.Redis.Host != "" || len(cfg.Kafka.Brokers) != 0 || cfg.Database.DSN != "" {
		t.Errorf("optional backends should be off by default")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theoprice.toml")
	body := `
service_name = "theoprice-test"

[database]
driver = "postgres"
dsn = "host=localhost"

[kafka]
brokers = ["a:9092", "b:9092"]

[reconcile]
tolerance = "0.005"
workers = 2
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("APP_HTTP_PORT", "9000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServiceName != "theoprice-test" || cfg.Database.Driver != "postgres" || cfg.HTTP.Port != 9000 {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Reconcile.Tolerance != "0.005" || cfg.Reconcile.Workers != 2 {
		t.Errorf("kafka/reconcile = %+v %+v", cfg.Kafka, cfg.Reconcile)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[database]\ndriver = \"sqlite\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected unsupported driver error")
	}

	for _, ttl := range []string{"0", "-5"} {
		if err := os.WriteFile(path, []byte("[reconcile]\ncache_ttl = "+ttl+"\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("cache_ttl = %s accepted", ttl)
		}
	}

	if err := os.WriteFile(path, []byte("service_name = \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
