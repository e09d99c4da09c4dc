package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("EDIGEST_CONFIG", "")
	t.Setenv("WORKER_COUNT", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL.Duration != time.Hour {
		t.Errorf("expected 1h job TTL, got %s", cfg.JobTTL)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edigest.toml")
	data := `
port = "9000"
worker_count = 8
strict_parsing = true
job_ttl = "90m"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EDIGEST_CONFIG", path)
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9100" {
		t.Errorf("expected env to override file port, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("expected 8 workers from file, got %d", cfg.WorkerCount)
	}
	if !cfg.StrictParsing {
		t.Error("expected strict parsing from file")
	}
	if cfg.JobTTL.Duration != 90*time.Minute {
		t.Errorf("expected 90m job TTL, got %s", cfg.JobTTL)
	}
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("port = "), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EDIGEST_CONFIG", path)
	if _, err := Load(); err == nil {
		t.Error("expected error for malformed config file")
	}
}

func TestLoad_ClampsNonPositive(t *testing.T) {
	t.Setenv("EDIGEST_CONFIG", "")
	t.Setenv("WORKER_COUNT", "-2")
	t.Setenv("RECORD_BATCH", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WorkerCount != 4 || cfg.RecordBatch != 50 {
		t.Errorf("expected defaults restored, got workers=%d batch=%d", cfg.WorkerCount, cfg.RecordBatch)
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error without API keys")
	}
	cfg.PathstoreAPIKey = "p"
	cfg.EdigestAPIKey = "e"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
