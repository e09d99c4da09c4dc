package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Port string `toml:"port"`

	// Pathstore connection
	PathstoreURL    string `toml:"pathstore_url"`
	PathstoreAPIKey string `toml:"pathstore_api_key"`

	// Auth
	EdigestAPIKey string `toml:"api_key"`

	// Worker pool
	WorkerCount        int `toml:"worker_count"`
	MaxQueueSize       int `toml:"max_queue_size"`
	MaxConcurrentStore int `toml:"max_concurrent_store"`

	// Upload limits
	MaxUploadBytes int64 `toml:"max_upload_bytes"`

	// Parsing
	StrictParsing bool `toml:"strict_parsing"`
	RecordBatch   int  `toml:"record_batch"`

	// Job state
	JobTTL Duration `toml:"job_ttl"`

	// Parse latency window
	StatsWindow Duration `toml:"stats_window"`

	// PDF
	PDFFallbackPdftotext bool `toml:"pdf_fallback_pdftotext"`
}

// Duration lets TOML files spell durations as strings like "90m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:                 "8090",
		PathstoreURL:         "http://localhost:8080",
		WorkerCount:          4,
		MaxQueueSize:         100,
		MaxConcurrentStore:   10,
		MaxUploadBytes:       52428800, // 50MB
		RecordBatch:          50,
		JobTTL:               Duration{time.Hour},
		StatsWindow:          Duration{time.Hour},
		PDFFallbackPdftotext: true,
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// EDIGEST_CONFIG (if any), then environment variables.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("EDIGEST_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)

	cfg.PathstoreURL = envOr("PATHSTORE_URL", cfg.PathstoreURL)
	cfg.PathstoreAPIKey = envOr("PATHSTORE_API_KEY", cfg.PathstoreAPIKey)

	cfg.EdigestAPIKey = envOr("EDIGEST_API_KEY", cfg.EdigestAPIKey)

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxConcurrentStore = envInt("MAX_CONCURRENT_STORE", cfg.MaxConcurrentStore)

	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)

	cfg.StrictParsing = envBool("STRICT_PARSING", cfg.StrictParsing)
	cfg.RecordBatch = envInt("RECORD_BATCH", cfg.RecordBatch)

	cfg.JobTTL.Duration = envDuration("JOB_TTL", cfg.JobTTL.Duration)
	cfg.StatsWindow.Duration = envDuration("STATS_WINDOW", cfg.StatsWindow.Duration)

	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)

	def := Defaults()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = def.WorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = def.MaxQueueSize
	}
	if cfg.MaxConcurrentStore <= 0 {
		cfg.MaxConcurrentStore = def.MaxConcurrentStore
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = def.MaxUploadBytes
	}
	if cfg.RecordBatch <= 0 {
		cfg.RecordBatch = def.RecordBatch
	}
	if cfg.JobTTL.Duration <= 0 {
		cfg.JobTTL = def.JobTTL
	}
	if cfg.StatsWindow.Duration <= 0 {
		cfg.StatsWindow = def.StatsWindow
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.PathstoreAPIKey == "" {
		return fmt.Errorf("PATHSTORE_API_KEY is required")
	}
	if c.EdigestAPIKey == "" {
		return fmt.Errorf("EDIGEST_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
