package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds service settings.
type Config struct {
	DatabaseURL        string        `yaml:"database_url"`
	HTTPAddr           string        `yaml:"http_addr"`
	Store              string        `yaml:"store"`
	DefaultTenantID    int64         `yaml:"default_tenant_id"`
	TenantHeader       string        `yaml:"tenant_header"`
	SnapshotReads      bool          `yaml:"snapshot_reads"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	QueryTimeout       time.Duration `yaml:"query_timeout"`
	ExportSheetName    string        `yaml:"export_sheet_name"`
	AuditEnabled       bool          `yaml:"audit_enabled"`
	MemoryFixture      string        `yaml:"memory_fixture"`
}

// Load reads .env (if present), then the environment, then the optional YAML
// file named by STATEMENT_CONFIG.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}
	cfg := FromEnv()
	if path := os.Getenv("STATEMENT_CONFIG"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

// FromEnv builds a config from environment variables and defaults.
func FromEnv() Config {
	return Config{
		DatabaseURL:        getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:           getenvDefault("HTTP_ADDR", ":8080"),
		Store:              strings.ToLower(getenvDefault("STORE", StorePostgres)),
		DefaultTenantID:    getenvInt64Default("DEFAULT_TENANT_ID", 0),
		TenantHeader:       getenvDefault("TENANT_HEADER", "X-Tenant-ID"),
		SnapshotReads:      getenvBoolDefault("SNAPSHOT_READS", true),
		CORSAllowedOrigins: splitCSV(getenvDefault("CORS_ALLOWED_ORIGINS", "*")),
		ShutdownTimeout:    getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		QueryTimeout:       getenvDuration("QUERY_TIMEOUT", 0),
		ExportSheetName:    getenvDefault("EXPORT_SHEET_NAME", "statement"),
		AuditEnabled:       getenvBoolDefault("AUDIT_ENABLED", true),
		MemoryFixture:      getenvDefault("MEMORY_FIXTURE", ""),
	}
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.Store = strings.ToLower(c.Store)
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL or PG_DSN is required")
		}
	case StoreMemory:
		if c.MemoryFixture != "" {
			if _, err := os.Stat(c.MemoryFixture); err != nil {
				return fmt.Errorf("config: MEMORY_FIXTURE: %w", err)
			}
		}
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	if c.HTTPAddr == "" {
		return errors.New("config: HTTP_ADDR is required")
	}
	if c.DefaultTenantID < 0 {
		return errors.New("config: DEFAULT_TENANT_ID must not be negative")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("config: SHUTDOWN_TIMEOUT must be positive")
	}
	if c.QueryTimeout < 0 {
		return errors.New("config: QUERY_TIMEOUT must not be negative")
	}
	if strings.TrimSpace(c.ExportSheetName) == "" {
		return errors.New("config: EXPORT_SHEET_NAME is required")
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt64Default(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBoolDefault(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
