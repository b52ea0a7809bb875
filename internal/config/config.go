// Package config loads folio's YAML configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration
type Config struct {
	Book    BookConfig    `yaml:"book" json:"book"`
	Reader  ReaderConfig  `yaml:"reader" json:"reader"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
}

// BookConfig names the one document the reader shows
type BookConfig struct {
	// Path is resolved by the storage adapter: relative to local.base_path, or an S3 key.
	Path  string `yaml:"path" json:"path"`
	Title string `yaml:"title" json:"title"`
}

// ReaderConfig holds the chrome's initial state
type ReaderConfig struct {
	FontSize      int    `yaml:"font_size" json:"font_size"` // px
	FontStep      int    `yaml:"font_step" json:"font_step"` // px
	TOCVisible    bool   `yaml:"toc_visible" json:"toc_visible"`
	ResizeDelayMs int    `yaml:"resize_delay_ms" json:"resize_delay_ms"`
	Locale        string `yaml:"locale" json:"locale"`
	Resume        bool   `yaml:"resume" json:"resume"`
}

// ResizeDelay returns ResizeDelayMs as a duration.
func (r ReaderConfig) ResizeDelay() time.Duration {
	return time.Duration(r.ResizeDelayMs) * time.Millisecond
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	ReadTimeout  int    `yaml:"read_timeout" json:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" json:"write_timeout"` // seconds
	RateLimit    int    `yaml:"rate_limit" json:"rate_limit"`       // requests per minute per IP
	MountTTL     int    `yaml:"mount_ttl" json:"mount_ttl"`         // minutes
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig defines where the book is read from
type StorageConfig struct {
	Adapter string           `yaml:"adapter" json:"adapter"` // "local" or "s3"
	Local   LocalStorageOpts `yaml:"local" json:"local"`
	S3      S3StorageOpts    `yaml:"s3" json:"s3"`
}

// LocalStorageOpts configures the local filesystem adapter
type LocalStorageOpts struct {
	BasePath string `yaml:"base_path" json:"base_path"`
}

// S3StorageOpts configures the S3-compatible adapter
type S3StorageOpts struct {
	Endpoint        string `yaml:"endpoint" json:"endpoint"`
	Region          string `yaml:"region" json:"region"`
	Bucket          string `yaml:"bucket" json:"bucket"`
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key"`
}

// Load reads the configuration file over the defaults. An empty path, or
// a path that does not exist, yields the defaults. Environment variables
// prefixed with FOLIO_ override both.
func Load(configPath string) (*Config, error) {
	cfg := GetDefault()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid, filling in defaults for
// optional tuning values
func Validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	switch cfg.Storage.Adapter {
	case "local":
		if cfg.Storage.Local.BasePath == "" {
			return fmt.Errorf("local storage base_path is required")
		}
	case "s3":
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket is required")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("s3 region is required")
		}
		if cfg.Book.Path == "" {
			return fmt.Errorf("book path is required with the s3 adapter")
		}
	default:
		return fmt.Errorf("invalid storage adapter: %s (must be 'local' or 's3')", cfg.Storage.Adapter)
	}

	if cfg.Reader.ResizeDelayMs < 0 {
		return fmt.Errorf("invalid resize_delay_ms: %d", cfg.Reader.ResizeDelayMs)
	}
	if cfg.Reader.FontSize <= 0 {
		cfg.Reader.FontSize = 16
	}
	if cfg.Reader.FontStep <= 0 {
		cfg.Reader.FontStep = 1
	}
	if cfg.Server.RateLimit <= 0 {
		cfg.Server.RateLimit = 120
	}
	if cfg.Server.MountTTL <= 0 {
		cfg.Server.MountTTL = 30
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides
// Environment variables should be prefixed with FOLIO_
func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"FOLIO_BOOK_PATH":                    &cfg.Book.Path,
		"FOLIO_BOOK_TITLE":                   &cfg.Book.Title,
		"FOLIO_READER_LOCALE":                &cfg.Reader.Locale,
		"FOLIO_SERVER_HOST":                  &cfg.Server.Host,
		"FOLIO_STORAGE_ADAPTER":              &cfg.Storage.Adapter,
		"FOLIO_STORAGE_LOCAL_BASE_PATH":      &cfg.Storage.Local.BasePath,
		"FOLIO_STORAGE_S3_BUCKET":            &cfg.Storage.S3.Bucket,
		"FOLIO_STORAGE_S3_REGION":            &cfg.Storage.S3.Region,
		"FOLIO_STORAGE_S3_ENDPOINT":          &cfg.Storage.S3.Endpoint,
		"FOLIO_STORAGE_S3_ACCESS_KEY_ID":     &cfg.Storage.S3.AccessKeyID,
		"FOLIO_STORAGE_S3_SECRET_ACCESS_KEY": &cfg.Storage.S3.SecretAccessKey,
	}
	for key, dst := range strs {
		if val := os.Getenv(key); val != "" {
			*dst = val
		}
	}

	ints := map[string]*int{
		"FOLIO_READER_FONT_SIZE":       &cfg.Reader.FontSize,
		"FOLIO_READER_FONT_STEP":       &cfg.Reader.FontStep,
		"FOLIO_READER_RESIZE_DELAY_MS": &cfg.Reader.ResizeDelayMs,
		"FOLIO_SERVER_PORT":            &cfg.Server.Port,
		"FOLIO_SERVER_RATE_LIMIT":      &cfg.Server.RateLimit,
		"FOLIO_SERVER_MOUNT_TTL":       &cfg.Server.MountTTL,
	}
	for key, dst := range ints {
		if val := os.Getenv(key); val != "" {
			n, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"FOLIO_READER_TOC_VISIBLE": &cfg.Reader.TOCVisible,
		"FOLIO_READER_RESUME":      &cfg.Reader.Resume,
	}
	for key, dst := range bools {
		if val := os.Getenv(key); val != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(val))
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = b
		}
	}
	return nil
}

// GetDefault returns a default configuration
func GetDefault() *Config {
	return &Config{
		Reader: ReaderConfig{
			FontSize:      16,
			FontStep:      1,
			TOCVisible:    true,
			ResizeDelayMs: 300,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15,
			WriteTimeout: 15,
			RateLimit:    120,
			MountTTL:     30,
		},
		Storage: StorageConfig{
			Adapter: "local",
			Local: LocalStorageOpts{
				BasePath: ".",
			},
		},
	}
}
