package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	def := GetDefault()
	if cfg.Reader != def.Reader || cfg.Server != def.Server {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if cfg.Reader.ResizeDelay() != 300*time.Millisecond {
		t.Errorf("ResizeDelay = %v", cfg.Reader.ResizeDelay())
	}
}

func TestLoadFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yaml")
	data := `
book:
  path: books/handbook.epub
  title: Handbook
reader:
  font_size: 18
  toc_visible: false
  locale: zh-CN
server:
  port: 9090
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Book.Path != "books/handbook.epub" || cfg.Book.Title != "Handbook" {
		t.Errorf("book = %+v", cfg.Book)
	}
	if cfg.Reader.FontSize != 18 || cfg.Reader.TOCVisible || cfg.Reader.Locale != "zh-CN" {
		t.Errorf("reader = %+v", cfg.Reader)
	}
	// Keys missing from the file keep their defaults.
	if cfg.Reader.FontStep != 1 || cfg.Reader.ResizeDelayMs != 300 {
		t.Errorf("defaults lost: %+v", cfg.Reader)
	}
	if cfg.Server.Addr() != "0.0.0.0:9090" {
		t.Errorf("Addr = %s", cfg.Server.Addr())
	}
}

func TestLoadParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("reader: [oops"), 0644)
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FOLIO_BOOK_PATH", "/srv/book.epub")
	t.Setenv("FOLIO_READER_FONT_SIZE", "20")
	t.Setenv("FOLIO_READER_TOC_VISIBLE", "false")
	t.Setenv("FOLIO_SERVER_PORT", "7000")
	t.Setenv("FOLIO_STORAGE_ADAPTER", "s3")
	t.Setenv("FOLIO_STORAGE_S3_BUCKET", "books")
	t.Setenv("FOLIO_STORAGE_S3_REGION", "eu-west-1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Book.Path != "/srv/book.epub" {
		t.Errorf("Book.Path = %q", cfg.Book.Path)
	}
	if cfg.Reader.FontSize != 20 || cfg.Reader.TOCVisible {
		t.Errorf("reader = %+v", cfg.Reader)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Storage.Adapter != "s3" || cfg.Storage.S3.Bucket != "books" || cfg.Storage.S3.Region != "eu-west-1" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
}

func TestEnvOverrideInvalidNumber(t *testing.T) {
	t.Setenv("FOLIO_SERVER_PORT", "eighty")
	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "FOLIO_SERVER_PORT") {
		t.Fatalf("expected FOLIO_SERVER_PORT error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"bad adapter", func(c *Config) { c.Storage.Adapter = "ftp" }, "invalid storage adapter"},
		{"local without base", func(c *Config) { c.Storage.Local.BasePath = "" }, "base_path is required"},
		{"s3 without bucket", func(c *Config) {
			c.Storage.Adapter = "s3"
			c.Storage.S3.Region = "us-east-1"
		}, "bucket is required"},
		{"s3 without region", func(c *Config) {
			c.Storage.Adapter = "s3"
			c.Storage.S3.Bucket = "b"
		}, "region is required"},
		{"s3 without book", func(c *Config) {
			c.Storage.Adapter = "s3"
			c.Storage.S3.Bucket = "b"
			c.Storage.S3.Region = "us-east-1"
		}, "book path is required"},
		{"negative delay", func(c *Config) { c.Reader.ResizeDelayMs = -1 }, "resize_delay_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefault()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFillsTuningDefaults(t *testing.T) {
	cfg := GetDefault()
	cfg.Reader.FontStep = 0
	cfg.Server.MountTTL = 0
	if err := Validate(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Reader.FontStep != 1 || cfg.Server.MountTTL != 30 {
		t.Errorf("defaults not filled: %+v %+v", cfg.Reader, cfg.Server)
	}
}
