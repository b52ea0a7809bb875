package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/metcalfc/folio/internal/config"
	"github.com/metcalfc/folio/internal/health"
	"github.com/metcalfc/folio/internal/i18n"
	"github.com/metcalfc/folio/internal/storage"
	"github.com/metcalfc/folio/internal/web"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	configPath := flag.String("config", "config/folio.example.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("folio-web %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	infoLog := log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	errorLog := log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		errorLog.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Book.Path == "" {
		errorLog.Fatalf("No book configured: set book.path or FOLIO_BOOK_PATH")
	}
	infoLog.Printf("Starting folio-web %s", version)

	adapter, err := storage.NewAdapter(cfg.Storage)
	if err != nil {
		errorLog.Fatalf("Failed to create storage adapter: %v", err)
	}
	defer adapter.Close()
	infoLog.Printf("Storage adapter initialized: %s", adapter.Name())

	hc := health.NewHandler(version)
	hc.Register("book", func(ctx context.Context) (health.Status, error) {
		ok, err := adapter.Exists(ctx, cfg.Book.Path)
		if err != nil {
			return health.StatusUnhealthy, err
		}
		if !ok {
			return health.StatusUnhealthy, fmt.Errorf("book not found: %s", cfg.Book.Path)
		}
		return health.StatusHealthy, nil
	})

	srv := web.New(web.Options{
		Config: cfg,
		Source: storage.BookSource{Adapter: adapter, Path: cfg.Book.Path},
		Labels: i18n.Detect(cfg.Reader.Locale),
		Health: hc,
		Info:   infoLog,
		Error:  errorLog,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      srv,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		infoLog.Printf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errorLog.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	infoLog.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		errorLog.Printf("Server forced to shutdown: %v", err)
	}
	srv.Close()
	infoLog.Println("Server stopped")
}
