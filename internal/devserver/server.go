// Package devserver is a local stand-in for the question-answering service.
// It accepts PDF uploads and questions on the same paths and response shapes
// as the real service, without running a language model, so the client can
// be exercised end to end.
package devserver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/pdfchat/internal/attachment"
	"github.com/zulandar/pdfchat/internal/config"
	"github.com/zulandar/pdfchat/internal/db"
)

// RouterOpts holds what the HTTP handlers need.
type RouterOpts struct {
	Store        *Store
	Prefix       string
	MaxFileBytes int64
	Logger       *slog.Logger
}

// NewRouter builds the gin engine serving <prefix>/upload and <prefix>/query.
func NewRouter(opts RouterOpts) (*gin.Engine, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("devserver: store is required")
	}
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = attachment.DefaultMaxBytes
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	registerRoutes(router, opts)
	return router, nil
}

// StartOpts holds configuration for the dev backend.
type StartOpts struct {
	Config       config.DevServerConfig
	MaxFileBytes int64
	Logger       *slog.Logger
	Out          io.Writer
}

// Start opens the catalog, starts the retention schedule and serves HTTP.
// It blocks until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	cfg := opts.Config
	if cfg.Port <= 0 {
		cfg.Port = 8000
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	gdb, err := db.OpenAndMigrate(cfg.Database)
	if err != nil {
		return fmt.Errorf("devserver: %w", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}

	store, err := NewStore(gdb, cfg.StorageDir)
	if err != nil {
		return err
	}

	retention, err := NewRetention(store, cfg.Retention, cfg.TTL, logger)
	if err != nil {
		return err
	}
	retention.Start()
	defer retention.Stop()

	gin.SetMode(gin.ReleaseMode)
	router, err := NewRouter(RouterOpts{
		Store:        store,
		Prefix:       cfg.Prefix,
		MaxFileBytes: opts.MaxFileBytes,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Dev backend running at http://localhost:%d%s\n", cfg.Port, normalizePrefix(cfg.Prefix))
	}
	logger.Info("devserver: listening", "port", cfg.Port, "prefix", normalizePrefix(cfg.Prefix))

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("devserver: %w", err)
	}
	return nil
}

// normalizePrefix returns prefix with a leading slash and no trailing slash.
func normalizePrefix(prefix string) string {
	p := strings.Trim(prefix, "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
