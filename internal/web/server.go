// Package web serves the chat session as a single HTML page with form
// posts for uploads and questions, plus a JSON state endpoint and an SSE
// stream of notifications.
package web

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/pdfchat/internal/attachment"
	"github.com/zulandar/pdfchat/internal/notify"
	"github.com/zulandar/pdfchat/internal/session"
)

// Controller is the session surface the web front-end drives.
type Controller interface {
	StartUpload(ctx context.Context, files ...attachment.File) error
	SendMessage(ctx context.Context, text string) error
	ExportHistory() (string, bool)
	Snapshot() session.Snapshot
}

// StartOpts holds configuration for the web server.
type StartOpts struct {
	Controller   Controller
	Broker       *notify.Broker // optional; /api/events only heartbeats without it
	Notices      *Notices       // optional; rendered and cleared on each page load
	Port         int
	MaxFileBytes int64
	Logger       *slog.Logger
	Out          io.Writer
}

// Start launches the web server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Controller == nil {
		return fmt.Errorf("web: controller is required")
	}
	if opts.Port <= 0 {
		opts.Port = 5173
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := newRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Chat running at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web: %w", err)
	}
	return nil
}

// newRouter builds the gin engine with templates and routes registered.
func newRouter(opts StartOpts) (*gin.Engine, error) {
	if opts.Controller == nil {
		return nil, fmt.Errorf("web: controller is required")
	}
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = attachment.DefaultMaxBytes
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("web: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	registerRoutes(router, opts)
	return router, nil
}

// parseTemplates loads the embedded HTML templates.
func parseTemplates() (*template.Template, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}
