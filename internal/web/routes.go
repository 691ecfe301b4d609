package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/pdfchat/internal/attachment"
	"github.com/zulandar/pdfchat/internal/models"
	"github.com/zulandar/pdfchat/internal/session"
	"github.com/zulandar/pdfchat/internal/transcript"
)

// stateView is the JSON form of a session snapshot.
type stateView struct {
	Phase          string           `json:"phase"`
	DocumentName   string           `json:"document_name"`
	DocumentReady  bool             `json:"document_ready"`
	UploadInFlight bool             `json:"upload_in_flight"`
	QueryInFlight  bool             `json:"query_in_flight"`
	CanSend        bool             `json:"can_send"`
	Placeholder    string           `json:"placeholder"`
	Messages       []models.Message `json:"messages"`
}

func newStateView(s session.Snapshot) stateView {
	msgs := s.Messages
	if msgs == nil {
		msgs = []models.Message{}
	}
	return stateView{
		Phase:          s.Phase.String(),
		DocumentName:   s.DocumentName,
		DocumentReady:  s.DocumentReady(),
		UploadInFlight: s.UploadInFlight(),
		QueryInFlight:  s.QueryInFlight(),
		CanSend:        s.CanSend(),
		Placeholder:    s.Placeholder(),
		Messages:       msgs,
	}
}

// registerRoutes sets up all web routes on the Gin router.
func registerRoutes(router *gin.Engine, opts StartOpts) {
	staticFS, _ := fs.Sub(assetsFS, "assets")
	router.StaticFS("/static", http.FS(staticFS))

	router.GET("/", handleIndex(opts.Controller, opts.Notices))
	router.POST("/upload", handleUpload(opts.Controller, opts.MaxFileBytes, opts.Logger))
	router.POST("/messages", handleMessage(opts.Controller, opts.Logger))
	router.GET("/export", handleExport(opts.Controller, time.Now))

	router.GET("/api/state", handleState(opts.Controller))
	router.GET("/api/events", handleSSE(opts.Broker, 15*time.Second))
}

func handleIndex(ctrl Controller, notices *Notices) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := ctrl.Snapshot()
		data := gin.H{
			"state":     newStateView(s),
			"messages":  s.Messages,
			"canExport": len(s.Messages) > 0,
		}
		if notices != nil {
			data["notices"] = notices.Take()
		}
		c.HTML(http.StatusOK, "layout.html", data)
	}
}

func handleUpload(ctrl Controller, maxBytes int64, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var files []attachment.File
		if form, err := c.MultipartForm(); err == nil {
			for _, fh := range form.File["files"] {
				f, err := attachment.FromMultipart(fh, maxBytes)
				if err != nil {
					c.String(http.StatusRequestEntityTooLarge, err.Error())
					return
				}
				files = append(files, f)
			}
		}

		// A browser that stops waiting must not abort the backend call.
		ctx := context.WithoutCancel(c.Request.Context())
		if err := ctrl.StartUpload(ctx, files...); err != nil {
			logger.Debug("web: upload not started", "error", err)
		}
		c.Redirect(http.StatusSeeOther, "/")
	}
}

func handleMessage(ctrl Controller, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithoutCancel(c.Request.Context())
		err := ctrl.SendMessage(ctx, c.PostForm("message"))
		if err != nil && !errors.Is(err, session.ErrEmptyMessage) {
			logger.Debug("web: message not sent", "error", err)
		}
		c.Redirect(http.StatusSeeOther, "/")
	}
}

func handleExport(ctrl Controller, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		text, ok := ctrl.ExportHistory()
		if !ok {
			c.Status(http.StatusNoContent)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", transcript.FileName(now())))
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
	}
}

func handleState(ctrl Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, newStateView(ctrl.Snapshot()))
	}
}
