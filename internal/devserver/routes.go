package devserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/pdfchat/internal/attachment"
	"github.com/zulandar/pdfchat/internal/models"
)

// Response texts of the question-answering service.
const (
	uploadAcceptedMessage = "Documents processed successfully"
	parsedMessage         = "PDF parsed and ready for Q&A."
	noDocumentsAnswer     = "No documents have been processed yet or no text was extracted."
)

// Per-upload processing statuses.
const (
	statusParsed  = "parsed"
	statusPartial = "partial"
	statusError   = "error"
)

type uploadResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type uploadResponse struct {
	Message string       `json:"message"`
	Count   uploadResult `json:"count"`
}

type queryRequest struct {
	Query *string `json:"query"`
}

type queryResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func registerRoutes(router *gin.Engine, opts RouterOpts) {
	api := router.Group(normalizePrefix(opts.Prefix))
	api.POST("/upload", handleUpload(opts.Store, opts.MaxFileBytes, opts.Logger))
	api.POST("/query", handleQuery(opts.Store, opts.Logger))
}

func handleUpload(store *Store, maxBytes int64, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil || len(form.File["files"]) == 0 {
			c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: "files: field required"})
			return
		}
		headers := form.File["files"]

		for _, fh := range headers {
			if !strings.HasSuffix(fh.Filename, ".pdf") {
				c.JSON(http.StatusInternalServerError, errorResponse{
					Detail: fmt.Sprintf("File %s is not a PDF", fh.Filename),
				})
				return
			}
		}

		files := make([]attachment.File, 0, len(headers))
		for _, fh := range headers {
			f, err := attachment.FromMultipart(fh, maxBytes)
			if err != nil {
				c.JSON(http.StatusInternalServerError, errorResponse{Detail: err.Error()})
				return
			}
			files = append(files, f)
		}

		docs, err := store.Replace(files)
		if err != nil {
			logger.Error("devserver: upload", "error", err)
			c.JSON(http.StatusInternalServerError, errorResponse{Detail: err.Error()})
			return
		}

		result := summarize(docs)
		logger.Info("devserver: upload processed", "files", len(docs), "status", result.Status)
		c.JSON(http.StatusOK, uploadResponse{Message: uploadAcceptedMessage, Count: result})
	}
}

// summarize reports how many of docs could be read.
func summarize(docs []models.Document) uploadResult {
	var unreadable []string
	for _, d := range docs {
		if !d.Readable {
			unreadable = append(unreadable, d.Filename)
		}
	}
	switch {
	case len(unreadable) > 0 && len(unreadable) == len(docs):
		return uploadResult{
			Status: statusError,
			Message: fmt.Sprintf("Could not read any text from the uploaded PDF(s): %s. Please upload a valid PDF.",
				strings.Join(unreadable, ", ")),
		}
	case len(unreadable) > 0:
		return uploadResult{
			Status: statusPartial,
			Message: fmt.Sprintf("Some PDFs could not be read: %s. Others were processed successfully.",
				strings.Join(unreadable, ", ")),
		}
	default:
		return uploadResult{Status: statusParsed, Message: parsedMessage}
	}
}

func handleQuery(store *Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req queryRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Query == nil {
			c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: "query: field required"})
			return
		}

		docs, err := store.Active()
		if err != nil {
			logger.Error("devserver: query", "error", err)
			c.JSON(http.StatusInternalServerError, errorResponse{Detail: err.Error()})
			return
		}

		c.JSON(http.StatusOK, queryResponse{Response: answer(*req.Query, docs)})
	}
}

// answer is the deterministic stand-in for a model response.
func answer(query string, docs []models.Document) string {
	var names []string
	for _, d := range docs {
		if d.Readable {
			names = append(names, d.Filename)
		}
	}
	if len(names) == 0 {
		return noDocumentsAnswer
	}
	return fmt.Sprintf("Development backend: %d document(s) loaded (%s). No language model is attached, so %q cannot be answered here.",
		len(names), strings.Join(names, ", "), strings.TrimSpace(query))
}
