// Package gateway translates upload and question intents into HTTP calls
// against the question-answering service and normalizes every response,
// including transport failures, into an Outcome.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/zulandar/pdfchat/internal/attachment"
)

// Endpoint paths, appended to the configured base URL.
const (
	UploadPath = "/upload"
	QueryPath  = "/query"
)

// FilesField is the multipart field name carrying uploaded documents.
const FilesField = "files"

// DefaultTimeout applies when ClientOpts.Timeout is zero.
const DefaultTimeout = 120 * time.Second

// DefaultSummary is shown when the service accepts a document without
// returning any summary or status message.
const DefaultSummary = "Ask questions regarding it"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

// Client talks to the question-answering service. It holds no session data
// and is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// ClientOpts holds parameters for creating a Client.
type ClientOpts struct {
	BaseURL    string        // host plus versioned prefix, e.g. http://localhost:8000/api/v1
	Timeout    time.Duration // defaults to DefaultTimeout; ignored when HTTPClient is set
	HTTPClient *http.Client  // optional
	Logger     *slog.Logger  // optional; defaults to slog.Default()
}

// NewClient creates a Client.
func NewClient(opts ClientOpts) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("gateway: base url is required")
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: base, http: hc, logger: logger}, nil
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// uploadStatus is the status/message pair the service reports per upload.
type uploadStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// uploadResponse accepts both observed success shapes: a top-level
// summary/status/message, and the status object nested under "count".
type uploadResponse struct {
	Summary string          `json:"summary"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Count   json.RawMessage `json:"count"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Response *string `json:"response"`
}

// errorResponse is the failure body shape; detail may also be a list of
// validation errors, which is not user-presentable.
type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// Upload sends files as one multipart POST under the "files" field.
func (c *Client) Upload(ctx context.Context, files []attachment.File) UploadOutcome {
	if len(files) == 0 {
		return NetworkFailure("upload failed: no files")
	}

	body, contentType, err := encodeFiles(files)
	if err != nil {
		c.logger.Warn("gateway: encode upload", "error", err)
		return NetworkFailure("upload failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+UploadPath, body)
	if err != nil {
		c.logger.Warn("gateway: build upload request", "error", err)
		return NetworkFailure("upload failed")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	names := fileNames(files)
	c.logger.Debug("gateway: upload", "files", names, "url", req.URL.String())

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("gateway: upload transport error", "error", err)
		return NetworkFailure("upload failed: service unreachable")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Warn("gateway: read upload response", "error", err)
		return NetworkFailure("upload failed")
	}

	if !isSuccess(resp.StatusCode) {
		reason := failureReason(data, "Upload failed", resp.StatusCode)
		c.logger.Warn("gateway: upload rejected by transport", "status", resp.StatusCode, "reason", reason)
		return NetworkFailure(reason)
	}

	var ur uploadResponse
	if err := decodeObject(data, &ur); err != nil {
		c.logger.Warn("gateway: malformed upload response", "error", err)
		return NetworkFailure("upload failed")
	}
	return interpretUpload(ur, strings.Join(names, ", "))
}

// interpretUpload maps a decoded 2xx body to an outcome.
func interpretUpload(ur uploadResponse, documentName string) UploadOutcome {
	status := uploadStatus{Status: ur.Status, Message: ur.Message}
	var nested uploadStatus
	if len(ur.Count) > 0 && ur.Count[0] == '{' && json.Unmarshal(ur.Count, &nested) == nil && nested.Status != "" {
		status = nested
	}

	switch strings.ToLower(status.Status) {
	case "error", "partial":
		msg := strings.TrimSpace(status.Message)
		if msg == "" {
			msg = "The document could not be processed."
		}
		return Rejected(msg)
	}

	summary := strings.TrimSpace(ur.Summary)
	if summary == "" {
		summary = strings.TrimSpace(status.Message)
	}
	if summary == "" {
		summary = strings.TrimSpace(ur.Message)
	}
	if summary == "" {
		summary = DefaultSummary
	}
	return Succeeded(documentName, summary)
}

// Query sends the trimmed question as {"query": text}.
func (c *Client) Query(ctx context.Context, text string) QueryOutcome {
	payload, err := json.Marshal(queryRequest{Query: strings.TrimSpace(text)})
	if err != nil {
		return Failed("query failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+QueryPath, bytes.NewReader(payload))
	if err != nil {
		c.logger.Warn("gateway: build query request", "error", err)
		return Failed("query failed")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("gateway: query transport error", "error", err)
		return Failed("query failed: service unreachable")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Warn("gateway: read query response", "error", err)
		return Failed("query failed")
	}

	if !isSuccess(resp.StatusCode) {
		reason := failureReason(data, "Query failed", resp.StatusCode)
		c.logger.Warn("gateway: query rejected by transport", "status", resp.StatusCode, "reason", reason)
		return Failed(reason)
	}

	var qr queryResponse
	if err := decodeObject(data, &qr); err != nil || qr.Response == nil {
		c.logger.Warn("gateway: malformed query response", "error", err)
		return Failed("query failed")
	}
	return Answer(*qr.Response)
}

// encodeFiles writes files into a multipart body, keeping each part's
// sniffed content type.
func encodeFiles(files []attachment.File) (*bytes.Buffer, string, error) {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FilesField, f.Name))
		ct := f.MIMEType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return body, w.FormDataContentType(), nil
}

// decodeObject unmarshals a JSON object, rejecting empty and non-object bodies.
func decodeObject(data []byte, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("response body is not a JSON object")
	}
	return json.Unmarshal(trimmed, v)
}

// failureReason returns the body's string detail, or "<prefix>: <status text>".
func failureReason(data []byte, prefix string, code int) string {
	var er errorResponse
	if decodeObject(data, &er) == nil && len(er.Detail) > 0 {
		var detail string
		if json.Unmarshal(er.Detail, &detail) == nil && strings.TrimSpace(detail) != "" {
			return strings.TrimSpace(detail)
		}
	}
	text := http.StatusText(code)
	if text == "" {
		text = fmt.Sprintf("status %d", code)
	}
	return prefix + ": " + text
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func fileNames(files []attachment.File) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}
