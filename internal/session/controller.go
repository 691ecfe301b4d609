// Package session owns the chat session: the message history, the loaded
// document and the upload/query lifecycle. All front-ends (terminal, web,
// one-shot commands) drive the same Controller through its intents.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/zulandar/pdfchat/internal/attachment"
	"github.com/zulandar/pdfchat/internal/gateway"
	"github.com/zulandar/pdfchat/internal/models"
	"github.com/zulandar/pdfchat/internal/notify"
	"github.com/zulandar/pdfchat/internal/transcript"
)

// Apology is appended as the assistant reply when a question fails.
const Apology = "Sorry, I encountered an error while processing your question. Please try again."

// Intent rejections. None of them changes session state.
var (
	ErrNoFiles         = errors.New("session: no files selected")
	ErrInvalidFileType = errors.New("session: invalid file type")
	ErrBusy            = errors.New("session: a request is already in flight")
	ErrNoDocument      = errors.New("session: no document uploaded")
	ErrEmptyMessage    = errors.New("session: empty message")
	ErrEmptyHistory    = errors.New("session: history is empty")
)

// Gateway is the backend contract the controller depends on. Outcomes are
// already normalized; implementations never return transport errors.
type Gateway interface {
	Upload(ctx context.Context, files []attachment.File) gateway.UploadOutcome
	Query(ctx context.Context, text string) gateway.QueryOutcome
}

// Controller is the single owner of session state. It is safe for
// concurrent use; the lock is not held during network calls, so snapshots
// and rejected intents stay responsive while a request is in flight.
type Controller struct {
	gateway  Gateway
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time

	mu           sync.Mutex
	phase        Phase
	documentName string
	messages     []models.Message
	lastID       uint64
}

// Opts holds parameters for creating a Controller.
type Opts struct {
	Gateway  Gateway
	Notifier notify.Notifier  // optional; defaults to notify.Discard
	Logger   *slog.Logger     // optional; defaults to slog.Default()
	Clock    func() time.Time // optional; defaults to time.Now
}

// New creates a Controller in the NoDocument phase with empty history.
func New(opts Opts) (*Controller, error) {
	if opts.Gateway == nil {
		return nil, fmt.Errorf("session: gateway is required")
	}
	n := opts.Notifier
	if n == nil {
		n = notify.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Controller{
		gateway:  opts.Gateway,
		notifier: n,
		logger:   logger,
		now:      clock,
		phase:    NoDocument,
	}, nil
}

// StartUpload uploads the PDF subset of files. Non-PDF files are dropped;
// if none remain the call is rejected with ErrInvalidFileType. An accepted
// upload resets the history and document before the request is sent, and
// returns nil whatever the outcome: the outcome is reflected in state and
// notifications.
func (c *Controller) StartUpload(ctx context.Context, files ...attachment.File) error {
	if len(files) == 0 {
		return ErrNoFiles
	}
	pdfs := attachment.PDFs(files)
	if len(pdfs) == 0 {
		c.emit(invalidFileType())
		return ErrInvalidFileType
	}

	c.mu.Lock()
	if c.phase.inFlight() {
		phase := c.phase
		c.mu.Unlock()
		c.logger.Debug("session: upload rejected", "phase", phase.String())
		c.emit(busy())
		return ErrBusy
	}
	c.messages = nil
	c.documentName = ""
	c.phase = Uploading
	c.mu.Unlock()

	if skipped := len(files) - len(pdfs); skipped > 0 {
		c.logger.Info("session: skipped non-PDF files", "skipped", skipped)
	}
	c.logger.Info("session: upload started", "files", len(pdfs))

	out := c.gateway.Upload(ctx, pdfs)

	c.mu.Lock()
	switch out.Status {
	case gateway.UploadSucceeded:
		c.phase = Ready
		c.documentName = out.DocumentName
		c.appendLocked(models.RoleAssistant, out.Summary)
	case gateway.UploadRejected:
		c.phase = NoDocument
		c.appendLocked(models.RoleAssistant, out.Reason)
	default:
		c.phase = NoDocument
	}
	c.mu.Unlock()

	c.logger.Info("session: upload finished", "outcome", out.Status.String())
	switch out.Status {
	case gateway.UploadSucceeded:
		c.emit(uploadSucceeded())
	case gateway.UploadRejected:
		c.emit(uploadRejected(out.Reason))
	default:
		c.emit(uploadFailed(out.Reason))
	}
	return nil
}

// SendMessage asks a question about the loaded document. The user message
// is appended before the request is sent; exactly one assistant message
// (the answer or Apology) follows it when the request completes.
func (c *Controller) SendMessage(ctx context.Context, text string) error {
	q := strings.TrimSpace(text)
	if q == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	switch {
	case c.phase.inFlight():
		c.mu.Unlock()
		return ErrBusy
	case c.phase != Ready:
		c.mu.Unlock()
		c.emit(noDocument())
		return ErrNoDocument
	}
	c.appendLocked(models.RoleUser, q)
	c.phase = Querying
	c.mu.Unlock()

	out := c.gateway.Query(ctx, q)

	c.mu.Lock()
	if out.Answered {
		c.appendLocked(models.RoleAssistant, out.Text)
	} else {
		c.appendLocked(models.RoleAssistant, Apology)
	}
	c.phase = Ready
	c.mu.Unlock()

	if !out.Answered {
		c.logger.Warn("session: query failed", "reason", out.Reason)
		c.emit(queryFailed(out.Reason))
	}
	return nil
}

// ExportHistory renders the transcript. ok is false when history is empty.
func (c *Controller) ExportHistory() (text string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return "", false
	}
	return transcript.Render(c.messages), true
}

// ExportToFile writes the transcript into dir as chat-history-<date>.txt.
func (c *Controller) ExportToFile(dir string) (string, error) {
	text, ok := c.ExportHistory()
	if !ok {
		return "", ErrEmptyHistory
	}
	path, err := transcript.Write(dir, c.now(), text)
	if err != nil {
		return "", err
	}
	c.emit(historyExported(path))
	return path, nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := make([]models.Message, len(c.messages))
	copy(msgs, c.messages)
	return Snapshot{
		Phase:        c.phase,
		DocumentName: c.documentName,
		Messages:     msgs,
	}
}

// appendLocked adds a message; c.mu must be held.
func (c *Controller) appendLocked(role models.Role, body string) {
	c.lastID++
	c.messages = append(c.messages, models.Message{
		ID:        c.lastID,
		Role:      role,
		Body:      body,
		CreatedAt: c.now(),
	})
}

// emit stamps and delivers a notification; never called with c.mu held.
func (c *Controller) emit(n notify.Notification) {
	n.Time = c.now()
	c.notifier.Notify(n)
}
